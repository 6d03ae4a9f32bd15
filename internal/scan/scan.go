// Package scan runs per-segment analyzers over the loaded segments of an
// image.
package scan

import (
	"bytes"

	"roptool/internal/binfmt"
)

// Run is a contiguous byte range found by an analyzer.
type Run struct {
	Addr   uint64
	Length int
	Bytes  []byte // view into the segment, never copied
}

// Analyzer inspects one segment and returns what it found, in address
// order.
type Analyzer interface {
	Analyze(seg *binfmt.Segment) []Run
}

// AnalyzerFunc adapts a plain function to Analyzer.
type AnalyzerFunc func(seg *binfmt.Segment) []Run

func (f AnalyzerFunc) Analyze(seg *binfmt.Segment) []Run { return f(seg) }

// ForEachSegment calls visit for every segment of img, in image order,
// whose protection shares a bit with filter. It stops early when visit
// returns false.
func ForEachSegment(img *binfmt.Image, filter binfmt.Prot, visit func(seg *binfmt.Segment) bool) {
	for _, seg := range img.Segments {
		if seg.Prot&filter == 0 {
			continue
		}
		if !visit(seg) {
			return
		}
	}
}

// IsPrintable reports whether b is a graphic ASCII character. Space and
// control characters end a run.
func IsPrintable(b byte) bool {
	return b >= 0x21 && b <= 0x7e
}

// PrintableRuns returns an analyzer emitting every maximal run of
// printable bytes at least threshold long. A threshold below one is
// treated as one.
func PrintableRuns(threshold int) Analyzer {
	if threshold < 1 {
		threshold = 1
	}
	return AnalyzerFunc(func(seg *binfmt.Segment) []Run {
		var runs []Run
		start, n := 0, 0
		flush := func() {
			if n >= threshold {
				runs = append(runs, Run{
					Addr:   seg.Addr + uint64(start),
					Length: n,
					Bytes:  seg.Data[start : start+n],
				})
			}
			n = 0
		}
		for i, b := range seg.Data {
			if IsPrintable(b) {
				if n == 0 {
					start = i
				}
				n++
				continue
			}
			flush()
		}
		flush()
		return runs
	})
}

// PatternMatches returns an analyzer emitting every occurrence of pattern,
// overlapping ones included. An empty pattern matches nothing.
func PatternMatches(pattern []byte) Analyzer {
	return AnalyzerFunc(func(seg *binfmt.Segment) []Run {
		if len(pattern) == 0 {
			return nil
		}
		var runs []Run
		for pos := 0; pos+len(pattern) <= len(seg.Data); {
			i := bytes.Index(seg.Data[pos:], pattern)
			if i < 0 {
				break
			}
			at := pos + i
			runs = append(runs, Run{
				Addr:   seg.Addr + uint64(at),
				Length: len(pattern),
				Bytes:  seg.Data[at : at+len(pattern)],
			})
			pos = at + 1
		}
		return runs
	})
}
