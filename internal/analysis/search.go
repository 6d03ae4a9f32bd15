package analysis

import (
	"iter"

	"roptool/internal/binfmt"
	"roptool/internal/scan"
)

// Search runs analyzer over every segment whose protection shares a bit
// with filter. Each segment's hits are followed by a ScanSummaryEvent,
// including segments with no hits.
func Search(img *binfmt.Image, filter binfmt.Prot, analyzer scan.Analyzer) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		scan.ForEachSegment(img, filter, func(seg *binfmt.Segment) bool {
			runs := analyzer.Analyze(seg)
			for _, r := range runs {
				ev := ScanRunEvent{Addr: r.Addr, Length: r.Length, Bytes: r.Bytes, Prot: seg.Prot}
				if !yield(ev) {
					return false
				}
			}
			return yield(ScanSummaryEvent{Segment: seg, Count: len(runs)})
		})
	}
}
