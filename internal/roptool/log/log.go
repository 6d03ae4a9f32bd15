package log

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"

	charmlog "github.com/charmbracelet/log"

	"roptool/internal/logging"
)

var (
	initOnce    sync.Once
	initialized atomic.Bool
	closer      *logging.LoggerCloser
)

// Setup installs the environment configured logger as the slog default.
// debug forces debug level regardless of ROPTOOL_LOG_LEVEL.
func Setup(debug bool) {
	initOnce.Do(func() {
		closer = logging.NewLogger()
		if debug {
			closer.SetLevel(charmlog.DebugLevel)
			closer.SetReportCaller(true)
		}
		slog.SetDefault(slog.New(closer.Logger))
		initialized.Store(true)
	})
}

func Initialized() bool {
	return initialized.Load()
}

// Close flushes a file backed logger.
func Close() error {
	if closer == nil {
		return nil
	}
	return closer.Close()
}

func RecoverPanic(name string, cleanup func()) {
	if r := recover(); r != nil {
		if Initialized() {
			slog.Error(fmt.Sprintf("Panic in %s", name),
				"panic", r,
				"stack", string(debug.Stack()))
		}
		if cleanup != nil {
			cleanup()
		}
	}
}
