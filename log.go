package quizbank

import (
	"io"
	"log"
	"os"
	"sync/atomic"
)

var (
	verboseMode atomic.Bool
	logger      = log.New(os.Stderr, "quizbank: ", log.LstdFlags)
)

// SetVerbose toggles parser and storage diagnostics
func SetVerbose(verbose bool) {
	verboseMode.Store(verbose)
}

// SetLogOutput redirects diagnostics, mostly for tests
func SetLogOutput(w io.Writer) {
	logger.SetOutput(w)
}

// VerboseLog logs only when verbose mode is enabled
func VerboseLog(format string, v ...interface{}) {
	if verboseMode.Load() {
		logger.Printf(format, v...)
	}
}
