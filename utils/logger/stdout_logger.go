package logger

import (
	"log"
	"os"
)

// StdoutLogger writes logs to stdout using the standard log package.
// Safe for concurrent use across goroutines.
type StdoutLogger struct {
	leveled
}

var _ Logger = (*StdoutLogger)(nil)

// NewStdoutLogger creates a new logger that writes to stdout, emitting
// messages at or above the given level.
func NewStdoutLogger(min Level) *StdoutLogger {
	return &StdoutLogger{
		leveled: leveled{
			logger: log.New(os.Stdout, "", log.LstdFlags),
			min:    min,
		},
	}
}

func (s *StdoutLogger) Type() LoggerType {
	return LoggerTypeStdout
}

func (s *StdoutLogger) Close() error {
	return nil
}
