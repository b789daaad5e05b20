package logger

import (
	"io"
	"log"
)

// WriterLogger adapts any io.Writer to the Logger interface.
// Thread safety depends on the underlying writer.
type WriterLogger struct {
	leveled
}

var _ Logger = (*WriterLogger)(nil)

// NewWriterLogger creates a logger from any io.Writer
func NewWriterLogger(w io.Writer, min Level) *WriterLogger {
	return &WriterLogger{
		leveled: leveled{
			logger: log.New(w, "", log.LstdFlags),
			min:    min,
		},
	}
}

func (w *WriterLogger) Type() LoggerType {
	return LoggerTypeWriter
}

func (w *WriterLogger) Close() error {
	return nil
}
