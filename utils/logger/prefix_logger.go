package logger

// PrefixLogger prepends a fixed prefix, typically a user@host connection
// name, to every message before handing it to the wrapped logger.
type PrefixLogger struct {
	prefix string
	next   Logger
}

var _ Logger = (*PrefixLogger)(nil)

// NewPrefixLogger wraps next so every message is prefixed with "prefix: ".
func NewPrefixLogger(prefix string, next Logger) *PrefixLogger {
	return &PrefixLogger{prefix: prefix, next: next}
}

func (p *PrefixLogger) Type() LoggerType {
	return LoggerTypePrefix
}

func (p *PrefixLogger) Debugf(format string, args ...any) {
	p.next.Debugf("%s: "+format, append([]any{p.prefix}, args...)...)
}

func (p *PrefixLogger) Infof(format string, args ...any) {
	p.next.Infof("%s: "+format, append([]any{p.prefix}, args...)...)
}

func (p *PrefixLogger) Warnf(format string, args ...any) {
	p.next.Warnf("%s: "+format, append([]any{p.prefix}, args...)...)
}

func (p *PrefixLogger) Errorf(format string, args ...any) {
	p.next.Errorf("%s: "+format, append([]any{p.prefix}, args...)...)
}

// Close closes the wrapped logger.
func (p *PrefixLogger) Close() error {
	return p.next.Close()
}
