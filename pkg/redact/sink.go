package redact

import (
	"github.com/go-logr/logr"
)

// Sink decorates a logr.LogSink, replacing the value of any key/value
// pair whose key names a sensitive field. Messages pass through
// untouched; structured pairs are where credentials leak.
type Sink struct {
	inner       logr.LogSink
	fields      FieldSet
	replacement string
}

var _ logr.LogSink = (*Sink)(nil)

// NewLogger wraps logger so that values keyed by any of fields are
// replaced with DefaultReplacement.
func NewLogger(logger logr.Logger, fields ...string) logr.Logger {
	return logr.New(&Sink{
		inner:       logger.GetSink(),
		fields:      NewFieldSet(fields...),
		replacement: DefaultReplacement,
	})
}

func (s *Sink) Init(info logr.RuntimeInfo) {
	s.inner.Init(info)
}

func (s *Sink) Enabled(level int) bool {
	return s.inner.Enabled(level)
}

func (s *Sink) Info(level int, msg string, keysAndValues ...any) {
	s.inner.Info(level, msg, s.mask(keysAndValues)...)
}

func (s *Sink) Error(err error, msg string, keysAndValues ...any) {
	s.inner.Error(err, msg, s.mask(keysAndValues)...)
}

func (s *Sink) WithValues(keysAndValues ...any) logr.LogSink {
	return &Sink{
		inner:       s.inner.WithValues(s.mask(keysAndValues)...),
		fields:      s.fields,
		replacement: s.replacement,
	}
}

func (s *Sink) WithName(name string) logr.LogSink {
	return &Sink{
		inner:       s.inner.WithName(name),
		fields:      s.fields,
		replacement: s.replacement,
	}
}

func (s *Sink) mask(keysAndValues []any) []any {
	if len(s.fields) == 0 {
		return keysAndValues
	}

	masked := make([]any, len(keysAndValues))
	copy(masked, keysAndValues)
	for i := 0; i+1 < len(masked); i += 2 {
		key, ok := masked[i].(string)
		if ok && s.fields.Contains(key) {
			masked[i+1] = s.replacement
		}
	}
	return masked
}
