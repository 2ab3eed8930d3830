// Package scripterr holds the structured error record produced when a script fails inside its
// host runtime.
package scripterr

import (
	"fmt"
	"strings"
)

// Range is a half-open span of offsets into the script text.
type Range struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end"   yaml:"end"`
}

func (r Range) String() string {
	return fmt.Sprintf("%d:%d", r.Start, r.End)
}

// Record describes a script-level failure reported by a runtime. Records are returned by
// runtimes through the normal error channel and must not be modified after creation.
type Record struct {
	Code         int    `json:"code"                   yaml:"code"`
	Message      string `json:"message"                yaml:"message"`
	BriefMessage string `json:"briefMessage,omitempty" yaml:"briefMessage,omitempty"`
	Range        *Range `json:"range,omitempty"        yaml:"range,omitempty"`
}

// New creates a record with the given code and message. The brief message defaults to the
// standard description of the code, when there is one.
func New(code int, message string, opts ...Option) *Record {
	r := &Record{
		Code:         code,
		Message:      message,
		BriefMessage: Describe(code),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Clone returns a deep copy of r. A nil record clones to nil.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	if r.Range != nil {
		rng := *r.Range
		c.Range = &rng
	}
	return &c
}

// Option adjusts a record while it is being created.
type Option func(*Record)

// WithBrief sets the brief message.
func WithBrief(brief string) Option {
	return func(r *Record) { r.BriefMessage = brief }
}

// WithRange sets the offending range.
func WithRange(start, end int) Option {
	return func(r *Record) {
		if end < start {
			end = start
		}
		r.Range = &Range{Start: start, End: end}
	}
}

// Unknown is the best-effort record for a failure that did not come with a code.
func Unknown(message string) *Record {
	message = strings.TrimSpace(message)
	if message == "" {
		message = UnknownErrorMessage
	}
	return &Record{Code: CodeUnknown, Message: message}
}

func (r *Record) Error() string {
	if r.Range != nil {
		return fmt.Sprintf("script error %d at %s: %s", r.Code, r.Range, r.Message)
	}
	return fmt.Sprintf("script error %d: %s", r.Code, r.Message)
}

// Category classifies the record by its code.
func (r *Record) Category() Category {
	return CategoryOf(r.Code)
}
