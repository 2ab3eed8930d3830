// Package internal holds the JSON exchange between the host and a bridge plugin.
package internal

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/robbyt/go-scriptbridge/platform/descriptor"
	"github.com/robbyt/go-scriptbridge/platform/scripterr"
)

// ErrMalformedResponse is returned when plugin output is not a valid reply.
var ErrMalformedResponse = errors.New("malformed plugin response")

// Request is the plugin input.
type Request struct {
	Script string         `json:"script"`
	Ctx    map[string]any `json:"ctx,omitempty"`
}

// ErrorReport is a script failure reported by the plugin.
type ErrorReport struct {
	Code    int              `json:"code"`
	Message string           `json:"message"`
	Brief   string           `json:"brief,omitempty"`
	Range   *scripterr.Range `json:"range,omitempty"`
}

// Record turns the report into an error record.
func (r *ErrorReport) Record() *scripterr.Record {
	var opts []scripterr.Option
	if r.Brief != "" {
		opts = append(opts, scripterr.WithBrief(r.Brief))
	}
	if r.Range != nil {
		opts = append(opts, scripterr.WithRange(r.Range.Start, r.Range.End))
	}
	return scripterr.New(r.Code, r.Message, opts...)
}

// Response is the plugin output: exactly one of Result or Error.
type Response struct {
	Result *descriptor.Descriptor `json:"result,omitempty"`
	Error  *ErrorReport           `json:"error,omitempty"`
}

// EncodeRequest marshals the plugin input.
func EncodeRequest(script string, inputData map[string]any) ([]byte, error) {
	if len(inputData) == 0 {
		inputData = nil
	}
	return json.Marshal(Request{Script: script, Ctx: inputData})
}

// DecodeResponse parses plugin output. A reply carrying both or neither member is malformed.
func DecodeResponse(output []byte) (*Response, error) {
	var raw struct {
		Result json.RawMessage `json:"result"`
		Error  *ErrorReport    `json:"error"`
	}
	dec := json.NewDecoder(bytes.NewReader(output))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	hasResult := len(raw.Result) > 0
	switch {
	case hasResult && raw.Error != nil:
		return nil, fmt.Errorf("%w: both result and error are set", ErrMalformedResponse)
	case raw.Error != nil:
		return &Response{Error: raw.Error}, nil
	case !hasResult:
		return nil, fmt.Errorf("%w: neither result nor error is set", ErrMalformedResponse)
	}

	if string(bytes.TrimSpace(raw.Result)) == "null" {
		return &Response{Result: descriptor.Null()}, nil
	}
	d, err := descriptor.Decode(raw.Result)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return &Response{Result: d}, nil
}
