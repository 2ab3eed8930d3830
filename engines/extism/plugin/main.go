// Command plugin is a reference bridge plugin. Its script language is JSON: the script text is
// decoded and returned as a descriptor, and the bare word ctx returns the request's input data.
//
// Build with:
//
//	GOOS=wasip1 GOARCH=wasm go build -buildmode=c-shared -o ../testdata/bridge.wasm .
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/extism/go-pdk"
)

type request struct {
	Script string          `json:"script"`
	Ctx    json.RawMessage `json:"ctx"`
}

type descriptor struct {
	Type   string        `json:"type"`
	Text   *string       `json:"text,omitempty"`
	Int    json.Number   `json:"int,omitempty"`
	Real   json.Number   `json:"real,omitempty"`
	Items  []*descriptor `json:"items,omitempty"`
	Fields []field       `json:"fields,omitempty"`
}

type field struct {
	Key   string      `json:"key"`
	Value *descriptor `json:"value"`
}

type errorReport struct {
	Code    int       `json:"code"`
	Message string    `json:"message"`
	Range   *errRange `json:"range,omitempty"`
}

type errRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

type response struct {
	Result *descriptor  `json:"result,omitempty"`
	Error  *errorReport `json:"error,omitempty"`
}

//go:wasmexport run
func run() int32 {
	var req request
	if err := pdk.InputJSON(&req); err != nil {
		pdk.SetError(err)
		return 1
	}

	source := []byte(req.Script)
	if strings.TrimSpace(req.Script) == "ctx" {
		source = req.Ctx
		if len(source) == 0 {
			source = []byte("{}")
		}
	}

	var resp response
	d, err := evaluate(source)
	if err != nil {
		resp.Error = report(err, len(source))
	} else {
		resp.Result = d
	}

	if err := pdk.OutputJSON(resp); err != nil {
		pdk.SetError(err)
		return 1
	}
	return 0
}

func evaluate(src []byte) (*descriptor, error) {
	dec := json.NewDecoder(bytes.NewReader(src))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, &json.SyntaxError{Offset: dec.InputOffset()}
	}
	return toDescriptor(v), nil
}

func report(err error, size int) *errorReport {
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return &errorReport{Code: -2741, Message: "unexpected end of script", Range: &errRange{Start: size, End: size}}
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		off := int(syntaxErr.Offset)
		msg := syntaxErr.Error()
		if msg == "" {
			msg = "unexpected input after value"
		}
		return &errorReport{Code: -2741, Message: msg, Range: &errRange{Start: off, End: off}}
	}
	return &errorReport{Code: -2700, Message: fmt.Sprint(err)}
}

// toDescriptor keeps object keys sorted: decoded JSON objects carry no order.
func toDescriptor(v any) *descriptor {
	switch x := v.(type) {
	case nil:
		return &descriptor{Type: "null"}
	case bool:
		if x {
			return &descriptor{Type: "true"}
		}
		return &descriptor{Type: "fals"}
	case json.Number:
		if _, err := x.Int64(); err == nil {
			return &descriptor{Type: "comp", Int: x}
		}
		return &descriptor{Type: "doub", Real: x}
	case string:
		return &descriptor{Type: "utf8", Text: &x}
	case []any:
		d := &descriptor{Type: "list", Items: []*descriptor{}}
		for _, item := range x {
			d.Items = append(d.Items, toDescriptor(item))
		}
		return d
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		d := &descriptor{Type: "reco"}
		for _, k := range keys {
			d.Fields = append(d.Fields, field{Key: k, Value: toDescriptor(x[k])})
		}
		return d
	}
	return &descriptor{Type: "????"}
}

func main() {}
