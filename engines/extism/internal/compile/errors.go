package compile

import "errors"

var (
	ErrContentNil    = errors.New("wasm content is empty")
	ErrCompileFailed = errors.New("failed to compile wasm module")
)
