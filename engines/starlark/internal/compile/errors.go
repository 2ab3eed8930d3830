package compile

import "errors"

var (
	ErrCompileFailed = errors.New("failed to compile starlark script")
	ErrContentEmpty  = errors.New("starlark content is empty")
)
