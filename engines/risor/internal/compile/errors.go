package compile

import "errors"

var (
	ErrContentEmpty  = errors.New("risor content is empty")
	ErrParseFailed   = errors.New("risor parse error")
	ErrCompileFailed = errors.New("risor compile error")
)
