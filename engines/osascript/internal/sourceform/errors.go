package sourceform

import "errors"

var (
	ErrUnexpectedToken = errors.New("unexpected token")
	ErrUnterminated    = errors.New("unterminated literal")
	ErrTooDeep         = errors.New("nesting too deep")
	ErrTrailingInput   = errors.New("trailing input after value")
)
