package scripterr

// Error numbers follow the OSA scripting component numbering so records from every runtime
// classify the same way.
const (
	CodeUnknown            = 0
	CodeUserCancelled      = -128
	CodeNotUnderstood      = -1708
	CodeTimedOut           = -1712
	CodeCantGet            = -1728
	CodeNotPermitted       = -1743
	CodeGeneric            = -2700
	CodeSyntax             = -2740
	CodeSyntaxUnexpected   = -2741
	CodeUndefinedVariable  = -2753
	CodeAutomationDisabled = -10004
)

// UnknownErrorMessage is the message used when a runtime failed without saying why.
const UnknownErrorMessage = "Unknown Error"

var descriptions = map[int]string{
	CodeUserCancelled:      "User canceled.",
	CodeNotUnderstood:      "A parameter is missing.",
	CodeTimedOut:           "The operation timed out.",
	CodeCantGet:            "Can't get the object.",
	CodeNotPermitted:       "Not authorized to send Apple events.",
	CodeGeneric:            "A script error occurred.",
	CodeSyntax:             "A syntax error occurred.",
	CodeSyntaxUnexpected:   "Expected a different token.",
	CodeUndefinedVariable:  "The variable is not defined.",
	CodeAutomationDisabled: "A privilege violation occurred.",
}

// Describe returns the standard one line description for code, or "" when there is none.
func Describe(code int) string {
	return descriptions[code]
}

// Category groups error codes by what went wrong.
type Category string

const (
	CategoryUnknown    Category = "unknown"
	CategorySyntax     Category = "syntax"
	CategoryRuntime    Category = "runtime"
	CategoryPermission Category = "permission"
	CategoryCancelled  Category = "cancelled"
	CategoryTimeout    Category = "timeout"
)

// CategoryOf classifies a code. Negative codes outside the known groups count as runtime
// errors.
func CategoryOf(code int) Category {
	switch {
	case code == CodeUnknown:
		return CategoryUnknown
	case code == CodeSyntax, code == CodeSyntaxUnexpected,
		code <= -2740 && code >= -2759 && code != CodeUndefinedVariable:
		return CategorySyntax
	case code == CodeNotPermitted, code == CodeAutomationDisabled:
		return CategoryPermission
	case code == CodeUserCancelled:
		return CategoryCancelled
	case code == CodeTimedOut:
		return CategoryTimeout
	default:
		return CategoryRuntime
	}
}
