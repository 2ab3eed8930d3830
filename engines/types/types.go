// Package types names the runtimes shipped with this module.
package types

// Type identifies a runtime implementation.
type Type string

const (
	// Starlark runtime: https://github.com/google/starlark-go
	Starlark Type = "starlark"
	// Risor runtime: https://github.com/risor-io/risor
	Risor Type = "risor"
	// Extism WASM runtime: https://extism.org/
	Extism Type = "extism"
	// Osascript runs AppleScript through the osascript command line tool.
	Osascript Type = "osascript"
)

// All lists every built-in runtime type.
func All() []Type {
	return []Type{Extism, Osascript, Risor, Starlark}
}

func (t Type) String() string { return string(t) }
