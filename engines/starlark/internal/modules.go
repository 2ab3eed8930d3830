package internal

import (
	"maps"

	starlarkJSON "go.starlark.net/lib/json"
	starlarkMath "go.starlark.net/lib/math"
	starlarkTime "go.starlark.net/lib/time"
	starlarkLib "go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
)

// Module namespaces predeclared for every script.
const (
	namespaceJSON   = "json"
	namespaceMath   = "math"
	namespaceTime   = "time"
	namespaceStruct = "struct"
)

// StarlarkModules returns a copy of the Starlark universe with the standard library modules
// and the struct constructor added.
func StarlarkModules() starlarkLib.StringDict {
	universe := maps.Clone(starlarkLib.Universe)

	universe[namespaceJSON] = starlarkJSON.Module
	universe[namespaceMath] = starlarkMath.Module
	universe[namespaceTime] = starlarkTime.Module
	universe[namespaceStruct] = starlarkLib.NewBuiltin(namespaceStruct, starlarkstruct.Make)

	return universe
}
