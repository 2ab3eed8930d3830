package value

import (
	"errors"
	"fmt"
)

// DefaultMaxDepth bounds container nesting during conversion.
const DefaultMaxDepth = 64

var (
	// ErrDepthExceeded is the reason recorded when nesting passes the depth bound.
	ErrDepthExceeded = errors.New("nesting depth exceeded")

	// ErrCycle is the reason recorded when a container is reached again on its own path.
	ErrCycle = errors.New("reference cycle detected")
)

// Path tracks the containers currently being converted. Converters call Enter before
// descending into a container and the returned leave func on the way back out, so only the
// containers on the current path are considered for cycle detection; a container shared by two
// siblings converts twice rather than being reported as a cycle.
type Path struct {
	maxDepth int
	depth    int
	active   map[any]struct{}
}

// NewPath creates a Path bounded to maxDepth nested containers. A non-positive maxDepth
// selects DefaultMaxDepth.
func NewPath(maxDepth int) *Path {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Path{
		maxDepth: maxDepth,
		active:   make(map[any]struct{}),
	}
}

// MaxDepth returns the configured bound.
func (p *Path) MaxDepth() int { return p.maxDepth }

// Depth returns the number of containers currently entered.
func (p *Path) Depth() int { return p.depth }

// Enter pushes a container onto the path. id identifies the container for cycle detection and
// must be comparable; a nil id skips the cycle check. On error nothing is pushed.
func (p *Path) Enter(id any) (leave func(), err error) {
	if p.depth >= p.maxDepth {
		return nil, fmt.Errorf("%w: limit %d", ErrDepthExceeded, p.maxDepth)
	}
	if id != nil {
		if _, seen := p.active[id]; seen {
			return nil, ErrCycle
		}
		p.active[id] = struct{}{}
	}
	p.depth++
	return func() {
		p.depth--
		if id != nil {
			delete(p.active, id)
		}
	}, nil
}

// Degraded builds the Unrepresentable fallback for a container that could not be entered.
func Degraded(tag string, raw []byte, err error) Unrepresentable {
	return Unrepresentable{Tag: tag, Raw: raw, Reason: err.Error()}
}
