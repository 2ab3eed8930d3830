// Package data supplies optional input data to scripts. Runtimes that support input expose
// the data a Provider returns as the ctx global; the script text itself is never rewritten.
package data

import (
	"context"
)

// Getter retrieves script input for one execution.
type Getter interface {
	GetData(ctx context.Context) (map[string]any, error)
}

// Setter prepares script input by enriching a context.
type Setter interface {
	// AddDataToContext stores data in the returned context so a later GetData call on the same
	// provider finds it. Later maps override earlier ones for duplicate keys.
	//
	// Example:
	//  ctx, err := provider.AddDataToContext(ctx, map[string]any{"user": "ada"})
	//  if err != nil {
	//      return err
	//  }
	//  err = executor.Execute(ctx, script)
	AddDataToContext(ctx context.Context, data ...map[string]any) (context.Context, error)
}

// Provider is both a Getter and a Setter.
type Provider interface {
	Getter
	Setter
}
