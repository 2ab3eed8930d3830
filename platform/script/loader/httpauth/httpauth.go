// Package httpauth applies credentials to requests made by the HTTP script loader.
package httpauth

import (
	"context"
	"maps"
	"net/http"
)

// Authenticator adds credentials to an outgoing request.
type Authenticator interface {
	// Authenticate modifies req in place. It fails without touching req when ctx is done.
	Authenticate(ctx context.Context, req *http.Request) error

	// Name describes the method for logs.
	Name() string
}

// NoAuth sends requests unchanged.
type NoAuth struct{}

func (NoAuth) Authenticate(ctx context.Context, _ *http.Request) error { return ctx.Err() }
func (NoAuth) Name() string                                           { return "none" }

// BasicAuth sets an RFC 7617 Authorization header. An empty Username disables it.
type BasicAuth struct {
	Username string
	Password string
}

func NewBasicAuth(username, password string) *BasicAuth {
	return &BasicAuth{Username: username, Password: password}
}

func (b *BasicAuth) Authenticate(ctx context.Context, req *http.Request) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b.Username != "" {
		req.SetBasicAuth(b.Username, b.Password)
	}
	return nil
}

func (b *BasicAuth) Name() string { return "basic" }

// HeaderAuth sets fixed headers, such as an API key.
type HeaderAuth struct {
	Headers map[string]string
}

// NewHeaderAuth copies headers.
func NewHeaderAuth(headers map[string]string) *HeaderAuth {
	return &HeaderAuth{Headers: maps.Clone(headers)}
}

// NewBearerAuth sends "Authorization: Bearer <token>".
func NewBearerAuth(token string) *HeaderAuth {
	return &HeaderAuth{Headers: map[string]string{"Authorization": "Bearer " + token}}
}

func (h *HeaderAuth) Authenticate(ctx context.Context, req *http.Request) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for key, value := range h.Headers {
		req.Header.Set(key, value)
	}
	return nil
}

func (h *HeaderAuth) Name() string { return "header" }
