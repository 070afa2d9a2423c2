package auth

import (
	"fmt"
	"net/http"
)

// Transport applies a Provider to every request before handing it to Base.
type Transport struct {
	Provider Provider
	Base     http.RoundTripper
}

// NewTransport wraps base; a nil base means http.DefaultTransport.
func NewTransport(p Provider, base http.RoundTripper) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	if p == nil {
		p = NoAuth{}
	}
	return &Transport{Provider: p, Base: base}
}

// RoundTrip clones the request so the caller's copy is never modified.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if err := t.Provider.Apply(clone); err != nil {
		if req.Body != nil {
			_ = req.Body.Close()
		}
		return nil, fmt.Errorf("failed to apply %s auth: %w", t.Provider.Type(), err)
	}
	return t.Base.RoundTrip(clone)
}

// Client returns an http.Client whose transport applies p.
func Client(p Provider, base http.RoundTripper) *http.Client {
	return &http.Client{Transport: NewTransport(p, base)}
}
