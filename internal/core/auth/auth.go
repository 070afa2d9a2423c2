package auth

import (
	"fmt"
	"net/http"
	"strings"
)

// Provider applies credentials to outgoing requests
type Provider interface {
	// Apply adds credentials to the request
	Apply(req *http.Request) error

	// Type returns the authentication type identifier
	Type() string

	// Validate checks if the configuration is valid
	Validate() error

	// Redact returns a copy with sensitive data hidden (for logging)
	Redact() Provider
}

// Settings collects credential values from flags or the environment.
type Settings struct {
	Type     string `split_words:"true" default:"none"`
	Token    string `split_words:"true"`
	Key      string `split_words:"true"`
	Value    string `split_words:"true"`
	Location string `split_words:"true" default:"header"`
	User     string `split_words:"true"`
	Pass     string `split_words:"true"`
}

// New builds and validates the provider described by s.
func New(s Settings) (Provider, error) {
	var p Provider
	switch strings.ToLower(s.Type) {
	case "", "none":
		return NoAuth{}, nil
	case "bearer":
		p = &Bearer{Token: s.Token}
	case "apikey":
		p = NewAPIKey(s.Key, s.Value, s.Location)
	case "basic":
		p = &Basic{Username: s.User, Password: s.Pass}
	default:
		return nil, fmt.Errorf("invalid auth type: %s (valid: none, bearer, apikey, basic)", s.Type)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s auth: %w", p.Type(), err)
	}
	return p, nil
}

// NoAuth leaves requests untouched.
type NoAuth struct{}

func (NoAuth) Apply(*http.Request) error { return nil }
func (NoAuth) Type() string              { return "none" }
func (NoAuth) Validate() error           { return nil }
func (n NoAuth) Redact() Provider        { return n }
func (NoAuth) String() string            { return "No Auth" }

// RedactString hides sensitive data for logging
func RedactString(s string) string {
	if len(s) == 0 {
		return "<empty>"
	}
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "***" + s[len(s)-4:]
}
