package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Bearer sends "Authorization: Bearer <token>".
type Bearer struct {
	Token string `json:"token"`
}

func (b *Bearer) Apply(req *http.Request) error {
	req.Header.Set("Authorization", "Bearer "+b.Token)
	return nil
}

func (b *Bearer) Type() string { return "bearer" }

func (b *Bearer) Validate() error {
	if strings.TrimSpace(b.Token) == "" {
		return errors.New("bearer token cannot be empty")
	}
	return nil
}

func (b *Bearer) Redact() Provider {
	return &Bearer{Token: RedactString(b.Token)}
}

func (b *Bearer) String() string {
	return fmt.Sprintf("Bearer Token (%s)", RedactString(b.Token))
}

// Basic is HTTP Basic authentication.
type Basic struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (b *Basic) Apply(req *http.Request) error {
	req.SetBasicAuth(b.Username, b.Password)
	return nil
}

func (b *Basic) Type() string { return "basic" }

func (b *Basic) Validate() error {
	if strings.TrimSpace(b.Username) == "" {
		return errors.New("username cannot be empty")
	}
	if strings.TrimSpace(b.Password) == "" {
		return errors.New("password cannot be empty")
	}
	return nil
}

func (b *Basic) Redact() Provider {
	return &Basic{Username: b.Username, Password: "***"}
}

func (b *Basic) String() string {
	return fmt.Sprintf("Basic Auth (%s)", b.Username)
}

// APIKey puts a named key in a header or the query string.
type APIKey struct {
	Key      string `json:"key"`
	Value    string `json:"value"`
	Location string `json:"location"` // "header" or "query"
}

// NewAPIKey defaults the location to header.
func NewAPIKey(key, value, location string) *APIKey {
	if location == "" {
		location = "header"
	}
	return &APIKey{Key: key, Value: value, Location: strings.ToLower(location)}
}

func (a *APIKey) Apply(req *http.Request) error {
	switch a.Location {
	case "header":
		req.Header.Set(a.Key, a.Value)
	case "query":
		q := req.URL.Query()
		q.Set(a.Key, a.Value)
		req.URL.RawQuery = q.Encode()
	default:
		return fmt.Errorf("invalid location: %s (must be 'header' or 'query')", a.Location)
	}
	return nil
}

func (a *APIKey) Type() string { return "apikey" }

func (a *APIKey) Validate() error {
	if strings.TrimSpace(a.Key) == "" {
		return errors.New("API key name cannot be empty")
	}
	if strings.TrimSpace(a.Value) == "" {
		return errors.New("API key value cannot be empty")
	}
	if a.Location != "header" && a.Location != "query" {
		return fmt.Errorf("location must be 'header' or 'query', got: %s", a.Location)
	}
	return nil
}

func (a *APIKey) Redact() Provider {
	return &APIKey{Key: a.Key, Value: RedactString(a.Value), Location: a.Location}
}

func (a *APIKey) String() string {
	return fmt.Sprintf("API Key %s in %s (%s)", a.Key, a.Location, RedactString(a.Value))
}
