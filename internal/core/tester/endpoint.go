package tester

import "strings"

// Location tells where a parameter travels in the request.
type Location string

const (
	LocationPath   Location = "path"
	LocationQuery  Location = "query"
	LocationHeader Location = "header"
	LocationCookie Location = "cookie"
	LocationBody   Location = "body"
)

// ParameterDescriptor is a declared endpoint parameter
type ParameterDescriptor struct {
	Name string   `json:"name" yaml:"name"`
	In   Location `json:"in" yaml:"in"`
}

// EndpointDescriptor describes one API operation. Path may contain {name}
// placeholders.
type EndpointDescriptor struct {
	Path        string                `json:"path" yaml:"path"`
	Method      string                `json:"method" yaml:"method"`
	OperationID string                `json:"operation_id,omitempty" yaml:"operation_id,omitempty"`
	Parameters  []ParameterDescriptor `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// OperationKey returns the key used to look up fixture data for the endpoint.
// Without an operation id it falls back to METHOD_path.
func (e EndpointDescriptor) OperationKey() string {
	if e.OperationID != "" {
		return e.OperationID
	}
	return e.Method + "_" + e.Path
}

// PathParameters returns the names of parameters declared in the path.
func (e EndpointDescriptor) PathParameters() []string {
	var names []string
	for _, p := range e.Parameters {
		if Location(strings.ToLower(string(p.In))) == LocationPath {
			names = append(names, p.Name)
		}
	}
	return names
}

// carriesBody reports whether requests with this method take a payload.
func carriesBody(method string) bool {
	switch strings.ToUpper(method) {
	case "POST", "PUT", "PATCH":
		return true
	}
	return false
}
