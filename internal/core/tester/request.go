package tester

import (
	"fmt"
	"slices"
	"strings"
)

// Step is the input of one execution.
type Step struct {
	Endpoint  EndpointDescriptor
	BaseURL   string
	Variables Vars
	Fixtures  Fixtures
}

// ResolvedRequest is the concrete request built for a step.
type ResolvedRequest struct {
	Method  string
	URL     string
	Body    any
	Headers map[string]string
}

// JoinURL joins base and path with exactly one slash between them.
func JoinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// ResolveURL joins base and the endpoint path and fills placeholders from
// ctx. Single-brace placeholders left over that name a declared path
// parameter present in ctx are then filled with that value in any form.
func ResolveURL(base string, endpoint EndpointDescriptor, ctx Vars) string {
	pathParams := endpoint.PathParameters()
	fallback := func(name string) (string, bool) {
		if !slices.Contains(pathParams, name) {
			return "", false
		}
		v, ok := ctx[name]
		if !ok {
			return "", false
		}
		if s, ok := FormatScalar(v); ok {
			return s, true
		}
		return fmt.Sprintf("%v", v), true
	}
	return ParseTemplate(JoinURL(base, endpoint.Path)).Render(ctx, fallback)
}

// SelectBody returns the fixture body for methods that carry a payload and
// nil for the rest. The body is used verbatim.
func SelectBody(method string, record map[string]any) any {
	if !carriesBody(method) {
		return nil
	}
	return record["body"]
}

// ResolveHeaders takes headers from vars when it holds a non-empty set and
// falls back to the top-level fixture headers otherwise. Sources are never
// merged.
func ResolveHeaders(vars Vars, fixtures Fixtures) map[string]string {
	if h := stringMap(vars["headers"]); len(h) > 0 {
		return h
	}
	if raw, ok := fixtures["headers"]; ok {
		return stringMap(raw)
	}
	return map[string]string{}
}

func stringMap(v any) map[string]string {
	m := asMap(v)
	out := make(map[string]string, len(m))
	for k, val := range m {
		if s, ok := FormatScalar(val); ok {
			out[k] = s
			continue
		}
		out[k] = fmt.Sprintf("%v", val)
	}
	return out
}

// Resolve runs the construction pipeline for a step without sending
// anything.
func Resolve(step Step) ResolvedRequest {
	opKey := step.Endpoint.OperationKey()
	ctx := Merge(StepLayers(step.Variables, step.Fixtures, opKey)...)

	return ResolvedRequest{
		Method:  strings.ToUpper(step.Endpoint.Method),
		URL:     ResolveURL(step.BaseURL, step.Endpoint, ctx),
		Body:    SelectBody(step.Endpoint.Method, step.Fixtures.Record(opKey)),
		Headers: ResolveHeaders(step.Variables, step.Fixtures),
	}
}
