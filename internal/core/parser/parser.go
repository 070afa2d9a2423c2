package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Octrafic/stepexec/internal/core/tester"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEndpointNotFound  = errors.New("endpoint not found")
)

type Specification struct {
	Format    string                      `json:"format"`
	Version   string                      `json:"version,omitempty"`
	Title     string                      `json:"title,omitempty"`
	Endpoints []tester.EndpointDescriptor `json:"endpoints"`
}

// ParseSpecification loads endpoint descriptors from an OpenAPI/Swagger
// document (JSON or YAML) or a JSONL endpoint list.
func ParseSpecification(path string) (*Specification, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".jsonl" {
		return ParseJSONL(path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	switch ext {
	case ".json", ".yaml", ".yml":
		return ParseOpenAPI(content)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// ParseOpenAPI reads OpenAPI 3 / Swagger 2 content in JSON or YAML.
func ParseOpenAPI(content []byte) (*Specification, error) {
	var doc map[string]any

	if err := json.Unmarshal(content, &doc); err != nil {
		if err := yaml.Unmarshal(content, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse OpenAPI (tried JSON and YAML): %w", err)
		}
	}

	spec := &Specification{
		Format:    "openapi",
		Endpoints: []tester.EndpointDescriptor{},
	}

	if version, ok := doc["openapi"].(string); ok {
		spec.Version = version
	} else if version, ok := doc["swagger"].(string); ok {
		spec.Format = "swagger"
		spec.Version = version
	}
	if info, ok := doc["info"].(map[string]any); ok {
		spec.Title, _ = info["title"].(string)
	}

	paths, _ := doc["paths"].(map[string]any)
	for path, item := range paths {
		itemMap, ok := item.(map[string]any)
		if !ok {
			continue
		}
		shared := collectParameters(doc, itemMap["parameters"])

		for method, details := range itemMap {
			if !isHTTPMethod(method) {
				continue
			}
			endpoint := tester.EndpointDescriptor{
				Method: strings.ToUpper(method),
				Path:   path,
			}
			var own []tester.ParameterDescriptor
			if detailsMap, ok := details.(map[string]any); ok {
				endpoint.OperationID, _ = detailsMap["operationId"].(string)
				own = collectParameters(doc, detailsMap["parameters"])
			}
			endpoint.Parameters = mergeParameters(shared, own)

			spec.Endpoints = append(spec.Endpoints, endpoint)
		}
	}

	sortEndpoints(spec.Endpoints)

	return spec, nil
}

// collectParameters reads a parameter list, following local $refs.
func collectParameters(doc map[string]any, raw any) []tester.ParameterDescriptor {
	list, ok := raw.([]any)
	if !ok {
		return nil
	}

	var params []tester.ParameterDescriptor
	for _, p := range list {
		paramObj, ok := p.(map[string]any)
		if !ok {
			continue
		}
		if ref, ok := paramObj["$ref"].(string); ok {
			if paramObj, ok = resolveRef(doc, ref).(map[string]any); !ok {
				continue
			}
		}
		name, _ := paramObj["name"].(string)
		in, _ := paramObj["in"].(string)
		if name == "" {
			continue
		}
		params = append(params, tester.ParameterDescriptor{Name: name, In: tester.Location(strings.ToLower(in))})
	}
	return params
}

// mergeParameters overlays operation parameters on path-level ones. A
// parameter is identified by name and location.
func mergeParameters(shared, own []tester.ParameterDescriptor) []tester.ParameterDescriptor {
	if len(shared) == 0 {
		return own
	}
	merged := slices.Clone(own)
	for _, p := range shared {
		if !slices.Contains(own, p) {
			merged = append(merged, p)
		}
	}
	return merged
}

// resolveRef follows a "#/a/b" pointer inside doc.
func resolveRef(doc map[string]any, ref string) any {
	pointer, ok := strings.CutPrefix(ref, "#/")
	if !ok {
		return nil
	}
	var node any = doc
	for _, part := range strings.Split(pointer, "/") {
		part = strings.ReplaceAll(strings.ReplaceAll(part, "~1", "/"), "~0", "~")
		m, ok := node.(map[string]any)
		if !ok {
			return nil
		}
		node = m[part]
	}
	return node
}

func isHTTPMethod(s string) bool {
	methods := []string{"get", "post", "put", "delete", "patch", "options", "head", "trace"}
	return slices.Contains(methods, strings.ToLower(s))
}

var methodOrder = map[string]int{"GET": 0, "POST": 1, "PUT": 2, "PATCH": 3, "DELETE": 4, "HEAD": 5, "OPTIONS": 6, "TRACE": 7}

func sortEndpoints(endpoints []tester.EndpointDescriptor) {
	sort.SliceStable(endpoints, func(i, j int) bool {
		if endpoints[i].Path != endpoints[j].Path {
			return endpoints[i].Path < endpoints[j].Path
		}
		return methodOrder[endpoints[i].Method] < methodOrder[endpoints[j].Method]
	})
}

// Find selects an endpoint by operation id or by "METHOD /path".
func (s *Specification) Find(selector string) (tester.EndpointDescriptor, error) {
	selector = strings.TrimSpace(selector)
	method, path, hasPath := strings.Cut(selector, " ")

	for _, ep := range s.Endpoints {
		if ep.OperationID != "" && ep.OperationID == selector {
			return ep, nil
		}
		if hasPath && strings.EqualFold(ep.Method, method) && ep.Path == strings.TrimSpace(path) {
			return ep, nil
		}
	}
	return tester.EndpointDescriptor{}, fmt.Errorf("%w: %s", ErrEndpointNotFound, selector)
}
