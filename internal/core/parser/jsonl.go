package parser

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Octrafic/stepexec/internal/core/tester"
)

// ParseJSONL loads one endpoint descriptor per line.
func ParseJSONL(path string) (*Specification, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open JSONL file: %w", err)
	}
	defer func() { _ = file.Close() }()

	spec := &Specification{
		Format:    "jsonl",
		Endpoints: []tester.EndpointDescriptor{},
	}

	decoder := json.NewDecoder(file)
	for line := 1; ; line++ {
		var endpoint tester.EndpointDescriptor
		if err := decoder.Decode(&endpoint); err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("failed to decode JSONL entry %d: %w", line, err)
		}
		if endpoint.Method == "" || endpoint.Path == "" {
			return nil, fmt.Errorf("JSONL entry %d: method and path are required", line)
		}
		endpoint.Method = strings.ToUpper(endpoint.Method)
		spec.Endpoints = append(spec.Endpoints, endpoint)
	}

	return spec, nil
}

// WriteJSONL writes endpoints one per line.
func WriteJSONL(w io.Writer, endpoints []tester.EndpointDescriptor) error {
	encoder := json.NewEncoder(w)
	for _, endpoint := range endpoints {
		if err := encoder.Encode(endpoint); err != nil {
			return fmt.Errorf("failed to write endpoint: %w", err)
		}
	}
	return nil
}
