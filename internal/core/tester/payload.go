package tester

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

// NoData replaces empty response payloads.
const NoData = "No Data"

// DecodePayload turns a response body into a result payload. JSON content
// types are decoded when the body is valid JSON; everything else is kept as
// text. Numbers are kept as json.Number so large integers survive.
func DecodePayload(contentType string, body []byte) any {
	if strings.Contains(strings.ToLower(contentType), "application/json") && gjson.ValidBytes(body) {
		if v, err := decodeJSON(body); err == nil {
			return NormalizePayload(v)
		}
	}
	return NormalizePayload(string(body))
}

func decodeJSON(body []byte) (any, error) {
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()

	var v any
	if err := decoder.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// NormalizePayload maps empty payloads (nil, empty text, empty array, empty
// object) to NoData. Zero and false are answers and pass through.
func NormalizePayload(v any) any {
	switch x := v.(type) {
	case nil:
		return NoData
	case string:
		if x == "" {
			return NoData
		}
	case []any:
		if len(x) == 0 {
			return NoData
		}
	case map[string]any:
		if len(x) == 0 {
			return NoData
		}
	}
	return v
}
