package tester

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodePayload(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		want        any
	}{
		{"json object", "application/json", `{"id":1}`, map[string]any{"id": json.Number("1")}},
		{"json charset upper", "Application/JSON; charset=utf-8", `[1,2]`, []any{json.Number("1"), json.Number("2")}},
		{"json zero kept", "application/json", `0`, json.Number("0")},
		{"json large integer exact", "application/json", `{"id":9007199254740993}`, map[string]any{"id": json.Number("9007199254740993")}},
		{"json decimal kept", "application/json", `{"price":19.90}`, map[string]any{"price": json.Number("19.90")}},
		{"json false kept", "application/json", `false`, false},
		{"json null", "application/json", `null`, NoData},
		{"json empty object", "application/json", `{}`, NoData},
		{"json empty array", "application/json", `[]`, NoData},
		{"json empty string", "application/json", `""`, NoData},
		{"malformed json falls back to text", "application/json", `{"id":`, `{"id":`},
		{"empty json body", "application/json", ``, NoData},
		{"text", "text/plain", `hello`, "hello"},
		{"text not decoded", "text/plain", `{"id":1}`, `{"id":1}`},
		{"empty text", "text/plain", ``, NoData},
		{"no content type", "", `0`, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodePayload(tt.contentType, []byte(tt.body)))
		})
	}
}
