package tester

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Token is a literal run of text or a placeholder in a parsed template.
type Token struct {
	Literal string
	Name    string // set for placeholders
	Double  bool   // {{name}} rather than {name}
}

// IsPlaceholder reports whether the token is a placeholder.
func (t Token) IsPlaceholder() bool {
	return t.Name != ""
}

func (t Token) raw() string {
	if !t.IsPlaceholder() {
		return t.Literal
	}
	if t.Double {
		return "{{" + t.Name + "}}"
	}
	return "{" + t.Name + "}"
}

// Template is a text split into literals and {name} / {{name}} placeholders.
type Template struct {
	Tokens []Token
}

// ParseTemplate splits s into tokens. Braces that do not form a placeholder
// stay literal text, so parsing never fails.
func ParseTemplate(s string) Template {
	var (
		tokens []Token
		lit    strings.Builder
	)
	flush := func() {
		if lit.Len() > 0 {
			tokens = append(tokens, Token{Literal: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(s); {
		if s[i] != '{' {
			lit.WriteByte(s[i])
			i++
			continue
		}
		if name, n, ok := scanPlaceholder(s[i:], true); ok {
			flush()
			tokens = append(tokens, Token{Name: name, Double: true})
			i += n
			continue
		}
		if name, n, ok := scanPlaceholder(s[i:], false); ok {
			flush()
			tokens = append(tokens, Token{Name: name})
			i += n
			continue
		}
		lit.WriteByte('{')
		i++
	}
	flush()

	return Template{Tokens: tokens}
}

// scanPlaceholder reads a placeholder at the start of s and returns its
// name and byte length.
func scanPlaceholder(s string, double bool) (string, int, bool) {
	open, closing := "{", "}"
	if double {
		open, closing = "{{", "}}"
	}
	if !strings.HasPrefix(s, open) {
		return "", 0, false
	}
	end := strings.Index(s[len(open):], closing)
	if end <= 0 {
		return "", 0, false
	}
	name := s[len(open) : len(open)+end]
	if strings.ContainsAny(name, "{}") {
		return "", 0, false
	}
	return name, len(open) + end + len(closing), true
}

// Fallback resolves a single-brace placeholder the context could not.
type Fallback func(name string) (string, bool)

// Render substitutes placeholders from ctx in one pass. A name matches an
// exact key first; a dotted name key.sub then matches sub inside the
// mapping stored under key. Substituted values are never rescanned.
// Unresolved placeholders are written back unchanged.
func (t Template) Render(ctx Vars, fallback Fallback) string {
	var out strings.Builder
	for _, tok := range t.Tokens {
		if !tok.IsPlaceholder() {
			out.WriteString(tok.Literal)
			continue
		}
		if v, ok := Lookup(ctx, tok.Name); ok {
			out.WriteString(v)
			continue
		}
		if !tok.Double && fallback != nil {
			if v, ok := fallback(tok.Name); ok {
				out.WriteString(v)
				continue
			}
		}
		out.WriteString(tok.raw())
	}
	return out.String()
}

// Placeholders returns the placeholder names in order of appearance.
func (t Template) Placeholders() []string {
	var names []string
	for _, tok := range t.Tokens {
		if tok.IsPlaceholder() {
			names = append(names, tok.Name)
		}
	}
	return names
}

// Substitute parses text and renders it against ctx.
func Substitute(text string, ctx Vars) string {
	return ParseTemplate(text).Render(ctx, nil)
}

// Lookup resolves name to the string form of a scalar in ctx. A literal key
// containing a dot wins over the nested mapping form.
func Lookup(ctx Vars, name string) (string, bool) {
	if v, ok := ctx[name]; ok {
		if s, ok := FormatScalar(v); ok {
			return s, true
		}
	}
	key, sub, found := strings.Cut(name, ".")
	if !found {
		return "", false
	}
	nested := asMap(ctx[key])
	if nested == nil {
		return "", false
	}
	v, ok := nested[sub]
	if !ok {
		return "", false
	}
	return FormatScalar(v)
}

// FormatScalar renders text, booleans and numbers. Anything else is not a
// scalar and reports false.
func FormatScalar(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case bool:
		return strconv.FormatBool(x), true
	case int:
		return strconv.Itoa(x), true
	case int8:
		return strconv.FormatInt(int64(x), 10), true
	case int16:
		return strconv.FormatInt(int64(x), 10), true
	case int32:
		return strconv.FormatInt(int64(x), 10), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case uint:
		return strconv.FormatUint(uint64(x), 10), true
	case uint8:
		return strconv.FormatUint(uint64(x), 10), true
	case uint16:
		return strconv.FormatUint(uint64(x), 10), true
	case uint32:
		return strconv.FormatUint(uint64(x), 10), true
	case uint64:
		return strconv.FormatUint(x, 10), true
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case json.Number:
		return x.String(), true
	}
	return "", false
}
