package tester

// Vars maps names to scalar or nested mapping values. The reserved
// "headers" key holds request headers.
type Vars map[string]any

// Fixtures maps operation keys to per-operation records. A record may hold
// "parameters" (a mapping) and "body" (any payload).
type Fixtures map[string]any

// Layer is one named source of substitution values.
type Layer struct {
	Name   string
	Values map[string]any
}

const (
	LayerVariables  = "variables"
	LayerFixture    = "fixture"
	LayerParameters = "parameters"
)

// Merge flattens layers into one table. Layers are applied in order, so a
// key in a later layer overrides the same key from an earlier one. Inputs
// are not modified.
func Merge(layers ...Layer) Vars {
	size := 0
	for _, l := range layers {
		size += len(l.Values)
	}
	merged := make(Vars, size)
	for _, l := range layers {
		for k, v := range l.Values {
			merged[k] = v
		}
	}
	return merged
}

// StepLayers returns the precedence list for one step, lowest first:
// global variables, the operation's fixture record, then the record's
// parameters.
func StepLayers(vars Vars, fixtures Fixtures, opKey string) []Layer {
	record := fixtures.Record(opKey)
	return []Layer{
		{Name: LayerVariables, Values: vars},
		{Name: LayerFixture, Values: record},
		{Name: LayerParameters, Values: asMap(record["parameters"])},
	}
}

// Record returns the fixture record for opKey, or nil when there is none
// or it is not a mapping.
func (f Fixtures) Record(opKey string) map[string]any {
	if f == nil {
		return nil
	}
	return asMap(f[opKey])
}

func asMap(v any) map[string]any {
	switch m := v.(type) {
	case map[string]any:
		return m
	case Vars:
		return m
	case Fixtures:
		return m
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, s := range m {
			out[k] = s
		}
		return out
	}
	return nil
}
