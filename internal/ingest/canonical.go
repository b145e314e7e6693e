package ingest

import (
	"bytes"
	"encoding/json"
	"sort"
)

// canonicalize re-marshals an already-decoded JSON value with object keys
// sorted at every nesting level, so the signature computed over these bytes
// is reproducible regardless of the input's original key ordering.
func canonicalize(v interface{}) ([]byte, error) {
	normalized := normalize(v)
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return nil, err
	}
	// json.Encoder.Encode appends a trailing newline; spec requires no
	// trailing whitespace in the canonical bytes.
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// normalize walks a decoded JSON value and replaces every map with an
// orderedMap so json.Marshal emits keys in sorted order, recursively.
func normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		om := orderedMap{keys: keys, values: make(map[string]interface{}, len(t))}
		for _, k := range keys {
			om.values[k] = normalize(t[k])
		}
		return om
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = normalize(e)
		}
		return out
	default:
		return t
	}
}

// orderedMap marshals its keys in the fixed sorted order captured at
// construction time, since Go's encoding/json always sorts map[string]any
// keys anyway — this exists to make that sort explicit and independent of
// any future encoding/json behavior change.
type orderedMap struct {
	keys   []string
	values map[string]interface{}
}

func (o orderedMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
