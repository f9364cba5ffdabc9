package parser

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Format is the declared document encoding. It is an explicit input;
// the parser never sniffs it.
type Format string

// Supported document formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Codec decodes raw specification bytes into a document tree plus a
// JSON-normalized rendering of the same bytes.
type Codec interface {
	Name() string
	Decode(data []byte) (map[string]interface{}, []byte, error)
}

// CodecFor returns the codec for a format, or an error for an unknown one.
func CodecFor(format Format) (Codec, error) {
	switch format {
	case FormatJSON:
		return jsonCodec{}, nil
	case FormatYAML:
		return yamlCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown document format %q", format)
	}
}

type jsonCodec struct{}

func (jsonCodec) Name() string { return string(FormatJSON) }

func (jsonCodec) Decode(data []byte) (map[string]interface{}, []byte, error) {
	var tree map[string]interface{}
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, nil, err
	}
	return tree, data, nil
}

type yamlCodec struct{}

func (yamlCodec) Name() string { return string(FormatYAML) }

func (yamlCodec) Decode(data []byte) (map[string]interface{}, []byte, error) {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, nil, err
	}
	tree, ok := stringifyKeys(raw).(map[string]interface{})
	if !ok {
		return nil, nil, fmt.Errorf("document root is not a mapping")
	}
	normalized, err := json.Marshal(tree)
	if err != nil {
		return nil, nil, err
	}
	return tree, normalized, nil
}

// stringifyKeys rewrites interface-keyed maps so the tree can be
// re-encoded as JSON.
func stringifyKeys(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		for k, item := range val {
			val[k] = stringifyKeys(item)
		}
		return val
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = stringifyKeys(item)
		}
		return out
	case []interface{}:
		for i, item := range val {
			val[i] = stringifyKeys(item)
		}
		return val
	default:
		return v
	}
}
