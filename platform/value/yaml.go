package value

import (
	"encoding/hex"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

// YAMLNode builds a yaml.v3 node tree for v. Record keys keep their order.
func YAMLNode(v Value) *yaml.Node {
	switch x := v.(type) {
	case nil, Null:
		return scalar("!!null", "null")
	case Boolean:
		return scalar("!!bool", strconv.FormatBool(bool(x)))
	case Integer:
		return scalar("!!int", strconv.FormatInt(int64(x), 10))
	case Real:
		return scalar("!!float", yamlFloat(float64(x)))
	case Text:
		return scalar("!!str", string(x))
	case List:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range x {
			n.Content = append(n.Content, YAMLNode(item))
		}
		return n
	case *Record:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for k, item := range x.All() {
			n.Content = append(n.Content, scalar("!!str", k), YAMLNode(item))
		}
		return n
	case Reference:
		return &yaml.Node{
			Kind: yaml.MappingNode,
			Tag:  "!reference",
			Content: []*yaml.Node{
				scalar("!!str", "class"), scalar("!!str", x.Class),
				scalar("!!str", "handle"), scalar("!!str", x.Handle),
			},
		}
	case Unrepresentable:
		n := &yaml.Node{
			Kind: yaml.MappingNode,
			Tag:  "!unrepresentable",
			Content: []*yaml.Node{
				scalar("!!str", "tag"), scalar("!!str", x.Tag),
			},
		}
		if len(x.Raw) > 0 {
			n.Content = append(n.Content, scalar("!!str", "raw"), scalar("!!str", hex.EncodeToString(x.Raw)))
		}
		if x.Reason != "" {
			n.Content = append(n.Content, scalar("!!str", "reason"), scalar("!!str", x.Reason))
		}
		return n
	}
	return scalar("!!str", v.String())
}

func scalar(tag, text string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: text}
}

func yamlFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	return formatReal(f)
}

// MarshalYAML renders the record as an ordered mapping.
func (r *Record) MarshalYAML() (any, error) { return YAMLNode(r), nil }

// MarshalYAML renders the list as a sequence.
func (l List) MarshalYAML() (any, error) { return YAMLNode(l), nil }

// ToYAML marshals any value to YAML text.
func ToYAML(v Value) ([]byte, error) {
	return yaml.Marshal(YAMLNode(v))
}
