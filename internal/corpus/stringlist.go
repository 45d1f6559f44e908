package corpus

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/skillctx/internal/errors"
)

// StringList decodes either a YAML sequence of strings or a single
// comma-separated string. Empty items are dropped.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *StringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		*l = splitList(strings.Split(s, ","))
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := value.Decode(&items); err != nil {
			return err
		}
		*l = splitList(items)
		return nil
	default:
		return errors.Newf("line %d: expected a string or a list of strings", value.Line)
	}
}

func splitList(items []string) StringList {
	out := make(StringList, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
