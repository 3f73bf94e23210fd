package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppEntry is one row of the applications menu. Exactly one of Command,
// Logout or Submenu is set unless the entry is a divider.
//
// Entries may be written as mappings:
//
//	applications:
//	  - label: Terminal
//	    icon: utilities-terminal
//	    command: x-terminal-emulator
//	  - label: Games
//	    submenu:
//	      - label: Chess
//	        command: xboard
//
// or, for a divider, as the scalar "---".
type AppEntry struct {
	Label   string     `yaml:"label"`
	Icon    string     `yaml:"icon,omitempty"`
	Command string     `yaml:"command,omitempty"`
	Logout  bool       `yaml:"logout,omitempty"`
	Submenu []AppEntry `yaml:"submenu,omitempty"`
	Divider bool       `yaml:"divider,omitempty"`
}

const dividerScalar = "---"

func (e *AppEntry) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if strings.TrimSpace(value.Value) != dividerScalar {
			return fmt.Errorf("line %d: application entries must be mappings or %q", value.Line, dividerScalar)
		}
		*e = AppEntry{Divider: true}
		return nil
	case yaml.MappingNode:
		type plain AppEntry
		var out plain
		if err := decodeNodeStrict(value, &out); err != nil {
			return err
		}
		*e = AppEntry(out)
		e.Label = strings.TrimSpace(e.Label)
		e.Command = strings.TrimSpace(e.Command)
		return nil
	default:
		return fmt.Errorf("line %d: application entries must be mappings or %q", value.Line, dividerScalar)
	}
}

// decodeNodeStrict re-encodes node so the strict decoder rejects unknown
// keys inside custom unmarshalers too.
func decodeNodeStrict(node *yaml.Node, out any) error {
	data, err := yaml.Marshal(node)
	if err != nil {
		return err
	}
	return decodeStrictYAML(data, out)
}
