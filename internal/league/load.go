package league

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type overrideFile struct {
	Leagues []yaml.Node `yaml:"leagues"`
}

// ApplyOverrides decodes a YAML document of league overrides onto base.
// Entries are matched by code; fields absent from an entry keep the base
// value. An unknown code must describe a complete league.
func ApplyOverrides(data []byte, base []League) ([]League, error) {
	var file overrideFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse league overrides: %w", err)
	}

	out := make([]League, len(base))
	copy(out, base)
	index := make(map[string]int, len(out))
	for i, l := range out {
		index[l.Code] = i
	}

	for i := range file.Leagues {
		node := &file.Leagues[i]
		var head struct {
			Code string `yaml:"code"`
		}
		if err := node.Decode(&head); err != nil {
			return nil, fmt.Errorf("decode league override %d: %w", i, err)
		}
		if head.Code == "" {
			return nil, fmt.Errorf("league override %d: code is required", i)
		}

		pos, ok := index[head.Code]
		if !ok {
			out = append(out, League{})
			pos = len(out) - 1
			index[head.Code] = pos
		}
		l := out[pos]
		if err := node.Decode(&l); err != nil {
			return nil, fmt.Errorf("decode league %s: %w", head.Code, err)
		}
		out[pos] = l
	}
	return out, nil
}

// LoadRegistry builds a registry from the built-in leagues, applying the
// override file at path when one is given
func LoadRegistry(path string) (*Registry, error) {
	leagues := Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read league overrides: %w", err)
		}
		leagues, err = ApplyOverrides(data, leagues)
		if err != nil {
			return nil, err
		}
	}
	return NewRegistry(leagues...)
}
