// Package catalog resolves the internal level and game mode names reported by
// the server lists into display names, map artwork and short mode codes.
package catalog

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type MapInfo struct {
	Internal string `yaml:"internal"`
	Display  string `yaml:"display"`
	Image    string `yaml:"image"`
}

type ModeInfo struct {
	Internal string `yaml:"internal"`
	Short    string `yaml:"short"`
}

type Catalog struct {
	maps  map[string]MapInfo
	modes map[string]ModeInfo
}

type document struct {
	Maps  []MapInfo  `yaml:"maps"`
	Modes []ModeInfo `yaml:"modes"`
}

// Parse builds a Catalog from a YAML document. Duplicate or unnamed entries
// are rejected.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c := &Catalog{
		maps:  make(map[string]MapInfo, len(doc.Maps)),
		modes: make(map[string]ModeInfo, len(doc.Modes)),
	}

	for _, m := range doc.Maps {
		if m.Internal == "" {
			return nil, fmt.Errorf("parse catalog: map entry without internal name")
		}
		if _, dup := c.maps[m.Internal]; dup {
			return nil, fmt.Errorf("parse catalog: duplicate map %q", m.Internal)
		}
		c.maps[m.Internal] = m
	}

	for _, m := range doc.Modes {
		if m.Internal == "" {
			return nil, fmt.Errorf("parse catalog: mode entry without internal name")
		}
		if _, dup := c.modes[m.Internal]; dup {
			return nil, fmt.Errorf("parse catalog: duplicate mode %q", m.Internal)
		}
		c.modes[m.Internal] = m
	}

	return c, nil
}

var loadDefault = sync.OnceValue(func() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(err)
	}
	return c
})

// Default returns the catalogue compiled into the binary.
func Default() *Catalog {
	return loadDefault()
}

// InternalMapName strips the level path, "Levels/MP/MP_Amiens/MP_Amiens" becomes "MP_Amiens".
func InternalMapName(mapName string) string {
	if i := strings.LastIndex(mapName, "/"); i >= 0 {
		return mapName[i+1:]
	}
	return mapName
}

// DisplayName falls back to the internal name for unknown maps.
func (c *Catalog) DisplayName(internal string) string {
	if m, ok := c.maps[internal]; ok && m.Display != "" {
		return m.Display
	}
	return internal
}

// ImageURL is empty for unknown maps.
func (c *Catalog) ImageURL(internal string) string {
	return c.maps[internal].Image
}

// ModeShort is empty for unknown modes.
func (c *Catalog) ModeShort(mode string) string {
	return c.modes[mode].Short
}

func (c *Catalog) Len() (maps, modes int) {
	return len(c.maps), len(c.modes)
}
