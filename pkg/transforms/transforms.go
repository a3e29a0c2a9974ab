// Package transforms loads named text styles (YAML/JSON) and turns them into
// scryfall.TextTransform functions.
package transforms

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samvad-hq/scryfall-go/pkg/scryfall"
	"gopkg.in/yaml.v3"
)

// Style describes how symbols and text are rewritten.
type Style struct {
	ID string `json:"id" yaml:"id"`
	// SymbolPrefix and SymbolSuffix wrap the code of every "{X}" symbol.
	// Symbols are left untouched when both are empty.
	SymbolPrefix string `json:"symbol_prefix" yaml:"symbol_prefix"`
	SymbolSuffix string `json:"symbol_suffix" yaml:"symbol_suffix"`
	// Replace holds literal substitutions applied after symbol rewriting.
	Replace map[string]string `json:"replace" yaml:"replace"`
	// Case is "upper", "lower" or empty.
	Case string `json:"case" yaml:"case"`
}

type styleFile struct {
	Styles []Style `json:"styles" yaml:"styles"`
}

// Registry holds styles by id. The built-in styles "none", "slack" and
// "discord" are always present; file entries may override them.
type Registry struct {
	styles map[string]Style
}

// Builtin returns a registry holding only the built-in styles.
func Builtin() *Registry {
	return &Registry{styles: map[string]Style{
		"none":    {ID: "none"},
		"slack":   {ID: "slack", SymbolPrefix: ":mana-", SymbolSuffix: ":"},
		"discord": {ID: "discord", SymbolPrefix: ":mana", SymbolSuffix: ":"},
	}}
}

// Load reads styles from a YAML/JSON file on top of the built-ins. An empty
// path yields Builtin().
func Load(path string) (*Registry, error) {
	reg := Builtin()
	if strings.TrimSpace(path) == "" {
		return reg, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open transforms file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read transforms file: %w", err)
	}

	sf, err := parseStyles(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(sf.Styles))
	for i := range sf.Styles {
		s := sanitizeStyle(sf.Styles[i])
		if err := validateStyle(s); err != nil {
			return nil, fmt.Errorf("styles[%d]: %w", i, err)
		}
		if _, dup := seen[s.ID]; dup {
			return nil, fmt.Errorf("duplicate style id %q", s.ID)
		}
		seen[s.ID] = struct{}{}
		reg.styles[s.ID] = s
	}
	return reg, nil
}

func parseStyles(data []byte, ext string) (styleFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var sf styleFile
		if err := d.fn(data, &sf); err == nil {
			return sf, nil
		}
	}
	return styleFile{}, errors.New("transforms file format not recognized (expected YAML or JSON)")
}

func sanitizeStyle(s Style) Style {
	s.ID = strings.ToLower(strings.TrimSpace(s.ID))
	s.Case = strings.ToLower(strings.TrimSpace(s.Case))
	return s
}

func validateStyle(s Style) error {
	if s.ID == "" {
		return errors.New("id is required")
	}
	switch s.Case {
	case "", "upper", "lower":
	default:
		return fmt.Errorf("unsupported case %q for style %q", s.Case, s.ID)
	}
	return nil
}

// IDs returns the known style ids in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.styles))
	for id := range r.styles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Transform returns the TextTransform for id. The empty id and "none" yield
// nil, which leaves text untouched.
func (r *Registry) Transform(id string) (scryfall.TextTransform, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return nil, nil
	}
	s, ok := r.styles[id]
	if !ok {
		return nil, fmt.Errorf("unknown emoji style %q (known: %s)", id, strings.Join(r.IDs(), ", "))
	}
	return s.Transform(), nil
}

// Transform compiles the style. A style that changes nothing yields nil.
func (s Style) Transform() scryfall.TextTransform {
	var steps []scryfall.TextTransform
	if s.SymbolPrefix != "" || s.SymbolSuffix != "" {
		steps = append(steps, scryfall.EmojiTransform(s.SymbolPrefix, s.SymbolSuffix))
	}
	if len(s.Replace) > 0 {
		pairs := make([]string, 0, len(s.Replace)*2)
		keys := make([]string, 0, len(s.Replace))
		for k := range s.Replace {
			keys = append(keys, k)
		}
		// longest first so overlapping keys resolve deterministically
		sort.Slice(keys, func(i, j int) bool {
			if len(keys[i]) != len(keys[j]) {
				return len(keys[i]) > len(keys[j])
			}
			return keys[i] < keys[j]
		})
		for _, k := range keys {
			pairs = append(pairs, k, s.Replace[k])
		}
		steps = append(steps, strings.NewReplacer(pairs...).Replace)
	}
	switch s.Case {
	case "upper":
		steps = append(steps, strings.ToUpper)
	case "lower":
		steps = append(steps, strings.ToLower)
	}

	if len(steps) == 0 {
		return nil
	}
	return func(text string) string {
		for _, step := range steps {
			text = step(text)
		}
		return text
	}
}
