package markdown

import (
	"bytes"
	"encoding/json"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"

	"github.com/treemark/treemark/pkg/ast"
)

// frontMatter serializes document metadata ahead of the first block.
// Fields pass the include/exclude visibility policy and are emitted in
// sorted key order for deterministic output. Serialization failures drop
// the front matter instead of failing the render.
func (r *renderer) frontMatter(meta ast.Metadata) string {
	if r.opts.FrontMatter == FrontMatterNone || len(meta) == 0 {
		return ""
	}

	keys := make([]string, 0, len(meta))
	for key := range meta {
		if len(r.opts.MetaInclude) > 0 && !slices.Contains(r.opts.MetaInclude, key) {
			continue
		}
		if slices.Contains(r.opts.MetaExclude, key) {
			continue
		}
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return ""
	}
	slices.Sort(keys)

	switch r.opts.FrontMatter {
	case FrontMatterYAML:
		ordered := make(yaml.MapSlice, 0, len(keys))
		for _, key := range keys {
			ordered = append(ordered, yaml.MapItem{Key: key, Value: meta[key]})
		}
		out, err := yaml.Marshal(ordered)
		if err != nil {
			return ""
		}
		return "---\n" + string(out) + "---"

	case FrontMatterTOML:
		fields := make(map[string]any, len(keys))
		for _, key := range keys {
			fields[key] = meta[key]
		}
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(fields); err != nil {
			return ""
		}
		return "+++\n" + buf.String() + "+++"

	case FrontMatterJSON:
		fields := make(map[string]any, len(keys))
		for _, key := range keys {
			fields[key] = meta[key]
		}
		out, err := json.MarshalIndent(fields, "", "  ")
		if err != nil {
			return ""
		}
		return strings.TrimRight(string(out), "\n")
	}
	return ""
}
