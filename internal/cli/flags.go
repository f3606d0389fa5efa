package cli

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/treemark/treemark/pkg/pipeline"
	"github.com/treemark/treemark/pkg/render/markdown"
	"github.com/treemark/treemark/pkg/transform"
)

// renderFlags holds the command-line flags shared by convert and serve
// that map onto renderer options.
type renderFlags struct {
	flavor        string
	headingStyle  string
	headingOffset int
	emphasis      string
	bullets       string
	unpadded      bool
	tableFallback string
	fallback      string
	refLinks      string
	noAutolink    bool
	frontMatter   string
	metaInclude   []string
	metaExclude   []string
}

// register adds the renderer flags to a command's flag set.
func (f *renderFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.flavor, "flavor", "gfm", "output flavor: gfm, commonmark, pandoc, strict")
	fs.StringVar(&f.headingStyle, "heading-style", "atx", "heading style: atx, setext")
	fs.IntVar(&f.headingOffset, "heading-offset", 0, "shift heading levels at render time")
	fs.StringVar(&f.emphasis, "emphasis", "*", "emphasis delimiter: * or _")
	fs.StringVar(&f.bullets, "bullets", "", "bullet rotation by depth, comma-separated (default \"-,*,+\")")
	fs.BoolVar(&f.unpadded, "unpadded-tables", false, "disable table cell padding")
	fs.StringVar(&f.tableFallback, "table-fallback", "ascii", "table fallback: ascii, html, drop")
	fs.StringVar(&f.fallback, "fallback", "html", "unsupported construct fallback: drop, plain, force, html")
	fs.StringVar(&f.refLinks, "reference-links", "", "use reference links: end or after-block placement")
	fs.BoolVar(&f.noAutolink, "no-autolink", false, "disable bare URL autolinking")
	fs.StringVar(&f.frontMatter, "front-matter", "", "emit front matter: yaml, toml, json")
	fs.StringSliceVar(&f.metaInclude, "meta-include", nil, "front matter fields to include (default all)")
	fs.StringSliceVar(&f.metaExclude, "meta-exclude", nil, "front matter fields to exclude")
}

// options translates the flags into renderer options, validating
// enumerated values.
func (f *renderFlags) options() ([]markdown.Option, error) {
	var opts []markdown.Option

	flavor, err := markdown.ParseFlavor(f.flavor)
	if err != nil {
		return nil, err
	}
	opts = append(opts, markdown.WithFlavor(flavor))

	switch f.headingStyle {
	case "", "atx":
	case "setext":
		opts = append(opts, markdown.WithHeadingStyle(markdown.HeadingSetext))
	default:
		return nil, fmt.Errorf("invalid heading style: %s (must be 'atx' or 'setext')", f.headingStyle)
	}

	if f.headingOffset != 0 {
		opts = append(opts, markdown.WithHeadingOffset(f.headingOffset))
	}

	switch f.emphasis {
	case "", "*":
	case "_":
		opts = append(opts, markdown.WithEmphasis('_'))
	default:
		if utf8.RuneCountInString(f.emphasis) != 1 {
			return nil, fmt.Errorf("invalid emphasis delimiter: %q", f.emphasis)
		}
		r, _ := utf8.DecodeRuneInString(f.emphasis)
		opts = append(opts, markdown.WithEmphasis(r))
	}

	if f.bullets != "" {
		opts = append(opts, markdown.WithBullets(strings.Split(f.bullets, ",")...))
	}
	if f.unpadded {
		opts = append(opts, markdown.WithUnpaddedTables())
	}

	if f.tableFallback != "" {
		m, err := markdown.ParseTableFallback(f.tableFallback)
		if err != nil {
			return nil, err
		}
		opts = append(opts, markdown.WithTableFallback(m))
	}
	if f.fallback != "" {
		m, err := markdown.ParseFallback(f.fallback)
		if err != nil {
			return nil, err
		}
		opts = append(opts, markdown.WithFallback(m))
	}

	switch f.refLinks {
	case "":
	case "end":
		opts = append(opts, markdown.WithReferenceLinks(markdown.RefEndOfDocument))
	case "after-block":
		opts = append(opts, markdown.WithReferenceLinks(markdown.RefAfterBlock))
	default:
		return nil, fmt.Errorf("invalid reference link placement: %s (must be 'end' or 'after-block')", f.refLinks)
	}

	if f.noAutolink {
		opts = append(opts, markdown.WithoutAutolink())
	}

	if f.frontMatter != "" {
		format, err := markdown.ParseFrontMatter(f.frontMatter)
		if err != nil {
			return nil, err
		}
		opts = append(opts, markdown.WithFrontMatter(format))
	}
	if len(f.metaInclude) > 0 {
		opts = append(opts, markdown.WithMetaInclude(f.metaInclude...))
	}
	if len(f.metaExclude) > 0 {
		opts = append(opts, markdown.WithMetaExclude(f.metaExclude...))
	}

	return opts, nil
}

// parseTransformSpecs parses repeated --transform flags. Each value is a
// transform name, optionally followed by parameters:
//
//	toc
//	heading-offset=offset:2
//	link-rewrite=from:http://a/,to:https://b/
//
// Parameter values are typed by shape: integers and booleans are
// converted, everything else stays a string.
func parseTransformSpecs(values []string) ([]pipeline.TransformSpec, error) {
	var specs []pipeline.TransformSpec
	for _, v := range values {
		name, rest, hasParams := strings.Cut(v, "=")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("empty transform name in %q", v)
		}
		spec := pipeline.TransformSpec{Name: name}
		if hasParams {
			params, err := parseParams(rest)
			if err != nil {
				return nil, fmt.Errorf("transform %q: %w", name, err)
			}
			spec.Params = params
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func parseParams(s string) (transform.Params, error) {
	params := make(transform.Params)
	for _, pair := range strings.Split(s, ",") {
		key, value, ok := strings.Cut(pair, ":")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("malformed parameter %q (want key:value)", pair)
		}
		params[strings.TrimSpace(key)] = typedValue(strings.TrimSpace(value))
	}
	return params, nil
}

func typedValue(s string) any {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}
