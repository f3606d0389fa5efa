package markdown

import (
	"github.com/treemark/treemark/pkg/errors"
)

// Flavor names a Markdown dialect profile. The renderer consults the
// flavor's feature set to gate or degrade constructs the dialect cannot
// express.
type Flavor string

const (
	// FlavorCommonMark supports the core CommonMark constructs only.
	FlavorCommonMark Flavor = "commonmark"
	// FlavorGFM adds tables, strikethrough, task lists and footnotes.
	FlavorGFM Flavor = "gfm"
	// FlavorStrict is the minimal profile: core constructs, nothing else.
	FlavorStrict Flavor = "strict"
	// FlavorPandoc additionally supports definition lists, math,
	// superscript and subscript.
	FlavorPandoc Flavor = "pandoc"
)

// featureSet records which optional constructs a flavor can express
// natively. Anything false goes through the configured fallback mode.
type featureSet struct {
	tables          bool
	strikethrough   bool
	footnotes       bool
	definitionLists bool
	math            bool
	taskLists       bool
	underline       bool
	superscript     bool
	subscript       bool
}

var flavorFeatures = map[Flavor]featureSet{
	FlavorCommonMark: {},
	FlavorStrict:     {},
	FlavorGFM: {
		tables:        true,
		strikethrough: true,
		footnotes:     true,
		taskLists:     true,
	},
	FlavorPandoc: {
		tables:          true,
		strikethrough:   true,
		footnotes:       true,
		definitionLists: true,
		math:            true,
		taskLists:       true,
		underline:       true,
		superscript:     true,
		subscript:       true,
	},
}

// ParseFlavor resolves a flavor name from user input.
func ParseFlavor(name string) (Flavor, error) {
	f := Flavor(name)
	if _, ok := flavorFeatures[f]; !ok {
		return "", errors.New(errors.ErrCodeInvalidFlavor, "unknown flavor %q", name)
	}
	return f, nil
}

// Flavors returns the supported flavor names.
func Flavors() []string {
	return []string{
		string(FlavorCommonMark),
		string(FlavorGFM),
		string(FlavorPandoc),
		string(FlavorStrict),
	}
}

// HeadingStyle selects between hash-prefixed and setext headings. Setext
// only exists for levels 1 and 2; deeper headings always use hashes.
type HeadingStyle string

const (
	HeadingATX    HeadingStyle = "atx"
	HeadingSetext HeadingStyle = "setext"
)

// FallbackMode controls how constructs unsupported by the active flavor
// degrade.
type FallbackMode string

const (
	// FallbackDrop removes the construct from the output entirely.
	FallbackDrop FallbackMode = "drop"
	// FallbackPlain keeps the construct's content without any markup.
	FallbackPlain FallbackMode = "plain"
	// FallbackForce emits the Markdown syntax regardless of flavor support.
	FallbackForce FallbackMode = "force"
	// FallbackHTML emits an equivalent inline-HTML tag.
	FallbackHTML FallbackMode = "html"
)

// ParseFallback resolves a fallback mode from user input.
func ParseFallback(name string) (FallbackMode, error) {
	switch m := FallbackMode(name); m {
	case FallbackDrop, FallbackPlain, FallbackForce, FallbackHTML:
		return m, nil
	}
	return "", errors.New(errors.ErrCodeInvalidOptions, "unknown fallback mode %q", name)
}

// TableFallback controls how tables degrade under a flavor without table
// support.
type TableFallback string

const (
	TableFallbackDrop  TableFallback = "drop"
	TableFallbackASCII TableFallback = "ascii"
	TableFallbackHTML  TableFallback = "html"
)

// ParseTableFallback resolves a table fallback mode from user input.
func ParseTableFallback(name string) (TableFallback, error) {
	switch m := TableFallback(name); m {
	case TableFallbackDrop, TableFallbackASCII, TableFallbackHTML:
		return m, nil
	}
	return "", errors.New(errors.ErrCodeInvalidOptions, "unknown table fallback %q", name)
}

// LinkStyle selects inline links or numbered reference links.
type LinkStyle string

const (
	LinkInline    LinkStyle = "inline"
	LinkReference LinkStyle = "reference"
)

// RefPlacement controls where reference-link definitions are emitted.
type RefPlacement string

const (
	// RefEndOfDocument buffers all definitions and appends them once,
	// sorted by id, after the last block.
	RefEndOfDocument RefPlacement = "end"
	// RefAfterBlock flushes pending definitions immediately after the
	// top-level block that produced them.
	RefAfterBlock RefPlacement = "after-block"
)

// FrontMatterFormat selects the serialization of document metadata emitted
// ahead of the first block. Empty disables front matter.
type FrontMatterFormat string

const (
	FrontMatterNone FrontMatterFormat = ""
	FrontMatterYAML FrontMatterFormat = "yaml"
	FrontMatterTOML FrontMatterFormat = "toml"
	FrontMatterJSON FrontMatterFormat = "json"
)

// ParseFrontMatter resolves a front matter format from user input.
func ParseFrontMatter(name string) (FrontMatterFormat, error) {
	switch f := FrontMatterFormat(name); f {
	case FrontMatterNone, FrontMatterYAML, FrontMatterTOML, FrontMatterJSON:
		return f, nil
	}
	return "", errors.New(errors.ErrCodeInvalidOptions, "unknown front matter format %q", name)
}

// Options is the flat option bag consumed by a render. Zero value is not
// usable; build one with NewOptions.
type Options struct {
	Flavor        Flavor
	HeadingStyle  HeadingStyle
	HeadingOffset int

	// EmphasisDelimiter is the character used for emphasis and strong
	// emphasis, '*' or '_'.
	EmphasisDelimiter rune

	// Bullets is the unordered-list marker set, rotated by nesting depth.
	Bullets []string

	// PadTables aligns pipe-table columns to the widest cell. Disabling it
	// skips the width pass entirely.
	PadTables     bool
	TableFallback TableFallback

	// Fallback applies to every non-table construct the flavor cannot
	// express.
	Fallback FallbackMode

	LinkStyle    LinkStyle
	RefPlacement RefPlacement

	// Autolink wraps bare URLs found in text runs in angle brackets.
	Autolink bool

	FrontMatter FrontMatterFormat
	MetaInclude []string
	MetaExclude []string
}

// Option configures a render.
type Option func(*Options)

func WithFlavor(f Flavor) Option           { return func(o *Options) { o.Flavor = f } }
func WithHeadingStyle(s HeadingStyle) Option { return func(o *Options) { o.HeadingStyle = s } }
func WithHeadingOffset(n int) Option       { return func(o *Options) { o.HeadingOffset = n } }
func WithEmphasis(delim rune) Option       { return func(o *Options) { o.EmphasisDelimiter = delim } }
func WithBullets(symbols ...string) Option { return func(o *Options) { o.Bullets = symbols } }
func WithUnpaddedTables() Option           { return func(o *Options) { o.PadTables = false } }
func WithTableFallback(m TableFallback) Option {
	return func(o *Options) { o.TableFallback = m }
}
func WithFallback(m FallbackMode) Option { return func(o *Options) { o.Fallback = m } }

// WithReferenceLinks switches links to numbered reference style with the
// given definition placement.
func WithReferenceLinks(placement RefPlacement) Option {
	return func(o *Options) {
		o.LinkStyle = LinkReference
		o.RefPlacement = placement
	}
}

func WithoutAutolink() Option { return func(o *Options) { o.Autolink = false } }

// WithFrontMatter enables metadata front matter in the given format.
func WithFrontMatter(f FrontMatterFormat) Option {
	return func(o *Options) { o.FrontMatter = f }
}

// WithMetaInclude restricts front matter to the named fields.
func WithMetaInclude(keys ...string) Option {
	return func(o *Options) { o.MetaInclude = keys }
}

// WithMetaExclude hides the named fields from front matter.
func WithMetaExclude(keys ...string) Option {
	return func(o *Options) { o.MetaExclude = keys }
}

// NewOptions builds an option bag with defaults applied.
func NewOptions(opts ...Option) Options {
	o := Options{
		Flavor:            FlavorGFM,
		HeadingStyle:      HeadingATX,
		EmphasisDelimiter: '*',
		Bullets:           []string{"-", "*", "+"},
		PadTables:         true,
		TableFallback:     TableFallbackASCII,
		Fallback:          FallbackHTML,
		LinkStyle:         LinkInline,
		RefPlacement:      RefEndOfDocument,
		Autolink:          true,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o Options) features() featureSet {
	if f, ok := flavorFeatures[o.Flavor]; ok {
		return f
	}
	// Unknown flavors degrade to the minimal profile instead of failing.
	return featureSet{}
}
