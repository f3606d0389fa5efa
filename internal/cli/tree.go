package cli

import (
	"fmt"
	stdio "io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	tmerrors "github.com/treemark/treemark/pkg/errors"
	"github.com/treemark/treemark/pkg/io"
	"github.com/treemark/treemark/pkg/render/dot"
)

// treeOpts holds the command-line flags for the tree command.
type treeOpts struct {
	output   string
	format   string // json, dot, svg
	from     string
	selector string
	showText bool
}

// treeCommand creates the tree inspection command: ingest a document and
// dump the resulting tree instead of rendering it.
func (c *CLI) treeCommand() *cobra.Command {
	var opts treeOpts

	cmd := &cobra.Command{
		Use:   "tree [file]",
		Short: "Dump a document's tree as JSON, DOT, or SVG",
		Long: `Ingest a document and dump the resulting tree, for inspecting what
ingestion produced before transforms run. JSON output round-trips
through 'treemark convert'; DOT and SVG visualize the structure.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateTreeFormat(opts.format); err != nil {
				return err
			}
			if opts.output != "" {
				if err := tmerrors.ValidateOutputPath(opts.output); err != nil {
					return err
				}
			}
			return c.runTree(args, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout, or input name for svg)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "json", "output format: json, dot, svg")
	cmd.Flags().StringVar(&opts.from, "from", "", "input format: markdown, html (default by extension)")
	cmd.Flags().StringVar(&opts.selector, "selector", "", "CSS selector scoping HTML ingestion")
	cmd.Flags().BoolVar(&opts.showText, "text", false, "include text snippets in dot/svg labels")

	return cmd
}

func validateTreeFormat(format string) error {
	switch format {
	case "json", "dot", "svg":
		return nil
	default:
		return fmt.Errorf("invalid format: %s (must be 'json', 'dot', or 'svg')", format)
	}
}

func (c *CLI) runTree(args []string, opts *treeOpts) error {
	input := "stdin"
	var source []byte
	var err error
	if len(args) == 1 {
		input = args[0]
		source, err = os.ReadFile(input)
	} else {
		source, err = readStdin()
	}
	if err != nil {
		return err
	}

	doc, err := ingestInput(source, input, &convertOpts{from: opts.from, selector: opts.selector})
	if err != nil {
		return err
	}
	c.Logger.Debug("ingested", "input", input, "nodes", doc.Count())

	var data []byte
	switch opts.format {
	case "json":
		var buf strings.Builder
		if err := io.WriteJSON(doc, &buf); err != nil {
			return err
		}
		data = []byte(buf.String())
	case "dot":
		data = []byte(dot.ToDOT(doc, dot.Options{ShowText: opts.showText}))
	case "svg":
		src := dot.ToDOT(doc, dot.Options{ShowText: opts.showText})
		data, err = dot.RenderSVG(src)
		if err != nil {
			return err
		}
	}

	if opts.output == "" && opts.format != "svg" {
		fmt.Println(string(data))
		return nil
	}

	outputPath := opts.output
	if outputPath == "" {
		outputPath = strings.TrimSuffix(input, filepath.Ext(input)) + "." + opts.format
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return err
	}
	printSuccess("Wrote %s tree", opts.format)
	printFile(outputPath)
	return nil
}

func readStdin() ([]byte, error) {
	return stdio.ReadAll(os.Stdin)
}
