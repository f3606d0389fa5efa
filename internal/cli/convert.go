package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/treemark/treemark/pkg/ast"
	tmerrors "github.com/treemark/treemark/pkg/errors"
	"github.com/treemark/treemark/pkg/observability"
	ingesthtml "github.com/treemark/treemark/pkg/ingest/html"
	ingestmd "github.com/treemark/treemark/pkg/ingest/markdown"
	"github.com/treemark/treemark/pkg/pipeline"
)

// convertOpts holds the command-line flags for the convert command.
type convertOpts struct {
	render      renderFlags
	transforms  []string // repeated --transform values
	output      string   // output file, only valid for a single input
	outDir      string   // output directory for batch conversion
	from        string   // input format override: markdown, html
	selector    string   // CSS selector scoping for HTML input
	noCache     bool
	keepGoing   bool // continue batch conversion past failures
	interactive bool // pick transforms interactively
}

// convertCommand creates the convert command, the main entry point:
// ingest one or more documents, run the transform pipeline, and write
// flavored Markdown.
func (c *CLI) convertCommand() *cobra.Command {
	var opts convertOpts

	cmd := &cobra.Command{
		Use:   "convert [file...]",
		Short: "Convert documents to Markdown",
		Long: `Convert Markdown or HTML documents to clean, flavored Markdown.

With no arguments, reads from stdin and writes to stdout. With file
arguments, each file is converted; use --output for a single file or
--out-dir for batches. The input format is inferred from the file
extension and can be overridden with --from.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.output != "" {
				if len(args) > 1 {
					return fmt.Errorf("--output requires a single input; use --out-dir for batches")
				}
				if err := tmerrors.ValidateOutputPath(opts.output); err != nil {
					return err
				}
			}
			return c.runConvert(cmd.Context(), args, &opts)
		},
	}

	opts.render.register(cmd)
	cmd.Flags().StringArrayVarP(&opts.transforms, "transform", "t", nil, "transform to apply, name[=key:value,...] (repeatable)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single input only)")
	cmd.Flags().StringVar(&opts.outDir, "out-dir", "", "output directory for batch conversion")
	cmd.Flags().StringVar(&opts.from, "from", "", "input format: markdown, html (default by extension)")
	cmd.Flags().StringVar(&opts.selector, "selector", "", "CSS selector scoping HTML ingestion")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the render cache")
	cmd.Flags().BoolVar(&opts.keepGoing, "keep-going", false, "continue batch conversion past failures")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "pick transforms interactively")

	return cmd
}

func (c *CLI) runConvert(ctx context.Context, args []string, opts *convertOpts) error {
	renderOpts, err := opts.render.options()
	if err != nil {
		return err
	}
	specs, err := parseTransformSpecs(opts.transforms)
	if err != nil {
		return err
	}

	if opts.interactive {
		reg, err := c.newRegistry()
		if err != nil {
			return err
		}
		picked, err := pickTransforms(reg)
		if err != nil {
			return err
		}
		for _, name := range picked {
			specs = append(specs, pipeline.TransformSpec{Name: name})
		}
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	pipeOpts := pipeline.Options{Transforms: specs, RenderOptions: renderOpts}

	if len(args) == 0 {
		return c.convertStdin(ctx, runner, pipeOpts, opts)
	}

	failures := 0
	for _, input := range args {
		if err := c.convertFile(ctx, runner, input, pipeOpts, opts); err != nil {
			if !opts.keepGoing {
				return err
			}
			failures++
			printError("%s: %v", input, err)
		}
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d conversions failed", failures, len(args))
	}
	return nil
}

// convertStdin converts stdin to stdout. Status output goes to stderr so
// the Markdown stream stays clean.
func (c *CLI) convertStdin(ctx context.Context, runner *pipeline.Runner, pipeOpts pipeline.Options, opts *convertOpts) error {
	source, err := io.ReadAll(os.Stdin)
	if err != nil {
		return err
	}

	doc, err := ingestInput(source, "stdin", opts)
	if err != nil {
		return err
	}

	result, info, err := runner.ExecuteWithCacheInfo(ctx, doc, pipeOpts)
	if err != nil {
		return err
	}
	c.Logger.Debug("converted stdin", "bytes", len(result.Markdown), "cached", info.Hit)

	_, err = fmt.Fprintln(os.Stdout, result.Markdown)
	return err
}

func (c *CLI) convertFile(ctx context.Context, runner *pipeline.Runner, input string, pipeOpts pipeline.Options, opts *convertOpts) error {
	track := newProgress(c.Logger)

	spin := newSpinner(ctx, fmt.Sprintf("Converting %s", input))
	spin.Start()

	source, err := os.ReadFile(input)
	if err != nil {
		spin.Stop()
		return err
	}

	doc, err := ingestInput(source, input, opts)
	if err != nil {
		spin.Stop()
		return err
	}

	result, info, err := runner.ExecuteWithCacheInfo(ctx, doc, pipeOpts)
	if err != nil {
		spin.Stop()
		return err
	}
	spin.Stop()

	outputPath := convertOutputPath(input, opts)
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(outputPath, []byte(result.Markdown+"\n"), 0o644); err != nil {
		return err
	}

	track.done(fmt.Sprintf("Converted %s", input))
	printFile(outputPath)
	printStats(result.Stats.NodeCount, len(result.Markdown), info.Hit)
	return nil
}

// ingestInput parses source as Markdown or HTML, by the --from override
// or the file extension.
func ingestInput(source []byte, name string, opts *convertOpts) (*ast.Node, error) {
	format := opts.from
	if format == "" {
		switch strings.ToLower(filepath.Ext(name)) {
		case ".html", ".htm", ".xhtml":
			format = "html"
		default:
			format = "markdown"
		}
	}

	start := time.Now()
	observability.Pipeline().OnIngestStart(context.Background(), format, name)

	var doc *ast.Node
	var err error
	switch format {
	case "markdown", "md":
		doc, err = ingestmd.Ingest(source)
	case "html":
		var ingestOpts []ingesthtml.Option
		if opts.selector != "" {
			ingestOpts = append(ingestOpts, ingesthtml.WithSelector(opts.selector))
		}
		doc, err = ingesthtml.Ingest(strings.NewReader(string(source)), ingestOpts...)
	default:
		return nil, fmt.Errorf("unknown input format: %s (must be 'markdown' or 'html')", format)
	}

	nodes := 0
	if doc != nil {
		nodes = doc.Count()
	}
	observability.Pipeline().OnIngestComplete(context.Background(), format, name, nodes, time.Since(start), err)
	return doc, err
}

// convertOutputPath derives the output file for an input file.
func convertOutputPath(input string, opts *convertOpts) string {
	if opts.output != "" {
		return opts.output
	}
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)) + ".md"
	if opts.outDir != "" {
		return filepath.Join(opts.outDir, base)
	}
	out := filepath.Join(filepath.Dir(input), base)
	if out == input {
		// Markdown converted in place would clobber its own input.
		out = strings.TrimSuffix(input, filepath.Ext(input)) + ".out.md"
	}
	return out
}
