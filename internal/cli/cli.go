// Package cli implements the treemark command-line interface.
//
// This package provides commands for converting documents to Markdown,
// inspecting document trees, listing transforms, serving the conversion
// API, and managing the render cache. The CLI is built using cobra and
// supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - convert: Turn Markdown or HTML input into flavored Markdown
//   - tree: Dump the ingested document tree as JSON, DOT, or SVG
//   - transforms: List the registered transforms
//   - serve: Run the HTTP conversion API
//   - cache: Manage the render cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The CLI
// struct owns a single logger shared by every command.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/treemark/treemark/pkg/buildinfo"
	"github.com/treemark/treemark/pkg/cache"
	"github.com/treemark/treemark/pkg/hooks"
	"github.com/treemark/treemark/pkg/pipeline"
	"github.com/treemark/treemark/pkg/transform"
	"github.com/treemark/treemark/pkg/transform/builtin"
)

// appName is the application name used for directories and display.
const appName = "treemark"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Treemark converts documents to clean, flavored Markdown",
		Long:         `Treemark is a document conversion tool built around a polymorphic document tree: input is ingested into the tree, reshaped by pluggable transforms, and rendered as deterministic Markdown in the flavor you ask for.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.convertCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.transformsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newRegistry creates a transform registry with all builtins registered.
func (c *CLI) newRegistry() (*transform.Registry, error) {
	reg := transform.NewRegistry(c.Logger)
	if err := builtin.RegisterAll(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// newRunner creates a cached pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	reg, err := c.newRegistry()
	if err != nil {
		return nil, err
	}
	store, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	p := pipeline.New(reg, hooks.NewManager(), pipeline.WithLogger(c.Logger))
	runner := pipeline.NewRunner(p, store, nil)
	runner.Logger = c.Logger
	return runner, nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if url := os.Getenv("TREEMARK_REDIS_URL"); url != "" {
		return cache.NewRedisCache(url)
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/treemark/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
