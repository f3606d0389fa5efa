package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	tmerrors "github.com/treemark/treemark/pkg/errors"
	"github.com/treemark/treemark/pkg/observability"
	"github.com/treemark/treemark/pkg/pipeline"
	"github.com/treemark/treemark/pkg/render/markdown"
	"github.com/treemark/treemark/pkg/transform"
)

// serveCommand creates the HTTP API command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	var noCache bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP conversion API",
		Long: `Serve the conversion pipeline over HTTP.

Endpoints:
  POST /convert     convert a document to Markdown
  GET  /transforms  list registered transforms
  GET  /healthz     liveness probe`,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := c.newRunner(noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			reg, err := c.newRegistry()
			if err != nil {
				return err
			}

			srv := &server{cli: c, runner: runner, registry: reg}
			c.Logger.Info("serving", "addr", addr)
			return http.ListenAndServe(addr, srv.routes())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the render cache")
	return cmd
}

type server struct {
	cli      *CLI
	runner   *pipeline.Runner
	registry *transform.Registry
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Post("/convert", s.handleConvert)
	r.Get("/transforms", s.handleTransforms)
	r.Get("/healthz", s.handleHealthz)
	return r
}

// observe emits HTTP hook events and request logs.
func (s *server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		duration := time.Since(start)
		observability.HTTP().OnResponse(r.Context(), r.Method, r.URL.Path, ww.Status(), duration)
		s.cli.Logger.Debug("request",
			"method", r.Method, "path", r.URL.Path,
			"status", ww.Status(), "duration", duration.Round(time.Millisecond))
	})
}

// convertRequest is the POST /convert payload.
type convertRequest struct {
	// Source is the document text.
	Source string `json:"source"`
	// Format is "markdown" (default) or "html".
	Format string `json:"format,omitempty"`
	// Selector scopes HTML ingestion.
	Selector string `json:"selector,omitempty"`

	Flavor         string   `json:"flavor,omitempty"`
	HeadingStyle   string   `json:"heading_style,omitempty"`
	HeadingOffset  int      `json:"heading_offset,omitempty"`
	FrontMatter    string   `json:"front_matter,omitempty"`
	ReferenceLinks string   `json:"reference_links,omitempty"`
	MetaExclude    []string `json:"meta_exclude,omitempty"`

	Transforms []transformRequest `json:"transforms,omitempty"`
}

type transformRequest struct {
	Name   string           `json:"name"`
	Params transform.Params `json:"params,omitempty"`
}

type convertResponse struct {
	Markdown string   `json:"markdown"`
	Cached   bool     `json:"cached"`
	Nodes    int      `json:"nodes,omitempty"`
	Applied  []string `json:"applied,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (s *server) handleConvert(w http.ResponseWriter, r *http.Request) {
	var req convertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if req.Source == "" {
		writeError(w, http.StatusBadRequest, errors.New("source is required"))
		return
	}

	doc, err := ingestInput([]byte(req.Source), "request", &convertOpts{from: req.Format, selector: req.Selector})
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	opts, err := buildRequestOptions(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, info, err := s.runner.ExecuteWithCacheInfo(r.Context(), doc, opts)
	if err != nil {
		status := http.StatusInternalServerError
		if tmerrors.Is(err, tmerrors.ErrCodeInvalidInput) || tmerrors.Is(err, tmerrors.ErrCodeInvalidParam) ||
			tmerrors.Is(err, tmerrors.ErrCodeUnknownTransform) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err)
		return
	}

	writeJSON(w, http.StatusOK, convertResponse{
		Markdown: result.Markdown,
		Cached:   info.Hit,
		Nodes:    result.Stats.NodeCount,
		Applied:  result.Stats.Applied,
	})
}

// buildRequestOptions maps the request body onto pipeline options,
// reusing the CLI flag validation.
func buildRequestOptions(req *convertRequest) (pipeline.Options, error) {
	flags := renderFlags{
		flavor:        req.Flavor,
		headingStyle:  req.HeadingStyle,
		headingOffset: req.HeadingOffset,
		frontMatter:   req.FrontMatter,
		refLinks:      req.ReferenceLinks,
		metaExclude:   req.MetaExclude,
		tableFallback: "ascii",
		fallback:      "html",
	}
	if flags.flavor == "" {
		flags.flavor = string(markdown.FlavorGFM)
	}
	renderOpts, err := flags.options()
	if err != nil {
		return pipeline.Options{}, err
	}

	specs := make([]pipeline.TransformSpec, len(req.Transforms))
	for i, t := range req.Transforms {
		specs[i] = pipeline.TransformSpec{Name: t.Name, Params: t.Params}
	}
	return pipeline.Options{Transforms: specs, RenderOptions: renderOpts}, nil
}

type transformInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Priority    int      `json:"priority"`
	Requires    []string `json:"requires,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

func (s *server) handleTransforms(w http.ResponseWriter, r *http.Request) {
	var infos []transformInfo
	for _, name := range s.registry.Names() {
		m, ok := s.registry.Get(name)
		if !ok {
			continue
		}
		infos = append(infos, transformInfo{
			Name:        m.Name,
			Description: m.Description,
			Priority:    m.Priority,
			Requires:    m.Requires,
			Tags:        m.Tags,
		})
	}
	writeJSON(w, http.StatusOK, infos)
}

func (s *server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	resp := errorResponse{Error: err.Error()}
	if code := tmerrors.GetCode(err); code != "" {
		resp.Code = string(code)
	}
	writeJSON(w, status, resp)
}
