package server

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/matzehuels/sankey/pkg/buildinfo"
	"github.com/matzehuels/sankey/pkg/errors"
	"github.com/matzehuels/sankey/pkg/flow"
	"github.com/matzehuels/sankey/pkg/pipeline"
)

// contentTypes maps output formats to response media types.
var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatDOT:  "text/vnd.graphviz",
}

// inputTypes maps request media types to table formats.
var inputTypes = map[string]string{
	"text/csv":           "csv",
	"application/csv":    "csv",
	"application/json":   "json",
	"application/yaml":   "yaml",
	"application/x-yaml": "yaml",
	"text/yaml":          "yaml",
	"application/toml":   "toml",
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		buildinfo.Info
	}{"ok", buildinfo.Get()})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	switch len(opts.Formats) {
	case 0:
		opts.Formats = []string{pipeline.FormatSVG}
	case 1:
	default:
		s.fail(w, r, errors.New(errors.ErrCodeInvalidInput, "exactly one format per request, got %s", strings.Join(opts.Formats, ",")))
		return
	}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	format := opts.Formats[0]
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("X-Cache", cacheStatus(result.CacheInfo.RenderHit))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Artifacts[format]); err != nil {
		s.logger.Warn("write response", "err", err, "request_id", RequestIDFrom(r.Context()))
	}
}

// inspection is the JSON body of /v1/inspect.
type inspection struct {
	Total  float64       `json:"total"`
	Labels []string      `json:"labels"`
	Stages []stageReport `json:"stages"`
	Flows  []flowReport  `json:"flows"`
}

type stageReport struct {
	Name  string       `json:"name"`
	Total float64      `json:"total"`
	Nodes []nodeReport `json:"nodes"`
}

type nodeReport struct {
	Label  string  `json:"label"`
	Weight float64 `json:"weight"`
}

type flowReport struct {
	Stage  int     `json:"stage"`
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"weight"`
}

func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	t, err := s.runner.Load(r.Context(), opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inspect(flow.Aggregate(t)))
}

func inspect(g *flow.Graph) inspection {
	out := inspection{Total: g.Total, Labels: g.Labels}
	for _, st := range g.Stages {
		sr := stageReport{Name: st.Name, Total: st.Total}
		for _, n := range st.Nodes {
			sr.Nodes = append(sr.Nodes, nodeReport{Label: n.Label, Weight: n.Weight})
		}
		out.Stages = append(out.Stages, sr)
	}
	for _, flows := range g.Transitions {
		for _, f := range flows {
			out.Flows = append(out.Flows, flowReport{Stage: f.Stage, Source: f.Source, Target: f.Target, Weight: f.Weight})
		}
	}
	return out
}

// options builds pipeline options from the request body and query.
func (s *Server) options(w http.ResponseWriter, r *http.Request) (pipeline.Options, error) {
	opts := s.defaults
	opts.Logger = s.logger

	q, format, input := queryOptions(r.URL.Query())
	if err := pipeline.DecodeOptions(q, &opts); err != nil {
		return pipeline.Options{}, err
	}
	if format != "" {
		opts.Formats = pipeline.SplitFormats(format)
	}

	// Tables only ever come from the body.
	opts.Input = ""
	opts.InputFormat = input
	if opts.InputFormat == "" {
		opts.InputFormat = bodyFormat(r.Header.Get("Content-Type"))
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		return pipeline.Options{}, err
	}
	if len(body) == 0 {
		return pipeline.Options{}, errors.New(errors.ErrCodeEmptyInput, "request body is empty")
	}
	opts.Source = body
	return opts, nil
}

// queryOptions splits the query into pipeline option keys, the output
// format and the input format. Repeated parameters are joined by commas.
func queryOptions(values url.Values) (opts map[string]any, format, input string) {
	opts = make(map[string]any, len(values))
	for k, vs := range values {
		v := strings.Join(vs, ",")
		switch k {
		case "format":
			format = v
		case "input":
			input = v
		default:
			opts[k] = v
		}
	}
	return opts, format, input
}

func bodyFormat(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return inputTypes[mt]
}

func cacheStatus(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
