// Package server exposes grammar compilation and constrained generation over
// HTTP. Compilation endpoints are pure; the generate endpoint compiles the
// request's schema and proxies the prompt plus compiled regex to the
// generation backend, streaming responses back as NDJSON.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/coax-ai/coax/api"
	"github.com/coax-ai/coax/envconfig"
	"github.com/coax-ai/coax/grammar"
	"github.com/coax-ai/coax/grammar/funcschema"
	"github.com/coax-ai/coax/version"
)

type Server struct {
	registry *Registry
	backend  *api.Client
}

func NewServer(registry *Registry, backend *api.Client) *Server {
	if registry == nil {
		registry = NewRegistry()
	}
	if backend == nil {
		backend = api.ClientFromEnvironment()
	}
	return &Server{registry: registry, backend: backend}
}

// Serve runs the HTTP service on ln until the listener closes.
func (s *Server) Serve(ln net.Listener) error {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	r.Use(cors.New(config))

	r.GET("/api/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, api.VersionResponse{Version: version.Version})
	})
	r.GET("/api/catalogs", s.listCatalogs)
	r.POST("/api/compile/table", s.compileTable)
	r.POST("/api/compile/call", s.compileCall)
	r.POST("/api/generate", s.generate)

	slog.Info("listening", "addr", ln.Addr())
	srv := &http.Server{Handler: r}
	return srv.Serve(ln)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.New().String()
		c.Set("request_id", id)
		start := time.Now()
		c.Next()
		slog.Info("request",
			"id", id,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed", time.Since(start),
		)
	}
}

// ColumnRequest is one typed column in a table compilation request.
type ColumnRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// TableRequest describes the CSV shape to compile.
type TableRequest struct {
	Columns []ColumnRequest `json:"columns"`
	MaxRows *int            `json:"max_rows,omitempty"`
}

// CompileResponse carries a compiled grammar.
type CompileResponse struct {
	Regex string `json:"regex"`
}

func (t TableRequest) schema() (grammar.TableSchema, error) {
	maxRows := envconfig.MaxRows
	if t.MaxRows != nil {
		maxRows = *t.MaxRows
	}
	s := grammar.TableSchema{MaxRows: maxRows}
	for _, col := range t.Columns {
		kind, err := grammar.ParseKind(col.Type)
		if err != nil {
			return s, fmt.Errorf("column %q: %w", col.Name, err)
		}
		s.Columns = append(s.Columns, grammar.ColumnSpec{Name: col.Name, Type: kind})
	}
	return s, nil
}

func (s *Server) compileTable(c *gin.Context) {
	var req TableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	schema, err := req.schema()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	regex, err := schema.Compile()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, CompileResponse{Regex: regex})
}

func (s *Server) compileCall(c *gin.Context) {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	catalog, err := funcschema.Catalog(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	regex, err := catalog.CompileBounded(envconfig.StringMax)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, CompileResponse{Regex: regex})
}

func (s *Server) listCatalogs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"catalogs": s.registry.Names()})
}

// GenerateRequest is the server's generation surface. Exactly one grammar
// source must be set: an inline table schema, an inline function manifest,
// a registered catalog name, or a raw regex.
type GenerateRequest struct {
	Model  string `json:"model,omitempty"`
	Prompt string `json:"prompt"`
	System string `json:"system,omitempty"`

	Table     *TableRequest   `json:"table,omitempty"`
	Functions json.RawMessage `json:"functions,omitempty"`
	Catalog   string          `json:"catalog,omitempty"`
	Regex     string          `json:"regex,omitempty"`

	Options map[string]any `json:"options,omitempty"`
}

func (req *GenerateRequest) compileGrammar(registry *Registry) (string, error) {
	sources := 0
	for _, set := range []bool{req.Table != nil, len(req.Functions) > 0, req.Catalog != "", req.Regex != ""} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		return "", fmt.Errorf("exactly one of table, functions, catalog or regex must be set")
	}

	switch {
	case req.Table != nil:
		schema, err := req.Table.schema()
		if err != nil {
			return "", err
		}
		return schema.Compile()
	case len(req.Functions) > 0:
		// Re-wrap: the manifest format declares functions at the top
		// level.
		catalog, err := funcschema.Catalog([]byte(`{"functions":` + string(req.Functions) + `}`))
		if err != nil {
			return "", err
		}
		return catalog.CompileBounded(envconfig.StringMax)
	case req.Catalog != "":
		catalog, ok := registry.Get(req.Catalog)
		if !ok {
			return "", fmt.Errorf("unknown catalog %q", req.Catalog)
		}
		return catalog.CompileBounded(envconfig.StringMax)
	default:
		return req.Regex, nil
	}
}

func (s *Server) generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Prompt == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prompt is required"})
		return
	}

	regex, err := req.compileGrammar(s.registry)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	opts := api.DefaultOptions()
	if req.Options != nil {
		if err := opts.FromMap(req.Options); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	model := req.Model
	if model == "" {
		model = envconfig.Model
	}

	upstream := &api.GenerateRequest{
		Model:   model,
		Prompt:  req.Prompt,
		System:  req.System,
		Regex:   regex,
		Options: &opts,
	}

	ch := make(chan api.GenerateResponse)
	errch := make(chan error, 1)
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	go func() {
		defer close(ch)
		errch <- s.backend.Generate(ctx, upstream, func(resp api.GenerateResponse) error {
			select {
			case ch <- resp:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}()

	c.Header("Content-Type", "application/x-ndjson")
	c.Status(http.StatusOK)
	enc := json.NewEncoder(c.Writer)
	for {
		select {
		case resp, ok := <-ch:
			if !ok {
				if err := <-errch; err != nil {
					enc.Encode(gin.H{"error": err.Error()})
				}
				return
			}
			enc.Encode(resp)
			c.Writer.Flush()
		case <-ctx.Done():
			return
		}
	}
}
