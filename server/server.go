// Package server exposes needlepoint's Project and Executor over HTTP, so
// the CLI (and any other client) can drive generation without linking the
// graph package directly.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"syscall"
	"time"

	"github.com/kamilmandziuk/needlepoint/graph"
	"github.com/kamilmandziuk/needlepoint/graph/emit"
	"github.com/kamilmandziuk/needlepoint/persist"
)

// Version is the server's reported API version.
const Version = "0.1.0"

// DefaultAddr is the address Serve binds by default, per spec.md §6.
const DefaultAddr = "127.0.0.1:9999"

// Server holds the single loaded Project (if any) and the credentials
// used to construct providers for generation requests. A Server is safe
// for concurrent use; project and keys are guarded by mu.
type Server struct {
	Logger *log.Logger

	mu      sync.RWMutex
	project *graph.Project
	keys    graph.ApiKeys
	emitter emit.Emitter
	exec    *graph.Executor
}

// New returns a Server with no project loaded and keys seeded from the
// environment fallbacks cmd/needlepointd reads at startup.
func New(keys graph.ApiKeys, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{Logger: logger, keys: keys, emitter: emit.NewNullEmitter()}
}

// Serve starts listening on addr, falling back to an OS-assigned port if
// addr is already in use, and blocks until ctx is cancelled or the
// listener fails.
func (s *Server) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		if !errors.Is(err, syscall.EADDRINUSE) {
			return fmt.Errorf("server: listening on %s: %w", addr, err)
		}
		s.Logger.Printf("server: %s in use, falling back to an OS-assigned port", addr)
		ln, err = net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("server: listening on fallback port: %w", err)
		}
	}

	httpServer := &http.Server{Handler: withCORS(s.routes())}
	errCh := make(chan error, 1)
	go func() { errCh <- httpServer.Serve(ln) }()

	s.Logger.Printf("server: listening on %s", ln.Addr())

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/project", s.handleGetProject)
	mux.HandleFunc("POST /api/project/new", s.handleProjectNew)
	mux.HandleFunc("POST /api/project/load", s.handleProjectLoad)
	mux.HandleFunc("POST /api/project/save", s.handleProjectSave)
	mux.HandleFunc("GET /api/nodes", s.handleListNodes)
	mux.HandleFunc("POST /api/nodes", s.handleCreateNode)
	mux.HandleFunc("GET /api/nodes/{id}", s.handleGetNode)
	mux.HandleFunc("PUT /api/nodes/{id}", s.handleUpdateNode)
	mux.HandleFunc("DELETE /api/nodes/{id}", s.handleDeleteNode)
	mux.HandleFunc("GET /api/edges", s.handleListEdges)
	mux.HandleFunc("POST /api/edges", s.handleCreateEdge)
	mux.HandleFunc("DELETE /api/edges/{id}", s.handleDeleteEdge)
	mux.HandleFunc("POST /api/generate/{id}", s.handleGenerate)
	mux.HandleFunc("POST /api/generate-all", s.handleGenerateAll)
	mux.HandleFunc("GET /api/execution-plan", s.handleExecutionPlan)
	mux.HandleFunc("GET /api/prompt/{id}", s.handlePrompt)
	mux.HandleFunc("POST /api/api-keys", s.handleSetAPIKeys)
	return mux
}

// --- status / project ---

type statusResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	ProjectLoaded bool    `json:"projectLoaded"`
	ProjectName   *string `json:"projectName,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	resp := statusResponse{Status: "ok", Version: Version, ProjectLoaded: s.project != nil}
	if s.project != nil {
		name := s.project.Manifest.Name
		resp.ProjectName = &name
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.project == nil {
		writeError(w, http.StatusNotFound, "no project loaded")
		return
	}
	writeJSON(w, http.StatusOK, s.project)
}

type projectNewRequest struct {
	Path string `json:"path"`
	Name string `json:"name,omitempty"`
}

func (s *Server) handleProjectNew(w http.ResponseWriter, r *http.Request) {
	var req projectNewRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}

	p := graph.NewProject(req.Path)
	if req.Name != "" {
		p.Manifest.Name = req.Name
	}
	if err := persist.Save(p); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	loaded, err := persist.Load(req.Path)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.mu.Lock()
	s.project = loaded
	s.exec = nil
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, loaded)
}

type projectLoadRequest struct {
	Path string `json:"path"`
}

func (s *Server) handleProjectLoad(w http.ResponseWriter, r *http.Request) {
	var req projectLoadRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}

	p, err := persist.Load(req.Path)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	s.project = p
	s.exec = nil
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleProjectSave(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	p := s.project
	s.mu.RUnlock()

	if p == nil {
		writeError(w, http.StatusNotFound, "no project loaded")
		return
	}
	if err := persist.Save(p); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

// --- nodes ---

func (s *Server) handleListNodes(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.project == nil {
		writeError(w, http.StatusNotFound, "no project loaded")
		return
	}
	writeJSON(w, http.StatusOK, s.project.Nodes)
}

type createNodeRequest struct {
	Name     string         `json:"name"`
	FilePath string         `json:"file_path"`
	Language graph.Language `json:"language,omitempty"`
}

func (s *Server) handleCreateNode(w http.ResponseWriter, r *http.Request) {
	var req createNodeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" || req.FilePath == "" {
		writeError(w, http.StatusBadRequest, "name and file_path are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		writeError(w, http.StatusNotFound, "no project loaded")
		return
	}

	lang := req.Language
	if lang == "" {
		lang = graph.LanguageTypeScript
	}
	node := graph.Node{
		Name:      req.Name,
		FilePath:  req.FilePath,
		Language:  lang,
		LLMConfig: s.project.Manifest.DefaultLLM,
	}

	created, err := s.project.AddNode(node)
	if err != nil {
		writeStructuralError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetNode(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.project == nil {
		writeError(w, http.StatusNotFound, "no project loaded")
		return
	}
	node := s.project.FindNode(r.PathValue("id"))
	if node == nil {
		writeError(w, http.StatusNotFound, "node not found")
		return
	}
	writeJSON(w, http.StatusOK, node)
}

func (s *Server) handleUpdateNode(w http.ResponseWriter, r *http.Request) {
	var updates graph.Node
	if !decodeJSON(w, r, &updates) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		writeError(w, http.StatusNotFound, "no project loaded")
		return
	}

	updated, err := s.project.UpdateNode(r.PathValue("id"), updates)
	if err != nil {
		writeStructuralError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteNode(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		writeError(w, http.StatusNotFound, "no project loaded")
		return
	}
	if err := s.project.DeleteNode(r.PathValue("id")); err != nil {
		writeStructuralError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// --- edges ---

func (s *Server) handleListEdges(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.project == nil {
		writeError(w, http.StatusNotFound, "no project loaded")
		return
	}
	writeJSON(w, http.StatusOK, s.project.Edges)
}

type createEdgeRequest struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label,omitempty"`
}

func (s *Server) handleCreateEdge(w http.ResponseWriter, r *http.Request) {
	var req createEdgeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		writeError(w, http.StatusNotFound, "no project loaded")
		return
	}

	edge, err := s.project.AddEdge(req.Source, req.Target, req.Label)
	if err != nil {
		writeStructuralError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, edge)
}

func (s *Server) handleDeleteEdge(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		writeError(w, http.StatusNotFound, "no project loaded")
		return
	}
	if err := s.project.DeleteEdge(r.PathValue("id")); err != nil {
		writeStructuralError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// --- generation ---

type generateRequest struct {
	APIKey string `json:"apiKey,omitempty"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	_ = decodeJSONOptional(r, &req)
	nodeID := r.PathValue("id")

	s.mu.Lock()
	if s.project == nil {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "no project loaded")
		return
	}
	node := s.project.FindNode(nodeID)
	if node == nil {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "node not found")
		return
	}

	keys := s.keys
	if req.APIKey != "" {
		switch node.LLMConfig.Provider {
		case graph.ProviderAnthropic:
			keys.Anthropic = req.APIKey
		case graph.ProviderOpenAI:
			keys.OpenAI = req.APIKey
		case graph.ProviderOllama:
			keys.OllamaBaseURL = req.APIKey
		}
	}
	exec := graph.NewExecutor(s.project, keys, s.emitter)
	s.mu.Unlock()

	if err := exec.ExecuteNodes(r.Context(), []string{nodeID}); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	writeJSON(w, http.StatusOK, s.project.FindNode(nodeID))
}

func (s *Server) handleGenerateAll(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	if s.project == nil {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "no project loaded")
		return
	}
	exec := graph.NewExecutor(s.project, s.keys, s.emitter)
	s.exec = exec
	s.mu.Unlock()

	if err := exec.ExecuteAll(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	writeJSON(w, http.StatusOK, s.project)
}

func (s *Server) handleExecutionPlan(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.project == nil {
		writeError(w, http.StatusNotFound, "no project loaded")
		return
	}
	writeJSON(w, http.StatusOK, graph.Plan(s.project))
}

func (s *Server) handlePrompt(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.project == nil {
		writeError(w, http.StatusNotFound, "no project loaded")
		return
	}
	prompt, err := graph.BuildPrompt(s.project, r.PathValue("id"))
	if err != nil {
		writeStructuralError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"prompt": prompt})
}

type apiKeysRequest struct {
	Anthropic     string `json:"anthropic,omitempty"`
	OpenAI        string `json:"openai,omitempty"`
	OllamaBaseURL string `json:"ollamaBaseUrl,omitempty"`
}

func (s *Server) handleSetAPIKeys(w http.ResponseWriter, r *http.Request) {
	var req apiKeysRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if req.Anthropic != "" {
		s.keys.Anthropic = req.Anthropic
	}
	if req.OpenAI != "" {
		s.keys.OpenAI = req.OpenAI
	}
	if req.OllamaBaseURL != "" {
		s.keys.OllamaBaseURL = req.OllamaBaseURL
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeStructuralError(w http.ResponseWriter, err error) {
	var structErr *graph.StructuralError
	if errors.As(err, &structErr) {
		switch structErr.Code {
		case graph.ErrNodeNotFound:
			writeError(w, http.StatusNotFound, structErr.Message)
		default:
			writeError(w, http.StatusBadRequest, structErr.Message)
		}
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil {
		writeError(w, http.StatusBadRequest, "request body is required")
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

// decodeJSONOptional decodes r's body into dst if one is present, and is
// a no-op (not an error) for requests with no body, since POST
// /generate/:id's {apiKey?} payload is entirely optional.
func decodeJSONOptional(r *http.Request, dst any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	return json.NewDecoder(r.Body).Decode(dst)
}
