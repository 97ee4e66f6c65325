// Package session serves passages and WebSocket typing sessions.
//
// Each WebSocket connection owns one typing.Controller. Messages from the
// client are applied in order on the connection's read goroutine; replies
// are queued to a write goroutine, which also keeps the connection alive
// with pings. Completion events go to the configured sink and never block
// the session.
package session

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/joshuawootonn/type-the-word-sub001/core/errors"
	"github.com/joshuawootonn/type-the-word-sub001/core/passage"
	"github.com/joshuawootonn/type-the-word-sub001/core/typing"
	"github.com/joshuawootonn/type-the-word-sub001/internal/logging"
	"github.com/joshuawootonn/type-the-word-sub001/internal/server"
)

// Loader loads a parsed passage.
type Loader interface {
	Load(ctx context.Context, translation, book string, chapter int) (*passage.Passage, error)
}

// Config configures a Server.
type Config struct {
	AllowedOrigins  []string
	PingInterval    time.Duration
	WriteTimeout    time.Duration
	MaxMessageBytes int64

	// Sink receives verse completion events. Record must not block.
	Sink typing.Sink
}

// DefaultConfig returns the server defaults.
func DefaultConfig() Config {
	return Config{
		PingInterval:    30 * time.Second,
		WriteTimeout:    10 * time.Second,
		MaxMessageBytes: 4096,
	}
}

// Server serves the passage API and typing sessions.
type Server struct {
	passages Loader
	cfg      Config
	upgrader websocket.Upgrader
	sessions atomic.Int64
}

// NewServer creates a Server.
func NewServer(passages Loader, cfg Config) *Server {
	def := DefaultConfig()
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = def.PingInterval
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if cfg.MaxMessageBytes <= 0 {
		cfg.MaxMessageBytes = def.MaxMessageBytes
	}
	return &Server{
		passages: passages,
		cfg:      cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     server.CheckOrigin(cfg.AllowedOrigins),
		},
	}
}

// Sessions returns the number of open typing sessions.
func (s *Server) Sessions() int {
	return int(s.sessions.Load())
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/passage/{translation}/{book}/{chapter}", s.handlePassage)
	mux.HandleFunc("GET /ws/type/{translation}/{book}/{chapter}", s.handleType)

	var h http.Handler = mux
	h = server.SecurityHeadersWithCSP(server.APICSPConfig(), h)
	h = server.CORSMiddlewareWithConfig(server.CORSConfig{AllowedOrigins: s.cfg.AllowedOrigins}, h)
	h = server.TimingMiddleware(500*time.Millisecond, h)
	return logging.CombinedMiddleware(h)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]any{"status": "ok", "sessions": s.Sessions()})
}

func (s *Server) handlePassage(w http.ResponseWriter, r *http.Request) {
	p, err := s.load(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, p)
}

// load reads the chapter named by the request path.
func (s *Server) load(r *http.Request) (*passage.Passage, error) {
	translation := r.PathValue("translation")
	book := r.PathValue("book")
	if !server.ValidateAlphanumeric(translation) || !server.ValidateAlphanumeric(book) {
		return nil, errors.NewValidation("path", "translation and book must be identifiers")
	}
	chapter, err := strconv.Atoi(r.PathValue("chapter"))
	if err != nil {
		return nil, errors.NewValidation("chapter", "not a number")
	}
	return s.passages.Load(r.Context(), translation, book, chapter)
}

func (s *Server) handleType(w http.ResponseWriter, r *http.Request) {
	p, err := s.load(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	ctrl := typing.NewController(p, typing.Config{
		Sink:         s.cfg.Sink,
		AssignmentID: server.LimitStringLength(r.URL.Query().Get("assignment"), 64),
	})
	if v := r.URL.Query().Get("verse"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			respondErr(w, r, errors.NewValidation("verse", "not a number"))
			return
		}
		if err := startVerse(ctrl, p, n); err != nil {
			respondErr(w, r, errors.NewNotFound("verse", v))
			return
		}
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		logging.WarnContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	sess := &session{
		conn:   conn,
		ctrl:   ctrl,
		send:   make(chan ServerMessage, 64),
		cfg:    s.cfg,
		logger: logging.LoggerFromContext(r.Context()),
	}
	n := s.sessions.Add(1)
	logging.WebSocketEvent("session_opened", int(n), "passage", p.Book+" "+strconv.Itoa(p.Chapter), "translation", p.Translation)
	sess.run()
	n = s.sessions.Add(-1)
	logging.WebSocketEvent("session_closed", int(n))
}

// startVerse activates verse n of p.
func startVerse(c *typing.Controller, p *passage.Passage, n int) error {
	return c.Start(passage.VerseRef{
		Book:        p.Book,
		Chapter:     p.Chapter,
		Verse:       n,
		Translation: p.Translation,
	})
}

// APIResponse is the JSON envelope of the passage API.
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	Meta    *APIMeta  `json:"meta,omitempty"`
}

// APIError represents an API error.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIMeta contains response metadata.
type APIMeta struct {
	Timestamp string `json:"timestamp"`
}

func respond(w http.ResponseWriter, status int, data any) {
	writeEnvelope(w, status, APIResponse{Success: true, Data: data})
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	writeEnvelope(w, status, APIResponse{Error: &APIError{Code: code, Message: message}})
}

func writeEnvelope(w http.ResponseWriter, status int, resp APIResponse) {
	resp.Meta = &APIMeta{Timestamp: time.Now().UTC().Format(time.RFC3339)}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// respondErr maps domain errors onto HTTP statuses.
func respondErr(w http.ResponseWriter, r *http.Request, err error) {
	status, code := http.StatusInternalServerError, "internal"
	switch {
	case errors.Is(err, errors.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, errors.ErrUnsupported):
		status, code = http.StatusNotFound, "unsupported"
	case errors.Is(err, errors.ErrInvalidInput):
		status, code = http.StatusBadRequest, "invalid_input"
	case errors.Is(err, errors.ErrMalformedDocument):
		status, code = http.StatusBadGateway, "malformed_document"
	}
	if status >= 500 {
		logging.ErrorContext(r.Context(), "passage request failed", "path", r.URL.Path, "error", err)
	}
	respondError(w, status, code, err.Error())
}
