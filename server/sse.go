package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/widgetforge/calcapp/mcp"
)

// SSEServer carries the MCP protocol over Server-Sent Events and hosts the
// app's plain HTTP surface. Each SSE connection owns exactly one session with
// its own protocol server instance, so no state leaks between clients.
type SSEServer struct {
	newServer   func() (*MCPServer, error)
	baseURL     string
	ssePath     string
	messagePath string
	assetsDir   string
	sessions    sync.Map // sessionID -> *sseSession
	srv         *http.Server
}

type sseSession struct {
	writer  http.ResponseWriter
	flusher http.Flusher
	done    chan struct{}
	server  *MCPServer

	// writeMu serializes writes to the stream: the connection goroutine and
	// message POSTs both write to it. closed is only touched under writeMu,
	// so a writer that loaded the session before a concurrent close either
	// finishes its write before close returns or observes closed and backs
	// off. The ResponseWriter is never touched after the SSE handler returns.
	writeMu   sync.Mutex
	closed    bool
	closeOnce sync.Once
}

// writeEvent writes one event to the stream. It reports false once the
// session has been closed, without touching the writer.
func (sess *sseSession) writeEvent(event, data string) bool {
	sess.writeMu.Lock()
	defer sess.writeMu.Unlock()
	if sess.closed {
		return false
	}
	fmt.Fprintf(sess.writer, "event: %s\ndata: %s\n\n", event, data)
	sess.flusher.Flush()
	return true
}

func (sess *sseSession) close() {
	sess.closeOnce.Do(func() {
		sess.writeMu.Lock()
		sess.closed = true
		sess.writeMu.Unlock()
		close(sess.done)
	})
}

// SSEOption configures an SSEServer.
type SSEOption func(*SSEServer)

// WithBaseURL sets the externally visible base URL embedded into the message
// endpoint handed to clients.
func WithBaseURL(baseURL string) SSEOption {
	return func(s *SSEServer) {
		s.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithAssetsDir sets the root directory for static widget assets.
func WithAssetsDir(dir string) SSEOption {
	return func(s *SSEServer) {
		s.assetsDir = dir
	}
}

// NewSSEServer creates an SSE server. newServer is called once per connecting
// client to allocate that session's protocol server.
func NewSSEServer(newServer func() (*MCPServer, error), opts ...SSEOption) *SSEServer {
	s := &SSEServer{
		newServer:   newServer,
		ssePath:     "/sse",
		messagePath: "/message",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewTestServer creates an SSE server wrapped in an httptest server, with the
// base URL pointed at the test listener. The caller closes the test server
// when done.
func NewTestServer(newServer func() (*MCPServer, error), opts ...SSEOption) (*SSEServer, *httptest.Server) {
	sseServer := NewSSEServer(newServer, opts...)
	testServer := httptest.NewServer(sseServer.Router())
	sseServer.baseURL = testServer.URL
	return sseServer, testServer
}

// Router builds the HTTP routing for the app: the SSE and message endpoints,
// the direct compute endpoint, and static assets. Recoverer keeps a panicking
// request from taking the listener down, and the CORS middleware answers all
// preflights.
func (s *SSEServer) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Get(s.ssePath, s.handleSSE)
	r.Post(s.messagePath, s.handleMessage)
	r.Post("/calculate", s.handleCalculate)
	r.Get("/assets/*", s.handleAsset)

	return r
}

// Start listens on addr and serves until Shutdown or a listener error.
func (s *SSEServer) Start(addr string) error {
	s.srv = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	return s.srv.ListenAndServe()
}

// Shutdown closes all live sessions and stops the HTTP server.
func (s *SSEServer) Shutdown(ctx context.Context) error {
	s.sessions.Range(func(key, value interface{}) bool {
		if session, ok := value.(*sseSession); ok {
			session.close()
		}
		s.sessions.Delete(key)
		return true
	})

	if s.srv != nil {
		return s.srv.Shutdown(ctx)
	}
	return nil
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *SSEServer) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	mcpServer, err := s.newServer()
	if err != nil {
		log.Error("failed to allocate session server", "error", err)
		http.Error(w, "Failed to establish session", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sessionID := uuid.New().String()
	session := &sseSession{
		writer:  w,
		flusher: flusher,
		done:    make(chan struct{}),
		server:  mcpServer,
	}

	s.sessions.Store(sessionID, session)
	defer s.closeSession(sessionID)

	log.Info("client connected", "sessionId", sessionID)

	messageEndpoint := fmt.Sprintf("%s%s?sessionId=%s", s.baseURL, s.messagePath, sessionID)
	session.writeEvent("endpoint", messageEndpoint)

	// Hold the stream open until the peer goes away or the server shuts down.
	select {
	case <-r.Context().Done():
	case <-session.done:
	}
	log.Info("client disconnected", "sessionId", sessionID)
}

// closeSession removes the session from the table and marks it closed. Safe
// to call more than once; removal wins over concurrent Dispatch lookups.
func (s *SSEServer) closeSession(sessionID string) {
	if value, ok := s.sessions.LoadAndDelete(sessionID); ok {
		value.(*sseSession).close()
	}
}

func (s *SSEServer) handleMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		s.writeJSONRPCError(w, http.StatusBadRequest, nil, mcp.INVALID_PARAMS, ErrMissingSessionID.Error())
		return
	}

	value, ok := s.sessions.Load(sessionID)
	if !ok {
		s.writeJSONRPCError(w, http.StatusNotFound, nil, mcp.INVALID_PARAMS, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID).Error())
		return
	}
	session := value.(*sseSession)

	var message json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&message); err != nil {
		s.writeJSONRPCError(w, http.StatusBadRequest, nil, mcp.PARSE_ERROR, "Parse error")
		return
	}

	response := session.server.HandleMessage(r.Context(), message)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	if response == nil {
		// Notification: nothing to mirror onto the stream.
		return
	}

	eventData, err := json.Marshal(response)
	if err != nil {
		log.Error("failed to marshal response", "sessionId", sessionID, "error", err)
		return
	}
	if !session.writeEvent("message", string(eventData)) {
		log.Debug("session closed before response could be streamed", "sessionId", sessionID)
	}
	if _, err := w.Write(eventData); err != nil {
		log.Debug("failed to write response body", "sessionId", sessionID, "error", err)
	}
}

// SendEventToSession pushes a server-initiated event onto a session's stream.
func (s *SSEServer) SendEventToSession(sessionID string, event interface{}) error {
	value, ok := s.sessions.Load(sessionID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	session := value.(*sseSession)

	eventData, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if !session.writeEvent("message", string(eventData)) {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return nil
}

func (s *SSEServer) writeJSONRPCError(w http.ResponseWriter, status int, id interface{}, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(mcp.NewJSONRPCError(id, code, message))
}
