package clients

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"NinesolChat/app/chat"
	"NinesolChat/app/memory"
)

var _ Interface = &HTTPClient{}

// HTTPClient exposes the chatbot as a small JSON API. Sessions are addressed
// by id; a chat request without one starts a fresh session and returns its id
// so the caller can keep the conversation going.
type HTTPClient struct {
	Client
	addr   string
	server *http.Server
}

func NewHTTPClientFromConfig(cfg map[string]string) (*HTTPClient, error) {
	addr := cfg["addr"]
	if addr == "" {
		addr = ":8080"
	}
	return &HTTPClient{addr: addr}, nil
}

type chatRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Question  string `json:"question"`
}

type chatResponse struct {
	SessionID string `json:"session_id"`
	Answer    string `json:"answer"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

type historyResponse struct {
	SessionID string           `json:"session_id"`
	Messages  []memory.Message `json:"messages"`
}

func (c *HTTPClient) Subscribe(sessions *chat.Manager) error {
	c.sessions = sessions

	r := mux.NewRouter()
	r.HandleFunc("/chat", c.handleChat).Methods(http.MethodPost)
	r.HandleFunc("/ask", c.handleAsk).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{id}/history", c.handleHistory).Methods(http.MethodGet)
	r.HandleFunc("/sessions/{id}/reset", c.handleReset).Methods(http.MethodPost)
	r.HandleFunc("/healthz", c.handleHealthz).Methods(http.MethodGet)

	c.server = &http.Server{Addr: c.addr, Handler: r}
	go func() {
		log.Printf("🌐 HTTP client listening on %s", c.addr)
		if err := c.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("⚠️ HTTP server stopped: %v", err)
		}
	}()
	return nil
}

func (c *HTTPClient) Close() error {
	if c.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.server.Shutdown(ctx)
}

func (c *HTTPClient) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Question == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	session := c.sessions.GetOrCreate(r.Context(), req.SessionID)
	answer := session.Ask(r.Context(), req.Question)

	writeJSON(w, http.StatusOK, chatResponse{SessionID: session.ID, Answer: answer})
}

func (c *HTTPClient) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Question == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	writeJSON(w, http.StatusOK, askResponse{Answer: c.sessions.OneShot(r.Context(), req.Question)})
}

func (c *HTTPClient) handleHistory(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	session, ok := c.sessions.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}

	messages := session.Display()
	if messages == nil {
		messages = []memory.Message{}
	}
	writeJSON(w, http.StatusOK, historyResponse{SessionID: id, Messages: messages})
}

func (c *HTTPClient) handleReset(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	session, ok := c.sessions.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}

	if err := session.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "could not reset session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *HTTPClient) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("⚠️ Error writing response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
