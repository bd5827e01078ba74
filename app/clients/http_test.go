package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/mock"

	"NinesolChat/app/chat"
	"NinesolChat/app/models"
	"NinesolChat/app/rag"
)

func newTestHTTPClient(generator models.Generator) *HTTPClient {
	factory := func(history rag.History) *rag.Chain {
		return rag.NewChain(emptyRetriever{}, generator, history, 3, 10)
	}
	c := &HTTPClient{}
	c.sessions = chat.NewManager(factory, nil)
	return c
}

func (c *HTTPClient) testRouter() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/chat", c.handleChat).Methods(http.MethodPost)
	r.HandleFunc("/ask", c.handleAsk).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{id}/history", c.handleHistory).Methods(http.MethodGet)
	r.HandleFunc("/sessions/{id}/reset", c.handleReset).Methods(http.MethodPost)
	r.HandleFunc("/healthz", c.handleHealthz).Methods(http.MethodGet)
	return r
}

func TestHTTPChatFlow(t *testing.T) {
	generator := &models.MockGenerator{}
	generator.On("Generate", mock.Anything, mock.Anything).
		Return(&models.Generation{Content: "we build software"}, nil)

	router := newTestHTTPClient(generator).testRouter()

	// first question, no session id
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/chat",
		strings.NewReader(`{"question":"what does Ninesol do?"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	var first chatResponse
	json.NewDecoder(rec.Body).Decode(&first)
	if first.SessionID == "" || first.Answer != "we build software" {
		t.Fatalf("unexpected response: %+v", first)
	}

	// follow-up on the same session
	body, _ := json.Marshal(chatRequest{SessionID: first.SessionID, Question: "and where?"})
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(body)))
	var second chatResponse
	json.NewDecoder(rec.Body).Decode(&second)
	if second.SessionID != first.SessionID {
		t.Fatalf("follow-up switched sessions: %+v", second)
	}

	// history shows both turns
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/"+first.SessionID+"/history", nil))
	var history historyResponse
	json.NewDecoder(rec.Body).Decode(&history)
	if len(history.Messages) != 4 {
		t.Fatalf("unexpected history: %+v", history)
	}

	// reset clears it
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sessions/"+first.SessionID+"/reset", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("unexpected reset status: %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/"+first.SessionID+"/history", nil))
	history = historyResponse{}
	json.NewDecoder(rec.Body).Decode(&history)
	if len(history.Messages) != 0 {
		t.Fatalf("history survived reset: %+v", history)
	}
}

func TestHTTPAsk(t *testing.T) {
	generator := &models.MockGenerator{}
	generator.On("Generate", mock.Anything, mock.Anything).
		Return(&models.Generation{Content: "stateless"}, nil)

	router := newTestHTTPClient(generator).testRouter()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ask",
		strings.NewReader(`{"question":"hi"}`)))

	var resp askResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Answer != "stateless" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestHTTPValidation(t *testing.T) {
	router := newTestHTTPClient(&models.MockGenerator{}).testRouter()

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"missing_question", http.MethodPost, "/chat", `{}`, http.StatusBadRequest},
		{"bad_json", http.MethodPost, "/chat", `{`, http.StatusBadRequest},
		{"unknown_history", http.MethodGet, "/sessions/nope/history", "", http.StatusNotFound},
		{"unknown_reset", http.MethodPost, "/sessions/nope/reset", "", http.StatusNotFound},
		{"healthz", http.MethodGet, "/healthz", "", http.StatusOK},
	}
	for _, cse := range cases {
		t.Run(cse.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(cse.method, cse.path, strings.NewReader(cse.body)))
			if rec.Code != cse.status {
				t.Fatalf("got %d, want %d", rec.Code, cse.status)
			}
		})
	}
}

type emptyRetriever struct{}

func (emptyRetriever) Search(_ context.Context, _ string, _, _ int) ([]rag.Document, error) {
	return nil, nil
}
