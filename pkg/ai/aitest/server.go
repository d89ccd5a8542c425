// Package aitest provides an OpenAI compatible test server for chat completions and model
// listing.
package aitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"
)

// ChatCompletionRequest is the subset of the request body the server inspects
type ChatCompletionRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content,omitempty"`
}

// ModelInfo is a model returned from GET /models
type ModelInfo struct {
	ID      string `json:"id"`
	OwnedBy string `json:"owned_by"`
}

// Reply is what the server answers to a chat completion
type Reply struct {
	Content    string
	StatusCode int // error status, 0 means 200
	Error      string
}

type Server struct {
	*httptest.Server

	mu       sync.Mutex
	models   []ModelInfo
	replies  []Reply
	fallback *Reply
	requests []ChatCompletionRequest
	headers  []http.Header
}

// NewServer starts a server. Close it with Close.
func NewServer() *Server {
	s := &Server{}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/chat/completions", s.handleChatCompletions)
	mux.HandleFunc("/v1/models", s.handleModels)
	s.Server = httptest.NewServer(mux)

	return s
}

// BaseURL is the URL to configure the client with, including the /v1 prefix
func (s *Server) BaseURL() string {
	return s.URL + "/v1"
}

func (s *Server) SetModels(models ...ModelInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.models = models
}

// Reply queues a reply for the next chat completion
func (s *Server) Reply(r Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies = append(s.replies, r)
}

// SetFallback answers every chat completion once the queued replies are used up
func (s *Server) SetFallback(r Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fallback = &r
}

// Requests returns the captured chat completion requests
func (s *Server) Requests() []ChatCompletionRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ChatCompletionRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// LastRequest returns the most recent chat completion request, or nil if none
func (s *Server) LastRequest() *ChatCompletionRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return nil
	}
	req := s.requests[len(s.requests)-1]
	return &req
}

// LastHeader returns the headers of the most recent request to any endpoint
func (s *Server) LastHeader() http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.headers) == 0 {
		return nil
	}
	return s.headers[len(s.headers)-1]
}

// MessagesContain reports whether any message of req contains substring
func (req *ChatCompletionRequest) MessagesContain(substring string) bool {
	for _, msg := range req.Messages {
		if strings.Contains(msg.Content, substring) {
			return true
		}
	}
	return false
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.headers = append(s.headers, r.Header.Clone())
	data := make([]map[string]any, 0, len(s.models))
	for _, m := range s.models {
		data = append(data, map[string]any{
			"id":       m.ID,
			"object":   "model",
			"created":  time.Now().Unix(),
			"owned_by": m.OwnedBy,
		})
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"object": "list",
		"data":   data,
	})
}

func (s *Server) handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ChatCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_error", "Invalid JSON: "+err.Error())
		return
	}

	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.headers = append(s.headers, r.Header.Clone())
	var reply *Reply
	if len(s.replies) > 0 {
		reply = &s.replies[0]
		s.replies = s.replies[1:]
	} else if s.fallback != nil {
		reply = s.fallback
	}
	s.mu.Unlock()

	if reply == nil {
		writeError(w, http.StatusInternalServerError, "server_error", "No reply configured for request")
		return
	}

	if reply.StatusCode != 0 && reply.StatusCode != http.StatusOK {
		writeError(w, reply.StatusCode, "invalid_request_error", reply.Error)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": time.Now().Unix(),
		"model":   req.Model,
		"choices": []map[string]any{{
			"index": 0,
			"message": map[string]any{
				"role":    "assistant",
				"content": reply.Content,
			},
			"finish_reason": "stop",
		}},
		"usage": map[string]any{
			"prompt_tokens":     100,
			"completion_tokens": 50,
			"total_tokens":      150,
		},
	})
}

func writeError(w http.ResponseWriter, statusCode int, errType, message string) {
	writeJSON(w, statusCode, map[string]any{
		"error": map[string]any{
			"message": message,
			"type":    errType,
		},
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}
