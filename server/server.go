// Package server exposes the agent over HTTP and WebSocket.
package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/alfredlabs/alfred/core"
	"github.com/alfredlabs/alfred/engine"
)

// uploadPrefix marks a user message carrying an inline file upload.
const uploadPrefix = "File uploaded:"

// Server routes chat traffic to the engine and spools uploaded files into
// the docs directory for ingestion.
type Server struct {
	engine   *engine.Engine
	docsDir  string
	mux      *http.ServeMux
	upgrader websocket.Upgrader
}

// New creates a server over the given engine. Uploaded files land in
// docsDir.
func New(eng *engine.Engine, docsDir string) *Server {
	s := &Server{
		engine:  eng,
		docsDir: docsDir,
		mux:     http.NewServeMux(),
		upgrader: websocket.Upgrader{
			// The UI is served from a different origin in development.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	s.mux.HandleFunc("/api/chat", s.handleChat)
	s.mux.HandleFunc("/ws", s.handleWS)
	s.mux.HandleFunc("/health", s.handleHealth)
	return s
}

// Handler returns the routing handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

type chatRequest struct {
	Messages     []core.Message `json:"messages"`
	Configurable core.Config    `json:"configurable"`
}

type chatResponse struct {
	Response string `json:"response"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("decode request: %v", err), http.StatusBadRequest)
		return
	}

	resp, err := s.process(r.Context(), &req)
	if err != nil {
		log.Printf("[SERVER] Chat request failed: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("[SERVER] Encode response: %v", err)
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[SERVER] WebSocket upgrade: %v", err)
		return
	}
	defer conn.Close()
	log.Printf("[SERVER] WebSocket connected: %s", r.RemoteAddr)

	for {
		var req chatRequest
		if err := conn.ReadJSON(&req); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[SERVER] WebSocket read: %v", err)
			}
			return
		}

		resp, err := s.process(r.Context(), &req)
		if err != nil {
			log.Printf("[SERVER] WebSocket chat failed: %v", err)
			resp = &chatResponse{Response: fmt.Sprintf("I encountered an error: %v", err)}
		}
		if err := conn.WriteJSON(resp); err != nil {
			log.Printf("[SERVER] WebSocket write: %v", err)
			return
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, `{"status":"ok"}`)
}

// process runs one chat request through upload handling and the engine.
func (s *Server) process(ctx context.Context, req *chatRequest) (*chatResponse, error) {
	messages, err := s.spoolUploads(req.Messages)
	if err != nil {
		return nil, fmt.Errorf("process upload: %w", err)
	}

	cfg := req.Configurable
	cfg.AlreadyIngested = alreadyIngested(messages)
	log.Printf("[SERVER] Processing chat: %d messages, user=%s, already_ingested=%t",
		len(messages), cfg.UserID, cfg.AlreadyIngested)

	resp := s.engine.ProcessChat(ctx, messages, &cfg)
	if len(resp.Messages) == 0 {
		return &chatResponse{Response: "I apologize, but I couldn't generate a proper response."}, nil
	}
	return &chatResponse{Response: resp.Messages[len(resp.Messages)-1].Content}, nil
}

// spoolUploads extracts inline file uploads from user messages. Each
// upload is decoded into the docs directory, a "load_docs" system message
// is appended so the model knows to ingest, and the original message is
// rewritten to carry only the file name.
func (s *Server) spoolUploads(messages []core.Message) ([]core.Message, error) {
	out := make([]core.Message, len(messages))
	copy(out, messages)

	var loadNotes []core.Message
	for i, msg := range out {
		if msg.Role != core.RoleUser || !strings.HasPrefix(msg.Content, uploadPrefix) {
			continue
		}
		header, data, found := strings.Cut(msg.Content, "\nContent:")
		if !found {
			log.Printf("[SERVER] Invalid file upload message format")
			continue
		}

		name := filepath.Base(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(header), uploadPrefix)))
		if name == "" || name == "." {
			return nil, fmt.Errorf("upload has no file name")
		}

		payload := strings.TrimSpace(data)
		// Strip a data-URL prefix like "data:text/csv;base64,".
		if strings.HasPrefix(payload, "data:") {
			if _, rest, ok := strings.Cut(payload, ","); ok {
				payload = rest
			}
		}
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("decode upload %s: %w", name, err)
		}

		if err := os.MkdirAll(s.docsDir, 0o755); err != nil {
			return nil, fmt.Errorf("create docs dir: %w", err)
		}
		path := filepath.Join(s.docsDir, name)
		if err := os.WriteFile(path, decoded, 0o644); err != nil {
			return nil, fmt.Errorf("save upload %s: %w", name, err)
		}
		log.Printf("[SERVER] Saved upload %s to %s", name, path)

		out[i].Content = fmt.Sprintf("%s %s", uploadPrefix, name)
		loadNotes = append(loadNotes, core.Message{
			Role:    core.RoleSystem,
			Content: fmt.Sprintf("load_docs: %s", name),
		})
	}
	return append(out, loadNotes...), nil
}

// alreadyIngested reports whether the last message is a follow-up
// question about a document uploaded earlier in the conversation.
func alreadyIngested(messages []core.Message) bool {
	if len(messages) < 2 {
		return false
	}
	last := strings.ToLower(messages[len(messages)-1].Content)
	isDocQuery := strings.Contains(last, "document") ||
		strings.Contains(last, "file") ||
		strings.Contains(last, "pdf")
	if !isDocQuery {
		return false
	}
	for _, msg := range messages[:len(messages)-1] {
		if strings.Contains(msg.Content, uploadPrefix) {
			return true
		}
	}
	return false
}
