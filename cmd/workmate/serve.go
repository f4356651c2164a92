package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/trungvq/workmate/internal/conversation"
	"github.com/trungvq/workmate/internal/history"
	"github.com/trungvq/workmate/internal/logger"
)

const sessionHeader = "X-Session-ID"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Chạy HTTP server cho các phiên hội thoại",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

// sessionState tracks per-session conversations. Each session holds its own
// lock so slow turns don't serialize unrelated sessions.
type sessionState struct {
	mu   sync.Mutex
	conv *conversation.Conversation
}

type server struct {
	rt       *runtime
	store    *history.Store
	mu       sync.Mutex
	sessions map[string]*sessionState
}

// session returns the state for id, restoring it from history or creating a
// fresh conversation as needed.
func (s *server) session(id string) *sessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.sessions[id]; ok {
		return st
	}
	conv := restoreConversation(s.store, id, s.rt.systemPrompt)
	if conv == nil {
		conv = conversation.New(s.rt.systemPrompt)
	}
	st := &sessionState{conv: conv}
	s.sessions[id] = st
	return st
}

func (s *server) handleMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		logger.L.Error("read body error", "error", err)
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}
	if len(body) == 0 {
		http.Error(w, "empty request body", http.StatusBadRequest)
		return
	}

	sessionID := r.Header.Get(sessionHeader)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	logger.L.Info("inference request", "session_id", sessionID, "body", string(body))

	st := s.session(sessionID)
	st.mu.Lock()
	defer st.mu.Unlock()

	before := st.conv.Len()
	st.conv.AddUser(string(body))

	answer, err := s.rt.loop.Invoke(r.Context(), st.conv)
	persistTurn(s.store, sessionID, st.conv, before)
	if err != nil {
		logger.L.Error("process error", "session_id", sessionID, "error", err)
		http.Error(w, "failed to process request", http.StatusInternalServerError)
		return
	}

	w.Header().Set(sessionHeader, sessionID)
	w.Write([]byte(answer))
}

func runServe(ctx context.Context) error {
	rt, err := buildRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer rt.cleanup()

	store := history.Open(cfg.History.Path)
	defer store.Close()

	srv := &server{
		rt:       rt,
		store:    store,
		sessions: make(map[string]*sessionState),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", srv.handleMessage)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.L.Info("starting server", "address", addr)
	return http.ListenAndServe(addr, mux)
}
