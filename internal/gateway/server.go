// Package gateway is the inbound edge of the concierge: it receives webhook
// events, authorizes the sender, and runs the classify/dispatch/respond
// pipeline.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/nextlevelbuilder/concierge/internal/bus"
	"github.com/nextlevelbuilder/concierge/internal/classify"
	"github.com/nextlevelbuilder/concierge/internal/config"
	"github.com/nextlevelbuilder/concierge/internal/store"
)

const maxWebhookBodyBytes = 1 << 20

// Server handles webhook HTTP traffic and runs the message pipeline.
type Server struct {
	cfg        *config.Config
	stores     *store.Stores
	classifier *classify.Classifier
	dispatcher Dispatcher
	assembler  Assembler

	transcriber     Transcriber
	limiter         *SenderLimiter
	maxMessageChars int
	now             func() time.Time

	httpServer *http.Server
	mux        *http.ServeMux
}

// NewServer wires the gateway with its pipeline stages.
func NewServer(cfg *config.Config, stores *store.Stores, classifier *classify.Classifier,
	dispatcher Dispatcher, assembler Assembler, transcriber Transcriber) *Server {
	return &Server{
		cfg:             cfg,
		stores:          stores,
		classifier:      classifier,
		dispatcher:      dispatcher,
		assembler:       assembler,
		transcriber:     transcriber,
		limiter:         NewSenderLimiter(cfg.Server.RateLimitRPM),
		maxMessageChars: cfg.Server.MaxMessageChars,
		now:             time.Now,
	}
}

// BuildMux creates and caches the HTTP mux with all routes registered.
func (s *Server) BuildMux() *http.ServeMux {
	if s.mux != nil {
		return s.mux
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/webhook", s.handleWebhook)

	s.mux = mux
	return mux
}

// Start begins serving until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	mux := s.BuildMux()

	addr := s.cfg.Addr()
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("gateway starting", "addr", addr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(shutdownCtx)
	}()

	if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("gateway server: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `{"status":"ok"}`)
}

// handleWebhook accepts one inbound message event and replies synchronously
// with the assembled outbound message.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.authorized(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodyBytes))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}

	var msg bus.IncomingMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if msg.SenderID == "" {
		http.Error(w, "sender_id is required", http.StatusBadRequest)
		return
	}
	if msg.Channel == "" {
		msg.Channel = "webhook"
	}

	out := s.HandleWebhookEvent(r.Context(), msg)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		slog.Error("encode webhook response", "error", err)
	}
}

// authorized checks the bearer token when one is configured.
func (s *Server) authorized(r *http.Request) bool {
	token := s.cfg.Server.WebhookToken
	if token == "" {
		return true
	}
	return r.Header.Get("Authorization") == "Bearer "+token
}
