package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rocketscienceinc/irene-skills/internal/entity"
)

const shutdownTimeout = 5 * time.Second

type uDispatcher interface {
	Handle(ctx context.Context, sessionID, utterance string, speaker entity.Speaker) error
	Forget(ctx context.Context, sessionID string) error
}

type uNotifier interface {
	Pending(ctx context.Context, sessionID string) ([]string, error)
}

type Server struct {
	logger     *slog.Logger
	dispatcher uDispatcher
	notifier   uNotifier
}

func New(logger *slog.Logger, dispatcher uDispatcher, notifier uNotifier) *Server {
	return &Server{
		logger:     logger,
		dispatcher: dispatcher,
		notifier:   notifier,
	}
}

// Handler - returns the routes of the HTTP API.
func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", that.handlePing)
	mux.HandleFunc("POST /api/utterance", that.handleUtterance)
	mux.HandleFunc("GET /api/sessions/{id}/messages", that.handleMessages)
	mux.HandleFunc("DELETE /api/sessions/{id}", that.handleForget)

	return mux
}

// Start - serves the HTTP API until ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down HTTP server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
