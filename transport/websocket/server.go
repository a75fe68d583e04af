package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/irene-skills/internal/entity"
	"github.com/rocketscienceinc/irene-skills/internal/pkg"
)

const (
	sessionCookie   = "user_session"
	shutdownTimeout = 5 * time.Second
)

type uDispatcher interface {
	Handle(ctx context.Context, sessionID, utterance string, speaker entity.Speaker) error
}

type uNotifier interface {
	Register(sessionID string, speaker entity.Speaker) func()
	Pending(ctx context.Context, sessionID string) ([]string, error)
}

type Server struct {
	logger     *slog.Logger
	dispatcher uDispatcher
	notifier   uNotifier
	upgrader   websocket.Upgrader

	handlers map[string]func(ctx context.Context, message *Message, client *client) error
}

func New(logger *slog.Logger, dispatcher uDispatcher, notifier uNotifier) *Server {
	server := &Server{
		logger:     logger,
		dispatcher: dispatcher,
		notifier:   notifier,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},

		handlers: make(map[string]func(context.Context, *Message, *client) error),
	}

	server.handlers[actionConnect] = server.handleConnect
	server.handlers[actionUtterance] = server.handleUtterance

	return server
}

// Handler - returns the WebSocket endpoint; connections live until ctx is done.
func (that *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	})

	return mux
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Handler(ctx),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down WebSocket server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// upgradeToWebSocket - upgrades the connection to WebSocket.
func (that *Server) upgradeToWebSocket(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeConnection")

	sessionID, header := that.sessionCookie(req)

	conn, err := that.upgrader.Upgrade(writer, req, header)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	c := newClient(conn)
	that.attach(c, sessionID)

	log.Info("WebSocket connection established", "sessionID", sessionID)

	go c.writePump()

	if err = that.handleMessages(ctx, c); err != nil {
		log.Error("error handling messages", "error", err)
	}
}

// handleMessages - processes messages from the client until it disconnects.
func (that *Server) handleMessages(ctx context.Context, c *client) error {
	log := that.logger.With("method", "handleMessages")

	defer func() {
		c.detach()
		c.close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	go func() {
		select {
		case <-ctx.Done():
			c.close()
		case <-c.done:
		}
	}()

	for {
		_, body, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				return fmt.Errorf("failed to read message: %w", err)
			}

			return nil
		}

		var message Message
		if err = json.Unmarshal(body, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)
			_ = c.push(actionError, Payload{Error: "unknown action " + message.Action})

			continue
		}

		if err = handler(ctx, &message, c); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

// sessionCookie - reads the user session or prepares a new one for the upgrade response.
func (that *Server) sessionCookie(req *http.Request) (string, http.Header) {
	log := that.logger.With("method", "sessionCookie")

	if cookie, err := req.Cookie(sessionCookie); err == nil && cookie.Value != "" {
		log.Debug("session cookie found", "cookie", cookie.Value)
		return cookie.Value, nil
	}

	cookie := &http.Cookie{
		Name:    sessionCookie,
		Value:   pkg.GenerateSessionID(),
		Expires: time.Now().Add(24 * time.Hour),
		Path:    "/ws",
	}

	log.Debug("session cookie not found, new one created", "cookie", cookie.Value)

	return cookie.Value, http.Header{"Set-Cookie": {cookie.String()}}
}

// attach - makes the client the live speaker of the session.
func (that *Server) attach(c *client, sessionID string) {
	c.detach()
	c.sessionID = sessionID
	c.detach = that.notifier.Register(sessionID, c)
}
