package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rocketscienceinc/irene-skills/internal/apperror"
)

// handleConnect - binds the connection to a session and replays what was delivered while it was away.
func (that *Server) handleConnect(ctx context.Context, msg *Message, c *client) error {
	log := that.logger.With("method", "handleConnect")

	var payloadReq Payload
	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
			return that.sendErrorResponse(c, "invalid payload")
		}
	}

	if payloadReq.SessionID != "" && payloadReq.SessionID != c.sessionID {
		that.attach(c, payloadReq.SessionID)
	}

	if err := c.push(actionConnect, Payload{SessionID: c.sessionID}); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	pending, err := that.notifier.Pending(ctx, c.sessionID)
	if err != nil {
		log.Error("failed to read pending messages", "sessionID", c.sessionID, "error", err)
		return nil
	}

	for _, text := range pending {
		if err = c.Say(ctx, text); err != nil {
			return fmt.Errorf("failed to replay message: %w", err)
		}
	}

	log.Info("session connected", "sessionID", c.sessionID, "pending", len(pending))

	return nil
}

func (that *Server) handleUtterance(ctx context.Context, msg *Message, c *client) error {
	log := that.logger.With("method", "handleUtterance", "sessionID", c.sessionID)

	var payloadReq Payload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return that.sendErrorResponse(c, "invalid payload")
	}

	text := strings.TrimSpace(payloadReq.Text)
	if text == "" {
		return that.sendErrorResponse(c, "text is required")
	}

	err := that.dispatcher.Handle(ctx, c.sessionID, text, c)
	switch {
	case errors.Is(err, apperror.ErrUnknownCommand):
		return that.sendErrorResponse(c, err.Error())
	case err != nil:
		log.Error("failed to handle utterance", "error", err)
		return that.sendErrorResponse(c, "failed to handle utterance")
	}

	return nil
}

func (that *Server) sendErrorResponse(c *client, errorMsg string) error {
	if err := c.push(actionError, Payload{SessionID: c.sessionID, Error: errorMsg}); err != nil {
		return fmt.Errorf("failed to send error response: %w", err)
	}

	return nil
}
