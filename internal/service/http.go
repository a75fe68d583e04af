package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rocketscienceinc/irene-skills/internal/apperror"
)

const maxErrorBody = 512

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, timeout)
}

// doJSON sends req and decodes a 200 response into out.
func doJSON(client *http.Client, req *http.Request, out any) error {
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if err = checkStatus(resp, http.StatusOK); err != nil {
		return err
	}

	return decodeJSON(resp.Body, out)
}

func decodeJSON(r io.Reader, out any) error {
	if err := json.NewDecoder(r).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// checkStatus fails with ErrUnexpectedReply unless the response status is one of accepted.
func checkStatus(resp *http.Response, accepted ...int) error {
	for _, status := range accepted {
		if resp.StatusCode == status {
			return nil
		}
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	return fmt.Errorf("%w: status %d: %s", apperror.ErrUnexpectedReply, resp.StatusCode, body)
}
