package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/rocketscienceinc/irene-skills/internal/apperror"
	"github.com/rocketscienceinc/irene-skills/internal/config"
)

type MediaAction string

const (
	MediaPause    MediaAction = "pause"
	MediaPlay     MediaAction = "play"
	MediaNext     MediaAction = "next"
	MediaPrevious MediaAction = "previous"
)

// MediaPlayer controls playback on a remote player.
type MediaPlayer interface {
	Control(ctx context.Context, action MediaAction) error
}

var homeAssistantServices = map[MediaAction]string{
	MediaPause:    "media_pause",
	MediaPlay:     "media_play",
	MediaNext:     "media_next_track",
	MediaPrevious: "media_previous_track",
}

// HomeAssistant calls media_player services of a Home Assistant instance.
type HomeAssistant struct {
	conf   config.HomeAssistant
	client *http.Client
}

func NewHomeAssistant(conf config.HomeAssistant, client *http.Client) *HomeAssistant {
	return &HomeAssistant{
		conf:   conf,
		client: client,
	}
}

func (that *HomeAssistant) Control(ctx context.Context, action MediaAction) error {
	service, ok := homeAssistantServices[action]
	if !ok {
		return fmt.Errorf("unknown media action %q", action)
	}

	return that.CallService(ctx, "media_player", service, nil)
}

// PlayMedia starts playback of content on the configured player.
func (that *HomeAssistant) PlayMedia(ctx context.Context, contentID, contentType string, extra map[string]any) error {
	payload := map[string]any{
		"media_content_id":   contentID,
		"media_content_type": contentType,
	}
	for key, value := range extra {
		payload[key] = value
	}

	return that.CallService(ctx, "media_player", "play_media", payload)
}

// CallService posts payload to /api/services/<domain>/<service>; entity_id defaults to the configured player.
func (that *HomeAssistant) CallService(ctx context.Context, domain, service string, payload map[string]any) error {
	if that.conf.Token == "" {
		return fmt.Errorf("%w: home assistant token", apperror.ErrNotConfigured)
	}

	if payload == nil {
		payload = map[string]any{}
	}

	if _, ok := payload["entity_id"]; !ok {
		payload["entity_id"] = that.conf.EntityID
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	ctx, cancel := withTimeout(ctx, that.conf.Timeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/api/services/%s/%s", strings.TrimRight(that.conf.URL, "/"), domain, service)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+that.conf.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := that.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s.%s: %w", domain, service, err)
	}
	defer resp.Body.Close()

	return checkStatus(resp, http.StatusOK, http.StatusCreated)
}

// MusicAssistant controls a Music Assistant player directly.
type MusicAssistant struct {
	conf   config.MusicAssistant
	client *http.Client
}

func NewMusicAssistant(conf config.MusicAssistant, client *http.Client) *MusicAssistant {
	return &MusicAssistant{
		conf:   conf,
		client: client,
	}
}

func (that *MusicAssistant) Control(ctx context.Context, action MediaAction) error {
	if that.conf.Token == "" {
		return fmt.Errorf("%w: music assistant token", apperror.ErrNotConfigured)
	}

	ctx, cancel := withTimeout(ctx, that.conf.Timeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/players/%s/%s", strings.TrimRight(that.conf.URL, "/"), url.PathEscape(that.conf.PlayerID), action)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+that.conf.Token)

	resp, err := that.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send %s: %w", action, err)
	}
	defer resp.Body.Close()

	return checkStatus(resp, http.StatusOK)
}
