package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/rocketscienceinc/irene-skills/internal/apperror"
	"github.com/rocketscienceinc/irene-skills/internal/entity"
)

var musicReplies = map[MediaAction]string{
	MediaPause:    "Пауза",
	MediaPlay:     "Продолжаю",
	MediaNext:     "Следующий трек",
	MediaPrevious: "Предыдущий трек",
}

type MusicService interface {
	// Control sends action to the player and confirms it only on success.
	Control(ctx context.Context, call *entity.Call, action MediaAction) error
}

type musicService struct {
	logger *slog.Logger
	player MediaPlayer
}

func NewMusicService(logger *slog.Logger, player MediaPlayer) MusicService {
	return &musicService{
		logger: logger,
		player: player,
	}
}

func (that *musicService) Control(ctx context.Context, call *entity.Call, action MediaAction) error {
	log := that.logger.With("method", "Control", "action", action)

	err := that.player.Control(ctx, action)
	if errors.Is(err, apperror.ErrNotConfigured) {
		return call.Say(ctx, "Не настроен токен плеера")
	}

	if err != nil {
		log.Error("media player call failed", "error", err)
		return nil
	}

	return call.Say(ctx, musicReplies[action])
}
