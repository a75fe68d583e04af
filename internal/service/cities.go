package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/rocketscienceinc/irene-skills/internal/apperror"
	"github.com/rocketscienceinc/irene-skills/internal/entity"
)

const (
	citiesReplyRules        = "Правила: называем города по очереди. Следующий город должен начинаться на последнюю букву предыдущего. Я начну: %s. Твоя очередь."
	citiesReplyStartPrompt  = "Скажи «игра города», чтобы начать."
	citiesReplyStopped      = "Хорошо, игра закончена. Скажи «игра города», если захочешь снова."
	citiesReplyUnknownCity  = "Это не город. Назови настоящий город."
	citiesReplyWrongLetter  = "Город должен начинаться на букву '%s'!"
	citiesReplyAlreadyUsed  = "Этот город уже был. Назови другой."
	citiesReplyPlayerWins   = "Поздравляю, ты выиграл!"
	citiesReplyOpponentMove = "Мой ход: %s. Твоя очередь."
)

type CitiesService interface {
	// Start opens a new game for the session, replacing any game in progress.
	Start(ctx context.Context, call *entity.Call) error
	// Continue resolves the player's turn in the session's game.
	Continue(ctx context.Context, call *entity.Call) error
}

type citiesService struct {
	logger *slog.Logger

	catalog    *entity.CityCatalog
	botService BotService
}

func NewCitiesService(logger *slog.Logger, catalog *entity.CityCatalog, botService BotService) CitiesService {
	return &citiesService{
		logger:     logger,
		catalog:    catalog,
		botService: botService,
	}
}

func (that *citiesService) Start(ctx context.Context, call *entity.Call) error {
	opening := that.botService.Opening()

	call.Session.Cities = entity.NewCitiesGame(opening)
	call.Session.State = entity.StateCities

	return call.Say(ctx, fmt.Sprintf(citiesReplyRules, opening))
}

func (that *citiesService) Continue(ctx context.Context, call *entity.Call) error {
	log := that.logger.With("method", "Continue", "sessionID", call.Session.ID)

	game := call.Session.Cities
	if game == nil || !game.Active {
		call.Session.Reset()
		return call.Say(ctx, citiesReplyStartPrompt)
	}

	if entity.IsStopWord(call.Utterance) {
		game.Finish()
		call.Session.Reset()

		return call.Say(ctx, citiesReplyStopped)
	}

	city, err := game.MakeTurn(that.catalog, strings.TrimSpace(call.Utterance))
	switch {
	case errors.Is(err, apperror.ErrUnknownCity):
		return call.Say(ctx, citiesReplyUnknownCity)
	case errors.Is(err, apperror.ErrWrongLetter):
		letter := string(unicode.ToUpper(game.RequiredLetter()))
		return call.Say(ctx, fmt.Sprintf(citiesReplyWrongLetter, letter))
	case errors.Is(err, apperror.ErrCityAlreadyUsed):
		return call.Say(ctx, citiesReplyAlreadyUsed)
	case err != nil:
		return fmt.Errorf("failed to make turn: %w", err)
	}

	log.Debug("player named a city", "city", city)

	opponentCity, err := that.botService.MakeTurn(game)
	if errors.Is(err, apperror.ErrNoAvailableMoves) {
		game.Finish()
		call.Session.Reset()

		log.Info("player won the game", "used", len(game.UsedCities))

		return call.Say(ctx, citiesReplyPlayerWins)
	}

	if err != nil {
		return fmt.Errorf("bot failed to make turn: %w", err)
	}

	return call.Say(ctx, fmt.Sprintf(citiesReplyOpponentMove, opponentCity))
}
