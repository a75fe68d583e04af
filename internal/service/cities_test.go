package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/irene-skills/internal/entity"
)

// recorder collects everything said to it.
type recorder struct {
	said []string
}

func (that *recorder) Say(_ context.Context, text string) error {
	that.said = append(that.said, text)
	return nil
}

func (that *recorder) last() string {
	if len(that.said) == 0 {
		return ""
	}

	return that.said[len(that.said)-1]
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newCall(session *entity.Session, speaker entity.Speaker, utterance string) *entity.Call {
	return &entity.Call{Session: session, Speaker: speaker, Utterance: utterance}
}

func TestCitiesService(t *testing.T) {
	ctx := context.Background()
	catalog := entity.NewCityCatalog(entity.DefaultCities)

	newService := func() CitiesService {
		return NewCitiesService(discardLogger(), catalog, NewBotService(catalog, firstPicker{}))
	}

	t.Run("Start opens a game with the picked city", func(t *testing.T) {
		// Given: an idle session
		svc := newService()
		session := entity.NewSession("s1")
		speaker := &recorder{}

		// When: the game is started
		err := svc.Start(ctx, newCall(session, speaker, "игра города"))

		// Then: Москва opens the game and the session routes to the game
		require.NoError(t, err)
		assert.Equal(t, entity.StateCities, session.State)
		require.NotNil(t, session.Cities)
		assert.Equal(t, []string{"Москва"}, session.Cities.UsedCities)
		assert.Contains(t, speaker.last(), "Я начну: Москва")
	})

	t.Run("Accepted city is answered by the opponent", func(t *testing.T) {
		// Given: a started game
		svc := newService()
		session := entity.NewSession("s1")
		speaker := &recorder{}
		require.NoError(t, svc.Start(ctx, newCall(session, speaker, "игра города")))

		// When: the player names Астрахань
		err := svc.Continue(ctx, newCall(session, speaker, "астрахань"))

		// Then: the opponent answers with a city on "н"
		require.NoError(t, err)
		assert.Equal(t, "Мой ход: Новосибирск. Твоя очередь.", speaker.last())
		assert.Equal(t, []string{"Москва", "Астрахань", "Новосибирск"}, session.Cities.UsedCities)
		assert.Equal(t, entity.StateCities, session.State)
	})

	t.Run("Rejections keep the game unchanged", func(t *testing.T) {
		// Given: a started game opened with Москва
		svc := newService()
		session := entity.NewSession("s1")
		speaker := &recorder{}
		require.NoError(t, svc.Start(ctx, newCall(session, speaker, "игра города")))

		// When: the player names a foreign city
		require.NoError(t, svc.Continue(ctx, newCall(session, speaker, "Лондон")))

		// Then: the city is rejected as unknown
		assert.Equal(t, "Это не город. Назови настоящий город.", speaker.last())

		// When: the player names a city on the wrong letter
		require.NoError(t, svc.Continue(ctx, newCall(session, speaker, "Омск")))

		// Then: the required letter is named in upper case
		assert.Equal(t, "Город должен начинаться на букву 'А'!", speaker.last())
		assert.Equal(t, []string{"Москва"}, session.Cities.UsedCities)
		assert.Equal(t, entity.StateCities, session.State)
	})

	t.Run("Repeated city is rejected", func(t *testing.T) {
		// Given: a game where Москва is used and the required letter is "м"
		svc := newService()
		session := entity.NewSession("s1")
		session.State = entity.StateCities
		session.Cities = &entity.CitiesGame{
			Active:     true,
			LastCity:   "Ишим",
			UsedCities: []string{"Москва", "Ишим"},
		}
		speaker := &recorder{}

		// When: the player repeats Москва
		err := svc.Continue(ctx, newCall(session, speaker, "Москва"))

		// Then: the repeat is rejected
		require.NoError(t, err)
		assert.Equal(t, "Этот город уже был. Назови другой.", speaker.last())
		assert.Equal(t, []string{"Москва", "Ишим"}, session.Cities.UsedCities)
	})

	t.Run("Stop word ends the game", func(t *testing.T) {
		// Given: a started game
		svc := newService()
		session := entity.NewSession("s1")
		speaker := &recorder{}
		require.NoError(t, svc.Start(ctx, newCall(session, speaker, "игра города")))

		// When: the player says "стоп"
		err := svc.Continue(ctx, newCall(session, speaker, "Стоп"))

		// Then: the game is finished and the session is idle
		require.NoError(t, err)
		assert.False(t, session.Cities.Active)
		assert.True(t, session.IsIdle())
		assert.Contains(t, speaker.last(), "игра закончена")
	})

	t.Run("Player wins when the opponent has no move", func(t *testing.T) {
		// Given: a catalog where nothing starts with the last letter of Архангельск
		small := entity.NewCityCatalog([]string{"Москва", "Архангельск"})
		svc := NewCitiesService(discardLogger(), small, NewBotService(small, firstPicker{}))
		session := entity.NewSession("s1")
		speaker := &recorder{}
		require.NoError(t, svc.Start(ctx, newCall(session, speaker, "игра города")))

		// When: the player names Архангельск
		err := svc.Continue(ctx, newCall(session, speaker, "Архангельск"))

		// Then: the player wins and nothing is appended for the opponent
		require.NoError(t, err)
		assert.Equal(t, "Поздравляю, ты выиграл!", speaker.last())
		assert.Equal(t, []string{"Москва", "Архангельск"}, session.Cities.UsedCities)
		assert.False(t, session.Cities.Active)
		assert.True(t, session.IsIdle())
	})

	t.Run("Inactive game prompts to start", func(t *testing.T) {
		// Given: a session stuck in the game state without an active game
		svc := newService()
		session := entity.NewSession("s1")
		session.State = entity.StateCities
		speaker := &recorder{}

		// When: the player says anything
		err := svc.Continue(ctx, newCall(session, speaker, "Самара"))

		// Then: the start prompt is spoken and the session returns to idle
		require.NoError(t, err)
		assert.Equal(t, "Скажи «игра города», чтобы начать.", speaker.last())
		assert.True(t, session.IsIdle())
	})
}
