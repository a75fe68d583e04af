package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/irene-skills/internal/config"
	"github.com/rocketscienceinc/irene-skills/internal/entity"
)

func TestDateTimeService(t *testing.T) {
	ctx := context.Background()

	newService := func(now time.Time) DateTimeService {
		return NewDateTimeService(config.DateTime{Enabled: true, Reply: "Сейчас {time}"}, func() time.Time { return now })
	}

	say := func(t *testing.T, handler func(context.Context, *entity.Call) error) string {
		t.Helper()

		speaker := &recorder{}
		require.NoError(t, handler(ctx, newCall(entity.NewSession("s1"), speaker, "")))

		return speaker.last()
	}

	monday := time.Date(2026, time.October, 19, 14, 9, 0, 0, time.UTC)

	t.Run("Today", func(t *testing.T) {
		assert.Equal(t, "Сегодня понедельник, 19 октября 2026 года (осень)", say(t, newService(monday).Today))
	})

	t.Run("DaysToNewYear", func(t *testing.T) {
		assert.Equal(t, "До Нового года осталось 73 дня", say(t, newService(monday).DaysToNewYear))

		lastEvening := time.Date(2026, time.December, 31, 23, 0, 0, 0, time.UTC)
		assert.Equal(t, "До Нового года осталось 0 дней", say(t, newService(lastEvening).DaysToNewYear))
	})

	t.Run("Time", func(t *testing.T) {
		assert.Equal(t, "Сейчас 14:09", say(t, newService(monday).Time))
	})

	t.Run("TimeInWords", func(t *testing.T) {
		assert.Equal(t, "Сейчас четырнадцать часов девять минут", say(t, newService(monday).TimeInWords))
	})
}

func TestTimeInWords(t *testing.T) {
	assert.Equal(t, "семь часов ровно", TimeInWords(7, 0))
	assert.Equal(t, "двадцать три часов сорок пять минут", TimeInWords(23, 45))
	assert.Equal(t, "ноль часов один минут", TimeInWords(0, 1))
}
