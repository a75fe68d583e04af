package service

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/irene-skills/internal/config"
	"github.com/rocketscienceinc/irene-skills/internal/entity"
)

func TestParseEventDate(t *testing.T) {
	now := time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		text    string
		date    time.Time
		summary string
	}{
		{"день рождения мамы двадцать седьмого декабря", time.Date(2026, time.December, 27, 12, 0, 0, 0, time.UTC), "день рождения мамы"},
		{"встреча 5 марта", time.Date(2027, time.March, 5, 12, 0, 0, 0, time.UTC), "встреча"},
		{"созвон 19 октября", time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC), "созвон"},
		{"третьего мая", time.Date(2027, time.May, 3, 12, 0, 0, 0, time.UTC), defaultEventName},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			date, summary, ok := ParseEventDate(tt.text, now)

			require.True(t, ok)
			assert.Equal(t, tt.date, date)
			assert.Equal(t, tt.summary, summary)
		})
	}

	for _, text := range []string{"встреча завтра", "декабря", "встреча тридцатого февраля", "встреча 32 мая"} {
		t.Run("Rejects "+text, func(t *testing.T) {
			_, _, ok := ParseEventDate(text, now)

			assert.False(t, ok)
		})
	}
}

type davRequest struct {
	method      string
	path        string
	contentType string
	body        string
}

// newDAVServer challenges every unauthenticated request with digest auth and stores the rest.
func newDAVServer(t *testing.T, status int) (*httptest.Server, func() []davRequest) {
	t.Helper()

	var (
		mu       sync.Mutex
		requests []davRequest
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Digest ") || !strings.Contains(auth, `username="irina"`) {
			w.Header().Set("WWW-Authenticate", `Digest realm="BaikalDAV", nonce="dcd98b7102dd2f0e8b11d0f600bfb0c093", qop="auth", algorithm=MD5`)
			w.WriteHeader(http.StatusUnauthorized)

			return
		}

		body, _ := io.ReadAll(r.Body)

		mu.Lock()
		requests = append(requests, davRequest{method: r.Method, path: r.URL.Path, contentType: r.Header.Get("Content-Type"), body: string(body)})
		mu.Unlock()

		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)

	return server, func() []davRequest {
		mu.Lock()
		defer mu.Unlock()

		return append([]davRequest(nil), requests...)
	}
}

func TestCalendarService_CreateEvent(t *testing.T) {
	ctx := context.Background()
	now := func() time.Time { return time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC) }

	newConf := func(url string) config.Calendar {
		return config.Calendar{Enabled: true, URL: url + "/dav/calendars/irina/default/", Username: "irina", Password: "secret", Timezone: "UTC"}
	}

	create := func(t *testing.T, conf config.Calendar, args string) string {
		t.Helper()

		speaker := &recorder{}
		svc := NewCalendarService(discardLogger(), conf, http.DefaultTransport, now)
		call := &entity.Call{Session: entity.NewSession("s1"), Speaker: speaker, Args: args}
		require.NoError(t, svc.CreateEvent(ctx, call))

		return speaker.last()
	}

	t.Run("Puts an event with digest auth", func(t *testing.T) {
		// Given: a CalDAV server behind digest auth
		server, requests := newDAVServer(t, http.StatusCreated)

		// When: an event is created
		reply := create(t, newConf(server.URL), "День рождения мамы двадцать седьмого декабря")

		// Then: one iCalendar file is put into the calendar collection
		assert.Equal(t, "Событие «день рождения мамы» создано", reply)

		got := requests()
		require.Len(t, got, 1)
		assert.Equal(t, http.MethodPut, got[0].method)
		assert.True(t, strings.HasPrefix(got[0].path, "/dav/calendars/irina/default/"))
		assert.True(t, strings.HasSuffix(got[0].path, ".ics"))
		assert.Equal(t, "text/calendar; charset=utf-8", got[0].contentType)
		assert.Contains(t, got[0].body, "SUMMARY:день рождения мамы")
		assert.Contains(t, got[0].body, "DTSTART;TZID=UTC:20261227T120000")
		assert.Contains(t, got[0].body, "DTEND;TZID=UTC:20261227T130000")
	})

	t.Run("Event carries the calendar timezone", func(t *testing.T) {
		// Given: a calendar in Moscow time
		server, requests := newDAVServer(t, http.StatusCreated)
		conf := newConf(server.URL)
		conf.Timezone = "Europe/Moscow"

		// When: an event is created
		reply := create(t, conf, "встреча 5 марта")

		// Then: start and end are local noon with the zone id
		assert.Equal(t, "Событие «встреча» создано", reply)

		got := requests()
		require.Len(t, got, 1)
		assert.Contains(t, got[0].body, "DTSTART;TZID=Europe/Moscow:20270305T120000")
		assert.Contains(t, got[0].body, "DTEND;TZID=Europe/Moscow:20270305T130000")
	})

	t.Run("Server rejects the event", func(t *testing.T) {
		server, _ := newDAVServer(t, http.StatusForbidden)

		assert.Equal(t, "Ошибка при создании события", create(t, newConf(server.URL), "встреча 5 марта"))
	})

	t.Run("Server is unreachable", func(t *testing.T) {
		assert.Equal(t, "Ошибка подключения к календарю", create(t, newConf("http://127.0.0.1:1"), "встреча 5 марта"))
	})

	t.Run("Replies without calling the server", func(t *testing.T) {
		server, requests := newDAVServer(t, http.StatusCreated)

		assert.Equal(t, "Не указано описание события", create(t, newConf(server.URL), " "))
		assert.Equal(t, "Не настроены данные Baikal", create(t, config.Calendar{Timezone: "UTC"}, "встреча 5 марта"))
		assert.Equal(t, "Скажите дату, например: двадцать седьмого декабря", create(t, newConf(server.URL), "встреча завтра"))
		assert.Empty(t, requests())
	})
}
