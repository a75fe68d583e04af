package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/irene-skills/internal/config"
	"github.com/rocketscienceinc/irene-skills/internal/entity"
	"github.com/rocketscienceinc/irene-skills/internal/repository"
	"github.com/rocketscienceinc/irene-skills/testing/suite"
)

type notification struct {
	sessionID string
	text      string
}

type chanNotifier chan notification

func (that chanNotifier) Notify(_ context.Context, sessionID, text string) error {
	that <- notification{sessionID: sessionID, text: text}
	return nil
}

type playRequest struct {
	contentID   string
	contentType string
	extra       map[string]any
}

type fakeArtistPlayer struct {
	played []playRequest
}

func (that *fakeArtistPlayer) PlayMedia(_ context.Context, contentID, contentType string, extra map[string]any) error {
	that.played = append(that.played, playRequest{contentID: contentID, contentType: contentType, extra: extra})
	return nil
}

func TestLibraryService(t *testing.T) {
	newLibrary := func(t *testing.T, folder string) (context.Context, LibraryService, repository.LibraryRepository, chanNotifier, *fakeArtistPlayer) {
		t.Helper()

		ctx, db := suite.NewSQLite(t)
		repo := repository.NewLibraryRepository(db.Connection)
		notifier := make(chanNotifier, 1)
		player := &fakeArtistPlayer{}
		conf := config.Library{Enabled: true, MusicFolder: folder, MinSimilarity: 85, UseIntroPhrases: true}

		return ctx, NewLibraryService(discardLogger(), conf, repo, player, notifier), repo, notifier, player
	}

	t.Run("Scan indexes the folder and notifies the session", func(t *testing.T) {
		// Given: a music folder with two artists, one of them a collaboration
		root := t.TempDir()
		writeFiles(t, root, "Кино/Кукушка.mp3", "Кино/Пачка сигарет.mp3", "Ария & Кипелов/Я свободен.flac")
		ctx, svc, repo, notifier, _ := newLibrary(t, root)
		speaker := &recorder{}

		// When: a scan is started
		require.NoError(t, svc.Scan(ctx, newCall(entity.NewSession("s1"), speaker, "просканируй музыку")))

		// Then: the session hears the intro now and the report later
		assert.Equal(t, []string{"Запускаю фоновое сканирование музыки..."}, speaker.said)

		select {
		case got := <-notifier:
			assert.Equal(t, "s1", got.sessionID)
			assert.Equal(t, "Сканирование музыки завершено. Обработано файлов: 3. Чистых артистов найдено: 1.", got.text)
		case <-time.After(5 * time.Second):
			t.Fatal("scan did not finish")
		}

		count, err := repo.CountTracks(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, count)

		require.Eventually(t, func() bool {
			status := &recorder{}
			if err := svc.Status(ctx, newCall(entity.NewSession("s1"), status, "")); err != nil {
				return false
			}

			return status.last() == "Сканирование завершено. Найдено чистых артистов: 1."
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("Scan of a missing folder", func(t *testing.T) {
		ctx, svc, _, notifier, _ := newLibrary(t, "")

		require.NoError(t, svc.Scan(ctx, newCall(entity.NewSession("s1"), &recorder{}, "")))

		select {
		case got := <-notifier:
			assert.Equal(t, "Папка с музыкой не настроена или не существует.", got.text)
		case <-time.After(5 * time.Second):
			t.Fatal("scan did not finish")
		}
	})

	t.Run("Second scan is refused while one runs", func(t *testing.T) {
		ctx, svc, _, _, _ := newLibrary(t, t.TempDir())
		svc.(*libraryService).scanning.Store(true)
		speaker := &recorder{}

		require.NoError(t, svc.Scan(ctx, newCall(entity.NewSession("s1"), speaker, "")))
		require.NoError(t, svc.Status(ctx, newCall(entity.NewSession("s1"), speaker, "")))

		assert.Equal(t, []string{
			"Сканирование уже выполняется.",
			"Сканирование музыки ещё выполняется. Пожалуйста, подождите.",
		}, speaker.said)
	})

	t.Run("FindArtist and Radio play the closest artist", func(t *testing.T) {
		// Given: an indexed library
		ctx, svc, repo, _, player := newLibrary(t, t.TempDir())
		require.NoError(t, repo.Replace(ctx, []entity.Track{
			{Path: "/music/Eminem/Lose Yourself.mp3", Artist: "Eminem", Title: "Lose Yourself"},
			{Path: "/music/Кино/Кукушка.mp3", Artist: "Кино", Title: "Кукушка"},
		}, []string{"Eminem", "Кино"}))
		speaker := &recorder{}

		// When: artists are asked for in Russian
		require.NoError(t, svc.FindArtist(ctx, &entity.Call{Session: entity.NewSession("s1"), Speaker: speaker, Args: "Кино"}))
		require.NoError(t, svc.Radio(ctx, &entity.Call{Session: entity.NewSession("s1"), Speaker: speaker, Args: "эминем"}))

		// Then: both are matched and played in the right mode
		assert.Equal(t, []string{
			"Ищу артиста...", "Включаю артиста Кино.",
			"Запускаю радио...", "Запускаю радио по артисту Eminem.",
		}, speaker.said)

		require.Len(t, player.played, 2)
		assert.Equal(t, "Кино", player.played[0].contentID)
		assert.Equal(t, "artist", player.played[0].contentType)
		assert.Equal(t, map[string]any{"radio_mode": false, "dont_stop_the_music": false}, player.played[0].extra["extra"])
		assert.Equal(t, map[string]any{"radio_mode": true, "dont_stop_the_music": true}, player.played[1].extra["extra"])
	})

	t.Run("Unknown artist", func(t *testing.T) {
		ctx, svc, repo, _, player := newLibrary(t, t.TempDir())
		require.NoError(t, repo.Replace(ctx, nil, []string{"Кино"}))
		speaker := &recorder{}

		require.NoError(t, svc.FindArtist(ctx, &entity.Call{Session: entity.NewSession("s1"), Speaker: speaker, Args: "агата кристи"}))

		assert.Equal(t, "Артист не найден.", speaker.last())
		assert.Empty(t, player.played)
	})

	t.Run("Empty library", func(t *testing.T) {
		ctx, svc, _, _, _ := newLibrary(t, t.TempDir())
		speaker := &recorder{}

		require.NoError(t, svc.Radio(ctx, &entity.Call{Session: entity.NewSession("s1"), Speaker: speaker, Args: "кино"}))
		require.NoError(t, svc.Status(ctx, newCall(entity.NewSession("s1"), speaker, "")))

		assert.Equal(t, []string{
			"Запускаю радио...",
			"Музыка не просканирована.",
			"Музыка не просканирована или не найдено чистых артистов.",
		}, speaker.said)
	})

	t.Run("Close waits for a running scan", func(t *testing.T) {
		root := t.TempDir()
		writeFiles(t, root, "Кино/Кукушка.mp3")
		ctx, svc, _, notifier, _ := newLibrary(t, root)

		require.NoError(t, svc.Scan(ctx, newCall(entity.NewSession("s1"), &recorder{}, "")))
		svc.Close()

		require.Len(t, notifier, 1)
		assert.Equal(t, "Сканирование музыки завершено. Обработано файлов: 1. Чистых артистов найдено: 1.", (<-notifier).text)
	})
}

func TestLibraryService_Watch(t *testing.T) {
	t.Run("A change seen during a scan is rescanned afterwards", func(t *testing.T) {
		// Given: a watched folder while another scan holds the library
		root := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(root, "Кино"), 0o755))

		ctx, db := suite.NewSQLite(t)
		repo := repository.NewLibraryRepository(db.Connection)
		conf := config.Library{Enabled: true, MusicFolder: root, MinSimilarity: 85}
		svc := NewLibraryService(discardLogger(), conf, repo, &fakeArtistPlayer{}, make(chanNotifier, 1)).(*libraryService)
		svc.debounce = 20 * time.Millisecond
		svc.scanning.Store(true)

		watchCtx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() { done <- svc.Watch(watchCtx) }()
		t.Cleanup(func() {
			cancel()
			<-done
		})

		time.Sleep(200 * time.Millisecond)

		// When: a track is added and the debounce passes while the scan still runs
		writeFiles(t, root, "Кино/Кукушка.mp3")
		time.Sleep(150 * time.Millisecond)

		count, err := repo.CountTracks(ctx)
		require.NoError(t, err)
		require.Zero(t, count)

		svc.scanning.Store(false)

		// Then: the watcher rescans once the library is free
		require.Eventually(t, func() bool {
			count, err := repo.CountTracks(ctx)
			return err == nil && count == 1
		}, 2*time.Second, 20*time.Millisecond)
	})
}
