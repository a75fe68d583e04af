package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/rocketscienceinc/irene-skills/internal/config"
	"github.com/rocketscienceinc/irene-skills/internal/entity"
	"github.com/rocketscienceinc/irene-skills/internal/pkg"
	"github.com/rocketscienceinc/irene-skills/internal/repository"
)

const watchDebounce = 5 * time.Second

// Notifier delivers a message to a session outside of the request that caused it.
type Notifier interface {
	Notify(ctx context.Context, sessionID, text string) error
}

// ArtistPlayer starts playback of an artist.
type ArtistPlayer interface {
	PlayMedia(ctx context.Context, contentID, contentType string, extra map[string]any) error
}

type LibraryService interface {
	// Scan indexes the music folder in the background and notifies the session when done.
	Scan(ctx context.Context, call *entity.Call) error
	Status(ctx context.Context, call *entity.Call) error
	FindArtist(ctx context.Context, call *entity.Call) error
	Radio(ctx context.Context, call *entity.Call) error
	// Watch rescans the folder after it changes until ctx is done.
	Watch(ctx context.Context) error
	// Close waits for background scans to finish.
	Close()
}

type libraryService struct {
	logger *slog.Logger

	conf     config.Library
	repo     repository.LibraryRepository
	player   ArtistPlayer
	notifier Notifier

	debounce time.Duration
	scanning atomic.Bool
	running  sync.WaitGroup
}

func NewLibraryService(
	logger *slog.Logger,
	conf config.Library,
	repo repository.LibraryRepository,
	player ArtistPlayer,
	notifier Notifier,
) LibraryService {
	return &libraryService{
		logger:   logger,
		conf:     conf,
		repo:     repo,
		player:   player,
		notifier: notifier,
		debounce: watchDebounce,
	}
}

func (that *libraryService) Scan(ctx context.Context, call *entity.Call) error {
	if !that.scanning.CompareAndSwap(false, true) {
		return call.Say(ctx, "Сканирование уже выполняется.")
	}

	if that.conf.UseIntroPhrases {
		if err := call.Say(ctx, "Запускаю фоновое сканирование музыки..."); err != nil {
			that.scanning.Store(false)
			return err
		}
	}

	sessionID := call.Session.ID
	background := context.WithoutCancel(ctx)

	that.running.Add(1)
	go func() {
		defer that.running.Done()
		defer that.scanning.Store(false)

		text := that.scanAndReport(background)
		if err := that.notifier.Notify(background, sessionID, text); err != nil {
			that.logger.Error("failed to deliver scan result", "sessionID", sessionID, "error", err)
		}
	}()

	return nil
}

func (that *libraryService) scanAndReport(ctx context.Context) string {
	report, err := that.rescan(ctx)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return "Папка с музыкой не настроена или не существует."
	case err != nil:
		that.logger.Error("music scan failed", "error", err)
		return "Ошибка при сканировании: " + truncateRunes(err.Error(), 100)
	}

	return fmt.Sprintf("Сканирование музыки завершено. Обработано файлов: %d. Чистых артистов найдено: %d.",
		report.TotalFiles, report.PureArtists)
}

func (that *libraryService) rescan(ctx context.Context) (entity.ScanReport, error) {
	log := that.logger.With("method", "rescan", "folder", that.conf.MusicFolder)

	folder := strings.TrimSpace(that.conf.MusicFolder)
	if folder == "" {
		return entity.ScanReport{}, fmt.Errorf("music folder is empty: %w", os.ErrNotExist)
	}

	if info, err := os.Stat(folder); err != nil || !info.IsDir() {
		return entity.ScanReport{}, fmt.Errorf("music folder %s: %w", folder, os.ErrNotExist)
	}

	tracks, artists, report, err := ScanFolder(ctx, folder)
	if err != nil {
		return report, fmt.Errorf("failed to scan folder: %w", err)
	}

	if err = that.repo.Replace(ctx, tracks, artists); err != nil {
		return report, fmt.Errorf("failed to save library: %w", err)
	}

	log.Info("music scan finished", "files", report.TotalFiles, "artists", report.PureArtists)

	return report, nil
}

func (that *libraryService) Close() {
	that.running.Wait()
}

func (that *libraryService) Status(ctx context.Context, call *entity.Call) error {
	if that.scanning.Load() {
		return call.Say(ctx, "Сканирование музыки ещё выполняется. Пожалуйста, подождите.")
	}

	artists, err := that.repo.PureArtists(ctx)
	if err != nil {
		return fmt.Errorf("failed to get artists: %w", err)
	}

	if len(artists) == 0 {
		return call.Say(ctx, "Музыка не просканирована или не найдено чистых артистов.")
	}

	return call.Say(ctx, fmt.Sprintf("Сканирование завершено. Найдено чистых артистов: %d.", len(artists)))
}

func (that *libraryService) FindArtist(ctx context.Context, call *entity.Call) error {
	if that.conf.UseIntroPhrases {
		if err := call.Say(ctx, "Ищу артиста..."); err != nil {
			return err
		}
	}

	return that.play(ctx, call, false, "Включаю артиста %s.", "Артист не найден.")
}

func (that *libraryService) Radio(ctx context.Context, call *entity.Call) error {
	if that.conf.UseIntroPhrases {
		if err := call.Say(ctx, "Запускаю радио..."); err != nil {
			return err
		}
	}

	return that.play(ctx, call, true, "Запускаю радио по артисту %s.", "Артист для радио не найден.")
}

func (that *libraryService) play(ctx context.Context, call *entity.Call, radio bool, found, notFound string) error {
	log := that.logger.With("method", "play", "radio", radio)

	artists, err := that.repo.PureArtists(ctx)
	if err != nil {
		return fmt.Errorf("failed to get artists: %w", err)
	}

	if len(artists) == 0 {
		return call.Say(ctx, "Музыка не просканирована.")
	}

	artist, ok := that.match(call.Args, artists)
	if !ok {
		return call.Say(ctx, notFound)
	}

	extra := map[string]any{
		"extra": map[string]any{
			"radio_mode":          radio,
			"dont_stop_the_music": radio,
		},
	}

	if err = that.player.PlayMedia(ctx, artist, "artist", extra); err != nil {
		log.Error("failed to play artist", "artist", artist, "error", err)
	}

	return call.Say(ctx, fmt.Sprintf(found, artist))
}

func (that *libraryService) match(phrase string, artists []string) (string, bool) {
	query := pkg.NormalizePhrase(phrase)
	if query == "" {
		return "", false
	}

	choices := make([]string, len(artists))
	for i, artist := range artists {
		choices[i] = PhoneticRU(artist)
	}

	index, score := BestMatch(query, choices)
	if index < 0 || score < that.conf.MinSimilarity {
		return "", false
	}

	return artists[index], true
}

func (that *libraryService) Watch(ctx context.Context) error {
	log := that.logger.With("method", "Watch", "folder", that.conf.MusicFolder)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	err = filepath.WalkDir(that.conf.MusicFolder, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() {
			return nil
		}

		if strings.HasPrefix(d.Name(), ".") && path != that.conf.MusicFolder {
			return filepath.SkipDir
		}

		return watcher.Add(path)
	})
	if err != nil {
		return fmt.Errorf("failed to watch music folder: %w", err)
	}

	changed := make(chan struct{}, 1)

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	arm := func() {
		if timer != nil {
			timer.Stop()
		}

		timer = time.AfterFunc(that.debounce, func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if event.Has(fsnotify.Chmod) {
				continue
			}

			if event.Has(fsnotify.Create) {
				if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
					_ = watcher.Add(event.Name)
				}
			}

			arm()
		case <-changed:
			// a running scan may have missed the change; try again later
			if !that.scanning.CompareAndSwap(false, true) {
				arm()
				continue
			}

			if _, err = that.rescan(ctx); err != nil {
				log.Error("rescan after change failed", "error", err)
			}

			that.scanning.Store(false)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			log.Error("watcher error", "error", err)
		}
	}
}

func truncateRunes(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}

	return string(runes[:limit])
}
