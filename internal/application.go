package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/rocketscienceinc/irene-skills/internal/config"
	"github.com/rocketscienceinc/irene-skills/internal/entity"
	"github.com/rocketscienceinc/irene-skills/internal/pkg"
	"github.com/rocketscienceinc/irene-skills/internal/repository"
	"github.com/rocketscienceinc/irene-skills/internal/repository/storage"
	"github.com/rocketscienceinc/irene-skills/internal/service"
	"github.com/rocketscienceinc/irene-skills/internal/usecase"
	"github.com/rocketscienceinc/irene-skills/transport/rest"
	"github.com/rocketscienceinc/irene-skills/transport/telegram"
	"github.com/rocketscienceinc/irene-skills/transport/websocket"
)

const musicBackendAssistant = "musicassistant"

var ErrAddrNotFound = errors.New("redis address string is empty")

// App - the wired skills with their storage.
type App struct {
	logger *slog.Logger

	Dispatcher *usecase.Dispatcher
	Notifier   *usecase.Notifier

	library  service.LibraryService
	watcher  service.LibraryService
	reminder service.ReminderService
	closers  []func() error
}

// NewApp - connects storage and builds every enabled skill.
func NewApp(ctx context.Context, logger *slog.Logger, conf *config.Config) (*App, error) {
	app := &App{logger: logger.With("component", "app")}

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return nil, ErrAddrNotFound
	}

	redisStorage, err := storage.New(ctx, redisAddrString)
	if err != nil {
		return nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	app.closers = append(app.closers, redisStorage.Close)

	sessionRepo := repository.NewSessionRepository(redisStorage, conf.SessionTTL)
	outboxRepo := repository.NewOutboxRepository(redisStorage, conf.SessionTTL)
	quotaRepo := repository.NewQuotaRepository(redisStorage)

	app.Notifier = usecase.NewNotifier(logger, outboxRepo)

	skills, err := app.buildSkills(ctx, logger, conf, quotaRepo)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.Dispatcher, err = usecase.NewDispatcher(logger, sessionRepo, usecase.Bindings(conf), skills.Handlers(), skills.StateHandlers())
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("could not build dispatcher: %w", err)
	}

	return app, nil
}

func (that *App) buildSkills(ctx context.Context, logger *slog.Logger, conf *config.Config, quotaRepo repository.QuotaRepository) (*usecase.Skills, error) {
	client := &http.Client{}
	picker := pkg.NewTimeSeededRand()
	skills := &usecase.Skills{}

	if conf.Cities.Enabled {
		catalog := entity.NewCityCatalog(entity.DefaultCities)
		skills.Cities = service.NewCitiesService(logger, catalog, service.NewBotService(catalog, picker))
	}

	if conf.Calculator.Enabled {
		skills.Calculator = service.NewCalculatorService(conf.Calculator)
	}

	if conf.Counter.Enabled {
		skills.Counter = service.NewCounterService(conf.Counter)
	}

	if conf.DateTime.Enabled {
		skills.DateTime = service.NewDateTimeService(conf.DateTime, nil)
	}

	if conf.Horoscope.Enabled {
		skills.Horoscope = service.NewHoroscopeService(logger, conf.Horoscope, client, picker)
	}

	if conf.Music.Enabled {
		var player service.MediaPlayer = service.NewHomeAssistant(conf.Music.HomeAssistant, client)
		if conf.Music.Backend == musicBackendAssistant {
			player = service.NewMusicAssistant(conf.Music.MusicAssistant, client)
		}

		skills.Music = service.NewMusicService(logger, player)
	}

	if conf.Library.Enabled {
		sqliteStorage, err := storage.NewSQLiteStorage(conf.SQLiteStoragePath)
		if err != nil {
			return nil, fmt.Errorf("could not open sqlite storage: %w", err)
		}

		that.closers = append(that.closers, sqliteStorage.Close)

		if err = sqliteStorage.Init(ctx); err != nil {
			return nil, fmt.Errorf("could not init sqlite storage: %w", err)
		}

		libraryRepo := repository.NewLibraryRepository(sqliteStorage.Connection)
		player := service.NewHomeAssistant(conf.Library.HomeAssistant, client)

		that.library = service.NewLibraryService(logger, conf.Library, libraryRepo, player, that.Notifier)
		skills.Library = that.library
		if conf.Library.Watch {
			that.watcher = that.library
		}
	}

	if conf.Reminder.Enabled {
		that.reminder = service.NewReminderService(logger, conf.Reminder, that.Notifier, nil)
		skills.Reminder = that.reminder
	}

	if conf.News.Enabled {
		skills.News = service.NewNewsService(logger, conf.News.MaxHeadlines, service.NewsSources(conf.News, client), nil)
	}

	if conf.Wiki.Enabled {
		skills.Wiki = service.NewWikiService(logger, conf.Wiki, client)
	}

	if conf.Weather.Enabled {
		skills.Weather = service.NewWeatherService(logger, conf.Weather, service.WeatherSources(conf.Weather, client, quotaRepo))
	}

	if conf.Calendar.Enabled {
		skills.Calendar = service.NewCalendarService(logger, conf.Calendar, http.DefaultTransport, nil)
	}

	return skills, nil
}

// Close - waits for running scans, hands unfired reminders to the notifier and closes storage.
func (that *App) Close() {
	if that.library != nil {
		that.library.Close()
	}

	if that.reminder != nil {
		that.reminder.Close()
	}

	for i := len(that.closers) - 1; i >= 0; i-- {
		if err := that.closers[i](); err != nil {
			that.logger.Error("could not close storage", "error", err)
		}
	}
}

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	app, err := NewApp(ctx, logger, conf)
	if err != nil {
		return err
	}
	defer app.Close()

	errCh := make(chan error, 4)

	// run HTTP server
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.New(logger, app.Dispatcher, app.Notifier).Start(ctx, conf.HTTPPort); httpErr != nil {
			errCh <- fmt.Errorf("HTTP server error: %w", httpErr)
		}
	}()

	// run Websocket server
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		if wsErr := websocket.New(logger, app.Dispatcher, app.Notifier).Start(ctx, conf.SocketPort); wsErr != nil {
			errCh <- fmt.Errorf("WebSocket server error: %w", wsErr)
		}
	}()

	if conf.Telegram.Token != "" {
		api, tgErr := tgbotapi.NewBotAPI(conf.Telegram.Token)
		if tgErr != nil {
			return fmt.Errorf("could not connect to telegram: %w", tgErr)
		}

		go func() {
			log.Info("Starting Telegram bot", "bot", api.Self.UserName)
			if botErr := telegram.New(logger, api, app.Dispatcher, app.Notifier).Start(ctx); botErr != nil {
				errCh <- fmt.Errorf("telegram bot error: %w", botErr)
			}
		}()
	}

	if app.watcher != nil {
		go func() {
			log.Info("Watching music folder", "folder", conf.Library.MusicFolder)
			if watchErr := app.watcher.Watch(ctx); watchErr != nil {
				log.Error("music folder watcher stopped", "error", watchErr)
			}
		}()
	}

	select {
	case err = <-errCh:
		log.Error("server failed", "error", err)
		return err
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}
