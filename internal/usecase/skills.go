package usecase

import (
	"context"

	"github.com/rocketscienceinc/irene-skills/internal/entity"
	"github.com/rocketscienceinc/irene-skills/internal/service"
)

// Skills holds the enabled skill services; a nil service means the skill is off.
type Skills struct {
	Cities     service.CitiesService
	Calculator service.CalculatorService
	Counter    service.CounterService
	DateTime   service.DateTimeService
	Horoscope  service.HoroscopeService
	Music      service.MusicService
	Library    service.LibraryService
	Reminder   service.ReminderService
	News       service.NewsService
	Wiki       service.WikiService
	Weather    service.WeatherService
	Calendar   service.CalendarService
}

// Handlers maps every command of the enabled skills to its handler.
func (that *Skills) Handlers() map[CommandKind]Handler {
	handlers := make(map[CommandKind]Handler)

	if that.Cities != nil {
		handlers[CommandCitiesStart] = that.Cities.Start
	}

	if that.Calculator != nil {
		handlers[CommandCountSteps] = that.Calculator.CountSteps
		handlers[CommandCalculate] = that.Calculator.Calculate
	}

	if that.Counter != nil {
		handlers[CommandCountUp] = that.Counter.CountUp
		handlers[CommandCountDown] = that.Counter.CountDown
	}

	if that.DateTime != nil {
		handlers[CommandToday] = that.DateTime.Today
		handlers[CommandDaysToNewYear] = that.DateTime.DaysToNewYear
		handlers[CommandTime] = that.DateTime.Time
		handlers[CommandTimeInWords] = that.DateTime.TimeInWords
	}

	if that.Horoscope != nil {
		handlers[CommandHoroscope] = that.Horoscope.Horoscope
	}

	if that.Music != nil {
		handlers[CommandMusicPause] = that.media(service.MediaPause)
		handlers[CommandMusicPlay] = that.media(service.MediaPlay)
		handlers[CommandMusicNext] = that.media(service.MediaNext)
		handlers[CommandMusicPrevious] = that.media(service.MediaPrevious)
	}

	if that.Library != nil {
		handlers[CommandLibraryScan] = that.Library.Scan
		handlers[CommandLibraryStatus] = that.Library.Status
		handlers[CommandFindArtist] = that.Library.FindArtist
		handlers[CommandArtistRadio] = that.Library.Radio
	}

	if that.Reminder != nil {
		handlers[CommandReminder] = that.Reminder.Remind
	}

	if that.News != nil {
		handlers[CommandNews] = that.News.News
	}

	if that.Wiki != nil {
		handlers[CommandWiki] = that.Wiki.Lookup
	}

	if that.Weather != nil {
		handlers[CommandWeather] = that.Weather.Weather
	}

	if that.Calendar != nil {
		handlers[CommandCalendarEvent] = that.Calendar.CreateEvent
	}

	return handlers
}

// StateHandlers maps multi-turn session states to the handler that owns the next utterance.
func (that *Skills) StateHandlers() map[entity.State]Handler {
	handlers := make(map[entity.State]Handler)

	if that.Cities != nil {
		handlers[entity.StateCities] = that.Cities.Continue
	}

	return handlers
}

func (that *Skills) media(action service.MediaAction) Handler {
	return func(ctx context.Context, call *entity.Call) error {
		return that.Music.Control(ctx, call, action)
	}
}
