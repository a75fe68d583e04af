package usecase

import (
	"github.com/rocketscienceinc/irene-skills/internal/config"
)

// CommandKind identifies what a recognized utterance asks for.
type CommandKind int

const (
	CommandUnknown CommandKind = iota
	CommandCitiesStart
	CommandCountSteps
	CommandCalculate
	CommandCountUp
	CommandCountDown
	CommandToday
	CommandDaysToNewYear
	CommandTime
	CommandTimeInWords
	CommandHoroscope
	CommandMusicPause
	CommandMusicPlay
	CommandMusicNext
	CommandMusicPrevious
	CommandLibraryScan
	CommandLibraryStatus
	CommandFindArtist
	CommandArtistRadio
	CommandReminder
	CommandNews
	CommandWiki
	CommandWeather
	CommandCalendarEvent
)

var commandNames = map[CommandKind]string{
	CommandUnknown:       "unknown",
	CommandCitiesStart:   "cities_start",
	CommandCountSteps:    "count_steps",
	CommandCalculate:     "calculate",
	CommandCountUp:       "count_up",
	CommandCountDown:     "count_down",
	CommandToday:         "today",
	CommandDaysToNewYear: "days_to_new_year",
	CommandTime:          "time",
	CommandTimeInWords:   "time_in_words",
	CommandHoroscope:     "horoscope",
	CommandMusicPause:    "music_pause",
	CommandMusicPlay:     "music_play",
	CommandMusicNext:     "music_next",
	CommandMusicPrevious: "music_previous",
	CommandLibraryScan:   "library_scan",
	CommandLibraryStatus: "library_status",
	CommandFindArtist:    "find_artist",
	CommandArtistRadio:   "artist_radio",
	CommandReminder:      "reminder",
	CommandNews:          "news",
	CommandWiki:          "wiki",
	CommandWeather:       "weather",
	CommandCalendarEvent: "calendar_event",
}

func (that CommandKind) String() string {
	if name, ok := commandNames[that]; ok {
		return name
	}

	return commandNames[CommandUnknown]
}

// Binding ties a trigger phrase to a command. A '*' in the phrase stands for one or more words.
type Binding struct {
	Phrase string
	Kind   CommandKind
}

var staticBindings = []Binding{
	{"игра города", CommandCitiesStart},

	{"посчитай до * через *", CommandCountSteps},
	{"сколько будет", CommandCalculate},
	{"посчитай", CommandCalculate},
	{"решить", CommandCalculate},
	{"решить пример", CommandCalculate},

	{"посчитай до", CommandCountUp},
	{"посчитай от", CommandCountDown},

	{"какой сегодня день", CommandToday},
	{"какое сегодня число", CommandToday},
	{"сколько дней до нового года", CommandDaysToNewYear},
	{"сколько дней осталось до нового года", CommandDaysToNewYear},
	{"сколько времени", CommandTime},
	{"какое время", CommandTime},

	{"гороскоп", CommandHoroscope},

	{"пауза", CommandMusicPause},
	{"стоп", CommandMusicPause},
	{"замри", CommandMusicPause},
	{"останови музыку", CommandMusicPause},
	{"играй", CommandMusicPlay},
	{"продолжи", CommandMusicPlay},
	{"включи музыку", CommandMusicPlay},
	{"следующий", CommandMusicNext},
	{"следующий трек", CommandMusicNext},
	{"дальше", CommandMusicNext},
	{"далее", CommandMusicNext},
	{"предыдущий", CommandMusicPrevious},
	{"назад", CommandMusicPrevious},

	{"просканируй музыку", CommandLibraryScan},
	{"статус сканирования", CommandLibraryStatus},
	{"найди артиста", CommandFindArtist},
	{"включи радио", CommandArtistRadio},

	{"кто такой", CommandWiki},
	{"кто такая", CommandWiki},
	{"что такое", CommandWiki},
	{"расскажи про", CommandWiki},
	{"что за", CommandWiki},

	{"создай событие", CommandCalendarEvent},
	{"создай новое событие", CommandCalendarEvent},
}

// Bindings returns the static trigger table followed by the configurable trigger lists.
func Bindings(conf *config.Config) []Binding {
	bindings := make([]Binding, 0, len(staticBindings)+16)
	bindings = append(bindings, staticBindings...)

	bindings = appendPhrases(bindings, CommandTimeInWords, conf.DateTime.TimeTriggers)
	bindings = appendPhrases(bindings, CommandWeather, conf.Weather.Triggers)
	bindings = appendPhrases(bindings, CommandNews, conf.News.Triggers)
	bindings = appendPhrases(bindings, CommandReminder, conf.Reminder.Triggers)

	return bindings
}

func appendPhrases(bindings []Binding, kind CommandKind, phrases []string) []Binding {
	for _, phrase := range phrases {
		bindings = append(bindings, Binding{Phrase: phrase, Kind: kind})
	}

	return bindings
}
