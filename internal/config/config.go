package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel          string        `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort          string        `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort        string        `yaml:"socket-port" env:"SOCKET_PORT" env-default:"9091"`
	Redis             Redis         `yaml:"redis"`
	SQLiteStoragePath string        `yaml:"sqlite-storage-path" env:"SQLITE_STORAGE_PATH" env-default:"skills.db"`
	Telegram          Telegram      `yaml:"telegram"`
	SessionTTL        time.Duration `yaml:"session-ttl" env-default:"24h"`

	Cities     Cities     `yaml:"cities"`
	Calculator Calculator `yaml:"calculator"`
	Counter    Counter    `yaml:"counter"`
	DateTime   DateTime   `yaml:"date-time"`
	Horoscope  Horoscope  `yaml:"horoscope"`
	Music      Music      `yaml:"music"`
	Library    Library    `yaml:"library"`
	Reminder   Reminder   `yaml:"reminder"`
	News       News       `yaml:"news"`
	Wiki       Wiki       `yaml:"wiki"`
	Weather    Weather    `yaml:"weather"`
	Calendar   Calendar   `yaml:"calendar"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

type Telegram struct {
	Token string `yaml:"token" env:"TELEGRAM_TOKEN" env-default:""`
}

type Cities struct {
	Enabled bool `yaml:"enabled" env-default:"true"`
}

type Calculator struct {
	Enabled   bool    `yaml:"enabled" env-default:"true"`
	MaxNumber int     `yaml:"max-number" env-default:"1000"`
	MaxResult float64 `yaml:"max-result" env-default:"10000"`
}

type Counter struct {
	Enabled   bool          `yaml:"enabled" env-default:"true"`
	Pause     time.Duration `yaml:"pause" env-default:"700ms"`
	MaxNumber int           `yaml:"max-number" env-default:"20"`
}

type DateTime struct {
	Enabled      bool     `yaml:"enabled" env-default:"true"`
	Reply        string   `yaml:"reply" env-default:"Сейчас {time}"`
	TimeTriggers []string `yaml:"time-triggers" env-default:"который час,сколько время,время сейчас,скажи время"`
}

type Horoscope struct {
	Enabled         bool          `yaml:"enabled" env-default:"true"`
	BaseURL         string        `yaml:"base-url" env-default:"https://1001goroskop.ru"`
	DefaultSign     string        `yaml:"default-sign" env-default:"taurus"`
	UseIntroPhrases bool          `yaml:"use-intro-phrases" env-default:"true"`
	Timeout         time.Duration `yaml:"timeout" env-default:"8s"`
	UserAgent       string        `yaml:"user-agent" env-default:"Irene-Voice-Assistant (+https://github.com/AlexeyBond/Irene-Voice-Assistant)"`
}

type Music struct {
	Enabled bool `yaml:"enabled" env-default:"true"`
	// Backend is "homeassistant" or "musicassistant".
	Backend        string         `yaml:"backend" env-default:"homeassistant"`
	HomeAssistant  HomeAssistant  `yaml:"home-assistant"`
	MusicAssistant MusicAssistant `yaml:"music-assistant"`
}

type HomeAssistant struct {
	URL      string        `yaml:"url" env:"HASS_URL" env-default:"http://localhost:8123"`
	Token    string        `yaml:"token" env:"HASS_TOKEN" env-default:""`
	EntityID string        `yaml:"entity-id" env:"HASS_ENTITY_ID" env-default:""`
	Timeout  time.Duration `yaml:"timeout" env-default:"10s"`
}

type MusicAssistant struct {
	URL      string        `yaml:"url" env:"MA_URL" env-default:"http://music-assistant:8095"`
	Token    string        `yaml:"token" env:"MA_TOKEN" env-default:""`
	PlayerID string        `yaml:"player-id" env:"MA_PLAYER_ID" env-default:""`
	Timeout  time.Duration `yaml:"timeout" env-default:"5s"`
}

type Library struct {
	Enabled         bool          `yaml:"enabled" env-default:"true"`
	MusicFolder     string        `yaml:"music-folder" env:"MUSIC_FOLDER" env-default:""`
	Watch           bool          `yaml:"watch" env-default:"false"`
	MinSimilarity   int           `yaml:"min-similarity" env-default:"85"`
	UseIntroPhrases bool          `yaml:"use-intro-phrases" env-default:"true"`
	HomeAssistant   HomeAssistant `yaml:"home-assistant"`
}

type Reminder struct {
	Enabled     bool     `yaml:"enabled" env-default:"true"`
	Triggers    []string `yaml:"triggers" env-default:"напомни,напомни мне,запомни и напомни"`
	ReplySet    string   `yaml:"reply-set" env-default:"Хорошо, напомню через {duration} {unit}: «{text}»"`
	ReplyRemind string   `yaml:"reply-remind" env-default:"Вы просили напомнить: {text}"`
}

type News struct {
	Enabled      bool          `yaml:"enabled" env-default:"true"`
	MaxHeadlines int           `yaml:"max-headlines" env-default:"7"`
	Triggers     []string      `yaml:"triggers" env-default:"новости,расскажи новости,какие новости,прочитай новости"`
	RSSURL       string        `yaml:"rss-url" env-default:"https://news.mail.ru/rss/98/"`
	WorldNews    WorldNews     `yaml:"world-news"`
	FreshRSS     FreshRSS      `yaml:"fresh-rss"`
	Timeout      time.Duration `yaml:"timeout" env-default:"8s"`
}

type WorldNews struct {
	Enabled bool   `yaml:"enabled" env-default:"false"`
	Key     string `yaml:"key" env:"WORLDNEWS_KEY" env-default:""`
	URL     string `yaml:"url" env-default:"https://api.worldnewsapi.com/top-news"`
}

type FreshRSS struct {
	Enabled  bool   `yaml:"enabled" env-default:"false"`
	URL      string `yaml:"url" env-default:"http://127.0.0.1:8880/api/greader.php"`
	Username string `yaml:"username" env:"FRESHRSS_USERNAME" env-default:""`
	Password string `yaml:"password" env:"FRESHRSS_PASSWORD" env-default:""`
}

type Wiki struct {
	Enabled          bool          `yaml:"enabled" env-default:"true"`
	Language         string        `yaml:"language" env-default:"ru"`
	BaseURL          string        `yaml:"base-url" env-default:""`
	MaxExtractLength int           `yaml:"max-extract-length" env-default:"1500"`
	Timeout          time.Duration `yaml:"timeout" env-default:"10s"`
	UserAgent        string        `yaml:"user-agent" env-default:"Irene-Voice-Assistant (+https://github.com/AlexeyBond/Irene-Voice-Assistant)"`
}

type Weather struct {
	Enabled  bool          `yaml:"enabled" env-default:"true"`
	City     string        `yaml:"city" env-default:"Moscow"`
	Lang     string        `yaml:"lang" env-default:"ru"`
	Triggers []string      `yaml:"triggers" env-default:"погода,какая погода,скажи погоду,погода сейчас,что на улице"`
	Timeout  time.Duration `yaml:"timeout" env-default:"8s"`

	OpenWeather OpenWeather `yaml:"open-weather"`
	Yandex      Yandex      `yaml:"yandex"`
	Wttr        Wttr        `yaml:"wttr"`

	NoSourceConfigured string `yaml:"no-source-configured" env-default:"Ни один источник погоды не настроен"`
	AllSourcesFailed   string `yaml:"all-sources-failed" env-default:"Не удалось получить погоду ни от одного источника"`
}

type OpenWeather struct {
	Enabled bool   `yaml:"enabled" env-default:"true"`
	Key     string `yaml:"key" env:"OWM_API_KEY" env-default:""`
	URL     string `yaml:"url" env-default:"https://api.openweathermap.org/data/2.5/weather"`
}

type Yandex struct {
	Enabled    bool    `yaml:"enabled" env-default:"false"`
	Key        string  `yaml:"key" env:"YANDEX_WEATHER_KEY" env-default:""`
	URL        string  `yaml:"url" env-default:"https://api.weather.yandex.ru/v2/forecast"`
	DailyQuota int     `yaml:"daily-quota" env-default:"40"`
	Lat        float64 `yaml:"lat" env-default:"55.7558"`
	Lon        float64 `yaml:"lon" env-default:"37.6176"`
}

type Wttr struct {
	Enabled bool   `yaml:"enabled" env-default:"true"`
	URL     string `yaml:"url" env-default:""`
}

type Calendar struct {
	Enabled  bool          `yaml:"enabled" env-default:"true"`
	URL      string        `yaml:"url" env:"CALDAV_URL" env-default:""`
	Username string        `yaml:"username" env:"CALDAV_USERNAME" env-default:""`
	Password string        `yaml:"password" env:"CALDAV_PASSWORD" env-default:""`
	Timezone string        `yaml:"timezone" env-default:"Europe/Moscow"`
	Timeout  time.Duration `yaml:"timeout" env-default:"10s"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

// MustLoadEnv - load configuration from environment and defaults only.
func MustLoadEnv() *Config {
	config := &Config{}

	if err := cleanenv.ReadEnv(config); err != nil {
		panic(fmt.Errorf("unable to load config from environment: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
