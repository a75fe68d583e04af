package entity

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/rocketscienceinc/irene-skills/internal/apperror"
)

// StopWords end a game in progress.
var StopWords = []string{"хватит", "стоп", "выход", "выйти", "закончить", "конец"}

// CitiesGame is the state of one city-naming game.
type CitiesGame struct {
	Active     bool     `json:"active"`
	LastCity   string   `json:"last_city"`
	UsedCities []string `json:"used_cities"`
	// PlayerTurn is tracked but never consulted.
	PlayerTurn bool `json:"player_turn"`
}

// NewCitiesGame starts a game with the opening city already played.
func NewCitiesGame(opening string) *CitiesGame {
	return &CitiesGame{
		Active:     true,
		LastCity:   opening,
		UsedCities: []string{opening},
		PlayerTurn: true,
	}
}

// RequiredLetter is the letter the next city must start with, or zero when any letter goes.
func (that *CitiesGame) RequiredLetter() rune {
	if that.LastCity == "" {
		return 0
	}

	return LastLetter(that.LastCity)
}

func (that *CitiesGame) IsUsed(city string) bool {
	key := NormalizeCity(city)
	for _, used := range that.UsedCities {
		if NormalizeCity(used) == key {
			return true
		}
	}

	return false
}

// MakeTurn validates the player's city and records it. It returns the catalog
// spelling of the accepted city. A rejected city leaves the game untouched.
func (that *CitiesGame) MakeTurn(catalog *CityCatalog, utterance string) (string, error) {
	if !that.Active {
		return "", apperror.ErrGameIsNotStarted
	}

	city, ok := catalog.Lookup(utterance)
	if !ok {
		return "", fmt.Errorf("%w: %s", apperror.ErrUnknownCity, utterance)
	}

	if letter := that.RequiredLetter(); letter != 0 && FirstLetter(city) != letter {
		return "", fmt.Errorf("%w: want %c", apperror.ErrWrongLetter, letter)
	}

	if that.IsUsed(city) {
		return "", fmt.Errorf("%w: %s", apperror.ErrCityAlreadyUsed, city)
	}

	that.play(city)
	that.PlayerTurn = false

	return city, nil
}

// MakeOpponentTurn records the opponent's city.
func (that *CitiesGame) MakeOpponentTurn(city string) {
	that.play(city)
	that.PlayerTurn = true
}

func (that *CitiesGame) Finish() {
	that.Active = false
}

func (that *CitiesGame) play(city string) {
	that.UsedCities = append(that.UsedCities, city)
	that.LastCity = city
}

// IsStopWord reports whether the utterance asks to end the game.
func IsStopWord(utterance string) bool {
	key := NormalizeCity(utterance)
	for _, word := range StopWords {
		if key == word {
			return true
		}
	}

	return false
}

// NormalizeCity folds a city name to its comparison key: lower case, no hyphens or whitespace, ё as е.
func NormalizeCity(city string) string {
	lower := cases.Lower(language.Russian).String(city)

	var b strings.Builder
	b.Grow(len(lower))

	for _, r := range lower {
		switch {
		case r == '-' || unicode.IsSpace(r):
			continue
		case r == 'ё':
			b.WriteRune('е')
		default:
			b.WriteRune(r)
		}
	}

	return b.String()
}

// FirstLetter is the first letter of the normalized city.
func FirstLetter(city string) rune {
	for _, r := range NormalizeCity(city) {
		return r
	}

	return 0
}

// LastLetter is the letter the next city must start with. Soft sign, hard sign and ы
// never start a city, so the letter before them is used instead.
func LastLetter(city string) rune {
	runes := []rune(NormalizeCity(city))
	if len(runes) == 0 {
		return 0
	}

	last := runes[len(runes)-1]
	if isSkippedLetter(last) && len(runes) > 1 {
		return runes[len(runes)-2]
	}

	return last
}

func isSkippedLetter(r rune) bool {
	return r == 'ь' || r == 'ъ' || r == 'ы'
}
