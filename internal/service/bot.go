package service

import (
	"fmt"

	"github.com/rocketscienceinc/irene-skills/internal/apperror"
	"github.com/rocketscienceinc/irene-skills/internal/entity"
)

// Picker chooses an index in [0, n).
type Picker interface {
	Intn(n int) int
}

type BotService interface {
	// MakeTurn plays a random unused catalog city on the required letter.
	MakeTurn(game *entity.CitiesGame) (string, error)
	// Opening picks the first city of a new game.
	Opening() string
}

type botService struct {
	catalog *entity.CityCatalog
	picker  Picker
}

func NewBotService(catalog *entity.CityCatalog, picker Picker) BotService {
	return &botService{
		catalog: catalog,
		picker:  picker,
	}
}

func (that *botService) MakeTurn(game *entity.CitiesGame) (string, error) {
	letter := game.RequiredLetter()

	available := that.catalog.StartingWith(letter, game.UsedCities)
	if len(available) == 0 {
		return "", fmt.Errorf("%w: letter %c", apperror.ErrNoAvailableMoves, letter)
	}

	chosenCity := available[that.picker.Intn(len(available))]
	game.MakeOpponentTurn(chosenCity)

	return chosenCity, nil
}

func (that *botService) Opening() string {
	return that.catalog.At(that.picker.Intn(that.catalog.Len()))
}
