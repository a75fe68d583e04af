package entity

// DefaultCities is the catalog the game is played with.
var DefaultCities = []string{
	"Москва", "Санкт-Петербург", "Новосибирск", "Екатеринбург", "Казань",
	"Нижний Новгород", "Челябинск", "Самара", "Омск", "Ростов-на-Дону",
	"Уфа", "Красноярск", "Воронеж", "Пермь", "Волгоград",
	"Краснодар", "Саратов", "Тюмень", "Тольятти", "Ижевск",
	"Барнаул", "Ульяновск", "Иркутск", "Хабаровск", "Ярославль",
	"Махачкала", "Новокузнецк", "Томск", "Кемерово", "Оренбург",
	"Набережные Челны", "Астрахань", "Рязань", "Пенза", "Липецк",
	"Киров", "Чебоксары", "Тула", "Калининград", "Курск",
	"Улан-Удэ", "Ставрополь", "Севастополь", "Сочи", "Петропавловск-Камчатский",
	"Архангельск", "Владивосток", "Якутск", "Иваново", "Белгород",
	"Мурманск", "Сургут", "Владикавказ", "Курган", "Тамбов",
	"Смоленск", "Калуга", "Чита", "Орёл", "Вологда",
	"Новороссийск", "Южно-Сахалинск", "Магадан", "Комсомольск-на-Амуре", "Салехард",
}

// CityCatalog is an immutable ordered list of known cities indexed by normalized key.
type CityCatalog struct {
	cities []string
	index  map[string]string
}

func NewCityCatalog(cities []string) *CityCatalog {
	catalog := &CityCatalog{
		cities: make([]string, 0, len(cities)),
		index:  make(map[string]string, len(cities)),
	}

	for _, city := range cities {
		key := NormalizeCity(city)
		if key == "" {
			continue
		}

		if _, ok := catalog.index[key]; ok {
			continue
		}

		catalog.index[key] = city
		catalog.cities = append(catalog.cities, city)
	}

	return catalog
}

// Lookup returns the catalog spelling of the named city.
func (that *CityCatalog) Lookup(name string) (string, bool) {
	city, ok := that.index[NormalizeCity(name)]
	return city, ok
}

func (that *CityCatalog) Len() int {
	return len(that.cities)
}

func (that *CityCatalog) At(i int) string {
	return that.cities[i]
}

// StartingWith returns catalog cities beginning with letter that are not in used, in catalog order.
func (that *CityCatalog) StartingWith(letter rune, used []string) []string {
	exclude := make(map[string]struct{}, len(used))
	for _, city := range used {
		exclude[NormalizeCity(city)] = struct{}{}
	}

	var available []string
	for _, city := range that.cities {
		key := NormalizeCity(city)
		if FirstLetter(key) != letter {
			continue
		}

		if _, ok := exclude[key]; ok {
			continue
		}

		available = append(available, city)
	}

	return available
}
