package gameloop

import (
	"context"
	"math/rand"
	"time"
)

// Weather — тип погоды.
type Weather int

const (
	WeatherClear Weather = iota
	WeatherRain
	WeatherStorm
)

// String возвращает читаемое имя погоды.
func (w Weather) String() string {
	switch w {
	case WeatherClear:
		return "clear"
	case WeatherRain:
		return "rain"
	case WeatherStorm:
		return "storm"
	}
	return "unknown"
}

// WeatherSystem случайным образом меняет погоду через случайные
// интервалы. Соседние периоды никогда не повторяют одну погоду.
type WeatherSystem struct {
	deps           Dependencies
	rng            *rand.Rand
	currentWeather Weather
	ticksRemaining int64

	// OnChange вызывается при каждой смене погоды; может быть nil.
	OnChange func(Weather)
}

// NewWeatherSystem создает погодную систему с детерминированным сидом.
func NewWeatherSystem(seed int64) *WeatherSystem {
	return &WeatherSystem{
		rng: rand.New(rand.NewSource(seed)),
	}
}

func (w *WeatherSystem) Name() string { return "weather" }

func (w *WeatherSystem) Init(deps Dependencies) error {
	w.deps = deps
	w.currentWeather = WeatherClear
	w.ticksRemaining = w.randomDuration()
	return nil
}

func (w *WeatherSystem) Tick(ctx context.Context, dt time.Duration) {
	w.ticksRemaining--
	if w.ticksRemaining > 0 {
		return
	}

	// Выбираем новую погоду, не повторяя текущую
	newWeather := w.currentWeather
	for newWeather == w.currentWeather {
		r := w.rng.Float64()
		switch {
		case r < 0.7:
			newWeather = WeatherClear
		case r < 0.9:
			newWeather = WeatherRain
		default:
			newWeather = WeatherStorm
		}
	}

	w.currentWeather = newWeather
	w.ticksRemaining = w.randomDuration()

	if w.deps.Logger != nil {
		w.deps.Logger.Infow("weather changed", "weather", newWeather.String())
	}
	if w.OnChange != nil {
		w.OnChange(newWeather)
	}
}

// Current возвращает текущую погоду.
func (w *WeatherSystem) Current() Weather { return w.currentWeather }

// randomDuration возвращает длительность периода погоды в тиках.
func (w *WeatherSystem) randomDuration() int64 {
	// От 30 секунд до 2 минут при 30 тиках в секунду
	return 900 + w.rng.Int63n(2700)
}
