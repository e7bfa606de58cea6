// Package block определяет типы блоков и их свойства для построения
// геометрии, коллизии и выбора прохода рендера.
package block

import "sync"

// Type — числовой тип блока
type Type byte

// Типы блоков
const (
	Air Type = iota
	Grass
	Dirt
	Stone
	Water
	Sand
	Wood
	Leaves
	Snow
	TallGrass
	Flower
	Lava
)

// Traits описывают поведение блока
type Traits struct {
	Name string

	// Solid — блок участвует в статической коллизии
	Solid bool

	// Opaque — блок закрывает соседние грани при построении геометрии
	Opaque bool

	// Translucent — блок рендерится в полупрозрачном проходе (биллборды, листва)
	Translucent bool

	// Liquid — анимированная вода
	Liquid bool

	// Lava — анимированная лава
	Lava bool
}

var (
	registry   = make(map[Type]Traits)
	registryMu sync.RWMutex
)

// Register регистрирует свойства типа блока. Повторная регистрация
// заменяет предыдущую (используется плагинами для переопределения).
func Register(t Type, tr Traits) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[t] = tr
}

// Get возвращает свойства типа блока. Незарегистрированные типы
// считаются твердыми непрозрачными блоками.
func Get(t Type) Traits {
	registryMu.RLock()
	defer registryMu.RUnlock()
	if tr, ok := registry[t]; ok {
		return tr
	}
	return Traits{Name: "unknown", Solid: true, Opaque: true}
}

// IsAir возвращает true для пустого блока
func IsAir(t Type) bool { return t == Air }

func init() {
	Register(Air, Traits{Name: "air"})
	Register(Grass, Traits{Name: "grass", Solid: true, Opaque: true})
	Register(Dirt, Traits{Name: "dirt", Solid: true, Opaque: true})
	Register(Stone, Traits{Name: "stone", Solid: true, Opaque: true})
	Register(Water, Traits{Name: "water", Liquid: true})
	Register(Sand, Traits{Name: "sand", Solid: true, Opaque: true})
	Register(Wood, Traits{Name: "wood", Solid: true, Opaque: true})
	Register(Leaves, Traits{Name: "leaves", Solid: true, Translucent: true})
	Register(Snow, Traits{Name: "snow", Solid: true, Opaque: true})
	Register(TallGrass, Traits{Name: "tall_grass", Translucent: true})
	Register(Flower, Traits{Name: "flower", Translucent: true})
	Register(Lava, Traits{Name: "lava", Lava: true})
}
