package engine

import (
	"context"
	"time"

	"github.com/annelo/go-voxel-engine/internal/gameloop"
)

// worldSystem встраивает мир в игровой цикл.
type worldSystem struct {
	world *World
}

func (s *worldSystem) Name() string { return "world" }

func (s *worldSystem) Init(deps gameloop.Dependencies) error { return nil }

func (s *worldSystem) Tick(ctx context.Context, dt time.Duration) {
	s.world.Update(ctx, dt)
}

// System возвращает адаптер мира для gameloop.Loop. Мир должен идти
// первым в списке систем: остальные читают его состояние.
func (w *World) System() gameloop.System {
	return &worldSystem{world: w}
}
