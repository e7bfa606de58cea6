// Package physicssync поставляет статическую коллизионную геометрию
// чанков в физический движок, ограничивая стоимость одного кадра.
package physicssync

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/annelo/go-voxel-engine/internal/chunk"
)

// DefaultQuota — сколько чанков сканируется за один кадр. Регистрация
// коллизионной формы сравнительно дорогая; квота ограничивает худший
// случай независимо от размера резидентного набора.
const DefaultQuota = 16

// Engine — контракт физического движка. Вызовы идут строго в порядке
// ResetChunks, затем AddStaticChunk для каждой формы, затем Update,
// один раз за кадр и только из главной горутины.
type Engine interface {
	ResetChunks()
	AddStaticChunk(worldPos mgl32.Vec3, shape *chunk.CollisionShape)
	Update()
}

// Window проходит по резидентным чанкам со сдвигающимся смещением:
// чанки за пределами квоты пропускаются в этом кадре и попадают в
// скан на следующих, так что при неизменном наборе каждый чанк с
// коллизионной формой рано или поздно регистрируется.
type Window struct {
	engine Engine
	quota  int
	offset int
}

// NewWindow создает окно синхронизации с заданной квотой на кадр.
func NewWindow(engine Engine, quota int) *Window {
	if quota < 1 {
		quota = DefaultQuota
	}
	return &Window{engine: engine, quota: quota}
}

// SyncTick регистрирует коллизионные формы не более чем quota чанков из
// resident (в стабильном порядке, начиная с текущего смещения) и
// продвигает симуляцию на кадр.
func (w *Window) SyncTick(resident []*chunk.Chunk) {
	if w.engine == nil {
		return
	}
	w.engine.ResetChunks()

	n := len(resident)
	if n > 0 {
		if w.offset >= n {
			w.offset %= n
		}

		scan := w.quota
		if scan > n {
			scan = n
		}

		for i := 0; i < scan; i++ {
			c := resident[(w.offset+i)%n]
			mesh := c.Mesh()
			if mesh == nil || mesh.Collision == nil {
				continue
			}
			w.engine.AddStaticChunk(c.Pos.World(), mesh.Collision)
		}

		w.offset = (w.offset + w.quota) % n
	}

	w.engine.Update()
}
