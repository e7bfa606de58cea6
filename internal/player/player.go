// Package player хранит состояние игрока и оповещает подписчиков о его
// перемещениях. Подписчики (кеш чанков, физика) — узкие интерфейсы с
// одной способностью, регистрируемые явно.
package player

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/annelo/go-voxel-engine/internal/chunk"
)

// MoveListener получает уведомление при каждом изменении позиции.
type MoveListener interface {
	OnPlayerMoved(p *Player)
}

// ResetListener получает уведомление при телепортации или возрождении,
// когда накопленное инкрементальное состояние подписчика недействительно.
type ResetListener interface {
	OnPlayerReset(p *Player)
}

// Player — состояние игрока: позиция, ориентация, подписчики.
type Player struct {
	ID   uuid.UUID
	Name string

	position mgl32.Vec3
	yaw      float32
	pitch    float32

	moveListeners  []MoveListener
	resetListeners []ResetListener
}

// New создает игрока со случайным идентификатором.
func New(name string) *Player {
	return &Player{
		ID:   uuid.New(),
		Name: name,
	}
}

// Position возвращает мировую позицию игрока.
func (p *Player) Position() mgl32.Vec3 { return p.position }

// Yaw возвращает поворот вокруг вертикальной оси в градусах.
func (p *Player) Yaw() float32 { return p.yaw }

// Pitch возвращает наклон взгляда в градусах.
func (p *Player) Pitch() float32 { return p.pitch }

// SetOrientation задает ориентацию взгляда.
func (p *Player) SetOrientation(yaw, pitch float32) {
	p.yaw = yaw
	p.pitch = pitch
}

// Move перемещает игрока и оповещает подписчиков движения.
func (p *Player) Move(position mgl32.Vec3) {
	p.position = position
	for _, l := range p.moveListeners {
		l.OnPlayerMoved(p)
	}
}

// Reset телепортирует игрока и оповещает подписчиков сброса.
func (p *Player) Reset(position mgl32.Vec3) {
	p.position = position
	for _, l := range p.resetListeners {
		l.OnPlayerReset(p)
	}
}

// ChunkPos возвращает чанковую координату игрока. Отрицательные мировые
// координаты округляются вниз, а не к нулю.
func (p *Player) ChunkPos() chunk.Pos {
	return chunk.Pos{
		X: floorDiv(p.position.X(), chunk.SizeX),
		Z: floorDiv(p.position.Z(), chunk.SizeZ),
	}
}

// AddMoveListener подписывает слушателя движения.
func (p *Player) AddMoveListener(l MoveListener) {
	p.moveListeners = append(p.moveListeners, l)
}

// RemoveMoveListener отписывает слушателя движения.
func (p *Player) RemoveMoveListener(l MoveListener) {
	for i, existing := range p.moveListeners {
		if existing == l {
			p.moveListeners = append(p.moveListeners[:i], p.moveListeners[i+1:]...)
			return
		}
	}
}

// AddResetListener подписывает слушателя сброса.
func (p *Player) AddResetListener(l ResetListener) {
	p.resetListeners = append(p.resetListeners, l)
}

// RemoveResetListener отписывает слушателя сброса.
func (p *Player) RemoveResetListener(l ResetListener) {
	for i, existing := range p.resetListeners {
		if existing == l {
			p.resetListeners = append(p.resetListeners[:i], p.resetListeners[i+1:]...)
			return
		}
	}
}

func floorDiv(worldCoord float32, size int) int {
	return int(math.Floor(float64(worldCoord) / float64(size)))
}
