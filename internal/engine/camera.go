package engine

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/annelo/go-voxel-engine/internal/geom"
	"github.com/annelo/go-voxel-engine/internal/player"
)

// Camera строит объем видимости из позиции и ориентации игрока.
type Camera struct {
	FOV    float32 // вертикальный угол обзора в градусах
	Aspect float32
	Near   float32
	Far    float32
}

// NewCamera возвращает камеру с типовыми параметрами.
func NewCamera() *Camera {
	return &Camera{
		FOV:    70,
		Aspect: 16.0 / 9.0,
		Near:   0.1,
		Far:    512,
	}
}

// ViewVolume возвращает фрустум для текущего состояния игрока.
// Нулевой yaw смотрит вдоль -Z.
func (c *Camera) ViewVolume(p *player.Player) *geom.Frustum {
	yaw := float64(mgl32.DegToRad(p.Yaw()))
	pitch := float64(mgl32.DegToRad(p.Pitch()))

	dir := mgl32.Vec3{
		float32(math.Cos(pitch) * math.Sin(yaw)),
		float32(math.Sin(pitch)),
		float32(-math.Cos(pitch) * math.Cos(yaw)),
	}

	eye := p.Position()
	proj := mgl32.Perspective(mgl32.DegToRad(c.FOV), c.Aspect, c.Near, c.Far)
	view := mgl32.LookAtV(eye, eye.Add(dir), mgl32.Vec3{0, 1, 0})

	return geom.FrustumFromMatrix(proj.Mul4(view))
}
