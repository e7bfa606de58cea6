// Package geom содержит геометрические примитивы для отсечения чанков:
// AABB, плоскости и пирамиду видимости (frustum).
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// AABB — выровненный по осям ограничивающий параллелепипед в мировых координатах.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// NewAABB создает AABB по двум противоположным углам
func NewAABB(min, max mgl32.Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// Center возвращает центр параллелепипеда
func (a AABB) Center() mgl32.Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}

// Intersects проверяет пересечение двух AABB (включая касание граней)
func (a AABB) Intersects(b AABB) bool {
	if a.Max.X() < b.Min.X() || a.Min.X() > b.Max.X() {
		return false
	}
	if a.Max.Y() < b.Min.Y() || a.Min.Y() > b.Max.Y() {
		return false
	}
	if a.Max.Z() < b.Min.Z() || a.Min.Z() > b.Max.Z() {
		return false
	}
	return true
}

// Contains проверяет, лежит ли точка внутри AABB
func (a AABB) Contains(p mgl32.Vec3) bool {
	return p.X() >= a.Min.X() && p.X() <= a.Max.X() &&
		p.Y() >= a.Min.Y() && p.Y() <= a.Max.Y() &&
		p.Z() >= a.Min.Z() && p.Z() <= a.Max.Z()
}

// Translate возвращает AABB, смещенный на вектор d
func (a AABB) Translate(d mgl32.Vec3) AABB {
	return AABB{Min: a.Min.Add(d), Max: a.Max.Add(d)}
}

// IntersectsAABB позволяет использовать AABB как объем видимости
// (например, в инструментах и тестах вместо полноценного фрустума).
func (a AABB) IntersectsAABB(b AABB) bool {
	return a.Intersects(b)
}

// Volume — объем видимости. Реализуется фрустумом камеры, а также
// самим AABB для ортографических видов.
type Volume interface {
	IntersectsAABB(AABB) bool
}

// Plane — плоскость в форме n·p + d = 0, нормаль направлена внутрь объема.
type Plane struct {
	N mgl32.Vec3
	D float32
}

// DistanceTo возвращает знаковое расстояние от точки до плоскости
func (p Plane) DistanceTo(pt mgl32.Vec3) float32 {
	return p.N.Dot(pt) + p.D
}

func (p Plane) normalized() Plane {
	l := float32(math.Sqrt(float64(p.N.Dot(p.N))))
	if l == 0 {
		return p
	}
	return Plane{N: p.N.Mul(1 / l), D: p.D / l}
}

// Frustum — шесть плоскостей пирамиды видимости камеры.
type Frustum struct {
	planes [6]Plane
}

// FrustumFromMatrix извлекает плоскости из комбинированной матрицы
// проекции и вида (метод Грибба-Хартманна). Нормали направлены внутрь.
func FrustumFromMatrix(m mgl32.Mat4) *Frustum {
	rows := [4]mgl32.Vec4{m.Row(0), m.Row(1), m.Row(2), m.Row(3)}

	f := &Frustum{}
	add := func(a, b mgl32.Vec4) Plane {
		v := a.Add(b)
		return Plane{N: mgl32.Vec3{v.X(), v.Y(), v.Z()}, D: v.W()}.normalized()
	}
	sub := func(a, b mgl32.Vec4) Plane {
		v := a.Sub(b)
		return Plane{N: mgl32.Vec3{v.X(), v.Y(), v.Z()}, D: v.W()}.normalized()
	}

	f.planes[0] = add(rows[3], rows[0]) // left
	f.planes[1] = sub(rows[3], rows[0]) // right
	f.planes[2] = add(rows[3], rows[1]) // bottom
	f.planes[3] = sub(rows[3], rows[1]) // top
	f.planes[4] = add(rows[3], rows[2]) // near
	f.planes[5] = sub(rows[3], rows[2]) // far
	return f
}

// IntersectsAABB возвращает true, если AABB хотя бы частично внутри фрустума.
// Для каждой плоскости проверяется "положительная" вершина параллелепипеда:
// если даже она за плоскостью, объем целиком снаружи.
func (f *Frustum) IntersectsAABB(box AABB) bool {
	for _, pl := range f.planes {
		p := box.Min
		if pl.N.X() >= 0 {
			p[0] = box.Max.X()
		}
		if pl.N.Y() >= 0 {
			p[1] = box.Max.Y()
		}
		if pl.N.Z() >= 0 {
			p[2] = box.Max.Z()
		}
		if pl.DistanceTo(p) < 0 {
			return false
		}
	}
	return true
}
