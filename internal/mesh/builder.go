// Package mesh реализует построитель геометрии чанка по умолчанию.
// Построение — чистая функция от снимка блоков: на каждую открытую
// грань твердого блока добавляется квадрат, столбы твердых блоков
// сворачиваются в AABB для статической коллизии.
package mesh

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/annelo/go-voxel-engine/internal/block"
	"github.com/annelo/go-voxel-engine/internal/chunk"
	"github.com/annelo/go-voxel-engine/internal/geom"
)

// FaceBuilder — наивный построитель геометрии по открытым граням.
type FaceBuilder struct{}

// NewFaceBuilder создает построитель геометрии по умолчанию
func NewFaceBuilder() *FaceBuilder {
	return &FaceBuilder{}
}

// смещения шести соседей блока
var neighbors = [6][3]int{
	{1, 0, 0}, {-1, 0, 0},
	{0, 1, 0}, {0, -1, 0},
	{0, 0, 1}, {0, 0, -1},
}

// BuildGeometry строит артефакт из снимка блоков чанка.
// Снимок не модифицируется и может читаться из любой горутины.
func (b *FaceBuilder) BuildGeometry(blocks []block.Type) (*chunk.Artifact, error) {
	if len(blocks) != chunk.BlockCount {
		return nil, fmt.Errorf("mesh: снимок блоков неверного размера %d", len(blocks))
	}

	at := func(x, y, z int) block.Type {
		if x < 0 || y < 0 || z < 0 || x >= chunk.SizeX || y >= chunk.SizeY || z >= chunk.SizeZ {
			return block.Air
		}
		return blocks[(y*chunk.SizeZ+z)*chunk.SizeX+x]
	}

	art := &chunk.Artifact{}

	for y := 0; y < chunk.SizeY; y++ {
		for z := 0; z < chunk.SizeZ; z++ {
			for x := 0; x < chunk.SizeX; x++ {
				t := at(x, y, z)
				if block.IsAir(t) {
					continue
				}
				tr := block.Get(t)

				// Биллборды рендерятся всегда, без проверки соседей
				if tr.Translucent && !tr.Solid {
					appendQuad(&art.Translucent, x, y, z, 0)
					continue
				}

				for i, n := range neighbors {
					nt := at(x+n[0], y+n[1], z+n[2])
					if block.Get(nt).Opaque {
						continue // грань закрыта соседом
					}
					if nt == t && (tr.Liquid || tr.Lava) {
						continue // поверхности жидкостей не дробятся внутри объема
					}
					switch {
					case tr.Liquid:
						appendQuad(&art.Water, x, y, z, i)
					case tr.Lava:
						appendQuad(&art.Lava, x, y, z, i)
					case tr.Translucent:
						appendQuad(&art.Translucent, x, y, z, i)
					default:
						appendQuad(&art.Opaque, x, y, z, i)
					}
				}
			}
		}
	}

	art.Collision = buildCollision(at)
	return art, nil
}

// appendQuad добавляет четыре вершины грани face блока (x,y,z).
// Формат вершины — только позиция; материал кодируется проходом.
func appendQuad(dst *[]float32, x, y, z, face int) {
	fx, fy, fz := float32(x), float32(y), float32(z)
	quads := [6][4][3]float32{
		{{1, 0, 0}, {1, 1, 0}, {1, 1, 1}, {1, 0, 1}}, // +X
		{{0, 0, 1}, {0, 1, 1}, {0, 1, 0}, {0, 0, 0}}, // -X
		{{0, 1, 0}, {0, 1, 1}, {1, 1, 1}, {1, 1, 0}}, // +Y
		{{0, 0, 1}, {0, 0, 0}, {1, 0, 0}, {1, 0, 1}}, // -Y
		{{1, 0, 1}, {1, 1, 1}, {0, 1, 1}, {0, 0, 1}}, // +Z
		{{0, 0, 0}, {0, 1, 0}, {1, 1, 0}, {1, 0, 0}}, // -Z
	}
	for _, v := range quads[face] {
		*dst = append(*dst, fx+v[0], fy+v[1], fz+v[2])
	}
}

// buildCollision сворачивает вертикальные отрезки твердых блоков в AABB.
// Один AABB на непрерывный отрезок столба — грубее, чем по-блочно,
// но на порядок дешевле для регистрации в физике.
func buildCollision(at func(x, y, z int) block.Type) *chunk.CollisionShape {
	var boxes []geom.AABB
	for z := 0; z < chunk.SizeZ; z++ {
		for x := 0; x < chunk.SizeX; x++ {
			y := 0
			for y < chunk.SizeY {
				if !block.Get(at(x, y, z)).Solid {
					y++
					continue
				}
				start := y
				for y < chunk.SizeY && block.Get(at(x, y, z)).Solid {
					y++
				}
				boxes = append(boxes, geom.NewAABB(
					mgl32.Vec3{float32(x), float32(start), float32(z)},
					mgl32.Vec3{float32(x + 1), float32(y), float32(z + 1)},
				))
			}
		}
	}
	if len(boxes) == 0 {
		return nil
	}
	return &chunk.CollisionShape{Boxes: boxes}
}
