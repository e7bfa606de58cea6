package chunk

import "github.com/annelo/go-voxel-engine/internal/geom"

// RenderPass — проход рендера, в котором участвует часть артефакта
type RenderPass int

// Проходы рендера в порядке отрисовки
const (
	PassOpaque RenderPass = iota
	PassLava
	PassBillboardTranslucent
	PassWater
)

// CollisionShape — упрощенная статическая геометрия коллизии чанка:
// набор AABB в локальных координатах чанка.
type CollisionShape struct {
	Boxes []geom.AABB
}

// Artifact — построенная геометрия чанка. Буферы вершин разложены по
// проходам рендера; формат вершин непрозрачен для ядра. Артефакт
// принадлежит чанку и заменяется целиком при перестройке.
type Artifact struct {
	Opaque      []float32
	Translucent []float32
	Water       []float32
	Lava        []float32

	// Collision равен nil, если в чанке нет твердых блоков
	Collision *CollisionShape
}

// Vertices возвращает буфер вершин для заданного прохода
func (a *Artifact) Vertices(pass RenderPass) []float32 {
	switch pass {
	case PassOpaque:
		return a.Opaque
	case PassLava:
		return a.Lava
	case PassBillboardTranslucent:
		return a.Translucent
	case PassWater:
		return a.Water
	}
	return nil
}

// Empty возвращает true, если артефакт не содержит геометрии
func (a *Artifact) Empty() bool {
	return len(a.Opaque) == 0 && len(a.Translucent) == 0 &&
		len(a.Water) == 0 && len(a.Lava) == 0
}
