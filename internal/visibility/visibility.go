// Package visibility отсеивает резидентные чанки по объему видимости.
package visibility

import (
	"iter"

	"github.com/annelo/go-voxel-engine/internal/chunk"
	"github.com/annelo/go-voxel-engine/internal/geom"
)

// Cull проверяет пересечение баунд-бокса каждого чанка с объемом
// видимости, выставляет флаг видимости как наблюдаемый побочный эффект
// и возвращает ленивую перезапускаемую последовательность видимых
// чанков в том же стабильном порядке, что и resident. Кроме флага
// видимости чанки не мутируются; ввода-вывода нет, стоимость O(n)
// дешевых тестов пересечения.
func Cull(resident []*chunk.Chunk, volume geom.Volume) iter.Seq[*chunk.Chunk] {
	for _, c := range resident {
		c.SetVisible(volume.IntersectsAABB(c.Box))
	}

	return func(yield func(*chunk.Chunk) bool) {
		for _, c := range resident {
			if !c.Visible() {
				continue
			}
			if !yield(c) {
				return
			}
		}
	}
}

// Count возвращает количество видимых чанков в последовательности.
func Count(seq iter.Seq[*chunk.Chunk]) int {
	n := 0
	for range seq {
		n++
	}
	return n
}
