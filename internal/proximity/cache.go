// Package proximity содержит кеш чанков, резидентных вокруг игрока.
// Кеш владеет загруженными чанками: решает, какие координаты должны
// существовать в памяти, когда подгружать новые и когда выгружать
// покинувшие окно.
package proximity

import (
	"context"
	"expvar"
	"log"
	"sort"
	"time"

	"github.com/annelo/go-voxel-engine/internal/chunk"
)

// Счётчики диагностики
var (
	statGenerationFailures = expvar.NewInt("proximity_generation_failures")
	statChunksEvicted      = expvar.NewInt("proximity_chunks_evicted")
	statChunksLoaded       = expvar.NewInt("proximity_chunks_loaded")
)

// ChunkProvider выдает чанк по координате: из хранилища, если чанк уже
// сохранялся, иначе генерирует заново. Детерминирован для пары
// (сид, координата).
type ChunkProvider interface {
	LoadOrCreateChunk(ctx context.Context, pos chunk.Pos) (*chunk.Chunk, error)
}

// ChunkSaver сохраняет выгружаемый чанк. Может быть nil, тогда
// выгруженные чанки просто отбрасываются.
type ChunkSaver interface {
	SaveChunk(ctx context.Context, c *chunk.Chunk) error
}

// Cache — окно резидентных чанков вокруг игрока.
//
// Перецентровка происходит только когда выполнены оба условия: с
// прошлой перецентровки прошло не меньше updateGap И целочисленная
// чанковая координата игрока изменилась. Оба условия сохранены
// намеренно: первое ограничивает частоту запросов генерации, второе —
// накладные расходы при движении внутри чанка.
type Cache struct {
	provider ChunkProvider
	saver    ChunkSaver

	// Количество чанков по осям окна
	windowX int
	windowZ int

	// Минимальный интервал между перецентровками
	updateGap time.Duration

	resident map[chunk.Pos]*chunk.Chunk
	ordered  []*chunk.Chunk

	lastCenter  chunk.Pos
	hasCenter   bool
	lastRefresh time.Time
}

// NewCache создает кеш с окном windowX×windowZ чанков.
func NewCache(provider ChunkProvider, saver ChunkSaver, windowX, windowZ int, updateGap time.Duration) *Cache {
	return &Cache{
		provider:  provider,
		saver:     saver,
		windowX:   windowX,
		windowZ:   windowZ,
		updateGap: updateGap,
		resident:  make(map[chunk.Pos]*chunk.Chunk),
	}
}

// Refresh перецентрирует окно вокруг чанковой координаты игрока и
// возвращает true, если резидентный набор изменился. Ничего не делает,
// пока не истек минимальный интервал или координата не изменилась.
// Первый вызов заполняет окно безусловно.
func (c *Cache) Refresh(ctx context.Context, center chunk.Pos, now time.Time) bool {
	if c.hasCenter {
		if now.Sub(c.lastRefresh) < c.updateGap {
			return false
		}
		if center == c.lastCenter {
			return false
		}
	}

	changed := false
	next := make(map[chunk.Pos]*chunk.Chunk, c.windowX*c.windowZ)

	// Окно покрывает [center - w/2, center + w/2)
	minX := center.X - c.windowX/2
	minZ := center.Z - c.windowZ/2

	for dz := 0; dz < c.windowZ; dz++ {
		for dx := 0; dx < c.windowX; dx++ {
			pos := chunk.Pos{X: minX + dx, Z: minZ + dz}

			if existing, ok := c.resident[pos]; ok {
				next[pos] = existing
				continue
			}

			loaded, err := c.provider.LoadOrCreateChunk(ctx, pos)
			if err != nil {
				// Пропускаем координату: повторная попытка при
				// следующей перецентровке
				statGenerationFailures.Add(1)
				log.Printf("[Proximity.Refresh] не удалось получить чанк %s: %v", pos.Key(), err)
				continue
			}
			next[pos] = loaded
			statChunksLoaded.Add(1)
			changed = true
		}
	}

	// Выгружаем чанки, покинувшие окно
	for pos, old := range c.resident {
		if _, keep := next[pos]; keep {
			continue
		}
		if c.saver != nil {
			if err := c.saver.SaveChunk(ctx, old); err != nil {
				log.Printf("[Proximity.Refresh] не удалось сохранить чанк %s: %v", pos.Key(), err)
			}
		}
		old.ReleaseMesh()
		statChunksEvicted.Add(1)
		changed = true
	}

	c.resident = next
	c.rebuildOrder(center)
	c.lastCenter = center
	c.hasCenter = true
	c.lastRefresh = now

	return changed
}

// rebuildOrder пересобирает стабильный порядок обхода: по квадрату
// расстояния до центра, затем лексикографически по координате.
func (c *Cache) rebuildOrder(center chunk.Pos) {
	c.ordered = c.ordered[:0]
	for _, ch := range c.resident {
		c.ordered = append(c.ordered, ch)
	}
	sort.Slice(c.ordered, func(i, j int) bool {
		return chunk.Less(c.ordered[i], c.ordered[j], center)
	})
}

// Resident возвращает резидентные чанки в стабильном порядке. Слайс
// принадлежит кешу и действителен до следующего Refresh.
func (c *Cache) Resident() []*chunk.Chunk {
	return c.ordered
}

// Get возвращает резидентный чанк по координате или nil.
func (c *Cache) Get(pos chunk.Pos) *chunk.Chunk {
	return c.resident[pos]
}

// Len возвращает количество резидентных чанков.
func (c *Cache) Len() int {
	return len(c.resident)
}

// Center возвращает координату последней перецентровки.
func (c *Cache) Center() (chunk.Pos, bool) {
	return c.lastCenter, c.hasCenter
}

// Invalidate сбрасывает троттлинг: следующий Refresh перецентрирует
// окно безусловно. Вызывается при телепортации игрока.
func (c *Cache) Invalidate() {
	c.hasCenter = false
}

// Flush сохраняет все резидентные чанки. Вызывается при остановке мира.
func (c *Cache) Flush(ctx context.Context) error {
	if c.saver == nil {
		return nil
	}
	var lastErr error
	for _, ch := range c.ordered {
		if err := c.saver.SaveChunk(ctx, ch); err != nil {
			log.Printf("[Proximity.Flush] не удалось сохранить чанк %s: %v", ch.Pos.Key(), err)
			lastErr = err
		}
	}
	return lastErr
}
