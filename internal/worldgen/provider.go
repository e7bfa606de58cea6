package worldgen

import (
	"context"
	"log"

	"github.com/annelo/go-voxel-engine/internal/chunk"
	"github.com/annelo/go-voxel-engine/internal/storage"
)

// PersistentProvider выдает чанки, предпочитая сохраненное состояние
// свежей генерации: повторный вход в посещенную координату возвращает
// чанк таким, каким он был сохранен, а не перегенерирует его.
type PersistentProvider struct {
	generator *Generator
	store     storage.WorldStorage // nil — генерировать всегда
}

// NewPersistentProvider создает провайдер поверх генератора и
// необязательного хранилища.
func NewPersistentProvider(generator *Generator, store storage.WorldStorage) *PersistentProvider {
	return &PersistentProvider{generator: generator, store: store}
}

// LoadOrCreateChunk загружает чанк из хранилища, а при его отсутствии
// генерирует заново. Ошибка чтения (кроме отсутствия чанка) не
// фатальна: чанк генерируется, о сбое остается запись в логе.
func (p *PersistentProvider) LoadOrCreateChunk(ctx context.Context, pos chunk.Pos) (*chunk.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if p.store != nil {
		c, err := p.store.LoadChunk(ctx, pos)
		if err == nil {
			return c, nil
		}
		if !storage.IsChunkNotFound(err) {
			log.Printf("[Worldgen.Load] чтение чанка %s не удалось, генерируем заново: %v", pos.Key(), err)
		}
	}

	return p.generator.Generate(pos), nil
}
