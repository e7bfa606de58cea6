package engine

import (
	"context"

	"github.com/annelo/go-voxel-engine/internal/chunk"
	"github.com/annelo/go-voxel-engine/internal/plugin"
	"github.com/annelo/go-voxel-engine/internal/proximity"
)

// hookedProvider оборачивает поставщика чанков и дергает хуки плагинов
// вокруг загрузки/генерации.
type hookedProvider struct {
	inner proximity.ChunkProvider
	reg   *plugin.DefaultRegistry
}

func (p *hookedProvider) LoadOrCreateChunk(ctx context.Context, pos chunk.Pos) (*chunk.Chunk, error) {
	p.reg.FireHook(plugin.HookBeforeChunkGenerate, pos)
	c, err := p.inner.LoadOrCreateChunk(ctx, pos)
	if err != nil {
		return nil, err
	}
	p.reg.FireHook(plugin.HookAfterChunkGenerate, c)
	return c, nil
}

// hookedSaver оборачивает сохранение чанка хуками плагинов.
type hookedSaver struct {
	inner proximity.ChunkSaver
	reg   *plugin.DefaultRegistry
}

func (s *hookedSaver) SaveChunk(ctx context.Context, c *chunk.Chunk) error {
	s.reg.FireHook(plugin.HookBeforeChunkSave, c)
	if err := s.inner.SaveChunk(ctx, c); err != nil {
		return err
	}
	s.reg.FireHook(plugin.HookAfterChunkSave, c)
	return nil
}
