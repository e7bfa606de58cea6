package worldgen_test

import (
	"context"
	"testing"

	"github.com/annelo/go-voxel-engine/internal/block"
	"github.com/annelo/go-voxel-engine/internal/chunk"
	"github.com/annelo/go-voxel-engine/internal/storage"
	"github.com/annelo/go-voxel-engine/internal/worldgen"
)

// TestGenerate_Deterministic: один сид и одна координата дают одинаковые чанки.
func TestGenerate_Deterministic(t *testing.T) {
	pos := chunk.Pos{X: 3, Z: -5}

	a := worldgen.NewGenerator(42).Generate(pos)
	b := worldgen.NewGenerator(42).Generate(pos)

	for i := range a.Blocks {
		if a.Blocks[i] != b.Blocks[i] {
			t.Fatalf("blocks differ at %d: %v vs %v", i, a.Blocks[i], b.Blocks[i])
		}
	}
}

// TestGenerate_SeedChangesTerrain: другой сид дает другой рельеф.
func TestGenerate_SeedChangesTerrain(t *testing.T) {
	pos := chunk.Pos{X: 0, Z: 0}

	a := worldgen.NewGenerator(1).Generate(pos)
	b := worldgen.NewGenerator(2).Generate(pos)

	same := true
	for i := range a.Blocks {
		if a.Blocks[i] != b.Blocks[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("different seeds produced identical chunks")
	}
}

// TestGenerate_HasGround: в каждой колонке есть хотя бы один твердый блок
// и нет блоков выше воды при донной высоте.
func TestGenerate_HasGround(t *testing.T) {
	c := worldgen.NewGenerator(7).Generate(chunk.Pos{X: 0, Z: 0})

	for x := 0; x < chunk.SizeX; x++ {
		for z := 0; z < chunk.SizeZ; z++ {
			if c.Block(x, 0, z) == block.Air {
				t.Fatalf("column (%d,%d) has air at bedrock level", x, z)
			}
		}
	}
}

// fakeStore возвращает заранее подготовленный чанк для одной координаты.
type fakeStore struct {
	storage.WorldStorage
	stored *chunk.Chunk
}

func (s *fakeStore) LoadChunk(ctx context.Context, pos chunk.Pos) (*chunk.Chunk, error) {
	if s.stored != nil && s.stored.Pos == pos {
		return s.stored, nil
	}
	return nil, storage.ErrChunkNotFound{X: pos.X, Z: pos.Z}
}

// TestProvider_PrefersStoredChunk: провайдер возвращает сохраненное
// состояние вместо перегенерации.
func TestProvider_PrefersStoredChunk(t *testing.T) {
	ctx := context.Background()
	pos := chunk.Pos{X: 1, Z: 1}

	saved := chunk.New(pos)
	saved.SetBlock(0, 0, 0, block.Lava) // генератор такого не кладет на (0,0,0)

	p := worldgen.NewPersistentProvider(worldgen.NewGenerator(42), &fakeStore{stored: saved})

	got, err := p.LoadOrCreateChunk(ctx, pos)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got != saved {
		t.Fatal("provider must return the stored chunk")
	}

	// Отсутствующая координата генерируется
	other, err := p.LoadOrCreateChunk(ctx, chunk.Pos{X: 2, Z: 2})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if other == nil || other.Pos != (chunk.Pos{X: 2, Z: 2}) {
		t.Fatal("provider must generate missing chunks")
	}
}

// TestBiomeTypeOf проверяет пороги классификации биомов.
func TestBiomeTypeOf(t *testing.T) {
	cases := []struct {
		h, m, temp float64
		want       worldgen.BiomeType
	}{
		{0.1, 0.5, 0.5, worldgen.BiomeOcean},
		{0.35, 0.5, 0.5, worldgen.BiomeBeach},
		{0.8, 0.5, 0.1, worldgen.BiomeSnowland},
		{0.8, 0.5, 0.6, worldgen.BiomeMountain},
		{0.5, 0.5, 0.2, worldgen.BiomeTaiga},
		{0.5, 0.1, 0.9, worldgen.BiomeDesert},
		{0.5, 0.7, 0.5, worldgen.BiomeForest},
		{0.5, 0.4, 0.5, worldgen.BiomePlains},
	}

	for _, tc := range cases {
		if got := worldgen.BiomeTypeOf(tc.h, tc.m, tc.temp); got != tc.want {
			t.Errorf("BiomeTypeOf(%v,%v,%v): want %v, got %v", tc.h, tc.m, tc.temp, tc.want, got)
		}
	}
}
