package storage_test

import (
	"testing"

	"github.com/annelo/go-voxel-engine/internal/block"
	"github.com/annelo/go-voxel-engine/internal/chunk"
	"github.com/annelo/go-voxel-engine/internal/storage"
)

// testChunk создаёт чанк с узнаваемым содержимым.
func testChunk(pos chunk.Pos) *chunk.Chunk {
	c := chunk.New(pos)
	for x := 0; x < chunk.SizeX; x++ {
		for z := 0; z < chunk.SizeZ; z++ {
			c.SetBlock(x, 0, z, block.Stone)
			c.SetBlock(x, 1, z, block.Dirt)
		}
	}
	c.SetBlock(3, 2, 7, block.Grass)
	return c
}

// TestRegionFile_SaveLoad проверяет, что после сохранения чанка его можно корректно загрузить обратно.
func TestRegionFile_SaveLoad(t *testing.T) {
	tmpDir := t.TempDir()

	// Создаём файл региона (0,0)
	region, err := storage.NewRegionFile(tmpDir, 0, 0)
	if err != nil {
		t.Fatalf("cannot create region file: %v", err)
	}

	pos := chunk.Pos{X: 1, Z: 2}
	saved := testChunk(pos)

	if err := region.SaveChunk(saved); err != nil {
		t.Fatalf("save chunk failed: %v", err)
	}

	// Закрываем и открываем заново
	if err := region.Close(); err != nil {
		t.Fatalf("close region failed: %v", err)
	}

	reopened, err := storage.NewRegionFile(tmpDir, 0, 0)
	if err != nil {
		t.Fatalf("reopen region failed: %v", err)
	}
	defer reopened.Close()

	loaded, err := reopened.GetChunk(pos)
	if err != nil {
		t.Fatalf("get chunk failed: %v", err)
	}

	if loaded.Pos != pos {
		t.Fatalf("pos mismatch: want %v, got %v", pos, loaded.Pos)
	}
	if got := loaded.Block(3, 2, 7); got != block.Grass {
		t.Fatalf("block (3,2,7) mismatch: want %v, got %v", block.Grass, got)
	}
	if got := loaded.Block(0, 0, 0); got != block.Stone {
		t.Fatalf("block (0,0,0) mismatch: want %v, got %v", block.Stone, got)
	}
	if got := loaded.Block(0, 5, 0); got != block.Air {
		t.Fatalf("block (0,5,0) mismatch: want air, got %v", got)
	}
}

// TestRegionFile_ChunkNotFound проверяет корректную ошибку при попытке загрузить несуществующий чанк.
func TestRegionFile_ChunkNotFound(t *testing.T) {
	dir := t.TempDir()

	region, err := storage.NewRegionFile(dir, 0, 0)
	if err != nil {
		t.Fatalf("cannot create region file: %v", err)
	}
	defer region.Close()

	_, err = region.GetChunk(chunk.Pos{X: 5, Z: 5})
	if err == nil {
		t.Fatal("expected error for missing chunk, got nil")
	}
	if !storage.IsChunkNotFound(err) {
		t.Fatalf("expected ErrChunkNotFound, got %v", err)
	}
}

// TestRegionFile_Overwrite проверяет перезапись чанка на том же месте.
func TestRegionFile_Overwrite(t *testing.T) {
	dir := t.TempDir()

	region, err := storage.NewRegionFile(dir, 0, 0)
	if err != nil {
		t.Fatalf("cannot create region file: %v", err)
	}
	defer region.Close()

	pos := chunk.Pos{X: 0, Z: 0}
	c := testChunk(pos)
	if err := region.SaveChunk(c); err != nil {
		t.Fatalf("first save failed: %v", err)
	}

	c.SetBlock(3, 2, 7, block.Water)
	if err := region.SaveChunk(c); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	loaded, err := region.GetChunk(pos)
	if err != nil {
		t.Fatalf("get chunk failed: %v", err)
	}
	if got := loaded.Block(3, 2, 7); got != block.Water {
		t.Fatalf("block (3,2,7) mismatch after overwrite: want %v, got %v", block.Water, got)
	}
	if region.ChunkCount() != 1 {
		t.Fatalf("chunk count mismatch: want 1, got %d", region.ChunkCount())
	}
}

// TestRegionOf проверяет отображение координат чанка в координаты региона,
// включая отрицательные координаты.
func TestRegionOf(t *testing.T) {
	cases := []struct {
		pos    chunk.Pos
		rx, rz int
	}{
		{chunk.Pos{X: 0, Z: 0}, 0, 0},
		{chunk.Pos{X: 15, Z: 15}, 0, 0},
		{chunk.Pos{X: 16, Z: 0}, 1, 0},
		{chunk.Pos{X: -1, Z: -1}, -1, -1},
		{chunk.Pos{X: -16, Z: -17}, -1, -2},
	}

	for _, tc := range cases {
		rx, rz := storage.RegionOf(tc.pos)
		if rx != tc.rx || rz != tc.rz {
			t.Errorf("RegionOf(%v): want (%d,%d), got (%d,%d)", tc.pos, tc.rx, tc.rz, rx, rz)
		}
	}
}

// TestRegionFile_NegativeCoords проверяет сохранение чанков с отрицательными координатами.
func TestRegionFile_NegativeCoords(t *testing.T) {
	dir := t.TempDir()

	region, err := storage.NewRegionFile(dir, -1, -1)
	if err != nil {
		t.Fatalf("cannot create region file: %v", err)
	}
	defer region.Close()

	pos := chunk.Pos{X: -3, Z: -7}
	if err := region.SaveChunk(testChunk(pos)); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := region.GetChunk(pos)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if loaded.Pos != pos {
		t.Fatalf("pos mismatch: want %v, got %v", pos, loaded.Pos)
	}
}
