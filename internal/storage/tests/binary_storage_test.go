package storage_test

import (
	"context"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/annelo/go-voxel-engine/internal/block"
	"github.com/annelo/go-voxel-engine/internal/chunk"
	"github.com/annelo/go-voxel-engine/internal/storage"
)

// TestBinaryStorage_ChunkRoundtrip проверяет сохранение и загрузку чанка через хранилище.
func TestBinaryStorage_ChunkRoundtrip(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	st, err := storage.NewBinaryStorage(dir, "testworld", 42)
	if err != nil {
		t.Fatalf("cannot create storage: %v", err)
	}
	defer st.Close()

	pos := chunk.Pos{X: 10, Z: -20}

	has, err := st.HasChunk(ctx, pos)
	if err != nil {
		t.Fatalf("has chunk failed: %v", err)
	}
	if has {
		t.Fatal("chunk should not exist yet")
	}

	c := chunk.New(pos)
	c.SetBlock(1, 50, 1, block.Wood)
	if err := st.SaveChunk(ctx, c); err != nil {
		t.Fatalf("save chunk failed: %v", err)
	}

	has, err = st.HasChunk(ctx, pos)
	if err != nil {
		t.Fatalf("has chunk failed: %v", err)
	}
	if !has {
		t.Fatal("chunk should exist after save")
	}

	loaded, err := st.LoadChunk(ctx, pos)
	if err != nil {
		t.Fatalf("load chunk failed: %v", err)
	}
	if got := loaded.Block(1, 50, 1); got != block.Wood {
		t.Fatalf("block mismatch: want %v, got %v", block.Wood, got)
	}
	// Загруженный чанк должен требовать перестройки геометрии
	if !loaded.Dirty() {
		t.Fatal("loaded chunk must be dirty")
	}
}

// TestBinaryStorage_WorldInfo проверяет сохранение метаданных мира между сессиями.
func TestBinaryStorage_WorldInfo(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	st, err := storage.NewBinaryStorage(dir, "alpha", 7)
	if err != nil {
		t.Fatalf("cannot create storage: %v", err)
	}

	info, err := st.LoadWorldInfo(ctx)
	if err != nil {
		t.Fatalf("load world info failed: %v", err)
	}
	if info.Name != "alpha" || info.Seed != 7 {
		t.Fatalf("world info mismatch: %+v", info)
	}

	info.Time = 0.25
	if err := st.SaveWorldInfo(ctx, info); err != nil {
		t.Fatalf("save world info failed: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	// Повторное открытие не должно затереть сохранённые метаданные
	st2, err := storage.NewBinaryStorage(dir, "other-name", 999)
	if err != nil {
		t.Fatalf("reopen storage failed: %v", err)
	}
	defer st2.Close()

	info2, err := st2.LoadWorldInfo(ctx)
	if err != nil {
		t.Fatalf("load world info after reopen failed: %v", err)
	}
	if info2.Name != "alpha" || info2.Seed != 7 {
		t.Fatalf("world info overwritten on reopen: %+v", info2)
	}
	if info2.Time != 0.25 {
		t.Fatalf("world time not persisted: %v", info2.Time)
	}
}

// TestBinaryStorage_PlayerState проверяет сохранение состояния игрока.
func TestBinaryStorage_PlayerState(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	st, err := storage.NewBinaryStorage(dir, "testworld", 1)
	if err != nil {
		t.Fatalf("cannot create storage: %v", err)
	}
	defer st.Close()

	state := &storage.PlayerState{
		PlayerID: "p1",
		Name:     "steve",
		Position: mgl32.Vec3{8, 64, 8},
		Yaw:      90,
		Pitch:    -10,
	}
	if err := st.SavePlayerState(ctx, state); err != nil {
		t.Fatalf("save player state failed: %v", err)
	}

	loaded, err := st.LoadPlayerState(ctx, "p1")
	if err != nil {
		t.Fatalf("load player state failed: %v", err)
	}
	if loaded.Name != "steve" || loaded.Position != state.Position {
		t.Fatalf("player state mismatch: %+v", loaded)
	}

	if _, err := st.LoadPlayerState(ctx, "missing"); err == nil {
		t.Fatal("expected error for missing player state")
	}
}
