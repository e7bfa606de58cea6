package physicssync_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/annelo/go-voxel-engine/internal/chunk"
	"github.com/annelo/go-voxel-engine/internal/geom"
	"github.com/annelo/go-voxel-engine/internal/physicssync"
)

// fakeEngine записывает последовательность вызовов.
type fakeEngine struct {
	resets    int
	updates   int
	added     []mgl32.Vec3
	callOrder []string
}

func (e *fakeEngine) ResetChunks() {
	e.resets++
	e.added = e.added[:0]
	e.callOrder = append(e.callOrder, "reset")
}

func (e *fakeEngine) AddStaticChunk(worldPos mgl32.Vec3, shape *chunk.CollisionShape) {
	e.added = append(e.added, worldPos)
	e.callOrder = append(e.callOrder, "add")
}

func (e *fakeEngine) Update() {
	e.updates++
	e.callOrder = append(e.callOrder, "update")
}

// chunkWithShape создает чанк с готовой коллизионной формой.
func chunkWithShape(pos chunk.Pos) *chunk.Chunk {
	c := chunk.New(pos)
	artifact := &chunk.Artifact{
		Collision: &chunk.CollisionShape{
			Boxes: []geom.AABB{geom.NewAABB(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{16, 1, 16})},
		},
	}
	c.ApplyMesh(artifact, c.Revision())
	return c
}

// TestSyncTick_CallOrder проверяет порядок reset → add → update.
func TestSyncTick_CallOrder(t *testing.T) {
	e := &fakeEngine{}
	w := physicssync.NewWindow(e, 4)

	resident := []*chunk.Chunk{chunkWithShape(chunk.Pos{X: 0, Z: 0})}
	w.SyncTick(resident)

	want := []string{"reset", "add", "update"}
	if len(e.callOrder) != len(want) {
		t.Fatalf("call order: want %v, got %v", want, e.callOrder)
	}
	for i := range want {
		if e.callOrder[i] != want[i] {
			t.Fatalf("call order: want %v, got %v", want, e.callOrder)
		}
	}
}

// TestSyncTick_Quota проверяет, что за кадр регистрируется не больше квоты.
func TestSyncTick_Quota(t *testing.T) {
	e := &fakeEngine{}
	w := physicssync.NewWindow(e, 3)

	var resident []*chunk.Chunk
	for i := 0; i < 10; i++ {
		resident = append(resident, chunkWithShape(chunk.Pos{X: i, Z: 0}))
	}

	w.SyncTick(resident)
	if len(e.added) > 3 {
		t.Fatalf("registered %d chunks, quota is 3", len(e.added))
	}
}

// TestSyncTick_EventualCoverage проверяет, что при неизменном наборе
// каждый чанк с формой регистрируется за несколько кадров.
func TestSyncTick_EventualCoverage(t *testing.T) {
	e := &fakeEngine{}
	w := physicssync.NewWindow(e, 3)

	var resident []*chunk.Chunk
	for i := 0; i < 10; i++ {
		resident = append(resident, chunkWithShape(chunk.Pos{X: i, Z: 0}))
	}

	seen := make(map[mgl32.Vec3]bool)
	for frame := 0; frame < 20; frame++ {
		w.SyncTick(resident)
		for _, pos := range e.added {
			seen[pos] = true
		}
	}

	if len(seen) != 10 {
		t.Fatalf("covered %d of 10 chunks", len(seen))
	}
}

// TestSyncTick_SkipsChunksWithoutShape проверяет пропуск чанков без
// готовой геометрии.
func TestSyncTick_SkipsChunksWithoutShape(t *testing.T) {
	e := &fakeEngine{}
	w := physicssync.NewWindow(e, 8)

	resident := []*chunk.Chunk{
		chunkWithShape(chunk.Pos{X: 0, Z: 0}),
		chunk.New(chunk.Pos{X: 1, Z: 0}), // без артефакта
	}

	w.SyncTick(resident)
	if len(e.added) != 1 {
		t.Fatalf("registered %d chunks, want 1", len(e.added))
	}
}

// TestSyncTick_EmptyResident проверяет пустой резидентный набор.
func TestSyncTick_EmptyResident(t *testing.T) {
	e := &fakeEngine{}
	w := physicssync.NewWindow(e, 4)

	w.SyncTick(nil)
	if e.resets != 1 || e.updates != 1 {
		t.Fatalf("reset/update must run even with no chunks: resets=%d updates=%d", e.resets, e.updates)
	}
}
