package visibility_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/annelo/go-voxel-engine/internal/chunk"
	"github.com/annelo/go-voxel-engine/internal/geom"
	"github.com/annelo/go-voxel-engine/internal/visibility"
)

// boxVolume — объем видимости для тестов: простой AABB.
type boxVolume struct {
	box geom.AABB
}

func (v boxVolume) IntersectsAABB(b geom.AABB) bool {
	return v.box.Intersects(b)
}

func makeResident(positions ...chunk.Pos) []*chunk.Chunk {
	out := make([]*chunk.Chunk, 0, len(positions))
	for _, p := range positions {
		out = append(out, chunk.New(p))
	}
	return out
}

// TestCull_FlagsAndOrder проверяет выставление флагов видимости и
// сохранение стабильного порядка.
func TestCull_FlagsAndOrder(t *testing.T) {
	resident := makeResident(
		chunk.Pos{X: 0, Z: 0},
		chunk.Pos{X: 1, Z: 0},
		chunk.Pos{X: 10, Z: 10}, // далеко за пределами объема
	)

	// Объем покрывает чанки (0,0) и (1,0)
	vol := boxVolume{box: geom.NewAABB(
		mgl32.Vec3{0, 0, 0},
		mgl32.Vec3{2 * chunk.SizeX, chunk.SizeY, chunk.SizeZ},
	)}

	seq := visibility.Cull(resident, vol)

	var got []chunk.Pos
	for c := range seq {
		got = append(got, c.Pos)
	}

	want := []chunk.Pos{{X: 0, Z: 0}, {X: 1, Z: 0}}
	if len(got) != len(want) {
		t.Fatalf("visible count: want %d, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order mismatch at %d: want %v, got %v", i, want[i], got[i])
		}
	}

	if !resident[0].Visible() || !resident[1].Visible() {
		t.Error("intersecting chunks must be flagged visible")
	}
	if resident[2].Visible() {
		t.Error("non-intersecting chunk must not be flagged visible")
	}
}

// TestCull_Restartable проверяет, что последовательность можно обойти повторно.
func TestCull_Restartable(t *testing.T) {
	resident := makeResident(chunk.Pos{X: 0, Z: 0}, chunk.Pos{X: 1, Z: 1})
	vol := boxVolume{box: geom.NewAABB(
		mgl32.Vec3{-100, -100, -100},
		mgl32.Vec3{100, 200, 100},
	)}

	seq := visibility.Cull(resident, vol)

	if n := visibility.Count(seq); n != 2 {
		t.Fatalf("first pass: want 2, got %d", n)
	}
	if n := visibility.Count(seq); n != 2 {
		t.Fatalf("second pass: want 2, got %d", n)
	}
}

// TestCull_FrustumVolume проверяет работу с настоящим фрустумом.
func TestCull_FrustumVolume(t *testing.T) {
	resident := makeResident(
		chunk.Pos{X: 0, Z: 0},
		chunk.Pos{X: 0, Z: 50}, // позади камеры
	)

	// Камера в центре чанка (0,0), смотрит вдоль -Z
	proj := mgl32.Perspective(mgl32.DegToRad(70), 16.0/9.0, 0.1, 500)
	view := mgl32.LookAtV(
		mgl32.Vec3{8, 64, 8},
		mgl32.Vec3{8, 64, -100},
		mgl32.Vec3{0, 1, 0},
	)
	frustum := geom.FrustumFromMatrix(proj.Mul4(view))

	visibility.Cull(resident, frustum)

	if !resident[0].Visible() {
		t.Error("chunk containing the camera must be visible")
	}
	if resident[1].Visible() {
		t.Error("chunk behind the camera must not be visible")
	}
}
