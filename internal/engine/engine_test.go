package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annelo/go-voxel-engine/internal/chunk"
	"github.com/annelo/go-voxel-engine/internal/config"
	"github.com/annelo/go-voxel-engine/internal/engine"
	"github.com/annelo/go-voxel-engine/internal/storage"
)

// fakePhysics считает вызовы и проверяет их порядок в пределах кадра.
type fakePhysics struct {
	resets  int
	adds    int
	updates int
}

func (e *fakePhysics) ResetChunks() { e.resets++ }
func (e *fakePhysics) AddStaticChunk(worldPos mgl32.Vec3, shape *chunk.CollisionShape) {
	e.adds++
}
func (e *fakePhysics) Update() { e.updates++ }

// fakeAudio записывает проигранные треки.
type fakeAudio struct {
	tracks []string
}

func (a *fakeAudio) Play(track string) { a.tracks = append(a.tracks, track) }

// fakeRenderer записывает отправленные проходы.
type fakeRenderer struct {
	begins int
	ends   int
	passes []chunk.RenderPass
}

func (r *fakeRenderer) BeginFrame() { r.begins++ }
func (r *fakeRenderer) SubmitChunk(pass chunk.RenderPass, c *chunk.Chunk) {
	r.passes = append(r.passes, pass)
}
func (r *fakeRenderer) EndFrame() { r.ends++ }

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.ViewingDistanceX = 4
	cfg.ViewingDistanceZ = 4
	cfg.ChunkRequestsPerSecond = 1000
	cfg.MeshWorkers = 2
	cfg.SecondsPerDay = 1
	return cfg
}

func newTestWorld(t *testing.T, cfg *config.Config, phys *fakePhysics, audio *fakeAudio) *engine.World {
	t.Helper()
	st, err := storage.NewBinaryStorage(t.TempDir(), cfg.WorldName, cfg.WorldSeed)
	require.NoError(t, err)

	var a engine.Audio
	if audio != nil {
		a = audio
	}
	w, err := engine.NewWorld(cfg, nil, st, phys, a, nil)
	require.NoError(t, err)
	return w
}

// stepUntil тикает мир, пока условие не выполнится.
func stepUntil(t *testing.T, w *engine.World, cond func() bool) {
	t.Helper()
	ctx := context.Background()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		w.Update(ctx, time.Millisecond)
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not reached before deadline")
}

func TestWorldPipelinePopulatesAndRebuilds(t *testing.T) {
	phys := &fakePhysics{}
	w := newTestWorld(t, testConfig(), phys, nil)
	defer w.Stop(context.Background())

	w.Player().Move(mgl32.Vec3{8, 70, 8})
	w.Update(context.Background(), time.Millisecond)

	// Окно 4×4 вокруг чанка (0,0)
	assert.Equal(t, 16, w.Cache().Len())
	assert.Equal(t, 1, phys.resets)
	assert.Equal(t, 1, phys.updates)

	// Перестройки сходятся: у чанка под игроком появляется артефакт
	target := w.Cache().Get(chunk.Pos{X: 0, Z: 0})
	require.NotNil(t, target)
	stepUntil(t, w, func() bool { return target.Mesh() != nil })

	assert.False(t, target.Dirty())
	assert.Contains(t, w.String(), "resident")
}

func TestWorldRecentersAfterMove(t *testing.T) {
	phys := &fakePhysics{}
	w := newTestWorld(t, testConfig(), phys, nil)
	defer w.Stop(context.Background())

	ctx := context.Background()
	w.Player().Move(mgl32.Vec3{8, 70, 8})
	w.Update(ctx, time.Millisecond)
	require.Equal(t, 16, w.Cache().Len())

	// Переходим в чанк (1,0); троттлинг при 1000 rps — 1мс
	w.Player().Move(mgl32.Vec3{8 + chunk.SizeX, 70, 8})
	time.Sleep(5 * time.Millisecond)
	w.Update(ctx, time.Millisecond)

	assert.Equal(t, 16, w.Cache().Len())
	assert.Nil(t, w.Cache().Get(chunk.Pos{X: -2, Z: 0}))
	assert.NotNil(t, w.Cache().Get(chunk.Pos{X: 2, Z: 0}))
}

func TestWorldTimeEventsPlayMusic(t *testing.T) {
	audio := &fakeAudio{}
	w := newTestWorld(t, testConfig(), &fakePhysics{}, audio)
	defer w.Stop(context.Background())

	ctx := context.Background()
	// Точка отсчета чуть после полуночи
	w.Update(ctx, time.Millisecond)
	// Пересекаем 0.01 (Sunrise) и 0.33 (Afternoon)
	w.Update(ctx, 350*time.Millisecond)
	// Пересекаем 0.44 (Sunset)
	w.Update(ctx, 150*time.Millisecond)

	require.Equal(t, []string{engine.TrackSunrise, engine.TrackAfternoon, engine.TrackSunset}, audio.tracks)

	// Следующий цикл проигрывает треки заново
	w.Update(ctx, 500*time.Millisecond) // через полночь, фаза ~0.001
	w.Update(ctx, 500*time.Millisecond) // снова за закат
	assert.Len(t, audio.tracks, 6)
}

func TestWorldDayWrapsAndDaylight(t *testing.T) {
	w := newTestWorld(t, testConfig(), &fakePhysics{}, nil)
	defer w.Stop(context.Background())

	ctx := context.Background()
	w.Update(ctx, 250*time.Millisecond) // полдень
	assert.InDelta(t, 1.0, w.Daylight(), 0.01)

	w.Update(ctx, time.Second)
	assert.Equal(t, int64(1), w.Day())

	// Дневной свет никогда не падает ниже минимума
	w.Update(ctx, 500*time.Millisecond) // глубокая ночь
	assert.GreaterOrEqual(t, w.Daylight(), 0.15)
}

func TestWorldRenderPassOrder(t *testing.T) {
	w := newTestWorld(t, testConfig(), &fakePhysics{}, nil)
	defer w.Stop(context.Background())

	w.Player().Move(mgl32.Vec3{8, 70, 8})
	target := func() *chunk.Chunk { return w.Cache().Get(chunk.Pos{X: 0, Z: 0}) }
	stepUntil(t, w, func() bool { return target() != nil && target().Mesh() != nil })

	r := &fakeRenderer{}
	w.Render(r)

	assert.Equal(t, 1, r.begins)
	assert.Equal(t, 1, r.ends)
	require.NotEmpty(t, r.passes)

	// Проходы идут в фиксированном порядке, вода — двумя проходами
	last := chunk.PassOpaque
	waterPasses := 0
	for _, p := range r.passes {
		assert.GreaterOrEqual(t, p, last)
		last = p
		if p == chunk.PassWater {
			waterPasses++
		}
	}
	if waterPasses > 0 {
		assert.Zero(t, waterPasses%2, "water must be submitted twice per chunk")
	}
}

func TestWorldStopPersistsState(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig()
	cfg.WorldSeed = 77

	st, err := storage.NewBinaryStorage(dir, cfg.WorldName, cfg.WorldSeed)
	require.NoError(t, err)
	w, err := engine.NewWorld(cfg, nil, st, &fakePhysics{}, nil, nil)
	require.NoError(t, err)

	ctx := context.Background()
	w.Player().Move(mgl32.Vec3{40, 70, -20})
	w.Update(ctx, 300*time.Millisecond)
	w.Stop(ctx)

	// Повторное открытие восстанавливает сид, время и игрока
	st2, err := storage.NewBinaryStorage(dir, cfg.WorldName, 0)
	require.NoError(t, err)
	w2, err := engine.NewWorld(cfg, nil, st2, &fakePhysics{}, nil, nil)
	require.NoError(t, err)
	defer w2.Stop(ctx)

	assert.Equal(t, int64(77), w2.Generator().Seed())
	assert.InDelta(t, 0.3, w2.Phase(), 0.01)
	assert.Equal(t, mgl32.Vec3{40, 70, -20}, w2.Player().Position())
}
