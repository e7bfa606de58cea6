// Package engine собирает подсистемы мира в единый конвейер кадра:
// окно резидентных чанков, отсечение видимости, планировщик перестроек,
// синхронизация физики и события мирового времени.
package engine

import (
	"context"
	"fmt"
	"iter"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/annelo/go-voxel-engine/internal/chunk"
	"github.com/annelo/go-voxel-engine/internal/config"
	"github.com/annelo/go-voxel-engine/internal/geom"
	"github.com/annelo/go-voxel-engine/internal/mesh"
	"github.com/annelo/go-voxel-engine/internal/physicssync"
	"github.com/annelo/go-voxel-engine/internal/player"
	"github.com/annelo/go-voxel-engine/internal/plugin"
	"github.com/annelo/go-voxel-engine/internal/proximity"
	"github.com/annelo/go-voxel-engine/internal/scheduler"
	"github.com/annelo/go-voxel-engine/internal/storage"
	"github.com/annelo/go-voxel-engine/internal/timeevents"
	"github.com/annelo/go-voxel-engine/internal/visibility"
	"github.com/annelo/go-voxel-engine/internal/worldgen"
)

// Audio — коллаборатор воспроизведения звука; вызовы fire-and-forget.
type Audio interface {
	Play(track string)
}

// Renderer потребляет видимые чанки по проходам отрисовки. Движок не
// знает о шейдерах и текстурах, только о порядке проходов.
type Renderer interface {
	BeginFrame()
	SubmitChunk(pass chunk.RenderPass, c *chunk.Chunk)
	EndFrame()
}

// Фазы музыкальных событий суточного цикла.
const (
	TrackSunrise   = "Sunrise"
	TrackAfternoon = "Afternoon"
	TrackSunset    = "Sunset"

	phaseSunrise   = 0.01
	phaseAfternoon = 0.33
	phaseSunset    = 0.44
)

// localPlayerID — ключ сохранения состояния локального игрока.
const localPlayerID = "local"

// World владеет всеми подсистемами и прогоняет их строго по порядку
// раз в кадр. Все методы, кроме конструктора, вызываются из главной
// горутины симуляции.
type World struct {
	cfg    *config.Config
	logger *zap.SugaredLogger

	store     storage.WorldStorage
	generator *worldgen.Generator

	cache   *proximity.Cache
	sched   *scheduler.Scheduler
	physics *physicssync.Window
	clock   *timeevents.Scheduler

	player *player.Player
	camera *Camera

	registry *plugin.DefaultRegistry

	// Нормализованная фаза суток в [0,1) и счетчик прожитых дней
	phase float64
	day   int64

	// Счетчик кадров для анимации текстур
	tick uint64

	// Видимое множество последнего кадра
	visible iter.Seq[*chunk.Chunk]

	stopOnce sync.Once
}

// NewWorld собирает мир. Повторно открытый мир сохраняет сид и время
// суток из хранилища; cfg.WorldSeed используется только для нового мира.
func NewWorld(cfg *config.Config, logger *zap.SugaredLogger, store storage.WorldStorage, physEngine physicssync.Engine, audio Audio, reg *plugin.DefaultRegistry) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("world config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if reg == nil {
		reg = plugin.NewDefaultRegistry()
	}

	seed := cfg.WorldSeed
	phase := 0.0
	if store != nil {
		if info, err := store.LoadWorldInfo(context.Background()); err == nil {
			seed = info.Seed
			phase = info.Time
		}
	}

	generator := worldgen.NewGenerator(seed)
	var provider proximity.ChunkProvider = worldgen.NewPersistentProvider(generator, store)
	provider = &hookedProvider{inner: provider, reg: reg}

	var saver proximity.ChunkSaver
	if store != nil {
		saver = &hookedSaver{inner: store, reg: reg}
	}

	w := &World{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		generator: generator,
		cache:     proximity.NewCache(provider, saver, cfg.ViewingDistanceX, cfg.ViewingDistanceZ, cfg.UpdateGap()),
		sched: scheduler.New(mesh.NewFaceBuilder(), scheduler.Options{
			Workers:     cfg.MeshWorkers,
			QueueSize:   cfg.RebuildQueueSize,
			StatsWindow: cfg.UpdateStatsWindow,
		}),
		physics:  physicssync.NewWindow(physEngine, cfg.PhysicsChunksPerFrame),
		clock:    timeevents.New(),
		camera:   NewCamera(),
		registry: reg,
		phase:    phase,
		visible:  func(yield func(*chunk.Chunk) bool) {},
	}

	w.player = w.restorePlayer()
	w.player.AddResetListener(w)

	w.registerTimeEvents(audio)

	logger.Infow("world created",
		"name", cfg.WorldName,
		"seed", seed,
		"window", fmt.Sprintf("%dx%d", cfg.ViewingDistanceX, cfg.ViewingDistanceZ),
	)
	return w, nil
}

// restorePlayer восстанавливает локального игрока из хранилища или
// создает нового.
func (w *World) restorePlayer() *player.Player {
	if w.store != nil {
		if state, err := w.store.LoadPlayerState(context.Background(), localPlayerID); err == nil {
			p := player.New(state.Name)
			p.Move(state.Position)
			p.SetOrientation(state.Yaw, state.Pitch)
			return p
		}
	}
	return player.New(localPlayerID)
}

// registerTimeEvents взводит встроенные музыкальные события и действия,
// добавленные плагинами.
func (w *World) registerTimeEvents(audio Audio) {
	playTrack := func(track string) timeevents.Action {
		return func() {
			w.logger.Infow("time event", "track", track, "phase", w.phase)
			if audio != nil {
				audio.Play(track)
			}
		}
	}

	w.clock.RegisterAction(TrackSunrise, playTrack(TrackSunrise))
	w.clock.RegisterAction(TrackAfternoon, playTrack(TrackAfternoon))
	w.clock.RegisterAction(TrackSunset, playTrack(TrackSunset))

	w.clock.AddEvent(phaseSunrise, true, TrackSunrise)
	w.clock.AddEvent(phaseAfternoon, true, TrackAfternoon)
	w.clock.AddEvent(phaseSunset, true, TrackSunset)

	for _, ta := range w.registry.TimeActions() {
		w.clock.RegisterAction(ta.Name, ta.Action)
	}
}

// Update выполняет один кадр симуляции. Порядок стадий фиксирован:
// окно чанков → видимость → перестройки → физика → события времени;
// каждая стадия потребляет только результат предыдущей.
func (w *World) Update(ctx context.Context, dt time.Duration) {
	w.tick++
	w.advanceTime(dt)

	w.cache.Refresh(ctx, w.player.ChunkPos(), time.Now())

	w.visible = visibility.Cull(w.cache.Resident(), w.camera.ViewVolume(w.player))

	w.sched.Tick(w.visible)

	w.physics.SyncTick(w.cache.Resident())

	w.clock.Tick(w.phase)
}

// advanceTime продвигает фазу суток с переходом через конец цикла.
func (w *World) advanceTime(dt time.Duration) {
	w.phase += dt.Seconds() / w.cfg.SecondsPerDay
	for w.phase >= 1.0 {
		w.phase -= 1.0
		w.day++
	}
}

// Render отправляет видимые чанки рендереру по проходам. Вода
// отправляется дважды: отдельным проходом для обратных граней.
func (w *World) Render(r Renderer) {
	if r == nil {
		return
	}

	r.BeginFrame()
	passes := []chunk.RenderPass{
		chunk.PassOpaque,
		chunk.PassLava,
		chunk.PassBillboardTranslucent,
		chunk.PassWater,
		chunk.PassWater,
	}
	for _, pass := range passes {
		for c := range w.visible {
			if c.Mesh() == nil {
				continue
			}
			r.SubmitChunk(pass, c)
		}
	}
	r.EndFrame()
}

// OnPlayerReset реализует player.ResetListener: после телепортации
// окно перецентрируется без ожидания троттлинга.
func (w *World) OnPlayerReset(p *player.Player) {
	w.cache.Invalidate()
}

// Player возвращает локального игрока.
func (w *World) Player() *player.Player { return w.player }

// Registry возвращает реестр плагинов мира.
func (w *World) Registry() *plugin.DefaultRegistry { return w.registry }

// Generator возвращает генератор рельефа мира.
func (w *World) Generator() *worldgen.Generator { return w.generator }

// Cache возвращает окно резидентных чанков.
func (w *World) Cache() *proximity.Cache { return w.cache }

// Phase возвращает текущую фазу суток в [0,1).
func (w *World) Phase() float64 { return w.phase }

// Day возвращает количество прожитых полных суток.
func (w *World) Day() int64 { return w.day }

// Tick возвращает счетчик кадров; рендерер использует его для
// анимации воды и лавы.
func (w *World) Tick() uint64 { return w.tick }

// Daylight возвращает уровень дневного света в [0.15, 1]: максимум в
// полдень (фаза 0.25), минимум ночью.
func (w *World) Daylight() float64 {
	s := math.Sin(w.phase * 2 * math.Pi)
	if s < 0 {
		s = 0
	}
	return 0.15 + 0.85*s
}

// VisibleCount возвращает количество видимых чанков последнего кадра.
func (w *World) VisibleCount() int {
	return visibility.Count(w.visible)
}

// String возвращает сводку состояния мира для диагностики.
func (w *World) String() string {
	pos := w.player.Position()
	return fmt.Sprintf("world %q: day %d phase %.3f, biome %s, %d resident, %d visible, %d pending rebuilds, avg rebuild %v",
		w.cfg.WorldName, w.day, w.phase,
		w.generator.BiomeAt(float64(pos.X()), float64(pos.Z())),
		w.cache.Len(), w.VisibleCount(),
		w.sched.Pending(), w.sched.AverageRebuildDuration(),
	)
}

// Stop останавливает мир: воркеры перестроек завершаются (их результаты
// отбрасываются), резидентные чанки, игрок и время суток сохраняются.
func (w *World) Stop(ctx context.Context) {
	w.stopOnce.Do(func() {
		w.logger.Infow("stopping world", "status", w.String())

		w.sched.Close()

		if err := w.cache.Flush(ctx); err != nil {
			w.logger.Errorw("flush chunks failed", "error", err)
		}

		if w.store != nil {
			w.savePlayer(ctx)
			w.saveWorldInfo(ctx)
			if err := w.store.Flush(ctx); err != nil {
				w.logger.Errorw("flush storage failed", "error", err)
			}
			if err := w.store.Close(); err != nil {
				w.logger.Errorw("close storage failed", "error", err)
			}
		}

		w.logger.Infow("world stopped")
	})
}

func (w *World) savePlayer(ctx context.Context) {
	state := &storage.PlayerState{
		PlayerID: localPlayerID,
		Name:     w.player.Name,
		Position: w.player.Position(),
		Yaw:      w.player.Yaw(),
		Pitch:    w.player.Pitch(),
	}
	if err := w.store.SavePlayerState(ctx, state); err != nil {
		w.logger.Errorw("save player failed", "error", err)
	}
}

func (w *World) saveWorldInfo(ctx context.Context) {
	info, err := w.store.LoadWorldInfo(ctx)
	if err != nil {
		info = &storage.WorldInfo{Name: w.cfg.WorldName, Seed: w.generator.Seed(), CreatedAt: time.Now()}
	}
	info.Time = w.phase
	if err := w.store.SaveWorldInfo(ctx, info); err != nil {
		w.logger.Errorw("save world info failed", "error", err)
	}
}

// SetCamera подменяет камеру мира (инструменты и тесты игнорируют nil).
func (w *World) SetCamera(c *Camera) {
	if c != nil {
		w.camera = c
	}
}

var _ geom.Volume = (*geom.Frustum)(nil)
