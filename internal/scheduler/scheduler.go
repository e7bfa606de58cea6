// Package scheduler планирует перестройку геометрии грязных чанков на
// ограниченном пуле воркеров, не блокируя главный цикл кадра.
package scheduler

import (
	"expvar"
	"iter"
	"log"
	"sync"
	"time"

	"github.com/annelo/go-voxel-engine/internal/block"
	"github.com/annelo/go-voxel-engine/internal/chunk"
)

// Счётчики диагностики
var (
	statRebuildFailures = expvar.NewInt("scheduler_rebuild_failures")
	statRebuildsApplied = expvar.NewInt("scheduler_rebuilds_applied")
	statQueueOverflows  = expvar.NewInt("scheduler_queue_overflows")
)

// Значения по умолчанию
const (
	DefaultWorkers     = 2
	DefaultQueueSize   = 64
	DefaultStatsWindow = 32
)

// GeometryBuilder строит артефакт геометрии по снимку блоков. Чистая
// функция данных: никаких побочных эффектов кроме самого артефакта.
type GeometryBuilder interface {
	BuildGeometry(blocks []block.Type) (*chunk.Artifact, error)
}

// Запрос на перестройку: снимок блоков и ревизия на момент постановки.
// Воркеры не трогают сам чанк.
type request struct {
	target   *chunk.Chunk
	blocks   []block.Type
	revision uint64
}

// Результат перестройки, применяется главной горутиной.
type result struct {
	target   *chunk.Chunk
	artifact *chunk.Artifact
	revision uint64
	elapsed  time.Duration
	err      error
}

// Scheduler — планировщик перестроек. Tick вызывается только из
// главной горутины; воркеры общаются с ней через каналы.
type Scheduler struct {
	builder GeometryBuilder

	queue   chan request
	results chan result

	// pending содержит координаты чанков с незавершенной перестройкой;
	// читается и пишется только главной горутиной
	pending map[chunk.Pos]bool

	stats *RollingAverage

	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// Options настраивает планировщик. Нулевые поля получают значения
// по умолчанию.
type Options struct {
	Workers     int
	QueueSize   int
	StatsWindow int
}

// New создает планировщик и запускает пул воркеров.
func New(builder GeometryBuilder, opts Options) *Scheduler {
	if opts.Workers < 1 {
		opts.Workers = DefaultWorkers
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = DefaultQueueSize
	}
	if opts.StatsWindow < 1 {
		opts.StatsWindow = DefaultStatsWindow
	}

	s := &Scheduler{
		builder:  builder,
		queue:    make(chan request, opts.QueueSize),
		results:  make(chan result, opts.QueueSize+opts.Workers),
		pending:  make(map[chunk.Pos]bool),
		stats:    NewRollingAverage(opts.StatsWindow),
		stopChan: make(chan struct{}),
	}

	for i := 0; i < opts.Workers; i++ {
		s.wg.Add(1)
		go s.worker()
	}

	return s
}

// Tick обрабатывает готовые результаты и планирует перестройку грязных
// видимых чанков. Чанк, ожидающий перестройки, не получает легкого
// покадрового обновления: перестройка его вытесняет.
func (s *Scheduler) Tick(visible iter.Seq[*chunk.Chunk]) {
	s.drainResults()

	for c := range visible {
		if s.pending[c.Pos] {
			continue
		}
		if c.Dirty() {
			s.enqueue(c)
			continue
		}
		c.Animate()
	}
}

// drainResults применяет все накопившиеся результаты воркеров.
func (s *Scheduler) drainResults() {
	for {
		select {
		case res := <-s.results:
			s.apply(res)
		default:
			return
		}
	}
}

// apply применяет один результат. Если чанк успел измениться, пока шла
// перестройка, результат устарел: планируем свежую перестройку вместо
// применения.
func (s *Scheduler) apply(res result) {
	delete(s.pending, res.target.Pos)

	if res.err != nil {
		// Флаги грязности остаются выставленными: попытка повторится
		statRebuildFailures.Add(1)
		log.Printf("[Scheduler.Tick] перестройка чанка %s не удалась: %v", res.target.Pos.Key(), res.err)
		return
	}

	if res.target.ApplyMesh(res.artifact, res.revision) {
		statRebuildsApplied.Add(1)
		s.stats.Add(res.elapsed)
		return
	}

	s.enqueue(res.target)
}

// enqueue ставит чанк в очередь, снимая снимок блоков. Переполненная
// очередь — не ошибка: чанк останется грязным и попадет в очередь на
// одном из следующих тиков.
func (s *Scheduler) enqueue(c *chunk.Chunk) {
	req := request{
		target:   c,
		blocks:   c.SnapshotBlocks(),
		revision: c.Revision(),
	}

	select {
	case s.queue <- req:
		s.pending[c.Pos] = true
	default:
		statQueueOverflows.Add(1)
	}
}

// worker выполняет перестройки из очереди до остановки планировщика.
func (s *Scheduler) worker() {
	defer s.wg.Done()

	for {
		select {
		case req := <-s.queue:
			start := time.Now()
			artifact, err := s.builder.BuildGeometry(req.blocks)
			res := result{
				target:   req.target,
				artifact: artifact,
				revision: req.revision,
				elapsed:  time.Since(start),
				err:      err,
			}
			select {
			case s.results <- res:
			case <-s.stopChan:
				return
			}
		case <-s.stopChan:
			return
		}
	}
}

// Pending возвращает количество чанков с незавершенной перестройкой.
func (s *Scheduler) Pending() int {
	return len(s.pending)
}

// AverageRebuildDuration возвращает скользящее среднее длительности
// перестроек для диагностики.
func (s *Scheduler) AverageRebuildDuration() time.Duration {
	return s.stats.Average()
}

// Close останавливает воркеров. Незавершенные и неприменённые
// результаты отбрасываются без применения к чанкам.
func (s *Scheduler) Close() {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()

		for {
			select {
			case <-s.results:
			default:
				return
			}
		}
	})
}
