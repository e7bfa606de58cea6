// Package timeevents запускает события, привязанные к фазе циклического
// мирового времени (смена фоновой музыки, рассвет, закат).
package timeevents

import (
	"log"
	"math"
	"sort"
)

// Action — именованное действие, вызываемое при пересечении фазы.
// Действия диспетчеризуются по имени через таблицу, чтобы планировщик
// ничего не знал об аудио и прочих потребителях.
type Action func()

// Event — точка цикла суток, в которой срабатывает действие. Фаза
// нормализована в [0,1). Повторяющееся событие перевзводится на
// следующий цикл, одноразовое удаляется после срабатывания.
type Event struct {
	Phase     float64
	Recurring bool
	Action    string
}

// Scheduler отслеживает пересечение фаз между проверками, корректно
// обрабатывая переход через конец цикла (1.0 → 0.0). В пределах одного
// цикла каждое событие срабатывает не более одного раза; события на
// разных фазах срабатывают в порядке фаз.
type Scheduler struct {
	actions map[string]Action
	events  []Event

	lastPhase float64
	started   bool
}

// New создает пустой планировщик.
func New() *Scheduler {
	return &Scheduler{actions: make(map[string]Action)}
}

// RegisterAction связывает имя действия с функцией.
func (s *Scheduler) RegisterAction(name string, fn Action) {
	s.actions[name] = fn
}

// AddEvent добавляет событие; фаза приводится к [0,1).
func (s *Scheduler) AddEvent(phase float64, recurring bool, action string) {
	phase = normalizePhase(phase)
	s.events = append(s.events, Event{Phase: phase, Recurring: recurring, Action: action})
	sort.SliceStable(s.events, func(i, j int) bool {
		return s.events[i].Phase < s.events[j].Phase
	})
}

// Events возвращает количество взведенных событий.
func (s *Scheduler) Events() int {
	return len(s.events)
}

// Tick сверяет текущую фазу с фазой прошлой проверки и запускает все
// пересеченные события. Первая проверка только фиксирует точку отсчета.
func (s *Scheduler) Tick(currentPhase float64) {
	currentPhase = normalizePhase(currentPhase)

	if !s.started {
		s.started = true
		s.lastPhase = currentPhase
		return
	}

	last := s.lastPhase
	s.lastPhase = currentPhase

	if currentPhase == last {
		return
	}

	// Событие пересечено, если его фаза лежит в (last, current],
	// с учетом перехода через конец цикла
	crossed := func(p float64) bool {
		if currentPhase > last {
			return p > last && p <= currentPhase
		}
		return p > last || p <= currentPhase
	}

	// Сначала хвост цикла (фазы > last), затем начало нового — так
	// порядок срабатывания следует порядку фаз внутри одного обхода
	for _, pass := range [2]func(float64) bool{
		func(p float64) bool { return p > last },
		func(p float64) bool { return p <= last },
	} {
		for _, e := range s.events {
			if pass(e.Phase) && crossed(e.Phase) {
				s.fire(e)
			}
		}
	}

	// Удаляем сработавшие одноразовые события
	remaining := s.events[:0]
	for _, e := range s.events {
		if !e.Recurring && crossed(e.Phase) {
			continue
		}
		remaining = append(remaining, e)
	}
	s.events = remaining
}

func (s *Scheduler) fire(e Event) {
	fn, ok := s.actions[e.Action]
	if !ok {
		log.Printf("[TimeEvents.Tick] неизвестное действие %q на фазе %.3f", e.Action, e.Phase)
		return
	}
	fn()
}

// normalizePhase приводит фазу к [0,1).
func normalizePhase(p float64) float64 {
	p = math.Mod(p, 1.0)
	if p < 0 {
		p += 1.0
	}
	return p
}
