package timeevents_test

import (
	"testing"

	"github.com/annelo/go-voxel-engine/internal/timeevents"
)

// TestTick_Wraparound: последовательность фаз [0.95, 0.02] пересекает
// событие на 0.99 ровно один раз.
func TestTick_Wraparound(t *testing.T) {
	s := timeevents.New()

	fired := 0
	s.RegisterAction("midnight", func() { fired++ })
	s.AddEvent(0.99, true, "midnight")

	s.Tick(0.95) // точка отсчета
	s.Tick(0.02) // переход через конец цикла

	if fired != 1 {
		t.Fatalf("event fired %d times, want 1", fired)
	}

	// Дальнейшее движение внутри цикла не повторяет срабатывание
	s.Tick(0.5)
	if fired != 1 {
		t.Fatalf("event fired %d times after same cycle, want 1", fired)
	}

	// Следующий цикл перевзводит повторяющееся событие
	s.Tick(0.98)
	s.Tick(1.0) // нормализуется в 0.0
	if fired != 2 {
		t.Fatalf("recurring event fired %d times after next cycle, want 2", fired)
	}
}

// TestTick_OneShotRemoved: одноразовое событие не срабатывает повторно
// даже спустя много циклов.
func TestTick_OneShotRemoved(t *testing.T) {
	s := timeevents.New()

	fired := 0
	s.RegisterAction("intro", func() { fired++ })
	s.AddEvent(0.5, false, "intro")

	s.Tick(0.0)
	for cycle := 0; cycle < 5; cycle++ {
		s.Tick(0.4)
		s.Tick(0.6)
		s.Tick(0.9)
		s.Tick(0.1)
	}

	if fired != 1 {
		t.Fatalf("one-shot event fired %d times, want 1", fired)
	}
	if s.Events() != 0 {
		t.Fatalf("one-shot event must be removed, %d events left", s.Events())
	}
}

// TestTick_PhaseOrder: события на разных фазах срабатывают в порядке фаз.
func TestTick_PhaseOrder(t *testing.T) {
	s := timeevents.New()

	var order []string
	for _, name := range []string{"sunrise", "afternoon", "sunset"} {
		name := name
		s.RegisterAction(name, func() { order = append(order, name) })
	}
	s.AddEvent(0.33, true, "afternoon")
	s.AddEvent(0.01, true, "sunrise")
	s.AddEvent(0.44, true, "sunset")

	s.Tick(0.0)
	s.Tick(0.5) // пересекает все три

	want := []string{"sunrise", "afternoon", "sunset"}
	if len(order) != len(want) {
		t.Fatalf("fired %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("fired %v, want %v", order, want)
		}
	}
}

// TestTick_WraparoundOrder: при переходе через конец цикла сначала
// срабатывает хвост старого цикла, затем начало нового.
func TestTick_WraparoundOrder(t *testing.T) {
	s := timeevents.New()

	var order []string
	for _, name := range []string{"late", "early"} {
		name := name
		s.RegisterAction(name, func() { order = append(order, name) })
	}
	s.AddEvent(0.05, true, "early")
	s.AddEvent(0.97, true, "late")

	s.Tick(0.9)
	s.Tick(0.1)

	if len(order) != 2 || order[0] != "late" || order[1] != "early" {
		t.Fatalf("fired %v, want [late early]", order)
	}
}

// TestTick_FirstTickIsBaseline: первая проверка не запускает события.
func TestTick_FirstTickIsBaseline(t *testing.T) {
	s := timeevents.New()

	fired := 0
	s.RegisterAction("noon", func() { fired++ })
	s.AddEvent(0.5, true, "noon")

	s.Tick(0.7)
	if fired != 0 {
		t.Fatalf("baseline tick must not fire events, fired %d", fired)
	}
}

// TestTick_UnknownActionIgnored: событие с незарегистрированным
// действием не ломает планировщик.
func TestTick_UnknownActionIgnored(t *testing.T) {
	s := timeevents.New()
	s.AddEvent(0.5, true, "missing")

	s.Tick(0.0)
	s.Tick(0.9) // не должно паниковать
}
