// Package gameloop содержит главный цикл симуляции: системы,
// вызываемые с фиксированным периодом до отмены контекста.
package gameloop

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Loop — главный цикл, вызывающий Tick всех зарегистрированных систем
// в порядке регистрации.
type Loop struct {
	systems []System
	tickDur time.Duration
	ticks   int64
}

// NewLoop создаёт цикл с заданной длительностью тика. Ошибка
// инициализации любой системы фатальна: цикл не стартует наполовину
// собранным.
func NewLoop(tick time.Duration, deps Dependencies, systems ...System) (*Loop, error) {
	for _, s := range systems {
		if err := s.Init(deps); err != nil {
			return nil, fmt.Errorf("init system %s: %w", s.Name(), err)
		}
	}
	return &Loop{systems: systems, tickDur: tick}, nil
}

// Run запускает цикл до отмены ctx. Паника одной системы не роняет
// остальные: тик продолжается со следующей системы.
func (l *Loop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.tickDur)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case t := <-ticker.C:
			dt := t.Sub(last)
			last = t
			l.step(ctx, dt)
		case <-ctx.Done():
			log.Println("[GameLoop] stopped")
			return
		}
	}
}

// step выполняет один тик всех систем.
func (l *Loop) step(ctx context.Context, dt time.Duration) {
	l.ticks++
	for _, s := range l.systems {
		func(sys System) {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("[GameLoop] panic in %s: %v", sys.Name(), r)
				}
			}()
			sys.Tick(ctx, dt)
		}(s)
	}
}

// Ticks возвращает количество выполненных тиков.
func (l *Loop) Ticks() int64 { return l.ticks }
