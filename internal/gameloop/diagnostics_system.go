package gameloop

import (
	"context"
	"time"
)

// StatusSource отдает строку состояния для периодического логирования.
type StatusSource interface {
	String() string
}

// DiagnosticsSystem периодически пишет состояние мира в лог.
type DiagnosticsSystem struct {
	deps   Dependencies
	source StatusSource
	every  int64
	ticks  int64
}

// NewDiagnosticsSystem создает систему, логирующую source каждые every тиков.
func NewDiagnosticsSystem(source StatusSource, every int64) *DiagnosticsSystem {
	if every < 1 {
		every = 300
	}
	return &DiagnosticsSystem{source: source, every: every}
}

func (d *DiagnosticsSystem) Name() string { return "diagnostics" }

func (d *DiagnosticsSystem) Init(deps Dependencies) error {
	d.deps = deps
	return nil
}

func (d *DiagnosticsSystem) Tick(ctx context.Context, dt time.Duration) {
	d.ticks++
	if d.ticks%d.every != 0 {
		return
	}
	if d.deps.Logger != nil {
		d.deps.Logger.Infow("world status", "status", d.source.String())
	}
}
