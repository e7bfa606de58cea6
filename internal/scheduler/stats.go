package scheduler

import "time"

// RollingAverage — скользящее среднее по последним N замерам,
// кольцевой буфер фиксированного размера.
type RollingAverage struct {
	samples []time.Duration
	next    int
	filled  int
}

// NewRollingAverage создает статистику с окном в window замеров.
func NewRollingAverage(window int) *RollingAverage {
	if window < 1 {
		window = 1
	}
	return &RollingAverage{samples: make([]time.Duration, window)}
}

// Add записывает очередной замер, вытесняя самый старый.
func (r *RollingAverage) Add(d time.Duration) {
	r.samples[r.next] = d
	r.next = (r.next + 1) % len(r.samples)
	if r.filled < len(r.samples) {
		r.filled++
	}
}

// Average возвращает среднее по заполненной части окна.
func (r *RollingAverage) Average() time.Duration {
	if r.filled == 0 {
		return 0
	}
	var sum time.Duration
	for i := 0; i < r.filled; i++ {
		sum += r.samples[i]
	}
	return sum / time.Duration(r.filled)
}

// Count возвращает количество замеров в окне.
func (r *RollingAverage) Count() int {
	return r.filled
}
