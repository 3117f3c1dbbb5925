package observability

import "sync"

// Inmem keeps the last max observations. Used by tests and the status CLI.
type Inmem struct {
	mu     sync.Mutex
	last   []any
	max    int
	items  map[string]int
	totals struct {
		cacheHits, cacheMiss int
	}
}

type ItemEvent struct {
	Code string
	Dur  float64
}

type StageEvent struct {
	Stage string
	OK    bool
	Dur   float64
}

type HTTPEvent struct {
	Method, Route string
	Status        int
	Dur           float64
}

type KafkaEvent struct {
	Dur float64
	OK  bool
}

func NewInmem(max int) *Inmem {
	if max < 1 {
		max = 1
	}
	return &Inmem{
		max:   max,
		items: make(map[string]int),
	}
}

func (m *Inmem) push(v any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = append(m.last, v)
	if len(m.last) > m.max {
		m.last = m.last[1:]
	}
}

func (m *Inmem) ObserveItem(code string, durMs float64) {
	m.mu.Lock()
	m.items[code]++
	m.mu.Unlock()
	m.push(ItemEvent{code, durMs})
}

func (m *Inmem) ObserveStage(stage string, ok bool, durMs float64) {
	m.push(StageEvent{stage, ok, durMs})
}

func (m *Inmem) ObserveHTTP(method, route string, status int, durMs float64) {
	m.push(HTTPEvent{method, route, status, durMs})
}

func (m *Inmem) ObserveKafka(processMs float64, ok bool) {
	m.push(KafkaEvent{processMs, ok})
}

func (m *Inmem) IncCacheHit() {
	m.mu.Lock()
	m.totals.cacheHits++
	m.mu.Unlock()
}

func (m *Inmem) IncCacheMiss() {
	m.mu.Lock()
	m.totals.cacheMiss++
	m.mu.Unlock()
}

// Last returns a copy of the retained observations, oldest first.
func (m *Inmem) Last() []any {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]any, len(m.last))
	copy(out, m.last)
	return out
}

func (m *Inmem) ItemCount(code string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items[code]
}

func (m *Inmem) CacheTotals() (hits, misses int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totals.cacheHits, m.totals.cacheMiss
}
