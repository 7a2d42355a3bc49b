package telemetry

import (
	"math"
	"sort"
	"sync"
	"time"
)

// Layout is one module's column on a Board. It implements Container.
type Layout struct {
	mu        sync.Mutex
	name      string
	order     []string
	suppliers map[string]func() float64
}

func (l *Layout) Name() string {
	return l.name
}

// AddNumber registers a readout. A second registration under the same name
// replaces the supplier and keeps the original position.
func (l *Layout) AddNumber(name string, supplier func() float64) {
	if supplier == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.suppliers[name]; !ok {
		l.order = append(l.order, name)
	}
	l.suppliers[name] = supplier
}

// Names returns the readout names in registration order.
func (l *Layout) Names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.order))
	copy(out, l.order)
	return out
}

func (l *Layout) sample() (map[string]float64, []string) {
	l.mu.Lock()
	names := make([]string, len(l.order))
	copy(names, l.order)
	suppliers := make([]func() float64, len(names))
	for i, n := range names {
		suppliers[i] = l.suppliers[n]
	}
	l.mu.Unlock()

	values := make(map[string]float64, len(names))
	var unavailable []string
	for i, n := range names {
		v := suppliers[i]()
		if math.IsNaN(v) || math.IsInf(v, 0) {
			unavailable = append(unavailable, l.name+"/"+n)
			continue
		}
		values[n] = v
	}
	return values, unavailable
}

// Snapshot is one pass over every readout on a Board.
type Snapshot struct {
	Timestamp time.Time                     `json:"timestamp"`
	Values    map[string]map[string]float64 `json:"values"`
	// Unavailable lists module/readout pairs that produced NaN or Inf.
	Unavailable []string `json:"unavailable,omitempty"`
}

// Board groups module layouts and samples them together.
type Board struct {
	mu      sync.Mutex
	layouts map[string]*Layout
	order   []string
	lock    sync.Locker
	now     func() time.Time
}

// NewBoard creates a board. When lock is non-nil it is held for the whole of
// each Sample so suppliers never race the code commanding the modules.
func NewBoard(lock sync.Locker) *Board {
	return &Board{
		layouts: make(map[string]*Layout),
		lock:    lock,
		now:     time.Now,
	}
}

// Layout returns the layout for name, creating it on first use.
func (b *Board) Layout(name string) *Layout {
	b.mu.Lock()
	defer b.mu.Unlock()
	l, ok := b.layouts[name]
	if !ok {
		l = &Layout{name: name, suppliers: make(map[string]func() float64)}
		b.layouts[name] = l
		b.order = append(b.order, name)
	}
	return l
}

// Remove drops a layout and its readouts.
func (b *Board) Remove(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.layouts[name]; !ok {
		return
	}
	delete(b.layouts, name)
	for i, n := range b.order {
		if n == name {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

// Modules returns the layout names in creation order.
func (b *Board) Modules() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.order))
	copy(out, b.order)
	return out
}

func (b *Board) Sample() Snapshot {
	b.mu.Lock()
	layouts := make([]*Layout, 0, len(b.order))
	for _, n := range b.order {
		layouts = append(layouts, b.layouts[n])
	}
	b.mu.Unlock()

	if b.lock != nil {
		b.lock.Lock()
		defer b.lock.Unlock()
	}

	snap := Snapshot{
		Timestamp: b.now(),
		Values:    make(map[string]map[string]float64, len(layouts)),
	}
	for _, l := range layouts {
		values, unavailable := l.sample()
		snap.Values[l.name] = values
		snap.Unavailable = append(snap.Unavailable, unavailable...)
	}
	sort.Strings(snap.Unavailable)
	return snap
}
