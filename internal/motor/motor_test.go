package motor_test

import (
	"sort"
	"sync"

	"github.com/KevinKickass/OpenSwerveCore/internal/types"
)

var testMech = &types.MechanicalConfiguration{
	Name:           "test",
	WheelDiameter:  0.1,
	DriveReduction: 0.125,
	DriveInverted:  true,
	SteerReduction: 0.25,
	SteerInverted:  false,
}

// recorder is a telemetry container that keeps every registered supplier.
type recorder struct {
	mu      sync.Mutex
	entries map[string]func() float64
}

func newRecorder() *recorder {
	return &recorder{entries: make(map[string]func() float64)}
}

func (r *recorder) AddNumber(name string, supplier func() float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[name] = supplier
}

func (r *recorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.entries))
	for n := range r.entries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (r *recorder) value(name string) float64 {
	r.mu.Lock()
	f := r.entries[name]
	r.mu.Unlock()
	return f()
}
