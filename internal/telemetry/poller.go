package telemetry

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sampler produces snapshots.
type Sampler interface {
	Sample() Snapshot
}

// Poller samples at a fixed interval and hands each snapshot to a sink.
type Poller struct {
	sampler  Sampler
	sink     func(Snapshot)
	interval time.Duration
	logger   *zap.Logger
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
	mu       sync.Mutex
}

func NewPoller(sampler Sampler, interval time.Duration, sink func(Snapshot), logger *zap.Logger) *Poller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		sampler:  sampler,
		sink:     sink,
		interval: interval,
		logger:   logger,
	}
}

// Start begins cyclic sampling. Starting a running poller does nothing.
func (p *Poller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return
	}

	p.running = true
	p.stopChan = make(chan struct{})
	p.wg.Add(1)

	go p.pollLoop(p.stopChan)

	p.logger.Info("Telemetry poller started", zap.Duration("interval", p.interval))
}

// Stop halts sampling and waits for an in-flight sample to finish.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	close(p.stopChan)
	p.running = false
	p.mu.Unlock()

	p.wg.Wait()

	p.logger.Info("Telemetry poller stopped")
}

func (p *Poller) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Poller) pollLoop(stop <-chan struct{}) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			p.poll()
		}
	}
}

func (p *Poller) poll() {
	snap := p.sampler.Sample()
	if len(snap.Unavailable) > 0 {
		p.logger.Debug("Readouts unavailable", zap.Strings("readouts", snap.Unavailable))
	}
	if p.sink != nil {
		p.sink(snap)
	}
}
