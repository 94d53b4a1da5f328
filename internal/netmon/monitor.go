// ABOUTME: Network status monitor: trustworthy reachability and quality.
// ABOUTME: Link-layer online is verified with a probe before being believed.
package netmon

import (
	"context"
	"sync"
	"time"

	"github.com/harperreed/lift/internal/state"
)

const (
	// ProbeTimeout bounds the reachability probe.
	ProbeTimeout = 5 * time.Second
	// GoodLatency is the ceiling below which a connection counts as good.
	GoodLatency = 1000 * time.Millisecond

	// Poll intervals. Offline polls faster for quicker recovery detection.
	OnlineInterval  = 30 * time.Second
	OfflineInterval = 10 * time.Second
)

// Prober issues the lightweight reachability probe.
type Prober interface {
	Ping(ctx context.Context) (time.Duration, error)
}

// Sink receives connectivity verdicts. The offline state store implements
// it so every component observes a single source of truth.
type Sink interface {
	SetConnectivity(online bool, q state.Quality)
}

// Monitor produces the online/offline signal and quality classification.
type Monitor struct {
	prober Prober
	sink   Sink

	mu      sync.Mutex
	linkUp  bool
	online  bool
	quality state.Quality
	subs    map[int]func(online bool, q state.Quality)
	nextSub int
	stop    chan struct{}
	done    chan struct{}
}

// New creates a monitor. The link layer is assumed up until told otherwise.
func New(prober Prober, sink Sink) *Monitor {
	return &Monitor{
		prober:  prober,
		sink:    sink,
		linkUp:  true,
		online:  true,
		quality: state.QualityGood,
		subs:    make(map[int]func(bool, state.Quality)),
	}
}

// CheckConnectivity probes the server and publishes the verdict.
// A down link short-circuits to offline without probing; a probe failure
// while the link claims up still counts as offline.
func (m *Monitor) CheckConnectivity(ctx context.Context) state.Quality {
	m.mu.Lock()
	linkUp := m.linkUp
	m.mu.Unlock()

	if !linkUp {
		m.publish(false, state.QualityOffline)
		return state.QualityOffline
	}

	probeCtx, cancel := context.WithTimeout(ctx, ProbeTimeout)
	defer cancel()
	rtt, err := m.prober.Ping(probeCtx)
	if err != nil {
		m.publish(false, state.QualityOffline)
		return state.QualityOffline
	}

	q := state.QualityGood
	if rtt >= GoodLatency {
		q = state.QualitySlow
	}
	m.publish(true, q)
	return q
}

// SetLinkUp feeds a link-layer transition. Down is believed immediately;
// up only triggers a fresh probe rather than being trusted at face value.
func (m *Monitor) SetLinkUp(up bool) {
	m.mu.Lock()
	m.linkUp = up
	m.mu.Unlock()

	if !up {
		m.publish(false, state.QualityOffline)
		return
	}
	m.CheckConnectivity(context.Background())
}

// Online reports the last published verdict.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Subscribe registers a transition observer and returns a disposer.
func (m *Monitor) Subscribe(fn func(online bool, q state.Quality)) func() {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// Start begins the variable-interval polling loop.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.stop != nil {
		m.mu.Unlock()
		return
	}
	m.stop = make(chan struct{})
	m.done = make(chan struct{})
	stop, done := m.stop, m.done
	m.mu.Unlock()

	go func() {
		defer close(done)
		for {
			interval := OfflineInterval
			if m.Online() {
				interval = OnlineInterval
			}
			timer := time.NewTimer(interval)
			select {
			case <-stop:
				timer.Stop()
				return
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
				m.CheckConnectivity(ctx)
			}
		}
	}()
}

// Stop tears down the polling loop.
func (m *Monitor) Stop() {
	m.mu.Lock()
	stop, done := m.stop, m.done
	m.stop, m.done = nil, nil
	m.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// publish records the verdict, forwards it to the sink, and notifies
// subscribers of transitions.
func (m *Monitor) publish(online bool, q state.Quality) {
	m.mu.Lock()
	changed := m.online != online || m.quality != q
	m.online = online
	m.quality = q
	fns := make([]func(bool, state.Quality), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	if m.sink != nil {
		m.sink.SetConnectivity(online, q)
	}
	if changed {
		for _, fn := range fns {
			fn(online, q)
		}
	}
}
