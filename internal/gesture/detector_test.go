package gesture

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/gesture_detector/internal/motion"
)

// scriptLink is an in-memory Link whose liveness the test controls.
type scriptLink struct {
	mu              sync.Mutex
	connected       bool
	advertises      int
	notifies        int
	disconnectAfter int // auto-disconnect once this many notifies land (0 = never)
}

func (l *scriptLink) Advertise() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.advertises++
	return nil
}

func (l *scriptLink) Connected() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.connected
}

func (l *scriptLink) NotifyJump() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.notifies++
	if l.disconnectAfter > 0 && l.notifies >= l.disconnectAfter {
		l.connected = false
	}
	return nil
}

func (l *scriptLink) setConnected(v bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.connected = v
}

func (l *scriptLink) counts() (advertises, notifies int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.advertises, l.notifies
}

// fixedScorer returns the same result for any input.
type fixedScorer struct {
	scores Scores
	err    error
}

func (f fixedScorer) Scores([3]float32) (Scores, error) {
	return f.scores, f.err
}

type nopIndicator struct{}

func (nopIndicator) On()  {}
func (nopIndicator) Off() {}

func startDetector(t *testing.T, link Link, scorer Scorer, interval time.Duration) (cancel func()) {
	t.Helper()

	src := &constSource{sample: motion.Sample{Az: 9.8}}
	det := NewDetector(src, scorer, Stats{}, link, nopIndicator{}, interval)

	ctx, stop := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		err := det.Run(ctx)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run returned unexpected error: %v", err)
		}
	}()

	t.Cleanup(func() {
		stop()
		<-done
	})
	return stop
}

func TestDetectorNotifiesEveryCycleWhileConnected(t *testing.T) {
	// Jump-dominant scores must produce one notification per cycle; there
	// is no debouncing or edge detection in the core.
	link := &scriptLink{connected: true, disconnectAfter: 5}
	scorer := fixedScorer{scores: Scores{Idle: 0, Jump: 1}}

	startDetector(t, link, scorer, time.Millisecond)

	require.Eventually(t, func() bool {
		_, n := link.counts()
		return n >= 5
	}, time.Second, time.Millisecond)

	// Disconnect happened at the 5th notify; no further cycles may fire.
	time.Sleep(20 * time.Millisecond)
	_, n := link.counts()
	require.Equal(t, 5, n)
}

func TestDetectorIdleSendsNothing(t *testing.T) {
	// No explicit idle byte exists; an idle prediction writes nothing.
	link := &scriptLink{connected: true}
	scorer := fixedScorer{scores: Scores{Idle: 1, Jump: 0}}

	startDetector(t, link, scorer, time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	_, n := link.counts()
	require.Equal(t, 0, n)
}

func TestDetectorReturnsToAdvertisingWithinOneDelay(t *testing.T) {
	interval := 10 * time.Millisecond
	link := &scriptLink{connected: true}
	scorer := fixedScorer{scores: Scores{Idle: 1, Jump: 0}}

	src := &constSource{sample: motion.Sample{Az: 9.8}}
	det := NewDetector(src, scorer, Stats{}, link, nopIndicator{}, interval)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go det.Run(ctx)

	require.Eventually(t, func() bool {
		return det.State() == StateConnected
	}, time.Second, time.Millisecond)

	start := time.Now()
	link.setConnected(false)

	require.Eventually(t, func() bool {
		return det.State() == StateAdvertising
	}, time.Second, time.Millisecond)
	require.Less(t, time.Since(start), 10*interval,
		"disconnect must be noticed within one delay bound")

	// Re-entering Advertising must explicitly re-advertise.
	adv, _ := link.counts()
	require.GreaterOrEqual(t, adv, 2)
}

func TestDetectorSkipsFailedInference(t *testing.T) {
	// A failing classifier skips cycles but never drops the link.
	link := &scriptLink{connected: true}
	scorer := fixedScorer{err: errors.New("op resolution failed")}

	src := &constSource{sample: motion.Sample{Az: 9.8}}
	det := NewDetector(src, scorer, Stats{}, link, nopIndicator{}, time.Millisecond)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go det.Run(ctx)

	require.Eventually(t, func() bool {
		return det.State() == StateConnected
	}, time.Second, time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	_, n := link.counts()
	require.Equal(t, 0, n)
	require.Equal(t, StateConnected, det.State())
}

func TestConnectionStateString(t *testing.T) {
	require.Equal(t, "advertising", StateAdvertising.String())
	require.Equal(t, "connected", StateConnected.String())
}
