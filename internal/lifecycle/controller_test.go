package lifecycle

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realm-map/internal/naming"
	"realm-map/internal/realm"
)

type result struct {
	coll *realm.Collection
	err  error
}

// scripted：第 i 次调用阻塞在 gates[i]，由测试决定何时以何结果返回
type scripted struct {
	mu    sync.Mutex
	calls int
	gates []chan result
}

func newScripted(n int) *scripted {
	s := &scripted{}
	for i := 0; i < n; i++ {
		s.gates = append(s.gates, make(chan result, 1))
	}
	return s
}

func (s *scripted) Fetch(ctx context.Context) (*realm.Collection, error) {
	s.mu.Lock()
	i := s.calls
	s.calls++
	s.mu.Unlock()
	r := <-s.gates[i]
	return r.coll, r.err
}

func (s *scripted) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func sample() *realm.Collection {
	return &realm.Collection{Type: "FeatureCollection", Features: []realm.Feature{
		{Type: "Feature", Properties: map[string]any{"ADMIN": "India"}, Geometry: json.RawMessage(`null`)},
		{Type: "Feature", Properties: map[string]any{"ADMIN": "Atlantis"}, Geometry: json.RawMessage(`null`)},
	}}
}

func waitKind(t *testing.T, c *Controller, k Kind) State {
	t.Helper()
	require.Eventually(t, func() bool { return c.State().Kind == k }, time.Second, 2*time.Millisecond)
	return c.State()
}

func TestInitialStateUninitialized(t *testing.T) {
	c := New(newScripted(0), naming.Builtin())
	assert.Equal(t, Uninitialized, c.State().Kind)
	assert.False(t, c.Attached())
	c.Deactivate()
	assert.Equal(t, Uninitialized, c.State().Kind)
}

func TestActivateReadyEnriched(t *testing.T) {
	f := newScripted(1)
	c := New(f, naming.Builtin())
	raw := sample()

	require.True(t, c.Activate(context.Background()))
	assert.Equal(t, Loading, c.State().Kind)

	f.gates[0] <- result{coll: raw}
	st := waitKind(t, c, Ready)
	require.Equal(t, 2, st.Regions.Len())
	assert.Equal(t, "Bharata Khanda", st.Regions.Features[0].AlternateName())
	assert.Equal(t, "Atlantis", st.Regions.Features[1].AlternateName())
	assert.Empty(t, st.Message)
	_, touched := raw.Features[0].Properties[realm.PropAlternateName]
	assert.False(t, touched)
}

func TestActivateErrorMessage(t *testing.T) {
	f := newScripted(1)
	c := New(f, naming.Builtin())
	c.Activate(context.Background())
	f.gates[0] <- result{err: errors.New("unexpected status 404 Not Found")}

	st := waitKind(t, c, Failed)
	assert.Contains(t, st.Message, "404 Not Found")
	assert.Nil(t, st.Regions)
}

func TestDuplicateActivateSingleFetch(t *testing.T) {
	f := newScripted(2)
	c := New(f, naming.Builtin())
	require.True(t, c.Activate(context.Background()))
	assert.False(t, c.Activate(context.Background()))

	require.Eventually(t, func() bool { return f.Calls() == 1 }, time.Second, 2*time.Millisecond)
	f.gates[0] <- result{coll: sample()}
	waitKind(t, c, Ready)
	assert.False(t, c.Activate(context.Background()), "terminal state does not restart while attached")
	assert.Equal(t, 1, f.Calls())
}

func TestDetachBeforeResolveDiscards(t *testing.T) {
	for _, r := range []result{{coll: sample()}, {err: errors.New("boom")}} {
		f := newScripted(1)
		c := New(f, naming.Builtin())
		var seen []Kind
		var mu sync.Mutex
		c.Subscribe(func(s State) {
			mu.Lock()
			seen = append(seen, s.Kind)
			mu.Unlock()
		})

		c.Activate(context.Background())
		c.Deactivate()
		f.gates[0] <- r

		assert.Never(t, func() bool { return c.State().Kind != Loading }, 100*time.Millisecond, 5*time.Millisecond)
		mu.Lock()
		assert.Equal(t, []Kind{Loading}, seen)
		mu.Unlock()
	}
}

func TestDeactivateCancelsFetchContext(t *testing.T) {
	cancelled := make(chan struct{})
	c := New(FetcherFunc(func(ctx context.Context) (*realm.Collection, error) {
		<-ctx.Done()
		close(cancelled)
		return nil, ctx.Err()
	}), naming.Builtin())
	c.Activate(context.Background())
	c.Deactivate()
	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("fetch context not cancelled")
	}
	assert.Never(t, func() bool { return c.State().Kind != Loading }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestReloadDiscardsPreviousActivation(t *testing.T) {
	f := newScripted(2)
	c := New(f, naming.Builtin())
	c.Activate(context.Background())
	require.Eventually(t, func() bool { return f.Calls() == 1 }, time.Second, 2*time.Millisecond)

	require.True(t, c.Reload(context.Background()))
	require.Eventually(t, func() bool { return f.Calls() == 2 }, time.Second, 2*time.Millisecond)

	f.gates[0] <- result{err: errors.New("stale failure")}
	assert.Never(t, func() bool { return c.State().Kind != Loading }, 50*time.Millisecond, 5*time.Millisecond)

	f.gates[1] <- result{coll: sample()}
	st := waitKind(t, c, Ready)
	assert.Equal(t, 2, st.Regions.Len())
}

func TestFreshActivationAfterError(t *testing.T) {
	f := newScripted(2)
	c := New(f, naming.Builtin())
	c.Activate(context.Background())
	f.gates[0] <- result{err: errors.New("offline")}
	waitKind(t, c, Failed)

	c.Deactivate()
	assert.Equal(t, Failed, c.State().Kind, "state stays at its detach-time value")
	require.True(t, c.Activate(context.Background()))
	assert.Equal(t, Loading, c.State().Kind)
	f.gates[1] <- result{coll: sample()}
	waitKind(t, c, Ready)
	assert.Equal(t, 2, f.Calls())
}

func TestSubscriberOrder(t *testing.T) {
	f := newScripted(1)
	c := New(f, naming.Builtin())
	ch := make(chan Kind, 4)
	cancel := c.Subscribe(func(s State) { ch <- s.Kind })
	defer cancel()

	c.Activate(context.Background())
	f.gates[0] <- result{coll: sample()}
	assert.Equal(t, Loading, <-ch)
	assert.Equal(t, Ready, <-ch)
}

func TestUnsubscribe(t *testing.T) {
	f := newScripted(1)
	c := New(f, naming.Builtin())
	calls := 0
	cancel := c.Subscribe(func(State) { calls++ })
	cancel()
	c.Activate(context.Background())
	f.gates[0] <- result{coll: sample()}
	waitKind(t, c, Ready)
	assert.Zero(t, calls)
}

func TestFetchPanicBecomesError(t *testing.T) {
	c := New(FetcherFunc(func(context.Context) (*realm.Collection, error) {
		panic("nil dataset")
	}), naming.Builtin())
	c.Activate(context.Background())
	st := waitKind(t, c, Failed)
	assert.Contains(t, st.Message, "nil dataset")
}

func TestFailureMessage(t *testing.T) {
	assert.Equal(t, GenericFailure, FailureMessage(nil))
	assert.Equal(t, GenericFailure, FailureMessage(errors.New("  ")))
	assert.Equal(t, "Failed to load map data: timeout", FailureMessage(errors.New("timeout")))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "uninitialized", Uninitialized.String())
	assert.Equal(t, "loading", Loading.String())
	assert.Equal(t, "error", Failed.String())
	assert.Equal(t, "ready", Ready.String())
	assert.True(t, ErrorState("x").Terminal())
	assert.False(t, LoadingState().Terminal())
}

func TestPanickingSubscriberDoesNotStallActivation(t *testing.T) {
	f := newScripted(2)
	c := New(f, naming.Builtin())
	c.Subscribe(func(State) { panic("subscriber bug") })
	ch := make(chan Kind, 8)
	c.Subscribe(func(s State) { ch <- s.Kind })

	require.NotPanics(t, func() { require.True(t, c.Activate(context.Background())) })
	require.Eventually(t, func() bool { return f.Calls() == 1 }, time.Second, 2*time.Millisecond)
	f.gates[0] <- result{err: errors.New("offline")}
	waitKind(t, c, Failed)

	c.Deactivate()
	require.True(t, c.Activate(context.Background()))
	f.gates[1] <- result{coll: sample()}
	waitKind(t, c, Ready)
	assert.Equal(t, 2, f.Calls())
	assert.Equal(t, []Kind{Loading, Failed, Loading, Ready}, []Kind{<-ch, <-ch, <-ch, <-ch})
}
