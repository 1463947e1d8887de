package trigger_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/cadence/internal/testutils"
	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/trigger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type outcomeLog struct {
	mu       sync.Mutex
	outcomes []domain.Outcome
}

func (l *outcomeLog) observe(o domain.Outcome) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.outcomes = append(l.outcomes, o)
}

func (l *outcomeLog) results() []domain.OutcomeResult {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.OutcomeResult, len(l.outcomes))
	for i, o := range l.outcomes {
		out[i] = o.Result
	}
	return out
}

func TestEmitter_DeliversInOrder(t *testing.T) {
	transport := testutils.NewRecordingTransport()
	log := &outcomeLog{}
	e := trigger.NewEmitter(transport, trigger.WithObserver(log.observe))

	assert.Equal(t, domain.OutcomeQueued, e.Emit(domain.TriggerExperimentStart, "", nil).Result)
	assert.Equal(t, domain.OutcomeQueued, e.Emit(domain.TriggerTaskStart, "2", map[string]any{"taskIndex": 0}).Result)
	assert.Equal(t, domain.OutcomeQueued, e.Emit(domain.TriggerTaskEnd, "2", nil).Result)
	assert.Equal(t, domain.OutcomeQueued, e.Emit(domain.TriggerExperimentEnd, "", nil).Result)

	require.NoError(t, e.Close())

	assert.Equal(t, []string{"1", "6", "3", "0"}, transport.Payloads())
	assert.True(t, transport.IsClosed())
	assert.Equal(t, []domain.OutcomeResult{
		domain.OutcomeSent, domain.OutcomeSent, domain.OutcomeSent, domain.OutcomeSent,
	}, log.results())

	last, ok := e.LastOutcome()
	require.True(t, ok)
	assert.Equal(t, domain.TriggerExperimentEnd, last.Kind)
	assert.Equal(t, "0", last.Code)
}

func TestEmitter_TransportFailureIsNonFatal(t *testing.T) {
	transport := testutils.NewRecordingTransport()
	transport.SetFail(true)
	e := trigger.NewEmitter(transport)

	out := e.Emit(domain.TriggerTaskEnd, "1", nil)
	assert.Equal(t, domain.OutcomeQueued, out.Result, "Emit never reports transport errors synchronously")

	require.NoError(t, e.Close())

	last, ok := e.LastOutcome()
	require.True(t, ok)
	assert.Equal(t, domain.OutcomeFailed, last.Result)
	assert.ErrorIs(t, last.Err, testutils.ErrTransportDown)
	assert.False(t, last.OK())
}

func TestEmitter_RejectsUnknownKind(t *testing.T) {
	transport := testutils.NewRecordingTransport()
	e := trigger.NewEmitter(transport)

	out := e.Emit("bogus", "", nil)
	assert.Equal(t, domain.OutcomeRejected, out.Result)
	assert.ErrorIs(t, out.Err, domain.ErrUnknownTrigger)

	require.NoError(t, e.Close())
	assert.Empty(t, transport.Payloads())
}

func TestEmitter_DropPolicySendsNothing(t *testing.T) {
	cb := trigger.DefaultCodebook()
	cb.Fallback = trigger.FallbackDrop
	transport := testutils.NewRecordingTransport()
	e := trigger.NewEmitter(transport, trigger.WithCodebook(cb))

	out := e.Emit(domain.TriggerTaskStart, "unlisted", nil)
	assert.Equal(t, domain.OutcomeDropped, out.Result)
	assert.NoError(t, out.Err)

	require.NoError(t, e.Close())
	assert.Empty(t, transport.Payloads())
}

func TestEmitter_EmitAfterClose(t *testing.T) {
	e := trigger.NewEmitter(testutils.NewRecordingTransport())
	require.NoError(t, e.Close())
	require.NoError(t, e.Close(), "Close is idempotent")

	out := e.Emit(domain.TriggerExperimentStart, "", nil)
	assert.Equal(t, domain.OutcomeDropped, out.Result)
	assert.ErrorIs(t, out.Err, domain.ErrEmitterClosed)
}

// blockingTransport holds every Send until released.
type blockingTransport struct {
	release chan struct{}
	entered chan struct{}
}

func (b *blockingTransport) Send(ctx context.Context, payload []byte) error {
	select {
	case b.entered <- struct{}{}:
	default:
	}
	<-b.release
	return nil
}

func (b *blockingTransport) Close() error { return nil }

func TestEmitter_NeverBlocksOnSlowTransport(t *testing.T) {
	bt := &blockingTransport{release: make(chan struct{}), entered: make(chan struct{}, 1)}
	e := trigger.NewEmitter(bt, trigger.WithQueueSize(1))

	e.Emit(domain.TriggerExperimentStart, "", nil)
	<-bt.entered // worker is now stuck inside Send

	done := make(chan []domain.OutcomeResult, 1)
	go func() {
		var results []domain.OutcomeResult
		for i := 0; i < 5; i++ {
			results = append(results, e.Emit(domain.TriggerTaskEnd, "1", nil).Result)
		}
		done <- results
	}()

	select {
	case results := <-done:
		assert.Equal(t, domain.OutcomeQueued, results[0])
		assert.Contains(t, results[1:], domain.OutcomeDropped)
	case <-time.After(2 * time.Second):
		t.Fatal("Emit blocked on a stalled transport")
	}

	close(bt.release)
	require.NoError(t, e.Close())
}
