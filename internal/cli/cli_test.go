package cli

import (
	"bytes"
	"context"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/cadence"
	"github.com/aretw0/cadence/internal/config"
	"github.com/aretw0/cadence/internal/logging"
	"github.com/aretw0/cadence/internal/testutils"
	"github.com/aretw0/cadence/pkg/adapters/memory"
	"github.com/aretw0/cadence/pkg/catalog"
	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/params"
	"github.com/aretw0/cadence/pkg/session"
	"github.com/aretw0/cadence/pkg/trigger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastTiming = session.Timing{
	FixationMin: 5 * time.Millisecond,
	FixationMax: 10 * time.Millisecond,
	Instruction: 5 * time.Millisecond,
	Execute:     5 * time.Millisecond,
	Grace:       5 * time.Millisecond,
}

func writeTables(t *testing.T) (defs, order string) {
	t.Helper()
	dir := t.TempDir()
	defs = filepath.Join(dir, "tasks.csv")
	order = filepath.Join(dir, "order.csv")
	require.NoError(t, os.WriteFile(defs, []byte("id,description\n1,Left hand\n2,Right hand\n"), 0644))
	require.NoError(t, os.WriteFile(order, []byte("order,task_id\n2,1\n1,2\n3,9\n"), 0644))
	return defs, order
}

func TestIsAbortKey(t *testing.T) {
	assert.True(t, isAbortKey([]byte{keyEscape}))
	assert.True(t, isAbortKey([]byte{keyCtrlC}))
	assert.False(t, isAbortKey([]byte{keyEscape, '[', 'A'}), "arrow key")
	assert.False(t, isAbortKey([]byte("q")))
	assert.False(t, isAbortKey(nil))
}

func TestWatchKeys(t *testing.T) {
	r, w := io.Pipe()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	aborts := make(chan struct{}, 4)
	done := make(chan struct{})
	go func() {
		watchKeys(ctx, r, func() { aborts <- struct{}{} })
		close(done)
	}()

	_, _ = w.Write([]byte("x"))
	_, _ = w.Write([]byte{keyEscape})

	select {
	case <-aborts:
	case <-time.After(time.Second):
		t.Fatal("escape did not abort")
	}

	require.NoError(t, w.Close())
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop on EOF")
	}
	assert.Empty(t, aborts)
}

func TestWatchAbortKeys_NotTerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "stdin")
	require.NoError(t, err)
	defer f.Close()

	restore, err := WatchAbortKeys(context.Background(), f, func() {})
	assert.ErrorIs(t, err, ErrNotTerminal)
	require.NotNil(t, restore)
	restore()
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		cfg := config.Default()
		cfg.Store.Backend = config.StoreMemory
		store, closeFn, err := OpenStore(ctx, cfg)
		require.NoError(t, err)
		assert.IsType(t, &memory.Store{}, store)
		assert.NoError(t, closeFn())
	})

	t.Run("file", func(t *testing.T) {
		cfg := config.Default()
		cfg.Store.Path = filepath.Join(t.TempDir(), "params.json")
		store, _, err := OpenStore(ctx, cfg)
		require.NoError(t, err)
		require.NoError(t, store.Set(ctx, "k", "v"))
		assert.FileExists(t, cfg.Store.Path)
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := config.Default()
		cfg.Store.Backend = config.StoreRedis
		cfg.Store.RedisAddr = mr.Addr()
		store, closeFn, err := OpenStore(ctx, cfg)
		require.NoError(t, err)
		defer closeFn()

		require.NoError(t, store.Set(ctx, "k", "v"))
		assert.True(t, mr.Exists("cadence:params:k"))
	})

	t.Run("redis unreachable", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		cfg := config.Default()
		cfg.Store.Backend = config.StoreRedis
		cfg.Store.RedisAddr = addr
		_, _, err := OpenStore(ctx, cfg)
		assert.Error(t, err)
	})

	t.Run("unknown", func(t *testing.T) {
		cfg := config.Default()
		cfg.Store.Backend = "etcd"
		_, _, err := OpenStore(ctx, cfg)
		assert.ErrorContains(t, err, "etcd")
	})
}

func TestPrepare(t *testing.T) {
	defs, order := writeTables(t)
	store := memory.NewStore()
	var out bytes.Buffer

	p, err := Prepare(context.Background(), PrepareOptions{
		DefinitionsPath: defs,
		OrderPath:       order,
		Timing:          fastTiming,
		Store:           store,
		Logger:          logging.NewNop(),
		Out:             &out,
	})
	require.NoError(t, err)

	require.Len(t, p.Trials, 2)
	assert.Equal(t, "2", p.Trials[0].ID)
	assert.Equal(t, "1", p.Trials[1].ID)
	assert.Contains(t, out.String(), "Left hand")

	loaded, err := params.Load(context.Background(), store, session.DefaultTiming())
	require.NoError(t, err)
	assert.Equal(t, p.Trials, loaded.Trials)
	assert.Equal(t, fastTiming.Execute, loaded.TaskDuration)
}

func TestPrepare_MissingFile(t *testing.T) {
	_, err := Prepare(context.Background(), PrepareOptions{
		DefinitionsPath: filepath.Join(t.TempDir(), "nope.csv"),
		OrderPath:       filepath.Join(t.TempDir(), "nope.csv"),
		Store:           memory.NewStore(),
		Logger:          logging.NewNop(),
	})
	assert.Error(t, err)
}

func newTestStation() *cadence.Station {
	emitter := trigger.NewEmitter(trigger.DiscardTransport{})
	return cadence.New(emitter, cadence.WithSessionOptions(session.WithTiming(fastTiming)))
}

func TestRun_NeedsPrepare(t *testing.T) {
	_, err := Run(context.Background(), RunOptions{
		Station: newTestStation(),
		Store:   memory.NewStore(),
		Timing:  fastTiming,
		Logger:  logging.NewNop(),
		Out:     io.Discard,
	})
	assert.ErrorIs(t, err, ErrNeedsPrepare)
	assert.ErrorContains(t, err, "cadence prepare")
}

func TestRun_FullSession(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store := memory.NewStore()
	trials := []domain.Trial{{ID: "1", Description: "Left hand"}, {ID: "2", Description: "Right hand"}}
	require.NoError(t, params.Save(ctx, store, params.FromTiming(trials, fastTiming)))

	var out bytes.Buffer
	res, err := Run(ctx, RunOptions{
		Station: newTestStation(),
		Store:   store,
		Timing:  fastTiming,
		Logger:  logging.NewNop(),
		Out:     &out,
	})
	require.NoError(t, err)
	assert.False(t, res.Aborted)
	assert.Equal(t, 2, res.Completed)
	assert.Equal(t, 2, res.Total)
	assert.Contains(t, out.String(), "Left hand")
}

func TestRun_CancelDeliversAbort(t *testing.T) {
	store := memory.NewStore()
	slow := session.Timing{
		FixationMin: time.Second,
		FixationMax: time.Second,
		Instruction: time.Second,
		Execute:     time.Second,
		Grace:       time.Second,
	}
	trials := []domain.Trial{{ID: "1", Description: "Left hand"}, {ID: "2", Description: "Right hand"}}
	require.NoError(t, params.Save(context.Background(), store, params.FromTiming(trials, slow)))

	emitter := &testutils.RecordingEmitter{}
	station := cadence.New(emitter, cadence.WithSessionOptions(session.WithTiming(slow)))

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(100*time.Millisecond, cancel)

	res, err := Run(ctx, RunOptions{
		Station: station,
		Store:   store,
		Timing:  slow,
		Logger:  logging.NewNop(),
		Out:     io.Discard,
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, res.Aborted)
	assert.Equal(t, 0, res.Completed)

	var kinds []domain.TriggerKind
	var abortCtx map[string]any
	for _, c := range emitter.Calls() {
		kinds = append(kinds, c.Kind)
		if c.Kind == domain.TriggerExperimentAbort {
			abortCtx = c.Context
		}
	}
	assert.Equal(t, []domain.TriggerKind{domain.TriggerExperimentStart, domain.TriggerExperimentAbort}, kinds)
	require.NotNil(t, abortCtx)
	assert.Equal(t, 0, abortCtx["completedTasks"])
}

func TestGenerateOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "order.csv")
	require.NoError(t, GenerateOrder(nil, path, 12, 4, 7))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	entries, err := catalog.ParseOrder(f)
	require.NoError(t, err)
	assert.Len(t, entries, 12)

	var out bytes.Buffer
	require.NoError(t, GenerateOrder(&out, "", 3, 2, 7))
	assert.Equal(t, 4, strings.Count(out.String(), "\n"))
}

func TestSendTrigger(t *testing.T) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer conn.Close()

	cfg := config.Default()
	cfg.Trigger.Host = "127.0.0.1"
	cfg.Trigger.Port = conn.LocalAddr().(*net.UDPAddr).Port

	emitter, err := OpenEmitter(cfg, logging.NewNop(), nil)
	require.NoError(t, err)

	outcome, err := SendTrigger(emitter, domain.TriggerTaskStart, "3")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeSent, outcome.Result)
	assert.Equal(t, "7", outcome.Code)

	buf := make([]byte, 16)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	n, _, err := conn.ReadFromUDP(buf)
	require.NoError(t, err)
	assert.Equal(t, "7", string(buf[:n]))
}

func TestSendTrigger_Unknown(t *testing.T) {
	emitter := trigger.NewEmitter(trigger.DiscardTransport{})
	outcome, err := SendTrigger(emitter, domain.TriggerKind("bogus"), "")
	assert.ErrorIs(t, err, domain.ErrUnknownTrigger)
	assert.Equal(t, domain.OutcomeRejected, outcome.Result)
}
