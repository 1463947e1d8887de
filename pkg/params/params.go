package params

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/ports"
	"github.com/aretw0/cadence/pkg/session"
)

// Params is the decoded parameter set.
type Params struct {
	Trials       []domain.Trial
	FixationMin  time.Duration
	FixationMax  time.Duration
	TaskDuration time.Duration
}

// FromTiming builds a Params carrying the given trials and the durations of t.
func FromTiming(trials []domain.Trial, t session.Timing) Params {
	return Params{
		Trials:       trials,
		FixationMin:  t.FixationMin,
		FixationMax:  t.FixationMax,
		TaskDuration: t.Execute,
	}
}

// Apply overlays the stored durations on base.
func (p Params) Apply(base session.Timing) session.Timing {
	base.FixationMin = p.FixationMin
	base.FixationMax = p.FixationMax
	base.Execute = p.TaskDuration
	return base.Normalize()
}

// Save writes all four keys.
func Save(ctx context.Context, store ports.ParamStore, p Params) error {
	trials := p.Trials
	if trials == nil {
		trials = []domain.Trial{}
	}
	raw, err := json.Marshal(trials)
	if err != nil {
		return fmt.Errorf("failed to marshal ordered tasks: %w", err)
	}

	values := map[string]string{
		domain.KeyOrderedTasks:        string(raw),
		domain.KeyFixationDurationMin: formatMillis(p.FixationMin),
		domain.KeyFixationDurationMax: formatMillis(p.FixationMax),
		domain.KeyTaskDuration:        formatMillis(p.TaskDuration),
	}
	for _, key := range domain.ParamKeys() {
		if err := store.Set(ctx, key, values[key]); err != nil {
			return fmt.Errorf("failed to save %s: %w", key, err)
		}
	}
	return nil
}

// Load reads the parameter set.
// A missing or unreadable ordered list yields domain.ErrNoCatalog. Durations
// that are absent or unparsable fall back to defaults.
func Load(ctx context.Context, store ports.ParamStore, defaults session.Timing) (Params, error) {
	raw, err := store.Get(ctx, domain.KeyOrderedTasks)
	if err != nil {
		if errors.Is(err, domain.ErrParamNotFound) {
			return Params{}, domain.ErrNoCatalog
		}
		return Params{}, fmt.Errorf("failed to load %s: %w", domain.KeyOrderedTasks, err)
	}

	var trials []domain.Trial
	if err := json.Unmarshal([]byte(raw), &trials); err != nil {
		return Params{}, fmt.Errorf("%w: %s is not a trial list: %v", domain.ErrNoCatalog, domain.KeyOrderedTasks, err)
	}
	if trials == nil {
		trials = []domain.Trial{}
	}

	p := Params{
		Trials:       trials,
		FixationMin:  loadMillis(ctx, store, domain.KeyFixationDurationMin, defaults.FixationMin),
		FixationMax:  loadMillis(ctx, store, domain.KeyFixationDurationMax, defaults.FixationMax),
		TaskDuration: loadMillis(ctx, store, domain.KeyTaskDuration, defaults.Execute),
	}
	return p, nil
}

// Clear removes every parameter key.
func Clear(ctx context.Context, store ports.ParamStore) error {
	var errs []error
	for _, key := range domain.ParamKeys() {
		if err := store.Delete(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("failed to delete %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// maxMillis is the largest millisecond count a time.Duration can hold.
const maxMillis = math.MaxInt64 / int64(time.Millisecond)

func loadMillis(ctx context.Context, store ports.ParamStore, key string, fallback time.Duration) time.Duration {
	raw, err := store.Get(ctx, key)
	if err != nil {
		return fallback
	}
	ms, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || ms < 0 || ms > maxMillis {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}

func formatMillis(d time.Duration) string {
	return strconv.FormatInt(d.Milliseconds(), 10)
}
