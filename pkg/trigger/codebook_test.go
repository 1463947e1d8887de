package trigger_test

import (
	"testing"

	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/trigger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCodebook_Encode(t *testing.T) {
	cb := trigger.DefaultCodebook()
	require.NoError(t, cb.Validate())

	tests := []struct {
		kind    domain.TriggerKind
		trialID string
		want    string
	}{
		{domain.TriggerExperimentStart, "", "1"},
		{domain.TriggerExperimentEnd, "", "0"},
		{domain.TriggerExperimentAbort, "", "2"},
		{domain.TriggerTaskEnd, "1", "3"},
		{domain.TriggerTaskEnd, "99", "3"},
		{domain.TriggerTaskStart, "1", "5"},
		{domain.TriggerTaskStart, "2", "6"},
		{domain.TriggerTaskStart, "3", "7"},
		{domain.TriggerTaskStart, "4", "8"},
		{domain.TriggerTaskStart, "5", "4"},
		{domain.TriggerTaskStart, "", "4"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind)+"/"+tt.trialID, func(t *testing.T) {
			code, ok, err := cb.Encode(tt.kind, tt.trialID)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestCodebook_DropPolicy(t *testing.T) {
	cb := trigger.DefaultCodebook()
	cb.Fallback = trigger.FallbackDrop

	_, ok, err := cb.Encode(domain.TriggerTaskStart, "42")
	require.NoError(t, err)
	assert.False(t, ok, "unlisted trial ids send nothing under the drop policy")

	code, ok, err := cb.Encode(domain.TriggerTaskStart, "2")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "6", code)

	code, ok, err = cb.Encode(domain.TriggerTaskEnd, "42")
	require.NoError(t, err)
	assert.True(t, ok, "the policy only affects task_start")
	assert.Equal(t, "3", code)
}

func TestCodebook_UnknownKind(t *testing.T) {
	_, ok, err := trigger.DefaultCodebook().Encode("session_pause", "")
	assert.False(t, ok)
	assert.ErrorIs(t, err, domain.ErrUnknownTrigger)
}

func TestCodebook_Validate(t *testing.T) {
	cb := trigger.DefaultCodebook()
	delete(cb.Kinds, domain.TriggerTaskEnd)
	assert.Error(t, cb.Validate())

	cb = trigger.DefaultCodebook()
	cb.Fallback = "maybe"
	assert.Error(t, cb.Validate())

	cb = trigger.DefaultCodebook()
	cb.Kinds["bogus"] = "9"
	assert.ErrorIs(t, cb.Validate(), domain.ErrUnknownTrigger)
}
