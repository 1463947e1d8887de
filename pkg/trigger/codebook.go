package trigger

import (
	"fmt"

	"github.com/aretw0/cadence/pkg/domain"
)

// FallbackPolicy decides what a task_start for an unlisted trial id sends.
type FallbackPolicy string

const (
	// FallbackDefault sends the task_start kind code.
	FallbackDefault FallbackPolicy = "default"
	// FallbackDrop sends nothing.
	FallbackDrop FallbackPolicy = "drop"
)

// Codebook is the deployment lookup table from events to wire codes.
type Codebook struct {
	// Kinds maps each kind to its code. The task_start entry is the fallback
	// code for trial ids missing from Trials.
	Kinds map[domain.TriggerKind]string `yaml:"kinds" mapstructure:"kinds"`

	// Trials maps trial ids to distinguished task_start codes.
	Trials map[string]string `yaml:"trials" mapstructure:"trials"`

	Fallback FallbackPolicy `yaml:"fallback" mapstructure:"fallback"`
}

// DefaultCodebook returns the table used by the reference deployment.
func DefaultCodebook() Codebook {
	return Codebook{
		Kinds: map[domain.TriggerKind]string{
			domain.TriggerExperimentEnd:   "0",
			domain.TriggerExperimentStart: "1",
			domain.TriggerExperimentAbort: "2",
			domain.TriggerTaskEnd:         "3",
			domain.TriggerTaskStart:       "4",
		},
		Trials: map[string]string{
			"1": "5",
			"2": "6",
			"3": "7",
			"4": "8",
		},
		Fallback: FallbackDefault,
	}
}

// Encode returns the wire code for an event.
// ok is false when the codebook deliberately sends nothing for the event.
func (c Codebook) Encode(kind domain.TriggerKind, trialID string) (code string, ok bool, err error) {
	if !kind.Valid() {
		return "", false, fmt.Errorf("%w: %q", domain.ErrUnknownTrigger, kind)
	}

	if kind == domain.TriggerTaskStart {
		if code, found := c.Trials[trialID]; found && trialID != "" {
			return code, true, nil
		}
		if c.Fallback == FallbackDrop {
			return "", false, nil
		}
	}

	code, found := c.Kinds[kind]
	if !found || code == "" {
		return "", false, nil
	}
	return code, true, nil
}

// Validate checks that every kind has a code and the policy is known.
func (c Codebook) Validate() error {
	for _, kind := range domain.TriggerKinds() {
		if c.Kinds[kind] == "" {
			return fmt.Errorf("codebook: missing code for %s", kind)
		}
	}
	for kind := range c.Kinds {
		if !kind.Valid() {
			return fmt.Errorf("codebook: %w: %q", domain.ErrUnknownTrigger, kind)
		}
	}
	switch c.Fallback {
	case FallbackDefault, FallbackDrop:
	default:
		return fmt.Errorf("codebook: unknown fallback policy %q", c.Fallback)
	}
	return nil
}
