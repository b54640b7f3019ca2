package script

import (
	"fmt"
	"time"

	"github.com/specialistvlad/tutorburst/internal/scenario"
)

// Template builds per-session scripts from a scenario.
type Template struct {
	sc *scenario.Scenario
}

// NewTemplate returns a Template for sc.
func NewTemplate(sc *scenario.Scenario) *Template {
	return &Template{sc: sc}
}

// PollInterval is the marker polling cadence for scripts built from t.
func (t *Template) PollInterval() time.Duration {
	return t.sc.PollInterval
}

// Build returns the script for session index: open the tutor, type the
// session's own payload, submit, and wait for the tutor's marker.
func (t *Template) Build(index int) (Script, error) {
	payload, err := t.sc.Payload.Render(index)
	if err != nil {
		return Script{}, err
	}
	return Script{
		Index: index,
		Steps: []Step{
			{Kind: Navigate, URL: t.sc.BaseURL},
			{Kind: Fill, Selector: t.sc.InputSelector, Text: payload},
			{Kind: Click, Selector: t.sc.SubmitSelector},
			{Kind: WaitForMarker, Selector: t.sc.MarkerSelector, Timeout: t.sc.AssertionTimeout},
		},
	}, nil
}

// Validate renders the payload for every index in a batch of n and fails if
// any two sessions would type the same text.
func (t *Template) Validate(n int) error {
	seen := make(map[string]int, n)
	for i := 0; i < n; i++ {
		payload, err := t.sc.Payload.Render(i)
		if err != nil {
			return err
		}
		if prev, dup := seen[payload]; dup {
			return fmt.Errorf("payload template %q renders %q for both session %d and session %d", t.sc.Payload.Source(), payload, prev, i)
		}
		seen[payload] = i
	}
	return nil
}
