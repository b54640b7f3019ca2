package scenario

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Defaults mirror the original single-page load script.
const (
	DefaultName           = "tutor_load"
	DefaultStudentCount   = 50
	DefaultBaseURL        = "http://localhost:8501"
	DefaultPayload        = "Student ${index} says: cars in a lot = linked list"
	DefaultInputSelector  = "textarea"
	DefaultSubmitSelector = "text=Submit response"
	DefaultMarkerSelector = "text=Concept"
	DefaultTimeout        = 10 * time.Second
	DefaultPollInterval   = 100 * time.Millisecond
)

// Scenario is the fully resolved burst description.
type Scenario struct {
	Name             string
	StudentCount     int
	BaseURL          string
	Payload          *Template
	InputSelector    string
	SubmitSelector   string
	MarkerSelector   string
	AssertionTimeout time.Duration
	PollInterval     time.Duration
}

// Default returns the built-in scenario used when no file is given.
func Default() *Scenario {
	tmpl, err := ParseTemplate(DefaultPayload, "<default>")
	if err != nil {
		panic(fmt.Errorf("built-in payload template is invalid: %w", err))
	}
	return &Scenario{
		Name:             DefaultName,
		StudentCount:     DefaultStudentCount,
		BaseURL:          DefaultBaseURL,
		Payload:          tmpl,
		InputSelector:    DefaultInputSelector,
		SubmitSelector:   DefaultSubmitSelector,
		MarkerSelector:   DefaultMarkerSelector,
		AssertionTimeout: DefaultTimeout,
		PollInterval:     DefaultPollInterval,
	}
}

// Overrides are values supplied on the command line. Zero values leave the
// scenario untouched.
type Overrides struct {
	StudentCount int
	BaseURL      string
	TimeoutMs    int
}

// Apply copies every non-zero override into s.
func (s *Scenario) Apply(o Overrides) {
	if o.StudentCount != 0 {
		s.StudentCount = o.StudentCount
	}
	if o.BaseURL != "" {
		s.BaseURL = o.BaseURL
	}
	if o.TimeoutMs != 0 {
		s.AssertionTimeout = time.Duration(o.TimeoutMs) * time.Millisecond
	}
}

// Validate checks the scenario is runnable. It collects every problem rather
// than stopping at the first.
func (s *Scenario) Validate() error {
	var errs []error
	if s.StudentCount < 1 {
		errs = append(errs, fmt.Errorf("students must be at least 1, got %d", s.StudentCount))
	}
	if u, err := url.Parse(s.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("base_url %q is not an absolute URL", s.BaseURL))
	}
	if s.Payload == nil {
		errs = append(errs, errors.New("payload template is missing"))
	}
	if s.InputSelector == "" {
		errs = append(errs, errors.New("input selector is empty"))
	}
	if s.SubmitSelector == "" {
		errs = append(errs, errors.New("submit selector is empty"))
	}
	if s.MarkerSelector == "" {
		errs = append(errs, errors.New("marker selector is empty"))
	}
	if s.AssertionTimeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", s.AssertionTimeout))
	}
	if s.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("poll interval must be positive, got %s", s.PollInterval))
	}
	return errors.Join(errs...)
}
