package scenario

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/specialistvlad/tutorburst/internal/ctxlog"
	"gopkg.in/yaml.v3"
)

// YAMLLoader reads a scenario from a .yaml or .yml file.
type YAMLLoader struct{}

type yamlFile struct {
	Scenario yamlScenario `yaml:"scenario"`
}

type yamlScenario struct {
	Name           string  `yaml:"name"`
	Students       *int    `yaml:"students"`
	BaseURL        *string `yaml:"base_url"`
	Payload        *string `yaml:"payload"`
	Input          *string `yaml:"input"`
	Submit         *string `yaml:"submit"`
	Marker         *string `yaml:"marker"`
	TimeoutMs      *int    `yaml:"timeout_ms"`
	PollIntervalMs *int    `yaml:"poll_interval_ms"`
}

// Load decodes path strictly; unknown keys are rejected so typos surface.
func (l *YAMLLoader) Load(ctx context.Context, path string) (*Scenario, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("YAML scenario loader started.", "path", path)

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var doc yamlFile
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode YAML file %s: %w", path, err)
	}

	in := doc.Scenario
	sc := Default()
	if in.Name != "" {
		sc.Name = in.Name
	}
	if in.Students != nil {
		sc.StudentCount = *in.Students
	}
	if in.BaseURL != nil {
		sc.BaseURL = *in.BaseURL
	}
	if in.Payload != nil {
		tmpl, err := ParseTemplate(*in.Payload, path)
		if err != nil {
			return nil, err
		}
		sc.Payload = tmpl
	}
	if in.Input != nil {
		sc.InputSelector = *in.Input
	}
	if in.Submit != nil {
		sc.SubmitSelector = *in.Submit
	}
	if in.Marker != nil {
		sc.MarkerSelector = *in.Marker
	}
	if in.TimeoutMs != nil {
		sc.AssertionTimeout = time.Duration(*in.TimeoutMs) * time.Millisecond
	}
	if in.PollIntervalMs != nil {
		sc.PollInterval = time.Duration(*in.PollIntervalMs) * time.Millisecond
	}

	logger.Debug("YAML scenario loaded.", "name", sc.Name, "students", sc.StudentCount)
	return sc, nil
}
