package scenario

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/tutorburst/internal/ctxlog"
)

// HCLLoader reads `scenario` blocks from .hcl files.
type HCLLoader struct{}

// fileRoot is used to decode all top-level blocks of a scenario file.
type fileRoot struct {
	Scenarios []*scenarioBlock `hcl:"scenario,block"`
	Remain    hcl.Body         `hcl:",remain"`
}

type scenarioBlock struct {
	Name           string         `hcl:"name,label"`
	Students       *int           `hcl:"students,optional"`
	BaseURL        *string        `hcl:"base_url,optional"`
	Payload        hcl.Expression `hcl:"payload,optional"`
	Input          *string        `hcl:"input,optional"`
	Submit         *string        `hcl:"submit,optional"`
	Marker         *string        `hcl:"marker,optional"`
	TimeoutMs      *int           `hcl:"timeout_ms,optional"`
	PollIntervalMs *int           `hcl:"poll_interval_ms,optional"`
}

// Load parses path and returns the single scenario it declares, with
// defaults filled in for every omitted attribute.
func (l *HCLLoader) Load(ctx context.Context, path string) (*Scenario, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL scenario loader started.", "path", path)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}
	if len(root.Scenarios) != 1 {
		return nil, fmt.Errorf("%s must declare exactly one scenario block, found %d", path, len(root.Scenarios))
	}

	block := root.Scenarios[0]
	sc := Default()
	sc.Name = block.Name
	if block.Students != nil {
		sc.StudentCount = *block.Students
	}
	if block.BaseURL != nil {
		sc.BaseURL = *block.BaseURL
	}
	if isExprDefined(ctx, block.Payload, "payload") {
		rng := block.Payload.Range()
		tmpl, err := NewTemplate(block.Payload, string(rng.SliceBytes(file.Bytes)))
		if err != nil {
			return nil, err
		}
		sc.Payload = tmpl
	}
	if block.Input != nil {
		sc.InputSelector = *block.Input
	}
	if block.Submit != nil {
		sc.SubmitSelector = *block.Submit
	}
	if block.Marker != nil {
		sc.MarkerSelector = *block.Marker
	}
	if block.TimeoutMs != nil {
		sc.AssertionTimeout = time.Duration(*block.TimeoutMs) * time.Millisecond
	}
	if block.PollIntervalMs != nil {
		sc.PollInterval = time.Duration(*block.PollIntervalMs) * time.Millisecond
	}

	logger.Debug("HCL scenario loaded.", "name", sc.Name, "students", sc.StudentCount)
	return sc, nil
}

// isExprDefined reports whether an optional attribute was actually written in
// the file. gohcl fills omitted hcl.Expression fields with a zero-width
// placeholder, so a nil check is not enough.
func isExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	if expr == nil {
		return false
	}
	rng := expr.Range()
	defined := rng.End.Byte > rng.Start.Byte
	ctxlog.FromContext(ctx).Debug("Checked optional HCL attribute.", "attribute", attrName, "hcl_range", rng.String(), "is_defined", defined)
	return defined
}
