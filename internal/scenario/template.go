package scenario

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// indexVar is the only variable a payload template may reference.
const indexVar = "index"

// templateFuncs are available inside payload templates.
var templateFuncs = map[string]function.Function{
	"format": stdlib.FormatFunc,
	"upper":  stdlib.UpperFunc,
	"lower":  stdlib.LowerFunc,
}

// Template renders the text one student types, given that student's index.
type Template struct {
	expr   hcl.Expression
	source string
}

// ParseTemplate parses src as an HCL template string, e.g.
// "Student ${index} says hi".
func ParseTemplate(src, filename string) (*Template, error) {
	expr, diags := hclsyntax.ParseTemplate([]byte(src), filename, hcl.Pos{Line: 1, Column: 1, Byte: 0})
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse payload template: %w", diags)
	}
	return NewTemplate(expr, src)
}

// NewTemplate wraps an already-parsed expression. The expression must refer
// to `index` and nothing else, otherwise every student would type the same
// text.
func NewTemplate(expr hcl.Expression, source string) (*Template, error) {
	refsIndex := false
	for _, traversal := range expr.Variables() {
		root := traversal.RootName()
		if root != indexVar {
			return nil, fmt.Errorf("payload template %s references unknown variable %q; only %q is available", expr.Range(), root, indexVar)
		}
		refsIndex = true
	}
	if !refsIndex {
		return nil, fmt.Errorf("payload template %s must reference ${%s} so each session types distinct text", expr.Range(), indexVar)
	}
	return &Template{expr: expr, source: source}, nil
}

// Source returns the template text as written.
func (t *Template) Source() string {
	return t.source
}

// Render evaluates the template for one session index.
func (t *Template) Render(index int) (string, error) {
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			indexVar: cty.NumberIntVal(int64(index)),
		},
		Functions: templateFuncs,
	}
	val, diags := t.expr.Value(evalCtx)
	if diags.HasErrors() {
		return "", fmt.Errorf("failed to render payload for index %d: %w", index, diags)
	}
	if val.IsNull() || !val.IsKnown() {
		return "", fmt.Errorf("payload for index %d rendered to a null or unknown value", index)
	}
	str, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", fmt.Errorf("payload for index %d is not a string: %w", index, err)
	}
	return str.AsString(), nil
}
