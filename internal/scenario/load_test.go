package scenario

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_NoPathUsesDefaults(t *testing.T) {
	t.Parallel()

	sc, err := Load(context.Background(), "", Overrides{})
	require.NoError(t, err)

	assert.Equal(t, DefaultStudentCount, sc.StudentCount)
	assert.Equal(t, DefaultBaseURL, sc.BaseURL)
	assert.Equal(t, "textarea", sc.InputSelector)
	assert.Equal(t, "text=Submit response", sc.SubmitSelector)
	assert.Equal(t, "text=Concept", sc.MarkerSelector)
	assert.Equal(t, 10*time.Second, sc.AssertionTimeout)

	payload, err := sc.Payload.Render(4)
	require.NoError(t, err)
	assert.Equal(t, "Student 4 says: cars in a lot = linked list", payload)
}

func TestLoad_HCL(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	path := writeFile(t, "burst.hcl", `
		scenario "smoke" {
			students         = 3
			base_url         = "http://tutor.test:8501"
			payload          = "S${index}: ropes and braiding = linked list"
			marker           = "#feedback"
			timeout_ms       = 250
			poll_interval_ms = 20
		}
	`)

	// --- Act ---
	sc, err := Load(context.Background(), path, Overrides{})

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, "smoke", sc.Name)
	assert.Equal(t, 3, sc.StudentCount)
	assert.Equal(t, "http://tutor.test:8501", sc.BaseURL)
	assert.Equal(t, "#feedback", sc.MarkerSelector)
	assert.Equal(t, DefaultInputSelector, sc.InputSelector, "omitted attributes keep their defaults")
	assert.Equal(t, 250*time.Millisecond, sc.AssertionTimeout)
	assert.Equal(t, 20*time.Millisecond, sc.PollInterval)
	assert.Contains(t, sc.Payload.Source(), "S${index}: ropes and braiding")

	payload, err := sc.Payload.Render(2)
	require.NoError(t, err)
	assert.Equal(t, "S2: ropes and braiding = linked list", payload)
}

func TestLoad_HCLWithoutPayloadKeepsDefault(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "burst.hcl", `scenario "minimal" { students = 2 }`)
	sc, err := Load(context.Background(), path, Overrides{})
	require.NoError(t, err)
	assert.Equal(t, DefaultPayload, sc.Payload.Source())
}

func TestLoad_HCLRequiresExactlyOneScenario(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "burst.hcl", `
		scenario "a" {}
		scenario "b" {}
	`)
	_, err := Load(context.Background(), path, Overrides{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one scenario block, found 2")
}

func TestLoad_YAML(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "burst.yaml", `
scenario:
  name: yaml_smoke
  students: 5
  payload: "learner-${format(\"%03d\", index)}"
  submit: "button[type=submit]"
  timeout_ms: 1500
`)

	sc, err := Load(context.Background(), path, Overrides{})
	require.NoError(t, err)
	assert.Equal(t, "yaml_smoke", sc.Name)
	assert.Equal(t, 5, sc.StudentCount)
	assert.Equal(t, "button[type=submit]", sc.SubmitSelector)
	assert.Equal(t, 1500*time.Millisecond, sc.AssertionTimeout)

	payload, err := sc.Payload.Render(7)
	require.NoError(t, err)
	assert.Equal(t, "learner-007", payload)
}

func TestLoad_YAMLRejectsUnknownKeys(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "burst.yml", "scenario:\n  studnets: 5\n")
	_, err := Load(context.Background(), path, Overrides{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode YAML")
}

func TestLoad_OverridesWin(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "burst.hcl", `scenario "x" { students = 3 }`)
	sc, err := Load(context.Background(), path, Overrides{StudentCount: 9, BaseURL: "https://other.test", TimeoutMs: 40})
	require.NoError(t, err)
	assert.Equal(t, 9, sc.StudentCount)
	assert.Equal(t, "https://other.test", sc.BaseURL)
	assert.Equal(t, 40*time.Millisecond, sc.AssertionTimeout)
}

func TestLoad_ValidationCollectsAllProblems(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "burst.hcl", `
		scenario "broken" {
			students = 0
			base_url = "not a url"
			marker   = ""
		}
	`)
	_, err := Load(context.Background(), path, Overrides{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "students must be at least 1")
	assert.Contains(t, err.Error(), "is not an absolute URL")
	assert.Contains(t, err.Error(), "marker selector is empty")
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "burst.json", "{}")
	_, err := Load(context.Background(), path, Overrides{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported scenario file")
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.hcl"), Overrides{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scenario file not accessible")
}

func TestLoad_DirectoryWithOneScenario(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	path := writeFile(t, "burst.hcl", `scenario "dir" { students = 4 }`)

	// --- Act ---
	sc, err := Load(context.Background(), filepath.Dir(path), Overrides{})

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, "dir", sc.Name)
	assert.Equal(t, 4, sc.StudentCount)
}

func TestLoad_DirectoryMustBeUnambiguous(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.hcl"), []byte(`scenario "a" {}`), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte("scenario:\n  name: b\n"), 0600))

	// --- Act ---
	_, err := Load(context.Background(), dir, Overrides{})

	// --- Assert ---
	assert.ErrorContains(t, err, "exactly one scenario file, found 2")
}
