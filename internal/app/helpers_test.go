package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/tutorburst/internal/testutil"
	"github.com/stretchr/testify/require"
)

// setupAppTest creates an App that logs at debug level into a buffer. The
// buffer is dumped when TUTORBURST_TEST_LOGS=true.
func setupAppTest(t *testing.T, cfg Config, opts ...Option) (*App, *testutil.SafeBuffer) {
	t.Helper()

	cfg.LogLevel = "debug"
	validated, err := NewConfig(cfg)
	require.NoError(t, err)

	logBuffer := &testutil.SafeBuffer{}
	testApp := NewApp(logBuffer, logBuffer, validated, opts...)

	t.Cleanup(func() {
		if os.Getenv("TUTORBURST_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})
	return testApp, logBuffer
}

func writeScenario(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}
