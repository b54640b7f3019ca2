package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// AssertSessionLogged checks that a single line of text-handler log output
// carries both the session's index and msg.
func AssertSessionLogged(t *testing.T, logs string, index int, msg string) {
	t.Helper()

	field := fmt.Sprintf("session=%d ", index)
	for _, line := range strings.Split(logs, "\n") {
		if strings.Contains(line+" ", field) && strings.Contains(line, msg) {
			return
		}
	}
	require.Fail(t, "log line not found", "no line mentions %q for session %d", msg, index)
}
