package roddriver

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/specialistvlad/tutorburst/internal/driver"
	"github.com/specialistvlad/tutorburst/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func browserBin(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("browser tests are skipped in -short mode")
	}
	bin, ok := launcher.LookPath()
	if !ok {
		t.Skip("no Chromium found on this machine")
	}
	return bin
}

func newDriver(t *testing.T) *Driver {
	t.Helper()
	bin := browserBin(t)
	ctx, _ := testutil.LoggerContext(t)
	d, err := New(ctx, Config{Bin: bin, Headless: true, ActionTimeout: 5 * time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestHandle_FullTutorFlow(t *testing.T) {
	// --- Arrange ---
	d := newDriver(t)
	app := testutil.NewTutorApp(t)
	ctx := context.Background()
	h, err := d.Open(ctx, 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })

	// --- Act & Assert ---
	require.NoError(t, h.Navigate(ctx, app.URL()))

	visible, err := h.IsVisible(ctx, "text=Concept")
	require.NoError(t, err)
	assert.False(t, visible, "the marker is hidden before submitting")

	require.NoError(t, h.Fill(ctx, "textarea", "Student 0 says: cars in a lot = linked list"))
	require.NoError(t, h.Click(ctx, "text=Submit response"))

	require.Eventually(t, func() bool {
		ok, err := h.IsVisible(ctx, "text=Concept")
		return err == nil && ok
	}, 5*time.Second, 50*time.Millisecond)
}

func TestHandle_IncognitoContextsAreIsolated(t *testing.T) {
	// --- Arrange ---
	d := newDriver(t)
	app := testutil.NewTutorApp(t)
	ctx := context.Background()
	const n = 3

	// --- Act ---
	for i := 0; i < n; i++ {
		h, err := d.Open(ctx, i)
		require.NoError(t, err)
		require.NoError(t, h.Navigate(ctx, app.URL()))
		require.NoError(t, h.Fill(ctx, "textarea", fmt.Sprintf("answer %d", i)))
		require.NoError(t, h.Click(ctx, "text=Submit response"))
		require.Eventually(t, func() bool {
			ok, err := h.IsVisible(ctx, "text=Concept")
			return err == nil && ok
		}, 5*time.Second, 50*time.Millisecond)
		require.NoError(t, h.Close())
	}

	// --- Assert ---
	assert.Len(t, app.Submissions(), n, "each incognito context must get its own tutor cookie")
}

func TestHandle_MissingElementTimesOut(t *testing.T) {
	// --- Arrange ---
	d := newDriver(t)
	d.cfg.ActionTimeout = 300 * time.Millisecond
	app := testutil.NewTutorApp(t)
	ctx := context.Background()
	h, err := d.Open(ctx, 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	require.NoError(t, h.Navigate(ctx, app.URL()))

	// --- Act ---
	err = h.Click(ctx, "#nothing-here")

	// --- Assert ---
	assert.ErrorIs(t, err, driver.ErrNoElement)
}

func TestDriver_CloseLeavesExternalBrowserRunning(t *testing.T) {
	// --- Arrange ---
	l := launcher.New().Bin(browserBin(t)).Headless(true)
	controlURL, err := l.Launch()
	require.NoError(t, err)
	t.Cleanup(func() {
		l.Kill()
		l.Cleanup()
	})
	ctx, _ := testutil.LoggerContext(t)
	first, err := New(ctx, Config{ControlURL: controlURL})
	require.NoError(t, err)

	// --- Act ---
	require.NoError(t, first.Close())

	// --- Assert ---
	_, err = first.Open(ctx, 0)
	assert.Error(t, err, "a closed driver must have dropped its connection")

	second, err := New(ctx, Config{ControlURL: controlURL})
	require.NoError(t, err, "the external browser must still accept connections")
	t.Cleanup(func() { _ = second.Close() })
	h, err := second.Open(ctx, 0)
	require.NoError(t, err)
	assert.NoError(t, h.Close())
}
