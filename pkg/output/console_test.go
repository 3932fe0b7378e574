package output

import (
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Type: Unit Test

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	orig := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()

	require.NoError(t, w.Close())
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(data)
}

func TestDetectStyled_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.False(t, detectStyled(os.Stdout))
}

func TestDetectStyled_NotATerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.False(t, detectStyled(f))
}

func TestConsole_PlainOutput(t *testing.T) {
	console := &Console{styled: false, quiet: false}

	out := captureStdout(t, func() {
		console.Banner("1.2.3")
		console.Step("Staging cached history...")
		console.Success("done")
		console.SnapshotSize(2048)
	})

	assert.Contains(t, out, "~ tidesync 1.2.3")
	assert.Contains(t, out, "Staging cached history...")
	assert.Contains(t, out, "done")
	assert.Contains(t, out, "Snapshot size: 2.048kB")
}

func TestConsole_QuietSuppressesEverything(t *testing.T) {
	console := &Console{styled: false, quiet: true}

	out := captureStdout(t, func() {
		console.Banner("1.2.3")
		console.Step("step")
		console.Success("done")
		console.SnapshotSize(1024)
		console.Detail("detail %d", 1)
	})

	assert.Empty(t, out)
}
