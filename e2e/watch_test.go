//go:build e2e && unix

package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatchPicksUpCreatedFiles(t *testing.T) {
	t.Parallel()
	tf := NewTUITest(t)
	defer tf.Cleanup()

	workspace := tf.CreateWorkspace(map[string]string{
		"first.txt": "one\n",
	})

	err := tf.StartApp("-d", workspace, "--watch")
	require.NoError(t, err, "Failed to start app")

	require.True(t, tf.Ready(), "Should receive ready signal")
	require.True(t, tf.OutputContainsPlain("1/1", 5*time.Second), "Initial walk should find one file")
	time.Sleep(100 * time.Millisecond)

	err = os.WriteFile(filepath.Join(workspace, "second.txt"), []byte("two\n"), 0o644)
	require.NoError(t, err, "Failed to create file")

	require.True(t, tf.OutputContainsPlain("2/2", 5*time.Second), "Created file should appear without restarting")

	err = tf.SendKeys(KeyEsc)
	require.NoError(t, err, "Failed to cancel")
	code, stdout := tf.WaitExit(5 * time.Second)
	require.Equal(t, 130, code, "Cancel should exit 130")
	require.Empty(t, stdout, "Nothing should be printed on cancel")
}
