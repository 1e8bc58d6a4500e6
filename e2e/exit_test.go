//go:build e2e && unix

package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCtrlCExitsWithCancelCode(t *testing.T) {
	t.Parallel()
	tf := NewTUITest(t)
	defer tf.Cleanup()

	workspace := tf.CreateWorkspace(map[string]string{
		"only.txt": "content\n",
	})

	err := tf.StartApp("-d", workspace)
	require.NoError(t, err, "Failed to start app")

	require.True(t, tf.Ready(), "Should receive ready signal")
	require.True(t, tf.OutputContainsPlain("1/1", 5*time.Second), "File should be ingested")

	err = tf.SendKeys(KeyCtrlC)
	require.NoError(t, err, "Failed to send ctrl+c")

	code, stdout := tf.WaitExit(5 * time.Second)
	require.Equal(t, 130, code, "Ctrl+C should exit 130")
	require.Empty(t, stdout, "Cancel must not write to stdout")
}

func TestEscExitsWithCancelCode(t *testing.T) {
	t.Parallel()
	tf := NewTUITest(t)
	defer tf.Cleanup()

	workspace := tf.CreateWorkspace(map[string]string{
		"only.txt": "content\n",
	})

	err := tf.StartApp("-d", workspace)
	require.NoError(t, err, "Failed to start app")

	require.True(t, tf.Ready(), "Should receive ready signal")
	require.True(t, tf.OutputContainsPlain("1/1", 5*time.Second), "File should be ingested")

	err = tf.SendKeys(KeyEsc)
	require.NoError(t, err, "Failed to send esc")

	code, stdout := tf.WaitExit(5 * time.Second)
	require.Equal(t, 130, code, "Esc should exit 130")
	require.Empty(t, stdout, "Cancel must not write to stdout")
}
