//go:build e2e && unix

package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestArrowKeysMoveSelection(t *testing.T) {
	t.Parallel()
	tf := NewTUITest(t)
	defer tf.Cleanup()

	// Walk order is lexical, so the result list starts out as
	// alpha, beta, gamma with alpha selected.
	workspace := tf.CreateWorkspace(map[string]string{
		"alpha.txt": "a\n",
		"beta.txt":  "b\n",
		"gamma.log": "c\n",
	})

	err := tf.StartApp("-d", workspace)
	require.NoError(t, err, "Failed to start app")

	require.True(t, tf.Ready(), "Should receive ready signal")
	require.True(t, tf.OutputContainsPlain("3/3", 5*time.Second), "All files should be ingested")
	require.True(t, tf.SeePlain("> alpha.txt"), "First entry should start selected")

	err = tf.SendKeys(KeyUp)
	require.NoError(t, err, "Failed to send up")
	require.True(t, tf.SeePlain("> beta.txt"), "Up should select the next entry")

	err = tf.SendKeys(KeyUp)
	require.NoError(t, err, "Failed to send up")
	require.True(t, tf.SeePlain("> gamma.log"), "Up again should select the last entry")

	err = tf.SendKeys(KeyDown)
	require.NoError(t, err, "Failed to send down")

	// Confirm proves where the selection actually landed
	err = tf.Enter()
	require.NoError(t, err, "Failed to confirm")

	code, stdout := tf.WaitExit(5 * time.Second)
	require.Equal(t, 0, code, "Confirm should exit zero")
	require.Equal(t, "beta.txt\n", stdout, "Down should have moved selection back to beta")
}
