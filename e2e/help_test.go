//go:build e2e && unix

package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHelpOverlayOpensAndCloses(t *testing.T) {
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

	err = tf.SendKeys(KeyF1)
	require.NoError(t, err, "Failed to open help")
	require.True(t, tf.SeePlain("scroll preview"), "Full help should list the preview scroll bindings")

	// First esc only closes the overlay; the session stays up
	err = tf.SendKeys(KeyEsc)
	require.NoError(t, err, "Failed to close help")
	time.Sleep(200 * time.Millisecond)

	err = tf.SendKeys(KeyEsc)
	require.NoError(t, err, "Failed to cancel")

	code, stdout := tf.WaitExit(5 * time.Second)
	require.Equal(t, 130, code, "Second esc should cancel the session")
	require.Empty(t, stdout, "Nothing should be printed on cancel")
}
