package preview

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"trawl/internal/entry"
	"trawl/internal/store"
)

type plainChannel struct{}

func (plainChannel) Name() string                              { return "plain" }
func (plainChannel) Start(context.Context, *store.Store) error { return nil }
func (plainChannel) Stop()                                     {}

type echoChannel struct{ plainChannel }

func (echoChannel) Preview(_ context.Context, e entry.Entry) (string, error) {
	return "echo:" + e.Name, nil
}

func waitCurrent(t *testing.T, p *Pipeline) Content {
	t.Helper()
	var content Content
	require.Eventually(t, func() bool {
		c, ok := p.Current()
		if ok {
			content = c
		}
		return ok
	}, 5*time.Second, time.Millisecond)
	return content
}

func TestChannelPreviewCapability(t *testing.T) {
	st := store.New()
	st.Append(entry.Entry{Name: "alpha"}, entry.Entry{Name: "beta"})

	p := New(st, echoChannel{})
	defer p.Stop()

	p.Request(1)
	content := waitCurrent(t, p)
	require.Equal(t, KindLoaded, content.Kind)
	require.Equal(t, "echo:beta", content.Text)
	require.Equal(t, 1, content.Index)
}

func TestNoPreviewWithoutFile(t *testing.T) {
	st := store.New()
	st.Append(entry.Entry{Name: "just a line"})

	p := New(st, plainChannel{})
	defer p.Stop()

	p.Request(0)
	content := waitCurrent(t, p)
	require.Equal(t, KindNone, content.Kind)
}

func TestFilePreview(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("first line\n\tsecond line\n"), 0o644))

	st := store.New()
	st.Append(entry.Entry{Name: "notes.txt", Path: path})

	p := New(st, plainChannel{})
	defer p.Stop()

	p.Request(0)
	content := waitCurrent(t, p)
	require.Equal(t, KindLoaded, content.Kind)
	require.Contains(t, content.Text, "first line")
	// tabs are expanded during sanitization
	require.Contains(t, content.Text, "    second line")
}

func TestFilePreviewHighlights(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(path, []byte("package main\n\nfunc main() {}\n"), 0o644))

	content := renderFile(entry.Entry{Name: "main.go", Path: path})
	require.Equal(t, KindLoaded, content.Kind)
	require.Contains(t, content.Text, "package")
	require.Contains(t, content.Text, "\x1b[", "expected ANSI highlighting")
}

func TestFilePreviewBinary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blob.bin")
	data := make([]byte, 1200)
	for i := range data {
		data[i] = byte(i % 7)
	}
	require.NoError(t, os.WriteFile(path, data, 0o644))

	content := renderFile(entry.Entry{Name: "blob.bin", Path: path})
	require.Equal(t, KindBinary, content.Kind)
}

func TestFilePreviewTooLarge(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "huge.log")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(maxPreviewSize+1))
	require.NoError(t, f.Close())

	content := renderFile(entry.Entry{Name: "huge.log", Path: path})
	require.Equal(t, KindTooLarge, content.Kind)
}

func TestFilePreviewEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	content := renderFile(entry.Entry{Name: "empty", Path: path})
	require.Equal(t, KindLoaded, content.Kind)
	require.Empty(t, content.Text)
}

func TestFilePreviewMissing(t *testing.T) {
	content := renderFile(entry.Entry{Name: "gone", Path: filepath.Join(t.TempDir(), "gone")})
	require.Equal(t, KindError, content.Kind)
	require.Contains(t, content.Text, "preview failed")
}

func TestDirectoryPreviewListsEntries(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "file.txt"), []byte("x"), 0o644))

	content := renderFile(entry.Entry{Name: "dir", Path: dir})
	require.Equal(t, KindLoaded, content.Kind)
	require.Contains(t, content.Text, "file.txt\n")
	require.Contains(t, content.Text, "sub"+string(os.PathSeparator)+"\n")
}

func TestStaleRenderIsNotPresented(t *testing.T) {
	st := store.New()
	st.Append(entry.Entry{Name: "first"}, entry.Entry{Name: "second"})

	p := New(st, plainChannel{})
	defer p.Stop()

	p.Request(1)
	waitCurrent(t, p)

	// a render completing for a candidate that is no longer current
	// lands in the cache but never becomes the presented preview
	p.finish(0, Content{Kind: KindLoaded, Text: "late"})
	content, ok := p.Current()
	require.True(t, ok)
	require.Equal(t, 1, content.Index)

	require.True(t, p.cache.Contains(0), "stale render stays cached for later")
}

func TestCacheEvictsLeastRecentlyDisplayed(t *testing.T) {
	st := store.New()
	for i := 0; i < cacheCapacity+1; i++ {
		st.Append(entry.Entry{Name: fmt.Sprintf("line-%d", i)})
	}

	p := New(st, plainChannel{})
	defer p.Stop()

	for i := 0; i < cacheCapacity; i++ {
		p.Request(i)
		waitCurrent(t, p)
	}

	// redisplay the oldest entry, then overflow the cache by one
	p.Request(0)
	waitCurrent(t, p)
	p.Request(cacheCapacity)
	waitCurrent(t, p)

	require.Equal(t, cacheCapacity, p.cache.Len())
	require.True(t, p.cache.Contains(0), "recently displayed entry must survive")
	require.False(t, p.cache.Contains(1), "least recently displayed entry must be evicted")
}

func TestRequestCoalescesPending(t *testing.T) {
	st := store.New()
	st.Append(entry.Entry{Name: "a"})

	p := New(st, plainChannel{})
	defer p.Stop()

	p.Request(0)
	p.Request(0)
	p.Request(0)
	waitCurrent(t, p)

	p.mu.Lock()
	defer p.mu.Unlock()
	require.Empty(t, p.pending)
	require.Empty(t, p.queue)
}

func TestLongLinesAreTruncatedInPreview(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "long.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("a", 400)+"\n"), 0o644))

	content := renderFile(entry.Entry{Name: "long.txt", Path: path})
	require.Equal(t, KindLoaded, content.Kind)
	first := strings.SplitN(content.Text, "\n", 2)[0]
	require.Len(t, first, 300)
}
