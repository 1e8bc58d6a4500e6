package channel

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"trawl/internal/entry"
	"trawl/internal/eventbus"
	"trawl/internal/store"
)

const gitPreviewTimeout = 5 * time.Second

// GitReposChannel walks a directory tree and produces one candidate
// per git repository found. Previews show branch, working tree status
// and recent history instead of file contents.
type GitReposChannel struct {
	root string
	bus  eventbus.Bus

	// resolved once at construction; empty when lazygit is absent
	lazygit string

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewGitRepos creates a git repository channel rooted at dir
func NewGitRepos(dir string) *GitReposChannel {
	c := &GitReposChannel{root: dir}
	if path, err := exec.LookPath("lazygit"); err == nil {
		c.lazygit = path
	}
	return c
}

// SetBus attaches an event bus for ingestion progress events
func (c *GitReposChannel) SetBus(bus eventbus.Bus) { c.bus = bus }

func (c *GitReposChannel) Name() string { return "git-repos" }

func (c *GitReposChannel) Start(ctx context.Context, sink *store.Store) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return nil
	}
	c.started = true

	walkCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.publish(eventbus.IngestionStartedEvent{Channel: c.Name()})

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.walk(walkCtx, sink)
	}()
	return nil
}

func (c *GitReposChannel) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	c.wg.Wait()
}

func (c *GitReposChannel) walk(ctx context.Context, sink *store.Store) {
	limiter := rate.NewLimiter(rate.Every(100*time.Millisecond), 1)

	err := filepath.WalkDir(c.root, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err != nil {
			slog.Debug("Walk error, skipping", "path", path, "error", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == ".git" {
			repo := filepath.Dir(path)
			total := sink.Append(c.repoEntry(repo))
			if limiter.Allow() {
				c.publish(eventbus.IngestionProgressEvent{Channel: c.Name(), Count: total})
			}
			// no nested repositories below a .git directory
			return fs.SkipDir
		}
		if skipDir(c.root, path, d.Name()) {
			return fs.SkipDir
		}
		return nil
	})

	if err != nil && ctx.Err() == nil {
		c.publish(eventbus.ChannelErrorEvent{Channel: c.Name(), Err: err})
	}
	c.publish(eventbus.IngestionCompletedEvent{Channel: c.Name(), Count: sink.Len()})
}

func (c *GitReposChannel) repoEntry(repo string) entry.Entry {
	name := repo
	if rel, err := filepath.Rel(c.root, repo); err == nil && !strings.HasPrefix(rel, "..") {
		name = rel
	}
	return entry.Entry{Name: name, Output: repo, Path: repo}
}

// Preview renders branch, status and recent log for the repository
func (c *GitReposChannel) Preview(ctx context.Context, e entry.Entry) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, gitPreviewTimeout)
	defer cancel()

	branch, err := currentBranch(ctx, e.Path)
	if err != nil {
		return "", fmt.Errorf("reading branch of %s: %w", e.Path, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s  [%s]\n\n", e.Name, branch)

	status, err := gitOutput(ctx, e.Path, "status", "--short")
	if err != nil {
		return "", fmt.Errorf("reading status of %s: %w", e.Path, err)
	}
	if status == "" {
		b.WriteString("working tree clean\n")
	} else {
		b.WriteString(status)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	log, err := gitOutput(ctx, e.Path, "log", "--oneline", "--decorate", "-n", "50")
	if err == nil && log != "" {
		b.WriteString(log)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// Confirm opens the repository in lazygit when it is installed,
// otherwise falls back to printing the path.
func (c *GitReposChannel) Confirm(e entry.Entry) Action {
	if c.lazygit == "" {
		return Action{Kind: ActionPrint}
	}
	return Action{Kind: ActionExec, Command: c.lazygit + " -p {}"}
}

// currentBranch returns the branch name, or a short hash for a
// detached HEAD.
func currentBranch(ctx context.Context, repoPath string) (string, error) {
	branch, err := gitOutput(ctx, repoPath, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	if branch == "HEAD" {
		hash, err := gitOutput(ctx, repoPath, "rev-parse", "--short", "HEAD")
		if err != nil {
			return "detached", nil
		}
		return "detached@" + hash, nil
	}
	return branch, nil
}

func gitOutput(ctx context.Context, repoPath string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = repoPath
	output, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(output)), nil
}

func (c *GitReposChannel) publish(ev eventbus.Event) {
	if c.bus != nil {
		c.bus.Publish(ev)
	}
}
