// Package workspace holds the server-side editing sessions. Each workspace owns one version history.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"docgen/api/internal/history"
	"docgen/api/internal/metrics"
	"docgen/api/internal/util"
)

const DefaultCapacity = 256

var (
	ErrNotFound        = errors.New("workspace not found")
	ErrStaleGeneration = errors.New("a newer generation started in this workspace")
	ErrEmptyContent    = errors.New("generated content is empty")
	ErrNoDocument      = errors.New("workspace has no document yet")
	// ErrNoChange is returned by an Edit that has nothing to record.
	ErrNoChange = errors.New("edit produced no change")
)

type Workspace struct {
	ID        string
	CreatedAt time.Time

	history *history.Manager

	mu      sync.Mutex
	issued  uint64
	landed  uint64
	pending map[uint64]struct{}
}

func (w *Workspace) History() *history.Manager {
	return w.history
}

// BeginGeneration returns a token that CompleteGeneration or AbandonGeneration must present. While a
// newer generation is in flight or has landed, completing an older token fails with ErrStaleGeneration.
func (w *Workspace) BeginGeneration() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.issued++
	if w.pending == nil {
		w.pending = make(map[uint64]struct{})
	}
	w.pending[w.issued] = struct{}{}
	return w.issued
}

// AbandonGeneration withdraws a generation that failed before producing content, so it no longer
// supersedes older ones.
func (w *Workspace) AbandonGeneration(token uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.pending, token)
}

// CompleteGeneration reseeds the history with content unless a newer generation is in flight or has landed.
func (w *Workspace) CompleteGeneration(token uint64, content, outputType, grantType string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.pending, token)
	if latest := w.latestLocked(); token < latest {
		return fmt.Errorf("%w: token %d, current %d", ErrStaleGeneration, token, latest)
	}
	if !w.history.Initialize(content, outputType, grantType) {
		return ErrEmptyContent
	}
	w.landed = token
	return nil
}

// latestLocked is the newest generation that still counts: the newest one in flight or the one that landed last.
func (w *Workspace) latestLocked() uint64 {
	latest := w.landed
	for token := range w.pending {
		if token > latest {
			latest = token
		}
	}
	return latest
}

// Edit derives new content from the displayed version.
type Edit func(ctx context.Context, current history.Version) (string, error)

// Tracked composes edit with version tracking: a successful result is appended under description,
// tagged like the version it was derived from. A generation that starts or lands while the edit runs
// makes its result stale.
func (w *Workspace) Tracked(description string, edit Edit) func(ctx context.Context) (history.View, error) {
	return func(ctx context.Context) (history.View, error) {
		w.mu.Lock()
		latest, landed := w.latestLocked(), w.landed
		w.mu.Unlock()

		current, _, ok := w.history.Current()
		if !ok {
			return history.View{}, ErrNoDocument
		}

		content, err := edit(ctx, current)
		if err != nil {
			return history.View{}, err
		}
		if strings.TrimSpace(content) == "" {
			return history.View{}, ErrEmptyContent
		}

		w.mu.Lock()
		defer w.mu.Unlock()
		if w.latestLocked() != latest || w.landed != landed {
			return history.View{}, ErrStaleGeneration
		}
		index := w.history.AddVersion(content, description, current.OutputType, current.GrantType)
		return w.history.View(index)
	}
}

// Snapshot adds the tags of the displayed version to the history snapshot.
type Snapshot struct {
	ID string `json:"id"`
	history.Snapshot
	OutputType string `json:"outputType"`
	GrantType  string `json:"grantType"`
}

func (w *Workspace) Snapshot() Snapshot {
	snap := w.history.Snapshot()
	out := Snapshot{ID: w.ID, Snapshot: snap}
	if snap.CurrentIndex >= 0 {
		current := snap.Versions[snap.CurrentIndex]
		out.OutputType = current.OutputType
		out.GrantType = current.GrantType
	}
	return out
}

type Options struct {
	Capacity    int
	MaxVersions int
	Logger      zerolog.Logger
	Metrics     *metrics.Metrics
	Now         func() time.Time
}

// Registry keeps the most recently used workspaces. The least recently used one is dropped at capacity.
type Registry struct {
	cache   *lru.Cache[string, *Workspace]
	opts    Options
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

func NewRegistry(opts Options) (*Registry, error) {
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	r := &Registry{opts: opts, logger: opts.Logger, metrics: opts.Metrics}
	cache, err := lru.NewWithEvict[string, *Workspace](opts.Capacity, func(id string, _ *Workspace) {
		r.logger.Debug().Str("workspace_id", id).Msg("workspace dropped")
	})
	if err != nil {
		return nil, fmt.Errorf("workspace registry: %w", err)
	}
	r.cache = cache
	return r, nil
}

func (r *Registry) Create() *Workspace {
	id := util.NewID("ws")
	logger := r.logger.With().Str("workspace_id", id).Logger()
	historyOpts := []history.Option{
		history.WithLogger(logger),
		history.WithClock(r.opts.Now),
		history.WithEvictionHook(r.metrics.VersionEvicted),
	}
	if r.opts.MaxVersions > 0 {
		historyOpts = append(historyOpts, history.WithMaxVersions(r.opts.MaxVersions))
	}
	w := &Workspace{
		ID:        id,
		CreatedAt: r.opts.Now(),
		history:   history.New(historyOpts...),
	}
	if evicted := r.cache.Add(id, w); evicted {
		r.logger.Warn().Int("capacity", r.opts.Capacity).Msg("workspace capacity reached, least recently used workspace dropped")
	}
	r.metrics.SetWorkspaces(r.cache.Len())
	return w
}

func (r *Registry) Get(id string) (*Workspace, error) {
	w, ok := r.cache.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return w, nil
}

func (r *Registry) Delete(id string) bool {
	present := r.cache.Remove(id)
	r.metrics.SetWorkspaces(r.cache.Len())
	return present
}

func (r *Registry) Len() int {
	return r.cache.Len()
}
