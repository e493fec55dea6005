// Package history keeps the append-only version list of one editing workspace.
package history

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultMaxVersions = 100

	InitialDescription = "Initial Version"
	RevertPrompt       = "Are you sure you want to revert to this version? This will create a new version with the reverted content."
)

var (
	ErrOutOfRange   = errors.New("version index out of range")
	ErrNotConfirmed = errors.New("revert not confirmed")
	ErrCancelled    = errors.New("version description is required")
	ErrEmpty        = errors.New("history has no versions")
)

// Version is a snapshot of the rendered document. Callers only ever receive copies.
type Version struct {
	Content     string    `json:"content"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
	OutputType  string    `json:"outputType"`
	GrantType   string    `json:"grantType,omitempty"`
}

// Snapshot carries everything a renderer needs to rebuild the version list from scratch.
type Snapshot struct {
	Versions     []Version `json:"versions"`
	CurrentIndex int       `json:"currentIndex"`
}

type View struct {
	Index     int     `json:"index"`
	Content   string  `json:"content"`
	CanRevert bool    `json:"canRevert"`
	Version   Version `json:"version"`
}

// Confirmer gates destructive-looking operations behind an explicit yes/no answer.
type Confirmer interface {
	Confirm(prompt string) bool
}

type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Confirmed is a Confirmer holding an answer that was collected up front.
type Confirmed bool

func (c Confirmed) Confirm(string) bool { return bool(c) }

type Option func(*Manager)

func WithMaxVersions(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.max = n
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithEvictionHook is called once per evicted version.
func WithEvictionHook(fn func()) Option {
	return func(m *Manager) { m.onEvict = fn }
}

type Manager struct {
	mu       sync.RWMutex
	versions []Version
	current  int
	max      int
	now      func() time.Time
	logger   zerolog.Logger
	onEvict  func()

	// dropped counts versions evicted since the last Initialize; resets counts Initialize calls.
	dropped int
	resets  int
}

func New(opts ...Option) *Manager {
	m := &Manager{
		current: -1,
		max:     DefaultMaxVersions,
		now:     time.Now,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Initialize resets the history to a single "Initial Version". Empty content is ignored and reported as false.
func (m *Manager) Initialize(content, outputType, grantType string) bool {
	if strings.TrimSpace(content) == "" {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.versions = nil
	m.current = -1
	m.dropped = 0
	m.resets++
	m.appendLocked(content, InitialDescription, outputType, grantType)
	return true
}

// AddVersion appends a version and makes it current. It returns the new index.
func (m *Manager) AddVersion(content, description, outputType, grantType string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appendLocked(content, description, outputType, grantType)
}

func (m *Manager) appendLocked(content, description, outputType, grantType string) int {
	if len(m.versions) >= m.max {
		evicted := len(m.versions) - m.max + 1
		m.logger.Warn().
			Int("max_versions", m.max).
			Int("evicted", evicted).
			Str("oldest_description", m.versions[0].Description).
			Msg("version history cap reached, evicting oldest versions")
		m.versions = append([]Version(nil), m.versions[evicted:]...)
		m.dropped += evicted
		for i := 0; i < evicted; i++ {
			if m.onEvict != nil {
				m.onEvict()
			}
		}
	}
	m.versions = append(m.versions, Version{
		Content:     content,
		Description: description,
		Timestamp:   m.now(),
		OutputType:  outputType,
		GrantType:   grantType,
	})
	m.current = len(m.versions) - 1
	return m.current
}

// View makes index current. An invalid index leaves the history untouched.
func (m *Manager) View(index int) (View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.viewLocked(index)
}

func (m *Manager) viewLocked(index int) (View, error) {
	if index < 0 || index >= len(m.versions) {
		return View{}, fmt.Errorf("%w: %d not in [0,%d)", ErrOutOfRange, index, len(m.versions))
	}
	m.current = index
	version := m.versions[index]
	return View{
		Index:     index,
		Content:   version.Content,
		CanRevert: index < len(m.versions)-1,
		Version:   version,
	}, nil
}

// Revert appends a copy of versions[index] after the confirmer agrees, then views it. If the confirmed
// version is evicted or the history is reset while the confirmer runs, nothing is appended.
func (m *Manager) Revert(index int, confirm Confirmer) (View, error) {
	m.mu.RLock()
	size, resets, position := len(m.versions), m.resets, m.dropped+index
	m.mu.RUnlock()
	if index < 0 || index >= size {
		return View{}, fmt.Errorf("%w: %d not in [0,%d)", ErrOutOfRange, index, size)
	}

	// The confirmer may block on a user, so it runs without the lock.
	if confirm == nil || !confirm.Confirm(RevertPrompt) {
		return View{}, ErrNotConfirmed
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	index = position - m.dropped
	if m.resets != resets || index < 0 || index >= len(m.versions) {
		return View{}, fmt.Errorf("%w: confirmed version is no longer in the history", ErrOutOfRange)
	}
	target := m.versions[index]
	last := m.appendLocked(target.Content, fmt.Sprintf("Reverted to Version %d", index+1), target.OutputType, target.GrantType)
	return m.viewLocked(last)
}

// SaveCurrent records content (usually manual edits of the rendered view) as a new version
// tagged like the version being displayed.
func (m *Manager) SaveCurrent(content, description string) (View, error) {
	if strings.TrimSpace(description) == "" {
		return View{}, ErrCancelled
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current < 0 {
		return View{}, ErrEmpty
	}
	displayed := m.versions[m.current]
	last := m.appendLocked(content, description, displayed.OutputType, displayed.GrantType)
	return m.viewLocked(last)
}

// Current returns the displayed version.
func (m *Manager) Current() (Version, int, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current < 0 {
		return Version{}, -1, false
	}
	return m.versions[m.current], m.current, true
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.versions)
}

func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	versions := make([]Version, len(m.versions))
	copy(versions, m.versions)
	return Snapshot{Versions: versions, CurrentIndex: m.current}
}
