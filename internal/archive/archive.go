// Package archive mirrors workspace version histories into one git repository per workspace.
package archive

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"docgen/api/internal/history"
)

const (
	documentFile = "document.html"
	metaFile     = "version.json"

	timestampTrailer = "Version-Timestamp: "
	authorName       = "docgen"
	authorEmail      = "docgen@localhost"
)

var (
	ErrNoArchive     = errors.New("workspace has no archive")
	ErrUnknownCommit = errors.New("unknown archived commit")
)

type CommitInfo struct {
	Hash        string    `json:"hash"`
	Description string    `json:"description"`
	Author      string    `json:"author"`
	CreatedAt   time.Time `json:"createdAt"`
}

type meta struct {
	Description string    `json:"description"`
	OutputType  string    `json:"outputType"`
	GrantType   string    `json:"grantType,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

type Service struct {
	baseDir string
	lockMu  sync.Mutex
	locks   map[string]*sync.Mutex
}

func New(baseDir string) *Service {
	return &Service{
		baseDir: baseDir,
		locks:   make(map[string]*sync.Mutex),
	}
}

// Archive commits every version newer than the last archived one, oldest first, and returns the new commits.
func (s *Service) Archive(workspaceID string, versions []history.Version) ([]CommitInfo, error) {
	lock := s.workspaceLock(workspaceID)
	lock.Lock()
	defer lock.Unlock()

	repo, err := s.openOrInit(workspaceID)
	if err != nil {
		return nil, err
	}
	last, err := lastArchived(repo)
	if err != nil {
		return nil, err
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("open worktree: %w", err)
	}
	root := worktree.Filesystem.Root()

	var commits []CommitInfo
	for _, v := range versions {
		if !last.IsZero() && !v.Timestamp.After(last) {
			continue
		}
		hash, err := commitVersion(worktree, root, v)
		if err != nil {
			return nil, err
		}
		commitObj, err := repo.CommitObject(hash)
		if err != nil {
			return nil, fmt.Errorf("read commit object: %w", err)
		}
		commits = append(commits, toCommitInfo(commitObj))
	}
	return commits, nil
}

// History lists archived commits, newest first. A limit of zero lists all of them.
func (s *Service) History(workspaceID string, limit int) ([]CommitInfo, error) {
	lock := s.workspaceLock(workspaceID)
	lock.Lock()
	defer lock.Unlock()

	repo, err := s.open(workspaceID)
	if err != nil {
		return nil, err
	}
	head, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return []CommitInfo{}, nil
		}
		return nil, fmt.Errorf("resolve head: %w", err)
	}
	iter, err := repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	defer iter.Close()

	items := []CommitInfo{}
	err = iter.ForEach(func(commitObj *object.Commit) error {
		items = append(items, toCommitInfo(commitObj))
		if limit > 0 && len(items) >= limit {
			return io.EOF
		}
		return nil
	})
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("iterate log: %w", err)
	}
	return items, nil
}

// Content returns the archived document at hash, which may be abbreviated.
func (s *Service) Content(workspaceID, hash string) (string, error) {
	lock := s.workspaceLock(workspaceID)
	lock.Lock()
	defer lock.Unlock()

	repo, err := s.open(workspaceID)
	if err != nil {
		return "", err
	}
	resolved, err := resolveHash(repo, hash)
	if err != nil {
		return "", err
	}
	commitObj, err := repo.CommitObject(resolved)
	if errors.Is(err, plumbing.ErrObjectNotFound) {
		return "", fmt.Errorf("%w: %s", ErrUnknownCommit, hash)
	}
	if err != nil {
		return "", fmt.Errorf("read commit %s: %w", hash, err)
	}
	file, err := commitObj.File(documentFile)
	if err != nil {
		return "", fmt.Errorf("load %s from commit: %w", documentFile, err)
	}
	return file.Contents()
}

func (s *Service) repoPath(workspaceID string) string {
	return filepath.Join(s.baseDir, workspaceID)
}

func (s *Service) workspaceLock(workspaceID string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	lock, ok := s.locks[workspaceID]
	if ok {
		return lock
	}
	lock = &sync.Mutex{}
	s.locks[workspaceID] = lock
	return lock
}

func (s *Service) open(workspaceID string) (*git.Repository, error) {
	repo, err := git.PlainOpen(s.repoPath(workspaceID))
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, fmt.Errorf("%w: %s", ErrNoArchive, workspaceID)
	}
	if err != nil {
		return nil, fmt.Errorf("open repo: %w", err)
	}
	return repo, nil
}

func (s *Service) openOrInit(workspaceID string) (*git.Repository, error) {
	repo, err := s.open(workspaceID)
	if err == nil {
		return repo, nil
	}
	if !errors.Is(err, ErrNoArchive) {
		return nil, err
	}
	path := s.repoPath(workspaceID)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create repo dir: %w", err)
	}
	repo, err = git.PlainInit(path, false)
	if err != nil {
		return nil, fmt.Errorf("init repo: %w", err)
	}
	if err := repo.Storer.SetReference(plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName("main"))); err != nil {
		return nil, fmt.Errorf("set HEAD to main: %w", err)
	}
	return repo, nil
}

// lastArchived reads the version timestamp trailer of HEAD. It is zero for an empty repository.
func lastArchived(repo *git.Repository) (time.Time, error) {
	head, err := repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("resolve head: %w", err)
	}
	commitObj, err := repo.CommitObject(head.Hash())
	if err != nil {
		return time.Time{}, fmt.Errorf("load head commit: %w", err)
	}
	for _, line := range strings.Split(commitObj.Message, "\n") {
		if v, ok := strings.CutPrefix(line, timestampTrailer); ok {
			ts, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(v))
			if err != nil {
				return time.Time{}, fmt.Errorf("parse version timestamp: %w", err)
			}
			return ts, nil
		}
	}
	return time.Time{}, nil
}

func commitVersion(worktree *git.Worktree, root string, v history.Version) (plumbing.Hash, error) {
	payload, err := json.MarshalIndent(meta{
		Description: v.Description,
		OutputType:  v.OutputType,
		GrantType:   v.GrantType,
		Timestamp:   v.Timestamp,
	}, "", "  ")
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("marshal version meta: %w", err)
	}
	if err := os.WriteFile(filepath.Join(root, documentFile), []byte(v.Content), 0o644); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("write %s: %w", documentFile, err)
	}
	if err := os.WriteFile(filepath.Join(root, metaFile), append(payload, '\n'), 0o644); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("write %s: %w", metaFile, err)
	}
	for _, name := range []string{documentFile, metaFile} {
		if _, err := worktree.Add(name); err != nil {
			return plumbing.ZeroHash, fmt.Errorf("git add %s: %w", name, err)
		}
	}

	message := fmt.Sprintf("%s\n\n%s%s\n", v.Description, timestampTrailer, v.Timestamp.UTC().Format(time.RFC3339Nano))
	hash, err := worktree.Commit(message, &git.CommitOptions{
		AllowEmptyCommits: true,
		Author: &object.Signature{
			Name:  authorName,
			Email: authorEmail,
			When:  v.Timestamp,
		},
	})
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("commit version: %w", err)
	}
	return hash, nil
}

func toCommitInfo(commitObj *object.Commit) CommitInfo {
	description, _, _ := strings.Cut(commitObj.Message, "\n")
	return CommitInfo{
		Hash:        commitObj.Hash.String()[:7],
		Description: description,
		Author:      commitObj.Author.Name,
		CreatedAt:   commitObj.Author.When,
	}
}

func resolveHash(repo *git.Repository, hash string) (plumbing.Hash, error) {
	if len(hash) == 40 {
		return plumbing.NewHash(hash), nil
	}
	resolved, err := repo.ResolveRevision(plumbing.Revision(hash))
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("%w: %s: %v", ErrUnknownCommit, hash, err)
	}
	return *resolved, nil
}
