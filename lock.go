package bundler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// DefaultLockFile is the lock file name used when none is configured.
const DefaultLockFile = "helios-lock.json"

// Lock pins validator names to the lowercase hex digest they were first
// built with.
type Lock map[string]string

// Clone returns an independent copy of l.
func (l Lock) Clone() Lock {
	if l == nil {
		return Lock{}
	}
	return maps.Clone(l)
}

// validate checks that every digest is hex and lowercases it.
func (l Lock) validate() error {
	for name, digest := range l {
		if _, err := hexutil.Decode("0x" + digest); err != nil {
			return fmt.Errorf("bundler: lock entry %s: invalid digest %q: %w", name, digest, err)
		}
		l[name] = strings.ToLower(digest)
	}
	return nil
}

// LockStore persists a Lock between builds.
type LockStore interface {
	// Load returns the stored lock, or an empty lock if none exists.
	Load() (Lock, error)
	Save(Lock) error
}

// FileLockStore keeps the lock in a JSON file.
type FileLockStore struct {
	Path string
}

// NewFileLockStore creates a store for the file at path. An empty path
// selects DefaultLockFile.
func NewFileLockStore(path string) *FileLockStore {
	if path == "" {
		path = DefaultLockFile
	}
	return &FileLockStore{Path: path}
}

// Load implements LockStore. A missing file is an empty lock.
func (s *FileLockStore) Load() (Lock, error) {
	b, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return Lock{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("bundler: reading lock: %w", err)
	}

	var l Lock
	if err := json.Unmarshal(b, &l); err != nil {
		return nil, fmt.Errorf("bundler: parsing lock %s: %w", s.Path, err)
	}
	if l == nil {
		l = Lock{}
	}
	if err := l.validate(); err != nil {
		return nil, err
	}
	return l, nil
}

// Save implements LockStore. The file is pretty-printed with sorted keys.
func (s *FileLockStore) Save(l Lock) error {
	if l == nil {
		l = Lock{}
	}
	b, err := json.MarshalIndent(l, "", "    ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	if err := os.WriteFile(s.Path, b, 0o644); err != nil {
		return fmt.Errorf("bundler: writing lock: %w", err)
	}
	return nil
}

// MemoryLockStore keeps the lock in memory.
type MemoryLockStore struct {
	mu    sync.Mutex
	lock  Lock
	saves int
}

// NewMemoryLockStore creates a store preloaded with initial.
func NewMemoryLockStore(initial Lock) *MemoryLockStore {
	return &MemoryLockStore{lock: initial.Clone()}
}

// Load implements LockStore.
func (s *MemoryLockStore) Load() (Lock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lock.Clone(), nil
}

// Save implements LockStore.
func (s *MemoryLockStore) Save(l Lock) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lock = l.Clone()
	s.saves++
	return nil
}

// Saves returns how many times Save was called.
func (s *MemoryLockStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
