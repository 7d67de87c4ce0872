package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang/snappy"
)

const (
	indexFile = "analyses.json"
	blobDir   = "dumps"
)

// FileStore keeps a JSON index of records in dataDir and each raw dump as a
// snappy-compressed blob beside it.
type FileStore struct {
	dataDir string
	mu      sync.RWMutex
	index   map[string]*Record // RawNodeData is always empty here
	now     func() time.Time
}

// NewFileStore opens or creates a store rooted at dataDir
func NewFileStore(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Join(dataDir, blobDir), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	s := &FileStore{
		dataDir: dataDir,
		index:   make(map[string]*Record),
		now:     time.Now,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Create writes the dump blob, then the index
func (s *FileStore) Create(_ context.Context, r *Record) (string, error) {
	if err := prepare(r, s.now()); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.index[r.ID]; exists {
		return "", fmt.Errorf("%w: duplicate id %s", ErrInvalidRecord, r.ID)
	}
	if err := s.writeBlob(r.ID, r.RawNodeData); err != nil {
		return "", err
	}

	entry := r.clone()
	entry.RawNodeData = ""
	s.index[r.ID] = entry
	if err := s.save(); err != nil {
		delete(s.index, r.ID)
		_ = os.Remove(s.blobPath(r.ID))
		return "", err
	}
	return r.ID, nil
}

// Get retrieves a record and its dump
func (s *FileStore) Get(_ context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	raw, err := s.readBlob(id)
	if err != nil {
		return nil, err
	}
	r := entry.clone()
	r.RawNodeData = raw
	return r, nil
}

// ListByUser returns a user's records newest first, dumps included
func (s *FileStore) ListByUser(_ context.Context, userID string) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Record, 0)
	for id, entry := range s.index {
		if entry.UserID != userID {
			continue
		}
		raw, err := s.readBlob(id)
		if err != nil {
			return nil, err
		}
		r := entry.clone()
		r.RawNodeData = raw
		out = append(out, r)
	}
	newestFirst(out)
	return out, nil
}

// Update applies a partial update, rewriting the blob only when the dump changes
func (s *FileStore) Update(_ context.Context, id string, p Patch) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	// a new dump is staged beside the live blob and only moved into place
	// once the index that describes it is saved
	previous := entry.clone()
	staged := ""
	if p.RawNodeData != nil {
		staged = s.blobPath(id) + ".pending"
		if err := s.writeBlobTo(staged, id, *p.RawNodeData); err != nil {
			return nil, err
		}
	}
	p.apply(entry)
	entry.RawNodeData = ""
	if err := s.save(); err != nil {
		s.index[id] = previous
		if staged != "" {
			_ = os.Remove(staged)
		}
		return nil, err
	}
	if staged != "" {
		if err := os.Rename(staged, s.blobPath(id)); err != nil {
			return nil, fmt.Errorf("commit dump %s: %w", id, err)
		}
	}

	raw, err := s.readBlob(id)
	if err != nil {
		return nil, err
	}
	r := entry.clone()
	r.RawNodeData = raw
	return r, nil
}

// Ping checks the data directory is still reachable
func (s *FileStore) Ping(context.Context) error {
	_, err := os.Stat(s.dataDir)
	return err
}

// Close is a no-op; every write is flushed before returning
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) blobPath(id string) string {
	return filepath.Join(s.dataDir, blobDir, id+".sz")
}

func (s *FileStore) writeBlob(id, raw string) error {
	return s.writeBlobTo(s.blobPath(id), id, raw)
}

func (s *FileStore) writeBlobTo(path, id, raw string) error {
	compressed := snappy.Encode(nil, []byte(raw))
	if err := writeFileAtomic(path, compressed); err != nil {
		return fmt.Errorf("write dump %s: %w", id, err)
	}
	return nil
}

func (s *FileStore) readBlob(id string) (string, error) {
	compressed, err := os.ReadFile(s.blobPath(id))
	if err != nil {
		return "", fmt.Errorf("read dump %s: %w", id, err)
	}
	raw, err := snappy.Decode(nil, compressed)
	if err != nil {
		return "", fmt.Errorf("decompress dump %s: %w", id, err)
	}
	return string(raw), nil
}

// save persists the index to disk
func (s *FileStore) save() error {
	data, err := json.MarshalIndent(s.index, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(filepath.Join(s.dataDir, indexFile), data)
}

// load reads the index from disk
func (s *FileStore) load() error {
	data, err := os.ReadFile(filepath.Join(s.dataDir, indexFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read index: %w", err)
	}
	if err := json.Unmarshal(data, &s.index); err != nil {
		return fmt.Errorf("decode index: %w", err)
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
