package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileExt is the suffix of every record file
const FileExt = ".json"

// rename is swapped in tests to fail part way through a batch
var rename = os.Rename

// FileStore keeps one JSON file per key in a directory. Writes go to a temp
// file first and are renamed into place, so readers never see a torn record.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// NewFileStore creates dir if needed and returns a store rooted there
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("file store: empty directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("file store: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory holding the record files
func (s *FileStore) Dir() string {
	return s.dir
}

// KeyForPath maps a record file path back to its key
func KeyForPath(path string) (string, bool) {
	base := filepath.Base(path)
	if !strings.HasSuffix(base, FileExt) || strings.HasPrefix(base, ".") {
		return "", false
	}
	return strings.TrimSuffix(base, FileExt), true
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+FileExt)
}

func (s *FileStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ValidateKey(key); err != nil {
		return nil, false, err
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("file store get %s: %w", key, err)
	}
	return data, true, nil
}

// Put stages every entry in a temp file before renaming any of them. If a
// rename fails, the records already replaced in this batch are put back to
// their previous content, or removed when they did not exist before.
func (s *FileStore) Put(ctx context.Context, entries ...Entry) error {
	if err := validateEntries(entries); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	staged := make([]string, 0, len(entries))
	cleanup := func() {
		for _, tmp := range staged {
			_ = os.Remove(tmp)
		}
	}

	for _, e := range entries {
		tmp, err := writeTemp(s.dir, e)
		if err != nil {
			cleanup()
			return fmt.Errorf("file store put %s: %w", e.Key, err)
		}
		staged = append(staged, tmp)
	}

	previous := make([]*Entry, len(entries))
	for i, e := range entries {
		data, err := os.ReadFile(s.path(e.Key))
		switch {
		case err == nil:
			previous[i] = &Entry{Key: e.Key, Value: data}
		case errors.Is(err, os.ErrNotExist):
		default:
			cleanup()
			return fmt.Errorf("file store put %s: %w", e.Key, err)
		}
	}

	for i, e := range entries {
		if err := rename(staged[i], s.path(e.Key)); err != nil {
			cleanup()
			err = fmt.Errorf("file store put %s: %w", e.Key, err)
			if rbErr := s.restore(entries[:i], previous[:i]); rbErr != nil {
				return errors.Join(err, rbErr)
			}
			return err
		}
	}
	return nil
}

// restore puts back the records a failed batch already replaced
func (s *FileStore) restore(replaced []Entry, previous []*Entry) error {
	var errs []error
	for i := len(replaced) - 1; i >= 0; i-- {
		key := replaced[i].Key
		if previous[i] == nil {
			if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
				errs = append(errs, fmt.Errorf("file store restore %s: %w", key, err))
			}
			continue
		}
		tmp, err := writeTemp(s.dir, *previous[i])
		if err == nil {
			err = os.Rename(tmp, s.path(key))
			if err != nil {
				_ = os.Remove(tmp)
			}
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("file store restore %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

func writeTemp(dir string, e Entry) (string, error) {
	f, err := os.CreateTemp(dir, "."+e.Key+"-*.tmp")
	if err != nil {
		return "", err
	}
	name := f.Name()
	if _, err := f.Write(e.Value); err != nil {
		_ = f.Close()
		_ = os.Remove(name)
		return "", err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(name)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(name)
		return "", err
	}
	return name, nil
}

func (s *FileStore) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		if err := ValidateKey(key); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("file store delete %s: %w", key, err)
		}
	}
	return nil
}

func (s *FileStore) Close() error {
	return nil
}
