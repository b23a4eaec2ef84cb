package persistence

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
)

var validKey = regexp.MustCompile(`^[A-Za-z0-9_.:-]+$`)

// FileKV stores each document as <dir>/<key>.json.
type FileKV struct {
	mu  sync.Mutex
	dir string
}

// OpenFileKV creates dir if needed.
func OpenFileKV(dir string) (*FileKV, error) {
	if dir == "" {
		return nil, errNotConfigured
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileKV{dir: dir}, nil
}

func (f *FileKV) path(key string) (string, error) {
	if !validKey.MatchString(key) {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(f.dir, key+".json"), nil
}

func (f *FileKV) Load(_ context.Context, key string) ([]byte, bool, error) {
	path, err := f.path(key)
	if err != nil {
		return nil, false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// fileWrite is one document of a Save batch. tmp is empty for a removal,
// backup is empty when the document did not exist before.
type fileWrite struct {
	final   string
	tmp     string
	backup  string
	applied bool
}

// Save stages every document in a temp file and backs up every existing
// target before touching any of them. If a rename or removal fails, the
// targets already changed are restored, so the batch lands whole or not at
// all.
func (f *FileKV) Save(_ context.Context, docs map[string][]byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	batch := make([]*fileWrite, 0, len(docs))
	defer func() {
		for _, w := range batch {
			if w.tmp != "" {
				_ = os.Remove(w.tmp)
			}
			if w.backup != "" {
				_ = os.Remove(w.backup)
			}
		}
	}()

	for key, data := range docs {
		path, err := f.path(key)
		if err != nil {
			return err
		}
		w := &fileWrite{final: path}
		batch = append(batch, w)
		if data == nil {
			continue
		}
		if w.tmp, err = stage(f.dir, key, data); err != nil {
			return err
		}
	}

	for _, w := range batch {
		if err := backup(w); err != nil {
			return err
		}
	}

	for _, w := range batch {
		var err error
		if w.tmp != "" {
			err = os.Rename(w.tmp, w.final)
			if err == nil {
				w.tmp = ""
			}
		} else {
			err = os.Remove(w.final)
			if errors.Is(err, os.ErrNotExist) {
				err = nil
			}
		}
		if err != nil {
			return errors.Join(fmt.Errorf("commit %s: %w", filepath.Base(w.final), err), rollback(batch))
		}
		w.applied = true
	}
	return nil
}

func stage(dir, key string, data []byte) (string, error) {
	tmp, err := os.CreateTemp(dir, key+".*.tmp")
	if err != nil {
		return "", err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return "", err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return "", err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return "", err
	}
	return name, nil
}

// backup hard-links the current target to <target>.bak, copying when the
// filesystem has no hard links.
func backup(w *fileWrite) error {
	info, err := os.Lstat(w.final)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", filepath.Base(w.final))
	}
	bak := w.final + ".bak"
	if err := os.Remove(bak); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := os.Link(w.final, bak); err != nil {
		data, readErr := os.ReadFile(w.final)
		if readErr != nil {
			return readErr
		}
		if err := os.WriteFile(bak, data, 0o644); err != nil {
			return err
		}
	}
	w.backup = bak
	return nil
}

// rollback puts every applied target back the way it was before Save.
func rollback(batch []*fileWrite) error {
	var errs []error
	for _, w := range batch {
		if !w.applied {
			continue
		}
		if w.backup != "" {
			if err := os.Rename(w.backup, w.final); err != nil {
				errs = append(errs, fmt.Errorf("restore %s: %w", filepath.Base(w.final), err))
				continue
			}
			w.backup = ""
		} else if err := os.Remove(w.final); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("restore %s: %w", filepath.Base(w.final), err))
		}
	}
	return errors.Join(errs...)
}

func (f *FileKV) Ping(context.Context) error {
	_, err := os.Stat(f.dir)
	return err
}

func (f *FileKV) Close() error { return nil }
