package notestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Mikele-Kochas/SmartNotebook/pkg/logger"
)

// DiskStore persists each collection as one JSON array file. Writes go to a
// temp file first and are renamed into place.
type DiskStore struct {
	dataDir string
	mu      sync.RWMutex
	cache   map[string][]Note
	now     func() time.Time
}

func NewDiskStore(dataDir string) *DiskStore {
	return &DiskStore{
		dataDir: dataDir,
		cache:   make(map[string][]Note),
		now:     time.Now,
	}
}

func (d *DiskStore) Init() error {
	if err := d.createDirectories(); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageInit, err)
	}

	entries, err := os.ReadDir(d.collectionsDir())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageInit, err)
	}
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".json")
		if e.IsDir() || !ok || validateCollection(name) != nil {
			continue
		}
		notes, err := d.loadCollection(name)
		if err != nil {
			logger.Errorf("Failed to load collection %s: %v", name, err)
			continue
		}
		d.cache[name] = notes
	}

	logger.Debugf("Note store initialized at %s with %d collections", d.dataDir, len(d.cache))
	return nil
}

func (d *DiskStore) createDirectories() error {
	dirs := []string{
		d.dataDir,
		d.collectionsDir(),
		filepath.Join(d.dataDir, "backup"),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

func (d *DiskStore) collectionsDir() string {
	return filepath.Join(d.dataDir, "collections")
}

func (d *DiskStore) collectionPath(collection string) string {
	return filepath.Join(d.collectionsDir(), collection+".json")
}

func (d *DiskStore) loadCollection(collection string) ([]Note, error) {
	data, err := os.ReadFile(d.collectionPath(collection))
	if errors.Is(err, fs.ErrNotExist) {
		return []Note{}, nil
	}
	if err != nil {
		return nil, err
	}

	var notes []Note
	if err := json.Unmarshal(data, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (d *DiskStore) saveCollection(collection string, notes []Note) error {
	data, err := json.MarshalIndent(notes, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFileOperation, err)
	}

	path := d.collectionPath(collection)
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("%w: %v", ErrFileOperation, err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("%w: %v", ErrFileOperation, err)
	}
	return nil
}

// notes returns the cached collection, loading it on first use. Callers hold d.mu.
func (d *DiskStore) notes(collection string) ([]Note, error) {
	if notes, ok := d.cache[collection]; ok {
		return notes, nil
	}
	notes, err := d.loadCollection(collection)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileOperation, err)
	}
	d.cache[collection] = notes
	return notes, nil
}

func (d *DiskStore) commit(collection string, notes []Note) error {
	if err := d.saveCollection(collection, notes); err != nil {
		return err
	}
	d.cache[collection] = notes
	return nil
}

func (d *DiskStore) List(collection string) ([]Note, error) {
	if err := validateCollection(collection); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	notes, err := d.notes(collection)
	if err != nil {
		return nil, err
	}
	return cloneNotes(notes), nil
}

func (d *DiskStore) Get(collection string, id int64) (Note, error) {
	if err := validateCollection(collection); err != nil {
		return Note{}, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	notes, err := d.notes(collection)
	if err != nil {
		return Note{}, err
	}
	i := indexOf(notes, id)
	if i < 0 {
		return Note{}, ErrNoteNotFound
	}
	return notes[i], nil
}

func (d *DiskStore) Add(collection, title, content string) (Note, error) {
	if err := validateCollection(collection); err != nil {
		return Note{}, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	notes, err := d.notes(collection)
	if err != nil {
		return Note{}, err
	}
	note := Note{ID: nextID(notes, d.now()), Title: title, Content: content}
	updated := append(cloneNotes(notes), note)
	if err := d.commit(collection, updated); err != nil {
		return Note{}, err
	}
	return note, nil
}

func (d *DiskStore) Update(collection string, note Note) error {
	if err := validateCollection(collection); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	notes, err := d.notes(collection)
	if err != nil {
		return err
	}
	i := indexOf(notes, note.ID)
	if i < 0 {
		return ErrNoteNotFound
	}
	updated := cloneNotes(notes)
	updated[i] = note
	return d.commit(collection, updated)
}

func (d *DiskStore) Delete(collection string, id int64) error {
	if err := validateCollection(collection); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	notes, err := d.notes(collection)
	if err != nil {
		return err
	}
	i := indexOf(notes, id)
	if i < 0 {
		return ErrNoteNotFound
	}
	updated := make([]Note, 0, len(notes)-1)
	updated = append(updated, notes[:i]...)
	updated = append(updated, notes[i+1:]...)
	return d.commit(collection, updated)
}

func (d *DiskStore) Replace(collection string, notes []Note) error {
	if err := validateCollection(collection); err != nil {
		return err
	}
	if err := checkUniqueIDs(notes); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.commit(collection, cloneNotes(notes))
}

func (d *DiskStore) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cache = make(map[string][]Note)
	return nil
}

// Backup copies every collection file into a timestamped directory and
// returns its path.
func (d *DiskStore) Backup() (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	backupDir := filepath.Join(d.dataDir, "backup", fmt.Sprintf("backup_%d", d.now().Unix()))
	if err := os.MkdirAll(backupDir, 0755); err != nil {
		return "", fmt.Errorf("%w: %v", ErrFileOperation, err)
	}

	entries, err := os.ReadDir(d.collectionsDir())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFileOperation, err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		if err := copyFile(filepath.Join(d.collectionsDir(), e.Name()), filepath.Join(backupDir, e.Name())); err != nil {
			return "", fmt.Errorf("%w: %v", ErrFileOperation, err)
		}
	}

	logger.Infof("Backup completed: %s", backupDir)
	return backupDir, nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644)
}
