package notestore

import (
	"sync"
	"time"
)

type MemoryStore struct {
	collections map[string][]Note
	mu          sync.RWMutex
	now         func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string][]Note),
		now:         time.Now,
	}
}

func (m *MemoryStore) Init() error {
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}

func (m *MemoryStore) Backup() (string, error) {
	return "", nil
}

func (m *MemoryStore) List(collection string) ([]Note, error) {
	if err := validateCollection(collection); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	return cloneNotes(m.collections[collection]), nil
}

func (m *MemoryStore) Get(collection string, id int64) (Note, error) {
	if err := validateCollection(collection); err != nil {
		return Note{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	notes := m.collections[collection]
	i := indexOf(notes, id)
	if i < 0 {
		return Note{}, ErrNoteNotFound
	}
	return notes[i], nil
}

func (m *MemoryStore) Add(collection, title, content string) (Note, error) {
	if err := validateCollection(collection); err != nil {
		return Note{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	notes := m.collections[collection]
	note := Note{ID: nextID(notes, m.now()), Title: title, Content: content}
	m.collections[collection] = append(notes, note)
	return note, nil
}

func (m *MemoryStore) Update(collection string, note Note) error {
	if err := validateCollection(collection); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	notes := m.collections[collection]
	i := indexOf(notes, note.ID)
	if i < 0 {
		return ErrNoteNotFound
	}
	notes[i] = note
	return nil
}

func (m *MemoryStore) Delete(collection string, id int64) error {
	if err := validateCollection(collection); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	notes := m.collections[collection]
	i := indexOf(notes, id)
	if i < 0 {
		return ErrNoteNotFound
	}
	m.collections[collection] = append(notes[:i:i], notes[i+1:]...)
	return nil
}

func (m *MemoryStore) Replace(collection string, notes []Note) error {
	if err := validateCollection(collection); err != nil {
		return err
	}
	if err := checkUniqueIDs(notes); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.collections[collection] = cloneNotes(notes)
	return nil
}

func checkUniqueIDs(notes []Note) error {
	seen := make(map[int64]struct{}, len(notes))
	for _, n := range notes {
		if _, ok := seen[n.ID]; ok {
			return ErrDuplicateID
		}
		seen[n.ID] = struct{}{}
	}
	return nil
}
