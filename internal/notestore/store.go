// Package notestore keeps notes in named collections, the way the notebook
// app keeps them in local key-value storage.
package notestore

import (
	"regexp"
	"time"
)

// DefaultCollection is the key the notebook app stores its notes under.
const DefaultCollection = "notes"

type Note struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

type Store interface {
	// Note management. Collections keep insertion order.
	List(collection string) ([]Note, error)
	Get(collection string, id int64) (Note, error)
	Add(collection, title, content string) (Note, error)
	Update(collection string, note Note) error
	Delete(collection string, id int64) error
	Replace(collection string, notes []Note) error

	// Store management
	Init() error
	Close() error
	Backup() (string, error)
}

var collectionName = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

func validateCollection(collection string) error {
	if !collectionName.MatchString(collection) {
		return ErrInvalidCollection
	}
	return nil
}

// nextID follows the app's millisecond-timestamp ids while staying unique
// within the collection.
func nextID(notes []Note, now time.Time) int64 {
	id := now.UnixMilli()
	for _, n := range notes {
		if n.ID >= id {
			id = n.ID + 1
		}
	}
	return id
}

func indexOf(notes []Note, id int64) int {
	for i, n := range notes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func cloneNotes(notes []Note) []Note {
	out := make([]Note, len(notes))
	copy(out, notes)
	return out
}
