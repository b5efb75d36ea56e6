package notestore

import "errors"

var (
	ErrNoteNotFound      = errors.New("note not found")
	ErrInvalidCollection = errors.New("invalid collection name")
	ErrDuplicateID       = errors.New("duplicate note id")
	ErrStorageInit       = errors.New("storage initialization failed")
	ErrFileOperation     = errors.New("file operation failed")
)
