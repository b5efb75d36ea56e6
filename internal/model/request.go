package model

import (
	"bytes"
	"encoding/json"
)

// ReviseRequest is the body of POST /revise.
type ReviseRequest struct {
	Content string `json:"content"`
	Mode    string `json:"mode"`
	Prompt  string `json:"prompt,omitempty"`
}

// SynthesizeRequest is the body of POST /synthesize.
type SynthesizeRequest struct {
	Notes  []NoteInput `json:"notes"`
	Mode   string      `json:"mode"`
	Prompt string      `json:"prompt,omitempty"`
}

// NoteInput is one note sent for synthesis. Title and content are kept raw
// so a non-string value can be reported as an invalid note rather than a
// malformed body; the id is accepted but never forwarded to the model.
type NoteInput struct {
	ID      json.RawMessage `json:"id,omitempty"`
	Title   json.RawMessage `json:"title,omitempty"`
	Content json.RawMessage `json:"content"`
}

// NewNoteInput builds a NoteInput with a string content.
func NewNoteInput(id int64, title, content string) NoteInput {
	idRaw, _ := json.Marshal(id)
	contentRaw, _ := json.Marshal(content)
	n := NoteInput{ID: idRaw, Content: contentRaw}
	if title != "" {
		n.Title, _ = json.Marshal(title)
	}
	return n
}

// Text returns the note content and whether it is a JSON string.
func (n NoteInput) Text() (string, bool) {
	return rawString(n.Content)
}

// TitleText returns the note title. An absent or null title is empty; any
// other non-string value reports false.
func (n NoteInput) TitleText() (string, bool) {
	raw := bytes.TrimSpace(n.Title)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", true
	}
	return rawString(raw)
}

func rawString(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}
