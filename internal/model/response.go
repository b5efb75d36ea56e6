package model

type ReviseResponse struct {
	RevisedContent string `json:"revisedContent"`
}

type SynthesizeResponse struct {
	SynthesizedContent string `json:"synthesizedContent"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Kind    string `json:"kind,omitempty"`
}
