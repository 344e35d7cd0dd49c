package server

import (
	"github.com/sanonone/trustsum/pkg/engine"
)

// SummarizeRequest is the body of POST /summarize. Text and Texts are
// combined; each text is an independent token sequence.
type SummarizeRequest struct {
	Name      string   `json:"name,omitempty"`
	Text      string   `json:"text,omitempty"`
	Texts     []string `json:"texts,omitempty"`
	Reference string   `json:"reference,omitempty"`
	// Parameters overrides individual fields of the server's parameters.
	Parameters *engine.Params `json:"parameters,omitempty"`
}

// RunRequest is the body of POST /runs.
type RunRequest struct {
	Files   []string `json:"files,omitempty"`
	Exclude []string `json:"exclude,omitempty"`
}
