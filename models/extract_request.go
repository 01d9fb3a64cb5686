package models

// ExtractRequest describes one extraction: either HTML to walk or a literal
// selection to use verbatim.
type ExtractRequest struct {
	URL   string
	Title string
	HTML  string

	// Selection, when non-blank, bypasses the DOM walk.
	Selection string

	// Optional knobs
	MaxLength int `json:"max_length,omitempty"`
}
