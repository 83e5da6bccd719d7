package types

// Citation is a grounding reference the generation service reports for its text.
type Citation struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}
