package workspace

// SynthesizeSectionRequest asks for speech for one section. An empty Text
// uses the section body. With Wait the call returns after synthesis
// finished; otherwise it returns once the section is marked synthesizing.
type SynthesizeSectionRequest struct {
	ID   string `param:"id" validate:"required,max=128"`
	Text string `json:"text,omitempty" validate:"max=20000"`
	Wait bool   `json:"wait,omitempty"`
}

// ParseScriptRequest carries markdown to split into sections
type ParseScriptRequest struct {
	Markdown string `json:"markdown" validate:"required"`
}
