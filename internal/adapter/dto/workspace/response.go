package workspace

// SectionResponse represents a script section in responses
type SectionResponse struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Body           string  `json:"body"`
	AudioURL       *string `json:"audioUrl"`
	IsSynthesizing bool    `json:"isSynthesizing"`
	Error          *string `json:"error"`
}

// WorkspaceResponse is the full client-visible workspace
type WorkspaceResponse struct {
	Revision             uint64  `json:"revision"`
	Transcript           string  `json:"transcript"`
	TranscribedAudioURL  *string `json:"transcribedAudioUrl"`
	LastUploadedFileName *string `json:"lastUploadedFileName"`
	BatchZipURL          *string `json:"batchZipUrl"`

	Sections []SectionResponse `json:"sections"`

	IsTranscribing        bool     `json:"isTranscribing"`
	TranscribeError       *string  `json:"transcribeError"`
	UploadProgress        *float64 `json:"uploadProgress"`
	TranscribeStatusLabel *string  `json:"transcribeStatusLabel"`
	IsGenerating          bool     `json:"isGenerating"`
	GenerateError         *string  `json:"generateError"`
	IsBatching            bool     `json:"isBatching"`
	BatchError            *string  `json:"batchError"`
}

// SynthesizeSectionResponse reports whether synthesis started and the
// section as it is after the call
type SynthesizeSectionResponse struct {
	Started bool             `json:"started"`
	Section *SectionResponse `json:"section,omitempty"`
}

// ParsedSectionResponse is one parsed section without identity
type ParsedSectionResponse struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// ParseScriptResponse is the result of a stateless parse
type ParseScriptResponse struct {
	Count    int                     `json:"count"`
	Sections []ParsedSectionResponse `json:"sections"`
}
