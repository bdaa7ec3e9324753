package entities

// Transcription status labels shown next to the upload progress.
const (
	StatusLabelTranscribing = "transcribing"
	StatusLabelError        = "error"
)

// WorkspaceView is everything a client can observe: the persisted snapshot
// plus transient activity flags and the named errors of each operation.
// Transient fields are never persisted.
type WorkspaceView struct {
	WorkspaceSnapshot

	Revision uint64 `json:"revision"`

	IsTranscribing        bool     `json:"isTranscribing"`
	TranscribeError       *string  `json:"transcribeError"`
	UploadProgress        *float64 `json:"uploadProgress"`
	TranscribeStatusLabel *string  `json:"transcribeStatusLabel"`

	IsGenerating  bool    `json:"isGenerating"`
	GenerateError *string `json:"generateError"`

	IsBatching bool    `json:"isBatching"`
	BatchError *string `json:"batchError"`
}
