package presenter

import (
	dto "github.com/johnquangdev/script-workspace/internal/adapter/dto/workspace"
	"github.com/johnquangdev/script-workspace/internal/domain/entities"
)

// ToWorkspaceResponse converts a workspace view to its response DTO
func ToWorkspaceResponse(v entities.WorkspaceView) *dto.WorkspaceResponse {
	sections := make([]dto.SectionResponse, len(v.Sections))
	for i, s := range v.Sections {
		sections[i] = *ToSectionResponse(s)
	}

	return &dto.WorkspaceResponse{
		Revision:              v.Revision,
		Transcript:            v.Transcript,
		TranscribedAudioURL:   v.TranscribedAudioURL,
		LastUploadedFileName:  v.LastUploadedFileName,
		BatchZipURL:           v.BatchZipURL,
		Sections:              sections,
		IsTranscribing:        v.IsTranscribing,
		TranscribeError:       v.TranscribeError,
		UploadProgress:        v.UploadProgress,
		TranscribeStatusLabel: v.TranscribeStatusLabel,
		IsGenerating:          v.IsGenerating,
		GenerateError:         v.GenerateError,
		IsBatching:            v.IsBatching,
		BatchError:            v.BatchError,
	}
}

// ToSectionResponse converts a script section; a missing audio URL is null
func ToSectionResponse(s entities.ScriptSection) *dto.SectionResponse {
	response := &dto.SectionResponse{
		ID:             s.ID,
		Title:          s.Title,
		Body:           s.Body,
		IsSynthesizing: s.IsSynthesizing,
		Error:          s.Error,
	}
	if s.HasAudio() {
		audioURL := s.AudioURL
		response.AudioURL = &audioURL
	}
	return response
}

// FindSection returns the section with id from the view
func FindSection(v entities.WorkspaceView, id string) *dto.SectionResponse {
	for _, s := range v.Sections {
		if s.ID == id {
			return ToSectionResponse(s)
		}
	}
	return nil
}

// ToParseScriptResponse converts parser output
func ToParseScriptResponse(parsed []entities.ParsedSection) *dto.ParseScriptResponse {
	sections := make([]dto.ParsedSectionResponse, len(parsed))
	for i, p := range parsed {
		sections[i] = dto.ParsedSectionResponse{Title: p.Title, Body: p.Body}
	}
	return &dto.ParseScriptResponse{Count: len(sections), Sections: sections}
}
