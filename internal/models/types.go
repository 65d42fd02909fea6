package models

import "time"

type TranslationRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source"`
	TargetLang string `json:"target"`
}

type TranslationResult struct {
	TranslatedText string `json:"translatedText"`
}

// HistoryEntry is a display record of one successful translation. Previews
// are truncated copies; the full text is only ever returned to the caller.
type HistoryEntry struct {
	OriginalPreview   string    `json:"originalPreview"`
	TranslatedPreview string    `json:"translatedPreview"`
	SourceLang        string    `json:"sourceLang"`
	TargetLang        string    `json:"targetLang"`
	CreatedAt         time.Time `json:"createdAt"`
}

type Language struct {
	Code  string `json:"code"`
	Voice string `json:"voice"`
}

type TranslateResponse struct {
	Result  string         `json:"result,omitempty"`
	Error   string         `json:"error,omitempty"`
	Code    string         `json:"code,omitempty"`
	History []HistoryEntry `json:"history"`
}
