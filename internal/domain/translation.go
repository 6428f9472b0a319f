package domain

// TranslationRecord is a single persisted translation owned by one user.
// OwnerID and Timestamp together identify the record.
type TranslationRecord struct {
	OwnerID        string `json:"user_id"`
	Timestamp      string `json:"timestamp"`
	OriginalText   string `json:"original_text"`
	TranslatedText string `json:"translated_text"`
	SourceLang     string `json:"source_lang"`
	TargetLang     string `json:"target_lang"`
}

// HistoryItem is the client-facing projection of a TranslationRecord.
type HistoryItem struct {
	OriginalText   string `json:"originalText"`
	TranslatedText string `json:"translatedText"`
	FromLanguage   string `json:"fromLanguage"`
	ToLanguage     string `json:"toLanguage"`
	Timestamp      int64  `json:"timestamp"`
}

// TranslateRequest is what the translation capability is asked to do.
// An empty SourceLang requests automatic detection.
type TranslateRequest struct {
	Text       string
	SourceLang string
	TargetLang string
}

// TranslateResult carries the translated text and the source language the
// capability used or detected. SourceLang may be empty if none was reported.
type TranslateResult struct {
	TranslatedText string
	SourceLang     string
}
