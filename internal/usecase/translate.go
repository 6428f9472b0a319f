package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"translation-history/internal/domain"
	"translation-history/internal/repository"
)

type Translator interface {
	Translate(ctx context.Context, req domain.TranslateRequest) (domain.TranslateResult, error)
}

type HistoryWriter interface {
	PutRecord(ctx context.Context, rec domain.TranslationRecord) error
}

type upstreamCoder interface {
	UpstreamCode() string
}

// TranslateInput is the client request for Translate-and-Record.
type TranslateInput struct {
	Text       string `json:"text" validate:"required,notblank,maxtextbytes"`
	SourceLang string `json:"source_lang" validate:"sourcelang"`
	TargetLang string `json:"target_lang" validate:"targetlang"`
}

// Normalize applies the language defaults. A missing or null source means
// detection; a missing target means English.
func (in TranslateInput) Normalize() TranslateInput {
	if in.SourceLang == "" {
		in.SourceLang = domain.AutoDetect
	}
	if in.TargetLang == "" {
		in.TargetLang = domain.DefaultTargetLang
	}
	return in
}

// Validate checks a normalized input. The first failing rule wins.
func (in TranslateInput) Validate() error {
	if err := validateStruct(in, describeTranslateError); err != nil {
		return err
	}
	if in.SourceLang != domain.AutoDetect && in.SourceLang == in.TargetLang {
		return InvalidInput("same_language", "Source and target languages cannot be the same")
	}
	return nil
}

func describeTranslateError(fe validator.FieldError) *Error {
	switch fe.Field() {
	case "text":
		switch fe.Tag() {
		case "required":
			return InvalidInput("missing_text", `Missing "text" field`)
		case "notblank":
			return InvalidInput("blank_text", "Text must not be blank")
		case "maxtextbytes":
			return InvalidInput("text_too_long", fmt.Sprintf("Text exceeds the %d byte limit", MaxTextBytes))
		}
	case "source_lang":
		return InvalidInput("unsupported_source_language", fmt.Sprintf("Unsupported source language: %v", fe.Value()))
	case "target_lang":
		return InvalidInput("unsupported_target_language", fmt.Sprintf("Unsupported target language: %v", fe.Value()))
	}
	return InvalidInput("invalid_"+fe.Field(), "Invalid value for field: "+fe.Field())
}

type TranslateService struct {
	translator Translator
	store      HistoryWriter
}

func NewTranslateService(t Translator, s HistoryWriter) (*TranslateService, error) {
	if t == nil {
		return nil, errors.New("usecase: translator must not be nil")
	}
	if s == nil {
		return nil, errors.New("usecase: history store must not be nil")
	}
	return &TranslateService{translator: t, store: s}, nil
}

// Translate validates in, performs one translation, and records it under
// ownerID. The returned record is what was stored.
func (s *TranslateService) Translate(ctx context.Context, ownerID string, in TranslateInput) (domain.TranslationRecord, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return domain.TranslationRecord{}, err
	}
	if ownerID == "" {
		return domain.TranslationRecord{}, Unauthorized("missing_owner")
	}

	req := domain.TranslateRequest{Text: in.Text, TargetLang: in.TargetLang}
	if in.SourceLang != domain.AutoDetect {
		req.SourceLang = in.SourceLang
	}

	res, err := s.translator.Translate(ctx, req)
	if err != nil {
		return domain.TranslationRecord{}, newError(ErrorUpstream, translateReason(err), "Translation failed", err)
	}

	source := res.SourceLang
	if source == "" {
		source = in.SourceLang
	}
	if source == domain.AutoDetect {
		return domain.TranslationRecord{}, newError(ErrorUpstream, "translate_no_detected_language", "Translation failed",
			errors.New("translation service did not report the detected source language"))
	}

	rec := domain.TranslationRecord{
		OwnerID:        ownerID,
		Timestamp:      domain.FormatTimestamp(now()),
		OriginalText:   in.Text,
		TranslatedText: res.TranslatedText,
		SourceLang:     source,
		TargetLang:     in.TargetLang,
	}
	if err := s.store.PutRecord(ctx, rec); err != nil {
		return domain.TranslationRecord{}, storeWriteError(err, "Failed to save to database")
	}
	return rec, nil
}

func translateReason(err error) string {
	var coded upstreamCoder
	if !errors.As(err, &coded) {
		return "translate_error"
	}
	switch coded.UpstreamCode() {
	case "UnsupportedLanguagePairException":
		return "translate_unsupported_pair"
	case "TextSizeLimitExceededException":
		return "translate_text_too_long"
	case "DetectedLanguageLowConfidenceException":
		return "translate_low_confidence"
	case "TooManyRequestsException", "ThrottlingException":
		return "translate_throttled"
	default:
		return "translate_error"
	}
}

func storeWriteError(err error, message string) *Error {
	if errors.Is(err, repository.ErrRecordExists) {
		return newError(ErrorConflict, "dynamodb_duplicate_timestamp", "A translation already exists for this timestamp", err)
	}
	return newError(ErrorInternal, "dynamodb_write_error", message, err)
}

var now = time.Now
