package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"

	"translation-history/internal/domain"
)

// Timestamp accepts a JSON string or number. Anything else is kept as raw
// text so validation can report it.
type Timestamp string

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Timestamp(s)
		return nil
	}
	*t = Timestamp(data)
	return nil
}

// SaveInput is a client-supplied translation record. Fields are pointers so
// an absent or null field can be told apart from an empty string.
type SaveInput struct {
	OriginalText   *string    `json:"original_text" validate:"required"`
	TranslatedText *string    `json:"translated_text" validate:"required"`
	SourceLang     *string    `json:"source_lang" validate:"required"`
	TargetLang     *string    `json:"target_lang" validate:"required"`
	Timestamp      *Timestamp `json:"timestamp" validate:"required"`
}

// Validate reports the first missing field, in declaration order, then
// checks that the timestamp can serve as a sort key.
func (in SaveInput) Validate() error {
	if err := validateStruct(in, describeSaveError); err != nil {
		return err
	}
	if _, err := domain.ParseTimestamp(string(*in.Timestamp)); err != nil {
		return InvalidInput("invalid_timestamp", fmt.Sprintf("Invalid timestamp: %s", string(*in.Timestamp)))
	}
	return nil
}

func describeSaveError(fe validator.FieldError) *Error {
	if fe.Tag() == "required" {
		return InvalidInput("missing_"+fe.Field(), "Missing required field: "+fe.Field())
	}
	return InvalidInput("invalid_"+fe.Field(), "Invalid value for field: "+fe.Field())
}

type SaveService struct {
	store HistoryWriter
}

func NewSaveService(s HistoryWriter) (*SaveService, error) {
	if s == nil {
		return nil, errors.New("usecase: history store must not be nil")
	}
	return &SaveService{store: s}, nil
}

// Save stores the client's record under ownerID. The owner is checked before
// the payload. Only presence and the timestamp format are checked; text and
// language fields are stored as sent.
func (s *SaveService) Save(ctx context.Context, ownerID string, in SaveInput) (domain.TranslationRecord, error) {
	if ownerID == "" {
		return domain.TranslationRecord{}, Unauthorized("missing_owner")
	}
	if err := in.Validate(); err != nil {
		return domain.TranslationRecord{}, err
	}

	ts, _ := domain.ParseTimestamp(string(*in.Timestamp))
	rec := domain.TranslationRecord{
		OwnerID:        ownerID,
		Timestamp:      strconv.FormatInt(ts, 10),
		OriginalText:   *in.OriginalText,
		TranslatedText: *in.TranslatedText,
		SourceLang:     *in.SourceLang,
		TargetLang:     *in.TargetLang,
	}
	if err := s.store.PutRecord(ctx, rec); err != nil {
		return domain.TranslationRecord{}, storeWriteError(err, "Failed to save translation")
	}
	return rec, nil
}
