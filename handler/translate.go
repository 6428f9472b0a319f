package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"translation-history/internal/domain"
	"translation-history/internal/usecase"
)

type TranslateUseCase interface {
	Translate(ctx context.Context, ownerID string, in usecase.TranslateInput) (domain.TranslationRecord, error)
}

type translateRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
	// UserID is only read when the override is enabled, so its type is
	// not checked otherwise.
	UserID json.RawMessage `json:"user_id"`
}

type translateResponse struct {
	TranslatedText string `json:"translated_text"`
	SourceLang     string `json:"source_lang"`
	TargetLang     string `json:"target_lang"`
	UserID         string `json:"user_id"`
	Timestamp      string `json:"timestamp"`
}

// TranslateHandler serves POST /translate.
type TranslateHandler struct {
	endpoint
	uc TranslateUseCase
}

func NewTranslateHandler(uc TranslateUseCase, opts ...Option) (*TranslateHandler, error) {
	if uc == nil {
		return nil, errors.New("handler: translate use case must not be nil")
	}
	return &TranslateHandler{endpoint: newEndpoint("translate", "POST,OPTIONS", opts), uc: uc}, nil
}

func (h *TranslateHandler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if isPreflight(req) {
		return h.preflight(), nil
	}
	corrID := correlationID(req)

	var body translateRequest
	if err := decodeBody(req, &body); err != nil {
		return h.fail(corrID, err), nil
	}

	override, err := h.overrideID(body.UserID)
	if err != nil {
		return h.fail(corrID, err), nil
	}

	// The use case validates before it checks the owner, so an empty
	// identity still yields input errors first.
	owner := h.identity(req, override)
	rec, err := h.uc.Translate(ctx, owner, usecase.TranslateInput{
		Text:       body.Text,
		SourceLang: body.SourceLang,
		TargetLang: body.TargetLang,
	})
	if err != nil {
		return h.fail(corrID, err), nil
	}

	return h.respond(http.StatusOK, corrID, translateResponse{
		TranslatedText: rec.TranslatedText,
		SourceLang:     rec.SourceLang,
		TargetLang:     rec.TargetLang,
		UserID:         rec.OwnerID,
		Timestamp:      rec.Timestamp,
	}), nil
}

func (h *TranslateHandler) overrideID(raw json.RawMessage) (string, error) {
	if !h.allowOverride || len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var id string
	if err := json.Unmarshal(raw, &id); err != nil {
		return "", usecase.InvalidInput("invalid_field", "Invalid value for field: user_id")
	}
	return id, nil
}
