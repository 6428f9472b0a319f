package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"translation-history/internal/domain"
	"translation-history/internal/usecase"
)

type SaveUseCase interface {
	Save(ctx context.Context, ownerID string, in usecase.SaveInput) (domain.TranslationRecord, error)
}

type saveResponse struct {
	Message     string                   `json:"message"`
	Translation domain.TranslationRecord `json:"translation"`
}

// SaveHandler serves POST /translations. Identity always comes from the
// authorizer claims and is checked before the body is read; user_id
// overrides are ignored.
type SaveHandler struct {
	endpoint
	uc SaveUseCase
}

func NewSaveHandler(uc SaveUseCase, opts ...Option) (*SaveHandler, error) {
	if uc == nil {
		return nil, errors.New("handler: save use case must not be nil")
	}
	e := newEndpoint("save", "POST,OPTIONS", opts)
	e.allowOverride = false
	return &SaveHandler{endpoint: e, uc: uc}, nil
}

func (h *SaveHandler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if isPreflight(req) {
		return h.preflight(), nil
	}
	corrID := correlationID(req)

	owner := h.identity(req, "")
	if owner == "" {
		return h.fail(corrID, usecase.Unauthorized("missing_owner")), nil
	}

	var in usecase.SaveInput
	if err := decodeBody(req, &in); err != nil {
		return h.fail(corrID, err), nil
	}

	rec, err := h.uc.Save(ctx, owner, in)
	if err != nil {
		return h.fail(corrID, err), nil
	}
	return h.respond(http.StatusOK, corrID, saveResponse{
		Message:     "Translation saved successfully",
		Translation: rec,
	}), nil
}
