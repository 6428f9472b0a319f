package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"translation-history/internal/domain"
)

type HistoryUseCase interface {
	History(ctx context.Context, ownerID string) ([]domain.HistoryItem, error)
}

type historyResponse struct {
	Translations []domain.HistoryItem `json:"translations"`
}

// HistoryHandler serves GET /history.
type HistoryHandler struct {
	endpoint
	uc HistoryUseCase
}

func NewHistoryHandler(uc HistoryUseCase, opts ...Option) (*HistoryHandler, error) {
	if uc == nil {
		return nil, errors.New("handler: history use case must not be nil")
	}
	return &HistoryHandler{endpoint: newEndpoint("history", "GET,OPTIONS", opts), uc: uc}, nil
}

func (h *HistoryHandler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if isPreflight(req) {
		return h.preflight(), nil
	}
	corrID := correlationID(req)

	items, err := h.uc.History(ctx, h.identity(req, req.QueryStringParameters["user_id"]))
	if err != nil {
		return h.fail(corrID, err), nil
	}
	if items == nil {
		items = []domain.HistoryItem{}
	}
	return h.respond(http.StatusOK, corrID, historyResponse{Translations: items}), nil
}
