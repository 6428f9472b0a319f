package main

import (
	"context"

	"go.uber.org/zap"

	"translation-history/handler"
	"translation-history/internal/bootstrap"
	"translation-history/internal/usecase"
)

const function = "history"

func main() {
	ctx := context.Background()

	rt, err := bootstrap.Load(ctx, function)
	if err != nil {
		bootstrap.Fatal(function, err)
	}

	svc, err := usecase.NewHistoryService(rt.Store)
	if err != nil {
		rt.Logger.Fatal("failed to create history service", zap.Error(err))
	}
	h, err := handler.NewHistoryHandler(svc, rt.HandlerOptions()...)
	if err != nil {
		rt.Logger.Fatal("failed to create handler", zap.Error(err))
	}

	rt.Start(h.Handle)
}
