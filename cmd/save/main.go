package main

import (
	"context"

	"go.uber.org/zap"

	"translation-history/handler"
	"translation-history/internal/bootstrap"
	"translation-history/internal/usecase"
)

const function = "save"

func main() {
	ctx := context.Background()

	rt, err := bootstrap.Load(ctx, function)
	if err != nil {
		bootstrap.Fatal(function, err)
	}

	svc, err := usecase.NewSaveService(rt.Store)
	if err != nil {
		rt.Logger.Fatal("failed to create save service", zap.Error(err))
	}
	h, err := handler.NewSaveHandler(svc, rt.HandlerOptions()...)
	if err != nil {
		rt.Logger.Fatal("failed to create handler", zap.Error(err))
	}

	rt.Start(h.Handle)
}
