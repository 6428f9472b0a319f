package main

import (
	"context"

	awstranslatesdk "github.com/aws/aws-sdk-go-v2/service/translate"
	"go.uber.org/zap"

	"translation-history/handler"
	"translation-history/internal/bootstrap"
	"translation-history/internal/integrations/awstranslate"
	"translation-history/internal/usecase"
)

const function = "translate"

func main() {
	ctx := context.Background()

	rt, err := bootstrap.Load(ctx, function)
	if err != nil {
		bootstrap.Fatal(function, err)
	}

	translator, err := awstranslate.New(awstranslatesdk.NewFromConfig(rt.AWS))
	if err != nil {
		rt.Logger.Fatal("failed to create translate client", zap.Error(err))
	}
	svc, err := usecase.NewTranslateService(translator, rt.Store)
	if err != nil {
		rt.Logger.Fatal("failed to create translate service", zap.Error(err))
	}
	h, err := handler.NewTranslateHandler(svc, rt.HandlerOptions()...)
	if err != nil {
		rt.Logger.Fatal("failed to create handler", zap.Error(err))
	}

	rt.Start(h.Handle)
}
