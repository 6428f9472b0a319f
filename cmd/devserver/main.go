// Command devserver runs all three functions behind one local HTTP server.
// Point AWS_ENDPOINT_URL at DynamoDB Local to keep writes off real tables.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awstranslatesdk "github.com/aws/aws-sdk-go-v2/service/translate"
	"go.uber.org/zap"

	"translation-history/handler"
	"translation-history/internal/bootstrap"
	"translation-history/internal/devgateway"
	"translation-history/internal/integrations/awstranslate"
	"translation-history/internal/usecase"
)

const function = "devserver"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap.Load(ctx, function)
	if err != nil {
		bootstrap.Fatal(function, err)
	}
	logger := rt.Logger

	translator, err := awstranslate.New(awstranslatesdk.NewFromConfig(rt.AWS))
	if err != nil {
		logger.Fatal("failed to create translate client", zap.Error(err))
	}
	translateSvc, err := usecase.NewTranslateService(translator, rt.Store)
	if err != nil {
		logger.Fatal("failed to create translate service", zap.Error(err))
	}
	historySvc, err := usecase.NewHistoryService(rt.Store)
	if err != nil {
		logger.Fatal("failed to create history service", zap.Error(err))
	}
	saveSvc, err := usecase.NewSaveService(rt.Store)
	if err != nil {
		logger.Fatal("failed to create save service", zap.Error(err))
	}

	opts := rt.HandlerOptions()
	translateH, err := handler.NewTranslateHandler(translateSvc, opts...)
	if err != nil {
		logger.Fatal("failed to create translate handler", zap.Error(err))
	}
	historyH, err := handler.NewHistoryHandler(historySvc, opts...)
	if err != nil {
		logger.Fatal("failed to create history handler", zap.Error(err))
	}
	saveH, err := handler.NewSaveHandler(saveSvc, opts...)
	if err != nil {
		logger.Fatal("failed to create save handler", zap.Error(err))
	}

	router, err := devgateway.NewRouter(devgateway.Routes{
		Translate: translateH.Handle,
		History:   historyH.Handle,
		Save:      saveH.Handle,
	}, devgateway.Options{
		JWTSecret:     os.Getenv("DEV_JWT_SECRET"),
		StaticSubject: os.Getenv("DEV_USER_ID"),
		Logger:        logger,
	})
	if err != nil {
		logger.Fatal("failed to create router", zap.Error(err))
	}

	addr := os.Getenv("DEV_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown", zap.Error(err))
		}
	}()

	logger.Info("listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server failed", zap.Error(err))
	}
}
