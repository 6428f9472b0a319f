// Package bootstrap builds the dependencies shared by every function's main.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awslambda "github.com/aws/aws-sdk-go-v2/service/lambda"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"go.uber.org/zap"

	"translation-history/handler"
	"translation-history/internal/config"
	"translation-history/internal/integrations/paramstore"
	"translation-history/internal/logging"
	"translation-history/internal/repository"
	"translation-history/internal/warmup"
)

// Runtime is everything a function needs after a cold start.
type Runtime struct {
	Function string
	Config   config.Config
	Logger   *zap.Logger
	AWS      aws.Config
	Store    *repository.Client
}

// Load reads AWS and function configuration and builds the history store.
func Load(ctx context.Context, function string) (*Runtime, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: load AWS config: %w", err)
	}

	params, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
	if err != nil {
		return nil, fmt.Errorf("bootstrap: create parameter store: %w", err)
	}
	cfg, err := config.Load(ctx, params)
	if err != nil {
		return nil, err
	}

	logger := logging.Must(cfg.LogLevel, function, cfg.Environment)

	store, err := repository.New(awsdynamodb.NewFromConfig(awsCfg), cfg.TableName)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: create history store: %w", err)
	}

	logger.Info("cold start",
		zap.String("table", cfg.TableName),
		zap.Bool("user_id_override", cfg.AllowUserIDOverride),
		zap.Bool("verbose_errors", cfg.VerboseErrors),
	)
	return &Runtime{Function: function, Config: cfg, Logger: logger, AWS: awsCfg, Store: store}, nil
}

// HandlerOptions maps configuration onto handler options.
func (rt *Runtime) HandlerOptions() []handler.Option {
	return []handler.Option{
		handler.WithLogger(rt.Logger),
		handler.WithUserIDOverride(rt.Config.AllowUserIDOverride),
		handler.WithVerboseErrors(rt.Config.VerboseErrors),
	}
}

// Start hands fn to the Lambda runtime, answering warmup events first when
// enabled. It does not return.
func (rt *Runtime) Start(fn warmup.APIHandler) {
	lambda.Start(warmup.Wrap(rt.warmer(), fn))
}

// warmer returns nil when warmup is disabled or the function name is unknown.
func (rt *Runtime) warmer() *warmup.Warmer {
	if !rt.Config.WarmupEnabled || rt.Config.FunctionName == "" {
		return nil
	}
	w, err := warmup.New(awslambda.NewFromConfig(rt.AWS), rt.Config.FunctionName, rt.Logger)
	if err != nil {
		rt.Logger.Warn("warmup disabled", zap.Error(err))
		return nil
	}
	return w
}

var (
	newStartupLogger           = func() (*zap.Logger, error) { return zap.NewProduction() }
	stderr           io.Writer = os.Stderr
	exit                       = os.Exit
)

// Fatal logs err and exits. Used before a configured logger exists; if no
// logger can be built the error goes to stderr.
func Fatal(function string, err error) {
	logger, lerr := newStartupLogger()
	if lerr != nil {
		fmt.Fprintf(stderr, "%s: startup failed: %v\n", function, err)
		exit(1)
		return
	}
	logger.Error("startup failed", zap.String("function", function), zap.Error(err))
	_ = logger.Sync()
	exit(1)
}
