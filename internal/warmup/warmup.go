// Package warmup keeps Lambda instances warm. A scheduled rule sends
// {"source":"warmup","concurrency":N}; the receiving instance fans out N
// asynchronous self-invocations so N+1 containers stay resident.
package warmup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	lambdasdk "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	Source = "warmup"

	// Delay keeps the warmed instance busy long enough for the
	// self-invocations to land on other containers.
	Delay = 75 * time.Millisecond

	MaxConcurrency = 25
)

type Event struct {
	Source      string `json:"source"`
	Concurrency int    `json:"concurrency"`
}

type Response struct {
	Status          string `json:"status"`
	InstancesWarmed int    `json:"instancesWarmed"`
}

type Invoker interface {
	Invoke(ctx context.Context, in *lambdasdk.InvokeInput, optFns ...func(*lambdasdk.Options)) (*lambdasdk.InvokeOutput, error)
}

type Warmer struct {
	invoker      Invoker
	functionName string
	logger       *zap.Logger
	delay        time.Duration
}

func New(invoker Invoker, functionName string, logger *zap.Logger) (*Warmer, error) {
	if invoker == nil {
		return nil, errors.New("warmup: invoker must not be nil")
	}
	if functionName == "" {
		return nil, errors.New("warmup: function name must not be empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Warmer{invoker: invoker, functionName: functionName, logger: logger, delay: Delay}, nil
}

// Parse reports whether raw is a warmup event.
func Parse(raw json.RawMessage) (Event, bool) {
	var ev struct {
		Source      string   `json:"source"`
		Concurrency *float64 `json:"concurrency"`
	}
	if err := json.Unmarshal(raw, &ev); err != nil || ev.Source != Source {
		return Event{}, false
	}
	out := Event{Source: Source}
	if ev.Concurrency != nil && *ev.Concurrency > 0 {
		out.Concurrency = int(*ev.Concurrency)
	}
	return out, true
}

// Warm counts this instance and any self-invocations that were accepted.
func (w *Warmer) Warm(ctx context.Context, ev Event) Response {
	warmed := 1
	if n := min(ev.Concurrency, MaxConcurrency); n > 0 {
		ok, err := w.selfInvoke(ctx, n)
		if err != nil {
			w.logger.Warn("warmup self-invoke failed", zap.Int("requested", n), zap.Int("accepted", ok), zap.Error(err))
		}
		warmed += ok
	}

	select {
	case <-time.After(w.delay):
	case <-ctx.Done():
	}
	w.logger.Debug("warm", zap.Int("instances_warmed", warmed))
	return Response{Status: "warm", InstancesWarmed: warmed}
}

func (w *Warmer) selfInvoke(ctx context.Context, n int) (int, error) {
	// Children get concurrency 0 so they do not fan out again.
	payload, err := json.Marshal(Event{Source: Source})
	if err != nil {
		return 0, fmt.Errorf("warmup: encode payload: %w", err)
	}

	var accepted atomic.Int32
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			_, err := w.invoker.Invoke(ctx, &lambdasdk.InvokeInput{
				FunctionName:   aws.String(w.functionName),
				InvocationType: types.InvocationTypeEvent,
				Payload:        payload,
			})
			if err != nil {
				return fmt.Errorf("warmup: invoke %s: %w", w.functionName, err)
			}
			accepted.Add(1)
			return nil
		})
	}
	err = g.Wait()
	return int(accepted.Load()), err
}

// APIHandler is the signature of the HTTP handlers in package handler.
type APIHandler func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

// Wrap returns a raw-event Lambda handler. Warmup events are answered by w
// before any API decoding; every other event goes to next. A nil w disables
// warmup handling.
func Wrap(w *Warmer, next APIHandler) func(ctx context.Context, raw json.RawMessage) (any, error) {
	return func(ctx context.Context, raw json.RawMessage) (any, error) {
		if w != nil {
			if ev, ok := Parse(raw); ok {
				return w.Warm(ctx, ev), nil
			}
		}
		var req events.APIGatewayProxyRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, fmt.Errorf("warmup: decode api gateway event: %w", err)
		}
		return next(ctx, req)
	}
}
