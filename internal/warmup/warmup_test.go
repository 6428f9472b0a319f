package warmup

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	lambdasdk "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/stretchr/testify/require"
)

type fakeInvoker struct {
	mu      sync.Mutex
	inputs  []*lambdasdk.InvokeInput
	failNth int
}

func (f *fakeInvoker) Invoke(_ context.Context, in *lambdasdk.InvokeInput, _ ...func(*lambdasdk.Options)) (*lambdasdk.InvokeOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, in)
	if f.failNth > 0 && len(f.inputs) == f.failNth {
		return nil, errors.New("TooManyRequestsException")
	}
	return &lambdasdk.InvokeOutput{StatusCode: 202}, nil
}

func newTestWarmer(t *testing.T, inv Invoker) *Warmer {
	t.Helper()
	w, err := New(inv, "translate-fn", nil)
	require.NoError(t, err)
	w.delay = 0
	return w
}

func TestNew_ValidatesDependencies(t *testing.T) {
	_, err := New(nil, "fn", nil)
	require.Error(t, err)
	_, err = New(&fakeInvoker{}, "", nil)
	require.Error(t, err)
}

func TestParse(t *testing.T) {
	ev, ok := Parse(json.RawMessage(`{"source":"warmup","concurrency":3}`))
	require.True(t, ok)
	require.Equal(t, Event{Source: Source, Concurrency: 3}, ev)

	ev, ok = Parse(json.RawMessage(`{"source":"warmup"}`))
	require.True(t, ok)
	require.Equal(t, 0, ev.Concurrency)

	ev, ok = Parse(json.RawMessage(`{"source":"warmup","concurrency":-4}`))
	require.True(t, ok)
	require.Equal(t, 0, ev.Concurrency)

	_, ok = Parse(json.RawMessage(`{"source":"aws.events"}`))
	require.False(t, ok)
	_, ok = Parse(json.RawMessage(`{"httpMethod":"POST","body":"{}"}`))
	require.False(t, ok)
	_, ok = Parse(json.RawMessage(`not-json`))
	require.False(t, ok)
}

func TestWarm_SelfInvokesAsync(t *testing.T) {
	inv := &fakeInvoker{}
	w := newTestWarmer(t, inv)

	resp := w.Warm(context.Background(), Event{Source: Source, Concurrency: 3})
	require.Equal(t, Response{Status: "warm", InstancesWarmed: 4}, resp)
	require.Len(t, inv.inputs, 3)
	for _, in := range inv.inputs {
		require.Equal(t, "translate-fn", *in.FunctionName)
		require.Equal(t, types.InvocationTypeEvent, in.InvocationType)
		require.JSONEq(t, `{"source":"warmup","concurrency":0}`, string(in.Payload))
	}
}

func TestWarm_NoConcurrency(t *testing.T) {
	inv := &fakeInvoker{}
	resp := newTestWarmer(t, inv).Warm(context.Background(), Event{Source: Source})
	require.Equal(t, 1, resp.InstancesWarmed)
	require.Empty(t, inv.inputs)
}

func TestWarm_CountsOnlyAcceptedInvocations(t *testing.T) {
	inv := &fakeInvoker{failNth: 2}
	resp := newTestWarmer(t, inv).Warm(context.Background(), Event{Source: Source, Concurrency: 3})
	require.Equal(t, 3, resp.InstancesWarmed)
}

func TestWarm_CapsConcurrency(t *testing.T) {
	inv := &fakeInvoker{}
	resp := newTestWarmer(t, inv).Warm(context.Background(), Event{Source: Source, Concurrency: 1000})
	require.Len(t, inv.inputs, MaxConcurrency)
	require.Equal(t, MaxConcurrency+1, resp.InstancesWarmed)
}

func TestWrap(t *testing.T) {
	var got events.APIGatewayProxyRequest
	next := func(_ context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		got = req
		return events.APIGatewayProxyResponse{StatusCode: http.StatusOK}, nil
	}
	fn := Wrap(newTestWarmer(t, &fakeInvoker{}), next)

	out, err := fn(context.Background(), json.RawMessage(`{"source":"warmup"}`))
	require.NoError(t, err)
	require.Equal(t, Response{Status: "warm", InstancesWarmed: 1}, out)
	require.Empty(t, got.HTTPMethod)

	out, err = fn(context.Background(), json.RawMessage(`{"httpMethod":"GET","path":"/history"}`))
	require.NoError(t, err)
	require.Equal(t, events.APIGatewayProxyResponse{StatusCode: http.StatusOK}, out)
	require.Equal(t, "/history", got.Path)

	_, err = fn(context.Background(), json.RawMessage(`[1,2]`))
	require.Error(t, err)
}

func TestWrap_DisabledPassesWarmupThrough(t *testing.T) {
	called := false
	next := func(_ context.Context, _ events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		called = true
		return events.APIGatewayProxyResponse{StatusCode: http.StatusOK}, nil
	}
	_, err := Wrap(nil, next)(context.Background(), json.RawMessage(`{"source":"warmup"}`))
	require.NoError(t, err)
	require.True(t, called)
}
