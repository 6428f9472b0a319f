package devgateway

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "local-secret"

type recorder struct {
	last  events.APIGatewayProxyRequest
	calls int
}

func (rec *recorder) handle(_ context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	rec.calls++
	rec.last = req
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    map[string]string{"Content-Type": "application/json", "X-Correlation-Id": "corr"},
		Body:       `{"ok":true}`,
	}, nil
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func newTestServer(t *testing.T, opts Options) (*httptest.Server, *recorder, *recorder, *recorder) {
	t.Helper()
	tr, hi, sv := &recorder{}, &recorder{}, &recorder{}
	router, err := NewRouter(Routes{Translate: tr.handle, History: hi.handle, Save: sv.handle}, opts)
	require.NoError(t, err)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, tr, hi, sv
}

func do(t *testing.T, method, url, body, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestNewRouter_RequiresRoutes(t *testing.T) {
	_, err := NewRouter(Routes{}, Options{})
	require.Error(t, err)
}

func TestRouter_ConvertsRequest(t *testing.T) {
	srv, tr, _, _ := newTestServer(t, Options{JWTSecret: testSecret})
	token := signToken(t, testSecret, jwt.MapClaims{"sub": "user-1", "exp": time.Now().Add(time.Hour).Unix()})

	resp := do(t, http.MethodPost, srv.URL+"/translate?x=1", `{"text":"Hello"}`, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "corr", resp.Header.Get("X-Correlation-Id"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.JSONEq(t, `{"ok":true}`, string(body))

	require.Equal(t, 1, tr.calls)
	require.Equal(t, http.MethodPost, tr.last.HTTPMethod)
	require.Equal(t, "/translate", tr.last.Path)
	require.Equal(t, `{"text":"Hello"}`, tr.last.Body)
	require.Equal(t, "1", tr.last.QueryStringParameters["x"])
	require.NotEmpty(t, tr.last.RequestContext.RequestID)

	jwtAuth, ok := tr.last.RequestContext.Authorizer["jwt"].(map[string]interface{})
	require.True(t, ok)
	claims, ok := jwtAuth["claims"].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "user-1", claims["sub"])
}

func TestRouter_RejectsBadTokens(t *testing.T) {
	srv, _, hi, _ := newTestServer(t, Options{JWTSecret: testSecret})
	exp := time.Now().Add(time.Hour).Unix()

	cases := map[string]string{
		"wrong secret": signToken(t, "other", jwt.MapClaims{"sub": "u", "exp": exp}),
		"expired":      signToken(t, testSecret, jwt.MapClaims{"sub": "u", "exp": time.Now().Add(-time.Hour).Unix()}),
		"no expiry":    signToken(t, testSecret, jwt.MapClaims{"sub": "u"}),
		"garbage":      "not.a.token",
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			resp := do(t, http.MethodGet, srv.URL+"/history", "", token)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			require.Nil(t, hi.last.RequestContext.Authorizer)
		})
	}

	do(t, http.MethodGet, srv.URL+"/history", "", "")
	require.Nil(t, hi.last.RequestContext.Authorizer)
}

func TestRouter_StaticSubjectWithoutSecret(t *testing.T) {
	srv, _, _, sv := newTestServer(t, Options{StaticSubject: "dev-user"})

	do(t, http.MethodPost, srv.URL+"/translations", `{}`, "")
	claims := sv.last.RequestContext.Authorizer["jwt"].(map[string]interface{})["claims"].(map[string]interface{})
	require.Equal(t, "dev-user", claims["sub"])
}

func TestRouter_MethodsAndPreflight(t *testing.T) {
	srv, tr, hi, sv := newTestServer(t, Options{})

	resp := do(t, http.MethodOptions, srv.URL+"/translate", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, http.MethodOptions, tr.last.HTTPMethod)

	do(t, http.MethodOptions, srv.URL+"/history", "", "")
	require.Equal(t, 1, hi.calls)

	resp = do(t, http.MethodGet, srv.URL+"/translations", "", "")
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	require.Equal(t, 0, sv.calls)

	resp = do(t, http.MethodGet, srv.URL+"/nope", "", "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWriteProxyResponse_Base64(t *testing.T) {
	w := httptest.NewRecorder()
	writeProxyResponse(w, events.APIGatewayProxyResponse{
		StatusCode:      http.StatusCreated,
		Body:            "aGVsbG8=",
		IsBase64Encoded: true,
	}, zap.NewNop())
	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "hello", w.Body.String())
}
