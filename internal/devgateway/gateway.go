// Package devgateway emulates the API Gateway front door for local
// development. It turns net/http requests into proxy events, verifies a
// Bearer token the way the upstream JWT authorizer would, and writes the
// proxy response back.
package devgateway

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type APIHandler func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

// Routes are the three function handlers mounted by the gateway.
type Routes struct {
	Translate APIHandler
	History   APIHandler
	Save      APIHandler
}

type Options struct {
	// JWTSecret verifies HS256 Bearer tokens. When empty no token is checked.
	JWTSecret string
	// StaticSubject is injected as the caller when JWTSecret is empty.
	StaticSubject string
	Logger        *zap.Logger
}

type gateway struct {
	secret  []byte
	subject string
	logger  *zap.Logger
}

// NewRouter mounts routes on a chi router.
func NewRouter(routes Routes, opts Options) (http.Handler, error) {
	if routes.Translate == nil || routes.History == nil || routes.Save == nil {
		return nil, errors.New("devgateway: all routes must be set")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &gateway{secret: []byte(opts.JWTSecret), subject: opts.StaticSubject, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(g.logRequests)

	r.Post("/translate", g.serve(routes.Translate))
	r.Options("/translate", g.serve(routes.Translate))
	r.Get("/history", g.serve(routes.History))
	r.Options("/history", g.serve(routes.History))
	r.Post("/translations", g.serve(routes.Save))
	r.Options("/translations", g.serve(routes.Save))
	return r, nil
}

func (g *gateway) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		g.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (g *gateway) serve(h APIHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := g.toProxyRequest(w, r)
		if err != nil {
			g.logger.Warn("read request", zap.Error(err))
			http.Error(w, `{"error":"Invalid request"}`, http.StatusBadRequest)
			return
		}
		resp, err := h(r.Context(), req)
		if err != nil {
			g.logger.Error("handler returned error", zap.Error(err))
			http.Error(w, `{"error":"Internal server error"}`, http.StatusBadGateway)
			return
		}
		writeProxyResponse(w, resp, g.logger)
	}
}

func (g *gateway) toProxyRequest(w http.ResponseWriter, r *http.Request) (events.APIGatewayProxyRequest, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return events.APIGatewayProxyRequest{}, fmt.Errorf("devgateway: read body: %w", err)
	}

	headers := make(map[string]string, len(r.Header))
	for k, v := range r.Header {
		if len(v) > 0 {
			headers[k] = v[0]
		}
	}
	query := make(map[string]string, len(r.URL.Query()))
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			query[k] = v[0]
		}
	}

	req := events.APIGatewayProxyRequest{
		Resource:                        r.URL.Path,
		Path:                            r.URL.Path,
		HTTPMethod:                      r.Method,
		Headers:                         headers,
		MultiValueHeaders:               r.Header,
		QueryStringParameters:           query,
		MultiValueQueryStringParameters: r.URL.Query(),
		Body:                            string(body),
		RequestContext: events.APIGatewayProxyRequestContext{
			RequestID:  middleware.GetReqID(r.Context()),
			HTTPMethod: r.Method,
			Path:       r.URL.Path,
			Stage:      "local",
		},
	}
	if claims := g.claims(r); claims != nil {
		req.RequestContext.Authorizer = map[string]interface{}{
			"jwt": map[string]interface{}{"claims": claims},
		}
	}
	return req, nil
}

// claims returns the caller's claim set, or nil when the request carries no
// acceptable identity. Handlers answer 401 in that case.
func (g *gateway) claims(r *http.Request) map[string]interface{} {
	if len(g.secret) == 0 {
		if g.subject == "" {
			return nil
		}
		return map[string]interface{}{"sub": g.subject}
	}

	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if !strings.HasPrefix(raw, "Bearer ") {
		return nil
	}
	claims, err := g.verify(strings.TrimSpace(strings.TrimPrefix(raw, "Bearer ")))
	if err != nil {
		g.logger.Warn("rejected bearer token", zap.Error(err))
		return nil
	}
	return claims
}

func (g *gateway) verify(token string) (map[string]interface{}, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return g.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("devgateway: verify token: %w", err)
	}
	// Handlers expect a plain map, not jwt.MapClaims.
	return map[string]interface{}(claims), nil
}

func writeProxyResponse(w http.ResponseWriter, resp events.APIGatewayProxyResponse, logger *zap.Logger) {
	body := []byte(resp.Body)
	if resp.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(resp.Body)
		if err != nil {
			logger.Error("decode response body", zap.Error(err))
			http.Error(w, `{"error":"Internal server error"}`, http.StatusBadGateway)
			return
		}
		body = decoded
	}
	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	for k, vs := range resp.MultiValueHeaders {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(resp.StatusCode)
	if len(body) > 0 {
		if _, err := w.Write(body); err != nil {
			logger.Warn("write response", zap.Error(err))
		}
	}
}
