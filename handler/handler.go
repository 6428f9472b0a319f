// Package handler adapts API Gateway proxy events to the translation use cases.
package handler

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"translation-history/internal/usecase"
)

const (
	headerCorrelationID = "X-Correlation-Id"
	allowedHeaders      = "Content-Type,Authorization"
)

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type Option func(*endpoint)

// WithLogger sets the logger used for request failures. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *endpoint) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithUserIDOverride lets a request name its own identity through user_id.
// Only handlers that accept an override honour it.
func WithUserIDOverride(enabled bool) Option {
	return func(e *endpoint) { e.allowOverride = enabled }
}

// WithVerboseErrors adds the underlying error text to 5xx bodies as "details".
func WithVerboseErrors(enabled bool) Option {
	return func(e *endpoint) { e.verbose = enabled }
}

// endpoint holds what every handler shares: CORS method list, logging and
// error rendering.
type endpoint struct {
	name          string
	methods       string
	logger        *zap.Logger
	allowOverride bool
	verbose       bool
}

func newEndpoint(name, methods string, opts []Option) endpoint {
	e := endpoint{name: name, methods: methods, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&e)
	}
	e.logger = e.logger.With(zap.String("handler", name))
	return e
}

func isPreflight(req events.APIGatewayProxyRequest) bool {
	return req.HTTPMethod == http.MethodOptions
}

func (e endpoint) corsHeaders() map[string]string {
	return map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Methods": e.methods,
		"Access-Control-Allow-Headers": allowedHeaders,
	}
}

func (e endpoint) preflight() events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{StatusCode: http.StatusOK, Headers: e.corsHeaders()}
}

func (e endpoint) respond(status int, corrID string, payload any) events.APIGatewayProxyResponse {
	body, err := json.Marshal(payload)
	if err != nil {
		e.logger.Error("encode response", zap.String("correlation_id", corrID), zap.Error(err))
		status = http.StatusInternalServerError
		body = []byte(`{"error":"Internal server error"}`)
	}
	headers := e.corsHeaders()
	headers["Content-Type"] = "application/json"
	headers[headerCorrelationID] = corrID
	return events.APIGatewayProxyResponse{StatusCode: status, Headers: headers, Body: string(body)}
}

// fail logs err and renders it. Errors that are not *usecase.Error are
// treated as internal.
func (e endpoint) fail(corrID string, err error) events.APIGatewayProxyResponse {
	var uerr *usecase.Error
	if !errors.As(err, &uerr) {
		uerr = &usecase.Error{Code: usecase.ErrorInternal, Reason: "unexpected", Message: "Internal server error", Err: err}
	}
	status := statusFor(uerr.Code)

	fields := []zap.Field{
		zap.String("correlation_id", corrID),
		zap.String("code", string(uerr.Code)),
		zap.String("reason", uerr.Reason),
	}
	if uerr.Err != nil {
		fields = append(fields, zap.Error(uerr.Err))
	}
	if status >= http.StatusInternalServerError {
		e.logger.Error("request failed", fields...)
	} else {
		e.logger.Warn("request rejected", fields...)
	}

	out := errorResponse{Error: uerr.Message}
	if e.verbose && status >= http.StatusInternalServerError && uerr.Err != nil {
		out.Details = uerr.Err.Error()
	}
	return e.respond(status, corrID, out)
}

func statusFor(code usecase.ErrorCode) int {
	switch code {
	case usecase.ErrorInvalidInput:
		return http.StatusBadRequest
	case usecase.ErrorUnauthorized:
		return http.StatusUnauthorized
	case usecase.ErrorConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// identity returns the caller's subject. override is used only when the
// endpoint allows it; otherwise the gateway-verified claims decide.
func (e endpoint) identity(req events.APIGatewayProxyRequest, override string) string {
	if e.allowOverride {
		if o := strings.TrimSpace(override); o != "" {
			return o
		}
	}
	return subjectFromAuthorizer(req.RequestContext.Authorizer)
}

// subjectFromAuthorizer reads sub from an HTTP API JWT authorizer
// (jwt.claims.sub) or a REST Cognito authorizer (claims.sub).
func subjectFromAuthorizer(auth map[string]interface{}) string {
	if auth == nil {
		return ""
	}
	if jwt, ok := auth["jwt"].(map[string]interface{}); ok {
		if sub := subjectFromClaims(jwt["claims"]); sub != "" {
			return sub
		}
	}
	return subjectFromClaims(auth["claims"])
}

func subjectFromClaims(raw interface{}) string {
	claims, ok := raw.(map[string]interface{})
	if !ok {
		return ""
	}
	sub, _ := claims["sub"].(string)
	return strings.TrimSpace(sub)
}

func correlationID(req events.APIGatewayProxyRequest) string {
	for k, v := range req.Headers {
		if strings.EqualFold(k, headerCorrelationID) && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	if req.RequestContext.RequestID != "" {
		return req.RequestContext.RequestID
	}
	return uuid.NewString()
}

// decodeBody unmarshals the request body into v. A field of the wrong JSON
// type is reported by name; anything else unparseable is invalid JSON.
func decodeBody(req events.APIGatewayProxyRequest, v any) error {
	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return usecase.InvalidInput("invalid_json", "Invalid JSON in request body")
		}
		body = decoded
	}
	if err := json.Unmarshal(body, v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return usecase.InvalidInput("invalid_field", "Invalid value for field: "+typeErr.Field)
		}
		return usecase.InvalidInput("invalid_json", "Invalid JSON in request body")
	}
	return nil
}
