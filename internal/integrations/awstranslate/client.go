package awstranslate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/translate"
	"github.com/aws/smithy-go"

	"translation-history/internal/domain"
)

// autoDetect is the source language code Amazon Translate uses for detection.
const autoDetect = "auto"

// translateAPI is the minimal Amazon Translate interface required by Client.
// *translate.Client from aws-sdk-go-v2 satisfies this interface.
type translateAPI interface {
	TranslateText(ctx context.Context, in *translate.TranslateTextInput, optFns ...func(*translate.Options)) (*translate.TranslateTextOutput, error)
}

// APIError captures a failed TranslateText call together with the service
// error code, when the service returned one.
type APIError struct {
	Code string
	Err  error
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("awstranslate: translate text: %v", e.Err)
	}
	return fmt.Sprintf("awstranslate: translate text (%s): %v", e.Code, e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// UpstreamCode returns the service error code, e.g. UnsupportedLanguagePairException.
func (e *APIError) UpstreamCode() string {
	return e.Code
}

// Client translates text with Amazon Translate.
type Client struct {
	api translateAPI
}

// New creates a Client with the given Translate API implementation.
func New(api translateAPI) (*Client, error) {
	if api == nil {
		return nil, errors.New("awstranslate: api must not be nil")
	}
	return &Client{api: api}, nil
}

// Translate sends one TranslateText request. An empty req.SourceLang asks the
// service to detect the source language.
func (c *Client) Translate(ctx context.Context, req domain.TranslateRequest) (domain.TranslateResult, error) {
	if strings.TrimSpace(req.Text) == "" {
		return domain.TranslateResult{}, errors.New("awstranslate: text is required")
	}
	if req.TargetLang == "" {
		return domain.TranslateResult{}, errors.New("awstranslate: target language is required")
	}

	source := req.SourceLang
	if source == "" {
		source = autoDetect
	}

	out, err := c.api.TranslateText(ctx, &translate.TranslateTextInput{
		Text:               aws.String(req.Text),
		SourceLanguageCode: aws.String(source),
		TargetLanguageCode: aws.String(req.TargetLang),
	})
	if err != nil {
		apiErr := &APIError{Err: err}
		var se smithy.APIError
		if errors.As(err, &se) {
			apiErr.Code = se.ErrorCode()
		}
		return domain.TranslateResult{}, apiErr
	}
	if out == nil || out.TranslatedText == nil {
		return domain.TranslateResult{}, errors.New("awstranslate: response missing translated text")
	}

	detected := aws.ToString(out.SourceLanguageCode)
	if detected == autoDetect {
		detected = ""
	}
	return domain.TranslateResult{
		TranslatedText: *out.TranslatedText,
		SourceLang:     detected,
	}, nil
}
