// Package translate wraps the Google Cloud Translation v3 API as a reusable
// language bridge: detect the language of a text, translate it to English,
// and translate an English reply back to the user's language.
//
// The bridge is constructed at bootstrap when provider credentials are
// configured, but the relay path does not invoke it automatically; callers
// apply translation explicitly where they need it.
package translate

import (
	"context"
	"fmt"
	"strings"

	translate "cloud.google.com/go/translate/apiv3"
	"cloud.google.com/go/translate/apiv3/translatepb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"

	"github.com/robodoc-one/gateway/internal/common"
	"github.com/robodoc-one/gateway/internal/logging"
)

// defaultLanguage is returned when the provider detects nothing.
const defaultLanguage = "en"

// API is the subset of the translation client the bridge uses. The real
// *translate.TranslationClient satisfies it; tests inject fakes.
type API interface {
	TranslateText(ctx context.Context, req *translatepb.TranslateTextRequest, opts ...gax.CallOption) (*translatepb.TranslateTextResponse, error)
	DetectLanguage(ctx context.Context, req *translatepb.DetectLanguageRequest, opts ...gax.CallOption) (*translatepb.DetectLanguageResponse, error)
}

type Bridge struct {
	api    API
	parent string
	logger logging.Logger
}

// NewBridge dials the translation provider with the given project and key
// file and returns a ready bridge.
func NewBridge(ctx context.Context, projectID, credentialsFile string, logger logging.Logger) (*Bridge, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := translate.NewTranslationClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("translation client init error: %w", err)
	}
	return NewBridgeWithAPI(client, projectID, logger), nil
}

// NewBridgeWithAPI constructs a bridge over an existing API implementation.
func NewBridgeWithAPI(api API, projectID string, logger logging.Logger) *Bridge {
	return &Bridge{
		api:    api,
		parent: fmt.Sprintf("projects/%s/locations/global", projectID),
		logger: logger.With("module", "translate"),
	}
}

// cleanText strips surrounding quote characters and whitespace before the
// text is submitted to the provider.
func cleanText(text string) string {
	s := strings.TrimSpace(text)
	s = strings.Trim(s, `"'`)
	return strings.TrimSpace(s)
}

// Detect returns the language code of text. An empty result set from the
// provider soft-fails to the default code; provider errors propagate.
func (b *Bridge) Detect(ctx context.Context, text string) (string, error) {
	req := &translatepb.DetectLanguageRequest{
		Parent:   b.parent,
		Source:   &translatepb.DetectLanguageRequest_Content{Content: cleanText(text)},
		MimeType: "text/plain",
	}

	resp, err := b.api.DetectLanguage(ctx, req)
	if err != nil {
		return "", fmt.Errorf("language detection error: %w", err)
	}

	langs := resp.GetLanguages()
	if len(langs) == 0 {
		b.logger.Warn(ctx, "no language detected, falling back to default", "default", defaultLanguage)
		return defaultLanguage, nil
	}

	return langs[0].GetLanguageCode(), nil
}

// ToEnglish translates text into English, auto-detecting the source language.
func (b *Bridge) ToEnglish(ctx context.Context, text string) (string, error) {
	return b.translateText(ctx, text, "", "en")
}

// FromEnglish translates an English text into the target language.
func (b *Bridge) FromEnglish(ctx context.Context, text, targetLanguageCode string) (string, error) {
	return b.translateText(ctx, text, "en", targetLanguageCode)
}

func (b *Bridge) translateText(ctx context.Context, text, source, target string) (string, error) {
	req := &translatepb.TranslateTextRequest{
		Parent:             b.parent,
		Contents:           []string{cleanText(text)},
		MimeType:           "text/plain",
		SourceLanguageCode: source,
		TargetLanguageCode: target,
	}

	resp, err := b.api.TranslateText(ctx, req)
	if err != nil {
		return "", fmt.Errorf("translation error: %w", err)
	}

	translations := resp.GetTranslations()
	if len(translations) == 0 {
		return "", common.ErrTranslation
	}

	return translations[0].GetTranslatedText(), nil
}
