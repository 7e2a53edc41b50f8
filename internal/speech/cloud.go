package speech

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/texttospeech/v1"

	"github.com/ivlev/shapes2video/internal/shape"
)

// LanguageCode maps an accent to a Cloud Text-to-Speech locale. Canada has
// no dedicated English voice and falls back to en-US.
func LanguageCode(a shape.Accent) string {
	switch a {
	case shape.AccentAU:
		return "en-AU"
	case shape.AccentIND:
		return "en-IN"
	case shape.AccentUK:
		return "en-GB"
	}
	return "en-US"
}

// Cloud speaks through Google Cloud Text-to-Speech.
type Cloud struct {
	svc *texttospeech.Service
}

func NewCloud(ctx context.Context, opts Options) (*Cloud, error) {
	var copts []option.ClientOption
	if opts.CredentialsFile != "" {
		copts = append(copts, option.WithCredentialsFile(opts.CredentialsFile))
	}
	if opts.Endpoint != "" {
		copts = append(copts, option.WithEndpoint(opts.Endpoint))
	}
	if opts.HTTPClient != nil {
		copts = append(copts, option.WithHTTPClient(opts.HTTPClient))
	}

	svc, err := texttospeech.NewService(ctx, copts...)
	if err != nil {
		return nil, fmt.Errorf("texttospeech client: %w", err)
	}
	return &Cloud{svc: svc}, nil
}

func (c *Cloud) Synthesize(ctx context.Context, text string, accent shape.Accent) ([]byte, error) {
	req := &texttospeech.SynthesizeSpeechRequest{
		Input: &texttospeech.SynthesisInput{Text: text},
		Voice: &texttospeech.VoiceSelectionParams{LanguageCode: LanguageCode(accent)},
		AudioConfig: &texttospeech.AudioConfig{
			AudioEncoding: "MP3",
		},
	}

	resp, err := c.svc.Text.Synthesize(req).Context(ctx).Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			return nil, &StatusError{Code: gerr.Code, Body: gerr.Message}
		}
		return nil, fmt.Errorf("texttospeech: %w", err)
	}

	audio, err := base64.StdEncoding.DecodeString(resp.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("texttospeech: decode audio: %w", err)
	}
	return audio, nil
}
