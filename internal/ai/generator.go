package ai

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"unicode"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultBaseURL is the OpenAI-compatible endpoint of the Gemini API.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"
	DefaultModelID = "gemini-2.0-flash"
)

var ErrMalformedCredential = errors.New("credential is malformed")

// Options configures the outbound client. Zero values fall back to the defaults above.
type Options struct {
	BaseURL    string
	ModelID    string
	HTTPClient *http.Client
}

type Generator struct {
	client  *openai.Client
	modelID string
}

// NewGenerator builds a client bound to one credential. It makes no network call.
func NewGenerator(apiKey string, opts Options) (*Generator, error) {
	if err := checkCredential(apiKey); err != nil {
		return nil, err
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid generation base URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid generation base URL %q: need an absolute http(s) URL", baseURL)
	}

	modelID := strings.TrimSpace(opts.ModelID)
	if modelID == "" {
		modelID = DefaultModelID
	}

	config := openai.DefaultConfig(apiKey)
	config.BaseURL = strings.TrimSuffix(baseURL, "/")
	if opts.HTTPClient != nil {
		config.HTTPClient = opts.HTTPClient
	}

	return &Generator{
		client:  openai.NewClientWithConfig(config),
		modelID: modelID,
	}, nil
}

// ModelID returns the model the generator sends requests to.
func (g *Generator) ModelID() string {
	return g.modelID
}

// checkCredential rejects keys that cannot be sent as a bearer token.
func checkCredential(apiKey string) error {
	if apiKey == "" {
		return fmt.Errorf("%w: empty", ErrMalformedCredential)
	}
	for _, r := range apiKey {
		if unicode.IsSpace(r) || unicode.IsControl(r) || r > unicode.MaxASCII {
			return fmt.Errorf("%w: contains whitespace or non-ASCII characters", ErrMalformedCredential)
		}
	}
	return nil
}
