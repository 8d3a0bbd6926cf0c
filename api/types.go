package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/mitchellh/mapstructure"
)

type Error struct {
	Code    int32  `json:"code"`
	Message string `json:"message"`
}

func (e Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%d %v", e.Code, strings.ToLower(http.StatusText(int(e.Code))))
	}
	return e.Message
}

// GenerateRequest asks the generation backend for a completion. When Regex
// is set the backend constrains decoding so the response fully matches it;
// the regex is passed verbatim and must be finite and boundedly quantified.
type GenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	System string `json:"system,omitempty"`
	Regex  string `json:"regex,omitempty"`

	Options *Options `json:"options,omitempty"`
}

type GenerateResponse struct {
	Model    string `json:"model,omitempty"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Options are the generation parameters forwarded to the backend.
type Options struct {
	MaxTokens   int     `json:"max_tokens,omitempty" mapstructure:"max_tokens"`
	Temperature float32 `json:"temperature,omitempty" mapstructure:"temperature"`
	Seed        int     `json:"seed,omitempty" mapstructure:"seed"`
}

// FromMap merges loosely-typed option values, as they arrive in JSON request
// bodies, into o. Unknown keys are an error rather than silently dropped.
func (o *Options) FromMap(m map[string]any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           o,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(m); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	return nil
}

// DefaultOptions are the generation parameters used when a request carries
// none.
func DefaultOptions() Options {
	return Options{
		MaxTokens: 500,
	}
}

type VersionResponse struct {
	Version string `json:"version"`
}
