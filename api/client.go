// Package api is the HTTP client for a constrained-generation backend: a
// server exposing an /api/generate endpoint that accepts a prompt plus a
// regex and returns text guaranteed to match the regex. The client performs
// no validation of that guarantee.
package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/coax-ai/coax/envconfig"
)

type Client struct {
	base url.URL
	http *http.Client
}

func NewClient(hosts ...string) *Client {
	host := "127.0.0.1:11434"
	if len(hosts) > 0 && hosts[0] != "" {
		host = hosts[0]
	}

	return &Client{
		base: url.URL{Scheme: "http", Host: host},
		http: http.DefaultClient,
	}
}

// ClientFromEnvironment returns a client for the backend named by COAX_HOST.
func ClientFromEnvironment() *Client {
	return NewClient(envconfig.Host)
}

type options struct {
	requestBody  io.Reader
	responseFunc func(bts []byte) error
}

func OptionRequestBody(data any) func(*options) {
	bts, err := json.Marshal(data)
	if err != nil {
		panic(err)
	}

	return func(opts *options) {
		opts.requestBody = bytes.NewReader(bts)
	}
}

func OptionResponseFunc(fn func([]byte) error) func(*options) {
	return func(opts *options) {
		opts.responseFunc = fn
	}
}

func (c *Client) stream(ctx context.Context, method, path string, fns ...func(*options)) error {
	var opts options
	for _, fn := range fns {
		fn(&opts)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.base.JoinPath(path).String(), opts.requestBody)
	if err != nil {
		return err
	}

	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/json")

	response, err := c.http.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if response.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(response.Body)
		apiError := Error{Code: int32(response.StatusCode)}
		if err := json.Unmarshal(body, &apiError); err != nil {
			apiError.Message = strings.TrimSpace(string(body))
		}
		return apiError
	}

	if opts.responseFunc != nil {
		scanner := bufio.NewScanner(response.Body)
		scanner.Buffer(make([]byte, 0, 512*1024), 512*1024)
		for scanner.Scan() {
			if err := opts.responseFunc(scanner.Bytes()); err != nil {
				return err
			}
		}
		return scanner.Err()
	}

	return nil
}

type GenerateResponseFunc func(GenerateResponse) error

// Generate streams a completion. fn is called once per response line until
// the backend reports it is done.
func (c *Client) Generate(ctx context.Context, req *GenerateRequest, fn GenerateResponseFunc) error {
	return c.stream(ctx, http.MethodPost, "/api/generate",
		OptionRequestBody(req),
		OptionResponseFunc(func(bts []byte) error {
			var resp GenerateResponse
			if err := json.Unmarshal(bts, &resp); err != nil {
				return err
			}

			return fn(resp)
		}),
	)
}

// GenerateText collects a streamed completion into one string.
func (c *Client) GenerateText(ctx context.Context, req *GenerateRequest) (string, error) {
	var sb strings.Builder
	if err := c.Generate(ctx, req, func(resp GenerateResponse) error {
		sb.WriteString(resp.Response)
		return nil
	}); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Version reports the backend's version, doubling as a heartbeat: an error
// here means the backend is unreachable.
func (c *Client) Version(ctx context.Context) (string, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base.JoinPath("/api/version").String(), nil)
	if err != nil {
		return "", err
	}
	response, err := c.http.Do(request)
	if err != nil {
		return "", err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return "", fmt.Errorf("backend returned %d", response.StatusCode)
	}

	var resp VersionResponse
	if err := json.NewDecoder(response.Body).Decode(&resp); err != nil {
		return "", err
	}
	return resp.Version, nil
}
