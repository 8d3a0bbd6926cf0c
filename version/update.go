package version

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"runtime"
)

var updateCheckURLBase = "https://coax.ai"

// CheckForUpdate calls the coax.ai update API and reports whether a newer
// version is available.
func CheckForUpdate(ctx context.Context) (bool, string, error) {
	requestURL, err := url.Parse(updateCheckURLBase + "/api/update")
	if err != nil {
		return false, "", fmt.Errorf("parse update URL: %w", err)
	}

	query := requestURL.Query()
	query.Add("os", runtime.GOOS)
	query.Add("arch", runtime.GOARCH)
	query.Add("version", Version)
	requestURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL.String(), nil)
	if err != nil {
		return false, "", fmt.Errorf("create request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return false, "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, "", fmt.Errorf("update check returned %d", resp.StatusCode)
	}

	var body struct {
		Version string `json:"version"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, "", err
	}
	return body.Version != "" && body.Version != Version, body.Version, nil
}
