package infra

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// MullvadCheckURL reports whether traffic currently leaves through Mullvad.
const MullvadCheckURL = "https://am.i.mullvad.net/connected"

// MullvadChecker queries the Mullvad connectivity endpoint.
type MullvadChecker struct {
	client *http.Client
	url    string
}

// NewMullvadChecker creates a checker against MullvadCheckURL.
func NewMullvadChecker() *MullvadChecker {
	return NewMullvadCheckerWithURL(MullvadCheckURL)
}

// NewMullvadCheckerWithURL creates a checker against a custom endpoint (for testing).
func NewMullvadCheckerWithURL(url string) *MullvadChecker {
	return &MullvadChecker{
		client: &http.Client{Timeout: 10 * time.Second},
		url:    url,
	}
}

// Check returns the endpoint's one-line verdict.
func (c *MullvadChecker) Check(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("mullvad check: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return "", fmt.Errorf("mullvad check: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("mullvad check: unexpected status %s", resp.Status)
	}
	return strings.TrimSpace(string(body)), nil
}
