// Package gravatar derives avatar URLs from email addresses and checks whether
// an address has a registered avatar.
package gravatar

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const DefaultBaseURL = "https://www.gravatar.com/avatar/"

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Hash returns the hex SHA-256 of the trimmed, lower-cased address.
func Hash(email string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:])
}

// FallbackURL always renders: addresses without an avatar get a generated identicon.
func (c *Client) FallbackURL(email string) string {
	return c.baseURL + Hash(email) + "?d=identicon"
}

func (c *Client) AvatarURL(email string) string {
	return c.baseURL + Hash(email)
}

// Exists asks gravatar to answer 404 instead of a default image.
func (c *Client) Exists(ctx context.Context, email string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+Hash(email)+"?d=404", nil)
	if err != nil {
		return false, fmt.Errorf("build gravatar request failed: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("gravatar request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("gravatar returned status %d", resp.StatusCode)
	}
}
