package utils

import (
	"fmt"
	"net/url"
)

// SigningURL builds the public signing link for a contract. The plaintext
// token appears only here, never persisted unhashed.
func SigningURL(baseURL, token string) (string, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	parsed.Path = fmt.Sprintf("/sign/%s", token)
	return parsed.String(), nil
}
