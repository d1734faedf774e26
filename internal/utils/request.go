package utils

import (
	"strings"
)

// MaxUserAgentLength bounds stored user agent strings.
const MaxUserAgentLength = 512

// ClientIP resolves the originating client IP from the forwarded-header chain,
// falling back to the transport remote address and then "unknown".
func ClientIP(forwardedFor, realIP, remoteAddr string) string {
	if forwardedFor != "" {
		// First hop in the chain is the originating client.
		parts := strings.Split(forwardedFor, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}
	if realIP != "" {
		return realIP
	}
	if remoteAddr != "" {
		return remoteAddr
	}
	return "unknown"
}

// TruncateUserAgent bounds a user agent string to MaxUserAgentLength bytes.
func TruncateUserAgent(ua string) string {
	if len(ua) > MaxUserAgentLength {
		return ua[:MaxUserAgentLength]
	}
	return ua
}
