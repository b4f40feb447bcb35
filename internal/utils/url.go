package utils

import (
	"errors"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

var imageExtensions = []string{".png", ".gif", ".jpg", ".jpeg", ".webp"}

// NormalizeImageURL validates a user-supplied thumbnail URL and returns it with
// a lowercased, punycode-encoded host. The scheme must be https and the path
// must end in a Discord-embeddable image extension.
func NormalizeImageURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("empty url")
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if parsed.Scheme != "https" {
		return "", errors.New("thumbnail url must use https")
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return "", errors.New("thumbnail url has no host")
	}
	if asciiHost, err := idna.ToASCII(host); err == nil {
		host = asciiHost
	}
	if port := parsed.Port(); port != "" {
		parsed.Host = host + ":" + port
	} else {
		parsed.Host = host
	}
	parsed.Fragment = ""
	parsed.User = nil

	if !hasImageExtension(parsed.Path) {
		return "", errors.New("thumbnail url must point at an image file")
	}

	return parsed.String(), nil
}

func hasImageExtension(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range imageExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
