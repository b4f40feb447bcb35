// Package music implements the message-to-link resolution pipeline: spotting a
// streaming link in message text, resolving it to its equivalents on other
// platforms, and composing the reply.
package music

import (
	"strings"

	"tunebridge/internal/storage"
)

// FindLink scans content for the first whitespace-delimited token containing
// the prefix of an enabled platform. Token order wins first, then settings
// iteration order decides which platform claimed it. Matching is a plain
// substring test; no URL parsing or case normalization.
func FindLink(content string, settings []storage.PlatformSetting) (link string, platformKey string, ok bool) {
	for _, token := range strings.Fields(content) {
		for _, ps := range settings {
			if !ps.Enabled {
				continue
			}
			if strings.Contains(token, ps.Prefix) {
				return token, ps.Key, true
			}
		}
	}
	return "", "", false
}
