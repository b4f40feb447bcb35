package platforms

import "strings"

// Platform describes one streaming service the bot knows about. Prefix is the
// substring used to spot links to the service in message text, without a full
// URL parse.
type Platform struct {
	Key            string
	Name           string
	Prefix         string
	DefaultEnabled bool
}

// All lists every known platform in registry order. The order is stable and is
// the order settings rows and toggle buttons are presented in.
// Could add later: napster, spinrilla, audius, boomplay, bandcamp.
var All = []Platform{
	{Key: "spotify", Name: "Spotify", Prefix: "open.spotify", DefaultEnabled: true},
	{Key: "tidal", Name: "Tidal", Prefix: "tidal.com", DefaultEnabled: true},
	{Key: "amazonMusic", Name: "Amazon Music", Prefix: "music.amazon", DefaultEnabled: true},
	{Key: "youtubeMusic", Name: "YouTube Music", Prefix: "music.youtube", DefaultEnabled: true},
	{Key: "youtube", Name: "YouTube", Prefix: "www.youtu", DefaultEnabled: true},
	{Key: "appleMusic", Name: "Apple Music", Prefix: "music.apple", DefaultEnabled: true},
	{Key: "deezer", Name: "Deezer", Prefix: "deezer.com", DefaultEnabled: true},
	{Key: "soundcloud", Name: "SoundCloud", Prefix: "soundcloud.com", DefaultEnabled: false},
	{Key: "anghami", Name: "Anghami", Prefix: "anghami.", DefaultEnabled: false},
	{Key: "audiomack", Name: "Audiomack", Prefix: "audiomack.com", DefaultEnabled: false},
	{Key: "pandora", Name: "Pandora", Prefix: "pandora.com", DefaultEnabled: false},
	{Key: "yandex", Name: "Yandex", Prefix: "music.yandex", DefaultEnabled: false},
}

// EmbedPriority orders the platforms whose links Discord renders with a native
// inline player. The first resolved one wins.
var EmbedPriority = []string{"soundcloud", "youtube", "spotify", "appleMusic", "amazonMusic"}

// Family collapses platform-key variants of the same service, so youtube and
// youtubeMusic compare equal. Used by the degenerate-result guard.
func Family(key string) string {
	return strings.ToLower(strings.TrimSuffix(key, "Music"))
}

// Lookup returns the registry entry for key.
func Lookup(key string) (Platform, bool) {
	for _, p := range All {
		if p.Key == key {
			return p, true
		}
	}
	return Platform{}, false
}
