package music

import (
	"fmt"
	"testing"

	"github.com/bwmarrin/discordgo"

	"tunebridge/internal/storage"
)

var testCustoms = storage.CustomSettings{
	Name:        "Tunebridge",
	Color:       "#112233",
	EmbedSearch: "Searching...",
	EmbedFinal:  "Found it",
}

func TestComposeTwoButtonsSingleRow(t *testing.T) {
	settings := testSettings(map[string]bool{"spotify": true, "appleMusic": true})
	match := &Match{
		Links: map[string]string{
			"spotify":    "https://open.spotify.com/track/abc",
			"appleMusic": "https://music.apple.com/track/abc",
		},
		Title:  "Song",
		Artist: "Artist",
	}

	reply := Compose(match, settings, testCustoms, "https://cdn.example.com/default.gif")
	if reply == nil {
		t.Fatal("expected a reply")
	}

	if len(reply.Components) != 1 {
		t.Fatalf("expected one action row, got %d", len(reply.Components))
	}
	row := reply.Components[0].(discordgo.ActionsRow)
	if len(row.Components) != 2 {
		t.Fatalf("expected two buttons, got %d", len(row.Components))
	}
	first := row.Components[0].(discordgo.Button)
	if first.Label != "Spotify" || first.Style != discordgo.LinkButton {
		t.Fatalf("unexpected first button: %+v", first)
	}

	if reply.ResultEmbed.Description != "Song - Artist" {
		t.Fatalf("unexpected description: %s", reply.ResultEmbed.Description)
	}
	if reply.ResultEmbed.Title != "Found it" {
		t.Fatalf("unexpected title: %s", reply.ResultEmbed.Title)
	}
	if reply.ResultEmbed.Color != 0x112233 {
		t.Fatalf("unexpected color: %x", reply.ResultEmbed.Color)
	}
	if reply.ResultEmbed.Thumbnail.URL != "https://cdn.example.com/default.gif" {
		t.Fatalf("unexpected thumbnail: %s", reply.ResultEmbed.Thumbnail.URL)
	}
}

func TestComposeNoEnabledMatches(t *testing.T) {
	settings := testSettings(map[string]bool{"spotify": true})
	match := &Match{Links: map[string]string{"youtube": "https://www.youtube.com/watch?v=x"}}

	if reply := Compose(match, settings, testCustoms, ""); reply != nil {
		t.Fatal("no enabled platform matched, reply must be nil")
	}
}

func TestComposePlayerPriority(t *testing.T) {
	settings := testSettings(map[string]bool{"spotify": true, "youtube": true})
	match := &Match{Links: map[string]string{
		"spotify": "https://open.spotify.com/track/abc",
		"youtube": "https://www.youtube.com/watch?v=x",
	}}

	reply := Compose(match, settings, testCustoms, "")
	if reply == nil {
		t.Fatal("expected a reply")
	}
	if reply.PlayerURL != "https://www.youtube.com/watch?v=x" {
		t.Fatalf("youtube outranks spotify for the inline player, got %s", reply.PlayerURL)
	}
	if reply.PlayerContent() != "[    ♪♫♪](https://www.youtube.com/watch?v=x)" {
		t.Fatalf("unexpected player content: %s", reply.PlayerContent())
	}
}

func TestComposeBatchesRowsOfFive(t *testing.T) {
	var settings []storage.PlatformSetting
	match := &Match{Links: map[string]string{}}
	for i := 0; i < 12; i++ {
		key := fmt.Sprintf("p%02d", i)
		settings = append(settings, storage.PlatformSetting{
			Key: key, Name: key, Prefix: key + ".example", Enabled: true,
		})
		match.Links[key] = "https://example.com/" + key
	}

	reply := Compose(match, settings, testCustoms, "")
	if reply == nil {
		t.Fatal("expected a reply")
	}
	if len(reply.Components) != 3 {
		t.Fatalf("expected 3 rows for 12 buttons, got %d", len(reply.Components))
	}
	sizes := []int{5, 5, 2}
	for i, want := range sizes {
		row := reply.Components[i].(discordgo.ActionsRow)
		if len(row.Components) != want {
			t.Fatalf("row %d: expected %d buttons, got %d", i, want, len(row.Components))
		}
	}
}

func TestComposeAnimationOverride(t *testing.T) {
	settings := testSettings(map[string]bool{"spotify": true})
	match := &Match{Links: map[string]string{"spotify": "https://open.spotify.com/track/abc"}}

	customs := testCustoms
	customs.Animation = "https://cdn.example.com/custom.gif"

	reply := Compose(match, settings, customs, "https://cdn.example.com/default.gif")
	if reply.ResultEmbed.Thumbnail.URL != "https://cdn.example.com/custom.gif" {
		t.Fatalf("override thumbnail lost: %s", reply.ResultEmbed.Thumbnail.URL)
	}
}

func TestParseHexColor(t *testing.T) {
	if got := ParseHexColor("#FF00AA"); got != 0xFF00AA {
		t.Fatalf("unexpected color: %x", got)
	}
	if got := ParseHexColor(" #010203 "); got != 0x010203 {
		t.Fatalf("whitespace not tolerated: %x", got)
	}
	if got := ParseHexColor("garbage"); got != fallbackColor {
		t.Fatalf("malformed input must fall back: %x", got)
	}
	if got := ParseHexColor(""); got != fallbackColor {
		t.Fatalf("empty input must fall back: %x", got)
	}
}
