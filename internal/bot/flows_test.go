package bot

import (
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"

	"tunebridge/internal/countries"
	"tunebridge/internal/platforms"
	"tunebridge/internal/storage"
)

func registrySettings() []storage.PlatformSetting {
	settings := make([]storage.PlatformSetting, 0, len(platforms.All))
	for _, p := range platforms.All {
		settings = append(settings, storage.PlatformSetting{
			Key:     p.Key,
			Name:    p.Name,
			Prefix:  p.Prefix,
			Enabled: p.DefaultEnabled,
		})
	}
	return settings
}

func TestPlatformsToggleComponentsLayout(t *testing.T) {
	rows := platformsToggleComponents(registrySettings())

	// Twelve platforms in rows of five plus the Done row.
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	counts := []int{5, 5, 2, 1}
	for i, row := range rows {
		actionsRow, ok := row.(discordgo.ActionsRow)
		if !ok {
			t.Fatalf("row %d is not an actions row", i)
		}
		if len(actionsRow.Components) != counts[i] {
			t.Fatalf("row %d has %d components, want %d", i, len(actionsRow.Components), counts[i])
		}
	}

	last := rows[3].(discordgo.ActionsRow).Components[0].(discordgo.Button)
	if last.CustomID != platformDoneID {
		t.Fatalf("expected final row to hold the done button, got %q", last.CustomID)
	}
}

func TestPlatformsToggleComponentsStyles(t *testing.T) {
	settings := []storage.PlatformSetting{
		{Key: "spotify", Name: "Spotify", Enabled: true},
		{Key: "pandora", Name: "Pandora", Enabled: false},
	}
	rows := platformsToggleComponents(settings)
	buttons := rows[0].(discordgo.ActionsRow).Components

	on := buttons[0].(discordgo.Button)
	if on.Style != discordgo.SuccessButton || on.CustomID != platformTogglePrefix+"spotify" {
		t.Fatalf("unexpected enabled button: %+v", on)
	}
	off := buttons[1].(discordgo.Button)
	if off.Style != discordgo.DangerButton || off.CustomID != platformTogglePrefix+"pandora" {
		t.Fatalf("unexpected disabled button: %+v", off)
	}
}

func TestPlatformStatusLines(t *testing.T) {
	settings := []storage.PlatformSetting{
		{Key: "spotify", Name: "Spotify", Enabled: true},
		{Key: "pandora", Name: "Pandora", Enabled: false},
	}
	lines := platformStatusLines(settings)
	if !strings.Contains(lines, "✅ Spotify") {
		t.Fatalf("expected enabled marker, got %q", lines)
	}
	if !strings.Contains(lines, "❌ Pandora") {
		t.Fatalf("expected disabled marker, got %q", lines)
	}
}

func TestPlatformsSummaryEmbedFooter(t *testing.T) {
	embed := platformsSummaryEmbed(registrySettings(), storage.CustomSettings{Color: "#A7C7E7"}, 42)
	if embed.Footer == nil || !strings.Contains(embed.Footer.Text, "42") {
		t.Fatalf("expected lookup count in footer, got %+v", embed.Footer)
	}
}

func TestCountryRangeMenuCoversAllRanges(t *testing.T) {
	row := countryRangeMenu().(discordgo.ActionsRow)
	menu := row.Components[0].(discordgo.SelectMenu)
	if menu.CustomID != countryRangeID {
		t.Fatalf("unexpected custom id %q", menu.CustomID)
	}
	if len(menu.Options) != len(countries.Ranges) {
		t.Fatalf("expected %d options, got %d", len(countries.Ranges), len(menu.Options))
	}
	for i, option := range menu.Options {
		if option.Value != countries.Ranges[i].Label {
			t.Fatalf("option %d has value %q, want %q", i, option.Value, countries.Ranges[i].Label)
		}
	}
}

func TestCountryCodeMenu(t *testing.T) {
	component, ok := countryCodeMenu(countries.Ranges[0].Label)
	if !ok {
		t.Fatal("expected menu for the first range")
	}
	menu := component.(discordgo.ActionsRow).Components[0].(discordgo.SelectMenu)
	if menu.CustomID != countryCodeID {
		t.Fatalf("unexpected custom id %q", menu.CustomID)
	}
	if len(menu.Options) == 0 || len(menu.Options) > 25 {
		t.Fatalf("option count %d outside select menu limits", len(menu.Options))
	}
	for _, option := range menu.Options {
		if !countries.Known(option.Value) {
			t.Fatalf("option value %q is not a known country", option.Value)
		}
		if !strings.Contains(option.Label, option.Value) {
			t.Fatalf("label %q does not include the code", option.Label)
		}
	}
}

func TestCountryCodeMenuUnknownRange(t *testing.T) {
	if _, ok := countryCodeMenu("XX-YY"); ok {
		t.Fatal("expected no menu for an unknown range")
	}
}

func TestModalValue(t *testing.T) {
	data := discordgo.ModalSubmitInteractionData{
		CustomID: customizeModalID,
		Components: []discordgo.MessageComponent{
			&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				&discordgo.TextInput{CustomID: customizeNameID, Value: "Groove"},
			}},
			&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				&discordgo.TextInput{CustomID: customizeColorID, Value: "#336699"},
			}},
		},
	}
	if got := modalValue(data, customizeColorID); got != "#336699" {
		t.Fatalf("expected color value, got %q", got)
	}
	if got := modalValue(data, customizeThumbnailID); got != "" {
		t.Fatalf("expected empty value for missing field, got %q", got)
	}
}

func TestTextInputRowTruncatesPlaceholder(t *testing.T) {
	long := strings.Repeat("a", 150)
	row := textInputRow(customizeNameID, "Bot name", long, discordgo.TextInputShort, 32)
	input := row.(discordgo.ActionsRow).Components[0].(discordgo.TextInput)
	if len([]rune(input.Placeholder)) != 100 {
		t.Fatalf("expected placeholder capped at 100 runes, got %d", len([]rune(input.Placeholder)))
	}
}

func TestHexColorPattern(t *testing.T) {
	valid := []string{"#A7C7E7", "A7C7E7", "#336699"}
	for _, value := range valid {
		if !hexColorPattern.MatchString(value) {
			t.Fatalf("expected %q to be valid", value)
		}
	}
	invalid := []string{"#A7C7E", "blue", "#GGGGGG", "#A7C7E7F"}
	for _, value := range invalid {
		if hexColorPattern.MatchString(value) {
			t.Fatalf("expected %q to be rejected", value)
		}
	}
}
