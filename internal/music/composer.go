package music

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"tunebridge/internal/platforms"
	"tunebridge/internal/storage"
)

const fallbackColor = 0xA7C7E7

// Reply is the composed two-part response for one resolved link. PlayerURL is
// empty when no resolved platform renders a native inline player.
type Reply struct {
	PlayerURL   string
	SearchEmbed *discordgo.MessageEmbed
	ResultEmbed *discordgo.MessageEmbed
	Components  []discordgo.MessageComponent
}

// PlayerContent wraps the inline-playable URL in minimal text so the chat
// client renders its native player instead of the full link card.
func (r *Reply) PlayerContent() string {
	return fmt.Sprintf("[    ♪♫♪](%s)", r.PlayerURL)
}

// Compose assembles the reply for a match: a searching embed, an optional
// inline-player link, and a result embed with one link button per platform
// that is both enabled and resolved, in settings order, batched five per row.
// Returns nil when no enabled platform matched; nothing should be sent then.
func Compose(match *Match, settings []storage.PlatformSetting, customs storage.CustomSettings, defaultThumbnail string) *Reply {
	var buttons []discordgo.MessageComponent
	for _, ps := range settings {
		if !ps.Enabled {
			continue
		}
		target, ok := match.Links[ps.Key]
		if !ok {
			continue
		}
		buttons = append(buttons, discordgo.Button{
			Label: ps.Name,
			Style: discordgo.LinkButton,
			URL:   target,
		})
	}
	if len(buttons) == 0 {
		return nil
	}

	color := ParseHexColor(customs.Color)

	thumbnail := customs.Animation
	if thumbnail == "" {
		thumbnail = defaultThumbnail
	}

	reply := &Reply{
		SearchEmbed: &discordgo.MessageEmbed{
			Title: customs.EmbedSearch,
			Color: color,
		},
		ResultEmbed: &discordgo.MessageEmbed{
			Title:       customs.EmbedFinal,
			Description: fmt.Sprintf("%s - %s", match.Title, match.Artist),
			Color:       color,
			Thumbnail:   &discordgo.MessageEmbedThumbnail{URL: thumbnail},
		},
		Components: buttonRows(buttons),
	}

	for _, key := range platforms.EmbedPriority {
		if target, ok := match.Links[key]; ok {
			reply.PlayerURL = target
			break
		}
	}

	return reply
}

// buttonRows batches buttons into action rows of at most five.
func buttonRows(buttons []discordgo.MessageComponent) []discordgo.MessageComponent {
	var rows []discordgo.MessageComponent
	for start := 0; start < len(buttons); start += 5 {
		end := start + 5
		if end > len(buttons) {
			end = len(buttons)
		}
		rows = append(rows, discordgo.ActionsRow{Components: buttons[start:end]})
	}
	return rows
}

// ParseHexColor converts "#RRGGBB" to the integer Discord embeds expect.
// Malformed input falls back to the stock accent color.
func ParseHexColor(value string) int {
	value = strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(value) != 6 {
		return fallbackColor
	}
	parsed, err := strconv.ParseInt(value, 16, 32)
	if err != nil {
		return fallbackColor
	}
	return int(parsed)
}
