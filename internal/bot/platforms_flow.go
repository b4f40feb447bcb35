package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"tunebridge/internal/music"
	"tunebridge/internal/storage"
)

const (
	platformTogglePrefix = "platforms:toggle:"
	platformDoneID       = "platforms:done"
)

func (b *Bot) startPlatformsFlow(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, serverID int64) {
	settings, err := b.store.PlatformSettings(ctx, serverID)
	if err != nil {
		b.logger.Error("platform settings load failed", zap.Int64("server", serverID), zap.Error(err))
		b.respondError(session, interaction)
		return
	}
	customs := b.customsOrDefaults(ctx, serverID)

	err = session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{platformsConfigEmbed(settings, customs)},
			Components: platformsToggleComponents(settings),
			Flags:      discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		b.logger.Warn("platforms panel send failed", zap.Error(err))
		return
	}

	f := &flow{kind: flowPlatforms, serverID: serverID, userID: interactionUserID(interaction)}
	if err := b.registerFlow(session, interaction, f, platformsFlowTimeout, func(f *flow) {
		b.closePlatformsPanel(context.Background(), session, f)
	}); err != nil {
		b.logger.Warn("platforms flow registration failed", zap.Error(err))
	}
}

func (b *Bot) handlePlatformsComponent(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, f *flow) {
	data := interaction.MessageComponentData()

	if data.CustomID == platformDoneID {
		if !b.endFlow(f) {
			return
		}
		settings, err := b.store.PlatformSettings(ctx, f.serverID)
		if err != nil {
			b.respondError(session, interaction)
			return
		}
		customs := b.customsOrDefaults(ctx, f.serverID)
		lookups, err := b.store.LookupCount(ctx, f.serverID)
		if err != nil {
			lookups = 0
		}
		err = session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseUpdateMessage,
			Data: &discordgo.InteractionResponseData{
				Embeds:     []*discordgo.MessageEmbed{platformsSummaryEmbed(settings, customs, lookups)},
				Components: []discordgo.MessageComponent{},
			},
		})
		if err != nil {
			b.logger.Warn("platforms summary send failed", zap.Error(err))
		}
		return
	}

	if !strings.HasPrefix(data.CustomID, platformTogglePrefix) {
		return
	}
	key := strings.TrimPrefix(data.CustomID, platformTogglePrefix)

	settings, err := b.store.PlatformSettings(ctx, f.serverID)
	if err != nil {
		b.respondError(session, interaction)
		return
	}
	enabled := false
	for _, ps := range settings {
		if ps.Key == key {
			enabled = ps.Enabled
			break
		}
	}
	if err := b.store.SetPlatformEnabled(ctx, f.serverID, key, !enabled); err != nil {
		b.logger.Error("platform toggle failed",
			zap.Int64("server", f.serverID), zap.String("platform", key), zap.Error(err))
		b.respondError(session, interaction)
		return
	}
	settings, err = b.store.PlatformSettings(ctx, f.serverID)
	if err != nil {
		b.respondError(session, interaction)
		return
	}

	f.resetTimer(platformsFlowTimeout)
	customs := b.customsOrDefaults(ctx, f.serverID)
	err = session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{platformsConfigEmbed(settings, customs)},
			Components: platformsToggleComponents(settings),
		},
	})
	if err != nil {
		b.logger.Warn("platforms panel update failed", zap.Error(err))
	}
}

// closePlatformsPanel replaces the expired panel with a read-only summary.
func (b *Bot) closePlatformsPanel(ctx context.Context, session *discordgo.Session, f *flow) {
	settings, err := b.store.PlatformSettings(ctx, f.serverID)
	if err != nil {
		b.logger.Warn("platforms summary load failed", zap.Int64("server", f.serverID), zap.Error(err))
		return
	}
	customs := b.customsOrDefaults(ctx, f.serverID)
	lookups, err := b.store.LookupCount(ctx, f.serverID)
	if err != nil {
		lookups = 0
	}

	empty := []discordgo.MessageComponent{}
	_, err = session.InteractionResponseEdit(f.interaction, &discordgo.WebhookEdit{
		Embeds:     &[]*discordgo.MessageEmbed{platformsSummaryEmbed(settings, customs, lookups)},
		Components: &empty,
	})
	if err != nil {
		b.logger.Warn("platforms panel close failed", zap.Error(err))
	}
}

func (b *Bot) customsOrDefaults(ctx context.Context, serverID int64) storage.CustomSettings {
	customs, err := b.store.CustomSettings(ctx, serverID)
	if err != nil {
		b.logger.Warn("custom settings unavailable, using defaults",
			zap.Int64("server", serverID), zap.Error(err))
		return b.defaultCustoms()
	}
	return customs
}

func platformsConfigEmbed(settings []storage.PlatformSetting, customs storage.CustomSettings) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "🛠 Platform Settings 🛠",
		Description: "Toggle the platforms below. Green platforms show up as link buttons " +
			"and their links are detected in chat.",
		Color:  music.ParseHexColor(customs.Color),
		Fields: []*discordgo.MessageEmbedField{{Name: "Platforms", Value: platformStatusLines(settings)}},
	}
}

func platformsSummaryEmbed(settings []storage.PlatformSetting, customs storage.CustomSettings, lookups int64) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "🛠 Platform Settings 🛠",
		Description: "Platform settings saved.",
		Color:       music.ParseHexColor(customs.Color),
		Fields:      []*discordgo.MessageEmbedField{{Name: "Platforms", Value: platformStatusLines(settings)}},
		Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("%d songs looked up on this server", lookups)},
	}
}

func platformStatusLines(settings []storage.PlatformSetting) string {
	lines := make([]string, 0, len(settings))
	for _, ps := range settings {
		mark := "❌"
		if ps.Enabled {
			mark = "✅"
		}
		lines = append(lines, mark+" "+ps.Name)
	}
	return strings.Join(lines, "\n")
}

// platformsToggleComponents renders one toggle button per platform in rows
// of five, with a Done row at the end.
func platformsToggleComponents(settings []storage.PlatformSetting) []discordgo.MessageComponent {
	buttons := make([]discordgo.MessageComponent, 0, len(settings))
	for _, ps := range settings {
		style := discordgo.DangerButton
		if ps.Enabled {
			style = discordgo.SuccessButton
		}
		buttons = append(buttons, discordgo.Button{
			Label:    ps.Name,
			Style:    style,
			CustomID: platformTogglePrefix + ps.Key,
		})
	}

	rows := []discordgo.MessageComponent{}
	for start := 0; start < len(buttons); start += 5 {
		end := start + 5
		if end > len(buttons) {
			end = len(buttons)
		}
		rows = append(rows, discordgo.ActionsRow{Components: buttons[start:end]})
	}
	rows = append(rows, discordgo.ActionsRow{Components: []discordgo.MessageComponent{
		discordgo.Button{Label: "Done", Style: discordgo.PrimaryButton, CustomID: platformDoneID},
	}})
	return rows
}
