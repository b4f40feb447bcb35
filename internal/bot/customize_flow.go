package bot

import (
	"context"
	"regexp"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"tunebridge/internal/storage"
	"tunebridge/internal/utils"
)

const (
	customizeModalID     = "customize:modal"
	customizeNameID      = "customize:name"
	customizeColorID     = "customize:color"
	customizeSearchID    = "customize:search"
	customizeFinalID     = "customize:final"
	customizeThumbnailID = "customize:thumbnail"
)

var hexColorPattern = regexp.MustCompile(`^#?[0-9a-fA-F]{6}$`)

// openCustomizeModal shows the reply customization form. Current values
// appear as placeholders, so submitting a blank field resets it to the
// default.
func (b *Bot) openCustomizeModal(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, serverID int64) {
	customs := b.customsOrDefaults(ctx, serverID)

	err := session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: customizeModalID,
			Title:    "Customize Replies",
			Components: []discordgo.MessageComponent{
				textInputRow(customizeNameID, "Bot name", customs.Name, discordgo.TextInputShort, 32),
				textInputRow(customizeColorID, "Embed color (hex, like #A7C7E7)", customs.Color, discordgo.TextInputShort, 7),
				textInputRow(customizeSearchID, "Searching message", customs.EmbedSearch, discordgo.TextInputParagraph, 256),
				textInputRow(customizeFinalID, "Result message", customs.EmbedFinal, discordgo.TextInputParagraph, 256),
				textInputRow(customizeThumbnailID, "Thumbnail image URL", customs.Animation, discordgo.TextInputShort, 512),
			},
		},
	})
	if err != nil {
		b.logger.Warn("customize modal send failed", zap.Error(err))
	}
}

func (b *Bot) handleCustomizeSubmit(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	if interaction.GuildID == "" {
		return
	}
	serverID, err := parseSnowflake(interaction.GuildID)
	if err != nil {
		return
	}

	data := interaction.ModalSubmitData()
	cs := storage.CustomSettings{
		Name:        strings.TrimSpace(modalValue(data, customizeNameID)),
		Color:       strings.TrimSpace(modalValue(data, customizeColorID)),
		EmbedSearch: strings.TrimSpace(modalValue(data, customizeSearchID)),
		EmbedFinal:  strings.TrimSpace(modalValue(data, customizeFinalID)),
	}

	if cs.Color != "" && !hexColorPattern.MatchString(cs.Color) {
		b.respond(session, interaction, "Color must be a hex value like #A7C7E7.", true)
		return
	}
	if thumbnail := strings.TrimSpace(modalValue(data, customizeThumbnailID)); thumbnail != "" {
		normalized, err := utils.NormalizeImageURL(thumbnail)
		if err != nil {
			b.respond(session, interaction,
				"Thumbnail must be an https image URL ending in .png, .jpg, .jpeg, .gif or .webp.", true)
			return
		}
		cs.Animation = normalized
	}

	if err := b.store.SetCustomSettings(ctx, serverID, cs); err != nil {
		b.logger.Error("custom settings update failed", zap.Int64("server", serverID), zap.Error(err))
		b.respondError(session, interaction)
		return
	}
	b.respond(session, interaction, "Reply settings saved.", true)
}

func textInputRow(customID, label, placeholder string, style discordgo.TextInputStyle, maxLength int) discordgo.MessageComponent {
	// Discord caps placeholders at 100 characters.
	if runes := []rune(placeholder); len(runes) > 100 {
		placeholder = string(runes[:100])
	}
	return discordgo.ActionsRow{Components: []discordgo.MessageComponent{
		discordgo.TextInput{
			CustomID:    customID,
			Label:       label,
			Style:       style,
			Placeholder: placeholder,
			Required:    false,
			MaxLength:   maxLength,
		},
	}}
}

func modalValue(data discordgo.ModalSubmitInteractionData, customID string) string {
	for _, row := range data.Components {
		actionsRow, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, component := range actionsRow.Components {
			input, ok := component.(*discordgo.TextInput)
			if !ok || input.CustomID != customID {
				continue
			}
			return input.Value
		}
	}
	return ""
}
