package bot

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

func (b *Bot) onInteractionCreate(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	ctx := context.Background()

	switch interaction.Type {
	case discordgo.InteractionApplicationCommand:
		b.handleCommand(ctx, session, interaction)
	case discordgo.InteractionMessageComponent:
		b.handleComponent(ctx, session, interaction)
	case discordgo.InteractionModalSubmit:
		b.handleModalSubmit(ctx, session, interaction)
	}
}

func (b *Bot) handleCommand(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	if interaction.GuildID == "" {
		b.respond(session, interaction, "This command only works in a server.", true)
		return
	}
	serverID, err := parseSnowflake(interaction.GuildID)
	if err != nil {
		return
	}

	data := interaction.ApplicationCommandData()
	switch data.Name {
	case "platforms":
		b.startPlatformsFlow(ctx, session, interaction, serverID)
	case "country":
		b.startCountryFlow(ctx, session, interaction, serverID)
	case "customize":
		b.openCustomizeModal(ctx, session, interaction, serverID)
	}
}

// handleComponent routes a button press or select choice to the flow that
// owns the message. Components on messages without a live flow are stale
// and get ignored.
func (b *Bot) handleComponent(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	if interaction.Message == nil {
		return
	}

	b.flowsMu.Lock()
	f := b.flows[interaction.Message.ID]
	b.flowsMu.Unlock()
	if f == nil {
		return
	}
	if interactionUserID(interaction) != f.userID {
		return
	}

	switch f.kind {
	case flowPlatforms:
		b.handlePlatformsComponent(ctx, session, interaction, f)
	case flowCountry:
		b.handleCountryComponent(ctx, session, interaction, f)
	}
}

func (b *Bot) handleModalSubmit(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	data := interaction.ModalSubmitData()
	if data.CustomID == customizeModalID {
		b.handleCustomizeSubmit(ctx, session, interaction)
	}
}

func interactionUserID(interaction *discordgo.InteractionCreate) string {
	if interaction.Member != nil && interaction.Member.User != nil {
		return interaction.Member.User.ID
	}
	if interaction.User != nil {
		return interaction.User.ID
	}
	return ""
}

func (b *Bot) respond(session *discordgo.Session, interaction *discordgo.InteractionCreate, content string, ephemeral bool) {
	flags := discordgo.MessageFlags(0)
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	err := session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   flags,
		},
	})
	if err != nil {
		b.logger.Warn("interaction respond failed", zap.Error(err))
	}
}

func (b *Bot) respondError(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	b.respond(session, interaction, "Something went wrong. Please try again later.", true)
}
