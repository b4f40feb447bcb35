package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"tunebridge/internal/countries"
)

const (
	countryRangeID = "country:range"
	countryCodeID  = "country:code"
)

func (b *Bot) startCountryFlow(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, serverID int64) {
	current, err := b.store.Country(ctx, serverID)
	if err != nil {
		b.logger.Error("country load failed", zap.Int64("server", serverID), zap.Error(err))
		b.respondError(session, interaction)
		return
	}

	err = session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("Current lookup country: **%s (%s)**. Pick a letter range to change it.",
				countries.Name(current), current),
			Components: []discordgo.MessageComponent{countryRangeMenu()},
		},
	})
	if err != nil {
		b.logger.Warn("country panel send failed", zap.Error(err))
		return
	}

	f := &flow{kind: flowCountry, serverID: serverID, userID: interactionUserID(interaction)}
	if err := b.registerFlow(session, interaction, f, countryFlowTimeout, func(f *flow) {
		b.closeCountryPanel(session, f)
	}); err != nil {
		b.logger.Warn("country flow registration failed", zap.Error(err))
	}
}

func (b *Bot) handleCountryComponent(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, f *flow) {
	data := interaction.MessageComponentData()
	if len(data.Values) == 0 {
		return
	}

	switch data.CustomID {
	case countryRangeID:
		label := data.Values[0]
		menu, ok := countryCodeMenu(label)
		if !ok {
			b.respondError(session, interaction)
			return
		}
		f.rangeLabel = label
		f.resetTimer(countryFlowTimeout)
		err := session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseUpdateMessage,
			Data: &discordgo.InteractionResponseData{
				Content:    fmt.Sprintf("Pick the lookup country (%s).", label),
				Components: []discordgo.MessageComponent{menu},
			},
		})
		if err != nil {
			b.logger.Warn("country menu update failed", zap.Error(err))
		}

	case countryCodeID:
		code := data.Values[0]
		if !countries.Known(code) {
			b.respondError(session, interaction)
			return
		}
		if err := b.store.SetCountry(ctx, f.serverID, code); err != nil {
			b.logger.Error("country update failed",
				zap.Int64("server", f.serverID), zap.String("country", code), zap.Error(err))
			b.respondError(session, interaction)
			return
		}
		if !b.endFlow(f) {
			return
		}
		err := session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseUpdateMessage,
			Data: &discordgo.InteractionResponseData{
				Content:    fmt.Sprintf("Lookup country set to **%s (%s)**.", countries.Name(code), code),
				Components: []discordgo.MessageComponent{},
			},
		})
		if err != nil {
			b.logger.Warn("country confirmation failed", zap.Error(err))
		}
	}
}

func (b *Bot) closeCountryPanel(session *discordgo.Session, f *flow) {
	content := "Country selection timed out. Run the command again to change it."
	empty := []discordgo.MessageComponent{}
	_, err := session.InteractionResponseEdit(f.interaction, &discordgo.WebhookEdit{
		Content:    &content,
		Components: &empty,
	})
	if err != nil {
		b.logger.Warn("country panel close failed", zap.Error(err))
	}
}

func countryRangeMenu() discordgo.MessageComponent {
	options := make([]discordgo.SelectMenuOption, 0, len(countries.Ranges))
	for _, r := range countries.Ranges {
		options = append(options, discordgo.SelectMenuOption{
			Label: r.Label,
			Value: r.Label,
		})
	}
	return discordgo.ActionsRow{Components: []discordgo.MessageComponent{
		discordgo.SelectMenu{
			MenuType:    discordgo.StringSelectMenu,
			CustomID:    countryRangeID,
			Placeholder: "Country range",
			Options:     options,
		},
	}}
}

func countryCodeMenu(rangeLabel string) (discordgo.MessageComponent, bool) {
	r, ok := countries.RangeByLabel(rangeLabel)
	if !ok {
		return nil, false
	}
	codes := countries.CodesInRange(r)
	options := make([]discordgo.SelectMenuOption, 0, len(codes))
	for _, code := range codes {
		options = append(options, discordgo.SelectMenuOption{
			Label: fmt.Sprintf("%s (%s)", countries.Name(code), code),
			Value: code,
		})
	}
	return discordgo.ActionsRow{Components: []discordgo.MessageComponent{
		discordgo.SelectMenu{
			MenuType:    discordgo.StringSelectMenu,
			CustomID:    countryCodeID,
			Placeholder: "Country",
			Options:     options,
		},
	}}, true
}
