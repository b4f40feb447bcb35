package bot

import (
	"encoding/json"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

func commandDefinitions() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "platforms",
			Description: "Choose which music platforms are linked and detected",
		},
		{
			Name:        "country",
			Description: "Set the country used for music link lookups",
		},
		{
			Name:        "customize",
			Description: "Customize the look of music link replies",
		},
	}
}

// syncGuildCommands reconciles the guild's registered commands with the
// desired set. Creates and edits only happen on an actual difference, so
// repeated restarts stay within Discord's daily command limits.
func (b *Bot) syncGuildCommands(session *discordgo.Session, guildID string) error {
	appID := session.State.User.ID
	existing, err := session.ApplicationCommands(appID, guildID)
	if err != nil {
		return fmt.Errorf("listing commands: %w", err)
	}

	existingByName := make(map[string]*discordgo.ApplicationCommand, len(existing))
	for _, cmd := range existing {
		existingByName[cmd.Name] = cmd
	}

	desired := make(map[string]struct{})
	for _, cmd := range commandDefinitions() {
		desired[cmd.Name] = struct{}{}
		current, ok := existingByName[cmd.Name]
		if !ok {
			if _, err := session.ApplicationCommandCreate(appID, guildID, cmd); err != nil {
				return fmt.Errorf("creating %s: %w", cmd.Name, err)
			}
			continue
		}
		if commandsEqual(cmd, current) {
			continue
		}
		if _, err := session.ApplicationCommandEdit(appID, guildID, current.ID, cmd); err != nil {
			return fmt.Errorf("editing %s: %w", cmd.Name, err)
		}
	}

	for _, cmd := range existing {
		if _, ok := desired[cmd.Name]; ok {
			continue
		}
		if err := session.ApplicationCommandDelete(appID, guildID, cmd.ID); err != nil {
			return fmt.Errorf("deleting %s: %w", cmd.Name, err)
		}
	}
	return nil
}

type normalizedChoice struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type normalizedOption struct {
	Type        int                `json:"type"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Required    bool               `json:"required"`
	Choices     []normalizedChoice `json:"choices,omitempty"`
}

// commandsEqual compares the fields we define against what Discord
// returned. Discord echoes extra fields (IDs, versions, defaults), so the
// comparison runs over a normalized view of both sides.
func commandsEqual(local, remote *discordgo.ApplicationCommand) bool {
	if local.Description != remote.Description {
		return false
	}
	localOpts, err := json.Marshal(normalizeOptions(local.Options))
	if err != nil {
		return false
	}
	remoteOpts, err := json.Marshal(normalizeOptions(remote.Options))
	if err != nil {
		return false
	}
	return string(localOpts) == string(remoteOpts)
}

func normalizeOptions(options []*discordgo.ApplicationCommandOption) []normalizedOption {
	normalized := make([]normalizedOption, 0, len(options))
	for _, opt := range options {
		if opt == nil {
			continue
		}
		n := normalizedOption{
			Type:        int(opt.Type),
			Name:        opt.Name,
			Description: opt.Description,
			Required:    opt.Required,
		}
		for _, choice := range opt.Choices {
			if choice == nil {
				continue
			}
			n.Choices = append(n.Choices, normalizedChoice{
				Name:  choice.Name,
				Value: fmt.Sprint(choice.Value),
			})
		}
		normalized = append(normalized, n)
	}
	return normalized
}
