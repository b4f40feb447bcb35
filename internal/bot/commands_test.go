package bot

import (
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestCommandsEqualIgnoresServerFields(t *testing.T) {
	local := &discordgo.ApplicationCommand{
		Name:        "platforms",
		Description: "Choose which music platforms are linked and detected",
	}
	remote := &discordgo.ApplicationCommand{
		ID:          "12345",
		Version:     "67890",
		Name:        "platforms",
		Description: "Choose which music platforms are linked and detected",
	}
	if !commandsEqual(local, remote) {
		t.Fatal("expected commands to compare equal")
	}
}

func TestCommandsEqualDescriptionChange(t *testing.T) {
	local := &discordgo.ApplicationCommand{Name: "country", Description: "new text"}
	remote := &discordgo.ApplicationCommand{Name: "country", Description: "old text"}
	if commandsEqual(local, remote) {
		t.Fatal("expected description change to be detected")
	}
}

func TestCommandsEqualOptionChange(t *testing.T) {
	local := &discordgo.ApplicationCommand{
		Name:        "example",
		Description: "same",
		Options: []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "value",
			Description: "a value",
			Required:    true,
		}},
	}
	remote := &discordgo.ApplicationCommand{
		Name:        "example",
		Description: "same",
		Options: []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "value",
			Description: "a value",
			Required:    false,
		}},
	}
	if commandsEqual(local, remote) {
		t.Fatal("expected required flag change to be detected")
	}
}

func TestCommandsEqualChoiceValueTypes(t *testing.T) {
	// Discord returns JSON numbers as float64; normalization has to make
	// that compare equal to a locally declared int.
	local := &discordgo.ApplicationCommand{
		Name:        "example",
		Description: "same",
		Options: []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "count",
			Description: "a count",
			Choices: []*discordgo.ApplicationCommandOptionChoice{
				{Name: "one", Value: 1},
			},
		}},
	}
	remote := &discordgo.ApplicationCommand{
		Name:        "example",
		Description: "same",
		Options: []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "count",
			Description: "a count",
			Choices: []*discordgo.ApplicationCommandOptionChoice{
				{Name: "one", Value: float64(1)},
			},
		}},
	}
	if !commandsEqual(local, remote) {
		t.Fatal("expected numeric choice values to compare equal across types")
	}
}

func TestCommandDefinitionsNames(t *testing.T) {
	want := map[string]bool{"platforms": true, "country": true, "customize": true}
	defs := commandDefinitions()
	if len(defs) != len(want) {
		t.Fatalf("expected %d commands, got %d", len(want), len(defs))
	}
	for _, cmd := range defs {
		if !want[cmd.Name] {
			t.Fatalf("unexpected command %q", cmd.Name)
		}
		if cmd.Description == "" {
			t.Fatalf("command %q has no description", cmd.Name)
		}
	}
}
