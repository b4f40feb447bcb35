package bot

import (
	"context"
	"strconv"
	"sync"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"tunebridge/internal/config"
	"tunebridge/internal/music"
	"tunebridge/internal/storage"
)

// settingsStore is the slice of the storage API the bot consumes.
type settingsStore interface {
	EnsureServerInitialized(ctx context.Context, serverID int64, serverName string) error
	PlatformSettings(ctx context.Context, serverID int64) ([]storage.PlatformSetting, error)
	SetPlatformEnabled(ctx context.Context, serverID int64, platformKey string, enabled bool) error
	CustomSettings(ctx context.Context, serverID int64) (storage.CustomSettings, error)
	SetCustomSettings(ctx context.Context, serverID int64, cs storage.CustomSettings) error
	Country(ctx context.Context, serverID int64) (string, error)
	SetCountry(ctx context.Context, serverID int64, code string) error
	DeleteServerSettings(ctx context.Context, serverID int64) error
	RecordLookup(ctx context.Context, serverID int64, platformKey, title, artist string) error
	LookupCount(ctx context.Context, serverID int64) (int64, error)
}

type Bot struct {
	cfg      config.Config
	logger   *zap.Logger
	store    settingsStore
	resolver *music.Resolver
	session  *discordgo.Session

	flowsMu sync.Mutex
	flows   map[string]*flow
}

func New(cfg config.Config, logger *zap.Logger, store *storage.Store, resolver *music.Resolver) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, err
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildIntegrations |
		discordgo.IntentsMessageContent

	return &Bot{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		resolver: resolver,
		session:  session,
		flows:    make(map[string]*flow),
	}, nil
}

func (b *Bot) Start() error {
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onGuildCreate)
	b.session.AddHandler(b.onGuildDelete)
	b.session.AddHandler(b.onMessageCreate)
	b.session.AddHandler(b.onInteractionCreate)

	return b.session.Open()
}

func (b *Bot) Close(ctx context.Context) {
	_ = ctx
	b.flowsMu.Lock()
	for id, f := range b.flows {
		f.stopTimer()
		delete(b.flows, id)
	}
	b.flowsMu.Unlock()
	if b.session != nil {
		_ = b.session.Close()
	}
}

func (b *Bot) onReady(session *discordgo.Session, event *discordgo.Ready) {
	b.logger.Info("discord ready",
		zap.String("user", session.State.User.Username),
		zap.Int("guilds", len(event.Guilds)))
	b.setPresence(session, b.cfg.Presence.Starting, "idle")
	b.setPresence(session, b.cfg.Presence.Online, "online")
}

// onGuildCreate fires once per guild on connect and again when the bot
// joins a new guild. Both paths want settings initialized and commands
// synced.
func (b *Bot) onGuildCreate(session *discordgo.Session, event *discordgo.GuildCreate) {
	if event.Guild == nil || event.Guild.Unavailable {
		return
	}

	ctx := context.Background()
	serverID, err := parseSnowflake(event.Guild.ID)
	if err != nil {
		b.logger.Error("bad guild id", zap.String("guild", event.Guild.ID), zap.Error(err))
		return
	}

	if err := b.store.EnsureServerInitialized(ctx, serverID, event.Guild.Name); err != nil {
		b.logger.Error("guild initialization failed",
			zap.String("guild", event.Guild.ID), zap.Error(err))
	}

	if err := b.syncGuildCommands(session, event.Guild.ID); err != nil {
		b.logger.Error("command sync failed",
			zap.String("guild", event.Guild.ID), zap.Error(err))
	}
}

func (b *Bot) onGuildDelete(session *discordgo.Session, event *discordgo.GuildDelete) {
	// Unavailable means an outage, not a removal. Settings stay.
	if event.Guild == nil || event.Unavailable {
		return
	}

	serverID, err := parseSnowflake(event.Guild.ID)
	if err != nil {
		return
	}
	b.logger.Info("removed from guild, deleting settings", zap.String("guild", event.Guild.ID))
	if err := b.store.DeleteServerSettings(context.Background(), serverID); err != nil {
		b.logger.Error("settings delete failed", zap.String("guild", event.Guild.ID), zap.Error(err))
	}
}

func (b *Bot) onMessageCreate(session *discordgo.Session, msg *discordgo.MessageCreate) {
	if msg.Author == nil || msg.Author.Bot || msg.GuildID == "" {
		return
	}

	serverID, err := parseSnowflake(msg.GuildID)
	if err != nil {
		return
	}

	ctx := context.Background()
	settings, err := b.store.PlatformSettings(ctx, serverID)
	if err != nil {
		b.logger.Error("platform settings unavailable, skipping message",
			zap.String("guild", msg.GuildID), zap.Error(err))
		return
	}

	link, sourceKey, ok := music.FindLink(msg.Content, settings)
	if !ok {
		return
	}

	b.setPresence(session, b.cfg.Presence.Analyzing, "idle")
	defer b.setPresence(session, b.cfg.Presence.Online, "online")

	country, err := b.store.Country(ctx, serverID)
	if err != nil {
		b.logger.Warn("country unavailable, using default",
			zap.String("guild", msg.GuildID), zap.Error(err))
		country = b.cfg.Defaults.Country
	}

	match, err := b.resolver.Resolve(ctx, link, country)
	if err != nil {
		b.logger.Warn("link lookup failed",
			zap.String("guild", msg.GuildID), zap.String("link", link), zap.Error(err))
		return
	}
	if !music.CrossPlatform(match, sourceKey) {
		return
	}

	customs, err := b.store.CustomSettings(ctx, serverID)
	if err != nil {
		b.logger.Warn("custom settings unavailable, using defaults",
			zap.String("guild", msg.GuildID), zap.Error(err))
		customs = b.defaultCustoms()
	}

	reply := music.Compose(match, settings, customs, b.cfg.Defaults.Animation)
	if reply == nil {
		return
	}

	b.sendReply(session, msg, reply)

	if err := b.store.RecordLookup(ctx, serverID, sourceKey, match.Title, match.Artist); err != nil {
		b.logger.Warn("lookup record failed", zap.String("guild", msg.GuildID), zap.Error(err))
	}
}

// sendReply delivers the composed reply. The inline player part goes out
// first when available, then the button embed. Everything is sent silent.
func (b *Bot) sendReply(session *discordgo.Session, msg *discordgo.MessageCreate, reply *music.Reply) {
	if reply.PlayerURL != "" {
		if _, err := session.ChannelMessageEditComplex(&discordgo.MessageEdit{
			Channel: msg.ChannelID,
			ID:      msg.ID,
			Flags:   msg.Flags | discordgo.MessageFlagsSuppressEmbeds,
		}); err != nil {
			b.logger.Debug("suppressing source preview failed", zap.Error(err))
		}

		if _, err := session.ChannelMessageSendComplex(msg.ChannelID, &discordgo.MessageSend{
			Embeds: []*discordgo.MessageEmbed{reply.SearchEmbed},
			Flags:  discordgo.MessageFlagsSuppressNotifications,
		}); err != nil {
			b.logger.Warn("search embed send failed", zap.Error(err))
		}
		if _, err := session.ChannelMessageSendComplex(msg.ChannelID, &discordgo.MessageSend{
			Content: reply.PlayerContent(),
			Flags:   discordgo.MessageFlagsSuppressNotifications,
		}); err != nil {
			b.logger.Warn("player send failed", zap.Error(err))
		}
	}

	if _, err := session.ChannelMessageSendComplex(msg.ChannelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{reply.ResultEmbed},
		Components: reply.Components,
		Flags:      discordgo.MessageFlagsSuppressNotifications,
	}); err != nil {
		b.logger.Warn("result send failed", zap.Error(err))
	}
}

func (b *Bot) setPresence(session *discordgo.Session, text, status string) {
	err := session.UpdateStatusComplex(discordgo.UpdateStatusData{
		Status: status,
		Activities: []*discordgo.Activity{{
			Name:  text,
			Type:  discordgo.ActivityTypeCustom,
			State: text,
		}},
	})
	if err != nil {
		b.logger.Debug("presence update failed", zap.Error(err))
	}
}

func (b *Bot) defaultCustoms() storage.CustomSettings {
	return storage.CustomSettings{
		Name:        b.cfg.Defaults.Name,
		Color:       b.cfg.Defaults.Color,
		EmbedSearch: b.cfg.Defaults.EmbedSearch,
		EmbedFinal:  b.cfg.Defaults.EmbedFinal,
	}
}

func parseSnowflake(id string) (int64, error) {
	return strconv.ParseInt(id, 10, 64)
}
