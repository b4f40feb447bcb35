package bot

import (
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type flowKind int

const (
	flowPlatforms flowKind = iota
	flowCountry
)

const (
	platformsFlowTimeout = 5 * time.Minute
	countryFlowTimeout   = 2 * time.Minute
)

// flow tracks one in-progress settings conversation, keyed by the reply
// message carrying its components. Only the invoking user may advance it.
type flow struct {
	kind        flowKind
	serverID    int64
	userID      string
	messageID   string
	interaction *discordgo.Interaction
	rangeLabel  string

	mu    sync.Mutex
	timer *time.Timer
}

func (f *flow) stopTimer() {
	f.mu.Lock()
	if f.timer != nil {
		f.timer.Stop()
	}
	f.mu.Unlock()
}

func (f *flow) resetTimer(d time.Duration) {
	f.mu.Lock()
	if f.timer != nil {
		f.timer.Reset(d)
	}
	f.mu.Unlock()
}

// registerFlow publishes the flow once the interaction reply exists, then
// arms its expiry timer. onExpire runs at most once and never after the
// flow has been taken by a completion path.
func (b *Bot) registerFlow(session *discordgo.Session, interaction *discordgo.InteractionCreate, f *flow, timeout time.Duration, onExpire func(*flow)) error {
	msg, err := session.InteractionResponse(interaction.Interaction)
	if err != nil {
		return err
	}
	f.messageID = msg.ID
	f.interaction = interaction.Interaction

	b.flowsMu.Lock()
	b.flows[msg.ID] = f
	b.flowsMu.Unlock()

	f.mu.Lock()
	f.timer = time.AfterFunc(timeout, func() {
		if b.takeFlow(f.messageID) == nil {
			return
		}
		b.logger.Debug("settings flow expired",
			zap.Int64("server", f.serverID), zap.String("message", f.messageID))
		onExpire(f)
	})
	f.mu.Unlock()
	return nil
}

// takeFlow removes and returns the flow owning a message, nil when the
// flow already ended. Removal is atomic so completion and expiry cannot
// both win.
func (b *Bot) takeFlow(messageID string) *flow {
	b.flowsMu.Lock()
	defer b.flowsMu.Unlock()
	f := b.flows[messageID]
	if f != nil {
		delete(b.flows, messageID)
	}
	return f
}

func (b *Bot) endFlow(f *flow) bool {
	f.stopTimer()
	return b.takeFlow(f.messageID) != nil
}
