package transport

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/chatsnap/chatsnap/internal/feed"
)

// Discord caps ChannelMessages at 100 per request.
const discordMaxFetch = 100

// Discord is a live feed.Client over the Discord REST API. DM channels
// map to direct sources, guild text channels to group sources, and guild
// announcement channels to broadcast sources.
type Discord struct {
	session *discordgo.Session
	selfID  string
}

// NewDiscord creates a Discord-backed client from a bot token.
func NewDiscord(token string) (*Discord, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	return &Discord{session: session}, nil
}

// ListSources enumerates DM channels plus the text and announcement
// channels of every guild the identity belongs to.
func (d *Discord) ListSources(ctx context.Context) ([]feed.Source, error) {
	self, err := d.session.User("@me", discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("identify: %w", err)
	}
	d.selfID = self.ID

	var sources []feed.Source

	dms, err := d.session.UserChannels(discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("list dm channels: %w", err)
	}
	for _, ch := range dms {
		switch ch.Type {
		case discordgo.ChannelTypeDM:
			name := "DM"
			bot := false
			if len(ch.Recipients) > 0 {
				name = displayName(ch.Recipients[0])
				bot = ch.Recipients[0].Bot
			}
			sources = append(sources, feed.Source{Ref: ch.ID, Name: name, Kind: feed.KindDirect, Bot: bot})
		case discordgo.ChannelTypeGroupDM:
			name := ch.Name
			if name == "" {
				name = "Group DM"
			}
			sources = append(sources, feed.Source{Ref: ch.ID, Name: name, Kind: feed.KindGroup})
		}
	}

	guilds, err := d.session.UserGuilds(200, "", "", false, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("list guilds: %w", err)
	}
	for _, g := range guilds {
		channels, err := d.session.GuildChannels(g.ID, discordgo.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("list channels of %s: %w", g.Name, err)
		}
		for _, ch := range channels {
			var kind feed.SourceKind
			switch ch.Type {
			case discordgo.ChannelTypeGuildText:
				kind = feed.KindGroup
			case discordgo.ChannelTypeGuildNews:
				kind = feed.KindBroadcast
			default:
				continue
			}
			sources = append(sources, feed.Source{
				Ref:  ch.ID,
				Name: g.Name + "#" + ch.Name,
				Kind: kind,
			})
		}
	}

	return sources, nil
}

// RecentMessages fetches up to limit of the newest messages in a channel.
func (d *Discord) RecentMessages(ctx context.Context, src feed.Source, limit int) ([]feed.Message, error) {
	if limit > discordMaxFetch {
		limit = discordMaxFetch
	}

	raw, err := d.session.ChannelMessages(src.Ref, limit, "", "", "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, err
	}

	msgs := make([]feed.Message, 0, len(raw))
	for _, m := range raw {
		msgs = append(msgs, d.convert(m, src.Kind))
	}
	return msgs, nil
}

func (d *Discord) convert(m *discordgo.Message, kind feed.SourceKind) feed.Message {
	msg := feed.Message{
		ID:        snowflake(m.ID),
		Timestamp: m.Timestamp,
		Text:      m.Content,
		Kind:      kind,
	}

	if m.Author != nil {
		msg.Outgoing = m.Author.ID == d.selfID
		msg.SenderID = snowflake(m.Author.ID)
		if m.Author.GlobalName != "" {
			msg.Sender = feed.PersonSender{FirstName: m.Author.GlobalName}
		} else if m.Author.Username != "" {
			msg.Sender = feed.HandleSender{Handle: m.Author.Username}
		}
	}

	if len(m.Attachments) > 0 {
		msg.Attachment = &feed.Attachment{Type: attachmentTag(m.Attachments[0])}
	}
	return msg
}

// snowflake parses a Discord ID. Snowflakes always fit in int64.
func snowflake(id string) int64 {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func displayName(u *discordgo.User) string {
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}

// attachmentTag maps an attachment's content type to a media type tag.
func attachmentTag(a *discordgo.MessageAttachment) string {
	ct := a.ContentType
	switch {
	case strings.HasPrefix(ct, "image/"):
		return "Photo"
	case strings.HasPrefix(ct, "video/"):
		return "Video"
	case strings.HasPrefix(ct, "audio/"):
		return "Audio"
	}
	return "Document"
}
