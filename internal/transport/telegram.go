// Package transport provides feed.Client implementations for concrete
// message backends.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chatsnap/chatsnap/internal/feed"
)

// TelegramExport reads a Telegram Desktop JSON export (result.json) as a
// source tree. The export is parsed once on first use; every fetch after
// that is an in-memory slice of the chat's message list.
type TelegramExport struct {
	path string

	once    sync.Once
	loadErr error
	selfID  int64
	chats   map[string]exportChat
	order   []string
}

// NewTelegramExport creates an export-backed client. path may be the
// export directory or the result.json file itself.
func NewTelegramExport(path string) *TelegramExport {
	return &TelegramExport{path: path}
}

// Export file schema. Telegram Desktop writes chats chronologically, so
// the most recent messages sit at the end of each chat's list.

type exportFile struct {
	PersonalInformation struct {
		UserID int64 `json:"user_id"`
	} `json:"personal_information"`
	Chats struct {
		List []exportChat `json:"list"`
	} `json:"chats"`
	LeftChats struct {
		List []exportChat `json:"list"`
	} `json:"left_chats"`
}

type exportChat struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Type     string          `json:"type"`
	Messages []exportMessage `json:"messages"`
}

type exportMessage struct {
	ID           int64           `json:"id"`
	Type         string          `json:"type"` // "message" or "service"
	Date         string          `json:"date"`
	DateUnixtime string          `json:"date_unixtime"`
	From         string          `json:"from"`
	FromID       string          `json:"from_id"`
	Text         json.RawMessage `json:"text"` // string or entity array
	MediaType    string          `json:"media_type"`
	Photo        string          `json:"photo"`
	File         string          `json:"file"`
}

func (t *TelegramExport) load() error {
	t.once.Do(func() {
		path := t.path
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			path = filepath.Join(path, "result.json")
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.loadErr = fmt.Errorf("read export: %w", err)
			return
		}

		var file exportFile
		if err := json.Unmarshal(data, &file); err != nil {
			t.loadErr = fmt.Errorf("parse export: %w", err)
			return
		}

		t.selfID = file.PersonalInformation.UserID
		t.chats = make(map[string]exportChat)
		for _, c := range append(file.Chats.List, file.LeftChats.List...) {
			ref := strconv.FormatInt(c.ID, 10)
			if _, dup := t.chats[ref]; dup {
				continue
			}
			t.chats[ref] = c
			t.order = append(t.order, ref)
		}
	})
	return t.loadErr
}

// ListSources enumerates every chat in the export.
func (t *TelegramExport) ListSources(ctx context.Context) ([]feed.Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := t.load(); err != nil {
		return nil, err
	}

	sources := make([]feed.Source, 0, len(t.order))
	for _, ref := range t.order {
		c := t.chats[ref]
		kind, bot := chatKind(c.Type)
		name := c.Name
		if name == "" {
			name = ref
		}
		sources = append(sources, feed.Source{Ref: ref, Name: name, Kind: kind, Bot: bot})
	}
	return sources, nil
}

// RecentMessages returns up to limit of the newest messages in one chat.
func (t *TelegramExport) RecentMessages(ctx context.Context, src feed.Source, limit int) ([]feed.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := t.load(); err != nil {
		return nil, err
	}

	c, ok := t.chats[src.Ref]
	if !ok {
		return nil, fmt.Errorf("unknown chat %s", src.Ref)
	}

	msgs := make([]feed.Message, 0, limit)
	for i := len(c.Messages) - 1; i >= 0 && len(msgs) < limit; i-- {
		raw := c.Messages[i]
		if raw.Type != "message" {
			continue
		}
		msgs = append(msgs, t.convert(raw, src.Kind))
	}
	return msgs, nil
}

func (t *TelegramExport) convert(raw exportMessage, kind feed.SourceKind) feed.Message {
	senderID := parseFromID(raw.FromID)

	var sender feed.Sender
	if raw.From != "" {
		if strings.HasPrefix(raw.FromID, "channel") {
			sender = feed.TitleSender{Title: raw.From}
		} else {
			sender = feed.PersonSender{FirstName: raw.From}
		}
	}

	m := feed.Message{
		ID:        raw.ID,
		Timestamp: parseDate(raw),
		Outgoing:  t.selfID != 0 && raw.FromID == "user"+strconv.FormatInt(t.selfID, 10),
		Sender:    sender,
		SenderID:  senderID,
		Text:      flattenText(raw.Text),
		Kind:      kind,
	}

	if tag := mediaTag(raw); tag != "" {
		m.Attachment = &feed.Attachment{Type: tag}
	}
	return m
}

// chatKind maps export chat types onto source kinds.
func chatKind(chatType string) (feed.SourceKind, bool) {
	switch chatType {
	case "personal_chat", "saved_messages":
		return feed.KindDirect, false
	case "bot_chat":
		return feed.KindDirect, true
	case "private_group", "public_group", "private_supergroup", "public_supergroup":
		return feed.KindGroup, false
	case "private_channel", "public_channel":
		return feed.KindBroadcast, false
	}
	return feed.KindUnknown, false
}

// parseFromID extracts the numeric part of "user123" / "channel456" refs.
func parseFromID(fromID string) int64 {
	digits := strings.TrimLeftFunc(fromID, func(r rune) bool {
		return r < '0' || r > '9'
	})
	if digits == "" {
		return 0
	}
	id, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// parseDate prefers the unixtime field; the "date" field is wall-clock
// local time without a zone.
func parseDate(raw exportMessage) time.Time {
	if raw.DateUnixtime != "" {
		if secs, err := strconv.ParseInt(raw.DateUnixtime, 10, 64); err == nil {
			return time.Unix(secs, 0).UTC()
		}
	}
	if raw.Date != "" {
		if ts, err := time.ParseInLocation("2006-01-02T15:04:05", raw.Date, time.Local); err == nil {
			return ts
		}
	}
	return time.Time{}
}

// flattenText joins the export's string-or-entity-array text form into a
// plain string.
func flattenText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var parts []any
	if err := json.Unmarshal(raw, &parts); err != nil {
		return ""
	}

	var sb strings.Builder
	for _, p := range parts {
		switch v := p.(type) {
		case string:
			sb.WriteString(v)
		case map[string]any:
			if text, ok := v["text"].(string); ok {
				sb.WriteString(text)
			}
		}
	}
	return sb.String()
}

// mediaTag derives an attachment type tag from the export's media fields.
func mediaTag(raw exportMessage) string {
	switch raw.MediaType {
	case "":
	case "sticker":
		return "Sticker"
	case "video_file":
		return "Video"
	case "video_message":
		return "VideoMessage"
	case "voice_message":
		return "Voice"
	case "audio_file":
		return "Audio"
	case "animation":
		return "Animation"
	default:
		return camelWords(raw.MediaType)
	}
	if raw.Photo != "" {
		return "Photo"
	}
	if raw.File != "" {
		return "Document"
	}
	return ""
}

// camelWords turns "paid_messages" into "PaidMessages".
func camelWords(s string) string {
	words := strings.Split(s, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, "")
}
