package feed

import (
	"strings"
	"time"
)

// Sentinels used when a field cannot be resolved.
const (
	UnknownSender = "Unknown"
	EmptyMessage  = "<Empty Message>"
)

// mediaPrefix is the generic transport prefix stripped from attachment
// type tags, so "MessageMediaPhoto" renders as "<Media: Photo>".
const mediaPrefix = "MessageMedia"

// Normalize maps a raw message into the uniform output record. It is pure
// and total: every field has a defined fallback, so it never fails.
func Normalize(m Message) Record {
	return Record{
		Sender:    senderName(m.Sender),
		Content:   contentText(m),
		Date:      dateString(m.Timestamp),
		ChatType:  chatType(m.Kind),
		SenderID:  senderID(m.SenderID),
		MessageID: m.ID,
	}
}

// senderName resolves the sender display string: first+last name pair,
// then @handle, then display title, then the Unknown sentinel.
func senderName(s Sender) string {
	switch v := s.(type) {
	case PersonSender:
		if v.FirstName != "" {
			return strings.TrimSpace(v.FirstName + " " + v.LastName)
		}
	case HandleSender:
		if v.Handle != "" {
			return "@" + v.Handle
		}
	case TitleSender:
		if v.Title != "" {
			return v.Title
		}
	}
	return UnknownSender
}

// contentText resolves message content: text body, then a media sentinel,
// then the empty-message sentinel.
func contentText(m Message) string {
	if m.Text != "" {
		return m.Text
	}
	if m.Attachment != nil {
		return "<Media: " + strings.TrimPrefix(m.Attachment.Type, mediaPrefix) + ">"
	}
	return EmptyMessage
}

func chatType(k SourceKind) string {
	switch k {
	case KindDirect:
		return "private"
	case KindGroup:
		return "group"
	case KindBroadcast:
		return "channel"
	}
	return "unknown"
}

func dateString(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func senderID(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}
