// Package feed aggregates the most recent messages across many independent
// conversation sources into a single bounded, recency-ordered snapshot.
package feed

import (
	"context"
	"time"
)

// SourceKind classifies a conversation source.
type SourceKind string

const (
	KindDirect    SourceKind = "direct"
	KindGroup     SourceKind = "group"
	KindBroadcast SourceKind = "broadcast"
	KindUnknown   SourceKind = "unknown"
)

// Category is the caller-requested source filter.
type Category string

const (
	CategoryPrivate Category = "private"
	CategoryGroup   Category = "group"
	CategoryChannel Category = "channel"
	CategoryAll     Category = "all"
)

// Source is one conversation available to the authenticated identity.
// A snapshot run never retains sources after it completes.
type Source struct {
	Ref  string // opaque entity reference used to fetch messages
	Name string
	Kind SourceKind
	Bot  bool // direct sources only: automated account
}

// Sender identifies who authored a message. Exactly one variant applies.
type Sender interface {
	isSender()
}

// PersonSender is a sender known by a first/last name pair.
type PersonSender struct {
	FirstName string
	LastName  string
}

// HandleSender is a sender known only by a username/handle.
type HandleSender struct {
	Handle string
}

// TitleSender is a sender known by a display title (channel or group name).
type TitleSender struct {
	Title string
}

func (PersonSender) isSender() {}
func (HandleSender) isSender() {}
func (TitleSender) isSender()  {}

// Attachment is a non-text payload with a transport-specific type tag.
type Attachment struct {
	Type string
}

// Message is a raw message as returned by a transport for one source.
// Instances are produced by per-source fetches and discarded after
// normalization.
type Message struct {
	ID         int64
	Timestamp  time.Time
	Outgoing   bool
	Sender     Sender // nil when the transport has no sender info
	SenderID   int64  // 0 when unknown
	Text       string
	Attachment *Attachment
	Kind       SourceKind // derived from the originating source
}

// Record is the normalized output unit. Sender and Content are never
// empty; Date and SenderID are null when unknown.
type Record struct {
	Sender    string  `json:"sender"`
	Content   string  `json:"content"`
	Date      *string `json:"date"`
	ChatType  string  `json:"chat_type"`
	SenderID  *int64  `json:"sender_id"`
	MessageID int64   `json:"message_id"`
}

// Client is the boundary with the message transport. ListSources must
// enumerate every source available to the authenticated identity;
// RecentMessages may return fewer than limit messages. Implementations
// must be safe for concurrent RecentMessages calls.
type Client interface {
	ListSources(ctx context.Context) ([]Source, error)
	RecentMessages(ctx context.Context, src Source, limit int) ([]Message, error)
}
