package transport

import (
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/chatsnap/chatsnap/internal/feed"
)

func TestDiscordConvert(t *testing.T) {
	d := &Discord{selfID: "100"}
	ts := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	msg := d.convert(&discordgo.Message{
		ID:        "123456789",
		Timestamp: ts,
		Content:   "hello",
		Author:    &discordgo.User{ID: "42", Username: "alice", GlobalName: "Alice"},
	}, feed.KindGroup)

	if msg.ID != 123456789 {
		t.Errorf("ID = %d, want 123456789", msg.ID)
	}
	if msg.Outgoing {
		t.Error("message from another user marked outgoing")
	}
	if msg.SenderID != 42 {
		t.Errorf("SenderID = %d, want 42", msg.SenderID)
	}
	person, ok := msg.Sender.(feed.PersonSender)
	if !ok || person.FirstName != "Alice" {
		t.Errorf("Sender = %#v, want PersonSender with global name", msg.Sender)
	}
	if msg.Kind != feed.KindGroup {
		t.Errorf("Kind = %q, want group", msg.Kind)
	}
}

func TestDiscordConvert_Outgoing(t *testing.T) {
	d := &Discord{selfID: "100"}

	msg := d.convert(&discordgo.Message{
		ID:     "1",
		Author: &discordgo.User{ID: "100", Username: "me"},
	}, feed.KindDirect)

	if !msg.Outgoing {
		t.Error("own message not marked outgoing")
	}
	handle, ok := msg.Sender.(feed.HandleSender)
	if !ok || handle.Handle != "me" {
		t.Errorf("Sender = %#v, want HandleSender fallback", msg.Sender)
	}
}

func TestDiscordConvert_Attachment(t *testing.T) {
	d := &Discord{}

	msg := d.convert(&discordgo.Message{
		ID: "1",
		Attachments: []*discordgo.MessageAttachment{
			{ContentType: "image/png"},
		},
	}, feed.KindGroup)

	if msg.Attachment == nil || msg.Attachment.Type != "Photo" {
		t.Errorf("Attachment = %+v, want type Photo", msg.Attachment)
	}
}

func TestAttachmentTag(t *testing.T) {
	tests := []struct {
		contentType string
		want        string
	}{
		{"image/jpeg", "Photo"},
		{"video/mp4", "Video"},
		{"audio/ogg", "Audio"},
		{"application/pdf", "Document"},
		{"", "Document"},
	}
	for _, tt := range tests {
		got := attachmentTag(&discordgo.MessageAttachment{ContentType: tt.contentType})
		if got != tt.want {
			t.Errorf("attachmentTag(%q) = %q, want %q", tt.contentType, got, tt.want)
		}
	}
}

func TestSnowflake(t *testing.T) {
	if got := snowflake("175928847299117063"); got != 175928847299117063 {
		t.Errorf("snowflake = %d", got)
	}
	if got := snowflake("not-a-number"); got != 0 {
		t.Errorf("snowflake of garbage = %d, want 0", got)
	}
}

func TestDisplayName(t *testing.T) {
	if got := displayName(&discordgo.User{Username: "alice", GlobalName: "Alice"}); got != "Alice" {
		t.Errorf("displayName = %q, want global name", got)
	}
	if got := displayName(&discordgo.User{Username: "alice"}); got != "alice" {
		t.Errorf("displayName = %q, want username fallback", got)
	}
}
