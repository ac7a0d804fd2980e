package feed

import (
	"fmt"

	"github.com/chatsnap/chatsnap/internal/errors"
)

// ParseCategory validates a category string.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryPrivate, CategoryGroup, CategoryChannel, CategoryAll:
		return Category(s), nil
	case "":
		return CategoryAll, nil
	}
	return "", errors.NewInvalidRequest(
		fmt.Sprintf("unknown category %q (expected private, group, channel, or all)", s))
}

// AdmitsSource reports whether a source belongs to the requested category.
// Bot accounts never pass the private filter: automated traffic would
// displace genuinely incoming activity in the snapshot.
func AdmitsSource(src Source, cat Category) bool {
	switch cat {
	case CategoryPrivate:
		return src.Kind == KindDirect && !src.Bot
	case CategoryGroup:
		return src.Kind == KindGroup
	case CategoryChannel:
		return src.Kind == KindBroadcast
	case CategoryAll:
		return true
	}
	return false
}

// AdmitsMessage reports whether a message may enter the snapshot.
// Outgoing (self-authored) messages are always excluded.
func AdmitsMessage(msg Message) bool {
	return !msg.Outgoing
}
