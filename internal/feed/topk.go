package feed

import "sort"

// SelectRecent orders messages newest first and truncates to limit.
// The sort is stable: equal timestamps keep arrival order, which carries
// no guarantee beyond the descending-timestamp invariant. A non-positive
// limit yields an empty result.
//
// This is a full-materialization merge: every source's fetched messages
// must already be present, since any source could hold the single most
// recent message.
func SelectRecent(msgs []Message, limit int) []Message {
	if limit <= 0 {
		return []Message{}
	}

	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].Timestamp.After(msgs[j].Timestamp)
	})

	if len(msgs) > limit {
		msgs = msgs[:limit]
	}
	return msgs
}
