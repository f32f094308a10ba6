package messaging

import "github.com/google/uuid"

// ConversationID derives the canonical conversation key for a pair of users:
// the two IDs sorted lexicographically and joined with an underscore. Both
// participants always compute the same key regardless of who sends first.
func ConversationID(a, b uuid.UUID) string {
	as, bs := a.String(), b.String()
	if as > bs {
		as, bs = bs, as
	}
	return as + "_" + bs
}
