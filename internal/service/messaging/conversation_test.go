package messaging

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationIDSymmetric(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	assert.Equal(t, ConversationID(a, b), ConversationID(b, a))
}

func TestConversationIDOrdersLexicographically(t *testing.T) {
	a := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	b := uuid.MustParse("22222222-2222-2222-2222-222222222222")

	id := ConversationID(b, a)
	assert.Equal(t, a.String()+"_"+b.String(), id)

	parts := strings.Split(id, "_")
	require.Len(t, parts, 2)
	assert.Less(t, parts[0], parts[1])
}

func TestConversationIDDistinctPairs(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	assert.NotEqual(t, ConversationID(a, b), ConversationID(a, c))
	assert.NotEqual(t, ConversationID(a, b), ConversationID(b, c))
}
