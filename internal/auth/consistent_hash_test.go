package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingIsDeterministic(t *testing.T) {
	ring := NewConsistentHashRing([]string{"n1", "n2", "n3"}, 50)

	first := ring.GetNode("some-token")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ring.GetNode("some-token"))
	}
}

func TestEmptyRingGetsDefaultNode(t *testing.T) {
	ring := NewConsistentHashRing(nil, 0)
	node := ring.GetNode("token")
	require.NotEmpty(t, node)
}

func TestAddExistingNodeIsIdempotent(t *testing.T) {
	ring := NewConsistentHashRing([]string{"n1", "n2"}, 10)
	before := ring.GetNode("key")
	ring.Add("n1")
	assert.Equal(t, before, ring.GetNode("key"))
}

func TestKeysSpreadAcrossNodes(t *testing.T) {
	ring := NewConsistentHashRing([]string{"n1", "n2", "n3"}, 100)

	seen := make(map[string]bool)
	for _, key := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"} {
		seen[ring.GetNode(key)] = true
	}
	assert.Greater(t, len(seen), 1, "keys should not all land on one node")
}
