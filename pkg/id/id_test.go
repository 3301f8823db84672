package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_UniqueAndSorted(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	prev := ""
	for i := 0; i < 1000; i++ {
		s := New()
		require.Len(t, s, 26)
		require.False(t, seen[s], "duplicate ULID %s", s)
		seen[s] = true
		if prev != "" {
			assert.Less(t, prev, s, "ULIDs must be monotonically increasing")
		}
		prev = s
	}
}

func TestOrderID_Prefix(t *testing.T) {
	t.Parallel()

	a := OrderID()
	b := OrderID()
	assert.NotEqual(t, a, b)
	assert.Regexp(t, `^HELM-[0-9A-Z]{26}$`, a)
}
