package arbiter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriorityOf(t *testing.T) {
	a := New([]string{"keepa", "camel"})

	assert.Equal(t, 0, a.PriorityOf("keepa"))
	assert.Equal(t, 1, a.PriorityOf("camel"))
	assert.Equal(t, 2, a.PriorityOf("random-scraper"))
	assert.Equal(t, 2, a.PriorityOf(""))
}

func TestMayOverwrite(t *testing.T) {
	a := New([]string{"keepa", "camel"})

	tests := []struct {
		name     string
		incoming string
		existing string
		want     bool
	}{
		{"higher beats lower", "keepa", "camel", true},
		{"higher beats unknown", "keepa", "random", true},
		{"lower never beats higher", "camel", "keepa", false},
		{"unknown never beats named", "random", "camel", false},
		{"same channel overwrites itself", "camel", "camel", true},
		{"unknown vs unknown is equal rank", "random-a", "random-b", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.MayOverwrite(tt.incoming, tt.existing))
		})
	}
}

// Every ordered channel pair must be asymmetric: if A outranks B, events from
// B must never overwrite A's rows while events from A always may overwrite B's.
func TestMayOverwrite_StrictPairsAreAsymmetric(t *testing.T) {
	a := New([]string{"keepa", "camel"})
	channels := []string{"keepa", "camel", "other"}

	for _, hi := range channels {
		for _, lo := range channels {
			if a.PriorityOf(hi) < a.PriorityOf(lo) {
				assert.True(t, a.MayOverwrite(hi, lo), "%s must overwrite %s", hi, lo)
				assert.False(t, a.MayOverwrite(lo, hi), "%s must not overwrite %s", lo, hi)
			}
		}
	}
}

func TestDuplicateChannelKeepsFirstRank(t *testing.T) {
	a := New([]string{"keepa", "keepa", "camel"})
	assert.Equal(t, 0, a.PriorityOf("keepa"))
	assert.Equal(t, 2, a.PriorityOf("camel"))
}
