package id

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewEmbedsCreationTime(t *testing.T) {
	before := time.Now().UTC().Truncate(time.Millisecond)
	s := New()
	after := time.Now().UTC()

	at := Time(s)
	assert.False(t, at.Before(before), "embedded time %v precedes %v", at, before)
	assert.False(t, at.After(after), "embedded time %v follows %v", at, after)
}

func TestTimeOnGarbageIsZero(t *testing.T) {
	assert.True(t, Time("not-a-ulid").IsZero())
	assert.True(t, Time("").IsZero())
}
