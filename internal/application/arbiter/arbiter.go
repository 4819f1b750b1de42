// Package arbiter decides which reporting channel owns the authoritative row
// when several channels redundantly report the same deal.
package arbiter

// Arbiter ranks reporting channels. Lower rank = higher priority. The ranking
// is fixed at construction; both methods are pure and cannot fail.
type Arbiter struct {
	ranks       map[string]int
	unknownRank int
}

// New builds an Arbiter from an ordered list of trusted channel ids. The first
// entry gets rank 0, the second rank 1, and so on; any channel not listed gets
// the lowest-priority rank.
func New(channels []string) *Arbiter {
	ranks := make(map[string]int, len(channels))
	for i, ch := range channels {
		if _, ok := ranks[ch]; !ok {
			ranks[ch] = i
		}
	}
	return &Arbiter{ranks: ranks, unknownRank: len(channels)}
}

// PriorityOf returns the channel's rank; unknown channels get the lowest rank.
func (a *Arbiter) PriorityOf(channelID string) int {
	if rank, ok := a.ranks[channelID]; ok {
		return rank
	}
	return a.unknownRank
}

// MayOverwrite reports whether an event from newChannel may replace the
// authoritative row owned by existingChannel. Equal priority may overwrite, so
// a channel can always update its own rows.
func (a *Arbiter) MayOverwrite(newChannel, existingChannel string) bool {
	return a.PriorityOf(newChannel) <= a.PriorityOf(existingChannel)
}
