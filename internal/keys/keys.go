package keys

import (
	"fmt"
	"strings"
)

// RoundKey produces the canonical singleflight/broadcast key for a round.
func RoundKey(matchID uint, roundNumber int) string {
	return fmt.Sprintf("round:%d:%d", matchID, roundNumber)
}

// MatchKey produces the canonical key for match-scoped deduplication.
func MatchKey(matchID uint) string {
	return fmt.Sprintf("match:%d", matchID)
}

// ShortAddress abbreviates a wallet address for narrative and log output:
// prefix plus the first and last four characters of the payload.
func ShortAddress(addr string) string {
	idx := strings.IndexByte(addr, ':')
	if idx < 0 || len(addr)-idx-1 <= 8 {
		return addr
	}
	payload := addr[idx+1:]
	return addr[:idx+1] + payload[:4] + "…" + payload[len(payload)-4:]
}
