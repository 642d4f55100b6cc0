package sync

import "time"

// Strategy selects how a conflicting client write is resolved.
type Strategy string

const (
	StrategyServerWins Strategy = "server_wins"
	StrategyClientWins Strategy = "client_wins"
	StrategyNewerWins  Strategy = "newer_wins"
	StrategyMerge      Strategy = "merge"
)

// DefaultStrategy is applied when a request does not name one.
const DefaultStrategy = StrategyNewerWins

func (s Strategy) Valid() bool {
	switch s {
	case StrategyServerWins, StrategyClientWins, StrategyNewerWins, StrategyMerge:
		return true
	}
	return false
}

// Accepted timestamp forms, in match order: RFC 3339 (with zone, optional
// fractional seconds), ISO 8601 without zone, and the legacy space-separated
// form older clients send.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses a client-supplied timestamp. Unparseable input
// yields the current time rather than an error, so a garbage timestamp
// loses against any real server timestamp instead of failing the request.
func ParseTimestamp(value string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC()
		}
	}
	return time.Now().UTC()
}

// ShouldApply decides whether a client write overwrites the server copy.
// A nil serverTimestamp means no server copy exists: that is a creation,
// never a conflict. Ties favor the server. The merge strategy currently
// resolves exactly like newer_wins; no field-level merge is performed.
func ShouldApply(clientTimestamp string, serverTimestamp *time.Time, strategy Strategy) bool {
	if serverTimestamp == nil {
		return true
	}

	clientTime := ParseTimestamp(clientTimestamp)

	switch strategy {
	case StrategyClientWins:
		return true
	case StrategyServerWins:
		return false
	case StrategyNewerWins, StrategyMerge:
		return clientTime.After(*serverTimestamp)
	}

	return false
}
