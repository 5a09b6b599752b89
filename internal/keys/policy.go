package keys

import (
	"time"

	"github.com/rs/zerolog"
)

// Action is the outcome of classifying one key during cleanup.
type Action string

const (
	// ActionKeep marks a key younger than the cutoff.
	ActionKeep Action = "keep"
	// ActionDelete marks a key created strictly before the cutoff.
	ActionDelete Action = "delete"
	// ActionSkip marks a key whose creation time could not be read.
	ActionSkip Action = "skip"
)

// Decision is the classification of one key against a cutoff.
type Decision struct {
	Key       Key
	Action    Action
	CreatedAt time.Time
	Err       error
}

// maxCutoffDays bounds the date arithmetic in Cutoff. Larger ages yield the
// zero time, which no key predates.
const maxCutoffDays = 1_000_000

// Cutoff returns the instant before which keys are expired. The sign of
// maxAgeDays is ignored.
func Cutoff(now time.Time, maxAgeDays int) time.Time {
	if maxAgeDays > maxCutoffDays || maxAgeDays < -maxCutoffDays {
		return time.Time{}
	}
	if maxAgeDays < 0 {
		maxAgeDays = -maxAgeDays
	}
	return now.UTC().AddDate(0, 0, -maxAgeDays)
}

// Classify decides the fate of every key against the cutoff derived from now.
// Decisions are returned in input order. Keys whose creation time does not
// parse are skipped, never deleted.
func Classify(log zerolog.Logger, keys []Key, maxAgeDays int, now time.Time) []Decision {
	cutoff := Cutoff(now, maxAgeDays)
	decisions := make([]Decision, 0, len(keys))

	for _, k := range keys {
		created, err := k.CreatedAt()
		if err != nil {
			log.Error().Err(err).Str("key", k.Name).Msg("Unable to parse key creation time, skipping")
			decisions = append(decisions, Decision{Key: k, Action: ActionSkip, Err: err})
			continue
		}

		action := ActionKeep
		if created.Before(cutoff) {
			action = ActionDelete
			log.Info().Str("key", k.Name).Time("created", created).Msg("Found expired key")
		}
		decisions = append(decisions, Decision{Key: k, Action: action, CreatedAt: created})
	}

	return decisions
}

// SelectExpired returns the keys created strictly before the cutoff, in input
// order.
func SelectExpired(log zerolog.Logger, keys []Key, maxAgeDays int, now time.Time) []Key {
	var expired []Key
	for _, d := range Classify(log, keys, maxAgeDays, now) {
		if d.Action == ActionDelete {
			expired = append(expired, d.Key)
		}
	}
	return expired
}
