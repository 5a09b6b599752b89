package keys

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/keyrotator/cli/internal/iam"
)

// Observer receives cleanup counts. metrics.Recorder implements it.
type Observer interface {
	KeysListed(n int)
	KeySkipped()
	KeyDeleted()
	KeyDeleteFailed()
}

// Failure records a key that could not be deleted.
type Failure struct {
	Key Key
	Err error
}

// Report summarizes one cleanup run. It is returned even when the run aborts,
// describing what happened up to that point.
type Report struct {
	Cutoff  time.Time
	Listed  int
	Expired []Key
	Deleted []Key
	Skipped []Key
	Failed  []Failure
	DryRun  bool
}

// Cleaner deletes keys older than a maximum age.
type Cleaner struct {
	Client iam.Client
	Log    zerolog.Logger

	// Now is sampled once per run. Defaults to time.Now.
	Now func() time.Time

	// Observer is optional.
	Observer Observer

	// DryRun classifies keys without deleting anything.
	DryRun bool

	// KeepGoing continues past delete failures instead of aborting the
	// remaining batch. All failures are returned joined.
	KeepGoing bool
}

// Run lists the account's keys, selects those created more than maxAgeDays
// ago and deletes them one at a time in listing order.
func (c *Cleaner) Run(ctx context.Context, scope Scope, maxAgeDays int) (*Report, error) {
	lister := &Lister{Client: c.Client, Log: c.Log}
	deleter := &Deleter{Client: c.Client, Log: c.Log}

	current, err := lister.List(ctx, scope)
	if err != nil {
		return &Report{DryRun: c.DryRun}, err
	}

	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	at := now()

	report := &Report{
		Cutoff: Cutoff(at, maxAgeDays),
		Listed: len(current),
		DryRun: c.DryRun,
	}
	c.observe(func(o Observer) { o.KeysListed(len(current)) })

	for _, d := range Classify(c.Log, current, maxAgeDays, at) {
		switch d.Action {
		case ActionDelete:
			report.Expired = append(report.Expired, d.Key)
		case ActionSkip:
			report.Skipped = append(report.Skipped, d.Key)
			c.observe(func(o Observer) { o.KeySkipped() })
		}
	}

	if len(report.Expired) == 0 {
		c.Log.Info().Msg("No keys to cleanup.")
		return report, nil
	}
	if c.DryRun {
		c.Log.Info().Int("count", len(report.Expired)).Msg("Dry run, not deleting expired keys")
		return report, nil
	}

	var errs []error
	for _, k := range report.Expired {
		if err := deleter.Delete(ctx, scope, k.Name); err != nil {
			report.Failed = append(report.Failed, Failure{Key: k, Err: err})
			c.observe(func(o Observer) { o.KeyDeleteFailed() })
			c.Log.Error().Err(err).Str("key", k.Name).Msg("Failed to delete key")
			if !c.KeepGoing {
				return report, err
			}
			errs = append(errs, err)
			continue
		}
		report.Deleted = append(report.Deleted, k)
		c.observe(func(o Observer) { o.KeyDeleted() })
	}

	if len(errs) > 0 {
		return report, fmt.Errorf("%d of %d expired keys not deleted: %w", len(errs), len(report.Expired), errors.Join(errs...))
	}
	return report, nil
}

func (c *Cleaner) observe(fn func(Observer)) {
	if c.Observer != nil {
		fn(c.Observer)
	}
}
