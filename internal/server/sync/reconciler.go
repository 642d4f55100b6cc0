package sync

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tripcraft/tripcraft/internal/logging"
)

// adapter binds runPass to one entity type. get returns (nil, nil) when no
// server copy exists. owned re-verifies the ownership chain against the
// caller; insert returns false when the record's parent cannot be resolved
// to a row the caller owns.
type adapter[R envelopeCarrier, M any] struct {
	entityType string
	get        func(ctx context.Context, id string) (*M, error)
	owned      func(ctx context.Context, m *M) (bool, error)
	updatedAt  func(m *M) time.Time
	remove     func(ctx context.Context, m *M) error
	apply      func(ctx context.Context, m *M, rec R, ts time.Time) error
	insert     func(ctx context.Context, rec R, ts time.Time) (bool, error)
}

func validUUIDs(id string, refs []string) bool {
	if _, err := uuid.Parse(id); err != nil {
		return false
	}
	for _, ref := range refs {
		if _, err := uuid.Parse(ref); err != nil {
			return false
		}
	}
	return true
}

// runPass reconciles one batch of uploaded records. A failure on one record
// never aborts the pass: the record is logged and skipped, and the rest of
// the batch proceeds. Ownership failures are skipped silently from the
// client's point of view; they are not conflicts and are never reported.
//
// A conflict entry is emitted only when a timestamp comparison actually
// rejected the write, i.e. under newer_wins/merge. Under server_wins the
// client asked for its writes to be discarded, so rejection is the expected
// outcome and is not reported.
func runPass[R envelopeCarrier, M any](
	ctx context.Context,
	records []R,
	a adapter[R, M],
	strategy Strategy,
	resp *Response,
	uploaded *int,
	log logging.Logger,
) {
	for _, rec := range records {
		e := rec.env()

		// Ids and parent references are client-generated UUIDs bound to
		// uuid columns. A malformed one fails the cast at the store and
		// aborts the whole transaction, so the record is dropped before
		// any statement runs.
		if !validUUIDs(e.ID, rec.refs()) {
			log.Debug(ctx, "sync: malformed id, skipping record",
				"entity", a.entityType, "id", e.ID)
			continue
		}

		existing, err := a.get(ctx, e.ID)
		if err != nil {
			log.Debug(ctx, "sync: lookup failed, skipping record",
				"entity", a.entityType, "id", e.ID, "error", err.Error())
			continue
		}

		if e.IsDeleted {
			// Tombstone. "Already gone", "never existed" and "not yours"
			// are deliberately indistinguishable to the caller.
			if existing == nil {
				continue
			}
			ok, err := a.owned(ctx, existing)
			if err != nil || !ok {
				continue
			}
			if err := a.remove(ctx, existing); err != nil {
				log.Debug(ctx, "sync: delete failed, skipping record",
					"entity", a.entityType, "id", e.ID, "error", err.Error())
				continue
			}
			*uploaded++
			continue
		}

		if existing != nil {
			ok, err := a.owned(ctx, existing)
			if err != nil {
				log.Debug(ctx, "sync: ownership check failed, skipping record",
					"entity", a.entityType, "id", e.ID, "error", err.Error())
				continue
			}
			if !ok {
				continue
			}

			serverTime := a.updatedAt(existing)
			if !ShouldApply(e.LocalUpdatedAt, &serverTime, strategy) {
				if strategy == StrategyNewerWins || strategy == StrategyMerge {
					resp.Conflicts = append(resp.Conflicts, Conflict{
						EntityType:      a.entityType,
						EntityID:        e.ID,
						ClientUpdatedAt: e.LocalUpdatedAt,
						ServerUpdatedAt: formatTime(serverTime),
						Resolution:      "server_wins",
					})
				}
				continue
			}

			ts := ParseTimestamp(e.LocalUpdatedAt)
			if err := a.apply(ctx, existing, rec, ts); err != nil {
				log.Debug(ctx, "sync: update failed, skipping record",
					"entity", a.entityType, "id", e.ID, "error", err.Error())
				continue
			}
			*uploaded++
			continue
		}

		// No server copy: a creation, never a conflict.
		ts := ParseTimestamp(e.LocalUpdatedAt)
		ok, err := a.insert(ctx, rec, ts)
		if err != nil {
			log.Debug(ctx, "sync: insert failed, skipping record",
				"entity", a.entityType, "id", e.ID, "error", err.Error())
			continue
		}
		if ok {
			*uploaded++
		}
	}
}
