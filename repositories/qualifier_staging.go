package repositories

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

var (
	ErrQualifierAlreadyStaged = errors.New("participant already nominated for this fixture")
	ErrStagingContention      = errors.New("staging update lost to concurrent nominations, retry")
)

// QualifierStaging holds qualifier nominations between the first nominate
// call and the freeze commit. Staged entries are durable but never surface
// as authoritative results; only the freeze writes to the roster store.
type QualifierStaging interface {
	// Nominate appends the participant and returns its 1-based position.
	Nominate(ctx context.Context, fixtureID, participantID int) (int, error)
	// List returns staged participant ids in nomination order.
	List(ctx context.Context, fixtureID int) ([]int, error)
	// Clear drops the staged list after a freeze or fixture deletion.
	Clear(ctx context.Context, fixtureID int) error
}

type redisQualifierStaging struct {
	client *redis.Client
}

func NewRedisQualifierStaging(client *redis.Client) QualifierStaging {
	return &redisQualifierStaging{client: client}
}

const nominateRetries = 5

func stagingKey(fixtureID int) string {
	return fmt.Sprintf("fixture:%d:staged_qualifiers", fixtureID)
}

// Nominate serializes per fixture with WATCH so two concurrent nominations
// cannot both claim the same position.
func (s *redisQualifierStaging) Nominate(ctx context.Context, fixtureID, participantID int) (int, error) {
	key := stagingKey(fixtureID)
	member := strconv.Itoa(participantID)
	var position int

	txn := func(tx *redis.Tx) error {
		staged, err := tx.LRange(ctx, key, 0, -1).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		for _, m := range staged {
			if m == member {
				return ErrQualifierAlreadyStaged
			}
		}
		position = len(staged) + 1
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.RPush(ctx, key, member)
			return nil
		})
		return err
	}

	for i := 0; i < nominateRetries; i++ {
		err := s.client.Watch(ctx, txn, key)
		switch {
		case err == nil:
			return position, nil
		case errors.Is(err, redis.TxFailedErr):
			continue
		case errors.Is(err, ErrQualifierAlreadyStaged):
			return 0, err
		default:
			return 0, storeError("stage qualifier nomination", err)
		}
	}
	return 0, ErrStagingContention
}

func (s *redisQualifierStaging) List(ctx context.Context, fixtureID int) ([]int, error) {
	staged, err := s.client.LRange(ctx, stagingKey(fixtureID), 0, -1).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []int{}, nil
		}
		return nil, storeError("list staged qualifiers", err)
	}

	ids := make([]int, 0, len(staged))
	for _, m := range staged {
		id, convErr := strconv.Atoi(m)
		if convErr != nil {
			return nil, fmt.Errorf("corrupt staging entry %q for fixture %d: %w", m, fixtureID, convErr)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *redisQualifierStaging) Clear(ctx context.Context, fixtureID int) error {
	if err := s.client.Del(ctx, stagingKey(fixtureID)).Err(); err != nil {
		return storeError("clear staged qualifiers", err)
	}
	return nil
}
