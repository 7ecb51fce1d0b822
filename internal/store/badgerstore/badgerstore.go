// internal/store/badgerstore/badgerstore.go
package badgerstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/placement-backend/internal/apperror"
	"github.com/javajoker/placement-backend/internal/metrics"
	"github.com/javajoker/placement-backend/internal/store"
)

type Config struct {
	// Dir is required unless InMemory is set.
	Dir      string
	InMemory bool
	// ExclusiveFaculty limits each faculty member to one active assignment.
	ExclusiveFaculty bool
	// MaxAttempts bounds how often a unit is re-run after a write conflict.
	MaxAttempts int
}

// Store keeps records in an embedded badger database. Every contested
// resource has a single index key that a unit reads before writing, so two
// units racing for the same resource conflict at commit under badger's
// serializable snapshot isolation. The loser is re-run and then observes the
// winner's write.
type Store struct {
	db               *badger.DB
	exclusiveFaculty bool
	maxAttempts      uint
}

var _ store.Store = (*Store)(nil)

func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Dir == "" {
		return nil, errors.New("badger directory is required for a persistent store")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Dir, 0750); err != nil {
			return nil, fmt.Errorf("create badger directory %s: %w", cfg.Dir, err)
		}
		opts = badger.DefaultOptions(cfg.Dir).WithSyncWrites(true)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}

	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = 5
	}

	return &Store{
		db:               db,
		exclusiveFaculty: cfg.ExclusiveFaculty,
		maxAttempts:      uint(attempts),
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Atomically(ctx context.Context, fn func(tx store.Tx) error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 2 * time.Millisecond
	policy.MaxInterval = 50 * time.Millisecond

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := s.runOnce(ctx, fn)
		if errors.Is(err, badger.ErrConflict) {
			return struct{}{}, err
		}
		if err != nil {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, nil
	},
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(s.maxAttempts),
		backoff.WithNotify(func(err error, wait time.Duration) {
			metrics.StoreRetries.Inc()
			logrus.WithError(err).WithField("wait", wait).Debug("Retrying conflicting transaction")
		}),
	)
	return translate(err)
}

func (s *Store) runOnce(ctx context.Context, fn func(tx store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	txn := s.db.NewTransaction(true)
	defer txn.Discard()

	if err := fn(&tx{txn: txn, exclusiveFaculty: s.exclusiveFaculty}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return txn.Commit()
}

func (s *Store) view(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return translate(err)
	}
	return translate(s.db.View(fn))
}

func (s *Store) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return translate(err)
	}
	return translate(s.db.Update(fn))
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperror.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return apperror.Unavailable("record store timed out", err)
	case errors.Is(err, badger.ErrConflict):
		return apperror.Unavailable("concurrent update, retry", err)
	case errors.Is(err, badger.ErrKeyNotFound):
		return apperror.Wrap(apperror.KindNotFound, "record not found", err)
	}
	return apperror.Wrap(apperror.KindInternal, "record store failure", err)
}
