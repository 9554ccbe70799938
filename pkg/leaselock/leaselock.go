// Package leaselock provides expiring named locks in PostgreSQL, so that
// servers sharing one graph database run one-off work such as seeding only
// once. The graph_locks table is created by the pgx store migrations.
package leaselock

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/OFFIS-RIT/kgview/pkg/logger"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

var (
	// ErrBusy is returned by Acquire without Wait when another holder owns
	// the key.
	ErrBusy = errors.New("lease busy")
	// ErrLost cancels a lease whose row expired or was taken over.
	ErrLost = errors.New("lease lost")
)

const (
	defaultTTL          = time.Minute
	defaultWaitInterval = 250 * time.Millisecond
	renewTimeout        = 10 * time.Second
)

type dbConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Locker hands out leases. The connection is usually a *pgxpool.Pool.
type Locker struct {
	db dbConn
}

// Options tune a lease. Zero values use the defaults.
type Options struct {
	// TTL is how long the lease survives without renewal.
	TTL time.Duration
	// RenewEvery defaults to half the TTL.
	RenewEvery time.Duration
	// Wait polls until the key is free instead of returning ErrBusy.
	Wait         bool
	WaitInterval time.Duration
	WaitJitter   time.Duration
}

func (o Options) withDefaults() Options {
	if o.TTL <= 0 {
		o.TTL = defaultTTL
	}
	if o.RenewEvery <= 0 || o.RenewEvery >= o.TTL {
		o.RenewEvery = max(o.TTL/2, time.Second)
	}
	if o.WaitInterval <= 0 {
		o.WaitInterval = defaultWaitInterval
	}
	if o.WaitJitter < 0 {
		o.WaitJitter = 0
	}
	return o
}

// Lease is a held lock. Its Context is canceled when the lease is released
// or lost.
type Lease struct {
	Key     string
	Token   string
	Context context.Context

	locker *Locker
	cancel context.CancelCauseFunc
	once   sync.Once
	stop   chan struct{}
}

// New creates a locker on conn.
func New(conn dbConn) *Locker {
	return &Locker{db: conn}
}

// WithLease runs fn while holding key. fn's context is canceled if the lease
// is lost.
func (l *Locker) WithLease(ctx context.Context, key string, opts Options, fn func(ctx context.Context) error) error {
	lease, err := l.Acquire(ctx, key, opts)
	if err != nil {
		return err
	}
	defer func() {
		if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("Failed to release lease", "key", key, "err", err)
		}
	}()
	return fn(lease.Context)
}

// Acquire takes key, waiting for it when opts.Wait is set.
func (l *Locker) Acquire(ctx context.Context, key string, opts Options) (*Lease, error) {
	if key == "" {
		return nil, errors.New("lease key is empty")
	}
	opts = opts.withDefaults()
	ttlMs := opts.TTL.Milliseconds()

	token, err := gonanoid.New()
	if err != nil {
		return nil, errors.Wrap(err, "generate lease token")
	}

	for {
		ok, err := l.try(ctx, tryAcquireSQL, key, token, ttlMs)
		if err != nil {
			return nil, errors.Wrapf(err, "acquire lease %s", key)
		}
		if ok {
			break
		}
		if !opts.Wait {
			return nil, errors.Wrapf(ErrBusy, "%s", key)
		}
		if err := sleep(ctx, opts.WaitInterval, opts.WaitJitter); err != nil {
			return nil, err
		}
	}

	leaseCtx, cancel := context.WithCancelCause(ctx)
	lease := &Lease{
		Key:     key,
		Token:   token,
		Context: leaseCtx,
		locker:  l,
		cancel:  cancel,
		stop:    make(chan struct{}),
	}
	go lease.renew(opts.RenewEvery, ttlMs)

	logger.Debug("Lease acquired", "key", key)
	return lease, nil
}

// try runs an acquire or renew statement. A statement that returns no row
// did not get the lease.
func (l *Locker) try(ctx context.Context, sql, key, token string, ttlMs int64) (bool, error) {
	var got string
	err := l.db.QueryRow(ctx, sql, key, token, ttlMs).Scan(&got)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return got == key, nil
}

// Release gives the key up. It is safe to call more than once.
func (lease *Lease) Release(ctx context.Context) error {
	lease.once.Do(func() {
		close(lease.stop)
		lease.cancel(context.Canceled)
	})
	_, err := lease.locker.db.Exec(ctx, releaseSQL, lease.Key, lease.Token)
	return errors.Wrapf(err, "release lease %s", lease.Key)
}

func (lease *Lease) renew(every time.Duration, ttlMs int64) {
	t := time.NewTicker(every)
	defer t.Stop()

	for {
		select {
		case <-lease.stop:
			return
		case <-lease.Context.Done():
			return
		case <-t.C:
			ctx, cancel := context.WithTimeout(lease.Context, renewTimeout)
			ok, err := lease.locker.try(ctx, renewSQL, lease.Key, lease.Token, ttlMs)
			cancel()
			if err == nil && !ok {
				err = errors.Wrapf(ErrLost, "%s", lease.Key)
			}
			if err != nil {
				logger.Warn("Lease renewal failed", "key", lease.Key, "err", err)
				lease.cancel(err)
				return
			}
		}
	}
}

func sleep(ctx context.Context, base, jitter time.Duration) error {
	d := base
	if jitter > 0 {
		d += time.Duration(rand.Int64N(int64(jitter) + 1))
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

const tryAcquireSQL = `
INSERT INTO graph_locks (lock_key, locked_by, expires_at)
VALUES ($1, $2, now() + ($3::bigint * interval '1 millisecond'))
ON CONFLICT (lock_key) DO UPDATE
SET locked_by  = EXCLUDED.locked_by,
    expires_at = EXCLUDED.expires_at
WHERE graph_locks.expires_at < now()
   OR graph_locks.locked_by = EXCLUDED.locked_by
RETURNING lock_key`

const renewSQL = `
UPDATE graph_locks
SET expires_at = now() + ($3::bigint * interval '1 millisecond')
WHERE lock_key = $1 AND locked_by = $2
RETURNING lock_key`

const releaseSQL = `
DELETE FROM graph_locks
WHERE lock_key = $1 AND locked_by = $2`
