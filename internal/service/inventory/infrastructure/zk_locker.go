package infrastructure

import (
	"context"

	"bazaar/internal/pkg/logger"
	"bazaar/internal/pkg/zookeeper"
)

// ZkLocker implements application.Locker on the ZooKeeper distributed
// lock, so read-modify-write stock updates stay correct across replicas.
type ZkLocker struct {
	conn *zookeeper.Conn
}

func NewZkLocker(conn *zookeeper.Conn) *ZkLocker {
	return &ZkLocker{conn: conn}
}

func (l *ZkLocker) WithLock(ctx context.Context, resource string, fn func() error) error {
	lock, err := zookeeper.NewLock(l.conn, resource)
	if err != nil {
		return err
	}
	if err := lock.Lock(ctx); err != nil {
		return err
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Ctx(ctx).Error().Err(err).Str("resource", resource).Msg("failed to release lock")
		}
	}()
	return fn()
}
