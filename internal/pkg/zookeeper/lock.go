package zookeeper

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-zookeeper/zk"
)

const lockRoot = "/bazaar/locks"

// Conn wraps a ZooKeeper connection.
type Conn struct {
	*zk.Conn
}

// Connect dials the ensemble and waits for the session asynchronously.
func Connect(addrs []string, sessionTimeout time.Duration) (*Conn, error) {
	if sessionTimeout <= 0 {
		sessionTimeout = 5 * time.Second
	}
	conn, _, err := zk.Connect(addrs, sessionTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to zookeeper: %w", err)
	}
	return &Conn{Conn: conn}, nil
}

// Lock is a distributed lock built on ephemeral sequential nodes: the
// holder is the lowest sequence number, everyone else watches their
// predecessor. A crashed holder's session expiry releases the lock.
type Lock struct {
	conn     *Conn
	path     string
	lockNode string
}

// NewLock prepares a lock for one resource, creating the parent znodes if
// they are missing.
func NewLock(conn *Conn, resourceID string) (*Lock, error) {
	path := lockRoot + "/" + resourceID
	if err := ensurePath(conn, path); err != nil {
		return nil, err
	}
	return &Lock{conn: conn, path: path}, nil
}

// Lock blocks until the lock is acquired or ctx is done.
func (l *Lock) Lock(ctx context.Context) error {
	nodePath, err := l.conn.CreateProtectedEphemeralSequential(l.path+"/lock-", []byte{}, zk.WorldACL(zk.PermAll))
	if err != nil {
		return fmt.Errorf("failed to create sequential node: %w", err)
	}
	l.lockNode = nodePath

	for {
		children, _, err := l.conn.Children(l.path)
		if err != nil {
			l.cleanup()
			return fmt.Errorf("failed to list lock children: %w", err)
		}
		sort.Slice(children, func(i, j int) bool {
			return sequence(children[i]) < sequence(children[j])
		})

		myNode := strings.TrimPrefix(l.lockNode, l.path+"/")
		idx := indexOf(children, myNode)
		if idx < 0 {
			l.cleanup()
			return fmt.Errorf("lock node %s vanished", l.lockNode)
		}
		if idx == 0 {
			return nil
		}

		// Watch only the immediate predecessor to avoid a thundering herd.
		prev := l.path + "/" + children[idx-1]
		exists, _, ch, err := l.conn.ExistsW(prev)
		if err != nil {
			l.cleanup()
			return fmt.Errorf("failed to watch predecessor %s: %w", prev, err)
		}
		if !exists {
			continue
		}
		select {
		case <-ch:
		case <-ctx.Done():
			l.cleanup()
			return ctx.Err()
		}
	}
}

// Unlock releases the lock by deleting our node.
func (l *Lock) Unlock() error {
	if l.lockNode == "" {
		return nil
	}
	err := l.conn.Delete(l.lockNode, -1)
	l.lockNode = ""
	if err != nil && err != zk.ErrNoNode {
		return fmt.Errorf("failed to delete lock node: %w", err)
	}
	return nil
}

func (l *Lock) cleanup() {
	if l.lockNode != "" {
		_ = l.conn.Delete(l.lockNode, -1)
		l.lockNode = ""
	}
}

func ensurePath(conn *Conn, path string) error {
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	current := ""
	for _, part := range parts {
		current += "/" + part
		_, err := conn.Create(current, []byte{}, 0, zk.WorldACL(zk.PermAll))
		if err != nil && err != zk.ErrNodeExists {
			return fmt.Errorf("failed to create znode %s: %w", current, err)
		}
	}
	return nil
}

// sequence extracts the trailing sequence number from a protected
// ephemeral-sequential node name.
func sequence(node string) string {
	if i := strings.LastIndex(node, "-"); i >= 0 {
		return node[i+1:]
	}
	return node
}

func indexOf(nodes []string, target string) int {
	for i, n := range nodes {
		if n == target {
			return i
		}
	}
	return -1
}
