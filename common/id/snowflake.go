// Package id mints the server-side identifiers for conversations and
// messages. Snowflake ids are positive, time-ordered int64s; provisional
// messages on clients use negative ids, so the two ranges can never collide.
package id

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once
)

// Init initializes the generator for this server replica. The node id comes
// from config (SNOWFLAKE_NODE_ID) so replicas sharing a database never mint
// the same id. Subsequent calls are no-ops.
func Init(nodeID int64) error {
	var err error
	once.Do(func() {
		node, err = snowflake.NewNode(nodeID)
	})
	return err
}

// New generates a globally unique id. Ids are time-ordered, which keeps
// message ids roughly aligned with send order.
func New() int64 {
	return node.Generate().Int64()
}
