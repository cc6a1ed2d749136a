package common

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	idNode     *snowflake.Node
	idNodeOnce sync.Once
)

// SetNodeID must be called before the first UUIDint64 call to take effect.
func SetNodeID(id int64) {
	idNodeOnce.Do(func() {
		node, err := snowflake.NewNode(id)
		if err != nil {
			panic(err)
		}
		idNode = node
	})
}

// UUIDint64 returns a time ordered unique int64 id
func UUIDint64() int64 {
	SetNodeID(1)
	return idNode.Generate().Int64()
}
