// Package mstor implements the metadata store of a distributed
// filesystem in the spirit of HDFS/GFS: the hierarchical namespace,
// permission model, and the mapping from files to the chunk/replica
// locations kept on object-storage daemons (OSDs).
//
// The store encodes the namespace into a single ordered key/value
// space (github.com/boltdb/bolt) rather than keeping it in memory, so
// that every mutation is a point-put or a single atomic batch write.
// Wire protocol, RPC dispatch, OSD placement policy, and configuration
// parsing all live above this package; mstor only calls back into them
// through the narrow UserDirectory and ReplicaPlacer interfaces.
package mstor
