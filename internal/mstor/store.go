package mstor

import (
	"fmt"
	"os"
	"time"

	"github.com/boltdb/bolt"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var bucketName = []byte("mstor")

// Store is the metadata store: one bolt database holding the whole
// flat keyspace of §3, plus the process-local id allocators and
// per-nid lock stripe that sit in front of it.
type Store struct {
	db     *bolt.DB
	udir   UserDirectory
	placer ReplicaPlacer
	logger *zap.Logger
	cfg    Config

	nextNID *idAllocator
	nextCID *idAllocator
	locks   *nidLockTable

	nowFn func() time.Time

	// instanceID tags every lifecycle log line from this Open call, so
	// a log aggregator can separate interleaved lines from two mstor
	// processes pointed at the same log sink.
	instanceID uuid.UUID
}

// Open attaches to (or creates) the store at cfg.Path, running
// bootstrap on an empty store or loading and validating an existing
// one. udir and placer are the external udata and assign_replicas
// collaborators; logger may be nil, in which case log calls are
// discarded.
func Open(cfg Config, udir UserDirectory, placer ReplicaPlacer, logger *zap.Logger) (*Store, error) {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := bolt.Open(cfg.Path, 0600, &bolt.Options{
		Timeout: 1 * time.Second,
		NoSync:  cfg.NoSync,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: open store at %s: %v", ErrIO, cfg.Path, err)
	}

	s := &Store{
		db:         db,
		udir:       udir,
		placer:     placer,
		logger:     logger,
		cfg:        cfg,
		locks:      newNIDLockTable(),
		nowFn:      time.Now,
		instanceID: uuid.New(),
	}
	s.logger = s.logger.With(zap.String("instance_id", s.instanceID.String()))

	if err := s.bootstrapOrLoad(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close releases the underlying bolt handle. Iterators, write
// batches, and get-allocated buffers are all scoped to a single
// transaction and already released when that transaction ends; Close
// only needs to release the store's own handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) now() time.Time {
	return s.nowFn().UTC()
}

func (s *Store) bootstrapOrLoad() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketName)
		if err != nil {
			return fmt.Errorf("%w: create bucket: %v", ErrIO, err)
		}

		c := b.Cursor()
		if k, _ := c.First(); k == nil {
			return s.bootstrapFresh(b)
		}
		return s.loadExisting(b)
	})
}

// bootstrapFresh implements §4.2 step 1: write the version record,
// the root node, and seed both id allocators.
func (s *Store) bootstrapFresh(b *bolt.Bucket) error {
	if err := b.Put(versionKey(), encodeVersion(schemaVersion)); err != nil {
		return fmt.Errorf("%w: write version record: %v", ErrIO, err)
	}

	now := s.now()
	root := &Node{
		NID:   RootNID,
		Mtime: now,
		Atime: now,
		UID:   SuperuserUID,
		GID:   SuperuserUID,
		Mode:  os.ModeDir | 0755,
	}
	if err := b.Put(nodeKey(RootNID), encodeNode(root)); err != nil {
		return fmt.Errorf("%w: write root node: %v", ErrIO, err)
	}

	s.nextNID = newIDAllocator("nid", RootNID+1, NIDMax)
	s.nextCID = newIDAllocator("cid", 1, CIDMax)

	s.logger.Info("mstor bootstrap: fresh store initialized", zap.Uint32("schema_version", schemaVersion))
	return nil
}

// loadExisting implements §4.2 step 2: validate the version record and
// recover both id allocators from the tail of their key ranges.
func (s *Store) loadExisting(b *bolt.Bucket) error {
	vraw := b.Get(versionKey())
	if vraw == nil {
		return fmt.Errorf("%w: missing version record", ErrInvalid)
	}
	version, err := decodeVersion(vraw)
	if err != nil {
		return fmt.Errorf("%w: malformed version record", ErrInvalid)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: unsupported schema version %d (want %d); mstor does not auto-migrate", ErrInvalid, version, schemaVersion)
	}

	if rootRaw := b.Get(nodeKey(RootNID)); rootRaw == nil {
		return fmt.Errorf("%w: missing root node", ErrInvalid)
	} else if _, derr := decodeNode(RootNID, rootRaw); derr != nil {
		return derr
	}

	nextNID, err := recoverNextID(b, prefixNode, NIDMax, RootNID+1)
	if err != nil {
		return err
	}
	nextCID, err := recoverNextID(b, prefixReplica, CIDMax, 1)
	if err != nil {
		return err
	}

	s.nextNID = newIDAllocator("nid", nextNID, NIDMax)
	s.nextCID = newIDAllocator("cid", nextCID, CIDMax)

	s.logger.Info("mstor load: recovered counters",
		zap.Uint64("next_nid", nextNID),
		zap.Uint64("next_cid", nextCID),
	)
	return nil
}

// recoverNextID seeks to the synthetic upper bound prefixByte||ceiling
// and steps back one to find the last on-disk key of that family.
func recoverNextID(b *bolt.Bucket, prefixByte byte, ceiling, defaultNext uint64) (uint64, error) {
	c := b.Cursor()
	c.Seek(familyCeilingKey(prefixByte, ceiling))
	k, _ := c.Prev()
	if k == nil || k[0] != prefixByte || len(k) != 9 {
		return defaultNext, nil
	}
	return be64u(k[1:9]) + 1, nil
}

// --- low-level record accessors, shared by every op handler ---

func (s *Store) getNode(tx *bolt.Tx, nid uint64) (*Node, error) {
	v := tx.Bucket(bucketName).Get(nodeKey(nid))
	if v == nil {
		return nil, ErrNotExist
	}
	return decodeNode(nid, v)
}

func (s *Store) putNode(tx *bolt.Tx, n *Node) error {
	if err := tx.Bucket(bucketName).Put(nodeKey(n.NID), encodeNode(n)); err != nil {
		return fmt.Errorf("%w: put node %d: %v", ErrIO, n.NID, err)
	}
	return nil
}

func (s *Store) delNode(tx *bolt.Tx, nid uint64) error {
	return tx.Bucket(bucketName).Delete(nodeKey(nid))
}

func (s *Store) getChild(tx *bolt.Tx, parent uint64, name string) (uint64, error) {
	v := tx.Bucket(bucketName).Get(childKey(parent, name))
	if v == nil {
		return 0, ErrNotExist
	}
	if len(v) != 8 {
		return 0, ErrIO
	}
	return be64u(v), nil
}

func (s *Store) putChild(tx *bolt.Tx, parent uint64, name string, child uint64) error {
	if err := tx.Bucket(bucketName).Put(childKey(parent, name), u64be(child)); err != nil {
		return fmt.Errorf("%w: put child %q of %d: %v", ErrIO, name, parent, err)
	}
	return nil
}

func (s *Store) delChild(tx *bolt.Tx, parent uint64, name string) error {
	return tx.Bucket(bucketName).Delete(childKey(parent, name))
}

func (s *Store) resolveUser(name string) (User, error) {
	if name == "" {
		return User{}, fmt.Errorf("%w: empty user name", ErrUsers)
	}
	return s.udir.LookupUser(name)
}

// fetchChild implements §4.4 step 5: requires exec+IS_DIR on pnode,
// then returns ENOENT, ENOTDIR, or the child node.
func (s *Store) fetchChild(tx *bolt.Tx, pnode *Node, name string, user User, checkPerms bool) (*Node, error) {
	if err := checkType(pnode, wantDir); err != nil {
		return nil, err
	}
	if err := checkAccess(pnode, user, accessExec, checkPerms); err != nil {
		return nil, err
	}
	cid, err := s.getChild(tx, pnode.NID, name)
	if err != nil {
		return nil, err
	}
	return s.getNode(tx, cid)
}

// resolution is what resolvePath hands back to an op handler: the
// node just before the terminal component (nil only for the root
// itself), the terminal component's node (nil if it doesn't exist),
// and the terminal component's name.
type resolution struct {
	parent *Node
	child  *Node
	name   string
}

// resolvePath implements §4.4: canonicalize, split, fetch root, then
// walk each component with fetchChild. ENOENT on an interior component
// propagates as an error; ENOENT on the last component instead comes
// back as child == nil so the caller can dispatch to its own creation
// handler (§4.4 step 6).
func (s *Store) resolvePath(tx *bolt.Tx, fullPath string, user User) (*resolution, error) {
	clean, err := canonicalizePath(fullPath)
	if err != nil {
		return nil, err
	}
	comps, err := splitComponents(clean)
	if err != nil {
		return nil, err
	}

	root, err := s.getNode(tx, RootNID)
	if err != nil {
		return nil, err
	}

	if len(comps) == 0 {
		return &resolution{parent: nil, child: root, name: ""}, nil
	}

	checkPerms := user.UID != SuperuserUID
	cnode := root
	var pnode *Node
	for i, comp := range comps {
		pnode = cnode
		last := i == len(comps)-1

		child, ferr := s.fetchChild(tx, pnode, comp, user, checkPerms)
		if ferr != nil {
			if ferr == ErrNotExist && last {
				return &resolution{parent: pnode, child: nil, name: comp}, nil
			}
			return nil, ferr
		}
		cnode = child
	}

	return &resolution{parent: pnode, child: cnode, name: comps[len(comps)-1]}, nil
}
