package model

// DBKey addresses a single value inside a DBBucket.
type DBKey interface {
	Bytes() []byte
	Bucket() DBBucket
	Suffix() []byte
}

// DBBucket is a key prefix. Stores own one bucket each and derive
// per-block keys from it.
type DBBucket interface {
	Bucket(bucketBytes []byte) DBBucket
	Key(suffix []byte) DBKey
	Path() []byte
}

// DBReader is the read side shared by the database and its transactions.
// Stores read through it when a staged value is missing from both staging
// and cache.
type DBReader interface {
	// Get returns ErrNotFound, wrapped, when key is absent.
	Get(key DBKey) ([]byte, error)
	Has(key DBKey) (bool, error)
}

// DBWriter adds writes to DBReader. Delete of a missing key is not an error.
type DBWriter interface {
	DBReader
	Put(key DBKey, value []byte) error
	Delete(key DBKey) error
}

// DBTransaction groups the writes of one StagingArea commit. Reads see the
// database as of Begin, not the transaction's own writes.
type DBTransaction interface {
	DBWriter
	Commit() error
	Rollback() error

	// RollbackUnlessClosed is meant to be deferred right after Begin. It is
	// a no-op once Commit or Rollback has run.
	RollbackUnlessClosed() error
}

// DBManager is the database handle the DAG stores are built over.
type DBManager interface {
	DBWriter
	Begin() (DBTransaction, error)
}
