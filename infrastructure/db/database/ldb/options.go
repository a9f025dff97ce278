package ldb

import "github.com/syndtr/goleveldb/leveldb/opt"

// minCacheSizeMiB is the smallest block cache NewLevelDB opens with.
// Smaller requests are raised to it so the write buffer never drops
// below a few MiB.
const minCacheSizeMiB = 8

// Options returns the leveldb options used for the DAG store. Block
// contents are hashes and compact binary records that do not compress
// well, so compression is disabled. Half of the cache budget goes to the
// memtable write buffer.
func Options(cacheSizeMiB int) *opt.Options {
	if cacheSizeMiB < minCacheSizeMiB {
		cacheSizeMiB = minCacheSizeMiB
	}
	return &opt.Options{
		Compression:        opt.NoCompression,
		BlockCacheCapacity: cacheSizeMiB * opt.MiB,
		WriteBuffer:        cacheSizeMiB * opt.MiB / 2,
	}
}
