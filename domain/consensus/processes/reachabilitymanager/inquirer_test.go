package reachabilitymanager

import (
	"testing"

	"github.com/Hoosat-Oy/flexidag/domain/consensus/datastructures/reachabilitydatastore"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model"
	"github.com/pkg/errors"
)

func buildSmallTree(t *testing.T) model.ReachabilityStore {
	store := reachabilitydatastore.NewMemoryStore()
	root := hash(1)
	newTreeBuilder(t, store).
		initWithParams(root, newInterval(1, 15)).
		addBlock(hash(2), root).
		addBlock(hash(3), hash(2)).
		addBlock(hash(4), hash(2)).
		addBlock(hash(5), hash(3)).
		addBlock(hash(6), hash(5)).
		addBlock(hash(7), hash(1)).
		addBlock(hash(8), hash(6)).
		addBlock(hash(9), hash(6)).
		addBlock(hash(10), hash(6)).
		addBlock(hash(11), hash(6))
	return store
}

func TestAddTreeBlocks(t *testing.T) {
	// The capacity of the root is small enough to trigger reindexing
	store := buildSmallTree(t)
	err := validateIntervals(store, hash(1))
	if err != nil {
		t.Fatalf("validateIntervals: %+v", err)
	}

	for _, block := range []uint64{2, 3, 5, 6, 8} {
		isAncestor, err := IsChainAncestorOf(store, hash(block), hash(8))
		if err != nil {
			t.Fatalf("IsChainAncestorOf: %+v", err)
		}
		if !isAncestor {
			t.Fatalf("expected %d to be a chain ancestor of 8", block)
		}
	}
	isStrictAncestor, err := IsStrictChainAncestorOf(store, hash(8), hash(8))
	if err != nil {
		t.Fatalf("IsStrictChainAncestorOf: %+v", err)
	}
	if isStrictAncestor {
		t.Fatalf("a block is not a strict chain ancestor of itself")
	}
	isAncestor, err := IsChainAncestorOf(store, hash(7), hash(8))
	if err != nil {
		t.Fatalf("IsChainAncestorOf: %+v", err)
	}
	if isAncestor {
		t.Fatalf("7 is not in the chain of 8")
	}
}

func TestAddEarlyBlocks(t *testing.T) {
	store := reachabilitydatastore.NewMemoryStore()

	// Arrange
	root := hash(1)
	builder := newTreeBuilderWithParams(t, store, 2, 5)
	builder.initWithParams(root, model.MaximalReachabilityInterval())
	for i := uint64(2); i < 100; i++ {
		builder.addBlock(hash(i), hash(i/2))
	}

	// Act. Block 2 is below the reindex root by now, so adding a child to it
	// reclaims slack around the reindex root's chain
	builder.addBlock(hash(100), hash(2))

	// Assert
	err := validateIntervals(store, root)
	if err != nil {
		t.Fatalf("validateIntervals: %+v", err)
	}
}

func TestAddDAGBlocks(t *testing.T) {
	store := reachabilitydatastore.NewMemoryStore()
	origin := hash(0xffff)

	newDAGBuilder(t, store).
		init(origin).
		addBlock(hash(1), origin).
		addBlock(hash(2), hash(1)).
		addBlock(hash(3), hash(1)).
		addBlock(hash(4), hash(2), hash(3)).
		addBlock(hash(5), hash(4)).
		addBlock(hash(6), hash(1)).
		addBlock(hash(7), hash(5), hash(6)).
		addBlock(hash(8), hash(1)).
		addBlock(hash(9), hash(1)).
		addBlock(hash(10), hash(7), hash(8), hash(9)).
		addBlock(hash(11), hash(1)).
		addBlock(hash(12), hash(11), hash(10))

	err := validateIntervals(store, origin)
	if err != nil {
		t.Fatalf("validateIntervals: %+v", err)
	}

	for i := uint64(2); i <= 12; i++ {
		if !inPastOf(t, store, 1, i) {
			t.Fatalf("expected 1 to be in the past of %d", i)
		}
	}

	pastPairs := [][2]uint64{{2, 4}, {2, 5}, {2, 7}, {5, 10}, {6, 10}, {10, 12}, {11, 12}}
	for _, pair := range pastPairs {
		if !inPastOf(t, store, pair[0], pair[1]) {
			t.Fatalf("expected %d to be in the past of %d", pair[0], pair[1])
		}
	}

	anticonePairs := [][2]uint64{{2, 3}, {2, 6}, {3, 6}, {5, 6}, {3, 8}, {11, 2}, {11, 4}, {11, 6}, {11, 9}}
	for _, pair := range anticonePairs {
		if !areAnticone(t, store, pair[0], pair[1]) {
			t.Fatalf("expected %d and %d to be in the anticone of each other", pair[0], pair[1])
		}
	}

	isAncestor, err := IsDAGAncestorOf(store, origin, hash(12))
	if err != nil {
		t.Fatalf("IsDAGAncestorOf: %+v", err)
	}
	if !isAncestor {
		t.Fatalf("expected the origin to be in the past of every block")
	}
}

func TestInsertToFutureCoveringSetIsIdempotent(t *testing.T) {
	store := reachabilitydatastore.NewMemoryStore()
	origin := hash(0xffff)
	builder := newDAGBuilder(t, store).
		init(origin).
		addBlock(hash(1), origin).
		addBlock(hash(2), hash(1)).
		addBlock(hash(3), hash(1)).
		addBlock(hash(4), hash(2), hash(3))

	for i := 0; i < 3; i++ {
		err := insertToFutureCoveringSet(builder.store, hash(3), hash(4))
		if err != nil {
			t.Fatalf("insertToFutureCoveringSet: %+v", err)
		}
	}
	futureCoveringSet, err := store.FutureCoveringSet(hash(3))
	if err != nil {
		t.Fatalf("FutureCoveringSet: %+v", err)
	}
	if len(futureCoveringSet) != 1 || !futureCoveringSet[0].Equal(hash(4)) {
		t.Fatalf("unexpected future covering set %v", futureCoveringSet)
	}
}

func TestGetNextChainAncestor(t *testing.T) {
	store := buildSmallTree(t)

	next, err := GetNextChainAncestor(store, hash(10), hash(2))
	if err != nil {
		t.Fatalf("GetNextChainAncestor: %+v", err)
	}
	if !next.Equal(hash(3)) {
		t.Fatalf("expected 3, got %s", next)
	}

	next, err = GetNextChainAncestor(store, hash(10), hash(6))
	if err != nil {
		t.Fatalf("GetNextChainAncestor: %+v", err)
	}
	if !next.Equal(hash(10)) {
		t.Fatalf("expected 10, got %s", next)
	}

	_, err = GetNextChainAncestor(store, hash(2), hash(2))
	if !errors.Is(err, model.ErrBadQuery) {
		t.Fatalf("expected ErrBadQuery for equal blocks, got %v", err)
	}
	_, err = GetNextChainAncestor(store, hash(4), hash(3))
	if !errors.Is(err, model.ErrBadQuery) {
		t.Fatalf("expected ErrBadQuery for a block out of the chain, got %v", err)
	}
}

func TestReindexRootFollowsHint(t *testing.T) {
	store := reachabilitydatastore.NewMemoryStore()
	builder := newTreeBuilderWithParams(t, store, 3, 5)
	builder.initWithParams(hash(1), model.MaximalReachabilityInterval())
	for i := uint64(2); i <= 10; i++ {
		builder.addBlock(hash(i), hash(i-1))
	}

	// Block 10 is at height 9 and the reindex root is kept at depth 3 below
	// it, one block above the first block closer than the depth
	root, err := store.ReindexRoot()
	if err != nil {
		t.Fatalf("ReindexRoot: %+v", err)
	}
	if !root.Equal(hash(7)) {
		t.Fatalf("expected reindex root 7, got %s", root)
	}

	// A side branch that is not heavier by at least the slack doesn't move
	// the root
	builder.addBlock(hash(11), hash(3))
	root, err = store.ReindexRoot()
	if err != nil {
		t.Fatalf("ReindexRoot: %+v", err)
	}
	if !root.Equal(hash(7)) {
		t.Fatalf("expected reindex root 7, got %s", root)
	}

	err = validateIntervals(store, hash(1))
	if err != nil {
		t.Fatalf("validateIntervals: %+v", err)
	}
}

func TestInitWithParamsIsIdempotent(t *testing.T) {
	store := reachabilitydatastore.NewMemoryStore()
	for i := 0; i < 3; i++ {
		err := InitWithParams(store, hash(1), newInterval(1, 100))
		if err != nil {
			t.Fatalf("InitWithParams: %+v", err)
		}
	}
	err := AddTreeBlock(store, hash(2), hash(1), DefaultReindexDepth, DefaultReindexSlack)
	if err != nil {
		t.Fatalf("AddTreeBlock: %+v", err)
	}

	// Re-initializing must not reset the children of the origin
	err = InitWithParams(store, hash(1), newInterval(1, 100))
	if err != nil {
		t.Fatalf("InitWithParams: %+v", err)
	}
	children, err := store.Children(hash(1))
	if err != nil {
		t.Fatalf("Children: %+v", err)
	}
	if len(children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(children))
	}
}
