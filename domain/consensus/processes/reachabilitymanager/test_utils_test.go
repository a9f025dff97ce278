package reachabilitymanager

import (
	"encoding/binary"
	"testing"

	"github.com/Hoosat-Oy/flexidag/domain/consensus/model"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

func hash(i uint64) *externalapi.DomainHash {
	var hashBytes [externalapi.DomainHashSize]byte
	binary.LittleEndian.PutUint64(hashBytes[:], i)
	return externalapi.NewDomainHashFromByteArray(&hashBytes)
}

func newInterval(start, end uint64) model.ReachabilityInterval {
	return model.ReachabilityInterval{Start: start, End: end}
}

// storeBuilder inserts raw tree records with empty intervals
type storeBuilder struct {
	t     *testing.T
	store model.ReachabilityStore
}

func (sb *storeBuilder) addBlock(block, parent *externalapi.DomainHash) *storeBuilder {
	parentHeight := uint64(0)
	if !parent.IsZero() {
		var err error
		parentHeight, err = sb.store.AppendChild(parent, block)
		if err != nil {
			sb.t.Fatalf("AppendChild: %+v", err)
		}
	}
	err := sb.store.Insert(block, parent, model.EmptyReachabilityInterval(), parentHeight+1)
	if err != nil {
		sb.t.Fatalf("Insert: %+v", err)
	}
	return sb
}

// treeBuilder adds tree blocks and advances the reindex root after each one
type treeBuilder struct {
	t            *testing.T
	store        model.ReachabilityStore
	reindexDepth uint64
	reindexSlack uint64
}

func newTreeBuilder(t *testing.T, store model.ReachabilityStore) *treeBuilder {
	return newTreeBuilderWithParams(t, store, DefaultReindexDepth, DefaultReindexSlack)
}

func newTreeBuilderWithParams(t *testing.T, store model.ReachabilityStore, reindexDepth, reindexSlack uint64) *treeBuilder {
	return &treeBuilder{t: t, store: store, reindexDepth: reindexDepth, reindexSlack: reindexSlack}
}

func (tb *treeBuilder) initWithParams(origin *externalapi.DomainHash, capacity model.ReachabilityInterval) *treeBuilder {
	err := InitWithParams(tb.store, origin, capacity)
	if err != nil {
		tb.t.Fatalf("InitWithParams: %+v", err)
	}
	return tb
}

func (tb *treeBuilder) addBlock(block, parent *externalapi.DomainHash) *treeBuilder {
	err := AddTreeBlock(tb.store, block, parent, tb.reindexDepth, tb.reindexSlack)
	if err != nil {
		tb.t.Fatalf("AddTreeBlock(%s): %+v", block, err)
	}
	err = TryAdvancingReindexRoot(tb.store, block, tb.reindexDepth, tb.reindexSlack)
	if err != nil {
		tb.t.Fatalf("TryAdvancingReindexRoot(%s): %+v", block, err)
	}
	return tb
}

// dagBuilder adds DAG blocks. The selected parent is the parent with the
// greatest height, which is enough for tests of the reachability index in
// isolation.
type dagBuilder struct {
	t       *testing.T
	store   model.ReachabilityStore
	parents map[externalapi.DomainHash][]*externalapi.DomainHash
}

func newDAGBuilder(t *testing.T, store model.ReachabilityStore) *dagBuilder {
	return &dagBuilder{t: t, store: store, parents: make(map[externalapi.DomainHash][]*externalapi.DomainHash)}
}

func (db *dagBuilder) init(origin *externalapi.DomainHash) *dagBuilder {
	err := Init(db.store, origin)
	if err != nil {
		db.t.Fatalf("Init: %+v", err)
	}
	return db
}

func (db *dagBuilder) addBlock(block *externalapi.DomainHash, parents ...*externalapi.DomainHash) *dagBuilder {
	err := db.tryAddBlock(block, parents...)
	if err != nil {
		db.t.Fatalf("adding %s: %+v", block, err)
	}
	return db
}

func (db *dagBuilder) tryAddBlock(block *externalapi.DomainHash, parents ...*externalapi.DomainHash) error {
	selectedParent := parents[0]
	maxHeight, err := db.store.Height(selectedParent)
	if err != nil {
		return err
	}
	for _, parent := range parents[1:] {
		height, err := db.store.Height(parent)
		if err != nil {
			return err
		}
		if height > maxHeight {
			selectedParent, maxHeight = parent, height
		}
	}

	mergeSet, err := db.mergeSet(parents, selectedParent)
	if err != nil {
		return err
	}
	err = AddBlock(db.store, block, selectedParent, mergeSet)
	if err != nil {
		return err
	}
	err = HintVirtualSelectedParent(db.store, block)
	if err != nil {
		return err
	}
	db.parents[*block] = parents
	return nil
}

func (db *dagBuilder) mergeSet(parents []*externalapi.DomainHash, selectedParent *externalapi.DomainHash) (
	[]*externalapi.DomainHash, error) {

	queue := make([]*externalapi.DomainHash, 0, len(parents))
	mergeSet := make(map[externalapi.DomainHash]struct{})
	for _, parent := range parents {
		if parent.Equal(selectedParent) {
			continue
		}
		queue = append(queue, parent)
		mergeSet[*parent] = struct{}{}
	}
	past := make(map[externalapi.DomainHash]struct{})

	for len(queue) > 0 {
		var current *externalapi.DomainHash
		current, queue = queue[0], queue[1:]
		for _, parent := range db.parents[*current] {
			if _, ok := mergeSet[*parent]; ok {
				continue
			}
			if _, ok := past[*parent]; ok {
				continue
			}
			isInPast, err := IsDAGAncestorOf(db.store, parent, selectedParent)
			if err != nil {
				return nil, err
			}
			if isInPast {
				past[*parent] = struct{}{}
				continue
			}
			mergeSet[*parent] = struct{}{}
			queue = append(queue, parent)
		}
	}

	result := make([]*externalapi.DomainHash, 0, len(mergeSet))
	for blockHash := range mergeSet {
		result = append(result, &blockHash)
	}
	return result, nil
}

func inPastOf(t *testing.T, store model.ReachabilityStoreReader, block, other uint64) bool {
	if block == other {
		return false
	}
	isAncestor, err := IsDAGAncestorOf(store, hash(block), hash(other))
	if err != nil {
		t.Fatalf("IsDAGAncestorOf: %+v", err)
	}
	if isAncestor {
		isReverseAncestor, err := IsDAGAncestorOf(store, hash(other), hash(block))
		if err != nil {
			t.Fatalf("IsDAGAncestorOf: %+v", err)
		}
		if isReverseAncestor {
			t.Fatalf("%d and %d are in the past of each other", block, other)
		}
	}
	return isAncestor
}

func areAnticone(t *testing.T, store model.ReachabilityStoreReader, block, other uint64) bool {
	isAncestor, err := IsDAGAncestorOf(store, hash(block), hash(other))
	if err != nil {
		t.Fatalf("IsDAGAncestorOf: %+v", err)
	}
	isReverseAncestor, err := IsDAGAncestorOf(store, hash(other), hash(block))
	if err != nil {
		t.Fatalf("IsDAGAncestorOf: %+v", err)
	}
	return !isAncestor && !isReverseAncestor
}

// validateIntervals checks that the intervals of the subtree of root
// match the tree relations: parents strictly contain their children and
// sibling intervals are consecutive.
func validateIntervals(store model.ReachabilityStoreReader, root *externalapi.DomainHash) error {
	queue := []*externalapi.DomainHash{root}
	for len(queue) > 0 {
		var parent *externalapi.DomainHash
		parent, queue = queue[0], queue[1:]

		children, err := store.Children(parent)
		if err != nil {
			return err
		}
		queue = append(queue, children...)

		parentInterval, err := store.Interval(parent)
		if err != nil {
			return err
		}
		if parentInterval.IsEmpty() {
			return errors.Errorf("empty interval %s of %s", parentInterval, parent)
		}

		childIntervals := make([]model.ReachabilityInterval, len(children))
		for i, child := range children {
			childIntervals[i], err = store.Interval(child)
			if err != nil {
				return err
			}
			if !parentInterval.StrictlyContains(childIntervals[i]) {
				return errors.Errorf("interval %s of child %s is out of the bounds of interval %s of parent %s",
					childIntervals[i], child, parentInterval, parent)
			}
		}

		for i := 1; i < len(childIntervals); i++ {
			if childIntervals[i-1].End+1 != childIntervals[i].Start {
				return errors.Errorf("sibling intervals %s and %s are not consecutive", childIntervals[i-1], childIntervals[i])
			}
		}
	}
	return nil
}
