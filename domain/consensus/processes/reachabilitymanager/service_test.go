package reachabilitymanager

import (
	"sync"
	"testing"

	"github.com/Hoosat-Oy/flexidag/domain/consensus/datastructures/reachabilitydatastore"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/datastructures/testutils"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

func collect(t *testing.T, iterator *ChainIterator) []uint64 {
	t.Helper()
	var result []uint64
	for iterator.Next() {
		found := false
		for i := uint64(0); i <= 0xffff; i++ {
			if iterator.Get().Equal(hash(i)) {
				result = append(result, i)
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("unexpected hash %s", iterator.Get())
		}
	}
	if iterator.Err() != nil {
		t.Fatalf("iteration failed: %+v", iterator.Err())
	}
	return result
}

func assertSequence(t *testing.T, actual []uint64, expected ...uint64) {
	t.Helper()
	if len(actual) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, actual)
	}
	for i := range expected {
		if actual[i] != expected[i] {
			t.Fatalf("expected %v, got %v", expected, actual)
		}
	}
}

func TestForwardChainIterator(t *testing.T) {
	service := NewService(buildSmallTree(t))

	assertSequence(t, collect(t, service.ForwardChainIterator(hash(2), hash(10), false)), 2, 3, 5, 6)
	assertSequence(t, collect(t, service.ForwardChainIterator(hash(2), hash(10), true)), 2, 3, 5, 6, 10)
	assertSequence(t, collect(t, service.BackwardChainIterator(hash(10), hash(2), true)), 10, 6, 5, 3, 2)
}

func TestChainIteratorBoundaries(t *testing.T) {
	store := reachabilitydatastore.NewMemoryStore()
	root := hash(1)
	newTreeBuilder(t, store).
		initWithParams(root, newInterval(1, 5)).
		addBlock(hash(2), root)
	service := NewService(store)

	assertSequence(t, collect(t, service.ForwardChainIterator(hash(1), hash(2), true)), 1, 2)
	assertSequence(t, collect(t, service.ForwardChainIterator(hash(1), hash(2), false)), 1)
	assertSequence(t, collect(t, service.BackwardChainIterator(hash(2), root, true)), 2, 1)
	assertSequence(t, collect(t, service.BackwardChainIterator(hash(2), root, false)), 2)
	assertSequence(t, collect(t, service.BackwardChainIterator(root, root, true)), 1)
	assertSequence(t, collect(t, service.BackwardChainIterator(root, root, false)))
	assertSequence(t, collect(t, service.ForwardChainIterator(root, root, true)), 1)
	assertSequence(t, collect(t, service.ForwardChainIterator(root, root, false)))

	// The default iterator stops before the origin
	assertSequence(t, collect(t, service.DefaultBackwardChainIterator(hash(2))), 2)
}

func TestForwardChainIteratorOutOfChain(t *testing.T) {
	service := NewService(buildSmallTree(t))

	iterator := service.ForwardChainIterator(hash(4), hash(10), true)
	for iterator.Next() {
	}
	if !errors.Is(iterator.Err(), model.ErrBadQuery) {
		t.Fatalf("expected ErrBadQuery, got %v", iterator.Err())
	}
}

func TestServiceQueries(t *testing.T) {
	store := reachabilitydatastore.NewMemoryStore()
	origin := hash(0xffff)
	newDAGBuilder(t, store).
		init(origin).
		addBlock(hash(1), origin).
		addBlock(hash(2), hash(1)).
		addBlock(hash(3), hash(1)).
		addBlock(hash(4), hash(2), hash(3))
	service := NewService(store)

	isAncestor, err := service.IsDAGAncestorOfAny(hash(3), []*externalapi.DomainHash{hash(2), hash(4)})
	if err != nil {
		t.Fatalf("IsDAGAncestorOfAny: %+v", err)
	}
	if !isAncestor {
		t.Fatalf("expected 3 to be in the past of 4")
	}
	isAncestor, err = service.IsAnyDAGAncestor([]*externalapi.DomainHash{hash(2), hash(3)}, hash(1))
	if err != nil {
		t.Fatalf("IsAnyDAGAncestor: %+v", err)
	}
	if isAncestor {
		t.Fatalf("neither 2 nor 3 is in the past of 1")
	}

	_, err = service.IsDAGAncestorOf(hash(3), hash(100))
	if err == nil {
		t.Fatalf("expected an error for an unknown block")
	}
}

func TestServiceConcurrentReaders(t *testing.T) {
	store := reachabilitydatastore.NewMemoryStore()
	builder := newTreeBuilder(t, store).initWithParams(hash(1), model.MaximalReachabilityInterval())
	for i := uint64(2); i <= 50; i++ {
		builder.addBlock(hash(i), hash(i-1))
	}
	service := NewService(store)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for worker := 0; worker < 8; worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := uint64(1); i <= 50; i++ {
				isAncestor, err := service.IsChainAncestorOf(hash(1), hash(i))
				if err != nil {
					errs <- err
					return
				}
				if !isAncestor {
					errs <- errors.Errorf("1 is not a chain ancestor of %d", i)
					return
				}
			}
		}()
	}

	// A writer holding the write guard blocks the readers without
	// breaking them
	unlock := service.Lock()
	unlock()

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent reader: %+v", err)
	}
}

// TestConcurrentInitAndAddBlock adds blocks of two branches that merge every
// few blocks to a database backed store while other goroutines keep
// re-initializing it. Re-initializing never fails and never disturbs the
// tree. A block that was already added can't be added again.
func TestConcurrentInitAndAddBlock(t *testing.T) {
	testutils.ForAllDatabaseTypes(t, func(t *testing.T, dbManager model.DBManager, prefixBucket model.DBBucket) {
		store := reachabilitydatastore.NewDBStore(reachabilitydatastore.New(prefixBucket, 100, false), dbManager)
		origin := hash(0xffff)

		var wg sync.WaitGroup
		errs := make(chan error, 100)
		reinit := func() {
			defer wg.Done()
			err := Init(store, origin)
			if err != nil {
				errs <- err
			}
		}
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go reinit()
		}
		wg.Wait()

		builder := newDAGBuilder(t, store)
		builder.addBlock(hash(1), origin)
		parentsOf := make(map[uint64][]*externalapi.DomainHash)
		tipA, tipB := uint64(1), uint64(1)
		for i := uint64(2); i <= 70; i++ {
			if i%10 == 0 {
				wg.Add(1)
				go reinit()
			}

			var parents []*externalapi.DomainHash
			switch i % 5 {
			case 0:
				parents = []*externalapi.DomainHash{hash(tipA), hash(tipB)}
				tipA, tipB = i, i
			case 1, 3:
				parents = []*externalapi.DomainHash{hash(tipA)}
				tipA = i
			default:
				parents = []*externalapi.DomainHash{hash(tipB)}
				tipB = i
			}
			parentsOf[i] = parents
			builder.addBlock(hash(i), parents...)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			t.Fatalf("concurrent Init: %+v", err)
		}

		err := validateIntervals(store, origin)
		if err != nil {
			t.Fatalf("validateIntervals: %+v", err)
		}

		// 6 and 8 extend the merge block 5 on one branch, 7 and 9 on the
		// other. The merge block 10 has one of the branches in its mergeset.
		if !areAnticone(t, store, 6, 7) || !areAnticone(t, store, 8, 9) {
			t.Fatalf("expected the two branches to be in the anticone of each other")
		}
		for _, block := range []uint64{5, 6, 7, 8, 9} {
			if !inPastOf(t, store, block, 10) {
				t.Fatalf("expected %d to be in the past of the merge block 10", block)
			}
			if !inPastOf(t, store, block, 70) {
				t.Fatalf("expected %d to be in the past of 70", block)
			}
		}
		futureCoveringSetSize := 0
		for _, block := range []uint64{6, 7, 8, 9} {
			futureCoveringSet, err := store.FutureCoveringSet(hash(block))
			if err != nil {
				t.Fatalf("FutureCoveringSet: %+v", err)
			}
			futureCoveringSetSize += len(futureCoveringSet)
		}
		if futureCoveringSetSize == 0 {
			t.Fatalf("expected the merged branch to have a future covering set")
		}

		// Adding the last block again after re-initializing fails and
		// leaves the tree as is
		err = Init(store, origin)
		if err != nil {
			t.Fatalf("Init: %+v", err)
		}
		err = builder.tryAddBlock(hash(70), parentsOf[70]...)
		if !errors.Is(err, model.ErrKeyAlreadyExists) {
			t.Fatalf("adding 70 again: expected ErrKeyAlreadyExists, got %v", err)
		}
		parent, err := store.Parent(hash(70))
		if err != nil {
			t.Fatalf("Parent: %+v", err)
		}
		children, err := store.Children(parent)
		if err != nil {
			t.Fatalf("Children: %+v", err)
		}
		if !externalapi.HashesEqual(children, []*externalapi.DomainHash{hash(70)}) {
			t.Fatalf("expected 70 to be the only child of %s, got %v", parent, children)
		}
		err = validateIntervals(store, origin)
		if err != nil {
			t.Fatalf("validateIntervals after adding 70 again: %+v", err)
		}
	})
}

// TestAddBlockAfterPartialAdd adds a block to the tree without updating the
// future covering sets of its mergeset, then adds it in full
func TestAddBlockAfterPartialAdd(t *testing.T) {
	store := reachabilitydatastore.NewMemoryStore()
	origin := hash(0xffff)
	newDAGBuilder(t, store).
		init(origin).
		addBlock(hash(1), origin).
		addBlock(hash(2), hash(1)).
		addBlock(hash(3), hash(1))

	err := AddTreeBlock(store, hash(4), hash(2), DefaultReindexDepth, DefaultReindexSlack)
	if err != nil {
		t.Fatalf("AddTreeBlock: %+v", err)
	}
	err = AddBlock(store, hash(4), hash(2), []*externalapi.DomainHash{hash(3)})
	if !errors.Is(err, model.ErrKeyAlreadyExists) {
		t.Fatalf("expected ErrKeyAlreadyExists, got %v", err)
	}
	futureCoveringSet, err := store.FutureCoveringSet(hash(3))
	if err != nil {
		t.Fatalf("FutureCoveringSet: %+v", err)
	}
	if len(futureCoveringSet) != 0 {
		t.Fatalf("expected the failed add to leave the future covering set of 3 empty, got %v", futureCoveringSet)
	}
}

// TestAddBlockOutOfCapacity grows a chain under an origin with a tiny
// capacity until the index can't take any more blocks
func TestAddBlockOutOfCapacity(t *testing.T) {
	const (
		reindexDepth = 3
		reindexSlack = 1
	)
	store := reachabilitydatastore.NewMemoryStore()
	err := InitWithParams(store, hash(1), newInterval(1, 200))
	if err != nil {
		t.Fatalf("InitWithParams: %+v", err)
	}

	for i := uint64(2); i <= 121; i++ {
		err = AddBlockWithParams(store, hash(i), hash(i-1), nil, reindexDepth, reindexSlack)
		if err == nil {
			err = TryAdvancingReindexRoot(store, hash(i), reindexDepth, reindexSlack)
		}
		if err == nil {
			continue
		}
		if !errors.Is(err, model.ErrDataOverflow) && !errors.Is(err, model.ErrDataInconsistency) {
			t.Fatalf("adding %d: expected ErrDataOverflow or ErrDataInconsistency, got %+v", i, err)
		}
		return
	}
	t.Fatalf("expected a capacity of 200 to run out before 120 blocks were added")
}
