package blockdag

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/Hoosat-Oy/flexidag/domain/consensus/database"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/datastructures/testutils"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/flexidag/domain/dagconfig"
	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
)

func TestCommitChain(t *testing.T) {
	td, teardown := newTestDAG(t, &dagconfig.SimnetParams)
	defer teardown()

	parent := td.genesis
	for i, block := range td.chain(td.genesis, 10) {
		data := td.ghostdagData(block)
		if !data.SelectedParent().Equal(parent) {
			t.Fatalf("block %d: expected selected parent %s, got %s", i, parent, data.SelectedParent())
		}
		if !externalapi.HashesEqual(data.MergeSetBlues(), []*externalapi.DomainHash{parent}) {
			t.Fatalf("block %d: unexpected mergeset blues %v", i, data.MergeSetBlues())
		}
		if len(data.MergeSetReds()) != 0 {
			t.Fatalf("block %d: unexpected mergeset reds %v", i, data.MergeSetReds())
		}
		if data.BlueScore() != td.ghostdagData(parent).BlueScore()+1 {
			t.Fatalf("block %d: expected blue score %d, got %d",
				i, td.ghostdagData(parent).BlueScore()+1, data.BlueScore())
		}
		parent = block
	}

	tips, err := td.dag.Tips()
	if err != nil {
		t.Fatalf("Tips: %v", err)
	}
	if !externalapi.HashesEqual(tips, []*externalapi.DomainHash{parent}) {
		t.Fatalf("expected tips [%s], got %v", parent, tips)
	}
}

func TestCommitForkMerge(t *testing.T) {
	const k = 3
	td, teardown := newTestDAG(t, dagconfig.DevnetParams.WithK(k))
	defer teardown()

	branchA := td.chain(td.genesis, 10)
	branchB := td.chain(td.genesis, 10)

	tips, err := td.dag.Tips()
	if err != nil {
		t.Fatalf("Tips: %v", err)
	}
	if len(tips) != 2 {
		t.Fatalf("expected two tips after the fork, got %v", tips)
	}

	merge := td.commit(branchA[len(branchA)-1], branchB[len(branchB)-1])
	data := td.ghostdagData(merge)
	if len(data.MergeSetBlues()) > k+1 {
		t.Fatalf("merge block has %d blues, more than k+1", len(data.MergeSetBlues()))
	}
	if len(data.MergeSet()) != 11 {
		t.Fatalf("expected a mergeset of 11 blocks, got %d: %s", len(data.MergeSet()), spew.Sdump(data))
	}
	for _, block := range td.allBlocks() {
		blockData := td.ghostdagData(block)
		if len(blockData.MergeSetBlues()) > k+1 {
			t.Fatalf("block %s has %d blues, more than k+1", block, len(blockData.MergeSetBlues()))
		}
	}

	tips, err = td.dag.Tips()
	if err != nil {
		t.Fatalf("Tips: %v", err)
	}
	if !externalapi.HashesEqual(tips, []*externalapi.DomainHash{merge}) {
		t.Fatalf("expected tips [%s], got %v", merge, tips)
	}
	selectedTip, err := td.dag.SelectedTip()
	if err != nil {
		t.Fatalf("SelectedTip: %v", err)
	}
	if !selectedTip.Equal(merge) {
		t.Fatalf("expected selected tip %s, got %s", merge, selectedTip)
	}
}

func TestCommitIsIdempotent(t *testing.T) {
	td, teardown := newTestDAG(t, &dagconfig.DevnetParams)
	defer teardown()

	header := td.newHeader(td.genesis)
	var first *externalapi.BlockGHOSTDAGData
	for i := 0; i < 3; i++ {
		err := td.dag.Commit(header)
		if err != nil {
			t.Fatalf("Commit #%d: %v", i, err)
		}
		data := td.ghostdagData(header.BlockHash())
		if first == nil {
			first = data
		} else if !first.Equal(data) {
			t.Fatalf("Commit #%d changed the GHOSTDAG data", i)
		}
	}

	children, err := td.dag.Children(td.genesis)
	if err != nil {
		t.Fatalf("Children: %v", err)
	}
	if !externalapi.HashesEqual(children, []*externalapi.DomainHash{header.BlockHash()}) {
		t.Fatalf("expected a single child of the genesis, got %v", children)
	}
}

func TestInitWithGenesis(t *testing.T) {
	dbManager, _, teardown := testutils.NewTestDB(t)
	defer teardown()

	dag, err := New(dbManager, &dagconfig.DevnetParams)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = dag.Tips()
	if !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
	genesis := dagconfig.DevnetParams.GenesisHeader()
	err = dag.Commit(genesis)
	if !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}

	err = dag.InitWithGenesis(genesis)
	if err != nil {
		t.Fatalf("InitWithGenesis: %v", err)
	}
	err = dag.InitWithGenesis(genesis)
	if err != nil {
		t.Fatalf("InitWithGenesis with the same genesis: %v", err)
	}
	err = dag.Commit(genesis)
	if err != nil {
		t.Fatalf("Commit of the genesis: %v", err)
	}

	otherParams := dagconfig.DevnetParams
	otherParams.GenesisTimestamp++
	err = dag.InitWithGenesis(otherParams.GenesisHeader())
	if !errors.Is(err, model.ErrGenesisMismatch) {
		t.Fatalf("expected ErrGenesisMismatch, got %v", err)
	}

	storedGenesis, err := dag.Genesis()
	if err != nil {
		t.Fatalf("Genesis: %v", err)
	}
	if !storedGenesis.Equal(genesis.BlockHash()) {
		t.Fatalf("expected genesis %s, got %s", genesis.BlockHash(), storedGenesis)
	}
	origin, err := dag.Origin()
	if err != nil {
		t.Fatalf("Origin: %v", err)
	}
	if !origin.Equal(dagconfig.DevnetParams.Origin) {
		t.Fatalf("expected origin %s, got %s", dagconfig.DevnetParams.Origin, origin)
	}
	genesisData, err := dag.GhostDataByHash(genesis.BlockHash())
	if err != nil {
		t.Fatalf("GhostDataByHash: %v", err)
	}
	if !genesisData.SelectedParent().Equal(origin) || genesisData.BlueScore() != 0 {
		t.Fatalf("unexpected genesis GHOSTDAG data: %s", spew.Sdump(genesisData))
	}
}

func TestCommitMissingParents(t *testing.T) {
	td, teardown := newTestDAG(t, &dagconfig.DevnetParams)
	defer teardown()

	orphanParent := td.newHeader(td.genesis)
	orphan := td.newHeader(orphanParent.BlockHash())
	err := td.dag.Commit(orphan)
	if !errors.Is(err, model.ErrMissingParents) {
		t.Fatalf("expected ErrMissingParents, got %v", err)
	}

	connected, err := td.dag.HasBlockConnected(orphan.BlockHash())
	if err != nil {
		t.Fatalf("HasBlockConnected: %v", err)
	}
	if connected {
		t.Fatalf("a block with missing parents must not be connected")
	}
}

func TestCheckAncestorOf(t *testing.T) {
	td, teardown := newTestDAG(t, &dagconfig.DevnetParams)
	defer teardown()

	a := td.chain(td.genesis, 3)
	b := td.chain(td.genesis, 2)

	isAncestor, err := td.dag.CheckAncestorOf(a[0], []*externalapi.DomainHash{b[1], a[2]})
	if err != nil {
		t.Fatalf("CheckAncestorOf: %v", err)
	}
	if !isAncestor {
		t.Fatalf("expected %s to be an ancestor of %s", a[0], a[2])
	}
	isAncestor, err = td.dag.CheckAncestorOf(a[0], []*externalapi.DomainHash{b[1]})
	if err != nil {
		t.Fatalf("CheckAncestorOf: %v", err)
	}
	if isAncestor {
		t.Fatalf("expected %s not to be an ancestor of %s", a[0], b[1])
	}

	unknown := td.newHeader(td.genesis).BlockHash()
	_, err = td.dag.CheckAncestorOf(unknown, []*externalapi.DomainHash{a[0]})
	if !database.IsNotFoundError(err) {
		t.Fatalf("expected a not found error for an unknown ancestor, got %v", err)
	}
	_, err = td.dag.CheckAncestorOf(a[0], []*externalapi.DomainHash{unknown})
	if !database.IsNotFoundError(err) {
		t.Fatalf("expected a not found error for an unknown descendant, got %v", err)
	}
}

// buildRandomDAG commits count blocks, each referencing up to maxParents
// random tips, and returns them in commit order
func buildRandomDAG(td *testDAG, random *rand.Rand, count, maxParents int) []*externalapi.DomainHash {
	td.t.Helper()

	blocks := make([]*externalapi.DomainHash, 0, count)
	for i := 0; i < count; i++ {
		tips, err := td.dag.Tips()
		if err != nil {
			td.t.Fatalf("Tips: %v", err)
		}
		random.Shuffle(len(tips), func(i, j int) { tips[i], tips[j] = tips[j], tips[i] })

		parentCount := 1 + random.Intn(maxParents)
		if parentCount > len(tips) {
			parentCount = len(tips)
		}
		parents := tips[:parentCount]
		// Occasionally fork off an older block to keep several tips alive.
		if random.Intn(3) == 0 && len(blocks) > 2 {
			parents = []*externalapi.DomainHash{blocks[len(blocks)-1-random.Intn(3)]}
		}
		blocks = append(blocks, td.commit(parents...))
	}
	return blocks
}

func TestGHOSTDAGInvariants(t *testing.T) {
	const k = 4
	td, teardown := newTestDAG(t, dagconfig.DevnetParams.WithK(k))
	defer teardown()

	blocks := buildRandomDAG(td, rand.New(rand.NewSource(42)), 120, 4)

	origin, err := td.dag.Origin()
	if err != nil {
		t.Fatalf("Origin: %v", err)
	}
	for _, block := range blocks {
		data := td.ghostdagData(block)
		selectedParentData := td.ghostdagData(data.SelectedParent())

		if len(data.MergeSetBlues()) > k+1 {
			t.Fatalf("block %s has %d blues, more than k+1", block, len(data.MergeSetBlues()))
		}
		if data.BlueScore() <= selectedParentData.BlueScore() {
			t.Fatalf("blue score of %s is not above its selected parent", block)
		}
		if data.BlueWork().Cmp(selectedParentData.BlueWork()) <= 0 {
			t.Fatalf("blue work of %s is not above its selected parent", block)
		}

		isAncestor, err := td.dag.IsAncestorOf(origin, block)
		if err != nil {
			t.Fatalf("IsAncestorOf: %v", err)
		}
		if !isAncestor {
			t.Fatalf("the origin is not an ancestor of %s", block)
		}

		interval, err := td.dag.reachabilityStore.Interval(block)
		if err != nil {
			t.Fatalf("Interval: %v", err)
		}
		selectedParentInterval, err := td.dag.reachabilityStore.Interval(data.SelectedParent())
		if err != nil {
			t.Fatalf("Interval: %v", err)
		}
		if !selectedParentInterval.Contains(interval) {
			t.Fatalf("interval %s of %s is not contained in the interval %s of its selected parent",
				interval, block, selectedParentInterval)
		}

		recalculated, err := td.dag.GhostData(td.headers[*block].ParentsHash())
		if err != nil {
			t.Fatalf("GhostData: %v", err)
		}
		if !recalculated.Equal(data) {
			t.Fatalf("recalculated GHOSTDAG data of %s differs from the stored one", block)
		}
		err = td.dag.CheckGHOSTDAGDataBlueBlock(data)
		if err != nil {
			t.Fatalf("CheckGHOSTDAGDataBlueBlock %s: %v", block, err)
		}
	}

	for i, a := range blocks {
		for _, b := range blocks[i+1:] {
			aBeforeB, err := td.dag.IsAncestorOf(a, b)
			if err != nil {
				t.Fatalf("IsAncestorOf: %v", err)
			}
			bBeforeA, err := td.dag.IsAncestorOf(b, a)
			if err != nil {
				t.Fatalf("IsAncestorOf: %v", err)
			}
			if aBeforeB && bBeforeA {
				t.Fatalf("%s and %s are ancestors of each other", a, b)
			}
			if bBeforeA {
				t.Fatalf("%s was committed after its descendant %s", b, a)
			}
		}
	}
}

func TestVerifyAndGHOSTDAGThroughDAG(t *testing.T) {
	td, teardown := newTestDAG(t, dagconfig.DevnetParams.WithK(3))
	defer teardown()

	siblings := make([]*externalapi.DomainHash, 5)
	for i := range siblings {
		siblings[i] = td.commit(td.genesis)
	}
	header := td.newHeader(siblings...)
	expected, err := td.dag.GhostData(siblings)
	if err != nil {
		t.Fatalf("GhostData: %v", err)
	}

	blueHeaders := make([]externalapi.BlockHeader, 0, len(expected.MergeSetBlues())-1)
	for _, blue := range expected.MergeSetBlues()[1:] {
		blueHeaders = append(blueHeaders, td.headers[*blue])
	}
	verified, err := td.dag.VerifyAndGHOSTDAG(blueHeaders, header)
	if err != nil {
		t.Fatalf("VerifyAndGHOSTDAG: %v", err)
	}
	if !verified.Equal(expected) {
		t.Fatalf("verified GHOSTDAG data differs from the calculated one")
	}

	redHeader := td.headers[*expected.MergeSetReds()[0]]
	_, err = td.dag.VerifyAndGHOSTDAG(append(blueHeaders, redHeader), header)
	if !errors.Is(err, model.ErrGHOSTDAGDataMismatch) {
		t.Fatalf("expected ErrGHOSTDAGDataMismatch, got %v", err)
	}
}

func TestReopenDAG(t *testing.T) {
	dbManager, _, teardown := testutils.NewTestDB(t)
	defer teardown()

	td := newTestDAGOver(t, dbManager, &dagconfig.DevnetParams)
	blocks := td.chain(td.genesis, 5)
	tip := blocks[len(blocks)-1]
	expected := td.ghostdagData(tip)

	reopened := newTestDAGOver(t, dbManager, &dagconfig.DevnetParams)
	data, err := reopened.dag.GhostDataByHash(tip)
	if err != nil {
		t.Fatalf("GhostDataByHash: %v", err)
	}
	if !data.Equal(expected) {
		t.Fatalf("the GHOSTDAG data of %s changed after reopening", tip)
	}
	tips, err := reopened.dag.Tips()
	if err != nil {
		t.Fatalf("Tips: %v", err)
	}
	if !externalapi.HashesEqual(tips, []*externalapi.DomainHash{tip}) {
		t.Fatalf("expected tips [%s], got %v", tip, tips)
	}
	header, err := reopened.dag.Header(tip)
	if err != nil {
		t.Fatalf("Header: %v", err)
	}
	if !header.BlockHash().Equal(tip) {
		t.Fatalf("expected the header of %s, got %s", tip, header.BlockHash())
	}

	next := reopened.newHeader(tip)
	err = reopened.dag.Commit(next)
	if err != nil {
		t.Fatalf("Commit after reopening: %v", err)
	}
}

func TestSetReindexRoot(t *testing.T) {
	td, teardown := newTestDAG(t, &dagconfig.DevnetParams)
	defer teardown()

	blocks := td.chain(td.genesis, 4)
	err := td.dag.SetReindexRoot(blocks[1])
	if err != nil {
		t.Fatalf("SetReindexRoot: %v", err)
	}
	root, err := td.dag.ReindexRoot()
	if err != nil {
		t.Fatalf("ReindexRoot: %v", err)
	}
	if !root.Equal(blocks[1]) {
		t.Fatalf("expected reindex root %s, got %s", blocks[1], root)
	}

	unknown := td.newHeader(td.genesis).BlockHash()
	err = td.dag.SetReindexRoot(unknown)
	if !database.IsNotFoundError(err) {
		t.Fatalf("expected a not found error, got %v", err)
	}
}

func TestConcurrentCommits(t *testing.T) {
	td, teardown := newTestDAG(t, dagconfig.DevnetParams.WithK(3))
	defer teardown()

	// Build the headers up front, layer by layer: every header of a layer
	// references a subset of the previous layer.
	const layers, width = 8, 4
	layerHeaders := make([][]externalapi.BlockHeader, layers)
	previous := []*externalapi.DomainHash{td.genesis}
	for layer := range layerHeaders {
		current := make([]*externalapi.DomainHash, width)
		for i := range current {
			parents := []*externalapi.DomainHash{previous[i%len(previous)]}
			if len(previous) > 1 {
				parents = append(parents, previous[(i+1)%len(previous)])
			}
			header := td.newHeader(parents...)
			layerHeaders[layer] = append(layerHeaders[layer], header)
			current[i] = header.BlockHash()
		}
		previous = current
	}

	for _, headers := range layerHeaders {
		var wg sync.WaitGroup
		errs := make(chan error, 2*len(headers))
		for _, header := range headers {
			// Each header is committed twice concurrently.
			for j := 0; j < 2; j++ {
				wg.Add(1)
				go func(header externalapi.BlockHeader) {
					defer wg.Done()
					errs <- td.dag.Commit(header)
				}(header)
			}
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			if err != nil {
				t.Fatalf("Commit: %v", err)
			}
		}
	}

	// The same headers committed sequentially produce the same data.
	sequential, sequentialTeardown := newTestDAG(t, dagconfig.DevnetParams.WithK(3))
	defer sequentialTeardown()
	for _, headers := range layerHeaders {
		for _, header := range headers {
			err := sequential.dag.Commit(header)
			if err != nil {
				t.Fatalf("Commit: %v", err)
			}
			expected := sequential.ghostdagData(header.BlockHash())
			if !td.ghostdagData(header.BlockHash()).Equal(expected) {
				t.Fatalf("concurrent and sequential commits disagree on %s", header.BlockHash())
			}
		}
	}
}
