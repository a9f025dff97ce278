package app

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/Hoosat-Oy/flexidag/domain/blockdag"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/utils/blockheader"
	"github.com/Hoosat-Oy/flexidag/infrastructure/logger"
	"github.com/Hoosat-Oy/flexidag/util/random"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

const progressLogInterval = 10 * time.Second

// generator grows a DAG layer by layer. Every block of a layer references
// the selected tip and a random subset of the other tips left by the
// previous layer, so the blocks of a layer are in each other's anticone and
// may be committed concurrently.
type generator struct {
	dag        *blockdag.BlockDAG
	width      int
	maxParents int
	workers    int
	random     *rand.Rand
}

// GenerationResult summarizes a generation run
type GenerationResult struct {
	Blocks      int
	SelectedTip *externalapi.DomainHash
	BlueScore   uint64
	BlueWork    *uint256.Int
}

func newGenerator(dag *blockdag.BlockDAG, cfg *Config) (*generator, error) {
	seed := cfg.Seed
	if seed == 0 {
		randomSeed, err := random.Uint64()
		if err != nil {
			return nil, err
		}
		seed = int64(randomSeed)
	}
	log.Infof("Generating blocks with seed %d", seed)

	return &generator{
		dag:        dag,
		width:      cfg.Width,
		maxParents: cfg.MaxParents,
		workers:    cfg.Workers,
		random:     rand.New(rand.NewSource(seed)),
	}, nil
}

// generate commits blockCount blocks on top of the current tips
func (g *generator) generate(ctx context.Context, blockCount int) (*GenerationResult, error) {
	onEnd := logger.LogAndMeasureExecutionTime(log, "generate")
	defer onEnd()

	committed := 0
	lastProgressLog := time.Now()
	for committed < blockCount {
		select {
		case <-ctx.Done():
			log.Infof("Generation interrupted after %d blocks", committed)
			return g.result(committed)
		default:
		}

		layerSize := g.width
		if blockCount-committed < layerSize {
			layerSize = blockCount - committed
		}
		headers, err := g.buildLayer(layerSize)
		if err != nil {
			return nil, err
		}
		err = g.commitLayer(headers)
		if err != nil {
			return nil, err
		}
		committed += len(headers)

		if time.Since(lastProgressLog) >= progressLogInterval {
			log.Infof("Committed %d/%d blocks", committed, blockCount)
			lastProgressLog = time.Now()
		}
	}
	return g.result(committed)
}

func (g *generator) buildLayer(layerSize int) ([]externalapi.BlockHeader, error) {
	tips, err := g.dag.Tips()
	if err != nil {
		return nil, err
	}
	selectedTip, err := g.dag.SelectedTip()
	if err != nil {
		return nil, err
	}

	headers := make([]externalapi.BlockHeader, 0, layerSize)
	for i := 0; i < layerSize; i++ {
		header, err := g.buildHeader(g.pickParents(selectedTip, tips))
		if err != nil {
			return nil, err
		}
		headers = append(headers, header)
	}
	return headers, nil
}

// pickParents returns the selected tip followed by up to maxParents-1
// other distinct tips
func (g *generator) pickParents(selectedTip *externalapi.DomainHash,
	tips []*externalapi.DomainHash) []*externalapi.DomainHash {

	parentCount := 1 + g.random.Intn(g.maxParents)
	parents := make([]*externalapi.DomainHash, 0, parentCount)
	parents = append(parents, selectedTip)
	for _, index := range g.random.Perm(len(tips)) {
		if len(parents) == parentCount {
			break
		}
		if tips[index].Equal(selectedTip) {
			continue
		}
		parents = append(parents, tips[index])
	}
	return parents
}

func (g *generator) buildHeader(parents []*externalapi.DomainHash) (externalapi.BlockHeader, error) {
	ghostdagData, err := g.dag.GhostData(parents)
	if err != nil {
		return nil, err
	}
	selectedParentHeader, err := g.dag.Header(ghostdagData.SelectedParent())
	if err != nil {
		return nil, err
	}

	difficulty := uint256.NewInt(uint64(1 + g.random.Intn(4)))
	timestamp := selectedParentHeader.Timestamp() + uint64(1+g.random.Intn(1000))
	return blockheader.NewBlockHeader(ghostdagData.SelectedParent(), parents,
		selectedParentHeader.Number()+1, timestamp, difficulty, g.random.Uint64(), nil), nil
}

// commitLayer commits headers with g.workers goroutines
func (g *generator) commitLayer(headers []externalapi.BlockHeader) error {
	headerChan := make(chan externalapi.BlockHeader)
	errChan := make(chan error, len(headers))
	var wg sync.WaitGroup

	workers := g.workers
	if workers > len(headers) {
		workers = len(headers)
	}
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		spawn("generator.commitLayer", func() {
			defer wg.Done()
			for header := range headerChan {
				err := g.dag.Commit(header)
				if err != nil {
					errChan <- errors.Wrapf(err, "failed to commit block %s", header.BlockHash())
				}
			}
		})
	}
	for _, header := range headers {
		headerChan <- header
	}
	close(headerChan)
	wg.Wait()
	close(errChan)

	return <-errChan
}

func (g *generator) result(committed int) (*GenerationResult, error) {
	selectedTip, err := g.dag.SelectedTip()
	if err != nil {
		return nil, err
	}
	ghostdagData, err := g.dag.GhostDataByHash(selectedTip)
	if err != nil {
		return nil, err
	}
	return &GenerationResult{
		Blocks:      committed,
		SelectedTip: selectedTip,
		BlueScore:   ghostdagData.BlueScore(),
		BlueWork:    ghostdagData.BlueWork(),
	}, nil
}
