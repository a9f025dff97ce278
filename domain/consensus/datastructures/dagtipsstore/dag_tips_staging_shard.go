package dagtipsstore

import (
	"github.com/Hoosat-Oy/flexidag/domain/consensus/database/binaryserialization"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"
)

type dagTipsStagingShard struct {
	store   *dagTipsStore
	tips    []*externalapi.DomainHash
	genesis *externalapi.DomainHash
	origin  *externalapi.DomainHash
}

func (dts *dagTipsStore) stagingShard(stagingArea *model.StagingArea) *dagTipsStagingShard {
	return stagingArea.GetOrCreateShard(dts.shardID, func() model.StagingShard {
		return &dagTipsStagingShard{
			store: dts,
		}
	}).(*dagTipsStagingShard)
}

func (dtss *dagTipsStagingShard) Commit(dbTx model.DBTransaction) error {
	if dtss.tips != nil {
		err := dbTx.Put(dtss.store.tipsKey, binaryserialization.SerializeHashes(dtss.tips))
		if err != nil {
			return err
		}
	}
	if dtss.genesis != nil {
		err := dbTx.Put(dtss.store.genesisKey, binaryserialization.SerializeHash(dtss.genesis))
		if err != nil {
			return err
		}
	}
	if dtss.origin != nil {
		err := dbTx.Put(dtss.store.originKey, binaryserialization.SerializeHash(dtss.origin))
		if err != nil {
			return err
		}
	}
	return nil
}

func (dtss *dagTipsStagingShard) UpdateCaches() {
	dtss.store.cacheLock.Lock()
	defer dtss.store.cacheLock.Unlock()
	if dtss.tips != nil {
		dtss.store.tipsCache = dtss.tips
	}
	if dtss.genesis != nil {
		dtss.store.genesisCache = dtss.genesis
	}
	if dtss.origin != nil {
		dtss.store.originCache = dtss.origin
	}
}

func (dtss *dagTipsStagingShard) isStaged() bool {
	return dtss.tips != nil || dtss.genesis != nil || dtss.origin != nil
}
