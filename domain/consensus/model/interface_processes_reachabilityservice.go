package model

import "github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"

// ReachabilityService answers ancestry queries over the reachability index.
// It's safe for concurrent use.
type ReachabilityService interface {
	IsChainAncestorOf(this, queried *externalapi.DomainHash) (bool, error)
	IsDAGAncestorOf(this, queried *externalapi.DomainHash) (bool, error)
	IsDAGAncestorOfAny(this *externalapi.DomainHash, queried []*externalapi.DomainHash) (bool, error)
	IsAnyDAGAncestor(list []*externalapi.DomainHash, queried *externalapi.DomainHash) (bool, error)
	GetNextChainAncestor(descendant, ancestor *externalapi.DomainHash) (*externalapi.DomainHash, error)
}
