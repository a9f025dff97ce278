package reachabilitymanager

import (
	"sync"

	"github.com/Hoosat-Oy/flexidag/domain/consensus/model"
	"github.com/Hoosat-Oy/flexidag/domain/consensus/model/externalapi"
)

// Service answers reachability queries over a store that is shared with a
// writer. Queries hold a read lock for their whole duration. Writers that
// flush changes into the underlying store take the write lock via Lock.
type Service struct {
	lock  sync.RWMutex
	store model.ReachabilityStoreReader
}

var _ model.ReachabilityService = (*Service)(nil)

// NewService returns a Service reading from store
func NewService(store model.ReachabilityStoreReader) *Service {
	return &Service{store: store}
}

// Lock acquires the write lock of the service and returns the function
// that releases it.
func (s *Service) Lock() (unlock func()) {
	s.lock.Lock()
	return s.lock.Unlock
}

// IsChainAncestorOf returns true if this is in the selected parent chain of
// queried.
func (s *Service) IsChainAncestorOf(this, queried *externalapi.DomainHash) (bool, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return IsChainAncestorOf(s.store, this, queried)
}

// IsDAGAncestorOf returns true if this is in the past of queried
func (s *Service) IsDAGAncestorOf(this, queried *externalapi.DomainHash) (bool, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return IsDAGAncestorOf(s.store, this, queried)
}

// IsDAGAncestorOfAny returns true if this is in the past of any of queried
func (s *Service) IsDAGAncestorOfAny(this *externalapi.DomainHash, queried []*externalapi.DomainHash) (bool, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	for _, hash := range queried {
		isAncestor, err := IsDAGAncestorOf(s.store, this, hash)
		if err != nil {
			return false, err
		}
		if isAncestor {
			return true, nil
		}
	}
	return false, nil
}

// IsAnyDAGAncestor returns true if any block of list is in the past of queried
func (s *Service) IsAnyDAGAncestor(list []*externalapi.DomainHash, queried *externalapi.DomainHash) (bool, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	for _, hash := range list {
		isAncestor, err := IsDAGAncestorOf(s.store, hash, queried)
		if err != nil {
			return false, err
		}
		if isAncestor {
			return true, nil
		}
	}
	return false, nil
}

// GetNextChainAncestor returns the tree child of ancestor in the selected
// chain of descendant.
func (s *Service) GetNextChainAncestor(descendant, ancestor *externalapi.DomainHash) (*externalapi.DomainHash, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return GetNextChainAncestor(s.store, descendant, ancestor)
}

func (s *Service) parent(blockHash *externalapi.DomainHash) (*externalapi.DomainHash, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.store.Parent(blockHash)
}
