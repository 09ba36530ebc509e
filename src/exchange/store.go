package exchange

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// assetKey indexes offers by the asset they reference. Token ids are keyed
// by their decimal text since big.Int is not comparable.
type assetKey struct {
	collection common.Address
	tokenID    string
}

func keyFor(collection common.Address, tokenID *big.Int) assetKey {
	return assetKey{collection: collection, tokenID: tokenID.String()}
}

// Store owns every Bid and Ask record, their lifecycle states and the
// per-asset indices. Ids are dense and monotonic from 0, one independent
// counter per offer kind, so a bid id is only ever checked against the bid
// arena and an ask id against the ask arena.
type Store struct {
	mu sync.RWMutex

	bids      []*Bid
	bidStates []OfferState
	asks      []*Ask
	askStates []OfferState

	bidIndex map[assetKey][]uint64
	askIndex map[assetKey][]uint64
}

func NewStore() *Store {
	return &Store{
		bidIndex: make(map[assetKey][]uint64),
		askIndex: make(map[assetKey][]uint64),
	}
}

// AppendBid stores a new open bid and returns its id.
func (s *Store) AppendBid(bid *Bid) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uint64(len(s.bids))
	s.bids = append(s.bids, bid)
	s.bidStates = append(s.bidStates, StateOpen)
	key := keyFor(bid.Collection, bid.TokenID)
	s.bidIndex[key] = append(s.bidIndex[key], id)
	return id
}

// AppendAsk stores a new open ask and returns its id.
func (s *Store) AppendAsk(ask *Ask) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uint64(len(s.asks))
	s.asks = append(s.asks, ask)
	s.askStates = append(s.askStates, StateOpen)
	key := keyFor(ask.Collection, ask.TokenID)
	s.askIndex[key] = append(s.askIndex[key], id)
	return id
}

// Bid returns the bid record and its current state. Ids at or above the bid
// counter are unknown.
func (s *Store) Bid(id uint64) (*Bid, OfferState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if id >= uint64(len(s.bids)) {
		return nil, StateOpen, errors.Wrapf(ErrOfferNotFound, "bid %d", id)
	}
	return s.bids[id], s.bidStates[id], nil
}

// Ask returns the ask record and its current state.
func (s *Store) Ask(id uint64) (*Ask, OfferState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if id >= uint64(len(s.asks)) {
		return nil, StateOpen, errors.Wrapf(ErrOfferNotFound, "ask %d", id)
	}
	return s.asks[id], s.askStates[id], nil
}

// BidsForToken returns the ids of the open bids on an asset, in creation
// order.
func (s *Store) BidsForToken(collection common.Address, tokenID *big.Int) []uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.openIDs(s.bidIndex[keyFor(collection, tokenID)], s.bidStates)
}

// AsksForToken returns the ids of the open asks on an asset, in creation
// order.
func (s *Store) AsksForToken(collection common.Address, tokenID *big.Int) []uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.openIDs(s.askIndex[keyFor(collection, tokenID)], s.askStates)
}

func (s *Store) openIDs(ids []uint64, states []OfferState) []uint64 {
	open := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if states[id] == StateOpen {
			open = append(open, id)
		}
	}
	return open
}

// Close moves an open offer to a terminal state, removing it from every
// future lookup and settlement path. Closing an offer that is not open is
// reported as not found so a second settlement attempt against the same id
// cannot double-spend the asset or the payment.
func (s *Store) Close(kind OfferKind, id uint64, state OfferState) error {
	if state == StateOpen {
		return errors.Wrap(ErrInvalidOffer, "close requires a terminal state")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch kind {
	case KindBid:
		if id >= uint64(len(s.bids)) || s.bidStates[id] != StateOpen {
			return errors.Wrapf(ErrOfferNotFound, "bid %d", id)
		}
		s.bidStates[id] = state
		s.dropFromIndex(s.bidIndex, keyFor(s.bids[id].Collection, s.bids[id].TokenID), id)
	case KindAsk:
		if id >= uint64(len(s.asks)) || s.askStates[id] != StateOpen {
			return errors.Wrapf(ErrOfferNotFound, "ask %d", id)
		}
		s.askStates[id] = state
		s.dropFromIndex(s.askIndex, keyFor(s.asks[id].Collection, s.asks[id].TokenID), id)
	default:
		return errors.Wrapf(ErrOfferNotFound, "unknown offer kind %d", kind)
	}
	return nil
}

func (s *Store) dropFromIndex(index map[assetKey][]uint64, key assetKey, id uint64) {
	ids := index[key]
	for i, v := range ids {
		if v == id {
			index[key] = append(ids[:i], ids[i+1:]...)
			return
		}
	}
}
