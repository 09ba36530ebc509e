package exchange

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// Config carries the marketplace operator's settings.
type Config struct {
	// CommissionRateBps is the protocol commission in basis points of the
	// trade amount, at most 10000.
	CommissionRateBps uint64
	// Operator is the engine's own account: the target of every approval
	// and allowance the engine draws on, and the commission sink.
	Operator common.Address
}

// Engine orchestrates offer placement and atomic settlement. Every
// state-mutating operation runs to completion under one mutex before the
// next begins; no operation ever interleaves with another's leg sequence.
type Engine struct {
	mu    sync.Mutex
	store *Store

	assets    AssetRegistry
	values    ValueTransfer
	native    NativeValue
	royalties RoyaltyOracle
	probe     CapabilityProbe
	journal   Journal

	operator      common.Address
	commissionBps uint64
	now           func() time.Time
}

// Option tweaks engine construction.
type Option func(*Engine)

// WithClock overrides the engine clock for deterministic expiry tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithJournal attaches an undo log shared by the engine's ports, letting a
// failed apply phase revert every leg already executed.
func WithJournal(j Journal) Option {
	return func(e *Engine) {
		e.journal = j
	}
}

// New validates the operator configuration and wires the engine to its
// collaborator ports.
func New(cfg Config, store *Store, assets AssetRegistry, values ValueTransfer, native NativeValue, royalties RoyaltyOracle, probe CapabilityProbe, opts ...Option) (*Engine, error) {
	if cfg.CommissionRateBps > BasisPointsDenominator {
		return nil, errors.Wrapf(ErrInvalidOffer, "commission rate %d exceeds %d basis points",
			cfg.CommissionRateBps, BasisPointsDenominator)
	}
	if cfg.Operator == (common.Address{}) {
		return nil, errors.Wrap(ErrInvalidOffer, "operator address not configured")
	}
	if store == nil {
		return nil, errors.New("offer store is required")
	}

	e := &Engine{
		store:         store,
		assets:        assets,
		values:        values,
		native:        native,
		royalties:     royalties,
		probe:         probe,
		operator:      cfg.Operator,
		commissionBps: cfg.CommissionRateBps,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// settlementMarkerKey marks contexts handed to the ports during a
// settlement. A transfer hook that calls back into the engine carries the
// marker and is rejected instead of deadlocking on the engine mutex.
type settlementMarkerKey struct{}

func markSettling(ctx context.Context) context.Context {
	return context.WithValue(ctx, settlementMarkerKey{}, struct{}{})
}

// enter is the critical-section prologue shared by every state-mutating
// operation: reject reentrant calls first, then serialize.
func (e *Engine) enter(ctx context.Context) (context.Context, func(), error) {
	if ctx.Value(settlementMarkerKey{}) != nil {
		return nil, nil, errors.Wrap(ErrReentrantCall, "settlement invoked from within a transfer leg")
	}
	e.mu.Lock()
	return markSettling(ctx), e.mu.Unlock, nil
}

// PlaceBidParams are the caller-supplied fields of a new bid.
type PlaceBidParams struct {
	Bidder     common.Address
	Collection common.Address
	TokenID    *big.Int
	Units      uint64
	Currency   common.Address
	Amount     *big.Int
	ExpiresAt  int64
}

// PlaceBid validates and stores a standing offer to buy, returning its id.
// The bidder's allowance is checked here so an unfunded bid is rejected
// up front, and checked again at settlement since allowances drift.
func (e *Engine) PlaceBid(ctx context.Context, p PlaceBidParams) (uint64, error) {
	ctx, exit, err := e.enter(ctx)
	if err != nil {
		return 0, err
	}
	defer exit()

	if err := validateOfferParams(p.Collection, p.TokenID, p.Units, p.Amount); err != nil {
		return 0, err
	}
	if p.Currency == NativeCurrency {
		return 0, errors.Wrap(ErrInvalidOffer, "bids must be priced in a fungible currency")
	}
	if err := e.validateExpiry(p.ExpiresAt); err != nil {
		return 0, err
	}

	standard, err := e.detectStandard(ctx, p.Collection, p.Units)
	if err != nil {
		return 0, err
	}
	if err := e.verifyAllowance(ctx, p.Currency, p.Bidder, p.Amount); err != nil {
		return 0, errors.Wrap(err, "failed on bid funding check")
	}

	id := e.store.AppendBid(&Bid{
		Bidder:     p.Bidder,
		Collection: p.Collection,
		TokenID:    new(big.Int).Set(p.TokenID),
		Units:      p.Units,
		Standard:   standard,
		Currency:   p.Currency,
		Amount:     new(big.Int).Set(p.Amount),
		CreatedAt:  e.now().Unix(),
		ExpiresAt:  p.ExpiresAt,
	})
	return id, nil
}

// PlaceAskParams are the caller-supplied fields of a new ask. A Currency of
// NativeCurrency posts the ask in the chain's native unit of value.
type PlaceAskParams struct {
	Seller       common.Address
	Collection   common.Address
	TokenID      *big.Int
	Units        uint64
	Currency     common.Address
	BuyNowAmount *big.Int
	ExpiresAt    int64
}

// PlaceAsk validates and stores a standing offer to sell, returning its id.
// Missing ownership or approval is reported, never silently ignored.
func (e *Engine) PlaceAsk(ctx context.Context, p PlaceAskParams) (uint64, error) {
	ctx, exit, err := e.enter(ctx)
	if err != nil {
		return 0, err
	}
	defer exit()

	if err := validateOfferParams(p.Collection, p.TokenID, p.Units, p.BuyNowAmount); err != nil {
		return 0, err
	}
	if err := e.validateExpiry(p.ExpiresAt); err != nil {
		return 0, err
	}

	standard, err := e.detectStandard(ctx, p.Collection, p.Units)
	if err != nil {
		return 0, err
	}
	if err := e.verifyAssetAuthority(ctx, standard, p.Collection, p.Seller, p.TokenID, p.Units); err != nil {
		return 0, errors.Wrap(err, "failed on ask authority check")
	}

	id := e.store.AppendAsk(&Ask{
		Seller:       p.Seller,
		Collection:   p.Collection,
		TokenID:      new(big.Int).Set(p.TokenID),
		Units:        p.Units,
		Standard:     standard,
		Currency:     p.Currency,
		BuyNowAmount: new(big.Int).Set(p.BuyNowAmount),
		CreatedAt:    e.now().Unix(),
		ExpiresAt:    p.ExpiresAt,
	})
	return id, nil
}

// AcceptBid settles a bid at its fixed amount. Only the current asset owner
// can accept; payment moves from the bidder through royalty receiver and
// commission sink to the caller, and the asset moves to the bidder.
func (e *Engine) AcceptBid(ctx context.Context, caller common.Address, bidID uint64) (*Settlement, error) {
	ctx, exit, err := e.enter(ctx)
	if err != nil {
		return nil, err
	}
	defer exit()

	bid, err := e.openBid(bidID)
	if err != nil {
		return nil, err
	}

	amount := bid.Amount
	commission := feeAmount(amount, e.commissionBps)
	receiver, royalty, err := e.quoteRoyalty(ctx, bid.Collection, bid.TokenID, amount, commission)
	if err != nil {
		return nil, err
	}

	if err := e.verifyAssetAuthority(ctx, bid.Standard, bid.Collection, caller, bid.TokenID, bid.Units); err != nil {
		return nil, err
	}
	if err := e.verifyAllowance(ctx, bid.Currency, bid.Bidder, amount); err != nil {
		return nil, err
	}

	proceeds := sellerProceeds(amount, commission, royalty)
	legs := e.currencyLegs(bid.Currency, bid.Bidder, caller, receiver, royalty, commission, proceeds)
	legs = append(legs, leg{"asset transfer", func(ctx context.Context) error {
		return e.assets.Transfer(ctx, bid.Collection, caller, bid.Bidder, bid.TokenID, bid.Units)
	}})
	if err := e.applyLegs(ctx, legs); err != nil {
		return nil, err
	}

	if err := e.store.Close(KindBid, bidID, StateSettled); err != nil {
		return nil, errors.Wrap(err, "failed on close settled bid")
	}
	return &Settlement{
		Kind:            KindBid,
		OfferID:         bidID,
		Collection:      bid.Collection,
		TokenID:         bid.TokenID,
		Units:           bid.Units,
		Currency:        bid.Currency,
		Buyer:           bid.Bidder,
		Seller:          caller,
		Amount:          amount,
		Commission:      commission,
		Royalty:         royalty,
		RoyaltyReceiver: receiver,
		SellerProceeds:  proceeds,
	}, nil
}

// BuyNowWithCurrency settles a currency-priced ask. Any buyer may invoke it
// with an amount at least the posted minimum; commission and royalty are
// derived from the settlement-time amount, not the stored one.
func (e *Engine) BuyNowWithCurrency(ctx context.Context, caller common.Address, askID uint64, amount *big.Int) (*Settlement, error) {
	ctx, exit, err := e.enter(ctx)
	if err != nil {
		return nil, err
	}
	defer exit()

	ask, err := e.openAsk(askID)
	if err != nil {
		return nil, err
	}
	if ask.Currency == NativeCurrency {
		return nil, errors.Wrapf(ErrInvalidOffer, "ask %d is priced in native value", askID)
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, errors.Wrap(ErrInvalidOffer, "payment amount must be a positive integer")
	}
	if amount.Cmp(ask.BuyNowAmount) < 0 {
		return nil, errors.Wrapf(ErrInsufficientFunds, "payment %s below buy-now amount %s",
			amount, ask.BuyNowAmount)
	}

	commission := feeAmount(amount, e.commissionBps)
	receiver, royalty, err := e.quoteRoyalty(ctx, ask.Collection, ask.TokenID, amount, commission)
	if err != nil {
		return nil, err
	}

	if err := e.verifyAssetAuthority(ctx, ask.Standard, ask.Collection, ask.Seller, ask.TokenID, ask.Units); err != nil {
		return nil, err
	}
	if err := e.verifyAllowance(ctx, ask.Currency, caller, amount); err != nil {
		return nil, err
	}

	proceeds := sellerProceeds(amount, commission, royalty)
	legs := e.currencyLegs(ask.Currency, caller, ask.Seller, receiver, royalty, commission, proceeds)
	legs = append(legs, leg{"asset transfer", func(ctx context.Context) error {
		return e.assets.Transfer(ctx, ask.Collection, ask.Seller, caller, ask.TokenID, ask.Units)
	}})
	if err := e.applyLegs(ctx, legs); err != nil {
		return nil, err
	}

	if err := e.store.Close(KindAsk, askID, StateSettled); err != nil {
		return nil, errors.Wrap(err, "failed on close settled ask")
	}
	return &Settlement{
		Kind:            KindAsk,
		OfferID:         askID,
		Collection:      ask.Collection,
		TokenID:         ask.TokenID,
		Units:           ask.Units,
		Currency:        ask.Currency,
		Buyer:           caller,
		Seller:          ask.Seller,
		Amount:          amount,
		Commission:      commission,
		Royalty:         royalty,
		RoyaltyReceiver: receiver,
		SellerProceeds:  proceeds,
	}, nil
}

// BuyNowWithNativeValue settles a native-priced ask with value attached to
// the call itself. Royalty is distributed exactly as in the currency flow.
func (e *Engine) BuyNowWithNativeValue(ctx context.Context, caller common.Address, askID uint64, attachedValue *big.Int) (*Settlement, error) {
	ctx, exit, err := e.enter(ctx)
	if err != nil {
		return nil, err
	}
	defer exit()

	ask, err := e.openAsk(askID)
	if err != nil {
		return nil, err
	}
	if ask.Currency != NativeCurrency {
		return nil, errors.Wrapf(ErrInvalidOffer, "ask %d is priced in currency %s",
			askID, ask.Currency.Hex())
	}
	if attachedValue == nil || attachedValue.Sign() <= 0 {
		return nil, errors.Wrap(ErrInvalidOffer, "attached value must be a positive integer")
	}
	if attachedValue.Cmp(ask.BuyNowAmount) < 0 {
		return nil, errors.Wrapf(ErrInsufficientFunds, "attached value %s below buy-now amount %s",
			attachedValue, ask.BuyNowAmount)
	}

	commission := feeAmount(attachedValue, e.commissionBps)
	receiver, royalty, err := e.quoteRoyalty(ctx, ask.Collection, ask.TokenID, attachedValue, commission)
	if err != nil {
		return nil, err
	}

	if err := e.verifyAssetAuthority(ctx, ask.Standard, ask.Collection, ask.Seller, ask.TokenID, ask.Units); err != nil {
		return nil, err
	}
	if err := e.verifyNativeBalance(ctx, caller, attachedValue); err != nil {
		return nil, err
	}

	proceeds := sellerProceeds(attachedValue, commission, royalty)
	legs := e.nativeLegs(caller, ask.Seller, receiver, royalty, commission, proceeds)
	legs = append(legs, leg{"asset transfer", func(ctx context.Context) error {
		return e.assets.Transfer(ctx, ask.Collection, ask.Seller, caller, ask.TokenID, ask.Units)
	}})
	if err := e.applyLegs(ctx, legs); err != nil {
		return nil, err
	}

	if err := e.store.Close(KindAsk, askID, StateSettled); err != nil {
		return nil, errors.Wrap(err, "failed on close settled ask")
	}
	return &Settlement{
		Kind:            KindAsk,
		OfferID:         askID,
		Collection:      ask.Collection,
		TokenID:         ask.TokenID,
		Units:           ask.Units,
		Currency:        NativeCurrency,
		Buyer:           caller,
		Seller:          ask.Seller,
		Amount:          attachedValue,
		Commission:      commission,
		Royalty:         royalty,
		RoyaltyReceiver: receiver,
		SellerProceeds:  proceeds,
	}, nil
}

// CancelBid moves an open bid to Cancelled. Only the bid's maker may cancel.
func (e *Engine) CancelBid(ctx context.Context, caller common.Address, bidID uint64) error {
	_, exit, err := e.enter(ctx)
	if err != nil {
		return err
	}
	defer exit()

	bid, state, err := e.store.Bid(bidID)
	if err != nil {
		return err
	}
	if state != StateOpen {
		return errors.Wrapf(ErrOfferNotFound, "bid %d already %s", bidID, state)
	}
	if bid.Bidder != caller {
		return errors.Wrapf(ErrNotAuthorized, "bid %d belongs to %s", bidID, bid.Bidder.Hex())
	}
	return e.store.Close(KindBid, bidID, StateCancelled)
}

// CancelAsk moves an open ask to Cancelled. Only the ask's maker may cancel.
func (e *Engine) CancelAsk(ctx context.Context, caller common.Address, askID uint64) error {
	_, exit, err := e.enter(ctx)
	if err != nil {
		return err
	}
	defer exit()

	ask, state, err := e.store.Ask(askID)
	if err != nil {
		return err
	}
	if state != StateOpen {
		return errors.Wrapf(ErrOfferNotFound, "ask %d already %s", askID, state)
	}
	if ask.Seller != caller {
		return errors.Wrapf(ErrNotAuthorized, "ask %d belongs to %s", askID, ask.Seller.Hex())
	}
	return e.store.Close(KindAsk, askID, StateCancelled)
}

// BidsForToken returns the ids of the open bids on an asset in creation order.
func (e *Engine) BidsForToken(collection common.Address, tokenID *big.Int) []uint64 {
	return e.store.BidsForToken(collection, tokenID)
}

// AsksForToken returns the ids of the open asks on an asset in creation order.
func (e *Engine) AsksForToken(collection common.Address, tokenID *big.Int) []uint64 {
	return e.store.AsksForToken(collection, tokenID)
}

// openBid loads a bid and enforces open state and expiry. An offer found
// past its expiry transitions to Expired here, inline; expiry is data-driven,
// not a scheduled event.
func (e *Engine) openBid(id uint64) (*Bid, error) {
	bid, state, err := e.store.Bid(id)
	if err != nil {
		return nil, err
	}
	if state != StateOpen {
		return nil, errors.Wrapf(ErrOfferNotFound, "bid %d already %s", id, state)
	}
	if expired(e.now().Unix(), bid.ExpiresAt) {
		if err := e.store.Close(KindBid, id, StateExpired); err != nil {
			return nil, err
		}
		return nil, errors.Wrapf(ErrExpired, "bid %d expired at %d", id, bid.ExpiresAt)
	}
	return bid, nil
}

func (e *Engine) openAsk(id uint64) (*Ask, error) {
	ask, state, err := e.store.Ask(id)
	if err != nil {
		return nil, err
	}
	if state != StateOpen {
		return nil, errors.Wrapf(ErrOfferNotFound, "ask %d already %s", id, state)
	}
	if expired(e.now().Unix(), ask.ExpiresAt) {
		if err := e.store.Close(KindAsk, id, StateExpired); err != nil {
			return nil, err
		}
		return nil, errors.Wrapf(ErrExpired, "ask %d expired at %d", id, ask.ExpiresAt)
	}
	return ask, nil
}

// leg is one externally observable step of a settlement.
type leg struct {
	name string
	run  func(ctx context.Context) error
}

// currencyLegs builds the payment legs of a currency settlement in the
// required order: royalty receiver, commission sink, then seller. Zero-value
// legs are skipped entirely.
func (e *Engine) currencyLegs(currency, payer, seller, royaltyReceiver common.Address, royalty, commission, proceeds *big.Int) []leg {
	var legs []leg
	if royalty.Sign() > 0 {
		legs = append(legs, leg{"royalty payment", func(ctx context.Context) error {
			return e.values.TransferFrom(ctx, currency, payer, royaltyReceiver, royalty)
		}})
	}
	if commission.Sign() > 0 {
		legs = append(legs, leg{"commission payment", func(ctx context.Context) error {
			return e.values.TransferFrom(ctx, currency, payer, e.operator, commission)
		}})
	}
	if proceeds.Sign() > 0 {
		legs = append(legs, leg{"seller payment", func(ctx context.Context) error {
			return e.values.TransferFrom(ctx, currency, payer, seller, proceeds)
		}})
	}
	return legs
}

// nativeLegs mirrors currencyLegs for value attached to the call.
func (e *Engine) nativeLegs(payer, seller, royaltyReceiver common.Address, royalty, commission, proceeds *big.Int) []leg {
	var legs []leg
	if royalty.Sign() > 0 {
		legs = append(legs, leg{"royalty payment", func(ctx context.Context) error {
			return e.native.Transfer(ctx, payer, royaltyReceiver, royalty)
		}})
	}
	if commission.Sign() > 0 {
		legs = append(legs, leg{"commission payment", func(ctx context.Context) error {
			return e.native.Transfer(ctx, payer, e.operator, commission)
		}})
	}
	if proceeds.Sign() > 0 {
		legs = append(legs, leg{"seller payment", func(ctx context.Context) error {
			return e.native.Transfer(ctx, payer, seller, proceeds)
		}})
	}
	return legs
}

// applyLegs executes the legs in order. Preconditions were all verified
// under the engine mutex, so a failing leg means the port's state moved in
// a way the verifier could not see; the journal snapshot taken before the
// first leg rolls every applied leg back so no partial trade survives.
func (e *Engine) applyLegs(ctx context.Context, legs []leg) error {
	revision := 0
	if e.journal != nil {
		revision = e.journal.Snapshot()
	}
	for _, l := range legs {
		if err := l.run(ctx); err != nil {
			if e.journal != nil {
				e.journal.RevertTo(revision)
			}
			return errors.Wrapf(err, "failed on %s leg", l.name)
		}
	}
	return nil
}

// detectStandard probes the collection and rejects unit counts the standard
// cannot carry: a non-fungible token is exactly one unit.
func (e *Engine) detectStandard(ctx context.Context, collection common.Address, units uint64) (AssetStandard, error) {
	standard, err := e.probe.DetectStandard(ctx, collection)
	if err != nil {
		return StandardUnknown, errors.Wrap(err, "failed on detect collection standard")
	}
	switch standard {
	case StandardNonFungible:
		if units != 1 {
			return StandardUnknown, errors.Wrapf(ErrInvalidOffer,
				"non-fungible offers carry exactly 1 unit, got %d", units)
		}
	case StandardSemiFungible:
	default:
		return StandardUnknown, errors.Wrapf(ErrInvalidOffer,
			"collection %s implements no supported asset standard", collection.Hex())
	}
	return standard, nil
}

func (e *Engine) validateExpiry(expiresAt int64) error {
	if expiresAt != 0 && expiresAt <= e.now().Unix() {
		return errors.Wrapf(ErrInvalidOffer, "expiry %d is not in the future", expiresAt)
	}
	return nil
}

func validateOfferParams(collection common.Address, tokenID *big.Int, units uint64, amount *big.Int) error {
	if collection == (common.Address{}) {
		return errors.Wrap(ErrInvalidOffer, "collection address is empty")
	}
	if tokenID == nil || tokenID.Sign() < 0 {
		return errors.Wrap(ErrInvalidOffer, "token id must be a non-negative integer")
	}
	if units == 0 {
		return errors.Wrap(ErrInvalidOffer, "units must be positive")
	}
	if amount == nil || amount.Sign() <= 0 {
		return errors.Wrap(ErrInvalidOffer, "amount must be a positive integer")
	}
	return nil
}

func sellerProceeds(amount, commission, royalty *big.Int) *big.Int {
	proceeds := new(big.Int).Sub(amount, commission)
	return proceeds.Sub(proceeds, royalty)
}

func expired(now, expiresAt int64) bool {
	return expiresAt != 0 && now > expiresAt
}
