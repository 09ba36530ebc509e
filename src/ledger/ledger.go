// Package ledger is an in-memory implementation of the exchange's
// collaborator ports: currency balances and allowances, native value,
// non-fungible and semi-fungible ownership with approvals, and per-collection
// royalty declarations. Every mutation is recorded in an undo log so the
// settlement engine can revert a half-applied trade, in the manner of
// go-ethereum's state journal.
package ledger

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/ProjectsTask/EasySwapExchange/src/exchange"
)

// TransferHook runs as part of an asset transfer, after the ownership
// mutation. A non-nil error fails the transfer. Hooks exist so callers can
// model tokens whose transfer callbacks re-enter the marketplace.
type TransferHook func(ctx context.Context, collection, from, to common.Address, tokenID *big.Int, units uint64) error

type collection struct {
	standard        exchange.AssetStandard
	royaltyBps      uint64
	royaltyReceiver common.Address

	owners            map[string]common.Address            // non-fungible: token -> owner
	balances          map[string]map[common.Address]*big.Int // semi-fungible: token -> holder -> units
	tokenApprovals    map[string]common.Address
	operatorApprovals map[common.Address]map[common.Address]bool

	hook TransferHook
}

// Ledger holds all registry state behind one mutex. The exchange engine is
// constructed against a single operator account; the ledger enforces that
// account's approvals and allowances on every transfer it executes.
type Ledger struct {
	mu       sync.Mutex
	operator common.Address

	native      map[common.Address]*big.Int
	balances    map[common.Address]map[common.Address]*big.Int            // currency -> account
	allowances  map[common.Address]map[common.Address]map[common.Address]*big.Int // currency -> owner -> spender
	collections map[common.Address]*collection

	undo []func()
}

// New creates an empty ledger serving the given operator account.
func New(operator common.Address) *Ledger {
	return &Ledger{
		operator:    operator,
		native:      make(map[common.Address]*big.Int),
		balances:    make(map[common.Address]map[common.Address]*big.Int),
		allowances:  make(map[common.Address]map[common.Address]map[common.Address]*big.Int),
		collections: make(map[common.Address]*collection),
	}
}

// Snapshot returns a revision token for the current state.
func (l *Ledger) Snapshot() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.undo)
}

// RevertTo undoes every mutation recorded after the given revision.
func (l *Ledger) RevertTo(revision int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := len(l.undo) - 1; i >= revision; i-- {
		l.undo[i]()
	}
	l.undo = l.undo[:revision]
}

func (l *Ledger) journal(undo func()) {
	l.undo = append(l.undo, undo)
}

// ---- setup mutators ----

// CreateCollection registers a collection with its standard and royalty
// declaration. A zero royaltyBps (or zero receiver) declares no royalty.
func (l *Ledger) CreateCollection(addr common.Address, standard exchange.AssetStandard, royaltyBps uint64, royaltyReceiver common.Address) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.collections[addr]; ok {
		return errors.Errorf("collection %s already exists", addr.Hex())
	}
	if royaltyBps > exchange.BasisPointsDenominator {
		return errors.Errorf("royalty rate %d exceeds %d basis points", royaltyBps, exchange.BasisPointsDenominator)
	}
	l.collections[addr] = &collection{
		standard:          standard,
		royaltyBps:        royaltyBps,
		royaltyReceiver:   royaltyReceiver,
		owners:            make(map[string]common.Address),
		balances:          make(map[string]map[common.Address]*big.Int),
		tokenApprovals:    make(map[string]common.Address),
		operatorApprovals: make(map[common.Address]map[common.Address]bool),
	}
	l.journal(func() { delete(l.collections, addr) })
	return nil
}

// MintNFT assigns a fresh non-fungible token to owner.
func (l *Ledger) MintNFT(addr common.Address, tokenID *big.Int, owner common.Address) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	c, err := l.collectionOf(addr, exchange.StandardNonFungible)
	if err != nil {
		return err
	}
	key := tokenID.String()
	if _, ok := c.owners[key]; ok {
		return errors.Errorf("token %s of %s already minted", key, addr.Hex())
	}
	c.owners[key] = owner
	l.journal(func() { delete(c.owners, key) })
	return nil
}

// MintSFT credits owner with units of a semi-fungible token type.
func (l *Ledger) MintSFT(addr common.Address, tokenID *big.Int, owner common.Address, units uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	c, err := l.collectionOf(addr, exchange.StandardSemiFungible)
	if err != nil {
		return err
	}
	key := tokenID.String()
	if c.balances[key] == nil {
		c.balances[key] = make(map[common.Address]*big.Int)
	}
	l.creditUnits(c.balances[key], owner, new(big.Int).SetUint64(units))
	return nil
}

// SetNativeBalance fixes an account's native balance.
func (l *Ledger) SetNativeBalance(account common.Address, amount *big.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	prev := l.native[account]
	l.native[account] = new(big.Int).Set(amount)
	l.journal(func() { l.native[account] = prev })
}

// SetBalance fixes an account's balance in a fungible currency.
func (l *Ledger) SetBalance(currency, account common.Address, amount *big.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.balances[currency] == nil {
		l.balances[currency] = make(map[common.Address]*big.Int)
	}
	book := l.balances[currency]
	prev := book[account]
	book[account] = new(big.Int).Set(amount)
	l.journal(func() { book[account] = prev })
}

// CurrencyBalanceOf reports an account's balance in a fungible currency.
func (l *Ledger) CurrencyBalanceOf(currency, account common.Address) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	book := l.balances[currency]
	if book == nil || book[account] == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(book[account])
}

// Approve grants spender an allowance over owner's currency balance.
func (l *Ledger) Approve(currency, owner, spender common.Address, amount *big.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.allowances[currency] == nil {
		l.allowances[currency] = make(map[common.Address]map[common.Address]*big.Int)
	}
	if l.allowances[currency][owner] == nil {
		l.allowances[currency][owner] = make(map[common.Address]*big.Int)
	}
	grants := l.allowances[currency][owner]
	prev := grants[spender]
	grants[spender] = new(big.Int).Set(amount)
	l.journal(func() { grants[spender] = prev })
}

// ApproveToken grants operator the single-token approval. Only the current
// owner can grant it.
func (l *Ledger) ApproveToken(addr common.Address, tokenID *big.Int, owner, operator common.Address) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	c, err := l.collectionOf(addr, exchange.StandardNonFungible)
	if err != nil {
		return err
	}
	key := tokenID.String()
	if c.owners[key] != owner {
		return errors.Errorf("%s does not own token %s of %s", owner.Hex(), key, addr.Hex())
	}
	prev, had := c.tokenApprovals[key]
	c.tokenApprovals[key] = operator
	l.journal(func() {
		if had {
			c.tokenApprovals[key] = prev
		} else {
			delete(c.tokenApprovals, key)
		}
	})
	return nil
}

// SetApprovalForAll grants or revokes operator's blanket approval over all
// of owner's tokens in the collection.
func (l *Ledger) SetApprovalForAll(addr, owner, operator common.Address, approved bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	c, ok := l.collections[addr]
	if !ok {
		return errors.Errorf("unknown collection %s", addr.Hex())
	}
	if c.operatorApprovals[owner] == nil {
		c.operatorApprovals[owner] = make(map[common.Address]bool)
	}
	grants := c.operatorApprovals[owner]
	prev := grants[operator]
	grants[operator] = approved
	l.journal(func() { grants[operator] = prev })
	return nil
}

// SetTransferHook installs a hook on the collection's transfers.
func (l *Ledger) SetTransferHook(addr common.Address, hook TransferHook) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	c, ok := l.collections[addr]
	if !ok {
		return errors.Errorf("unknown collection %s", addr.Hex())
	}
	c.hook = hook
	return nil
}

// ---- exchange.CapabilityProbe ----

func (l *Ledger) DetectStandard(_ context.Context, addr common.Address) (exchange.AssetStandard, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	c, ok := l.collections[addr]
	if !ok {
		return exchange.StandardUnknown, nil
	}
	return c.standard, nil
}

// ---- exchange.RoyaltyOracle ----

func (l *Ledger) SupportsRoyalty(_ context.Context, addr common.Address) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	c, ok := l.collections[addr]
	if !ok {
		return false, errors.Errorf("unknown collection %s", addr.Hex())
	}
	return c.royaltyBps > 0 && c.royaltyReceiver != (common.Address{}), nil
}

func (l *Ledger) RoyaltyInfo(_ context.Context, addr common.Address, _ *big.Int, amount *big.Int) (common.Address, *big.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	c, ok := l.collections[addr]
	if !ok {
		return common.Address{}, nil, errors.Errorf("unknown collection %s", addr.Hex())
	}
	royalty := new(big.Int).Mul(amount, new(big.Int).SetUint64(c.royaltyBps))
	royalty.Div(royalty, big.NewInt(exchange.BasisPointsDenominator))
	return c.royaltyReceiver, royalty, nil
}

// ---- exchange.AssetRegistry ----

func (l *Ledger) OwnerOf(_ context.Context, addr common.Address, tokenID *big.Int) (common.Address, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	c, err := l.collectionOf(addr, exchange.StandardNonFungible)
	if err != nil {
		return common.Address{}, err
	}
	owner, ok := c.owners[tokenID.String()]
	if !ok {
		return common.Address{}, errors.Errorf("token %s of %s does not exist", tokenID, addr.Hex())
	}
	return owner, nil
}

func (l *Ledger) BalanceOf(_ context.Context, addr, owner common.Address, tokenID *big.Int) (*big.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	c, err := l.collectionOf(addr, exchange.StandardSemiFungible)
	if err != nil {
		return nil, err
	}
	holders := c.balances[tokenID.String()]
	if holders == nil || holders[owner] == nil {
		return new(big.Int), nil
	}
	return new(big.Int).Set(holders[owner]), nil
}

func (l *Ledger) IsApproved(_ context.Context, addr common.Address, tokenID *big.Int, operator common.Address) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	c, ok := l.collections[addr]
	if !ok {
		return false, errors.Errorf("unknown collection %s", addr.Hex())
	}
	return c.tokenApprovals[tokenID.String()] == operator, nil
}

func (l *Ledger) IsApprovedForAll(_ context.Context, addr, owner, operator common.Address) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	c, ok := l.collections[addr]
	if !ok {
		return false, errors.Errorf("unknown collection %s", addr.Hex())
	}
	return c.operatorApprovals[owner][operator], nil
}

// Transfer moves the asset after re-checking the operator's authority, then
// runs the collection's transfer hook outside the ledger lock. A hook error
// fails the transfer; the caller's journal revert undoes the mutation.
func (l *Ledger) Transfer(ctx context.Context, addr, from, to common.Address, tokenID *big.Int, units uint64) error {
	l.mu.Lock()
	c, ok := l.collections[addr]
	if !ok {
		l.mu.Unlock()
		return errors.Errorf("unknown collection %s", addr.Hex())
	}

	key := tokenID.String()
	switch c.standard {
	case exchange.StandardNonFungible:
		if units != 1 {
			l.mu.Unlock()
			return errors.Errorf("non-fungible transfer of %d units", units)
		}
		if c.owners[key] != from {
			l.mu.Unlock()
			return errors.Errorf("%s does not own token %s of %s", from.Hex(), key, addr.Hex())
		}
		if c.tokenApprovals[key] != l.operator && !c.operatorApprovals[from][l.operator] {
			l.mu.Unlock()
			return errors.Errorf("operator not approved for token %s of %s", key, addr.Hex())
		}
		approval, hadApproval := c.tokenApprovals[key]
		c.owners[key] = to
		delete(c.tokenApprovals, key) // approvals do not survive a transfer
		l.journal(func() {
			c.owners[key] = from
			if hadApproval {
				c.tokenApprovals[key] = approval
			}
		})

	case exchange.StandardSemiFungible:
		if !c.operatorApprovals[from][l.operator] {
			l.mu.Unlock()
			return errors.Errorf("operator lacks blanket approval from %s on %s", from.Hex(), addr.Hex())
		}
		holders := c.balances[key]
		amount := new(big.Int).SetUint64(units)
		if holders == nil || holders[from] == nil || holders[from].Cmp(amount) < 0 {
			l.mu.Unlock()
			return errors.Errorf("%s holds too few units of token %s of %s", from.Hex(), key, addr.Hex())
		}
		l.debitUnits(holders, from, amount)
		l.creditUnits(holders, to, amount)

	default:
		l.mu.Unlock()
		return errors.Errorf("collection %s has unsupported standard", addr.Hex())
	}

	hook := c.hook
	l.mu.Unlock()

	if hook != nil {
		if err := hook(ctx, addr, from, to, tokenID, units); err != nil {
			return errors.Wrap(err, "transfer hook rejected")
		}
	}
	return nil
}

// ---- exchange.ValueTransfer ----

func (l *Ledger) Allowance(_ context.Context, currency, owner, spender common.Address) (*big.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	grants := l.allowances[currency]
	if grants == nil || grants[owner] == nil || grants[owner][spender] == nil {
		return new(big.Int), nil
	}
	return new(big.Int).Set(grants[owner][spender]), nil
}

// TransferFrom draws on the allowance the payer granted the operator and
// moves the funds, decrementing the allowance alongside the balance.
func (l *Ledger) TransferFrom(_ context.Context, currency, from, to common.Address, amount *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	grants := l.allowances[currency]
	if grants == nil || grants[from] == nil || grants[from][l.operator] == nil ||
		grants[from][l.operator].Cmp(amount) < 0 {
		return errors.Errorf("allowance of %s from %s below %s", currency.Hex(), from.Hex(), amount)
	}
	book := l.balances[currency]
	if book == nil || book[from] == nil || book[from].Cmp(amount) < 0 {
		return errors.Errorf("balance of %s for %s below %s", currency.Hex(), from.Hex(), amount)
	}

	allowance := grants[from]
	prevAllowance := allowance[l.operator]
	allowance[l.operator] = new(big.Int).Sub(prevAllowance, amount)
	l.journal(func() { allowance[l.operator] = prevAllowance })

	l.debitUnits(book, from, amount)
	l.creditUnits(book, to, amount)
	return nil
}

// ---- exchange.NativeValue ----

func (l *Ledger) NativeBalanceOf(_ context.Context, account common.Address) (*big.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.native[account] == nil {
		return new(big.Int), nil
	}
	return new(big.Int).Set(l.native[account]), nil
}

func (l *Ledger) NativeTransfer(_ context.Context, from, to common.Address, amount *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.native[from] == nil || l.native[from].Cmp(amount) < 0 {
		return errors.Errorf("native balance of %s below %s", from.Hex(), amount)
	}
	l.debitUnits(l.native, from, amount)
	l.creditUnits(l.native, to, amount)
	return nil
}

// Native adapts the ledger to the exchange.NativeValue port. The method set
// clashes with the currency BalanceOf/Transfer names, hence the shim.
func (l *Ledger) Native() exchange.NativeValue {
	return nativeView{l}
}

type nativeView struct{ l *Ledger }

func (v nativeView) BalanceOf(ctx context.Context, account common.Address) (*big.Int, error) {
	return v.l.NativeBalanceOf(ctx, account)
}

func (v nativeView) Transfer(ctx context.Context, from, to common.Address, amount *big.Int) error {
	return v.l.NativeTransfer(ctx, from, to, amount)
}

// ---- internals ----

// collectionOf must be called with the mutex held.
func (l *Ledger) collectionOf(addr common.Address, standard exchange.AssetStandard) (*collection, error) {
	c, ok := l.collections[addr]
	if !ok {
		return nil, errors.Errorf("unknown collection %s", addr.Hex())
	}
	if c.standard != standard {
		return nil, errors.Errorf("collection %s is %s", addr.Hex(), c.standard)
	}
	return c, nil
}

func (l *Ledger) creditUnits(book map[common.Address]*big.Int, account common.Address, amount *big.Int) {
	prev := book[account]
	if prev == nil {
		book[account] = new(big.Int).Set(amount)
	} else {
		book[account] = new(big.Int).Add(prev, amount)
	}
	l.journal(func() { book[account] = prev })
}

func (l *Ledger) debitUnits(book map[common.Address]*big.Int, account common.Address, amount *big.Int) {
	prev := book[account]
	book[account] = new(big.Int).Sub(prev, amount)
	l.journal(func() { book[account] = prev })
}
