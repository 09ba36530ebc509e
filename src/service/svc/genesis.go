package svc

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/ProjectsTask/EasySwapExchange/src/common/utils"
	"github.com/ProjectsTask/EasySwapExchange/src/config"
	"github.com/ProjectsTask/EasySwapExchange/src/exchange"
	"github.com/ProjectsTask/EasySwapExchange/src/ledger"
)

// seedLedger builds the in-memory ledger from the genesis section of the
// config: collections with their tokens, and account balances.
func seedLedger(operator common.Address, c config.LedgerConf) (*ledger.Ledger, error) {
	l := ledger.New(operator)

	for _, col := range c.Collections {
		addr, err := utils.ParseAddress(col.Address)
		if err != nil {
			return nil, errors.Wrap(err, "failed on parse collection address")
		}
		standard, err := parseStandard(col.Standard)
		if err != nil {
			return nil, err
		}
		receiver := common.Address{}
		if col.RoyaltyReceiver != "" {
			receiver, err = utils.ParseAddress(col.RoyaltyReceiver)
			if err != nil {
				return nil, errors.Wrap(err, "failed on parse royalty receiver")
			}
		}
		if err := l.CreateCollection(addr, standard, col.RoyaltyBps, receiver); err != nil {
			return nil, err
		}

		for _, tok := range col.Tokens {
			tokenID, err := utils.ParseTokenID(tok.TokenID)
			if err != nil {
				return nil, err
			}
			owner, err := utils.ParseAddress(tok.Owner)
			if err != nil {
				return nil, errors.Wrap(err, "failed on parse token owner")
			}
			switch standard {
			case exchange.StandardNonFungible:
				err = l.MintNFT(addr, tokenID, owner)
			case exchange.StandardSemiFungible:
				err = l.MintSFT(addr, tokenID, owner, tok.Units)
			}
			if err != nil {
				return nil, err
			}
		}
	}

	for _, acct := range c.Accounts {
		addr, err := utils.ParseAddress(acct.Address)
		if err != nil {
			return nil, errors.Wrap(err, "failed on parse account address")
		}
		if acct.NativeBalance != "" {
			amount, err := utils.ParseAmount(acct.NativeBalance)
			if err != nil {
				return nil, err
			}
			l.SetNativeBalance(addr, amount)
		}
		for currency, balance := range acct.Balances {
			currencyAddr, err := utils.ParseAddress(currency)
			if err != nil {
				return nil, errors.Wrap(err, "failed on parse currency address")
			}
			amount, err := utils.ParseAmount(balance)
			if err != nil {
				return nil, err
			}
			l.SetBalance(currencyAddr, addr, amount)
		}
		for currency, allowance := range acct.Allowances {
			currencyAddr, err := utils.ParseAddress(currency)
			if err != nil {
				return nil, errors.Wrap(err, "failed on parse allowance currency")
			}
			amount, err := utils.ParseAmount(allowance)
			if err != nil {
				return nil, err
			}
			l.Approve(currencyAddr, addr, operator, amount)
		}
		for _, approved := range acct.ApprovedCollections {
			colAddr, err := utils.ParseAddress(approved)
			if err != nil {
				return nil, errors.Wrap(err, "failed on parse approved collection")
			}
			if err := l.SetApprovalForAll(colAddr, addr, operator, true); err != nil {
				return nil, err
			}
		}
	}

	return l, nil
}

func parseStandard(name string) (exchange.AssetStandard, error) {
	switch name {
	case "erc721":
		return exchange.StandardNonFungible, nil
	case "erc1155":
		return exchange.StandardSemiFungible, nil
	default:
		return exchange.StandardUnknown, errors.Errorf("unsupported asset standard %q", name)
	}
}
