package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/ProjectsTask/EasySwapExchange/src/common/xzap"
	"github.com/ProjectsTask/EasySwapExchange/src/stores/gdb"
)

// Config is the application configuration, loaded from a TOML file with
// environment overrides.
type Config struct {
	Api      ApiConf      `toml:"api" mapstructure:"api" json:"api"`
	Log      xzap.Conf    `toml:"log" mapstructure:"log" json:"log"`
	DB       *gdb.Config  `toml:"db" mapstructure:"db" json:"db"`
	Kv       *KvConf      `toml:"kv" mapstructure:"kv" json:"kv"`
	Exchange ExchangeConf `toml:"exchange" mapstructure:"exchange" json:"exchange"`
	Ledger   LedgerConf   `toml:"ledger" mapstructure:"ledger" json:"ledger"`
}

type ApiConf struct {
	// Port is the listen address, e.g. ":9000".
	Port string `toml:"port" mapstructure:"port" json:"port"`
}

// ExchangeConf configures the settlement engine.
type ExchangeConf struct {
	// CommissionRateBps is the protocol commission in basis points, at most
	// 10000; the engine rejects anything larger at start-up.
	CommissionRateBps uint64 `toml:"commission_rate_bps" mapstructure:"commission_rate_bps" json:"commission_rate_bps"`
	// OperatorAddress is the engine's own account: approval/allowance target
	// and commission sink.
	OperatorAddress string `toml:"operator_address" mapstructure:"operator_address" json:"operator_address"`
}

// KvConf lists the redis nodes behind the count cache. Empty means no cache.
type KvConf struct {
	Redis []*Redis `toml:"redis" mapstructure:"redis" json:"redis"`
}

type Redis struct {
	Host string `toml:"host" mapstructure:"host" json:"host"`
	Type string `toml:"type" mapstructure:"type" json:"type"`
	Pass string `toml:"pass" mapstructure:"pass" json:"pass"`
}

// LedgerConf seeds the in-memory ledger the service settles against.
type LedgerConf struct {
	Collections []CollectionConf `toml:"collections" mapstructure:"collections" json:"collections"`
	Accounts    []AccountConf    `toml:"accounts" mapstructure:"accounts" json:"accounts"`
}

type CollectionConf struct {
	Address string `toml:"address" mapstructure:"address" json:"address"`
	// Standard is erc721 or erc1155.
	Standard        string      `toml:"standard" mapstructure:"standard" json:"standard"`
	RoyaltyBps      uint64      `toml:"royalty_bps" mapstructure:"royalty_bps" json:"royalty_bps"`
	RoyaltyReceiver string      `toml:"royalty_receiver" mapstructure:"royalty_receiver" json:"royalty_receiver"`
	Tokens          []TokenConf `toml:"tokens" mapstructure:"tokens" json:"tokens"`
}

type TokenConf struct {
	TokenID string `toml:"token_id" mapstructure:"token_id" json:"token_id"`
	Owner   string `toml:"owner" mapstructure:"owner" json:"owner"`
	// Units only applies to semi-fungible tokens.
	Units uint64 `toml:"units" mapstructure:"units" json:"units"`
}

type AccountConf struct {
	Address       string `toml:"address" mapstructure:"address" json:"address"`
	NativeBalance string `toml:"native_balance" mapstructure:"native_balance" json:"native_balance"`
	// Balances maps currency address to balance in base units.
	Balances map[string]string `toml:"balances" mapstructure:"balances" json:"balances"`
	// Allowances maps currency address to the amount the account grants the
	// exchange operator to draw on.
	Allowances map[string]string `toml:"allowances" mapstructure:"allowances" json:"allowances"`
	// ApprovedCollections lists collections on which the account grants the
	// exchange operator blanket transfer approval.
	ApprovedCollections []string `toml:"approved_collections" mapstructure:"approved_collections" json:"approved_collections"`
}

// UnmarshalConfig loads and parses the config file at the given path.
func UnmarshalConfig(configFilePath string) (*Config, error) {
	viper.SetConfigFile(configFilePath)
	viper.SetConfigType("toml")
	viper.AutomaticEnv()
	viper.SetEnvPrefix("ESE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var c Config
	if err := viper.Unmarshal(&c); err != nil {
		return nil, err
	}
	return &c, nil
}
