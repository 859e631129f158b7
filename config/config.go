package config

import (
	"encoding/hex"
	"os"

	"github.com/BurntSushi/toml"

	"tourneychain/crypto"
)

// BattleConfig sizes the cellular-automaton simulation every match runs
// with.
type BattleConfig struct {
	GridSize   int `toml:"GridSize"`
	StepBudget int `toml:"StepBudget"`
}

// EBSLConfig overrides the subjective-logic trust engine's defaults.
// Zero-valued fields are filled in from ebsl.DefaultParameters() by the
// caller, not by this package, since config has no dependency on
// consensus/ebsl.
type EBSLConfig struct {
	Alpha      float64 `toml:"Alpha"`
	TMin       float64 `toml:"TMin"`
	TKill      float64 `toml:"TKill"`
	DecayPos   float64 `toml:"DecayPos"`
	DecayNeg   float64 `toml:"DecayNeg"`
	HistoryCap int     `toml:"HistoryCap"`
}

// TimeoutConfig holds the node's wall-clock windows. CommitWindowSeconds and
// RevealWindowSeconds bound how long the round driver's phase scheduler
// waits before forcing the commit and reveal phases closed.
// VoteRoundTimeoutSeconds is validated but read by no component: the
// finality gadget does not advance vote rounds on a timeout.
type TimeoutConfig struct {
	CommitWindowSeconds  int64 `toml:"CommitWindowSeconds"`
	RevealWindowSeconds  int64 `toml:"RevealWindowSeconds"`
	VoteRoundTimeoutSeconds int64 `toml:"VoteRoundTimeoutSeconds"`
}

// Config is tournamentd's on-disk configuration.
type Config struct {
	ListenAddress    string   `toml:"ListenAddress"`
	RPCAddress       string   `toml:"RPCAddress"`
	DataDir          string   `toml:"DataDir"`
	ValidatorKey     string   `toml:"ValidatorKey"`
	BootstrapPeers   []string `toml:"BootstrapPeers"`
	// GovernanceSecret signs the bearer tokens accepted by the
	// governance_reinstate RPC method. Empty disables that endpoint.
	GovernanceSecret string `toml:"GovernanceSecret"`

	Battle   BattleConfig  `toml:"Battle"`
	EBSL     EBSLConfig    `toml:"EBSL"`
	Timeouts TimeoutConfig `toml:"Timeouts"`
}

// Load reads the configuration at path, generating a default file (with a
// fresh validator key) the first time the node starts.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	if cfg.ValidatorKey == "" {
		key, err := crypto.GeneratePrivateKey()
		if err != nil {
			return nil, err
		}
		cfg.ValidatorKey = hex.EncodeToString(key.Bytes())

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, os.ModePerm)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		if err := toml.NewEncoder(f).Encode(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Config, error) {
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ListenAddress:  ":6001",
		RPCAddress:     ":8080",
		DataDir:        "./tournamentd-data",
		ValidatorKey:   hex.EncodeToString(key.Bytes()),
		BootstrapPeers: []string{},
		Battle:         BattleConfig{GridSize: 1024, StepBudget: 500},
		EBSL: EBSLConfig{
			Alpha: 0.4, TMin: 0.75, TKill: 0.20,
			DecayPos: 0.99, DecayNeg: 0.999, HistoryCap: 1000,
		},
		Timeouts: TimeoutConfig{
			CommitWindowSeconds: 10, RevealWindowSeconds: 10, VoteRoundTimeoutSeconds: 5,
		},
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
