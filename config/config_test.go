package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/require"
)

func TestLoadGeneratesDefaultFileOnFirstRun(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tournamentd.toml")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.FileExists(t, path)
	require.NotEmpty(t, cfg.ValidatorKey)
	require.Equal(t, 1024, cfg.Battle.GridSize)
	require.Equal(t, 500, cfg.Battle.StepBudget)
}

func TestLoadPreservesValidatorKeyAcrossReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tournamentd.toml")

	first, err := Load(path)
	require.NoError(t, err)

	second, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, first.ValidatorKey, second.ValidatorKey)
}

func TestLoadParsesExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tournamentd.toml")

	cfg := &Config{
		ListenAddress: ":7001",
		RPCAddress:    ":9090",
		DataDir:       "./data",
		ValidatorKey:  "aa",
		Battle:        BattleConfig{GridSize: 512, StepBudget: 250},
		EBSL:          EBSLConfig{Alpha: 0.5, TMin: 0.7, TKill: 0.25, DecayPos: 0.98, DecayNeg: 0.995, HistoryCap: 500},
		Timeouts:      TimeoutConfig{CommitWindowSeconds: 5, RevealWindowSeconds: 5, VoteRoundTimeoutSeconds: 3},
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, toml.NewEncoder(f).Encode(cfg))
	require.NoError(t, f.Close())

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 512, loaded.Battle.GridSize)
	require.Equal(t, 0.25, loaded.EBSL.TKill)
	require.Equal(t, int64(3), loaded.Timeouts.VoteRoundTimeoutSeconds)
}

func TestValidateConfigRejectsOversizedGrid(t *testing.T) {
	limits := ConsensusLimits{
		Battle:   BattleConfig{GridSize: 1 << 20, StepBudget: 1},
		Timeouts: TimeoutConfig{CommitWindowSeconds: 1, RevealWindowSeconds: 1, VoteRoundTimeoutSeconds: 1},
	}
	require.Error(t, ValidateConfig(limits))
}

func TestValidateConfigRejectsZeroStepBudget(t *testing.T) {
	limits := ConsensusLimits{
		Battle:   BattleConfig{GridSize: 64, StepBudget: 0},
		Timeouts: TimeoutConfig{CommitWindowSeconds: 1, RevealWindowSeconds: 1, VoteRoundTimeoutSeconds: 1},
	}
	require.Error(t, ValidateConfig(limits))
}

func TestValidateConfigRejectsZeroTimeouts(t *testing.T) {
	limits := ConsensusLimits{
		Battle:   BattleConfig{GridSize: 64, StepBudget: 10},
		Timeouts: TimeoutConfig{CommitWindowSeconds: 0, RevealWindowSeconds: 1, VoteRoundTimeoutSeconds: 1},
	}
	require.Error(t, ValidateConfig(limits))
}

func TestValidateConfigAcceptsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "tournamentd.toml"))
	require.NoError(t, err)
	limits := ConsensusLimits{Battle: cfg.Battle, Timeouts: cfg.Timeouts}
	require.NoError(t, ValidateConfig(limits))
}
