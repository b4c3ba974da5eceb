package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/stake-contract/ledger"
	"github.com/stretchr/testify/require"
)

var (
	pool  = address.Uint160ToString(util.Uint160{0xFF})
	alice = address.Uint160ToString(util.Uint160{0xA})
	bob   = address.Uint160ToString(util.Uint160{0xB})
)

func newConfig(t *testing.T, extra string) string {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yml")

	data := `
Logger:
  Level: error
Storage:
  Type: boltdb
  BoltDBOptions:
    FilePath: ` + filepath.Join(dir, "stake.bolt") + `
Pool: ` + pool + "\n" + extra

	require.NoError(t, os.WriteFile(cfgPath, []byte(data), 0600))

	return cfgPath
}

func runOK(t *testing.T, cfgPath string, args ...string) string {
	var out bytes.Buffer
	require.NoError(t, run(append([]string{"-config", cfgPath}, args...), &out))
	return out.String()
}

func runErr(t *testing.T, cfgPath string, args ...string) error {
	err := run(append([]string{"-config", cfgPath}, args...), new(bytes.Buffer))
	require.Error(t, err)
	return err
}

func TestRun_Lifecycle(t *testing.T) {
	cfgPath := newConfig(t, "")

	require.Equal(t, "balance: 1000\n", runOK(t, cfgPath, "mint", alice, "1000"))
	require.Equal(t, "owner: "+alice+"\nstate: empty\namount: 0\n", runOK(t, cfgPath, "init", alice))
	require.ErrorIs(t, runErr(t, cfgPath, "init", alice), ledger.ErrRecordExists)

	require.Equal(t, "owner: "+alice+"\nstate: funded\namount: 100\n", runOK(t, cfgPath, "stake", alice, "100"))
	require.Equal(t, "owner: "+alice+"\nstate: funded\namount: 150\n", runOK(t, cfgPath, "stake", alice, "50"))
	require.Equal(t, "records: 1\nstaked: 150\npool: 150\n", runOK(t, cfgPath, "audit"))

	require.Equal(t, "unstaked: 150\n", runOK(t, cfgPath, "unstake", alice))
	require.Equal(t, "owner: "+alice+"\nstate: empty\namount: 0\n", runOK(t, cfgPath, "show", alice))
	require.ErrorIs(t, runErr(t, cfgPath, "unstake", alice), ledger.ErrNoStakedAmount)

	require.Equal(t, "balance: 1000\n", runOK(t, cfgPath, "mint", alice, "0"))
	require.Equal(t, "records: 1\nstaked: 0\npool: 0\n", runOK(t, cfgPath, "audit"))
}

func TestRun_Unauthorized(t *testing.T) {
	cfgPath := newConfig(t, "")

	runOK(t, cfgPath, "mint", alice, "100")
	runOK(t, cfgPath, "mint", bob, "100")
	runOK(t, cfgPath, "init", alice)
	runOK(t, cfgPath, "stake", alice, "10")

	require.ErrorIs(t, runErr(t, cfgPath, "stake", "-caller", bob, alice, "10"), ledger.ErrUnauthorized)
	require.ErrorIs(t, runErr(t, cfgPath, "unstake", "-caller", bob, alice), ledger.ErrUnauthorized)
	require.ErrorIs(t, runErr(t, cfgPath, "show", bob), ledger.ErrRecordNotFound)
	require.ErrorIs(t, runErr(t, cfgPath, "stake", alice, "1000"), ledger.ErrInsufficientFunds)
	require.ErrorIs(t, runErr(t, cfgPath, "stake", alice, "0"), ledger.ErrInvalidAmount)

	require.Equal(t, "owner: "+alice+"\nstate: funded\namount: 10\n", runOK(t, cfgPath, "show", alice))

	// holdings of other accounts can't be named
	runErr(t, cfgPath, "stake", "-from", bob, alice, "10")
	runErr(t, cfgPath, "unstake", "-to", bob, alice)

	require.Equal(t, "unstaked: 10\n", runOK(t, cfgPath, "unstake", alice))
	require.Equal(t, "balance: 100\n", runOK(t, cfgPath, "mint", alice, "0"))
	require.Equal(t, "balance: 100\n", runOK(t, cfgPath, "mint", bob, "0"))
}

func TestRun_Invalid(t *testing.T) {
	cfgPath := newConfig(t, "")

	runErr(t, cfgPath)
	runErr(t, cfgPath, "unknown")
	runErr(t, cfgPath, "init")
	runErr(t, cfgPath, "init", "not an address")
	runErr(t, cfgPath, "mint", alice, "-1")
	runErr(t, cfgPath, "stake", alice)
	runErr(t, cfgPath, "audit", "extra")
	runErr(t, cfgPath, "chain-show", alice)

	runErr(t, filepath.Join(t.TempDir(), "missing.yml"), "audit")
}
