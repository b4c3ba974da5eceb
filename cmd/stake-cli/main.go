package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/stake-contract/config"
	"github.com/nspcc-dev/stake-contract/ledger"
	rpcstake "github.com/nspcc-dev/stake-contract/rpc/stake"
	"github.com/nspcc-dev/stake-contract/store"
	"go.uber.org/zap"
)

const usage = `Usage: stake-cli [-config FILE] COMMAND [ARGS]

Local ledger commands:
  init OWNER                           create empty stake record
  mint ACCOUNT AMOUNT                  credit external holding of the account
  stake [-caller A] OWNER AMOUNT       move AMOUNT from the caller into the custody pool
  unstake [-caller A] OWNER            return whole staked amount to the caller
  show OWNER                           print stake record
  audit                                check custody pool against records

Contract commands:
  chain-show OWNER                     print stake record of the deployed contract
  chain-records                        print all records of the deployed contract
`

func main() {
	err := run(os.Args[1:], os.Stdout)
	if err != nil {
		log.Fatal(err)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("stake-cli", flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(fs.Output(), usage) }
	cfgPath := fs.String("config", "", "Path to the YAML configuration file")

	err := fs.Parse(args)
	if err != nil {
		return err
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("missing command")
	}

	cfg := config.Default()
	if *cfgPath != "" {
		cfg, err = config.Load(*cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}

	cmd, cmdArgs := fs.Arg(0), fs.Args()[1:]

	switch cmd {
	case "chain-show", "chain-records":
		return runChain(cfg, cmd, cmdArgs, out)
	case "init", "mint", "stake", "unstake", "show", "audit":
		return runLocal(cfg, cmd, cmdArgs, out)
	default:
		return fmt.Errorf("unknown command '%s'", cmd)
	}
}

func runLocal(cfg config.Config, cmd string, args []string, out io.Writer) error {
	pool, err := cfg.PoolAccount()
	if err != nil {
		return err
	}

	l, err := cfg.NewLogger()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	defer func() { _ = l.Sync() }()

	st, err := store.Open(cfg.Storage)
	if err != nil {
		return err
	}

	defer func() {
		if err := st.Close(); err != nil {
			l.Error("failed to close storage", zap.Error(err))
		}
	}()

	lg, err := ledger.New(ledger.Prm{
		Host:   st,
		Pool:   pool,
		Sink:   ledger.LogSink{Logger: l},
		Logger: l,
	})
	if err != nil {
		return fmt.Errorf("init ledger: %w", err)
	}

	switch cmd {
	case "init":
		return cmdInit(lg, args, out)
	case "mint":
		return cmdMint(st, args, out)
	case "stake":
		return cmdStake(lg, args, out)
	case "unstake":
		return cmdUnstake(lg, args, out)
	case "show":
		return cmdShow(lg, args, out)
	default:
		return cmdAudit(st, pool, args, out)
	}
}

func cmdInit(lg *ledger.Ledger, args []string, out io.Writer) error {
	owner, err := parseArgs1(args)
	if err != nil {
		return err
	}

	rec, err := lg.Initialize(owner)
	if err != nil {
		return err
	}

	printRecord(out, rec)

	return nil
}

func cmdMint(st *store.Store, args []string, out io.Writer) error {
	if len(args) != 2 {
		return errors.New("expected ACCOUNT and AMOUNT")
	}

	acc, err := parseAddress(args[0])
	if err != nil {
		return err
	}

	amount, err := parseAmount(args[1])
	if err != nil {
		return err
	}

	err = st.Mint(acc, amount)
	if err != nil {
		return err
	}

	b, err := st.Balance(acc)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "balance: %d\n", b)

	return nil
}

func cmdStake(lg *ledger.Ledger, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("stake", flag.ContinueOnError)
	caller := fs.String("caller", "", "Address of the caller, defaults to OWNER")

	err := fs.Parse(args)
	if err != nil {
		return err
	}

	if fs.NArg() != 2 {
		return errors.New("expected OWNER and AMOUNT")
	}

	var prm ledger.StakePrm

	prm.Owner, err = parseAddress(fs.Arg(0))
	if err != nil {
		return err
	}

	prm.Amount, err = parseAmount(fs.Arg(1))
	if err != nil {
		return err
	}

	prm.Caller, err = parseOptionalAddress(*caller, prm.Owner)
	if err != nil {
		return err
	}

	err = lg.Stake(prm)
	if err != nil {
		return err
	}

	rec, err := lg.Record(prm.Owner)
	if err != nil {
		return err
	}

	printRecord(out, rec)

	return nil
}

func cmdUnstake(lg *ledger.Ledger, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("unstake", flag.ContinueOnError)
	caller := fs.String("caller", "", "Address of the caller, defaults to OWNER")

	err := fs.Parse(args)
	if err != nil {
		return err
	}

	if fs.NArg() != 1 {
		return errors.New("expected OWNER")
	}

	var prm ledger.UnstakePrm

	prm.Owner, err = parseAddress(fs.Arg(0))
	if err != nil {
		return err
	}

	prm.Caller, err = parseOptionalAddress(*caller, prm.Owner)
	if err != nil {
		return err
	}

	amount, err := lg.Unstake(prm)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "unstaked: %d\n", amount)

	return nil
}

func cmdShow(lg *ledger.Ledger, args []string, out io.Writer) error {
	owner, err := parseArgs1(args)
	if err != nil {
		return err
	}

	rec, err := lg.Record(owner)
	if err != nil {
		return err
	}

	printRecord(out, rec)

	return nil
}

func cmdAudit(st *store.Store, pool util.Uint160, args []string, out io.Writer) error {
	if len(args) != 0 {
		return errors.New("unexpected arguments")
	}

	r, err := st.Audit(pool)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "records: %d\nstaked: %d\npool: %d\n", r.Records, r.Staked, r.Pool)

	if !r.Consistent() {
		return fmt.Errorf("custody pool %d does not cover staked amount %d", r.Pool, r.Staked)
	}

	return nil
}

func runChain(cfg config.Config, cmd string, args []string, out io.Writer) error {
	if cfg.Chain.Endpoint == "" || cfg.Chain.Contract == "" {
		return errors.New("missing chain endpoint or contract in the configuration")
	}

	contract, err := util.Uint160DecodeStringLE(cfg.Chain.Contract)
	if err != nil {
		return fmt.Errorf("invalid contract hash: %w", err)
	}

	var owner util.Uint160

	if cmd == "chain-show" {
		owner, err = parseArgs1(args)
		if err != nil {
			return err
		}
	}

	b, err := newRemoteBlockChain(cfg.Chain.Endpoint, contract)
	if err != nil {
		return fmt.Errorf("init remote blockchain: %w", err)
	}

	defer b.close()

	if cmd == "chain-records" {
		return b.iterateRecords(func(rec rpcstake.StakeRecord) error {
			fmt.Fprintf(out, "%s %s\n", address.Uint160ToString(rec.Owner), rec.Amount)
			return nil
		})
	}

	rec, err := b.reader.RecordOf(owner)
	if err != nil {
		return fmt.Errorf("read record: %w", err)
	}

	fmt.Fprintf(out, "owner: %s\namount: %s\n", address.Uint160ToString(rec.Owner), rec.Amount)

	return nil
}

func printRecord(out io.Writer, rec ledger.Record) {
	fmt.Fprintf(out, "owner: %s\nstate: %s\namount: %d\n",
		address.Uint160ToString(rec.Owner), rec.State(), rec.Amount)
}

func parseArgs1(args []string) (util.Uint160, error) {
	if len(args) != 1 {
		return util.Uint160{}, errors.New("expected OWNER")
	}

	return parseAddress(args[0])
}

func parseAddress(s string) (util.Uint160, error) {
	res, err := address.StringToUint160(s)
	if err != nil {
		return res, fmt.Errorf("invalid address '%s': %w", s, err)
	}

	return res, nil
}

func parseOptionalAddress(s string, def util.Uint160) (util.Uint160, error) {
	if s == "" {
		return def, nil
	}

	return parseAddress(s)
}

func parseAmount(s string) (uint64, error) {
	res, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount '%s': %w", s, err)
	}

	return res, nil
}
