package main

import (
	"context"
	"fmt"
	"time"

	"github.com/nspcc-dev/neo-go/pkg/rpcclient"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/invoker"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	rpcstake "github.com/nspcc-dev/stake-contract/rpc/stake"
)

// recordPrefix is a storage prefix of the stake records in the contract.
const recordPrefix = 'r'

// wrapper over rpcNeo providing read access to the deployed stake contract.
type remoteBlockchain struct {
	rpc      *rpcclient.Client
	contract util.Uint160
	reader   *rpcstake.ContractReader
}

// newRemoteBlockChain dials Neo RPC server and returns remoteBlockchain based
// on the opened connection. Connection and all requests are done within 15s
// timeout.
func newRemoteBlockChain(endpoint string, contract util.Uint160) (*remoteBlockchain, error) {
	c, err := rpcclient.New(context.Background(), endpoint, rpcclient.Options{
		DialTimeout:    15 * time.Second,
		RequestTimeout: 15 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("RPC client dial: %w", err)
	}

	err = c.Init()
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("RPC client init: %w", err)
	}

	return &remoteBlockchain{
		rpc:      c,
		contract: contract,
		reader:   rpcstake.NewReader(invoker.New(c, nil), contract),
	}, nil
}

func (x *remoteBlockchain) close() {
	x.rpc.Close()
}

// iterateRecords iterates over all stake records stored by the contract at
// the latest block and passes them into f. iterateRecords breaks on any f's
// error and returns it.
func (x *remoteBlockchain) iterateRecords(f func(rpcstake.StakeRecord) error) error {
	nLatestBlock, err := x.rpc.GetBlockCount()
	if err != nil {
		return fmt.Errorf("get number of the latest block: %w", err)
	}

	if nLatestBlock == 0 {
		return nil
	}

	stateRoot, err := x.rpc.GetStateRootByHeight(nLatestBlock - 1)
	if err != nil {
		return fmt.Errorf("get state root at block #%d: %w", nLatestBlock-1, err)
	}

	var start []byte

	for {
		res, err := x.rpc.FindStates(stateRoot.Root, x.contract, []byte{recordPrefix}, start, nil)
		if err != nil {
			return fmt.Errorf("get historical records of the contract at state root '%s': %w", stateRoot.Root, err)
		}

		for i := range res.Results {
			item, err := stackitem.Deserialize(res.Results[i].Value)
			if err != nil {
				return fmt.Errorf("decode record item with key %x: %w", res.Results[i].Key, err)
			}

			var rec rpcstake.StakeRecord

			err = rec.FromStackItem(item)
			if err != nil {
				return fmt.Errorf("decode record with key %x: %w", res.Results[i].Key, err)
			}

			err = f(rec)
			if err != nil {
				return err
			}
		}

		if !res.Truncated || len(res.Results) == 0 {
			return nil
		}

		start = res.Results[len(res.Results)-1].Key
	}
}
