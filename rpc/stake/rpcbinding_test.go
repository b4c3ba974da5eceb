package stake

import (
	"errors"
	"math/big"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/stretchr/testify/require"
)

type testInv struct {
	err    error
	res    *result.Invoke
	method string
	params []any
}

func (t *testInv) Call(contract util.Uint160, operation string, params ...any) (*result.Invoke, error) {
	t.method = operation
	t.params = params
	return t.res, t.err
}

func halt(items ...stackitem.Item) *result.Invoke {
	return &result.Invoke{
		State: vmstate.Halt.String(),
		Stack: items,
	}
}

func TestReaderErrors(t *testing.T) {
	ti := new(testInv)
	r := NewReader(ti, util.Uint160{1, 2, 3})

	ti.err = errors.New("bad")
	_, err := r.StakeOf(util.Uint160{})
	require.Error(t, err)
	_, err = r.RecordOf(util.Uint160{})
	require.Error(t, err)
	_, err = r.TotalStaked()
	require.Error(t, err)

	ti.err = nil
	ti.res = &result.Invoke{
		State:          vmstate.Fault.String(),
		FaultException: "recordOf: record not found",
	}
	_, err = r.RecordOf(util.Uint160{})
	require.ErrorContains(t, err, "record not found")

	ti.res = halt(stackitem.Make(42))
	_, err = r.RecordOf(util.Uint160{})
	require.Error(t, err)

	ti.res = halt(stackitem.NewStruct([]stackitem.Item{stackitem.Make(1)}))
	_, err = r.RecordOf(util.Uint160{})
	require.Error(t, err)
}

func TestReader(t *testing.T) {
	owner := util.Uint160{0xA}
	ti := new(testInv)
	r := NewReader(ti, util.Uint160{1, 2, 3})

	ti.res = halt(stackitem.Make(150))
	n, err := r.StakeOf(owner)
	require.NoError(t, err)
	require.EqualValues(t, 150, n.Int64())
	require.Equal(t, "stakeOf", ti.method)
	require.Equal(t, []any{owner}, ti.params)

	n, err = r.TotalStaked()
	require.NoError(t, err)
	require.EqualValues(t, 150, n.Int64())
	require.Equal(t, "totalStaked", ti.method)

	ti.res = halt(stackitem.NewStruct([]stackitem.Item{
		stackitem.NewByteArray(owner.BytesBE()),
		stackitem.Make(150),
	}))
	rec, err := r.RecordOf(owner)
	require.NoError(t, err)
	require.Equal(t, &StakeRecord{Owner: owner, Amount: big.NewInt(150)}, rec)
}

func TestEventsFromApplicationLog(t *testing.T) {
	owner := util.Uint160{0xA}

	_, err := StakedEventsFromApplicationLog(nil)
	require.Error(t, err)

	log := &result.ApplicationLog{
		Executions: []state.Execution{{
			Events: []state.NotificationEvent{
				{
					Name: "Initialized",
					Item: stackitem.NewArray([]stackitem.Item{stackitem.NewByteArray(owner.BytesBE())}),
				},
				{
					Name: "Transfer",
					Item: stackitem.NewArray(nil),
				},
				{
					Name: "Staked",
					Item: stackitem.NewArray([]stackitem.Item{stackitem.NewByteArray(owner.BytesBE()), stackitem.Make(100)}),
				},
				{
					Name: "Unstaked",
					Item: stackitem.NewArray([]stackitem.Item{stackitem.NewByteArray(owner.BytesBE()), stackitem.Make(100)}),
				},
			},
		}},
	}

	inits, err := InitializedEventsFromApplicationLog(log)
	require.NoError(t, err)
	require.Equal(t, []*InitializedEvent{{Owner: owner}}, inits)

	staked, err := StakedEventsFromApplicationLog(log)
	require.NoError(t, err)
	require.Equal(t, []*StakedEvent{{Owner: owner, Amount: big.NewInt(100)}}, staked)

	unstaked, err := UnstakedEventsFromApplicationLog(log)
	require.NoError(t, err)
	require.Equal(t, []*UnstakedEvent{{Owner: owner, Amount: big.NewInt(100)}}, unstaked)

	log.Executions[0].Events[2].Item = stackitem.NewArray([]stackitem.Item{stackitem.Make(1)})
	_, err = StakedEventsFromApplicationLog(log)
	require.Error(t, err)
}
