package ledger

import (
	"github.com/google/uuid"
	"github.com/mr-tron/base58"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"go.uber.org/zap"
)

// Kind is a type of the audit Event.
type Kind string

const (
	KindInitialized Kind = "Initialized"
	KindStaked      Kind = "Staked"
	KindUnstaked    Kind = "Unstaked"
)

// Event describes single successful Ledger operation.
type Event struct {
	ID     uuid.UUID
	Kind   Kind
	Owner  util.Uint160
	Amount uint64
}

// Ref returns compact text reference to the event.
func (e Event) Ref() string {
	return base58.Encode(e.ID[:])
}

// Sink receives audit events. Sink is called after the operation is
// committed, so it can't affect the operation result.
type Sink interface {
	Notify(Event)
}

// SinkFunc is a Sink implemented by an ordinary function.
type SinkFunc func(Event)

// Notify calls f(e).
func (f SinkFunc) Notify(e Event) {
	f(e)
}

// LogSink writes events into the log.
type LogSink struct {
	Logger *zap.Logger
}

// Notify implements Sink.
func (x LogSink) Notify(e Event) {
	x.Logger.Info(string(e.Kind),
		zap.String("ref", e.Ref()),
		zap.String("owner", address.Uint160ToString(e.Owner)),
		zap.Uint64("amount", e.Amount),
	)
}

type nopSink struct{}

func (nopSink) Notify(Event) {}
