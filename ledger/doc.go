/*
Package ledger implements the stake accounting state machine.

Ledger keeps one Record per owner and moves value between the owner's external
holding and a single shared custody pool. Every state change is applied
through a Session opened on the Host, so the debit, the credit and the record
update are committed together or not at all.

Record lifecycle

	Uninitialized --Initialize--> Empty --Stake--> Funded --Unstake--> Empty
	                                               Funded --Stake--> Funded

Unstake is rejected from Empty with ErrNoStakedAmount, there is no way back to
Uninitialized.

Host responsibilities

The Host owns storage and balances. It must reject duplicate record creation
with ErrRecordExists, fail transfers from an insufficient counter with
ErrInsufficientFunds and serialize sessions touching the same record. Caller
identities passed to Ledger are expected to be authenticated already.

Audit events

Successful operations are reported to the configured Sink:

	Initialized: owner
	Staked:      owner, amount
	Unstaked:    owner, amount
*/
package ledger
