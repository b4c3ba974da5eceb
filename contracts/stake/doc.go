/*
Stake contract keeps GAS staked by its owners.

Every owner has a single stake record created with Initialize. GAS transferred
to the contract address is staked to the record of the sender (or to the record
referenced in the transfer data, which must belong to the sender). Unstake
returns the whole staked amount to the owner at once, partial withdrawals are
not supported. Contract GAS balance is the custody pool: it is always not less
than the sum of all staked amounts.

Contract notifications

Initialized notification. This notification is produced when owner creates
a stake record.

	Initialized:
	  - name: owner
	    type: Hash160

Staked notification. This notification is produced when GAS is staked.

	Staked:
	  - name: owner
	    type: Hash160
	  - name: amount
	    type: Integer

Unstaked notification. This notification is produced when staked GAS is
returned to the owner.

	Unstaked:
	  - name: owner
	    type: Hash160
	  - name: amount
	    type: Integer
*/
package stake
