/*
Package vault implements Vault contract.

Vault contract pools deposits of a single NEP-17 base asset and issues
proportional shares. The contract is itself a NEP-17 token representing the
shares, so they can be tracked and transferred by N3 compatible wallets.

Every deployment of the contract is one vault. The vault is configured once on
deployment with its admin, base asset and ticker. The ticker must be a 16-byte
zero-padded string of uppercase letters, digits, '_' and '-' with at least 3
meaningful characters; it becomes the shares token symbol.

Deposited assets are held on the contract address. They can leave it only by
Relocate, which is restricted to the admin. The contract address is also the
only authority able to mint shares.

The first deposit mints shares one to one. Later deposits mint
amount * totalShares / totalAssets shares rounded down. Relocated assets stay
accounted in the vault totals.

# Contract notifications

Initialize notification. This notification is produced on contract deployment.

	Initialize:
	  - name: vault
	    type: Hash160
	  - name: admin
	    type: Hash160
	  - name: sharesToken
	    type: Hash160
	  - name: baseAsset
	    type: Hash160

Deposit notification. This notification is produced when base asset is
deposited and shares are minted.

	Deposit:
	  - name: depositor
	    type: Hash160
	  - name: amount
	    type: Integer
	  - name: shares
	    type: Integer

Relocate notification. This notification is produced when the admin moves
base asset out of the vault custody.

	Relocate:
	  - name: vault
	    type: Hash160
	  - name: destination
	    type: Hash160
	  - name: amount
	    type: Integer

DepositPauseChanged and AllocatePauseChanged notifications. These
notifications are produced when the admin switches a pause flag.

	DepositPauseChanged:
	  - name: paused
	    type: Boolean

	AllocatePauseChanged:
	  - name: paused
	    type: Boolean

Transfer notification. This is a NEP-17 standard notification.

	Transfer:
	  - name: from
	    type: Hash160
	  - name: to
	    type: Hash160
	  - name: amount
	    type: Integer
*/
package vault

/*
Contract storage model.

# Summary
Key-value storage format:
 - 'r' -> std.Serialize(Record)
   vault record (here Record is a structure defined in current package)
 - 's' -> int
   total amount of shares in circulation
 - 'b'<interop.Hash160> -> int
   shares balance of the account
*/
