// Package vault contains RPC wrappers for Vault contract.
package vault

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/google/uuid"
	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/nep17"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/unwrap"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/sharevault/contracts/vault/vaultconst"
)

// Record is a contract-specific vault.Record type used by its methods.
type Record struct {
	Admin           util.Uint160
	Authority       util.Uint160
	SharesToken     util.Uint160
	BaseAsset       util.Uint160
	Custody         util.Uint160
	TotalBaseAssets *big.Int
	DepositPaused   bool
	AllocatePaused  bool
	Decimals        *big.Int
	Ticker          []byte
}

// InitializeEvent represents "Initialize" event emitted by the contract.
type InitializeEvent struct {
	Vault       util.Uint160
	Admin       util.Uint160
	SharesToken util.Uint160
	BaseAsset   util.Uint160
}

// DepositEvent represents "Deposit" event emitted by the contract.
type DepositEvent struct {
	Depositor util.Uint160
	Amount    *big.Int
	Shares    *big.Int
}

// RelocateEvent represents "Relocate" event emitted by the contract.
type RelocateEvent struct {
	Vault       util.Uint160
	Destination util.Uint160
	Amount      *big.Int
}

// PauseChangedEvent represents "DepositPauseChanged" and
// "AllocatePauseChanged" events emitted by the contract.
type PauseChangedEvent struct {
	Paused bool
}

// Invoker is used by ContractReader to call various safe methods.
type Invoker interface {
	nep17.Invoker

	CallAndExpandIterator(contract util.Uint160, method string, maxItems int, params ...any) (*result.Invoke, error)
	TerminateSession(sessionID uuid.UUID) error
	TraverseIterator(sessionID uuid.UUID, iterator *result.Iterator, num int) ([]stackitem.Item, error)
}

// Actor is used by Contract to call state-changing methods.
type Actor interface {
	Invoker

	nep17.Actor

	MakeCall(contract util.Uint160, method string, params ...any) (*transaction.Transaction, error)
	MakeUnsignedCall(contract util.Uint160, method string, attrs []transaction.Attribute, params ...any) (*transaction.Transaction, error)
	SendCall(contract util.Uint160, method string, params ...any) (util.Uint256, uint32, error)
}

// ContractReader implements safe contract methods.
type ContractReader struct {
	nep17.TokenReader
	invoker Invoker
	hash    util.Uint160
}

// Contract implements all contract methods.
type Contract struct {
	ContractReader
	nep17.TokenWriter
	actor Actor
	hash  util.Uint160
}

// NewReader creates an instance of ContractReader using provided contract hash and the given Invoker.
func NewReader(invoker Invoker, hash util.Uint160) *ContractReader {
	return &ContractReader{*nep17.NewReader(invoker, hash), invoker, hash}
}

// New creates an instance of Contract using provided contract hash and the given Actor.
func New(actor Actor, hash util.Uint160) *Contract {
	var nep17t = nep17.New(actor, hash)
	return &Contract{ContractReader{nep17t.TokenReader, actor, hash}, nep17t.TokenWriter, actor, hash}
}

// Version invokes `version` method of contract.
func (c *ContractReader) Version() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "version"))
}

// GetRecord invokes `getRecord` method of contract.
func (c *ContractReader) GetRecord() (*Record, error) {
	return itemToRecord(unwrap.Item(c.invoker.Call(c.hash, "getRecord")))
}

// Admin invokes `admin` method of contract.
func (c *ContractReader) Admin() (util.Uint160, error) {
	return unwrap.Uint160(c.invoker.Call(c.hash, "admin"))
}

// BaseAsset invokes `baseAsset` method of contract.
func (c *ContractReader) BaseAsset() (util.Uint160, error) {
	return unwrap.Uint160(c.invoker.Call(c.hash, "baseAsset"))
}

// TotalAssets invokes `totalAssets` method of contract.
func (c *ContractReader) TotalAssets() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "totalAssets"))
}

// IsDepositPaused invokes `isDepositPaused` method of contract.
func (c *ContractReader) IsDepositPaused() (bool, error) {
	return unwrap.Bool(c.invoker.Call(c.hash, "isDepositPaused"))
}

// IsAllocatePaused invokes `isAllocatePaused` method of contract.
func (c *ContractReader) IsAllocatePaused() (bool, error) {
	return unwrap.Bool(c.invoker.Call(c.hash, "isAllocatePaused"))
}

// ConvertToShares invokes `convertToShares` method of contract.
func (c *ContractReader) ConvertToShares(amount *big.Int) (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "convertToShares", amount))
}

// Holders invokes `holders` method of contract.
func (c *ContractReader) Holders() (uuid.UUID, result.Iterator, error) {
	return unwrap.SessionIterator(c.invoker.Call(c.hash, "holders"))
}

// HoldersExpanded is similar to Holders (uses the same contract
// method), but can be useful if the server used doesn't support sessions and
// doesn't expand iterators. It creates a script that will get the specified
// number of result items from the iterator right in the VM and return them to
// you. It's only limited by VM stack and GAS available for RPC invocations.
func (c *ContractReader) HoldersExpanded(_numOfIteratorItems int) ([]stackitem.Item, error) {
	return unwrap.Array(c.invoker.CallAndExpandIterator(c.hash, "holders", _numOfIteratorItems))
}

// Deposit creates a transaction invoking `deposit` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) Deposit(from util.Uint160, amount *big.Int) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "deposit", from, amount)
}

// DepositTransaction creates a transaction invoking `deposit` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) DepositTransaction(from util.Uint160, amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "deposit", from, amount)
}

// DepositUnsigned creates a transaction invoking `deposit` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) DepositUnsigned(from util.Uint160, amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "deposit", nil, from, amount)
}

// Relocate creates a transaction invoking `relocate` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) Relocate(destination util.Uint160, amount *big.Int) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "relocate", destination, amount)
}

// RelocateTransaction creates a transaction invoking `relocate` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) RelocateTransaction(destination util.Uint160, amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "relocate", destination, amount)
}

// RelocateUnsigned creates a transaction invoking `relocate` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) RelocateUnsigned(destination util.Uint160, amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "relocate", nil, destination, amount)
}

// SetDepositPaused creates a transaction invoking `setDepositPaused` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) SetDepositPaused(paused bool) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "setDepositPaused", paused)
}

// SetDepositPausedTransaction creates a transaction invoking `setDepositPaused` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) SetDepositPausedTransaction(paused bool) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "setDepositPaused", paused)
}

// SetAllocatePaused creates a transaction invoking `setAllocatePaused` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) SetAllocatePaused(paused bool) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "setAllocatePaused", paused)
}

// SetAllocatePausedTransaction creates a transaction invoking `setAllocatePaused` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) SetAllocatePausedTransaction(paused bool) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "setAllocatePaused", paused)
}

// Update creates a transaction invoking `update` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) Update(script []byte, manifest []byte, data any) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "update", script, manifest, data)
}

// itemToRecord converts stack item into *Record.
func itemToRecord(item stackitem.Item, err error) (*Record, error) {
	if err != nil {
		return nil, err
	}
	var res = new(Record)
	err = res.FromStackItem(item)
	return res, err
}

// FromStackItem retrieves fields of Record from the given
// [stackitem.Item] or returns an error if it's not possible to do to so.
func (res *Record) FromStackItem(item stackitem.Item) error {
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 10 {
		return errors.New("wrong number of structure elements")
	}

	var (
		index = -1
		err   error
	)
	for _, f := range []struct {
		name string
		dst  *util.Uint160
	}{
		{"Admin", &res.Admin},
		{"Authority", &res.Authority},
		{"SharesToken", &res.SharesToken},
		{"BaseAsset", &res.BaseAsset},
		{"Custody", &res.Custody},
	} {
		index++
		*f.dst, err = itemToUint160(arr[index])
		if err != nil {
			return fmt.Errorf("field %s: %w", f.name, err)
		}
	}

	index++
	res.TotalBaseAssets, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field TotalBaseAssets: %w", err)
	}

	index++
	res.DepositPaused, err = arr[index].TryBool()
	if err != nil {
		return fmt.Errorf("field DepositPaused: %w", err)
	}

	index++
	res.AllocatePaused, err = arr[index].TryBool()
	if err != nil {
		return fmt.Errorf("field AllocatePaused: %w", err)
	}

	index++
	res.Decimals, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field Decimals: %w", err)
	}

	index++
	res.Ticker, err = arr[index].TryBytes()
	if err != nil {
		return fmt.Errorf("field Ticker: %w", err)
	}

	return nil
}

// InitializeEventsFromApplicationLog retrieves a set of all emitted events
// with "Initialize" name from the provided [result.ApplicationLog].
func InitializeEventsFromApplicationLog(log *result.ApplicationLog) ([]*InitializeEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*InitializeEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != vaultconst.InitializeEvent {
				continue
			}
			event := new(InitializeEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize InitializeEvent from stackitem (execution #%d, event #%d): %w", i, j, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to InitializeEvent or
// returns an error if it's not possible to do to so.
func (e *InitializeEvent) FromStackItem(item *stackitem.Array) error {
	arr, err := eventFields(item, 4)
	if err != nil {
		return err
	}

	for i, f := range []struct {
		name string
		dst  *util.Uint160
	}{
		{"Vault", &e.Vault},
		{"Admin", &e.Admin},
		{"SharesToken", &e.SharesToken},
		{"BaseAsset", &e.BaseAsset},
	} {
		*f.dst, err = itemToUint160(arr[i])
		if err != nil {
			return fmt.Errorf("field %s: %w", f.name, err)
		}
	}

	return nil
}

// DepositEventsFromApplicationLog retrieves a set of all emitted events
// with "Deposit" name from the provided [result.ApplicationLog].
func DepositEventsFromApplicationLog(log *result.ApplicationLog) ([]*DepositEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*DepositEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != vaultconst.DepositEvent {
				continue
			}
			event := new(DepositEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize DepositEvent from stackitem (execution #%d, event #%d): %w", i, j, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to DepositEvent or
// returns an error if it's not possible to do to so.
func (e *DepositEvent) FromStackItem(item *stackitem.Array) error {
	arr, err := eventFields(item, 3)
	if err != nil {
		return err
	}

	e.Depositor, err = itemToUint160(arr[0])
	if err != nil {
		return fmt.Errorf("field Depositor: %w", err)
	}

	e.Amount, err = arr[1].TryInteger()
	if err != nil {
		return fmt.Errorf("field Amount: %w", err)
	}

	e.Shares, err = arr[2].TryInteger()
	if err != nil {
		return fmt.Errorf("field Shares: %w", err)
	}

	return nil
}

// RelocateEventsFromApplicationLog retrieves a set of all emitted events
// with "Relocate" name from the provided [result.ApplicationLog].
func RelocateEventsFromApplicationLog(log *result.ApplicationLog) ([]*RelocateEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*RelocateEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != vaultconst.RelocateEvent {
				continue
			}
			event := new(RelocateEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize RelocateEvent from stackitem (execution #%d, event #%d): %w", i, j, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to RelocateEvent or
// returns an error if it's not possible to do to so.
func (e *RelocateEvent) FromStackItem(item *stackitem.Array) error {
	arr, err := eventFields(item, 3)
	if err != nil {
		return err
	}

	e.Vault, err = itemToUint160(arr[0])
	if err != nil {
		return fmt.Errorf("field Vault: %w", err)
	}

	e.Destination, err = itemToUint160(arr[1])
	if err != nil {
		return fmt.Errorf("field Destination: %w", err)
	}

	e.Amount, err = arr[2].TryInteger()
	if err != nil {
		return fmt.Errorf("field Amount: %w", err)
	}

	return nil
}

// FromStackItem converts provided [stackitem.Array] to PauseChangedEvent or
// returns an error if it's not possible to do to so.
func (e *PauseChangedEvent) FromStackItem(item *stackitem.Array) error {
	arr, err := eventFields(item, 1)
	if err != nil {
		return err
	}

	e.Paused, err = arr[0].TryBool()
	if err != nil {
		return fmt.Errorf("field Paused: %w", err)
	}

	return nil
}

func eventFields(item *stackitem.Array, n int) ([]stackitem.Item, error) {
	if item == nil {
		return nil, errors.New("nil item")
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return nil, errors.New("not an array")
	}
	if len(arr) != n {
		return nil, errors.New("wrong number of structure elements")
	}
	return arr, nil
}

func itemToUint160(item stackitem.Item) (util.Uint160, error) {
	b, err := item.TryBytes()
	if err != nil {
		return util.Uint160{}, err
	}
	u, err := util.Uint160DecodeBytesBE(b)
	if err != nil {
		return util.Uint160{}, err
	}
	return u, nil
}
