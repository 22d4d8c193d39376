// Package host provides the environment a safe executes against: account
// balances, contracts and token contracts.
package host

import (
	"context"
	"hash/maphash"
	"math/big"
	"sync"

	"github.com/go-faster/errors"
	"github.com/puzpuzpuz/xsync/v2"
	"github.com/tonkeeper/tongo"
	"golang.org/x/exp/slices"

	"github.com/arnac-io/safekeeper/pkg/core"
	"github.com/arnac-io/safekeeper/pkg/params"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrUnknownMethod     = errors.New("contract has no such method")
)

type holding struct {
	token  tongo.AccountID
	holder tongo.AccountID
}

func hashHolding(seed maphash.Seed, h holding) uint64 {
	var m maphash.Hash
	m.SetSeed(seed)
	m.WriteString(h.token.ToRaw())
	m.WriteString(h.holder.ToRaw())
	return m.Sum64()
}

func hashAccountID(seed maphash.Seed, a tongo.AccountID) uint64 {
	var m maphash.Hash
	m.SetSeed(seed)
	m.WriteString(a.ToRaw())
	return m.Sum64()
}

type contractKind int

const (
	plainContract contractKind = iota
	tokenContract
)

// Invocation is a contract call performed through Invoke.
type Invocation struct {
	Destination tongo.AccountID
	Method      string
	Params      []core.Param
	Amount      *big.Int
}

// Memory is a process-local host for a single safe account.
// Reads are lock-free; value movements are serialized.
type Memory struct {
	self      tongo.AccountID
	mu        sync.Mutex
	balances  *xsync.MapOf[holding, *big.Int]
	contracts *xsync.MapOf[tongo.AccountID, contractKind]
	failures  *xsync.MapOf[tongo.AccountID, error]
	calls     []Invocation
}

func NewMemory(self tongo.AccountID) *Memory {
	return &Memory{
		self:      self,
		balances:  xsync.NewTypedMapOf[holding, *big.Int](hashHolding),
		contracts: xsync.NewTypedMapOf[tongo.AccountID, contractKind](hashAccountID),
		failures:  xsync.NewTypedMapOf[tongo.AccountID, error](hashAccountID),
	}
}

// RegisterContract marks address as a contract accepting any method.
func (m *Memory) RegisterContract(address tongo.AccountID) {
	m.contracts.Store(address, plainContract)
}

// RegisterToken marks address as a fungible token contract understanding
// transfer(_to: Address, _value: int).
func (m *Memory) RegisterToken(address tongo.AccountID) {
	m.contracts.Store(address, tokenContract)
}

// FailOn makes every transfer or call to address fail with err until
// cleared with a nil err.
func (m *Memory) FailOn(address tongo.AccountID, err error) {
	if err == nil {
		m.failures.Delete(address)
		return
	}
	m.failures.Store(address, err)
}

// Deposit credits holder with amount of token.
func (m *Memory) Deposit(token, holder tongo.AccountID, amount *big.Int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.credit(holding{token: token, holder: holder}, amount)
}

// Withdraw debits holder with amount of token. It fails without change when
// holder cannot cover amount.
func (m *Memory) Withdraw(token, holder tongo.AccountID, amount *big.Int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if amount.Sign() < 0 {
		return errors.Wrap(core.ErrInvalidAmount, amount.String())
	}
	balance := m.BalanceOf(token, holder)
	if balance.Cmp(amount) < 0 {
		return errors.Wrapf(ErrInsufficientFunds, "have %v, need %v", balance, amount)
	}
	m.balances.Store(holding{token: token, holder: holder}, balance.Sub(balance, amount))
	return nil
}

func (m *Memory) BalanceOf(token, holder tongo.AccountID) *big.Int {
	v, ok := m.balances.Load(holding{token: token, holder: holder})
	if !ok {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}

// Balance reports the safe's own balance.
func (m *Memory) Balance(ctx context.Context, token tongo.AccountID) (*big.Int, error) {
	return m.BalanceOf(token, m.self), nil
}

func (m *Memory) IsContract(ctx context.Context, address tongo.AccountID) (bool, error) {
	_, ok := m.contracts.Load(address)
	return ok, nil
}

// Calls returns the contract invocations performed so far.
func (m *Memory) Calls() []Invocation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.calls)
}

func (m *Memory) Transfer(ctx context.Context, destination tongo.AccountID, amount *big.Int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err, ok := m.failures.Load(destination); ok {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.move(core.NativeToken, destination, amount)
}

func (m *Memory) Invoke(ctx context.Context, destination tongo.AccountID, method string, args []core.Param, amount *big.Int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err, ok := m.failures.Load(destination); ok {
		return err
	}
	kind, ok := m.contracts.Load(destination)
	if !ok {
		return errors.Errorf("%v is not a contract", destination.ToRaw())
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.covers(core.NativeToken, amount); err != nil {
		return err
	}
	if kind == tokenContract {
		if err := m.tokenCall(destination, method, args); err != nil {
			return err
		}
	}
	if err := m.move(core.NativeToken, destination, amount); err != nil {
		return err
	}
	m.calls = append(m.calls, Invocation{Destination: destination, Method: method, Params: args, Amount: amount})
	return nil
}

func (m *Memory) tokenCall(token tongo.AccountID, method string, args []core.Param) error {
	if method != "transfer" {
		return errors.Wrap(ErrUnknownMethod, method)
	}
	a := params.NewArgs(args)
	to, err := a.Address("_to")
	if err != nil {
		return err
	}
	value, err := a.Int("_value")
	if err != nil {
		return err
	}
	return m.move(token, to, value)
}

// move must be called with mu held. Nothing changes when the safe cannot cover amount.
func (m *Memory) move(token, to tongo.AccountID, amount *big.Int) error {
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	if amount.Sign() < 0 {
		return errors.Wrap(core.ErrInvalidAmount, amount.String())
	}
	if err := m.covers(token, amount); err != nil {
		return err
	}
	balance := m.BalanceOf(token, m.self)
	m.balances.Store(holding{token: token, holder: m.self}, balance.Sub(balance, amount))
	m.credit(holding{token: token, holder: to}, amount)
	return nil
}

func (m *Memory) covers(token tongo.AccountID, amount *big.Int) error {
	if amount == nil {
		return nil
	}
	balance := m.BalanceOf(token, m.self)
	if balance.Cmp(amount) < 0 {
		return errors.Wrapf(ErrInsufficientFunds, "have %v, need %v", balance, amount)
	}
	return nil
}

func (m *Memory) credit(h holding, amount *big.Int) {
	current := m.BalanceOf(h.token, h.holder)
	m.balances.Store(h, current.Add(current, amount))
}
