package testutil

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"github.com/bimakw/staking-gateway/internal/domain/contracts"
	"github.com/bimakw/staking-gateway/internal/domain/entities"
)

type MockCall struct {
	Method string
	Args   []interface{}
}

// CallLog records calls across several mocks so tests can assert ordering
type CallLog struct {
	mu    sync.Mutex
	calls []MockCall
}

func NewCallLog() *CallLog {
	return &CallLog{calls: make([]MockCall, 0)}
}

func (l *CallLog) Record(method string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, MockCall{Method: method, Args: args})
}

// Calls returns a copy of the recorded calls
func (l *CallLog) Calls() []MockCall {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]MockCall, len(l.calls))
	copy(out, l.calls)
	return out
}

// Methods returns the recorded method names in call order
func (l *CallLog) Methods() []string {
	calls := l.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.Method
	}
	return out
}

// Count returns how often method was recorded
func (l *CallLog) Count(method string) int {
	n := 0
	for _, m := range l.Methods() {
		if m == method {
			n++
		}
	}
	return n
}

// Index returns the position of the first call to method, or -1
func (l *CallLog) Index(method string) int {
	for i, m := range l.Methods() {
		if m == method {
			return i
		}
	}
	return -1
}

func (l *CallLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.calls)
}

// MockHandle is a mock implementation of contracts.Handle. Calls are logged
// as "<name>.<kind>:<method>", kind being call, estimate, transact or wait.
type MockHandle struct {
	Name string
	Addr common.Address

	// Static view results by method name
	Results map[string][]interface{}

	// Function hooks for custom behavior
	CallFunc        func(ctx context.Context, method string, args ...interface{}) ([]interface{}, error)
	EstimateGasFunc func(ctx context.Context, value *big.Int, method string, args ...interface{}) (uint64, error)
	TransactFunc    func(ctx context.Context, opts contracts.TxOpts, method string, args ...interface{}) (contracts.PendingTx, error)
	WaitFunc        func(ctx context.Context, method string) (*entities.Receipt, error)

	Log *CallLog
}

func NewMockHandle(log *CallLog, name, address string) *MockHandle {
	return &MockHandle{
		Name:    name,
		Addr:    common.HexToAddress(address),
		Results: make(map[string][]interface{}),
		Log:     log,
	}
}

func (h *MockHandle) Address() common.Address {
	return h.Addr
}

func (h *MockHandle) Call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	h.Log.Record(h.Name+".call:"+method, args...)

	if h.CallFunc != nil {
		return h.CallFunc(ctx, method, args...)
	}

	out, ok := h.Results[method]
	if !ok {
		return nil, &contracts.ChainError{Op: method, Message: fmt.Sprintf("no result for %s on %s", method, h.Name)}
	}
	return out, nil
}

func (h *MockHandle) EstimateGas(ctx context.Context, value *big.Int, method string, args ...interface{}) (uint64, error) {
	h.Log.Record(h.Name+".estimate:"+method, append([]interface{}{value}, args...)...)

	if h.EstimateGasFunc != nil {
		return h.EstimateGasFunc(ctx, value, method, args...)
	}
	return 100000, nil
}

func (h *MockHandle) Transact(ctx context.Context, opts contracts.TxOpts, method string, args ...interface{}) (contracts.PendingTx, error) {
	h.Log.Record(h.Name+".transact:"+method, append([]interface{}{opts}, args...)...)

	if h.TransactFunc != nil {
		return h.TransactFunc(ctx, opts, method, args...)
	}
	return &MockPendingTx{
		TxHash: common.BytesToHash([]byte(h.Name + method)),
		Method: method,
		Handle: h,
	}, nil
}

// MockPendingTx is a mock implementation of contracts.PendingTx
type MockPendingTx struct {
	TxHash common.Hash
	Method string
	Handle *MockHandle
}

func (p *MockPendingTx) Hash() common.Hash {
	return p.TxHash
}

func (p *MockPendingTx) Wait(ctx context.Context) (*entities.Receipt, error) {
	p.Handle.Log.Record(p.Handle.Name + ".wait:" + p.Method)

	if p.Handle.WaitFunc != nil {
		return p.Handle.WaitFunc(ctx, p.Method)
	}
	return &entities.Receipt{TxHash: p.TxHash.Hex(), BlockNumber: 1, Status: 1, GasUsed: 21000}, nil
}

// MockFactory is a mock implementation of contracts.Factory
type MockFactory struct {
	mu sync.Mutex

	Log          *CallLog
	Staking      *MockHandle
	ICOHandle    *MockHandle
	DepositTok   *MockHandle
	Tokens       map[common.Address]*MockHandle
	Signers      []*contracts.Signer
	ConnectCount int
}

func NewMockFactory() *MockFactory {
	log := NewCallLog()
	f := &MockFactory{
		Log:        log,
		Staking:    NewMockHandle(log, "staking", StakingAddress),
		ICOHandle:  NewMockHandle(log, "ico", ICOAddress),
		DepositTok: NewMockHandle(log, "deposit", DepositTokenAddress),
		Tokens:     make(map[common.Address]*MockHandle),
	}
	f.AddToken(f.DepositTok)
	return f
}

// AddToken registers a token handle returned by Token and Connect
func (f *MockFactory) AddToken(h *MockHandle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Tokens[h.Addr] = h
}

func (f *MockFactory) Connect(address common.Address, parsed abi.ABI, signer *contracts.Signer) contracts.Handle {
	f.record(signer)

	f.mu.Lock()
	defer f.mu.Unlock()
	switch address {
	case f.Staking.Addr:
		return f.Staking
	case f.ICOHandle.Addr:
		return f.ICOHandle
	}
	if h, ok := f.Tokens[address]; ok {
		return h
	}
	return NewMockHandle(f.Log, "unknown", address.Hex())
}

func (f *MockFactory) StakingManager(signer *contracts.Signer) contracts.Handle {
	f.record(signer)
	return f.Staking
}

func (f *MockFactory) ICO(signer *contracts.Signer) contracts.Handle {
	f.record(signer)
	return f.ICOHandle
}

func (f *MockFactory) DepositToken(signer *contracts.Signer) contracts.Handle {
	f.record(signer)
	return f.DepositTok
}

func (f *MockFactory) Token(address common.Address, signer *contracts.Signer) contracts.Handle {
	return f.Connect(address, abi.ABI{}, signer)
}

func (f *MockFactory) record(signer *contracts.Signer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ConnectCount++
	f.Signers = append(f.Signers, signer)
}

// MockProvider is a mock implementation of contracts.WalletProvider
type MockProvider struct {
	mu sync.Mutex

	Address common.Address

	// Function hooks for custom behavior
	SignerFunc  func(ctx context.Context) (*contracts.Signer, error)
	RequestFunc func(ctx context.Context, method string, result interface{}, params ...interface{}) error

	// Call tracking
	Calls []MockCall
}

func NewMockProvider() *MockProvider {
	return &MockProvider{
		Address: common.HexToAddress(AliceAddress),
		Calls:   make([]MockCall, 0),
	}
}

func (p *MockProvider) Signer(ctx context.Context) (*contracts.Signer, error) {
	p.mu.Lock()
	p.Calls = append(p.Calls, MockCall{Method: "Signer"})
	p.mu.Unlock()

	if p.SignerFunc != nil {
		return p.SignerFunc(ctx)
	}
	return &contracts.Signer{
		Address: p.Address,
		Opts:    &bind.TransactOpts{From: p.Address},
	}, nil
}

func (p *MockProvider) Request(ctx context.Context, method string, result interface{}, params ...interface{}) error {
	p.mu.Lock()
	p.Calls = append(p.Calls, MockCall{Method: "Request", Args: append([]interface{}{method}, params...)})
	p.mu.Unlock()

	if p.RequestFunc != nil {
		return p.RequestFunc(ctx, method, result, params...)
	}
	if ok, isBool := result.(*bool); isBool {
		*ok = true
	}
	return nil
}

// CallCount returns how often method was called on the provider
func (p *MockProvider) CallCount(method string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.Calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// MockBalanceReader is a mock implementation of contracts.BalanceReader
type MockBalanceReader struct {
	Balances      map[common.Address]*big.Int
	BalanceAtFunc func(ctx context.Context, account common.Address) (*big.Int, error)
}

func NewMockBalanceReader() *MockBalanceReader {
	return &MockBalanceReader{Balances: make(map[common.Address]*big.Int)}
}

func (r *MockBalanceReader) BalanceAt(ctx context.Context, account common.Address) (*big.Int, error) {
	if r.BalanceAtFunc != nil {
		return r.BalanceAtFunc(ctx, account)
	}
	if b, ok := r.Balances[account]; ok {
		return b, nil
	}
	return big.NewInt(0), nil
}

// RecordingNotifier collects phase events
type RecordingNotifier struct {
	mu     sync.Mutex
	events []entities.PhaseEvent
}

func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{}
}

func (n *RecordingNotifier) Notify(ctx context.Context, event entities.PhaseEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

// Events returns a copy of the received events
func (n *RecordingNotifier) Events() []entities.PhaseEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]entities.PhaseEvent, len(n.events))
	copy(out, n.events)
	return out
}

// Phases returns the phases received in order
func (n *RecordingNotifier) Phases() []entities.Phase {
	events := n.Events()
	out := make([]entities.Phase, len(events))
	for i, e := range events {
		out[i] = e.Phase
	}
	return out
}

// Last returns the most recent event
func (n *RecordingNotifier) Last() entities.PhaseEvent {
	events := n.Events()
	if len(events) == 0 {
		return entities.PhaseEvent{}
	}
	return events[len(events)-1]
}

// MockJournalRepository is a mock implementation of JournalRepository
type MockJournalRepository struct {
	mu      sync.Mutex
	entries []entities.JournalEntry

	RecordFunc func(ctx context.Context, entry *entities.JournalEntry) error
	RecentFunc func(ctx context.Context, limit int) ([]entities.JournalEntry, error)

	Calls []MockCall
}

func NewMockJournalRepository() *MockJournalRepository {
	return &MockJournalRepository{Calls: make([]MockCall, 0)}
}

func (m *MockJournalRepository) Record(ctx context.Context, entry *entities.JournalEntry) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "Record", Args: []interface{}{entry}})
	m.mu.Unlock()

	if m.RecordFunc != nil {
		return m.RecordFunc(ctx, entry)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	entry.ID = int64(len(m.entries) + 1)
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *MockJournalRepository) Recent(ctx context.Context, limit int) ([]entities.JournalEntry, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "Recent", Args: []interface{}{limit}})
	m.mu.Unlock()

	if m.RecentFunc != nil {
		return m.RecentFunc(ctx, limit)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entities.JournalEntry, 0, limit)
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.entries[i])
	}
	return out, nil
}

func (m *MockJournalRepository) ByAction(ctx context.Context, actionID string) ([]entities.JournalEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCall{Method: "ByAction", Args: []interface{}{actionID}})

	out := make([]entities.JournalEntry, 0)
	for _, e := range m.entries {
		if e.ActionID == actionID {
			out = append(out, e)
		}
	}
	return out, nil
}

// MockHealthChecker is a mock implementation of HealthChecker
type MockHealthChecker struct {
	mu sync.Mutex

	Error error
	Calls int
}

func NewMockHealthChecker(healthy bool) *MockHealthChecker {
	var err error
	if !healthy {
		err = errors.New("health check failed")
	}
	return &MockHealthChecker{Error: err}
}

func (m *MockHealthChecker) HealthCheck(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	return m.Error
}

// MockEventSource replays Past and then streams Live until the
// subscriber context ends
type MockEventSource struct {
	Past         []entities.PhaseEvent
	Live         []entities.PhaseEvent
	SubscribeErr error
}

func (m *MockEventSource) History(ctx context.Context, limit int64) ([]entities.PhaseEvent, error) {
	if limit > 0 && int64(len(m.Past)) > limit {
		return m.Past[int64(len(m.Past))-limit:], nil
	}
	return m.Past, nil
}

func (m *MockEventSource) Subscribe(ctx context.Context) (<-chan entities.PhaseEvent, error) {
	if m.SubscribeErr != nil {
		return nil, m.SubscribeErr
	}
	out := make(chan entities.PhaseEvent)
	go func() {
		defer close(out)
		for _, e := range m.Live {
			select {
			case out <- e:
			case <-ctx.Done():
				return
			}
		}
		<-ctx.Done()
	}()
	return out, nil
}
