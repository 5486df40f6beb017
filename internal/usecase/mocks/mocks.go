package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/iho/coreledger/internal/domain"
	"github.com/iho/coreledger/internal/usecase"
)

func tenantKey(tenantID, key string) string {
	return tenantID + "/" + key
}

// MockJournalEntryRepository is a mock implementation of JournalEntryRepository.
type MockJournalEntryRepository struct {
	mu      sync.RWMutex
	entries map[string]*domain.JournalEntry

	CreateFunc              func(ctx context.Context, tx usecase.Transaction, entry *domain.JournalEntry) error
	GetByIDFunc             func(ctx context.Context, tenantID, id string) (*domain.JournalEntry, error)
	GetByIdempotencyKeyFunc func(ctx context.Context, tenantID, key string) (*domain.JournalEntry, error)
	ListIntercompanyFunc    func(ctx context.Context, tenantID string, from, to time.Time) ([]*domain.JournalEntry, error)
}

func NewMockJournalEntryRepository() *MockJournalEntryRepository {
	return &MockJournalEntryRepository{
		entries: make(map[string]*domain.JournalEntry),
	}
}

func (m *MockJournalEntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.JournalEntry) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[tenantKey(entry.TenantID, entry.ID)] = entry
	return nil
}

func (m *MockJournalEntryRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.JournalEntry, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, tenantID, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.entries[tenantKey(tenantID, id)]; ok {
		return e, nil
	}
	return nil, domain.ErrEntryNotFound
}

func (m *MockJournalEntryRepository) GetByIdempotencyKey(ctx context.Context, tenantID, key string) (*domain.JournalEntry, error) {
	if m.GetByIdempotencyKeyFunc != nil {
		return m.GetByIdempotencyKeyFunc(ctx, tenantID, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.entries {
		if e.TenantID == tenantID && e.IdempotencyKey == key {
			return e, nil
		}
	}
	return nil, domain.ErrEntryNotFound
}

func (m *MockJournalEntryRepository) ListIntercompany(ctx context.Context, tenantID string, from, to time.Time) ([]*domain.JournalEntry, error) {
	if m.ListIntercompanyFunc != nil {
		return m.ListIntercompanyFunc(ctx, tenantID, from, to)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var entries []*domain.JournalEntry
	for _, e := range m.entries {
		if e.TenantID != tenantID || !e.IsIntercompany {
			continue
		}
		if e.PostingDate.Before(from) || e.PostingDate.After(to) {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	CreateFunc     func(ctx context.Context, account *domain.Account) error
	GetByCodeFunc  func(ctx context.Context, tenantID, code string) (*domain.Account, error)
	GetByCodesFunc func(ctx context.Context, tenantID string, codes []string) ([]*domain.Account, error)
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[tenantKey(account.TenantID, account.Code)] = account
	return nil
}

func (m *MockAccountRepository) GetByCode(ctx context.Context, tenantID, code string) (*domain.Account, error) {
	if m.GetByCodeFunc != nil {
		return m.GetByCodeFunc(ctx, tenantID, code)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[tenantKey(tenantID, code)]; ok {
		return acc, nil
	}
	return nil, &domain.AccountNotFoundError{TenantID: tenantID, AccountCode: code}
}

func (m *MockAccountRepository) GetByCodes(ctx context.Context, tenantID string, codes []string) ([]*domain.Account, error) {
	if m.GetByCodesFunc != nil {
		return m.GetByCodesFunc(ctx, tenantID, codes)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, code := range codes {
		if acc, ok := m.accounts[tenantKey(tenantID, code)]; ok {
			accounts = append(accounts, acc)
		}
	}
	return accounts, nil
}

// MockPeriodRepository is a mock implementation of PeriodRepository.
type MockPeriodRepository struct {
	mu      sync.RWMutex
	periods []*domain.AccountingPeriod

	FindForDateFunc  func(ctx context.Context, tenantID string, date time.Time) (*domain.AccountingPeriod, error)
	GetByIDFunc      func(ctx context.Context, tenantID, id string) (*domain.AccountingPeriod, error)
	UpdateStatusFunc func(ctx context.Context, tx usecase.Transaction, tenantID, id string, status domain.PeriodStatus) error
}

func NewMockPeriodRepository() *MockPeriodRepository {
	return &MockPeriodRepository{}
}

func (m *MockPeriodRepository) Add(period *domain.AccountingPeriod) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.periods = append(m.periods, period)
}

func (m *MockPeriodRepository) FindForDate(ctx context.Context, tenantID string, date time.Time) (*domain.AccountingPeriod, error) {
	if m.FindForDateFunc != nil {
		return m.FindForDateFunc(ctx, tenantID, date)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.periods {
		if p.TenantID == tenantID && p.Contains(date) {
			return p, nil
		}
	}
	return nil, nil
}

func (m *MockPeriodRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.AccountingPeriod, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, tenantID, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.periods {
		if p.TenantID == tenantID && p.ID == id {
			return p, nil
		}
	}
	return nil, domain.ErrPeriodNotFound
}

func (m *MockPeriodRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, tenantID, id string, status domain.PeriodStatus) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, tx, tenantID, id, status)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.periods {
		if p.TenantID == tenantID && p.ID == id {
			p.Status = status
			return nil
		}
	}
	return domain.ErrPeriodNotFound
}

// MockTemporalBalanceRepository is a mock implementation of
// TemporalBalanceRepository backed by an append-only slice, so tests
// observe the same close-and-insert lifecycle as the real store.
type MockTemporalBalanceRepository struct {
	mu      sync.RWMutex
	records []*domain.TemporalBalance

	GetOpenForUpdateFunc func(ctx context.Context, tx usecase.Transaction, tenantID, entityID, accountCode string) (*domain.TemporalBalance, error)
	CloseFunc            func(ctx context.Context, tx usecase.Transaction, id string, validTimeEnd, transactionTimeEnd time.Time) error
	InsertFunc           func(ctx context.Context, tx usecase.Transaction, balance *domain.TemporalBalance) error
	ListVersionsFunc     func(ctx context.Context, tenantID, entityID, accountCode string) ([]*domain.TemporalBalance, error)
}

func NewMockTemporalBalanceRepository() *MockTemporalBalanceRepository {
	return &MockTemporalBalanceRepository{}
}

func (m *MockTemporalBalanceRepository) GetOpenForUpdate(ctx context.Context, tx usecase.Transaction, tenantID, entityID, accountCode string) (*domain.TemporalBalance, error) {
	if m.GetOpenForUpdateFunc != nil {
		return m.GetOpenForUpdateFunc(ctx, tx, tenantID, entityID, accountCode)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.records {
		if r.TenantID == tenantID && r.EntityID == entityID && r.AccountCode == accountCode && r.IsOpen() {
			return r, nil
		}
	}
	return nil, nil
}

func (m *MockTemporalBalanceRepository) Close(ctx context.Context, tx usecase.Transaction, id string, validTimeEnd, transactionTimeEnd time.Time) error {
	if m.CloseFunc != nil {
		return m.CloseFunc(ctx, tx, id, validTimeEnd, transactionTimeEnd)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.ID == id {
			r.ValidTimeEnd = validTimeEnd
			r.TransactionTimeEnd = transactionTimeEnd
			return nil
		}
	}
	return fmt.Errorf("temporal balance %s not found", id)
}

func (m *MockTemporalBalanceRepository) Insert(ctx context.Context, tx usecase.Transaction, balance *domain.TemporalBalance) error {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, tx, balance)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, balance)
	return nil
}

func (m *MockTemporalBalanceRepository) ListVersions(ctx context.Context, tenantID, entityID, accountCode string) ([]*domain.TemporalBalance, error) {
	if m.ListVersionsFunc != nil {
		return m.ListVersionsFunc(ctx, tenantID, entityID, accountCode)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var versions []*domain.TemporalBalance
	for _, r := range m.records {
		if r.TenantID == tenantID && r.EntityID == entityID && r.AccountCode == accountCode {
			versions = append(versions, r)
		}
	}
	return versions, nil
}

// MockEntityRepository is a mock implementation of EntityRepository.
type MockEntityRepository struct {
	mu       sync.RWMutex
	entities map[string]*domain.Entity

	GetByIDFunc          func(ctx context.Context, tenantID, id string) (*domain.Entity, error)
	ListSubsidiariesFunc func(ctx context.Context, tenantID, parentEntityID string) ([]*domain.Entity, error)
}

func NewMockEntityRepository() *MockEntityRepository {
	return &MockEntityRepository{
		entities: make(map[string]*domain.Entity),
	}
}

func (m *MockEntityRepository) Add(entity *domain.Entity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entities[tenantKey(entity.TenantID, entity.ID)] = entity
}

func (m *MockEntityRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.Entity, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, tenantID, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.entities[tenantKey(tenantID, id)]; ok {
		return e, nil
	}
	return nil, nil
}

func (m *MockEntityRepository) ListSubsidiaries(ctx context.Context, tenantID, parentEntityID string) ([]*domain.Entity, error) {
	if m.ListSubsidiariesFunc != nil {
		return m.ListSubsidiariesFunc(ctx, tenantID, parentEntityID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var subsidiaries []*domain.Entity
	for _, e := range m.entities {
		if e.TenantID == tenantID && e.ParentEntityID == parentEntityID {
			subsidiaries = append(subsidiaries, e)
		}
	}
	return subsidiaries, nil
}

// MockIdempotencyRepository is a mock implementation of IdempotencyRepository.
type MockIdempotencyRepository struct {
	mu      sync.RWMutex
	records map[string]*domain.IdempotencyRecord

	FindByKeyFunc func(ctx context.Context, tenantID, key string) (*domain.IdempotencyRecord, error)
	SaveFunc      func(ctx context.Context, record *domain.IdempotencyRecord) error

	SaveCalls int
}

func NewMockIdempotencyRepository() *MockIdempotencyRepository {
	return &MockIdempotencyRepository{
		records: make(map[string]*domain.IdempotencyRecord),
	}
}

func (m *MockIdempotencyRepository) FindByKey(ctx context.Context, tenantID, key string) (*domain.IdempotencyRecord, error) {
	if m.FindByKeyFunc != nil {
		return m.FindByKeyFunc(ctx, tenantID, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.records[tenantKey(tenantID, key)]; ok {
		return r, nil
	}
	return nil, domain.ErrIdempotencyRecordNotFound
}

func (m *MockIdempotencyRepository) Save(ctx context.Context, record *domain.IdempotencyRecord) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, record)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCalls++
	k := tenantKey(record.TenantID, record.IdempotencyKey)
	if _, ok := m.records[k]; ok {
		return domain.ErrDuplicateIdempotencyKey
	}
	m.records[k] = record
	return nil
}

// MockIdempotencyCache is a mock implementation of IdempotencyCache.
type MockIdempotencyCache struct {
	mu   sync.RWMutex
	data map[string][]byte

	GetFunc func(ctx context.Context, tenantID, key string) ([]byte, error)
	SetFunc func(ctx context.Context, tenantID, key string, result []byte, ttl time.Duration) error
}

func NewMockIdempotencyCache() *MockIdempotencyCache {
	return &MockIdempotencyCache{
		data: make(map[string][]byte),
	}
}

func (m *MockIdempotencyCache) Get(ctx context.Context, tenantID, key string) ([]byte, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, tenantID, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.data[tenantKey(tenantID, key)]; ok {
		return v, nil
	}
	return nil, nil
}

func (m *MockIdempotencyCache) Set(ctx context.Context, tenantID, key string, result []byte, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, tenantID, key, result, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[tenantKey(tenantID, key)] = result
	return nil
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	events []*domain.OutboxEvent

	CreateFunc          func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
	GetUnpublishedFunc  func(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublishedFunc   func(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublishedFunc func(ctx context.Context, before time.Time) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	if m.GetUnpublishedFunc != nil {
		return m.GetUnpublishedFunc(ctx, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var unpublished []*domain.OutboxEvent
	for _, e := range m.events {
		if e.PublishedAt == nil {
			unpublished = append(unpublished, e)
			if len(unpublished) == limit {
				break
			}
		}
	}
	return unpublished, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	if m.MarkPublishedFunc != nil {
		return m.MarkPublishedFunc(ctx, id, publishedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id {
			at := publishedAt
			e.PublishedAt = &at
			return nil
		}
	}
	return nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	if m.DeletePublishedFunc != nil {
		return m.DeletePublishedFunc(ctx, before)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []*domain.OutboxEvent
	for _, e := range m.events {
		if e.PublishedAt == nil || !e.PublishedAt.Before(before) {
			kept = append(kept, e)
		}
	}
	m.events = kept
	return nil
}

// Events returns a snapshot of every staged event.
func (m *MockOutboxRepository) Events() []*domain.OutboxEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.OutboxEvent, len(m.events))
	copy(out, m.events)
	return out
}

// MockAuditRepository is a mock implementation of AuditRepository.
type MockAuditRepository struct {
	mu   sync.RWMutex
	logs []*domain.AuditLog

	CreateFunc   func(ctx context.Context, log *domain.AuditLog) error
	CreateTxFunc func(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error
	ListFunc     func(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{}
}

func (m *MockAuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, log)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, log)
	return nil
}

func (m *MockAuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, log)
	}
	return m.Create(ctx, log)
}

func (m *MockAuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var logs []*domain.AuditLog
	for _, l := range m.logs {
		if filter.TenantID != "" && l.TenantID != filter.TenantID {
			continue
		}
		if filter.Action != "" && l.Action != filter.Action {
			continue
		}
		logs = append(logs, l)
	}
	return logs, nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("mock-id-%d", m.counter)
}

// MockClock is a mock implementation of Clock.
type MockClock struct {
	NowFunc func() time.Time

	mu      sync.Mutex
	current time.Time
}

func NewMockClock(now time.Time) *MockClock {
	return &MockClock{current: now}
}

func (m *MockClock) Now() time.Time {
	if m.NowFunc != nil {
		return m.NowFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Advance moves the clock forward.
func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.current.Add(d)
}

// MockRetrier is a mock implementation of Retrier that runs the
// operation exactly once.
type MockRetrier struct {
	RetryFunc func(ctx context.Context, operation func() error) error
}

func NewMockRetrier() *MockRetrier {
	return &MockRetrier{}
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	if m.RetryFunc != nil {
		return m.RetryFunc(ctx, operation)
	}
	return operation()
}
