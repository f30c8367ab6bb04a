package billing

import (
	"sync"
	"time"

	"github.com/mahendrapn/GajiHub/app/models"
	"gorm.io/gorm"
)

// memRepository is an in-memory Repository used by service and reconciler
// tests. WithinTransaction serializes on a single mutex, which models the
// row-lock isolation the GORM implementation gets from the database.
type memRepository struct {
	mu        sync.Mutex
	companies map[uint]*models.Company
	txs       map[string]*models.SubscriptionTransaction
	nextTxID  uint
}

func newMemRepository() *memRepository {
	return &memRepository{
		companies: make(map[uint]*models.Company),
		txs:       make(map[string]*models.SubscriptionTransaction),
		nextTxID:  1,
	}
}

func (m *memRepository) addCompany(c *models.Company) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.companies[c.ID] = copyCompany(c)
}

func (m *memRepository) company(id uint) *models.Company {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyCompany(m.companies[id])
}

func (m *memRepository) transaction(orderID string) *models.SubscriptionTransaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	if tx, ok := m.txs[orderID]; ok {
		return copyTransaction(tx)
	}
	return nil
}

func (m *memRepository) WithinTransaction(fn func(Repository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(&memTx{repo: m})
}

func (m *memRepository) GetCompanyByID(id uint) (*models.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memTx{repo: m}).GetCompanyByID(id)
}

func (m *memRepository) GetCompanyForUpdate(id uint) (*models.Company, error) {
	return m.GetCompanyByID(id)
}

func (m *memRepository) SaveCompany(company *models.Company) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memTx{repo: m}).SaveCompany(company)
}

func (m *memRepository) CreateTransaction(tx *models.SubscriptionTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memTx{repo: m}).CreateTransaction(tx)
}

func (m *memRepository) GetTransactionByOrderID(orderID string) (*models.SubscriptionTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memTx{repo: m}).GetTransactionByOrderID(orderID)
}

func (m *memRepository) GetTransactionByOrderIDForUpdate(orderID string) (*models.SubscriptionTransaction, error) {
	return m.GetTransactionByOrderID(orderID)
}

func (m *memRepository) SaveTransaction(tx *models.SubscriptionTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memTx{repo: m}).SaveTransaction(tx)
}

func (m *memRepository) ListTransactionsByCompany(companyID uint, limit int) ([]models.SubscriptionTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memTx{repo: m}).ListTransactionsByCompany(companyID, limit)
}

func (m *memRepository) ExpireLapsedCompanies(now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memTx{repo: m}).ExpireLapsedCompanies(now)
}

// memTx operates on the parent's maps without locking; callers hold the lock.
type memTx struct {
	repo *memRepository
}

func (t *memTx) WithinTransaction(fn func(Repository) error) error {
	return fn(t)
}

func (t *memTx) GetCompanyByID(id uint) (*models.Company, error) {
	if c, ok := t.repo.companies[id]; ok {
		return copyCompany(c), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (t *memTx) GetCompanyForUpdate(id uint) (*models.Company, error) {
	return t.GetCompanyByID(id)
}

func (t *memTx) SaveCompany(company *models.Company) error {
	t.repo.companies[company.ID] = copyCompany(company)
	return nil
}

func (t *memTx) CreateTransaction(tx *models.SubscriptionTransaction) error {
	if _, exists := t.repo.txs[tx.OrderID]; exists {
		return gorm.ErrDuplicatedKey
	}
	tx.ID = t.repo.nextTxID
	t.repo.nextTxID++
	tx.CreatedAt = time.Now()
	t.repo.txs[tx.OrderID] = copyTransaction(tx)
	return nil
}

func (t *memTx) GetTransactionByOrderID(orderID string) (*models.SubscriptionTransaction, error) {
	if tx, ok := t.repo.txs[orderID]; ok {
		return copyTransaction(tx), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (t *memTx) GetTransactionByOrderIDForUpdate(orderID string) (*models.SubscriptionTransaction, error) {
	return t.GetTransactionByOrderID(orderID)
}

func (t *memTx) SaveTransaction(tx *models.SubscriptionTransaction) error {
	t.repo.txs[tx.OrderID] = copyTransaction(tx)
	return nil
}

func (t *memTx) ListTransactionsByCompany(companyID uint, limit int) ([]models.SubscriptionTransaction, error) {
	var out []models.SubscriptionTransaction
	for _, tx := range t.repo.txs {
		if tx.CompanyID == companyID {
			out = append(out, *copyTransaction(tx))
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (t *memTx) ExpireLapsedCompanies(now time.Time) (int64, error) {
	var n int64
	for _, c := range t.repo.companies {
		if c.PlanLevel > 0 && c.PlanExpiresAt != nil && !c.PlanExpiresAt.After(now) {
			c.PlanLevel = 0
			n++
		}
	}
	return n, nil
}

func copyCompany(c *models.Company) *models.Company {
	if c == nil {
		return nil
	}
	cp := *c
	if c.PlanExpiresAt != nil {
		t := *c.PlanExpiresAt
		cp.PlanExpiresAt = &t
	}
	return &cp
}

func copyTransaction(tx *models.SubscriptionTransaction) *models.SubscriptionTransaction {
	cp := *tx
	for _, pair := range []struct {
		src *time.Time
		dst **time.Time
	}{
		{tx.PaidAt, &cp.PaidAt},
		{tx.PeriodStart, &cp.PeriodStart},
		{tx.PeriodEnd, &cp.PeriodEnd},
	} {
		if pair.src != nil {
			t := *pair.src
			*pair.dst = &t
		}
	}
	return &cp
}
