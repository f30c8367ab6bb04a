package billing

import (
	"time"

	"github.com/mahendrapn/GajiHub/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides the DB operations used by the billing service. The
// ForUpdate variants take a row lock and are only meaningful inside
// WithinTransaction; the datastore's transaction isolation is what makes the
// paid_at read-then-set guard safe, not any application-level lock.
type Repository interface {
	WithinTransaction(fn func(Repository) error) error

	GetCompanyByID(id uint) (*models.Company, error)
	GetCompanyForUpdate(id uint) (*models.Company, error)
	SaveCompany(company *models.Company) error

	CreateTransaction(tx *models.SubscriptionTransaction) error
	GetTransactionByOrderID(orderID string) (*models.SubscriptionTransaction, error)
	GetTransactionByOrderIDForUpdate(orderID string) (*models.SubscriptionTransaction, error)
	SaveTransaction(tx *models.SubscriptionTransaction) error
	ListTransactionsByCompany(companyID uint, limit int) ([]models.SubscriptionTransaction, error)

	ExpireLapsedCompanies(now time.Time) (int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a billing repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) WithinTransaction(fn func(Repository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepository{db: tx})
	})
}

func (r *gormRepository) GetCompanyByID(id uint) (*models.Company, error) {
	var company models.Company
	if err := r.db.First(&company, id).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *gormRepository) GetCompanyForUpdate(id uint) (*models.Company, error) {
	var company models.Company
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&company, id).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *gormRepository) SaveCompany(company *models.Company) error {
	return r.db.Save(company).Error
}

func (r *gormRepository) CreateTransaction(tx *models.SubscriptionTransaction) error {
	return r.db.Create(tx).Error
}

func (r *gormRepository) GetTransactionByOrderID(orderID string) (*models.SubscriptionTransaction, error) {
	var tx models.SubscriptionTransaction
	if err := r.db.Where("order_id = ?", orderID).First(&tx).Error; err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *gormRepository) GetTransactionByOrderIDForUpdate(orderID string) (*models.SubscriptionTransaction, error) {
	var tx models.SubscriptionTransaction
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("order_id = ?", orderID).First(&tx).Error; err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *gormRepository) SaveTransaction(tx *models.SubscriptionTransaction) error {
	return r.db.Save(tx).Error
}

func (r *gormRepository) ListTransactionsByCompany(companyID uint, limit int) ([]models.SubscriptionTransaction, error) {
	var txs []models.SubscriptionTransaction
	q := r.db.Where("company_id = ?", companyID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&txs).Error
	return txs, err
}

func (r *gormRepository) ExpireLapsedCompanies(now time.Time) (int64, error) {
	res := r.db.Model(&models.Company{}).
		Where("plan_level > 0 AND plan_expires_at IS NOT NULL AND plan_expires_at <= ?", now).
		Update("plan_level", 0)
	return res.RowsAffected, res.Error
}
