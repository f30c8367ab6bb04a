package repository

import (
	"github.com/mahendrapn/GajiHub/app/models"
)

// CompanyRepository defines the interface for tenant-related database
// operations used outside the billing engine (auth middleware, admin views).
type CompanyRepository interface {
	Create(company *models.Company) error
	GetByID(id uint) (*models.Company, error)
	GetByUUID(uuid string) (*models.Company, error)
	GetByEmail(email string) (*models.Company, error)
	GetByAPIKeyHash(hash string) (*models.Company, error)
	Update(company *models.Company) error
	List(offset, limit int) ([]models.Company, error)
	Count() (int64, error)
}
