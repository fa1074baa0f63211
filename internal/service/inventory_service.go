package service

import (
	"errors"

	"github.com/clepigdo/Simig-Webapps/internal/model"
	"github.com/clepigdo/Simig-Webapps/internal/repository"
	"github.com/clepigdo/Simig-Webapps/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
)

// InventoryService covers category and product CRUD. Product weight never
// goes through here: it starts at zero and is only ever moved by the ledger
// reconciliation cycle.
type InventoryService interface {
	CreateCategory(req *model.Category) error
	UpdateCategory(id uuid.UUID, req *model.Category) (*model.Category, error)
	DeleteCategory(id uuid.UUID) error
	GetAllCategories() ([]model.Category, error)
	GetCategoryByID(id uuid.UUID) (*model.Category, error)

	CreateProduct(req *model.Product) error
	UpdateProduct(id uuid.UUID, req *model.Product) (*model.Product, error)
	DeleteProduct(id uuid.UUID) error
	GetAllProducts() ([]model.Product, error)
	GetProductByID(id uuid.UUID) (*model.Product, error)
}

type inventoryService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
}

func NewInventoryService(cRepo repository.CategoryRepository, pRepo repository.ProductRepository) InventoryService {
	return &inventoryService{
		categoryRepo: cRepo,
		productRepo:  pRepo,
	}
}

func (s *inventoryService) CreateCategory(req *model.Category) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return validationError(errs)
	}
	return s.categoryRepo.Create(req)
}

func (s *inventoryService) UpdateCategory(id uuid.UUID, req *model.Category) (*model.Category, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	existing, err := s.categoryRepo.FindByID(id)
	if err != nil {
		return nil, ErrCategoryNotFound
	}

	existing.Name = req.Name
	if err := s.categoryRepo.Update(existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *inventoryService) DeleteCategory(id uuid.UUID) error {
	if err := s.categoryRepo.Delete(id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrCategoryNotFound
		}
		return err
	}
	return nil
}

func (s *inventoryService) GetAllCategories() ([]model.Category, error) {
	return s.categoryRepo.FindAll()
}

func (s *inventoryService) GetCategoryByID(id uuid.UUID) (*model.Category, error) {
	category, err := s.categoryRepo.FindByID(id)
	if err != nil {
		return nil, ErrCategoryNotFound
	}
	return category, nil
}

func (s *inventoryService) CreateProduct(req *model.Product) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return validationError(errs)
	}

	if _, err := s.categoryRepo.FindByID(req.CategoryID); err != nil {
		return ErrCategoryNotFound
	}

	// Weight always starts at zero; transactions are the only mutation path
	req.Weight = decimal.Zero

	return s.productRepo.Create(req)
}

func (s *inventoryService) UpdateProduct(id uuid.UUID, req *model.Product) (*model.Product, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	existing, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, ErrProductNotFound
	}

	if _, err := s.categoryRepo.FindByID(req.CategoryID); err != nil {
		return nil, ErrCategoryNotFound
	}

	// Weight deliberately not copied from the request
	existing.CategoryID = req.CategoryID
	existing.Category = nil
	existing.Name = req.Name
	existing.Color = req.Color
	existing.PricePerKg = req.PricePerKg

	if err := s.productRepo.Update(existing); err != nil {
		return nil, err
	}
	return s.productRepo.FindByID(id)
}

func (s *inventoryService) DeleteProduct(id uuid.UUID) error {
	if err := s.productRepo.Delete(id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrProductNotFound
		}
		return err
	}
	return nil
}

func (s *inventoryService) GetAllProducts() ([]model.Product, error) {
	return s.productRepo.FindAll()
}

func (s *inventoryService) GetProductByID(id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}
