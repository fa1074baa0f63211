package service

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/clepigdo/Simig-Webapps/internal/model"
	"github.com/clepigdo/Simig-Webapps/internal/repository"
	"github.com/clepigdo/Simig-Webapps/internal/ws"
	"github.com/clepigdo/Simig-Webapps/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrProductNotFound     = errors.New("product not found")
	ErrTransactionNotFound = errors.New("transaction not found")
)

// LedgerService owns every write to the two transaction ledgers. Each write
// runs one reconciliation cycle that keeps Product.Weight equal to the net
// signed sum of the product's surviving transactions. The cycle is a single
// database transaction: either the row write and the weight adjustment both
// commit, or neither does.
type LedgerService interface {
	CreateIn(req *model.TransactionIn) error
	CreateOut(req *model.TransactionOut) error
	UpdateIn(id uuid.UUID, req *model.TransactionIn) (*model.TransactionIn, error)
	UpdateOut(id uuid.UUID, req *model.TransactionOut) (*model.TransactionOut, error)
	DeleteIn(id uuid.UUID) error
	DeleteOut(id uuid.UUID) error

	GetAllIn() ([]model.TransactionIn, error)
	GetAllOut() ([]model.TransactionOut, error)
	GetInByID(id uuid.UUID) (*model.TransactionIn, error)
	GetOutByID(id uuid.UUID) (*model.TransactionOut, error)
}

type ledgerService struct {
	productRepo repository.ProductRepository
	txRepo      repository.TransactionRepository
	db          *gorm.DB
	wsHub       *ws.Hub
}

func NewLedgerService(pRepo repository.ProductRepository, tRepo repository.TransactionRepository, db *gorm.DB, hub *ws.Hub) LedgerService {
	return &ledgerService{
		productRepo: pRepo,
		txRepo:      tRepo,
		db:          db,
		wsHub:       hub,
	}
}

func validationError(errs []*validator.ErrorResponse) error {
	firstErr := errs[0]
	return fmt.Errorf("Validation failed: Field '%s' failed on tag '%s'", firstErr.FailedField, firstErr.Tag)
}

// lockForUpdate takes a pessimistic row lock on engines that support it.
// SQLite has no FOR UPDATE; its writers serialize on the database lock anyway.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// applyDelta re-reads the product fresh from the database inside tx and
// persists weight + delta. The fresh read is what keeps two steps of one
// cycle touching the same product serialized instead of losing an update
// to a stale base value.
func (s *ledgerService) applyDelta(tx *gorm.DB, productID uuid.UUID, delta decimal.Decimal) error {
	var product model.Product
	if err := lockForUpdate(tx).First(&product, "id = ?", productID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrProductNotFound
		}
		return err
	}
	return s.productRepo.UpdateWeight(tx, product.ID, product.Weight.Add(delta))
}

// undoDelta reverses a previously applied effect. A product that no longer
// exists counts as already reconciled, not as a failure.
func (s *ledgerService) undoDelta(tx *gorm.DB, productID uuid.UUID, delta decimal.Decimal) error {
	err := s.applyDelta(tx, productID, delta)
	if err == ErrProductNotFound {
		return nil
	}
	return err
}

func (s *ledgerService) ensureProductExists(tx *gorm.DB, productID uuid.UUID) error {
	var product model.Product
	if err := tx.First(&product, "id = ?", productID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrProductNotFound
		}
		return err
	}
	return nil
}

// create persists a new transaction row and applies its directional effect.
func (s *ledgerService) create(rec *model.TxRecord, row interface{}, kind model.TxKind) error {
	if errs := validator.ValidateStruct(row); len(errs) > 0 {
		return validationError(errs)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Unknown product is rejected before any weight mutation
		if err := s.ensureProductExists(tx, rec.ProductID); err != nil {
			return err
		}
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		return s.applyDelta(tx, rec.ProductID, kind.Sign().Mul(rec.Quantity))
	})
	if err != nil {
		return err
	}

	s.broadcastStockUpdate("transaction_created", kind, rec)
	return nil
}

func (s *ledgerService) CreateIn(req *model.TransactionIn) error {
	return s.create(&req.TxRecord, req, model.TxIn)
}

func (s *ledgerService) CreateOut(req *model.TransactionOut) error {
	return s.create(&req.TxRecord, req, model.TxOut)
}

// UpdateIn runs the full cycle for an inbound edit: undo the old effect on
// the old product, overwrite the row, apply the new effect on the new
// product. Old and new product may be different rows.
func (s *ledgerService) UpdateIn(id uuid.UUID, req *model.TransactionIn) (*model.TransactionIn, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	var updated *model.TransactionIn
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.ensureProductExists(tx, req.ProductID); err != nil {
			return err
		}

		var old model.TransactionIn
		if err := tx.First(&old, "id = ?", id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrTransactionNotFound
			}
			return err
		}

		sign := model.TxIn.Sign()
		if err := s.undoDelta(tx, old.ProductID, sign.Mul(old.Quantity).Neg()); err != nil {
			return err
		}

		// Same identity, new field values. CreatedAt stays untouched.
		old.ProductID = req.ProductID
		old.Date = req.Date
		old.Quantity = req.Quantity
		old.Notes = req.Notes
		if err := tx.Save(&old).Error; err != nil {
			return err
		}

		if err := s.applyDelta(tx, old.ProductID, sign.Mul(old.Quantity)); err != nil {
			return err
		}

		updated = &old
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcastStockUpdate("transaction_updated", model.TxIn, &updated.TxRecord)
	return updated, nil
}

// UpdateOut mirrors UpdateIn for the outbound ledger.
func (s *ledgerService) UpdateOut(id uuid.UUID, req *model.TransactionOut) (*model.TransactionOut, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	var updated *model.TransactionOut
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.ensureProductExists(tx, req.ProductID); err != nil {
			return err
		}

		var old model.TransactionOut
		if err := tx.First(&old, "id = ?", id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrTransactionNotFound
			}
			return err
		}

		sign := model.TxOut.Sign()
		if err := s.undoDelta(tx, old.ProductID, sign.Mul(old.Quantity).Neg()); err != nil {
			return err
		}

		old.ProductID = req.ProductID
		old.Date = req.Date
		old.Quantity = req.Quantity
		old.Notes = req.Notes
		if err := tx.Save(&old).Error; err != nil {
			return err
		}

		if err := s.applyDelta(tx, old.ProductID, sign.Mul(old.Quantity)); err != nil {
			return err
		}

		updated = &old
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcastStockUpdate("transaction_updated", model.TxOut, &updated.TxRecord)
	return updated, nil
}

func (s *ledgerService) DeleteIn(id uuid.UUID) error {
	var rec model.TransactionIn
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&rec, "id = ?", id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrTransactionNotFound
			}
			return err
		}
		if err := s.applyDelta(tx, rec.ProductID, model.TxIn.Sign().Mul(rec.Quantity).Neg()); err != nil {
			return err
		}
		return tx.Delete(&rec).Error
	})
	if err != nil {
		return err
	}

	s.broadcastStockUpdate("transaction_deleted", model.TxIn, &rec.TxRecord)
	return nil
}

func (s *ledgerService) DeleteOut(id uuid.UUID) error {
	var rec model.TransactionOut
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&rec, "id = ?", id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrTransactionNotFound
			}
			return err
		}
		if err := s.applyDelta(tx, rec.ProductID, model.TxOut.Sign().Mul(rec.Quantity).Neg()); err != nil {
			return err
		}
		return tx.Delete(&rec).Error
	})
	if err != nil {
		return err
	}

	s.broadcastStockUpdate("transaction_deleted", model.TxOut, &rec.TxRecord)
	return nil
}

func (s *ledgerService) GetAllIn() ([]model.TransactionIn, error) {
	return s.txRepo.FindAllIn()
}

func (s *ledgerService) GetAllOut() ([]model.TransactionOut, error) {
	return s.txRepo.FindAllOut()
}

func (s *ledgerService) GetInByID(id uuid.UUID) (*model.TransactionIn, error) {
	return s.txRepo.FindInByID(id)
}

func (s *ledgerService) GetOutByID(id uuid.UUID) (*model.TransactionOut, error) {
	return s.txRepo.FindOutByID(id)
}

func (s *ledgerService) broadcastStockUpdate(action string, kind model.TxKind, rec *model.TxRecord) {
	if s.wsHub == nil {
		return
	}
	go func() {
		payload := map[string]interface{}{
			"type":   "stock_update",
			"action": action,
			"kind":   string(kind),
			"transaction": map[string]interface{}{
				"id":         rec.ID,
				"product_id": rec.ProductID,
				"quantity":   rec.Quantity,
				"date":       rec.Date.Format("2006-01-02"),
			},
		}
		msg, _ := json.Marshal(payload)
		s.wsHub.Broadcast <- msg
	}()
}
