package handler

import (
	"time"

	"github.com/clepigdo/Simig-Webapps/internal/model"
	"github.com/clepigdo/Simig-Webapps/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionHandler struct {
	service service.LedgerService
}

func NewTransactionHandler(s service.LedgerService) *TransactionHandler {
	return &TransactionHandler{service: s}
}

// TransactionRequest is the request body for both ledgers.
type TransactionRequest struct {
	Product  uuid.UUID       `json:"product"`
	Date     string          `json:"date"` // YYYY-MM-DD
	Quantity decimal.Decimal `json:"quantity"`
	Notes    string          `json:"notes"`
}

func (r *TransactionRequest) toRecord() (model.TxRecord, error) {
	date, err := time.Parse("2006-01-02", r.Date)
	if err != nil {
		return model.TxRecord{}, err
	}
	return model.TxRecord{
		ProductID: r.Product,
		Date:      date,
		Quantity:  r.Quantity,
		Notes:     r.Notes,
	}, nil
}

func parseTransactionBody(c *fiber.Ctx) (model.TxRecord, error) {
	var req TransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return model.TxRecord{}, err
	}
	return req.toRecord()
}

// ---- Inbound ----

func (h *TransactionHandler) GetTransactionsIn(c *fiber.Ctx) error {
	transactions, err := h.service.GetAllIn()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}

	responses := make([]model.TransactionResponse, len(transactions))
	for i := range transactions {
		responses[i] = transactions[i].ToResponse()
	}
	return c.JSON(responses)
}

func (h *TransactionHandler) GetTransactionIn(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}

	tx, err := h.service.GetInByID(id)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Transaction not found"})
	}
	return c.JSON(tx.ToResponse())
}

func (h *TransactionHandler) CreateTransactionIn(c *fiber.Ctx) error {
	rec, err := parseTransactionBody(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body, date must be YYYY-MM-DD"})
	}

	tx := &model.TransactionIn{TxRecord: rec}
	if err := h.service.CreateIn(tx); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(201).JSON(tx.ToResponse())
}

func (h *TransactionHandler) UpdateTransactionIn(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}

	rec, err := parseTransactionBody(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body, date must be YYYY-MM-DD"})
	}

	updated, err := h.service.UpdateIn(id, &model.TransactionIn{TxRecord: rec})
	if err != nil {
		if err == service.ErrTransactionNotFound {
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(updated.ToResponse())
}

func (h *TransactionHandler) DeleteTransactionIn(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}

	if err := h.service.DeleteIn(id); err != nil {
		if err == service.ErrTransactionNotFound {
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.SendStatus(204)
}

// ---- Outbound ----

func (h *TransactionHandler) GetTransactionsOut(c *fiber.Ctx) error {
	transactions, err := h.service.GetAllOut()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}

	responses := make([]model.TransactionResponse, len(transactions))
	for i := range transactions {
		responses[i] = transactions[i].ToResponse()
	}
	return c.JSON(responses)
}

func (h *TransactionHandler) GetTransactionOut(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}

	tx, err := h.service.GetOutByID(id)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Transaction not found"})
	}
	return c.JSON(tx.ToResponse())
}

func (h *TransactionHandler) CreateTransactionOut(c *fiber.Ctx) error {
	rec, err := parseTransactionBody(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body, date must be YYYY-MM-DD"})
	}

	tx := &model.TransactionOut{TxRecord: rec}
	if err := h.service.CreateOut(tx); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(201).JSON(tx.ToResponse())
}

func (h *TransactionHandler) UpdateTransactionOut(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}

	rec, err := parseTransactionBody(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body, date must be YYYY-MM-DD"})
	}

	updated, err := h.service.UpdateOut(id, &model.TransactionOut{TxRecord: rec})
	if err != nil {
		if err == service.ErrTransactionNotFound {
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(updated.ToResponse())
}

func (h *TransactionHandler) DeleteTransactionOut(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}

	if err := h.service.DeleteOut(id); err != nil {
		if err == service.ErrTransactionNotFound {
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.SendStatus(204)
}
