package returns

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/anandkhatri/ledgerbook-backend/internal/stock"
	"github.com/anandkhatri/ledgerbook-backend/pkg/db/models"
	"github.com/anandkhatri/ledgerbook-backend/pkg/enums"
	pkgerrors "github.com/anandkhatri/ledgerbook-backend/pkg/errors"
	"github.com/anandkhatri/ledgerbook-backend/pkg/logger"
	"github.com/anandkhatri/ledgerbook-backend/pkg/money"
	"github.com/anandkhatri/ledgerbook-backend/pkg/pagination"
)

// Service is the return engine. A return restocks items, records the profit
// given up at current cost, and credits the refund against the customer ledger.
// Returns never modify the original sale; a refund can push the customer's
// balance negative, which is advance credit.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateReturnInput) (*ReturnDTO, error)
	Get(ctx context.Context, userID, returnID uuid.UUID) (*ReturnDTO, error)
	List(ctx context.Context, userID uuid.UUID, params pagination.Params, customerID *uuid.UUID) (*ReturnList, error)
}

type stockApplier interface {
	Apply(ctx context.Context, input stock.ApplyInput) (*models.StockEntry, error)
}

type customerLedger interface {
	FindByID(ctx context.Context, userID, customerID uuid.UUID) (*models.Customer, error)
	AdjustOutstanding(ctx context.Context, customerID uuid.UUID, delta float64) error
}

type transactionFinder interface {
	FindByID(ctx context.Context, userID, transactionID uuid.UUID) (*models.SaleTransaction, error)
}

type itemFinder interface {
	FindByID(ctx context.Context, userID, itemID uuid.UUID) (*models.Item, error)
}

type service struct {
	repo         Repository
	stock        stockApplier
	customers    customerLedger
	transactions transactionFinder
	items        itemFinder
	logger       *logger.Logger
}

// NewService wires the return engine with its collaborators.
func NewService(repo Repository, stockSvc stockApplier, customers customerLedger, transactions transactionFinder, items itemFinder, log *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("returns repository required")
	}
	if stockSvc == nil {
		return nil, fmt.Errorf("stock service required")
	}
	if customers == nil {
		return nil, fmt.Errorf("customer ledger required")
	}
	if transactions == nil {
		return nil, fmt.Errorf("transactions repository required")
	}
	if items == nil {
		return nil, fmt.Errorf("items repository required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:         repo,
		stock:        stockSvc,
		customers:    customers,
		transactions: transactions,
		items:        items,
		logger:       log,
	}, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateReturnInput) (*ReturnDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	customerID := input.CustomerID
	var origin *models.SaleTransaction
	if input.TransactionID != nil {
		txn, err := s.transactions.FindByID(ctx, userID, *input.TransactionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transaction")
		}
		if txn.IsDeleted {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "cannot return against a deleted transaction")
		}
		origin = txn
		if customerID == nil {
			customerID = txn.CustomerID
		}
	}

	if customerID != nil {
		customer, err := s.customers.FindByID(ctx, userID, *customerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
		}
		if customer.IsDeleted {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
	}

	lines, totalValue, err := s.buildLines(ctx, userID, origin, input.Lines)
	if err != nil {
		return nil, err
	}

	// Refund defaults to the return value but is independently settable in
	// either direction; a restocking fee lowers it, goodwill raises it.
	refund := totalValue
	if input.RefundAmount != nil {
		if *input.RefundAmount <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund amount must be positive")
		}
		refund = money.Round2(*input.RefundAmount)
	}

	record := &models.ReturnRecord{
		UserID:           userID,
		TransactionID:    input.TransactionID,
		CustomerID:       customerID,
		TotalReturnValue: totalValue,
		RefundAmount:     refund,
		LineItems:        lines,
	}
	if input.Notes != "" {
		notes := input.Notes
		record.Notes = &notes
	}

	if err := s.repo.Create(ctx, record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create return")
	}

	for _, line := range record.LineItems {
		_, err := s.stock.Apply(ctx, stock.ApplyInput{
			UserID:    userID,
			ItemID:    line.ItemID,
			Delta:     line.Quantity,
			EntryType: enums.StockEntryReturn,
			Notes:     fmt.Sprintf("return %s", record.ID),
		})
		if err != nil {
			return nil, err
		}
	}

	if customerID != nil && refund != 0 {
		if err := s.customers.AdjustOutstanding(ctx, *customerID, -refund); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "credit customer balance")
		}
	}

	logCtx := s.logger.WithFields(ctx, map[string]any{
		"return_id":     record.ID.String(),
		"refund_amount": record.RefundAmount,
	})
	s.logger.Info(logCtx, "return created")
	return toDTO(record), nil
}

func (s *service) Get(ctx context.Context, userID, returnID uuid.UUID) (*ReturnDTO, error) {
	record, err := s.repo.FindByID(ctx, userID, returnID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "return not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load return")
	}
	return toDTO(record), nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, params pagination.Params, customerID *uuid.UUID) (*ReturnList, error) {
	records, next, err := s.repo.List(ctx, userID, params, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list returns")
	}
	out := make([]ReturnDTO, 0, len(records))
	for i := range records {
		out = append(out, *toDTO(&records[i]))
	}
	return &ReturnList{Returns: out, NextCursor: next}, nil
}

// buildLines resolves each returned line. Unit price comes from the input, then
// the original sale line, then the item's sell price. Profit lost is valued at
// the item's current cost rather than the sale-time snapshot; the books give up
// margin at today's replacement cost.
func (s *service) buildLines(ctx context.Context, userID uuid.UUID, origin *models.SaleTransaction, inputs []ReturnLineInput) ([]models.ReturnLineItem, float64, error) {
	saleLines := make(map[uuid.UUID]models.SaleLineItem)
	if origin != nil {
		for _, line := range origin.LineItems {
			saleLines[line.ItemID] = line
		}
	}

	var total float64
	lines := make([]models.ReturnLineItem, 0, len(inputs))
	for _, input := range inputs {
		item, err := s.items.FindByID(ctx, userID, input.ItemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, 0, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("item %s not found", input.ItemID))
			}
			return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
		}

		// A return is not required to be a strict subset of the original
		// sale; ad-hoc quantities are accepted.
		saleLine, fromSale := saleLines[item.ID]

		price := item.SellPrice
		if fromSale {
			price = saleLine.PricePerUnit
		}
		if input.PricePerUnit != nil {
			price = *input.PricePerUnit
		}
		price = money.Round2(price)

		lines = append(lines, models.ReturnLineItem{
			ItemID:       item.ID,
			Name:         item.Name,
			Quantity:     input.Quantity,
			PricePerUnit: price,
			ProfitLost:   money.Round2(float64(input.Quantity) * (price - item.BuyPrice)),
		})
		total = money.Add(total, float64(input.Quantity)*price)
	}
	return lines, total, nil
}
