package customers

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/anandkhatri/ledgerbook-backend/pkg/db/models"
	pkgerrors "github.com/anandkhatri/ledgerbook-backend/pkg/errors"
	"github.com/anandkhatri/ledgerbook-backend/pkg/pagination"
)

// Service exposes customer CRUD with tenant scoping and soft deletion.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateCustomerInput) (*CustomerDTO, error)
	Get(ctx context.Context, userID, customerID uuid.UUID) (*CustomerDTO, error)
	List(ctx context.Context, userID uuid.UUID) ([]CustomerDTO, error)
	Update(ctx context.Context, userID, customerID uuid.UUID, input UpdateCustomerInput) (*CustomerDTO, error)
	Delete(ctx context.Context, userID, customerID uuid.UUID) error
	Ledger(ctx context.Context, userID, customerID uuid.UUID) (*CustomerLedgerDTO, error)
}

type transactionBook interface {
	ListActiveByCustomer(ctx context.Context, userID, customerID uuid.UUID) ([]models.SaleTransaction, error)
}

type paymentBook interface {
	List(ctx context.Context, userID uuid.UUID, params pagination.Params, customerID *uuid.UUID) ([]models.PaymentRecord, string, error)
}

type service struct {
	repo         Repository
	transactions transactionBook
	payments     paymentBook
}

// NewService wires a customers service with its repository and the read-only
// transaction and payment sources backing the ledger view.
func NewService(repo Repository, transactions transactionBook, payments paymentBook) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customers repository required")
	}
	if transactions == nil {
		return nil, fmt.Errorf("transactions repository required")
	}
	if payments == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	return &service{repo: repo, transactions: transactions, payments: payments}, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateCustomerInput) (*CustomerDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	customer := &models.Customer{
		UserID:  userID,
		Name:    input.Name,
		Phone:   input.Phone,
		Address: input.Address,
	}
	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create customer")
	}
	return toDTO(customer), nil
}

func (s *service) Get(ctx context.Context, userID, customerID uuid.UUID) (*CustomerDTO, error) {
	customer, err := s.load(ctx, userID, customerID)
	if err != nil {
		return nil, err
	}
	return toDTO(customer), nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]CustomerDTO, error) {
	records, err := s.repo.List(ctx, userID, false)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customers")
	}
	dtos := make([]CustomerDTO, 0, len(records))
	for i := range records {
		dtos = append(dtos, *toDTO(&records[i]))
	}
	return dtos, nil
}

func (s *service) Update(ctx context.Context, userID, customerID uuid.UUID, input UpdateCustomerInput) (*CustomerDTO, error) {
	customer, err := s.load(ctx, userID, customerID)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		customer.Name = *input.Name
	}
	if input.Phone != nil {
		customer.Phone = input.Phone
	}
	if input.Address != nil {
		customer.Address = input.Address
	}
	if err := s.repo.Update(ctx, customer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update customer")
	}
	return toDTO(customer), nil
}

func (s *service) Delete(ctx context.Context, userID, customerID uuid.UUID) error {
	if _, err := s.load(ctx, userID, customerID); err != nil {
		return err
	}
	if err := s.repo.MarkDeleted(ctx, userID, customerID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete customer")
	}
	return nil
}

// Ledger returns the statement view for one customer: stored balance plus
// every active transaction and the most recent payments against them.
func (s *service) Ledger(ctx context.Context, userID, customerID uuid.UUID) (*CustomerLedgerDTO, error) {
	customer, err := s.load(ctx, userID, customerID)
	if err != nil {
		return nil, err
	}

	txns, err := s.transactions.ListActiveByCustomer(ctx, userID, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customer transactions")
	}
	records, _, err := s.payments.List(ctx, userID, pagination.Params{Limit: pagination.MaxLimit}, &customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customer payments")
	}

	ledger := &CustomerLedgerDTO{
		Customer:     *toDTO(customer),
		Transactions: make([]LedgerTransactionDTO, 0, len(txns)),
		Payments:     make([]LedgerPaymentDTO, 0, len(records)),
	}
	for i := range txns {
		ledger.Transactions = append(ledger.Transactions, LedgerTransactionDTO{
			ID:              txns[i].ID,
			GrandTotal:      txns[i].GrandTotal,
			PaymentReceived: txns[i].PaymentReceived,
			BalanceAmount:   txns[i].BalanceAmount,
			TransactionDate: txns[i].TransactionDate,
		})
	}
	for i := range records {
		ledger.Payments = append(ledger.Payments, LedgerPaymentDTO{
			ID:              records[i].ID,
			PaymentAmount:   records[i].PaymentAmount,
			AmountApplied:   records[i].AmountApplied,
			RemainingAmount: records[i].RemainingAmount,
			Mode:            string(records[i].Mode),
			CreatedAt:       records[i].CreatedAt,
		})
	}
	return ledger, nil
}

func (s *service) load(ctx context.Context, userID, customerID uuid.UUID) (*models.Customer, error) {
	if userID == uuid.Nil || customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id and customer id required")
	}
	customer, err := s.repo.FindByID(ctx, userID, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}
	if customer.IsDeleted {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}
	return customer, nil
}

func toDTO(customer *models.Customer) *CustomerDTO {
	return &CustomerDTO{
		ID:                 customer.ID,
		Name:               customer.Name,
		Phone:              customer.Phone,
		Address:            customer.Address,
		OutstandingBalance: customer.OutstandingBalance,
		HasAdvanceCredit:   customer.OutstandingBalance < 0,
		CreatedAt:          customer.CreatedAt,
	}
}
