package store

import (
	"context"
	"errors"

	"lekhajokha/backend/internal/domain"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("invalid input")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrDuplicatePhone    = errors.New("phone already registered")
	ErrDuplicateEmail    = errors.New("email already registered")
)

// Repository is the persistence collaborator for the ledger. The engine is
// the single writer for sales, purchases, payments and product stock; it
// reads whole collections for projections and issues per-record mutations.
type Repository interface {
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
	GetCustomer(ctx context.Context, id string) (*domain.Customer, error)
	CreateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error)
	UpdateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error)
	// DeleteCustomer removes the customer together with their sales and
	// payments. Stock is not restored for the cascaded sales.
	DeleteCustomer(ctx context.Context, id string) error
	NextCustomerSeq(ctx context.Context) (int, error)

	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	NextProductSeq(ctx context.Context) (int, error)
	// AdjustStock applies signed per-product quantity deltas. Tracked stock
	// is floored at zero; untracked (service) products are left alone.
	AdjustStock(ctx context.Context, deltas map[string]int) error
	SetStock(ctx context.Context, productID string, qty int) error

	ListSales(ctx context.Context) ([]domain.Sale, error)
	GetSale(ctx context.Context, id string) (*domain.Sale, error)
	CreateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error)
	UpdateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error)
	DeleteSale(ctx context.Context, id string) error
	ListSalesByCustomer(ctx context.Context, customerID string) ([]domain.Sale, error)

	ListPurchases(ctx context.Context) ([]domain.Purchase, error)
	GetPurchase(ctx context.Context, id string) (*domain.Purchase, error)
	CreatePurchase(ctx context.Context, purchase domain.Purchase) (*domain.Purchase, error)
	UpdatePurchase(ctx context.Context, purchase domain.Purchase) (*domain.Purchase, error)
	DeletePurchase(ctx context.Context, id string) error

	ListPayments(ctx context.Context) ([]domain.Payment, error)
	CreatePayment(ctx context.Context, payment domain.Payment) (*domain.Payment, error)
	ListPaymentsByCustomer(ctx context.Context, customerID string) ([]domain.Payment, error)

	GetShopInfo(ctx context.Context) (*domain.ShopInfo, error)
	SaveShopInfo(ctx context.Context, info domain.ShopInfo) error

	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	FindUserByEmail(ctx context.Context, email string) (*domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, email string, password string) error
	DeleteUser(ctx context.Context, email string) error
}
