package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tokoledger/backend/internal/domain"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrForbidden         = errors.New("admin role required")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// InsufficientStockError carries the quantity that was actually available
// when a sale was rejected, so the transport layer can report it.
type InsufficientStockError struct {
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock. Only %d items available", e.Available)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// TransactionFilter narrows purchase/sale listings. Date bounds are
// inclusive; nil means unbounded.
type TransactionFilter struct {
	CategoryID string
	From       *time.Time
	To         *time.Time
}

type ClosureFilter struct {
	From *time.Time
	To   *time.Time
}

type Repository interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
	FindCategoryByName(ctx context.Context, name string, excludeID string) (*domain.Category, error)
	CreateCategory(ctx context.Context, category domain.Category) (*domain.Category, error)
	UpdateCategory(ctx context.Context, category domain.Category) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	ListPurchases(ctx context.Context, filter TransactionFilter) ([]domain.Purchase, error)
	GetPurchase(ctx context.Context, id string) (*domain.Purchase, error)
	CreatePurchase(ctx context.Context, purchase domain.Purchase) (*domain.Purchase, error)
	UpdatePurchase(ctx context.Context, purchase domain.Purchase) (*domain.Purchase, error)
	DeletePurchase(ctx context.Context, id string) error

	ListSales(ctx context.Context, filter TransactionFilter) ([]domain.Sale, error)
	GetSale(ctx context.Context, id string) (*domain.Sale, error)
	CreateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error)
	UpdateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error)
	DeleteSale(ctx context.Context, id string) error

	ListClosures(ctx context.Context, filter ClosureFilter) ([]domain.ShopClosure, error)
	GetClosure(ctx context.Context, id string) (*domain.ShopClosure, error)
	FindClosureByDay(ctx context.Context, day time.Time, excludeID string) (*domain.ShopClosure, error)
	CreateClosure(ctx context.Context, closure domain.ShopClosure) (*domain.ShopClosure, error)
	UpdateClosure(ctx context.Context, closure domain.ShopClosure) (*domain.ShopClosure, error)
	DeleteClosure(ctx context.Context, id string) error

	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error
}
