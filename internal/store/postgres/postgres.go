package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"tokoledger/backend/internal/analytics"
	"tokoledger/backend/internal/domain"
	"tokoledger/backend/internal/store"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the schema if it does not exist. The closure table keys
// uniqueness on the local calendar day string, which is computed in Go so
// day boundaries match the rest of the application.
func (s *Store) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS categories (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL UNIQUE,
			created_at  TIMESTAMPTZ NOT NULL,
			updated_at  TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS purchases (
			id                      TEXT PRIMARY KEY,
			date                    TIMESTAMPTZ NOT NULL,
			category_id             TEXT NOT NULL,
			category_name           TEXT NOT NULL,
			quantity                INTEGER NOT NULL,
			total_cost              DOUBLE PRECISION NOT NULL,
			cost_per_item           DOUBLE PRECISION NOT NULL,
			selling_price_per_item  DOUBLE PRECISION NOT NULL,
			supplier                TEXT NOT NULL DEFAULT '',
			created_at              TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_purchases_category_date ON purchases (category_id, date)`,
		`CREATE TABLE IF NOT EXISTS sales (
			id                      TEXT PRIMARY KEY,
			date                    TIMESTAMPTZ NOT NULL,
			category_id             TEXT NOT NULL,
			category_name           TEXT NOT NULL,
			quantity                INTEGER NOT NULL,
			selling_price_per_item  DOUBLE PRECISION NOT NULL,
			total_amount            DOUBLE PRECISION NOT NULL,
			created_at              TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sales_category_date ON sales (category_id, date)`,
		`CREATE TABLE IF NOT EXISTS shop_closures (
			id            TEXT PRIMARY KEY,
			date          TIMESTAMPTZ NOT NULL,
			day           TEXT NOT NULL UNIQUE,
			reason        TEXT NOT NULL,
			description   TEXT NOT NULL DEFAULT '',
			is_full_day   BOOLEAN NOT NULL,
			closed_hours  DOUBLE PRECISION NOT NULL DEFAULT 0,
			created_at    TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			username    TEXT PRIMARY KEY,
			password    TEXT NOT NULL,
			role        TEXT NOT NULL,
			active      BOOLEAN NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// ---- Categories ----

func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, created_at, updated_at
		FROM categories
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]domain.Category, 0, 32)
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *Store) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	var c domain.Category
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, created_at, updated_at
		FROM categories
		WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *Store) FindCategoryByName(ctx context.Context, name string, excludeID string) (*domain.Category, error) {
	var c domain.Category
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, created_at, updated_at
		FROM categories
		WHERE lower(name) = lower($1) AND id <> $2
	`, name, excludeID).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *Store) CreateCategory(ctx context.Context, category domain.Category) (*domain.Category, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, created_at, updated_at)
		VALUES ($1,$2,$3,$4)
	`, category.ID, category.Name, category.CreatedAt, category.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("category already exists: %w", store.ErrValidation)
		}
		return nil, err
	}
	created := category
	return &created, nil
}

func (s *Store) UpdateCategory(ctx context.Context, category domain.Category) (*domain.Category, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE categories
		SET name = $2, updated_at = $3
		WHERE id = $1
	`, category.ID, category.Name, category.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("category name already exists: %w", store.ErrValidation)
		}
		return nil, err
	}
	if err := requireAffected(res); err != nil {
		return nil, err
	}
	updated := category
	return &updated, nil
}

func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// ---- Purchases ----

func (s *Store) ListPurchases(ctx context.Context, filter store.TransactionFilter) ([]domain.Purchase, error) {
	query := `
		SELECT id, date, category_id, category_name, quantity, total_cost, cost_per_item, selling_price_per_item, supplier, created_at
		FROM purchases
	`
	where, args := transactionWhere(filter)
	query += where + ` ORDER BY date DESC, created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	purchases := make([]domain.Purchase, 0, 128)
	for rows.Next() {
		var p domain.Purchase
		if err := rows.Scan(&p.ID, &p.Date, &p.CategoryID, &p.CategoryName, &p.Quantity, &p.TotalCost, &p.CostPerItem, &p.SellingPricePerItem, &p.Supplier, &p.CreatedAt); err != nil {
			return nil, err
		}
		purchases = append(purchases, p)
	}
	return purchases, rows.Err()
}

func (s *Store) GetPurchase(ctx context.Context, id string) (*domain.Purchase, error) {
	var p domain.Purchase
	err := s.db.QueryRowContext(ctx, `
		SELECT id, date, category_id, category_name, quantity, total_cost, cost_per_item, selling_price_per_item, supplier, created_at
		FROM purchases
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Date, &p.CategoryID, &p.CategoryName, &p.Quantity, &p.TotalCost, &p.CostPerItem, &p.SellingPricePerItem, &p.Supplier, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *Store) CreatePurchase(ctx context.Context, purchase domain.Purchase) (*domain.Purchase, error) {
	purchase.Recalc()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO purchases (id, date, category_id, category_name, quantity, total_cost, cost_per_item, selling_price_per_item, supplier, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, purchase.ID, purchase.Date, purchase.CategoryID, purchase.CategoryName, purchase.Quantity, purchase.TotalCost, purchase.CostPerItem, purchase.SellingPricePerItem, purchase.Supplier, purchase.CreatedAt)
	if err != nil {
		return nil, err
	}
	created := purchase
	return &created, nil
}

func (s *Store) UpdatePurchase(ctx context.Context, purchase domain.Purchase) (*domain.Purchase, error) {
	purchase.Recalc()
	res, err := s.db.ExecContext(ctx, `
		UPDATE purchases
		SET date = $2, category_id = $3, category_name = $4, quantity = $5, total_cost = $6, cost_per_item = $7, selling_price_per_item = $8, supplier = $9
		WHERE id = $1
	`, purchase.ID, purchase.Date, purchase.CategoryID, purchase.CategoryName, purchase.Quantity, purchase.TotalCost, purchase.CostPerItem, purchase.SellingPricePerItem, purchase.Supplier)
	if err != nil {
		return nil, err
	}
	if err := requireAffected(res); err != nil {
		return nil, err
	}
	updated := purchase
	return &updated, nil
}

func (s *Store) DeletePurchase(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM purchases WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// ---- Sales ----

func (s *Store) ListSales(ctx context.Context, filter store.TransactionFilter) ([]domain.Sale, error) {
	query := `
		SELECT id, date, category_id, category_name, quantity, selling_price_per_item, total_amount, created_at
		FROM sales
	`
	where, args := transactionWhere(filter)
	query += where + ` ORDER BY date DESC, created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sales := make([]domain.Sale, 0, 128)
	for rows.Next() {
		var sale domain.Sale
		if err := rows.Scan(&sale.ID, &sale.Date, &sale.CategoryID, &sale.CategoryName, &sale.Quantity, &sale.SellingPricePerItem, &sale.TotalAmount, &sale.CreatedAt); err != nil {
			return nil, err
		}
		sales = append(sales, sale)
	}
	return sales, rows.Err()
}

func (s *Store) GetSale(ctx context.Context, id string) (*domain.Sale, error) {
	var sale domain.Sale
	err := s.db.QueryRowContext(ctx, `
		SELECT id, date, category_id, category_name, quantity, selling_price_per_item, total_amount, created_at
		FROM sales
		WHERE id = $1
	`, id).Scan(&sale.ID, &sale.Date, &sale.CategoryID, &sale.CategoryName, &sale.Quantity, &sale.SellingPricePerItem, &sale.TotalAmount, &sale.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &sale, nil
}

func (s *Store) CreateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error) {
	sale.Recalc()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sales (id, date, category_id, category_name, quantity, selling_price_per_item, total_amount, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, sale.ID, sale.Date, sale.CategoryID, sale.CategoryName, sale.Quantity, sale.SellingPricePerItem, sale.TotalAmount, sale.CreatedAt)
	if err != nil {
		return nil, err
	}
	created := sale
	return &created, nil
}

func (s *Store) UpdateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error) {
	sale.Recalc()
	res, err := s.db.ExecContext(ctx, `
		UPDATE sales
		SET date = $2, category_id = $3, category_name = $4, quantity = $5, selling_price_per_item = $6, total_amount = $7
		WHERE id = $1
	`, sale.ID, sale.Date, sale.CategoryID, sale.CategoryName, sale.Quantity, sale.SellingPricePerItem, sale.TotalAmount)
	if err != nil {
		return nil, err
	}
	if err := requireAffected(res); err != nil {
		return nil, err
	}
	updated := sale
	return &updated, nil
}

func (s *Store) DeleteSale(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// ---- Shop closures ----

func (s *Store) ListClosures(ctx context.Context, filter store.ClosureFilter) ([]domain.ShopClosure, error) {
	query := `
		SELECT id, date, reason, description, is_full_day, closed_hours, created_at
		FROM shop_closures
	`
	conditions := make([]string, 0, 2)
	args := make([]any, 0, 2)
	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, fmt.Sprintf("date >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, fmt.Sprintf("date <= $%d", len(args)))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY date DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	closures := make([]domain.ShopClosure, 0, 32)
	for rows.Next() {
		var c domain.ShopClosure
		if err := rows.Scan(&c.ID, &c.Date, &c.Reason, &c.Description, &c.IsFullDay, &c.ClosedHours, &c.CreatedAt); err != nil {
			return nil, err
		}
		closures = append(closures, c)
	}
	return closures, rows.Err()
}

func (s *Store) GetClosure(ctx context.Context, id string) (*domain.ShopClosure, error) {
	var c domain.ShopClosure
	err := s.db.QueryRowContext(ctx, `
		SELECT id, date, reason, description, is_full_day, closed_hours, created_at
		FROM shop_closures
		WHERE id = $1
	`, id).Scan(&c.ID, &c.Date, &c.Reason, &c.Description, &c.IsFullDay, &c.ClosedHours, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *Store) FindClosureByDay(ctx context.Context, day time.Time, excludeID string) (*domain.ShopClosure, error) {
	var c domain.ShopClosure
	err := s.db.QueryRowContext(ctx, `
		SELECT id, date, reason, description, is_full_day, closed_hours, created_at
		FROM shop_closures
		WHERE day = $1 AND id <> $2
	`, analytics.DayKey(day), excludeID).Scan(&c.ID, &c.Date, &c.Reason, &c.Description, &c.IsFullDay, &c.ClosedHours, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *Store) CreateClosure(ctx context.Context, closure domain.ShopClosure) (*domain.ShopClosure, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO shop_closures (id, date, day, reason, description, is_full_day, closed_hours, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, closure.ID, closure.Date, analytics.DayKey(closure.Date), closure.Reason, closure.Description, closure.IsFullDay, closure.ClosedHours, closure.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("shop closure already exists for this date: %w", store.ErrValidation)
		}
		return nil, err
	}
	created := closure
	return &created, nil
}

func (s *Store) UpdateClosure(ctx context.Context, closure domain.ShopClosure) (*domain.ShopClosure, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE shop_closures
		SET date = $2, day = $3, reason = $4, description = $5, is_full_day = $6, closed_hours = $7
		WHERE id = $1
	`, closure.ID, closure.Date, analytics.DayKey(closure.Date), closure.Reason, closure.Description, closure.IsFullDay, closure.ClosedHours)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("shop closure already exists for this date: %w", store.ErrValidation)
		}
		return nil, err
	}
	if err := requireAffected(res); err != nil {
		return nil, err
	}
	updated := closure
	return &updated, nil
}

func (s *Store) DeleteClosure(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM shop_closures WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// ---- Users ----

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, password, role, active, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`, user.Username, user.Password, user.Role, user.Active, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("username already exists: %w", store.ErrValidation)
		}
		return err
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, password, role, active, created_at
		FROM users
		ORDER BY username
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 16)
	for rows.Next() {
		var u domain.UserAccount
		if err := rows.Scan(&u.Username, &u.Password, &u.Role, &u.Active, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) UpdateUserPassword(ctx context.Context, username string, password string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET password = $2 WHERE username = $1
	`, username, password)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// ---- Helpers ----

func transactionWhere(filter store.TransactionFilter) (string, []any) {
	conditions := make([]string, 0, 3)
	args := make([]any, 0, 3)
	if filter.CategoryID != "" {
		args = append(args, filter.CategoryID)
		conditions = append(conditions, fmt.Sprintf("category_id = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, fmt.Sprintf("date >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, fmt.Sprintf("date <= $%d", len(args)))
	}
	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
