package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"lekhajokha/backend/internal/domain"
	"lekhajokha/backend/internal/store"
)

// Store persists the ledger in Postgres. Schema is managed outside the
// binary; see docs/schema.sql.
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

func (s *Store) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, phone, address
		FROM customers
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := make([]domain.Customer, 0, 64)
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Address); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return customers, nil
}

func (s *Store) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	var c domain.Customer
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, phone, address
		FROM customers
		WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Phone, &c.Address)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *Store) CreateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error) {
	if customer.ID == "" || customer.Name == "" || customer.Phone == "" {
		return nil, store.ErrValidation
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO customers (id, name, phone, address, created_at)
		VALUES ($1,$2,$3,$4,now())
	`, customer.ID, customer.Name, customer.Phone, customer.Address)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrDuplicatePhone
		}
		return nil, err
	}

	created := customer
	return &created, nil
}

func (s *Store) UpdateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error) {
	if customer.ID == "" || customer.Name == "" || customer.Phone == "" {
		return nil, store.ErrValidation
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE customers
		SET name = $2, phone = $3, address = $4
		WHERE id = $1
	`, customer.ID, customer.Name, customer.Phone, customer.Address)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrDuplicatePhone
		}
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	updated := customer
	return &updated, nil
}

func (s *Store) DeleteCustomer(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sales WHERE customer_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM payments WHERE customer_id = $1`, id); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}

	return tx.Commit()
}

func (s *Store) NextCustomerSeq(ctx context.Context) (int, error) {
	return s.nextSeq(ctx, `
		SELECT COALESCE(MAX(substring(id from 5)::int), 0) + 1
		FROM customers
		WHERE id ~ '^CUST[0-9]+$'
	`)
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, category, measurement, stock, price
		FROM products
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 128)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var p domain.Product
	var stock sql.NullInt64
	if err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Measurement, &stock, &p.Price); err != nil {
		return domain.Product{}, err
	}
	if stock.Valid {
		v := int(stock.Int64)
		p.Stock = &v
	}
	return p, nil
}

func nullStock(p domain.Product) sql.NullInt64 {
	if p.Stock == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p.Stock), Valid: true}
}

func (s *Store) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	p, err := scanProduct(s.db.QueryRowContext(ctx, `
		SELECT id, name, category, measurement, stock, price
		FROM products
		WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.ID == "" || product.Name == "" || product.Price < 0 {
		return nil, store.ErrValidation
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, name, category, measurement, stock, price, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,now())
	`, product.ID, product.Name, product.Category, product.Measurement, nullStock(product), product.Price)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrValidation
		}
		return nil, err
	}

	created := product
	return &created, nil
}

func (s *Store) UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.ID == "" || product.Name == "" || product.Price < 0 {
		return nil, store.ErrValidation
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET name = $2, category = $3, measurement = $4, stock = $5, price = $6
		WHERE id = $1
	`, product.ID, product.Name, product.Category, product.Measurement, nullStock(product), product.Price)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	updated := product
	return &updated, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) NextProductSeq(ctx context.Context) (int, error) {
	return s.nextSeq(ctx, `
		SELECT COALESCE(MAX(substring(id from 5)::int), 0) + 1
		FROM products
		WHERE id ~ '^PROD[0-9]+$'
	`)
}

func (s *Store) nextSeq(ctx context.Context, query string) (int, error) {
	var next int
	if err := s.db.QueryRowContext(ctx, query).Scan(&next); err != nil {
		return 0, err
	}
	return next, nil
}

func (s *Store) AdjustStock(ctx context.Context, deltas map[string]int) error {
	if len(deltas) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for productID, delta := range deltas {
		if delta == 0 {
			continue
		}
		// Untracked products (stock IS NULL) are left alone; tracked
		// stock is floored at zero.
		_, err := tx.ExecContext(ctx, `
			UPDATE products
			SET stock = GREATEST(stock + $2, 0)
			WHERE id = $1 AND stock IS NOT NULL
		`, productID, delta)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *Store) SetStock(ctx context.Context, productID string, qty int) error {
	if qty < 0 {
		return store.ErrValidation
	}

	var stock sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT stock FROM products WHERE id = $1
	`, productID).Scan(&stock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrNotFound
		}
		return err
	}
	if !stock.Valid {
		return store.ErrValidation
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE products SET stock = $2 WHERE id = $1
	`, productID, qty)
	return err
}

func (s *Store) ListSales(ctx context.Context) ([]domain.Sale, error) {
	return s.querySales(ctx, `
		SELECT id, customer_id, sale_date, lines, amount, paid_amount, status
		FROM sales
		ORDER BY created_at, id
	`)
}

func (s *Store) ListSalesByCustomer(ctx context.Context, customerID string) ([]domain.Sale, error) {
	return s.querySales(ctx, `
		SELECT id, customer_id, sale_date, lines, amount, paid_amount, status
		FROM sales
		WHERE customer_id = $1
		ORDER BY created_at, id
	`, customerID)
}

func (s *Store) querySales(ctx context.Context, query string, args ...any) ([]domain.Sale, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sales := make([]domain.Sale, 0, 128)
	for rows.Next() {
		var sale domain.Sale
		var lines []byte
		if err := rows.Scan(&sale.ID, &sale.CustomerID, &sale.Date, &lines, &sale.Amount, &sale.PaidAmount, &sale.Status); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(lines, &sale.Lines); err != nil {
			return nil, err
		}
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sales, nil
}

func (s *Store) GetSale(ctx context.Context, id string) (*domain.Sale, error) {
	var sale domain.Sale
	var lines []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT id, customer_id, sale_date, lines, amount, paid_amount, status
		FROM sales
		WHERE id = $1
	`, id).Scan(&sale.ID, &sale.CustomerID, &sale.Date, &lines, &sale.Amount, &sale.PaidAmount, &sale.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(lines, &sale.Lines); err != nil {
		return nil, err
	}
	return &sale, nil
}

func (s *Store) CreateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error) {
	if sale.ID == "" || sale.CustomerID == "" || len(sale.Lines) == 0 {
		return nil, store.ErrValidation
	}

	lines, err := json.Marshal(sale.Lines)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sales (id, customer_id, sale_date, lines, amount, paid_amount, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,now())
	`, sale.ID, sale.CustomerID, sale.Date, lines, sale.Amount, sale.PaidAmount, sale.Status)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrValidation
		}
		return nil, err
	}

	created := sale
	return &created, nil
}

func (s *Store) UpdateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error) {
	if sale.ID == "" || sale.CustomerID == "" || len(sale.Lines) == 0 {
		return nil, store.ErrValidation
	}

	lines, err := json.Marshal(sale.Lines)
	if err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE sales
		SET customer_id = $2, sale_date = $3, lines = $4, amount = $5, paid_amount = $6, status = $7
		WHERE id = $1
	`, sale.ID, sale.CustomerID, sale.Date, lines, sale.Amount, sale.PaidAmount, sale.Status)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	updated := sale
	return &updated, nil
}

func (s *Store) DeleteSale(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListPurchases(ctx context.Context) ([]domain.Purchase, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, supplier, description, product_id, quantity, measurement, purchase_date, amount, paid_amount, status
		FROM purchases
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	purchases := make([]domain.Purchase, 0, 64)
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, err
		}
		purchases = append(purchases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return purchases, nil
}

func scanPurchase(row rowScanner) (domain.Purchase, error) {
	var p domain.Purchase
	var productID, measurement sql.NullString
	var quantity sql.NullInt64
	err := row.Scan(&p.ID, &p.Type, &p.Supplier, &p.Description, &productID, &quantity, &measurement, &p.Date, &p.Amount, &p.PaidAmount, &p.Status)
	if err != nil {
		return domain.Purchase{}, err
	}
	p.ProductID = productID.String
	p.Quantity = int(quantity.Int64)
	p.Measurement = measurement.String
	return p, nil
}

func (s *Store) GetPurchase(ctx context.Context, id string) (*domain.Purchase, error) {
	p, err := scanPurchase(s.db.QueryRowContext(ctx, `
		SELECT id, kind, supplier, description, product_id, quantity, measurement, purchase_date, amount, paid_amount, status
		FROM purchases
		WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *Store) CreatePurchase(ctx context.Context, purchase domain.Purchase) (*domain.Purchase, error) {
	if purchase.ID == "" || purchase.Supplier == "" {
		return nil, store.ErrValidation
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO purchases (id, kind, supplier, description, product_id, quantity, measurement, purchase_date, amount, paid_amount, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,now())
	`, purchase.ID, purchase.Type, purchase.Supplier, purchase.Description,
		nullString(purchase.ProductID), nullInt(purchase.Quantity), nullString(purchase.Measurement),
		purchase.Date, purchase.Amount, purchase.PaidAmount, purchase.Status)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrValidation
		}
		return nil, err
	}

	created := purchase
	return &created, nil
}

func (s *Store) UpdatePurchase(ctx context.Context, purchase domain.Purchase) (*domain.Purchase, error) {
	if purchase.ID == "" || purchase.Supplier == "" {
		return nil, store.ErrValidation
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE purchases
		SET kind = $2, supplier = $3, description = $4, product_id = $5, quantity = $6,
		    measurement = $7, purchase_date = $8, amount = $9, paid_amount = $10, status = $11
		WHERE id = $1
	`, purchase.ID, purchase.Type, purchase.Supplier, purchase.Description,
		nullString(purchase.ProductID), nullInt(purchase.Quantity), nullString(purchase.Measurement),
		purchase.Date, purchase.Amount, purchase.PaidAmount, purchase.Status)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	updated := purchase
	return &updated, nil
}

func (s *Store) DeletePurchase(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM purchases WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListPayments(ctx context.Context) ([]domain.Payment, error) {
	return s.queryPayments(ctx, `
		SELECT id, customer_id, payment_date, amount, method
		FROM payments
		ORDER BY created_at, id
	`)
}

func (s *Store) ListPaymentsByCustomer(ctx context.Context, customerID string) ([]domain.Payment, error) {
	return s.queryPayments(ctx, `
		SELECT id, customer_id, payment_date, amount, method
		FROM payments
		WHERE customer_id = $1
		ORDER BY created_at, id
	`, customerID)
}

func (s *Store) queryPayments(ctx context.Context, query string, args ...any) ([]domain.Payment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]domain.Payment, 0, 64)
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(&p.ID, &p.CustomerID, &p.Date, &p.Amount, &p.Method); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return payments, nil
}

func (s *Store) CreatePayment(ctx context.Context, payment domain.Payment) (*domain.Payment, error) {
	if payment.ID == "" || payment.CustomerID == "" || payment.Amount <= 0 {
		return nil, store.ErrValidation
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payments (id, customer_id, payment_date, amount, method, created_at)
		VALUES ($1,$2,$3,$4,$5,now())
	`, payment.ID, payment.CustomerID, payment.Date, payment.Amount, payment.Method)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrValidation
		}
		return nil, err
	}

	created := payment
	return &created, nil
}

func (s *Store) GetShopInfo(ctx context.Context) (*domain.ShopInfo, error) {
	var info domain.ShopInfo
	var logo sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT name, address, contact, logo
		FROM shop_info
		WHERE singleton = true
	`).Scan(&info.Name, &info.Address, &info.Contact, &logo)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &domain.ShopInfo{}, nil
		}
		return nil, err
	}
	info.Logo = logo.String
	return &info, nil
}

func (s *Store) SaveShopInfo(ctx context.Context, info domain.ShopInfo) error {
	if info.Name == "" {
		return store.ErrValidation
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO shop_info (singleton, name, address, contact, logo, updated_at)
		VALUES (true,$1,$2,$3,$4,now())
		ON CONFLICT (singleton) DO UPDATE
		SET name = EXCLUDED.name, address = EXCLUDED.address, contact = EXCLUDED.contact,
		    logo = EXCLUDED.logo, updated_at = now()
	`, info.Name, info.Address, info.Contact, nullString(info.Logo))
	return err
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.ID == "" || user.Email == "" || user.Password == "" {
		return store.ErrValidation
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, created_at)
		VALUES ($1,$2,$3,now())
	`, user.ID, user.Email, user.Password)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, email, password_hash
		FROM users
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 8)
	for rows.Next() {
		var u domain.UserAccount
		if err := rows.Scan(&u.ID, &u.Email, &u.Password); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*domain.UserAccount, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var u domain.UserAccount
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash
		FROM users
		WHERE email = $1
	`, email).Scan(&u.ID, &u.Email, &u.Password)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, email string, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return store.ErrValidation
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET password_hash = $2 WHERE email = $1
	`, email, password)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var total int
	if err := tx.QueryRowContext(ctx, `SELECT count(*) FROM users`).Scan(&total); err != nil {
		return err
	}
	// The last account cannot be removed or the shop locks itself out.
	if total <= 1 {
		return store.ErrValidation
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE email = $1`, email)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}

	return tx.Commit()
}

func nullString(v string) sql.NullString {
	if v == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: v, Valid: true}
}

func nullInt(v int) sql.NullInt64 {
	if v == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(v), Valid: true}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
