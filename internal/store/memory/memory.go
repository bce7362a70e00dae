package memory

import (
	"context"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"lekhajokha/backend/internal/domain"
	"lekhajokha/backend/internal/store"
)

// Store keeps every collection in process memory. Collections are held as
// slices so that record order survives round trips: payment allocation breaks
// date ties by original list order, which only works if the store preserves
// insertion order.
type Store struct {
	mu        sync.RWMutex
	customers []domain.Customer
	products  []domain.Product
	sales     []domain.Sale
	purchases []domain.Purchase
	payments  []domain.Payment
	shopInfo  domain.ShopInfo
	users     []domain.UserAccount
}

// seedOwner builds the initial owner account for dev/demo mode. Credentials
// come from SEED_OWNER_EMAIL and SEED_OWNER_PASSWORD; hardcoded dev defaults
// are used with a warning when unset.
func seedOwner() []domain.UserAccount {
	email := envOr("SEED_OWNER_EMAIL", "owner@nirobmill.com")
	password := envOr("SEED_OWNER_PASSWORD", "password")
	if os.Getenv("SEED_OWNER_PASSWORD") == "" {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_OWNER_EMAIL and SEED_OWNER_PASSWORD to override.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("[memory-store] failed to hash seed password: %v", err)
	}
	return []domain.UserAccount{{
		ID:       "user-1",
		Email:    strings.ToLower(email),
		Password: string(hash),
	}}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func NewSeeded() *Store {
	return &Store{
		customers: make([]domain.Customer, 0, 32),
		products:  make([]domain.Product, 0, 64),
		sales:     make([]domain.Sale, 0, 128),
		purchases: make([]domain.Purchase, 0, 64),
		payments:  make([]domain.Payment, 0, 64),
		shopInfo: domain.ShopInfo{
			Name:    "Nirob Mill & Workshop",
			Address: "123 Commerce St, Dhaka",
			Contact: "shop@nirobmill.com",
		},
		users: seedOwner(),
	}
}

func (s *Store) ListCustomers(_ context.Context) ([]domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Customer, len(s.customers))
	copy(out, s.customers)
	return out, nil
}

func (s *Store) GetCustomer(_ context.Context, id string) (*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.customers {
		if c.ID == id {
			found := c
			return &found, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) CreateCustomer(_ context.Context, customer domain.Customer) (*domain.Customer, error) {
	if customer.ID == "" || customer.Name == "" || customer.Phone == "" {
		return nil, store.ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.customers {
		if c.Phone == customer.Phone {
			return nil, store.ErrDuplicatePhone
		}
		if c.ID == customer.ID {
			return nil, store.ErrValidation
		}
	}

	s.customers = append(s.customers, customer)
	created := customer
	return &created, nil
}

func (s *Store) UpdateCustomer(_ context.Context, customer domain.Customer) (*domain.Customer, error) {
	if customer.ID == "" || customer.Name == "" || customer.Phone == "" {
		return nil, store.ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.customers {
		if c.ID != customer.ID && c.Phone == customer.Phone {
			return nil, store.ErrDuplicatePhone
		}
	}
	for i, c := range s.customers {
		if c.ID == customer.ID {
			s.customers[i] = customer
			updated := customer
			return &updated, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) DeleteCustomer(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, c := range s.customers {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return store.ErrNotFound
	}

	s.customers = append(s.customers[:idx], s.customers[idx+1:]...)

	kept := s.sales[:0]
	for _, sale := range s.sales {
		if sale.CustomerID != id {
			kept = append(kept, sale)
		}
	}
	s.sales = kept

	keptPayments := s.payments[:0]
	for _, payment := range s.payments {
		if payment.CustomerID != id {
			keptPayments = append(keptPayments, payment)
		}
	}
	s.payments = keptPayments
	return nil
}

func (s *Store) NextCustomerSeq(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return nextSeq("CUST", customerIDs(s.customers)), nil
}

func (s *Store) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, cloneProduct(p))
	}
	return out, nil
}

func (s *Store) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.products {
		if p.ID == id {
			found := cloneProduct(p)
			return &found, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) CreateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	if product.ID == "" || product.Name == "" || product.Price < 0 {
		return nil, store.ErrValidation
	}
	if product.Stock != nil && *product.Stock < 0 {
		return nil, store.ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.products {
		if p.ID == product.ID {
			return nil, store.ErrValidation
		}
	}
	s.products = append(s.products, cloneProduct(product))
	created := cloneProduct(product)
	return &created, nil
}

func (s *Store) UpdateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	if product.ID == "" || product.Name == "" || product.Price < 0 {
		return nil, store.ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.products {
		if p.ID == product.ID {
			s.products[i] = cloneProduct(product)
			updated := cloneProduct(product)
			return &updated, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) DeleteProduct(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.products {
		if p.ID == id {
			s.products = append(s.products[:i], s.products[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) NextProductSeq(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.products))
	for _, p := range s.products {
		ids = append(ids, p.ID)
	}
	return nextSeq("PROD", ids), nil
}

func (s *Store) AdjustStock(_ context.Context, deltas map[string]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.products {
		delta, ok := deltas[p.ID]
		if !ok || !p.Tracked() {
			continue
		}
		next := *p.Stock + delta
		if next < 0 {
			next = 0
		}
		stock := next
		s.products[i].Stock = &stock
	}
	return nil
}

func (s *Store) SetStock(_ context.Context, productID string, qty int) error {
	if qty < 0 {
		return store.ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.products {
		if p.ID != productID {
			continue
		}
		if !p.Tracked() {
			return store.ErrValidation
		}
		stock := qty
		s.products[i].Stock = &stock
		return nil
	}
	return store.ErrNotFound
}

func (s *Store) ListSales(_ context.Context) ([]domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Sale, 0, len(s.sales))
	for _, sale := range s.sales {
		out = append(out, cloneSale(sale))
	}
	return out, nil
}

func (s *Store) GetSale(_ context.Context, id string) (*domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sale := range s.sales {
		if sale.ID == id {
			found := cloneSale(sale)
			return &found, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) CreateSale(_ context.Context, sale domain.Sale) (*domain.Sale, error) {
	if sale.ID == "" || sale.CustomerID == "" || len(sale.Lines) == 0 {
		return nil, store.ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.sales {
		if existing.ID == sale.ID {
			return nil, store.ErrValidation
		}
	}
	s.sales = append(s.sales, cloneSale(sale))
	created := cloneSale(sale)
	return &created, nil
}

func (s *Store) UpdateSale(_ context.Context, sale domain.Sale) (*domain.Sale, error) {
	if sale.ID == "" || sale.CustomerID == "" || len(sale.Lines) == 0 {
		return nil, store.ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.sales {
		if existing.ID == sale.ID {
			s.sales[i] = cloneSale(sale)
			updated := cloneSale(sale)
			return &updated, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) DeleteSale(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sale := range s.sales {
		if sale.ID == id {
			s.sales = append(s.sales[:i], s.sales[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) ListSalesByCustomer(_ context.Context, customerID string) ([]domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Sale, 0, 16)
	for _, sale := range s.sales {
		if sale.CustomerID == customerID {
			out = append(out, cloneSale(sale))
		}
	}
	return out, nil
}

func (s *Store) ListPurchases(_ context.Context) ([]domain.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Purchase, len(s.purchases))
	copy(out, s.purchases)
	return out, nil
}

func (s *Store) GetPurchase(_ context.Context, id string) (*domain.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.purchases {
		if p.ID == id {
			found := p
			return &found, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) CreatePurchase(_ context.Context, purchase domain.Purchase) (*domain.Purchase, error) {
	if purchase.ID == "" || purchase.Supplier == "" {
		return nil, store.ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.purchases {
		if existing.ID == purchase.ID {
			return nil, store.ErrValidation
		}
	}
	s.purchases = append(s.purchases, purchase)
	created := purchase
	return &created, nil
}

func (s *Store) UpdatePurchase(_ context.Context, purchase domain.Purchase) (*domain.Purchase, error) {
	if purchase.ID == "" || purchase.Supplier == "" {
		return nil, store.ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.purchases {
		if existing.ID == purchase.ID {
			s.purchases[i] = purchase
			updated := purchase
			return &updated, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) DeletePurchase(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.purchases {
		if p.ID == id {
			s.purchases = append(s.purchases[:i], s.purchases[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) ListPayments(_ context.Context) ([]domain.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Payment, len(s.payments))
	copy(out, s.payments)
	return out, nil
}

func (s *Store) CreatePayment(_ context.Context, payment domain.Payment) (*domain.Payment, error) {
	if payment.ID == "" || payment.CustomerID == "" || payment.Amount <= 0 {
		return nil, store.ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.payments = append(s.payments, payment)
	created := payment
	return &created, nil
}

func (s *Store) ListPaymentsByCustomer(_ context.Context, customerID string) ([]domain.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Payment, 0, 16)
	for _, payment := range s.payments {
		if payment.CustomerID == customerID {
			out = append(out, payment)
		}
	}
	return out, nil
}

func (s *Store) GetShopInfo(_ context.Context) (*domain.ShopInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info := s.shopInfo
	return &info, nil
}

func (s *Store) SaveShopInfo(_ context.Context, info domain.ShopInfo) error {
	if info.Name == "" {
		return store.ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.shopInfo = info
	return nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.ID == "" || user.Email == "" || user.Password == "" {
		return store.ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return store.ErrDuplicateEmail
		}
	}
	s.users = append(s.users, user)
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.UserAccount, len(s.users))
	copy(out, s.users)
	return out, nil
}

func (s *Store) FindUserByEmail(_ context.Context, email string) (*domain.UserAccount, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) UpdateUserPassword(_ context.Context, email string, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return store.ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, u := range s.users {
		if u.Email == email {
			s.users[i].Password = password
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) DeleteUser(_ context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.users) <= 1 {
		return store.ErrValidation
	}
	for i, u := range s.users {
		if u.Email == email {
			s.users = append(s.users[:i], s.users[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

// nextSeq finds the highest numeric suffix among existing ids with the given
// prefix and returns the next value, starting at 1.
func nextSeq(prefix string, existing []string) int {
	highest := 0
	for _, id := range existing {
		if !strings.HasPrefix(id, prefix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(id, prefix))
		if err != nil {
			continue
		}
		if n > highest {
			highest = n
		}
	}
	return highest + 1
}

func customerIDs(customers []domain.Customer) []string {
	ids := make([]string, 0, len(customers))
	for _, c := range customers {
		ids = append(ids, c.ID)
	}
	return ids
}

func cloneProduct(src domain.Product) domain.Product {
	dup := src
	if src.Stock != nil {
		stock := *src.Stock
		dup.Stock = &stock
	}
	return dup
}

func cloneSale(src domain.Sale) domain.Sale {
	dup := src
	lines := make([]domain.SaleLine, len(src.Lines))
	copy(lines, src.Lines)
	dup.Lines = lines
	return dup
}
