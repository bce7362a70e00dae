package service

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"
	"time"
	"unicode"

	"lekhajokha/backend/internal/cache"
	"lekhajokha/backend/internal/domain"
	"lekhajokha/backend/internal/ids"
	"lekhajokha/backend/internal/store"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

const customerViewTTL = 5 * time.Minute

// Service is the ledger engine. It is the single writer for sales,
// purchases, payments and product stock; customer identity and product
// catalog CRUD ride along on the same repository.
type Service struct {
	repo  store.Repository
	views cache.CustomerViewCache
	now   func() time.Time
}

func New(repo store.Repository, views cache.CustomerViewCache) *Service {
	if views == nil {
		views = cache.NoopCustomerViewCache{}
	}

	return &Service{
		repo:  repo,
		views: views,
		now:   time.Now,
	}
}

// today returns the engine's business date. Dates are stored as local
// calendar days, not instants.
func (s *Service) today() string {
	return s.now().Format("2006-01-02")
}

func statusFor(amount, paid float64) string {
	if amount-paid > domain.DueEpsilon {
		return domain.StatusDue
	}
	return domain.StatusPaid
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

func (s *Service) logAction(ctx context.Context, action string, entityID string, detail string) {
	actor, ok := ActorFromContext(ctx)
	by := "system"
	if ok {
		by = actor.Email
	}
	log.Printf("[service] %s id=%s by=%s %s", action, entityID, by, detail)
}

func (s *Service) invalidateViews(ctx context.Context) {
	if err := s.views.Invalidate(ctx); err != nil {
		log.Printf("[service] WARN: failed to invalidate customer view cache: %v", err)
	}
}

// ---- customers ----

// ListCustomerViews returns every customer with the derived aggregates
// (outstanding due, last purchase date, due-since date) recomputed from the
// sales list. The projection is cached; every mutation path invalidates it.
func (s *Service) ListCustomerViews(ctx context.Context) ([]domain.CustomerView, error) {
	if cached, ok, err := s.views.Get(ctx); err != nil {
		log.Printf("[service] WARN: customer view cache read failed: %v", err)
	} else if ok {
		return cached, nil
	}

	customers, err := s.repo.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}
	sales, err := s.repo.ListSales(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]domain.CustomerView, 0, len(customers))
	for _, c := range customers {
		views = append(views, buildView(c, sales))
	}

	if err := s.views.Set(ctx, views, customerViewTTL); err != nil {
		log.Printf("[service] WARN: customer view cache write failed: %v", err)
	}
	return views, nil
}

func (s *Service) GetCustomerView(ctx context.Context, id string) (domain.CustomerView, error) {
	customer, err := s.repo.GetCustomer(ctx, id)
	if err != nil {
		return domain.CustomerView{}, err
	}
	sales, err := s.repo.ListSalesByCustomer(ctx, id)
	if err != nil {
		return domain.CustomerView{}, err
	}
	return buildView(*customer, sales), nil
}

// buildView scans the sale set once per customer. dueAmount sums the
// outstanding balance of Due sales, lastPurchase is the latest sale date of
// any status, dueSince is the earliest date among currently-Due sales.
func buildView(c domain.Customer, sales []domain.Sale) domain.CustomerView {
	view := domain.CustomerView{
		Customer:     c,
		LastPurchase: domain.NotAvailable,
		DueSince:     domain.NotAvailable,
	}

	for _, sale := range sales {
		if sale.CustomerID != c.ID {
			continue
		}
		if view.LastPurchase == domain.NotAvailable || sale.Date > view.LastPurchase {
			view.LastPurchase = sale.Date
		}
		if sale.Status != domain.StatusDue {
			continue
		}
		view.DueAmount += sale.Due()
		if view.DueSince == domain.NotAvailable || sale.Date < view.DueSince {
			view.DueSince = sale.Date
		}
	}
	return view
}

func (s *Service) CreateCustomer(ctx context.Context, req domain.CustomerCreateRequest) (domain.Customer, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Address = strings.TrimSpace(req.Address)

	if req.Name == "" || digitCount(req.Phone) < 11 {
		return domain.Customer{}, store.ErrValidation
	}

	seq, err := s.repo.NextCustomerSeq(ctx)
	if err != nil {
		return domain.Customer{}, err
	}

	customer := domain.Customer{
		ID:      ids.Customer(seq),
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
	}

	created, err := s.repo.CreateCustomer(ctx, customer)
	if err != nil {
		return domain.Customer{}, err
	}

	s.invalidateViews(ctx)
	s.logAction(ctx, "customer_create", created.ID, "name="+created.Name)
	return *created, nil
}

func (s *Service) UpdateCustomer(ctx context.Context, id string, req domain.CustomerCreateRequest) (domain.Customer, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Address = strings.TrimSpace(req.Address)

	if req.Name == "" || digitCount(req.Phone) < 11 {
		return domain.Customer{}, store.ErrValidation
	}

	updated, err := s.repo.UpdateCustomer(ctx, domain.Customer{
		ID:      id,
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		return domain.Customer{}, err
	}

	s.invalidateViews(ctx)
	s.logAction(ctx, "customer_update", id, "name="+updated.Name)
	return *updated, nil
}

// DeleteCustomer cascades: the customer's sales and payments go with them.
// Stock consumed by the cascaded sales is not restored.
func (s *Service) DeleteCustomer(ctx context.Context, id string) error {
	if err := s.repo.DeleteCustomer(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}

	s.invalidateViews(ctx)
	s.logAction(ctx, "customer_delete", id, "")
	return nil
}

// ---- products ----

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	product, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	return *product, nil
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Category = strings.TrimSpace(req.Category)
	req.Measurement = strings.TrimSpace(req.Measurement)

	if req.Name == "" || req.Price < 0 {
		return domain.Product{}, store.ErrValidation
	}
	if req.Stock != nil && *req.Stock < 0 {
		return domain.Product{}, store.ErrValidation
	}

	seq, err := s.repo.NextProductSeq(ctx)
	if err != nil {
		return domain.Product{}, err
	}

	product := domain.Product{
		ID:          ids.Product(seq),
		Name:        req.Name,
		Category:    req.Category,
		Measurement: req.Measurement,
		Stock:       req.Stock,
		Price:       req.Price,
	}

	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return domain.Product{}, err
	}

	s.logAction(ctx, "product_create", created.ID, "name="+created.Name)
	return *created, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id string, req domain.ProductCreateRequest) (domain.Product, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Category = strings.TrimSpace(req.Category)
	req.Measurement = strings.TrimSpace(req.Measurement)

	if req.Name == "" || req.Price < 0 {
		return domain.Product{}, store.ErrValidation
	}
	if req.Stock != nil && *req.Stock < 0 {
		return domain.Product{}, store.ErrValidation
	}

	updated, err := s.repo.UpdateProduct(ctx, domain.Product{
		ID:          id,
		Name:        req.Name,
		Category:    req.Category,
		Measurement: req.Measurement,
		Stock:       req.Stock,
		Price:       req.Price,
	})
	if err != nil {
		return domain.Product{}, err
	}

	s.logAction(ctx, "product_update", id, "name="+updated.Name)
	return *updated, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}
	s.logAction(ctx, "product_delete", id, "")
	return nil
}

// SetProductStock overwrites the stock count of a tracked product, e.g. after
// a physical recount. Services cannot be given stock this way.
func (s *Service) SetProductStock(ctx context.Context, id string, qty int) error {
	if err := s.repo.SetStock(ctx, id, qty); err != nil {
		return err
	}
	s.logAction(ctx, "product_set_stock", id, "")
	return nil
}

// ---- sales ----

func (s *Service) ListSales(ctx context.Context) ([]domain.Sale, error) {
	return s.repo.ListSales(ctx)
}

func (s *Service) GetSale(ctx context.Context, id string) (domain.Sale, error) {
	sale, err := s.repo.GetSale(ctx, id)
	if err != nil {
		return domain.Sale{}, err
	}
	return *sale, nil
}

// requestedQuantities aggregates line quantities per product, so a sale with
// two lines for the same product is checked against stock as one total.
func requestedQuantities(lines []domain.SaleLine) (map[string]int, error) {
	totals := make(map[string]int, len(lines))
	for _, line := range lines {
		if line.ProductID == "" || line.Quantity < 1 || line.Price < 0 {
			return nil, store.ErrValidation
		}
		totals[line.ProductID] += line.Quantity
	}
	return totals, nil
}

// checkAvailability verifies every stock-tracked product can cover the
// requested quantity. reserved holds quantities already consumed by the sale
// being edited; those units are still available to that same sale.
func (s *Service) checkAvailability(ctx context.Context, requested map[string]int, reserved map[string]int) error {
	for productID, qty := range requested {
		product, err := s.repo.GetProduct(ctx, productID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return store.ErrValidation
			}
			return err
		}
		if !product.Tracked() {
			continue
		}
		available := *product.Stock + reserved[productID]
		if qty > available {
			return store.ErrInsufficientStock
		}
	}
	return nil
}

func saleAmount(lines []domain.SaleLine) float64 {
	total := 0.0
	for _, line := range lines {
		total += float64(line.Quantity) * line.Price
	}
	return total
}

// AddSale validates the whole request before touching anything: all-or-nothing,
// no partial application.
func (s *Service) AddSale(ctx context.Context, req domain.SaleRequest) (domain.Sale, error) {
	if req.CustomerID == "" || len(req.Lines) == 0 || req.PaidAmount < 0 {
		return domain.Sale{}, store.ErrValidation
	}
	if _, err := s.repo.GetCustomer(ctx, req.CustomerID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Sale{}, store.ErrValidation
		}
		return domain.Sale{}, err
	}

	requested, err := requestedQuantities(req.Lines)
	if err != nil {
		return domain.Sale{}, err
	}
	if err := s.checkAvailability(ctx, requested, nil); err != nil {
		return domain.Sale{}, err
	}

	amount := saleAmount(req.Lines)
	sale := domain.Sale{
		ID:         ids.Sale(),
		CustomerID: req.CustomerID,
		Date:       s.today(),
		Lines:      req.Lines,
		Amount:     amount,
		PaidAmount: req.PaidAmount,
		Status:     statusFor(amount, req.PaidAmount),
	}

	created, err := s.repo.CreateSale(ctx, sale)
	if err != nil {
		return domain.Sale{}, err
	}

	deltas := make(map[string]int, len(requested))
	for productID, qty := range requested {
		deltas[productID] = -qty
	}
	if err := s.repo.AdjustStock(ctx, deltas); err != nil {
		return domain.Sale{}, err
	}

	s.invalidateViews(ctx)
	s.logAction(ctx, "sale_create", created.ID, "customer="+created.CustomerID)
	return *created, nil
}

// UpdateSale applies a net stock delta per product: old quantity minus new
// quantity, rather than reversing the old sale and replaying the new one.
// The result is the same, with no intermediate stock states.
func (s *Service) UpdateSale(ctx context.Context, id string, req domain.SaleRequest) (domain.Sale, error) {
	existing, err := s.repo.GetSale(ctx, id)
	if err != nil {
		return domain.Sale{}, err
	}

	if req.CustomerID == "" || len(req.Lines) == 0 || req.PaidAmount < 0 {
		return domain.Sale{}, store.ErrValidation
	}
	if _, err := s.repo.GetCustomer(ctx, req.CustomerID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Sale{}, store.ErrValidation
		}
		return domain.Sale{}, err
	}

	requested, err := requestedQuantities(req.Lines)
	if err != nil {
		return domain.Sale{}, err
	}
	held, err := requestedQuantities(existing.Lines)
	if err != nil {
		return domain.Sale{}, err
	}
	if err := s.checkAvailability(ctx, requested, held); err != nil {
		return domain.Sale{}, err
	}

	amount := saleAmount(req.Lines)
	sale := domain.Sale{
		ID:         existing.ID,
		CustomerID: req.CustomerID,
		Date:       existing.Date,
		Lines:      req.Lines,
		Amount:     amount,
		PaidAmount: req.PaidAmount,
		Status:     statusFor(amount, req.PaidAmount),
	}

	updated, err := s.repo.UpdateSale(ctx, sale)
	if err != nil {
		return domain.Sale{}, err
	}

	deltas := make(map[string]int, len(requested)+len(held))
	for productID, qty := range held {
		deltas[productID] += qty
	}
	for productID, qty := range requested {
		deltas[productID] -= qty
	}
	if err := s.repo.AdjustStock(ctx, deltas); err != nil {
		return domain.Sale{}, err
	}

	s.invalidateViews(ctx)
	s.logAction(ctx, "sale_update", id, "customer="+updated.CustomerID)
	return *updated, nil
}

// DeleteSale restores the stock its line items consumed. Deleting an unknown
// sale is a no-op.
func (s *Service) DeleteSale(ctx context.Context, id string) error {
	existing, err := s.repo.GetSale(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}

	if err := s.repo.DeleteSale(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}

	held, err := requestedQuantities(existing.Lines)
	if err != nil {
		return err
	}
	if err := s.repo.AdjustStock(ctx, held); err != nil {
		return err
	}

	s.invalidateViews(ctx)
	s.logAction(ctx, "sale_delete", id, "")
	return nil
}

// ---- purchases ----

func (s *Service) ListPurchases(ctx context.Context) ([]domain.Purchase, error) {
	return s.repo.ListPurchases(ctx)
}

func (s *Service) GetPurchase(ctx context.Context, id string) (domain.Purchase, error) {
	purchase, err := s.repo.GetPurchase(ctx, id)
	if err != nil {
		return domain.Purchase{}, err
	}
	return *purchase, nil
}

// validatePurchase normalizes the request and returns the measurement to
// record for Inventory purchases (taken from the product, not the caller).
func (s *Service) validatePurchase(ctx context.Context, req *domain.PurchaseRequest) (string, error) {
	req.Supplier = strings.TrimSpace(req.Supplier)
	req.Description = strings.TrimSpace(req.Description)

	if req.Supplier == "" || req.Amount < 0 || req.PaidAmount < 0 {
		return "", store.ErrValidation
	}

	switch req.Type {
	case domain.PurchaseTypeInventory:
		if req.ProductID == "" || req.Quantity < 1 {
			return "", store.ErrValidation
		}
		product, err := s.repo.GetProduct(ctx, req.ProductID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return "", store.ErrValidation
			}
			return "", err
		}
		return product.Measurement, nil
	case domain.PurchaseTypeUtility:
		if req.Description == "" {
			return "", store.ErrValidation
		}
		req.ProductID = ""
		req.Quantity = 0
		return "", nil
	default:
		return "", store.ErrValidation
	}
}

func (s *Service) AddPurchase(ctx context.Context, req domain.PurchaseRequest) (domain.Purchase, error) {
	measurement, err := s.validatePurchase(ctx, &req)
	if err != nil {
		return domain.Purchase{}, err
	}

	purchase := domain.Purchase{
		ID:          ids.Purchase(),
		Type:        req.Type,
		Supplier:    req.Supplier,
		Description: req.Description,
		ProductID:   req.ProductID,
		Quantity:    req.Quantity,
		Measurement: measurement,
		Date:        s.today(),
		Amount:      req.Amount,
		PaidAmount:  req.PaidAmount,
		Status:      statusFor(req.Amount, req.PaidAmount),
	}

	created, err := s.repo.CreatePurchase(ctx, purchase)
	if err != nil {
		return domain.Purchase{}, err
	}

	if created.Type == domain.PurchaseTypeInventory {
		if err := s.repo.AdjustStock(ctx, map[string]int{created.ProductID: created.Quantity}); err != nil {
			return domain.Purchase{}, err
		}
	}

	s.logAction(ctx, "purchase_create", created.ID, "supplier="+created.Supplier)
	return *created, nil
}

// UpdatePurchase reconciles stock with a net delta, covering product swaps
// and type flips between Inventory and Utility.
func (s *Service) UpdatePurchase(ctx context.Context, id string, req domain.PurchaseRequest) (domain.Purchase, error) {
	existing, err := s.repo.GetPurchase(ctx, id)
	if err != nil {
		return domain.Purchase{}, err
	}

	measurement, err := s.validatePurchase(ctx, &req)
	if err != nil {
		return domain.Purchase{}, err
	}

	purchase := domain.Purchase{
		ID:          existing.ID,
		Type:        req.Type,
		Supplier:    req.Supplier,
		Description: req.Description,
		ProductID:   req.ProductID,
		Quantity:    req.Quantity,
		Measurement: measurement,
		Date:        existing.Date,
		Amount:      req.Amount,
		PaidAmount:  req.PaidAmount,
		Status:      statusFor(req.Amount, req.PaidAmount),
	}

	updated, err := s.repo.UpdatePurchase(ctx, purchase)
	if err != nil {
		return domain.Purchase{}, err
	}

	deltas := make(map[string]int, 2)
	if existing.Type == domain.PurchaseTypeInventory {
		deltas[existing.ProductID] -= existing.Quantity
	}
	if updated.Type == domain.PurchaseTypeInventory {
		deltas[updated.ProductID] += updated.Quantity
	}
	if len(deltas) > 0 {
		if err := s.repo.AdjustStock(ctx, deltas); err != nil {
			return domain.Purchase{}, err
		}
	}

	s.logAction(ctx, "purchase_update", id, "supplier="+updated.Supplier)
	return *updated, nil
}

// DeletePurchase removes the stock an Inventory purchase added, clamped at
// zero if that stock was already sold. Deleting an unknown purchase is a
// no-op.
func (s *Service) DeletePurchase(ctx context.Context, id string) error {
	existing, err := s.repo.GetPurchase(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}

	if err := s.repo.DeletePurchase(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}

	if existing.Type == domain.PurchaseTypeInventory {
		if err := s.repo.AdjustStock(ctx, map[string]int{existing.ProductID: -existing.Quantity}); err != nil {
			return err
		}
	}

	s.logAction(ctx, "purchase_delete", id, "")
	return nil
}

// ---- payments ----

func (s *Service) ListPayments(ctx context.Context) ([]domain.Payment, error) {
	return s.repo.ListPayments(ctx)
}

// RecordPayment persists a Payment record and then settles the customer's
// Due sales oldest first, greedy FIFO. Allocation only ever increases
// paidAmount and never overshoots a sale's due, so no rollback is needed.
// Any remainder after the last Due sale stays on the payment ledger only;
// it is not carried forward as customer credit.
func (s *Service) RecordPayment(ctx context.Context, customerID string, req domain.PaymentRequest) (domain.Payment, error) {
	if req.Amount <= 0 {
		return domain.Payment{}, store.ErrValidation
	}
	if _, err := s.repo.GetCustomer(ctx, customerID); err != nil {
		return domain.Payment{}, err
	}

	payment := domain.Payment{
		ID:         ids.Payment(),
		CustomerID: customerID,
		Date:       s.today(),
		Amount:     req.Amount,
		Method:     "Cash",
	}
	created, err := s.repo.CreatePayment(ctx, payment)
	if err != nil {
		return domain.Payment{}, err
	}

	sales, err := s.repo.ListSalesByCustomer(ctx, customerID)
	if err != nil {
		return domain.Payment{}, err
	}

	due := make([]domain.Sale, 0, len(sales))
	for _, sale := range sales {
		if sale.Status == domain.StatusDue {
			due = append(due, sale)
		}
	}
	// ISO dates compare correctly as strings. Stable sort keeps the
	// original list order for same-day sales.
	sort.SliceStable(due, func(i, j int) bool {
		return due[i].Date < due[j].Date
	})

	remainder := req.Amount
	for _, sale := range due {
		if remainder <= domain.DueEpsilon {
			break
		}
		applied := remainder
		if outstanding := sale.Due(); applied > outstanding {
			applied = outstanding
		}
		sale.PaidAmount += applied
		remainder -= applied
		sale.Status = statusFor(sale.Amount, sale.PaidAmount)
		if _, err := s.repo.UpdateSale(ctx, sale); err != nil {
			return domain.Payment{}, err
		}
	}

	if remainder > domain.DueEpsilon {
		log.Printf("[service] payment %s exceeds customer %s dues by %.2f; excess recorded, not carried as credit", created.ID, customerID, remainder)
	}

	s.invalidateViews(ctx)
	s.logAction(ctx, "payment_record", created.ID, "customer="+customerID)
	return *created, nil
}

// ---- shop info ----

func (s *Service) GetShopInfo(ctx context.Context) (domain.ShopInfo, error) {
	info, err := s.repo.GetShopInfo(ctx)
	if err != nil {
		return domain.ShopInfo{}, err
	}
	return *info, nil
}

func (s *Service) SaveShopInfo(ctx context.Context, info domain.ShopInfo) error {
	info.Name = strings.TrimSpace(info.Name)
	if info.Name == "" {
		return store.ErrValidation
	}
	if err := s.repo.SaveShopInfo(ctx, info); err != nil {
		return err
	}
	s.logAction(ctx, "shop_info_save", "shop", "")
	return nil
}
