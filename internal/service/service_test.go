package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"lekhajokha/backend/internal/domain"
	"lekhajokha/backend/internal/store"
	"lekhajokha/backend/internal/store/memory"
)

func newTestService() *Service {
	return New(memory.NewSeeded(), nil)
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < domain.DueEpsilon
}

func onDate(svc *Service, date string) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	svc.now = func() time.Time { return day }
}

func seedCustomer(t *testing.T, svc *Service, name string, phone string) domain.Customer {
	t.Helper()
	customer, err := svc.CreateCustomer(context.Background(), domain.CustomerCreateRequest{
		Name:    name,
		Phone:   phone,
		Address: "Mirpur, Dhaka",
	})
	if err != nil {
		t.Fatalf("create customer failed: %v", err)
	}
	return customer
}

func seedProduct(t *testing.T, svc *Service, name string, stock *int, price float64) domain.Product {
	t.Helper()
	product, err := svc.CreateProduct(context.Background(), domain.ProductCreateRequest{
		Name:        name,
		Category:    "General",
		Measurement: "pcs",
		Stock:       stock,
		Price:       price,
	})
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func intPtr(v int) *int { return &v }

func currentStock(t *testing.T, svc *Service, id string) int {
	t.Helper()
	product, err := svc.GetProduct(context.Background(), id)
	if err != nil {
		t.Fatalf("get product failed: %v", err)
	}
	if product.Stock == nil {
		t.Fatalf("expected tracked stock on %s", id)
	}
	return *product.Stock
}

func TestSaleStatusDerivedFromAmounts(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	customer := seedCustomer(t, svc, "Rahim Traders", "01711223344")
	product := seedProduct(t, svc, "Rice 25kg", intPtr(50), 1800)

	full, err := svc.AddSale(ctx, domain.SaleRequest{
		CustomerID: customer.ID,
		PaidAmount: 3600,
		Lines:      []domain.SaleLine{{ProductID: product.ID, Quantity: 2, Price: 1800}},
	})
	if err != nil {
		t.Fatalf("add sale failed: %v", err)
	}
	if full.Status != domain.StatusPaid {
		t.Fatalf("expected fully paid sale to be Paid, got %s", full.Status)
	}
	if !approx(full.Amount, 3600) {
		t.Fatalf("expected amount 3600, got %.2f", full.Amount)
	}

	partial, err := svc.AddSale(ctx, domain.SaleRequest{
		CustomerID: customer.ID,
		PaidAmount: 1000,
		Lines:      []domain.SaleLine{{ProductID: product.ID, Quantity: 1, Price: 1800}},
	})
	if err != nil {
		t.Fatalf("add sale failed: %v", err)
	}
	if partial.Status != domain.StatusDue {
		t.Fatalf("expected partially paid sale to be Due, got %s", partial.Status)
	}
	if !approx(partial.Due(), 800) {
		t.Fatalf("expected due 800, got %.2f", partial.Due())
	}
}

func TestSaleStockRoundTrip(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	customer := seedCustomer(t, svc, "Karim Store", "01812345678")
	product := seedProduct(t, svc, "Atta 10kg", intPtr(10), 600)

	sale, err := svc.AddSale(ctx, domain.SaleRequest{
		CustomerID: customer.ID,
		PaidAmount: 1800,
		Lines:      []domain.SaleLine{{ProductID: product.ID, Quantity: 3, Price: 600}},
	})
	if err != nil {
		t.Fatalf("add sale failed: %v", err)
	}
	if got := currentStock(t, svc, product.ID); got != 7 {
		t.Fatalf("expected stock 7 after sale, got %d", got)
	}

	if err := svc.DeleteSale(ctx, sale.ID); err != nil {
		t.Fatalf("delete sale failed: %v", err)
	}
	if got := currentStock(t, svc, product.ID); got != 10 {
		t.Fatalf("expected stock restored to 10, got %d", got)
	}
}

func TestSaleEditAppliesNetStockDelta(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	customer := seedCustomer(t, svc, "Salam Hardware", "01911112222")
	product := seedProduct(t, svc, "Cement Bag", intPtr(10), 550)

	sale, err := svc.AddSale(ctx, domain.SaleRequest{
		CustomerID: customer.ID,
		PaidAmount: 0,
		Lines:      []domain.SaleLine{{ProductID: product.ID, Quantity: 3, Price: 550}},
	})
	if err != nil {
		t.Fatalf("add sale failed: %v", err)
	}
	if got := currentStock(t, svc, product.ID); got != 7 {
		t.Fatalf("expected stock 7, got %d", got)
	}

	if _, err := svc.UpdateSale(ctx, sale.ID, domain.SaleRequest{
		CustomerID: customer.ID,
		PaidAmount: 0,
		Lines:      []domain.SaleLine{{ProductID: product.ID, Quantity: 5, Price: 550}},
	}); err != nil {
		t.Fatalf("update sale failed: %v", err)
	}
	if got := currentStock(t, svc, product.ID); got != 5 {
		t.Fatalf("expected stock 5 after edit to 5 units, got %d", got)
	}

	// The 5 units held by this sale count as available to its own edit.
	if _, err := svc.UpdateSale(ctx, sale.ID, domain.SaleRequest{
		CustomerID: customer.ID,
		PaidAmount: 0,
		Lines:      []domain.SaleLine{{ProductID: product.ID, Quantity: 10, Price: 550}},
	}); err != nil {
		t.Fatalf("update to full availability failed: %v", err)
	}
	if got := currentStock(t, svc, product.ID); got != 0 {
		t.Fatalf("expected stock 0, got %d", got)
	}

	_, err = svc.UpdateSale(ctx, sale.ID, domain.SaleRequest{
		CustomerID: customer.ID,
		PaidAmount: 0,
		Lines:      []domain.SaleLine{{ProductID: product.ID, Quantity: 11, Price: 550}},
	})
	if !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	if err := svc.DeleteSale(ctx, sale.ID); err != nil {
		t.Fatalf("delete sale failed: %v", err)
	}
	if got := currentStock(t, svc, product.ID); got != 10 {
		t.Fatalf("expected stock restored to 10, got %d", got)
	}
}

func TestSaleRejectsInsufficientStockBeforeMutating(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	customer := seedCustomer(t, svc, "Noor Traders", "01755556666")
	product := seedProduct(t, svc, "Lentils 5kg", intPtr(2), 700)

	_, err := svc.AddSale(ctx, domain.SaleRequest{
		CustomerID: customer.ID,
		PaidAmount: 0,
		Lines:      []domain.SaleLine{{ProductID: product.ID, Quantity: 3, Price: 700}},
	})
	if !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	if got := currentStock(t, svc, product.ID); got != 2 {
		t.Fatalf("expected stock untouched at 2, got %d", got)
	}
	sales, err := svc.ListSales(ctx)
	if err != nil {
		t.Fatalf("list sales failed: %v", err)
	}
	if len(sales) != 0 {
		t.Fatalf("expected no sale recorded, got %d", len(sales))
	}
}

func TestServiceLinesBypassStockTracking(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	customer := seedCustomer(t, svc, "Mill Customer", "01766667777")
	grinding := seedProduct(t, svc, "Grinding Service", nil, 40)

	sale, err := svc.AddSale(ctx, domain.SaleRequest{
		CustomerID: customer.ID,
		PaidAmount: 120,
		Lines:      []domain.SaleLine{{ProductID: grinding.ID, Quantity: 3, Price: 40}},
	})
	if err != nil {
		t.Fatalf("add service sale failed: %v", err)
	}
	if sale.Status != domain.StatusPaid {
		t.Fatalf("expected Paid, got %s", sale.Status)
	}

	product, err := svc.GetProduct(ctx, grinding.ID)
	if err != nil {
		t.Fatalf("get product failed: %v", err)
	}
	if product.Stock != nil {
		t.Fatalf("expected service to remain untracked")
	}
}

func TestPaymentAllocatesOldestFirst(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	customer := seedCustomer(t, svc, "Due Customer", "01788889999")
	product := seedProduct(t, svc, "Oil 5L", nil, 1)

	onDate(svc, "2024-01-01")
	s1, err := svc.AddSale(ctx, domain.SaleRequest{
		CustomerID: customer.ID,
		PaidAmount: 30,
		Lines:      []domain.SaleLine{{ProductID: product.ID, Quantity: 100, Price: 1}},
	})
	if err != nil {
		t.Fatalf("add sale failed: %v", err)
	}

	onDate(svc, "2024-02-01")
	s2, err := svc.AddSale(ctx, domain.SaleRequest{
		CustomerID: customer.ID,
		PaidAmount: 0,
		Lines:      []domain.SaleLine{{ProductID: product.ID, Quantity: 50, Price: 1}},
	})
	if err != nil {
		t.Fatalf("add sale failed: %v", err)
	}

	payment, err := svc.RecordPayment(ctx, customer.ID, domain.PaymentRequest{Amount: 90})
	if err != nil {
		t.Fatalf("record payment failed: %v", err)
	}
	if !approx(payment.Amount, 90) || payment.Method != "Cash" {
		t.Fatalf("unexpected payment record: %+v", payment)
	}

	first, err := svc.GetSale(ctx, s1.ID)
	if err != nil {
		t.Fatalf("get sale failed: %v", err)
	}
	if first.Status != domain.StatusPaid || !approx(first.PaidAmount, 100) {
		t.Fatalf("expected oldest sale settled, got status=%s paid=%.2f", first.Status, first.PaidAmount)
	}

	second, err := svc.GetSale(ctx, s2.ID)
	if err != nil {
		t.Fatalf("get sale failed: %v", err)
	}
	if second.Status != domain.StatusDue || !approx(second.PaidAmount, 20) || !approx(second.Due(), 30) {
		t.Fatalf("expected 20 applied to newer sale, got status=%s paid=%.2f", second.Status, second.PaidAmount)
	}

	payments, err := svc.ListPayments(ctx)
	if err != nil {
		t.Fatalf("list payments failed: %v", err)
	}
	if len(payments) != 1 {
		t.Fatalf("expected exactly one payment record, got %d", len(payments))
	}
}

func TestPaymentRemainderRecordedButNotCarried(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	customer := seedCustomer(t, svc, "Overpayer", "01700001111")
	product := seedProduct(t, svc, "Flour 1kg", nil, 50)

	if _, err := svc.AddSale(ctx, domain.SaleRequest{
		CustomerID: customer.ID,
		PaidAmount: 0,
		Lines:      []domain.SaleLine{{ProductID: product.ID, Quantity: 2, Price: 50}},
	}); err != nil {
		t.Fatalf("add sale failed: %v", err)
	}

	payment, err := svc.RecordPayment(ctx, customer.ID, domain.PaymentRequest{Amount: 150})
	if err != nil {
		t.Fatalf("record payment failed: %v", err)
	}
	if !approx(payment.Amount, 150) {
		t.Fatalf("expected full payment recorded, got %.2f", payment.Amount)
	}

	view, err := svc.GetCustomerView(ctx, customer.ID)
	if err != nil {
		t.Fatalf("get view failed: %v", err)
	}
	if !approx(view.DueAmount, 0) {
		t.Fatalf("expected no dues, got %.2f", view.DueAmount)
	}
	if view.DueSince != domain.NotAvailable {
		t.Fatalf("expected dueSince N/A, got %s", view.DueSince)
	}
}

func TestPaymentRejectsNonPositiveAmount(t *testing.T) {
	svc := newTestService()
	customer := seedCustomer(t, svc, "Zero Payer", "01700002222")

	for _, amount := range []float64{0, -10} {
		_, err := svc.RecordPayment(context.Background(), customer.ID, domain.PaymentRequest{Amount: amount})
		if !errors.Is(err, store.ErrValidation) {
			t.Fatalf("expected validation error for amount %.2f, got %v", amount, err)
		}
	}
}

func TestPaymentRequiresKnownCustomer(t *testing.T) {
	svc := newTestService()

	_, err := svc.RecordPayment(context.Background(), "CUST999", domain.PaymentRequest{Amount: 10})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCustomerViewAggregates(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	customer := seedCustomer(t, svc, "Aggregate Customer", "01733334444")
	product := seedProduct(t, svc, "Sugar 1kg", nil, 100)

	fresh, err := svc.GetCustomerView(ctx, customer.ID)
	if err != nil {
		t.Fatalf("get view failed: %v", err)
	}
	if fresh.LastPurchase != domain.NotAvailable || fresh.DueSince != domain.NotAvailable || !approx(fresh.DueAmount, 0) {
		t.Fatalf("expected N/A sentinels on fresh customer, got %+v", fresh)
	}

	onDate(svc, "2024-03-01")
	if _, err := svc.AddSale(ctx, domain.SaleRequest{
		CustomerID: customer.ID,
		PaidAmount: 50,
		Lines:      []domain.SaleLine{{ProductID: product.ID, Quantity: 1, Price: 100}},
	}); err != nil {
		t.Fatalf("add sale failed: %v", err)
	}
	onDate(svc, "2024-03-10")
	if _, err := svc.AddSale(ctx, domain.SaleRequest{
		CustomerID: customer.ID,
		PaidAmount: 100,
		Lines:      []domain.SaleLine{{ProductID: product.ID, Quantity: 1, Price: 100}},
	}); err != nil {
		t.Fatalf("add sale failed: %v", err)
	}

	view, err := svc.GetCustomerView(ctx, customer.ID)
	if err != nil {
		t.Fatalf("get view failed: %v", err)
	}
	if !approx(view.DueAmount, 50) {
		t.Fatalf("expected due 50, got %.2f", view.DueAmount)
	}
	if view.LastPurchase != "2024-03-10" {
		t.Fatalf("expected last purchase 2024-03-10, got %s", view.LastPurchase)
	}
	if view.DueSince != "2024-03-01" {
		t.Fatalf("expected due since 2024-03-01, got %s", view.DueSince)
	}

	again, err := svc.GetCustomerView(ctx, customer.ID)
	if err != nil {
		t.Fatalf("get view failed: %v", err)
	}
	if again != view {
		t.Fatalf("expected identical view on repeated read: %+v vs %+v", again, view)
	}
}

func TestInventoryPurchaseStockLifecycle(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	product := seedProduct(t, svc, "Wheat 50kg", intPtr(5), 2400)

	purchase, err := svc.AddPurchase(ctx, domain.PurchaseRequest{
		Type:       domain.PurchaseTypeInventory,
		Supplier:   "City Wholesale",
		ProductID:  product.ID,
		Quantity:   20,
		Amount:     40000,
		PaidAmount: 40000,
	})
	if err != nil {
		t.Fatalf("add purchase failed: %v", err)
	}
	if purchase.Measurement != "pcs" {
		t.Fatalf("expected measurement copied from product, got %q", purchase.Measurement)
	}
	if got := currentStock(t, svc, product.ID); got != 25 {
		t.Fatalf("expected stock 25, got %d", got)
	}

	if err := svc.DeletePurchase(ctx, purchase.ID); err != nil {
		t.Fatalf("delete purchase failed: %v", err)
	}
	if got := currentStock(t, svc, product.ID); got != 5 {
		t.Fatalf("expected stock back to 5, got %d", got)
	}
}

func TestPurchaseDeleteClampsStockAtZero(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	customer := seedCustomer(t, svc, "Bulk Buyer", "01744445555")
	product := seedProduct(t, svc, "Salt 1kg", intPtr(0), 35)

	purchase, err := svc.AddPurchase(ctx, domain.PurchaseRequest{
		Type:      domain.PurchaseTypeInventory,
		Supplier:  "Salt Works",
		ProductID: product.ID,
		Quantity:  10,
		Amount:    300,
	})
	if err != nil {
		t.Fatalf("add purchase failed: %v", err)
	}

	// Sell the purchased stock, then delete the purchase: the reversal
	// would go negative, so it clamps at zero.
	if _, err := svc.AddSale(ctx, domain.SaleRequest{
		CustomerID: customer.ID,
		PaidAmount: 280,
		Lines:      []domain.SaleLine{{ProductID: product.ID, Quantity: 8, Price: 35}},
	}); err != nil {
		t.Fatalf("add sale failed: %v", err)
	}
	if err := svc.DeletePurchase(ctx, purchase.ID); err != nil {
		t.Fatalf("delete purchase failed: %v", err)
	}
	if got := currentStock(t, svc, product.ID); got != 0 {
		t.Fatalf("expected stock clamped at 0, got %d", got)
	}
}

func TestPurchaseTypeRules(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.AddPurchase(ctx, domain.PurchaseRequest{
		Type:     domain.PurchaseTypeUtility,
		Supplier: "DESCO",
		Amount:   1200,
	})
	if !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected utility without description to fail, got %v", err)
	}

	utility, err := svc.AddPurchase(ctx, domain.PurchaseRequest{
		Type:        domain.PurchaseTypeUtility,
		Supplier:    "DESCO",
		Description: "Electricity bill",
		Amount:      1200,
		PaidAmount:  1200,
	})
	if err != nil {
		t.Fatalf("add utility purchase failed: %v", err)
	}
	if utility.ProductID != "" || utility.Quantity != 0 {
		t.Fatalf("expected utility purchase to carry no product fields: %+v", utility)
	}

	_, err = svc.AddPurchase(ctx, domain.PurchaseRequest{
		Type:     domain.PurchaseTypeInventory,
		Supplier: "City Wholesale",
		Amount:   500,
	})
	if !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected inventory without product to fail, got %v", err)
	}
}

func TestPurchaseEditReconcilesStockAcrossTypeFlip(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	product := seedProduct(t, svc, "Mustard Oil 1L", intPtr(3), 220)

	purchase, err := svc.AddPurchase(ctx, domain.PurchaseRequest{
		Type:      domain.PurchaseTypeInventory,
		Supplier:  "Oil Depot",
		ProductID: product.ID,
		Quantity:  12,
		Amount:    2200,
	})
	if err != nil {
		t.Fatalf("add purchase failed: %v", err)
	}
	if got := currentStock(t, svc, product.ID); got != 15 {
		t.Fatalf("expected stock 15, got %d", got)
	}

	if _, err := svc.UpdatePurchase(ctx, purchase.ID, domain.PurchaseRequest{
		Type:      domain.PurchaseTypeInventory,
		Supplier:  "Oil Depot",
		ProductID: product.ID,
		Quantity:  7,
		Amount:    1300,
	}); err != nil {
		t.Fatalf("update purchase failed: %v", err)
	}
	if got := currentStock(t, svc, product.ID); got != 10 {
		t.Fatalf("expected stock 10 after quantity cut, got %d", got)
	}

	if _, err := svc.UpdatePurchase(ctx, purchase.ID, domain.PurchaseRequest{
		Type:        domain.PurchaseTypeUtility,
		Supplier:    "Oil Depot",
		Description: "Reclassified as transport cost",
		Amount:      1300,
	}); err != nil {
		t.Fatalf("flip to utility failed: %v", err)
	}
	if got := currentStock(t, svc, product.ID); got != 3 {
		t.Fatalf("expected stock back to 3 after type flip, got %d", got)
	}
}

func TestUpdateMissingSaleReturnsNotFound(t *testing.T) {
	svc := newTestService()
	customer := seedCustomer(t, svc, "Ghost", "01722223333")
	product := seedProduct(t, svc, "Tea 500g", nil, 250)

	_, err := svc.UpdateSale(context.Background(), "INV000000", domain.SaleRequest{
		CustomerID: customer.ID,
		Lines:      []domain.SaleLine{{ProductID: product.ID, Quantity: 1, Price: 250}},
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteMissingSaleAndPurchaseAreNoOps(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if err := svc.DeleteSale(ctx, "INV000000"); err != nil {
		t.Fatalf("expected silent no-op, got %v", err)
	}
	if err := svc.DeletePurchase(ctx, "PUR000000"); err != nil {
		t.Fatalf("expected silent no-op, got %v", err)
	}
}

func TestCustomerValidationAndCascade(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.CreateCustomer(ctx, domain.CustomerCreateRequest{
		Name:  "Short Phone",
		Phone: "0171234",
	}); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected short phone to fail, got %v", err)
	}

	first := seedCustomer(t, svc, "First", "01712345678")
	if _, err := svc.CreateCustomer(ctx, domain.CustomerCreateRequest{
		Name:  "Second",
		Phone: "01712345678",
	}); !errors.Is(err, store.ErrDuplicatePhone) {
		t.Fatalf("expected duplicate phone to fail, got %v", err)
	}

	product := seedProduct(t, svc, "Honey 500g", intPtr(4), 900)
	if _, err := svc.AddSale(ctx, domain.SaleRequest{
		CustomerID: first.ID,
		PaidAmount: 0,
		Lines:      []domain.SaleLine{{ProductID: product.ID, Quantity: 2, Price: 900}},
	}); err != nil {
		t.Fatalf("add sale failed: %v", err)
	}
	if _, err := svc.RecordPayment(ctx, first.ID, domain.PaymentRequest{Amount: 500}); err != nil {
		t.Fatalf("record payment failed: %v", err)
	}

	if err := svc.DeleteCustomer(ctx, first.ID); err != nil {
		t.Fatalf("delete customer failed: %v", err)
	}

	sales, err := svc.ListSales(ctx)
	if err != nil {
		t.Fatalf("list sales failed: %v", err)
	}
	if len(sales) != 0 {
		t.Fatalf("expected cascaded sales removal, got %d", len(sales))
	}
	payments, err := svc.ListPayments(ctx)
	if err != nil {
		t.Fatalf("list payments failed: %v", err)
	}
	if len(payments) != 0 {
		t.Fatalf("expected cascaded payments removal, got %d", len(payments))
	}
	// Stock consumed by the cascaded sale stays consumed.
	if got := currentStock(t, svc, product.ID); got != 2 {
		t.Fatalf("expected stock to remain 2 after cascade, got %d", got)
	}
}

func TestCustomerSequentialIDs(t *testing.T) {
	svc := newTestService()
	a := seedCustomer(t, svc, "A", "01710000001")
	b := seedCustomer(t, svc, "B", "01710000002")
	if a.ID != "CUST001" || b.ID != "CUST002" {
		t.Fatalf("expected CUST001/CUST002, got %s/%s", a.ID, b.ID)
	}

	if err := svc.DeleteCustomer(context.Background(), b.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	c := seedCustomer(t, svc, "C", "01710000003")
	if c.ID != "CUST002" {
		t.Fatalf("expected sequence to continue from highest live id, got %s", c.ID)
	}
}

func TestSetProductStock(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	product := seedProduct(t, svc, "Spice Mix", intPtr(3), 80)
	service := seedProduct(t, svc, "Husking", nil, 20)

	if err := svc.SetProductStock(ctx, product.ID, 40); err != nil {
		t.Fatalf("set stock failed: %v", err)
	}
	if got := currentStock(t, svc, product.ID); got != 40 {
		t.Fatalf("expected stock 40, got %d", got)
	}

	if err := svc.SetProductStock(ctx, service.ID, 5); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected setting stock on a service to fail, got %v", err)
	}
	if err := svc.SetProductStock(ctx, product.ID, -1); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected negative stock to fail, got %v", err)
	}
}

func TestBuildReport(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	customer := seedCustomer(t, svc, "Report Customer", "01766660000")
	rice := seedProduct(t, svc, "Rice 25kg", intPtr(0), 10)
	grinding := seedProduct(t, svc, "Grinding", nil, 30)

	onDate(svc, "2024-05-01")
	if _, err := svc.AddPurchase(ctx, domain.PurchaseRequest{
		Type:       domain.PurchaseTypeInventory,
		Supplier:   "City Wholesale",
		ProductID:  rice.ID,
		Quantity:   10,
		Amount:     50,
		PaidAmount: 50,
	}); err != nil {
		t.Fatalf("add purchase failed: %v", err)
	}
	if _, err := svc.AddPurchase(ctx, domain.PurchaseRequest{
		Type:        domain.PurchaseTypeUtility,
		Supplier:    "DESCO",
		Description: "Electricity",
		Amount:      7,
		PaidAmount:  7,
	}); err != nil {
		t.Fatalf("add utility failed: %v", err)
	}

	onDate(svc, "2024-05-10")
	if _, err := svc.AddSale(ctx, domain.SaleRequest{
		CustomerID: customer.ID,
		PaidAmount: 35,
		Lines: []domain.SaleLine{
			{ProductID: rice.ID, Quantity: 4, Price: 10},
			{ProductID: grinding.ID, Quantity: 1, Price: 30},
		},
	}); err != nil {
		t.Fatalf("add sale failed: %v", err)
	}

	report, err := svc.BuildReport(ctx, "2024-05-01", "2024-05-31")
	if err != nil {
		t.Fatalf("build report failed: %v", err)
	}

	if !approx(report.TotalRevenue, 70) || !approx(report.TotalPaid, 35) || !approx(report.TotalDue, 35) {
		t.Fatalf("unexpected revenue totals: %+v", report)
	}
	if !approx(report.TotalExpenses, 57) {
		t.Fatalf("expected expenses 57, got %.2f", report.TotalExpenses)
	}
	if len(report.UtilityExpenses) != 1 {
		t.Fatalf("expected one utility expense, got %d", len(report.UtilityExpenses))
	}

	if len(report.Products) != 1 {
		t.Fatalf("expected one product row, got %d", len(report.Products))
	}
	row := report.Products[0]
	// Average cost 50/10 = 5 per unit; 4 units sold.
	if row.Quantity != 4 || !approx(row.Revenue, 40) || !approx(row.COGS, 20) || !approx(row.Profit, 20) {
		t.Fatalf("unexpected product row: %+v", row)
	}
	// Half the sale was collected, so half of each line is paid.
	if !approx(row.Paid, 20) || !approx(row.Due, 20) {
		t.Fatalf("expected prorated paid 20/due 20, got %+v", row)
	}

	if len(report.Services) != 1 {
		t.Fatalf("expected one service row, got %d", len(report.Services))
	}
	svcRow := report.Services[0]
	if svcRow.Quantity != 1 || !approx(svcRow.Revenue, 30) || !approx(svcRow.Paid, 15) {
		t.Fatalf("unexpected service row: %+v", svcRow)
	}

	// 6 units left at average cost 5.
	if !approx(report.StockValue, 30) {
		t.Fatalf("expected stock value 30, got %.2f", report.StockValue)
	}
	// Revenue 70 - COGS 20 - utility 7.
	if !approx(report.TotalProfit, 43) {
		t.Fatalf("expected profit 43, got %.2f", report.TotalProfit)
	}
}

func TestBuildReportRejectsBadRange(t *testing.T) {
	svc := newTestService()
	_, err := svc.BuildReport(context.Background(), "2024-06-01", "2024-05-01")
	if !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.BuildReport(context.Background(), "", "2024-05-01"); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected validation error for empty from, got %v", err)
	}
}

func TestCustomerViewCacheInvalidation(t *testing.T) {
	repo := memory.NewSeeded()
	fake := &fakeViewCache{}
	svc := New(repo, fake)
	ctx := context.Background()

	customer := seedCustomer(t, svc, "Cached", "01799990000")
	if fake.invalidations == 0 {
		t.Fatalf("expected customer create to invalidate the view cache")
	}

	if _, err := svc.ListCustomerViews(ctx); err != nil {
		t.Fatalf("list views failed: %v", err)
	}
	if fake.sets != 1 {
		t.Fatalf("expected a cache fill after miss, got %d", fake.sets)
	}

	cached, err := svc.ListCustomerViews(ctx)
	if err != nil {
		t.Fatalf("list views failed: %v", err)
	}
	if fake.hits != 1 {
		t.Fatalf("expected a cache hit on second read, got %d", fake.hits)
	}
	if len(cached) != 1 || cached[0].ID != customer.ID {
		t.Fatalf("unexpected cached views: %+v", cached)
	}

	before := fake.invalidations
	if _, err := svc.RecordPayment(ctx, customer.ID, domain.PaymentRequest{Amount: 10}); err != nil {
		t.Fatalf("record payment failed: %v", err)
	}
	if fake.invalidations <= before {
		t.Fatalf("expected payment to invalidate the view cache")
	}
}

type fakeViewCache struct {
	views         []domain.CustomerView
	filled        bool
	sets          int
	hits          int
	invalidations int
}

func (f *fakeViewCache) Get(_ context.Context) ([]domain.CustomerView, bool, error) {
	if !f.filled {
		return nil, false, nil
	}
	f.hits++
	return f.views, true, nil
}

func (f *fakeViewCache) Set(_ context.Context, views []domain.CustomerView, _ time.Duration) error {
	f.views = views
	f.filled = true
	f.sets++
	return nil
}

func (f *fakeViewCache) Invalidate(_ context.Context) error {
	f.views = nil
	f.filled = false
	f.invalidations++
	return nil
}
