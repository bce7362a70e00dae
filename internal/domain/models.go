package domain

// DueEpsilon is the tolerance used for every monetary comparison. Amounts are
// stored as float64, so a sale counts as Due only when the outstanding balance
// exceeds this threshold.
const DueEpsilon = 0.001

const (
	StatusPaid = "Paid"
	StatusDue  = "Due"
)

const (
	PurchaseTypeInventory = "Inventory"
	PurchaseTypeUtility   = "Utility"
)

// NotAvailable is the sentinel returned for derived customer dates when no
// qualifying sale exists. It appears verbatim on customer listings and
// printed statements.
const NotAvailable = "N/A"

// Product is an inventory item or a service. Stock is nil for services,
// which have no trackable quantity; for tracked products it never goes
// negative.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Measurement string  `json:"measurement"`
	Stock       *int    `json:"stock"`
	Price       float64 `json:"price"`
}

// Tracked reports whether the product carries a stock quantity.
func (p Product) Tracked() bool {
	return p.Stock != nil
}

type ProductCreateRequest struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Measurement string  `json:"measurement"`
	Stock       *int    `json:"stock"`
	Price       float64 `json:"price"`
}

type Customer struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type CustomerCreateRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// CustomerView is a Customer plus the derived aggregates. The three derived
// fields are recomputed from the sales list on every read and are never
// persisted.
type CustomerView struct {
	Customer
	DueAmount    float64 `json:"dueAmount"`
	LastPurchase string  `json:"lastPurchase"`
	DueSince     string  `json:"dueSince"`
}

// SaleLine is one product sold within a sale.
type SaleLine struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type Sale struct {
	ID         string     `json:"id"`
	CustomerID string     `json:"customerId"`
	Date       string     `json:"date"`
	Lines      []SaleLine `json:"products"`
	Amount     float64    `json:"amount"`
	PaidAmount float64    `json:"paidAmount"`
	Status     string     `json:"status"`
}

// Due returns the outstanding balance on the sale.
func (s Sale) Due() float64 {
	return s.Amount - s.PaidAmount
}

type SaleRequest struct {
	CustomerID string     `json:"customerId"`
	PaidAmount float64    `json:"paidAmount"`
	Lines      []SaleLine `json:"products"`
}

// Purchase records either an inventory restock (one product, a quantity) or a
// utility expense (free-text description, no stock effect).
type Purchase struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	Supplier    string  `json:"supplier"`
	Description string  `json:"description"`
	ProductID   string  `json:"productId,omitempty"`
	Quantity    int     `json:"quantity,omitempty"`
	Measurement string  `json:"measurement,omitempty"`
	Date        string  `json:"date"`
	Amount      float64 `json:"amount"`
	PaidAmount  float64 `json:"paidAmount"`
	Status      string  `json:"status"`
}

type PurchaseRequest struct {
	Type        string  `json:"type"`
	Supplier    string  `json:"supplier"`
	Description string  `json:"description,omitempty"`
	ProductID   string  `json:"productId,omitempty"`
	Quantity    int     `json:"quantity,omitempty"`
	Amount      float64 `json:"amount"`
	PaidAmount  float64 `json:"paidAmount"`
}

// Payment is immutable once recorded; there is no edit path. Payments are
// deleted only as part of a customer-deletion cascade.
type Payment struct {
	ID         string  `json:"id"`
	CustomerID string  `json:"customerId"`
	Date       string  `json:"date"`
	Amount     float64 `json:"amount"`
	Method     string  `json:"method"`
}

type PaymentRequest struct {
	Amount float64 `json:"amount"`
}

type ShopInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Contact string `json:"contact"`
	Logo    string `json:"logo,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   string `json:"expires_at"`
}

type Actor struct {
	Email string
}

// UserAccount is an internal persistence model for auth credentials.
// Password holds a bcrypt hash, never plaintext.
type UserAccount struct {
	ID       string
	Email    string
	Password string
}

// Report aggregates sales, purchases and stock over a date range, as shown on
// the reports page. Average purchase cost per product is taken over all
// inventory purchases, not only those in range, so COGS stays meaningful for
// stock bought before the period.
type Report struct {
	From            string          `json:"from"`
	To              string          `json:"to"`
	TotalRevenue    float64         `json:"totalRevenue"`
	TotalPaid       float64         `json:"totalPaidAmount"`
	TotalDue        float64         `json:"totalDueAmount"`
	TotalExpenses   float64         `json:"totalExpenses"`
	TotalProfit     float64         `json:"totalProfit"`
	StockValue      float64         `json:"stockValue"`
	Products        []ProductReport `json:"productReports"`
	Services        []ServiceReport `json:"serviceReports"`
	UtilityExpenses []Purchase      `json:"utilityExpenses"`
}

type ProductReport struct {
	ProductID string  `json:"id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Revenue   float64 `json:"revenue"`
	Paid      float64 `json:"paid"`
	Due       float64 `json:"due"`
	COGS      float64 `json:"cogs"`
	Profit    float64 `json:"profit"`
}

type ServiceReport struct {
	ProductID string  `json:"id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Revenue   float64 `json:"revenue"`
	Paid      float64 `json:"paid"`
	Due       float64 `json:"due"`
}
