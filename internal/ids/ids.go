// Package ids generates the record identifiers used across the ledger:
// time-derived ids for sales, purchases and payments (INV/PUR/PAY plus six
// digits) and sequential ids for customers and products (CUSTnnn/PRODnnn).
// Ids are stable for the lifetime of a record; they are used as map keys and
// printed on invoices.
package ids

import (
	"fmt"
	"sync"
	"time"
)

var (
	mu   sync.Mutex
	last int64
)

// timeSuffix returns the last six digits of a millisecond timestamp. The
// guard against repeats keeps rapid successive calls from colliding while
// preserving the printed format.
func timeSuffix() string {
	mu.Lock()
	defer mu.Unlock()

	now := time.Now().UnixMilli()
	if now <= last {
		now = last + 1
	}
	last = now
	return fmt.Sprintf("%06d", now%1000000)
}

func Sale() string {
	return "INV" + timeSuffix()
}

func Purchase() string {
	return "PUR" + timeSuffix()
}

func Payment() string {
	return "PAY" + timeSuffix()
}

func User() string {
	return "USR" + timeSuffix()
}

func Customer(seq int) string {
	return fmt.Sprintf("CUST%03d", seq)
}

func Product(seq int) string {
	return fmt.Sprintf("PROD%03d", seq)
}
