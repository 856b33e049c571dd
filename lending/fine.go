/*
fine.go - Late-return fine arithmetic

PURPOSE:
  Fines accrue per whole day of lateness. A loan due exactly at the
  return instant is on time; partial days do not count. Amounts are held
  in the smallest currency unit and only converted to decimal currency
  at the presentation edge.
*/
package lending

import (
	"time"

	"github.com/shopspring/decimal"
)

const hoursPerDay = 24

// DaysLate returns the number of whole days between due and returned,
// floored, never negative. Returning any time within the due day costs
// nothing; the first chargeable day completes 24h after the due instant.
func DaysLate(due, returned time.Time) int {
	if !returned.After(due) {
		return 0
	}
	return int(returned.Sub(due).Hours() / hoursPerDay)
}

// Fine returns the fine in cents for a return at the given instant.
func (p Policy) Fine(due, returned time.Time) int64 {
	return int64(DaysLate(due, returned)) * p.DailyFineCents
}

// CentsToDecimal converts a cent amount to a decimal currency value,
// e.g. 150 -> 1.50.
func CentsToDecimal(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100))
}

// DecimalToCents converts a decimal currency value to cents, rounding
// half away from zero at the second decimal place.
func DecimalToCents(d decimal.Decimal) int64 {
	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
