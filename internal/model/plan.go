package model

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// amounts serialize as JSON numbers, matching the documents this service
	// reads and writes
	decimal.MarshalJSONWithoutQuotes = true
}

// USDCDecimals is the number of fractional digits of USDC on every supported
// chain.
const USDCDecimals = 6

type Plan struct {
	Name     string
	Price    decimal.Decimal // whole-USDC units
	Duration time.Duration
}

var plans = map[string]Plan{
	"month": {Name: "month", Price: decimal.NewFromInt(2), Duration: 30 * 24 * time.Hour},
	"year":  {Name: "year", Price: decimal.NewFromInt(12), Duration: 365 * 24 * time.Hour},
}

func PlanByName(name string) (Plan, bool) {
	p, ok := plans[name]
	return p, ok
}

// ToBaseUnits converts a decimal token amount to integer smallest units,
// rounding half away from zero.
func ToBaseUnits(amount decimal.Decimal, decimals int32) uint64 {
	return amount.Shift(decimals).Round(0).BigInt().Uint64()
}
