/*
Package factory converts JSON policy definitions into lending.Policy
values.

PURPOSE:
  Lending terms (loan length, renewal length, renewal cap, daily fine)
  are business decisions, not code. The factory lets operators keep them
  in a JSON file and hands the engine a validated Policy.

JSON SCHEMA:
  {
    "loan_days": 14,
    "renewal_days": 7,
    "max_renewals": 3,
    "daily_fine": "0.50"
  }

  daily_fine is a decimal currency string, converted to cents. Absent
  fields keep the defaults from lending.DefaultPolicy().

USAGE:
  policy, err := factory.ParsePolicy(jsonBytes)
  engine := lending.NewEngine(store, policy)

SEE ALSO:
  - lending/policy.go: Policy type and defaults
  - cmd/server: loads POLICY_PATH at startup
*/
package factory

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/library-engine/lending"
)

// PolicyJSON is the JSON representation of lending terms.
type PolicyJSON struct {
	LoanDays    *int    `json:"loan_days,omitempty"`
	RenewalDays *int    `json:"renewal_days,omitempty"`
	MaxRenewals *int    `json:"max_renewals,omitempty"`
	DailyFine   *string `json:"daily_fine,omitempty"`
}

// ParsePolicy builds a lending.Policy from JSON, filling absent fields
// from the defaults and validating the result.
func ParsePolicy(data []byte) (lending.Policy, error) {
	var cfg PolicyJSON
	if err := json.Unmarshal(data, &cfg); err != nil {
		return lending.Policy{}, fmt.Errorf("parse policy: %w", err)
	}

	policy := lending.DefaultPolicy()
	if cfg.LoanDays != nil {
		policy.LoanDuration = time.Duration(*cfg.LoanDays) * 24 * time.Hour
	}
	if cfg.RenewalDays != nil {
		policy.RenewalExtension = time.Duration(*cfg.RenewalDays) * 24 * time.Hour
	}
	if cfg.MaxRenewals != nil {
		policy.MaxRenewals = *cfg.MaxRenewals
	}
	if cfg.DailyFine != nil {
		fine, err := decimal.NewFromString(*cfg.DailyFine)
		if err != nil {
			return lending.Policy{}, fmt.Errorf("parse policy: daily_fine %q: %w", *cfg.DailyFine, err)
		}
		policy.DailyFineCents = lending.DecimalToCents(fine)
	}

	if err := policy.Validate(); err != nil {
		return lending.Policy{}, err
	}
	return policy, nil
}

// LoadPolicyFile reads and parses a policy JSON file.
func LoadPolicyFile(path string) (lending.Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return lending.Policy{}, fmt.Errorf("load policy file: %w", err)
	}
	return ParsePolicy(data)
}
