package factory_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/library-engine/factory"
	"github.com/warp/library-engine/lending"
)

func TestParsePolicy_EmptyUsesDefaults(t *testing.T) {
	policy, err := factory.ParsePolicy([]byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, lending.DefaultPolicy(), policy)
}

func TestParsePolicy_Overrides(t *testing.T) {
	policy, err := factory.ParsePolicy([]byte(`{
		"loan_days": 21,
		"renewal_days": 14,
		"max_renewals": 1,
		"daily_fine": "1.25"
	}`))
	require.NoError(t, err)

	assert.Equal(t, 21*24*time.Hour, policy.LoanDuration)
	assert.Equal(t, 14*24*time.Hour, policy.RenewalExtension)
	assert.Equal(t, 1, policy.MaxRenewals)
	assert.Equal(t, int64(125), policy.DailyFineCents)
}

func TestParsePolicy_PartialOverride(t *testing.T) {
	policy, err := factory.ParsePolicy([]byte(`{"daily_fine": "0.25"}`))
	require.NoError(t, err)

	defaults := lending.DefaultPolicy()
	assert.Equal(t, defaults.LoanDuration, policy.LoanDuration)
	assert.Equal(t, defaults.MaxRenewals, policy.MaxRenewals)
	assert.Equal(t, int64(25), policy.DailyFineCents)
}

func TestParsePolicy_Invalid(t *testing.T) {
	_, err := factory.ParsePolicy([]byte(`not json`))
	require.Error(t, err)

	_, err = factory.ParsePolicy([]byte(`{"daily_fine": "abc"}`))
	require.Error(t, err)

	_, err = factory.ParsePolicy([]byte(`{"loan_days": 0}`))
	require.Error(t, err)

	_, err = factory.ParsePolicy([]byte(`{"daily_fine": "-0.50"}`))
	require.Error(t, err)
}

func TestLoadPolicyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"loan_days": 7}`), 0o644))

	policy, err := factory.LoadPolicyFile(path)
	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, policy.LoanDuration)

	_, err = factory.LoadPolicyFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}
