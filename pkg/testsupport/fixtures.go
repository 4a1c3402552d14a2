package testsupport

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-doctemplate/pkg/document"
	"github.com/goliatone/go-doctemplate/pkg/orchestrator"
)

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// Prepare resolves id from the bundled catalog in English. Failures abort the
// test to keep call sites concise.
func Prepare(t *testing.T, id string) orchestrator.Prepared {
	t.Helper()

	prepared, err := orchestrator.New().Prepare(Context(), id, "en")
	if err != nil {
		t.Fatalf("prepare %s: %v", id, err)
	}
	return prepared
}

// LeaseSenderValues returns raw landlord input that makes lease-standard
// ready to send. Tenant fields are left for the counterparty.
func LeaseSenderValues() map[string]string {
	return map[string]string{
		"landlord_name":      "Alex Landlord",
		"monthly_rent":       "2000",
		"security_deposit":   "$2,000",
		"lease_start_date":   "2025-01-01",
		"lease_end_date":     "12/31/2025",
		"landlord_sign_date": "2025-01-01",
		"lease_term_months":  "12",
		"payment_due_day":    "1",
	}
}

// CompareValues fails the test when want and got differ.
func CompareValues(t *testing.T, want, got document.Values) {
	t.Helper()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}
