package validation_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-doctemplate/pkg/document"
	"github.com/goliatone/go-doctemplate/pkg/fields"
	"github.com/goliatone/go-doctemplate/pkg/validation"
)

var leaseNames = []string{
	"landlord_name", "tenant_name", "landlord_email", "tenant_email",
	"property_address", "lease_start_date", "lease_end_date", "lease_term_months",
	"monthly_rent", "payment_due_day", "security_deposit",
	"landlord_signature", "landlord_sign_date", "tenant_signature", "tenant_sign_date",
}

func TestValidate_SaveDraftScenario(t *testing.T) {
	defs := fields.Definitions([]string{
		"landlord_name", "tenant_name", "monthly_rent", "security_deposit", "lease_start_date", "lease_end_date",
	}, "lease-standard")
	values := document.TextValues(map[string]string{
		"landlord_name":    "A",
		"tenant_name":      "",
		"monthly_rent":     "2000",
		"security_deposit": "",
		"lease_start_date": "2025-01-01",
		"lease_end_date":   "2025-12-31",
	})

	result := validation.Validate(defs, values, validation.RoleSaveDraft, validation.WithTemplate("lease-standard"))
	if result.Valid {
		t.Fatalf("expected invalid result")
	}
	if diff := cmp.Diff([]string{"security_deposit", "tenant_name"}, result.Fields()); diff != "" {
		t.Fatalf("error fields mismatch (-want +got):\n%s", diff)
	}
	if result.Errors["tenant_name"] != "Tenant Name is required" {
		t.Fatalf("unexpected message %q", result.Errors["tenant_name"])
	}
}

func TestValidate_SaveDraftIgnoresSignatures(t *testing.T) {
	defs := fields.Definitions(leaseNames, "lease-standard")
	values := senderValues()
	delete(values, "landlord_signature")
	delete(values, "landlord_sign_date")

	result := validation.Validate(defs, values, validation.RoleSaveDraft, validation.WithTemplate("lease-standard"))
	if !result.Valid {
		t.Fatalf("expected valid draft, got %#v", result.Errors)
	}
}

func TestValidate_SendVersusFinalize(t *testing.T) {
	v := validation.New(validation.WithTemplate("lease-standard"))
	defs := fields.Definitions(leaseNames, "lease-standard")
	values := senderValues()
	values["tenant_name"] = document.Text("")

	send := v.Validate(defs, values, validation.RoleSend)
	if !send.Valid {
		t.Fatalf("send should succeed without counterparty fields, got %#v", send.Errors)
	}

	final := v.Validate(defs, values, validation.RoleFinalize)
	if final.Valid {
		t.Fatalf("finalize should fail without counterparty signature")
	}
	for _, name := range []string{"tenant_signature", "tenant_sign_date", "tenant_name"} {
		if _, ok := final.Errors[name]; !ok {
			t.Fatalf("expected finalize error for %s, got %#v", name, final.Errors)
		}
	}
}

func TestValidate_SendStillRequiresSenderSignature(t *testing.T) {
	defs := fields.Definitions(leaseNames, "lease-standard")
	values := senderValues()
	delete(values, "landlord_signature")

	result := validation.Validate(defs, values, validation.RoleSend, validation.WithTemplate("lease-standard"))
	if _, ok := result.Errors["landlord_signature"]; !ok || result.Valid {
		t.Fatalf("expected landlord_signature error, got %#v", result.Errors)
	}
}

func TestValidate_RoommateCounterparty(t *testing.T) {
	defs := fields.Definitions([]string{"lease_holder_name", "roommate_name", "roommate_signature"}, "roommate-agreement")
	values := document.TextValues(map[string]string{"lease_holder_name": "Sam"})

	result := validation.Validate(defs, values, validation.RoleSend, validation.WithTemplate("roommate-agreement"))
	if !result.Valid {
		t.Fatalf("roommate fields should be exempt at send, got %#v", result.Errors)
	}
}

func TestValidateField_Shapes(t *testing.T) {
	v := validation.New()
	cases := []struct {
		name  string
		value document.Value
		ok    bool
	}{
		{"lease_start_date", document.Text("2025-02-30"), false},
		{"lease_start_date", document.Text("Feb 1, 2025"), true},
		{"monthly_rent", document.Text("$2,000"), true},
		{"monthly_rent", document.Text("-5"), false},
		{"monthly_rent", document.Text("lots"), false},
		{"lease_term_months", document.Text("12.5"), false},
		{"payment_due_day", document.Text("32"), false},
		{"payment_due_day", document.Text("1"), true},
		{"tenant_email", document.Text("not-an-email"), false},
		{"tenant_email", document.Text("tenant@example.com"), true},
		{"tenant_phone", document.Text("555-123-4567"), true},
		{"tenant_phone", document.Text("123"), false},
		{"landlord_signature", document.Text("J. Smith"), false},
		{"landlord_signature", document.SignatureValue(document.Typed("J. Smith", "", 0)), true},
		{"landlord_signature", document.SignatureValue(document.Drawn("data:image/png;base64,iVBORw0KGgo=")), true},
		{"landlord_signature", document.SignatureValue(document.Drawn("https://example.com/sig.png")), false},
		{"landlord_name", document.SignatureValue(document.Typed("J. Smith", "", 0)), false},
		{"landlord_name", document.Text(""), true},
	}
	for _, tc := range cases {
		def := fields.ProfileFor("").Define(tc.name)
		err := v.ValidateField(def, tc.value)
		if (err == nil) != tc.ok {
			t.Fatalf("ValidateField(%s, %#v) error = %v, want ok=%v", tc.name, tc.value, err, tc.ok)
		}
	}
}

func TestValidate_IsTotal(t *testing.T) {
	result := validation.Validate(nil, nil, "bogus")
	if !result.Valid || len(result.Errors) != 0 {
		t.Fatalf("empty input should be valid, got %#v", result)
	}

	defs := []fields.Definition{{Name: "landlord_signature", Type: fields.TypeSignature, Required: true}}
	unknown := validation.Validate(defs, nil, "bogus")
	if unknown.Valid {
		t.Fatalf("unknown role should be validated strictly")
	}
}

func TestParseRole(t *testing.T) {
	if role, err := validation.ParseRole(" Send "); err != nil || role != validation.RoleSend {
		t.Fatalf("unexpected role %q, %v", role, err)
	}
	if _, err := validation.ParseRole("publish"); !errors.Is(err, validation.ErrUnknownRole) {
		t.Fatalf("expected ErrUnknownRole, got %v", err)
	}
}

func senderValues() document.Values {
	values := document.TextValues(map[string]string{
		"landlord_name":      "Alex Landlord",
		"tenant_name":        "Taylor Tenant",
		"landlord_email":     "alex@example.com",
		"property_address":   "1 Main St",
		"lease_start_date":   "2025-01-01",
		"lease_end_date":     "2025-12-31",
		"lease_term_months":  "12",
		"monthly_rent":       "2000",
		"payment_due_day":    "1",
		"security_deposit":   "2000",
		"landlord_sign_date": "2024-12-20",
	})
	values["landlord_signature"] = document.SignatureValue(document.Typed("Alex Landlord", "Dancing Script", 40))
	return values
}

func TestValidateField_CurrencyMarkersAndLocales(t *testing.T) {
	v := validation.New()
	def := fields.Definition{Name: "monthly_rent", Label: "Monthly Rent", Type: fields.TypeCurrency}
	for _, raw := range []string{"€2,000.00", "$2.000,00", "2.000,00 €", "CHF 1'500.00"} {
		if err := v.ValidateField(def, document.Text(raw)); err != nil {
			t.Fatalf("ValidateField(%q) = %v, want nil", raw, err)
		}
	}
	if err := v.ValidateField(def, document.Text("€-lots")); err == nil {
		t.Fatalf("expected error for malformed amount")
	}
}
