package classify_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-doctemplate/pkg/classify"
	"github.com/goliatone/go-doctemplate/pkg/fields"
)

var leaseFields = []string{
	"landlord_name", "tenant_name", "landlord_email", "tenant_email",
	"property_address", "lease_start_date", "lease_end_date", "lease_term_months",
	"monthly_rent", "payment_due_day", "security_deposit",
	"landlord_signature", "landlord_sign_date", "tenant_signature", "tenant_sign_date",
}

func TestClassify_LeaseStandard(t *testing.T) {
	got := classify.Classify(leaseFields, "lease-standard")
	want := []classify.Category{
		{Name: classify.PartyInformation, Fields: []string{"landlord_name", "tenant_name", "landlord_email", "tenant_email"}},
		{Name: classify.PropertyDetails, Fields: []string{"property_address"}},
		{Name: classify.LeaseTerms, Fields: []string{
			"monthly_rent", "security_deposit", "lease_start_date", "lease_end_date",
			"lease_term_months", "payment_due_day",
		}},
		{Name: classify.Signatures, Fields: []string{"landlord_signature", "landlord_sign_date", "tenant_signature", "tenant_sign_date"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("classification mismatch (-want +got):\n%s", diff)
	}
}

func TestClassify_IsPure(t *testing.T) {
	first := classify.Classify(leaseFields, "lease-standard")
	for i := 0; i < 5; i++ {
		if diff := cmp.Diff(first, classify.Classify(leaseFields, "lease-standard")); diff != "" {
			t.Fatalf("classification changed between calls (-first +again):\n%s", diff)
		}
	}
}

func TestClassify_NoFieldInTwoCategories(t *testing.T) {
	names := append([]string{"lease_holder_signature", "lease_holder_name", "roommate_email", "pet_name", "pet_deposit"}, leaseFields...)
	seen := map[string]string{}
	for _, category := range classify.Classify(names, "roommate-agreement") {
		for _, name := range category.Fields {
			if prev, ok := seen[name]; ok {
				t.Fatalf("%s appears in %s and %s", name, prev, category.Name)
			}
			seen[name] = category.Name
		}
	}
	if seen["lease_holder_signature"] != classify.Signatures {
		t.Fatalf("lease_holder_signature classified as %q", seen["lease_holder_signature"])
	}
	if seen["pet_name"] != classify.AdditionalTerms {
		t.Fatalf("pet_name classified as %q", seen["pet_name"])
	}
}

func TestClassify_IgnoresFieldsOutsideAllowList(t *testing.T) {
	got := classify.Classify([]string{"utilities_split", "landlord_name"}, "roommate-agreement")
	for _, name := range classify.Names(got) {
		if name == "utilities_split" {
			t.Fatalf("utilities_split should not be surfaced")
		}
	}
}

func TestClassify_SignaturesNeverEmpty(t *testing.T) {
	for _, id := range []string{"lease-standard", "notice-to-vacate", "unknown-template", ""} {
		got := classify.Classify(nil, id)
		sigs, ok := classify.Find(got, classify.Signatures)
		if !ok || len(sigs.Fields) == 0 {
			t.Fatalf("%q: signatures category missing or empty: %#v", id, got)
		}
	}

	notice := classify.Classify(nil, "notice-to-vacate")
	sigs, _ := classify.Find(notice, classify.Signatures)
	if diff := cmp.Diff([]string{"landlord_signature", "landlord_sign_date"}, sigs.Fields); diff != "" {
		t.Fatalf("notice signatures mismatch (-want +got):\n%s", diff)
	}
}

func TestClassify_ForcesSenderSignatureWhenRulesClaimNone(t *testing.T) {
	c := classify.New(classify.WithRules(
		classify.Rule{Category: classify.PartyInformation, Match: func(fields.Name) bool { return true }},
	))
	got := c.Classify([]string{"landlord_name"}, "lease-standard")
	sigs, ok := classify.Find(got, classify.Signatures)
	if !ok {
		t.Fatalf("signatures category missing: %#v", got)
	}
	if diff := cmp.Diff([]string{"landlord_signature", "landlord_sign_date"}, sigs.Fields); diff != "" {
		t.Fatalf("forced signatures mismatch (-want +got):\n%s", diff)
	}
}

func TestClassifier_CategoryOf(t *testing.T) {
	c := classify.New()
	cases := map[string]string{
		"business_name":    classify.PartyInformation,
		"tenant_phone":     classify.PartyInformation,
		"permitted_use":    classify.PropertyDetails,
		"cam_charges":      classify.LeaseTerms,
		"move_in_date":     classify.LeaseTerms,
		"tenant_sign_date": classify.Signatures,
		"pet_type":         classify.AdditionalTerms,
	}
	for name, want := range cases {
		if got := c.CategoryOf(name); got != want {
			t.Fatalf("CategoryOf(%q) = %q, want %q", name, got, want)
		}
	}
}
