package document_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-doctemplate/pkg/document"
)

func TestValue_UnmarshalMixedPayload(t *testing.T) {
	payload := []byte(`{
		"landlord_name": "A",
		"monthly_rent": 2000,
		"tenant_name": null,
		"landlord_signature": {"kind": "typed", "text": "J. Smith", "font": "Dancing Script", "fontSize": 48}
	}`)

	var values document.Values
	if err := json.Unmarshal(payload, &values); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	want := document.Values{
		"landlord_name":      document.Text("A"),
		"monthly_rent":       document.Text("2000"),
		"tenant_name":        {},
		"landlord_signature": document.SignatureValue(document.Signature{Kind: document.SignatureTyped, Text: "J. Smith", Font: "Dancing Script", FontSize: 48}),
	}
	if diff := cmp.Diff(want, values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if !values["tenant_name"].IsEmpty() || values["landlord_signature"].IsEmpty() {
		t.Fatalf("unexpected emptiness")
	}
}

func TestSignature_Validate(t *testing.T) {
	cases := []struct {
		name    string
		sig     document.Signature
		wantErr bool
	}{
		{"typed ok", document.Typed("J. Smith", "", 0), false},
		{"typed blank", document.Typed("  ", "Caveat", 40), true},
		{"typed oversize", document.Signature{Kind: document.SignatureTyped, Text: "x", FontSize: 500}, true},
		{"drawn ok", document.Drawn("data:image/png;base64,iVBORw0KGgo="), false},
		{"drawn url", document.Drawn("https://evil.example/sig.png"), true},
		{"drawn empty", document.Drawn(""), true},
		{"no kind", document.Signature{Text: "x"}, true},
		{"bad kind", document.Signature{Kind: "stamped"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.sig.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() err = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestTyped_Defaults(t *testing.T) {
	sig := document.Typed(" Ada ", "", -1)
	if sig.Font != document.DefaultSignatureFont || sig.FontSize != document.DefaultSignatureFontSize || sig.Text != "Ada" {
		t.Fatalf("unexpected defaults: %#v", sig)
	}
}

func TestValues_CloneIsDeep(t *testing.T) {
	orig := document.Values{"landlord_signature": document.SignatureValue(document.Typed("A", "Caveat", 30))}
	clone := orig.Clone()
	clone["landlord_signature"].Signature.Text = "B"
	if orig["landlord_signature"].Signature.Text != "A" {
		t.Fatalf("clone shares signature pointer")
	}
}

func TestDocument_Transition(t *testing.T) {
	doc := document.Document{Status: document.StatusDraft}
	if err := doc.Transition(document.StatusPendingSignature); err != nil {
		t.Fatalf("draft -> pending: %v", err)
	}
	if err := doc.Transition(document.StatusDraft); err == nil {
		t.Fatalf("pending -> draft must be rejected")
	}
	if err := doc.Transition(document.StatusCompleted); err != nil {
		t.Fatalf("pending -> completed: %v", err)
	}
}
