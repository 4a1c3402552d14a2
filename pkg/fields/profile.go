package fields

import "strings"

const (
	DefaultSender       = "landlord"
	DefaultCounterparty = "tenant"
)

// Profile carries the template-specific field rules: which fields the sender
// must fill, which party sends the document and which party receives it.
type Profile struct {
	TemplateID   string
	Required     []Name
	Sender       string
	Counterparty string
	// Signers lists the parties that sign; empty means sender and
	// counterparty.
	Signers []string
}

var profiles = map[string]Profile{
	"lease-standard": {
		Required: []Name{
			"landlord_name", "tenant_name", "monthly_rent",
			"security_deposit", "lease_start_date", "lease_end_date",
		},
	},
	"commercial-lease": {
		Required: []Name{
			"landlord_name", "business_name", "property_address", "permitted_use",
			"monthly_rent", "cam_charges", "security_deposit", "lease_start_date",
			"lease_term_years",
		},
	},
	"roommate-agreement": {
		Required: []Name{
			"lease_holder_name", "roommate_name", "property_address",
			"monthly_rent", "security_deposit", "move_in_date",
		},
		Sender:       "lease_holder",
		Counterparty: "roommate",
	},
	"notice-to-vacate": {
		Required: []Name{
			"landlord_name", "tenant_name", "property_address",
			"notice_date", "move_out_date",
		},
		Signers: []string{DefaultSender},
	},
	"pet-addendum": {
		Required: []Name{
			"landlord_name", "tenant_name", "property_address",
			"pet_type", "pet_name", "pet_deposit",
		},
	},
}

// essentialFields is the allow-list of fields surfaced as editable. Fields a
// template references outside this list still render, but only as unfilled
// placeholders.
var essentialFields = map[Name]struct{}{
	"landlord_name": {}, "landlord_email": {}, "landlord_phone": {},
	"tenant_name": {}, "tenant_email": {}, "tenant_phone": {},
	"business_name": {}, "lease_holder_name": {},
	"roommate_name": {}, "roommate_email": {},
	"property_address": {}, "permitted_use": {},
	"monthly_rent": {}, "security_deposit": {}, "pet_deposit": {}, "cam_charges": {},
	"lease_start_date": {}, "lease_end_date": {}, "lease_term_months": {}, "lease_term_years": {},
	"payment_due_day": {}, "move_in_date": {}, "move_out_date": {}, "notice_date": {},
	"pet_name": {}, "pet_type": {},
}

// ProfileFor returns the profile registered for templateID, or the default
// landlord/tenant profile with no required fields.
func ProfileFor(templateID string) Profile {
	id := strings.TrimSpace(templateID)
	p := profiles[id]
	p.TemplateID = id
	if p.Sender == "" {
		p.Sender = DefaultSender
	}
	if p.Counterparty == "" {
		p.Counterparty = DefaultCounterparty
	}
	p.Required = append([]Name(nil), p.Required...)
	p.Signers = append([]string(nil), p.Signers...)
	return p
}

// SenderSignature is the sender's signature field.
func (p Profile) SenderSignature() Name { return p.Sender + "_signature" }

// SenderSignDate is the sender's sign-date field.
func (p Profile) SenderSignDate() Name { return p.Sender + "_sign_date" }

// CounterpartySignature is the counterparty's signature field.
func (p Profile) CounterpartySignature() Name { return p.Counterparty + "_signature" }

// SignatureFields lists signature and sign-date fields for every signer.
func (p Profile) SignatureFields() []Name {
	signers := p.Signers
	if len(signers) == 0 {
		signers = []string{p.Sender, p.Counterparty}
	}
	out := make([]Name, 0, len(signers)*2)
	for _, signer := range signers {
		out = append(out, signer+"_signature", signer+"_sign_date")
	}
	return out
}

// IsRequired reports whether the template requires name: listed fields plus
// every signer's signature and sign date.
func (p Profile) IsRequired(name Name) bool {
	for _, required := range p.Required {
		if required == name {
			return true
		}
	}
	for _, sig := range p.SignatureFields() {
		if sig == name {
			return true
		}
	}
	return false
}

// IsCounterpartyField reports whether the counterparty supplies name after
// receiving the document: their signature, sign date, name, email, and any
// roommate field.
func (p Profile) IsCounterpartyField(name Name) bool {
	cp := p.Counterparty
	switch name {
	case cp + "_signature", cp + "_sign_date", cp + "_name", cp + "_email":
		return true
	}
	return strings.Contains(name, "roommate")
}

// Allowed reports whether name is surfaced as an editable field.
func (p Profile) Allowed(name Name) bool {
	if IsEssential(name) {
		return true
	}
	return p.IsRequired(name)
}

// IsEssential reports whether name is on the editable allow-list.
func IsEssential(name Name) bool {
	_, ok := essentialFields[name]
	return ok
}
