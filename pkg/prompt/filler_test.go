package prompt

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-doctemplate/pkg/classify"
	"github.com/goliatone/go-doctemplate/pkg/document"
	"github.com/goliatone/go-doctemplate/pkg/fields"
	"github.com/goliatone/go-doctemplate/pkg/orchestrator"
	"github.com/goliatone/go-doctemplate/pkg/testsupport"
	"github.com/goliatone/go-doctemplate/pkg/validation"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	infoMessages []string
	inputConfigs []InputConfig
	selectConfig []SelectConfig
	inputPos     int
	selectPos    int
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	s.inputConfigs = append(s.inputConfigs, cfg)
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	return false, errors.New("no confirm scripted")
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	s.selectConfig = append(s.selectConfig, cfg)
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func testPrepared() orchestrator.Prepared {
	profile := fields.Profile{
		Required:     []fields.Name{"landlord_name", "monthly_rent", "tenant_name"},
		Sender:       fields.DefaultSender,
		Counterparty: fields.DefaultCounterparty,
	}
	names := []fields.Name{"landlord_name", "monthly_rent", "tenant_name", "landlord_signature", "tenant_signature"}
	defs := make([]fields.Definition, 0, len(names))
	for _, name := range names {
		defs = append(defs, profile.Define(name))
	}
	return orchestrator.Prepared{
		Fields: names,
		Categories: []classify.Category{
			{Name: classify.PartyInformation, Fields: []fields.Name{"landlord_name", "tenant_name"}},
			{Name: classify.LeaseTerms, Fields: []fields.Name{"monthly_rent"}},
			{Name: classify.Signatures, Fields: []fields.Name{"landlord_signature", "tenant_signature"}},
		},
		Definitions: defs,
		Profile:     profile,
	}
}

func TestFiller_SendSkipsCounterpartyFields(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"Alex Landlord", "2000", "Alex L.", "40"},
		selectIdx: []int{0, 1},
	}
	filler := NewFiller(WithDriver(driver), WithFonts("Caveat", "Allura"))

	got, err := filler.Fill(context.Background(), testPrepared(), document.Values{
		"landlord_name": document.Text("Old Name"),
	})
	if err != nil {
		t.Fatalf("fill: %v", err)
	}

	want := document.Values{
		"landlord_name":      document.Text("Alex Landlord"),
		"monthly_rent":       document.Text("$2,000.00"),
		"landlord_signature": document.SignatureValue(document.Typed("Alex L.", "Allura", 40)),
	}
	testsupport.CompareValues(t, want, got)

	if driver.inputConfigs[0].Default != "Old Name" {
		t.Fatalf("existing value should be the default, got %q", driver.inputConfigs[0].Default)
	}
	if !strings.HasSuffix(driver.inputConfigs[0].Message, " *") {
		t.Fatalf("required field should be marked: %q", driver.inputConfigs[0].Message)
	}
	if len(driver.infoMessages) != 3 {
		t.Fatalf("expected a header per category, got %v", driver.infoMessages)
	}
	if opts := driver.selectConfig[0].Options; len(opts) != 2 {
		t.Fatalf("required signature should not offer skip: %v", opts)
	}
}

func TestFiller_InputValidator(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"Alex", "2000", "Sam Tenant"},
		selectIdx: []int{2, 2},
	}
	filler := NewFiller(WithDriver(driver), WithRole(validation.RoleSaveDraft))
	if _, err := filler.Fill(context.Background(), testPrepared(), nil); err != nil {
		t.Fatalf("fill: %v", err)
	}

	rent := driver.inputConfigs[1]
	if err := rent.Validator("lots"); err == nil {
		t.Fatalf("expected currency validation error")
	}
	if err := rent.Validator("1500"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := rent.Validator(" "); err == nil {
		t.Fatalf("required field should reject empty input")
	}
}

func TestFiller_FinalizeAsksCounterparty(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"Alex", "Sam Tenant", "2000", "Alex", "1", "Sam", "1"},
		selectIdx: []int{0, 0, 0, 0},
	}
	filler := NewFiller(WithDriver(driver), WithRole(validation.RoleFinalize))
	got, err := filler.Fill(context.Background(), testPrepared(), nil)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if got.Get("tenant_name").Text != "Sam Tenant" {
		t.Fatalf("counterparty name not collected: %#v", got)
	}
	if !got.Get("tenant_signature").IsSignature() {
		t.Fatalf("counterparty signature not collected: %#v", got)
	}
}

func TestFiller_ScriptExhausted(t *testing.T) {
	driver := &stubDriver{inputs: []string{"Alex"}}
	filler := NewFiller(WithDriver(driver))
	got, err := filler.Fill(context.Background(), testPrepared(), nil)
	if err == nil {
		t.Fatalf("expected driver error")
	}
	if got.Get("landlord_name").Text != "Alex" {
		t.Fatalf("answers before the error should be kept: %#v", got)
	}
}

func TestImageDataURL(t *testing.T) {
	dir := t.TempDir()
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	path := filepath.Join(dir, "sig.png")
	if err := os.WriteFile(path, png, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	url, err := ImageDataURL(path)
	if err != nil {
		t.Fatalf("data url: %v", err)
	}
	if !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Fatalf("unexpected data url %q", url)
	}
	if err := document.Drawn(url).Validate(); err != nil {
		t.Fatalf("data url should be a valid drawn signature: %v", err)
	}

	text := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(text, []byte("hello"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ImageDataURL(text); err == nil {
		t.Fatalf("expected error for non-image file")
	}
}

func TestParseFontSize(t *testing.T) {
	for _, raw := range []string{"0", "201", "big"} {
		if _, err := parseFontSize(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
	if size, err := parseFontSize(" 24 "); err != nil || size != 24 {
		t.Fatalf("unexpected size %v err %v", size, err)
	}
}
