package models

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestSanitizeValue(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		want  string
	}{
		{"nil", nil, ""},
		{"plain string", "  Paris  ", "Paris"},
		{"control characters", "line one\nline two\ttab\x7f", "line one line two tab"},
		{"form values", []string{"first", "second"}, "first"},
		{"empty form values", []string{}, ""},
		{"json number", json.Number("2"), "2"},
		{"float", 3.5, "3.5"},
		{"whole float", float64(4), "4"},
		{"bool", true, "true"},
		{"object", map[string]interface{}{"adults": 2, "note": "<b>"}, `{"adults":2,"note":"<b>"}`},
		{"array", []interface{}{"a", 1}, `["a",1]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeValue(tt.input); got != tt.want {
				t.Errorf("SanitizeValue(%v) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeValueTruncates(t *testing.T) {
	got := SanitizeValue(strings.Repeat("x", 5000))
	if n := utf8.RuneCountInString(got); n != MaxFieldLength {
		t.Errorf("Expected %d characters, got %d", MaxFieldLength, n)
	}

	// multi-byte characters count once
	got = SanitizeValue(strings.Repeat("ž", 4001))
	if n := utf8.RuneCountInString(got); n != MaxFieldLength {
		t.Errorf("Expected %d characters, got %d", MaxFieldLength, n)
	}
	if !utf8.ValidString(got) {
		t.Error("Truncation split a multi-byte character")
	}
}

func TestPayloadAliases(t *testing.T) {
	p := Payload{
		"form_type":      "hero_flight_search",
		"fullName":       "Ana",
		"full_name":      "Ignored",
		"departureDate":  "   ",
		"departure_date": "2026-06-01",
		"cabin_class":    "business",
	}

	sub := NewSubmission(p, RequestMeta{}, time.Now())
	if sub.FormType != "hero_flight_search" {
		t.Errorf("Expected form type from form_type, got %q", sub.FormType)
	}
	if sub.Name != "Ana" {
		t.Errorf("Expected first non-empty alias to win, got %q", sub.Name)
	}
	if sub.DepartureDate != "2026-06-01" {
		t.Errorf("Expected blank alias to be skipped, got %q", sub.DepartureDate)
	}
	if sub.CabinClass != "business" {
		t.Errorf("Expected snake_case alias, got %q", sub.CabinClass)
	}
}

func TestHoneypot(t *testing.T) {
	if (Payload{"email": "a@example.com"}).IsHoneypot() {
		t.Error("Payload without decoy field flagged as honeypot")
	}
	if (Payload{"website": "   "}).IsHoneypot() {
		t.Error("Blank decoy field flagged as honeypot")
	}
	if !(Payload{"website": "http://spam.example"}).IsHoneypot() {
		t.Error("Filled decoy field not flagged")
	}
}

func TestRequiredFields(t *testing.T) {
	if got := RequiredFields("landing_fare_quote"); !reflect.DeepEqual(got, []string{"email"}) {
		t.Errorf("Expected unknown form type to require email, got %v", got)
	}

	sub := NewSubmission(Payload{"formType": "contact", "email": "a@example.com", "subject": "Hi"}, RequestMeta{}, time.Now())
	if got := sub.MissingFields(); !reflect.DeepEqual(got, []string{"name", "message"}) {
		t.Errorf("Expected [name message], got %v", got)
	}

	sub = NewSubmission(Payload{"formType": "sidebar_flight_search", "name": "A", "email": "a@example.com"}, RequestMeta{}, time.Now())
	if got := sub.MissingFields(); !reflect.DeepEqual(got, []string{"from", "to", "departureDate"}) {
		t.Errorf("Expected client-facing departureDate, got %v", got)
	}
}

func TestValidate(t *testing.T) {
	sub := NewSubmission(Payload{"email": "a@example.com"}, RequestMeta{}, time.Now())
	if err := sub.Validate(); !errors.Is(err, ErrMissingFormType) {
		t.Errorf("Expected ErrMissingFormType, got %v", err)
	}

	sub = NewSubmission(Payload{"formType": "home_contact"}, RequestMeta{}, time.Now())
	err := sub.Validate()
	var missing *MissingFieldsError
	if !errors.As(err, &missing) {
		t.Fatalf("Expected MissingFieldsError, got %v", err)
	}
	if err.Error() != "Missing required fields: name, email, message" {
		t.Errorf("Unexpected message %q", err.Error())
	}
	if !IsClientError(err) {
		t.Error("Missing fields should be a client error")
	}

	sub = NewSubmission(Payload{"formType": "landing_fare_quote", "email": "a@example.com"}, RequestMeta{}, time.Now())
	if err := sub.Validate(); err != nil {
		t.Errorf("Expected valid submission, got %v", err)
	}
}

func TestRecordOrder(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("CET", 3600))
	sub := NewSubmission(Payload{
		"formType":             "landing_fare_quote",
		"email":                "a@example.com",
		"selectedFareName":     "Belgrade Saver",
		"selectedFareCurrency": "GBP",
	}, RequestMeta{IP: "198.51.100.1", UserAgent: "ua"}, now)

	record := sub.Record()
	if len(record) != len(SubmissionHeader) {
		t.Fatalf("Record has %d values for %d columns", len(record), len(SubmissionHeader))
	}
	if record[0] != "2026-01-02 02:04:05" {
		t.Errorf("Expected UTC timestamp, got %q", record[0])
	}
	if sub.Value("selected_fare_name") != "Belgrade Saver" || sub.Value("selected_fare_currency") != "GBP" {
		t.Error("Fare fields not captured")
	}
	if record[len(record)-2] != "198.51.100.1" || record[len(record)-1] != "ua" {
		t.Error("Request metadata must be the last two columns")
	}
}

func TestFieldLabel(t *testing.T) {
	tests := map[string]string{
		"departure_date":     "Departure Date",
		"hero_flight_search": "Hero Flight Search",
		"ip":                 "Ip",
		"contact":            "Contact",
	}
	for in, want := range tests {
		if got := FieldLabel(in); got != want {
			t.Errorf("FieldLabel(%q) = %q, want %q", in, got, want)
		}
	}
}
