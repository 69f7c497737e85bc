package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxFieldLength is the maximum number of characters kept for any field value
const MaxFieldLength = 4000

// HoneypotField is the hidden input humans never fill in
const HoneypotField = "website"

// TimestampLayout is the UTC layout used for submitted_at
const TimestampLayout = "2006-01-02 15:04:05"

// Payload is a decoded form POST, either JSON or url-encoded
type Payload map[string]interface{}

// RequestMeta carries the caller details stamped onto a submission
type RequestMeta struct {
	IP        string
	UserAgent string
}

// Submission is one accepted form post. Field order here is the column order
// of the submission log.
type Submission struct {
	SubmittedAt          string `json:"submitted_at"`
	FormType             string `json:"form_type"`
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Phone                string `json:"phone"`
	Subject              string `json:"subject"`
	Message              string `json:"message"`
	Destination          string `json:"destination"`
	From                 string `json:"from"`
	To                   string `json:"to"`
	DepartureDate        string `json:"departure_date"`
	ReturnDate           string `json:"return_date"`
	Passengers           string `json:"passengers"`
	CabinClass           string `json:"cabin_class"`
	TripType             string `json:"trip_type"`
	PageURL              string `json:"page_url"`
	SelectedFareName     string `json:"selected_fare_name"`
	SelectedFarePrice    string `json:"selected_fare_price"`
	SelectedFareTag      string `json:"selected_fare_tag"`
	SelectedFareDetails  string `json:"selected_fare_details"`
	SelectedFareCurrency string `json:"selected_fare_currency"`
	IP                   string `json:"ip"`
	UserAgent            string `json:"user_agent"`
}

// Field is a named submission value
type Field struct {
	Name  string
	Value string
}

// SubmissionHeader lists the submission log columns in order
var SubmissionHeader = []string{
	"submitted_at",
	"form_type",
	"name",
	"email",
	"phone",
	"subject",
	"message",
	"destination",
	"from",
	"to",
	"departure_date",
	"return_date",
	"passengers",
	"cabin_class",
	"trip_type",
	"page_url",
	"selected_fare_name",
	"selected_fare_price",
	"selected_fare_tag",
	"selected_fare_details",
	"selected_fare_currency",
	"ip",
	"user_agent",
}

// fieldAliases maps each logical field to the payload keys accepted for it,
// in priority order
var fieldAliases = map[string][]string{
	"form_type":              {"formType", "form_type"},
	"name":                   {"name", "fullName", "full_name"},
	"email":                  {"email"},
	"phone":                  {"phone"},
	"subject":                {"subject"},
	"message":                {"message"},
	"destination":            {"destination"},
	"from":                   {"from"},
	"to":                     {"to"},
	"departure_date":         {"departureDate", "departure_date"},
	"return_date":            {"returnDate", "return_date"},
	"passengers":             {"passengers"},
	"cabin_class":            {"cabinClass", "cabin_class"},
	"trip_type":              {"tripType", "trip_type"},
	"page_url":               {"pageUrl", "page_url"},
	"selected_fare_name":     {"selectedFareName", "selected_fare_name"},
	"selected_fare_price":    {"selectedFarePrice", "selected_fare_price"},
	"selected_fare_tag":      {"selectedFareTag", "selected_fare_tag"},
	"selected_fare_details":  {"selectedFareDetails", "selected_fare_details"},
	"selected_fare_currency": {"selectedFareCurrency", "selected_fare_currency"},
}

// IsHoneypot reports whether the hidden decoy field was filled in
func (p Payload) IsHoneypot() bool {
	v, ok := p[HoneypotField]
	if !ok {
		return false
	}
	return SanitizeValue(v) != ""
}

// Pick returns the first non-empty sanitized value among keys
func (p Payload) Pick(keys ...string) string {
	for _, key := range keys {
		v, ok := p[key]
		if !ok {
			continue
		}
		if cleaned := SanitizeValue(v); cleaned != "" {
			return cleaned
		}
	}
	return ""
}

// PickField resolves a logical field through its aliases
func (p Payload) PickField(field string) string {
	aliases, ok := fieldAliases[field]
	if !ok {
		aliases = []string{field}
	}
	return p.Pick(aliases...)
}

// FormType returns the sanitized form type of the payload
func (p Payload) FormType() string {
	return p.PickField("form_type")
}

// NewSubmission extracts every logical field from the payload and stamps the
// request metadata. It does not validate.
func NewSubmission(p Payload, meta RequestMeta, now time.Time) *Submission {
	return &Submission{
		SubmittedAt:          FormatTimestamp(now),
		FormType:             p.PickField("form_type"),
		Name:                 p.PickField("name"),
		Email:                p.PickField("email"),
		Phone:                p.PickField("phone"),
		Subject:              p.PickField("subject"),
		Message:              p.PickField("message"),
		Destination:          p.PickField("destination"),
		From:                 p.PickField("from"),
		To:                   p.PickField("to"),
		DepartureDate:        p.PickField("departure_date"),
		ReturnDate:           p.PickField("return_date"),
		Passengers:           p.PickField("passengers"),
		CabinClass:           p.PickField("cabin_class"),
		TripType:             p.PickField("trip_type"),
		PageURL:              p.PickField("page_url"),
		SelectedFareName:     p.PickField("selected_fare_name"),
		SelectedFarePrice:    p.PickField("selected_fare_price"),
		SelectedFareTag:      p.PickField("selected_fare_tag"),
		SelectedFareDetails:  p.PickField("selected_fare_details"),
		SelectedFareCurrency: p.PickField("selected_fare_currency"),
		IP:                   SanitizeValue(meta.IP),
		UserAgent:            SanitizeValue(meta.UserAgent),
	}
}

// Fields returns the submission values paired with their column names
func (s *Submission) Fields() []Field {
	values := s.Record()
	fields := make([]Field, len(values))
	for i, v := range values {
		fields[i] = Field{Name: SubmissionHeader[i], Value: v}
	}
	return fields
}

// Record returns the submission values in SubmissionHeader order
func (s *Submission) Record() []string {
	return []string{
		s.SubmittedAt,
		s.FormType,
		s.Name,
		s.Email,
		s.Phone,
		s.Subject,
		s.Message,
		s.Destination,
		s.From,
		s.To,
		s.DepartureDate,
		s.ReturnDate,
		s.Passengers,
		s.CabinClass,
		s.TripType,
		s.PageURL,
		s.SelectedFareName,
		s.SelectedFarePrice,
		s.SelectedFareTag,
		s.SelectedFareDetails,
		s.SelectedFareCurrency,
		s.IP,
		s.UserAgent,
	}
}

// Value returns the value of a logical field, or "" if unknown
func (s *Submission) Value(field string) string {
	for _, f := range s.Fields() {
		if f.Name == field {
			return f.Value
		}
	}
	return ""
}

// SanitizeValue flattens any payload value to a single clean line of at most
// MaxFieldLength characters
func SanitizeValue(v interface{}) string {
	var s string
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		s = val
	case []string:
		if len(val) == 0 {
			return ""
		}
		s = val[0]
	case json.Number:
		s = val.String()
	case float64:
		s = strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		s = strconv.Itoa(val)
	case int64:
		s = strconv.FormatInt(val, 10)
	case bool:
		s = strconv.FormatBool(val)
	default:
		s = compactJSON(val)
	}

	s = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return ' '
		}
		return r
	}, s)
	s = strings.TrimSpace(s)

	if utf8.RuneCountInString(s) > MaxFieldLength {
		runes := []rune(s)
		s = string(runes[:MaxFieldLength])
	}
	return s
}

func compactJSON(v interface{}) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return ""
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// FieldLabel turns a column name into the label used in notifications,
// e.g. "departure_date" -> "Departure Date"
func FieldLabel(name string) string {
	words := strings.Fields(strings.ReplaceAll(name, "_", " "))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = strings.ToUpper(string(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
