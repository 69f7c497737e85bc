package models

// RequiredFieldsByType lists the mandatory logical fields for each known form
// type, in the order they are reported when missing
var RequiredFieldsByType = map[string][]string{
	"contact":               {"name", "email", "subject", "message"},
	"home_contact":          {"name", "email", "message"},
	"sidebar_contact":       {"name", "email", "message"},
	"hero_flight_search":    {"name", "email", "from", "to", "departure_date"},
	"sidebar_flight_search": {"name", "email", "from", "to", "departure_date"},
}

// DefaultRequiredFields applies to any form type not in RequiredFieldsByType
var DefaultRequiredFields = []string{"email"}

// reportedNames maps logical fields to the key clients send for them
var reportedNames = map[string]string{
	"departure_date": "departureDate",
}

// RequiredFields returns the required fields for a form type
func RequiredFields(formType string) []string {
	if fields, ok := RequiredFieldsByType[formType]; ok {
		return fields
	}
	return DefaultRequiredFields
}

// MissingFields returns every required field the submission lacks, using the
// client-facing key names
func (s *Submission) MissingFields() []string {
	var missing []string
	for _, field := range RequiredFields(s.FormType) {
		if s.Value(field) != "" {
			continue
		}
		if reported, ok := reportedNames[field]; ok {
			field = reported
		}
		missing = append(missing, field)
	}
	return missing
}

// Validate checks the form type and required fields. It returns
// ErrMissingFormType or a *MissingFieldsError.
func (s *Submission) Validate() error {
	if s.FormType == "" {
		return ErrMissingFormType
	}
	if missing := s.MissingFields(); len(missing) > 0 {
		return &MissingFieldsError{Fields: missing}
	}
	return nil
}
