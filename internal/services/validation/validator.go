package validation

import (
	"math"
	"regexp"
	"strings"

	"acolhimento/internal/domain"
)

var (
	phonePattern = regexp.MustCompile(`^\d{2}-\d{4,5}-\d{4}$`)
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	datePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// Validator checks a record-shaped input against the contact format rules.
// It is stateless; a single instance is safe for concurrent use.
type Validator struct{}

func New() *Validator { return &Validator{} }

// Validate applies the per-field rules in fixed order: name, phone, email,
// reason, contact_date. Each failing rule contributes one message to Errors
// and nulls the corrected value; passing rules contribute the cleaned value.
func (v *Validator) Validate(data map[string]any) domain.ValidationResult {
	var res domain.ValidationResult

	// name: trimmed length >= 2
	if name, ok := stringField(data, "name", "nome"); ok && len(strings.TrimSpace(name)) >= 2 {
		trimmed := strings.TrimSpace(name)
		res.Corrected.Name = &trimmed
	} else {
		res.Errors = append(res.Errors, "name too short")
	}

	// phone: required; must normalize to the canonical pattern
	if phone, ok := stringField(data, "phone", "telefone"); ok {
		normalized := domain.NormalizePhone(phone)
		if phonePattern.MatchString(normalized) {
			res.Corrected.Phone = &normalized
		} else {
			res.Errors = append(res.Errors, "phone must be in canonical format")
		}
	} else {
		res.Errors = append(res.Errors, "phone is required")
	}

	// email: optional; lower-cased and pattern-checked when present
	if email, ok := stringField(data, "email"); ok && strings.TrimSpace(email) != "" {
		cleaned := strings.ToLower(strings.TrimSpace(email))
		if emailPattern.MatchString(cleaned) {
			res.Corrected.Email = &cleaned
		} else {
			res.Errors = append(res.Errors, "email must be valid format")
		}
	}

	// reason: trimmed length >= 3
	if reason, ok := stringField(data, "reason", "motivo"); ok && len(strings.TrimSpace(reason)) >= 3 {
		trimmed := strings.TrimSpace(reason)
		res.Corrected.Reason = &trimmed
	} else {
		res.Errors = append(res.Errors, "reason too short")
	}

	// contact_date: optional; YYYY-MM-DD when present
	if date, ok := stringField(data, "contact_date", "data"); ok && strings.TrimSpace(date) != "" {
		cleaned := strings.TrimSpace(date)
		if datePattern.MatchString(cleaned) {
			res.Corrected.ContactDate = &cleaned
		} else {
			res.Errors = append(res.Errors, "date must be YYYY-MM-DD")
		}
	}

	res.IsValid = len(res.Errors) == 0
	return res
}

// Confidence scores field completeness: filled/5 plus a bonus of up to 0.3
// for the required fields (name, phone, reason), capped at 1.0 and rounded
// to 2 decimals. Not a model-calibrated probability.
func (v *Validator) Confidence(rec domain.CandidateRecord) float64 {
	filled := 0
	for _, f := range []*string{rec.Name, rec.Phone, rec.Email, rec.Reason, rec.ContactDate} {
		if f != nil {
			filled++
		}
	}
	requiredFilled := 0
	for _, f := range []*string{rec.Name, rec.Phone, rec.Reason} {
		if f != nil {
			requiredFilled++
		}
	}

	base := float64(filled) / 5
	bonus := float64(requiredFilled) / 3 * 0.3
	return math.Round(math.Min(base+bonus, 1.0)*100) / 100
}

// stringField returns the first present string value among the given keys.
// Non-string values read as absent.
func stringField(data map[string]any, keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := data[k]; ok {
			if s, ok := v.(string); ok {
				return s, true
			}
		}
	}
	return "", false
}
