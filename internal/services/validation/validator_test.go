package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acolhimento/internal/domain"
)

func strPtr(s string) *string { return &s }

func TestValidateWellFormedRecord(t *testing.T) {
	res := New().Validate(map[string]any{
		"name":         "Maria Silva",
		"phone":        "11-99999-8888",
		"email":        "maria@example.com",
		"reason":       "apoio emocional",
		"contact_date": "2024-01-01",
	})

	assert.True(t, res.IsValid)
	assert.Empty(t, res.Errors)
	require.NotNil(t, res.Corrected.Name)
	assert.Equal(t, "Maria Silva", *res.Corrected.Name)
	require.NotNil(t, res.Corrected.Phone)
	assert.Equal(t, "11-99999-8888", *res.Corrected.Phone)
	require.NotNil(t, res.Corrected.Email)
	assert.Equal(t, "maria@example.com", *res.Corrected.Email)
	require.NotNil(t, res.Corrected.ContactDate)
	assert.Equal(t, "2024-01-01", *res.Corrected.ContactDate)
}

func TestValidateInvalidRecordErrorOrder(t *testing.T) {
	res := New().Validate(map[string]any{
		"name":   "A",
		"phone":  "invalid",
		"email":  "bad",
		"reason": "ok",
	})

	assert.False(t, res.IsValid)
	require.Equal(t, []string{
		"name too short",
		"phone must be in canonical format",
		"email must be valid format",
		"reason too short",
	}, res.Errors)
	assert.Nil(t, res.Corrected.Name)
	assert.Nil(t, res.Corrected.Phone)
	assert.Nil(t, res.Corrected.Email)
	assert.Nil(t, res.Corrected.Reason)
}

func TestValidateFieldRules(t *testing.T) {
	tests := []struct {
		name      string
		data      map[string]any
		wantValid bool
		wantErrs  []string
	}{
		{
			name:      "missing phone is required",
			data:      map[string]any{"name": "Maria Silva", "reason": "apoio emocional"},
			wantValid: false,
			wantErrs:  []string{"phone is required"},
		},
		{
			name:      "non-string phone is required",
			data:      map[string]any{"name": "Maria Silva", "phone": 1199998888, "reason": "apoio"},
			wantValid: false,
			wantErrs:  []string{"phone is required"},
		},
		{
			name:      "raw digits phone gets normalized",
			data:      map[string]any{"name": "Maria Silva", "phone": "(11) 99999-8888", "reason": "apoio"},
			wantValid: true,
		},
		{
			name:      "absent email is not an error",
			data:      map[string]any{"name": "Maria Silva", "phone": "11-9999-8888", "reason": "apoio"},
			wantValid: true,
		},
		{
			name:      "blank email is not an error",
			data:      map[string]any{"name": "Maria Silva", "phone": "11-9999-8888", "email": "  ", "reason": "apoio"},
			wantValid: true,
		},
		{
			name:      "bad date",
			data:      map[string]any{"name": "Maria Silva", "phone": "11-9999-8888", "reason": "apoio", "contact_date": "01/01/2024"},
			wantValid: false,
			wantErrs:  []string{"date must be YYYY-MM-DD"},
		},
		{
			name:      "portuguese keys accepted",
			data:      map[string]any{"nome": "Maria Silva", "telefone": "11-9999-8888", "motivo": "apoio emocional"},
			wantValid: true,
		},
		{
			name:      "empty record fails required fields only",
			data:      map[string]any{},
			wantValid: false,
			wantErrs:  []string{"name too short", "phone is required", "reason too short"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := New().Validate(tt.data)
			assert.Equal(t, tt.wantValid, res.IsValid)
			if tt.wantErrs != nil {
				assert.Equal(t, tt.wantErrs, res.Errors)
			}
			assert.Equal(t, res.IsValid, len(res.Errors) == 0)
		})
	}
}

func TestValidateLowercasesEmail(t *testing.T) {
	res := New().Validate(map[string]any{
		"name": "Maria Silva", "phone": "11-9999-8888",
		"email": " Maria@Example.COM ", "reason": "apoio",
	})
	require.NotNil(t, res.Corrected.Email)
	assert.Equal(t, "maria@example.com", *res.Corrected.Email)
}

func TestConfidence(t *testing.T) {
	v := New()

	full := domain.CandidateRecord{
		Name:        strPtr("Maria Silva"),
		Phone:       strPtr("11-99999-8888"),
		Email:       strPtr("maria@example.com"),
		Reason:      strPtr("apoio emocional"),
		ContactDate: strPtr("2024-01-01"),
	}
	assert.Equal(t, 1.0, v.Confidence(full))

	assert.Equal(t, 0.0, v.Confidence(domain.CandidateRecord{}))

	// Optional-only fields: base without bonus.
	assert.Equal(t, 0.2, v.Confidence(domain.CandidateRecord{Email: strPtr("a@b.co")}))

	// One required field: 1/5 + (1/3)*0.3 = 0.3.
	assert.Equal(t, 0.3, v.Confidence(domain.CandidateRecord{Name: strPtr("Maria")}))

	// All required, no optional: 3/5 + 0.3 = 0.9.
	required := domain.CandidateRecord{
		Name:   strPtr("Maria"),
		Phone:  strPtr("11-9999-8888"),
		Reason: strPtr("apoio"),
	}
	assert.Equal(t, 0.9, v.Confidence(required))
}

func TestConfidenceMonotonicAndBounded(t *testing.T) {
	v := New()
	fields := []func(*domain.CandidateRecord){
		func(r *domain.CandidateRecord) { r.Name = strPtr("Maria") },
		func(r *domain.CandidateRecord) { r.Phone = strPtr("11-9999-8888") },
		func(r *domain.CandidateRecord) { r.Email = strPtr("a@b.co") },
		func(r *domain.CandidateRecord) { r.Reason = strPtr("apoio") },
		func(r *domain.CandidateRecord) { r.ContactDate = strPtr("2024-01-01") },
	}

	var rec domain.CandidateRecord
	prev := v.Confidence(rec)
	for _, set := range fields {
		set(&rec)
		cur := v.Confidence(rec)
		assert.GreaterOrEqual(t, cur, prev)
		assert.GreaterOrEqual(t, cur, 0.0)
		assert.LessOrEqual(t, cur, 1.0)
		prev = cur
	}
	assert.Equal(t, 1.0, prev)
}
