package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/matteo/veloclub/internal/app/models"
	"github.com/matteo/veloclub/internal/pkg/apperrors"
)

func strPtr(s string) *string { return &s }

func TestNormalizeNote(t *testing.T) {
	tests := []struct {
		name string
		note *string
		want *string
	}{
		{name: "nil passes through", note: nil, want: nil},
		{name: "empty collapses to nil", note: strPtr(""), want: nil},
		{name: "whitespace collapses to nil", note: strPtr("   \t "), want: nil},
		{name: "trims surrounding whitespace", note: strPtr("  porto la torta  "), want: strPtr("porto la torta")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeNote(tt.note)
			if err != nil {
				t.Fatalf("normalize note: %v", err)
			}
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			if got != nil && *got != *tt.want {
				t.Fatalf("expected %q, got %q", *tt.want, *got)
			}
		})
	}
}

func TestNormalizeNoteRejectsOverlongNote(t *testing.T) {
	long := strings.Repeat("a", MaxNoteLength+1)
	if _, err := NormalizeNote(&long); !errors.Is(err, apperrors.ErrNoteTooLong) {
		t.Fatalf("expected ErrNoteTooLong, got %v", err)
	}

	// Exactly at the cap is fine, and the cap counts runes, not bytes
	exact := strings.Repeat("è", MaxNoteLength)
	got, err := NormalizeNote(&exact)
	if err != nil {
		t.Fatalf("note at cap should pass: %v", err)
	}
	if got == nil || *got != exact {
		t.Fatalf("expected note preserved at cap")
	}
}

func TestValidateServiceChoices(t *testing.T) {
	extras := models.ExtraServices{
		"lunch":     {Enabled: true, Label: strPtr("Pranzo al rifugio")},
		"overnight": {Enabled: true},
		"dinner":    {Enabled: false, Label: strPtr("Cena")},
	}

	choices, err := ValidateServiceChoices(extras, map[string]string{
		"lunch":     "yes",
		"overnight": "no",
		"dinner":    "yes", // disabled, dropped
		"bus":       "yes", // unknown, dropped
	})
	if err != nil {
		t.Fatalf("validate choices: %v", err)
	}
	if len(choices) != 2 {
		t.Fatalf("expected 2 choices, got %d", len(choices))
	}
	if choices["lunch"] != models.ChoiceYes || choices["overnight"] != models.ChoiceNo {
		t.Fatalf("unexpected choices: %v", choices)
	}
	if _, ok := choices["dinner"]; ok {
		t.Fatalf("disabled key should be dropped")
	}
}

func TestValidateServiceChoicesMissingAnswers(t *testing.T) {
	extras := models.ExtraServices{
		"lunch":     {Enabled: true, Label: strPtr("Pranzo")},
		"overnight": {Enabled: true, Label: strPtr("Pernottamento")},
		"transfer":  {Enabled: true},
	}

	_, err := ValidateServiceChoices(extras, map[string]string{"lunch": "yes"})
	if !errors.Is(err, apperrors.ErrMissingServiceChoice) {
		t.Fatalf("expected ErrMissingServiceChoice, got %v", err)
	}
	// Labels are sorted by key and joined with a comma: overnight, transfer
	if msg := err.Error(); !strings.Contains(msg, "Pernottamento, transfer") {
		t.Fatalf("expected missing labels in key order, got %q", msg)
	}
}

func TestValidateServiceChoicesRejectsInvalidAnswer(t *testing.T) {
	extras := models.ExtraServices{"lunch": {Enabled: true}}

	_, err := ValidateServiceChoices(extras, map[string]string{"lunch": "maybe"})
	if !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestValidateServiceChoicesNoEnabledServices(t *testing.T) {
	choices, err := ValidateServiceChoices(models.ExtraServices{}, nil)
	if err != nil {
		t.Fatalf("no enabled services should validate: %v", err)
	}
	if len(choices) != 0 {
		t.Fatalf("expected empty choices, got %v", choices)
	}
}

func TestValidateServiceConfigChange(t *testing.T) {
	current := models.ExtraServices{
		"lunch":  {Enabled: true, Label: strPtr("Pranzo")},
		"dinner": {Enabled: false},
	}

	tests := []struct {
		name            string
		updated         models.ExtraServices
		hasParticipants bool
		wantErr         bool
	}{
		{
			name: "no participants allows enabling anything",
			updated: models.ExtraServices{
				"lunch":  {Enabled: true},
				"dinner": {Enabled: true},
			},
			hasParticipants: false,
		},
		{
			name: "keeping the enabled set is always fine",
			updated: models.ExtraServices{
				"lunch": {Enabled: true, Label: strPtr("Pranzo in baita")},
			},
			hasParticipants: true,
		},
		{
			name: "disabling with participants is allowed",
			updated: models.ExtraServices{
				"lunch": {Enabled: false},
			},
			hasParticipants: true,
		},
		{
			name: "enabling a new key with participants is rejected",
			updated: models.ExtraServices{
				"lunch":  {Enabled: true},
				"dinner": {Enabled: true, Label: strPtr("Cena")},
			},
			hasParticipants: true,
			wantErr:         true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateServiceConfigChange(current, tt.updated, tt.hasParticipants)
			if tt.wantErr {
				if !errors.Is(err, apperrors.ErrServiceLocked) {
					t.Fatalf("expected ErrServiceLocked, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateServiceConfigChangeListsAllLockedLabels(t *testing.T) {
	current := models.ExtraServices{}
	updated := models.ExtraServices{
		"overnight": {Enabled: true, Label: strPtr("Pernottamento")},
		"bus":       {Enabled: true, Label: strPtr("Bus")},
	}

	err := ValidateServiceConfigChange(current, updated, true)
	if !errors.Is(err, apperrors.ErrServiceLocked) {
		t.Fatalf("expected ErrServiceLocked, got %v", err)
	}
	if msg := err.Error(); !strings.Contains(msg, "Bus, Pernottamento") {
		t.Fatalf("expected sorted locked labels, got %q", msg)
	}
}
