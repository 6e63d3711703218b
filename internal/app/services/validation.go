package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/matteo/veloclub/internal/app/models"
	"github.com/matteo/veloclub/internal/pkg/apperrors"
)

// MaxNoteLength caps the free-text note attached to a participation
const MaxNoteLength = 500

// NormalizeNote trims the note and collapses empty input to nil so storage
// never holds blank strings. Notes over the cap are rejected.
func NormalizeNote(note *string) (*string, error) {
	if note == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*note)
	if trimmed == "" {
		return nil, nil
	}
	if len([]rune(trimmed)) > MaxNoteLength {
		return nil, apperrors.NewCustomError(apperrors.ErrNoteTooLong,
			fmt.Sprintf("note exceeds %d characters", MaxNoteLength))
	}
	return &trimmed, nil
}

// ValidateServiceChoices checks the submitted answers against the event's
// enabled extra services. Every enabled key needs an explicit yes or no;
// answers for unknown or disabled keys are dropped. The error message lists
// the display labels of the unanswered services.
func ValidateServiceChoices(extraServices models.ExtraServices, raw map[string]string) (map[string]models.ServiceChoice, error) {
	enabled := extraServices.EnabledKeys()

	choices := make(map[string]models.ServiceChoice, len(enabled))
	var missing []string

	keys := make([]string, 0, len(enabled))
	for key := range enabled {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value, ok := raw[key]
		if !ok {
			missing = append(missing, extraServices.LabelFor(key))
			continue
		}
		choice := models.ServiceChoice(value)
		if !choice.Valid() {
			return nil, apperrors.NewValidationError(
				fmt.Sprintf("invalid answer %q for service %q, expected yes or no", value, key))
		}
		choices[key] = choice
	}

	if len(missing) > 0 {
		return nil, apperrors.NewCustomError(apperrors.ErrMissingServiceChoice,
			fmt.Sprintf("missing choice for: %s", strings.Join(missing, ", ")))
	}

	return choices, nil
}

// ValidateServiceConfigChange enforces the enable lock: once anyone is booked,
// no new service key may be switched on, because existing sign-ups would have
// no answer for it. The whole save is rejected, not just the offending keys.
func ValidateServiceConfigChange(current, updated models.ExtraServices, hasParticipants bool) error {
	if !hasParticipants {
		return nil
	}

	currentEnabled := current.EnabledKeys()
	var locked []string
	for key := range updated.EnabledKeys() {
		if !currentEnabled[key] {
			locked = append(locked, updated.LabelFor(key))
		}
	}
	if len(locked) == 0 {
		return nil
	}
	sort.Strings(locked)
	return apperrors.NewCustomError(apperrors.ErrServiceLocked,
		fmt.Sprintf("cannot enable services with participants present: %s", strings.Join(locked, ", ")))
}
