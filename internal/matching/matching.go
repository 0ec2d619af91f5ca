package matching

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/marketvest/internal/apperr"
)

// Mapping routes statement lines whose description contains RawPattern to
// the wallet of UserID.
type Mapping struct {
	ID         uuid.UUID
	RawPattern string
	UserID     uuid.UUID
	CreatedAt  time.Time
}

// MinPatternLength keeps a mapping from swallowing unrelated transfers.
const MinPatternLength = 4

var (
	ErrPatternTooShort  = apperr.New(apperr.KindValidation, "PATTERN_TOO_SHORT", "pattern is too short")
	ErrDuplicatePattern = apperr.New(apperr.KindConflict, "DUPLICATE_PATTERN", "pattern is already mapped")
	ErrUnknownUser      = apperr.New(apperr.KindValidation, "UNKNOWN_USER", "user does not exist")
	ErrNotFound         = apperr.New(apperr.KindNotFound, "MAPPING_NOT_FOUND", "mapping not found")
)
