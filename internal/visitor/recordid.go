package visitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// recordIDSuffixLen hex characters give enough entropy that bursts of
// concurrent check-ins within the same millisecond stay practically unique;
// the store's uniqueness constraint backstops the remainder.
const recordIDSuffixLen = 8

// NewRecordID builds an externally visible record id of the form
// <PREFIX>-<unix millis>-<random hex>.
func NewRecordID(prefix string, now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:recordIDSuffixLen]
	return fmt.Sprintf("%s-%d-%s", prefix, now.UnixMilli(), suffix)
}
