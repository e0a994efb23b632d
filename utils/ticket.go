package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateTicketNumber builds a citizen-facing tracking number, e.g.
// COMP-20260830-a1b2c3d4. The date is the filing date in UTC; the suffix
// is random so ticket numbers are not guessable.
func GenerateTicketNumber() string {
	datePart := time.Now().UTC().Format("20060102")
	uniquePart := strings.Split(uuid.New().String(), "-")[0]
	return fmt.Sprintf("COMP-%s-%s", datePart, uniquePart)
}
