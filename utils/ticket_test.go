package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTicketNumberFormat(t *testing.T) {
	ticket := GenerateTicketNumber()
	parts := strings.Split(ticket, "-")
	require.Len(t, parts, 3)
	assert.Equal(t, "COMP", parts[0])
	assert.Equal(t, time.Now().UTC().Format("20060102"), parts[1])
	assert.Len(t, parts[2], 8)
}

func TestGenerateTicketNumberUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		ticket := GenerateTicketNumber()
		assert.False(t, seen[ticket], "duplicate ticket %s", ticket)
		seen[ticket] = true
	}
}
