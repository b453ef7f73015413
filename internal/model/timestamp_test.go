package model

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampRoundTripAndOrder(t *testing.T) {
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.FixedZone("x", 3600))
	times := []time.Time{base.Add(time.Second), base, base.Add(1500 * time.Microsecond), base.Add(-time.Hour)}

	var stored []string
	for _, tm := range times {
		s := FormatTimestamp(tm)
		assert.Len(t, s, len(TimestampLayout))
		got, err := ParseTimestamp(s)
		require.NoError(t, err)
		assert.True(t, got.Equal(tm.Truncate(time.Microsecond)))
		stored = append(stored, s)
	}

	sort.Strings(stored)
	first, _ := ParseTimestamp(stored[0])
	last, _ := ParseTimestamp(stored[len(stored)-1])
	assert.True(t, first.Equal(base.Add(-time.Hour)))
	assert.True(t, last.Equal(base.Add(time.Second)))
}

func TestParseTimestampRFC3339(t *testing.T) {
	got, err := ParseTimestamp("2024-03-01T10:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, 2024, got.Year())
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("root").Valid())
}
