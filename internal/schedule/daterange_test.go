package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandRange(t *testing.T) {
	tests := []struct {
		name        string
		start       string
		end         string
		expected    []string
		expectedErr error
	}{
		{
			name:     "three days",
			start:    "2025-01-01",
			end:      "2025-01-03",
			expected: []string{"2025-01-01", "2025-01-02", "2025-01-03"},
		},
		{
			name:     "single day",
			start:    "2025-06-15",
			end:      "2025-06-15",
			expected: []string{"2025-06-15"},
		},
		{
			name:     "across month and leap day",
			start:    "2024-02-28",
			end:      "2024-03-01",
			expected: []string{"2024-02-28", "2024-02-29", "2024-03-01"},
		},
		{
			name:     "across DST change",
			start:    "2025-03-29",
			end:      "2025-03-31",
			expected: []string{"2025-03-29", "2025-03-30", "2025-03-31"},
		},
		{name: "missing start", end: "2025-01-03", expectedErr: ErrStartRequired},
		{name: "missing end", start: "2025-01-03", expectedErr: ErrEndRequired},
		{name: "start after end", start: "2025-01-04", end: "2025-01-03", expectedErr: ErrStartAfterEnd},
		{name: "one day over the limit", start: "2024-01-01", end: "2025-01-01", expectedErr: ErrRangeTooLong},
		{name: "whole calendar", start: "0001-01-01", end: "9999-12-31", expectedErr: ErrRangeTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandRange(tt.start, tt.end)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestExpandRange_InvalidDate(t *testing.T) {
	_, err := ExpandRange("2025-13-01", "2025-12-31")
	assert.Error(t, err)
}

func TestExpandRange_LengthAndOrder(t *testing.T) {
	pairs := [][2]string{
		{"2025-01-01", "2025-12-31"},
		{"2023-12-25", "2024-01-05"},
		{"2024-02-01", "2024-03-01"},
	}

	for _, p := range pairs {
		start, _ := ParseDate(p[0])
		end, _ := ParseDate(p[1])
		want := int(end.Sub(start).Hours()/24) + 1

		got, err := ExpandRange(p[0], p[1])
		require.NoError(t, err)
		assert.Len(t, got, want)
		assert.Equal(t, p[0], got[0])
		assert.Equal(t, p[1], got[len(got)-1])

		seen := map[string]bool{}
		for i, d := range got {
			assert.False(t, seen[d], "duplicate %s", d)
			seen[d] = true
			if i > 0 {
				assert.Less(t, got[i-1], d)
			}
		}
	}
}

func TestExpandRange_Limit(t *testing.T) {
	leapYear, err := ExpandRange("2024-01-01", "2024-12-31")
	require.NoError(t, err)
	assert.Len(t, leapYear, MaxRangeDays)

	sel := NewDateSelection()
	assert.ErrorIs(t, sel.SetRange("2024-01-01", "2025-01-01"), ErrRangeTooLong)
	assert.Empty(t, sel.Dates())

	explicit := make([]string, 0, MaxRangeDays+1)
	for d, _ := ParseDate("2024-01-01"); len(explicit) <= MaxRangeDays; d = d.AddDate(0, 0, 1) {
		explicit = append(explicit, d.Format(DateLayout))
	}
	assert.ErrorIs(t, sel.SetDates(explicit), ErrRangeTooLong)
	require.NoError(t, sel.SetDates(append(explicit[:MaxRangeDays:MaxRangeDays], explicit[0])))
	assert.Len(t, sel.Selected(), MaxRangeDays)
}

func TestDateSelection(t *testing.T) {
	sel := NewDateSelection()
	require.NoError(t, sel.SetRange("2025-01-01", "2025-01-03"))
	assert.Equal(t, []string{"2025-01-01", "2025-01-02", "2025-01-03"}, sel.Selected())

	sel.Toggle("2025-01-02")
	assert.Equal(t, []string{"2025-01-01", "2025-01-03"}, sel.Selected())
	sel.Toggle("2025-01-02")
	assert.Equal(t, []string{"2025-01-01", "2025-01-02", "2025-01-03"}, sel.Selected())

	sel.Toggle("2030-01-01")
	assert.Len(t, sel.Selected(), 3)

	sel.ToggleAll()
	assert.Empty(t, sel.Selected())
	sel.Toggle("2025-01-03")
	sel.ToggleAll()
	assert.Len(t, sel.Selected(), 3)

	require.NoError(t, sel.SetRange("2025-02-01", "2025-02-02"))
	assert.Equal(t, []string{"2025-02-01", "2025-02-02"}, sel.Selected())
	assert.False(t, sel.IsSelected("2025-01-01"))

	assert.Error(t, sel.SetRange("2025-02-02", "2025-02-01"))
	assert.Empty(t, sel.Dates())
}

func TestDateSelection_SetDates(t *testing.T) {
	sel := NewDateSelection()
	require.NoError(t, sel.SetDates([]string{"2025-01-03", "2025-01-01", "2025-01-03"}))
	assert.Equal(t, []string{"2025-01-01", "2025-01-03"}, sel.Selected())

	assert.Error(t, sel.SetDates([]string{"yesterday"}))
}

func TestUserSelection(t *testing.T) {
	var sel UserSelection
	filtered := []string{"u1", "u2", "u3"}

	sel.Toggle("u1")
	assert.True(t, sel.Contains("u1"))
	sel.Toggle("u1")
	assert.False(t, sel.Contains("u1"))

	sel.Toggle("u2")
	sel.ToggleAll(filtered)
	assert.Equal(t, filtered, sel.IDs())

	sel.ToggleAll(filtered)
	assert.Empty(t, sel.IDs())

	sel.ToggleAll(filtered)
	sel.Retain([]string{"u1", "u3"})
	assert.Equal(t, []string{"u1", "u3"}, sel.IDs())
}
