package idx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	a := New()
	b := New()

	require.False(t, a.IsZero())
	require.False(t, b.IsZero())
	require.NotEqual(t, a, b, "consecutive ids should be unique")
	require.Len(t, a.String(), 26)
}

func TestNewMonotonicOrdering(t *testing.T) {
	t.Parallel()

	prev := New()
	for range 100 {
		next := New()
		require.Less(t, prev.String(), next.String(),
			"ids generated in sequence should sort in generation order")
		prev = next
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	valid := New()

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid ulid", valid.String(), false},
		{"valid with whitespace", "  " + valid.String() + "  ", false},
		{"empty", "", true},
		{"garbage", "not-a-ulid", true},
		{"too short", "01ARZ3NDEKTSV", true},
		{"invalid characters", "01ARZ3NDEKTSV4RRFFQ69G5FA!", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := Parse(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalid)
				require.True(t, id.IsZero())
				return
			}
			require.NoError(t, err)
			require.Equal(t, valid, id)
		})
	}
}

func TestIDTime(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	id := NewAt(at)

	require.WithinDuration(t, at, id.Time(), time.Millisecond)
	require.True(t, Zero.Time().IsZero())
}
