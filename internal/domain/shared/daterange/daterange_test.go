package daterange

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewDropsTimeOfDay(t *testing.T) {
	dr, err := New(time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC), time.Date(2025, 3, 13, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, date(2025, 3, 10), dr.CheckIn)
	assert.Equal(t, date(2025, 3, 13), dr.CheckOut)

	nights, ok := dr.Nights()
	assert.True(t, ok)
	assert.Equal(t, 3, nights)
}

func TestNewRejectsInvertedRange(t *testing.T) {
	_, err := New(date(2025, 3, 13), date(2025, 3, 10))
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = New(date(2025, 3, 10), date(2025, 3, 10))
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestParseDay(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    time.Time
		wantErr bool
	}{
		{name: "date only", in: "2025-04-01", want: date(2025, 4, 1)},
		{name: "rfc3339 keeps its own calendar date", in: "2025-04-01T23:30:00+05:30", want: date(2025, 4, 1)},
		{name: "surrounding spaces", in: " 2025-04-01 ", want: date(2025, 4, 1)},
		{name: "empty", in: "", wantErr: true},
		{name: "garbage", in: "01/04/2025", wantErr: true},
		{name: "impossible day", in: "2025-02-30", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseDay(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrMalformedDate))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNightsDetectsFractionalDays(t *testing.T) {
	dr := DateRange{CheckIn: date(2025, 3, 10), CheckOut: date(2025, 3, 12).Add(6 * time.Hour)}
	nights, ok := dr.Nights()
	assert.False(t, ok)
	assert.Equal(t, 2, nights)
}

func TestDatesIsCheckoutExclusive(t *testing.T) {
	dr := DateRange{CheckIn: date(2025, 12, 30), CheckOut: date(2026, 1, 2)}
	got := dr.Dates()
	require.Len(t, got, 3)
	assert.Equal(t, date(2025, 12, 30), got[0])
	assert.Equal(t, date(2025, 12, 31), got[1])
	assert.Equal(t, date(2026, 1, 1), got[2])

	assert.Empty(t, DateRange{CheckIn: date(2026, 1, 2), CheckOut: date(2026, 1, 2)}.Dates())
}

func TestOverlapsAndAdjacency(t *testing.T) {
	booked := DateRange{CheckIn: date(2025, 4, 1), CheckOut: date(2025, 4, 5)}
	backToBack := DateRange{CheckIn: date(2025, 4, 5), CheckOut: date(2025, 4, 7)}
	overlapping := DateRange{CheckIn: date(2025, 4, 3), CheckOut: date(2025, 4, 6)}

	assert.False(t, booked.Overlaps(backToBack))
	assert.True(t, booked.Adjacent(backToBack))
	assert.True(t, booked.Overlaps(overlapping))
	assert.True(t, booked.ContainsDate(date(2025, 4, 4)))
	assert.False(t, booked.ContainsDate(date(2025, 4, 5)))
}

func TestClip(t *testing.T) {
	bounds := DateRange{CheckIn: date(2025, 4, 1), CheckOut: date(2025, 5, 1)}

	clipped, ok := DateRange{CheckIn: date(2025, 3, 28), CheckOut: date(2025, 4, 3)}.Clip(bounds)
	require.True(t, ok)
	assert.Equal(t, DateRange{CheckIn: date(2025, 4, 1), CheckOut: date(2025, 4, 3)}, clipped)

	_, ok = DateRange{CheckIn: date(2025, 5, 1), CheckOut: date(2025, 5, 3)}.Clip(bounds)
	assert.False(t, ok)
}
