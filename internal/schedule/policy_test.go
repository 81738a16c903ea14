package schedule

import (
	"testing"
	"time"

	"gym-booking/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func testPolicy() Policy {
	p := DefaultPolicy()
	p.Location = time.UTC
	return p
}

func at(clock string) time.Time {
	t, _ := time.ParseInLocation("2006-01-02 15:04", "2026-03-10 "+clock, time.UTC)
	return t
}

func TestClassStart(t *testing.T) {
	p := testPolicy()

	start, err := p.ClassStart("2026-03-10", "09:00")
	require.NoError(t, err)
	assert.Equal(t, at("09:00"), start)

	_, err = p.ClassStart("", "09:00")
	assert.ErrorIs(t, err, ErrMissingSchedule)

	_, err = p.ClassStart("2026-03-10", "9am")
	assert.Error(t, err)
}

func TestCanSelfCheckIn(t *testing.T) {
	p := testPolicy()
	start := at("09:00")

	tests := []struct {
		now  string
		want bool
	}{
		{"08:30", true},
		{"09:00", true},
		{"09:14", true},
		{"09:15", true},
		{"09:16", false},
		{"11:00", false},
	}

	for _, tt := range tests {
		t.Run(tt.now, func(t *testing.T) {
			assert.Equal(t, tt.want, p.CanSelfCheckIn(start, at(tt.now)))
		})
	}
}

func TestIsCheckInOpen(t *testing.T) {
	p := testPolicy()
	start := at("09:00")

	assert.False(t, p.IsCheckInOpen(start, at("08:59")))
	assert.True(t, p.IsCheckInOpen(start, at("09:00")))
	assert.True(t, p.IsCheckInOpen(start, at("09:15")))
	assert.False(t, p.IsCheckInOpen(start, at("09:16")))
}

func TestIsNoShow(t *testing.T) {
	p := testPolicy()

	noShow, err := p.IsNoShow(strPtr("2026-03-10"), strPtr("09:00"), at("09:14"))
	require.NoError(t, err)
	assert.False(t, noShow)

	noShow, err = p.IsNoShow(strPtr("2026-03-10"), strPtr("09:00"), at("09:16"))
	require.NoError(t, err)
	assert.True(t, noShow)

	_, err = p.IsNoShow(nil, strPtr("09:00"), at("09:16"))
	assert.ErrorIs(t, err, ErrMissingSchedule)

	_, err = p.IsNoShow(strPtr("10/03/2026"), strPtr("09:00"), at("09:16"))
	assert.Error(t, err)
}

func TestActiveAndOver(t *testing.T) {
	p := testPolicy()
	date, clock := strPtr("2026-03-10"), strPtr("09:00")

	assert.True(t, p.IsActiveBooking(date, clock, at("09:59")))
	assert.False(t, p.IsActiveBooking(date, clock, at("10:00")))
	assert.False(t, p.IsClassOver(date, clock, at("09:59")))
	assert.True(t, p.IsClassOver(date, clock, at("10:00")))

	// missing fields: conservatively active, and over for history purposes
	assert.True(t, p.IsActiveBooking(nil, nil, at("23:00")))
	assert.True(t, p.IsClassOver(nil, clock, at("00:00")))
}

func TestBookingState(t *testing.T) {
	p := testPolicy()
	start := at("21:00")

	opensAt, closesAt := p.BookingWindow(start)
	assert.Equal(t, at("09:00"), opensAt)
	assert.Equal(t, at("20:45"), closesAt)

	assert.Equal(t, BookingNotOpen, p.BookingStateAt(start, at("08:59")))
	assert.Equal(t, BookingOpen, p.BookingStateAt(start, at("09:00")))
	assert.Equal(t, BookingOpen, p.BookingStateAt(start, at("20:45")))
	assert.Equal(t, BookingClosed, p.BookingStateAt(start, at("20:46")))
}

func TestToday(t *testing.T) {
	p := testPolicy()
	loc := time.FixedZone("UTC-3", -3*60*60)
	p.Location = loc

	// 01:00 UTC is still the previous day three hours west
	now := time.Date(2026, 3, 10, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-03-09", p.Today(now))
}

func TestNewPolicy(t *testing.T) {
	p, err := NewPolicy(utils.ScheduleConfig{Timezone: "UTC", CheckInGrace: 10 * time.Minute})
	require.NoError(t, err)
	assert.Equal(t, time.UTC, p.Location)
	assert.Equal(t, 10*time.Minute, p.CheckInGrace)
	assert.Equal(t, 60*time.Minute, p.ClassDuration)

	_, err = NewPolicy(utils.ScheduleConfig{Timezone: "Nowhere/Invalid"})
	assert.Error(t, err)
}

func TestValidators(t *testing.T) {
	assert.True(t, ValidDate("2026-02-28"))
	assert.False(t, ValidDate("2026-02-30"))
}
