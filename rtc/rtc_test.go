// File: rtc/rtc_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package rtc

import (
	"testing"
	"time"
)

// TestToCalendar_KnownVector decodes a hand-packed register pair.
func TestToCalendar_KnownVector(t *testing.T) {
	// 2013-07-04 14:35:09, a Thursday.
	r := Raw{Time: 0x143509, Date: 0x138704}

	got := ToCalendar(r)
	want := time.Date(2013, time.July, 4, 14, 35, 9, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
	if got.Weekday() != time.Thursday {
		t.Errorf("Expected derived weekday Thursday, got %v", got.Weekday())
	}
}

// TestFromCalendar_KnownVector encodes the same instant back into
// register form, weekday included.
func TestFromCalendar_KnownVector(t *testing.T) {
	r := FromCalendar(time.Date(2013, time.July, 4, 14, 35, 9, 0, time.UTC))

	if r.Time != 0x143509 {
		t.Errorf("Expected time word 0x143509, got 0x%06X", r.Time)
	}
	if r.Date != 0x138704 {
		t.Errorf("Expected date word 0x138704, got 0x%06X", r.Date)
	}
	if r.Millis != 0 {
		t.Errorf("Expected zero millis, got %d", r.Millis)
	}
}

// TestToCalendar_PMFlag verifies that the PM flag adds twelve hours on
// decode and that re-encoding normalizes to 24-hour form.
func TestToCalendar_PMFlag(t *testing.T) {
	// 09:15:30 PM, 2013-07-04.
	r := Raw{Time: 0x091530 | 1<<22, Date: 0x138704}

	got := ToCalendar(r)
	if got.Hour() != 21 {
		t.Errorf("Expected hour 21 with PM flag set, got %d", got.Hour())
	}

	back := FromCalendar(got)
	if back.Time != 0x211530 {
		t.Errorf("Expected 24-hour re-encoding 0x211530, got 0x%06X", back.Time)
	}
}

// TestWeekday_SundayMapping verifies the weekday field mapping in both
// directions: register seven is Sunday.
func TestWeekday_SundayMapping(t *testing.T) {
	// 2013-07-07 is a Sunday.
	r := FromCalendar(time.Date(2013, time.July, 7, 0, 0, 0, 0, time.UTC))
	if wd := r.Date >> 13 & 0x7; wd != 7 {
		t.Errorf("Expected Sunday encoded as weekday 7, got %d", wd)
	}
	if r.Weekday() != time.Sunday {
		t.Errorf("Expected stored weekday to read back as Sunday, got %v", r.Weekday())
	}

	// 2013-07-04 is a Thursday.
	r = FromCalendar(time.Date(2013, time.July, 4, 0, 0, 0, 0, time.UTC))
	if r.Weekday() != time.Thursday {
		t.Errorf("Expected Thursday, got %v", r.Weekday())
	}
}

// TestCalendarRoundTrip runs encode/decode identity over spread-out
// instants, leap day included.
func TestCalendarRoundTrip(t *testing.T) {
	vectors := []time.Time{
		time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2013, time.July, 4, 14, 35, 9, 0, time.UTC),
		time.Date(2024, time.February, 29, 12, 0, 0, 250_000_000, time.UTC),
		time.Date(2099, time.December, 31, 23, 59, 59, 999_000_000, time.UTC),
	}
	for _, want := range vectors {
		if got := ToCalendar(FromCalendar(want)); !got.Equal(want) {
			t.Errorf("Round trip of %v yielded %v", want, got)
		}
	}
}

// TestUnixSec verifies epoch conversion against an independent literal.
func TestUnixSec(t *testing.T) {
	r := Raw{Time: 0x143509, Date: 0x138704}

	const want = 1372948509 // 2013-07-04T14:35:09Z
	if got := UnixSec(r); got != want {
		t.Errorf("Expected %d, got %d", want, got)
	}

	back := FromUnixSec(want)
	if back.Time != r.Time || back.Date != r.Date {
		t.Errorf("Expected FromUnixSec to reproduce the register pair, got 0x%06X/0x%06X", back.Time, back.Date)
	}
}

// TestUnixMicro verifies that the millisecond fraction lands below the
// second.
func TestUnixMicro(t *testing.T) {
	r := Raw{Time: 0x143509, Date: 0x138704, Millis: 250}

	const want int64 = 1372948509*1e6 + 250_000
	if got := UnixMicro(r); got != want {
		t.Errorf("Expected %d, got %d", want, got)
	}
}

// TestFromUnixSecRoundTrip verifies identity through the epoch wrappers.
func TestFromUnixSecRoundTrip(t *testing.T) {
	for _, sec := range []int64{946684800, 1372948509, 4102444799} {
		if got := UnixSec(FromUnixSec(sec)); got != sec {
			t.Errorf("Round trip of %d yielded %d", sec, got)
		}
	}
}

// TestFATTime verifies the packed FAT timestamp word.
func TestFATTime(t *testing.T) {
	got := FATTime(time.Date(2013, time.July, 4, 14, 35, 8, 0, time.UTC))
	const want = uint32(0x42E47464)
	if got != want {
		t.Errorf("Expected 0x%08X, got 0x%08X", want, got)
	}

	// Odd seconds lose their low bit to the two-second resolution.
	odd := FATTime(time.Date(2013, time.July, 4, 14, 35, 9, 0, time.UTC))
	if odd != want {
		t.Errorf("Expected second 9 to pack like second 8, got 0x%08X", odd)
	}
}

// TestZeroRawNormalizes documents the zero-register behavior: day and
// month zero roll backward per calendar normalization.
func TestZeroRawNormalizes(t *testing.T) {
	got := ToCalendar(Raw{})
	want := time.Date(1999, time.November, 30, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Expected zero registers to normalize to %v, got %v", want, got)
	}
}
