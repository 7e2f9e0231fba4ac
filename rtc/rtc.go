// File: rtc/rtc.go
// Package rtc converts packed-BCD calendar registers to and from Go time.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Battery-backed calendar units keep time as two packed-decimal
// registers: a time word of second/minute/hour digit pairs and a date
// word of day/month/weekday/year fields with years counted from 2000.
// This package transcodes that layout to time.Time and the Unix epoch,
// and packs FAT filesystem timestamps. Conversions are pure field
// arithmetic: out-of-range inputs produce the arithmetic result rather
// than an error, in line with the unchecked-precondition style of the
// allocation paths this library is built around.

package rtc

import "time"

// Raw is a calendar register pair plus a millisecond fraction.
//
// Time word layout (packed BCD): second units in bits 3:0 and tens in
// 6:4, minute units in 11:8 and tens in 14:12, hour units in 19:16 and
// tens in 21:20, PM flag in bit 22. Date word: day units in 3:0 and
// tens in 5:4, month units in 11:8 and tens in bit 12, weekday in 15:13
// (1 = Monday through 7 = Sunday), year units in 19:16 and tens in
// 23:20, offset from 2000. Millis is a plain binary count, not BCD.
type Raw struct {
	Time   uint32
	Date   uint32
	Millis uint32
}

const (
	pmFlag = 1 << 22

	secMask  = 0x7F
	minMask  = 0x7F
	hourMask = 0x3F

	dayMask   = 0x3F
	monthMask = 0x1F
	yearMask  = 0xFF

	minShift   = 8
	hourShift  = 16
	monthShift = 8
	wdayShift  = 13
	yearShift  = 16
)

// ToCalendar expands r into a UTC time.Time. The hour is normalized to
// 24-hour form, the PM flag adding twelve. The stored weekday is
// ignored: time.Time derives the weekday from the date itself. Fields
// outside their calendar range roll over per time.Date normalization.
func ToCalendar(r Raw) time.Time {
	sec := fromBCD(r.Time & secMask)
	min := fromBCD(r.Time >> minShift & minMask)
	hour := fromBCD(r.Time >> hourShift & hourMask)
	if r.Time&pmFlag != 0 {
		hour += 12
	}

	day := fromBCD(r.Date & dayMask)
	month := fromBCD(r.Date >> monthShift & monthMask)
	year := fromBCD(r.Date >> yearShift & yearMask)

	return time.Date(2000+year, time.Month(month), day, hour, min, sec,
		int(r.Millis)*int(time.Millisecond), time.UTC)
}

// FromCalendar packs the wall-clock fields of t, read in t's own
// location, into register form. Hours are encoded in 24-hour form with
// the PM flag left clear; Sunday is stored as weekday seven.
func FromCalendar(t time.Time) Raw {
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	wday := uint32(t.Weekday())
	if wday == 0 {
		wday = 7
	}

	return Raw{
		Time: toBCD(sec) | toBCD(min)<<minShift | toBCD(hour)<<hourShift,
		Date: toBCD(day) | toBCD(int(month))<<monthShift | wday<<wdayShift |
			toBCD(year-2000)<<yearShift,
		Millis: uint32(t.Nanosecond() / int(time.Millisecond)),
	}
}

// Weekday reads the stored weekday field, register value seven mapping
// back to time.Sunday.
func (r Raw) Weekday() time.Weekday {
	wd := r.Date >> wdayShift & 0x7
	if wd == 7 {
		wd = 0
	}
	return time.Weekday(wd)
}

// UnixSec converts r to seconds since the Unix epoch.
func UnixSec(r Raw) int64 { return ToCalendar(r).Unix() }

// FromUnixSec packs the UTC calendar fields of sec into register form.
func FromUnixSec(sec int64) Raw { return FromCalendar(time.Unix(sec, 0).UTC()) }

// UnixMicro converts r to microseconds since the Unix epoch, the
// millisecond fraction contributing below the second.
func UnixMicro(r Raw) int64 {
	return UnixSec(r)*1e6 + int64(r.Millis)*1000
}

// FATTime packs t into the FAT filesystem timestamp word: two-second
// resolution, years counted from 1980.
func FATTime(t time.Time) uint32 {
	year, month, day := t.Date()
	hour, min, sec := t.Clock()
	return uint32(sec/2) |
		uint32(min)<<5 |
		uint32(hour)<<11 |
		uint32(day)<<16 |
		uint32(month)<<21 |
		uint32(year-1980)<<25
}

func fromBCD(v uint32) int { return int(v>>4)*10 + int(v&0x0F) }

func toBCD(n int) uint32 { return uint32(n/10)<<4 | uint32(n%10) }
