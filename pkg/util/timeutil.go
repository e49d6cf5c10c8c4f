package util

import "time"

// NowUTC exposes time.Now for deterministic testing.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// Clock is injected where domains need a replaceable time source.
type Clock func() time.Time

// UnixMilli reports the clock's current time in epoch milliseconds.
func (c Clock) UnixMilli() int64 {
	if c == nil {
		return NowUTC().UnixMilli()
	}
	return c().UnixMilli()
}
