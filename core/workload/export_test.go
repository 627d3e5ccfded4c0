package workload

import "time"

// SetClock replaces the clock used to stamp new assignments and returns a function restoring it.
func SetClock(f func() time.Time) (restore func()) {
	orig := nowFunc
	nowFunc = f
	return func() { nowFunc = orig }
}

// SetIDGenerator replaces the assignment id generator and returns a function restoring it.
func SetIDGenerator(f func() string) (restore func()) {
	orig := newIDFunc
	newIDFunc = f
	return func() { newIDFunc = orig }
}
