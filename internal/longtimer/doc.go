// Package longtimer schedules one-shot callbacks whose delay may exceed the
// 2^31-1 millisecond cap of a single-shot wait, by chaining shorter waits
// until the remaining delay fits in one shot.
package longtimer
