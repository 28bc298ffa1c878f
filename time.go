package powerlink

// NetTime is the POWERLINK network time carried by SoC frames: seconds and
// nanoseconds since an application-chosen epoch.
type NetTime struct {
	Seconds     uint32
	Nanoseconds uint32
}

// RelativeTime is the elapsed time since the start of the current NMT
// cycle, carried by SoC frames alongside NetTime; same wire shape as
// NetTime (seconds and nanoseconds) but a distinct, unrelated quantity.
type RelativeTime struct {
	Seconds     uint32
	Nanoseconds uint32
}

// TimeOfDay is the CiA/EPSG "time of day" representation: milliseconds
// since midnight plus days since 1984-01-01.
type TimeOfDay struct {
	MillisecondsAfterMidnight uint32
	Days                      uint16
}

// TimeDifference mirrors TimeOfDay's wire layout but represents a duration.
type TimeDifference struct {
	Milliseconds uint32
	Days         uint16
}
