package models

// TimeRange is the upstream aggregation window for "top" queries.
type TimeRange string

const (
	TimeRangeShort  TimeRange = "short_term"
	TimeRangeMedium TimeRange = "medium_term"
	TimeRangeLong   TimeRange = "long_term"
)

// Valid reports whether the value is one of the enumerated upstream windows.
// Anything else must be rejected before an upstream call is made.
func (tr TimeRange) Valid() bool {
	switch tr {
	case TimeRangeShort, TimeRangeMedium, TimeRangeLong:
		return true
	}
	return false
}
