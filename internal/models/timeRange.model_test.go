package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimeRangeValid(t *testing.T) {
	testCases := []struct {
		value TimeRange
		valid bool
	}{
		{TimeRangeShort, true},
		{TimeRangeMedium, true},
		{TimeRangeLong, true},
		{TimeRange(""), false},
		{TimeRange("yearly"), false},
		{TimeRange("SHORT_TERM"), false},
		{TimeRange("medium_term "), false},
	}

	for _, tc := range testCases {
		t.Run(string(tc.value), func(t *testing.T) {
			assert.Equal(t, tc.valid, tc.value.Valid())
		})
	}
}
