package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsForward(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusProcessing, true},
		{StatusProcessing, StatusShipped, true},
		{StatusShipped, StatusDelivered, true},
		{StatusPending, StatusCancelled, true},
		{StatusShipped, StatusShipped, true},
		{StatusDelivered, StatusShipped, false},
		{StatusPending, StatusDelivered, false},
		{StatusCancelled, StatusPending, false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, IsForward(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, Status("lost").Valid())
	assert.False(t, Status("").Valid())
}
