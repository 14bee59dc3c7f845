package queries

import (
	"testing"

	"dispatch/internal/core/domain/model/stop"

	"github.com/stretchr/testify/assert"
)

func TestPublicStatus_TranslatesEveryInternalStatus(t *testing.T) {
	tests := map[stop.Status]string{
		stop.StatusPending:     "processing",
		stop.StatusEnRoute:     "out_for_delivery",
		stop.StatusArrived:     "arriving",
		stop.StatusCompleted:   "delivered",
		stop.StatusFailed:      "delivery_attempted",
		stop.StatusCancelled:   "cancelled",
		stop.StatusRescheduled: "rescheduled",
		stop.StatusUnknown:     "processing",
	}

	for status, label := range tests {
		assert.Equal(t, label, publicStatus(status))
	}
}

func TestMaskName(t *testing.T) {
	assert.Equal(t, "D*********", maskName("Dana Reyes"))
	assert.Equal(t, "A", maskName("A"))
	assert.Equal(t, "", maskName(""))
}

func TestMaskAddress_KeepsSuburbAndPostcode(t *testing.T) {
	assert.Equal(t, "Sydney NSW 2000", maskAddress("5 Bridge St, Sydney NSW 2000"))
	assert.Equal(t, "Newtown, NSW 2042", maskAddress("12/30 King St, Newtown, NSW 2042"))
}

func TestMaskAddress_WithholdsUnstructuredAddress(t *testing.T) {
	assert.Equal(t, "", maskAddress("warehouse dock 3"))
	assert.Equal(t, "", maskAddress(""))
}
