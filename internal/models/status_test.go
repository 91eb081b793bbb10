package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePaymentStatus(t *testing.T) {
	for _, status := range PaymentStatuses {
		parsed, err := ParsePaymentStatus(string(status))
		require.NoError(t, err)
		assert.Equal(t, status, parsed)
	}

	_, err := ParsePaymentStatus("pending")
	assert.Error(t, err)
	_, err = ParsePaymentStatus("")
	assert.Error(t, err)
}

func TestPaymentStatus_IsTerminal(t *testing.T) {
	assert.False(t, PaymentStatusPending.IsTerminal())
	assert.True(t, PaymentStatusCompleted.IsTerminal())
	assert.True(t, PaymentStatusRefunded.IsTerminal())
	assert.True(t, PaymentStatusCancelled.IsTerminal())
}

func TestParseRefundStatus(t *testing.T) {
	for _, status := range RefundStatuses {
		parsed, err := ParseRefundStatus(string(status))
		require.NoError(t, err)
		assert.Equal(t, status, parsed)
	}

	_, err := ParseRefundStatus("approved")
	assert.Error(t, err)
}

func TestRefundStatus_IsTerminal(t *testing.T) {
	assert.False(t, RefundStatusRequested.IsTerminal())
	assert.False(t, RefundStatusApproved.IsTerminal())
	assert.True(t, RefundStatusRejected.IsTerminal())
	assert.True(t, RefundStatusProcessed.IsTerminal())
}
