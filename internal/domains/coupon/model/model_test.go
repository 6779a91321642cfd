package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestAppliesToUnrestrictedCoupon(t *testing.T) {
	c := &Coupon{}

	assert.True(t, c.AppliesTo(nil))
	assert.True(t, c.AppliesTo([]uuid.UUID{uuid.New()}))
}

func TestAppliesToRestrictedCoupon(t *testing.T) {
	covered := uuid.New()
	c := &Coupon{ApplicableProductIDs: []uuid.UUID{covered}}

	assert.False(t, c.AppliesTo(nil))
	assert.False(t, c.AppliesTo([]uuid.UUID{uuid.New()}))
	assert.True(t, c.AppliesTo([]uuid.UUID{uuid.New(), covered}))
}

func TestIsUsageLimitReached(t *testing.T) {
	unlimited := &Coupon{UsedCount: 1000}
	assert.False(t, unlimited.IsUsageLimitReached())

	limit := 5
	capped := &Coupon{UsageLimit: &limit, UsedCount: 4}
	assert.False(t, capped.IsUsageLimitReached())

	capped.UsedCount = 5
	assert.True(t, capped.IsUsageLimitReached())
}
