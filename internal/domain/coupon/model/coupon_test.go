package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDiscountFor(t *testing.T) {
	tests := []struct {
		name   string
		coupon Coupon
		amount int64
		want   int64
	}{
		{"fixed", Coupon{DiscountType: DiscountFixed, DiscountValue: 5000}, 54300, 5000},
		{"fixed capped at amount", Coupon{DiscountType: DiscountFixed, DiscountValue: 50000}, 29800, 29800},
		{"percent floors", Coupon{DiscountType: DiscountPercent, DiscountValue: 15}, 29999, 4499},
		{"percent 100", Coupon{DiscountType: DiscountPercent, DiscountValue: 100}, 24500, 24500},
		{"percent over 100 capped", Coupon{DiscountType: DiscountPercent, DiscountValue: 150}, 1000, 1000},
		{"zero amount", Coupon{DiscountType: DiscountFixed, DiscountValue: 5000}, 0, 0},
		{"unknown type", Coupon{DiscountType: "bogus", DiscountValue: 5000}, 1000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.coupon.DiscountFor(tt.amount))
		})
	}
}

func TestExpired(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	assert.False(t, (&Coupon{}).Expired(now))
	assert.True(t, (&Coupon{ExpiresAt: &past}).Expired(now))
	assert.True(t, (&Coupon{ExpiresAt: &now}).Expired(now))
	assert.False(t, (&Coupon{ExpiresAt: &future}).Expired(now))
}
