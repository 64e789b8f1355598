package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		allowed bool
	}{
		{"截止", AuctionStatusOpen, AuctionStatusClosed, true},
		{"结算", AuctionStatusClosed, AuctionStatusSettled, true},
		{"流拍", AuctionStatusClosed, AuctionStatusExpired, true},
		{"不能跳过截止直接结算", AuctionStatusOpen, AuctionStatusSettled, false},
		{"不能跳过截止直接流拍", AuctionStatusOpen, AuctionStatusExpired, false},
		{"结算后不能回退", AuctionStatusSettled, AuctionStatusClosed, false},
		{"结算后不能流拍", AuctionStatusSettled, AuctionStatusExpired, false},
		{"流拍后不能结算", AuctionStatusExpired, AuctionStatusSettled, false},
		{"未知状态", "UNKNOWN", AuctionStatusClosed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransitionTo(tt.from, tt.to))
		})
	}
}
