package services

import (
	"crypto/sha512"
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestVerifyNotificationSignature(t *testing.T) {
	serverKey := "SB-Mid-server-testkey"
	orderID := "sub-monthly-abc"
	statusCode := "200"
	grossAmount := "450000.00"

	h := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	valid := hex.EncodeToString(h[:])

	tests := []struct {
		name      string
		signature string
		serverKey string
		expected  bool
	}{
		{"valid signature", valid, serverKey, true},
		{"uppercase hex accepted", strings.ToUpper(valid), serverKey, true},
		{"wrong signature", "deadbeef", serverKey, false},
		{"empty signature", "", serverKey, false},
		{"empty server key", valid, "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := VerifyNotificationSignature(orderID, statusCode, grossAmount, tc.serverKey, tc.signature)
			if got != tc.expected {
				t.Errorf("Expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestOrderID_RoundTrip(t *testing.T) {
	userID := uuid.New()
	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	orderID := BuildOrderID("monthly", userID, at)

	plan, parsedID, err := ParseOrderID(orderID)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if plan != "monthly" {
		t.Errorf("Expected plan monthly, got %q", plan)
	}
	if parsedID != userID {
		t.Errorf("Expected user ID %s, got %s", userID, parsedID)
	}
}

func TestParseOrderID_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		orderID string
	}{
		{"empty", ""},
		{"wrong prefix", "order-monthly-" + uuid.NewString() + "-123"},
		{"missing uuid", "sub-monthly-"},
		{"truncated uuid", "sub-monthly-1234abcd"},
		{"garbage uuid", "sub-monthly-zzzzzzzz-zzzz-zzzz-zzzz-zzzzzzzzzzzz-1"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := ParseOrderID(tc.orderID); err == nil {
				t.Errorf("Expected error for %q", tc.orderID)
			}
		})
	}
}
