package services

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"

	"olymprep-backend/internal/models"
	"olymprep-backend/internal/repository"
)

// Subscription plans and their price (IDR) and duration.
var subscriptionPlans = map[string]struct {
	Price int64
	Days  int
}{
	"monthly": {Price: 450000, Days: 30},
	"annual":  {Price: 4320000, Days: 365},
}

// PaymentNotification is the processor's webhook payload. Checkout itself is
// hosted by the processor; only the outcome flows back here.
type PaymentNotification struct {
	TransactionStatus string `json:"transaction_status"`
	StatusCode        string `json:"status_code"`
	SignatureKey      string `json:"signature_key"`
	OrderID           string `json:"order_id"`
	GrossAmount       string `json:"gross_amount"`
	FraudStatus       string `json:"fraud_status"`
}

type BillingService struct {
	userRepo  *repository.UserRepo
	snap      snap.Client
	serverKey string
	enabled   bool
}

func NewBillingService(userRepo *repository.UserRepo, serverKey string, production bool) *BillingService {
	s := &BillingService{userRepo: userRepo, serverKey: serverKey}
	if serverKey != "" {
		env := midtrans.Sandbox
		if production {
			env = midtrans.Production
		}
		s.snap.New(serverKey, env)
		s.enabled = true
	}
	return s
}

// CreateCheckout opens a hosted payment page for a subscription plan and marks
// the subscription pending until the notification arrives.
func (s *BillingService) CreateCheckout(ctx context.Context, user *models.User, plan string) (token, redirectURL string, err error) {
	if !s.enabled {
		return "", "", &ValidationError{Fields: map[string]string{"billing": "Billing is not configured"}}
	}

	p, ok := subscriptionPlans[plan]
	if !ok {
		return "", "", &ValidationError{Fields: map[string]string{"plan": "Unknown subscription plan"}}
	}

	orderID := BuildOrderID(plan, user.ID, time.Now())
	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderID,
			GrossAmt: p.Price,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: user.FullName,
			Email: user.Email,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    plan,
				Price: p.Price,
				Qty:   1,
				Name:  fmt.Sprintf("Olympiad coaching subscription (%s)", plan),
			},
		},
	}

	resp, snapErr := s.snap.CreateTransaction(req)
	if snapErr != nil {
		log.Printf("billing: checkout creation failed for user %s: %v", user.ID, snapErr)
		return "", "", &UpstreamError{Message: "Payment gateway unavailable"}
	}

	planCopy := plan
	if err := s.userRepo.UpdateSubscription(ctx, user.ID, models.SubscriptionPending, &planCopy, nil, nil); err != nil {
		return "", "", err
	}

	return resp.Token, resp.RedirectURL, nil
}

// HandleNotification verifies and applies a payment notification. The SHA-512
// signature scheme is the processor's: order_id + status_code + gross_amount +
// server key.
func (s *BillingService) HandleNotification(ctx context.Context, n PaymentNotification) error {
	if !VerifyNotificationSignature(n.OrderID, n.StatusCode, n.GrossAmount, s.serverKey, n.SignatureKey) {
		return &UnauthorizedError{Message: "Invalid signature"}
	}

	plan, userID, err := ParseOrderID(n.OrderID)
	if err != nil {
		return &ValidationError{Fields: map[string]string{"order_id": "Unrecognized order id"}}
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return &NotFoundError{Message: "User not found for order"}
	}

	switch n.TransactionStatus {
	case "settlement", "capture":
		if n.FraudStatus == "deny" {
			return nil
		}
		p, ok := subscriptionPlans[plan]
		if !ok {
			return &ValidationError{Fields: map[string]string{"order_id": "Unknown plan in order id"}}
		}
		now := time.Now()
		expires := now.AddDate(0, 0, p.Days)
		return s.userRepo.UpdateSubscription(ctx, user.ID, models.SubscriptionActive, &plan, &now, &expires)

	case "expire":
		return s.userRepo.UpdateSubscription(ctx, user.ID, models.SubscriptionExpired, nil, nil, nil)

	case "cancel", "deny", "failure":
		if user.SubscriptionStatus == models.SubscriptionPending {
			return s.userRepo.UpdateSubscription(ctx, user.ID, models.SubscriptionNone, nil, nil, nil)
		}
		return nil

	default:
		// pending and friends: nothing to apply yet
		return nil
	}
}

func BuildOrderID(plan string, userID uuid.UUID, at time.Time) string {
	return fmt.Sprintf("sub-%s-%s-%d", plan, userID, at.Unix())
}

// ParseOrderID reverses BuildOrderID. The uuid segment has a fixed width, so
// splitting on dashes alone would tear it apart.
func ParseOrderID(orderID string) (plan string, userID uuid.UUID, err error) {
	parts := strings.SplitN(orderID, "-", 3)
	if len(parts) != 3 || parts[0] != "sub" {
		return "", uuid.Nil, fmt.Errorf("malformed order id %q", orderID)
	}
	plan = parts[1]
	rest := parts[2]
	if len(rest) < 36 {
		return "", uuid.Nil, fmt.Errorf("malformed order id %q", orderID)
	}
	userID, err = uuid.Parse(rest[:36])
	if err != nil {
		return "", uuid.Nil, fmt.Errorf("malformed order id %q: %w", orderID, err)
	}
	return plan, userID, nil
}

func VerifyNotificationSignature(orderID, statusCode, grossAmount, serverKey, signature string) bool {
	if signature == "" || serverKey == "" {
		return false
	}
	h := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(h[:]) == strings.ToLower(signature)
}
