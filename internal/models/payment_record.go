package models

import "time"

// PaymentStatus is the billing state of a user's package
type PaymentStatus string

const (
	PaymentStatusNone        PaymentStatus = "none"
	PaymentStatusDepositPaid PaymentStatus = "deposit_paid"
	PaymentStatusFullPaid    PaymentStatus = "full_paid"
)

// PaymentTypeDeposit is the payment type tagged on deposit links
const (
	PaymentTypeDeposit = "deposit"
	PaymentTypeFull    = "full"
)

// Rank orders statuses so transitions can only move forward
func (s PaymentStatus) Rank() int {
	switch s {
	case PaymentStatusDepositPaid:
		return 1
	case PaymentStatusFullPaid:
		return 2
	default:
		return 0
	}
}

// Advances reports whether moving from s to next is a forward transition
func (s PaymentStatus) Advances(next PaymentStatus) bool {
	return next.Rank() > s.Rank()
}

// ParsePaymentStatus maps stored values to a status, unknown values become none
func ParsePaymentStatus(v string) PaymentStatus {
	switch PaymentStatus(v) {
	case PaymentStatusDepositPaid:
		return PaymentStatusDepositPaid
	case PaymentStatusFullPaid:
		return PaymentStatusFullPaid
	default:
		return PaymentStatusNone
	}
}

// StatusForPaymentType maps a completed payment type to the resulting status.
// Anything that is not a deposit counts as a full payment.
func StatusForPaymentType(paymentType string) PaymentStatus {
	if paymentType == PaymentTypeDeposit {
		return PaymentStatusDepositPaid
	}
	return PaymentStatusFullPaid
}

// PaymentRecord is the per-user payment state, one per UserID
type PaymentRecord struct {
	UserID             string        `json:"userId" firestore:"userId"`
	Email              string        `json:"email,omitempty" firestore:"email"`
	PackageType        string        `json:"packageType" firestore:"packageType"`
	PackagePrice       int64         `json:"packagePrice" firestore:"packagePrice"`
	DepositAmount      int64         `json:"depositAmount" firestore:"depositAmount"`
	PaymentStatus      PaymentStatus `json:"paymentStatus" firestore:"paymentStatus"`
	DepositLink        string        `json:"depositLink" firestore:"depositLink"`
	FullLink           string        `json:"fullLink" firestore:"fullLink"`
	CreatedAt          time.Time     `json:"createdAt" firestore:"createdAt"`
	PaymentCompletedAt *time.Time    `json:"paymentCompletedAt,omitempty" firestore:"paymentCompletedAt,omitempty"`
	StripeSessionID    string        `json:"stripeSessionId,omitempty" firestore:"stripeSessionId,omitempty"`
}

// StatusUpdate carries a payment confirmation to a storage backend
type StatusUpdate struct {
	Status      PaymentStatus
	CompletedAt time.Time
	SessionID   string // empty for redirect confirmations
}

// Apply moves the record forward. It returns false when the record is
// already at or beyond the requested status.
func (r *PaymentRecord) Apply(u StatusUpdate) bool {
	if !r.PaymentStatus.Advances(u.Status) {
		return false
	}
	r.PaymentStatus = u.Status
	completed := u.CompletedAt
	r.PaymentCompletedAt = &completed
	if u.SessionID != "" {
		r.StripeSessionID = u.SessionID
	}
	return true
}

// KeepProgress carries a confirmed payment from prev into r when r would
// otherwise move the status backwards. Backends call it inside the same
// critical section as the write.
func (r *PaymentRecord) KeepProgress(prev *PaymentRecord) {
	if prev == nil || prev.PaymentStatus.Rank() <= r.PaymentStatus.Rank() {
		return
	}
	r.PaymentStatus = prev.PaymentStatus
	r.PaymentCompletedAt = prev.PaymentCompletedAt
	r.StripeSessionID = prev.StripeSessionID
}
