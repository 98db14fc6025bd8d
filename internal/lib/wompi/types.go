package wompi

import (
	"encoding/json"
	"time"
)

// TransactionStatus is the state Wompi reports for a transaction.
type TransactionStatus string

const (
	StatusPending  TransactionStatus = "PENDING"
	StatusApproved TransactionStatus = "APPROVED"
	StatusDeclined TransactionStatus = "DECLINED"
	StatusVoided   TransactionStatus = "VOIDED"
	StatusError    TransactionStatus = "ERROR"
)

// EventTransactionUpdated is the only event type the store reacts to.
const EventTransactionUpdated = "transaction.updated"

type Transaction struct {
	ID                string            `json:"id"`
	Reference         string            `json:"reference"`
	AmountInCents     int64             `json:"amount_in_cents"`
	Currency          string            `json:"currency"`
	Status            TransactionStatus `json:"status"`
	StatusMessage     string            `json:"status_message,omitempty"`
	PaymentMethodType string            `json:"payment_method_type"`
	CreatedAt         time.Time         `json:"created_at"`
	FinalizedAt       *time.Time        `json:"finalized_at,omitempty"`
}

// AcceptanceToken is the presigned terms acceptance the widget must send.
type AcceptanceToken struct {
	Token     string `json:"acceptance_token"`
	Permalink string `json:"permalink"`
	Type      string `json:"type"`
}

// Event is a webhook notification.
type Event struct {
	Event       string          `json:"event"`
	Data        json.RawMessage `json:"data"`
	Environment string          `json:"environment"`
	Signature   EventSignature  `json:"signature"`
	Timestamp   int64           `json:"timestamp"`
	SentAt      time.Time       `json:"sent_at"`
}

type EventSignature struct {
	Properties []string `json:"properties"`
	Checksum   string   `json:"checksum"`
}

// Transaction decodes data.transaction of a transaction.updated event.
func (e *Event) Transaction() (*Transaction, error) {
	var data struct {
		Transaction Transaction `json:"transaction"`
	}
	if err := json.Unmarshal(e.Data, &data); err != nil {
		return nil, err
	}
	return &data.Transaction, nil
}

// CheckoutParams are the values the widget and hosted checkout need.
type CheckoutParams struct {
	PublicKey          string `json:"public_key"`
	Currency           string `json:"currency"`
	AmountInCents      int64  `json:"amount_in_cents"`
	Reference          string `json:"reference"`
	IntegritySignature string `json:"signature_integrity"`
	RedirectURL        string `json:"redirect_url"`
	CheckoutURL        string `json:"checkout_url"`
}

type transactionResponse struct {
	Data Transaction `json:"data"`
}

type merchantResponse struct {
	Data struct {
		PresignedAcceptance AcceptanceToken `json:"presigned_acceptance"`
	} `json:"data"`
}
