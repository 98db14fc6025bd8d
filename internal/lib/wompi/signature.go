package wompi

import (
	"bytes"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ChecksumHeader carries the event checksum when the body has none.
const ChecksumHeader = "X-Event-Checksum"

var (
	ErrInvalidChecksum = errors.New("wompi: invalid event checksum")
	ErrMalformedEvent  = errors.New("wompi: malformed event")
)

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// IntegritySignature signs checkout parameters:
// sha256(reference + amount_in_cents + currency + integrity_secret).
func IntegritySignature(reference string, amountInCents int64, currency, secret string) string {
	return sha256Hex(reference + strconv.FormatInt(amountInCents, 10) + currency + secret)
}

// CheckoutURL builds the hosted web checkout link.
func CheckoutURL(base string, p CheckoutParams) string {
	q := []string{
		"public-key=" + url.QueryEscape(p.PublicKey),
		"currency=" + url.QueryEscape(p.Currency),
		"amount-in-cents=" + strconv.FormatInt(p.AmountInCents, 10),
		"reference=" + url.QueryEscape(p.Reference),
		"signature:integrity=" + p.IntegritySignature,
	}
	if p.RedirectURL != "" {
		q = append(q, "redirect-url="+url.QueryEscape(p.RedirectURL))
	}
	return base + "?" + strings.Join(q, "&")
}

// ParseEvent decodes a webhook body and verifies its checksum against
// eventsSecret. headerChecksum, when not empty, is used when the body carries
// no signature.checksum.
func ParseEvent(body []byte, headerChecksum, eventsSecret string) (*Event, error) {
	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	checksum := event.Signature.Checksum
	if checksum == "" {
		checksum = headerChecksum
	}
	if checksum == "" || len(event.Signature.Properties) == 0 {
		return nil, ErrInvalidChecksum
	}

	expected, err := EventChecksum(&event, eventsSecret)
	if err != nil {
		return nil, err
	}

	if subtle.ConstantTimeCompare([]byte(expected), []byte(strings.ToLower(checksum))) != 1 {
		return nil, ErrInvalidChecksum
	}
	return &event, nil
}

// EventChecksum concatenates the data values named by signature.properties,
// the timestamp and the secret, and hashes the result.
func EventChecksum(event *Event, eventsSecret string) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(event.Data))
	dec.UseNumber()

	var data map[string]any
	if err := dec.Decode(&data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	var b strings.Builder
	for _, path := range event.Signature.Properties {
		b.WriteString(lookup(data, path))
	}
	b.WriteString(strconv.FormatInt(event.Timestamp, 10))
	b.WriteString(eventsSecret)

	return sha256Hex(b.String()), nil
}

// lookup resolves a dot path like "transaction.amount_in_cents".
func lookup(data map[string]any, path string) string {
	var current any = data
	for _, key := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return ""
		}
		current = m[key]
	}

	switch v := current.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}
