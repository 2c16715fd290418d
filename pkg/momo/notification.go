package momo

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type NotificationStatus string

const (
	NotificationSuccess NotificationStatus = "SUCCESS"
	NotificationFailure NotificationStatus = "FAILURE"
	NotificationUnknown NotificationStatus = "UNKNOWN"
)

// Notification is the normalized delivery-status record. Reconciliation only
// ever sees this shape; all tolerance for the provider's shifting field names
// lives here.
type Notification struct {
	Reference     string
	Status        NotificationStatus
	RawStatus     string
	TransactionID string
}

var ErrMissingFields = errors.New("NOTIFICATION_MISSING_FIELDS")

// Field-name variants observed across provider payload revisions, in
// priority order. Keys are matched after lowercasing and stripping
// separators, so "externalReference" and "external_reference" both hit.
var (
	referenceAliases = []string{"externalreference", "reference", "externalid", "payoutid", "depositid"}
	statusAliases    = []string{"status", "transactionstatus", "financialtransactionstatus", "state"}
	providerAliases  = []string{"transactionid", "providertransactionid", "financialtransactionid", "operatorreference"}
)

var successTokens = map[string]bool{
	"success": true, "successful": true, "succeeded": true, "completed": true, "settlement": true,
}

var failureTokens = map[string]bool{
	"failed": true, "failure": true, "rejected": true, "declined": true,
	"cancelled": true, "canceled": true, "expired": true, "error": true,
}

// DecodeNotification parses a provider webhook payload. It returns
// ErrMissingFields when either the correlation reference or the status field
// is absent under every accepted alias; an unrecognized status value is not
// an error and comes back as NotificationUnknown.
func DecodeNotification(body []byte) (Notification, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return Notification{}, fmt.Errorf("%w: %v", ErrMissingFields, err)
	}

	fields := make(map[string]string, len(raw))
	for key, value := range raw {
		if s, ok := stringValue(value); ok {
			fields[foldKey(key)] = s
		}
	}

	reference := firstOf(fields, referenceAliases)
	rawStatus := firstOf(fields, statusAliases)
	if reference == "" || rawStatus == "" {
		return Notification{}, ErrMissingFields
	}

	return Notification{
		Reference:     reference,
		Status:        NormalizeStatus(rawStatus),
		RawStatus:     rawStatus,
		TransactionID: firstOf(fields, providerAliases),
	}, nil
}

// NormalizeStatus folds the provider's status vocabulary into the three
// tokens reconciliation understands. Anything unrecognized is UNKNOWN, never
// guessed at.
func NormalizeStatus(raw string) NotificationStatus {
	token := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case successTokens[token]:
		return NotificationSuccess
	case failureTokens[token]:
		return NotificationFailure
	default:
		return NotificationUnknown
	}
}

func firstOf(fields map[string]string, aliases []string) string {
	for _, alias := range aliases {
		if value := fields[alias]; value != "" {
			return value
		}
	}
	return ""
}

func foldKey(key string) string {
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, "_", "")
	return strings.ReplaceAll(key, "-", "")
}

func stringValue(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case json.Number:
		return v.String(), true
	default:
		return "", false
	}
}
