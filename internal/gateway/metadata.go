package gateway

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"booking-platform/internal/data/entity"
	"booking-platform/internal/usecase"

	"github.com/google/uuid"
)

// Provider metadata is a flat string map with values capped at 500 chars.
const metadataValueLimit = 500

const (
	keyBookingID      = "booking_id"
	keyPaymentToken   = "payment_token"
	keyModelID        = "model_id"
	keyBoatID         = "boat_id"
	keyClientName     = "client_name"
	keyClientEmail    = "client_email"
	keyClientPhone    = "client_phone"
	keyStartDate      = "start_date"
	keyEndDate        = "end_date"
	keyGuests         = "guests"
	keyDiscount       = "discount"
	keyTotalPrice     = "total_price"
	keyDeposit        = "deposit"
	keyAmountToCharge = "amount_to_charge"
	keyPaymentOption  = "payment_option"
	keySource         = "source"
	keyAddOns         = "add_ons"
	keyBilling        = "billing"
)

// EncodeIntent flattens a checkout intent into provider metadata.
func EncodeIntent(intent usecase.CheckoutIntent) (map[string]string, error) {
	md := map[string]string{
		keyModelID:        intent.ModelID.String(),
		keyClientName:     truncate(intent.ClientName),
		keyClientEmail:    intent.ClientEmail,
		keyStartDate:      intent.StartDate.UTC().Format(time.RFC3339),
		keyEndDate:        intent.EndDate.UTC().Format(time.RFC3339),
		keyGuests:         strconv.Itoa(intent.Guests),
		keyDiscount:       formatAmount(intent.Discount),
		keyTotalPrice:     formatAmount(intent.TotalPrice),
		keyDeposit:        formatAmount(intent.Deposit),
		keyAmountToCharge: formatAmount(intent.AmountToCharge),
		keyPaymentOption:  intent.PaymentOption,
		keySource:         intent.Source,
	}
	if intent.BookingID != nil {
		md[keyBookingID] = intent.BookingID.String()
	}
	if intent.PaymentToken != "" {
		md[keyPaymentToken] = intent.PaymentToken
	}
	if intent.BoatID != nil {
		md[keyBoatID] = intent.BoatID.String()
	}
	if intent.ClientPhone != nil {
		md[keyClientPhone] = *intent.ClientPhone
	}

	if len(intent.AddOns) > 0 {
		raw, err := json.Marshal(intent.AddOns)
		if err != nil {
			return nil, fmt.Errorf("encode add-ons: %w", err)
		}
		putChunked(md, keyAddOns, string(raw))
	}

	if intent.Billing != (entity.BillingDetails{}) {
		raw, err := json.Marshal(intent.Billing)
		if err != nil {
			return nil, fmt.Errorf("encode billing: %w", err)
		}
		putChunked(md, keyBilling, string(raw))
	}

	return md, nil
}

// DecodeIntent rebuilds the intent from provider metadata. A payment
// against an existing booking only needs booking_id; everything else is
// required to materialize a new booking.
func DecodeIntent(md map[string]string) (*usecase.CheckoutIntent, error) {
	intent := &usecase.CheckoutIntent{
		PaymentToken:  md[keyPaymentToken],
		ClientName:    md[keyClientName],
		ClientEmail:   md[keyClientEmail],
		PaymentOption: md[keyPaymentOption],
		Source:        md[keySource],
	}

	var err error
	if intent.BookingID, err = optionalUUID(md, keyBookingID); err != nil {
		return nil, err
	}
	if intent.BoatID, err = optionalUUID(md, keyBoatID); err != nil {
		return nil, err
	}
	if phone, ok := md[keyClientPhone]; ok && phone != "" {
		intent.ClientPhone = &phone
	}

	if v, ok := md[keyModelID]; ok {
		if intent.ModelID, err = uuid.Parse(v); err != nil {
			return nil, fmt.Errorf("metadata %s: %w", keyModelID, err)
		}
	} else if intent.BookingID == nil {
		return nil, fmt.Errorf("metadata has neither %s nor %s", keyBookingID, keyModelID)
	}

	if v := md[keyStartDate]; v != "" {
		if intent.StartDate, err = time.Parse(time.RFC3339, v); err != nil {
			return nil, fmt.Errorf("metadata %s: %w", keyStartDate, err)
		}
	}
	if v := md[keyEndDate]; v != "" {
		if intent.EndDate, err = time.Parse(time.RFC3339, v); err != nil {
			return nil, fmt.Errorf("metadata %s: %w", keyEndDate, err)
		}
	}
	if v := md[keyGuests]; v != "" {
		if intent.Guests, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("metadata %s: %w", keyGuests, err)
		}
	}

	amounts := []struct {
		key string
		dst *float64
	}{
		{keyDiscount, &intent.Discount},
		{keyTotalPrice, &intent.TotalPrice},
		{keyDeposit, &intent.Deposit},
		{keyAmountToCharge, &intent.AmountToCharge},
	}
	for _, a := range amounts {
		v := md[a.key]
		if v == "" {
			continue
		}
		if *a.dst, err = strconv.ParseFloat(v, 64); err != nil {
			return nil, fmt.Errorf("metadata %s: %w", a.key, err)
		}
	}

	if raw := getChunked(md, keyAddOns); raw != "" {
		if err := json.Unmarshal([]byte(raw), &intent.AddOns); err != nil {
			return nil, fmt.Errorf("metadata %s: %w", keyAddOns, err)
		}
	}
	if raw := getChunked(md, keyBilling); raw != "" {
		if err := json.Unmarshal([]byte(raw), &intent.Billing); err != nil {
			return nil, fmt.Errorf("metadata %s: %w", keyBilling, err)
		}
	}

	return intent, nil
}

func optionalUUID(md map[string]string, key string) (*uuid.UUID, error) {
	v, ok := md[key]
	if !ok || v == "" {
		return nil, nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return nil, fmt.Errorf("metadata %s: %w", key, err)
	}
	return &id, nil
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(entity.RoundMoney(v), 'f', 2, 64)
}

func truncate(s string) string {
	if len(s) <= metadataValueLimit {
		return s
	}
	return s[:cut(s, metadataValueLimit)]
}

// cut returns a byte offset <= n that does not split a rune.
func cut(s string, n int) int {
	if n >= len(s) {
		return len(s)
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return n
}

// putChunked stores long values as key, key_1, key_2 ...
func putChunked(md map[string]string, key, value string) {
	for i := 0; len(value) > 0; i++ {
		n := cut(value, metadataValueLimit)
		k := key
		if i > 0 {
			k = key + "_" + strconv.Itoa(i)
		}
		md[k] = value[:n]
		value = value[n:]
	}
}

func getChunked(md map[string]string, key string) string {
	var b strings.Builder
	b.WriteString(md[key])
	for i := 1; ; i++ {
		part, ok := md[key+"_"+strconv.Itoa(i)]
		if !ok {
			break
		}
		b.WriteString(part)
	}
	return b.String()
}
