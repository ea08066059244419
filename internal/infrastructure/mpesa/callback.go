package mpesa

import (
	"encoding/json"
	"fmt"

	"github.com/sokohub/sokohub-order-service/internal/domain"
)

// CallbackEnvelope is the gateway's asynchronous settlement notification.
type CallbackEnvelope struct {
	Body struct {
		StkCallback struct {
			MerchantRequestID string `json:"MerchantRequestID"`
			CheckoutRequestID string `json:"CheckoutRequestID"`
			ResultCode        int    `json:"ResultCode"`
			ResultDesc        string `json:"ResultDesc"`
			CallbackMetadata  struct {
				Item []CallbackItem `json:"Item"`
			} `json:"CallbackMetadata"`
		} `json:"stkCallback"`
	} `json:"Body"`
}

type CallbackItem struct {
	Name  string          `json:"Name"`
	Value json.RawMessage `json:"Value"`
}

// CallbackAck is the acknowledgement object the webhook always answers
// with, regardless of internal processing outcome.
type CallbackAck struct {
	ResultCode int    `json:"ResultCode"`
	ResultDesc string `json:"ResultDesc"`
}

// ParseCallback converts the raw webhook body into a typed settlement
// outcome plus the prompt handle it refers to. A body that does not carry
// the expected envelope yields ErrMalformedCallback; nothing loosely typed
// leaves this boundary.
func ParseCallback(body []byte) (string, *domain.SettlementOutcome, error) {
	var envelope CallbackEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", nil, fmt.Errorf("%w: %v", domain.ErrMalformedCallback, err)
	}

	callback := envelope.Body.StkCallback
	if callback.CheckoutRequestID == "" {
		return "", nil, fmt.Errorf("%w: missing CheckoutRequestID", domain.ErrMalformedCallback)
	}

	outcome := &domain.SettlementOutcome{
		ExternalRef: callback.CheckoutRequestID,
		Succeeded:   callback.ResultCode == 0,
		ReasonText:  callback.ResultDesc,
	}

	for _, item := range callback.CallbackMetadata.Item {
		if item.Name == "MpesaReceiptNumber" {
			var receipt string
			if err := json.Unmarshal(item.Value, &receipt); err == nil {
				outcome.SettlementRef = receipt
			}
		}
	}

	return callback.CheckoutRequestID, outcome, nil
}
