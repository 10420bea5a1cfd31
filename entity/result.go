package entity

import (
	"encoding/json"
	"fmt"
)

// ResultCodeOK is the all-zero code the vendor returns on success.
const ResultCodeOK = "0000"

// Result is the normalized outcome of a gateway call. Exactly one of Data
// and Error is set. Gateway operations never return a Go error to callers;
// they fold every failure into a Result.
type Result struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Ok wraps a raw vendor payload into a successful result.
func Ok(data json.RawMessage) Result {
	return Result{Success: true, Data: data}
}

// Fail builds a failed result with the given message.
func Fail(message string) Result {
	return Result{Success: false, Error: message}
}

// RegistrationResult is the outcome of a transaction registration. On
// success PaymentURL points at the vendor's hosted payment window for the
// issued tid.
type RegistrationResult struct {
	Success    bool   `json:"success"`
	Tid        string `json:"tid,omitempty"`
	PaymentURL string `json:"paymentUrl,omitempty"`
	Error      string `json:"error,omitempty"`
}

// VendorAmount accepts both amount shapes seen across vendor revisions:
// the {"total":"..."} wrapper and the flat string.
type VendorAmount struct {
	Total string
}

func (a *VendorAmount) UnmarshalJSON(data []byte) error {
	var flat string
	if err := json.Unmarshal(data, &flat); err == nil {
		a.Total = flat
		return nil
	}
	var wrapped struct {
		Total string `json:"total"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return fmt.Errorf("parse amount: %v", err)
	}
	a.Total = wrapped.Total
	return nil
}

// VendorResponse is the envelope common to every vendor reply.
type VendorResponse struct {
	ResultCode string       `json:"result_code"`
	ResultMsg  string       `json:"result_msg"`
	Tid        string       `json:"tid"`
	Amount     VendorAmount `json:"amount"`
}

// Rejected reports whether the reply carries a non-success result code.
// Some vendor endpoints omit the code entirely on success; only an
// explicit non-zero code counts as a rejection.
func (r *VendorResponse) Rejected() bool {
	return r.ResultCode != "" && r.ResultCode != ResultCodeOK
}

// ErrorString folds the vendor message and code into the single string
// surfaced to callers.
func (r *VendorResponse) ErrorString(fallback string) string {
	message := r.ResultMsg
	if message == "" {
		message = fallback
	}
	return fmt.Sprintf("%s (code: %s)", message, r.ResultCode)
}

// DecodeVendorResponse parses a vendor reply body into the common envelope.
func DecodeVendorResponse(body []byte) (*VendorResponse, error) {
	var response VendorResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("parse response: %v", err)
	}
	return &response, nil
}
