package entity

import "time"

// LogMessage is a structured log record mirrored to the payment_log
// collection when Mongo is enabled.
type LogMessage struct {
	Time   time.Time `json:"time" bson:"time"`
	Level  string    `json:"level" bson:"level"`
	Module string    `json:"module" bson:"module"`
	Text   string    `json:"text" bson:"text"`
	Error  string    `json:"error,omitempty" bson:"error,omitempty"`
}

func (m *LogMessage) DataType() string {
	return "log"
}

// TradeRecord is the audit document written when a transaction is
// registered with the vendor. Records are append-only: there is no local
// payment lifecycle, the vendor owns all state.
type TradeRecord struct {
	TradeID     string    `json:"trade_id" bson:"trade_id"`
	Tid         string    `json:"tid" bson:"tid"`
	CashCode    string    `json:"cash_code,omitempty" bson:"cash_code,omitempty"`
	Amount      int       `json:"amount" bson:"amount"`
	ProductName string    `json:"product_name" bson:"product_name"`
	UserName    string    `json:"user_name,omitempty" bson:"user_name,omitempty"`
	TimeOpened  time.Time `json:"time_opened" bson:"time_opened"`
}

// ResultRecord captures a vendor reply for approvals, cancellations,
// billing charges and webhook notifications.
type ResultRecord struct {
	Kind    string         `json:"kind" bson:"kind"`
	TradeID string         `json:"trade_id,omitempty" bson:"trade_id,omitempty"`
	Tid     string         `json:"tid,omitempty" bson:"tid,omitempty"`
	Body    map[string]any `json:"body,omitempty" bson:"body,omitempty"`
	Time    time.Time      `json:"time" bson:"time"`
}
