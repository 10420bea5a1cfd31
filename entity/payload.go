package entity

// Vendor wire formats. Optional fields are plain strings with omitempty so
// an unset field never appears as a key: the vendor treats the mere
// presence of a key as meaningful, so absence must stay absence.

// PayloadAmount is the nested amount wrapper the vendor expects on
// registration and billing requests.
type PayloadAmount struct {
	Total string `json:"total"`
}

// RegistrationPayload is the body of POST /MUP/api/registration.
type RegistrationPayload struct {
	Sid         string        `json:"sid"`
	TradeID     string        `json:"trade_id"`
	ProductName string        `json:"product_name"`
	Amount      PayloadAmount `json:"amount"`
	SiteURL     string        `json:"site_url"`
	OkURL       string        `json:"ok_url"`

	CashCode   string `json:"cash_code,omitempty"`
	CallType   string `json:"call_type,omitempty"`
	HybridPay  string `json:"hybrid_pay,omitempty"`
	NotiURL    string `json:"noti_url,omitempty"`
	NotiEmail  string `json:"noti_email,omitempty"`
	CloseURL   string `json:"close_url,omitempty"`
	FailURL    string `json:"fail_url,omitempty"`
	UserID     string `json:"user_id,omitempty"`
	UserName   string `json:"user_name,omitempty"`
	UserEmail  string `json:"user_email,omitempty"`
	UserPhone  string `json:"user_phone,omitempty"`
	BusinessNo string `json:"business_no,omitempty"`
	SellerTel  string `json:"seller_tel,omitempty"`
	SellerName string `json:"seller_name,omitempty"`
	OnlyOnce   string `json:"only_once,omitempty"`
	TimeStamp  string `json:"time_stamp,omitempty"`
	Mstr       string `json:"mstr,omitempty"`
	CpLogo     string `json:"cp_logo,omitempty"`
	CssType    string `json:"css_type,omitempty"`
	CpUI       string `json:"cp_ui,omitempty"`
	AppScheme  string `json:"app_scheme,omitempty"`
	BankCode   string `json:"bank_code,omitempty"`
}

// ApprovalPayload is the body of POST /MUP/api/approval.
type ApprovalPayload struct {
	Sid      string `json:"sid"`
	Tid      string `json:"tid"`
	CashCode string `json:"cash_code"`
	Amount   string `json:"amount"`
	PayToken string `json:"pay_token"`
}

// CancellationPayload is the body of POST /MUP/api/cancellation. Hmac is
// base64(HMAC-SHA256(merchant key, sid + trade id + amount)); the vendor
// silently rejects the request when it does not match.
type CancellationPayload struct {
	Sid        string `json:"sid"`
	TradeID    string `json:"trade_id"`
	CashCode   string `json:"cash_code"`
	PayToken   string `json:"pay_token"`
	CancelType string `json:"cancel_type"` // always "C"
	PartCancel string `json:"part_cancel"`
	Amount     string `json:"amount"`
	Hmac       string `json:"hmac"`

	BillType  string `json:"bill_type,omitempty"`
	Tax       string `json:"tax,omitempty"`
	TaxFree   string `json:"tax_free,omitempty"`
	TaxAmount string `json:"tax_amount,omitempty"`
}

// StatusPayload is the body of POST /MUP/api/status. AuthToken is the
// salted hash variant, not the HMAC used for cancellation.
type StatusPayload struct {
	Sid       string `json:"sid"`
	TradeID   string `json:"trade_id"`
	TimeStamp string `json:"time_stamp"`
	AuthToken string `json:"auth_token"`
}

// BillingPaymentPayload is the body of POST /MUP/api/billing/payment.
type BillingPaymentPayload struct {
	Sid         string        `json:"sid"`
	BillingKey  string        `json:"billing_key"`
	TradeID     string        `json:"trade_id"`
	ProductName string        `json:"product_name"`
	Amount      PayloadAmount `json:"amount"`
	TimeStamp   string        `json:"time_stamp"`
	AuthToken   string        `json:"auth_token"`

	UserName  string `json:"user_name,omitempty"`
	UserEmail string `json:"user_email,omitempty"`
}
