// Package entity defines data models for the KG Mobilians payment proxy.
package entity

// RegistrationRequest carries everything a transaction registration can
// send to the payment window. Only TradeID, Amount, ProductName and OkURL
// are mandatory; every other field reaches the vendor only when set.
type RegistrationRequest struct {
	TradeID     string // merchant trade number, unique per attempt
	Amount      int    // total amount in KRW (minor unit)
	ProductName string
	OkURL       string // authentication result handler URL

	CashCode   string // payment method restriction: CN, VA, AC, HP, GM
	CallType   string // payment window call style: P(popup), S(self), I(iframe)
	HybridPay  string // Y = authenticate only, N = authenticate and approve
	NotiURL    string // server notification URL, required by the vendor for VA
	NotiEmail  string
	CloseURL   string
	FailURL    string
	UserID     string
	UserName   string
	UserEmail  string
	UserPhone  string
	BusinessNo string
	SellerTel  string
	SellerName string
	OnlyOnce   string // Y = single charge, N = recurring
	TimeStamp  string // validity limit, yyyymmddhhmmss
	Mstr       string // free-form merchant callback string
	CpLogo     string
	CssType    string
	CpUI       string
	AppScheme  string
	BankCode   string // virtual account / transfer bank restriction
}

// ApprovalRequest finalizes a transaction after the user completed
// authentication in the vendor's hosted window.
type ApprovalRequest struct {
	Tid      string
	CashCode string
	Amount   int
	PayToken string
}

// CancellationRequest reverses an approved payment. A full cancel carries
// the original amount; a partial cancel sets PartCancel to "Y" and carries
// the partial amount.
type CancellationRequest struct {
	TradeID    string
	CashCode   string
	Amount     int
	PayToken   string
	PartCancel string // N = full (default), Y = partial
	BillType   string // 00 taxed, 10 tax free, 20 mixed
	Tax        int
	TaxFree    int
	TaxAmount  int
}

// BillingPaymentRequest charges a previously issued billing key without
// opening the payment window.
type BillingPaymentRequest struct {
	BillingKey  string
	TradeID     string
	Amount      int
	ProductName string
	UserName    string
	UserEmail   string
}
