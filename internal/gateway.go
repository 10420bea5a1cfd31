package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"kgpay/config"
	"kgpay/entity"
	"kgpay/services"
)

// Vendor API paths, relative to the configured API host.
const (
	registrationPath   = "/MUP/api/registration"
	paymentWindowPath  = "/MUP/api/payment.mcash"
	approvalPath       = "/MUP/api/approval"
	cancellationPath   = "/MUP/api/cancellation"
	statusPath         = "/MUP/api/status"
	billingPaymentPath = "/MUP/api/billing/payment"
)

// Gateway is the KG Mobilians REST client. It translates typed requests
// into the vendor wire format, signs where required, issues the call and
// normalizes the reply. Failures of any kind are folded into the returned
// result; nothing is thrown across the client boundary.
type Gateway struct {
	conf       *config.Config
	signer     *Signer
	database   services.Database
	logger     services.LogHandler
	httpClient *http.Client
	now        func() time.Time
}

// NewGateway creates a gateway client with a tuned HTTP client. Timeouts
// and connection pooling cover every outbound vendor call.
func NewGateway(conf *config.Config) *Gateway {
	return &Gateway{
		conf:   conf,
		signer: NewSigner(conf.Gateway.Sid, conf.Gateway.MerchantKey),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		now: time.Now,
	}
}

func (g *Gateway) SetDatabase(database services.Database) {
	g.database = database
}

func (g *Gateway) SetLogger(logger services.LogHandler) {
	g.logger = logger
}

// Register creates a transaction with the vendor and returns the hosted
// payment window URL for the issued tid. Optional request fields are sent
// only when set.
func (g *Gateway) Register(ctx context.Context, request *entity.RegistrationRequest) entity.RegistrationResult {
	if request.Amount <= 0 {
		return entity.RegistrationResult{Error: "amount must be positive"}
	}

	payload := entity.RegistrationPayload{
		Sid:         g.conf.Gateway.Sid,
		TradeID:     request.TradeID,
		ProductName: request.ProductName,
		Amount:      entity.PayloadAmount{Total: strconv.Itoa(request.Amount)},
		SiteURL:     g.conf.Gateway.SiteURL,
		OkURL:       request.OkURL,

		CashCode:   request.CashCode,
		CallType:   request.CallType,
		HybridPay:  request.HybridPay,
		NotiURL:    request.NotiURL,
		NotiEmail:  request.NotiEmail,
		CloseURL:   request.CloseURL,
		FailURL:    request.FailURL,
		UserID:     request.UserID,
		UserName:   request.UserName,
		UserEmail:  request.UserEmail,
		UserPhone:  request.UserPhone,
		BusinessNo: request.BusinessNo,
		SellerTel:  request.SellerTel,
		SellerName: request.SellerName,
		OnlyOnce:   request.OnlyOnce,
		TimeStamp:  request.TimeStamp,
		Mstr:       request.Mstr,
		CpLogo:     request.CpLogo,
		CssType:    request.CssType,
		CpUI:       request.CpUI,
		AppScheme:  request.AppScheme,
		BankCode:   request.BankCode,
	}

	body, err := g.post(ctx, registrationPath, payload)
	if err != nil {
		g.logError(fmt.Sprintf("registration %s", request.TradeID), err)
		observeGatewayCall("registration", false)
		return entity.RegistrationResult{Error: err.Error()}
	}

	response, err := entity.DecodeVendorResponse(body)
	if err != nil {
		g.logError(fmt.Sprintf("registration %s", request.TradeID), err)
		observeGatewayCall("registration", false)
		return entity.RegistrationResult{Error: err.Error()}
	}
	if response.ResultCode != entity.ResultCodeOK {
		g.logWarn(fmt.Sprintf("registration %s rejected: code %s", request.TradeID, response.ResultCode))
		observeGatewayCall("registration", false)
		return entity.RegistrationResult{Error: response.ErrorString("registration failed")}
	}

	observeGatewayCall("registration", true)
	g.saveTrade(ctx, request, response.Tid)

	return entity.RegistrationResult{
		Success:    true,
		Tid:        response.Tid,
		PaymentURL: fmt.Sprintf("%s%s?tid=%s", g.conf.Gateway.ApiURL, paymentWindowPath, response.Tid),
	}
}

// Approve finalizes a transaction after user-side authentication. It is
// called by the redirect handler, or separately when registration asked
// for hybrid (authenticate only) mode.
func (g *Gateway) Approve(ctx context.Context, request *entity.ApprovalRequest) entity.Result {
	payload := entity.ApprovalPayload{
		Sid:      g.conf.Gateway.Sid,
		Tid:      request.Tid,
		CashCode: request.CashCode,
		Amount:   strconv.Itoa(request.Amount),
		PayToken: request.PayToken,
	}
	return g.call(ctx, "approval", approvalPath, payload, "approval failed", &entity.ResultRecord{
		Kind: "approval",
		Tid:  request.Tid,
	})
}

// Cancel reverses an approved payment, fully or partially. The payload is
// authenticated with the HMAC scheme; optional tax breakdown fields are
// sent only when set.
func (g *Gateway) Cancel(ctx context.Context, request *entity.CancellationRequest) entity.Result {
	partCancel := request.PartCancel
	if partCancel == "" {
		partCancel = "N"
	}
	payload := entity.CancellationPayload{
		Sid:        g.conf.Gateway.Sid,
		TradeID:    request.TradeID,
		CashCode:   request.CashCode,
		PayToken:   request.PayToken,
		CancelType: "C",
		PartCancel: partCancel,
		Amount:     strconv.Itoa(request.Amount),
		Hmac:       g.signer.CancelHmac(request.TradeID, request.Amount),

		BillType:  request.BillType,
		Tax:       optionalAmount(request.Tax),
		TaxFree:   optionalAmount(request.TaxFree),
		TaxAmount: optionalAmount(request.TaxAmount),
	}
	return g.call(ctx, "cancellation", cancellationPath, payload, "cancellation failed", &entity.ResultRecord{
		Kind:    "cancellation",
		TradeID: request.TradeID,
	})
}

// Status queries the vendor for the state of a registered trade. The
// request is authenticated with the salted hash token, not the HMAC.
func (g *Gateway) Status(ctx context.Context, tradeID string) entity.Result {
	timeStamp := g.now().Format("20060102150405")
	payload := entity.StatusPayload{
		Sid:       g.conf.Gateway.Sid,
		TradeID:   tradeID,
		TimeStamp: timeStamp,
		AuthToken: g.signer.AuthToken(tradeID, timeStamp),
	}
	return g.call(ctx, "status", statusPath, payload, "status lookup failed", nil)
}

// BillingPay charges a billing key without opening the payment window.
func (g *Gateway) BillingPay(ctx context.Context, request *entity.BillingPaymentRequest) entity.Result {
	timeStamp := g.now().Format("20060102150405")
	payload := entity.BillingPaymentPayload{
		Sid:         g.conf.Gateway.Sid,
		BillingKey:  request.BillingKey,
		TradeID:     request.TradeID,
		ProductName: request.ProductName,
		Amount:      entity.PayloadAmount{Total: strconv.Itoa(request.Amount)},
		TimeStamp:   timeStamp,
		AuthToken:   g.signer.AuthToken(request.TradeID, timeStamp),

		UserName:  request.UserName,
		UserEmail: request.UserEmail,
	}
	return g.call(ctx, "billing", billingPaymentPath, payload, "billing payment failed", &entity.ResultRecord{
		Kind:    "billing",
		TradeID: request.TradeID,
	})
}

// call posts a payload and normalizes the reply into a Result. The record,
// when given, is persisted with the decoded vendor body on success.
func (g *Gateway) call(ctx context.Context, operation, path string, payload any, fallback string, record *entity.ResultRecord) entity.Result {
	body, err := g.post(ctx, path, payload)
	if err != nil {
		g.logError(operation, err)
		observeGatewayCall(operation, false)
		return entity.Fail(err.Error())
	}

	response, err := entity.DecodeVendorResponse(body)
	if err != nil {
		g.logError(operation, err)
		observeGatewayCall(operation, false)
		return entity.Fail(err.Error())
	}
	if response.Rejected() {
		g.logWarn(fmt.Sprintf("%s rejected: code %s", operation, response.ResultCode))
		observeGatewayCall(operation, false)
		return entity.Fail(response.ErrorString(fallback))
	}

	observeGatewayCall(operation, true)
	if record != nil {
		g.saveResult(ctx, record, body)
	}
	return entity.Ok(body)
}

func (g *Gateway) post(ctx context.Context, path string, payload any) ([]byte, error) {
	requestData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %v", err)
	}
	g.logDebug(fmt.Sprintf("request %s: %s", path, requestData))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.conf.Gateway.ApiURL+path, bytes.NewBuffer(requestData))
	if err != nil {
		return nil, fmt.Errorf("create http request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	response, err := g.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("request timeout or cancelled: %v", ctx.Err())
		}
		return nil, fmt.Errorf("post request: %v", err)
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			g.logError("close response body", err)
		}
	}(response.Body)

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %v", err)
	}
	g.logDebug(fmt.Sprintf("response %s: %s", path, body))
	return body, nil
}

func (g *Gateway) saveTrade(ctx context.Context, request *entity.RegistrationRequest, tid string) {
	if g.database == nil {
		return
	}
	trade := &entity.TradeRecord{
		TradeID:     request.TradeID,
		Tid:         tid,
		CashCode:    request.CashCode,
		Amount:      request.Amount,
		ProductName: request.ProductName,
		UserName:    request.UserName,
		TimeOpened:  g.now(),
	}
	if err := g.database.SaveTrade(ctx, trade); err != nil {
		g.logError("save trade record", err)
	}
}

func (g *Gateway) saveResult(ctx context.Context, record *entity.ResultRecord, body []byte) {
	if g.database == nil {
		return
	}
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err == nil {
		record.Body = fields
	}
	record.Time = g.now()
	if err := g.database.SaveResult(ctx, record); err != nil {
		g.logError("save result record", err)
	}
}

func (g *Gateway) logDebug(message string) {
	if g.logger != nil {
		g.logger.Debug(message)
	}
}

func (g *Gateway) logWarn(message string) {
	if g.logger != nil {
		g.logger.Warn(message)
	}
}

func (g *Gateway) logError(message string, err error) {
	if g.logger != nil {
		g.logger.Error(message, err)
	}
}

// optionalAmount formats a tax breakdown value, keeping zero as absent.
func optionalAmount(value int) string {
	if value == 0 {
		return ""
	}
	return strconv.Itoa(value)
}
