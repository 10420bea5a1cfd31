package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"kgpay/config"
	"kgpay/entity"
	"kgpay/services"
)

const (
	paymentRequest  = "/api/payment/request"
	paymentApproval = "/api/payment/approval"
	paymentCancel   = "/api/payment/cancel"
	paymentWebhook  = "/api/payment/webhook"

	cardPay    = "/api/card/pay"
	cardStatus = "/api/card/status/:orderId"
	cardCancel = "/api/card/cancel"

	billingKey       = "/api/billing/key"
	billingPay       = "/api/billing/pay"
	billingKeyDelete = "/api/billing/key/:key"

	linkCreate = "/api/link/create"
	linkStatus = "/api/link/status/:orderId"

	vaccountIssue  = "/api/vaccount/issue"
	vaccountStatus = "/api/vaccount/status/:orderId"
	vaccountBanks  = "/api/vaccount/banks"

	accountTransfer = "/api/account/transfer"
	accountStatus   = "/api/account/status/:orderId"
	accountBanks    = "/api/account/banks"

	resultLanding = "/payment/result"
	cancelLanding = "/payment/cancel"

	healthPath  = "/health"
	metricsPath = "/metrics"
)

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	gateway    services.Gateway
	database   services.Database
	logger     services.LogHandler
}

func NewServer(conf *config.Config) *Server {

	server := Server{
		conf: conf,
	}

	router := httprouter.New()
	router.PanicHandler = server.handlePanic
	server.Register(router)
	server.httpServer = &http.Server{
		Handler: cors.AllowAll().Handler(router),
	}

	return &server
}

// handlePanic answers a handler panic with the regular error envelope
// instead of letting net/http drop the connection.
func (s *Server) handlePanic(w http.ResponseWriter, r *http.Request, recovered any) {
	s.logError(fmt.Sprintf("panic serving %s", r.URL.Path), fmt.Errorf("%v", recovered))
	s.respondError(w, http.StatusInternalServerError, "internal server error")
}

func (s *Server) Register(router *httprouter.Router) {
	router.POST(paymentRequest, s.paymentRequest)
	router.POST(paymentApproval, s.paymentApproval)
	router.POST(paymentCancel, s.paymentCancel)
	router.POST(paymentWebhook, s.paymentWebhook)

	router.POST(cardPay, s.cardPay)
	router.GET(cardStatus, s.paymentStatus)
	router.POST(cardCancel, s.cardCancel)

	router.POST(billingKey, s.billingKey)
	router.POST(billingPay, s.billingPay)
	router.DELETE(billingKeyDelete, s.billingKeyDelete)

	router.POST(linkCreate, s.linkCreate)
	router.GET(linkStatus, s.paymentStatus)

	router.POST(vaccountIssue, s.vaccountIssue)
	router.GET(vaccountStatus, s.paymentStatus)
	router.GET(vaccountBanks, s.bankList)

	router.POST(accountTransfer, s.accountTransfer)
	router.GET(accountStatus, s.paymentStatus)
	router.GET(accountBanks, s.bankList)

	// vendor redirect method varies by payment method
	router.GET(resultLanding, s.paymentResult)
	router.POST(resultLanding, s.paymentResult)
	router.GET(cancelLanding, s.paymentCancelLanding)

	router.GET(healthPath, s.health)
	router.Handler(http.MethodGet, metricsPath, promhttp.Handler())
}

func (s *Server) SetGateway(gateway services.Gateway) {
	s.gateway = gateway
}

func (s *Server) SetDatabase(database services.Database) {
	s.database = database
}

func (s *Server) SetLogger(logger services.LogHandler) {
	s.logger = logger
}

func (s *Server) Start() error {
	if s.conf == nil {
		return fmt.Errorf("configuration not loaded")
	}

	serverAddress := fmt.Sprintf("%s:%s", s.conf.Listen.BindIP, s.conf.Listen.Port)
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}

	if s.conf.Listen.TLS {
		s.logger.Info(fmt.Sprintf("starting https TLS on %s", serverAddress))
		err = s.httpServer.ServeTLS(listener, s.conf.Listen.CertFile, s.conf.Listen.KeyFile)
	} else {
		s.logger.Info(fmt.Sprintf("starting http on %s", serverAddress))
		err = s.httpServer.Serve(listener)
	}

	return err
}

// ---------------------------------------------------------------- handlers

func (s *Server) paymentRequest(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := WithRequestID(r.Context())
	reqID := GetRequestID(ctx)

	fields, ok := s.readBody(w, r, reqID)
	if !ok {
		return
	}
	if name := missingField(fields, "tradeId", "amount", "productName", "userName", "okUrl"); name != "" {
		s.respondError(w, http.StatusBadRequest, name+" is required")
		return
	}

	request := &entity.RegistrationRequest{
		TradeID:     stringOf(fields, "tradeId"),
		Amount:      amountOf(fields, "amount"),
		ProductName: stringOf(fields, "productName"),
		OkURL:       stringOf(fields, "okUrl"),
		UserName:    stringOf(fields, "userName"),
		UserEmail:   stringOf(fields, "userEmail"),
		CloseURL:    stringOf(fields, "closeUrl"),
		FailURL:     stringOf(fields, "failUrl"),
		NotiURL:     stringOf(fields, "notiUrl"),
		CashCode:    stringOf(fields, "cashCode"),
		CallType:    defaultString(stringOf(fields, "callType"), "P"),
		HybridPay:   defaultString(stringOf(fields, "hybridPay"), "N"),
		Mstr:        stringOf(fields, "mstr"),
	}

	s.logInfo(fmt.Sprintf("[%s] register trade %s", reqID, request.TradeID))
	result := s.gateway.Register(ctx, request)
	if !result.Success {
		s.respond(w, http.StatusBadRequest, result)
		return
	}

	s.respond(w, http.StatusOK, map[string]any{
		"success":    true,
		"tid":        result.Tid,
		"paymentUrl": result.PaymentURL,
		"message":    "transaction registered, open paymentUrl to continue",
	})
}

func (s *Server) paymentApproval(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := WithRequestID(r.Context())
	reqID := GetRequestID(ctx)

	fields, ok := s.readBody(w, r, reqID)
	if !ok {
		return
	}
	if name := missingField(fields, "tid", "cashCode", "amount", "payToken"); name != "" {
		s.respondError(w, http.StatusBadRequest, name+" is required")
		return
	}

	result := s.gateway.Approve(ctx, &entity.ApprovalRequest{
		Tid:      stringOf(fields, "tid"),
		CashCode: stringOf(fields, "cashCode"),
		Amount:   amountOf(fields, "amount"),
		PayToken: stringOf(fields, "payToken"),
	})
	s.respond(w, http.StatusOK, result)
}

func (s *Server) paymentCancel(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := WithRequestID(r.Context())
	reqID := GetRequestID(ctx)

	fields, ok := s.readBody(w, r, reqID)
	if !ok {
		return
	}
	if name := missingField(fields, "tradeId", "cashCode", "amount", "payToken"); name != "" {
		s.respondError(w, http.StatusBadRequest, name+" is required")
		return
	}

	request := &entity.CancellationRequest{
		TradeID:    stringOf(fields, "tradeId"),
		CashCode:   stringOf(fields, "cashCode"),
		Amount:     amountOf(fields, "amount"),
		PayToken:   stringOf(fields, "payToken"),
		PartCancel: stringOf(fields, "partCancel"),
		BillType:   stringOf(fields, "billType"),
		Tax:        amountOf(fields, "tax"),
		TaxFree:    amountOf(fields, "taxFree"),
		TaxAmount:  amountOf(fields, "taxAmount"),
	}

	s.logInfo(fmt.Sprintf("[%s] cancel trade %s, amount %d", reqID, request.TradeID, request.Amount))
	s.respond(w, http.StatusOK, s.gateway.Cancel(ctx, request))
}

// paymentWebhook records the vendor's server notification. Verification
// and local settlement are the merchant integration's concern.
func (s *Server) paymentWebhook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := WithRequestID(r.Context())
	reqID := GetRequestID(ctx)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.logError(fmt.Sprintf("[%s] webhook: read body", reqID), err)
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logInfo(fmt.Sprintf("[%s] webhook received: %s", reqID, body))
	s.saveWebhook(ctx, body)

	s.respond(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "webhook received",
	})
}

// saveWebhook persists the notification body as a result record; a body
// that is not a JSON object is still recorded, just without fields.
func (s *Server) saveWebhook(ctx context.Context, body []byte) {
	if s.database == nil {
		return
	}
	record := &entity.ResultRecord{
		Kind: "webhook",
		Time: time.Now(),
	}
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err == nil {
		record.Body = fields
		record.TradeID = stringOf(fields, "trade_id")
		record.Tid = stringOf(fields, "tid")
	}
	if err := s.database.SaveResult(ctx, record); err != nil {
		s.logError("save webhook record", err)
	}
}

func (s *Server) cardPay(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := WithRequestID(r.Context())
	reqID := GetRequestID(ctx)

	fields, ok := s.readBody(w, r, reqID)
	if !ok {
		return
	}
	if name := missingField(fields, "orderId", "amount", "productName", "buyerName", "buyerEmail", "buyerTel"); name != "" {
		s.respondError(w, http.StatusBadRequest, name+" is required")
		return
	}

	// card entry happens inside the vendor's hosted window; this route
	// only restricts the window to the card method
	request := s.buyerRegistration(fields)
	request.CashCode = "CN"

	s.respond(w, http.StatusOK, s.gateway.Register(ctx, request))
}

func (s *Server) cardCancel(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := WithRequestID(r.Context())
	reqID := GetRequestID(ctx)

	fields, ok := s.readBody(w, r, reqID)
	if !ok {
		return
	}
	if name := missingField(fields, "orderId", "amount", "cashCode", "payToken"); name != "" {
		s.respondError(w, http.StatusBadRequest, name+" is required")
		return
	}

	s.respond(w, http.StatusOK, s.gateway.Cancel(ctx, &entity.CancellationRequest{
		TradeID:    stringOf(fields, "orderId"),
		CashCode:   stringOf(fields, "cashCode"),
		Amount:     amountOf(fields, "amount"),
		PayToken:   stringOf(fields, "payToken"),
		PartCancel: stringOf(fields, "partCancel"),
	}))
}

func (s *Server) billingKey(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := WithRequestID(r.Context())
	reqID := GetRequestID(ctx)

	fields, ok := s.readBody(w, r, reqID)
	if !ok {
		return
	}
	if name := missingField(fields, "orderId", "amount", "productName", "buyerName", "buyerEmail", "buyerTel"); name != "" {
		s.respondError(w, http.StatusBadRequest, name+" is required")
		return
	}

	// recurring registration: the hosted window collects the card and the
	// vendor issues the billing key on the redirect
	request := s.buyerRegistration(fields)
	request.CashCode = "CN"
	request.OnlyOnce = "N"

	s.respond(w, http.StatusOK, s.gateway.Register(ctx, request))
}

func (s *Server) billingPay(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := WithRequestID(r.Context())
	reqID := GetRequestID(ctx)

	fields, ok := s.readBody(w, r, reqID)
	if !ok {
		return
	}
	if name := missingField(fields, "billingKey", "orderId", "amount", "productName", "buyerName", "buyerEmail"); name != "" {
		s.respondError(w, http.StatusBadRequest, name+" is required")
		return
	}

	s.respond(w, http.StatusOK, s.gateway.BillingPay(ctx, &entity.BillingPaymentRequest{
		BillingKey:  stringOf(fields, "billingKey"),
		TradeID:     stringOf(fields, "orderId"),
		Amount:      amountOf(fields, "amount"),
		ProductName: stringOf(fields, "productName"),
		UserName:    stringOf(fields, "buyerName"),
		UserEmail:   stringOf(fields, "buyerEmail"),
	}))
}

func (s *Server) billingKeyDelete(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	key := ps.ByName("key")
	s.respond(w, http.StatusOK, map[string]any{
		"success":    true,
		"message":    "billing key deleted successfully",
		"billingKey": key,
	})
}

func (s *Server) linkCreate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := WithRequestID(r.Context())
	reqID := GetRequestID(ctx)

	fields, ok := s.readBody(w, r, reqID)
	if !ok {
		return
	}
	if name := missingField(fields, "orderId", "amount", "productName", "buyerName", "buyerEmail", "buyerTel", "returnUrl"); name != "" {
		s.respondError(w, http.StatusBadRequest, name+" is required")
		return
	}

	// the payment window URL doubles as the payable link; self call style
	// so it renders standalone
	request := s.buyerRegistration(fields)
	request.CallType = "S"

	result := s.gateway.Register(ctx, request)
	if !result.Success {
		s.respond(w, http.StatusOK, result)
		return
	}
	s.respond(w, http.StatusOK, map[string]any{
		"success": true,
		"tid":     result.Tid,
		"linkUrl": result.PaymentURL,
	})
}

func (s *Server) vaccountIssue(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := WithRequestID(r.Context())
	reqID := GetRequestID(ctx)

	fields, ok := s.readBody(w, r, reqID)
	if !ok {
		return
	}
	if name := missingField(fields, "orderId", "amount", "productName", "buyerName", "buyerEmail", "buyerTel", "bankCode", "accountExpiry"); name != "" {
		s.respondError(w, http.StatusBadRequest, name+" is required")
		return
	}
	expiry := stringOf(fields, "accountExpiry")
	if _, err := time.Parse("20060102150405", expiry); err != nil {
		s.respondError(w, http.StatusBadRequest, "accountExpiry must be YYYYMMDDHHmmss")
		return
	}

	request := s.buyerRegistration(fields)
	request.CashCode = "VA"
	request.BankCode = stringOf(fields, "bankCode")
	request.TimeStamp = expiry

	s.respond(w, http.StatusOK, s.gateway.Register(ctx, request))
}

func (s *Server) accountTransfer(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := WithRequestID(r.Context())
	reqID := GetRequestID(ctx)

	fields, ok := s.readBody(w, r, reqID)
	if !ok {
		return
	}
	if name := missingField(fields, "orderId", "amount", "productName", "buyerName", "buyerTel", "bankCode"); name != "" {
		s.respondError(w, http.StatusBadRequest, name+" is required")
		return
	}

	request := s.buyerRegistration(fields)
	request.CashCode = "AC"
	request.BankCode = stringOf(fields, "bankCode")

	s.respond(w, http.StatusOK, s.gateway.Register(ctx, request))
}

// paymentStatus serves every GET .../status/:orderId route; the vendor
// status endpoint is method-agnostic.
func (s *Server) paymentStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := WithRequestID(r.Context())
	orderId := ps.ByName("orderId")
	s.respond(w, http.StatusOK, s.gateway.Status(ctx, orderId))
}

func (s *Server) bankList(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	s.respond(w, http.StatusOK, map[string]any{
		"success": true,
		"banks":   entity.Banks,
	})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	s.respond(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// ------------------------------------------------------ redirect landings

// paymentResult receives the vendor's browser redirect after the user
// completed authentication in the hosted window. The caller is a browser,
// so parse failures render a diagnostic page instead of an API error.
func (s *Server) paymentResult(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := WithRequestID(r.Context())
	reqID := GetRequestID(ctx)

	params, rawBody := parseRedirectParams(r)

	tid := firstOf(params, "tid")
	payToken := firstOf(params, "pay_token", "payToken")
	if tid == "" && payToken == "" {
		s.logWarn(fmt.Sprintf("[%s] redirect without tid or pay token", reqID))
		renderDiagnosticPage(w, params, rawBody)
		return
	}

	request := &entity.ApprovalRequest{
		Tid:      tid,
		CashCode: defaultString(firstOf(params, "cash_code", "cashCode"), "CN"),
		Amount:   atoiLenient(firstOf(params, "amount")),
		PayToken: payToken,
	}
	s.logInfo(fmt.Sprintf("[%s] approving tid %s", reqID, tid))

	result := s.gateway.Approve(ctx, request)
	renderResultPage(w, resultPageData{
		Success: result.Success,
		Tid:     tid,
		Error:   result.Error,
	})
}

func (s *Server) paymentCancelLanding(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	renderCancelPage(w)
}

// parseRedirectParams extracts the vendor's redirect parameters. Attempts,
// in order: form-encoded body, JSON body, raw body as a query string, URL
// query parameters. The first parse yielding a non-empty value wins.
func parseRedirectParams(r *http.Request) (url.Values, string) {
	raw := ""
	if r.Body != nil {
		if body, err := io.ReadAll(r.Body); err == nil {
			raw = string(body)
		}
	}

	if raw != "" {
		contentType := r.Header.Get("Content-Type")
		if strings.Contains(contentType, "application/x-www-form-urlencoded") {
			if values, err := url.ParseQuery(raw); err == nil && hasValues(values) {
				return values, raw
			}
		}

		var fields map[string]any
		if err := json.Unmarshal([]byte(raw), &fields); err == nil && len(fields) > 0 {
			values := url.Values{}
			for key, value := range fields {
				values.Set(key, stringify(value))
			}
			if hasValues(values) {
				return values, raw
			}
		}

		if values, err := url.ParseQuery(raw); err == nil && hasValues(values) {
			return values, raw
		}
	}

	return r.URL.Query(), raw
}

func hasValues(values url.Values) bool {
	for _, list := range values {
		for _, value := range list {
			if value != "" {
				return true
			}
		}
	}
	return false
}

func firstOf(values url.Values, keys ...string) string {
	for _, key := range keys {
		if value := values.Get(key); value != "" {
			return value
		}
	}
	return ""
}

// ----------------------------------------------------------------- helpers

// readBody decodes the request body into a field map. A malformed body is
// answered with 500, matching the thrown-exception contract of the API.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request, reqID string) (map[string]any, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.logError(fmt.Sprintf("[%s] read request body", reqID), err)
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		s.logWarn(fmt.Sprintf("[%s] invalid request body: %v", reqID, err))
		s.respondError(w, http.StatusInternalServerError, fmt.Sprintf("decode request body: %v", err))
		return nil, false
	}
	return fields, true
}

// buyerRegistration maps the shared buyer fields of the per-method routes
// onto a registration request. The ok URL falls back to this service's
// result landing.
func (s *Server) buyerRegistration(fields map[string]any) *entity.RegistrationRequest {
	return &entity.RegistrationRequest{
		TradeID:     stringOf(fields, "orderId"),
		Amount:      amountOf(fields, "amount"),
		ProductName: stringOf(fields, "productName"),
		OkURL:       defaultString(stringOf(fields, "returnUrl"), s.conf.Gateway.SiteURL+resultLanding),
		CloseURL:    stringOf(fields, "cancelUrl"),
		NotiURL:     stringOf(fields, "notiUrl"),
		UserName:    stringOf(fields, "buyerName"),
		UserEmail:   stringOf(fields, "buyerEmail"),
		UserPhone:   stringOf(fields, "buyerTel"),
		CallType:    "P",
	}
}

// missingField returns the first required field that is absent or empty,
// or "" when all are present. Empty strings and zero numbers count as
// absent, the falsy semantics merchants already code against.
func missingField(fields map[string]any, required ...string) string {
	for _, name := range required {
		value, ok := fields[name]
		if !ok || value == nil {
			return name
		}
		switch v := value.(type) {
		case string:
			if v == "" {
				return name
			}
		case float64:
			if v == 0 {
				return name
			}
		case bool:
			if !v {
				return name
			}
		}
	}
	return ""
}

func stringOf(fields map[string]any, key string) string {
	switch v := fields[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

func amountOf(fields map[string]any, key string) int {
	switch v := fields[key].(type) {
	case float64:
		return int(v)
	case string:
		return atoiLenient(v)
	}
	return 0
}

func atoiLenient(value string) int {
	number, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return number
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func (s *Server) respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logError("encode response", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respond(w, status, map[string]any{
		"success": false,
		"error":   message,
	})
}

func (s *Server) logInfo(message string) {
	if s.logger != nil {
		s.logger.Info(message)
	}
}

func (s *Server) logWarn(message string) {
	if s.logger != nil {
		s.logger.Warn(message)
	}
}

func (s *Server) logError(message string, err error) {
	if s.logger != nil {
		s.logger.Error(message, err)
	}
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return ""
	}
	data, err := json.Marshal(value)
	if err != nil {
		return ""
	}
	return string(data)
}
