package mpesa

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/sokohub/sokohub-order-service/internal/config"
	"github.com/sokohub/sokohub-order-service/internal/domain"
)

const timestampLayout = "20060102150405"

// Client talks to the mobile-money push-payment gateway (Daraja-style STK
// push API). Pure request/response; it never touches the order store.
type Client struct {
	baseURL        string
	consumerKey    string
	consumerSecret string
	shortcode      string
	passkey        string
	callbackURL    string
	httpClient     *http.Client

	tokenMu     sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewClient(cfg config.Mpesa) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:        cfg.BaseURL,
		consumerKey:    cfg.ConsumerKey,
		consumerSecret: cfg.ConsumerSecret,
		shortcode:      cfg.Shortcode,
		passkey:        cfg.Passkey,
		callbackURL:    cfg.CallbackURL,
		httpClient:     &http.Client{Timeout: timeout},
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

// token fetches the short-lived OAuth credential, reusing a cached one
// until shortly before its expiry.
func (c *Client) token(ctx context.Context) (string, error) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/oauth/v1/generate?grant_type=client_credentials", c.baseURL), nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.consumerKey, c.consumerSecret)

	response, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: token request returned status %d", domain.ErrGatewayUnavailable, response.StatusCode)
	}

	var tr tokenResponse
	if err := json.NewDecoder(response.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("%w: decoding token response: %v", domain.ErrGatewayUnavailable, err)
	}

	c.accessToken = tr.AccessToken
	c.tokenExpiry = time.Now().Add(tokenTTL(tr.ExpiresIn))
	return c.accessToken, nil
}

// tokenTTL derives the cache lifetime from the gateway's expires_in field
// (seconds, sent as a string), keeping a renewal margin so a token is never
// used right at its expiry. Unparseable values fall back to the documented
// one-hour lifetime.
func tokenTTL(expiresIn string) time.Duration {
	seconds, err := strconv.Atoi(expiresIn)
	if err != nil || seconds <= 0 {
		seconds = 3600
	}
	ttl := time.Duration(seconds) * time.Second
	if ttl > time.Minute {
		ttl -= time.Minute
	}
	return ttl
}

// password is the time-based request signature:
// base64(shortcode + passkey + timestamp).
func (c *Client) password(timestamp string) string {
	return base64.StdEncoding.EncodeToString([]byte(c.shortcode + c.passkey + timestamp))
}

type stkPushRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            int64  `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

type stkPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
}

// RequestPrompt submits a payment-prompt request carrying orderRef as the
// account reference and returns the gateway's CheckoutRequestID, the prompt
// handle later echoed by the settlement callback.
func (c *Client) RequestPrompt(ctx context.Context, phone string, amount float64, orderRef string) (string, error) {
	accessToken, err := c.token(ctx)
	if err != nil {
		return "", err
	}

	timestamp := time.Now().Format(timestampLayout)
	body, err := json.Marshal(stkPushRequest{
		BusinessShortCode: c.shortcode,
		Password:          c.password(timestamp),
		Timestamp:         timestamp,
		TransactionType:   "CustomerPayBillOnline",
		Amount:            int64(math.Ceil(amount)),
		PartyA:            phone,
		PartyB:            c.shortcode,
		PhoneNumber:       phone,
		CallBackURL:       c.callbackURL,
		AccountReference:  orderRef,
		TransactionDesc:   "Order payment",
	})
	if err != nil {
		return "", err
	}

	respBody, err := c.post(ctx, "/mpesa/stkpush/v1/processrequest", accessToken, body)
	if err != nil {
		return "", err
	}

	var pushResponse stkPushResponse
	if err := json.Unmarshal(respBody, &pushResponse); err != nil {
		return "", fmt.Errorf("%w: decoding push response: %v", domain.ErrGatewayUnavailable, err)
	}
	if pushResponse.ResponseCode != "0" {
		return "", fmt.Errorf("%w: push rejected: %s", domain.ErrGatewayUnavailable, pushResponse.ResponseDescription)
	}

	return pushResponse.CheckoutRequestID, nil
}

type stkQueryRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	CheckoutRequestID string `json:"CheckoutRequestID"`
}

type stkQueryResponse struct {
	ResponseCode      string `json:"ResponseCode"`
	ResultCode        string `json:"ResultCode"`
	ResultDesc        string `json:"ResultDesc"`
	CheckoutRequestID string `json:"CheckoutRequestID"`
	ReceiptNumber     string `json:"ReceiptNumber"`
}

// pendingErrorCode is returned while the payer has not yet acted on the
// prompt; it is a disposition, not a failure.
const pendingErrorCode = "500.001.1001"

type gatewayError struct {
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

// QueryStatus synchronously asks the gateway for the disposition of a
// previously issued prompt. Used for manual reconciliation when no callback
// has arrived within the expected window.
func (c *Client) QueryStatus(ctx context.Context, promptHandle string) (*domain.SettlementOutcome, error) {
	accessToken, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	timestamp := time.Now().Format(timestampLayout)
	body, err := json.Marshal(stkQueryRequest{
		BusinessShortCode: c.shortcode,
		Password:          c.password(timestamp),
		Timestamp:         timestamp,
		CheckoutRequestID: promptHandle,
	})
	if err != nil {
		return nil, err
	}

	respBody, err := c.post(ctx, "/mpesa/stkpushquery/v1/query", accessToken, body)
	if err != nil {
		var ge gatewayError
		if jsonErr := json.Unmarshal(respBody, &ge); jsonErr == nil && ge.ErrorCode == pendingErrorCode {
			return &domain.SettlementOutcome{
				ExternalRef: promptHandle,
				Pending:     true,
				ReasonText:  ge.ErrorMessage,
			}, nil
		}
		return nil, err
	}

	var queryResponse stkQueryResponse
	if err := json.Unmarshal(respBody, &queryResponse); err != nil {
		return nil, fmt.Errorf("%w: decoding query response: %v", domain.ErrGatewayUnavailable, err)
	}

	return &domain.SettlementOutcome{
		ExternalRef:   promptHandle,
		Succeeded:     queryResponse.ResultCode == "0",
		SettlementRef: queryResponse.ReceiptNumber,
		ReasonText:    queryResponse.ResultDesc,
	}, nil
}

// post returns the response body even on non-2xx so callers can inspect
// gateway error envelopes.
func (c *Client) post(ctx context.Context, path, accessToken string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	response, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	defer response.Body.Close()

	respBody, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", domain.ErrGatewayUnavailable, err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return respBody, fmt.Errorf("%w: gateway returned status %d", domain.ErrGatewayUnavailable, response.StatusCode)
	}

	return respBody, nil
}
