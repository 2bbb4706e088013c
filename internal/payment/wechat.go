package payment

import (
	"bytes"
	"context"
	"crypto"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/GlebRadaev/memberhub/internal/config"
	"github.com/GlebRadaev/memberhub/internal/domain"
	"github.com/GlebRadaev/memberhub/pkg/clients"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	jsapiPath      = "/v3/pay/transactions/jsapi"
	queryOrderPath = "/v3/pay/transactions/out-trade-no/"

	authScheme      = "WECHATPAY2-SHA256-RSA2048"
	successEvent    = "TRANSACTION.SUCCESS"
	aeadAlgorithm   = "AEAD_AES_256_GCM"
	apiV3KeyLen     = 32
	maxClockSkew    = 5 * time.Minute
	maxResponseBody = 1 << 20
)

type WechatConfig struct {
	AppID     string
	MchID     string
	SerialNo  string
	APIv3Key  string
	NotifyURL string
	APIBase   string
}

// WechatPay talks to the WeChat Pay v3 API for the mini-program JSAPI flow.
type WechatPay struct {
	cfg         WechatConfig
	client      clients.HTTPClientI
	privateKey  *rsa.PrivateKey
	platformKey *rsa.PublicKey
	now         func() time.Time
	nonce       func() string
}

// NewWechatPay builds the adapter. A nil platformKey disables notification
// signature checks; decryption with the API v3 key still authenticates the
// payload.
func NewWechatPay(cfg WechatConfig, client clients.HTTPClientI, privateKey *rsa.PrivateKey, platformKey *rsa.PublicKey) (*WechatPay, error) {
	if cfg.AppID == "" || cfg.MchID == "" || cfg.SerialNo == "" {
		return nil, errors.New("wechat pay: appid, mchid and serial number are required")
	}
	if len(cfg.APIv3Key) != apiV3KeyLen {
		return nil, fmt.Errorf("wechat pay: api v3 key must be %d bytes", apiV3KeyLen)
	}
	if privateKey == nil {
		return nil, ErrInvalidPrivateKey
	}
	if platformKey == nil {
		zap.L().Warn("wechat pay platform key not configured, notification signatures are not checked")
	}
	return &WechatPay{
		cfg:         cfg,
		client:      client,
		privateKey:  privateKey,
		platformKey: platformKey,
		now:         time.Now,
		nonce:       func() string { return strings.ReplaceAll(uuid.NewString(), "-", "") },
	}, nil
}

// FromConfig loads the merchant key and the optional platform certificate
// from disk.
func FromConfig(cfg config.Wechat, client clients.HTTPClientI) (*WechatPay, error) {
	privateKey, err := LoadPrivateKey(cfg.PrivateKeyPath)
	if err != nil {
		return nil, err
	}
	var platformKey *rsa.PublicKey
	if cfg.PlatformCertPath != "" {
		if platformKey, err = LoadPublicKey(cfg.PlatformCertPath); err != nil {
			return nil, err
		}
	}
	return NewWechatPay(WechatConfig{
		AppID:     cfg.AppID,
		MchID:     cfg.MchID,
		SerialNo:  cfg.SerialNo,
		APIv3Key:  cfg.APIv3Key,
		NotifyURL: cfg.NotifyURL,
		APIBase:   cfg.APIBase,
	}, client, privateKey, platformKey)
}

// Prepay opens a JSAPI transaction and signs the parameters the client
// needs to start paying. Every failure is a domain.ErrGatewayInitiation.
func (w *WechatPay) Prepay(ctx context.Context, req PrepayRequest) (*PrepaySignature, error) {
	body := jsapiRequest{
		AppID:       w.cfg.AppID,
		MchID:       w.cfg.MchID,
		Description: req.Description,
		OutTradeNo:  req.OrderNo,
		NotifyURL:   w.cfg.NotifyURL,
		Amount:      requestAmount{Total: req.Amount, Currency: "CNY"},
		Payer:       payer{OpenID: req.OpenID},
	}
	if req.ClientIP != "" {
		body.SceneInfo = &sceneInfo{PayerClientIP: req.ClientIP}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayInitiation, err)
	}

	status, respBody, err := w.do(ctx, http.MethodPost, jsapiPath, payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayInitiation, err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", domain.ErrGatewayInitiation, describeFailure(status, respBody))
	}

	var resp prepayResponse
	if err := json.Unmarshal(respBody, &resp); err != nil || resp.PrepayID == "" {
		return nil, fmt.Errorf("%w: no prepay id in response", domain.ErrGatewayInitiation)
	}

	sig, err := w.signPrepay(resp.PrepayID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayInitiation, err)
	}
	return sig, nil
}

func (w *WechatPay) signPrepay(prepayID string) (*PrepaySignature, error) {
	timestamp := strconv.FormatInt(w.now().Unix(), 10)
	nonce := w.nonce()
	pkg := "prepay_id=" + prepayID

	paySign, err := w.sign(w.cfg.AppID + "\n" + timestamp + "\n" + nonce + "\n" + pkg + "\n")
	if err != nil {
		return nil, err
	}
	return &PrepaySignature{
		AppID:     w.cfg.AppID,
		TimeStamp: timestamp,
		NonceStr:  nonce,
		Package:   pkg,
		SignType:  "RSA",
		PaySign:   paySign,
	}, nil
}

// Decode authenticates a webhook delivery and returns the decrypted
// transaction. It fails closed: anything it cannot verify is a
// domain.ErrGatewayVerification.
func (w *WechatPay) Decode(_ context.Context, n Notification) (*domain.PaymentNotice, error) {
	if err := w.verify(n); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayVerification, err)
	}

	var env notificationEnvelope
	if err := json.Unmarshal(n.Body, &env); err != nil {
		return nil, fmt.Errorf("%w: malformed envelope: %v", domain.ErrGatewayVerification, err)
	}
	if env.EventType != successEvent {
		return nil, fmt.Errorf("%w: %s", ErrIgnoredEvent, env.EventType)
	}
	if env.Resource.Algorithm != aeadAlgorithm {
		return nil, fmt.Errorf("%w: unsupported algorithm %q", domain.ErrGatewayVerification, env.Resource.Algorithm)
	}

	plain, err := w.decrypt(env.Resource)
	if err != nil {
		return nil, fmt.Errorf("%w: decrypt: %v", domain.ErrGatewayVerification, err)
	}
	notice, err := toNotice(plain)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayVerification, err)
	}
	if notice.MchID != w.cfg.MchID {
		return nil, fmt.Errorf("%w: merchant %q is not %q", domain.ErrGatewayVerification, notice.MchID, w.cfg.MchID)
	}
	return notice, nil
}

func (w *WechatPay) verify(n Notification) error {
	if w.platformKey == nil {
		return nil
	}
	ts, err := strconv.ParseInt(n.Timestamp, 10, 64)
	if err != nil {
		return errors.New("missing or invalid timestamp")
	}
	if skew := w.now().Sub(time.Unix(ts, 0)); skew > maxClockSkew || skew < -maxClockSkew {
		return fmt.Errorf("timestamp outside the accepted window: %s", skew)
	}
	sig, err := base64.StdEncoding.DecodeString(n.Signature)
	if err != nil || len(sig) == 0 {
		return errors.New("missing or invalid signature")
	}
	digest := sha256.Sum256([]byte(n.Timestamp + "\n" + n.Nonce + "\n" + string(n.Body) + "\n"))
	if err := rsa.VerifyPKCS1v15(w.platformKey, crypto.SHA256, digest[:], sig); err != nil {
		return errors.New("signature mismatch")
	}
	return nil
}

func (w *WechatPay) decrypt(r resource) ([]byte, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(r.Ciphertext)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher([]byte(w.cfg.APIv3Key))
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, len(r.Nonce))
	if err != nil {
		return nil, err
	}
	return gcm.Open(nil, []byte(r.Nonce), ciphertext, []byte(r.AssociatedData))
}

// QueryOrder asks the gateway for the current state of a trade.
func (w *WechatPay) QueryOrder(ctx context.Context, orderNo string) (*domain.PaymentNotice, error) {
	path := queryOrderPath + url.PathEscape(orderNo) + "?mchid=" + url.QueryEscape(w.cfg.MchID)
	status, body, err := w.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("query order %s: %w", orderNo, err)
	}
	switch status {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrTradeNotFound
	default:
		return nil, fmt.Errorf("query order %s: %s", orderNo, describeFailure(status, body))
	}
	return toNotice(body)
}

func (w *WechatPay) do(ctx context.Context, method, path string, body []byte) (int, []byte, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, w.cfg.APIBase+path, reader)
	if err != nil {
		return 0, nil, err
	}

	authorization, err := w.authorization(method, path, body)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", authorization)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, respBody, nil
}

func (w *WechatPay) authorization(method, path string, body []byte) (string, error) {
	timestamp := strconv.FormatInt(w.now().Unix(), 10)
	nonce := w.nonce()
	signature, err := w.sign(method + "\n" + path + "\n" + timestamp + "\n" + nonce + "\n" + string(body) + "\n")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`%s mchid="%s",nonce_str="%s",signature="%s",timestamp="%s",serial_no="%s"`,
		authScheme, w.cfg.MchID, nonce, signature, timestamp, w.cfg.SerialNo), nil
}

func (w *WechatPay) sign(message string) (string, error) {
	digest := sha256.Sum256([]byte(message))
	sig, err := rsa.SignPKCS1v15(rand.Reader, w.privateKey, crypto.SHA256, digest[:])
	if err != nil {
		return "", fmt.Errorf("sign: %w", err)
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}

func toNotice(raw []byte) (*domain.PaymentNotice, error) {
	var tx transaction
	if err := json.Unmarshal(raw, &tx); err != nil {
		return nil, fmt.Errorf("malformed transaction: %w", err)
	}
	if tx.OutTradeNo == "" || tx.TradeState == "" {
		return nil, errors.New("transaction without order number or state")
	}

	notice := &domain.PaymentNotice{
		OutTradeNo:    tx.OutTradeNo,
		TradeState:    tx.TradeState,
		TradeType:     tx.TradeType,
		MchID:         tx.MchID,
		TransactionID: tx.TransactionID,
		Raw:           string(raw),
	}
	if tx.Amount != nil {
		notice.Total = tx.Amount.Total
	}
	if tx.Payer != nil {
		notice.PayerOpenID = tx.Payer.OpenID
	}
	if tx.SuccessTime != "" {
		t, err := time.Parse(time.RFC3339, tx.SuccessTime)
		if err != nil {
			return nil, fmt.Errorf("malformed success time: %w", err)
		}
		notice.SuccessTime = t
	}
	return notice, nil
}

func describeFailure(status int, body []byte) string {
	var e errorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Code != "" {
		return fmt.Sprintf("http %d %s: %s", status, e.Code, e.Message)
	}
	return fmt.Sprintf("http %d", status)
}

var _ Gateway = (*WechatPay)(nil)
