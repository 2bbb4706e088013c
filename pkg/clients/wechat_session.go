package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

var ErrSessionRejected = errors.New("wechat session rejected")

type Session struct {
	OpenID     string `json:"openid"`
	SessionKey string `json:"session_key"`
	UnionID    string `json:"unionid"`
	ErrCode    int    `json:"errcode"`
	ErrMsg     string `json:"errmsg"`
}

// SessionClient exchanges a mini-program login code for the user's openid.
type SessionClient struct {
	client HTTPClientI
	base   string
	appID  string
	secret string
}

func NewSessionClient(client HTTPClientI, base, appID, secret string) *SessionClient {
	return &SessionClient{
		client: client,
		base:   base,
		appID:  appID,
		secret: secret,
	}
}

func (c *SessionClient) Code2Session(ctx context.Context, code string) (*Session, error) {
	q := url.Values{}
	q.Set("appid", c.appID)
	q.Set("secret", c.secret)
	q.Set("js_code", code)
	q.Set("grant_type", "authorization_code")

	status, body, _, err := c.client.Get(ctx, c.base+"/sns/jscode2session?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("jscode2session request: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: http status %d", ErrSessionRejected, status)
	}

	var session Session
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("jscode2session decode: %w", err)
	}
	if session.ErrCode != 0 || session.OpenID == "" {
		return nil, fmt.Errorf("%w: %d %s", ErrSessionRejected, session.ErrCode, session.ErrMsg)
	}
	return &session, nil
}
