package clients

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestSessionClient_Code2Session(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		httpErr  error
		wantErr  error
		anyErr   bool
		wantOpen string
	}{
		{name: "ok", status: http.StatusOK, body: `{"openid":"o-1","session_key":"k"}`, wantOpen: "o-1"},
		{name: "wechat error code", status: http.StatusOK, body: `{"errcode":40029,"errmsg":"invalid code"}`, wantErr: ErrSessionRejected},
		{name: "http status", status: http.StatusBadGateway, body: ``, wantErr: ErrSessionRejected},
		{name: "transport error", httpErr: errors.New("dial tcp"), anyErr: true},
		{name: "bad json", status: http.StatusOK, body: `{`, anyErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			httpClient := NewMockHTTPClientI(ctrl)
			httpClient.EXPECT().
				Get(gomock.Any(), gomock.Any(), gomock.Nil()).
				DoAndReturn(func(_ context.Context, url string, _ http.Header) (int, []byte, http.Header, error) {
					assert.True(t, strings.HasPrefix(url, "https://api.weixin.qq.com/sns/jscode2session?"))
					assert.Contains(t, url, "js_code=the-code")
					assert.Contains(t, url, "appid=wx-app")
					return tt.status, []byte(tt.body), nil, tt.httpErr
				})

			c := NewSessionClient(httpClient, "https://api.weixin.qq.com", "wx-app", "s3cret")
			session, err := c.Code2Session(context.Background(), "the-code")

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, session)
			case tt.anyErr:
				assert.Error(t, err)
				assert.Nil(t, session)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantOpen, session.OpenID)
			}
		})
	}
}
