package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthMiddleware(t *testing.T) {
	jwtService := NewJWTService("test-secret")
	userToken, err := jwtService.GenerateJWT(7, RoleUser, time.Now().Add(time.Hour))
	require.NoError(t, err)
	adminToken, err := jwtService.GenerateJWT(1, RoleAdmin, time.Now().Add(time.Hour))
	require.NoError(t, err)

	var gotID int
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = r.Context().Value(UserIDKey).(int)
		w.WriteHeader(http.StatusOK)
	})
	userChain := AuthMiddleware(jwtService)(ok)
	adminChain := AuthMiddleware(jwtService)(RequireRole(RoleAdmin)(ok))

	tests := []struct {
		name    string
		handler http.Handler
		header  string
		code    int
		wantID  int
	}{
		{name: "no header", handler: userChain, code: http.StatusUnauthorized},
		{name: "not bearer", handler: userChain, header: "Basic abc", code: http.StatusUnauthorized},
		{name: "garbage token", handler: userChain, header: "Bearer nope", code: http.StatusUnauthorized},
		{name: "user token", handler: userChain, header: "Bearer " + userToken, code: http.StatusOK, wantID: 7},
		{name: "user on admin route", handler: adminChain, header: "Bearer " + userToken, code: http.StatusForbidden},
		{name: "admin on admin route", handler: adminChain, header: "Bearer " + adminToken, code: http.StatusOK, wantID: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotID = 0
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			tt.handler.ServeHTTP(w, r)
			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, tt.wantID, gotID)
		})
	}
}
