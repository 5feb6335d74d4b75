package middleware

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"offsetledger/pkg/domain"
	"offsetledger/pkg/requestcontext"
)

type stubValidator struct {
	claims *JWTClaims
	err    error
	got    string
}

func (v *stubValidator) ValidateToken(token string) (*JWTClaims, error) {
	v.got = token
	return v.claims, v.err
}

func TestRequireAuth(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		validator  *stubValidator
		wantStatus int
		wantUser   domain.Principal
	}{
		{
			name:       "valid bearer token sets principal",
			header:     "Bearer good",
			validator:  &stubValidator{claims: &JWTClaims{Principal: "acme-corp"}},
			wantStatus: http.StatusOK,
			wantUser:   "acme-corp",
		},
		{
			name:       "missing header",
			validator:  &stubValidator{},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong scheme",
			header:     "Basic dXNlcjpwYXNz",
			validator:  &stubValidator{},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "empty bearer",
			header:     "Bearer   ",
			validator:  &stubValidator{},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "validator rejects",
			header:     "Bearer bad",
			validator:  &stubValidator{err: errors.New("expired")},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "token without subject",
			header:     "Bearer blank",
			validator:  &stubValidator{claims: &JWTClaims{}},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&logs, nil))

			var seen domain.Principal
			h := RequireAuth(tt.validator, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = requestcontext.Principal(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/holdings/acme-corp", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantUser, seen)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Contains(t, rec.Body.String(), `"error":"unauthorized"`)
				assert.Contains(t, logs.String(), "unauthorized access")
			}
		})
	}
}
