package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/velotrack/go-ride-backend/internal/apierr"
	"github.com/velotrack/go-ride-backend/internal/auth"
	"github.com/velotrack/go-ride-backend/internal/domain"
)

const mwSecret = "middleware-test-secret"

// newAuthRouter wires a single protected route that echoes the principal,
// so tests can assert both rejection envelopes and successful extraction.
func newAuthRouter(a *auth.Authenticator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", RequireAuth(a), func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"err": "no principal"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": p.ID, "role": p.Role})
	})
	return r
}

func doGet(t *testing.T, r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// decodeEnvelope unpacks the standard error body.
func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) apierr.Error {
	t.Helper()
	var env struct {
		Error apierr.Error `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body=%s)", err, w.Body.String())
	}
	return env.Error
}

func TestRequireAuth_NoSecret(t *testing.T) {
	r := newAuthRouter(auth.NewAuthenticator("", time.Hour))

	// Even a well-formed header is ignored when the key is unconfigured:
	// availability is checked first.
	w := doGet(t, r, "Bearer sometoken")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
	if e := decodeEnvelope(t, w); e.Code != apierr.CodeServiceUnavailable {
		t.Errorf("code = %q", e.Code)
	}
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	r := newAuthRouter(auth.NewAuthenticator(mwSecret, time.Hour))

	w := doGet(t, r, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if e := decodeEnvelope(t, w); e.Code != apierr.CodeMissingAuthHeader {
		t.Errorf("code = %q", e.Code)
	}
}

func TestRequireAuth_EmptyToken(t *testing.T) {
	r := newAuthRouter(auth.NewAuthenticator(mwSecret, time.Hour))

	for _, header := range []string{"Bearer ", "Bearer"} {
		w := doGet(t, r, header)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%q: status = %d, want 401", header, w.Code)
			continue
		}
		if e := decodeEnvelope(t, w); e.Code != apierr.CodeInvalidTokenFormat {
			t.Errorf("%q: code = %q", header, e.Code)
		}
	}
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	a := auth.NewAuthenticator(mwSecret, -time.Minute) // already expired at issue
	token, aerr := a.Issue(7, domain.RoleUser)
	if aerr != nil {
		t.Fatalf("Issue: %v", aerr)
	}

	r := newAuthRouter(auth.NewAuthenticator(mwSecret, time.Hour))
	w := doGet(t, r, "Bearer "+token)
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
	if e := decodeEnvelope(t, w); e.Code != apierr.CodeTokenExpired {
		t.Errorf("code = %q", e.Code)
	}
}

func TestRequireAuth_TamperedToken(t *testing.T) {
	other := auth.NewAuthenticator("a-different-secret", time.Hour)
	token, _ := other.Issue(7, domain.RoleUser)

	r := newAuthRouter(auth.NewAuthenticator(mwSecret, time.Hour))
	w := doGet(t, r, "Bearer "+token)
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
	if e := decodeEnvelope(t, w); e.Code != apierr.CodeInvalidToken {
		t.Errorf("code = %q", e.Code)
	}
}

func TestRequireAuth_Success(t *testing.T) {
	a := auth.NewAuthenticator(mwSecret, time.Hour)
	token, _ := a.Issue(42, domain.RoleAdmin)

	w := doGet(t, newAuthRouter(a), "Bearer "+token)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var body struct {
		ID   uint   `json:"id"`
		Role string `json:"role"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.ID != 42 || body.Role != domain.RoleAdmin {
		t.Errorf("principal = %+v", body)
	}
}

func TestPrincipalFrom_Absent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if _, ok := PrincipalFrom(c); ok {
		t.Fatal("expected no principal on a bare context")
	}
}
