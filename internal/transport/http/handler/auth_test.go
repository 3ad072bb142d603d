package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/drughub-api/internal/application/auth"
	"github.com/drughub-api/internal/domain"
	"github.com/drughub-api/internal/transport/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAuthSvc struct{ mock.Mock }

func (m *mockAuthSvc) AuthenticateWithPassword(ctx context.Context, email, plain string) (string, error) {
	args := m.Called(ctx, email, plain)
	return args.String(0), args.Error(1)
}

func (m *mockAuthSvc) AuthenticateWithOTP(ctx context.Context, email, code, clientAddr string) (*domain.Session, error) {
	args := m.Called(ctx, email, code, clientAddr)
	if s, _ := args.Get(0).(*domain.Session); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthSvc) AuthenticateRequest(ctx context.Context, bearer string) (*domain.Identity, error) {
	args := m.Called(ctx, bearer)
	if i, _ := args.Get(0).(*domain.Identity); i != nil {
		return i, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthSvc) Logout(ctx context.Context, bearer string) error {
	return m.Called(ctx, bearer).Error(0)
}

func (m *mockAuthSvc) Sessions(ctx context.Context, accountID string) ([]domain.Session, error) {
	args := m.Called(ctx, accountID)
	if s, _ := args.Get(0).([]domain.Session); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockOTPSvc struct{ mock.Mock }

func (m *mockOTPSvc) IssueChallenge(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *mockOTPSvc) IssueRecovery(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *mockOTPSvc) VerifyChallenge(ctx context.Context, email, code string) error {
	return m.Called(ctx, email, code).Error(0)
}

func jsonBody(t *testing.T, v interface{}) *bytes.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

// --- SignIn tests ---

func TestSignIn_InvalidBody(t *testing.T) {
	h := NewAuthHandler(&mockAuthSvc{}, &mockOTPSvc{})
	r := httptest.NewRequest(http.MethodPost, "/v1/auth/signin", bytes.NewBufferString("not-json"))
	rr := httptest.NewRecorder()
	h.SignIn(rr, r)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSignIn_ValidationFailure(t *testing.T) {
	h := NewAuthHandler(&mockAuthSvc{}, &mockOTPSvc{})
	r := httptest.NewRequest(http.MethodPost, "/v1/auth/signin",
		jsonBody(t, auth.SignInRequest{Email: "not-an-email", Password: "x"}))
	rr := httptest.NewRecorder()
	h.SignIn(rr, r)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSignIn_InvalidCredentials(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("AuthenticateWithPassword", mock.Anything, "clerk@drughub.test", "wrong").
		Return("", domain.ErrInvalidCredentials)
	h := NewAuthHandler(svc, &mockOTPSvc{})

	r := httptest.NewRequest(http.MethodPost, "/v1/auth/signin",
		jsonBody(t, auth.SignInRequest{Email: "clerk@drughub.test", Password: "wrong"}))
	rr := httptest.NewRecorder()
	h.SignIn(rr, r)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	var resp MessageEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "invalid credentials", resp.Error)
}

func TestSignIn_HappyPath(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("AuthenticateWithPassword", mock.Anything, "clerk@drughub.test", "s3cret").
		Return("signed.token", nil)
	h := NewAuthHandler(svc, &mockOTPSvc{})

	r := httptest.NewRequest(http.MethodPost, "/v1/auth/signin",
		jsonBody(t, auth.SignInRequest{Email: "clerk@drughub.test", Password: "s3cret"}))
	rr := httptest.NewRecorder()
	h.SignIn(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp TokenEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "signed.token", resp.AccessToken)
	assert.Equal(t, "bearer", resp.TokenType)
	svc.AssertExpectations(t)
}

// --- SendOTP tests ---

func TestSendOTP_Accepted(t *testing.T) {
	otpSvc := &mockOTPSvc{}
	otpSvc.On("IssueChallenge", mock.Anything, "clerk@drughub.test").Return(nil)
	h := NewAuthHandler(&mockAuthSvc{}, otpSvc)

	r := httptest.NewRequest(http.MethodPost, "/v1/auth/send-otp",
		jsonBody(t, auth.SendOTPRequest{Email: "clerk@drughub.test"}))
	rr := httptest.NewRecorder()
	h.SendOTP(rr, r)

	assert.Equal(t, http.StatusAccepted, rr.Code)
	otpSvc.AssertExpectations(t)
}

func TestSendOTP_StoreDown(t *testing.T) {
	otpSvc := &mockOTPSvc{}
	otpSvc.On("IssueChallenge", mock.Anything, "clerk@drughub.test").
		Return(domain.ErrStoreUnavailable)
	h := NewAuthHandler(&mockAuthSvc{}, otpSvc)

	r := httptest.NewRequest(http.MethodPost, "/v1/auth/send-otp",
		jsonBody(t, auth.SendOTPRequest{Email: "clerk@drughub.test"}))
	rr := httptest.NewRecorder()
	h.SendOTP(rr, r)

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

// --- OTPSignIn tests ---

func TestOTPSignIn_BadCode(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("AuthenticateWithOTP", mock.Anything, "clerk@drughub.test", "000000", mock.Anything).
		Return(nil, domain.ErrInvalidOTP)
	h := NewAuthHandler(svc, &mockOTPSvc{})

	r := httptest.NewRequest(http.MethodPost, "/v1/auth/signin/otp",
		jsonBody(t, auth.OTPSignInRequest{Email: "clerk@drughub.test", OTP: "000000"}))
	rr := httptest.NewRecorder()
	h.OTPSignIn(rr, r)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestOTPSignIn_HappyPath(t *testing.T) {
	sess := &domain.Session{SessionToken: "deadbeef", AccountID: "u1", IP: "203.0.113.9"}
	svc := &mockAuthSvc{}
	svc.On("AuthenticateWithOTP", mock.Anything, "clerk@drughub.test", "287082", "203.0.113.9").
		Return(sess, nil)
	h := NewAuthHandler(svc, &mockOTPSvc{})

	r := httptest.NewRequest(http.MethodPost, "/v1/auth/signin/otp",
		jsonBody(t, auth.OTPSignInRequest{Email: "clerk@drughub.test", OTP: "287082"}))
	r.RemoteAddr = "203.0.113.9:51234"
	rr := httptest.NewRecorder()
	h.OTPSignIn(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp SessionEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "OTP verified successfully", resp.Message)
	require.NotNil(t, resp.Session)
	assert.Equal(t, "deadbeef", resp.Session.SessionToken)
	svc.AssertExpectations(t)
}

func TestOTPSignIn_SessionAddressFromForwardedHeader(t *testing.T) {
	sess := &domain.Session{SessionToken: "deadbeef", AccountID: "u1", IP: "198.51.100.7"}
	svc := &mockAuthSvc{}
	svc.On("AuthenticateWithOTP", mock.Anything, "clerk@drughub.test", "287082", "198.51.100.7").
		Return(sess, nil)
	h := NewAuthHandler(svc, &mockOTPSvc{})

	r := httptest.NewRequest(http.MethodPost, "/v1/auth/signin/otp",
		jsonBody(t, auth.OTPSignInRequest{Email: "clerk@drughub.test", OTP: "287082"}))
	r.RemoteAddr = "10.0.0.1:443" // proxy hop
	r.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")
	rr := httptest.NewRecorder()
	h.OTPSignIn(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

// --- SignOut / Sessions tests ---

func TestSignOut_DestroysBearer(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Logout", mock.Anything, "deadbeef").Return(nil)
	h := NewAuthHandler(svc, &mockOTPSvc{})

	r := httptest.NewRequest(http.MethodPost, "/v1/auth/signout", nil)
	r.Header.Set("Authorization", "Bearer deadbeef")
	rr := httptest.NewRecorder()
	h.SignOut(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

func TestSessions_MissingIdentity(t *testing.T) {
	h := NewAuthHandler(&mockAuthSvc{}, &mockOTPSvc{})
	r := httptest.NewRequest(http.MethodGet, "/v1/auth/sessions", nil)
	rr := httptest.NewRecorder()
	h.Sessions(rr, r)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestSessions_ListsForCaller(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Sessions", mock.Anything, "u1").
		Return([]domain.Session{{SessionToken: "a"}, {SessionToken: "b"}}, nil)
	h := NewAuthHandler(svc, &mockOTPSvc{})

	identity := &domain.Identity{UserID: "u1", Active: true}
	ctx := context.WithValue(context.Background(), middleware.IdentityKey, identity)
	r := httptest.NewRequest(http.MethodGet, "/v1/auth/sessions", nil).WithContext(ctx)
	rr := httptest.NewRecorder()
	h.Sessions(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp SessionsEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, 2, resp.Count)
	assert.Len(t, resp.Sessions, 2)
	svc.AssertExpectations(t)
}
