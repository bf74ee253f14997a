package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/catalog-accounts/internal/application/verification"
	"github.com/catalog-accounts/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestSignupRequest_InvalidBody(t *testing.T) {
	h := NewSignupHandler(&mockVerificationSvc{}, nil)
	r := withParams(httptest.NewRequest(http.MethodPost, "/v1/signup/request", bytes.NewBufferString("not-json")), "action", "request")
	rr := httptest.NewRecorder()
	h.Action(rr, r)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSignupRequest_InvalidEmail(t *testing.T) {
	h := NewSignupHandler(&mockVerificationSvc{}, nil)
	r := withParams(jsonReq(t, http.MethodPost, "/v1/signup/request", map[string]string{"email": "nope"}), "action", "request")
	rr := httptest.NewRecorder()
	h.Action(rr, r)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestSignupRequest_Conflict(t *testing.T) {
	svc := &mockVerificationSvc{}
	svc.On("InitiateSignup", mock.Anything, "a@example.com").Return(fmt.Errorf("email already registered: %w", domain.ErrConflict))
	h := NewSignupHandler(svc, nil)

	r := withParams(jsonReq(t, http.MethodPost, "/v1/signup/request", verification.SignupCodeRequest{Email: "a@example.com"}), "action", "request")
	rr := httptest.NewRecorder()
	h.Action(rr, r)
	assert.Equal(t, http.StatusConflict, rr.Code)
	svc.AssertExpectations(t)
}

func TestSignupRequest_NotifierDown(t *testing.T) {
	svc := &mockVerificationSvc{}
	svc.On("InitiateSignup", mock.Anything, "a@example.com").Return(fmt.Errorf("deliver code: %w: %w", domain.ErrTransient, errors.New("dial tcp: refused")))
	h := NewSignupHandler(svc, nil)

	r := withParams(jsonReq(t, http.MethodPost, "/v1/signup/request", verification.SignupCodeRequest{Email: "a@example.com"}), "action", "request")
	rr := httptest.NewRecorder()
	h.Action(rr, r)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.NotContains(t, rr.Body.String(), "dial tcp")
}

func TestSignupValidate_HappyPathWithBearer(t *testing.T) {
	req := domain.SignupRequest{Username: "alice", Email: "a@example.com", Password: "password123", OTP: "1234"}
	svc := &mockVerificationSvc{}
	svc.On("CompleteSignup", mock.Anything, req).Return(&domain.Account{AccountID: "01HZ", Email: "a@example.com"}, nil)
	signer := &mockSigner{}
	signer.On("Sign", "01HZ", false).Return("jwt-token", nil)
	h := NewSignupHandler(svc, signer)

	r := withParams(jsonReq(t, http.MethodPost, "/v1/signup/validate-code", req), "action", "validate-code")
	rr := httptest.NewRecorder()
	h.Action(rr, r)

	assert.Equal(t, http.StatusCreated, rr.Code)
	var env AccountEnvelope
	decodeBody(t, rr, &env)
	assert.Equal(t, "jwt-token", env.Bearer)
	assert.Equal(t, "01HZ", env.Account.AccountID)
	assert.NotContains(t, rr.Body.String(), "password")
}

func TestSignupValidate_ExpiredAndWrongCodeLookAlike(t *testing.T) {
	req := domain.SignupRequest{Username: "alice", Email: "a@example.com", Password: "password123", OTP: "1234"}
	bodies := make([]string, 0, 2)
	for _, cause := range []error{domain.ErrCodeExpired, domain.ErrCodeInvalid} {
		svc := &mockVerificationSvc{}
		svc.On("CompleteSignup", mock.Anything, req).Return(nil, cause)
		h := NewSignupHandler(svc, nil)

		r := withParams(jsonReq(t, http.MethodPost, "/v1/signup/validate-code", req), "action", "validate-code")
		rr := httptest.NewRecorder()
		h.Action(rr, r)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		bodies = append(bodies, rr.Body.String())
	}
	assert.Equal(t, bodies[0], bodies[1])
}

func TestSignupValidate_MissingOTP(t *testing.T) {
	h := NewSignupHandler(&mockVerificationSvc{}, nil)
	r := withParams(jsonReq(t, http.MethodPost, "/v1/signup/validate-code", domain.SignupRequest{Username: "a", Email: "a@example.com", Password: "password123"}), "action", "validate-code")
	rr := httptest.NewRecorder()
	h.Action(rr, r)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestSignup_UnknownAction(t *testing.T) {
	h := NewSignupHandler(&mockVerificationSvc{}, nil)
	r := withParams(httptest.NewRequest(http.MethodPost, "/v1/signup/other", nil), "action", "other")
	rr := httptest.NewRecorder()
	h.Action(rr, r)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPasswordRecovery_RequestNotFound(t *testing.T) {
	svc := &mockVerificationSvc{}
	svc.On("InitiateReset", mock.Anything, verification.ResetRequest{Email: "a@example.com"}).Return(fmt.Errorf("account not found: %w", domain.ErrNotFound))
	h := NewPasswordRecoveryHandler(svc)

	r := withParams(jsonReq(t, http.MethodPost, "/v1/password-recovery/request", verification.ResetRequest{Email: "a@example.com"}), "action", "request")
	rr := httptest.NewRecorder()
	h.Action(rr, r)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestPasswordRecovery_RejectsUnknownChannel(t *testing.T) {
	h := NewPasswordRecoveryHandler(&mockVerificationSvc{})
	r := withParams(jsonReq(t, http.MethodPost, "/v1/password-recovery/request", verification.ResetRequest{Email: "a@example.com", Channel: "pigeon"}), "action", "request")
	rr := httptest.NewRecorder()
	h.Action(rr, r)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestPasswordRecovery_ValidateCode(t *testing.T) {
	svc := &mockVerificationSvc{}
	svc.On("CompleteReset", mock.Anything, "a@example.com", "5678", "new-password-1").Return(nil)
	h := NewPasswordRecoveryHandler(svc)

	body := verification.CompleteResetRequest{Email: "a@example.com", OTP: "5678", NewPassword: "new-password-1"}
	r := withParams(jsonReq(t, http.MethodPost, "/v1/password-recovery/validate-code", body), "action", "validate-code")
	rr := httptest.NewRecorder()
	h.Action(rr, r)
	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

func TestLogin_Unauthorized(t *testing.T) {
	svc := &mockAccountSvc{}
	svc.On("Login", mock.Anything, "a@example.com", "wrong-pass").Return(nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized))
	h := NewSessionHandler(svc, nil)

	rr := httptest.NewRecorder()
	h.Login(rr, jsonReq(t, http.MethodPost, "/v1/sessions/login", domain.LoginRequest{Email: "a@example.com", Password: "wrong-pass"}))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLogin_NoSignerOmitsBearer(t *testing.T) {
	svc := &mockAccountSvc{}
	svc.On("Login", mock.Anything, "a@example.com", "password123").Return(&domain.Account{AccountID: "01HZ"}, nil)
	h := NewSessionHandler(svc, nil)

	rr := httptest.NewRecorder()
	h.Login(rr, jsonReq(t, http.MethodPost, "/v1/sessions/login", domain.LoginRequest{Email: "a@example.com", Password: "password123"}))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "Bearer")
}
