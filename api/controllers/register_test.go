package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anandkhatri/ledgerbook-backend/internal/auth"
	"github.com/anandkhatri/ledgerbook-backend/internal/users"
	pkgerrors "github.com/anandkhatri/ledgerbook-backend/pkg/errors"
	"github.com/google/uuid"
)

type stubRegisterService struct {
	err     error
	lastReq auth.RegisterRequest
}

func (s *stubRegisterService) Register(ctx context.Context, req auth.RegisterRequest) error {
	s.lastReq = req
	return s.err
}

func TestAuthRegisterSuccess(t *testing.T) {
	user := &users.UserDTO{ID: uuid.New(), Email: "alice@example.com", Name: "Alice", IsActive: true}
	authSvc := &stubAuthService{resp: &auth.LoginResponse{
		AccessToken:  "new-token",
		RefreshToken: "refresh",
		User:         user,
	}}
	reg := &stubRegisterService{}
	handler := AuthRegister(reg, authSvc, nil)

	body := []byte(`{"name":"Alice","email":"alice@example.com","password":"Secret123!"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got := resp.Header().Get("X-LB-Token"); got != "new-token" {
		t.Fatalf("expected x-lb-token new-token got %s", got)
	}
	if reg.lastReq.Email != "alice@example.com" {
		t.Fatalf("expected register request forwarded got %s", reg.lastReq.Email)
	}
	if authSvc.lastReq.Email != "alice@example.com" {
		t.Fatalf("expected login after register got %s", authSvc.lastReq.Email)
	}

	var envelope struct {
		Data struct {
			User *users.UserDTO `json:"user"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.User == nil || envelope.Data.User.Email != user.Email {
		t.Fatalf("expected user in payload got %+v", envelope.Data.User)
	}
}

func TestAuthRegisterInvalidPayload(t *testing.T) {
	handler := AuthRegister(&stubRegisterService{}, &stubAuthService{}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader([]byte(`{"password":"Secret123!"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAuthRegisterPropagatesError(t *testing.T) {
	reg := &stubRegisterService{err: pkgerrors.New(pkgerrors.CodeConflict, "email already registered")}
	handler := AuthRegister(reg, &stubAuthService{}, nil)

	body := []byte(`{"name":"Alice","email":"alice@example.com","password":"Secret123!"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
}
