package auth

import (
	"testing"
	"time"

	"bus-tracker/internal/config"
	"bus-tracker/internal/models"
)

func testConfig(secret string) *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:    []byte(secret),
			ExpiresIn: time.Hour,
		},
	}
}

func TestTokenRoundTrip(t *testing.T) {
	service := NewService(nil, testConfig("test-secret"))
	user := &models.User{ID: 7, Name: "Ana", Email: "ana@example.com", Role: models.RoleDriver}

	token, err := service.generateToken(user)
	if err != nil {
		t.Fatalf("generateToken: %v", err)
	}

	identity, err := service.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if identity.UserID != 7 {
		t.Errorf("expected user 7, got %d", identity.UserID)
	}
	if identity.Role != models.RoleDriver {
		t.Errorf("expected driver role, got %q", identity.Role)
	}
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	service := NewService(nil, testConfig("test-secret"))
	other := NewService(nil, testConfig("other-secret"))

	user := &models.User{ID: 7, Role: models.RoleRider}
	token, err := service.generateToken(user)
	if err != nil {
		t.Fatalf("generateToken: %v", err)
	}

	if _, err := other.Verify(token); err == nil {
		t.Error("token signed with a different secret must be rejected")
	}
	if _, err := service.Verify("not-a-token"); err == nil {
		t.Error("garbage must be rejected")
	}
}

func TestValidateRegistrationRequest(t *testing.T) {
	service := NewService(nil, testConfig("test-secret"))

	cases := []struct {
		name    string
		req     models.RegisterRequest
		wantErr bool
	}{
		{"Valid rider", models.RegisterRequest{Name: "Ana Silva", Email: "ana@example.com", Password: "longenough"}, false},
		{"Valid driver", models.RegisterRequest{Name: "Carlos", Email: "carlos@example.com", Password: "longenough", Role: models.RoleDriver}, false},
		{"Missing fields", models.RegisterRequest{Email: "ana@example.com"}, true},
		{"Bad email", models.RegisterRequest{Name: "Ana", Email: "not-an-email", Password: "longenough"}, true},
		{"Short password", models.RegisterRequest{Name: "Ana", Email: "ana@example.com", Password: "short"}, true},
		{"Unknown role", models.RegisterRequest{Name: "Ana", Email: "ana@example.com", Password: "longenough", Role: "admin"}, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := service.validateRegistrationRequest(&c.req)
			if (err != nil) != c.wantErr {
				t.Errorf("validateRegistrationRequest(%+v) error = %v, wantErr %v", c.req, err, c.wantErr)
			}
		})
	}
}

func TestDefaultRoleIsRider(t *testing.T) {
	service := NewService(nil, testConfig("test-secret"))
	req := models.RegisterRequest{Name: "Ana Silva", Email: "ana@example.com", Password: "longenough"}

	if err := service.validateRegistrationRequest(&req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Role != models.RoleRider {
		t.Errorf("expected rider role by default, got %q", req.Role)
	}
}
