package auth_test

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tallybooks/tallybooks/internal/domain"
	"github.com/tallybooks/tallybooks/internal/infrastructure/auth"
)

func TestJWTManagerGenerateAndVerify(t *testing.T) {
	t.Parallel()

	manager := auth.NewJWTManager("super-secret", time.Minute)

	user := &domain.User{
		ID:       uuid.New(),
		TenantID: "tenant-1",
		Email:    "user@example.com",
		Role:     domain.RoleAccountant,
	}

	token, err := manager.Generate(user)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	claims, err := manager.Verify(token)
	if err != nil {
		t.Fatalf("expected token to verify, got %v", err)
	}

	if claims.UserID != user.ID.String() || claims.TenantID != user.TenantID || claims.Role != user.Role {
		t.Fatalf("expected claims to match user, got %+v", claims)
	}

	actor, err := claims.User()
	if err != nil {
		t.Fatalf("expected claims to convert: %v", err)
	}
	if actor.ID != user.ID || actor.TenantID != user.TenantID || !actor.Active {
		t.Fatalf("unexpected acting user %+v", actor)
	}
}

func TestJWTManagerVerifyErrors(t *testing.T) {
	t.Parallel()

	manager := auth.NewJWTManager("secret", time.Minute)

	expiredClaims := auth.Claims{
		UserID:   uuid.NewString(),
		TenantID: "tenant-1",
		Email:    "expired@example.com",
		Role:     domain.RoleViewer,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Minute)),
			NotBefore: jwt.NewNumericDate(time.Now().Add(-2 * time.Minute)),
		},
	}

	expiredToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, expiredClaims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("failed to sign expired token: %v", err)
	}

	if _, err := manager.Verify(expiredToken); !errors.Is(err, domain.ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}

	otherManager := auth.NewJWTManager("other-secret", time.Minute)
	if _, err := otherManager.Verify(expiredToken); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}

	if _, err := manager.Verify("not-a-token"); err == nil {
		t.Fatalf("expected failure for malformed token")
	}
}

func TestClaimsUserRejectsBadClaims(t *testing.T) {
	t.Parallel()

	badID := &auth.Claims{UserID: "not-a-uuid", TenantID: "tenant-1", Role: domain.RoleOwner}
	if _, err := badID.User(); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for bad user ID, got %v", err)
	}

	badRole := &auth.Claims{UserID: uuid.NewString(), TenantID: "tenant-1", Role: domain.Role("superuser")}
	if _, err := badRole.User(); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for unknown role, got %v", err)
	}
}
