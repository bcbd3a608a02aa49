package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"huntboard/internal/api/dto"
	"huntboard/internal/config"
)

const (
	ContextIdentity = "identity"
	RoleAdmin       = "admin"
)

var ErrInvalidToken = errors.New("invalid token")

// RoleMetadata is the role-bearing part of the app_metadata and
// user_metadata claims issued by the identity provider.
type RoleMetadata struct {
	Role string `json:"role,omitempty"`
}

type Claims struct {
	Email        string        `json:"email,omitempty"`
	Role         string        `json:"role,omitempty"`
	AppMetadata  *RoleMetadata `json:"app_metadata,omitempty"`
	UserMetadata *RoleMetadata `json:"user_metadata,omitempty"`
	jwt.RegisteredClaims
}

// Identity is the authenticated caller.
type Identity struct {
	Subject string
	Email   string
	Roles   []string
}

// Authenticator verifies HS256 bearer tokens and decides admin access.
type Authenticator struct {
	secret     []byte
	issuer     string
	adminEmail string
	tokenTTL   time.Duration
}

func NewAuthenticator(cfg config.AuthConfig) *Authenticator {
	return &Authenticator{
		secret:     []byte(cfg.JWTSecret),
		issuer:     cfg.Issuer,
		adminEmail: strings.ToLower(strings.TrimSpace(cfg.AdminEmail)),
		tokenTTL:   time.Duration(cfg.TokenTTL) * time.Hour,
	}
}

// ValidateToken parses tokenString and returns the caller's identity.
func (a *Authenticator) ValidateToken(tokenString string) (*Identity, error) {
	if len(a.secret) == 0 {
		return nil, fmt.Errorf("%w: no signing secret configured", ErrInvalidToken)
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	id := &Identity{Subject: claims.Subject, Email: claims.Email}
	for _, role := range []string{claims.Role, metaRole(claims.AppMetadata), metaRole(claims.UserMetadata)} {
		if role != "" {
			id.Roles = append(id.Roles, role)
		}
	}
	return id, nil
}

// IsAdmin holds when any role claim is admin or the email matches the
// configured admin address.
func (a *Authenticator) IsAdmin(id *Identity) bool {
	if id == nil {
		return false
	}
	for _, r := range id.Roles {
		if r == RoleAdmin {
			return true
		}
	}
	return a.adminEmail != "" && strings.EqualFold(id.Email, a.adminEmail)
}

// Issue mints a signed token for local use.
func (a *Authenticator) Issue(subject, email, role string) (string, error) {
	if len(a.secret) == 0 {
		return "", errors.New("auth.jwt_secret is not set")
	}

	now := time.Now()
	claims := &Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    a.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Authenticate rejects requests without a valid bearer token with 401.
func (a *Authenticator) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			abort(c, http.StatusUnauthorized, dto.CodeUnauthorized, "Unauthorized")
			return
		}

		id, err := a.ValidateToken(strings.TrimSpace(token))
		if err != nil {
			abort(c, http.StatusUnauthorized, dto.CodeUnauthorized, "Unauthorized")
			return
		}

		c.Set(ContextIdentity, id)
		c.Next()
	}
}

// RequireAdmin must run after Authenticate; non-admins get 403.
func (a *Authenticator) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := GetIdentity(c)
		if id == nil {
			abort(c, http.StatusUnauthorized, dto.CodeUnauthorized, "Unauthorized")
			return
		}
		if !a.IsAdmin(id) {
			abort(c, http.StatusForbidden, dto.CodeForbidden, "Forbidden: Admin access required")
			return
		}
		c.Next()
	}
}

func GetIdentity(c *gin.Context) *Identity {
	v, ok := c.Get(ContextIdentity)
	if !ok {
		return nil
	}
	id, _ := v.(*Identity)
	return id
}

func metaRole(m *RoleMetadata) string {
	if m == nil {
		return ""
	}
	return m.Role
}

func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, dto.Envelope{
		Error:    &dto.ErrorBody{Code: code, Message: message},
		Metadata: dto.Metadata{Timestamp: time.Now().UTC(), RequestID: GetRequestID(c)},
	})
}
