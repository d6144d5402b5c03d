package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/spas-edu/spas-server/internal/directory"
	"github.com/spas-edu/spas-server/internal/rbac"
)

var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// UserSource is the slice of the registry login needs.
type UserSource interface {
	GetUserByUsername(ctx context.Context, username string) (directory.User, error)
}

type AuthService struct {
	hmac  []byte
	users UserSource
	ttl   time.Duration
}

func NewAuthService(secret string, users UserSource) *AuthService {
	return &AuthService{hmac: []byte(secret), users: users, ttl: 8 * time.Hour}
}

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Login checks credentials and issues a token. Inactive accounts and
// unknown usernames fail the same way as a wrong password.
func (a *AuthService) Login(ctx context.Context, username, password string) (string, directory.User, error) {
	u, err := a.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return "", directory.User{}, ErrInvalidCredentials
		}
		return "", directory.User{}, err
	}
	if !u.IsActive {
		return "", directory.User{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", directory.User{}, ErrInvalidCredentials
	}
	tok, err := a.IssueJWT(u.ID, u.Role)
	if err != nil {
		return "", directory.User{}, err
	}
	return tok, u, nil
}

func (a *AuthService) IssueJWT(sub, role string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			Issuer:    "spas",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(a.hmac)
}

func (a *AuthService) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return a.hmac, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, err
	}
	c, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("auth: bad token")
	}
	return c, nil
}

// HashPassword is used wherever accounts are created.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(b), err
}

// Middleware parses the bearer token and places the caller's identity
// in the request context.
func (a *AuthService) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				http.Error(w, "missing bearer", http.StatusUnauthorized)
				return
			}
			claims, err := a.Parse(strings.TrimPrefix(h, "Bearer "))
			if err != nil {
				http.Error(w, "bad token", http.StatusUnauthorized)
				return
			}
			ctx := rbac.WithIdentity(r.Context(), rbac.Identity{
				UserID: claims.Subject,
				Role:   claims.Role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
