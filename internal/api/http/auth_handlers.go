package http

import (
	"errors"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/spas-edu/spas-server/internal/auth"
	"github.com/spas-edu/spas-server/internal/directory"
	"github.com/spas-edu/spas-server/internal/rbac"
)

type loginReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// POST /auth/login
func LoginHandler(a *auth.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginReq
		if err := decodeValid(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "username and password required")
			return
		}
		tok, u, err := a.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				writeError(w, http.StatusUnauthorized, "invalid credentials")
				return
			}
			writeError(w, http.StatusInternalServerError, "login failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token": tok,
			"user":         u,
		})
	}
}

type changePasswordReq struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// POST /me/password
func ChangePasswordHandler(users *directory.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := rbac.IdentityFromContext(r.Context())
		var req changePasswordReq
		if err := decodeValid(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "old and new password required, new at least 8 chars")
			return
		}
		u, err := users.GetUser(r.Context(), id.UserID)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unknown user")
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.OldPassword)) != nil {
			writeError(w, http.StatusUnauthorized, "wrong password")
			return
		}
		hash, err := auth.HashPassword(req.NewPassword)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "hash password")
			return
		}
		if err := users.SetPassword(r.Context(), id.UserID, hash); err != nil {
			writeError(w, http.StatusInternalServerError, "update password")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
