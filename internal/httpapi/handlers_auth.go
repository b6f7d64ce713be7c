package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"heimwahl/internal/audit"
	"heimwahl/internal/auth"
	"heimwahl/internal/models"
)

var errBadCredentials = errors.New("invalid username or password")

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, errors.New("username and password are required"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var admin models.Admin
	err := a.store.ORM.WithContext(ctx).First(&admin, "username = ?", req.Username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !auth.CheckPassword(admin.PasswordHash, req.Password)) {
		a.audit.Record(ctx, audit.ActionAdminLoginFailed, "admin", req.Username, clientIP(r), nil)
		respondError(w, http.StatusUnauthorized, errBadCredentials)
		return
	}
	if err != nil {
		respondDomainError(w, err)
		return
	}

	token, err := a.jwt.GenerateToken(admin.ID, admin.Username)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	a.audit.Record(ctx, audit.ActionAdminLogin, "admin", admin.ID.String(), clientIP(r), nil)
	respondJSON(w, http.StatusOK, map[string]any{
		"token":     token,
		"username":  admin.Username,
		"expiresIn": int(a.cfg.AdminTokenTTL.Seconds()),
	})
}

func (a *API) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, errors.New("not authenticated"))
		return
	}

	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()
	orm := a.store.ORM.WithContext(ctx)

	var admin models.Admin
	if err := orm.First(&admin, "username = ?", claims.Username).Error; err != nil {
		respondDomainError(w, err)
		return
	}
	if !auth.CheckPassword(admin.PasswordHash, req.CurrentPassword) {
		respondError(w, http.StatusUnauthorized, errors.New("current password is wrong"))
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if err := orm.Model(&admin).Update("password_hash", hash).Error; err != nil {
		respondDomainError(w, err)
		return
	}

	a.audit.Record(ctx, audit.ActionPasswordChanged, "admin", admin.ID.String(), clientIP(r), nil)
	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}
