// Package auth answers one question: is the caller allowed to manage listings.
package auth

import (
	"crypto/subtle"

	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"
)

const tokenHeader = "X-Admin-Token"

// Capability reports whether a caller-presented token grants admin access.
// Живой проект может подставить сюда свой identity-сервис, stateless-проверка
// токена - это ровно то что нужно для админки.
type Capability interface {
	Privileged(token string) bool
}

// TokenCapability compares the presented token with a single configured one.
type TokenCapability struct {
	token string
}

func NewTokenCapability(cfg *config.Config) *TokenCapability {
	token := cfg.GetString("ADMIN_TOKEN")
	if token == "" {
		zlog.Logger.Warn().Msg("ADMIN_TOKEN is empty, admin endpoints are effectively disabled")
	}
	return &TokenCapability{token: token}
}

func (t *TokenCapability) Privileged(token string) bool {
	if t.token == "" || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(t.token), []byte(token)) == 1
}

// FromRequest extracts the caller's token from the request headers.
func FromRequest(ctx *ginext.Context) string {
	return ctx.Request.Header.Get(tokenHeader)
}

// RequireAdmin rejects unprivileged callers before the handler runs.
func RequireAdmin(cap Capability, next func(ctx *ginext.Context)) func(ctx *ginext.Context) {
	return func(ctx *ginext.Context) {
		if !cap.Privileged(FromRequest(ctx)) {
			ctx.JSON(403, map[string]string{"error": "admin token required"})
			return
		}
		next(ctx)
	}
}
