package middleware

import (
	"net/http"
	"strings"

	"gym-booking/internal/authz"
	"gym-booking/internal/data/entity"
	"gym-booking/internal/data/repository"
	"gym-booking/pkg/utils"

	"go.uber.org/zap"
)

// AuthSession validates the bearer JWT, then requires its session (jti) to be live.
// A revoked session rejects the request even while the JWT itself has not expired.
func AuthSession(sessionRepo repository.SessionRepository, jwtSecret string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Extract token
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.ResponseUnauthorized(w, "Missing authorization token")
				return
			}

			scheme, token, found := strings.Cut(authHeader, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				utils.ResponseUnauthorized(w, "Invalid token format. Use: Bearer <token>")
				return
			}

			// 1. Verifikasi signature + expiry
			userID, role, sessionToken, err := utils.ParseAccessToken(jwtSecret, strings.TrimSpace(token))
			if err != nil {
				logger.Warn("Invalid access token", zap.Error(err), zap.String("path", r.URL.Path))
				utils.ResponseUnauthorized(w, "Invalid or expired token")
				return
			}

			// 2. Session harus masih aktif
			session, err := sessionRepo.FindValidSession(r.Context(), sessionToken)
			if err != nil {
				logger.Error("Failed to validate session",
					zap.String("session", sessionToken.String()),
					zap.Error(err))
				utils.ResponseInternalError(w, "Internal server error")
				return
			}

			if session == nil || session.UserID != userID {
				logger.Warn("Invalid or expired session", zap.String("session", sessionToken.String()))
				utils.ResponseUnauthorized(w, "Invalid or expired session")
				return
			}

			ctx := utils.SetUserContext(r.Context(), userID, role)
			ctx = utils.SetSessionContext(ctx, sessionToken)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Admin re-reads the caller's profile. The role claim can only short-circuit a
// rejection, it never grants access on its own.
func Admin(userRepo repository.UserRepository, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Get user ID dari context (sudah diset AuthSession)
			userID, ok := utils.GetUserIDFromContext(r.Context())
			if !ok {
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}

			// Nobody is promoted to admin after setup, so a non-admin claim is final
			if role, ok := utils.GetRoleFromContext(r.Context()); ok && role != string(entity.RoleAdmin) {
				utils.ResponseForbidden(w, "Admin access required")
				return
			}

			// 2. Get user dari repo
			user, err := userRepo.FindByID(r.Context(), userID)
			if err != nil {
				logger.Error("Admin check: failed to get user",
					zap.Error(err), zap.String("user_id", userID.String()))
				utils.ResponseInternalError(w, "Internal server error")
				return
			}

			// 3. Check if admin, missing profile fails closed
			p := authz.Principal{UserID: userID}
			if user != nil {
				p.Role = user.Role
			}
			if err := authz.RequireAdmin(p); err != nil {
				logger.Warn("Admin check: non-admin access attempt",
					zap.String("user_id", userID.String()),
					zap.String("path", r.URL.Path))
				utils.ResponseForbidden(w, "Admin access required")
				return
			}

			// 4. Lanjut ke handler
			next.ServeHTTP(w, r)
		})
	}
}
