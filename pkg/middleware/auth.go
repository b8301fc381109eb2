package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/simpletech310/CommonGround-sub005/pkg/config"
	"github.com/simpletech310/CommonGround-sub005/pkg/models"
	"github.com/simpletech310/CommonGround-sub005/pkg/utils"

	"github.com/golang-jwt/jwt/v5"
)

// ContextKey is the type for request-context keys set by this package
type ContextKey string

const (
	ViewerContextKey ContextKey = "viewer"
)

// AuthMiddleware verifies the session token minted by the external auth
// service and places the resulting Viewer (id, timezone, case role) into the
// request context. The core trusts these claims as given.
func AuthMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.WriteUnauthorizedResponse(w, "Missing authorization header")
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				utils.WriteUnauthorizedResponse(w, "Invalid authorization header format")
				return
			}

			token, err := jwt.ParseWithClaims(tokenString, &models.TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return []byte(cfg.JWTSecret), nil
			})
			if err != nil {
				utils.WriteUnauthorizedResponse(w, "Invalid token: "+err.Error())
				return
			}
			if !token.Valid {
				utils.WriteUnauthorizedResponse(w, "Invalid token")
				return
			}

			claims, ok := token.Claims.(*models.TokenClaims)
			if !ok {
				utils.WriteUnauthorizedResponse(w, "Invalid token claims")
				return
			}

			// Only access tokens grant API access
			if claims.Type != "access" {
				utils.WriteUnauthorizedResponse(w, "Invalid token type")
				return
			}
			if time.Now().Unix() > claims.Exp {
				utils.WriteUnauthorizedResponse(w, "Token expired")
				return
			}

			viewer := &models.Viewer{
				ID:       claims.UserID,
				Timezone: claims.Timezone,
				CaseRole: claims.CaseRole,
			}

			ctx := context.WithValue(r.Context(), ViewerContextKey, viewer)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetViewerFromContext retrieves the viewer set by AuthMiddleware
func GetViewerFromContext(ctx context.Context) (*models.Viewer, bool) {
	viewer, ok := ctx.Value(ViewerContextKey).(*models.Viewer)
	return viewer, ok
}

// RequireViewer returns the authenticated viewer or an error
func RequireViewer(ctx context.Context) (*models.Viewer, error) {
	viewer, ok := GetViewerFromContext(ctx)
	if !ok || viewer == nil {
		return nil, fmt.Errorf("viewer not authenticated")
	}
	return viewer, nil
}
