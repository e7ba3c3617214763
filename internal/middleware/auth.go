package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"civdraft/internal/domain"
	"civdraft/pkg/errors"
	"civdraft/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
)

// ContextKey represents keys used in request context
type ContextKey string

const (
	// ParticipantContextKey is the key for the caller's participant id in context
	ParticipantContextKey ContextKey = "participant"
	// RequestIDContextKey is the key for request ID in context
	RequestIDContextKey ContextKey = "request_id"
)

// Auth creates an authentication middleware. The bearer token is an HMAC
// JWT whose sub claim carries the opaque participant identity; the engine
// never interprets its structure beyond equality.
func Auth(jwtSecret string, logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeErrorResponse(w, errors.NewAuthenticationError("Authorization header is required"), logger)
				return
			}

			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeErrorResponse(w, errors.NewAuthenticationError("Invalid authorization header format"), logger)
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			if token == "" {
				writeErrorResponse(w, errors.NewAuthenticationError("Token is required"), logger)
				return
			}

			participantID, err := validateToken(token, jwtSecret)
			if err != nil {
				logger.WithError(err).Warn("Token validation failed")
				writeErrorResponse(w, errors.NewAuthenticationError("Invalid or expired token"), logger)
				return
			}

			ctx := context.WithValue(r.Context(), ParticipantContextKey, participantID)
			r = r.WithContext(ctx)

			logger.WithField("participant_id", string(participantID)).Debug("Participant authenticated")

			next.ServeHTTP(w, r)
		})
	}
}

// validateToken parses and verifies the HMAC-signed token, returning the
// participant identity from the sub claim.
func validateToken(tokenString, secret string) (domain.ParticipantID, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", fmt.Errorf("token is not valid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("unexpected claims type")
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("token is missing a subject claim")
	}
	return domain.ParticipantID(sub), nil
}

// ParticipantFromContext extracts the authenticated participant id from the
// request context. The second return is false for unauthenticated requests.
func ParticipantFromContext(ctx context.Context) (domain.ParticipantID, bool) {
	id, ok := ctx.Value(ParticipantContextKey).(domain.ParticipantID)
	return id, ok
}

// RequestID creates a middleware that adds a unique request ID to each request
func RequestID(logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := generateRequestID()

			ctx := context.WithValue(r.Context(), RequestIDContextKey, requestID)
			r = r.WithContext(ctx)

			w.Header().Set("X-Request-ID", requestID)

			logger = logger.WithField("request_id", requestID)

			next.ServeHTTP(w, r)
		})
	}
}

// generateRequestID generates a simple request ID
func generateRequestID() string {
	return fmt.Sprintf("%d-%d", time.Now().Unix(), time.Now().Nanosecond())
}

// writeErrorResponse writes an error response to the client
func writeErrorResponse(w http.ResponseWriter, appErr *errors.AppError, logger *logger.Logger) {
	logger.WithError(appErr).Warn("Request rejected")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)

	timestamp := time.Now().UTC().Format(time.RFC3339)
	w.Write([]byte(`{"error":{"type":"` + string(appErr.Type) + `","message":"` + appErr.Message + `","timestamp":"` + timestamp + `"}}`))
}
