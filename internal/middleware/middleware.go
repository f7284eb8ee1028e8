package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Context keys set by the auth middleware
const (
	ContextUserID      = "userID"
	ContextUserRole    = "userRole"
	ContextClientID    = "clientID"
	ContextAccessToken = "accessToken"
)

// TokenChecker reports whether an access token is still known to the server.
// Logged out tokens keep a valid signature, so the signature alone is not enough.
type TokenChecker interface {
	IsActive(ctx context.Context, access string) (bool, error)
}

// Accepted Authorization schemes. "Token" is what the web frontend sends.
var authSchemes = []string{"Bearer ", "Token "}

// OAuth2Auth rejects requests without a valid, unrevoked access token
func OAuth2Auth(jwtSecret []byte, tokens TokenChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			respondUnauthorized(c, "authorization_required",
				"Missing Authorization header. A valid token is required.")
			return
		}
		authenticate(c, authHeader, jwtSecret, tokens)
	}
}

// OptionalAuth lets anonymous requests through and authenticates the rest.
// A present but invalid token is still rejected.
func OptionalAuth(jwtSecret []byte, tokens TokenChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}
		authenticate(c, authHeader, jwtSecret, tokens)
	}
}

func authenticate(c *gin.Context, authHeader string, jwtSecret []byte, tokens TokenChecker) {
	tokenString, ok := extractToken(authHeader)
	if !ok {
		respondUnauthorized(c, "invalid_request",
			"Authorization header must use the Bearer or Token scheme. Format: 'Token <token>'")
		return
	}
	if tokenString == "" {
		respondUnauthorized(c, "invalid_token", "Token is empty")
		return
	}

	claims, err := parseAndValidateJWT(tokenString, jwtSecret)
	if err != nil {
		respondUnauthorized(c, "invalid_token", err.Error())
		return
	}

	if tokens != nil {
		active, err := tokens.IsActive(c.Request.Context(), tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				models.NewAPIError(models.ErrInternalServer, "Failed to verify token"))
			return
		}
		if !active {
			respondUnauthorized(c, "invalid_token", "Token has been revoked")
			return
		}
	}

	if err := extractAndSetClaims(c, claims); err != nil {
		respondUnauthorized(c, "invalid_token", err.Error())
		return
	}
	c.Set(ContextAccessToken, tokenString)

	c.Next()
}

func extractToken(header string) (string, bool) {
	for _, scheme := range authSchemes {
		if strings.HasPrefix(header, scheme) {
			return strings.TrimSpace(strings.TrimPrefix(header, scheme)), true
		}
	}
	return "", false
}

// respondUnauthorized aborts with the API error format and the RFC 6750 code in details
func respondUnauthorized(c *gin.Context, errorCode, description string) {
	c.Header("WWW-Authenticate", fmt.Sprintf(`Bearer error="%s"`, errorCode))
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.NewAPIError(models.ErrUnauthorized, description,
		map[string]interface{}{"error": errorCode}))
}

// parseJWTToken validates and parses a JWT token using HMAC signing method
func parseJWTToken(tokenString string, jwtSecret []byte) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Pin HMAC so a forged "alg" header cannot switch verification
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v. Expected HMAC", token.Header["alg"])
		}
		return jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("token parsing failed: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("token is invalid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims format")
	}
	return claims, nil
}

// parseAndValidateJWT parses the JWT and checks the time based claims
func parseAndValidateJWT(tokenString string, jwtSecret []byte) (jwt.MapClaims, error) {
	claims, err := parseJWTToken(tokenString, jwtSecret)
	if err != nil {
		return nil, err
	}

	now := time.Now()

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("invalid exp claim: %w", err)
	}
	if exp == nil {
		return nil, fmt.Errorf("token missing required 'exp' claim")
	}
	if exp.Before(now) {
		return nil, fmt.Errorf("token has expired")
	}

	nbf, err := claims.GetNotBefore()
	if err != nil {
		return nil, fmt.Errorf("invalid nbf claim: %w", err)
	}
	if nbf != nil && nbf.After(now) {
		return nil, fmt.Errorf("token not yet valid")
	}

	iat, err := claims.GetIssuedAt()
	if err != nil {
		return nil, fmt.Errorf("invalid iat claim: %w", err)
	}
	if iat != nil && iat.After(now.Add(time.Minute)) {
		return nil, fmt.Errorf("token issued in the future")
	}

	return claims, nil
}

// extractAndSetClaims copies the user identity from the claims into the Gin context
func extractAndSetClaims(c *gin.Context, claims jwt.MapClaims) error {
	userID, err := extractUserID(claims)
	if err != nil {
		return err
	}
	if userID == 0 {
		return fmt.Errorf("invalid user identifier: cannot be zero")
	}

	role, err := extractRole(claims)
	if err != nil {
		return err
	}

	c.Set(ContextUserID, userID)
	c.Set(ContextUserRole, role)

	if aud, ok := claims["aud"].(string); ok && aud != "" {
		c.Set(ContextClientID, aud)
	} else if audArray, ok := claims["aud"].([]interface{}); ok && len(audArray) > 0 {
		if firstAud, ok := audArray[0].(string); ok && firstAud != "" {
			c.Set(ContextClientID, firstAud)
		}
	}
	return nil
}

// extractUserID reads the "uid" claim, either a numeric string or a number
func extractUserID(claims jwt.MapClaims) (uint, error) {
	if uid, ok := claims["uid"].(string); ok && uid != "" {
		parsedID, err := strconv.ParseUint(uid, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid uid claim format: must be a numeric string, got: %s", uid)
		}
		return uint(parsedID), nil
	}

	if uid, ok := claims["uid"].(float64); ok {
		if uid <= 0 {
			return 0, fmt.Errorf("invalid uid claim: must be positive, got: %f", uid)
		}
		return uint(uid), nil
	}

	return 0, fmt.Errorf("token missing required 'uid' claim. This token is not valid for this API")
}

// extractRole requires an explicit, known role claim
func extractRole(claims jwt.MapClaims) (string, error) {
	role, ok := claims["role"].(string)
	if !ok || role == "" {
		return "", fmt.Errorf("token missing required 'role' claim. Tokens must explicitly specify user roles")
	}

	allowedRoles := map[string]bool{
		models.RoleAdmin: true,
		models.RoleUser:  true,
	}
	if !allowedRoles[role] {
		return "", fmt.Errorf("invalid role '%s'. Allowed roles: admin, user", role)
	}
	return role, nil
}

// CurrentUserID returns the authenticated user id, or 0 and false for anonymous requests
func CurrentUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}

// CurrentUserRole returns the role claim of the authenticated user
func CurrentUserRole(c *gin.Context) string {
	return c.GetString(ContextUserRole)
}

// AccessToken returns the raw token the request was authenticated with
func AccessToken(c *gin.Context) string {
	return c.GetString(ContextAccessToken)
}
