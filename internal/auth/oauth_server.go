package auth

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/database"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/go-oauth2/oauth2/v4"
	oautherrors "github.com/go-oauth2/oauth2/v4/errors"
	"github.com/go-oauth2/oauth2/v4/manage"
	"github.com/go-oauth2/oauth2/v4/server"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// DefaultTokenTTL is used when no positive lifetime is configured
const DefaultTokenTTL = 24 * time.Hour

type OAuthService struct {
	server *server.Server
	db     *gorm.DB
	tokens *GormTokenStore
}

func NewOAuthService(db *gorm.DB, jwtSecret string, tokenTTL time.Duration) *OAuthService {
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}

	manager := manage.NewDefaultManager()
	manager.SetPasswordTokenCfg(&manage.Config{AccessTokenExp: tokenTTL})

	// Use JWT for access tokens
	manager.MapAccessGenerate(NewCustomJWTAccessGenerate([]byte(jwtSecret), jwt.SigningMethodHS512, db))

	tokenStore := NewGormTokenStore(db)
	manager.MustTokenStorage(tokenStore, nil)
	manager.MapClientStorage(NewGormClientStore(db))

	srv := server.NewDefaultServer(manager)
	srv.SetAllowedGrantType(oauth2.PasswordCredentials)
	srv.SetClientInfoHandler(server.ClientFormHandler)
	srv.SetPasswordAuthorizationHandler(passwordAuthorizationHandler(db))

	return &OAuthService{
		server: srv,
		db:     db,
		tokens: tokenStore,
	}
}

func (o *OAuthService) GetServer() *server.Server {
	return o.server
}

// passwordAuthorizationHandler resolves the password grant. The username
// form field carries the account email.
func passwordAuthorizationHandler(db *gorm.DB) server.PasswordAuthorizationHandler {
	return func(ctx context.Context, clientID, username, password string) (string, error) {
		var user models.User
		email := strings.ToLower(strings.TrimSpace(username))
		if err := db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
			return "", oautherrors.ErrInvalidGrant
		}
		if !user.CheckPassword(password) {
			return "", oautherrors.ErrInvalidGrant
		}
		return strconv.FormatUint(uint64(user.ID), 10), nil
	}
}

// IssueToken creates an access token for an already authenticated user on
// behalf of the web client.
func (o *OAuthService) IssueToken(ctx context.Context, user *models.User) (string, error) {
	ti, err := o.server.Manager.GenerateAccessToken(ctx, oauth2.PasswordCredentials, &oauth2.TokenGenerateRequest{
		ClientID: database.WebClientID,
		UserID:   strconv.FormatUint(uint64(user.ID), 10),
		Scope:    "read write",
	})
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}
	return ti.GetAccess(), nil
}

// RevokeToken deletes the stored token so it is rejected from now on
func (o *OAuthService) RevokeToken(ctx context.Context, access string) error {
	return o.tokens.RemoveByAccess(ctx, access)
}

// IsActive reports whether the access token was issued here and is neither
// revoked nor expired.
func (o *OAuthService) IsActive(ctx context.Context, access string) (bool, error) {
	return o.tokens.IsActive(ctx, access)
}

// PurgeExpiredTokens drops tokens past their expiry
func (o *OAuthService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	return o.tokens.PurgeExpired(ctx)
}

// HandleToken serves the standard OAuth2 password grant
// @Summary Token Endpoint
// @Description Obtain an access token with the OAuth2 password grant (username is the account email)
// @Tags auth
// @Accept application/x-www-form-urlencoded
// @Produce json
// @Param grant_type formData string true "Must be password"
// @Param client_id formData string true "Client ID"
// @Param client_secret formData string false "Client Secret, empty for public clients"
// @Param username formData string true "Account email"
// @Param password formData string true "Account password"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/auth/token [post]
func (o *OAuthService) HandleToken(c *gin.Context) {
	if err := o.server.HandleTokenRequest(c.Writer, c.Request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}
