package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/tesseract-integrations/tesseract-api/config"
	"github.com/tesseract-integrations/tesseract-api/internal/models"
	"github.com/tesseract-integrations/tesseract-api/pkg/airtable"
	"github.com/tesseract-integrations/tesseract-api/pkg/errors"
	"github.com/tesseract-integrations/tesseract-api/pkg/jwt"
	"github.com/tesseract-integrations/tesseract-api/pkg/logger"
	"github.com/tesseract-integrations/tesseract-api/pkg/metrics"
)

const googleUserinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// googleUserinfo is the subset of the userinfo response we keep
type googleUserinfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// AuthService runs the Google OAuth sign-in flow. The customer store is
// best-effort: a store outage never blocks a sign-in, it only means the
// visit goes unrecorded.
type AuthService struct {
	oauth  *oauth2.Config
	store  *airtable.Client
	tokens *jwt.TokenManager
}

func NewAuthService(cfg config.GoogleOAuthConfig, store *airtable.Client, tokens *jwt.TokenManager) *AuthService {
	return &AuthService{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		store:  store,
		tokens: tokens,
	}
}

// AuthCodeURL returns the Google consent page URL for the given CSRF state.
func (s *AuthService) AuthCodeURL(state string) string {
	return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// HandleCallback exchanges the authorization code, fetches the Google
// profile, upserts the customer record, and mints a session token.
func (s *AuthService) HandleCallback(ctx context.Context, code string) (*models.Customer, string, error) {
	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		metrics.CustomerSignIns.WithLabelValues("error").Inc()
		return nil, "", fmt.Errorf("failed to exchange authorization code: %w: %v", errors.ErrUnauthorized, err)
	}

	info, err := s.fetchUserinfo(ctx, token)
	if err != nil {
		metrics.CustomerSignIns.WithLabelValues("error").Inc()
		return nil, "", err
	}
	if info.ID == "" || info.Email == "" {
		return nil, "", errors.UpstreamPayloadError("google userinfo", fmt.Errorf("missing id or email"))
	}

	customer := s.upsertCustomer(ctx, info)

	sessionToken, err := s.tokens.GenerateToken(customer.ID, customer.GoogleID, customer.Email, customer.Name, customer.ProfilePicture)
	if err != nil {
		return nil, "", errors.InternalError("failed to generate session token")
	}

	metrics.CustomerSignIns.WithLabelValues("success").Inc()
	logger.Info("Customer signed in",
		zap.String("customer_id", customer.ID),
		zap.String("email", customer.Email))

	return customer, sessionToken, nil
}

// ValidateSession parses and verifies a session token.
func (s *AuthService) ValidateSession(token string) (*jwt.SessionClaims, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, fmt.Errorf("invalid session token: %w", errors.ErrUnauthorized)
	}
	return claims, nil
}

func (s *AuthService) fetchUserinfo(ctx context.Context, token *oauth2.Token) (*googleUserinfo, error) {
	client := s.oauth.Client(ctx, token)
	resp, err := client.Get(googleUserinfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch google userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, errors.UpstreamError("google userinfo", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return nil, fmt.Errorf("failed to read google userinfo: %w", err)
	}

	var info googleUserinfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, errors.UpstreamPayloadError("google userinfo", err)
	}
	return &info, nil
}

// upsertCustomer records the sign-in in the customer store. Any store
// failure is logged and the sign-in continues with an in-memory customer.
func (s *AuthService) upsertCustomer(ctx context.Context, info *googleUserinfo) *models.Customer {
	data := models.CustomerData{
		Email:          info.Email,
		Name:           info.Name,
		GoogleID:       info.ID,
		ProfilePicture: info.Picture,
	}

	existing, err := s.store.GetCustomerByGoogleID(ctx, info.ID)
	if err != nil {
		logger.Warn("Customer lookup by google ID failed", zap.Error(err))
	}
	if existing == nil && err == nil {
		// First Google sign-in may belong to a customer created through
		// another channel; match on email before creating a duplicate.
		existing, err = s.store.GetCustomerByEmail(ctx, info.Email)
		if err != nil {
			logger.Warn("Customer lookup by email failed", zap.Error(err))
		}
	}

	if existing != nil {
		loginCount := existing.LoginCount + 1
		if err := s.store.UpdateCustomerLogin(ctx, existing.ID, loginCount, data); err != nil {
			logger.Warn("Failed to update customer login",
				zap.String("customer_id", existing.ID),
				zap.Error(err))
		} else {
			existing.LoginCount = loginCount
			existing.LastLoginAt = time.Now().UTC().Format(time.RFC3339)
		}
		existing.CustomerData = data
		return existing
	}

	created, err := s.store.CreateCustomer(ctx, data)
	if err != nil || created == nil {
		logger.Warn("Failed to create customer record, continuing sign-in", zap.Error(err))
		return &models.Customer{
			CustomerData:       data,
			LoginCount:         1,
			SubscriptionStatus: models.SubscriptionFree,
		}
	}
	return created
}
