package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	config "github.com/postpilot/autopost/configs"
	"github.com/postpilot/autopost/internal/models"
	"github.com/postpilot/autopost/internal/repository"
	"github.com/postpilot/autopost/internal/transfer"
	"golang.org/x/oauth2"
)

const facebookAuthURL = "https://www.facebook.com/v21.0/dialog/oauth"

// Long-lived tokens usually come back with an expires_in; when the provider
// omits it, fall back to the documented 60 days.
const fallbackTokenLifetime = 60 * 24 * time.Hour

type ConnectService interface {
	GetAuthURL(ctx context.Context, projectID int64, provider string) (string, error)
	// Callback finishes the connect flow: exchange the code, discover the
	// reachable business accounts and persist one social account per
	// discovery. Nothing is persisted when no business account is found.
	Callback(ctx context.Context, state, code string) error
	RefreshExpiring(ctx context.Context) error
}

type connectService struct {
	cfg    config.Config
	db     *sql.DB
	sa     repository.SocialAccountRepository
	creds  *CredentialStore
	client *http.Client
}

func NewConnectService(cfg config.Config, db *sql.DB, sa repository.SocialAccountRepository, creds *CredentialStore) ConnectService {
	return &connectService{
		cfg:    cfg,
		db:     db,
		sa:     sa,
		creds:  creds,
		client: http.DefaultClient,
	}
}

func (s *connectService) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.cfg.FacebookClientID,
		ClientSecret: s.cfg.FacebookClientSecret,
		RedirectURL:  s.cfg.FacebookRedirectURI,
		Scopes: []string{
			"pages_show_list",
			"pages_read_engagement",
			"instagram_basic",
			"instagram_content_publish",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  facebookAuthURL,
			TokenURL: fmt.Sprintf("%s/oauth/access_token", s.cfg.GraphAPIBaseURL),
		},
	}
}

func (s *connectService) GetAuthURL(ctx context.Context, projectID int64, provider string) (string, error) {
	if provider != "instagram" {
		return "", fmt.Errorf("unsupported provider %q", provider)
	}

	state, err := stateToken(s.cfg.SecretKey, projectID, provider)
	if err != nil {
		return "", err
	}

	return s.oauthConfig().AuthCodeURL(state), nil
}

func (s *connectService) Callback(ctx context.Context, state, code string) error {
	if code == "" {
		err := errors.New("code or state is empty")
		slog.Info(err.Error())
		return err
	}

	projectID, err := projectFromState(s.cfg.SecretKey, state)
	if err != nil {
		return fmt.Errorf("invalid state: %w", err)
	}

	shortToken, err := s.oauthConfig().Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	longToken, err := s.exchangeLongLived(ctx, shortToken.AccessToken)
	if err != nil {
		return fmt.Errorf("failed to get long-lived token: %w", err)
	}

	pages, err := s.discoverAccounts(ctx, longToken.AccessToken)
	if err != nil {
		return err
	}

	expiresAt := time.Now().Add(fallbackTokenLifetime)
	if longToken.ExpiresIn > 0 {
		expiresAt = time.Now().Add(time.Duration(longToken.ExpiresIn) * time.Second)
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	for _, page := range pages {
		sealed, err := s.creds.Seal(&Credentials{
			BusinessAccountID: page.InstagramBusinessAccount.ID,
			Username:          page.InstagramBusinessAccount.Username,
			PageID:            page.ID,
			AccessToken:       page.AccessToken,
		})
		if err != nil {
			return err
		}

		account := models.SocialAccount{
			ProjectID:       projectID,
			Provider:        "instagram",
			AccountUsername: page.InstagramBusinessAccount.Username,
			Credentials:     sealed,
			TokenExpiresAt:  expiresAt,
		}
		if _, err := s.sa.Create(ctx, tx, &account); err != nil {
			return fmt.Errorf("error saving social account: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *connectService) exchangeLongLived(ctx context.Context, shortToken string) (*transfer.FacebookToken, error) {
	reqURL := fmt.Sprintf(
		"%s/oauth/access_token?grant_type=fb_exchange_token&client_id=%s&client_secret=%s&fb_exchange_token=%s",
		s.cfg.GraphAPIBaseURL,
		url.QueryEscape(s.cfg.FacebookClientID),
		url.QueryEscape(s.cfg.FacebookClientSecret),
		url.QueryEscape(shortToken),
	)

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("error response from provider: %s (status code: %d)", body, resp.StatusCode)
	}

	var token transfer.FacebookToken
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	return &token, nil
}

// discoverAccounts lists the user's pages and keeps those with a linked
// Instagram business account. An empty result fails the connect.
func (s *connectService) discoverAccounts(ctx context.Context, accessToken string) ([]transfer.FacebookPage, error) {
	reqURL := fmt.Sprintf(
		"%s/me/accounts?fields=instagram_business_account%%7Bid,username%%7D,access_token,name&access_token=%s",
		s.cfg.GraphAPIBaseURL,
		url.QueryEscape(accessToken),
	)

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	var list transfer.FacebookPageList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to decode accounts response: %w", err)
	}
	if list.Error != nil {
		return nil, list.Error
	}

	var discovered []transfer.FacebookPage
	for _, page := range list.Data {
		if page.InstagramBusinessAccount != nil && page.InstagramBusinessAccount.ID != "" {
			discovered = append(discovered, page)
		}
	}
	if len(discovered) == 0 {
		return nil, errors.New("no instagram business account reachable with this login; connect a business account to a facebook page first")
	}
	return discovered, nil
}

// RefreshExpiring re-exchanges the stored token of every account close to
// expiry and re-seals the credential blob.
func (s *connectService) RefreshExpiring(ctx context.Context) error {
	accounts, err := s.sa.ListExpiring(ctx, time.Now().Add(30*time.Minute))
	if err != nil {
		return err
	}

	for _, account := range accounts {
		if err := s.refreshAccount(ctx, account); err != nil {
			slog.Info("unable to refresh token", "account_id", account.ID, "error", err.Error())
		}
	}
	return nil
}

func (s *connectService) refreshAccount(ctx context.Context, account *models.SocialAccount) error {
	creds, err := s.creds.Open(account.Credentials)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCredential, err)
	}

	token, err := s.exchangeLongLived(ctx, creds.AccessToken)
	if err != nil {
		return err
	}

	creds.AccessToken = token.AccessToken
	sealed, err := s.creds.Seal(creds)
	if err != nil {
		return err
	}

	expiresAt := time.Now().Add(fallbackTokenLifetime)
	if token.ExpiresIn > 0 {
		expiresAt = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	}

	return s.sa.SetCredentials(ctx, account.ID, sealed, expiresAt)
}
