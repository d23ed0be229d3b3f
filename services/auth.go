package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"science-ecosystem/metrics"
	"science-ecosystem/models"
	"science-ecosystem/providers/orcid"
	"science-ecosystem/session"
	"science-ecosystem/store"
)

// LoginAttemptTTL begrenzt, wie lange ein Callback nach dem Login-Start gültig ist.
const LoginAttemptTTL = 10 * time.Minute

var (
	ErrBadCallback    = errors.New("invalid oauth callback")
	ErrStateMismatch  = errors.New("oauth state mismatch")
	ErrExchangeFailed = errors.New("orcid token exchange failed")
)

// IdentityProvider ist der Teil des ORCID-Clients, den der Login braucht.
type IdentityProvider interface {
	AuthCodeURL(state, verifier string) string
	Exchange(ctx context.Context, code, verifier string) (orcid.Identity, error)
	Profile(ctx context.Context, orcidID, accessToken string) (orcid.Profile, error)
}

// LoginAttempt ist ein begonnener Login: Token des Zwischenzustands und
// die Weiterleitung zu ORCID.
type LoginAttempt struct {
	Token       string
	RedirectURL string
}

// Callback enthält die Query-Parameter der ORCID-Rückleitung.
type Callback struct {
	State string
	Code  string
	Error string
}

// AuthService führt den ORCID-Login durch: ANONYMOUS -> AWAITING_CALLBACK ->
// AUTHENTICATED oder FAILED.
type AuthService struct {
	Sessions *session.Manager
	Users    *store.Users
	Provider IdentityProvider
	Logger   *zap.Logger
}

// NewAuthService erstellt eine neue Instanz des AuthService.
func NewAuthService(sessions *session.Manager, users *store.Users, provider IdentityProvider, logger *zap.Logger) *AuthService {
	return &AuthService{Sessions: sessions, Users: users, Provider: provider, Logger: logger}
}

// Begin erzeugt state und PKCE-Verifier, legt beide als kurzlebige Sitzung
// ab und liefert die Redirect-URL.
func (s *AuthService) Begin(ctx context.Context) (LoginAttempt, error) {
	state, err := session.NewToken()
	if err != nil {
		return LoginAttempt{}, err
	}
	verifier := orcid.NewVerifier()

	token, err := s.Sessions.CreateWithTTL(ctx, session.Payload{State: state, Verifier: verifier}, LoginAttemptTTL)
	if err != nil {
		return LoginAttempt{}, fmt.Errorf("store login attempt: %w", err)
	}
	return LoginAttempt{Token: token, RedirectURL: s.Provider.AuthCodeURL(state, verifier)}, nil
}

// Complete prüft den Callback, tauscht den Code, legt den Nutzer an und
// gibt das Token der neuen Sitzung zurück. Der Login-Versuch wird in jedem
// Fall verbraucht.
func (s *AuthService) Complete(ctx context.Context, attemptToken string, cb Callback) (string, models.User, error) {
	log := s.Logger

	attempt, ok := s.Sessions.Read(ctx, attemptToken)
	if err := s.Sessions.Destroy(ctx, attemptToken); err != nil {
		log.Warn("Login-Versuch konnte nicht gelöscht werden", zap.Error(err))
	}

	if cb.Error != "" || cb.Code == "" {
		metrics.Logins.WithLabelValues("bad_callback").Inc()
		log.Info("ORCID callback without code", zap.String("provider_error", cb.Error))
		return "", models.User{}, ErrBadCallback
	}
	if !ok || attempt.State == "" || subtle.ConstantTimeCompare([]byte(attempt.State), []byte(cb.State)) != 1 {
		metrics.Logins.WithLabelValues("state_mismatch").Inc()
		log.Warn("ORCID callback state mismatch")
		return "", models.User{}, ErrStateMismatch
	}

	id, err := s.Provider.Exchange(ctx, cb.Code, attempt.Verifier)
	if err != nil {
		metrics.Logins.WithLabelValues("exchange_failed").Inc()
		log.Error("ORCID token exchange failed", zap.Error(err))
		return "", models.User{}, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}
	log = log.With(zap.String("orcid", id.ORCID))

	name, affiliation := s.enrich(ctx, id)
	user, err := s.Users.Upsert(ctx, id.ORCID, name, affiliation)
	if err != nil {
		metrics.Logins.WithLabelValues("error").Inc()
		log.Error("Nutzer konnte nicht gespeichert werden", zap.Error(err))
		return "", models.User{}, fmt.Errorf("save user: %w", err)
	}

	token, err := s.Sessions.Create(ctx, session.Payload{ORCID: id.ORCID})
	if err != nil {
		metrics.Logins.WithLabelValues("error").Inc()
		log.Error("Sitzung konnte nicht erstellt werden", zap.Error(err))
		return "", models.User{}, err
	}

	metrics.Logins.WithLabelValues("success").Inc()
	log.Info("User signed in")
	return token, user, nil
}

// enrich holt Name und Affiliation aus dem ORCID-Record. Fehler werden nur
// protokolliert; der Name aus der Token-Antwort dient als Rückfall.
func (s *AuthService) enrich(ctx context.Context, id orcid.Identity) (name, affiliation *string) {
	profile, err := s.Provider.Profile(ctx, id.ORCID, id.AccessToken)
	if err != nil {
		s.Logger.Warn("ORCID profile lookup failed", zap.String("orcid", id.ORCID), zap.Error(err))
	}
	if profile.Name != "" {
		name = &profile.Name
	} else if id.Name != "" {
		name = &id.Name
	}
	if profile.Affiliation != "" {
		affiliation = &profile.Affiliation
	}
	return name, affiliation
}

// Logout beendet die Sitzung; unbekannte Tokens sind kein Fehler.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.Sessions.Destroy(ctx, token)
}
