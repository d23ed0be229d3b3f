package services

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"science-ecosystem/database/dbtest"
	"science-ecosystem/models"
	"science-ecosystem/providers/orcid"
	"science-ecosystem/session"
	"science-ecosystem/store"
)

const testORCID = "0000-0002-1825-0097"

type fakeProvider struct {
	exchanges    int
	gotVerifier  string
	identity     orcid.Identity
	exchangeErr  error
	profile      orcid.Profile
	profileErr   error
	lastRedirect string
}

func (f *fakeProvider) AuthCodeURL(state, verifier string) string {
	f.lastRedirect = "https://orcid.org/oauth/authorize?state=" + url.QueryEscape(state)
	return f.lastRedirect
}

func (f *fakeProvider) Exchange(_ context.Context, _, verifier string) (orcid.Identity, error) {
	f.exchanges++
	f.gotVerifier = verifier
	return f.identity, f.exchangeErr
}

func (f *fakeProvider) Profile(context.Context, string, string) (orcid.Profile, error) {
	return f.profile, f.profileErr
}

type failingSaveStore struct{ *session.MemoryStore }

func (failingSaveStore) Save(context.Context, session.Record) error {
	return errors.New("disk full")
}

func newService(t *testing.T, p *fakeProvider) (*AuthService, *gorm.DB, *session.MemoryStore) {
	t.Helper()
	db := dbtest.Open(t)
	mem := session.NewMemoryStore()
	svc := NewAuthService(session.NewManager(mem, zap.NewNop()), store.NewUsers(db), p, zap.NewNop())
	return svc, db, mem
}

func stateOf(t *testing.T, redirect string) string {
	t.Helper()
	u, err := url.Parse(redirect)
	require.NoError(t, err)
	return u.Query().Get("state")
}

func countUsers(t *testing.T, db *gorm.DB) int64 {
	var n int64
	require.NoError(t, db.Model(&models.User{}).Count(&n).Error)
	return n
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("successful login", func(t *testing.T) {
		p := &fakeProvider{
			identity: orcid.Identity{ORCID: testORCID, Name: "Token Name", AccessToken: "at"},
			profile:  orcid.Profile{Name: "Josiah Carberry", Affiliation: "Brown University"},
		}
		svc, db, _ := newService(t, p)

		attempt, err := svc.Begin(ctx)
		require.NoError(t, err)
		state := stateOf(t, attempt.RedirectURL)
		require.Len(t, state, 64)

		token, user, err := svc.Complete(ctx, attempt.Token, Callback{State: state, Code: "code"})
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, testORCID, user.ORCID)
		assert.Equal(t, "Josiah Carberry", *user.Name)
		assert.Equal(t, "Brown University", *user.Affiliation)
		assert.NotEmpty(t, p.gotVerifier)
		assert.EqualValues(t, 1, countUsers(t, db))

		payload, ok := svc.Sessions.Read(ctx, token)
		require.True(t, ok)
		assert.Equal(t, testORCID, payload.ORCID)

		// the attempt is consumed: replaying the callback fails
		_, _, err = svc.Complete(ctx, attempt.Token, Callback{State: state, Code: "code"})
		assert.ErrorIs(t, err, ErrStateMismatch)
		assert.Equal(t, 1, p.exchanges)
	})

	t.Run("state mismatch is rejected before exchange", func(t *testing.T) {
		p := &fakeProvider{identity: orcid.Identity{ORCID: testORCID}}
		svc, db, _ := newService(t, p)

		attempt, err := svc.Begin(ctx)
		require.NoError(t, err)

		_, _, err = svc.Complete(ctx, attempt.Token, Callback{State: "forged", Code: "code"})
		assert.ErrorIs(t, err, ErrStateMismatch)
		assert.Zero(t, p.exchanges)
		assert.Zero(t, countUsers(t, db))
	})

	t.Run("missing attempt", func(t *testing.T) {
		p := &fakeProvider{identity: orcid.Identity{ORCID: testORCID}}
		svc, _, _ := newService(t, p)

		_, _, err := svc.Complete(ctx, "", Callback{State: "s", Code: "code"})
		assert.ErrorIs(t, err, ErrStateMismatch)
		assert.Zero(t, p.exchanges)
	})

	t.Run("provider error", func(t *testing.T) {
		p := &fakeProvider{}
		svc, _, mem := newService(t, p)

		attempt, err := svc.Begin(ctx)
		require.NoError(t, err)
		_, _, err = svc.Complete(ctx, attempt.Token, Callback{State: stateOf(t, attempt.RedirectURL), Error: "access_denied"})
		assert.ErrorIs(t, err, ErrBadCallback)
		assert.Zero(t, p.exchanges)
		assert.Zero(t, mem.Len())
	})

	t.Run("missing identifier creates no user and no session", func(t *testing.T) {
		p := &fakeProvider{exchangeErr: orcid.ErrMissingIdentifier}
		svc, db, mem := newService(t, p)

		attempt, err := svc.Begin(ctx)
		require.NoError(t, err)
		_, _, err = svc.Complete(ctx, attempt.Token, Callback{State: stateOf(t, attempt.RedirectURL), Code: "code"})
		assert.ErrorIs(t, err, ErrExchangeFailed)
		assert.Zero(t, countUsers(t, db))
		assert.Zero(t, mem.Len())
	})

	t.Run("profile failure falls back to token name", func(t *testing.T) {
		p := &fakeProvider{
			identity:   orcid.Identity{ORCID: testORCID, Name: "Token Name"},
			profileErr: errors.New("timeout"),
		}
		svc, _, _ := newService(t, p)

		attempt, err := svc.Begin(ctx)
		require.NoError(t, err)
		_, user, err := svc.Complete(ctx, attempt.Token, Callback{State: stateOf(t, attempt.RedirectURL), Code: "code"})
		require.NoError(t, err)
		assert.Equal(t, "Token Name", *user.Name)
		assert.Nil(t, user.Affiliation)
	})
}

func TestAuthService_SessionFailure(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	p := &fakeProvider{identity: orcid.Identity{ORCID: testORCID}}

	// login attempts work, the final session cannot be stored
	mem := session.NewMemoryStore()
	ok := NewAuthService(session.NewManager(mem, zap.NewNop()), store.NewUsers(db), p, zap.NewNop())
	attempt, err := ok.Begin(ctx)
	require.NoError(t, err)

	broken := NewAuthService(session.NewManager(failingSaveStore{mem}, zap.NewNop()), store.NewUsers(db), p, zap.NewNop())
	token, _, err := broken.Complete(ctx, attempt.Token, Callback{State: stateOf(t, p.lastRedirect), Code: "code"})
	require.Error(t, err)
	assert.Empty(t, token)
	assert.NotErrorIs(t, err, ErrExchangeFailed)
}
