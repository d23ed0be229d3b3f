package orcid

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"science-ecosystem/config"
	"science-ecosystem/httpx"
)

func newTestClient(base string) *Client {
	cfg := &config.Config{
		OrcidBase:         base,
		OrcidAPIBase:      base,
		OrcidClientID:     "APP-123",
		OrcidClientSecret: "shh",
		OrcidRedirectURI:  "http://localhost:3000/auth/orcid/callback",
		OrcidScope:        "/authenticate",
	}
	return NewClient(cfg, httpx.New(httpx.DefaultPolicy(), zap.NewNop()), zap.NewNop())
}

func TestClient_AuthCodeURL(t *testing.T) {
	c := newTestClient("https://sandbox.orcid.org")
	verifier := NewVerifier()

	u, err := url.Parse(c.AuthCodeURL("state-1", verifier))
	require.NoError(t, err)

	assert.Equal(t, "sandbox.orcid.org", u.Host)
	assert.Equal(t, "/oauth/authorize", u.Path)
	q := u.Query()
	assert.Equal(t, "APP-123", q.Get("client_id"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "/authenticate", q.Get("scope"))
	assert.Equal(t, "http://localhost:3000/auth/orcid/callback", q.Get("redirect_uri"))
	assert.Equal(t, "state-1", q.Get("state"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	assert.NotEmpty(t, q.Get("code_challenge"))
	assert.NotEqual(t, verifier, q.Get("code_challenge"))
}

func TestClient_Exchange(t *testing.T) {
	t.Run("reads identity from token response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/oauth/token", r.URL.Path)
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
			assert.Equal(t, "the-code", r.PostForm.Get("code"))
			assert.Equal(t, "the-verifier", r.PostForm.Get("code_verifier"))
			assert.Equal(t, "APP-123", r.PostForm.Get("client_id"))
			assert.Equal(t, "shh", r.PostForm.Get("client_secret"))

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":"at","token_type":"bearer","orcid":"0000-0002-1825-0097","name":"Josiah Carberry"}`))
		}))
		defer srv.Close()

		id, err := newTestClient(srv.URL).Exchange(context.Background(), "the-code", "the-verifier")
		require.NoError(t, err)
		assert.Equal(t, Identity{ORCID: "0000-0002-1825-0097", Name: "Josiah Carberry", AccessToken: "at"}, id)
	})

	t.Run("missing orcid", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":"at","token_type":"bearer"}`))
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL).Exchange(context.Background(), "c", "v")
		assert.ErrorIs(t, err, ErrMissingIdentifier)
	})

	t.Run("malformed orcid", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":"at","token_type":"bearer","orcid":"0000-0002-1825-0098"}`))
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL).Exchange(context.Background(), "c", "v")
		assert.ErrorIs(t, err, ErrMissingIdentifier)
	})

	t.Run("token endpoint rejects", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"invalid_grant"}`))
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL).Exchange(context.Background(), "c", "v")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrMissingIdentifier)
	})
}

func TestClient_Profile(t *testing.T) {
	t.Run("given and family name with employment", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v3.0/0000-0002-1825-0097/record", r.URL.Path)
			assert.Equal(t, "Bearer at", r.Header.Get("Authorization"))
			w.Write([]byte(`{
				"person": {"name": {"given-names": {"value": "Josiah"}, "family-name": {"value": "Carberry"}, "credit-name": null}},
				"activities-summary": {"employments": {"affiliation-group": [
					{"summaries": [{"employment-summary": {"organization": {"name": "Brown University"}}}]},
					{"summaries": [{"employment-summary": {"organization": {"name": "Wesleyan"}}}]}
				]}}
			}`))
		}))
		defer srv.Close()

		p, err := newTestClient(srv.URL).Profile(context.Background(), "0000-0002-1825-0097", "at")
		require.NoError(t, err)
		assert.Equal(t, Profile{Name: "Josiah Carberry", Affiliation: "Brown University"}, p)
	})

	t.Run("credit name wins", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"person": {"name": {"given-names": {"value": "Josiah"}, "credit-name": {"value": "J. S. Carberry"}}}}`))
		}))
		defer srv.Close()

		p, err := newTestClient(srv.URL).Profile(context.Background(), "0000-0002-1825-0097", "")
		require.NoError(t, err)
		assert.Equal(t, Profile{Name: "J. S. Carberry"}, p)
	})

	t.Run("private record", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"person": {"name": null}}`))
		}))
		defer srv.Close()

		p, err := newTestClient(srv.URL).Profile(context.Background(), "0000-0002-1825-0097", "")
		require.NoError(t, err)
		assert.Equal(t, Profile{}, p)
	})
}
