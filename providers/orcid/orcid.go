// Package orcid spricht mit ORCID: OAuth-Login (Authorization Code + PKCE)
// und das öffentliche Record-API für Name und Affiliation.
package orcid

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"science-ecosystem/config"
	"science-ecosystem/httpx"
	"science-ecosystem/ids"
)

// ErrMissingIdentifier wird zurückgegeben, wenn die Token-Antwort keine
// gültige ORCID iD enthält.
var ErrMissingIdentifier = errors.New("token response carries no valid orcid")

// Identity ist das Ergebnis eines erfolgreichen Token-Austauschs.
type Identity struct {
	ORCID       string
	Name        string // aus der Token-Antwort, kann leer sein
	AccessToken string
}

// Profile enthält die Anzeige-Daten aus dem ORCID-Record.
type Profile struct {
	Name        string
	Affiliation string
}

// Client kapselt OAuth-Konfiguration und API-Zugriff.
type Client struct {
	oauth   oauth2.Config
	apiBase string
	http    *httpx.Client
	logger  *zap.Logger
}

// NewClient erstellt einen ORCID-Client aus der Konfiguration.
func NewClient(cfg *config.Config, hc *httpx.Client, logger *zap.Logger) *Client {
	base := strings.TrimRight(cfg.OrcidBase, "/")
	return &Client{
		oauth: oauth2.Config{
			ClientID:     cfg.OrcidClientID,
			ClientSecret: cfg.OrcidClientSecret,
			RedirectURL:  cfg.OrcidRedirectURI,
			Scopes:       []string{cfg.OrcidScope},
			Endpoint: oauth2.Endpoint{
				AuthURL:   base + "/oauth/authorize",
				TokenURL:  base + "/oauth/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		apiBase: strings.TrimRight(cfg.OrcidAPIBase, "/"),
		http:    hc,
		logger:  logger,
	}
}

// NewVerifier erzeugt einen PKCE-Verifier.
func NewVerifier() string {
	return oauth2.GenerateVerifier()
}

// AuthCodeURL baut die Redirect-URL zur ORCID-Anmeldeseite.
func (c *Client) AuthCodeURL(state, verifier string) string {
	return c.oauth.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))
}

// Exchange tauscht den Autorisierungscode gegen ein Token und liest die
// ORCID iD aus der Token-Antwort.
func (c *Client) Exchange(ctx context.Context, code, verifier string) (Identity, error) {
	if _, ok := ctx.Value(oauth2.HTTPClient).(*http.Client); !ok {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http.HTTP)
	}

	tok, err := c.oauth.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return Identity{}, fmt.Errorf("orcid token exchange: %w", err)
	}

	raw, _ := tok.Extra("orcid").(string)
	orcidID := ids.NormalizeORCID(raw)
	if !ids.ValidORCID(orcidID) {
		return Identity{}, ErrMissingIdentifier
	}
	name, _ := tok.Extra("name").(string)

	return Identity{
		ORCID:       orcidID,
		Name:        strings.TrimSpace(name),
		AccessToken: tok.AccessToken,
	}, nil
}

type valueField struct {
	Value string `json:"value"`
}

type recordResponse struct {
	Person struct {
		Name *struct {
			GivenNames *valueField `json:"given-names"`
			FamilyName *valueField `json:"family-name"`
			CreditName *valueField `json:"credit-name"`
		} `json:"name"`
	} `json:"person"`
	ActivitiesSummary struct {
		Employments struct {
			AffiliationGroup []struct {
				Summaries []struct {
					EmploymentSummary struct {
						Organization struct {
							Name string `json:"name"`
						} `json:"organization"`
					} `json:"employment-summary"`
				} `json:"summaries"`
			} `json:"affiliation-group"`
		} `json:"employments"`
	} `json:"activities-summary"`
}

// Profile holt Name und erste Affiliation aus dem öffentlichen Record.
func (c *Client) Profile(ctx context.Context, orcidID, accessToken string) (Profile, error) {
	url := fmt.Sprintf("%s/v3.0/%s/record", c.apiBase, orcidID)
	log := c.logger.With(zap.String("orcid", orcidID))
	log.Debug("Rufe ORCID Record API auf.")

	header := http.Header{}
	if accessToken != "" {
		header.Set("Authorization", "Bearer "+accessToken)
	}

	var rec recordResponse
	if err := c.http.GetJSON(ctx, url, header, &rec); err != nil {
		return Profile{}, err
	}
	return rec.profile(), nil
}

func (r *recordResponse) profile() Profile {
	var p Profile
	if n := r.Person.Name; n != nil {
		switch {
		case n.CreditName != nil && strings.TrimSpace(n.CreditName.Value) != "":
			p.Name = strings.TrimSpace(n.CreditName.Value)
		default:
			var parts []string
			if n.GivenNames != nil && n.GivenNames.Value != "" {
				parts = append(parts, strings.TrimSpace(n.GivenNames.Value))
			}
			if n.FamilyName != nil && n.FamilyName.Value != "" {
				parts = append(parts, strings.TrimSpace(n.FamilyName.Value))
			}
			p.Name = strings.Join(parts, " ")
		}
	}

	for _, g := range r.ActivitiesSummary.Employments.AffiliationGroup {
		for _, s := range g.Summaries {
			if org := strings.TrimSpace(s.EmploymentSummary.Organization.Name); org != "" {
				p.Affiliation = org
				return p
			}
		}
	}
	return p
}
