// Package openalex liest Autoren-Metadaten aus der OpenAlex-API.
package openalex

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"science-ecosystem/config"
	"science-ecosystem/httpx"
)

// Author enthält die Felder, die beim Beanspruchen eines Autors gespeichert werden.
type Author struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	ORCID       string `json:"orcid"`
}

// Client fragt OpenAlex über den gemeinsamen HTTP-Client ab.
type Client struct {
	BaseURL string
	Mailto  string
	HTTP    *httpx.Client
	Logger  *zap.Logger
}

// NewClient erstellt einen OpenAlex-Client aus der Konfiguration.
func NewClient(cfg *config.Config, hc *httpx.Client, logger *zap.Logger) *Client {
	return &Client{
		BaseURL: strings.TrimRight(cfg.OpenAlexBaseURL, "/"),
		Mailto:  cfg.OpenAlexMailto,
		HTTP:    hc,
		Logger:  logger,
	}
}

// Author holt einen Autor anhand der bereinigten ID (A123...).
func (c *Client) Author(ctx context.Context, authorID string) (Author, error) {
	u := fmt.Sprintf("%s/authors/%s", c.BaseURL, url.PathEscape(authorID))
	if c.Mailto != "" {
		// polite pool
		u += "?mailto=" + url.QueryEscape(c.Mailto)
	}
	c.Logger.Debug("Rufe OpenAlex Authors API auf.", zap.String("author_id", authorID))

	var a Author
	if err := c.HTTP.GetJSON(ctx, u, nil, &a); err != nil {
		return Author{}, err
	}
	a.DisplayName = strings.TrimSpace(a.DisplayName)
	return a, nil
}
