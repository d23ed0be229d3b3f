package unpaywall

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"science-ecosystem/config"
	"science-ecosystem/httpx"
)

// ErrNotConfigured wird zurückgegeben, wenn keine UNPAYWALL_EMAIL gesetzt ist.
var ErrNotConfigured = errors.New("unpaywall email ist nicht konfiguriert")

// Response repräsentiert die JSON-Antwort der Unpaywall-API.
type Response struct {
	IsOA           bool   `json:"is_oa"`
	OAStatus       string `json:"oa_status"`
	BestOALocation *struct {
		URL       string `json:"url"`
		URLForPDF string `json:"url_for_pdf"`
	} `json:"best_oa_location"`
}

// Result ist der Open-Access-Status eines Werks.
type Result struct {
	IsOA      bool
	OAStatus  string // gold, green, hybrid, bronze, closed
	BestOAURL string // PDF-Link bevorzugt, sonst Landing Page
}

// Fetcher kapselt die Logik für Unpaywall.
type Fetcher struct {
	BaseURL string
	Email   string
	Client  *httpx.Client
	Logger  *zap.Logger
}

// NewFetcher erstellt einen neuen Unpaywall-Fetcher.
func NewFetcher(cfg *config.Config, client *httpx.Client, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		BaseURL: strings.TrimRight(cfg.UnpaywallBaseURL, "/"),
		Email:   cfg.UnpaywallEmail,
		Client:  client,
		Logger:  logger,
	}
}

// Enabled meldet, ob Abfragen möglich sind.
func (f *Fetcher) Enabled() bool {
	return f != nil && f.Email != ""
}

// Lookup holt den Open-Access-Status via Unpaywall anhand der DOI.
func (f *Fetcher) Lookup(ctx context.Context, doi string) (Result, error) {
	if !f.Enabled() {
		return Result{}, ErrNotConfigured
	}
	doi = NormalizeDOI(doi)
	if doi == "" {
		return Result{}, fmt.Errorf("leere DOI")
	}

	segments := strings.Split(doi, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	u := fmt.Sprintf("%s/%s?email=%s", f.BaseURL, strings.Join(segments, "/"), url.QueryEscape(f.Email))
	log := f.Logger.With(zap.String("doi", doi))
	log.Debug("Rufe Unpaywall API auf.")

	var ur Response
	if err := f.Client.GetJSON(ctx, u, nil, &ur); err != nil {
		return Result{}, err
	}

	res := Result{IsOA: ur.IsOA, OAStatus: ur.OAStatus}
	if loc := ur.BestOALocation; loc != nil {
		res.BestOAURL = loc.URLForPDF
		if res.BestOAURL == "" {
			res.BestOAURL = loc.URL
		}
	}
	if res.BestOAURL != "" {
		log.Info("Open-Access-Link über Unpaywall gefunden.", zap.String("oa_status", res.OAStatus))
	} else {
		log.Debug("Kein Open-Access-Link in Unpaywall-Antwort gefunden.")
	}
	return res, nil
}

// NormalizeDOI entfernt doi.org-Präfixe und Leerraum.
func NormalizeDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	for _, p := range []string{"https://doi.org/", "http://doi.org/", "https://dx.doi.org/", "doi:"} {
		if len(doi) >= len(p) && strings.EqualFold(doi[:len(p)], p) {
			doi = doi[len(p):]
			break
		}
	}
	return strings.TrimSpace(doi)
}
