package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"science-ecosystem/httpx"
	"science-ecosystem/ids"
	"science-ecosystem/logging"
	"science-ecosystem/metrics"
	"science-ecosystem/models"
	"science-ecosystem/providers/unpaywall"
	"science-ecosystem/store"
)

const enrichTimeout = 30 * time.Second

type libraryRequest struct {
	ID    string `json:"id" binding:"required,paper_id"`
	Title string `json:"title" binding:"required"`
	DOI   string `json:"doi"`
}

func setupLibraryRoutes(api *gin.RouterGroup, d Deps) {
	rg := api.Group("/library")

	rg.GET("", func(c *gin.Context) {
		items, err := owner(c, d).Library().List(c.Request.Context())
		if err != nil {
			respondError(c, d, err, "Bibliothek konnte nicht geladen werden")
			return
		}
		c.JSON(http.StatusOK, items)
	})

	// Welche der angezeigten Paper sind bereits gespeichert?
	rg.GET("/saved", func(c *gin.Context) {
		var list []string
		for _, raw := range strings.Split(c.Query("ids"), ",") {
			if id, ok := ids.NormalizePaperID(raw); ok {
				list = append(list, id)
			}
		}
		saved, err := owner(c, d).Library().Has(c.Request.Context(), list)
		if err != nil {
			respondError(c, d, err, "Bibliothek konnte nicht geprüft werden")
			return
		}
		c.JSON(http.StatusOK, saved)
	})

	rg.POST("", func(c *gin.Context) {
		var req libraryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "id and title are required")
			return
		}
		id, _ := ids.NormalizePaperID(req.ID)
		item := models.LibraryItem{ID: id, Title: strings.TrimSpace(req.Title), DOI: unpaywall.NormalizeDOI(req.DOI)}

		lib := owner(c, d).Library()
		stored, created, err := lib.Add(c.Request.Context(), item)
		if err != nil {
			respondError(c, d, err, "Paper konnte nicht gespeichert werden")
			return
		}
		if !created {
			c.JSON(http.StatusOK, stored)
			return
		}
		metrics.LibraryItemsAdded.Inc()
		if stored.DOI != "" && d.Unpaywall != nil {
			log := logging.From(c, d.Logger)
			d.Background(func() { enrichOpenAccess(lib, d.Unpaywall, stored, log) })
		}
		c.JSON(http.StatusCreated, stored)
	})

	rg.DELETE("/:id", func(c *gin.Context) {
		id, ok := ids.NormalizePaperID(c.Param("id"))
		if ok {
			if err := owner(c, d).Library().Delete(c.Request.Context(), id); err != nil {
				respondError(c, d, err, "Paper konnte nicht entfernt werden")
				return
			}
		}
		c.Status(http.StatusNoContent)
	})
}

// enrichOpenAccess trägt den Unpaywall-Status nach. Fehler lassen die
// Felder leer.
func enrichOpenAccess(lib store.Library, oa OpenAccessLookup, item models.LibraryItem, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), enrichTimeout)
	defer cancel()

	res, err := oa.Lookup(ctx, item.DOI)
	if err != nil {
		if httpx.IsNotFound(err) {
			log.Debug("Unpaywall kennt die DOI nicht", zap.String("doi", item.DOI))
		} else {
			log.Warn("Unpaywall lookup failed", zap.String("doi", item.DOI), zap.Error(err))
		}
		return
	}
	if res.OAStatus == "" && res.BestOAURL == "" {
		return
	}
	if err := lib.SetOpenAccess(ctx, item.ID, res.OAStatus, res.BestOAURL); err != nil {
		log.Warn("Open-Access-Status konnte nicht gespeichert werden", zap.String("id", item.ID), zap.Error(err))
	}
}
