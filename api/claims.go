package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"science-ecosystem/httpx"
	"science-ecosystem/ids"
	"science-ecosystem/logging"
)

// lookupTimeout begrenzt die OpenAlex-Abfrage beim Beanspruchen.
const lookupTimeout = 10 * time.Second

type claimRequest struct {
	AuthorID string `json:"author_id" binding:"required,openalex_author"`
}

type mergeRequest struct {
	PrimaryAuthorID string `json:"primary_author_id" binding:"required,openalex_author"`
	MergedAuthorID  string `json:"merged_author_id" binding:"required,openalex_author"`
}

func setupClaimRoutes(api *gin.RouterGroup, d Deps) {
	rg := api.Group("/claims")

	rg.GET("", func(c *gin.Context) {
		claims, err := owner(c, d).Claims().List(c.Request.Context())
		if err != nil {
			respondError(c, d, err, "Claims konnten nicht geladen werden")
			return
		}
		c.JSON(http.StatusOK, claims)
	})

	rg.POST("", func(c *gin.Context) {
		var req claimRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "author_id must be an OpenAlex author id")
			return
		}
		authorID, _ := ids.NormalizeAuthorID(req.AuthorID)
		orcidID := c.GetString(orcidKey)

		var displayName *string
		verified := false
		if d.OpenAlex != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), lookupTimeout)
			author, err := d.OpenAlex.Author(ctx, authorID)
			cancel()
			if err != nil {
				log := logging.From(c, d.Logger).With(zap.String("author_id", authorID), zap.Error(err))
				if httpx.IsNotFound(err) {
					log.Debug("OpenAlex kennt den Autor nicht")
				} else {
					log.Warn("OpenAlex author lookup failed")
				}
			} else {
				if author.DisplayName != "" {
					displayName = &author.DisplayName
				}
				verified = author.ORCID != "" && ids.NormalizeORCID(author.ORCID) == orcidID
			}
		}

		claim, created, err := owner(c, d).Claims().Claim(c.Request.Context(), authorID, displayName, verified)
		if err != nil {
			respondError(c, d, err, "Claim konnte nicht gespeichert werden")
			return
		}
		status := http.StatusCreated
		if !created {
			status = http.StatusOK
		}
		c.JSON(status, claim)
	})

	rg.GET("/merge", func(c *gin.Context) {
		merges, err := owner(c, d).Claims().Merges(c.Request.Context())
		if err != nil {
			respondError(c, d, err, "Zusammenführungen konnten nicht geladen werden")
			return
		}
		c.JSON(http.StatusOK, merges)
	})

	rg.POST("/merge", func(c *gin.Context) {
		var req mergeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "primary_author_id and merged_author_id must be OpenAlex author ids")
			return
		}
		primary, _ := ids.NormalizeAuthorID(req.PrimaryAuthorID)
		merged, _ := ids.NormalizeAuthorID(req.MergedAuthorID)
		m, err := owner(c, d).Claims().Merge(c.Request.Context(), primary, merged)
		if err != nil {
			respondError(c, d, err, "Zusammenführung konnte nicht gespeichert werden")
			return
		}
		c.JSON(http.StatusCreated, m)
	})

	rg.DELETE("/merge", func(c *gin.Context) {
		var req mergeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "primary_author_id and merged_author_id must be OpenAlex author ids")
			return
		}
		primary, _ := ids.NormalizeAuthorID(req.PrimaryAuthorID)
		merged, _ := ids.NormalizeAuthorID(req.MergedAuthorID)
		if err := owner(c, d).Claims().Unmerge(c.Request.Context(), primary, merged); err != nil {
			respondError(c, d, err, "Zusammenführung konnte nicht entfernt werden")
			return
		}
		c.Status(http.StatusNoContent)
	})

	rg.DELETE("/:author_id", func(c *gin.Context) {
		authorID, ok := ids.NormalizeAuthorID(c.Param("author_id"))
		if !ok {
			badRequest(c, "author_id must be an OpenAlex author id")
			return
		}
		if err := owner(c, d).Claims().Unclaim(c.Request.Context(), authorID); err != nil {
			respondError(c, d, err, "Claim konnte nicht entfernt werden")
			return
		}
		c.Status(http.StatusNoContent)
	})
}
