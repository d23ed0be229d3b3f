package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"science-ecosystem/ids"
)

type noteRequest struct {
	PaperID string `json:"paper_id" binding:"required,paper_id"`
	Text    string `json:"text" binding:"required"`
}

func setupNoteRoutes(api *gin.RouterGroup, d Deps) {
	rg := api.Group("/notes")

	rg.GET("", func(c *gin.Context) {
		paperID := ""
		if raw := c.Query("paper_id"); raw != "" {
			paperID, _ = ids.NormalizePaperID(raw)
		}
		notes, err := owner(c, d).Notes().List(c.Request.Context(), paperID)
		if err != nil {
			respondError(c, d, err, "Notizen konnten nicht geladen werden")
			return
		}
		c.JSON(http.StatusOK, notes)
	})

	rg.POST("", func(c *gin.Context) {
		var req noteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "paper_id and text are required")
			return
		}
		paperID, _ := ids.NormalizePaperID(req.PaperID)
		note, err := owner(c, d).Notes().Create(c.Request.Context(), paperID, req.Text)
		if err != nil {
			respondError(c, d, err, "Notiz konnte nicht gespeichert werden")
			return
		}
		c.JSON(http.StatusCreated, note)
	})

	rg.PATCH("/:id", func(c *gin.Context) {
		var req struct {
			Text string `json:"text" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
			badRequest(c, "text is required")
			return
		}
		note, err := owner(c, d).Notes().Update(c.Request.Context(), c.Param("id"), req.Text)
		if err != nil {
			respondError(c, d, err, "Notiz konnte nicht aktualisiert werden")
			return
		}
		c.JSON(http.StatusOK, note)
	})

	rg.DELETE("/:id", func(c *gin.Context) {
		if err := owner(c, d).Notes().Delete(c.Request.Context(), c.Param("id")); err != nil {
			respondError(c, d, err, "Notiz konnte nicht gelöscht werden")
			return
		}
		c.Status(http.StatusNoContent)
	})
}
