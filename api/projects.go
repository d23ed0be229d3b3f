package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"science-ecosystem/store"
)

type projectRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Status      string `json:"status" binding:"omitempty,oneof=active archived"`
}

type projectPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status" binding:"omitempty,oneof=active archived"`
}

func setupProjectRoutes(api *gin.RouterGroup, d Deps) {
	rg := api.Group("/projects")

	rg.GET("", func(c *gin.Context) {
		projects, err := owner(c, d).Projects().List(c.Request.Context())
		if err != nil {
			respondError(c, d, err, "Projekte konnten nicht geladen werden")
			return
		}
		c.JSON(http.StatusOK, projects)
	})

	rg.GET("/:id", func(c *gin.Context) {
		project, err := owner(c, d).Projects().Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, d, err, "Projekt konnte nicht geladen werden")
			return
		}
		c.JSON(http.StatusOK, project)
	})

	rg.POST("", func(c *gin.Context) {
		var req projectRequest
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Title) == "" {
			badRequest(c, "title is required")
			return
		}
		project, err := owner(c, d).Projects().Create(c.Request.Context(), strings.TrimSpace(req.Title), req.Description, req.Status)
		if err != nil {
			respondError(c, d, err, "Projekt konnte nicht angelegt werden")
			return
		}
		c.JSON(http.StatusCreated, project)
	})

	rg.PATCH("/:id", func(c *gin.Context) {
		var req projectPatch
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
			badRequest(c, "title must not be empty")
			return
		}
		project, err := owner(c, d).Projects().Update(c.Request.Context(), c.Param("id"), store.ProjectPatch{
			Title:       req.Title,
			Description: req.Description,
			Status:      req.Status,
		})
		if err != nil {
			respondError(c, d, err, "Projekt konnte nicht aktualisiert werden")
			return
		}
		c.JSON(http.StatusOK, project)
	})

	rg.DELETE("/:id", func(c *gin.Context) {
		if err := owner(c, d).Projects().Delete(c.Request.Context(), c.Param("id")); err != nil {
			respondError(c, d, err, "Projekt konnte nicht gelöscht werden")
			return
		}
		c.Status(http.StatusNoContent)
	})
}
