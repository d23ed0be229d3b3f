package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"science-ecosystem/ids"
	"science-ecosystem/store"
)

type collectionRequest struct {
	Name     string  `json:"name" binding:"required"`
	ParentID *string `json:"parent_id"`
}

// collectionPatch unterscheidet ein fehlendes parent_id (unverändert) von
// null (zur Wurzel machen).
type collectionPatch struct {
	Name     *string         `json:"name"`
	ParentID json.RawMessage `json:"parent_id"`
}

func (p collectionPatch) toStore() (store.CollectionPatch, bool) {
	out := store.CollectionPatch{Name: p.Name}
	if out.Name != nil && strings.TrimSpace(*out.Name) == "" {
		return out, false
	}
	if len(p.ParentID) == 0 {
		return out, true
	}
	out.SetParent = true
	if bytes.Equal(p.ParentID, []byte("null")) {
		return out, true
	}
	var parent string
	if err := json.Unmarshal(p.ParentID, &parent); err != nil || parent == "" {
		return out, false
	}
	out.ParentID = &parent
	return out, true
}

func setupCollectionRoutes(api *gin.RouterGroup, d Deps) {
	rg := api.Group("/collections")

	rg.GET("", func(c *gin.Context) {
		cols, err := owner(c, d).Collections().List(c.Request.Context())
		if err != nil {
			respondError(c, d, err, "Sammlungen konnten nicht geladen werden")
			return
		}
		c.JSON(http.StatusOK, cols)
	})

	rg.POST("", func(c *gin.Context) {
		var req collectionRequest
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
			badRequest(c, "name is required")
			return
		}
		if req.ParentID != nil && *req.ParentID == "" {
			req.ParentID = nil
		}
		col, err := owner(c, d).Collections().Create(c.Request.Context(), strings.TrimSpace(req.Name), req.ParentID)
		if err != nil {
			respondError(c, d, err, "Sammlung konnte nicht angelegt werden")
			return
		}
		c.JSON(http.StatusCreated, col)
	})

	rg.PATCH("/:id", func(c *gin.Context) {
		var req collectionPatch
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		patch, ok := req.toStore()
		if !ok {
			badRequest(c, "invalid name or parent_id")
			return
		}
		col, err := owner(c, d).Collections().Update(c.Request.Context(), c.Param("id"), patch)
		if err != nil {
			respondError(c, d, err, "Sammlung konnte nicht aktualisiert werden")
			return
		}
		c.JSON(http.StatusOK, col)
	})

	rg.DELETE("/:id", func(c *gin.Context) {
		if err := owner(c, d).Collections().Delete(c.Request.Context(), c.Param("id")); err != nil {
			respondError(c, d, err, "Sammlung konnte nicht gelöscht werden")
			return
		}
		c.Status(http.StatusNoContent)
	})

	rg.GET("/:id/items", func(c *gin.Context) {
		items, err := owner(c, d).Collections().Items(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, d, err, "Einträge konnten nicht geladen werden")
			return
		}
		c.JSON(http.StatusOK, items)
	})

	rg.POST("/:id/items", func(c *gin.Context) {
		var req struct {
			PaperID string `json:"paper_id" binding:"required,paper_id"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "paper_id is required")
			return
		}
		paperID, _ := ids.NormalizePaperID(req.PaperID)
		if err := owner(c, d).Collections().AddItem(c.Request.Context(), c.Param("id"), paperID); err != nil {
			respondError(c, d, err, "Eintrag konnte nicht gespeichert werden")
			return
		}
		c.JSON(http.StatusCreated, gin.H{"collection_id": c.Param("id"), "paper_id": paperID})
	})

	rg.DELETE("/:id/items/:paper", func(c *gin.Context) {
		paperID, ok := ids.NormalizePaperID(c.Param("paper"))
		if ok {
			if err := owner(c, d).Collections().RemoveItem(c.Request.Context(), c.Param("id"), paperID); err != nil {
				respondError(c, d, err, "Eintrag konnte nicht entfernt werden")
				return
			}
		}
		c.Status(http.StatusNoContent)
	})
}
