package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"science-ecosystem/logging"
	"science-ecosystem/models"
	"science-ecosystem/store"
)

type materialRequest struct {
	Title     string  `json:"title" binding:"required"`
	Kind      string  `json:"kind" binding:"omitempty,oneof=link dataset code file"`
	URL       string  `json:"url" binding:"required,url"`
	ProjectID *string `json:"project_id"`
}

type materialPatch struct {
	Title     *string         `json:"title"`
	Kind      *string         `json:"kind" binding:"omitempty,oneof=link dataset code file"`
	URL       *string         `json:"url" binding:"omitempty,url"`
	ProjectID json.RawMessage `json:"project_id"`
}

func (p materialPatch) toStore() (store.MaterialPatch, bool) {
	out := store.MaterialPatch{Title: p.Title, Kind: p.Kind, URL: p.URL}
	if out.Title != nil && strings.TrimSpace(*out.Title) == "" {
		return out, false
	}
	if len(p.ProjectID) == 0 {
		return out, true
	}
	out.SetProject = true
	if bytes.Equal(p.ProjectID, []byte("null")) {
		return out, true
	}
	var id string
	if err := json.Unmarshal(p.ProjectID, &id); err != nil || id == "" {
		return out, false
	}
	out.ProjectID = &id
	return out, true
}

func setupMaterialRoutes(api *gin.RouterGroup, d Deps) {
	rg := api.Group("/materials")

	rg.GET("", func(c *gin.Context) {
		materials, err := owner(c, d).Materials().List(c.Request.Context(), c.Query("project_id"))
		if err != nil {
			respondError(c, d, err, "Materialien konnten nicht geladen werden")
			return
		}
		c.JSON(http.StatusOK, materials)
	})

	rg.POST("", func(c *gin.Context) {
		if c.ContentType() == gin.MIMEMultipartPOSTForm {
			uploadMaterial(c, d)
			return
		}

		var req materialRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "title and a valid url are required")
			return
		}
		if req.Kind == "" {
			req.Kind = "link"
		}
		if req.ProjectID != nil && *req.ProjectID == "" {
			req.ProjectID = nil
		}
		material, err := owner(c, d).Materials().Create(c.Request.Context(), models.Material{
			Title:     strings.TrimSpace(req.Title),
			Kind:      req.Kind,
			URL:       req.URL,
			ProjectID: req.ProjectID,
		})
		if err != nil {
			respondError(c, d, err, "Material konnte nicht gespeichert werden")
			return
		}
		c.JSON(http.StatusCreated, material)
	})

	rg.PATCH("/:id", func(c *gin.Context) {
		var req materialPatch
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		patch, ok := req.toStore()
		if !ok {
			badRequest(c, "invalid title or project_id")
			return
		}
		material, err := owner(c, d).Materials().Update(c.Request.Context(), c.Param("id"), patch)
		if err != nil {
			respondError(c, d, err, "Material konnte nicht aktualisiert werden")
			return
		}
		c.JSON(http.StatusOK, material)
	})

	rg.DELETE("/:id", func(c *gin.Context) {
		removed, ok, err := owner(c, d).Materials().Delete(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, d, err, "Material konnte nicht gelöscht werden")
			return
		}
		if ok && removed.ObjectKey != "" && d.Objects != nil {
			if err := d.Objects.Delete(c.Request.Context(), removed.ObjectKey); err != nil {
				logging.From(c, d.Logger).Warn("Datei konnte nicht gelöscht werden", zap.String("key", removed.ObjectKey), zap.Error(err))
			}
		}
		c.Status(http.StatusNoContent)
	})
}

// uploadMaterial nimmt eine Datei aus dem Formularfeld "file" entgegen und
// legt sie unter materials/{orcid}/{uuid}/{name} ab.
func uploadMaterial(c *gin.Context, d Deps) {
	if d.Objects == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "uploads are not configured"})
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	header, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file is required")
		return
	}
	file, err := header.Open()
	if err != nil {
		badRequest(c, "file is unreadable")
		return
	}
	defer file.Close()

	name := path.Base(strings.ReplaceAll(header.Filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "upload"
	}
	orcidID := c.GetString(orcidKey)
	id := uuid.NewString()
	key := fmt.Sprintf("materials/%s/%s/%s", orcidID, id, name)
	contentType := header.Header.Get("Content-Type")

	url, err := d.Objects.Put(c.Request.Context(), key, file, header.Size, contentType)
	if err != nil {
		logging.From(c, d.Logger).Error("Upload fehlgeschlagen", zap.String("key", key), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "upload failed"})
		return
	}

	title := strings.TrimSpace(c.PostForm("title"))
	if title == "" {
		title = name
	}
	var projectID *string
	if p := c.PostForm("project_id"); p != "" {
		projectID = &p
	}
	material, err := owner(c, d).Materials().Create(c.Request.Context(), models.Material{
		ID:          id,
		Title:       title,
		Kind:        "file",
		URL:         url,
		ObjectKey:   key,
		ContentType: contentType,
		Size:        header.Size,
		ProjectID:   projectID,
	})
	if err != nil {
		if delErr := d.Objects.Delete(c.Request.Context(), key); delErr != nil {
			logging.From(c, d.Logger).Warn("Verwaiste Datei bleibt liegen", zap.String("key", key), zap.Error(delErr))
		}
		respondError(c, d, err, "Material konnte nicht gespeichert werden")
		return
	}
	c.JSON(http.StatusCreated, material)
}
