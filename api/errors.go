package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"science-ecosystem/logging"
	"science-ecosystem/store"
)

// respondError übersetzt Repository-Fehler in HTTP-Antworten. Unerwartete
// Fehler werden protokolliert und nur allgemein gemeldet.
func respondError(c *gin.Context, d Deps, err error, msg string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, store.ErrInvalidParent),
		errors.Is(err, store.ErrCycle),
		errors.Is(err, store.ErrSameAuthor),
		errors.Is(err, store.ErrInvalidProject):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logging.From(c, d.Logger).Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
