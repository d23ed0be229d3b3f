package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"science-ecosystem/store"
)

const (
	orcidKey        = "orcid"
	sessionTokenKey = "session_token"
)

var errNotSignedIn = gin.H{"error": "not signed in"}

// requireSession lässt nur Anfragen mit gültiger, angemeldeter Sitzung durch.
// Ohne Sitzung wird mit 401 abgebrochen, bevor ein Handler Daten liest.
func requireSession(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := d.Cookies.Token(c.Request)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errNotSignedIn)
			return
		}
		payload, ok := d.Sessions.Read(c.Request.Context(), token)
		if !ok || payload.ORCID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errNotSignedIn)
			return
		}
		c.Set(orcidKey, payload.ORCID)
		c.Set(sessionTokenKey, token)
		c.Next()
	}
}

// owner gibt den Repository-Scope des angemeldeten Nutzers zurück.
func owner(c *gin.Context, d Deps) store.Owner {
	return store.ForOwner(d.DB, c.GetString(orcidKey))
}
