package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"science-ecosystem/logging"
	"science-ecosystem/services"
	"science-ecosystem/store"
)

// LoginCookieName trägt den laufenden Login-Versuch bis zum Callback.
const LoginCookieName = "orcid_login"

func setupAuthRoutes(router *gin.Engine, d Deps) {
	rg := router.Group("/auth")

	rg.GET("/orcid/login", func(c *gin.Context) {
		attempt, err := d.Auth.Begin(c.Request.Context())
		if err != nil {
			logging.From(c, d.Logger).Error("Login konnte nicht gestartet werden", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "login unavailable"})
			return
		}
		if err := d.LoginCookies.Set(c.Writer, attempt.Token); err != nil {
			logging.From(c, d.Logger).Error("Login-Cookie konnte nicht gesetzt werden", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "login unavailable"})
			return
		}
		c.Redirect(http.StatusFound, attempt.RedirectURL)
	})

	rg.GET("/orcid/callback", func(c *gin.Context) {
		attemptToken, _ := d.LoginCookies.Token(c.Request)
		d.LoginCookies.Clear(c.Writer)

		token, _, err := d.Auth.Complete(c.Request.Context(), attemptToken, services.Callback{
			State: c.Query("state"),
			Code:  c.Query("code"),
			Error: c.Query("error"),
		})
		switch {
		case errors.Is(err, services.ErrBadCallback), errors.Is(err, services.ErrStateMismatch):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		case errors.Is(err, services.ErrExchangeFailed):
			c.JSON(http.StatusInternalServerError, gin.H{"error": "orcid login failed"})
			return
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not sign in"})
			return
		}

		if err := d.Cookies.Set(c.Writer, token); err != nil {
			logging.From(c, d.Logger).Error("Sitzungs-Cookie konnte nicht gesetzt werden", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not sign in"})
			return
		}
		c.Redirect(http.StatusFound, d.Config.ProfilePath)
	})

	rg.POST("/logout", func(c *gin.Context) {
		if token, ok := d.Cookies.Token(c.Request); ok {
			if err := d.Auth.Logout(c.Request.Context(), token); err != nil {
				logging.From(c, d.Logger).Error("Sitzung konnte nicht gelöscht werden", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "logout failed"})
				return
			}
		}
		d.Cookies.Clear(c.Writer)
		c.Status(http.StatusNoContent)
	})
}

func setupMeRoutes(rg *gin.RouterGroup, d Deps) {
	rg.GET("/me", func(c *gin.Context) {
		user, err := d.Users.Get(c.Request.Context(), c.GetString(orcidKey))
		if errors.Is(err, store.ErrNotFound) {
			// Sitzung überlebt den Nutzer nicht
			c.JSON(http.StatusUnauthorized, errNotSignedIn)
			return
		}
		if err != nil {
			respondError(c, d, err, "Nutzer konnte nicht geladen werden")
			return
		}
		c.JSON(http.StatusOK, user)
	})
}
