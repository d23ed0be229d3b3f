// Package api ist die HTTP-Schnittstelle: Login, Sitzungsprüfung, die
// CRUD-Ressourcen unter /api und das statische Frontend.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"science-ecosystem/config"
	"science-ecosystem/logging"
	"science-ecosystem/providers/openalex"
	"science-ecosystem/providers/unpaywall"
	"science-ecosystem/services"
	"science-ecosystem/session"
	"science-ecosystem/storage"
	"science-ecosystem/store"
)

// maxUploadBytes begrenzt hochgeladene Materialien.
const maxUploadBytes = 50 << 20

// OpenAccessLookup liefert den Open-Access-Status zu einer DOI.
type OpenAccessLookup interface {
	Lookup(ctx context.Context, doi string) (unpaywall.Result, error)
}

// AuthorLookup liefert OpenAlex-Autoren.
type AuthorLookup interface {
	Author(ctx context.Context, authorID string) (openalex.Author, error)
}

// Deps bündelt alles, was die Handler brauchen. Unpaywall, OpenAlex und
// Objects dürfen nil sein; die jeweilige Funktion entfällt dann.
type Deps struct {
	Config       *config.Config
	DB           *gorm.DB
	Sessions     *session.Manager
	Cookies      *session.CookieCodec
	LoginCookies *session.CookieCodec
	Auth         *services.AuthService
	Users        *store.Users
	Unpaywall    OpenAccessLookup
	OpenAlex     AuthorLookup
	Objects      storage.ObjectStore
	Logger       *zap.Logger

	// Background startet Anreicherungen nach der Antwort; Tests setzen
	// eine synchrone Variante.
	Background func(func())
}

// NewRouter baut die gin-Engine mit allen Routen.
func NewRouter(d Deps) *gin.Engine {
	if d.Background == nil {
		d.Background = func(fn func()) { go fn() }
	}
	registerValidators()

	router := gin.New()
	router.MaxMultipartMemory = 8 << 20
	router.Use(logging.RequestID())
	router.Use(logging.Middleware(d.Logger))
	router.Use(logging.Recovery(d.Logger))
	if origins := d.Config.AllowedOrigins(); len(origins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Content-Type", logging.RequestIDHeader},
			ExposeHeaders:    []string{logging.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	setupAuthRoutes(router, d)

	api := router.Group("/api", requireSession(d))
	setupMeRoutes(api, d)
	setupLibraryRoutes(api, d)
	setupNoteRoutes(api, d)
	setupCollectionRoutes(api, d)
	setupClaimRoutes(api, d)
	setupProjectRoutes(api, d)
	setupMaterialRoutes(api, d)

	router.NoRoute(staticHandler(d.Config.StaticRoot()))
	return router
}
