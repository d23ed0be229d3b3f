package api

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// staticHandler liefert Dateien aus root aus. Unbekannte GET-Pfade, die
// HTML akzeptieren, bekommen index.html; alles andere 404 als JSON.
func staticHandler(root string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := c.Request.URL.Path
		if (c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead) ||
			strings.HasPrefix(p, "/api/") || strings.HasPrefix(p, "/auth/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}

		// path.Clean mit führendem Slash entfernt jedes "..".
		file := filepath.Join(root, filepath.FromSlash(path.Clean("/"+p)))
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			c.File(file)
			return
		}
		if info, err := os.Stat(filepath.Join(file, "index.html")); err == nil && !info.IsDir() {
			c.File(filepath.Join(file, "index.html"))
			return
		}

		if strings.Contains(c.GetHeader("Accept"), "text/html") {
			index := filepath.Join(root, "index.html")
			if _, err := os.Stat(index); err == nil {
				c.File(index)
				return
			}
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	}
}
