package adminapi

import (
	"embed"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"
)

// Embedded placeholder landing page. The teacher embeds a full Angular
// build here (internal/api/spa_mount.go); Roxy's admin surface has no app
// to ship, only a link page pointing at the JSON endpoints and the
// Swagger UI.
//
//go:embed dist/*
var embeddedDashboard embed.FS

func getDashboardFS() static.ServeFileSystem {
	fs, err := static.EmbedFolder(embeddedDashboard, "dist")
	if err != nil {
		panic("adminapi: failed to load embedded dashboard: " + err.Error())
	}
	return fs
}

// mountDashboard serves the embedded landing page at "/", falling back to
// index.html for any path outside /api and /swagger.
func mountDashboard(r *gin.Engine, logger *slog.Logger) {
	distFS := getDashboardFS()
	r.Use(static.Serve("/", distFS))

	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.RequestURI, "/api") || strings.HasPrefix(c.Request.RequestURI, "/swagger") {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		index, err := distFS.Open("index.html")
		if err != nil {
			if logger != nil {
				logger.Error("adminapi: failed to open index.html", "error", err)
			}
			c.Status(http.StatusInternalServerError)
			return
		}
		defer index.Close()
		stat, _ := index.Stat()
		http.ServeContent(c.Writer, c.Request, "index.html", stat.ModTime(), index)
	})
}
