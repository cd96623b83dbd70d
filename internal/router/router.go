package router

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rajatpathak/BidFlowAI-sub003/internal/auth"
	"github.com/rajatpathak/BidFlowAI-sub003/internal/handlers"
	"github.com/rajatpathak/BidFlowAI-sub003/internal/middleware"
	"github.com/rajatpathak/BidFlowAI-sub003/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Deps - зависимости для сборки маршрутов.
type Deps struct {
	TenderHandler *handlers.TenderHandler
	AuthHandler   *handlers.AuthHandler
	Tokens        middleware.TokenParser
	Logger        *zap.Logger
	Registry      *prometheus.Registry
	UploadDir     string
}

func InitRoutes(d Deps) http.Handler {
	mux := http.NewServeMux()
	require := func(role models.Role, permission auth.Permission, h http.HandlerFunc) http.Handler {
		return middleware.Require(d.Logger, role, permission)(h)
	}

	mux.HandleFunc("GET /api/health", handlers.HealthHandler(d.Logger))

	mux.HandleFunc("POST /api/auth/login", d.AuthHandler.Login)
	mux.HandleFunc("POST /api/auth/logout", d.AuthHandler.Logout)
	mux.Handle("GET /api/auth/user", require("", "", d.AuthHandler.CurrentUser))
	mux.Handle("GET /api/users", require("", auth.ReadUsers, d.AuthHandler.ListUsers))

	mux.HandleFunc("GET /api/tenders", d.TenderHandler.GetTenders)
	mux.HandleFunc("GET /api/tenders/{tenderId}", d.TenderHandler.GetTender)
	mux.Handle("POST /api/tenders", require("", auth.WriteTenders, d.TenderHandler.CreateTender))
	mux.Handle("PUT /api/tenders/{tenderId}", require("", auth.WriteTenders, d.TenderHandler.UpdateTender))
	mux.Handle("PATCH /api/tenders/{tenderId}", require("", auth.WriteTenders, d.TenderHandler.UpdateTender))
	mux.Handle("DELETE /api/tenders/{tenderId}", require(models.AdminRole, auth.DeleteTenders, d.TenderHandler.DeleteTender))
	mux.Handle("POST /api/tenders/{tenderId}/assign", require("", auth.AssignTenders, d.TenderHandler.AssignTender))

	if d.Registry != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	}
	if d.UploadDir != "" {
		mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", uploadsHandler(d.UploadDir)))
	}

	chain := []func(http.Handler) http.Handler{
		middleware.Recover(d.Logger),
		middleware.Logging(d.Logger),
		middleware.Authenticate(d.Tokens, d.Logger),
	}
	if d.Registry != nil {
		chain = append(chain, middleware.NewMetrics(d.Registry).Middleware)
	}
	return middleware.Chain(mux, chain...)
}

// uploadsHandler отдаёт загруженные файлы без листинга каталогов.
func uploadsHandler(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		if info, err := os.Stat(filepath.Join(dir, filepath.FromSlash(path.Clean("/"+r.URL.Path)))); err == nil && info.IsDir() {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}
