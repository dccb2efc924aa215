package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/firdaushadi442/buku-log-digital-sukan/internal/config"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/middleware"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/model"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/service"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/store"
)

// NewRouter wires every service over s and mounts the routes.
func NewRouter(cfg *config.Config, s store.Store) *gin.Engine {
	jwt := middleware.NewJWT(cfg.Auth.JWTSecret)

	authSvc := service.NewAuthService(s, cfg.Auth.EmailDomain)
	recordSvc := service.NewRecordService(s)
	teacherSvc := service.NewTeacherService(s)
	uploadSvc := service.NewUploadService(cfg.Upload, cfg.Server.PublicURL)

	execH := NewExecHandler(NewAuthHandler(authSvc, jwt), NewRecordHandler(recordSvc, teacherSvc, uploadSvc))
	printH := NewPrintHandler(recordSvc, teacherSvc, cfg.Print, cfg.Server.PublicURL)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"X-New-Token", "Content-Disposition"},
	}))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	r.POST("/api/exec", jwt.Optional(), execH.Exec)
	r.GET("/api/admin/export.xlsx", jwt.Required(), middleware.RequireRole(model.RoleAdmin), printH.Export)
	r.GET("/print/:email", jwt.Required(), printH.Print)
	r.Static("/uploads", cfg.Upload.Dir)
	return r
}
