package handler

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"dropskills/internal/authz"
	"dropskills/internal/config"
	"dropskills/internal/metrics"
	"dropskills/internal/middleware"
	"dropskills/internal/service"
	"dropskills/internal/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// NewRouter wires services, middleware and routes on top of db.
func NewRouter(cfg *config.Config, db *gorm.DB) (*gin.Engine, error) {
	store, err := storage.NewClient(storage.Config{
		Endpoint:     cfg.Storage.Endpoint,
		AccessKey:    cfg.Storage.AccessKey,
		SecretKey:    cfg.Storage.SecretKey,
		UseSSL:       cfg.Storage.UseSSL,
		BucketPrefix: cfg.Storage.BucketPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	enf, err := authz.NewEnforcer(cfg.Auth.AdminEmails)
	if err != nil {
		return nil, fmt.Errorf("authz: %w", err)
	}
	aiSvc := service.NewAIService(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLMTimeout())
	authSvc := service.NewAuthService(db, cfg.ResetTokenTTL())
	jwtAuth := middleware.NewAuth(cfg.Auth.JWTSecret, cfg.TokenTTL(), authSvc)
	accountSvc := service.NewAccountService(db, authSvc)
	requestSvc := service.NewProductRequestService(db)
	mentorSvc := service.NewMentorService(db)
	toolSvc := service.NewToolService(db, aiSvc)
	productSvc := service.NewProductService(db)
	vaultSvc := service.NewVaultService(db, store)
	draftSvc := service.NewDraftService(db)
	genSvc := service.NewGenerationService(db, aiSvc, draftSvc)
	ideaSvc := service.NewIdeaService(aiSvc)

	authH := NewAuthHandler(authSvc, jwtAuth, enf, cfg.Auth.ExposeResetToken)
	accountH := NewAccountHandler(accountSvc)
	adminH := NewAdminHandler(requestSvc, mentorSvc, toolSvc, productSvc)
	catalogH := NewCatalogHandler(requestSvc, mentorSvc, toolSvc, productSvc)
	aiH := NewAIHandler(genSvc, ideaSvc)
	mentorH := NewMentorChatHandler(mentorSvc, aiSvc)
	wizardH := NewWizardHandler(draftSvc, genSvc)
	vaultH := NewVaultHandler(vaultSvc)

	origins := cfg.Server.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog(), metrics.Middleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders:    []string{"X-New-Token", middleware.HeaderRequestID, "Content-Disposition"},
		AllowCredentials: !allowsAll(origins),
	}))

	r.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "llm": aiSvc.Configured(), "storage": store.Enabled()})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	authG := r.Group("/api/auth", middleware.RateLimit(cfg.RateLimit.AuthPerMinute, cfg.RateLimit.AuthBurst))
	authG.POST("/signup", authH.Signup)
	authG.POST("/login", authH.Login)
	authG.POST("/forgot-password", authH.ForgotPassword)
	authG.POST("/reset-password", authH.ResetPassword)

	r.GET("/api/ideas/trending", aiH.TrendingIdeas)

	api := r.Group("/api", jwtAuth.Required())
	api.GET("/me", authH.Me)

	account := api.Group("/account", middleware.Authorize(enf))
	account.GET("/profile", accountH.Profile)
	account.PUT("/profile", accountH.UpdateProfile)
	account.PUT("/password", accountH.ChangePassword)
	account.GET("/preferences", accountH.Preferences)
	account.PUT("/preferences", accountH.UpdatePreferences)

	api.GET("/catalog/mentors", catalogH.Mentors)
	api.GET("/catalog/tools", catalogH.Tools)
	api.GET("/catalog/products", catalogH.Products)
	api.GET("/product-requests", catalogH.ListRequests)
	api.POST("/product-requests", catalogH.CreateRequest)
	api.POST("/product-requests/:id/vote", catalogH.Vote)

	api.POST("/ai/:kind/generate", aiH.Generate)
	api.GET("/ai/generations", aiH.ListGenerations)
	api.GET("/ai/generations/:id", aiH.GetGeneration)
	api.GET("/ai/generations/:id/export", aiH.Export)
	api.GET("/ai/generations/:id/calendar", aiH.Calendar)
	api.GET("/ai/generations/:id/views", aiH.Views)
	api.POST("/ideas/generate", aiH.GenerateIdeas)
	api.POST("/mentors/:id/chat", mentorH.Chat)

	api.GET("/wizards", wizardH.Kinds)
	api.GET("/wizards/:kind", wizardH.Definition)
	api.POST("/wizards/:kind/validate", wizardH.Validate)
	api.GET("/wizards/:kind/draft", wizardH.GetDraft)
	api.PUT("/wizards/:kind/draft", wizardH.SaveDraft)
	api.DELETE("/wizards/:kind/draft", wizardH.DeleteDraft)
	api.GET("/wizards/:kind/prefill", wizardH.Prefill)

	vault := api.Group("/vault", middleware.Authorize(enf))
	vault.GET("/items", vaultH.List)
	vault.POST("/items", vaultH.Upload)
	vault.GET("/items/:id/download", vaultH.Download)
	vault.POST("/items/:id/favorite", vaultH.ToggleFavorite)
	vault.POST("/items/:id/share", vaultH.ToggleShare)
	vault.DELETE("/items/:id", vaultH.Delete)
	vault.GET("/folders", vaultH.Folders)
	vault.GET("/stats", vaultH.Stats)

	admin := api.Group("/admin", middleware.Authorize(enf))
	admin.GET("/product-requests", adminH.ListRequests)
	admin.PUT("/product-requests/:id", adminH.UpdateRequest)
	admin.DELETE("/product-requests/:id", adminH.DeleteRequest)

	admin.GET("/mentors", adminH.ListMentors)
	admin.POST("/mentors", adminH.CreateMentor)
	admin.GET("/mentors/:id", adminH.GetMentor)
	admin.PUT("/mentors/:id", adminH.UpdateMentor)
	admin.DELETE("/mentors/:id", adminH.DeleteMentor)

	admin.GET("/tools", adminH.ListTools)
	admin.POST("/tools", adminH.CreateTool)
	admin.POST("/tools/test-all", adminH.TestAllTools)
	admin.GET("/tools/:id", adminH.GetTool)
	admin.PUT("/tools/:id", adminH.UpdateTool)
	admin.DELETE("/tools/:id", adminH.DeleteTool)
	admin.POST("/tools/:id/toggle", adminH.ToggleTool)
	admin.POST("/tools/:id/duplicate", adminH.DuplicateTool)
	admin.POST("/tools/:id/test", adminH.TestTool)

	admin.GET("/products", adminH.ListProducts)
	admin.POST("/products", adminH.CreateProduct)
	admin.GET("/products/:id", adminH.GetProduct)
	admin.PUT("/products/:id", adminH.UpdateProduct)
	admin.DELETE("/products/:id", adminH.DeleteProduct)

	if dir := cfg.Server.StaticDir; dir != "" {
		r.NoRoute(spa(dir))
	}
	return r, nil
}

func allowsAll(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

// spa serves the built web client from dir, falling back to index.html for
// client-side routes. Unknown /api paths stay 404.
func spa(dir string) gin.HandlerFunc {
	files := http.FileServer(http.Dir(dir))
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		p := filepath.Join(dir, filepath.Clean("/"+c.Request.URL.Path))
		if st, err := os.Stat(p); err != nil || st.IsDir() {
			c.File(filepath.Join(dir, "index.html"))
			return
		}
		files.ServeHTTP(c.Writer, c.Request)
	}
}
