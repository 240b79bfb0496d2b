package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/promptbox/promptbox/internal/config"
	"github.com/promptbox/promptbox/internal/constants"
	"github.com/promptbox/promptbox/internal/database"
	"github.com/promptbox/promptbox/internal/handlers"
	"github.com/promptbox/promptbox/internal/middleware"
	"github.com/promptbox/promptbox/internal/repository"
	"github.com/promptbox/promptbox/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if err := database.AddIndexes(database.GetDB()); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,
		"tcp",
		redisAddr,
		"",
		"",
		[]byte(cfg.SessionSecret),
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Repositories
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	promptRepo := repository.NewPromptRepository(db)
	workflowRepo := repository.NewWorkflowRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	folderRepo := repository.NewFolderRepository(db)

	// AI service is optional; the run endpoint returns 503 without it
	var aiService *services.AIService
	if cfg.OpenAIAPIKey != "" {
		aiService = services.NewAIService(cfg.OpenAIAPIKey)
	}

	// Services
	authService := services.NewAuthService(userRepo)
	orgService := services.NewOrganizationService(orgRepo, userRepo)
	teamService := services.NewTeamService(teamRepo, orgRepo, userRepo)
	userService := services.NewUserService(userRepo, orgRepo, teamRepo)
	promptService := services.NewPromptService(promptRepo, orgRepo, aiService)
	workflowService := services.NewWorkflowService(workflowRepo, promptRepo, orgRepo)
	categoryService := services.NewCategoryService(categoryRepo, orgRepo)
	folderService := services.NewFolderService(folderRepo, orgRepo)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	orgHandler := handlers.NewOrganizationHandler(orgService)
	teamHandler := handlers.NewTeamHandler(teamService)
	userHandler := handlers.NewUserHandler(userService)
	promptHandler := handlers.NewPromptHandler(promptService)
	workflowHandler := handlers.NewWorkflowHandler(workflowService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	folderHandler := handlers.NewFolderHandler(folderService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Promptbox API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		// Organization routes (protected)
		orgs := api.Group("/organizations")
		orgs.Use(middleware.RequireAuth())
		{
			orgs.POST("", orgHandler.CreateOrganization)
			orgs.GET("", orgHandler.ListOrganizations)
			orgs.GET("/:id", middleware.RequireOrganizationAccess(), orgHandler.GetOrganization)
			orgs.PATCH("/:id", middleware.RequireOrganizationAccess(), middleware.RequireOrganizationAdmin(), orgHandler.UpdateOrganization)
			orgs.DELETE("/:id", middleware.RequireOrganizationAccess(), middleware.RequireOrganizationAdmin(), orgHandler.DeleteOrganization)
			orgs.POST("/:id/add_member", middleware.RequireOrganizationAccess(), orgHandler.AddMember)
			orgs.GET("/:id/members", middleware.RequireOrganizationAccess(), orgHandler.ListMembers)
		}

		// Team routes (protected)
		teams := api.Group("/teams")
		teams.Use(middleware.RequireAuth())
		{
			teams.GET("", teamHandler.ListTeams)
			teams.POST("", teamHandler.CreateTeam)
			teams.GET("/:id", teamHandler.GetTeam)
			teams.PATCH("/:id", teamHandler.UpdateTeam)
			teams.DELETE("/:id", teamHandler.DeleteTeam)
			teams.GET("/:id/members", teamHandler.ListMembers)
			teams.POST("/:id/add_member", teamHandler.AddMember)
			teams.POST("/:id/remove_member", teamHandler.RemoveMember)
		}

		// User routes (protected)
		users := api.Group("/users")
		users.Use(middleware.RequireAuth())
		{
			users.GET("", userHandler.ListUsers)
			users.POST("", userHandler.CreateUser)
			users.GET("/me", authHandler.GetCurrentUser)
			users.GET("/:id", userHandler.GetUser)
			users.PATCH("/:id", userHandler.UpdateUser)
			users.DELETE("/:id", userHandler.DeleteUser)
			users.POST("/:id/assign_team", userHandler.AssignTeam)
			users.POST("/:id/remove_team", userHandler.RemoveTeam)
		}

		// Prompt routes (protected)
		prompts := api.Group("/prompts")
		prompts.Use(middleware.RequireAuth())
		{
			prompts.GET("", promptHandler.ListPrompts)
			prompts.POST("", promptHandler.CreatePrompt)
			prompts.GET("/:id", promptHandler.GetPrompt)
			prompts.PATCH("/:id", promptHandler.UpdatePrompt)
			prompts.DELETE("/:id", promptHandler.DeletePrompt)
			prompts.GET("/:id/history", promptHandler.ListHistory)
			prompts.POST("/:id/run", promptHandler.RunPrompt)
		}

		// Workflow routes (protected)
		workflows := api.Group("/workflows")
		workflows.Use(middleware.RequireAuth())
		{
			workflows.GET("", workflowHandler.ListWorkflows)
			workflows.POST("", workflowHandler.CreateWorkflow)
			workflows.GET("/:id", workflowHandler.GetWorkflow)
			workflows.PATCH("/:id", workflowHandler.UpdateWorkflow)
			workflows.DELETE("/:id", workflowHandler.DeleteWorkflow)
			workflows.GET("/:id/history", workflowHandler.ListHistory)
		}

		// Category routes (protected)
		categories := api.Group("/categories")
		categories.Use(middleware.RequireAuth())
		{
			categories.GET("", categoryHandler.ListCategories)
			categories.POST("", categoryHandler.CreateCategory)
			categories.GET("/:id", categoryHandler.GetCategory)
			categories.PATCH("/:id", categoryHandler.UpdateCategory)
			categories.DELETE("/:id", categoryHandler.DeleteCategory)
		}

		// Folder routes (protected)
		folders := api.Group("/folders")
		folders.Use(middleware.RequireAuth())
		{
			folders.GET("", folderHandler.ListFolders)
			folders.POST("", folderHandler.CreateFolder)
			folders.GET("/:id", folderHandler.GetFolder)
			folders.PATCH("/:id", folderHandler.UpdateFolder)
			folders.DELETE("/:id", folderHandler.DeleteFolder)
		}
	}

	// Start server
	log.Println("Server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
