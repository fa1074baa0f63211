package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/clepigdo/Simig-Webapps/internal/handler"
	"github.com/clepigdo/Simig-Webapps/internal/middleware"
	"github.com/clepigdo/Simig-Webapps/internal/model"
	"github.com/clepigdo/Simig-Webapps/internal/repository"
	"github.com/clepigdo/Simig-Webapps/internal/service"
	"github.com/clepigdo/Simig-Webapps/internal/ws"
	"github.com/clepigdo/Simig-Webapps/pkg/database"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// 2. Setup Database
	db := database.ConnectDB()
	db.AutoMigrate(&model.Category{}, &model.Product{}, &model.TransactionIn{}, &model.TransactionOut{}, &model.User{})

	// 3. Seed default admin user
	seedAdmin(db)

	// 4. Upload directory for profile images
	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "./uploads"
	}
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		log.Fatalf("Failed to create upload dir %s: %v", uploadDir, err)
	}

	// 5. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 6. Dependency Injection (Wiring Layers)
	categoryRepo := repository.NewCategoryRepo(db)
	productRepo := repository.NewProductRepo(db)
	txRepo := repository.NewTransactionRepo(db)
	userRepo := repository.NewUserRepo(db)

	invService := service.NewInventoryService(categoryRepo, productRepo)
	ledgerService := service.NewLedgerService(productRepo, txRepo, db, wsHub)
	dashService := service.NewDashboardService(productRepo, txRepo)
	reportService := service.NewReportService(txRepo)
	authService := service.NewAuthService(userRepo)
	userService := service.NewUserService(userRepo)

	invHandler := handler.NewInventoryHandler(invService)
	txHandler := handler.NewTransactionHandler(ledgerService)
	dashHandler := handler.NewDashboardHandler(dashService, reportService)
	authHandler := handler.NewAuthHandler(authService, uploadDir)
	userHandler := handler.NewUserHandler(userService)

	// 7. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Simig Warehouse API v1.0",
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// Profile images
	app.Static("/uploads", uploadDir)

	// 8. Routes
	api := app.Group("/api")

	// ============ PUBLIC ROUTES ============
	users := api.Group("/users")
	users.Post("/register", authHandler.Register)
	users.Post("/login", authHandler.Login)
	users.Post("/token/refresh", authHandler.RefreshToken)

	// ============ PROTECTED ROUTES ============
	authRequired := middleware.RequireAuth(userRepo)

	users.Get("/me", authRequired, authHandler.Me)
	users.Get("/profile", authRequired, authHandler.GetProfile)
	users.Put("/profile", authRequired, authHandler.UpdateProfile)
	users.Put("/profile/change-password", authRequired, authHandler.ChangePassword)
	users.Put("/profile/upload-image", authRequired, authHandler.UploadProfileImage)

	// User Management (admin role only)
	manage := users.Group("/manage", authRequired, middleware.RequireRole(model.RoleAdmin))
	manage.Get("/", userHandler.GetUsers)
	manage.Get("/:id", userHandler.GetUser)
	manage.Post("/", userHandler.CreateUser)
	manage.Put("/:id", userHandler.UpdateUser)
	manage.Delete("/:id", userHandler.DeleteUser)

	protected := api.Group("", authRequired)

	// Categories
	protected.Get("/categories", invHandler.GetCategories)
	protected.Get("/categories/:id", invHandler.GetCategory)
	protected.Post("/categories", invHandler.CreateCategory)
	protected.Put("/categories/:id", invHandler.UpdateCategory)
	protected.Delete("/categories/:id", invHandler.DeleteCategory)

	// Products
	protected.Get("/products", invHandler.GetProducts)
	protected.Get("/products/:id", invHandler.GetProduct)
	protected.Post("/products", invHandler.CreateProduct)
	protected.Put("/products/:id", invHandler.UpdateProduct)
	protected.Delete("/products/:id", invHandler.DeleteProduct)

	// Inbound transactions
	protected.Get("/transactions-in", txHandler.GetTransactionsIn)
	protected.Get("/transactions-in/:id", txHandler.GetTransactionIn)
	protected.Post("/transactions-in", txHandler.CreateTransactionIn)
	protected.Put("/transactions-in/:id", txHandler.UpdateTransactionIn)
	protected.Delete("/transactions-in/:id", txHandler.DeleteTransactionIn)

	// Outbound transactions
	protected.Get("/transactions-out", txHandler.GetTransactionsOut)
	protected.Get("/transactions-out/:id", txHandler.GetTransactionOut)
	protected.Post("/transactions-out", txHandler.CreateTransactionOut)
	protected.Put("/transactions-out/:id", txHandler.UpdateTransactionOut)
	protected.Delete("/transactions-out/:id", txHandler.DeleteTransactionOut)

	// Dashboard & Reports
	protected.Get("/dashboard", dashHandler.GetDashboard)
	protected.Get("/reports", dashHandler.GetReport)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 9. Graceful Shutdown
	go func() {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8000"
		}
		if err := app.Listen(":" + port); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

// seedAdmin creates the default admin account if it doesn't exist
func seedAdmin(db *gorm.DB) {
	userRepo := repository.NewUserRepo(db)

	if _, err := userRepo.FindByUsername("admin"); err == nil {
		return
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}

	admin := &model.User{
		Username: "admin",
		FullName: "Administrator",
		Role:     model.RoleAdmin,
		IsActive: true,
	}
	if err := admin.SetPassword(password); err != nil {
		log.Printf("Warning: Failed to hash admin password: %v", err)
		return
	}

	// Explicit profile bootstrap, same step every new account goes through
	admin.ProfileImage = model.DefaultProfileImage

	if err := userRepo.Create(admin); err != nil {
		log.Printf("Warning: Failed to create admin user: %v", err)
	} else {
		log.Println("Admin user created: admin /", password)
	}
}
