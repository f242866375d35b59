package routes

import (
	"net/http"

	"github.com/ArowuTest/orgfees-backend/internal/config"
	"github.com/ArowuTest/orgfees-backend/internal/handlers"
	"github.com/ArowuTest/orgfees-backend/internal/middleware"
	"github.com/ArowuTest/orgfees-backend/internal/models"
	"github.com/gin-gonic/gin"
)

// HandlerDependencies holds all handler dependencies
type HandlerDependencies struct {
	Authenticator       middleware.Authenticator
	AuthHandler         *handlers.AuthHandler
	UserHandler         *handlers.UserHandler
	RoleHandler         *handlers.RoleHandler
	OrganizationHandler *handlers.OrganizationHandler
	CategoryHandler     *handlers.CategoryHandler
	StudentHandler      *handlers.StudentHandler
	TransactionHandler  *handlers.TransactionHandler
	PrelistingHandler   *handlers.PrelistingHandler
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, deps HandlerDependencies) *gin.Engine {
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.RegisterValidators()

	router := gin.New()
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.ErrorHandler(cfg.Server.Debug))

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, models.Response{
			Success: false,
			Message: "route not found",
			Error:   &models.ErrorBody{Status: http.StatusNotFound},
		})
	})

	term := middleware.TermMiddleware(models.SchoolTerm{Semester: cfg.Term.Semester, Year: cfg.Term.Year})
	authed := middleware.AuthMiddleware(deps.Authenticator)
	can := middleware.RequirePermission

	api := router.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, models.Response{Success: true, Data: gin.H{"status": "ok"}})
	})

	auth := api.Group("/auth")
	{
		auth.POST("/login", deps.AuthHandler.Login)
		auth.POST("/refresh", deps.AuthHandler.Refresh)
		auth.POST("/logout", deps.AuthHandler.Logout)
		auth.GET("/me", authed, deps.AuthHandler.Me)
		auth.PUT("/password", authed, deps.AuthHandler.ChangePassword)
	}

	protected := api.Group("")
	protected.Use(authed)

	users := protected.Group("/user")
	{
		users.GET("", can(models.PermUserRead), deps.UserHandler.GetAllUsers)
		users.GET("/:id", can(models.PermUserRead), deps.UserHandler.GetUserByID)
		users.POST("", can(models.PermUserWrite), deps.UserHandler.CreateUser)
		users.PUT("/:id", can(models.PermUserWrite), deps.UserHandler.UpdateUser)
		users.PUT("/:id/roles", can(models.PermUserWrite, models.PermRoleRead), deps.UserHandler.AssignRoles)
		users.DELETE("/:id", can(models.PermUserWrite), deps.UserHandler.DeleteUser)
	}

	roles := protected.Group("/role")
	{
		roles.GET("/permissions", can(models.PermRoleRead), deps.RoleHandler.Permissions)
		roles.GET("", can(models.PermRoleRead), deps.RoleHandler.GetAllRoles)
		roles.GET("/:id", can(models.PermRoleRead), deps.RoleHandler.GetRoleByID)
		roles.POST("", can(models.PermRoleWrite), deps.RoleHandler.CreateRole)
		roles.PUT("/:id", can(models.PermRoleWrite), deps.RoleHandler.UpdateRole)
		roles.DELETE("/:id", can(models.PermRoleWrite), deps.RoleHandler.DeleteRole)
	}

	orgs := protected.Group("/organization")
	{
		orgs.GET("", can(models.PermOrganizationRead), deps.OrganizationHandler.GetAllOrganizations)
		orgs.GET("/:id", can(models.PermOrganizationRead), deps.OrganizationHandler.GetOrganizationByID)
		orgs.POST("", can(models.PermOrganizationWrite), deps.OrganizationHandler.CreateOrganization)
		orgs.PUT("/:id", can(models.PermOrganizationWrite), deps.OrganizationHandler.UpdateOrganization)
		orgs.DELETE("/:id", can(models.PermOrganizationWrite), term, deps.OrganizationHandler.DeleteOrganization)
	}

	// Everything below lives in a term database.
	termed := protected.Group("")
	termed.Use(term)

	categories := termed.Group("/category")
	{
		categories.GET("", can(models.PermCategoryRead), deps.CategoryHandler.GetAllCategories)
		categories.GET("/:id", can(models.PermCategoryRead), deps.CategoryHandler.GetCategoryByID)
		categories.POST("", can(models.PermCategoryWrite), deps.CategoryHandler.CreateCategory)
		categories.PUT("/:id", can(models.PermCategoryWrite), deps.CategoryHandler.UpdateCategory)
		categories.DELETE("/:id", can(models.PermCategoryWrite), deps.CategoryHandler.DeleteCategory)
	}

	students := termed.Group("/student")
	{
		students.GET("", can(models.PermStudentRead), deps.StudentHandler.GetStudents)
		students.POST("/import/preview", can(models.PermStudentImport), deps.StudentHandler.PreviewImport)
		students.POST("/import", can(models.PermStudentImport), deps.StudentHandler.CommitImport)
		students.GET("/:id", can(models.PermStudentRead), deps.StudentHandler.GetStudentByID)
		students.GET("/:id/balance", can(models.PermStudentRead, models.PermTransactionRead), deps.StudentHandler.Balance)
		students.POST("", can(models.PermStudentWrite), deps.StudentHandler.CreateStudent)
		students.PUT("/:id", can(models.PermStudentWrite), deps.StudentHandler.UpdateStudent)
		students.DELETE("/:id", can(models.PermStudentWrite), deps.StudentHandler.DeleteStudent)
	}

	transactions := termed.Group("/transaction")
	{
		transactions.GET("", can(models.PermTransactionRead), deps.TransactionHandler.GetTransactions)
		transactions.GET("/summary", can(models.PermTransactionRead), deps.TransactionHandler.Summary)
		transactions.GET("/export", can(models.PermTransactionExport), deps.TransactionHandler.Export)
		transactions.POST("/import/preview", can(models.PermTransactionImport), deps.TransactionHandler.PreviewImport)
		transactions.POST("/import", can(models.PermTransactionImport), deps.TransactionHandler.CommitImport)
		transactions.GET("/:id", can(models.PermTransactionRead), deps.TransactionHandler.GetTransactionByID)
		transactions.GET("/:id/receipt", can(models.PermTransactionRead), deps.TransactionHandler.Receipt)
		transactions.POST("", can(models.PermTransactionWrite), deps.TransactionHandler.CreateTransaction)
		transactions.PUT("/:id", can(models.PermTransactionWrite), deps.TransactionHandler.UpdateTransaction)
		transactions.DELETE("/:id", can(models.PermTransactionWrite), deps.TransactionHandler.DeleteTransaction)
	}

	prelistings := termed.Group("/prelisting")
	{
		prelistings.GET("", can(models.PermPrelistingRead), deps.PrelistingHandler.GetPrelistings)
		prelistings.GET("/:id", can(models.PermPrelistingRead), deps.PrelistingHandler.GetPrelistingByID)
		prelistings.POST("", can(models.PermPrelistingWrite), deps.PrelistingHandler.CreatePrelisting)
		prelistings.PUT("/:id", can(models.PermPrelistingWrite), deps.PrelistingHandler.UpdatePrelisting)
		prelistings.DELETE("/:id", can(models.PermPrelistingWrite), deps.PrelistingHandler.DeletePrelisting)
		prelistings.POST("/:id/confirm", can(models.PermPrelistingWrite, models.PermTransactionWrite), deps.PrelistingHandler.ConfirmPrelisting)
		prelistings.POST("/:id/cancel", can(models.PermPrelistingWrite), deps.PrelistingHandler.CancelPrelisting)
	}

	return router
}
