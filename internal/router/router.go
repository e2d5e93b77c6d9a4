package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/jadwal-backend/internal/config"
	"github.com/stemsi/jadwal-backend/internal/handler"
	"github.com/stemsi/jadwal-backend/internal/middleware"
	"github.com/stemsi/jadwal-backend/internal/model"
	"github.com/stemsi/jadwal-backend/internal/response"
	"github.com/stemsi/jadwal-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth      *handler.AuthHandler
	AdminUser *handler.AdminUserHandler
	AdminRole *handler.AdminRoleHandler
	Class     *handler.ClassHandler
	Subject   *handler.SubjectHandler
	Teacher   *handler.TeacherHandler
	Timetable *handler.TimetableHandler
	Grading   *handler.GradingHandler
	Dashboard *handler.DashboardHandler
	Health    *handler.HealthHandler
	WS        *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// authLimiter throttles the login route and is owned by the caller.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	authLimiter *middleware.RateLimiter,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition", "Retry-After"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Request id first so the access log can carry it.
	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(log))

	brotliCfg := middleware.DefaultBrotliConfig
	if cfg.BrotliMinLength > 0 {
		brotliCfg.MinLength = cfg.BrotliMinLength
	}
	router.Use(middleware.BrotliWithConfig(brotliCfg))

	router.GET("/health", middleware.NoStore(), handlers.Health.Health)

	// ─── 0. Public Group (No Auth) ─────────────────────────────────────
	publicAPI := router.Group("/api/v1/public")
	publicAPI.Use(middleware.CacheControl(cfg.TimetableCacheTTL))
	{
		publicAPI.GET("/classes/:id/timetable", handlers.Timetable.PublicClassTimetable)
	}

	// ─── 1. Auth Group (Rate Limited) ──────────────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(middleware.NoStore())
	{
		auth.POST("/admin/login", authLimiter.Middleware(), handlers.Auth.AdminLogin)
		auth.GET("/admin/me", middleware.RequireAdminJWT(authService), handlers.Auth.GetAdminProfile)
		auth.POST("/admin/logout", middleware.RequireAdminJWT(authService), handlers.Auth.AdminLogout)
	}

	// ─── 2. WebSocket Group (query token) ──────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireWSAuth(authService))
	{
		ws.GET("/timetable/classes/:id/stream",
			middleware.RequirePermission(model.PermissionTimetableRead),
			handlers.WS.ClassTimetableStream,
		)
	}

	// ─── 3. Admin Group (JWT + RBAC) ───────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(authService), middleware.NoStore())

	// Open to all admins
	adminAPI.GET("/dashboard", handlers.Dashboard.GetDashboardData)

	classes := adminAPI.Group("/classes")
	{
		classes.GET("", middleware.RequirePermission(model.PermissionClassesRead), handlers.Class.ListClasses)
		classes.GET("/:id", middleware.RequirePermission(model.PermissionClassesRead), handlers.Class.GetClass)
		classes.POST("", middleware.RequirePermission(model.PermissionClassesWrite), handlers.Class.CreateClass)
		classes.PUT("/:id", middleware.RequirePermission(model.PermissionClassesWrite), handlers.Class.UpdateClass)
		classes.DELETE("/:id", middleware.RequirePermission(model.PermissionClassesWrite), handlers.Class.DeleteClass)
	}

	subjects := adminAPI.Group("/subjects")
	{
		subjects.GET("", middleware.RequirePermission(model.PermissionSubjectsRead), handlers.Subject.GetAll)
		subjects.POST("", middleware.RequirePermission(model.PermissionSubjectsWrite), handlers.Subject.Create)
		subjects.PUT("/:id", middleware.RequirePermission(model.PermissionSubjectsWrite), handlers.Subject.Update)
		subjects.DELETE("/:id", middleware.RequirePermission(model.PermissionSubjectsWrite), handlers.Subject.Delete)
	}

	teachers := adminAPI.Group("/teachers")
	{
		teachers.GET("", middleware.RequirePermission(model.PermissionTeachersRead), handlers.Teacher.List)
		teachers.GET("/:id", middleware.RequirePermission(model.PermissionTeachersRead), handlers.Teacher.Get)
		teachers.POST("", middleware.RequirePermission(model.PermissionTeachersWrite), handlers.Teacher.Create)
		teachers.PUT("/:id", middleware.RequirePermission(model.PermissionTeachersWrite), handlers.Teacher.Update)
		teachers.DELETE("/:id", middleware.RequirePermission(model.PermissionTeachersWrite), handlers.Teacher.Delete)
	}

	timetable := adminAPI.Group("/timetable")
	{
		read := middleware.RequirePermission(model.PermissionTimetableRead)
		write := middleware.RequirePermission(model.PermissionTimetableWrite)

		timetable.GET("", read, handlers.Timetable.List)
		// Teachers see their own week without timetable:read.
		timetable.GET("/mine", handlers.Timetable.Mine)
		timetable.GET("/export", read, handlers.Timetable.Export)
		timetable.GET("/:id", read, handlers.Timetable.Get)
		timetable.GET("/:id/history", read, handlers.Timetable.History)
		timetable.POST("", write, handlers.Timetable.Create)
		timetable.POST("/check",
			middleware.RequireAnyPermission(model.PermissionTimetableRead, model.PermissionTimetableWrite),
			handlers.Timetable.Check,
		)
		timetable.PUT("/:id", write, handlers.Timetable.Update)
		timetable.DELETE("/:id", write, handlers.Timetable.Delete)
		timetable.POST("/:id/status",
			middleware.RequirePermission(model.PermissionTimetablePublish),
			handlers.Timetable.ChangeStatus,
		)
	}

	gradingSystems := adminAPI.Group("/grading-systems")
	{
		read := middleware.RequirePermission(model.PermissionGradingRead)
		write := middleware.RequirePermission(model.PermissionGradingWrite)

		gradingSystems.GET("", read, handlers.Grading.List)
		gradingSystems.POST("/validate",
			middleware.RequireAnyPermission(model.PermissionGradingRead, model.PermissionGradingWrite),
			handlers.Grading.Validate,
		)
		gradingSystems.GET("/:id", read, handlers.Grading.Get)
		gradingSystems.GET("/:id/history", read, handlers.Grading.History)
		gradingSystems.POST("/:id/classify", read, handlers.Grading.Classify)
		gradingSystems.POST("", write, handlers.Grading.Create)
		gradingSystems.PUT("/:id", write, handlers.Grading.Update)
		gradingSystems.DELETE("/:id", write, handlers.Grading.Delete)
	}

	// Admin user management
	users := adminAPI.Group("/users")
	{
		users.GET("", middleware.RequirePermission(model.PermissionAdminsRead), handlers.AdminUser.ListAdmins)
		users.POST("", middleware.RequirePermission(model.PermissionAdminsWrite), handlers.AdminUser.CreateAdmin)
		users.PUT("/:id", middleware.RequirePermission(model.PermissionAdminsWrite), handlers.AdminUser.UpdateAdmin)
		users.DELETE("/:id", middleware.RequirePermission(model.PermissionAdminsWrite), handlers.AdminUser.DeleteAdmin)
	}

	// Roles for selection (read permission is enough to fill the user form)
	adminAPI.GET("/roles",
		middleware.RequirePermission(model.PermissionAdminsRead),
		handlers.AdminUser.GetRoles,
	)

	roles := adminAPI.Group("/roles")
	{
		roles.GET("/all", middleware.RequirePermission(model.PermissionRolesRead), handlers.AdminRole.ListRoles)
		roles.GET("/permissions", middleware.RequirePermission(model.PermissionRolesRead), handlers.AdminRole.GetPermissions)
		roles.GET("/:id", middleware.RequirePermission(model.PermissionRolesRead), handlers.AdminRole.GetRole)
		roles.POST("", middleware.RequirePermission(model.PermissionRolesWrite), handlers.AdminRole.CreateRole)
		roles.PUT("/:id", middleware.RequirePermission(model.PermissionRolesWrite), handlers.AdminRole.UpdateRole)
		roles.DELETE("/:id", middleware.RequirePermission(model.PermissionRolesWrite), handlers.AdminRole.DeleteRole)
	}

	return router
}
