package api

import (
	"net/http"

	"github.com/pranjitbis/learning-management-system/internal/domain"
	"github.com/pranjitbis/learning-management-system/internal/service"

	"github.com/gin-gonic/gin"
)

// SetupRoutes wires all handlers onto the gin engine.
func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	progressService service.ProgressService,
	courseService service.CourseService,
	accessService service.AccessService,
	certService service.CertificateService,
	userService service.UserService,
) {
	authHandler := NewAuthHandler(authService)
	progressHandler := NewProgressHandler(progressService)
	courseHandler := NewCourseHandler(courseService)
	accessHandler := NewAccessHandler(accessService)
	certHandler := NewCertificateHandler(certService)
	userHandler := NewUserHandler(userService)

	authMiddleware := AuthMiddleware(jwtSecret)
	adminOnly := RoleMiddleware(domain.RoleAdmin)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiGroup := router.Group("/api")
	{
		authGroup := apiGroup.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}

		// Public catalog
		apiGroup.GET("/courses", courseHandler.ListCourses)
		apiGroup.GET("/courses/:id", courseHandler.GetCourse)
	}

	protected := apiGroup.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userID, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			role, _ := getUserRoleFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": userID, "role": role})
		})

		// --- Learner Routes ---
		protected.POST("/progress", progressHandler.RecordProgress)
		protected.GET("/dashboard", progressHandler.GetDashboard)
		protected.PATCH("/videos/:id/duration", progressHandler.CacheDuration)
		protected.POST("/access/request", accessHandler.RequestAccess)
		protected.GET("/certificates/download", certHandler.Download)

		// --- Admin Back Office ---
		adminGroup := protected.Group("")
		adminGroup.Use(adminOnly)
		{
			adminGroup.POST("/courses", courseHandler.CreateCourse)
			adminGroup.PUT("/courses/:id", courseHandler.UpdateCourse)
			adminGroup.DELETE("/courses/:id", courseHandler.DeleteCourse)

			adminGroup.POST("/videos", courseHandler.AddVideo)
			adminGroup.DELETE("/videos/:id", courseHandler.DeleteVideo)

			adminGroup.GET("/users", userHandler.ListUsers)

			adminGroup.GET("/access", accessHandler.ListAccess)
			adminGroup.POST("/access", accessHandler.GrantAccess)
			adminGroup.DELETE("/access/:id", accessHandler.RevokeAccess)

			adminGroup.GET("/certificates", certHandler.List)
			adminGroup.POST("/certificates", certHandler.Upload)
			adminGroup.PATCH("/certificates/:id", certHandler.SetApproval)
			adminGroup.DELETE("/certificates/:id", certHandler.Delete)
		}
	}
}

// ServeUploads mounts the local certificate directory as static files
// under its public base URL. Only used with the local storage provider;
// the S3 provider hands out presigned URLs instead.
func ServeUploads(router *gin.Engine, baseURL, dir string) {
	router.Static(baseURL, dir)
}
