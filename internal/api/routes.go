package api

import (
	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Services bundles what the HTTP layer depends on.
type Services struct {
	Auth       service.AuthService
	Trainer    service.TrainerService
	Assessment service.AssessmentService
	Workout    service.WorkoutService
	Profile    service.ProfileService
}

func SetupRoutes(router *gin.Engine, jwtSecret string, svc Services) {
	authHandler := NewAuthHandler(svc.Auth)
	trainerHandler := NewTrainerHandler(svc.Trainer, svc.Workout)
	studentHandler := NewStudentHandler(svc.Profile, svc.Assessment, svc.Workout)
	workoutHandler := NewWorkoutHandler(svc.Workout)
	profileHandler := NewProfileHandler(svc.Profile)

	router.Use(RequestID())

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(AuthMiddleware(jwtSecret))
	{
		protected.GET("/me", profileHandler.GetMe)
		protected.PATCH("/me", profileHandler.UpdateMe)
		protected.GET("/me/trainers", profileHandler.GetMyTrainers)

		// --- Trainer Specific Routes ---
		trainerGroup := protected.Group("/trainer")
		trainerGroup.Use(RoleMiddleware(domain.RoleTrainer))
		{
			trainerGroup.GET("/dashboard", trainerHandler.GetDashboard)
			trainerGroup.GET("/timeline", trainerHandler.GetTimeline)

			trainerGroup.GET("/students", trainerHandler.GetStudents)
			trainerGroup.POST("/students", trainerHandler.CreateStudent)
			trainerGroup.GET("/students/search", trainerHandler.SearchStudents)
			trainerGroup.PUT("/students/:studentId/link", trainerHandler.LinkStudent)
			trainerGroup.DELETE("/students/:studentId/link", trainerHandler.UnlinkStudent)

			trainerGroup.POST("/students/:studentId/media", trainerHandler.RequestMediaUploadURL)
			trainerGroup.DELETE("/students/:studentId/media", trainerHandler.DeleteMedia)
		}

		// --- Student records (guarded per request, both roles) ---
		studentGroup := protected.Group("/students/:studentId")
		{
			studentGroup.GET("/profile", studentHandler.GetProfile)

			studentGroup.GET("/assessments", studentHandler.GetAssessments)
			studentGroup.POST("/assessments", studentHandler.CreateAssessment)
			studentGroup.GET("/assessments/latest", studentHandler.GetLatestComposition)
			studentGroup.GET("/history", studentHandler.GetHistory)

			studentGroup.GET("/workouts", studentHandler.GetWorkouts)
			studentGroup.PUT("/workouts", studentHandler.UpsertWorkout)
			studentGroup.GET("/schedule", studentHandler.GetSchedule)
			studentGroup.GET("/completions", studentHandler.GetCompletions)
			studentGroup.GET("/media", studentHandler.GetMediaDownloadURL)
		}

		workoutGroup := protected.Group("/workouts/:workoutId")
		{
			workoutGroup.GET("", workoutHandler.GetWorkout)
			workoutGroup.PUT("", workoutHandler.UpdateWorkout)
			workoutGroup.DELETE("", workoutHandler.DeleteWorkout)
			workoutGroup.POST("/complete", workoutHandler.CompleteWorkout)
		}
	}
}
