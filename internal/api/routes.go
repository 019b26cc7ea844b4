package api

import (
	"net/http"

	"forgefit/gym-api/internal/domain"
	"forgefit/gym-api/internal/service"

	"github.com/gin-gonic/gin"
)

// SetupRoutes mounts the full API surface on the router. Everything under
// /gyms/:gymId runs behind GymContextMiddleware, which resolves the caller's
// membership and role for that gym.
func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	gymService service.GymService,
	clientService service.ClientService,
	programService service.ProgramService,
	progressionService service.ProgressionService,
	scheduleService service.ScheduleService,
	workoutService service.WorkoutService,
) {
	authHandler := NewAuthHandler(authService)
	gymHandler := NewGymHandler(gymService)
	clientHandler := NewClientHandler(clientService)
	programHandler := NewProgramHandler(programService)
	progressionHandler := NewProgressionHandler(progressionService)
	scheduleHandler := NewScheduleHandler(scheduleService)
	workoutHandler := NewWorkoutHandler(workoutService)

	authMiddleware := AuthMiddleware(jwtSecret)
	staffOnly := RequireGymRole(domain.GymRoleOwner, domain.GymRoleTrainer)
	ownerOnly := RequireGymRole(domain.GymRoleOwner)

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
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userID, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			role, _ := getUserRoleFromContext(c)
			respondOK(c, gin.H{"userId": userID, "role": role})
		})

		protected.POST("/gyms", gymHandler.CreateGym)
		protected.GET("/gyms", SystemRoleMiddleware(domain.RoleAdmin), gymHandler.ListGyms)

		// Admin hook for the weekly scheduler.
		adminGroup := protected.Group("/admin")
		adminGroup.Use(SystemRoleMiddleware(domain.RoleAdmin))
		{
			adminGroup.POST("/progression/run-weekly", progressionHandler.RunWeeklyProgression)
		}

		gymGroup := protected.Group("/gyms/:gymId")
		gymGroup.Use(GymContextMiddleware(gymService))
		{
			gymGroup.GET("", gymHandler.GetGym)
			gymGroup.PUT("", ownerOnly, gymHandler.UpdateGym)
			gymGroup.DELETE("", ownerOnly, gymHandler.DeactivateGym)

			// Membership management.
			gymGroup.POST("/members", ownerOnly, gymHandler.AddMember)
			gymGroup.GET("/coaches", staffOnly, gymHandler.ListCoaches)
			gymGroup.PUT("/members/:userId/role", ownerOnly, gymHandler.UpdateMemberRole)
			gymGroup.DELETE("/coaches/:userId", ownerOnly, gymHandler.RemoveCoach)

			// Locations.
			gymGroup.POST("/locations", ownerOnly, gymHandler.CreateLocation)
			gymGroup.GET("/locations", gymHandler.ListLocations)
			gymGroup.PUT("/locations/:locationId", ownerOnly, gymHandler.UpdateLocation)
			gymGroup.DELETE("/locations/:locationId", ownerOnly, gymHandler.DeleteLocation)

			// Clients.
			clientGroup := gymGroup.Group("/clients")
			{
				clientGroup.POST("", staffOnly, clientHandler.CreateClient)
				clientGroup.GET("", staffOnly, clientHandler.ListClients)
				clientGroup.GET("/names", staffOnly, clientHandler.ListClientNames)
				clientGroup.GET("/:clientId", clientHandler.GetClient)
				clientGroup.PUT("/:clientId", staffOnly, clientHandler.UpdateClient)
				clientGroup.DELETE("/:clientId", staffOnly, clientHandler.DeleteClient)

				// Benchmarks.
				clientGroup.GET("/:clientId/benchmarks", clientHandler.ListBenchmarks)
				clientGroup.GET("/:clientId/benchmarks/history", clientHandler.ListBenchmarkHistory)
				clientGroup.POST("/:clientId/benchmarks", staffOnly, clientHandler.RecordBenchmark)
				clientGroup.DELETE("/:clientId/benchmarks/:benchmarkId", staffOnly, clientHandler.DeleteBenchmark)

				// Progress photos.
				clientGroup.POST("/:clientId/photos/upload-url", clientHandler.RequestPhotoUpload)
				clientGroup.POST("/:clientId/photos", clientHandler.ConfirmPhotoUpload)
				clientGroup.GET("/:clientId/photos", clientHandler.ListPhotos)
				clientGroup.GET("/:clientId/photos/:photoId/download-url", clientHandler.GetPhotoDownloadURL)
				clientGroup.DELETE("/:clientId/photos/:photoId", clientHandler.DeletePhoto)

				// Program assignment and progression.
				clientGroup.DELETE("/:clientId/program", staffOnly, programHandler.UnassignProgram)
				clientGroup.GET("/:clientId/progress", progressionHandler.GetCurrentWorkout)
				clientGroup.POST("/:clientId/progress/advance", staffOnly, progressionHandler.Advance)
				clientGroup.POST("/:clientId/progress/reset", staffOnly, progressionHandler.Reset)
				clientGroup.POST("/progress/advance-all", ownerOnly, progressionHandler.AdvanceAll)

				// Workout sessions.
				clientGroup.POST("/:clientId/workout-sessions", workoutHandler.StartSession)
				clientGroup.GET("/:clientId/workout-sessions/active", workoutHandler.GetActiveSession)
			}

			// Benchmark templates.
			gymGroup.POST("/benchmark-templates", staffOnly, clientHandler.CreateBenchmarkTemplate)
			gymGroup.GET("/benchmark-templates", clientHandler.ListBenchmarkTemplates)

			// Programs.
			programGroup := gymGroup.Group("/programs")
			{
				programGroup.POST("", staffOnly, programHandler.CreateProgram)
				programGroup.GET("", programHandler.ListPrograms)
				programGroup.GET("/:programId", programHandler.GetProgram)
				programGroup.PUT("/:programId", staffOnly, programHandler.UpdateProgram)
				programGroup.DELETE("/:programId", staffOnly, programHandler.DeleteProgram)
				programGroup.POST("/:programId/assign", staffOnly, programHandler.AssignProgram)
			}

			// Schedules.
			gymGroup.POST("/coaches/:coachId/schedules", staffOnly, scheduleHandler.CreateSchedule)
			gymGroup.GET("/coaches/:coachId/schedules", scheduleHandler.ListCoachSchedules)

			scheduleGroup := gymGroup.Group("/schedules")
			{
				scheduleGroup.GET("/overview", scheduleHandler.Overview)
				scheduleGroup.GET("/conflicts", staffOnly, scheduleHandler.ConflictReport)
				scheduleGroup.GET("/:scheduleId", scheduleHandler.GetSchedule)
				scheduleGroup.PUT("/:scheduleId", staffOnly, scheduleHandler.UpdateSchedule)
				scheduleGroup.DELETE("/:scheduleId", staffOnly, scheduleHandler.DeleteSchedule)
				scheduleGroup.POST("/:scheduleId/enroll", staffOnly, scheduleHandler.Enroll)
				scheduleGroup.DELETE("/:scheduleId/unenroll", staffOnly, scheduleHandler.Unenroll)
				scheduleGroup.POST("/:scheduleId/materialize", staffOnly, scheduleHandler.Materialize)
				scheduleGroup.POST("/:scheduleId/rollover", staffOnly, scheduleHandler.Rollover)
			}

			// Workout sessions addressed by session ID.
			sessionGroup := gymGroup.Group("/workout-sessions")
			{
				sessionGroup.GET("/:sessionId", workoutHandler.GetSession)
				sessionGroup.PUT("/:sessionId/sets", workoutHandler.CompleteSet)
				sessionGroup.POST("/:sessionId/end", workoutHandler.EndSession)
			}
		}
	}
}
