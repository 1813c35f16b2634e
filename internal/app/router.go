package app

import (
	"studybot_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	api := router.Group("/api")
	{
		api.GET("/health", c.health.HealthCheck)

		// Catalog navigation
		api.GET("/classes", c.catalog.ListClasses)
		api.GET("/classes/:class/subjects", c.catalog.ListSubjects)
		api.GET("/classes/:class/subjects/:subject/categories", c.catalog.ListCategories)
		api.GET("/items", c.catalog.ListItems)
		api.GET("/items/latest", c.catalog.Latest)
		api.GET("/items/top", c.catalog.MostViewed)
		api.GET("/items/:id", c.catalog.OpenItem)
		api.POST("/items/:id/download", c.catalog.MarkDownloaded)

		// Search
		api.GET("/search", c.catalog.Search)
		api.GET("/search/smart", c.catalog.SmartSearch)

		// Quiz catalog
		api.GET("/quiz/subjects", c.quiz.ListSubjects)
		api.GET("/leaderboard", c.profile.Leaderboard)

		// Per-user state
		users := api.Group("/users/:id")
		{
			users.GET("/language", c.profile.GetLanguage)
			users.PUT("/language", c.profile.SetLanguage)
			users.GET("/bookmarks", c.profile.ListBookmarks)
			users.POST("/bookmarks/:itemId", c.profile.AddBookmark)
			users.DELETE("/bookmarks/:itemId", c.profile.RemoveBookmark)
			users.PUT("/daily", c.profile.SetDaily)
			users.GET("/points", c.profile.GetPoints)
			users.POST("/quiz", c.quiz.StartQuiz)
			users.GET("/quiz", c.quiz.CurrentQuestion)
			users.POST("/quiz/answer", c.quiz.SubmitAnswer)
		}
	}

	// Operator endpoints. Authorization is handled outside this service
	// (deployment-level), matching the single-operator model.
	admin := router.Group("/api/admin")
	{
		admin.POST("/items", c.admin.IngestItems)
		admin.DELETE("/items/:id", c.admin.DeleteItem)
		admin.POST("/broadcast", c.admin.Broadcast)
		admin.POST("/digest/run", c.admin.RunDigest)
		admin.POST("/backup", c.admin.Backup)
	}
}
