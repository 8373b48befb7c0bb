package api

import (
	"github.com/SlpAus/habit-tracker-backend/internal/habit"
	"github.com/SlpAus/habit-tracker-backend/internal/user"
	"github.com/gin-gonic/gin"
)

// SetupRoutes 注册项目的所有API路由
func SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		// 认证相关的路由组 /api/auth
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/signup", user.Signup)
			authRoutes.POST("/signin", user.Signin)
			authRoutes.POST("/signout", user.RequireAuthMiddleware(), user.Signout)
			authRoutes.POST("/change-password", user.RequireAuthMiddleware(), user.ChangePasswordHandler)
		}

		// 习惯相关的路由组 /api/habits，全部需要认证
		habitRoutes := api.Group("/habits", user.RequireAuthMiddleware())
		{
			habitRoutes.GET("", habit.ListHabitsHandler)
			habitRoutes.POST("", habit.CreateHabitHandler)
			habitRoutes.DELETE("/:id", habit.DeleteHabitHandler)
			habitRoutes.POST("/:id/toggle", habit.ToggleCompletionHandler)
			habitRoutes.GET("/:id/stats", habit.GetHabitStatsHandler)
		}
	}
}
