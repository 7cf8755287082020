package router

import (
	"Confizz/internal/handler"
	"Confizz/internal/middleware"
	"Confizz/internal/pkg"
	"Confizz/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deps 路由需要的全部服务，由 main 组装
type Deps struct {
	Users       *service.UserService
	Emails      *service.EmailService
	Communities *service.CommunityService
	Confessions *service.ConfessionService
	Comments    *service.CommentService
	Summaries   *service.SummaryService
	Sessions    *pkg.SessionManager
	Checks      map[string]handler.Checker
	Logger      *zap.Logger
}

func InitRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(d.Logger), middleware.RequestLogger(d.Logger))

	user := handler.NewUserHandler(d.Users, d.Sessions, d.Logger)
	email := handler.NewEmailHandler(d.Emails, d.Users, d.Logger)
	community := handler.NewCommunityHandler(d.Communities, d.Confessions, d.Logger)
	confession := handler.NewConfessionHandler(d.Confessions, d.Logger)
	comment := handler.NewCommentHandler(d.Comments, d.Logger)
	summary := handler.NewSummaryHandler(d.Summaries, d.Logger)
	health := handler.NewHealthHandler(d.Checks, d.Logger)

	requireAuth := middleware.AuthMiddleware(d.Users, d.Sessions, d.Logger)
	optionalAuth := middleware.OptionalAuth(d.Users, d.Sessions, d.Logger)

	r.GET("/healthz", health.Healthz)

	// 首页：全站列表和匿名发布
	r.GET("/", confession.Feed)
	r.POST("/", confession.PostAnonymous)

	dashboard := r.Group("/dashboard")
	dashboard.Use(requireAuth)
	{
		dashboard.GET("/", confession.Dashboard)
		dashboard.POST("/", confession.PostAsUser)
	}

	// 评论和摘要
	confessionGroup := r.Group("/confession/:id")
	{
		confessionGroup.GET("/comments/", comment.List)
		confessionGroup.POST("/comment/", optionalAuth, comment.Create)
		confessionGroup.POST("/summarize/", summary.Summarize)
	}

	// 社区相关接口
	communityGroup := r.Group("/communities")
	{
		communityGroup.GET("/", community.List)
		communityGroup.POST("/create/", requireAuth, community.Create)
		communityGroup.GET("/:slug/", community.Detail)
		communityGroup.GET("/:slug/delete/", requireAuth, community.ConfirmDelete)
		communityGroup.POST("/:slug/delete/", requireAuth, community.Delete)
	}

	// 用户相关接口
	r.POST("/signup/", user.Signup)
	r.POST("/login/", user.Login)
	r.POST("/logout/", requireAuth, user.Logout)
	r.POST("/token/refresh/", user.TokenRefresh)

	passwordGroup := r.Group("/password/reset")
	{
		passwordGroup.POST("/code/", email.SendResetCode)
		passwordGroup.POST("/", email.ResetPassword)
	}

	authGroup := r.Group("/auth")
	authGroup.Use(requireAuth)
	{
		authGroup.POST("/change-password/", user.ChangePassword)
	}

	return r
}
