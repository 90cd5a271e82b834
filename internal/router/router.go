// Package router wires handlers, guards and cross-cutting middleware onto
// the Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/prabhjot122/LawCourt/internal/config"
	"github.com/prabhjot122/LawCourt/internal/handler"
	"github.com/prabhjot122/LawCourt/internal/middleware"
)

// Deps collects everything route registration needs.
type Deps struct {
	Auth        *handler.AuthHandler
	OAuth       *handler.OAuthHandler
	Access      *handler.AccessHandler
	Admin       *handler.AdminHandler
	Email       *handler.EmailHandler
	Blogs       *handler.BlogHandler
	Research    *handler.ResearchHandler
	Notes       *handler.NoteHandler
	Internships *handler.InternshipHandler
	Courses     *handler.CourseHandler
	Quizzes     *handler.QuizHandler
	Health      echo.HandlerFunc

	Sessions middleware.SessionValidator
	Users    middleware.UserLoader

	RateLimit config.RateLimitConfig
	Cache     config.CacheConfig
	Redis     *redis.Client
}

// Register mounts every route.  Auth endpoints sit behind the Redis token
// bucket; public content listings sit behind the response cache; everything
// under /admin re-checks admin authority per request.
func Register(e *echo.Echo, d Deps) {
	limiter := middleware.NewTokenBucket(d.RateLimit, d.Redis)
	cache := middleware.NewRedisCache(d.Cache, d.Redis)
	sessionAuth := middleware.SessionAuth(d.Sessions)
	requireAdmin := middleware.RequireAdmin(d.Users)
	requireEditor := middleware.RequireEditor(d.Users)

	e.GET("/health", d.Health)

	// Credential and OAuth entry points.  Unauthenticated, rate limited.
	e.POST("/register", d.Auth.Register, limiter)
	e.POST("/login", d.Auth.Login, limiter)
	e.POST("/logout", d.Auth.Logout)
	e.POST("/auth/google", d.OAuth.GoogleAuth, limiter)
	e.POST("/auth/complete-profile", d.OAuth.CompleteProfile)
	e.GET("/user/validate_session", d.Auth.ValidateSession)

	// Session-holder routes.
	user := e.Group("", sessionAuth)
	user.GET("/user/profile", d.Auth.Profile)
	user.POST("/request_editor_access", d.Access.RequestEditorAccess)

	// Admin console.
	admin := e.Group("/admin", sessionAuth, requireAdmin)
	admin.POST("/approve_deny_access", d.Access.ApproveDenyAccess)
	admin.GET("/access_requests", d.Access.ListAccessRequests)
	admin.GET("/users", d.Admin.ListUsers)
	admin.GET("/analytics", d.Admin.Analytics)
	admin.GET("/audit_logs", d.Admin.AuditLogs)
	admin.POST("/update_user_role", d.Admin.UpdateUserRole)
	admin.POST("/update_user_status", d.Admin.UpdateUserStatus)
	admin.POST("/update_user_profile", d.Admin.UpdateUserProfile)
	admin.POST("/create_user", d.Admin.CreateUser)
	admin.POST("/change_password", d.Admin.ChangePassword)
	admin.POST("/send_email", d.Email.SendEmail)
	admin.GET("/email_logs", d.Email.EmailLogs)
	admin.GET("/users_for_email", d.Email.UsersForEmail)

	// Blog posts: public reads, editor writes, any session may comment.
	e.GET("/blogs", d.Blogs.List, cache)
	e.GET("/blogs/:id", d.Blogs.Get)
	e.POST("/blogs", d.Blogs.Create, sessionAuth, requireEditor)
	e.PUT("/blogs/:id", d.Blogs.Update, sessionAuth, requireEditor)
	e.DELETE("/blogs/:id", d.Blogs.Delete, sessionAuth)
	e.POST("/blogs/:id/comments", d.Blogs.AddComment, sessionAuth)

	// Research papers.
	e.GET("/research_papers", d.Research.List, cache)
	e.GET("/research_papers/:id", d.Research.Get)
	e.POST("/research_papers", d.Research.Create, sessionAuth, requireEditor)
	e.PUT("/research_papers/:id", d.Research.Update, sessionAuth, requireEditor)
	e.DELETE("/research_papers/:id", d.Research.Delete, sessionAuth)

	// Private notes: everything owner-scoped.
	notes := e.Group("/notes", sessionAuth)
	notes.GET("", d.Notes.List)
	notes.POST("", d.Notes.Create)
	notes.GET("/:id", d.Notes.Get)
	notes.PUT("/:id", d.Notes.Update)
	notes.DELETE("/:id", d.Notes.Delete)

	// Internships: public reads, editor postings, any session may apply.
	e.GET("/internships", d.Internships.List, cache)
	e.GET("/internships/:id", d.Internships.Get)
	e.POST("/internships", d.Internships.Create, sessionAuth, requireEditor)
	e.PUT("/internships/:id", d.Internships.Update, sessionAuth, requireEditor)
	e.DELETE("/internships/:id", d.Internships.Delete, sessionAuth)
	e.POST("/internships/:id/apply", d.Internships.Apply, sessionAuth)
	e.GET("/internships/:id/applications", d.Internships.Applications, sessionAuth)

	// Courses: public reads, editor authoring, any session may enroll.
	e.GET("/courses", d.Courses.List, cache)
	e.GET("/courses/:id", d.Courses.Get)
	e.POST("/courses", d.Courses.Create, sessionAuth, requireEditor)
	e.PUT("/courses/:id", d.Courses.Update, sessionAuth, requireEditor)
	e.DELETE("/courses/:id", d.Courses.Delete, sessionAuth)
	e.POST("/courses/:id/modules", d.Courses.AddModule, sessionAuth, requireEditor)
	e.POST("/courses/:id/enroll", d.Courses.Enroll, sessionAuth)

	// Quizzes: public reads, editor authoring, any session may attempt.
	e.GET("/quizzes", d.Quizzes.List, cache)
	e.GET("/quizzes/:id", d.Quizzes.Get)
	e.POST("/quizzes", d.Quizzes.Create, sessionAuth, requireEditor)
	e.PUT("/quizzes/:id", d.Quizzes.Update, sessionAuth, requireEditor)
	e.DELETE("/quizzes/:id", d.Quizzes.Delete, sessionAuth)
	e.POST("/quizzes/:id/questions", d.Quizzes.AddQuestion, sessionAuth, requireEditor)
	e.POST("/quizzes/:id/submit", d.Quizzes.Submit, sessionAuth)
}
