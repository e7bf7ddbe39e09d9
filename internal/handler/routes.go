package handler

import (
	"github.com/gin-gonic/gin"
)

// Handlers groups every HTTP handler mounted under the API prefix.
type Handlers struct {
	Auth       *AuthHandler
	Users      *UserHandler
	Courses    *CourseHandler
	Events     *EventHandler
	Invoices   *InvoiceHandler
	Leaves     *LeaveHandler
	Messages   *MessageHandler
	Attendance *AttendanceHandler
	Dashboard  *DashboardHandler
	Timetable  *TimetableHandler
	Imports    *ImportHandler
	Exports    *ExportHandler
}

// Register mounts the API routes on api. guard protects everything except the
// login and signed download endpoints.
func Register(api *gin.RouterGroup, h Handlers, guard gin.HandlerFunc) {
	public := api.Group("")
	public.POST("/auth/login", h.Auth.Login)
	public.GET("/exports/download", h.Exports.Download)

	secured := api.Group("")
	secured.Use(guard)

	secured.GET("/auth/me", h.Auth.Me)

	users := secured.Group("/users")
	users.GET("", h.Users.List)
	users.POST("", h.Users.Create)
	users.GET("/:id", h.Users.Get)
	users.PUT("/:id", h.Users.Update)
	users.DELETE("/:id", h.Users.Delete)

	courses := secured.Group("/courses")
	courses.GET("", h.Courses.List)
	courses.POST("", h.Courses.Create)
	courses.GET("/:id", h.Courses.Get)
	courses.PUT("/:id", h.Courses.Update)
	courses.DELETE("/:id", h.Courses.Delete)

	events := secured.Group("/events")
	events.GET("", h.Events.List)
	events.POST("", h.Events.Create)
	events.GET("/:id", h.Events.Get)
	events.PUT("/:id", h.Events.Update)
	events.DELETE("/:id", h.Events.Delete)

	invoices := secured.Group("/invoices")
	invoices.GET("", h.Invoices.List)
	invoices.POST("", h.Invoices.Create)
	invoices.POST("/generate", h.Invoices.Generate)
	invoices.GET("/:id", h.Invoices.Get)
	invoices.PUT("/:id", h.Invoices.Update)
	invoices.DELETE("/:id", h.Invoices.Delete)
	invoices.GET("/:id/pdf", h.Invoices.PDF)
	invoices.POST("/:id/items", h.Invoices.AddItem)
	invoices.PATCH("/:id/items/:itemId", h.Invoices.UpdateItem)
	invoices.DELETE("/:id/items/:itemId", h.Invoices.RemoveItem)

	leaves := secured.Group("/leave-requests")
	leaves.GET("", h.Leaves.List)
	leaves.POST("", h.Leaves.Create)
	leaves.GET("/:id", h.Leaves.Get)
	leaves.POST("/:id/approve", h.Leaves.Approve)
	leaves.POST("/:id/reject", h.Leaves.Reject)

	messages := secured.Group("/messages")
	messages.GET("", h.Messages.List)
	messages.POST("", h.Messages.Send)
	messages.GET("/recipients", h.Messages.Recipients)

	attendance := secured.Group("/attendance/faculty")
	attendance.GET("", h.Attendance.Summaries)
	attendance.POST("", h.Attendance.Record)
	attendance.GET("/:id", h.Attendance.Summary)

	secured.GET("/dashboard", h.Dashboard.Summary)
	secured.GET("/analytics", h.Dashboard.Analytics)

	academics := secured.Group("/academics")
	academics.GET("/timetable", h.Timetable.Students)
	academics.GET("/faculty-timetable", h.Timetable.Faculty)
	academics.GET("/course-attendance", h.Timetable.CourseAttendance)
	secured.GET("/options", h.Timetable.Options)

	imports := secured.Group("/imports")
	imports.POST("/preview", h.Imports.Preview)
	imports.POST("/:entity", h.Imports.Import)

	exports := secured.Group("/exports")
	exports.GET("", h.Exports.List)
	exports.POST("", h.Exports.Create)
	exports.GET("/:id", h.Exports.Status)
}
