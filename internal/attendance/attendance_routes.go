package attendance

import "github.com/gin-gonic/gin"

// RouteMiddleware groups the handlers placed in front of attendance routes.
// Auth runs on every route and must set the token claims. Actions runs on
// the clock and break mutations only; Details guards the drill-down.
type RouteMiddleware struct {
	Auth    []gin.HandlerFunc
	Actions []gin.HandlerFunc
	Details []gin.HandlerFunc
}

func RegisterRoutes(r *gin.RouterGroup, h *Handler, mw RouteMiddleware) {
	attendance := r.Group("/attendance")
	attendance.Use(mw.Auth...)
	{
		attendance.POST("/session", h.Mount)
		attendance.GET("/session", h.Display)
		attendance.DELETE("/session", h.Unmount)
		attendance.GET("/session/stream", h.Stream)
		attendance.POST("/session/focus", h.Focus)
		attendance.GET("/session/notifications", h.Notifications)

		details := attendance.Group("", mw.Details...)
		details.GET("/details", h.Details)

		actions := attendance.Group("", mw.Actions...)
		actions.POST("/clock-in", h.ClockIn)
		actions.POST("/clock-out", h.ClockOut)
		actions.POST("/break", h.ToggleBreak)
	}
}
