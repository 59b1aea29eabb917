package route

import (
	"github.com/SeakMengs/AutoTermo/internal/constant"
	"github.com/SeakMengs/AutoTermo/internal/controller"
	"github.com/SeakMengs/AutoTermo/internal/middleware"
	"github.com/gin-gonic/gin"
)

// RegisterV1 mounts every authenticated v1 route under r.
func RegisterV1(r *gin.RouterGroup, c *controller.Controller, mw *middleware.Middleware) {
	v1 := r.Group("/v1")
	v1.Use(mw.AuthMiddleware)

	v1.GET("/me", c.User.GetMe)
	termos(v1.Group("/termos"), c.Termo, mw)
}

func termos(g *gin.RouterGroup, tc *controller.TermoController, mw *middleware.Middleware) {
	managers := mw.RequireRoles(constant.UserRoleAdmin, constant.UserRoleProfessor)

	g.GET("/pendentes", tc.GetPendentes)
	g.POST("/notify", managers, tc.NotifyPending)
	g.GET("/projects/:projectId/status", tc.GetStatusByProject)

	vacancy := g.Group("/vacancies/:vacancyId")
	vacancy.POST("/generate", managers, tc.GenerateTermo)
	vacancy.POST("/sign", tc.SignTermo)
	vacancy.GET("/download", tc.DownloadTermo)
	vacancy.GET("/status", tc.GetStatusByVacancy)
	vacancy.GET("/ready", tc.ValidateReady)
	vacancy.POST("/rebuild", managers, tc.RebuildDocument)
}
