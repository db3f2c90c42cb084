package profile

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.Engine, profileService *ProfileService) {
	profileController := &ProfileController{Service: profileService}

	api := r.Group("/api")
	{
		api.GET("/profile", profileController.GetAbout)
		api.GET("/projects", profileController.ListProjects)
		api.GET("/projects/:id", profileController.GetProject)
		api.GET("/skills", profileController.ListSkills)
		api.GET("/templates", profileController.ListTemplates)
		api.GET("/templates/:id", profileController.GetTemplate)
		api.GET("/testimonials", profileController.ListTestimonials)
	}
}
