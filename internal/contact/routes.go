package contact

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.Engine, contactService ContactServiceAPI) {
	contactController := &ContactController{Service: contactService}

	api := r.Group("/api")
	{
		api.POST("/contact", contactController.Submit)
	}
}
