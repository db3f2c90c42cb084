package profile

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ProfileController struct {
	Service ProfileServiceAPI
}

func (pc *ProfileController) GetAbout(c *gin.Context) {
	about, err := pc.Service.GetAbout()
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, about)
}

// GET /api/projects?category=Frontend&tech=react
func (pc *ProfileController) ListProjects(c *gin.Context) {
	projects, err := pc.Service.ListProjects(ProjectFilter{
		Category: c.Query("category"),
		Tech:     c.Query("tech"),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"projects": projects,
		"total":    len(projects),
	})
}

func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.Atoi(strings.TrimSpace(c.Param("id")))
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}

func (pc *ProfileController) GetProject(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "valid project id is required"})
		return
	}

	p, err := pc.Service.GetProject(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, p)
}

func (pc *ProfileController) ListSkills(c *gin.Context) {
	skills, err := pc.Service.ListSkills(c.Query("category"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"skills": skills})
}

// GET /api/templates?category=creative&status=hot&tag=react
func (pc *ProfileController) ListTemplates(c *gin.Context) {
	templates, err := pc.Service.ListTemplates(TemplateFilter{
		Category: c.Query("category"),
		Status:   c.Query("status"),
		Tag:      c.Query("tag"),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"templates": templates,
		"total":     len(templates),
	})
}

func (pc *ProfileController) GetTemplate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "valid template id is required"})
		return
	}

	t, err := pc.Service.GetTemplate(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, t)
}

func (pc *ProfileController) ListTestimonials(c *gin.Context) {
	quotes, err := pc.Service.ListTestimonials()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"testimonials": quotes})
}
