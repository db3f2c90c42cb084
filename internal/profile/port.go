package profile

import "context"

type ProfileServiceAPI interface {
	GetAbout() (*About, error)
	ListProjects(f ProjectFilter) ([]Project, error)
	GetProject(id uint) (*Project, error)
	ListSkills(category string) ([]Skill, error)
	ListTemplates(f TemplateFilter) ([]Template, error)
	GetTemplate(id uint) (*Template, error)
	ListTestimonials() ([]Testimonial, error)
	Snapshot(ctx context.Context) (string, error)
}

var _ ProfileServiceAPI = (*ProfileService)(nil)
