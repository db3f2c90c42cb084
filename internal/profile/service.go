package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/iancoleman/orderedmap"
	"gorm.io/gorm"
)

var ErrProfileNotFound = errors.New("profile not found")

type ProfileService struct {
	DB *gorm.DB

	mu       sync.RWMutex
	snapshot string
}

func (s *ProfileService) GetAbout() (*About, error) {
	var p Profile
	if err := s.DB.Order("id").First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	var exps []Experience
	if err := s.DB.Order("sort_order, id").Find(&exps).Error; err != nil {
		return nil, err
	}

	return &About{Profile: p, Experiences: exps}, nil
}

// ListProjects filters by category (exact, case-insensitive) and by a
// technology tag (case-insensitive substring).
func (s *ProfileService) ListProjects(f ProjectFilter) ([]Project, error) {
	q := s.DB.Order("year DESC, id")
	if c := strings.TrimSpace(f.Category); c != "" && !strings.EqualFold(c, "all") {
		q = q.Where("lower(category) = lower(?)", c)
	}

	var rows []Project
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	tech := strings.ToLower(strings.TrimSpace(f.Tech))
	if tech == "" {
		return rows, nil
	}

	out := make([]Project, 0, len(rows))
	for _, p := range rows {
		if containsFold(p.Technologies, tech) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *ProfileService) GetProject(id uint) (*Project, error) {
	var p Project
	if err := s.DB.Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *ProfileService) ListSkills(category string) ([]Skill, error) {
	q := s.DB.Order("level DESC, id")
	if c := strings.TrimSpace(category); c != "" {
		q = q.Where("lower(category) = lower(?)", c)
	}
	var out []Skill
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ProfileService) ListTemplates(f TemplateFilter) ([]Template, error) {
	q := s.DB.Order("year DESC, id")
	if c := strings.TrimSpace(f.Category); c != "" && !strings.EqualFold(c, "all") {
		q = q.Where("lower(category) = lower(?)", c)
	}
	if st := strings.TrimSpace(f.Status); st != "" {
		q = q.Where("lower(status) = lower(?)", st)
	}

	var rows []Template
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	tag := strings.ToLower(strings.TrimSpace(f.Tag))
	if tag == "" {
		return rows, nil
	}
	out := make([]Template, 0, len(rows))
	for _, t := range rows {
		if containsFold(t.Tags, tag) || containsFold(t.Types, tag) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *ProfileService) GetTemplate(id uint) (*Template, error) {
	var t Template
	if err := s.DB.Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *ProfileService) ListTestimonials() ([]Testimonial, error) {
	var out []Testimonial
	if err := s.DB.Order("sort_order, id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// containsFold reports whether any value contains needle, which must
// already be lower-case.
func containsFold(values []string, needle string) bool {
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}

// Seed replaces all portfolio content in one transaction.
func (s *ProfileService) Seed(c *Content) error {
	exps, err := c.experiences()
	if err != nil {
		return err
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		for _, m := range []interface{}{&Profile{}, &Experience{}, &Project{}, &Skill{}, &Template{}, &Testimonial{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error; err != nil {
				return fmt.Errorf("failed to clear content: %w", err)
			}
		}

		p := c.Profile
		p.ID = 0
		if err := tx.Create(&p).Error; err != nil {
			return fmt.Errorf("failed to save profile: %w", err)
		}
		if len(exps) > 0 {
			if err := tx.Create(&exps).Error; err != nil {
				return fmt.Errorf("failed to save experience: %w", err)
			}
		}
		if len(c.Projects) > 0 {
			if err := tx.Create(&c.Projects).Error; err != nil {
				return fmt.Errorf("failed to save projects: %w", err)
			}
		}
		if len(c.Skills) > 0 {
			if err := tx.Create(&c.Skills).Error; err != nil {
				return fmt.Errorf("failed to save skills: %w", err)
			}
		}
		if len(c.Templates) > 0 {
			if err := tx.Create(&c.Templates).Error; err != nil {
				return fmt.Errorf("failed to save templates: %w", err)
			}
		}
		if quotes := c.testimonials(); len(quotes) > 0 {
			if err := tx.Create(&quotes).Error; err != nil {
				return fmt.Errorf("failed to save testimonials: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidate()
	return nil
}

// Reload seeds from a content file on disk.
func (s *ProfileService) Reload(path string) (*Content, error) {
	c, err := LoadContentFile(path)
	if err != nil {
		return nil, err
	}
	if err := s.Seed(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Snapshot returns the compact biographical context embedded in the
// assistant's system instruction. Keys keep a fixed order so the
// instruction is byte-stable between calls.
func (s *ProfileService) Snapshot(_ context.Context) (string, error) {
	s.mu.RLock()
	cached := s.snapshot
	s.mu.RUnlock()
	if cached != "" {
		return cached, nil
	}

	about, err := s.GetAbout()
	if err != nil {
		return "", err
	}
	projects, err := s.ListProjects(ProjectFilter{})
	if err != nil {
		return "", err
	}
	skills, err := s.ListSkills("")
	if err != nil {
		return "", err
	}

	out, err := buildSnapshot(about, projects, skills)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.snapshot = out
	s.mu.Unlock()
	return out, nil
}

func (s *ProfileService) invalidate() {
	s.mu.Lock()
	s.snapshot = ""
	s.mu.Unlock()
}

func buildSnapshot(about *About, projects []Project, skills []Skill) (string, error) {
	root := orderedmap.New()
	root.Set("name", about.Profile.Name)
	root.Set("role", about.Profile.Job)
	if about.Profile.Address != "" {
		root.Set("location", about.Profile.Address)
	}

	skillNames := make([]string, 0, len(skills))
	for _, sk := range skills {
		skillNames = append(skillNames, sk.Name)
	}
	root.Set("skills", skillNames)

	exps := make([]*orderedmap.OrderedMap, 0, len(about.Experiences))
	for _, e := range about.Experiences {
		m := orderedmap.New()
		m.Set("title", e.Title)
		if e.Company != "" {
			m.Set("company", e.Company)
		}
		m.Set("period", e.Period)
		exps = append(exps, m)
	}
	root.Set("experience", exps)

	prj := make([]*orderedmap.OrderedMap, 0, len(projects))
	for _, p := range projects {
		m := orderedmap.New()
		m.Set("name", p.Name)
		m.Set("description", p.Description)
		m.Set("tech", []string(p.Technologies))
		prj = append(prj, m)
	}
	root.Set("projects", prj)

	b, err := json.Marshal(root)
	if err != nil {
		return "", fmt.Errorf("failed to marshal profile snapshot: %w", err)
	}
	return string(b), nil
}
