package profile

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

type Profile struct {
	ID              uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name            string         `gorm:"size:255;not null" json:"name" yaml:"name"`
	Job             string         `gorm:"size:255" json:"job" yaml:"job"`
	Address         string         `gorm:"size:255" json:"address" yaml:"address"`
	Email           string         `gorm:"size:255" json:"email" yaml:"email"`
	Phone           string         `gorm:"size:50" json:"phone" yaml:"phone"`
	Birthday        string         `gorm:"size:50" json:"birthday" yaml:"birthday"`
	LinkedIn        string         `gorm:"size:512;column:linkedin" json:"linkedIn" yaml:"linkedin"`
	Github          string         `gorm:"size:512" json:"github" yaml:"github"`
	Facebook        string         `gorm:"size:512" json:"facebook" yaml:"facebook"`
	GoogleDeveloper string         `gorm:"size:512" json:"googleDeveloper" yaml:"google_developer"`
	Summary         pq.StringArray `gorm:"type:text" json:"summary" yaml:"summary"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at" yaml:"-"`
}

type Experience struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Company   string         `gorm:"size:255" json:"company" yaml:"company"`
	Title     string         `gorm:"size:255;not null" json:"title" yaml:"title"`
	Position  string         `gorm:"size:255" json:"position" yaml:"position"`
	Period    string         `gorm:"size:100" json:"period" yaml:"period"`
	Location  string         `gorm:"size:255" json:"location" yaml:"location"`
	Steps     datatypes.JSON `gorm:"type:json" json:"steps" yaml:"-"`
	SortOrder int            `gorm:"not null;default:0" json:"sort_order" yaml:"-"`
}

type Project struct {
	ID           uint           `gorm:"primaryKey;autoIncrement" json:"id" yaml:"id"`
	Name         string         `gorm:"size:255;not null" json:"name" yaml:"name"`
	Description  string         `gorm:"type:text" json:"description" yaml:"description"`
	Image        string         `gorm:"size:1024" json:"image" yaml:"image"`
	Link         string         `gorm:"size:1024" json:"link" yaml:"link"`
	Demo         string         `gorm:"size:1024" json:"demo,omitempty" yaml:"demo"`
	Category     string         `gorm:"size:100;index" json:"category" yaml:"category"`
	Year         string         `gorm:"size:10" json:"year" yaml:"year"`
	Status       string         `gorm:"size:50" json:"status,omitempty" yaml:"status"`
	Technologies pq.StringArray `gorm:"type:text" json:"technologies" yaml:"technologies"`
}

type Skill struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name     string `gorm:"size:255;not null" json:"name" yaml:"name"`
	Level    int    `gorm:"not null;default:0" json:"level" yaml:"level"`
	Category string `gorm:"size:50;index" json:"category" yaml:"category"`
}

// Template is a ready-made site from the templates catalog.
type Template struct {
	ID          uint           `gorm:"primaryKey;autoIncrement" json:"id" yaml:"id"`
	Name        string         `gorm:"size:255;not null" json:"name" yaml:"name"`
	Description string         `gorm:"type:text" json:"description" yaml:"description"`
	Image       string         `gorm:"size:1024" json:"image" yaml:"image"`
	Link        string         `gorm:"size:1024" json:"link" yaml:"link"`
	Demo        string         `gorm:"size:1024" json:"demo,omitempty" yaml:"demo"`
	Category    string         `gorm:"size:50;index" json:"category" yaml:"category"`
	Year        string         `gorm:"size:10" json:"year" yaml:"year"`
	Types       pq.StringArray `gorm:"type:text" json:"types" yaml:"types"`
	Status      string         `gorm:"size:50" json:"status" yaml:"status"`
	Tags        pq.StringArray `gorm:"type:text" json:"tags" yaml:"tags"`
}

type Testimonial struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string `gorm:"size:255;not null" json:"name" yaml:"name"`
	Role      string `gorm:"size:255" json:"role" yaml:"role"`
	Text      string `gorm:"type:text;not null" json:"text" yaml:"text"`
	Avatar    string `gorm:"size:1024" json:"avatar,omitempty" yaml:"avatar"`
	SortOrder int    `gorm:"not null;default:0" json:"-" yaml:"-"`
}

// TemplateFilter matches category and status exactly and a tag by
// substring, all case-insensitive.
type TemplateFilter struct {
	Category string
	Status   string
	Tag      string
}

type ProjectFilter struct {
	Category string
	Tech     string
}

// About is the profile page payload.
type About struct {
	Profile     Profile      `json:"profile"`
	Experiences []Experience `json:"experience"`
}

func (Profile) TableName() string     { return "profile" }
func (Experience) TableName() string  { return "experiences" }
func (Project) TableName() string     { return "projects" }
func (Skill) TableName() string       { return "skills" }
func (Template) TableName() string    { return "templates" }
func (Testimonial) TableName() string { return "testimonials" }
