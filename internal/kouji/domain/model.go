package domain

import (
	"sort"
	"time"
)

// RawEntry is one file or directory as listed by the filesystem service.
type RawEntry struct {
	ID           uint64    `json:"id" yaml:"id"`
	Name         string    `json:"name" yaml:"name"`
	Path         string    `json:"path" yaml:"path"`
	IsDirectory  bool      `json:"is_directory" yaml:"is_directory"`
	Size         uint64    `json:"size" yaml:"size"`
	ModifiedTime time.Time `json:"modified_time" yaml:"modified_time"`
}

// Status is the lifecycle state of a project relative to a given day.
// It is always derived, never stored.
type Status string

const (
	StatusPlanned    Status = "Planned"
	StatusInProgress Status = "InProgress"
	StatusCompleted  Status = "Completed"
)

// Label returns the display label used by the browser UI.
func (s Status) Label() string {
	switch s {
	case StatusPlanned:
		return "予定"
	case StatusInProgress:
		return "進行中"
	case StatusCompleted:
		return "完了"
	}
	return "不明"
}

// Record is the metadata derived from a kouji folder name. Records are
// values; nothing in this package mutates one after it is built.
type Record struct {
	RawEntry

	ProjectID    string   `json:"project_id"`
	ProjectName  string   `json:"project_name"`
	CompanyName  string   `json:"company_name"`
	LocationName string   `json:"location_name"`
	StartDate    Date     `json:"start_date"`
	EndDate      Date     `json:"end_date"`
	Description  string   `json:"description,omitempty"`
	Tags         []string `json:"tags,omitempty"`
}

// StatusAt reports the status on the calendar day of now. Both ends of the
// [StartDate, EndDate] range count as in progress.
func (r Record) StatusAt(now time.Time) Status {
	today := DateOf(now)
	switch {
	case today.Before(r.StartDate):
		return StatusPlanned
	case today.After(r.EndDate):
		return StatusCompleted
	default:
		return StatusInProgress
	}
}

// At evaluates the record at now.
func (r Record) At(now time.Time) Project {
	status := r.StatusAt(now)
	return Project{
		Record:      r,
		Status:      status,
		StatusLabel: status.Label(),
	}
}

// Project is a Record together with the status it had when it was read.
type Project struct {
	Record

	Status      Status `json:"status"`
	StatusLabel string `json:"status_label"`
}

// SortByStartDesc orders projects newest first. Ties keep folder name order.
func SortByStartDesc(projects []Project) {
	sort.SliceStable(projects, func(i, j int) bool {
		if c := projects[i].StartDate.Compare(projects[j].StartDate); c != 0 {
			return c > 0
		}
		return projects[i].ProjectName < projects[j].ProjectName
	})
}

// StoredDates is the persisted date range of a project, written when a user
// edits dates or a snapshot is taken. Project ids are only unique within one
// directory, so every range belongs to the listing Path it was read from.
type StoredDates struct {
	Path        string    `json:"path" yaml:"path"`
	ProjectID   string    `json:"project_id" yaml:"project_id"`
	ProjectName string    `json:"project_name" yaml:"project_name"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	StartDate   Date      `json:"start_date" yaml:"start_date"`
	EndDate     Date      `json:"end_date" yaml:"end_date"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"updated_at"`
}

// DatesKey identifies one stored range.
type DatesKey struct {
	Path      string `json:"path"`
	ProjectID string `json:"project_id"`
}

func (d StoredDates) Key() DatesKey {
	return DatesKey{Path: d.Path, ProjectID: d.ProjectID}
}
