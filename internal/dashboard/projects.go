package dashboard

import (
	"context"
	"strings"

	"claudehub/internal/records"

	"github.com/sirupsen/logrus"
)

const StatusAll = "all"

const (
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
)

type ProjectFilter struct {
	Search string
	Status string
}

type ProjectList struct {
	Projects   []records.Project `json:"projects"`
	Total      int               `json:"total"`
	InProgress int               `json:"in_progress"`
	Completed  int               `json:"completed"`
	Sample     bool              `json:"sample"`
}

// Projects lists the user's projects newest first. Counts cover every
// project, the list only those matching the filter.
func (s *Service) Projects(ctx context.Context, userID string, filter ProjectFilter) *ProjectList {
	var all []records.Project
	err := s.records.ListRows(ctx, records.TableProjects, records.Query{
		Filter: records.Filter{"user_id": userID},
		Order:  &records.Order{Column: "created_at", Descending: true},
	}, &all)
	if err != nil {
		logrus.Errorf("Error fetching projects for user %s: %v", userID, err)
	}

	out := &ProjectList{Projects: []records.Project{}}
	if err != nil || len(all) == 0 {
		all = records.SampleProjects(userID, s.now())
		out.Sample = true
	}

	out.Total = len(all)
	for _, p := range all {
		switch p.Status {
		case StatusInProgress:
			out.InProgress++
		case StatusCompleted:
			out.Completed++
		}
		if filter.matches(p) {
			out.Projects = append(out.Projects, p)
		}
	}
	return out
}

func (f ProjectFilter) matches(p records.Project) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(p.Product), q) && !strings.Contains(strings.ToLower(p.FirstName), q) {
			return false
		}
	}
	return f.Status == "" || f.Status == StatusAll || p.Status == f.Status
}
