package service

import "context"

// Counter reports how many live rows a store holds.
type Counter interface {
	CountActive(ctx context.Context) (int, error)
}

// EngagementCounter additionally reports accumulated reader engagement.
type EngagementCounter interface {
	Counter
	TotalEngagement(ctx context.Context) (views, downloads uint64, err error)
}

// DashboardStats is the admin landing-page summary.
type DashboardStats struct {
	Journals    int    `json:"journals"`
	Volumes     int    `json:"volumes"`
	Issues      int    `json:"issues"`
	Articles    int    `json:"articles"`
	Editors     int    `json:"editors"`
	Submissions int    `json:"submissions"`
	Views       uint64 `json:"views"`
	Downloads   uint64 `json:"downloads"`
}

// Dashboard aggregates counts across the content stores.
type Dashboard struct {
	journals    Counter
	volumes     Counter
	issues      Counter
	articles    EngagementCounter
	editors     Counter
	submissions Counter
}

func NewDashboard(journals, volumes, issues Counter, articles EngagementCounter,
	editors, submissions Counter) *Dashboard {
	return &Dashboard{
		journals: journals, volumes: volumes, issues: issues,
		articles: articles, editors: editors, submissions: submissions,
	}
}

// Stats collects live counts and total article engagement in one pass.
func (s *Dashboard) Stats(ctx context.Context) (DashboardStats, error) {
	var out DashboardStats
	var err error

	if out.Journals, err = s.journals.CountActive(ctx); err != nil {
		return out, err
	}
	if out.Volumes, err = s.volumes.CountActive(ctx); err != nil {
		return out, err
	}
	if out.Issues, err = s.issues.CountActive(ctx); err != nil {
		return out, err
	}
	if out.Articles, err = s.articles.CountActive(ctx); err != nil {
		return out, err
	}
	if out.Editors, err = s.editors.CountActive(ctx); err != nil {
		return out, err
	}
	if out.Submissions, err = s.submissions.CountActive(ctx); err != nil {
		return out, err
	}
	if out.Views, out.Downloads, err = s.articles.TotalEngagement(ctx); err != nil {
		return out, err
	}
	return out, nil
}
