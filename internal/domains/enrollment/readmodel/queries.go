package readmodel

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/domain"
	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/ports"
)

// SortOrder selects the ordering of List results.
type SortOrder string

const (
	SortSubmittedDesc SortOrder = "submitted_at_desc"
	SortSubmittedAsc  SortOrder = "submitted_at_asc"
	SortNameAsc       SortOrder = "name_asc"
	SortNameDesc      SortOrder = "name_desc"
)

// DefaultPageSize applies when a filter leaves Limit unset.
const DefaultPageSize = 50

// Filter selects enrollments for listing. Nil flags are not applied.
type Filter struct {
	CampaignID             *domain.CampaignID
	Region                 string
	City                   string
	Query                  string
	HasLecturerRights      *bool
	HasResigned            *bool
	IsCurrentSubmission    *bool
	HasSignedUpForTraining *bool
	Sort                   SortOrder
	Offset                 int
	Limit                  int
}

// Page is one slice of a filtered, sorted listing.
type Page struct {
	Items  []EnrollmentView
	Total  int
	Offset int
	Limit  int
}

// Queries answers reads from the projection, evaluating time-relative flags at call time.
type Queries struct {
	store     Store
	campaigns ports.CampaignRepository
	clock     ports.Clock
}

func NewQueries(store Store, campaigns ports.CampaignRepository, clock ports.Clock) *Queries {
	return &Queries{store: store, campaigns: campaigns, clock: clock}
}

// Get returns the evaluated view or ErrNotFound.
func (q *Queries) Get(ctx context.Context, id domain.EnrollmentID) (*EnrollmentView, error) {
	model, err := q.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if model == nil {
		return nil, ErrNotFound
	}
	latest, err := q.latestCampaign(ctx)
	if err != nil {
		return nil, err
	}
	view := Evaluate(*model, q.clock.Now(), q.clock.Location(), latest)
	return &view, nil
}

// List filters, sorts and pages the projection.
func (q *Queries) List(ctx context.Context, filter Filter) (*Page, error) {
	models, err := q.store.List(ctx, StoreQuery{
		CampaignID:        filter.CampaignID,
		Region:            filter.Region,
		City:              filter.City,
		HasLecturerRights: filter.HasLecturerRights,
	})
	if err != nil {
		return nil, err
	}
	latest, err := q.latestCampaign(ctx)
	if err != nil {
		return nil, err
	}
	now, loc := q.clock.Now(), q.clock.Location()

	views := make([]EnrollmentView, 0, len(models))
	for _, m := range models {
		v := Evaluate(m, now, loc, latest)
		if filter.matches(v) {
			views = append(views, v)
		}
	}
	sortViews(views, filter.Sort)

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	offset := max(filter.Offset, 0)
	page := &Page{Total: len(views), Offset: offset, Limit: limit}
	if offset < len(views) {
		end := min(offset+limit, len(views))
		page.Items = views[offset:end]
	}
	return page, nil
}

func (q *Queries) latestCampaign(ctx context.Context) (*domain.Campaign, error) {
	if q.campaigns == nil {
		return nil, nil
	}
	campaigns, err := q.campaigns.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load campaigns: %w", err)
	}
	return LatestCampaign(campaigns, q.clock.Now()), nil
}

func (f Filter) matches(v EnrollmentView) bool {
	if f.CampaignID != nil && (v.Campaign == nil || v.Campaign.ID != *f.CampaignID) {
		return false
	}
	if f.Region != "" && !strings.EqualFold(v.Region, f.Region) {
		return false
	}
	if f.City != "" && !containsFold(v.PreferredLecturingCities, f.City) {
		return false
	}
	if f.Query != "" {
		needle := strings.ToLower(strings.TrimSpace(f.Query))
		haystack := strings.ToLower(v.FullName + " " + v.Email + " " + v.PhoneNumber)
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	if f.HasLecturerRights != nil && v.HasLecturerRights != *f.HasLecturerRights {
		return false
	}
	if f.HasResigned != nil && v.HasResigned() != *f.HasResigned {
		return false
	}
	if f.IsCurrentSubmission != nil && v.IsCurrentSubmission != *f.IsCurrentSubmission {
		return false
	}
	if f.HasSignedUpForTraining != nil && v.HasSignedUpForTraining != *f.HasSignedUpForTraining {
		return false
	}
	return true
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return true
		}
	}
	return false
}

func sortViews(views []EnrollmentView, order SortOrder) {
	less := func(i, j int) bool { return views[i].SubmittedAt.After(views[j].SubmittedAt) }
	switch order {
	case SortSubmittedAsc:
		less = func(i, j int) bool { return views[i].SubmittedAt.Before(views[j].SubmittedAt) }
	case SortNameAsc:
		less = func(i, j int) bool { return strings.ToLower(views[i].FullName) < strings.ToLower(views[j].FullName) }
	case SortNameDesc:
		less = func(i, j int) bool { return strings.ToLower(views[i].FullName) > strings.ToLower(views[j].FullName) }
	}
	sort.SliceStable(views, less)
}

// ParseSortOrder validates a client-supplied sort order; empty selects the default.
func ParseSortOrder(raw string) (SortOrder, error) {
	switch order := SortOrder(strings.TrimSpace(raw)); order {
	case "":
		return SortSubmittedDesc, nil
	case SortSubmittedDesc, SortSubmittedAsc, SortNameAsc, SortNameDesc:
		return order, nil
	default:
		return "", fmt.Errorf("unsupported sort order %q", raw)
	}
}
