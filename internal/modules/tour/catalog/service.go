// Package catalog composes the project store with the vote ledger: every
// project it returns carries its vote statistics.
package catalog

import (
	"context"

	"github.com/panotour/core/internal/models"
	"github.com/panotour/core/internal/modules/tour/project"
	"github.com/panotour/core/internal/modules/tour/vote"
	"github.com/panotour/core/internal/pkg/pagination"
	"github.com/panotour/core/internal/pkg/response"
)

// ProjectSource is the subset of the project store the catalog reads.
type ProjectSource interface {
	Get(ctx context.Context, projectID int64) (*models.ProjectModel, error)
	List(ctx context.Context, f project.Filter, q pagination.Query) ([]models.ProjectModel, response.Pagination, error)
	Find(ctx context.Context, f project.Filter) ([]models.ProjectModel, error)
	ByIDs(ctx context.Context, ids []int64) ([]models.ProjectModel, error)
}

// VoteSource is the subset of the vote ledger the catalog reads.
type VoteSource interface {
	StatsFor(ctx context.Context, projectID int64) (vote.Stats, error)
	StatsForMany(ctx context.Context, projectIDs []int64) (map[int64]vote.Stats, error)
	Votes(ctx context.Context, projectID int64) ([]models.VoteModel, error)
	UserVote(ctx context.Context, projectID, userID int64) (*models.VoteModel, error)
}

// Item is a listed project with its vote statistics.
type Item struct {
	models.ProjectModel
	Vote vote.ListingSummary `json:"vote"`
}

// DetailVote is the vote block of the project detail view.
type DetailVote struct {
	vote.Summary
	Votes    []models.VoteModel `json:"votes"`
	UserVote *models.VoteModel  `json:"userVote"`
}

type Detail struct {
	Project   *models.ProjectModel `json:"project"`
	Vote      DetailVote           `json:"vote"`
	DeadLinks []models.DeadLink    `json:"deadLinks"`
}

// Page is one page of listed projects.
type Page struct {
	Items      []Item
	Pagination response.Pagination
}

// SearchQuery filters the unpaginated search. Nil fields match everything.
type SearchQuery struct {
	Keyword       string
	DepartureCity *int
	Price         *float64
	IsForeign     *bool
}

// Kind selects the catalog partition.
type Kind int

const (
	KindDomestic Kind = 0
	KindForeign  Kind = 1
)

type Service struct {
	projects ProjectSource
	votes    VoteSource
}

func NewService(projects ProjectSource, votes VoteSource) *Service {
	return &Service{projects: projects, votes: votes}
}

func boolPtr(b bool) *bool { return &b }

// Attach pairs projects with their listing statistics using one grouped
// vote query.
func (s *Service) Attach(ctx context.Context, projects []models.ProjectModel) ([]Item, error) {
	ids := make([]int64, len(projects))
	for i, p := range projects {
		ids[i] = p.ProjectID
	}
	stats, err := s.votes.StatsForMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	items := make([]Item, len(projects))
	for i, p := range projects {
		items[i] = Item{ProjectModel: p, Vote: stats[p.ProjectID].Listing()}
	}
	return items, nil
}

// Partition lists one page of unlocked projects of a single kind.
func (s *Service) Partition(ctx context.Context, kind Kind, q pagination.Query) (Page, error) {
	f := project.Filter{IsForeign: boolPtr(kind == KindForeign), IsLock: boolPtr(false)}
	return s.page(ctx, f, q)
}

// Split lists one page of each partition: domestic then foreign.
func (s *Service) Split(ctx context.Context, q pagination.Query) (domestic, foreign Page, err error) {
	if domestic, err = s.Partition(ctx, KindDomestic, q); err != nil {
		return Page{}, Page{}, err
	}
	if foreign, err = s.Partition(ctx, KindForeign, q); err != nil {
		return Page{}, Page{}, err
	}
	return domestic, foreign, nil
}

// Search returns every unlocked project matching sq, without pagination.
func (s *Service) Search(ctx context.Context, sq SearchQuery) ([]Item, error) {
	projects, err := s.projects.Find(ctx, project.Filter{
		Keyword:       sq.Keyword,
		DepartureCity: sq.DepartureCity,
		Price:         sq.Price,
		IsForeign:     sq.IsForeign,
		IsLock:        boolPtr(false),
	})
	if err != nil {
		return nil, err
	}
	return s.Attach(ctx, projects)
}

// ByOwner lists the owner's projects including locked ones.
func (s *Service) ByOwner(ctx context.Context, ownerID int64, q pagination.Query) (Page, error) {
	return s.page(ctx, project.Filter{OwnerUserID: ownerID}, q)
}

// Resolve lists the given projects in order with statistics. Ids of deleted
// projects are skipped.
func (s *Service) Resolve(ctx context.Context, ids []int64) ([]Item, error) {
	projects, err := s.projects.ByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return s.Attach(ctx, projects)
}

func (s *Service) page(ctx context.Context, f project.Filter, q pagination.Query) (Page, error) {
	projects, pag, err := s.projects.List(ctx, f, q)
	if err != nil {
		return Page{}, err
	}
	items, err := s.Attach(ctx, projects)
	if err != nil {
		return Page{}, err
	}
	return Page{Items: items, Pagination: pag}, nil
}

// Detail returns the full project document with its detail vote block.
// Locked projects are returned too.
func (s *Service) Detail(ctx context.Context, projectID, callerID int64) (*Detail, error) {
	p, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	stats, err := s.votes.StatsFor(ctx, projectID)
	if err != nil {
		return nil, err
	}
	votes, err := s.votes.Votes(ctx, projectID)
	if err != nil {
		return nil, err
	}
	userVote, err := s.votes.UserVote(ctx, projectID, callerID)
	if err != nil {
		return nil, err
	}
	return &Detail{
		Project: p,
		Vote: DetailVote{
			Summary:  stats.Summary(vote.PolicyProjectDetail),
			Votes:    votes,
			UserVote: userVote,
		},
		DeadLinks: p.DeadLinks(),
	}, nil
}
