// Command seeder fills a database with fake customers, tour operators,
// projects and votes for local development.
package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/panotour/core/internal/config"
	"github.com/panotour/core/internal/database"
	"github.com/panotour/core/internal/models"
	"github.com/panotour/core/internal/modules/auth/user"
	"github.com/panotour/core/internal/modules/tour/project"
	"github.com/panotour/core/internal/modules/tour/vote"
	"github.com/panotour/core/internal/pkg/apperr"
	"github.com/panotour/core/internal/pkg/events"
	"github.com/panotour/core/internal/pkg/sequence"
	"go.uber.org/zap"
)

const seedPassword = "panotour123"

type options struct {
	customers    int
	companies    int
	perCompany   int
	votesPerUser int
	seed         int64
}

func main() {
	configPath := flag.String("config", config.DefaultConfigPath, "Path to YAML config file")
	var opts options
	flag.IntVar(&opts.customers, "customers", 30, "Number of customer accounts")
	flag.IntVar(&opts.companies, "companies", 5, "Number of tour operator accounts")
	flag.IntVar(&opts.perCompany, "projects", 4, "Projects per tour operator")
	flag.IntVar(&opts.votesPerUser, "votes", 3, "Votes cast by each customer")
	flag.Int64Var(&opts.seed, "seed", 0, "Random seed, 0 picks one")
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	db, err := database.Connect(cfg, true)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}

	ids := sequence.New(db)
	users := user.NewService(db, ids, nil, cfg.TokenTTL, logger)
	projects := project.NewService(db, ids, events.Nop{}, logger)
	ledger := vote.NewLedger(db, projects, events.Nop{}, logger)

	s := &seeder{
		faker:    gofakeit.New(opts.seed),
		users:    users,
		projects: projects,
		ledger:   ledger,
		logger:   logger,
	}
	ctx := context.Background()
	if err := s.run(ctx, opts); err != nil {
		logger.Fatal("seed", zap.Error(err))
	}
}

type seeder struct {
	faker    *gofakeit.Faker
	users    *user.Service
	projects *project.Service
	ledger   *vote.Ledger
	logger   *zap.Logger
}

func (s *seeder) run(ctx context.Context, opts options) error {
	companies, err := s.accounts(ctx, models.UserTypeCompany, opts.companies)
	if err != nil {
		return err
	}
	customers, err := s.accounts(ctx, models.UserTypeCustomer, opts.customers)
	if err != nil {
		return err
	}

	var projectIDs []int64
	for _, owner := range companies {
		for i := 0; i < opts.perCompany; i++ {
			p, err := s.projects.Create(ctx, owner, s.fakeProject())
			if err != nil {
				return fmt.Errorf("create project: %w", err)
			}
			projectIDs = append(projectIDs, p.ProjectID)
		}
	}

	votes := 0
	if len(projectIDs) > 0 {
		for _, voter := range customers {
			for i := 0; i < opts.votesPerUser; i++ {
				pid := projectIDs[s.faker.Number(0, len(projectIDs)-1)]
				if _, err := s.ledger.Cast(ctx, pid, voter, s.faker.Number(1, 5)); err != nil {
					return fmt.Errorf("cast vote: %w", err)
				}
				votes++
			}
		}
	}

	s.logger.Info("seed complete",
		zap.Int("companies", len(companies)),
		zap.Int("customers", len(customers)),
		zap.Int("projects", len(projectIDs)),
		zap.Int("votes", votes),
		zap.String("password", seedPassword),
	)
	return nil
}

func (s *seeder) accounts(ctx context.Context, typ models.UserType, n int) ([]int64, error) {
	out := make([]int64, 0, n)
	for len(out) < n {
		_, u, err := s.users.Register(ctx, &user.RegisterDTO{
			Account:  s.faker.Email(),
			Password: seedPassword,
			Type:     typ,
		})
		if apperr.KindOf(err) == apperr.Conflict {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("register: %w", err)
		}
		out = append(out, u.UserID)
	}
	return out, nil
}

func (s *seeder) fakeProject() *project.CreateProjectDTO {
	f := s.faker
	days := f.Number(2, 6)
	steps := make([]models.TourStep, 0, days)
	for d := 1; d <= days; d++ {
		steps = append(steps, models.TourStep{Day: strconv.Itoa(d), Content: "**" + f.City() + "**\n\n" + f.Paragraph(1, 3, 12, " ")})
	}
	departure := f.DateRange(time.Now(), time.Now().AddDate(0, 6, 0))
	price := f.Price(50, 2000)
	return &project.CreateProjectDTO{
		Title:         f.City() + " " + f.AdjectiveDescriptive() + " tour",
		Description:   f.Paragraph(1, 2, 20, " "),
		DepartureCity: f.Number(1, 63),
		DepartureDate: &departure,
		CoverImage:    f.ImageURL(1280, 720),
		Price:         price,
		Sale:          float64(f.Number(0, 30)),
		IsForeign:     f.Bool(),
		TourSteps:     steps,
	}
}
