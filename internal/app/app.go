// Package app assembles the store, reference data and services from
// configuration.
package app

import (
	"context"
	"database/sql"
	"fmt"

	intconfig "budgetflow/internal/config"
	"budgetflow/internal/domain/models"
	"budgetflow/internal/http/handlers"
	"budgetflow/internal/http/middleware"
	"budgetflow/internal/repositories"
	"budgetflow/internal/services"
	"budgetflow/internal/utils"
)

type App struct {
	Env      intconfig.Env
	Store    repositories.Store
	Catalog  *repositories.Catalog
	Handlers *handlers.Handlers
	db       *sql.DB
}

// Build opens the configured store, loads the seed file and wires the
// services. Seed requests are imported when SEED_REQUESTS is set; ids that
// already exist are left alone.
func Build(ctx context.Context, env intconfig.Env) (*App, error) {
	seed, err := intconfig.LoadSeed(env.SeedFile)
	if err != nil {
		return nil, err
	}
	catalog := repositories.NewCatalog(seed.Users, seed.Departments, seed.Projects, seed.ReturnReasons)
	if _, err := catalog.User(env.AdminRecipientID); err != nil {
		return nil, fmt.Errorf("ADMIN_RECIPIENT_ID %s is not a known user", env.AdminRecipientID)
	}

	a := &App{Env: env, Catalog: catalog}
	switch env.StoreDriver {
	case intconfig.StoreMySQL:
		db, err := intconfig.ConnectDB(ctx, env.DB.ConnectionString())
		if err != nil {
			return nil, err
		}
		store := repositories.NewMySQLStore(db)
		if err := store.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		a.db = db
		a.Store = store
	default:
		a.Store = repositories.NewMemoryStore()
	}

	notifier := services.NotificationService{Store: a.Store, AdminRecipientID: env.AdminRecipientID}
	requests := services.RequestService{Store: a.Store, Catalog: catalog, Notifier: notifier}
	a.Handlers = &handlers.Handlers{
		Requests:      requests,
		Notifications: notifier,
		Anomalies:     services.AnomalyService{Store: a.Store, Catalog: catalog, Location: env.Location()},
		Reports:       services.ReportsService{Store: a.Store},
		Docs:          services.DocsService{Requests: requests, Catalog: catalog},
		Catalog:       catalog,
		Tokens:        middleware.TokenIssuer{Secret: []byte(env.JWTSecret), TTL: env.TokenTTL},
		StoreDriver:   env.StoreDriver,
	}

	if env.SeedRequests {
		reqs, err := seedRequests(seed, catalog)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		n, err := requests.Import(ctx, reqs)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("import seed requests: %w", err)
		}
		utils.LogEvent("", "app", "seed", fmt.Sprintf("imported=%d store=%s", n, env.StoreDriver))
	}
	return a, nil
}

func seedRequests(seed intconfig.Seed, catalog *repositories.Catalog) ([]models.Request, error) {
	out := make([]models.Request, 0, len(seed.Requests))
	for _, sr := range seed.Requests {
		u, err := catalog.User(sr.RequesterID)
		if err != nil {
			return nil, fmt.Errorf("seed request %s: %w", sr.ID, err)
		}
		if _, err := catalog.Project(sr.ProjectID); err != nil {
			return nil, fmt.Errorf("seed request %s: %w", sr.ID, err)
		}
		out = append(out, sr.Build(u))
	}
	return out, nil
}

// Anomalies returns the anomaly service, for callers outside HTTP.
func (a *App) Anomalies() services.AnomalyService {
	return a.Handlers.Anomalies
}

func (a *App) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
