package auth

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Restaurants is the tenant repository. The auth core only reads from
// it through the Restaurant relation on users, but registration and
// seeding need direct access.
type Restaurants interface {
	repository.Repository[*Restaurant]

	FindByName(ctx context.Context, name string) (*Restaurant, error)
	FindByNameTx(ctx context.Context, tx bun.IDB, name string) (*Restaurant, error)
}

type restaurants struct {
	repository.Repository[*Restaurant]
	db *bun.DB
}

var _ Restaurants = (*restaurants)(nil)

func NewRestaurantsRepository(db *bun.DB) Restaurants {
	repo := repository.NewRepository[*Restaurant](db, repository.ModelHandlers[*Restaurant]{
		NewRecord: func() *Restaurant { return &Restaurant{} },
		GetID: func(r *Restaurant) uuid.UUID {
			if r == nil {
				return uuid.Nil
			}
			return r.ID
		},
		SetID: func(r *Restaurant, id uuid.UUID) {
			if r != nil {
				r.ID = id
			}
		},
		GetIdentifier: func() string {
			return "name"
		},
	})

	return &restaurants{
		Repository: repo,
		db:         db,
	}
}

func (a *restaurants) FindByName(ctx context.Context, name string) (*Restaurant, error) {
	return a.FindByNameTx(ctx, a.db, name)
}

func (a *restaurants) FindByNameTx(ctx context.Context, tx bun.IDB, name string) (*Restaurant, error) {
	record := &Restaurant{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.name = ?", name).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"name": name})
		}
		return nil, err
	}

	return record, nil
}
