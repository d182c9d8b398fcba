package bom

import (
	"context"

	"github.com/fekuna/omnipos-stockflow-service/internal/bom/dto"
	"github.com/fekuna/omnipos-stockflow-service/internal/model"
)

type UseCase interface {
	Create(ctx context.Context, input *dto.CreateInput) (*dto.CreateResult, error)
	Rename(ctx context.Context, id int64, name string) (*model.BOM, error)
	ReplaceComponents(ctx context.Context, id int64, components []dto.ComponentInput) (*model.BOM, error)
	Delete(ctx context.Context, id int64) error

	Buildability(ctx context.Context, id int64) (*dto.Buildability, error)
	Preview(ctx context.Context, id, qty int64) (*dto.PreviewResult, error)
	Reserve(ctx context.Context, id, qty int64) error
	Produce(ctx context.Context, id, qty int64) (*dto.ProduceResult, error)
	CancelReserve(ctx context.Context, id, qty int64) error
}
