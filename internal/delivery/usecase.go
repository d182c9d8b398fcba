package delivery

import (
	"context"

	"github.com/fekuna/omnipos-stockflow-service/internal/delivery/dto"
	"github.com/fekuna/omnipos-stockflow-service/internal/model"
)

type UseCase interface {
	SendDelivery(ctx context.Context, input *dto.SendInput) (*dto.SendResult, error)
	VoidPair(ctx context.Context, pairID int64) (*model.DocPair, error)
	MarkReprint(ctx context.Context, pairID int64) (*model.DocPair, error)
}
