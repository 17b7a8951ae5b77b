package model

import (
	"time"

	"github.com/droplink-labs/backend/internal/entity"
)

func ConvertDrop(drop *entity.Drop) Drop {
	if drop == nil {
		return Drop{}
	}

	return Drop{
		ID:              drop.ID,
		CreatedAt:       drop.CreatedAt.Format(time.RFC3339Nano),
		Kind:            string(drop.Kind),
		Funder:          drop.Funder,
		AmountPerClaim:  drop.AmountPerClaim.String(),
		AssetContract:   drop.AssetContract.String,
		Funded:          drop.Funded,
		TokenID:         drop.TokenID.String,
		RemainingClaims: drop.RemainingClaims,
	}
}
