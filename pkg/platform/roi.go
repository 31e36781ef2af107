package platform

import (
	"context"
	"fmt"

	"github.com/trademate/supportdesk/pkg/api"
)

// Per-interaction support cost comparison, in rupees.
const (
	TraditionalCostPerInteraction int64 = 500
	PlatformCostPerInteraction    int64 = 25
)

// ROI compares the platform's cost for every recorded interaction against
// traditional support.
func (s *Service) ROI(ctx context.Context) (*api.ROISummary, error) {
	total, err := s.store.CountInteractions(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting interactions: %w", err)
	}
	return ComputeROI(total), nil
}

// ComputeROI builds an ROI summary for total interactions.
func ComputeROI(total int) *api.ROISummary {
	savings := TraditionalCostPerInteraction - PlatformCostPerInteraction
	return &api.ROISummary{
		TotalInteractions:             total,
		TraditionalCostPerInteraction: TraditionalCostPerInteraction,
		PlatformCostPerInteraction:    PlatformCostPerInteraction,
		SavingsPerInteraction:         savings,
		TotalSavings:                  savings * int64(total),
		CostReductionPercent:          round(float64(savings)*100/float64(TraditionalCostPerInteraction), 1),
	}
}
