package handlers

import (
	"net/http"

	"github.com/kbediako/rentpadi/internal/domain/rules"
	subsvc "github.com/kbediako/rentpadi/internal/services/subscriptions"
	"github.com/kbediako/rentpadi/internal/transport/http/dto"
	httperrors "github.com/kbediako/rentpadi/internal/transport/http/errors"
)

type TiersHandler struct {
	service *subsvc.Service
}

func NewTiersHandler(service *subsvc.Service) *TiersHandler {
	return &TiersHandler{service: service}
}

func (h *TiersHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "SUBSCRIPTION_SERVICE_UNAVAILABLE", "subscription service is unavailable")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.TiersResponse{
		Tiers: mapTierOptions(h.service.ListTiers()),
	})
}

func mapTierOptions(options []rules.TierOption) []dto.TierResponse {
	tiers := make([]dto.TierResponse, 0, len(options))
	for _, option := range options {
		tiers = append(tiers, dto.TierResponse{
			Tier:              string(option.Tier),
			MonthlyPriceCedis: option.MonthlyPriceCedis,
			Contacts:          option.Contacts,
			Unlimited:         option.Unlimited,
			PeriodDays:        option.PeriodDays,
		})
	}
	return tiers
}
