package rpc

import (
	"time"

	"cedh-tracker/internal/domain"
	"cedh-tracker/internal/service"
)

type GetDashboardRequest struct{}

type GetAnalyticsRequest struct {
	Since  *time.Time `json:"since,omitempty"`
	Bucket int        `json:"bucket,omitempty"`
}

type GetDeckPerformanceRequest struct {
	DeckID string `json:"deckId"`
}

type GetDeckTrendRequest struct {
	DeckID string `json:"deckId"`
}

type GetDeckTrendResponse struct {
	Points []service.TrendPoint `json:"points"`
}

type ListRecentGamesRequest struct {
	Take int `json:"take,omitempty"`
}

type ListRecentGamesResponse struct {
	Games []domain.GameWithPlayers `json:"games"`
}

type RecordGameRequest = domain.QuickRecordInput

type RecordGameResponse struct {
	ID string `json:"id"`
}

type ListResourcesRequest struct{}

type GetPlayerProfileRequest struct {
	PlayerID string `json:"playerId"`
}

type ImportCSVRequest struct {
	Dataset service.Dataset `json:"dataset"`
	CSV     string          `json:"csv"`
}

type ExportCSVRequest struct {
	Dataset service.Dataset `json:"dataset"`
}

type ExportCSVResponse struct {
	Dataset service.Dataset `json:"dataset"`
	CSV     string          `json:"csv"`
}

type LookupMoxfieldRequest struct {
	URL string `json:"url"`
}

type UpdateProfileRequest struct {
	Name string `json:"name"`
}
