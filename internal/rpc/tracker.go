package rpc

import (
	"context"
	"net/http"

	"cedh-tracker/internal/analytics"
	"cedh-tracker/internal/api"
	"cedh-tracker/internal/domain"
	"cedh-tracker/internal/service"

	"connectrpc.com/connect"
)

const TrackerServiceName = "cedh.v1.TrackerService"

const (
	TrackerServiceGetDashboardProcedure       = "/cedh.v1.TrackerService/GetDashboard"
	TrackerServiceGetAnalyticsProcedure       = "/cedh.v1.TrackerService/GetAnalytics"
	TrackerServiceGetDeckPerformanceProcedure = "/cedh.v1.TrackerService/GetDeckPerformance"
	TrackerServiceGetDeckTrendProcedure       = "/cedh.v1.TrackerService/GetDeckTrend"
	TrackerServiceListRecentGamesProcedure    = "/cedh.v1.TrackerService/ListRecentGames"
	TrackerServiceRecordGameProcedure         = "/cedh.v1.TrackerService/RecordGame"
	TrackerServiceListResourcesProcedure      = "/cedh.v1.TrackerService/ListResources"
	TrackerServiceGetPlayerProfileProcedure   = "/cedh.v1.TrackerService/GetPlayerProfile"
	TrackerServiceImportCSVProcedure          = "/cedh.v1.TrackerService/ImportCSV"
	TrackerServiceExportCSVProcedure          = "/cedh.v1.TrackerService/ExportCSV"
	TrackerServiceLookupMoxfieldProcedure     = "/cedh.v1.TrackerService/LookupMoxfield"
	TrackerServiceUpdateProfileProcedure      = "/cedh.v1.TrackerService/UpdateProfile"
)

type TrackerServiceHandler interface {
	GetDashboard(context.Context, *connect.Request[GetDashboardRequest]) (*connect.Response[service.Dashboard], error)
	GetAnalytics(context.Context, *connect.Request[GetAnalyticsRequest]) (*connect.Response[service.Overview], error)
	GetDeckPerformance(context.Context, *connect.Request[GetDeckPerformanceRequest]) (*connect.Response[analytics.DeckPerformance], error)
	GetDeckTrend(context.Context, *connect.Request[GetDeckTrendRequest]) (*connect.Response[GetDeckTrendResponse], error)
	ListRecentGames(context.Context, *connect.Request[ListRecentGamesRequest]) (*connect.Response[ListRecentGamesResponse], error)
	RecordGame(context.Context, *connect.Request[RecordGameRequest]) (*connect.Response[RecordGameResponse], error)
	ListResources(context.Context, *connect.Request[ListResourcesRequest]) (*connect.Response[service.Resources], error)
	GetPlayerProfile(context.Context, *connect.Request[GetPlayerProfileRequest]) (*connect.Response[service.PlayerProfile], error)
	ImportCSV(context.Context, *connect.Request[ImportCSVRequest]) (*connect.Response[service.ImportResult], error)
	ExportCSV(context.Context, *connect.Request[ExportCSVRequest]) (*connect.Response[ExportCSVResponse], error)
	LookupMoxfield(context.Context, *connect.Request[LookupMoxfieldRequest]) (*connect.Response[api.MoxfieldDeck], error)
	UpdateProfile(context.Context, *connect.Request[UpdateProfileRequest]) (*connect.Response[domain.User], error)
}

// NewTrackerServiceHandler mounts every procedure under one path prefix.
func NewTrackerServiceHandler(svc TrackerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(TrackerServiceGetDashboardProcedure, connect.NewUnaryHandler(TrackerServiceGetDashboardProcedure, svc.GetDashboard, opts...))
	mux.Handle(TrackerServiceGetAnalyticsProcedure, connect.NewUnaryHandler(TrackerServiceGetAnalyticsProcedure, svc.GetAnalytics, opts...))
	mux.Handle(TrackerServiceGetDeckPerformanceProcedure, connect.NewUnaryHandler(TrackerServiceGetDeckPerformanceProcedure, svc.GetDeckPerformance, opts...))
	mux.Handle(TrackerServiceGetDeckTrendProcedure, connect.NewUnaryHandler(TrackerServiceGetDeckTrendProcedure, svc.GetDeckTrend, opts...))
	mux.Handle(TrackerServiceListRecentGamesProcedure, connect.NewUnaryHandler(TrackerServiceListRecentGamesProcedure, svc.ListRecentGames, opts...))
	mux.Handle(TrackerServiceRecordGameProcedure, connect.NewUnaryHandler(TrackerServiceRecordGameProcedure, svc.RecordGame, opts...))
	mux.Handle(TrackerServiceListResourcesProcedure, connect.NewUnaryHandler(TrackerServiceListResourcesProcedure, svc.ListResources, opts...))
	mux.Handle(TrackerServiceGetPlayerProfileProcedure, connect.NewUnaryHandler(TrackerServiceGetPlayerProfileProcedure, svc.GetPlayerProfile, opts...))
	mux.Handle(TrackerServiceImportCSVProcedure, connect.NewUnaryHandler(TrackerServiceImportCSVProcedure, svc.ImportCSV, opts...))
	mux.Handle(TrackerServiceExportCSVProcedure, connect.NewUnaryHandler(TrackerServiceExportCSVProcedure, svc.ExportCSV, opts...))
	mux.Handle(TrackerServiceLookupMoxfieldProcedure, connect.NewUnaryHandler(TrackerServiceLookupMoxfieldProcedure, svc.LookupMoxfield, opts...))
	mux.Handle(TrackerServiceUpdateProfileProcedure, connect.NewUnaryHandler(TrackerServiceUpdateProfileProcedure, svc.UpdateProfile, opts...))

	return "/" + TrackerServiceName + "/", mux
}

// TrackerServiceClient calls the tracker procedures over HTTP with the JSON codec.
type TrackerServiceClient struct {
	getDashboard       *connect.Client[GetDashboardRequest, service.Dashboard]
	getAnalytics       *connect.Client[GetAnalyticsRequest, service.Overview]
	getDeckPerformance *connect.Client[GetDeckPerformanceRequest, analytics.DeckPerformance]
	getDeckTrend       *connect.Client[GetDeckTrendRequest, GetDeckTrendResponse]
	listRecentGames    *connect.Client[ListRecentGamesRequest, ListRecentGamesResponse]
	recordGame         *connect.Client[RecordGameRequest, RecordGameResponse]
	listResources      *connect.Client[ListResourcesRequest, service.Resources]
	getPlayerProfile   *connect.Client[GetPlayerProfileRequest, service.PlayerProfile]
	importCSV          *connect.Client[ImportCSVRequest, service.ImportResult]
	exportCSV          *connect.Client[ExportCSVRequest, ExportCSVResponse]
	lookupMoxfield     *connect.Client[LookupMoxfieldRequest, api.MoxfieldDeck]
	updateProfile      *connect.Client[UpdateProfileRequest, domain.User]
}

func NewTrackerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *TrackerServiceClient {
	opts = append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
	return &TrackerServiceClient{
		getDashboard:       connect.NewClient[GetDashboardRequest, service.Dashboard](httpClient, baseURL+TrackerServiceGetDashboardProcedure, opts...),
		getAnalytics:       connect.NewClient[GetAnalyticsRequest, service.Overview](httpClient, baseURL+TrackerServiceGetAnalyticsProcedure, opts...),
		getDeckPerformance: connect.NewClient[GetDeckPerformanceRequest, analytics.DeckPerformance](httpClient, baseURL+TrackerServiceGetDeckPerformanceProcedure, opts...),
		getDeckTrend:       connect.NewClient[GetDeckTrendRequest, GetDeckTrendResponse](httpClient, baseURL+TrackerServiceGetDeckTrendProcedure, opts...),
		listRecentGames:    connect.NewClient[ListRecentGamesRequest, ListRecentGamesResponse](httpClient, baseURL+TrackerServiceListRecentGamesProcedure, opts...),
		recordGame:         connect.NewClient[RecordGameRequest, RecordGameResponse](httpClient, baseURL+TrackerServiceRecordGameProcedure, opts...),
		listResources:      connect.NewClient[ListResourcesRequest, service.Resources](httpClient, baseURL+TrackerServiceListResourcesProcedure, opts...),
		getPlayerProfile:   connect.NewClient[GetPlayerProfileRequest, service.PlayerProfile](httpClient, baseURL+TrackerServiceGetPlayerProfileProcedure, opts...),
		importCSV:          connect.NewClient[ImportCSVRequest, service.ImportResult](httpClient, baseURL+TrackerServiceImportCSVProcedure, opts...),
		exportCSV:          connect.NewClient[ExportCSVRequest, ExportCSVResponse](httpClient, baseURL+TrackerServiceExportCSVProcedure, opts...),
		lookupMoxfield:     connect.NewClient[LookupMoxfieldRequest, api.MoxfieldDeck](httpClient, baseURL+TrackerServiceLookupMoxfieldProcedure, opts...),
		updateProfile:      connect.NewClient[UpdateProfileRequest, domain.User](httpClient, baseURL+TrackerServiceUpdateProfileProcedure, opts...),
	}
}

func (c *TrackerServiceClient) GetDashboard(ctx context.Context, req *connect.Request[GetDashboardRequest]) (*connect.Response[service.Dashboard], error) {
	return c.getDashboard.CallUnary(ctx, req)
}

func (c *TrackerServiceClient) GetAnalytics(ctx context.Context, req *connect.Request[GetAnalyticsRequest]) (*connect.Response[service.Overview], error) {
	return c.getAnalytics.CallUnary(ctx, req)
}

func (c *TrackerServiceClient) GetDeckPerformance(ctx context.Context, req *connect.Request[GetDeckPerformanceRequest]) (*connect.Response[analytics.DeckPerformance], error) {
	return c.getDeckPerformance.CallUnary(ctx, req)
}

func (c *TrackerServiceClient) GetDeckTrend(ctx context.Context, req *connect.Request[GetDeckTrendRequest]) (*connect.Response[GetDeckTrendResponse], error) {
	return c.getDeckTrend.CallUnary(ctx, req)
}

func (c *TrackerServiceClient) ListRecentGames(ctx context.Context, req *connect.Request[ListRecentGamesRequest]) (*connect.Response[ListRecentGamesResponse], error) {
	return c.listRecentGames.CallUnary(ctx, req)
}

func (c *TrackerServiceClient) RecordGame(ctx context.Context, req *connect.Request[RecordGameRequest]) (*connect.Response[RecordGameResponse], error) {
	return c.recordGame.CallUnary(ctx, req)
}

func (c *TrackerServiceClient) ListResources(ctx context.Context, req *connect.Request[ListResourcesRequest]) (*connect.Response[service.Resources], error) {
	return c.listResources.CallUnary(ctx, req)
}

func (c *TrackerServiceClient) GetPlayerProfile(ctx context.Context, req *connect.Request[GetPlayerProfileRequest]) (*connect.Response[service.PlayerProfile], error) {
	return c.getPlayerProfile.CallUnary(ctx, req)
}

func (c *TrackerServiceClient) ImportCSV(ctx context.Context, req *connect.Request[ImportCSVRequest]) (*connect.Response[service.ImportResult], error) {
	return c.importCSV.CallUnary(ctx, req)
}

func (c *TrackerServiceClient) ExportCSV(ctx context.Context, req *connect.Request[ExportCSVRequest]) (*connect.Response[ExportCSVResponse], error) {
	return c.exportCSV.CallUnary(ctx, req)
}

func (c *TrackerServiceClient) LookupMoxfield(ctx context.Context, req *connect.Request[LookupMoxfieldRequest]) (*connect.Response[api.MoxfieldDeck], error) {
	return c.lookupMoxfield.CallUnary(ctx, req)
}

func (c *TrackerServiceClient) UpdateProfile(ctx context.Context, req *connect.Request[UpdateProfileRequest]) (*connect.Response[domain.User], error) {
	return c.updateProfile.CallUnary(ctx, req)
}
