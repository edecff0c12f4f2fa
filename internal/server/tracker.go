package server

import (
	"context"
	"errors"
	"net/http"

	"cedh-tracker/internal/analytics"
	"cedh-tracker/internal/api"
	"cedh-tracker/internal/constants"
	"cedh-tracker/internal/domain"
	"cedh-tracker/internal/rpc"
	"cedh-tracker/internal/service"

	"connectrpc.com/connect"
	"github.com/rs/zerolog"
)

type TrackerServer struct {
	userSvc      *service.UserService
	gameSvc      *service.GameService
	analyticsSvc *service.AnalyticsService
	deckSvc      *service.DeckService
	playerSvc    *service.PlayerService
	resourceSvc  *service.ResourceService
	transferSvc  *service.TransferService
	logger       zerolog.Logger
}

func NewTrackerServer(
	userSvc *service.UserService,
	gameSvc *service.GameService,
	analyticsSvc *service.AnalyticsService,
	deckSvc *service.DeckService,
	playerSvc *service.PlayerService,
	resourceSvc *service.ResourceService,
	transferSvc *service.TransferService,
	logger zerolog.Logger,
) *TrackerServer {
	return &TrackerServer{
		userSvc:      userSvc,
		gameSvc:      gameSvc,
		analyticsSvc: analyticsSvc,
		deckSvc:      deckSvc,
		playerSvc:    playerSvc,
		resourceSvc:  resourceSvc,
		transferSvc:  transferSvc,
		logger:       logger,
	}
}

var _ rpc.TrackerServiceHandler = (*TrackerServer)(nil)

// toConnectError maps domain errors onto connect codes.
func (s *TrackerServer) toConnectError(err error) error {
	var connectErr *connect.Error
	switch {
	case errors.As(err, &connectErr):
		return err
	case errors.Is(err, domain.ErrInvalidInput):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, domain.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	default:
		s.logger.Error().Err(err).Msg("internal error")
		return connect.NewError(connect.CodeInternal, err)
	}
}

func (s *TrackerServer) userID(ctx context.Context, header http.Header) (string, error) {
	user, err := s.userSvc.ActiveUser(ctx, header.Get(constants.UserEmailHeader))
	if err != nil {
		return "", s.toConnectError(err)
	}
	return user.ID, nil
}

func (s *TrackerServer) GetDashboard(ctx context.Context, req *connect.Request[rpc.GetDashboardRequest]) (*connect.Response[service.Dashboard], error) {
	userID, err := s.userID(ctx, req.Header())
	if err != nil {
		return nil, err
	}
	dashboard, err := s.analyticsSvc.Dashboard(ctx, userID)
	if err != nil {
		return nil, s.toConnectError(err)
	}
	return connect.NewResponse(dashboard), nil
}

func (s *TrackerServer) GetAnalytics(ctx context.Context, req *connect.Request[rpc.GetAnalyticsRequest]) (*connect.Response[service.Overview], error) {
	userID, err := s.userID(ctx, req.Header())
	if err != nil {
		return nil, err
	}
	overview, err := s.analyticsSvc.Overview(ctx, userID, req.Msg.Since, req.Msg.Bucket)
	if err != nil {
		return nil, s.toConnectError(err)
	}
	return connect.NewResponse(overview), nil
}

func (s *TrackerServer) GetDeckPerformance(ctx context.Context, req *connect.Request[rpc.GetDeckPerformanceRequest]) (*connect.Response[analytics.DeckPerformance], error) {
	userID, err := s.userID(ctx, req.Header())
	if err != nil {
		return nil, err
	}
	perf, err := s.deckSvc.Performance(ctx, userID, req.Msg.DeckID)
	if err != nil {
		return nil, s.toConnectError(err)
	}
	return connect.NewResponse(perf), nil
}

func (s *TrackerServer) GetDeckTrend(ctx context.Context, req *connect.Request[rpc.GetDeckTrendRequest]) (*connect.Response[rpc.GetDeckTrendResponse], error) {
	userID, err := s.userID(ctx, req.Header())
	if err != nil {
		return nil, err
	}
	points, err := s.deckSvc.Trend(ctx, userID, req.Msg.DeckID)
	if err != nil {
		return nil, s.toConnectError(err)
	}
	return connect.NewResponse(&rpc.GetDeckTrendResponse{Points: points}), nil
}

func (s *TrackerServer) ListRecentGames(ctx context.Context, req *connect.Request[rpc.ListRecentGamesRequest]) (*connect.Response[rpc.ListRecentGamesResponse], error) {
	userID, err := s.userID(ctx, req.Header())
	if err != nil {
		return nil, err
	}
	games, err := s.analyticsSvc.RecentGames(ctx, userID, req.Msg.Take)
	if err != nil {
		return nil, s.toConnectError(err)
	}
	return connect.NewResponse(&rpc.ListRecentGamesResponse{Games: games}), nil
}

func (s *TrackerServer) RecordGame(ctx context.Context, req *connect.Request[rpc.RecordGameRequest]) (*connect.Response[rpc.RecordGameResponse], error) {
	userID, err := s.userID(ctx, req.Header())
	if err != nil {
		return nil, err
	}
	game, err := s.gameSvc.RecordGame(ctx, userID, *req.Msg)
	if err != nil {
		return nil, s.toConnectError(err)
	}
	return connect.NewResponse(&rpc.RecordGameResponse{ID: game.ID}), nil
}

func (s *TrackerServer) ListResources(ctx context.Context, req *connect.Request[rpc.ListResourcesRequest]) (*connect.Response[service.Resources], error) {
	userID, err := s.userID(ctx, req.Header())
	if err != nil {
		return nil, err
	}
	resources, err := s.resourceSvc.List(ctx, userID)
	if err != nil {
		return nil, s.toConnectError(err)
	}
	return connect.NewResponse(resources), nil
}

func (s *TrackerServer) GetPlayerProfile(ctx context.Context, req *connect.Request[rpc.GetPlayerProfileRequest]) (*connect.Response[service.PlayerProfile], error) {
	userID, err := s.userID(ctx, req.Header())
	if err != nil {
		return nil, err
	}
	profile, err := s.playerSvc.Profile(ctx, userID, req.Msg.PlayerID)
	if err != nil {
		return nil, s.toConnectError(err)
	}
	return connect.NewResponse(profile), nil
}

func (s *TrackerServer) ImportCSV(ctx context.Context, req *connect.Request[rpc.ImportCSVRequest]) (*connect.Response[service.ImportResult], error) {
	userID, err := s.userID(ctx, req.Header())
	if err != nil {
		return nil, err
	}
	result, err := s.transferSvc.Import(ctx, userID, req.Msg.Dataset, req.Msg.CSV)
	if err != nil {
		return nil, s.toConnectError(err)
	}
	return connect.NewResponse(result), nil
}

func (s *TrackerServer) ExportCSV(ctx context.Context, req *connect.Request[rpc.ExportCSVRequest]) (*connect.Response[rpc.ExportCSVResponse], error) {
	userID, err := s.userID(ctx, req.Header())
	if err != nil {
		return nil, err
	}
	data, err := s.transferSvc.Export(ctx, userID, req.Msg.Dataset)
	if err != nil {
		return nil, s.toConnectError(err)
	}
	return connect.NewResponse(&rpc.ExportCSVResponse{Dataset: req.Msg.Dataset, CSV: data}), nil
}

func (s *TrackerServer) LookupMoxfield(ctx context.Context, req *connect.Request[rpc.LookupMoxfieldRequest]) (*connect.Response[api.MoxfieldDeck], error) {
	deck, err := s.deckSvc.LookupMoxfield(ctx, req.Msg.URL)
	if err != nil {
		return nil, s.toConnectError(err)
	}
	return connect.NewResponse(deck), nil
}

func (s *TrackerServer) UpdateProfile(ctx context.Context, req *connect.Request[rpc.UpdateProfileRequest]) (*connect.Response[domain.User], error) {
	userID, err := s.userID(ctx, req.Header())
	if err != nil {
		return nil, err
	}
	user, err := s.userSvc.UpdateProfile(ctx, userID, req.Msg.Name)
	if err != nil {
		return nil, s.toConnectError(err)
	}
	return connect.NewResponse(user), nil
}
