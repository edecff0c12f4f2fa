package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"cedh-tracker/internal/analytics"
	"cedh-tracker/internal/db"
	"cedh-tracker/internal/domain"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// AnalyticsStore serves the aggregator's reads from SQLite.
type AnalyticsStore struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewAnalyticsStore(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *AnalyticsStore {
	return &AnalyticsStore{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

var groupColumns = map[analytics.GroupField]string{
	analytics.GroupByResult:    "gp.result",
	analytics.GroupByDeckID:    "gp.deck_id",
	analytics.GroupBySeat:      "gp.seat",
	analytics.GroupByMulligans: "gp.mulligans",
}

func (s *AnalyticsStore) GroupGamePlayers(ctx context.Context, q analytics.GroupQuery) ([]analytics.GroupRow, error) {
	columns := make([]string, 0, len(q.By))
	for _, field := range q.By {
		col, ok := groupColumns[field]
		if !ok {
			return nil, fmt.Errorf("unknown group field %q: %w", field, domain.ErrInvalidInput)
		}
		columns = append(columns, col)
	}

	var sb strings.Builder
	args := []any{q.UserID}
	sb.WriteString("SELECT ")
	for _, col := range columns {
		sb.WriteString(col)
		sb.WriteString(", ")
	}
	sb.WriteString("COUNT(*) FROM game_players gp")
	if q.Since != nil {
		sb.WriteString(" JOIN games g ON g.id = gp.game_id")
	}
	sb.WriteString(" WHERE gp.user_id = ?")
	if q.Since != nil {
		sb.WriteString(" AND g.started_at >= ?")
		args = append(args, q.Since.UTC())
	}
	if q.Result != nil {
		sb.WriteString(" AND gp.result = ?")
		args = append(args, string(*q.Result))
	}
	if len(columns) > 0 {
		sb.WriteString(" GROUP BY ")
		sb.WriteString(strings.Join(columns, ", "))
	}
	if q.OrderByCountDesc {
		sb.WriteString(" ORDER BY COUNT(*) DESC")
		for _, col := range columns {
			sb.WriteString(", ")
			sb.WriteString(col)
		}
	}
	if q.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", q.UserID).Msg("failed to group game players")
		return nil, fmt.Errorf("failed to group game players: %w", err)
	}
	defer rows.Close()

	var result []analytics.GroupRow
	for rows.Next() {
		var row analytics.GroupRow
		var res string
		dest := make([]any, 0, len(q.By)+1)
		for _, field := range q.By {
			switch field {
			case analytics.GroupByResult:
				dest = append(dest, &res)
			case analytics.GroupByDeckID:
				dest = append(dest, &row.DeckID)
			case analytics.GroupBySeat:
				dest = append(dest, &row.Seat)
			case analytics.GroupByMulligans:
				dest = append(dest, &row.Mulligans)
			}
		}
		dest = append(dest, &row.Count)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan group row: %w", err)
		}
		// an ungrouped count always yields one row, even over nothing
		if row.Count == 0 {
			continue
		}
		row.Result = domain.Result(res)
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read group rows: %w", err)
	}
	return result, nil
}

const gameColumns = `id, user_id, pod_id, started_at, ended_at, turns_to_win, win_condition_tags, notes, created_at`

func (s *AnalyticsStore) FindGames(ctx context.Context, q analytics.GameQuery) ([]domain.GameWithPlayers, error) {
	var sb strings.Builder
	args := []any{q.UserID}
	sb.WriteString("SELECT " + gameColumns + " FROM games WHERE user_id = ?")
	if q.Since != nil {
		sb.WriteString(" AND started_at >= ?")
		args = append(args, q.Since.UTC())
	}
	if q.WithTurnsOnly {
		sb.WriteString(" AND turns_to_win IS NOT NULL")
	}
	if q.Newest {
		sb.WriteString(" ORDER BY started_at DESC, created_at DESC")
	} else {
		sb.WriteString(" ORDER BY started_at ASC, created_at ASC")
	}
	if q.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
	}

	games, err := s.queryGames(ctx, sb.String(), args...)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", q.UserID).Msg("failed to find games")
		return nil, err
	}
	if len(games) == 0 {
		return []domain.GameWithPlayers{}, nil
	}

	gameIDs := lo.Map(games, func(g domain.Game, _ int) string { return g.ID })
	podIDs := lo.Uniq(lo.Map(games, func(g domain.Game, _ int) string { return g.PodID }))

	pods, err := s.loadPods(ctx, podIDs)
	if err != nil {
		return nil, err
	}
	seats, err := s.loadSeats(ctx, gameIDs)
	if err != nil {
		return nil, err
	}

	return lo.Map(games, func(g domain.Game, _ int) domain.GameWithPlayers {
		return domain.GameWithPlayers{
			Game:    g,
			Pod:     pods[g.PodID],
			Players: seats[g.ID],
		}
	}), nil
}

func (s *AnalyticsStore) queryGames(ctx context.Context, query string, args ...any) ([]domain.Game, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query games: %w", err)
	}
	defer rows.Close()

	var games []domain.Game
	for rows.Next() {
		var row db.Game
		if err := rows.Scan(
			&row.ID,
			&row.UserID,
			&row.PodID,
			&row.StartedAt,
			&row.EndedAt,
			&row.TurnsToWin,
			&row.WinConditionTags,
			&row.Notes,
			&row.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		g, err := toGame(row)
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read games: %w", err)
	}
	return games, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func anySlice(ids []string) []any {
	return lo.Map(ids, func(id string, _ int) any { return id })
}

func (s *AnalyticsStore) loadPods(ctx context.Context, ids []string) (map[string]domain.Pod, error) {
	query := `SELECT id, user_id, event_id, created_at FROM pods WHERE id IN (` + placeholders(len(ids)) + `)`
	rows, err := s.db.QueryContext(ctx, query, anySlice(ids)...)
	if err != nil {
		return nil, fmt.Errorf("failed to load pods: %w", err)
	}
	defer rows.Close()

	pods := make(map[string]domain.Pod, len(ids))
	for rows.Next() {
		var row db.Pod
		if err := rows.Scan(&row.ID, &row.UserID, &row.EventID, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pod: %w", err)
		}
		pods[row.ID] = toPod(row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read pods: %w", err)
	}
	return pods, nil
}

const seatColumns = `
gp.id, gp.user_id, gp.game_id, gp.player_id, gp.deck_id, gp.seat, gp.mulligans, gp.result,
gp.eliminated_by_player_id, gp.turn_eliminated,
p.id, p.user_id, p.display_name, p.created_at, p.updated_at,
d.id, d.user_id, d.player_id, d.name, d.archetype, d.color_identity, d.commanders, d.companion,
d.moxfield_url, d.is_active, d.created_at, d.updated_at`

// loadSeats returns each game's seats with player and deck, in seat order.
func (s *AnalyticsStore) loadSeats(ctx context.Context, gameIDs []string) (map[string][]domain.GamePlayerDetail, error) {
	query := `SELECT ` + seatColumns + `
FROM game_players gp
JOIN players p ON p.id = gp.player_id
JOIN decks d ON d.id = gp.deck_id
WHERE gp.game_id IN (` + placeholders(len(gameIDs)) + `)
ORDER BY gp.game_id, gp.seat`

	rows, err := s.db.QueryContext(ctx, query, anySlice(gameIDs)...)
	if err != nil {
		return nil, fmt.Errorf("failed to load game players: %w", err)
	}
	defer rows.Close()

	seats := make(map[string][]domain.GamePlayerDetail, len(gameIDs))
	for rows.Next() {
		var gp db.GamePlayer
		var p db.Player
		var d db.Deck
		if err := rows.Scan(
			&gp.ID, &gp.UserID, &gp.GameID, &gp.PlayerID, &gp.DeckID, &gp.Seat, &gp.Mulligans, &gp.Result,
			&gp.EliminatedByPlayerID, &gp.TurnEliminated,
			&p.ID, &p.UserID, &p.DisplayName, &p.CreatedAt, &p.UpdatedAt,
			&d.ID, &d.UserID, &d.PlayerID, &d.Name, &d.Archetype, &d.ColorIdentity, &d.Commanders, &d.Companion,
			&d.MoxfieldUrl, &d.IsActive, &d.CreatedAt, &d.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan game player: %w", err)
		}
		deck, err := toDeck(d)
		if err != nil {
			return nil, err
		}
		seats[gp.GameID] = append(seats[gp.GameID], domain.GamePlayerDetail{
			GamePlayer: toGamePlayer(gp),
			Player:     toPlayer(p),
			Deck:       deck,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read game players: %w", err)
	}
	return seats, nil
}

func (s *AnalyticsStore) FindDecks(ctx context.Context, userID string) ([]domain.Deck, error) {
	rows, err := s.queries.ListDecksByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	return toDecks(rows)
}

func (s *AnalyticsStore) FindDeck(ctx context.Context, deckID string) (*domain.Deck, error) {
	row, err := s.queries.GetDeck(ctx, deckID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deck: %w", err)
	}
	deck, err := toDeck(row)
	if err != nil {
		return nil, err
	}
	return &deck, nil
}

func (s *AnalyticsStore) FindDeckGames(ctx context.Context, deckID string) ([]analytics.DeckGameRow, error) {
	rows, err := s.queries.ListDeckGames(ctx, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to list deck games: %w", err)
	}
	return lo.Map(rows, func(row db.ListDeckGamesRow, _ int) analytics.DeckGameRow {
		return analytics.DeckGameRow{
			GamePlayer: toGamePlayer(row.GamePlayer),
			StartedAt:  row.StartedAt,
			TurnsToWin: intPtr(row.TurnsToWin),
			Archetype:  domain.ParseArchetype(row.Archetype),
		}
	}), nil
}

var _ analytics.Store = (*AnalyticsStore)(nil)
