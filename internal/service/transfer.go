package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"cedh-tracker/internal/analytics"
	"cedh-tracker/internal/constants"
	"cedh-tracker/internal/domain"
	"cedh-tracker/internal/repository"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// TransferService moves players, decks and games in and out as CSV. List cells are
// pipe separated.
type TransferService struct {
	players *repository.PlayerRepository
	decks   *repository.DeckRepository
	games   *GameService
	store   analytics.Store
	logger  zerolog.Logger
}

func NewTransferService(players *repository.PlayerRepository, decks *repository.DeckRepository, games *GameService, store analytics.Store, logger zerolog.Logger) *TransferService {
	return &TransferService{players: players, decks: decks, games: games, store: store, logger: logger}
}

type ImportResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

type Dataset string

const (
	DatasetPlayers Dataset = "players"
	DatasetDecks   Dataset = "decks"
	DatasetGames   Dataset = "games"
)

var (
	playerHeader = []string{"displayName"}
	deckHeader   = []string{"playerName", "deckName", "moxfieldUrl", "archetype", "colorIdentity", "commanders", "companion"}
	gameHeader   = []string{"date", "podSize", "players", "seats", "decks", "mulligans", "winnerSeat", "turnsToWin", "winTags", "eliminationOrder", "turnEliminated", "notes"}
)

type csvRecord map[string]string

func (r csvRecord) get(key string) string { return strings.TrimSpace(r[key]) }

func (r csvRecord) list(key string) []string {
	v := r.get(key)
	if v == "" {
		return nil
	}
	return strings.Split(v, "|")
}

// parseCSV keys each row by the header line. Missing cells read as empty.
func parseCSV(data string) ([]csvRecord, error) {
	reader := csv.NewReader(strings.NewReader(strings.TrimSpace(data)))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	header = lo.Map(header, func(h string, _ int) string { return strings.TrimSpace(h) })

	var records []csvRecord
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
		}
		if strings.TrimSpace(strings.Join(row, "")) == "" {
			continue
		}
		record := make(csvRecord, len(header))
		for i, h := range header {
			if i < len(row) {
				record[h] = row[i]
			}
		}
		records = append(records, record)
	}
	return records, nil
}

func (s *TransferService) Import(ctx context.Context, userID string, dataset Dataset, data string) (*ImportResult, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	records, err := parseCSV(data)
	if err != nil {
		return nil, err
	}

	var importRow func(context.Context, string, csvRecord) error
	switch dataset {
	case DatasetPlayers:
		importRow = s.importPlayer
	case DatasetDecks:
		importRow = s.importDeck
	case DatasetGames:
		importRow = s.importGame
	default:
		return nil, fmt.Errorf("%w: unknown dataset %q", domain.ErrInvalidInput, dataset)
	}

	result := &ImportResult{}
	for i, record := range records {
		if err := importRow(ctx, userID, record); err != nil {
			s.logger.Warn().Err(err).Str("dataset", string(dataset)).Int("row", i+2).Msg("skipping csv row")
			result.Skipped++
			continue
		}
		result.Created++
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("dataset", string(dataset)).
		Int("created", result.Created).
		Int("skipped", result.Skipped).
		Msg("csv import finished")
	return result, nil
}

func (s *TransferService) importPlayer(ctx context.Context, userID string, r csvRecord) error {
	_, err := s.players.Ensure(ctx, userID, r.get("displayName"))
	return err
}

func (s *TransferService) importDeck(ctx context.Context, userID string, r csvRecord) error {
	playerName, deckName := r.get("playerName"), r.get("deckName")
	if playerName == "" || deckName == "" {
		return fmt.Errorf("%w: playerName and deckName are required", domain.ErrInvalidInput)
	}
	player, err := s.players.Ensure(ctx, userID, playerName)
	if err != nil {
		return err
	}

	commanders := r.list("commanders")
	if len(commanders) == 0 {
		commanders = []string{"Unknown"}
	}
	_, err = s.decks.Upsert(ctx, userID, player.ID, repository.DeckParams{
		Name:          deckName,
		Archetype:     domain.ParseArchetype(r.get("archetype")),
		ColorIdentity: lo.CoalesceOrEmpty(r.get("colorIdentity"), "C"),
		Commanders:    commanders,
		Companion:     optional(r.get("companion")),
		MoxfieldURL:   optional(r.get("moxfieldUrl")),
	})
	return err
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func atoiOr(v string, fallback int) (int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", domain.ErrInvalidInput, v)
	}
	return n, nil
}

func at(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}

func (s *TransferService) importGame(ctx context.Context, userID string, r csvRecord) error {
	podSize, err := atoiOr(r.get("podSize"), 4)
	if err != nil {
		return err
	}
	winnerSeat, err := atoiOr(r.get("winnerSeat"), 1)
	if err != nil {
		return err
	}

	startedAt := time.Now().UTC()
	if date := r.get("date"); date != "" {
		startedAt, err = parseDate(date)
		if err != nil {
			return err
		}
	}

	input := domain.QuickRecordInput{
		StartedAt:        startedAt,
		EndedAt:          &startedAt,
		WinConditionTags: lo.Compact(r.list("winTags")),
		Notes:            optional(r.get("notes")),
	}
	if turns := r.get("turnsToWin"); turns != "" {
		n, err := atoiOr(turns, 0)
		if err != nil {
			return err
		}
		input.TurnsToWin = &n
	}

	names, decks, seats := r.list("players"), r.list("decks"), r.list("seats")
	mulligans, order, turnsOut := r.list("mulligans"), r.list("eliminationOrder"), r.list("turnEliminated")

	for i := 0; i < podSize; i++ {
		seat, err := atoiOr(at(seats, i), i+1)
		if err != nil {
			return err
		}
		mull, err := atoiOr(at(mulligans, i), 0)
		if err != nil {
			mull = 0
		}
		p := domain.SeatInput{
			Seat:          seat,
			PlayerName:    lo.CoalesceOrEmpty(strings.TrimSpace(at(names, i)), fmt.Sprintf("Player %d", seat)),
			DeckName:      lo.CoalesceOrEmpty(strings.TrimSpace(at(decks, i)), fmt.Sprintf("Deck %d", seat)),
			Archetype:     domain.ArchetypeOther,
			ColorIdentity: "C",
			Commanders:    []string{"Unknown"},
			Mulligans:     mull,
			Result:        lo.Ternary(seat == winnerSeat, domain.ResultWin, domain.ResultLose),
		}
		if by, err := atoiOr(at(order, i), 0); err == nil && by > 0 {
			p.EliminatedBySeat = &by
		}
		if turn, err := atoiOr(at(turnsOut, i), 0); err == nil && turn > 0 {
			p.TurnEliminated = &turn
		}
		input.Players = append(input.Players, p)
	}

	_, err = s.games.RecordGame(ctx, userID, input)
	return err
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"}

func parseDate(v string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognized date %q", domain.ErrInvalidInput, v)
}

func (s *TransferService) Export(ctx context.Context, userID string, dataset Dataset) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	var rows [][]string
	var err error
	switch dataset {
	case DatasetPlayers:
		rows, err = s.playerRows(ctx, userID)
	case DatasetDecks:
		rows, err = s.deckRows(ctx, userID)
	case DatasetGames:
		rows, err = s.gameRows(ctx, userID)
	default:
		return "", fmt.Errorf("%w: unknown dataset %q", domain.ErrInvalidInput, dataset)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("dataset", string(dataset)).Msg("failed to export")
		return "", err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return "", fmt.Errorf("failed to write csv: %w", err)
	}
	return buf.String(), nil
}

func (s *TransferService) playerRows(ctx context.Context, userID string) ([][]string, error) {
	players, err := s.players.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	rows := [][]string{playerHeader}
	for _, p := range players {
		rows = append(rows, []string{p.DisplayName})
	}
	return rows, nil
}

func (s *TransferService) deckRows(ctx context.Context, userID string) ([][]string, error) {
	players, err := s.players.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	decks, err := s.decks.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	names := lo.SliceToMap(players, func(p domain.Player) (string, string) { return p.ID, p.DisplayName })
	slices.SortStableFunc(decks, func(a, b domain.Deck) int { return strings.Compare(a.Name, b.Name) })

	rows := [][]string{deckHeader}
	for _, d := range decks {
		rows = append(rows, []string{
			names[d.PlayerID],
			d.Name,
			lo.FromPtr(d.MoxfieldURL),
			string(d.Archetype),
			d.ColorIdentity,
			strings.Join(d.Commanders, "|"),
			lo.FromPtr(d.Companion),
		})
	}
	return rows, nil
}

func joinInts(values []int) string {
	return strings.Join(lo.Map(values, func(v int, _ int) string { return strconv.Itoa(v) }), "|")
}

func (s *TransferService) gameRows(ctx context.Context, userID string) ([][]string, error) {
	games, err := s.store.FindGames(ctx, analytics.GameQuery{
		Filter: analytics.Filter{UserID: userID},
		Newest: true,
	})
	if err != nil {
		return nil, err
	}

	rows := [][]string{gameHeader}
	for _, g := range games {
		seats := slices.Clone(g.Players)
		slices.SortFunc(seats, func(a, b domain.GamePlayerDetail) int { return a.Seat - b.Seat })

		winner := ""
		if w, ok := lo.Find(seats, func(p domain.GamePlayerDetail) bool { return p.Result == domain.ResultWin }); ok {
			winner = strconv.Itoa(w.Seat)
		}

		eliminated := lo.Filter(seats, func(p domain.GamePlayerDetail, _ int) bool { return p.TurnEliminated != nil })
		slices.SortStableFunc(eliminated, func(a, b domain.GamePlayerDetail) int { return *a.TurnEliminated - *b.TurnEliminated })

		turns := ""
		if g.TurnsToWin != nil {
			turns = strconv.Itoa(*g.TurnsToWin)
		}

		rows = append(rows, []string{
			g.StartedAt.UTC().Format(time.RFC3339),
			strconv.Itoa(len(seats)),
			strings.Join(lo.Map(seats, func(p domain.GamePlayerDetail, _ int) string { return p.Player.DisplayName }), "|"),
			joinInts(lo.Map(seats, func(p domain.GamePlayerDetail, _ int) int { return p.Seat })),
			strings.Join(lo.Map(seats, func(p domain.GamePlayerDetail, _ int) string { return p.Deck.Name }), "|"),
			joinInts(lo.Map(seats, func(p domain.GamePlayerDetail, _ int) int { return p.Mulligans })),
			winner,
			turns,
			strings.Join(g.WinConditionTags, "|"),
			joinInts(lo.Map(eliminated, func(p domain.GamePlayerDetail, _ int) int { return p.Seat })),
			joinInts(lo.Map(eliminated, func(p domain.GamePlayerDetail, _ int) int { return *p.TurnEliminated })),
			strings.ReplaceAll(lo.FromPtr(g.Notes), "\n", " "),
		})
	}
	return rows, nil
}
