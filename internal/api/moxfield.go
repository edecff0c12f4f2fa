package api

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"cedh-tracker/internal/config"
	"cedh-tracker/internal/domain"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/valyala/fasthttp"
)

var ErrDeckNotFound = errors.New("moxfield deck not found")

type MoxfieldClient struct {
	baseURL string
	client  *fasthttp.Client
	logger  zerolog.Logger
}

func NewMoxfieldClient(cfg *config.Config, logger zerolog.Logger) *MoxfieldClient {
	return &MoxfieldClient{
		baseURL: strings.TrimSuffix(cfg.MoxfieldBaseURL, "/"),
		client: &fasthttp.Client{
			MaxConnsPerHost:     16,
			ReadTimeout:         cfg.MoxfieldTimeout,
			WriteTimeout:        cfg.MoxfieldTimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		logger: logger,
	}
}

// MoxfieldDeck is the subset of a public deck list the record wizard pre-fills.
type MoxfieldDeck struct {
	PublicID      string   `json:"publicId"`
	URL           string   `json:"url"`
	Name          string   `json:"name"`
	ColorIdentity string   `json:"colorIdentity"`
	Commanders    []string `json:"commanders"`
	Companion     *string  `json:"companion,omitempty"`
}

type deckResponse struct {
	PublicID      string   `json:"publicId"`
	Name          string   `json:"name"`
	ColorIdentity []string `json:"colorIdentity"`
	Boards        struct {
		Commanders board `json:"commanders"`
		Companions board `json:"companions"`
	} `json:"boards"`
}

type board struct {
	Cards map[string]boardCard `json:"cards"`
}

type boardCard struct {
	Card struct {
		Name string `json:"name"`
	} `json:"card"`
}

func (b board) names() []string {
	names := lo.MapToSlice(b.Cards, func(_ string, c boardCard) string { return c.Card.Name })
	slices.Sort(names)
	return names
}

// ParseDeckURL extracts the public id from a moxfield.com/decks/{id} link.
func ParseDeckURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("%w: not a url: %q", domain.ErrInvalidInput, raw)
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if host != "moxfield.com" {
		return "", fmt.Errorf("%w: not a moxfield url: %q", domain.ErrInvalidInput, raw)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) != 2 || parts[0] != "decks" || parts[1] == "" {
		return "", fmt.Errorf("%w: not a moxfield deck url: %q", domain.ErrInvalidInput, raw)
	}
	return parts[1], nil
}

func (c *MoxfieldClient) GetDeck(ctx context.Context, deckURL string) (*MoxfieldDeck, error) {
	publicID, err := ParseDeckURL(deckURL)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/v3/decks/all/%s", c.baseURL, url.PathEscape(publicID))
	resp, err := doRequest[deckResponse](ctx, c, endpoint)
	if err != nil {
		c.logger.Warn().Err(err).Str("public_id", publicID).Msg("moxfield lookup failed")
		return nil, err
	}

	deck := &MoxfieldDeck{
		PublicID:      lo.Ternary(resp.PublicID != "", resp.PublicID, publicID),
		URL:           deckURL,
		Name:          resp.Name,
		ColorIdentity: colorIdentity(resp.ColorIdentity),
		Commanders:    resp.Boards.Commanders.names(),
	}
	if companions := resp.Boards.Companions.names(); len(companions) > 0 {
		deck.Companion = &companions[0]
	}
	return deck, nil
}

var colorOrder = []string{"W", "U", "B", "R", "G"}

// colorIdentity renders colors in WUBRG order, "C" for colorless.
func colorIdentity(colors []string) string {
	present := lo.SliceToMap(colors, func(c string) (string, bool) { return strings.ToUpper(c), true })
	identity := strings.Join(lo.Filter(colorOrder, func(c string, _ int) bool { return present[c] }), "")
	if identity == "" {
		return "C"
	}
	return identity
}

func doRequest[T any](ctx context.Context, client *MoxfieldClient, url string) (*T, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	req.Header.SetUserAgent("cedh-tracker")

	deadline, ok := ctx.Deadline()
	if ok {
		if err := client.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, err
		}
	} else {
		if err := client.client.Do(req, resp); err != nil {
			return nil, err
		}
	}

	switch resp.StatusCode() {
	case fasthttp.StatusOK:
	case fasthttp.StatusNotFound:
		return nil, fmt.Errorf("%w: %w", ErrDeckNotFound, domain.ErrNotFound)
	default:
		return nil, fmt.Errorf("API error: %d", resp.StatusCode())
	}

	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}
