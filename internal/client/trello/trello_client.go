package trello

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/yukikurage/taskbot/internal/client"
)

const DefaultBaseURL = "https://api.trello.com/1"

type TrelloClient struct {
	baseUrl    string
	apiKey     string
	token      string
	boardId    string
	httpClient *http.Client

	mu    sync.RWMutex
	cards []client.Card
}

type Option func(*TrelloClient)

func WithBaseURL(baseUrl string) Option {
	return func(c *TrelloClient) {
		if baseUrl != "" {
			c.baseUrl = strings.TrimRight(baseUrl, "/")
		}
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *TrelloClient) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

func NewTrelloClient(apiKey, token, boardId string, opts ...Option) *TrelloClient {
	c := &TrelloClient{
		baseUrl:    DefaultBaseURL,
		apiKey:     apiKey,
		token:      token,
		boardId:    boardId,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFactory returns a client.BoardFactory sharing credentials and options.
func NewFactory(apiKey, token string, opts ...Option) client.BoardFactory {
	return func(boardId string) client.BoardClient {
		return NewTrelloClient(apiKey, token, boardId, opts...)
	}
}

func (c *TrelloClient) BoardID() string {
	return c.boardId
}

func (c *TrelloClient) Sync(ctx context.Context) error {
	endpoint := c.baseUrl + "/boards/" + url.PathEscape(c.boardId) + "/cards?" + c.auth().Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("trello: fetch cards: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return readAPIError(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("trello: read cards: %w", err)
	}

	var trelloCards []TrelloCard
	if err := json.Unmarshal(body, &trelloCards); err != nil {
		return fmt.Errorf("trello: parse cards: %w", err)
	}

	cards := make([]client.Card, len(trelloCards))
	for i, tc := range trelloCards {
		cards[i] = client.Card{
			ID:          tc.Id,
			Title:       tc.Name,
			Description: tc.Desc,
			Done:        tc.Badges.DueComplete,
		}
	}

	c.mu.Lock()
	c.cards = cards
	c.mu.Unlock()
	return nil
}

func (c *TrelloClient) Tasks() []client.Card {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]client.Card, len(c.cards))
	copy(out, c.cards)
	return out
}

func (c *TrelloClient) UpdateTask(ctx context.Context, card client.Card) error {
	params := c.auth()
	params.Set("name", card.Title)
	params.Set("desc", card.Description)
	params.Set("dueComplete", strconv.FormatBool(card.Done))
	endpoint := c.baseUrl + "/cards/" + url.PathEscape(card.ID) + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("trello: update card %s: %w", card.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return readAPIError(resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *TrelloClient) auth() url.Values {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("token", c.token)
	return params
}

func readAPIError(resp *http.Response) error {
	errorBody, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return &APIError{StatusCode: resp.StatusCode}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(errorBody))}
}
