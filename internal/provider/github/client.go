package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"pathmentor/learning-app/internal/provider"

	"github.com/sirupsen/logrus"
)

const defaultBaseURL = "https://api.github.com"

// Client searches the GitHub repository index for example projects.
// Unauthenticated requests work within GitHub's anonymous rate limits; a
// token raises them.
type Client struct {
	log        *logrus.Logger
	baseURL    string
	token      string
	httpClient *http.Client
}

var _ provider.RepositoryProvider = (*Client)(nil)

// NewClient builds a GitHub search client. The token is optional.
func NewClient(baseURL, token string, log *logrus.Logger) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		log:        log,
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type searchResponse struct {
	Items []struct {
		Name            string   `json:"name"`
		Description     string   `json:"description"`
		HTMLURL         string   `json:"html_url"`
		StargazersCount int      `json:"stargazers_count"`
		Language        string   `json:"language"`
		Topics          []string `json:"topics"`
	} `json:"items"`
}

// SearchRepositories returns the most-starred repositories matching the
// query. Internal failures are logged and yield an empty result set rather
// than an error.
func (c *Client) SearchRepositories(ctx context.Context, query string, limit int) ([]provider.RepoHit, error) {
	if limit <= 0 {
		return []provider.RepoHit{}, nil
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("sort", "stars")
	params.Set("order", "desc")
	params.Set("per_page", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/search/repositories?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "learning-app")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.WithError(err).WithField("query", query).Warn("github: search failed")
		return []provider.RepoHit{}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.log.WithFields(logrus.Fields{
			"query":  query,
			"status": resp.StatusCode,
			"body":   string(body),
		}).Warn("github: search failed")
		return []provider.RepoHit{}, nil
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		c.log.WithError(err).WithField("query", query).Warn("github: decode failed")
		return []provider.RepoHit{}, nil
	}

	hits := make([]provider.RepoHit, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		description := item.Description
		if description == "" {
			description = fmt.Sprintf("No description available for %s", item.Name)
		}
		hits = append(hits, provider.RepoHit{
			Name:        item.Name,
			Description: description,
			URL:         item.HTMLURL,
			Language:    item.Language,
			Stars:       item.StargazersCount,
			Topics:      item.Topics,
		})
	}
	return hits, nil
}
