package youtube

import (
	"context"
	"fmt"

	"pathmentor/learning-app/internal/provider"

	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// Client searches YouTube for educational videos. When no API key is
// configured the client stays inert and every search returns zero results,
// which keeps curriculum creation working without YouTube access.
type Client struct {
	log *logrus.Logger
	svc *youtube.Service
}

var _ provider.VideoProvider = (*Client)(nil)

// NewClient builds a YouTube search client. An empty API key yields an
// inert client, not an error.
func NewClient(ctx context.Context, apiKey string, log *logrus.Logger) (*Client, error) {
	if apiKey == "" {
		log.Warn("youtube: no API key configured, video search disabled")
		return &Client{log: log}, nil
	}

	svc, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("youtube: create service: %w", err)
	}
	return &Client{log: log, svc: svc}, nil
}

// SearchVideos looks up medium-length educational videos for the query,
// most relevant first. Internal failures are logged and yield an empty
// result set rather than an error.
func (c *Client) SearchVideos(ctx context.Context, query string, limit int) ([]provider.VideoHit, error) {
	if c.svc == nil || limit <= 0 {
		return []provider.VideoHit{}, nil
	}

	call := c.svc.Search.List([]string{"snippet"}).
		Context(ctx).
		Q(query + " tutorial learning education").
		Type("video").
		VideoDuration("medium").
		Order("relevance").
		MaxResults(int64(limit))

	resp, err := call.Do()
	if err != nil {
		c.log.WithError(err).WithField("query", query).Warn("youtube: search failed")
		return []provider.VideoHit{}, nil
	}

	hits := make([]provider.VideoHit, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id == nil || item.Id.VideoId == "" || item.Snippet == nil {
			continue
		}
		hits = append(hits, provider.VideoHit{
			Title:       item.Snippet.Title,
			Description: item.Snippet.Description,
			URL:         "https://www.youtube.com/watch?v=" + item.Id.VideoId,
			Channel:     item.Snippet.ChannelTitle,
		})
	}
	return hits, nil
}
