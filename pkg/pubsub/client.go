// Package pubsub opens the Pub/Sub v2 client and hands out publishers for the
// quote lifecycle topic.
package pubsub

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/cableflow/cableflow-backend/pkg/config"
	"github.com/cableflow/cableflow-backend/pkg/gcp"
	"github.com/cableflow/cableflow-backend/pkg/logger"
)

var (
	errProjectIDRequired = errors.New("gcp project id is required")
	errNoTopic           = errors.New("pubsub quote topic is required")
)

type Client struct {
	ps         *pubsub.Client
	project    string
	quoteTopic string
}

// NewClient fails when the quote topic is missing; topics are provisioned
// outside the service.
func NewClient(ctx context.Context, gcpCfg config.GCPConfig, cfg config.PubSubConfig, logg *logger.Logger) (*Client, error) {
	project := strings.TrimSpace(gcpCfg.ProjectID)
	if project == "" {
		return nil, errProjectIDRequired
	}

	ps, err := pubsub.NewClient(ctx, project, gcp.ClientOptions(gcpCfg)...)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}
	c := &Client{ps: ps, project: project, quoteTopic: cfg.QuoteTopic}
	if err := c.Ping(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "topic", c.topic(cfg.QuoteTopic)), "pubsub connected")
	}
	return c, nil
}

// Ping checks that the quote topic exists.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.ps == nil {
		return errors.New("pubsub client not initialized")
	}
	name := c.topic(c.quoteTopic)
	if name == "" {
		return errNoTopic
	}
	_, err := c.ps.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{Topic: name})
	switch {
	case err == nil:
		return nil
	case status.Code(err) == codes.NotFound:
		return fmt.Errorf("pubsub topic %s does not exist", name)
	default:
		return fmt.Errorf("get pubsub topic %s: %w", name, err)
	}
}

// Publisher returns nil for a blank topic or an unopened client.
func (c *Client) Publisher(topic string) *pubsub.Publisher {
	if c == nil || c.ps == nil {
		return nil
	}
	name := c.topic(topic)
	if name == "" {
		return nil
	}
	return c.ps.Publisher(name)
}

func (c *Client) QuotePublisher() *pubsub.Publisher {
	return c.Publisher(c.quoteTopic)
}

func (c *Client) Close() error {
	if c == nil || c.ps == nil {
		return nil
	}
	return c.ps.Close()
}

func (c *Client) topic(name string) string {
	if c == nil {
		return ""
	}
	return topicResourceName(c.project, name)
}

// topicResourceName accepts a short topic id or a full resource name.
func topicResourceName(project, name string) string {
	name = strings.TrimSpace(name)
	project = strings.TrimSpace(project)
	switch {
	case name == "":
		return ""
	case strings.HasPrefix(name, "projects/") && strings.Contains(name, "/topics/"):
		return name
	case project == "":
		return ""
	default:
		return "projects/" + project + "/topics/" + name
	}
}
