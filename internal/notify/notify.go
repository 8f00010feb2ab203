// Package notify publishes run failure alerts to an SNS topic.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/raoulx24/rds-dr-archiver/internal/config"
)

// Notifier is the alerting surface exposed to the workflows.
type Notifier interface {
	Publish(ctx context.Context, subject, message string) error
}

// API is the SNS client surface the notifier needs. *sns.Client
// satisfies it.
type API interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// New builds a notifier for the configured topic. Debug mode and a
// missing topic both yield a noop: failures are still logged and still
// fail the run, they just do not page anyone.
func New(cfg *config.Config, api API, log *slog.Logger) Notifier {
	topic := strings.TrimSpace(cfg.TopicARN)
	if cfg.Debug || topic == "" {
		return noopNotifier{}
	}
	return &topicNotifier{topicARN: topic, api: api, log: log}
}

type noopNotifier struct{}

func (noopNotifier) Publish(context.Context, string, string) error { return nil }

type topicNotifier struct {
	topicARN string
	api      API
	log      *slog.Logger
}

func (n *topicNotifier) Publish(ctx context.Context, subject, message string) error {
	_, err := n.api.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Subject:  aws.String(subject),
		Message:  aws.String(message),
	})
	if err != nil {
		return fmt.Errorf("publishing notification: %w", err)
	}
	n.log.Debug("notification published", "topic", n.topicARN, "subject", subject)
	return nil
}
