package testsupport

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// PublishedMessage is one recorded SNS publish.
type PublishedMessage struct {
	TopicARN string
	Subject  string
	Message  string
}

// FakeSNS records publishes instead of sending them.
type FakeSNS struct {
	mu        sync.Mutex
	Published []PublishedMessage
}

func (f *FakeSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Published = append(f.Published, PublishedMessage{
		TopicARN: aws.ToString(params.TopicArn),
		Subject:  aws.ToString(params.Subject),
		Message:  aws.ToString(params.Message),
	})
	return &sns.PublishOutput{}, nil
}
