// internal/common/aws/sns.go
package aws

import (
	"context"
	"encoding/json"
	"fmt"

	"advisor-ai/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// SNSService is the part of the SNS API used here.
type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSClient publishes escalation alerts for analysed emails.
type SNSClient struct {
	client   SNSService
	topicARN string
}

func NewSNSClient(ctx context.Context, region, topicARN string) (*SNSClient, error) {
	cfg, err := loadConfig(ctx, region)
	if err != nil {
		return nil, err
	}
	return NewSNSClientWithService(sns.NewFromConfig(cfg), topicARN), nil
}

func NewSNSClientWithService(svc SNSService, topicARN string) *SNSClient {
	return &SNSClient{client: svc, topicARN: topicARN}
}

// PublishEscalation sends e as a JSON message with urgency and department
// attributes so subscriptions can filter on them.
func (s *SNSClient) PublishEscalation(ctx context.Context, e models.Escalation) (string, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("marshal escalation: %w", err)
	}

	attrs := map[string]types.MessageAttributeValue{
		"urgency": {DataType: aws.String("String"), StringValue: aws.String(orUnknown(e.Urgency))},
	}
	if e.AssignedDepartment != "" {
		attrs["department"] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(e.AssignedDepartment),
		}
	}

	out, err := s.client.Publish(ctx, &sns.PublishInput{
		TopicArn:          aws.String(s.topicARN),
		Subject:           aws.String(fmt.Sprintf("Email escalation (%s)", orUnknown(e.Urgency))),
		Message:           aws.String(string(payload)),
		MessageAttributes: attrs,
	})
	if err != nil {
		return "", fmt.Errorf("sns publish: %w", err)
	}
	return aws.ToString(out.MessageId), nil
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func loadConfig(ctx context.Context, region string) (aws.Config, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return aws.Config{}, fmt.Errorf("load AWS config: %w", err)
	}
	return cfg, nil
}
