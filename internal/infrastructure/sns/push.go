package sns

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/dealradar/api/internal/config"
)

// PushResult carries the raw provider outcome of one send attempt.
type PushResult struct {
	Success    bool
	StatusCode int
	Raw        string
}

// PushSender delivers push notifications and data-only messages to a single
// device token. Both calls are fallible remote calls; callers isolate failures
// per recipient and never abort a batch because one send failed.
type PushSender interface {
	SendPush(ctx context.Context, token, title, body string, data map[string]string) (PushResult, error)
	SendData(ctx context.Context, token string, data map[string]string) (PushResult, error)
}

type sender struct {
	client      *sns.Client
	platformARN string
}

// NewSender builds an SNS-backed push sender. Errors when no platform
// application is configured — callers keep a nil sender and skip delivery.
func NewSender(cfg *config.Config) (PushSender, error) {
	if cfg.SNSPlatformARN == "" {
		return nil, errors.New("no SNS platform application configured")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.SNSRegion),
	)
	if err != nil {
		return nil, err
	}
	return &sender{client: sns.NewFromConfig(awsCfg), platformARN: cfg.SNSPlatformARN}, nil
}

func (s *sender) SendPush(ctx context.Context, token, title, body string, data map[string]string) (PushResult, error) {
	payload := map[string]interface{}{
		"notification": map[string]string{"title": title, "body": body},
		"data":         data,
	}
	return s.publish(ctx, token, payload)
}

func (s *sender) SendData(ctx context.Context, token string, data map[string]string) (PushResult, error) {
	return s.publish(ctx, token, map[string]interface{}{"data": data})
}

func (s *sender) publish(ctx context.Context, token string, payload map[string]interface{}) (PushResult, error) {
	endpointARN, err := s.endpointFor(ctx, token)
	if err != nil {
		return PushResult{Success: false, Raw: err.Error()}, fmt.Errorf("resolve endpoint: %w", err)
	}

	inner, err := json.Marshal(payload)
	if err != nil {
		return PushResult{Success: false}, fmt.Errorf("marshal payload: %w", err)
	}
	// SNS mobile push requires the platform-specific message nested as a string.
	msg, err := json.Marshal(map[string]string{
		"default": string(inner),
		"GCM":     string(inner),
	})
	if err != nil {
		return PushResult{Success: false}, fmt.Errorf("marshal envelope: %w", err)
	}

	msgStr := string(msg)
	structure := "json"
	out, err := s.client.Publish(ctx, &sns.PublishInput{
		TargetArn:        &endpointARN,
		Message:          &msgStr,
		MessageStructure: &structure,
	})
	if err != nil {
		return PushResult{Success: false, StatusCode: 502, Raw: err.Error()}, err
	}
	raw := ""
	if out.MessageId != nil {
		raw = *out.MessageId
	}
	return PushResult{Success: true, StatusCode: 200, Raw: raw}, nil
}

// endpointFor resolves a device token to a platform endpoint ARN.
// CreatePlatformEndpoint is idempotent for an unchanged token, so no local
// cache is kept.
func (s *sender) endpointFor(ctx context.Context, token string) (string, error) {
	out, err := s.client.CreatePlatformEndpoint(ctx, &sns.CreatePlatformEndpointInput{
		PlatformApplicationArn: &s.platformARN,
		Token:                  &token,
	})
	if err != nil {
		return "", err
	}
	return *out.EndpointArn, nil
}
