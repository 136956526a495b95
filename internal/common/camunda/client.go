// internal/common/camunda/client.go
package camunda

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"advisor-ai/internal/common/config"
	"advisor-ai/internal/common/errors"

	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// Client is the worker manager's connection to the Zeebe gateway.
type Client struct {
	client zbc.Client
	config *ClientConfig
}

type ClientConfig struct {
	GatewayAddress         string
	UsePlaintextConnection bool
	ConnectionTimeout      time.Duration
	RequestTimeout         time.Duration
	RetryConfig            *RetryConfig
}

// RetryConfig bounds ExecuteWithRetry's exponential backoff.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

var DefaultRetryConfig = &RetryConfig{
	MaxRetries: 3,
	BaseDelay:  1 * time.Second,
	MaxDelay:   10 * time.Second,
}

// DeployedProcess identifies one process definition accepted by the broker.
type DeployedProcess struct {
	BpmnProcessID        string
	Version              int32
	ProcessDefinitionKey int64
	ResourceName         string
}

func NewClient(cfg config.CamundaConfig) (*Client, error) {
	requestTimeout := config.GetDuration(cfg.RequestTimeout)
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}
	return NewClientWithConfig(&ClientConfig{
		GatewayAddress:         cfg.BrokerAddress,
		UsePlaintextConnection: !cfg.TLS,
		ConnectionTimeout:      10 * time.Second,
		RequestTimeout:         requestTimeout,
		RetryConfig:            DefaultRetryConfig,
	})
}

// NewClientWithConfig dials the gateway and fails unless the topology answers.
func NewClientWithConfig(cc *ClientConfig) (*Client, error) {
	if cc.RetryConfig == nil {
		cc.RetryConfig = DefaultRetryConfig
	}

	zeebeClient, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         cc.GatewayAddress,
		UsePlaintextConnection: cc.UsePlaintextConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Zeebe client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cc.ConnectionTimeout)
	defer cancel()

	if _, err := zeebeClient.NewTopologyCommand().Send(ctx); err != nil {
		zeebeClient.Close()
		return nil, fmt.Errorf("failed to connect to Zeebe broker at %s: %w", cc.GatewayAddress, err)
	}

	return &Client{client: zeebeClient, config: cc}, nil
}

// GetClient exposes the raw client for job workers.
func (c *Client) GetClient() zbc.Client {
	return c.client
}

func (c *Client) Close() error {
	return c.client.Close()
}

// DeployResources deploys each BPMN file in its own command so one broken
// model does not block the others. Missing files are reported before any call
// reaches the broker.
func (c *Client) DeployResources(ctx context.Context, paths ...string) ([]DeployedProcess, error) {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			return nil, errors.NewInvalidRequestError("BPMN resource not readable", err.Error())
		}
	}

	var deployed []DeployedProcess
	for _, path := range paths {
		res, err := c.ExecuteWithRetry(ctx, func(ctx context.Context) (interface{}, error) {
			ctx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
			defer cancel()
			return c.client.NewDeployResourceCommand().AddResourceFile(path).Send(ctx)
		}, "deploy "+path)
		if err != nil {
			return deployed, err
		}
		deployed = append(deployed, processesOf(res.(*pb.DeployResourceResponse))...)
	}
	return deployed, nil
}

func processesOf(res *pb.DeployResourceResponse) []DeployedProcess {
	var out []DeployedProcess
	for _, d := range res.GetDeployments() {
		p := d.GetProcess()
		if p == nil {
			continue
		}
		out = append(out, DeployedProcess{
			BpmnProcessID:        p.GetBpmnProcessId(),
			Version:              p.GetVersion(),
			ProcessDefinitionKey: p.GetProcessDefinitionKey(),
			ResourceName:         p.GetResourceName(),
		})
	}
	return out
}

// ExecuteWithRetry retries transient gateway failures (timeouts, connection
// loss) with exponential backoff and maps the final error to a StandardError.
func (c *Client) ExecuteWithRetry(
	ctx context.Context,
	commandFunc func(context.Context) (interface{}, error),
	operationName string,
) (interface{}, error) {
	rc := c.config.RetryConfig

	for attempt := 0; ; attempt++ {
		result, err := commandFunc(ctx)
		if err == nil {
			return result, nil
		}
		if !isRetryableZeebeError(err) || attempt == rc.MaxRetries {
			return nil, mapZeebeError(err, operationName, attempt)
		}

		delay := rc.BaseDelay * time.Duration(1<<attempt)
		if delay > rc.MaxDelay {
			delay = rc.MaxDelay
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("zeebe %s cancelled after %d attempts: %w", operationName, attempt+1, ctx.Err())
		}
	}
}

var retryablePhrases = []string{
	"connection refused",
	"connection reset",
	"timeout",
	"deadline exceeded",
	"unavailable",
	"unreachable",
	"broken pipe",
}

func isRetryableZeebeError(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, phrase := range retryablePhrases {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}

func mapZeebeError(err error, operation string, attempt int) error {
	msg := strings.ToLower(err.Error())
	wrapped := fmt.Errorf("zeebe %s failed", operation)
	if attempt > 0 {
		wrapped = fmt.Errorf("zeebe %s failed after %d attempts", operation, attempt+1)
	}
	wrapped = fmt.Errorf("%w: %s", wrapped, err.Error())

	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded"):
		return errors.NewTimeoutError("zeebe", wrapped)
	case strings.Contains(msg, "not found"):
		return errors.NewResourceNotFoundError("zeebe", wrapped.Error())
	case strings.Contains(msg, "already exists"):
		return errors.NewInvalidStateError("Resource already exists", wrapped.Error())
	case strings.Contains(msg, "permission denied") || strings.Contains(msg, "unauthorized"):
		return errors.NewAuthenticationError(wrapped.Error())
	default:
		return errors.NewExternalServiceError("zeebe", wrapped)
	}
}

// HealthCheck asks the gateway for its topology, retrying transient failures.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.ConnectionTimeout)
	defer cancel()

	_, err := c.ExecuteWithRetry(ctx, func(ctx context.Context) (interface{}, error) {
		return c.client.NewTopologyCommand().Send(ctx)
	}, "topology")
	if err != nil {
		return fmt.Errorf("zeebe health check failed: %w", err)
	}
	return nil
}
