// Package sns provides the notify resource, backed by Amazon SNS, and the
// task variants that publish messages to a topic.
package sns

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/CadentTech/bigrays/internal/awsconf"
	"github.com/CadentTech/bigrays/internal/config"
	"github.com/CadentTech/bigrays/internal/ctxlog"
	"github.com/CadentTech/bigrays/internal/registry"
	"github.com/CadentTech/bigrays/internal/resource"
	"github.com/CadentTech/bigrays/internal/table"
	"github.com/CadentTech/bigrays/internal/task"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// Kind is the resource kind of a notification client.
const Kind resource.Kind = "notify"

// PublishAPI is the subset of *sns.Client the publisher uses.
type PublishAPI interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Module implements the registry.Module interface for this package.
type Module struct{}

var (
	// PublishVariant publishes its input to a topic. Maps and slices are
	// sent as JSON; the output is the message id.
	PublishVariant = &task.Variant{
		Name:        "sns_publish",
		Description: "Publish the input to an SNS topic.",
		Resource:    Kind,
		Required:    []string{"input", "topic"},
		Templates:   []string{"topic"},
		Work:        task.WorkFunc(runPublish),
	}
	// EmailVariant is PublishVariant with a subject line, for topics with
	// email subscribers.
	EmailVariant = &task.Variant{
		Name:        "sns_publish_email",
		Description: "Publish the input with a subject to an SNS topic.",
		Resource:    Kind,
		Required:    []string{"input", "topic", "subject"},
		Templates:   []string{"topic", "subject", "input"},
		Work:        task.WorkFunc(runPublish),
	}
)

// Register registers the client and variants with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterClient(Kind, Client{})
	r.RegisterVariant(PublishVariant)
	r.RegisterVariant(EmailVariant)
}

// Client opens notify resources.
type Client struct{}

// RequiredConfigs implements resource.Client.
func (Client) RequiredConfigs(cfg *config.Store) []string {
	return awsconf.RequiredConfigs(cfg, awsconf.KeyRegion)
}

// Open implements resource.Client.
func (Client) Open(ctx context.Context, cfg *config.Store) (any, error) {
	awsCfg, err := awsconf.Load(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("loading AWS configuration: %w", err)
	}
	ctxlog.FromContext(ctx).Debug("SNS client created.", "region", awsCfg.Region)
	return sns.NewFromConfig(awsCfg), nil
}

// Close implements resource.Client.
func (Client) Close(context.Context, any) error { return nil }

func message(v any) (string, error) {
	switch val := v.(type) {
	case map[string]any, []any, []string, map[string]string:
		b, err := json.Marshal(val)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	b, err := table.Bytes(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func runPublish(ctx context.Context, env *task.Env) (any, error) {
	api, ok := env.Handle.(PublishAPI)
	if !ok || api == nil {
		return nil, fmt.Errorf("notify resource was not provided")
	}
	topic, err := env.Attrs.String("topic")
	if err != nil {
		return nil, err
	}
	msg, err := message(env.Attrs["input"])
	if err != nil {
		return nil, fmt.Errorf("input: %w", err)
	}

	in := &sns.PublishInput{TopicArn: aws.String(topic), Message: aws.String(msg)}
	if env.Attrs.Has("subject") {
		subject, err := env.Attrs.String("subject")
		if err != nil {
			return nil, err
		}
		in.Subject = aws.String(subject)
	}

	logger := ctxlog.FromContext(ctx)
	logger.Info("Publishing message.", "topic", topic, "size", len(msg))
	out, err := api.Publish(ctx, in)
	if err != nil {
		return nil, err
	}
	id := aws.ToString(out.MessageId)
	logger.Info("Message published.", "topic", topic, "message_id", id)
	return id, nil
}
