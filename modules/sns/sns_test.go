package sns

import (
	"context"
	"errors"
	"testing"

	"github.com/CadentTech/bigrays/internal/config"
	"github.com/CadentTech/bigrays/internal/task"
	"github.com/CadentTech/bigrays/internal/testutil"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	inputs []*sns.PublishInput
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.inputs = append(f.inputs, in)
	return &sns.PublishOutput{MessageId: aws.String("msg-1")}, nil
}

func run(t *testing.T, v *task.Variant, handle any, attrs task.Attributes) (any, error) {
	t.Helper()
	ctx, _ := testutil.Context(t)
	d, err := v.Define("notify", attrs)
	require.NoError(t, err)
	return d.Work.Run(ctx, &task.Env{Task: d, Attrs: d.Attrs, Handle: handle})
}

func TestPublish_EncodesMapsAsJSON(t *testing.T) {
	pub := &fakePublisher{}
	out, err := run(t, PublishVariant, pub, task.Attributes{
		"topic": "arn:aws:sns:us-east-1:1:alerts",
		"input": map[string]any{"rows": 3},
	})
	require.NoError(t, err)
	assert.Equal(t, "msg-1", out)

	require.Len(t, pub.inputs, 1)
	assert.Equal(t, "arn:aws:sns:us-east-1:1:alerts", aws.ToString(pub.inputs[0].TopicArn))
	assert.JSONEq(t, `{"rows":3}`, aws.ToString(pub.inputs[0].Message))
	assert.Nil(t, pub.inputs[0].Subject)
}

func TestPublishEmail_SetsSubject(t *testing.T) {
	pub := &fakePublisher{}
	_, err := run(t, EmailVariant, pub, task.Attributes{
		"topic":   "arn",
		"subject": "Nightly load",
		"input":   "done",
	})
	require.NoError(t, err)
	assert.Equal(t, "Nightly load", aws.ToString(pub.inputs[0].Subject))
	assert.Equal(t, "done", aws.ToString(pub.inputs[0].Message))
}

func TestPublishEmail_RequiresSubject(t *testing.T) {
	_, err := EmailVariant.Define("n", task.Attributes{"topic": "arn", "input": "x"})
	var ie *task.InterfaceError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, []string{"subject"}, ie.Missing)
}

func TestPublish_Errors(t *testing.T) {
	_, err := run(t, PublishVariant, nil, task.Attributes{"topic": "arn", "input": "x"})
	assert.ErrorContains(t, err, "notify resource was not provided")

	_, err = run(t, PublishVariant, &fakePublisher{err: errors.New("throttled")}, task.Attributes{"topic": "arn", "input": "x"})
	assert.ErrorContains(t, err, "throttled")
}

func TestClient_RequiresRegion(t *testing.T) {
	cfg := config.NewStore()
	cfg.Set("AWS_REQUIRE_SECRETS", "no")
	assert.Equal(t, []string{"AWS_REGION"}, Client{}.RequiredConfigs(cfg))
}
