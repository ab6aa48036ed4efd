package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSNS struct {
	input *sns.PublishInput
	err   error
}

func (m *mockSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.input = params
	if m.err != nil {
		return nil, m.err
	}
	return &sns.PublishOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSNSPublisherPublish(t *testing.T) {
	client := &mockSNS{}
	pub := NewSNSPublisher(client, "arn:aws:sns:ap-south-1:123:letters", nil)

	err := pub.Publish(context.Background(), Event{Type: "letter_request.created", Payload: map[string]string{"id": "req-1"}})
	require.NoError(t, err)

	require.NotNil(t, client.input)
	assert.Equal(t, "arn:aws:sns:ap-south-1:123:letters", aws.ToString(client.input.TopicArn))
	assert.Equal(t, "letter_request.created", aws.ToString(client.input.MessageAttributes["eventType"].StringValue))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(client.input.Message)), &decoded))
	assert.Equal(t, "letter_request.created", decoded["eventType"])
	assert.NotEmpty(t, decoded["occurredAt"])
	assert.Equal(t, "req-1", decoded["payload"].(map[string]interface{})["id"])
}

func TestSNSPublisherErrors(t *testing.T) {
	pub := NewSNSPublisher(&mockSNS{err: errors.New("throttled")}, "arn", nil)
	assert.Error(t, pub.Publish(context.Background(), Event{Type: "x"}))
	assert.Error(t, pub.Publish(context.Background(), Event{}))
}

func TestNewFromConfigWithoutTopicIsNop(t *testing.T) {
	pub, err := NewFromConfig(context.Background(), "", "ap-south-1", nil)
	require.NoError(t, err)
	assert.IsType(t, NopPublisher{}, pub)
	assert.NoError(t, pub.Publish(context.Background(), Event{Type: "x"}))
}
