package pubsub

import (
	"context"
	"testing"

	"github.com/angelmondragon/hourstay-backend/pkg/config"
	"github.com/stretchr/testify/assert"
)

func TestTopicResourceName(t *testing.T) {
	assert.Equal(t, "projects/p1/topics/listing-approved", topicResourceName("p1", " listing-approved "))
	assert.Equal(t, "projects/other/topics/t", topicResourceName("p1", "projects/other/topics/t"))
	assert.Empty(t, topicResourceName("", "listing-approved"))
	assert.Empty(t, topicResourceName("p1", ""))
}

func TestTopicNamesSkipsBlank(t *testing.T) {
	assert.Empty(t, topicNames(config.PubSubConfig{ListingApprovedTopic: "  "}))
	assert.Equal(t, []string{"approved"}, topicNames(config.PubSubConfig{ListingApprovedTopic: "approved"}))
}

func TestNilClientIsInert(t *testing.T) {
	var c *Client
	assert.Nil(t, c.Publisher("listing-approved"))
	assert.NoError(t, c.Close())
	assert.Error(t, c.Ping(context.Background()))
}

func TestNewClientRequiresProject(t *testing.T) {
	_, err := NewClient(context.Background(), config.GCPConfig{}, config.PubSubConfig{ListingApprovedTopic: "t"}, nil)
	assert.ErrorIs(t, err, errProjectIDRequired)
}

func TestClientOptionsPreferInlineCredentials(t *testing.T) {
	assert.Empty(t, clientOptions(config.GCPConfig{ProjectID: "p1"}))
	assert.Len(t, clientOptions(config.GCPConfig{CredentialsJSON: "{}", ApplicationCredentials: "/key.json"}), 1)
	assert.Len(t, clientOptions(config.GCPConfig{ApplicationCredentials: "/key.json"}), 1)
}
