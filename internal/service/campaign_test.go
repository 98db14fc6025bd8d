package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/storefront/internal/lib/job"
	"github.com/deppfellow/storefront/internal/model"
)

func TestCampaignService_SendQueuesOneEmailPerActiveSubscriber(t *testing.T) {
	subscribers := newFakeSubscribers("ana@example.com", "luis@example.com", "sofia@example.com")
	queue := newFakeQueue()
	svc := NewCampaignService(newFakeCampaigns(), subscribers, queue, "https://tienda.example.com", testLogger())
	ctx := context.Background()

	require.NoError(t, svc.Unsubscribe(ctx, &model.UnsubscribePayload{Token: subscribers.byEmail["luis@example.com"].UnsubscribeToken}))

	c, err := svc.Create(ctx, &model.CreateCampaignPayload{Subject: "Nueva colección", Heading: "Otoño", Body: "Conoce los nuevos bolsos."})
	require.NoError(t, err)
	assert.Equal(t, model.CampaignStatusDraft, c.Status)

	res, err := svc.Send(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Recipients)
	assert.Equal(t, model.CampaignStatusSent, res.Campaign.Status)
	assert.Equal(t, 2, res.Campaign.RecipientCount)
	assert.Equal(t, 2, queue.count(job.TaskCampaign))

	_, err = svc.Send(ctx, c.ID)
	requireHTTPError(t, err, 400, "CAMPAIGN_ALREADY_SENT")

	_, err = svc.Send(ctx, uuid.New())
	requireHTTPError(t, err, 404, "CAMPAIGN_NOT_FOUND")
}

func TestCampaignService_SendFailureKeepsDraft(t *testing.T) {
	subscribers := newFakeSubscribers("ana@example.com")
	campaigns := newFakeCampaigns()
	queue := newFakeQueue()
	svc := NewCampaignService(campaigns, subscribers, queue, "https://tienda.example.com", testLogger())
	ctx := context.Background()

	c, err := svc.Create(ctx, &model.CreateCampaignPayload{Subject: "Rebajas", Heading: "Solo hoy", Body: "Descuentos en bolsos."})
	require.NoError(t, err)

	subscribers.listErr = errors.New("db down")
	_, err = svc.Send(ctx, c.ID)
	require.Error(t, err)
	assert.Equal(t, model.CampaignStatusDraft, campaigns.byID[c.ID].Status)
	assert.Zero(t, queue.count(job.TaskCampaign))

	subscribers.listErr = nil
	res, err := svc.Send(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Recipients)
	assert.Equal(t, model.CampaignStatusSent, res.Campaign.Status)
}

func TestCampaignService_SubscribeAndUnsubscribe(t *testing.T) {
	subscribers := newFakeSubscribers()
	svc := NewCampaignService(newFakeCampaigns(), subscribers, newFakeQueue(), "https://tienda.example.com", testLogger())
	ctx := context.Background()

	sub, err := svc.Subscribe(ctx, &model.SubscribePayload{Email: " Ana@Example.com"})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", sub.Email)
	assert.True(t, sub.IsActive)

	err = svc.Unsubscribe(ctx, &model.UnsubscribePayload{Token: "unknown"})
	requireHTTPError(t, err, 404, "SUBSCRIPTION_NOT_FOUND")
}

func TestCampaignService_UnsubscribeURL(t *testing.T) {
	svc := NewCampaignService(newFakeCampaigns(), newFakeSubscribers(), newFakeQueue(), "https://tienda.example.com/", testLogger())

	assert.Equal(t, "https://tienda.example.com/newsletter/baja?token=abc123", svc.unsubscribeURL("abc123"))
}
