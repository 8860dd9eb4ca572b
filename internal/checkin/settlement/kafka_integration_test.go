//go:build integration

package settlement_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"nilgate/internal/checkin/models"
	"nilgate/internal/checkin/settlement"
	"nilgate/pkg/testutil/containers"
)

type KafkaPublisherSuite struct {
	suite.Suite
	brokers   []string
	publisher *settlement.KafkaPublisher
}

func TestKafkaPublisherSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(KafkaPublisherSuite))
}

func (s *KafkaPublisherSuite) SetupSuite() {
	s.brokers = containers.GetManager().GetRedpanda(s.T()).Brokers
	p, err := settlement.NewKafkaPublisher(s.brokers, settlement.WithTopic("settlements-test"))
	s.Require().NoError(err)
	s.publisher = p

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	s.Require().NoError(s.publisher.EnsureTopic(ctx, 1, 1))
	// Idempotent.
	s.Require().NoError(s.publisher.EnsureTopic(ctx, 1, 1))
}

func (s *KafkaPublisherSuite) TearDownSuite() {
	if s.publisher != nil {
		s.publisher.Close()
	}
}

func (s *KafkaPublisherSuite) TestPublishedEventIsConsumable() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Second)
	ev := models.SettlementEvent{
		SessionID:     "sess-kafka-1",
		CheckinID:     "chk-1",
		DealID:        "deal-1",
		ClaimantID:    "ath-1",
		Jurisdiction:  "CA",
		Payout:        decimal.RequireFromString("75.25"),
		Mode:          models.SettlementAuto,
		AutoTriggered: true,
		AuthorizedAt:  now,
		EligibleAt:    now,
	}
	s.Require().NoError(s.publisher.PublishSettlement(ctx, ev))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.brokers...),
		kgo.ConsumeTopics("settlements-test"),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	s.Require().Empty(fetches.Errors())
	records := fetches.Records()
	s.Require().NotEmpty(records)

	rec := records[0]
	s.Equal("sess-kafka-1", string(rec.Key))
	var got models.SettlementEvent
	s.Require().NoError(json.Unmarshal(rec.Value, &got))
	s.Equal(ev.SessionID, got.SessionID)
	s.True(ev.Payout.Equal(got.Payout))
	s.Equal(models.SettlementAuto, got.Mode)
	s.True(got.AutoTriggered)
}
