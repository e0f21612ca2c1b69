package events

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"rewardledger/core/types"
	"rewardledger/crypto"
)

type capturingEmitter struct {
	events []Event
}

func (c *capturingEmitter) Emit(e Event) {
	c.events = append(c.events, e)
}

func TestRewardsClaimedAttributes(t *testing.T) {
	var user [20]byte
	user[19] = 7
	evt := RewardsClaimed{Epoch: 16, User: user, Amount: 40, Points: 100, Route: "prelaunch"}.Event()
	require.Equal(t, TypeRewardsClaimed, evt.Type)
	require.Equal(t, "16", evt.Attributes["epoch"])
	require.Equal(t, crypto.Format(user), evt.Attributes["user"])
	require.Equal(t, "40", evt.Attributes["amount"])
	require.Equal(t, "100", evt.Attributes["points"])
	require.Equal(t, "prelaunch", evt.Attributes["route"])
}

func TestMultiEmitterSkipsNil(t *testing.T) {
	first := &capturingEmitter{}
	second := &capturingEmitter{}
	multi := MultiEmitter{first, nil, second, NoopEmitter{}}

	multi.Emit(Record{Payload: &types.Event{Type: TypeRewardsPointsAccrued}})

	require.Len(t, first.events, 1)
	require.Len(t, second.events, 1)
	require.Equal(t, TypeRewardsPointsAccrued, second.events[0].EventType())
}

func TestLogEmitterWritesAttributes(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(buf, nil))
	LogEmitter{Logger: logger}.Emit(Record{Payload: &types.Event{
		Sequence:   3,
		Type:       TypeCreditsMinted,
		Attributes: map[string]string{"amount": "5"},
	}})

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, TypeCreditsMinted, line["type"])
	require.Equal(t, float64(3), line["sequence"])
	attrs, ok := line["attributes"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "5", attrs["amount"])
}
