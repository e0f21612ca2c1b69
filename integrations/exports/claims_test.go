package exports

import (
	"strings"
	"testing"

	"rewardledger/core/events"
	"rewardledger/core/types"
	"rewardledger/crypto"
)

func sampleEvents() []*types.Event {
	claimed := func(seq, epoch uint64, addr byte, amount uint64) *types.Event {
		evt := events.RewardsClaimed{Epoch: epoch, User: [20]byte{addr}, Amount: amount, Points: amount / 2, Route: "prelaunch"}.Event()
		evt.Sequence = seq
		return evt
	}
	accrued := events.RewardsPointsAccrued{Epoch: 16, User: [20]byte{1}, Amount: 5}.Event()
	accrued.Sequence = 1
	return []*types.Event{accrued, claimed(2, 16, 1, 10), claimed(3, 17, 2, 40), nil}
}

func TestClaimsFromEvents(t *testing.T) {
	records, err := ClaimsFromEvents(sampleEvents(), 0)
	if err != nil {
		t.Fatalf("claims: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 claims, got %d", len(records))
	}
	if records[0].Sequence != 2 || records[0].Amount != 10 || records[0].Points != 5 {
		t.Fatalf("unexpected first record: %+v", records[0])
	}

	filtered, err := ClaimsFromEvents(sampleEvents(), 17)
	if err != nil {
		t.Fatalf("claims: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Address != [20]byte{2} {
		t.Fatalf("unexpected filter result: %+v", filtered)
	}

	broken := &types.Event{Type: events.TypeRewardsClaimed, Attributes: map[string]string{"epoch": "x"}}
	if _, err := ClaimsFromEvents([]*types.Event{broken}, 0); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestClaimsCSV(t *testing.T) {
	records, _ := ClaimsFromEvents(sampleEvents(), 0)
	data, checksum, err := ClaimsCSV(records)
	if err != nil {
		t.Fatalf("csv: %v", err)
	}
	if len(data) == 0 || len(checksum) != 64 {
		t.Fatalf("expected data and checksum")
	}
	output := string(data)
	if !strings.HasPrefix(output, "sequence,epoch,address,amount,points,route\n") {
		t.Fatalf("missing header: %s", output)
	}
	if !strings.Contains(output, crypto.Format([20]byte{2})) {
		t.Fatalf("missing address: %s", output)
	}
}

func TestClaimsJSONL(t *testing.T) {
	records, _ := ClaimsFromEvents(sampleEvents(), 16)
	data, checksum, err := ClaimsJSONL(records)
	if err != nil {
		t.Fatalf("jsonl: %v", err)
	}
	if checksum == "" {
		t.Fatalf("expected checksum")
	}
	output := string(data)
	if !strings.Contains(output, "\"epoch\":16") || !strings.Contains(output, "\"amount\":\"10\"") {
		t.Fatalf("unexpected payload: %s", output)
	}
	if strings.Count(output, "\n") != 1 {
		t.Fatalf("expected one line: %s", output)
	}
}
