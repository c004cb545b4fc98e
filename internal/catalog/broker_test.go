package catalog

import (
	"context"
	"testing"

	"github.com/tradinghub/backend/internal/model"
)

func newTestBrokerService(repo *mockBrokerRepo, rec *recordingRecorder) *BrokerService {
	deps := Deps{}
	if rec != nil {
		deps.Recorder = rec
	}
	s := NewBrokerService(repo, deps)
	fixed(&s.base)
	return s
}

func validBrokerInput() model.BrokerPatch {
	return model.BrokerPatch{
		Name:               ptr("TradeMax Pro"),
		AccountTypes:       ptr([]string{"Standard", "ECN"}),
		MinDeposit:         ptr(100),
		MaxLeverage:        ptr("1:500"),
		SpreadsFrom:        ptr(0.1),
		Rating:             ptr(4.7),
		Regulation:         ptr([]string{"CySEC", "FCA"}),
		Instruments:        ptr([]string{"Forex", "Crypto"}),
		PlatformsSupported: ptr([]string{"MT4", "MT5"}),
		WithdrawalTime:     ptr("24h"),
		CustomerSupport:    ptr("24/7"),
		AffiliateURL:       ptr("https://trademaxpro.com/register"),
	}
}

func TestBrokerService_Create_Defaults(t *testing.T) {
	rec := &recordingRecorder{}
	svc := newTestBrokerService(&mockBrokerRepo{}, rec)

	b, err := svc.Create(context.Background(), validBrokerInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Currency != "USD" || !b.Verified {
		t.Errorf("defaults not applied: currency=%q verified=%v", b.Currency, b.Verified)
	}
	if b.Bonus != nil {
		t.Errorf("Bonus = %v, want nil", *b.Bonus)
	}
	if len(rec.calls) != 1 || rec.calls[0] != "broker:create" {
		t.Errorf("recorded = %v", rec.calls)
	}
}

func TestBrokerService_Create_Bonus(t *testing.T) {
	svc := newTestBrokerService(&mockBrokerRepo{}, nil)

	in := validBrokerInput()
	in.Bonus = ptr("50% Welcome Bonus")
	b, err := svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Bonus == nil || *b.Bonus != "50% Welcome Bonus" {
		t.Errorf("Bonus = %v", b.Bonus)
	}
}

func TestBrokerService_Create_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *model.BrokerPatch)
	}{
		{"missing instruments", func(in *model.BrokerPatch) { in.Instruments = nil }},
		{"negative deposit", func(in *model.BrokerPatch) { in.MinDeposit = ptr(-1) }},
		{"negative spread", func(in *model.BrokerPatch) { in.SpreadsFrom = ptr(-0.5) }},
		{"rating above 5", func(in *model.BrokerPatch) { in.Rating = ptr(6.0) }},
		{"private affiliate url", func(in *model.BrokerPatch) { in.AffiliateURL = ptr("http://10.0.0.1/register") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestBrokerService(&mockBrokerRepo{}, nil)
			in := validBrokerInput()
			tt.mutate(&in)
			_, err := svc.Create(context.Background(), in)
			assertAPIError(t, err, model.ErrCodeValidationFailed)
		})
	}
}

// 空文字のbonusでボーナスを削除できること
func TestBrokerService_Update_ClearsBonus(t *testing.T) {
	bonus := "100% Deposit Bonus"
	repo := &mockBrokerRepo{
		findByIDFn: func(context.Context, string) (*model.Broker, error) {
			return &model.Broker{
				ID: "b1", Name: "Blue FX", Currency: "USD", Rating: 4, Bonus: &bonus,
				AffiliateURL: "https://bluefxglobal.com/signup",
			}, nil
		},
	}
	rec := &recordingRecorder{}
	svc := newTestBrokerService(repo, rec)

	b, err := svc.Update(context.Background(), "b1", model.BrokerPatch{Bonus: ptr("")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Bonus != nil {
		t.Errorf("Bonus = %q, want nil", *b.Bonus)
	}
	if !b.UpdatedAt.Equal(testNow) {
		t.Errorf("UpdatedAt = %v, want %v", b.UpdatedAt, testNow)
	}
	if b.Instruments == nil || b.Regulation == nil {
		t.Error("list fields should be normalized to empty slices")
	}
	if len(rec.calls) != 1 || rec.calls[0] != "broker:update" {
		t.Errorf("recorded = %v", rec.calls)
	}
}

func TestBrokerService_NotFound(t *testing.T) {
	svc := newTestBrokerService(&mockBrokerRepo{}, nil)

	_, err := svc.Get(context.Background(), "x")
	assertAPIError(t, err, model.ErrCodeBrokerNotFound)

	_, err = svc.Update(context.Background(), "x", model.BrokerPatch{})
	assertAPIError(t, err, model.ErrCodeBrokerNotFound)

	err = svc.Delete(context.Background(), "x")
	assertAPIError(t, err, model.ErrCodeBrokerNotFound)
}

func TestBrokerService_List_PassesFilter(t *testing.T) {
	var got model.BrokerFilter
	repo := &mockBrokerRepo{
		listFn: func(_ context.Context, f model.BrokerFilter) ([]*model.Broker, int, error) {
			got = f
			return nil, 0, nil
		},
	}
	svc := newTestBrokerService(repo, nil)

	_, _, err := svc.List(context.Background(), model.BrokerFilter{
		InstrumentType: "Crypto", MaxMinDeposit: ptr(250), Regulation: "FCA", Limit: 1000, Skip: 20,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.InstrumentType != "Crypto" || got.Regulation != "FCA" || *got.MaxMinDeposit != 250 {
		t.Errorf("filter = %+v", got)
	}
	if got.Limit != MaxListLimit || got.Skip != 20 {
		t.Errorf("paging = (%d, %d)", got.Limit, got.Skip)
	}
}
