package bot

import (
	"context"
	"errors"
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"bags-buyback-bot/pkg/advisor"
	"bags-buyback-bot/pkg/buyback"
	"bags-buyback-bot/pkg/config"
	"bags-buyback-bot/pkg/feecollector"
)

type fakeCollector struct {
	status    *feecollector.FeeStatus
	statusErr error

	check    *feecollector.CollectCheck
	checkErr error

	collectResult *feecollector.CollectionResult
	collectCalls  int
	statusCalls   int
}

func (f *fakeCollector) GetStatus(ctx context.Context) (*feecollector.FeeStatus, error) {
	f.statusCalls++
	return f.status, f.statusErr
}

func (f *fakeCollector) ShouldCollect(ctx context.Context) (*feecollector.CollectCheck, error) {
	return f.check, f.checkErr
}

func (f *fakeCollector) Collect(ctx context.Context) *feecollector.CollectionResult {
	f.collectCalls++
	return f.collectResult
}

type fakeExecutor struct {
	quote    *buyback.Quote
	quoteErr error

	check buyback.Check

	result        *buyback.Result
	executeCalls  int
	executeAmount float64
}

func (f *fakeExecutor) Quote(ctx context.Context, amountSol float64) (*buyback.Quote, error) {
	return f.quote, f.quoteErr
}

func (f *fakeExecutor) ShouldExecute(availableSol float64, lastBuyback time.Time) buyback.Check {
	return f.check
}

func (f *fakeExecutor) Execute(ctx context.Context, amountSol float64) *buyback.Result {
	f.executeCalls++
	f.executeAmount = amountSol
	return f.result
}

type fakeAdvisor struct {
	advice *advisor.BuybackAdvice
	calls  int
	lastMC *advisor.MarketContext
}

func (f *fakeAdvisor) GetBuybackAdvice(ctx context.Context, mc *advisor.MarketContext) *advisor.BuybackAdvice {
	f.calls++
	f.lastMC = mc
	return f.advice
}

type fakeBalance struct {
	balance float64
	err     error
}

func (f *fakeBalance) Balance(ctx context.Context) (float64, error) {
	return f.balance, f.err
}

type fakeAnnouncer struct {
	buybacks int
	fees     int
}

func (f *fakeAnnouncer) SendBuybackNotification(inputSol, outputTokens float64, priceImpact, signature string) {
	f.buybacks++
}

func (f *fakeAnnouncer) SendFeesCollectedNotification(totalSol, totalUsd float64, txCount int) {
	f.fees++
}

func quietCollector() *fakeCollector {
	return &fakeCollector{
		status: &feecollector.FeeStatus{TokenMint: "MintA"},
		check:  &feecollector.CollectCheck{Should: false, Claimable: 0.01, Threshold: 0.1},
	}
}

func newTestBot(collector *fakeCollector, executor *fakeExecutor, adv *fakeAdvisor, wallet *fakeBalance, announcer *fakeAnnouncer) *Bot {
	cfg := &config.Config{CheckInterval: time.Minute}
	return New(collector, executor, adv, wallet, announcer, cfg, log.New(os.Stdout, "TEST: ", log.LstdFlags))
}

func TestRunCycleGateRejectSkipsAdvisor(t *testing.T) {
	executor := &fakeExecutor{
		check: buyback.Check{Should: false, Reason: "Insufficient funds. Have: 0.0500 SOL, Need: 0.1 SOL"},
	}
	adv := &fakeAdvisor{}
	b := newTestBot(quietCollector(), executor, adv, &fakeBalance{balance: 0.06}, &fakeAnnouncer{})

	b.RunCycle(context.Background())

	assert.Equal(t, 0, adv.calls, "a rejected gate must not spend an advisor call")
	assert.Equal(t, 0, executor.executeCalls)
}

func TestRunCycleAdvisorVetoSkipsExecute(t *testing.T) {
	executor := &fakeExecutor{
		check: buyback.Check{Should: true, SuggestedAmount: 0.5},
		quote: &buyback.Quote{InputAmountSol: 0.5, OutputAmountTokens: 1000},
	}
	adv := &fakeAdvisor{
		advice: &advisor.BuybackAdvice{ShouldBuyback: false, Confidence: 70, Reasoning: "wait for more fees"},
	}
	b := newTestBot(quietCollector(), executor, adv, &fakeBalance{balance: 1.01}, &fakeAnnouncer{})

	b.RunCycle(context.Background())

	assert.Equal(t, 1, adv.calls)
	assert.Equal(t, 0, executor.executeCalls, "advisor veto must block execution")
	assert.Equal(t, 0, b.State().TotalBuybacks)
}

func TestRunCycleSuccessfulBuyback(t *testing.T) {
	executor := &fakeExecutor{
		check: buyback.Check{Should: true, SuggestedAmount: 0.5},
		quote: &buyback.Quote{InputAmountSol: 0.5, OutputAmountTokens: 1000},
		result: &buyback.Result{
			Success:      true,
			InputAmount:  0.4,
			OutputAmount: 800,
			PriceImpact:  "0.8",
			Transaction:  "sig123",
		},
	}
	adv := &fakeAdvisor{
		advice: &advisor.BuybackAdvice{ShouldBuyback: true, Confidence: 85, SuggestedAmount: 0.4},
	}
	announcer := &fakeAnnouncer{}
	b := newTestBot(quietCollector(), executor, adv, &fakeBalance{balance: 1.01}, announcer)

	b.RunCycle(context.Background())

	// Advisor sizing wins over the gate suggestion
	assert.Equal(t, 0.4, executor.executeAmount)

	state := b.State()
	assert.Equal(t, 1, state.TotalBuybacks)
	assert.False(t, state.LastBuybackTime.IsZero())
	assert.Len(t, state.RecentBuybacks, 1)
	assert.Equal(t, 0.4, state.RecentBuybacks[0].Amount)
	assert.Equal(t, 1, announcer.buybacks)
}

func TestRunCycleFallsBackToGateAmount(t *testing.T) {
	executor := &fakeExecutor{
		check:  buyback.Check{Should: true, SuggestedAmount: 0.5},
		quote:  &buyback.Quote{InputAmountSol: 0.5, OutputAmountTokens: 1000},
		result: &buyback.Result{Success: true, InputAmount: 0.5, Transaction: "sig"},
	}
	adv := &fakeAdvisor{
		// Approval without a sizing suggestion
		advice: &advisor.BuybackAdvice{ShouldBuyback: true, Confidence: 80, SuggestedAmount: 0},
	}
	b := newTestBot(quietCollector(), executor, adv, &fakeBalance{balance: 1.01}, &fakeAnnouncer{})

	b.RunCycle(context.Background())

	assert.Equal(t, 0.5, executor.executeAmount)
}

func TestRunCycleCollectsFees(t *testing.T) {
	collector := quietCollector()
	collector.check = &feecollector.CollectCheck{Should: true, Claimable: 0.2, Threshold: 0.1}
	collector.collectResult = &feecollector.CollectionResult{
		Success:         true,
		TotalClaimed:    0.2,
		TotalClaimedUsd: 4.0,
		Transactions:    []string{"sig1"},
	}
	executor := &fakeExecutor{check: buyback.Check{Should: false, Reason: "Insufficient funds"}}
	announcer := &fakeAnnouncer{}
	b := newTestBot(collector, executor, &fakeAdvisor{}, &fakeBalance{balance: 0.05}, announcer)

	b.RunCycle(context.Background())

	assert.Equal(t, 1, collector.collectCalls)
	assert.Equal(t, 1, announcer.fees)

	state := b.State()
	assert.Equal(t, 0.2, state.TotalFeesCollected)
	assert.False(t, state.LastFeeCollectionTime.IsZero())
}

func TestRunCycleTrivialCollectionSendsNoNotification(t *testing.T) {
	collector := quietCollector()
	collector.check = &feecollector.CollectCheck{Should: true, Claimable: 0.2, Threshold: 0.1}
	// Success with zero transactions: positions vanished between check and claim
	collector.collectResult = &feecollector.CollectionResult{Success: true}
	executor := &fakeExecutor{check: buyback.Check{Should: false}}
	announcer := &fakeAnnouncer{}
	b := newTestBot(collector, executor, &fakeAdvisor{}, &fakeBalance{balance: 0.05}, announcer)

	b.RunCycle(context.Background())

	assert.Equal(t, 0, announcer.fees)
}

func TestRunCycleCollectionFailureIsNotFatal(t *testing.T) {
	collector := quietCollector()
	collector.check = &feecollector.CollectCheck{Should: true, Claimable: 0.2, Threshold: 0.1}
	collector.collectResult = &feecollector.CollectionResult{Success: false, Errors: []string{"boom"}}
	executor := &fakeExecutor{
		check:  buyback.Check{Should: true, SuggestedAmount: 0.5},
		quote:  &buyback.Quote{InputAmountSol: 0.5, OutputAmountTokens: 1000},
		result: &buyback.Result{Success: true, InputAmount: 0.5, Transaction: "sig"},
	}
	adv := &fakeAdvisor{advice: &advisor.BuybackAdvice{ShouldBuyback: true, SuggestedAmount: 0.5}}
	b := newTestBot(collector, executor, adv, &fakeBalance{balance: 1.01}, &fakeAnnouncer{})

	b.RunCycle(context.Background())

	// The buyback half of the cycle still runs
	assert.Equal(t, 1, executor.executeCalls)
}

func TestRunCycleCheckErrorEndsCycle(t *testing.T) {
	collector := quietCollector()
	collector.checkErr = errors.New("network down")
	executor := &fakeExecutor{}
	b := newTestBot(collector, executor, &fakeAdvisor{}, &fakeBalance{balance: 1.0}, &fakeAnnouncer{})

	b.RunCycle(context.Background())

	assert.Equal(t, 0, collector.statusCalls, "no further work after a failed fee check")
	assert.Equal(t, 0, executor.executeCalls)
}

func TestRunCycleFailedBuybackLeavesStateUntouched(t *testing.T) {
	executor := &fakeExecutor{
		check:  buyback.Check{Should: true, SuggestedAmount: 0.5},
		quote:  &buyback.Quote{InputAmountSol: 0.5, OutputAmountTokens: 1000},
		result: &buyback.Result{Success: false, Error: "failed to submit swap: blockhash expired"},
	}
	adv := &fakeAdvisor{advice: &advisor.BuybackAdvice{ShouldBuyback: true, SuggestedAmount: 0.5}}
	announcer := &fakeAnnouncer{}
	b := newTestBot(quietCollector(), executor, adv, &fakeBalance{balance: 1.01}, announcer)

	b.RunCycle(context.Background())

	state := b.State()
	assert.Equal(t, 0, state.TotalBuybacks)
	assert.True(t, state.LastBuybackTime.IsZero())
	assert.Empty(t, state.RecentBuybacks)
	assert.Equal(t, 0, announcer.buybacks)
}

func TestRecentBuybacksRingIsBounded(t *testing.T) {
	executor := &fakeExecutor{
		check:  buyback.Check{Should: true, SuggestedAmount: 0.5},
		quote:  &buyback.Quote{InputAmountSol: 0.5, OutputAmountTokens: 1000},
		result: &buyback.Result{Success: true, InputAmount: 0.5, Transaction: "sig"},
	}
	adv := &fakeAdvisor{advice: &advisor.BuybackAdvice{ShouldBuyback: true, SuggestedAmount: 0.5}}
	b := newTestBot(quietCollector(), executor, adv, &fakeBalance{balance: 1.01}, &fakeAnnouncer{})

	for i := 0; i < 15; i++ {
		b.RunCycle(context.Background())
	}

	state := b.State()
	assert.Equal(t, 15, state.TotalBuybacks)
	assert.Len(t, state.RecentBuybacks, 10, "history ring keeps only the newest entries")
}

func TestRunCycleAdvisorSeesHistory(t *testing.T) {
	executor := &fakeExecutor{
		check:  buyback.Check{Should: true, SuggestedAmount: 0.5},
		quote:  &buyback.Quote{InputAmountSol: 0.5, OutputAmountTokens: 1000},
		result: &buyback.Result{Success: true, InputAmount: 0.5, Transaction: "sig"},
	}
	adv := &fakeAdvisor{advice: &advisor.BuybackAdvice{ShouldBuyback: true, SuggestedAmount: 0.5}}
	b := newTestBot(quietCollector(), executor, adv, &fakeBalance{balance: 1.01}, &fakeAnnouncer{})

	b.RunCycle(context.Background())
	b.RunCycle(context.Background())

	assert.Len(t, adv.lastMC.RecentBuybacks, 1, "second cycle carries the first buyback as context")
	assert.False(t, adv.lastMC.LastBuybackTime.IsZero())
}

func TestRunDoesNotOverlapCycles(t *testing.T) {
	b := newTestBot(quietCollector(), &fakeExecutor{check: buyback.Check{Should: false}}, &fakeAdvisor{}, &fakeBalance{}, &fakeAnnouncer{})

	// Simulate an in-flight cycle
	b.inFlight.Store(true)
	assert.False(t, b.tryRunCycle(context.Background()), "a tick must be skipped while a cycle runs")

	b.inFlight.Store(false)
	assert.True(t, b.tryRunCycle(context.Background()))
}
