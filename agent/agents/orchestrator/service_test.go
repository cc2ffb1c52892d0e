package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	contractx "github.com/tanpawarit/travel-orchestrator/agent/contract"
	statex "github.com/tanpawarit/travel-orchestrator/agent/state"
	qstashx "github.com/tanpawarit/travel-orchestrator/pkg/qstash"
)

type fakeStore struct {
	mu      sync.Mutex
	inner   *statex.MemoryStore
	saveErr error
	saves   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{inner: statex.NewMemoryStore()}
}

func (f *fakeStore) Load(ctx context.Context, sessionID string) (*statex.SharedState, error) {
	return f.inner.Load(ctx, sessionID)
}

func (f *fakeStore) Save(ctx context.Context, st *statex.SharedState) error {
	f.mu.Lock()
	f.saves++
	f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.inner.Save(ctx, st)
}

func (f *fakeStore) Delete(ctx context.Context, sessionID string) error {
	return f.inner.Delete(ctx, sessionID)
}

type fakeExtractor struct {
	prefs statex.Preferences
	calls int
}

func (f *fakeExtractor) Extract(ctx context.Context, text string) statex.Preferences {
	f.calls++
	return *f.prefs.Clone()
}

type fakeOracle struct {
	answers []string
	calls   int
}

func (f *fakeOracle) ChooseNext(ctx context.Context, req contractx.NextActionRequest) (contractx.NextActionResponse, error) {
	f.calls++
	if len(f.answers) == 0 {
		return contractx.NextActionResponse{}, errors.New("no answer scripted")
	}
	next := f.answers[0]
	f.answers = f.answers[1:]
	return contractx.NextActionResponse{NextAgent: next}, nil
}

type fakeWorker struct {
	kind   statex.WorkerKind
	result statex.WorkerResult
	delay  time.Duration

	mu    sync.Mutex
	calls int
}

func (f *fakeWorker) Kind() statex.WorkerKind { return f.kind }

func (f *fakeWorker) Execute(ctx context.Context, prefs statex.Preferences, snapshot *statex.SharedState) statex.WorkerResult {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	res := f.result
	res.Kind = f.kind
	return res
}

func (f *fakeWorker) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeSink struct {
	err      error
	answers  []statex.FinalAnswer
	sessions []string
}

func (f *fakeSink) Deliver(ctx context.Context, sessionID string, answer statex.FinalAnswer) error {
	f.sessions = append(f.sessions, sessionID)
	f.answers = append(f.answers, answer)
	return f.err
}

func fp(v float64) *float64 { return &v }

func ip(v int) *int { return &v }

func beachPrefs() statex.Preferences {
	return statex.Preferences{BudgetMax: ip(50000), Activities: []string{"beach"}, DestinationCountries: []string{"India"}}
}

func databaseWorker() *fakeWorker {
	return &fakeWorker{kind: statex.WorkerDatabase, result: statex.WorkerResult{Success: true, Count: 3, Rows: []statex.DatabaseRow{
		{DestinationStates: []string{"Goa"}, DestinationCountries: []string{"India"}, BudgetMax: fp(40000), Activities: []string{"beach"}},
		{DestinationStates: []string{"Kerala"}, DestinationCountries: []string{"India"}, BudgetMax: fp(45000), Activities: []string{"beach"}},
		{DestinationStates: []string{"Andaman"}, DestinationCountries: []string{"India"}, BudgetMax: fp(30000), Activities: []string{"beach"}},
	}}}
}

func webWorker() *fakeWorker {
	return &fakeWorker{kind: statex.WorkerWeb, result: statex.WorkerResult{Success: true, Count: 4, Destinations: []statex.WebDestination{
		{Name: "Ladakh", EstimatedCost: fp(90000), Activities: []string{"trekking"}},
		{Name: "Gokarna", EstimatedCost: fp(20000), Activities: []string{"beach"}},
		{Name: "Shimla", EstimatedCost: fp(70000), Activities: []string{"snow"}},
		{Name: "goa", EstimatedCost: fp(35000), Activities: []string{"beach"}},
	}}}
}

func failingWorker(kind statex.WorkerKind, msg string) *fakeWorker {
	return &fakeWorker{kind: kind, result: statex.WorkerResult{Success: false, Error: msg}}
}

func newTestOrchestrator(t *testing.T, deps Deps, cfg Config) *Orchestrator {
	t.Helper()
	o, err := New(deps, cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	o.now = func() time.Time { return time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC) }
	return o
}

func TestRunInvalidInput(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(t, Deps{Store: newFakeStore(), Extractor: &fakeExtractor{}}, Config{})

	_, err := o.Run(context.Background(), Request{SessionID: "s1", Query: "   "})
	if err == nil || !strings.Contains(err.Error(), ErrInvalidQuery.Error()) {
		t.Fatalf("expected invalid query error, got %v", err)
	}
}

func TestNewRequiresStoreAndExtractor(t *testing.T) {
	t.Parallel()

	if _, err := New(Deps{Extractor: &fakeExtractor{}}, Config{}); err == nil {
		t.Fatal("expected error without store")
	}
	if _, err := New(Deps{Store: newFakeStore()}, Config{}); err == nil {
		t.Fatal("expected error without extractor")
	}
}

func TestRunSequentialOracleDriven(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	extractor := &fakeExtractor{prefs: beachPrefs()}
	oracle := &fakeOracle{answers: []string{"analyst", "search"}}
	db, web := databaseWorker(), webWorker()
	sink := &fakeSink{}

	o := newTestOrchestrator(t, Deps{
		Store: store, Extractor: extractor, Oracle: oracle,
		Workers: []contractx.Worker{db, web}, Sink: sink,
	}, Config{})

	answer, err := o.Run(context.Background(), Request{SessionID: "trip-1", Query: "beach trip in India under 50k"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if answer.TotalFound != 6 {
		t.Fatalf("expected 6 records after dedup, got %d", answer.TotalFound)
	}
	if answer.DataSource != "database/web" {
		t.Fatalf("unexpected data source %q", answer.DataSource)
	}
	top := answer.Recommendations[0].Name
	if top != "Kerala" {
		t.Fatalf("unexpected top recommendation %q", top)
	}
	last := answer.Recommendations[len(answer.Recommendations)-1].Name
	if last != "Ladakh" {
		t.Fatalf("expected most over-budget record last, got %q", last)
	}
	if oracle.calls != 2 {
		t.Fatalf("expected 2 oracle calls, got %d", oracle.calls)
	}
	if db.callCount() != 1 || web.callCount() != 1 {
		t.Fatalf("expected each worker once, got db=%d web=%d", db.callCount(), web.callCount())
	}
	if len(sink.answers) != 1 || sink.sessions[0] != "trip-1" {
		t.Fatalf("expected one delivery for trip-1, got %v", sink.sessions)
	}

	saved, err := store.Load(context.Background(), "trip-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !saved.Completed || saved.Phase != statex.PhaseDone {
		t.Fatalf("expected completed checkpoint, got phase=%s", saved.Phase)
	}
	if saved.Rounds != 2 {
		t.Fatalf("expected 2 rounds, got %d", saved.Rounds)
	}
}

func TestRunNoSourcesYieldsEmptyAnswer(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(t, Deps{
		Store:     newFakeStore(),
		Extractor: &fakeExtractor{},
		Workers:   []contractx.Worker{failingWorker(statex.WorkerWeb, "web search not configured")},
	}, Config{})

	answer, err := o.Run(context.Background(), Request{SessionID: "empty", Query: "somewhere nice"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if answer.Summary != "No recommendations found" || answer.DataSource != "none" {
		t.Fatalf("unexpected answer %+v", answer)
	}
	if answer.Recommendations == nil || len(answer.Recommendations) != 0 {
		t.Fatalf("expected empty, non-nil recommendations, got %#v", answer.Recommendations)
	}
}

func TestRunWeatherOnly(t *testing.T) {
	t.Parallel()

	weather := &fakeWorker{kind: statex.WorkerWeather, result: statex.WorkerResult{Success: true, Count: 1, Weather: &statex.WeatherSummary{
		DestinationLabel: "Goa", TemperatureRange: "24-32°C", Conditions: "sunny",
	}}}
	o := newTestOrchestrator(t, Deps{
		Store:     newFakeStore(),
		Extractor: &fakeExtractor{prefs: statex.Preferences{WeatherRequested: true, DestinationStates: []string{"Goa"}}},
		Oracle:    &fakeOracle{answers: []string{"weather"}},
		Workers:   []contractx.Worker{weather, failingWorker(statex.WorkerDatabase, "datastore not configured")},
	}, Config{})

	answer, err := o.Run(context.Background(), Request{SessionID: "wx", Query: "what is the weather in Goa"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !answer.WeatherOnly || answer.WeatherInfo == nil {
		t.Fatalf("expected weather-only answer, got %+v", answer)
	}
	if answer.Summary != "Weather for Goa: 24-32°C | sunny" {
		t.Fatalf("unexpected summary %q", answer.Summary)
	}
}

func TestRunResumesFromCheckpoint(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	now := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)
	prev := statex.NewSharedState("resume-1", "beach trip", "", now)
	prefs := beachPrefs()
	prev.Preferences = &prefs
	dbResult := databaseWorker().result
	dbResult.Kind = statex.WorkerDatabase
	if err := prev.SetResult(dbResult, now); err != nil {
		t.Fatalf("SetResult() error = %v", err)
	}
	prev.Rounds = 1
	if err := store.Save(context.Background(), prev); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	extractor := &fakeExtractor{}
	db, web := databaseWorker(), webWorker()
	o := newTestOrchestrator(t, Deps{
		Store: store, Extractor: extractor,
		Workers: []contractx.Worker{db, web},
	}, Config{})

	answer, err := o.Run(context.Background(), Request{SessionID: "resume-1", Query: "beach trip"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if extractor.calls != 0 {
		t.Fatalf("expected stored preferences to be reused, extractor called %d times", extractor.calls)
	}
	if db.callCount() != 0 {
		t.Fatalf("database worker ran again")
	}
	if web.callCount() != 1 {
		t.Fatalf("expected web worker once, got %d", web.callCount())
	}
	if answer.TotalFound != 6 {
		t.Fatalf("expected 6 records, got %d", answer.TotalFound)
	}
}

func TestRunCompletedSessionReturnsStoredAnswer(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	now := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)
	done := statex.NewSharedState("done-1", "beach trip", "", now)
	done.Preferences = &statex.Preferences{}
	stored := statex.FinalAnswer{Recommendations: []statex.DestinationRecord{}, Summary: "stored", DataSource: "none"}
	if err := done.Complete(stored, now); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if err := store.Save(context.Background(), done); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	web := webWorker()
	sink := &fakeSink{}
	o := newTestOrchestrator(t, Deps{Store: store, Extractor: &fakeExtractor{}, Workers: []contractx.Worker{web}, Sink: sink}, Config{})

	answer, err := o.Run(context.Background(), Request{SessionID: "done-1", Query: "beach trip"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if answer.Summary != "stored" {
		t.Fatalf("expected stored answer, got %q", answer.Summary)
	}
	if web.callCount() != 0 || len(sink.answers) != 0 {
		t.Fatalf("completed session must not run workers or redeliver")
	}
}

func TestRunAbortProducesPartialAnswer(t *testing.T) {
	t.Parallel()

	abort := make(chan struct{})
	close(abort)
	db := databaseWorker()
	store := newFakeStore()
	o := newTestOrchestrator(t, Deps{Store: store, Extractor: &fakeExtractor{prefs: beachPrefs()}, Workers: []contractx.Worker{db}}, Config{})

	answer, err := o.Run(context.Background(), Request{SessionID: "abort-1", Query: "beach"}, WithAbort(abort))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if db.callCount() != 0 {
		t.Fatalf("no worker should run after abort")
	}
	if answer.Summary != "No recommendations found" {
		t.Fatalf("unexpected summary %q", answer.Summary)
	}
	saved, err := store.Load(context.Background(), "abort-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !saved.Aborted || !saved.Completed {
		t.Fatalf("expected aborted, completed checkpoint")
	}
}

func TestRunParallelRound(t *testing.T) {
	t.Parallel()

	db, web := databaseWorker(), webWorker()
	db.delay, web.delay = 20*time.Millisecond, 20*time.Millisecond
	weather := &fakeWorker{kind: statex.WorkerWeather, result: statex.WorkerResult{Success: true, Count: 1, Weather: &statex.WeatherSummary{
		DestinationLabel: "Goa", BestTimeToVisit: "November to February",
	}}}
	prefs := beachPrefs()
	prefs.WeatherRequested = true
	oracle := &fakeOracle{}
	store := newFakeStore()

	o := newTestOrchestrator(t, Deps{
		Store: store, Extractor: &fakeExtractor{prefs: prefs}, Oracle: oracle,
		Workers: []contractx.Worker{db, web, weather},
	}, Config{Parallel: true})

	answer, err := o.Run(context.Background(), Request{SessionID: "par-1", Query: "beach weather India"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if oracle.calls != 0 {
		t.Fatalf("parallel batch must not consult the oracle, got %d calls", oracle.calls)
	}
	if answer.DataSource != "database/web/weather" {
		t.Fatalf("unexpected data source %q", answer.DataSource)
	}
	if answer.Recommendations[0].Name != "Goa" || answer.Recommendations[0].Weather == nil {
		t.Fatalf("expected weather-decorated Goa first, got %+v", answer.Recommendations[0])
	}
	saved, _ := store.Load(context.Background(), "par-1")
	if saved.Rounds != 1 {
		t.Fatalf("expected a single round, got %d", saved.Rounds)
	}
}

func TestRunSurvivesStoreAndSinkFailures(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.saveErr = errors.New("redis down")
	sink := &fakeSink{err: errors.New("qstash down")}

	o := newTestOrchestrator(t, Deps{
		Store: store, Extractor: &fakeExtractor{prefs: beachPrefs()},
		Workers: []contractx.Worker{databaseWorker()}, Sink: sink,
	}, Config{})

	answer, err := o.Run(context.Background(), Request{Query: "beach"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if answer.TotalFound != 3 {
		t.Fatalf("expected 3 records, got %d", answer.TotalFound)
	}
	if store.saves == 0 || len(sink.answers) != 1 {
		t.Fatalf("expected save and delivery attempts, got saves=%d deliveries=%d", store.saves, len(sink.answers))
	}
}

type fakePublisher struct {
	destination string
	body        any
	forward     map[string]string
}

func (f *fakePublisher) Publish(ctx context.Context, destination string, body any, forward map[string]string) (*qstashx.PublishResponse, error) {
	f.destination, f.body, f.forward = destination, body, forward
	return &qstashx.PublishResponse{MessageID: "msg_1"}, nil
}

func TestQStashSinkDeliver(t *testing.T) {
	t.Parallel()

	pub := &fakePublisher{}
	sink := NewQStashSink(pub, "https://example.com/hook")
	if err := sink.Deliver(context.Background(), "s1", statex.FinalAnswer{Summary: "x"}); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
	if pub.destination != "https://example.com/hook" || pub.forward["Session-Id"] != "s1" {
		t.Fatalf("unexpected publish call: %+v", pub)
	}
	env, ok := pub.body.(answerEnvelope)
	if !ok || env.Answer.Summary != "x" {
		t.Fatalf("unexpected body %#v", pub.body)
	}
}
