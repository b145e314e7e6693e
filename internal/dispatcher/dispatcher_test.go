package dispatcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jangulo01/webhookd/internal/domain"
	"github.com/jangulo01/webhookd/internal/health"
	"github.com/jangulo01/webhookd/internal/repository/interfaces"
	"github.com/jangulo01/webhookd/internal/sender"
)

type fakeConfigStore struct {
	configs map[string]*domain.WebhookConfig
}

func (f *fakeConfigStore) Create(ctx context.Context, cfg *domain.WebhookConfig) error { return nil }
func (f *fakeConfigStore) GetByID(ctx context.Context, id string) (*domain.WebhookConfig, error) {
	cfg, ok := f.configs[id]
	if !ok {
		return nil, domain.ErrConfigNotFound
	}
	return cfg, nil
}
func (f *fakeConfigStore) GetActiveByName(ctx context.Context, name string) (*domain.WebhookConfig, error) {
	for _, c := range f.configs {
		if c.Name == name && c.Active {
			return c, nil
		}
	}
	return nil, domain.ErrConfigNotFound
}
func (f *fakeConfigStore) Update(ctx context.Context, cfg *domain.WebhookConfig) error { return nil }
func (f *fakeConfigStore) List(ctx context.Context, limit, offset int) ([]*domain.WebhookConfig, int64, error) {
	return nil, 0, nil
}

type fakeMessageStore struct {
	mu       sync.Mutex
	messages map[string]*domain.Message
	attempts map[string][]*domain.DeliveryAttempt
}

func newFakeMessageStore() *fakeMessageStore {
	return &fakeMessageStore{
		messages: make(map[string]*domain.Message),
		attempts: make(map[string][]*domain.DeliveryAttempt),
	}
}

func (f *fakeMessageStore) CreateMessage(ctx context.Context, msg *domain.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages[msg.ID] = msg
	return nil
}

func (f *fakeMessageStore) ClaimForProcessing(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg, ok := f.messages[id]
	if !ok {
		return false, domain.ErrMessageNotFound
	}
	if msg.Status != domain.StatusPending && msg.Status != domain.StatusFailed {
		return false, nil
	}
	msg.Status = domain.StatusProcessing
	return true, nil
}

func (f *fakeMessageStore) FinishDelivered(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages[id].Status = domain.StatusDelivered
	return nil
}

func (f *fakeMessageStore) FinishCancelled(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages[id].Status = domain.StatusCancelled
	return nil
}

func (f *fakeMessageStore) MarkFailed(ctx context.Context, id string, lastError string, nextRetry *time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg := f.messages[id]
	msg.Status = domain.StatusFailed
	msg.LastError = lastError
	msg.NextRetry = nextRetry
	return nil
}

func (f *fakeMessageStore) SetTargetURL(ctx context.Context, id string, targetURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages[id].TargetURL = targetURL
	return nil
}

func (f *fakeMessageStore) AppendAttempt(ctx context.Context, attempt *domain.DeliveryAttempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts[attempt.MessageID] = append(f.attempts[attempt.MessageID], attempt)
	return nil
}

func (f *fakeMessageStore) AppendAttemptAndFinishDelivered(ctx context.Context, attempt *domain.DeliveryAttempt) error {
	f.mu.Lock()
	f.attempts[attempt.MessageID] = append(f.attempts[attempt.MessageID], attempt)
	msg := f.messages[attempt.MessageID]
	msg.Status = domain.StatusDelivered
	msg.RetryCount = attempt.AttemptNumber
	f.mu.Unlock()
	return nil
}

func (f *fakeMessageStore) AppendAttemptAndMarkFailed(ctx context.Context, attempt *domain.DeliveryAttempt, lastError string, nextRetry *time.Time) error {
	f.mu.Lock()
	f.attempts[attempt.MessageID] = append(f.attempts[attempt.MessageID], attempt)
	msg := f.messages[attempt.MessageID]
	msg.Status = domain.StatusFailed
	msg.LastError = lastError
	msg.NextRetry = nextRetry
	msg.RetryCount = attempt.AttemptNumber
	f.mu.Unlock()
	return nil
}

func (f *fakeMessageStore) GetByID(ctx context.Context, id string) (*domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg, ok := f.messages[id]
	if !ok {
		return nil, domain.ErrMessageNotFound
	}
	return msg, nil
}

func (f *fakeMessageStore) GetAttempts(ctx context.Context, messageID string) ([]*domain.DeliveryAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempts[messageID], nil
}

func (f *fakeMessageStore) FindReadyForRetry(ctx context.Context, now time.Time, limit int) ([]*domain.Message, error) {
	return nil, nil
}

func (f *fakeMessageStore) FindPending(ctx context.Context, limit int) ([]*domain.Message, error) {
	return nil, nil
}

func (f *fakeMessageStore) FindStuck(ctx context.Context, threshold time.Time, limit int) ([]*domain.Message, error) {
	return nil, nil
}

func (f *fakeMessageStore) DeleteOld(ctx context.Context, cutoff time.Time, statuses []domain.MessageStatus) (int64, error) {
	return 0, nil
}

var _ interfaces.ConfigStore = (*fakeConfigStore)(nil)
var _ interfaces.MessageStore = (*fakeMessageStore)(nil)

func testConfig() *domain.WebhookConfig {
	return &domain.WebhookConfig{
		ID:               "cfg-1",
		Name:             "orders",
		Active:           true,
		MaxRetries:       3,
		BackoffStrategy:  domain.BackoffFixed,
		InitialIntervalS: 5,
		BackoffFactor:    2.0,
		MaxIntervalS:     60,
		MaxAgeS:          3600,
	}
}

func newDispatcherForTest(cfg *domain.WebhookConfig, messages *fakeMessageStore, targetURL string) *Dispatcher {
	configs := &fakeConfigStore{configs: map[string]*domain.WebhookConfig{cfg.ID: cfg}}
	snd := sender.New(sender.DefaultConfig())
	agg := health.New(nil)
	_ = targetURL
	return New(configs, messages, snd, agg)
}

func TestDispatch_SuccessMarksDelivered(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := testConfig()
	messages := newFakeMessageStore()
	msg := &domain.Message{ID: "msg-1", WebhookConfigID: cfg.ID, Status: domain.StatusPending, TargetURL: srv.URL, Payload: []byte(`{}`), CreatedAt: time.Now()}
	messages.messages[msg.ID] = msg

	d := newDispatcherForTest(cfg, messages, srv.URL)
	if err := d.Dispatch(context.Background(), msg.ID); err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	if msg.Status != domain.StatusDelivered {
		t.Errorf("status = %v, expected DELIVERED", msg.Status)
	}
	if len(messages.attempts[msg.ID]) != 1 {
		t.Errorf("expected exactly one recorded attempt, got %d", len(messages.attempts[msg.ID]))
	}
}

func TestDispatch_NonRetryableFailureIsTerminal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	cfg := testConfig()
	messages := newFakeMessageStore()
	msg := &domain.Message{ID: "msg-1", WebhookConfigID: cfg.ID, Status: domain.StatusPending, TargetURL: srv.URL, Payload: []byte(`{}`), CreatedAt: time.Now()}
	messages.messages[msg.ID] = msg

	d := newDispatcherForTest(cfg, messages, srv.URL)
	if err := d.Dispatch(context.Background(), msg.ID); err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	if msg.Status != domain.StatusFailed || msg.NextRetry != nil {
		t.Errorf("expected terminal FAILED with no next_retry, got status=%v next_retry=%v", msg.Status, msg.NextRetry)
	}
}

func TestDispatch_RetryableFailureSchedulesNextRetry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := testConfig()
	messages := newFakeMessageStore()
	msg := &domain.Message{ID: "msg-1", WebhookConfigID: cfg.ID, Status: domain.StatusPending, TargetURL: srv.URL, Payload: []byte(`{}`), CreatedAt: time.Now()}
	messages.messages[msg.ID] = msg

	d := newDispatcherForTest(cfg, messages, srv.URL)
	if err := d.Dispatch(context.Background(), msg.ID); err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	if msg.Status != domain.StatusFailed || msg.NextRetry == nil {
		t.Errorf("expected retryable FAILED with a next_retry set, got status=%v next_retry=%v", msg.Status, msg.NextRetry)
	}
}

func TestDispatch_ExhaustedRetriesIsTerminal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.MaxRetries = 1
	messages := newFakeMessageStore()
	msg := &domain.Message{ID: "msg-1", WebhookConfigID: cfg.ID, Status: domain.StatusPending, TargetURL: srv.URL, Payload: []byte(`{}`), RetryCount: 0, CreatedAt: time.Now()}
	messages.messages[msg.ID] = msg

	d := newDispatcherForTest(cfg, messages, srv.URL)
	if err := d.Dispatch(context.Background(), msg.ID); err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	if msg.Status != domain.StatusFailed || msg.NextRetry != nil {
		t.Errorf("expected exhausted-retries terminal FAILED, got status=%v next_retry=%v", msg.Status, msg.NextRetry)
	}
}

func TestDispatch_ExpiredMessageFailsImmediately(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("expired message should never reach the target")
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.MaxAgeS = 3600
	messages := newFakeMessageStore()
	msg := &domain.Message{
		ID:              "msg-1",
		WebhookConfigID: cfg.ID,
		Status:          domain.StatusPending,
		TargetURL:       srv.URL,
		Payload:         []byte(`{}`),
		CreatedAt:       time.Now().Add(-2 * time.Hour),
	}
	messages.messages[msg.ID] = msg

	d := newDispatcherForTest(cfg, messages, srv.URL)
	if err := d.Dispatch(context.Background(), msg.ID); err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	if msg.Status != domain.StatusFailed || msg.LastError != "expired" {
		t.Errorf("expected expired message to fail with 'expired', got status=%v lastError=%v", msg.Status, msg.LastError)
	}
}

func TestDispatch_TerminalMessageIsANoop(t *testing.T) {
	cfg := testConfig()
	messages := newFakeMessageStore()
	msg := &domain.Message{ID: "msg-1", WebhookConfigID: cfg.ID, Status: domain.StatusDelivered, TargetURL: "http://unused", CreatedAt: time.Now()}
	messages.messages[msg.ID] = msg

	d := newDispatcherForTest(cfg, messages, "http://unused")
	if err := d.Dispatch(context.Background(), msg.ID); err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}
	if msg.Status != domain.StatusDelivered {
		t.Errorf("expected status to remain DELIVERED, got %v", msg.Status)
	}
}
