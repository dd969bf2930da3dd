package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/neztrixTON/app/internal/biz/domain"
)

// Mock implementations

// mockChatRepo keeps chats as encoded JSON so callers never share state
// with the store, the same as a real database.
type mockChatRepo struct {
	mu    sync.Mutex
	chats map[string][]byte
	order []string
	// failUpdate makes every Update fail after fn ran
	failUpdate error
}

func newMockChatRepo() *mockChatRepo {
	return &mockChatRepo{chats: make(map[string][]byte)}
}

func (m *mockChatRepo) decode(data []byte) *domain.Chat {
	var chat domain.Chat
	if err := json.Unmarshal(data, &chat); err != nil {
		panic(err)
	}
	return &chat
}

func (m *mockChatRepo) Get(ctx context.Context, chatID string) (*domain.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.chats[chatID]
	if !ok {
		return nil, nil
	}
	return m.decode(data), nil
}

func (m *mockChatRepo) Create(ctx context.Context, chat *domain.Chat) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.chats[chat.ID]; ok {
		return false, nil
	}
	data, err := json.Marshal(chat)
	if err != nil {
		return false, err
	}
	m.chats[chat.ID] = data
	m.order = append(m.order, chat.ID)
	return true, nil
}

func (m *mockChatRepo) Update(ctx context.Context, chatID string, fn func(chat *domain.Chat) error) (*domain.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.chats[chatID]
	if !ok {
		return nil, domain.NotFound("chat")
	}
	chat := m.decode(data)
	if err := fn(chat); err != nil {
		return nil, err
	}
	if m.failUpdate != nil {
		return nil, m.failUpdate
	}
	data, err := json.Marshal(chat)
	if err != nil {
		return nil, err
	}
	m.chats[chatID] = data
	return m.decode(data), nil
}

func (m *mockChatRepo) ListByParticipant(ctx context.Context, userID string) ([]*domain.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*domain.Chat
	for _, id := range m.order {
		chat := m.decode(m.chats[id])
		if chat.HasParticipant(userID) {
			result = append(result, chat)
		}
	}
	return result, nil
}

func (m *mockChatRepo) ListAll(ctx context.Context) ([]*domain.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*domain.Chat
	for _, id := range m.order {
		result = append(result, m.decode(m.chats[id]))
	}
	return result, nil
}

// corrupt lets a test edit the stored chat directly
func (m *mockChatRepo) corrupt(chatID string, fn func(chat *domain.Chat)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	chat := m.decode(m.chats[chatID])
	fn(chat)
	data, _ := json.Marshal(chat)
	m.chats[chatID] = data
}

type mockPresenceRepo struct {
	mu   sync.Mutex
	seen map[string]time.Time
}

func newMockPresenceRepo() *mockPresenceRepo {
	return &mockPresenceRepo{seen: make(map[string]time.Time)}
}

func (m *mockPresenceRepo) Touch(ctx context.Context, userID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen[userID] = at
	return nil
}

func (m *mockPresenceRepo) LastSeen(ctx context.Context, userID string) (time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	at, ok := m.seen[userID]
	return at, ok, nil
}

func (m *mockPresenceRepo) LastSeenMany(ctx context.Context, userIDs []string) (map[string]time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make(map[string]time.Time)
	for _, id := range userIDs {
		if at, ok := m.seen[id]; ok {
			result[id] = at
		}
	}
	return result, nil
}

type mockPermissionRepo struct {
	admins map[string]string
}

func newMockPermissionRepo(ids ...string) *mockPermissionRepo {
	m := &mockPermissionRepo{admins: make(map[string]string)}
	for _, id := range ids {
		m.admins[id] = "test"
	}
	return m
}

func (m *mockPermissionRepo) Grant(ctx context.Context, userID, grantedBy string) error {
	m.admins[userID] = grantedBy
	return nil
}

func (m *mockPermissionRepo) Revoke(ctx context.Context, userID string) error {
	delete(m.admins, userID)
	return nil
}

func (m *mockPermissionRepo) Has(ctx context.Context, userID string) (bool, error) {
	_, ok := m.admins[userID]
	return ok, nil
}

func (m *mockPermissionRepo) List(ctx context.Context) ([]string, error) {
	var ids []string
	for id := range m.admins {
		ids = append(ids, id)
	}
	return ids, nil
}

type mockAttachmentStore struct {
	stored map[string][]byte
	err    error
}

func (m *mockAttachmentStore) Store(ctx context.Context, filename string, r io.Reader) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}
	if m.stored == nil {
		m.stored = make(map[string][]byte)
	}
	ref := fmt.Sprintf("/files/%d_%s", len(m.stored)+1, filename)
	m.stored[ref] = buf.Bytes()
	return ref, nil
}

type mockNotifier struct {
	mu    sync.Mutex
	sent  []domain.Notification
	err   error
	onTry func(n domain.Notification)
}

func (m *mockNotifier) Notify(ctx context.Context, n domain.Notification) error {
	if m.onTry != nil {
		m.onTry(n)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, n)
	return nil
}

func (m *mockNotifier) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func (m *mockNotifier) countFor(userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.sent {
		if s.UserID == userID {
			n++
		}
	}
	return n
}

func (m *mockNotifier) setErr(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

type mockComposer struct {
	body string
	err  error
}

func (m *mockComposer) Compose(ctx context.Context, chatTitle string, unread []domain.Message) (string, error) {
	return m.body, m.err
}

type mockPublisher struct {
	mu     sync.Mutex
	events []domain.Event
	to     [][]string
}

func (m *mockPublisher) Publish(userIDs []string, event domain.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	m.to = append(m.to, userIDs)
}

var errDelivery = errors.New("delivery failed")

// testEngine wires every usecase against in-memory mocks
type testEngine struct {
	chats       *mockChatRepo
	presence    *mockPresenceRepo
	perms       *mockPermissionRepo
	attachments *mockAttachmentStore
	notifier    *mockNotifier
	events      *mockPublisher

	presenceUC  *PresenceUsecase
	registryUC  *RegistryUsecase
	ledgerUC    *LedgerUsecase
	notifyUC    *NotifyUsecase
	directoryUC *DirectoryUsecase

	clock time.Time
}

func newTestEngine(registry RegistryConfig, notify NotifyConfig) *testEngine {
	e := &testEngine{
		chats:       newMockChatRepo(),
		presence:    newMockPresenceRepo(),
		perms:       newMockPermissionRepo(),
		attachments: &mockAttachmentStore{},
		notifier:    &mockNotifier{},
		events:      &mockPublisher{},
		clock:       time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	now := func() time.Time { return e.clock }

	e.presenceUC = NewPresenceUsecase(e.presence, 0)
	e.presenceUC.SetClock(now)

	e.registryUC = NewRegistryUsecase(e.chats, e.perms, e.presenceUC, registry)
	e.registryUC.now = now
	e.registryUC.SetEventPublisher(e.events)

	e.notifyUC = NewNotifyUsecase(e.chats, e.notifier, notify)
	e.notifyUC.SetClock(now)

	e.ledgerUC = NewLedgerUsecase(e.chats, e.attachments, e.presenceUC)
	e.ledgerUC.SetClock(now)
	e.ledgerUC.SetEventPublisher(e.events)
	e.ledgerUC.SetAlertTrigger(e.notifyUC)

	e.directoryUC = NewDirectoryUsecase(e.chats, e.ledgerUC, e.presenceUC, TemplateConfig{})
	return e
}

func (e *testEngine) advance(d time.Duration) {
	e.clock = e.clock.Add(d)
}

// createChat creates a U1(manager)/U2(client) chat
func (e *testEngine) createChat(ctx context.Context) string {
	id, _, err := e.registryUC.CreateChat(ctx, CreateChatRequest{
		CreatorID:     "U1",
		CounterpartID: "U2",
		CreatorRole:   domain.RoleManager,
	})
	if err != nil {
		panic(err)
	}
	return id
}

func (e *testEngine) send(ctx context.Context, chatID, from, to, text string) *domain.Message {
	msg, err := e.ledgerUC.SendText(ctx, SendRequest{ChatID: chatID, From: from, To: to, Text: text})
	if err != nil {
		panic(err)
	}
	return msg
}
