package tasks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/edgard/wadigest/internal/database"
	"github.com/edgard/wadigest/internal/greenapi"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) GetChatHistory(ctx context.Context, chatID string, count int) ([]greenapi.Message, error) {
	args := m.Called(ctx, chatID, count)
	msgs, _ := args.Get(0).([]greenapi.Message)
	return msgs, args.Error(1)
}

func (m *MockGateway) GetChats(ctx context.Context) ([]greenapi.Chat, error) {
	args := m.Called(ctx)
	chats, _ := args.Get(0).([]greenapi.Chat)
	return chats, args.Error(1)
}

func (m *MockGateway) GetGroupData(ctx context.Context, groupID string) (*greenapi.GroupData, error) {
	args := m.Called(ctx, groupID)
	data, _ := args.Get(0).(*greenapi.GroupData)
	return data, args.Error(1)
}

func (m *MockGateway) SendMessage(ctx context.Context, chatID, text string) (string, error) {
	args := m.Called(ctx, chatID, text)
	return args.String(0), args.Error(1)
}

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockStore) UpsertMessages(ctx context.Context, messages []database.Message) error {
	return m.Called(ctx, messages).Error(0)
}

func (m *MockStore) GetMessage(ctx context.Context, messageID string) (*database.Message, error) {
	args := m.Called(ctx, messageID)
	msg, _ := args.Get(0).(*database.Message)
	return msg, args.Error(1)
}

func (m *MockStore) GetMessageContents(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	contents, _ := args.Get(0).([]string)
	return contents, args.Error(1)
}

func (m *MockStore) GetGroupIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

func (m *MockStore) GetGroups(ctx context.Context) ([]database.Group, error) {
	args := m.Called(ctx)
	groups, _ := args.Get(0).([]database.Group)
	return groups, args.Error(1)
}

func (m *MockStore) UpsertGroups(ctx context.Context, groups []database.Group) error {
	return m.Called(ctx, groups).Error(0)
}

func (m *MockStore) DeleteGroups(ctx context.Context, groupIDs []string) error {
	return m.Called(ctx, groupIDs).Error(0)
}

func (m *MockStore) RunSQLMaintenance(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockSummarizer struct {
	mock.Mock
}

func (m *MockSummarizer) Summarize(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, text string) error {
	return m.Called(ctx, text).Error(0)
}
