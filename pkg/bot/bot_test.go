package bot

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jinbot/jinbot/pkg/audit"
	"github.com/jinbot/jinbot/pkg/likes"
	"github.com/jinbot/jinbot/pkg/meme"
	"github.com/jinbot/jinbot/pkg/server/store"
	"github.com/jinbot/jinbot/pkg/telegram"
)

const groupChat int64 = -100

func TestMain(m *testing.M) {
	audit.SetEnabled(false)
	os.Exit(m.Run())
}

type mockMessenger struct {
	mock.Mock
}

func (m *mockMessenger) SendText(chatID int64, text string) error {
	return m.Called(chatID, text).Error(0)
}

func (m *mockMessenger) SendPhoto(chatID int64, u telegram.Upload) error {
	return m.Called(chatID, u).Error(0)
}

func (m *mockMessenger) SendDocument(chatID int64, u telegram.Upload) error {
	return m.Called(chatID, u).Error(0)
}

func (m *mockMessenger) EditCaption(chatID int64, messageID int, caption string, keyboard tgbotapi.InlineKeyboardMarkup) error {
	return m.Called(chatID, messageID, caption, keyboard).Error(0)
}

func (m *mockMessenger) AnswerCallback(callbackID string) error {
	return m.Called(callbackID).Error(0)
}

func (m *mockMessenger) ChatMemberStatus(chatID, userID int64) (string, error) {
	args := m.Called(chatID, userID)
	return args.String(0), args.Error(1)
}

func (m *mockMessenger) DownloadFile(ctx context.Context, fileID string, w io.Writer) error {
	args := m.Called(ctx, fileID, w)
	if data := args.String(0); data != "" {
		_, _ = io.WriteString(w, data)
	}
	return args.Error(1)
}

// memStore keeps likes and the group id in memory
type memStore struct {
	mu      sync.Mutex
	likes   map[string][]string
	groupID int64
	saves   int
	saveErr error
}

func (s *memStore) LoadLikes() (map[string][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string][]string{}
	for k, v := range s.likes {
		out[k] = append([]string(nil), v...)
	}
	return out, nil
}

func (s *memStore) AppendLike(filename, reaction string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.likes == nil {
		s.likes = map[string][]string{}
	}
	s.likes[filename] = append(s.likes[filename], reaction)
	return nil
}

func (s *memStore) LoadGroupID() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.groupID == 0 {
		return 0, store.ErrGroupNotSet
	}
	return s.groupID, nil
}

func (s *memStore) SaveGroupID(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	s.groupID = id
	return nil
}

type fixture struct {
	bot      *Bot
	client   *mockMessenger
	store    *memStore
	memesDir string
}

func newFixture(t *testing.T, st *memStore, memes ...string) *fixture {
	t.Helper()
	if st == nil {
		st = &memStore{}
	}

	dir := t.TempDir()
	for _, name := range memes {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("img:"+name), 0644))
	}
	lib, err := meme.NewLibrary(dir, zerolog.Nop())
	require.NoError(t, err)

	tracker := likes.NewTracker(st, zerolog.Nop())
	require.NoError(t, tracker.Load())

	client := &mockMessenger{}
	b := New(client, lib, tracker, st, zerolog.Nop(), Options{
		Username: "jin_bot",
		Interval: 10 * time.Minute,
	})
	t.Cleanup(b.Stop)

	return &fixture{bot: b, client: client, store: st, memesDir: dir}
}

func groupChatOf(id int64) *tgbotapi.Chat {
	return &tgbotapi.Chat{ID: id, Type: "supergroup", Title: "Memes"}
}

func privateChat() *tgbotapi.Chat {
	return &tgbotapi.Chat{ID: 42, Type: "private"}
}

func commandUpdate(chat *tgbotapi.Chat, text string) tgbotapi.Update {
	cmd := text
	if i := strings.IndexByte(text, ' '); i >= 0 {
		cmd = text[:i]
	}
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: 7, UserName: "ada"},
		Chat:      chat,
		Text:      text,
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}},
	}}
}

func textUpdate(chat *tgbotapi.Chat, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 2,
		From:      &tgbotapi.User{ID: 7},
		Chat:      chat,
		Text:      text,
	}}
}

func TestStart(t *testing.T) {
	f := newFixture(t, nil)
	f.client.On("SendText", groupChat, "Bot is online!").Return(nil).Once()

	f.bot.HandleUpdate(context.Background(), commandUpdate(groupChatOf(groupChat), "/start"))

	f.client.AssertExpectations(t)
}

func TestCommandForOtherBotIgnored(t *testing.T) {
	f := newFixture(t, nil)

	f.bot.HandleUpdate(context.Background(), commandUpdate(groupChatOf(groupChat), "/start@other_bot"))

	f.client.AssertNotCalled(t, "SendText", mock.Anything, mock.Anything)
}

func TestCommandForThisBot(t *testing.T) {
	f := newFixture(t, nil)
	f.client.On("SendText", groupChat, "Bot is online!").Return(nil).Once()

	f.bot.HandleUpdate(context.Background(), commandUpdate(groupChatOf(groupChat), "/start@Jin_Bot"))

	f.client.AssertExpectations(t)
}

func TestSetIntervalRequiresAdmin(t *testing.T) {
	f := newFixture(t, nil)
	f.client.On("ChatMemberStatus", groupChat, int64(7)).Return("member", nil)
	f.client.On("SendText", groupChat, "Only admins can set the posting interval.").Return(nil).Once()

	f.bot.HandleUpdate(context.Background(), commandUpdate(groupChatOf(groupChat), "/setinterval 5"))

	f.client.AssertExpectations(t)
	assert.Equal(t, 10*time.Minute, f.bot.Interval())
}

func TestSetIntervalValidation(t *testing.T) {
	tests := []struct {
		text  string
		reply string
	}{
		{"/setinterval", "Usage: /setinterval <minutes>"},
		{"/setinterval abc", "Usage: /setinterval <minutes>"},
		{"/setinterval -5", "Usage: /setinterval <minutes>"},
		{"/setinterval 0", "Please select a value between 1 and 60."},
		{"/setinterval 61", "Please select a value between 1 and 60."},
		{"/setinterval 99999999999999999999", "Please select a value between 1 and 60."},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			f := newFixture(t, nil)
			f.client.On("ChatMemberStatus", groupChat, int64(7)).Return("administrator", nil)
			f.client.On("SendText", groupChat, tt.reply).Return(nil).Once()

			f.bot.HandleUpdate(context.Background(), commandUpdate(groupChatOf(groupChat), tt.text))

			f.client.AssertExpectations(t)
			assert.Equal(t, 10*time.Minute, f.bot.Interval())
			assert.False(t, f.bot.Poster().Running())
		})
	}
}

func TestSetIntervalRestartsSchedule(t *testing.T) {
	f := newFixture(t, &memStore{groupID: groupChat})
	f.bot.Start()
	f.client.On("ChatMemberStatus", groupChat, int64(7)).Return("creator", nil)
	f.client.On("SendText", groupChat, "✅ Post interval set to every 15 minute(s).").Return(nil).Once()

	f.bot.HandleUpdate(context.Background(), commandUpdate(groupChatOf(groupChat), "/setinterval 15"))

	f.client.AssertExpectations(t)
	assert.Equal(t, 15*time.Minute, f.bot.Interval())
	assert.True(t, f.bot.Poster().Running())
	assert.Equal(t, groupChat, f.bot.Poster().ChatID())
	assert.Equal(t, 15*time.Minute, f.bot.Poster().Interval())
}

func TestSetIntervalStatusLookupFails(t *testing.T) {
	f := newFixture(t, nil)
	f.client.On("ChatMemberStatus", groupChat, int64(7)).Return("", errors.New("chat not found"))

	f.bot.HandleUpdate(context.Background(), commandUpdate(groupChatOf(groupChat), "/setinterval 5"))

	f.client.AssertNotCalled(t, "SendText", mock.Anything, mock.Anything)
}

func TestAddRequiresReply(t *testing.T) {
	f := newFixture(t, nil)
	f.client.On("SendText", groupChat, "Please reply to a photo or document with /add.").Return(nil).Once()

	f.bot.HandleUpdate(context.Background(), commandUpdate(groupChatOf(groupChat), "/add"))

	f.client.AssertExpectations(t)
}

func TestAddPhoto(t *testing.T) {
	f := newFixture(t, nil)
	update := commandUpdate(groupChatOf(groupChat), "/add")
	update.Message.ReplyToMessage = &tgbotapi.Message{
		Photo: []tgbotapi.PhotoSize{{FileID: "small"}, {FileID: "large"}},
	}
	f.client.On("DownloadFile", mock.Anything, "large", mock.Anything).Return("jpegdata", nil).Once()
	f.client.On("SendText", groupChat, "✅ Meme added successfully.").Return(nil).Once()

	f.bot.HandleUpdate(context.Background(), update)

	f.client.AssertExpectations(t)
	data, err := os.ReadFile(filepath.Join(f.memesDir, "large.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpegdata", string(data))
	assert.Equal(t, 1, f.bot.Library().Len())
}

func TestAddDocument(t *testing.T) {
	f := newFixture(t, nil)
	update := commandUpdate(groupChatOf(groupChat), "/add")
	update.Message.ReplyToMessage = &tgbotapi.Message{
		Document: &tgbotapi.Document{FileID: "doc1", FileName: "Funny.WEBP"},
	}
	f.client.On("DownloadFile", mock.Anything, "doc1", mock.Anything).Return("webp", nil).Once()
	f.client.On("SendText", groupChat, "✅ Meme added successfully.").Return(nil).Once()

	f.bot.HandleUpdate(context.Background(), update)

	f.client.AssertExpectations(t)
	assert.FileExists(t, filepath.Join(f.memesDir, "Funny.WEBP"))
}

func TestAddUnsupported(t *testing.T) {
	replies := map[string]*tgbotapi.Message{
		"text":        {Text: "hello"},
		"pdf":         {Document: &tgbotapi.Document{FileID: "d", FileName: "paper.pdf"}},
		"no filename": {Document: &tgbotapi.Document{FileID: "d"}},
	}

	for name, replied := range replies {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, nil)
			update := commandUpdate(groupChatOf(groupChat), "/add")
			update.Message.ReplyToMessage = replied
			f.client.On("SendText", groupChat, "Unsupported file type.").Return(nil).Once()

			f.bot.HandleUpdate(context.Background(), update)

			f.client.AssertExpectations(t)
			f.client.AssertNotCalled(t, "DownloadFile", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestAddDownloadFails(t *testing.T) {
	f := newFixture(t, nil)
	update := commandUpdate(groupChatOf(groupChat), "/add")
	update.Message.ReplyToMessage = &tgbotapi.Message{
		Photo: []tgbotapi.PhotoSize{{FileID: "p"}},
	}
	f.client.On("DownloadFile", mock.Anything, "p", mock.Anything).Return("", errors.New("timeout")).Once()
	f.client.On("SendText", groupChat, "Failed to download the file.").Return(nil).Once()

	f.bot.HandleUpdate(context.Background(), update)

	f.client.AssertExpectations(t)
	assert.Equal(t, 0, f.bot.Library().Len())
}

func TestGetGroupIDBindsWhenUnbound(t *testing.T) {
	f := newFixture(t, nil)
	f.client.On("SendText", groupChat, "Group chat ID is: -100").Return(nil).Once()

	f.bot.HandleUpdate(context.Background(), commandUpdate(groupChatOf(groupChat), "/getgroupid"))

	f.client.AssertExpectations(t)
	assert.Equal(t, groupChat, f.bot.GroupID())
	assert.Equal(t, groupChat, f.store.groupID)
	assert.True(t, f.bot.Poster().Running())
}

func TestGetGroupIDPrivateChatDoesNotBind(t *testing.T) {
	f := newFixture(t, nil)
	f.client.On("SendText", int64(42), "Group chat ID is: 42").Return(nil).Once()

	f.bot.HandleUpdate(context.Background(), commandUpdate(privateChat(), "/getgroupid"))

	f.client.AssertExpectations(t)
	assert.Equal(t, int64(0), f.bot.GroupID())
}

func TestGetGroupIDKeepsExistingBinding(t *testing.T) {
	f := newFixture(t, &memStore{groupID: -555})
	f.client.On("SendText", groupChat, "Group chat ID is: -100").Return(nil).Once()

	f.bot.HandleUpdate(context.Background(), commandUpdate(groupChatOf(groupChat), "/getgroupid"))

	assert.Equal(t, int64(-555), f.bot.GroupID())
}

func TestInitGroup(t *testing.T) {
	f := newFixture(t, &memStore{groupID: -555})
	f.bot.Start()
	f.client.On("SendText", groupChat, "✅ Group initialized with ID -100").Return(nil).Once()

	f.bot.HandleUpdate(context.Background(), commandUpdate(groupChatOf(groupChat), "/init_group"))

	f.client.AssertExpectations(t)
	assert.Equal(t, groupChat, f.bot.GroupID())
	assert.Equal(t, groupChat, f.store.groupID)
	assert.Equal(t, groupChat, f.bot.Poster().ChatID())
}

func TestInitGroupOnlyInGroups(t *testing.T) {
	f := newFixture(t, nil)
	f.client.On("SendText", int64(42), "This command can only be used in groups.").Return(nil).Once()

	f.bot.HandleUpdate(context.Background(), commandUpdate(privateChat(), "/init_group"))

	f.client.AssertExpectations(t)
	assert.Equal(t, int64(0), f.bot.GroupID())
}

func TestInitGroupSaveFailureKeepsMemoryBinding(t *testing.T) {
	f := newFixture(t, &memStore{saveErr: errors.New("disk full")})
	f.client.On("SendText", groupChat, "✅ Group initialized with ID -100").Return(nil).Once()

	f.bot.HandleUpdate(context.Background(), commandUpdate(groupChatOf(groupChat), "/init_group"))

	assert.Equal(t, groupChat, f.bot.GroupID())
}

func TestDetectGroupFromMessage(t *testing.T) {
	f := newFixture(t, nil)

	f.bot.HandleUpdate(context.Background(), textUpdate(groupChatOf(groupChat), "hello"))

	assert.Equal(t, groupChat, f.bot.GroupID())
	assert.Equal(t, groupChat, f.store.groupID)
	assert.True(t, f.bot.Poster().Running())

	// Once bound, other groups do not steal the binding.
	f.bot.HandleUpdate(context.Background(), textUpdate(groupChatOf(-200), "hi"))
	assert.Equal(t, groupChat, f.bot.GroupID())
}

func TestDetectGroupConcurrentBindsOnce(t *testing.T) {
	f := newFixture(t, nil)

	var wg sync.WaitGroup
	for i := int64(1); i <= 10; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			f.bot.HandleUpdate(context.Background(), textUpdate(groupChatOf(-100*id), "hello"))
		}(i)
	}
	wg.Wait()

	bound := f.bot.GroupID()
	assert.NotZero(t, bound)
	f.store.mu.Lock()
	assert.Equal(t, 1, f.store.saves)
	assert.Equal(t, bound, f.store.groupID)
	f.store.mu.Unlock()
	assert.Equal(t, bound, f.bot.Poster().ChatID())
}

func TestDetectGroupIgnoresPrivateChats(t *testing.T) {
	f := newFixture(t, nil)

	f.bot.HandleUpdate(context.Background(), textUpdate(privateChat(), "hello"))

	assert.Equal(t, int64(0), f.bot.GroupID())
	assert.False(t, f.bot.Poster().Running())
}

func TestCallbackRecordsLike(t *testing.T) {
	f := newFixture(t, &memStore{likes: map[string][]string{"cat|1.jpg": {"heart"}}})
	update := tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:   "cb1",
		From: &tgbotapi.User{ID: 9},
		Data: "LIKE_haha|cat|1.jpg",
		Message: &tgbotapi.Message{
			MessageID: 55,
			Chat:      groupChatOf(groupChat),
			Caption:   "👍 Likes: ❤️ 1 (Total: 1)",
		},
	}}
	f.client.On("AnswerCallback", "cb1").Return(nil).Once()
	f.client.On("EditCaption", groupChat, 55, "👍 Likes: ❤️ 1 | 😂 1 (Total: 2)", Keyboard("cat|1.jpg")).Return(nil).Once()

	f.bot.HandleUpdate(context.Background(), update)

	f.client.AssertExpectations(t)
	assert.Equal(t, []string{"heart", "haha"}, f.store.likes["cat|1.jpg"])
}

func TestCallbackEditFailureIsNotFatal(t *testing.T) {
	f := newFixture(t, nil)
	update := tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb2",
		Data:    "LIKE_love|a.png",
		Message: &tgbotapi.Message{MessageID: 3, Chat: groupChatOf(groupChat)},
	}}
	f.client.On("AnswerCallback", "cb2").Return(errors.New("query is too old")).Once()
	f.client.On("EditCaption", groupChat, 3, "👍 Likes: 🔥 1 (Total: 1)", mock.Anything).Return(errors.New("message is not modified")).Once()

	f.bot.HandleUpdate(context.Background(), update)

	f.client.AssertExpectations(t)
	assert.Equal(t, []string{"love"}, f.store.likes["a.png"])
}

func TestCallbackMalformedIsOnlyAnswered(t *testing.T) {
	f := newFixture(t, nil)
	update := tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb3",
		Data:    "VOTE_up",
		Message: &tgbotapi.Message{MessageID: 3, Chat: groupChatOf(groupChat)},
	}}
	f.client.On("AnswerCallback", "cb3").Return(nil).Once()

	f.bot.HandleUpdate(context.Background(), update)

	f.client.AssertExpectations(t)
	f.client.AssertNotCalled(t, "EditCaption", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, f.store.likes)
}

func uploadNamed(name, caption string) interface{} {
	return mock.MatchedBy(func(u telegram.Upload) bool {
		if u.Name != name || u.Caption != caption || !u.HasKeyboard() {
			return false
		}
		data, err := io.ReadAll(u.Reader)
		return err == nil && string(data) == "img:"+name
	})
}

func TestSendMemeAsPhoto(t *testing.T) {
	f := newFixture(t, &memStore{likes: map[string][]string{"a.jpg": {"heart", "heart"}}}, "a.jpg", "b.jpg")
	f.client.On("SendPhoto", groupChat, uploadNamed("a.jpg", "👍 Likes: ❤️ 2 (Total: 2)")).Return(nil).Once()

	require.NoError(t, f.bot.SendMeme(context.Background(), groupChat, false))

	f.client.AssertExpectations(t)
	f.client.AssertNotCalled(t, "SendDocument", mock.Anything, mock.Anything)
}

func TestSendMemeFallsBackToDocument(t *testing.T) {
	f := newFixture(t, nil, "big.webp")
	caption := "👍 Likes: No likes yet. Be the first!"
	f.client.On("SendPhoto", groupChat, mock.Anything).Return(errors.New("PHOTO_INVALID_DIMENSIONS")).Once()
	f.client.On("SendDocument", groupChat, uploadNamed("big.webp", caption)).Return(nil).Once()

	require.NoError(t, f.bot.SendMeme(context.Background(), groupChat, false))

	f.client.AssertExpectations(t)
}

func TestSendMemeBothFail(t *testing.T) {
	f := newFixture(t, nil, "a.gif")
	f.client.On("SendPhoto", groupChat, mock.Anything).Return(errors.New("bad photo")).Once()
	f.client.On("SendDocument", groupChat, mock.Anything).Return(errors.New("bad document")).Once()

	err := f.bot.SendMeme(context.Background(), groupChat, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a.gif")
}

func TestSendMemeEmptyLibrary(t *testing.T) {
	f := newFixture(t, nil)
	f.client.On("SendText", groupChat, "No memes available.").Return(nil).Once()

	require.NoError(t, f.bot.SendMeme(context.Background(), groupChat, true))

	f.client.AssertExpectations(t)
}

func TestScheduledPostUsesBoundGroup(t *testing.T) {
	f := newFixture(t, &memStore{groupID: groupChat}, "a.jpg")
	posted := make(chan struct{}, 1)
	f.client.On("SendPhoto", groupChat, mock.Anything).Return(nil).Run(func(mock.Arguments) {
		select {
		case posted <- struct{}{}:
		default:
		}
	})

	f.bot.Poster().Start(f.bot.GroupID(), 10*time.Millisecond)

	select {
	case <-posted:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduled post did not fire")
	}
}

func TestParseCallbackData(t *testing.T) {
	tests := []struct {
		data     string
		reaction likes.Reaction
		filename string
		wantErr  bool
	}{
		{data: "LIKE_heart|cat.jpg", reaction: likes.ReactionHeart, filename: "cat.jpg"},
		{data: "LIKE_love|a|b.png", reaction: likes.ReactionLove, filename: "a|b.png"},
		{data: "LIKE_haha|x.gif", reaction: likes.ReactionHaha, filename: "x.gif"},
		{data: "LIKE_heart|", wantErr: true},
		{data: "LIKE_heart", wantErr: true},
		{data: "LIKE_meh|cat.jpg", wantErr: true},
		{data: "like_heart|cat.jpg", wantErr: true},
		{data: "LIKE_HEART|cat.jpg", wantErr: true},
		{data: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			r, name, err := ParseCallbackData(tt.data)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedCallback)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.reaction, r)
			assert.Equal(t, tt.filename, name)
		})
	}
}

func TestKeyboard(t *testing.T) {
	kb := Keyboard("cat.jpg")
	require.Len(t, kb.InlineKeyboard, 1)
	row := kb.InlineKeyboard[0]
	require.Len(t, row, 3)

	want := []struct{ text, data string }{
		{"❤️", "LIKE_heart|cat.jpg"},
		{"🔥", "LIKE_love|cat.jpg"},
		{"😂", "LIKE_haha|cat.jpg"},
	}
	for i, w := range want {
		assert.Equal(t, w.text, row[i].Text)
		require.NotNil(t, row[i].CallbackData)
		assert.Equal(t, w.data, *row[i].CallbackData)
	}

	long := strings.Repeat("x", 60) + ".jpg"
	assert.Empty(t, Keyboard(long).InlineKeyboard)
}
