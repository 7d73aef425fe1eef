package telegram

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"banquet-planner/internal/app"
	"banquet-planner/internal/beo"
	"banquet-planner/internal/config"
	"banquet-planner/internal/database"
	"banquet-planner/internal/ghost"
	"banquet-planner/internal/metrics"
	"banquet-planner/internal/recipe"
	"banquet-planner/internal/shopping"
)

const (
	allowedUser = int64(42)
	adminUser   = int64(7)
	chatID      = int64(1000)
)

type fakeMessenger struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	nextID   int
}

func (f *fakeMessenger) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	f.nextID++
	return tgbotapi.Message{MessageID: f.nextID}, nil
}

func (f *fakeMessenger) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeMessenger) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.sent {
		switch m := c.(type) {
		case tgbotapi.MessageConfig:
			out = append(out, m.Text)
		case tgbotapi.EditMessageTextConfig:
			out = append(out, m.Text)
		}
	}
	return out
}

func (f *fakeMessenger) last() string {
	texts := f.texts()
	if len(texts) == 0 {
		return ""
	}
	return texts[len(texts)-1]
}

// callbackData returns the button data of the last message with a keyboard.
func (f *fakeMessenger) callbackData() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.sent) - 1; i >= 0; i-- {
		m, ok := f.sent[i].(tgbotapi.MessageConfig)
		if !ok {
			continue
		}
		kb, ok := m.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
		if !ok {
			continue
		}
		var out []string
		for _, b := range kb.InlineKeyboard[0] {
			out = append(out, *b.CallbackData)
		}
		return out
	}
	return nil
}

type fakeService struct {
	names      []string
	buildErr   error
	canPublish bool

	generated []beo.Event
	published []bool
}

func (f *fakeService) ShoppingList(ctx context.Context, ev beo.Event) (*beo.Order, error) {
	if f.buildErr != nil {
		return nil, f.buildErr
	}
	return &beo.Order{
		Event:        ev,
		ShoppingList: shopping.List{"Romaine": {Quantity: 3, Unit: "heads"}},
		Allergens:    shopping.AllergenSet{},
	}, nil
}

func (f *fakeService) GenerateOrder(ctx context.Context, ev beo.Event, publish bool) (*app.OrderResult, error) {
	f.generated = append(f.generated, ev)
	f.published = append(f.published, publish)
	res := &app.OrderResult{ReportPath: "reports/BEO_Report_" + ev.Name + ".txt"}
	if publish {
		res.Post = &ghost.Post{ID: "post-1"}
	}
	return res, nil
}

func (f *fakeService) RecipeNames(ctx context.Context) ([]string, error) { return f.names, nil }

func (f *fakeService) ClipURL(ctx context.Context, url string) (*recipe.Recipe, error) {
	if strings.Contains(url, "broken") {
		return nil, errors.New("no ingredients found")
	}
	return &recipe.Recipe{
		Name:        "Caesar Salad",
		Ingredients: []recipe.IngredientLine{{Name: "Romaine", Quantity: 1, Unit: "head"}},
		Allergens:   []string{"Eggs"},
	}, nil
}

func (f *fakeService) UsageReport(ctx context.Context, days int) (app.Usage, error) {
	return app.Usage{
		Daily:  []metrics.DailyUsage{{Date: "2026-10-16", TotalExecution: 3, TotalItems: 12}},
		Health: metrics.SysHealth{ReportFiles: 4, ReportDiskSize: "8.0 KB"},
		Count:  9,
	}, nil
}

func (f *fakeService) CanPublish() bool { return f.canPublish }

func newTestBot(t *testing.T, svc *fakeService) (*Bot, *fakeMessenger) {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "bot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{
		TelegramAllowedUserIDs: []int64{allowedUser, adminUser},
		AdminTelegramID:        adminUser,
	}
	api := &fakeMessenger{}
	return newBot(api, cfg, svc, NewSessionRepository(db.SQL), nil), api
}

func message(from int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		From: &tgbotapi.User{ID: from, UserName: "chef"},
		Chat: &tgbotapi.Chat{ID: chatID},
		Text: text,
	}}
}

func callback(from int64, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb-1",
		From:    &tgbotapi.User{ID: from},
		Message: &tgbotapi.Message{MessageID: 99, Chat: &tgbotapi.Chat{ID: chatID}},
		Data:    data,
	}}
}

const orderText = "Event: Harvest Gala\nGuests: 120\nCaesar Salad: 12"

func TestBotIgnoresUnknownUsers(t *testing.T) {
	bot, api := newTestBot(t, &fakeService{})

	bot.HandleUpdate(context.Background(), message(13, "/recipes"))
	bot.HandleUpdate(context.Background(), callback(13, "save|1"))

	assert.Empty(t, api.texts())
	assert.Empty(t, api.requests)
}

func TestBotRecipesCommand(t *testing.T) {
	ctx := context.Background()

	t.Run("Empty", func(t *testing.T) {
		bot, api := newTestBot(t, &fakeService{})
		bot.HandleUpdate(ctx, message(allowedUser, "/recipes"))
		assert.Contains(t, api.last(), "catalog is empty")
	})

	t.Run("Names", func(t *testing.T) {
		bot, api := newTestBot(t, &fakeService{names: []string{"Caesar Salad", "Seared Salmon"}})
		bot.HandleUpdate(ctx, message(allowedUser, "/recipes"))
		assert.Contains(t, api.last(), "*Recipes* (2)")
		assert.Contains(t, api.last(), "• Seared Salmon")
	})
}

func TestBotMetricsIsAdminOnly(t *testing.T) {
	ctx := context.Background()
	bot, api := newTestBot(t, &fakeService{})

	bot.HandleUpdate(ctx, message(allowedUser, "/metrics"))
	assert.Contains(t, api.last(), "Admin only")

	bot.HandleUpdate(ctx, message(adminUser, "/metrics"))
	out := api.last()
	assert.Contains(t, out, "*2026-10-16*: 3 runs, 12 items")
	assert.Contains(t, out, "Recipes: 9")
	assert.Contains(t, out, "Reports: 4 files, 8.0 KB")
}

func TestBotClipper(t *testing.T) {
	ctx := context.Background()
	bot, api := newTestBot(t, &fakeService{})

	bot.HandleUpdate(ctx, message(allowedUser, "https://example.com/caesar"))
	assert.Contains(t, api.last(), "*Recipe Saved!*")
	assert.Contains(t, api.last(), "*Allergens:* Eggs")

	bot.HandleUpdate(ctx, message(allowedUser, "https://example.com/broken"))
	assert.Contains(t, api.last(), "Error clipping recipe")
}

func TestBotOrderFlow(t *testing.T) {
	ctx := context.Background()

	t.Run("Save", func(t *testing.T) {
		svc := &fakeService{}
		bot, api := newTestBot(t, svc)

		bot.HandleUpdate(ctx, message(allowedUser, orderText))
		assert.Contains(t, api.last(), "BANQUET EVENT ORDER")
		assert.Contains(t, api.last(), "Romaine")

		buttons := api.callbackData()
		require.Len(t, buttons, 2)
		assert.True(t, strings.HasPrefix(buttons[0], "save|"))
		assert.True(t, strings.HasPrefix(buttons[1], "discard|"))

		bot.HandleUpdate(ctx, callback(allowedUser, buttons[0]))
		require.Len(t, svc.generated, 1)
		assert.Equal(t, "Harvest Gala", svc.generated[0].Name)
		assert.Equal(t, beo.Quantity("12"), svc.generated[0].Items[0].Quantity)
		assert.False(t, svc.published[0])
		assert.Contains(t, api.last(), "*Order Saved!*")
		assert.Len(t, api.requests, 1)

		// The session is consumed by the first click.
		bot.HandleUpdate(ctx, callback(allowedUser, buttons[0]))
		assert.Len(t, svc.generated, 1)
		assert.Contains(t, api.last(), "expired")
	})

	t.Run("Publish", func(t *testing.T) {
		svc := &fakeService{canPublish: true}
		bot, api := newTestBot(t, svc)

		bot.HandleUpdate(ctx, message(allowedUser, orderText))
		buttons := api.callbackData()
		require.Len(t, buttons, 3)
		require.True(t, strings.HasPrefix(buttons[1], "publish|"))

		bot.HandleUpdate(ctx, callback(allowedUser, buttons[1]))
		require.Len(t, svc.published, 1)
		assert.True(t, svc.published[0])
		assert.Contains(t, api.last(), "*Ghost draft:* post-1")
	})

	t.Run("Discard", func(t *testing.T) {
		svc := &fakeService{}
		bot, api := newTestBot(t, svc)

		bot.HandleUpdate(ctx, message(allowedUser, orderText))
		buttons := api.callbackData()
		bot.HandleUpdate(ctx, callback(allowedUser, buttons[1]))

		assert.Empty(t, svc.generated)
		assert.Contains(t, api.last(), "Order discarded")
	})

	t.Run("OtherUsersSession", func(t *testing.T) {
		svc := &fakeService{}
		bot, api := newTestBot(t, svc)

		bot.HandleUpdate(ctx, message(allowedUser, orderText))
		buttons := api.callbackData()
		bot.HandleUpdate(ctx, callback(adminUser, buttons[0]))

		assert.Empty(t, svc.generated)
		assert.Contains(t, api.last(), "expired")
	})

	t.Run("BuildError", func(t *testing.T) {
		svc := &fakeService{buildErr: &shopping.ValidationError{Recipe: "Caesar Salad", Reason: "invalid quantity \"abc\""}}
		bot, api := newTestBot(t, svc)

		bot.HandleUpdate(ctx, message(allowedUser, orderText))
		assert.Contains(t, api.last(), "Could not build order")
		assert.Contains(t, api.last(), "invalid quantity")
		assert.Nil(t, api.callbackData())
	})

	t.Run("Unreadable", func(t *testing.T) {
		bot, api := newTestBot(t, &fakeService{})
		bot.HandleUpdate(ctx, message(allowedUser, "hello there"))
		assert.Contains(t, api.last(), "Could not read order")
	})
}

func TestSplitMessage(t *testing.T) {
	t.Run("Short", func(t *testing.T) {
		assert.Equal(t, []string{"a\nb"}, splitMessage("a\nb\n", 10))
	})

	t.Run("BreaksAtLines", func(t *testing.T) {
		got := splitMessage("aaaa\nbbbb\ncccc", 9)
		assert.Equal(t, []string{"aaaa\nbbbb", "cccc"}, got)
	})

	t.Run("CutsLongLine", func(t *testing.T) {
		got := splitMessage("abcdefghij", 4)
		assert.Equal(t, []string{"abcd", "efgh", "ij"}, got)
	})
}
