package ghost

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"banquet-planner/internal/config"
)

const testAdminKey = "6489f1a2:0123456789abcdef0123456789abcdef"

func TestFetchRecipes(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("key") != "test_key" {
				t.Errorf("Expected key 'test_key', got '%s'", r.URL.Query().Get("key"))
			}
			if r.URL.Query().Get("filter") != "tag:recipe" {
				t.Errorf("Expected recipe tag filter, got '%s'", r.URL.Query().Get("filter"))
			}

			w.WriteHeader(http.StatusOK)
			switch r.URL.Query().Get("page") {
			case "1":
				fmt.Fprintln(w, `{
					"posts": [
						{"id": "1", "title": "Caesar Salad", "html": "<p>Crisp</p>", "updated_at": "2026-10-01T10:00:00Z"},
						{"id": "2", "title": "Grilled Salmon", "html": "<p>Flaky</p>", "updated_at": "2026-10-02T10:00:00Z"}
					],
					"meta": {"pagination": {"page": 1, "limit": 2, "pages": 2, "total": 3, "next": 2, "prev": null}}
				}`)
			case "2":
				fmt.Fprintln(w, `{
					"posts": [
						{"id": "3", "title": "Arnold Palmer", "html": "<p>Iced</p>", "updated_at": "2026-10-03T10:00:00Z"}
					],
					"meta": {"pagination": {"page": 2, "limit": 2, "pages": 2, "total": 3, "next": null, "prev": 1}}
				}`)
			default:
				t.Errorf("Unexpected page '%s'", r.URL.Query().Get("page"))
			}
		}))
		defer server.Close()

		cfg := &config.Config{
			GhostURL:        server.URL + "/",
			GhostContentKey: "test_key",
		}
		client := NewClient(cfg)

		posts, err := client.FetchRecipes(context.Background())
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		if len(posts) != 3 {
			t.Fatalf("Expected 3 posts across pages, got %d", len(posts))
		}
		if posts[2].Title != "Arnold Palmer" {
			t.Errorf("Expected last post 'Arnold Palmer', got '%s'", posts[2].Title)
		}
	})

	t.Run("ServerError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		cfg := &config.Config{
			GhostURL:        server.URL,
			GhostContentKey: "test_key",
		}
		client := NewClient(cfg)

		_, err := client.FetchRecipes(context.Background())
		if err == nil {
			t.Fatal("Expected an error for non-200 status code, got nil")
		}
	})

	t.Run("Canceled", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("Expected no request for a canceled context")
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		client := NewClient(&config.Config{GhostURL: server.URL, GhostContentKey: "test_key"})
		if _, err := client.FetchRecipes(ctx); err == nil {
			t.Fatal("Expected an error for a canceled context, got nil")
		}
	})
}

func TestCreatePost(t *testing.T) {
	t.Run("Draft", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("Expected POST, got %s", r.Method)
			}
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Ghost ") {
				t.Errorf("Expected Ghost authorization header, got '%s'", auth)
			}
			verifyToken(t, strings.TrimPrefix(auth, "Ghost "))

			var body struct {
				Posts []map[string]any `json:"posts"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("Failed to decode body: %v", err)
			}
			if len(body.Posts) != 1 || body.Posts[0]["status"] != "draft" {
				t.Errorf("Expected one draft post, got %+v", body.Posts)
			}

			w.WriteHeader(http.StatusCreated)
			fmt.Fprintln(w, `{"posts": [{"id": "99", "title": "Banquet Event Order: Gala", "status": "draft", "url": "http://ghost.test/p/99/"}]}`)
		}))
		defer server.Close()

		client := NewClient(&config.Config{GhostURL: server.URL, GhostAdminKey: testAdminKey})
		post, err := client.CreatePost(context.Background(), "Banquet Event Order: Gala", "<p>menu</p>", false)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if post.ID != "99" || post.Status != "draft" {
			t.Errorf("Expected draft post 99, got %+v", post)
		}
	})

	t.Run("InvalidAdminKey", func(t *testing.T) {
		client := NewClient(&config.Config{GhostURL: "http://ghost.test", GhostAdminKey: "not-a-key"})
		if _, err := client.CreatePost(context.Background(), "t", "<p></p>", true); err == nil {
			t.Fatal("Expected an error for a malformed admin key, got nil")
		}
	})

	t.Run("Rejected", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprintln(w, `{"errors": [{"message": "Invalid token"}]}`)
		}))
		defer server.Close()

		client := NewClient(&config.Config{GhostURL: server.URL, GhostAdminKey: testAdminKey})
		_, err := client.CreatePost(context.Background(), "t", "<p></p>", true)
		if err == nil || !strings.Contains(err.Error(), "401") {
			t.Fatalf("Expected a 401 error, got %v", err)
		}
	})
}

func verifyToken(t *testing.T, raw string) {
	t.Helper()
	secret := []byte{0x01, 0x23, 0x45, 0x67, 0x89, 0xab, 0xcd, 0xef, 0x01, 0x23, 0x45, 0x67, 0x89, 0xab, 0xcd, 0xef}

	token, err := jwt.Parse(raw, func(token *jwt.Token) (any, error) {
		if token.Header["kid"] != "6489f1a2" {
			t.Errorf("Expected kid '6489f1a2', got '%v'", token.Header["kid"])
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithAudience("/admin/"))
	if err != nil {
		t.Errorf("Failed to verify admin token: %v", err)
		return
	}

	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil || time.Until(exp.Time) > 5*time.Minute {
		t.Errorf("Expected a short-lived token, got exp %v (err %v)", exp, err)
	}
}
