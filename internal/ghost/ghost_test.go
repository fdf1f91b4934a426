package ghost

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"

	"meal-prep-planner/internal/config"
)

func TestFetchRecipes(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Mock Ghost API server
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Check that the key is in the query
			if r.URL.Query().Get("key") != "test_key" {
				t.Errorf("Expected key 'test_key', got '%s'", r.URL.Query().Get("key"))
			}
			if r.URL.Query().Get("filter") != "tag:recipe" {
				t.Errorf("Expected filter 'tag:recipe', got '%s'", r.URL.Query().Get("filter"))
			}

			w.WriteHeader(http.StatusOK)
			if r.URL.Query().Get("page") == "2" {
				fmt.Fprintln(w, `{
					"posts": [{"id": "3", "title": "Recipe 3", "html": "<h1>Recipe 3</h1>", "updated_at": "2023-10-29T10:00:00Z"}],
					"meta": {"pagination": {"page": 2, "pages": 2, "next": null}}
				}`)
				return
			}
			fmt.Fprintln(w, `{
				"posts": [
					{"id": "1", "title": "Recipe 1", "html": "<h1>Recipe 1</h1>", "updated_at": "2023-10-27T10:00:00Z"},
					{"id": "2", "title": "Recipe 2", "html": "<h1>Recipe 2</h1>", "updated_at": "2023-10-28T10:00:00Z"}
				],
				"meta": {
					"pagination": {
						"page": 1,
						"limit": 2,
						"pages": 2,
						"total": 3,
						"next": 2,
						"prev": null
					}
				}
			}`)
		}))
		defer server.Close()

		// Create a config pointing to the test server
		cfg := &config.Config{
			GhostURL:        server.URL,
			GhostContentKey: "test_key",
			GhostRecipeTag:  "recipe",
		}
		client := NewClient(cfg)

		posts, err := client.FetchRecipes(context.Background())
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		if len(posts) != 3 {
			t.Fatalf("Expected 3 posts, got %d", len(posts))
		}
		if posts[2].ID != "3" {
			t.Errorf("Expected the second page to be appended, got %+v", posts[2])
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
}

func TestCreatePost(t *testing.T) {
	secret := "0123456789abcdef"
	adminKey := "key-id:" + secret

	t.Run("Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Ghost ") {
				t.Fatalf("Expected Ghost authorization, got '%s'", auth)
			}
			raw, _ := hex.DecodeString(secret)
			token, err := jwt.Parse(strings.TrimPrefix(auth, "Ghost "), func(tok *jwt.Token) (any, error) {
				if tok.Header["kid"] != "key-id" {
					t.Errorf("Expected kid 'key-id', got %v", tok.Header["kid"])
				}
				return raw, nil
			}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithAudience("/admin/"))
			if err != nil || !token.Valid {
				t.Errorf("Expected a valid token, got %v", err)
			}

			body, _ := io.ReadAll(r.Body)
			var payload struct {
				Posts []struct {
					Title  string `json:"title"`
					Status string `json:"status"`
				} `json:"posts"`
			}
			if err := json.Unmarshal(body, &payload); err != nil {
				t.Fatalf("Failed to decode body: %v", err)
			}
			if payload.Posts[0].Status != "draft" {
				t.Errorf("Expected draft status, got '%s'", payload.Posts[0].Status)
			}

			w.WriteHeader(http.StatusCreated)
			fmt.Fprintf(w, `{"posts":[{"id":"p1","title":%q,"status":"draft"}]}`, payload.Posts[0].Title)
		}))
		defer server.Close()

		client := NewClient(&config.Config{GhostURL: server.URL, GhostAdminKey: adminKey})
		post, err := client.CreatePost(context.Background(), "Week Plan", "<p>hi</p>", false)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if post.ID != "p1" || post.Title != "Week Plan" {
			t.Errorf("Unexpected post: %+v", post)
		}
	})

	t.Run("InvalidKey", func(t *testing.T) {
		client := NewClient(&config.Config{GhostURL: "http://unused", GhostAdminKey: "nocolon"})
		if _, err := client.CreatePost(context.Background(), "t", "h", false); err == nil {
			t.Fatal("Expected an error for a malformed admin key, got nil")
		}
	})

	t.Run("AdminError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprintln(w, `{"errors":[{"message":"bad token"}]}`)
		}))
		defer server.Close()

		client := NewClient(&config.Config{GhostURL: server.URL, GhostAdminKey: adminKey})
		_, err := client.CreatePost(context.Background(), "t", "h", true)
		if err == nil || !strings.Contains(err.Error(), "401") {
			t.Errorf("Expected a 401 error, got %v", err)
		}
	})
}
