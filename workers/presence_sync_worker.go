package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"athlete-network/models"
	"gorm.io/gorm"
)

// RemoteSession is one active session as reported by the auth service.
type RemoteSession struct {
	UserID     uint      `json:"user_id"`
	LastSeenAt time.Time `json:"last_seen_at"`
	Active     bool      `json:"active"`
}

// PresenceSyncClient polls the auth service for session activity and keeps
// users' last_login and is_active columns current.
type PresenceSyncClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	DB         *gorm.DB
}

func NewPresenceSyncClient(db *gorm.DB) *PresenceSyncClient {
	baseURL := os.Getenv("AUTH_SERVICE_URL")
	if baseURL == "" {
		log.Fatal("AUTH_SERVICE_URL environment variable is required")
	}
	token := os.Getenv("SOCIAL_SERVICE_TOKEN")
	if token == "" {
		log.Fatal("SOCIAL_SERVICE_TOKEN environment variable is required for presence sync")
	}

	return &PresenceSyncClient{
		BaseURL: baseURL,
		Token:   token,
		DB:      db,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *PresenceSyncClient) GetChangedSessions(ctx context.Context, since time.Time) ([]RemoteSession, error) {
	since = since.UTC()

	u, err := url.Parse(fmt.Sprintf("%s/api/v1/public/sessions", c.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	q := u.Query()
	q.Set("since", since.Format(time.RFC3339))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Service-Token", c.Token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call auth service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("auth service returned status %d: %s", resp.StatusCode, string(body))
	}

	var response struct {
		Sessions []RemoteSession `json:"sessions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode auth service response: %w", err)
	}

	return response.Sessions, nil
}

// PollPresence runs the presence sync loop until the context ends.
func PollPresence(ctx context.Context, client *PresenceSyncClient, pollInterval time.Duration) {
	log.Println("🔁 Starting presence polling (auth service → users)…")

	lastSync := time.Unix(0, 0)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sessions, err := client.GetChangedSessions(ctx, lastSync)
			if err != nil {
				log.Printf("❌ Presence sync failed: %v", err)
				continue
			}
			if len(sessions) == 0 {
				continue
			}

			var updated int
			for _, s := range sessions {
				lastSeen := s.LastSeenAt
				res := client.DB.Model(&models.User{}).
					Where("id = ?", s.UserID).
					Updates(map[string]interface{}{
						"last_login": &lastSeen,
						"is_active":  s.Active,
					})
				if res.Error != nil {
					log.Printf("⚠️ Failed to update presence for user %d: %v", s.UserID, res.Error)
					continue
				}
				if res.RowsAffected > 0 {
					updated++
				}
				if s.LastSeenAt.After(lastSync) {
					lastSync = s.LastSeenAt
				}
			}
			log.Printf("✅ Presence sync applied to %d user(s)", updated)
		case <-ctx.Done():
			log.Println("⏹️ Presence polling stopped")
			return
		}
	}
}
