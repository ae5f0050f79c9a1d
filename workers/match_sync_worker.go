package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"athlete-network/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RemoteMatch matches the JSON shape of the sports feed service.
type RemoteMatch struct {
	ExternalRef string    `json:"external_ref"`
	LeagueSlug  string    `json:"league_slug"`
	Team1       string    `json:"team1"`
	Team2       string    `json:"team2"`
	Team1Logo   string    `json:"team1_logo"`
	Team2Logo   string    `json:"team2_logo"`
	Team1Score  *int      `json:"team1_score,omitempty"`
	Team2Score  *int      `json:"team2_score,omitempty"`
	Status      string    `json:"status"`
	StartTime   time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type getMatchChangesResponse struct {
	Matches []RemoteMatch `json:"matches"`
}

// MatchSyncWorker mirrors the sports feed into the local matches table. The
// feed is the source of truth for scheduled fixtures; local rows are keyed
// by external_ref so repeated syncs upsert instead of duplicating.
type MatchSyncWorker struct {
	db           *gorm.DB
	interval     time.Duration
	baseURL      string
	serviceToken string
	httpClient   *http.Client
}

func NewMatchSyncWorker(db *gorm.DB, feedBaseURL, serviceToken string) *MatchSyncWorker {
	return &MatchSyncWorker{
		db:           db,
		interval:     1 * time.Minute,
		baseURL:      feedBaseURL,
		serviceToken: serviceToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (w *MatchSyncWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Match Sync Worker (sports feed → matches)…")
	go w.run(ctx)
}

func (w *MatchSyncWorker) run(ctx context.Context) {
	// Initial backfill from the beginning of time
	if err := w.syncBatch(ctx, time.Time{}); err != nil {
		log.Printf("⚠️ Initial match sync failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.syncBatch(ctx, w.getLastSyncTime()); err != nil {
				log.Printf("❌ Match sync batch failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ Match Sync Worker stopped")
			return
		}
	}
}

// getLastSyncTime finds the most recent UpdatedAt among synced matches.
func (w *MatchSyncWorker) getLastSyncTime() time.Time {
	var lastTime time.Time
	err := w.db.Raw("SELECT MAX(updated_at) FROM matches WHERE external_ref IS NOT NULL").Scan(&lastTime).Error
	if err != nil || lastTime.IsZero() {
		return time.Unix(0, 0)
	}
	return lastTime
}

// syncBatch fetches match changes from the sports feed and upserts them.
func (w *MatchSyncWorker) syncBatch(ctx context.Context, since time.Time) error {
	sinceStr := since.UTC().Format(time.RFC3339)

	base, err := url.Parse(w.baseURL)
	if err != nil {
		return fmt.Errorf("invalid sports feed URL '%s': %w", w.baseURL, err)
	}
	endpointURL := base.JoinPath("/api/v1/public/matches")
	q := endpointURL.Query()
	q.Set("since", sinceStr)
	endpointURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", endpointURL.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request to sports feed failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("sports feed non-200 response: %d — %s", resp.StatusCode, string(body))
	}

	var response getMatchChangesResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return fmt.Errorf("failed to decode sports feed response: %w", err)
	}

	if len(response.Matches) == 0 {
		return nil
	}

	log.Printf("[SYNC] 📥 Processing %d match(es) from sports feed…", len(response.Matches))

	leagueIDs := w.leagueIDsBySlug()

	var upsertCount, errorCount int
	for _, remote := range response.Matches {
		leagueID, ok := leagueIDs[remote.LeagueSlug]
		if !ok {
			log.Printf("[SYNC] ⚠️ Skipping match %q: unknown league slug %q", remote.ExternalRef, remote.LeagueSlug)
			continue
		}

		ref := remote.ExternalRef
		local := models.Match{
			LeagueID:    leagueID,
			Team1:       remote.Team1,
			Team2:       remote.Team2,
			Team1Logo:   remote.Team1Logo,
			Team2Logo:   remote.Team2Logo,
			Team1Score:  remote.Team1Score,
			Team2Score:  remote.Team2Score,
			Status:      remote.Status,
			StartTime:   remote.StartTime,
			EndTime:     remote.EndTime,
			ExternalRef: &ref,
		}

		if err := w.db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "external_ref"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"team1", "team2", "team1_logo", "team2_logo",
				"team1_score", "team2_score", "status", "start_time", "end_time",
			}),
		}).Create(&local).Error; err != nil {
			errorCount++
			log.Printf("[SYNC] ⚠️ Failed to upsert match (external_ref=%q): %v", remote.ExternalRef, err)
		} else {
			upsertCount++
		}
	}

	log.Printf("[SYNC] ✅ Synced %d match(es) (%d upserted, %d errors)", len(response.Matches), upsertCount, errorCount)
	return nil
}

// leagueIDsBySlug loads a slug → id map so feed rows can resolve their league.
func (w *MatchSyncWorker) leagueIDsBySlug() map[string]uint {
	var leagues []models.League
	if err := w.db.Find(&leagues).Error; err != nil {
		log.Printf("[SYNC] ⚠️ Failed to load leagues: %v", err)
		return map[string]uint{}
	}
	out := make(map[string]uint, len(leagues))
	for _, l := range leagues {
		out[l.Slug] = l.ID
	}
	return out
}
