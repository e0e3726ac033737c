package monitoring

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Maintenance periodically prunes orphaned catalog rows and logs
// per-category item counts.
type Maintenance struct {
	db       *sql.DB
	schedule cron.Schedule
	done     chan bool
}

// NewMaintenance creates a maintenance runner. The cron expression uses the
// standard five-field format; an invalid expression falls back to hourly.
func NewMaintenance(db *sql.DB, cronExpr string) *Maintenance {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		log.Warn().Err(err).Str("expr", cronExpr).Msg("Invalid maintenance cron expression, falling back to hourly")
		schedule, _ = cron.ParseStandard("@hourly")
	}
	return &Maintenance{
		db:       db,
		schedule: schedule,
		done:     make(chan bool),
	}
}

// Run starts the maintenance loop. Call as a goroutine.
func (m *Maintenance) Run() {
	log.Info().Msg("Starting background catalog maintenance...")

	// Run once immediately on start
	m.runOnce()

	for {
		next := m.schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-m.done:
			timer.Stop()
			log.Info().Msg("Stopping background catalog maintenance.")
			return
		case <-timer.C:
			m.runOnce()
		}
	}
}

// Stop halts the maintenance loop.
func (m *Maintenance) Stop() {
	m.done <- true
}

func (m *Maintenance) runOnce() {
	runID := uuid.NewString()
	logger := log.With().Str("run_id", runID).Logger()

	pruned, err := m.pruneOrphans()
	if err != nil {
		logger.Error().Err(err).Msg("Maintenance: failed to prune orphaned rows")
	} else if pruned > 0 {
		logger.Info().Int64("rows", pruned).Msg("Maintenance: pruned orphaned catalog rows")
	}

	counts, err := m.categoryCounts()
	if err != nil {
		logger.Error().Err(err).Msg("Maintenance: failed to collect catalog counts")
		return
	}
	event := logger.Info()
	for category, count := range counts {
		event = event.Int(category, count)
	}
	event.Msg("Catalog snapshot")
}

// pruneOrphans removes genre and rating rows whose media item is gone.
func (m *Maintenance) pruneOrphans() (int64, error) {
	var total int64
	for _, stmt := range []string{
		"DELETE FROM media_genres WHERE NOT EXISTS (SELECT 1 FROM media_items WHERE media_items.owner_id = media_genres.owner_id AND media_items.id = media_genres.media_id)",
		"DELETE FROM ratings WHERE NOT EXISTS (SELECT 1 FROM media_items WHERE media_items.owner_id = ratings.owner_id AND media_items.id = ratings.media_id)",
	} {
		res, err := m.db.Exec(stmt)
		if err != nil {
			return total, err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return total, err
		}
		total += affected
	}
	return total, nil
}

func (m *Maintenance) categoryCounts() (map[string]int, error) {
	rows, err := m.db.Query("SELECT category, COUNT(*) FROM media_items GROUP BY category")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		counts[category] = count
	}
	return counts, rows.Err()
}
