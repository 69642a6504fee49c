package tracking

import (
	"database/sql"
	"fmt"
	"time"
)

// GetSummary returns totals, the kind distribution and per-sound usage for
// the events matching filter
func GetSummary(db *sql.DB, filter QueryFilter, now time.Time) (*Summary, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	whereClause, args := filter.BuildWhereClause(now)

	query := `SELECT COUNT(*), COUNT(DISTINCT session_id) FROM playback_events`
	if whereClause != "" {
		query += " WHERE " + whereClause
	}

	summary := &Summary{}
	if err := db.QueryRow(query, args...).Scan(&summary.TotalEvents, &summary.Sessions); err != nil {
		return nil, fmt.Errorf("failed to query event totals: %w", err)
	}

	kinds, err := GetKindDistribution(db, filter, now)
	if err != nil {
		return nil, err
	}
	summary.Kinds = kinds

	// The per-sound limit applies to the sound list only
	sounds, err := GetSoundUsage(db, filter, now)
	if err != nil {
		return nil, err
	}
	summary.Sounds = sounds

	return summary, nil
}

// GetKindDistribution counts events per kind, most frequent first
func GetKindDistribution(db *sql.DB, filter QueryFilter, now time.Time) ([]KindCount, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	whereClause, args := filter.BuildWhereClause(now)

	query := `SELECT kind, COUNT(*) AS count FROM playback_events`
	if whereClause != "" {
		query += " WHERE " + whereClause
	}
	query += ` GROUP BY kind ORDER BY count DESC, kind`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query kind distribution: %w", err)
	}
	defer rows.Close()

	var results []KindCount
	total := 0
	for rows.Next() {
		var kc KindCount
		if err := rows.Scan(&kc.Kind, &kc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan kind distribution row: %w", err)
		}
		total += kc.Count
		results = append(results, kc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating kind distribution rows: %w", err)
	}

	for i := range results {
		results[i].Percentage = float64(results[i].Count) / float64(total) * 100
	}
	return results, nil
}

// GetSoundUsage aggregates events per sound id, most played first
func GetSoundUsage(db *sql.DB, filter QueryFilter, now time.Time) ([]SoundUsage, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	whereClause, args := filter.BuildWhereClause(now)

	query := `
		SELECT
			sound_id,
			SUM(CASE WHEN kind = 'played' THEN 1 ELSE 0 END) AS played,
			SUM(CASE WHEN kind = 'muted' THEN 1 ELSE 0 END) AS muted,
			SUM(CASE WHEN kind IN ('released', 'uninitialized') THEN 1 ELSE 0 END) AS dropped,
			SUM(CASE WHEN kind = 'unknown_sound' THEN 1 ELSE 0 END) AS unknown,
			MAX(timestamp) AS last_seen
		FROM playback_events
		WHERE sound_id IS NOT NULL`
	if whereClause != "" {
		query += " AND " + whereClause
	}
	query += `
		GROUP BY sound_id
		ORDER BY played DESC, sound_id`
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sound usage: %w", err)
	}
	defer rows.Close()

	var results []SoundUsage
	for rows.Next() {
		var usage SoundUsage
		var lastSeen int64
		if err := rows.Scan(&usage.SoundID, &usage.Played, &usage.Muted, &usage.Dropped, &usage.Unknown, &lastSeen); err != nil {
			return nil, fmt.Errorf("failed to scan sound usage row: %w", err)
		}
		usage.LastSeen = time.Unix(lastSeen, 0)
		results = append(results, usage)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sound usage rows: %w", err)
	}

	return results, nil
}
