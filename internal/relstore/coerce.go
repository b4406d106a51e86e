// Row hydration and type coercion. Backend-native representations
// (NUMERIC budgets, DATE/TIMESTAMP columns, TEXT columns in sqlite) are
// coerced to the canonical wire forms before anything leaves this
// package: budgets as plain floats, dates as YYYY-MM-DD, timestamps as
// YYYY-MM-DD HH:MM:SS.
package relstore

import (
	"fmt"
	"strconv"
	"time"

	"github.com/mesh-intelligence/kindling/pkg/types"
)

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanExperiment(row scanner) (types.Experiment, error) {
	var exp types.Experiment
	var goal, startDate, endDate, createdAt, budget, durationDays any
	err := row.Scan(&exp.ID, &exp.Idea, &goal, &budget, &startDate, &endDate, &durationDays, &createdAt)
	if err != nil {
		return types.Experiment{}, err
	}
	exp.Goal = coerceString(goal)
	exp.Budget = coerceFloat(budget)
	exp.StartDate = coerceDate(startDate)
	exp.EndDate = coerceDate(endDate)
	exp.DurationDays = int(coerceInt(durationDays))
	exp.CreatedAt = coerceDateTime(createdAt)
	exp.Status = types.StageActive
	return exp, nil
}

func scanArchiveEntry(row scanner) (types.ArchiveEntry, error) {
	var entry types.ArchiveEntry
	var goal, startDate, endDate, completedAt, skill, experience, connection, createdAt any
	err := row.Scan(&entry.ID, &entry.Idea, &goal, &startDate, &endDate, &completedAt,
		&skill, &experience, &connection, &createdAt)
	if err != nil {
		return types.ArchiveEntry{}, err
	}
	entry.Goal = coerceString(goal)
	entry.StartDate = coerceDate(startDate)
	entry.EndDate = coerceDate(endDate)
	entry.CompletedAt = coerceDateTime(completedAt)
	entry.SkillLearned = coerceString(skill)
	entry.Experience = coerceString(experience)
	entry.Connection = coerceString(connection)
	entry.CreatedAt = coerceDateTime(createdAt)
	return entry, nil
}

// coerceString renders a nullable text column as a plain string.
func coerceString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}

// coerceFloat renders a numeric column as a float64, whether the driver
// hands back a float, an integer, or a fixed-point decimal as text.
func coerceFloat(v any) float64 {
	switch t := v.(type) {
	case nil:
		return 0
	case float64:
		return t
	case float32:
		return float64(t)
	case int64:
		return float64(t)
	case []byte:
		f, _ := strconv.ParseFloat(string(t), 64)
		return f
	case string:
		f, _ := strconv.ParseFloat(t, 64)
		return f
	default:
		return 0
	}
}

func coerceInt(v any) int64 {
	switch t := v.(type) {
	case nil:
		return 0
	case int64:
		return t
	case int:
		return int64(t)
	case []byte:
		n, _ := strconv.ParseInt(string(t), 10, 64)
		return n
	case string:
		n, _ := strconv.ParseInt(t, 10, 64)
		return n
	case float64:
		return int64(t)
	default:
		return 0
	}
}

// coerceDate renders a date column in the canonical YYYY-MM-DD form.
func coerceDate(v any) string {
	return coerceTemporal(v, types.DateFormat)
}

// coerceDateTime renders a timestamp column in the canonical
// YYYY-MM-DD HH:MM:SS form.
func coerceDateTime(v any) string {
	return coerceTemporal(v, types.DateTimeFormat)
}

func coerceTemporal(v any, format string) string {
	switch t := v.(type) {
	case nil:
		return ""
	case time.Time:
		return t.Format(format)
	case string:
		return reformatTemporal(t, format)
	case []byte:
		return reformatTemporal(string(t), format)
	default:
		return fmt.Sprint(t)
	}
}

// reformatTemporal normalizes a textual date or timestamp to the
// requested format. Already-canonical strings pass through; a
// timestamp stored where a date is expected is truncated to its date
// part, matching the canonical serialization regardless of how the
// value was written.
func reformatTemporal(s string, format string) string {
	if s == "" {
		return ""
	}
	for _, layout := range []string{
		types.DateTimeFormat,
		types.DateFormat,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05.999999999Z07:00",
	} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t.Format(format)
		}
	}
	return s
}
