package export

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const timelineSchemaSQL = `
CREATE TABLE IF NOT EXISTS timeline (
	run_id      TEXT NOT NULL,
	run_time    TEXT NOT NULL,
	executable  TEXT NOT NULL,
	source_file TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_timeline_run_time ON timeline(run_time);
CREATE INDEX IF NOT EXISTS idx_timeline_executable ON timeline(executable);
`

// sqliteSink persists timeline rows so artifacts from successive batch
// runs can be queried together; rows are keyed by the batch run id.
type sqliteSink struct {
	conn  *sql.DB
	runID string
}

func openSQLite(path, runID string) (*sqliteSink, error) {
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("export: open sqlite %s: %w", path, err)
	}
	if _, err := conn.Exec(timelineSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("export: apply timeline schema: %w", err)
	}
	return &sqliteSink{conn: conn, runID: runID}, nil
}

func (s *sqliteSink) write(rows []TimelineRecord) error {
	for _, t := range rows {
		_, err := s.conn.Exec(
			`INSERT INTO timeline (run_id, run_time, executable, source_file) VALUES (?, ?, ?, ?)`,
			s.runID, t.RunTime, t.Executable, t.SourceFile,
		)
		if err != nil {
			return fmt.Errorf("export: insert timeline row: %w", err)
		}
	}
	return nil
}

func (s *sqliteSink) close() error {
	return s.conn.Close()
}
