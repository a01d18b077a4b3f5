package checkpoint

import (
	"database/sql"
	"fmt"
)

// SQLServer stores cursors in a SQL Server table, for deployments that
// already run one and do not want another moving part.
type SQLServer struct {
	db        *sql.DB
	tableName string
}

// NewSQLServer returns a cursor store backed by the given database. The
// checkpoint table is created when missing.
func NewSQLServer(db *sql.DB, tableName string) (*SQLServer, error) {
	if tableName == "" {
		tableName = "etl_checkpoints"
	}
	s := &SQLServer{db: db, tableName: tableName}
	if err := s.ensureTable(); err != nil {
		return nil, fmt.Errorf("failed to create checkpoint table: %w", err)
	}
	return s, nil
}

func (s *SQLServer) ensureTable() error {
	query := fmt.Sprintf(`IF OBJECT_ID(N'%s', N'U') IS NULL
		CREATE TABLE %s (
			connector NVARCHAR(128) NOT NULL,
			endpoint NVARCHAR(128) NOT NULL,
			cursor_value NVARCHAR(MAX) NOT NULL,
			updated_at DATETIME2 NOT NULL DEFAULT SYSUTCDATETIME(),
			PRIMARY KEY (connector, endpoint)
		)`, s.tableName, s.tableName)
	_, err := s.db.Exec(query)
	return err
}

func (s *SQLServer) Get(connector, endpoint string) (string, error) {
	query := fmt.Sprintf("SELECT cursor_value FROM %s WHERE connector = @p1 AND endpoint = @p2", s.tableName)

	var cursor string
	err := s.db.QueryRow(query, connector, endpoint).Scan(&cursor)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return cursor, nil
}

func (s *SQLServer) Set(connector, endpoint, cursor string) error {
	if cursor == "" {
		return fmt.Errorf("cursor should not be empty")
	}

	update := fmt.Sprintf("UPDATE %s SET cursor_value = @p3, updated_at = SYSUTCDATETIME() WHERE connector = @p1 AND endpoint = @p2", s.tableName)
	res, err := s.db.Exec(update, connector, endpoint, cursor)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}

	insert := fmt.Sprintf("INSERT INTO %s (connector, endpoint, cursor_value) VALUES (@p1, @p2, @p3)", s.tableName)
	_, err = s.db.Exec(insert, connector, endpoint, cursor)
	return err
}

func (s *SQLServer) Clear(connector, endpoint string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE connector = @p1 AND endpoint = @p2", s.tableName)
	_, err := s.db.Exec(query, connector, endpoint)
	return err
}
