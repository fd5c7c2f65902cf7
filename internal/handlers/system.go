package handlers

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// MigrationsDir is resolved relative to the working directory of the server.
var MigrationsDir = "migrations"

// InstallDatabase installs the schema on every configured store
// @Summary Install Database Schema
// @Description Executes the SQL migrations for PostgreSQL and ClickHouse
// @Tags System
// @Produce json
// @Security AdminToken
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Failure 500 {object} map[string]interface{}
// @Router /system/install [post]
func (h *Handler) InstallDatabase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	results := make(map[string]string)
	hasError := false

	if h.pg == nil {
		results["postgres"] = "skipped"
	} else if err := h.executePostgresSQL(ctx, filepath.Join(MigrationsDir, "postgres", "001_users.sql")); err != nil {
		results["postgres"] = "failed: " + err.Error()
		hasError = true
	} else {
		results["postgres"] = "success"
	}

	if h.ch == nil {
		results["clickhouse"] = "skipped"
	} else if err := h.executeClickHouseSQL(ctx, filepath.Join(MigrationsDir, "clickhouse", "001_leaderboard_snapshots.sql")); err != nil {
		results["clickhouse"] = "failed: " + err.Error()
		hasError = true
	} else {
		results["clickhouse"] = "success"
	}

	statusCode := http.StatusOK
	if hasError {
		statusCode = http.StatusInternalServerError
	}

	h.jsonResponse(w, statusCode, map[string]interface{}{
		"status":  "completed",
		"results": results,
		"error":   hasError,
	})
}

func (h *Handler) executePostgresSQL(ctx context.Context, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		h.logger.Errorw("failed to read schema file", "db", "PostgreSQL", "path", path, "error", err)
		return err
	}

	if _, err = h.pg.Exec(ctx, string(content)); err != nil {
		h.logger.Errorw("failed to execute schema", "db", "PostgreSQL", "error", err)
		return err
	}

	h.logger.Infow("successfully installed schema", "db", "PostgreSQL")
	return nil
}

// executeClickHouseSQL runs the file one statement at a time; the native
// protocol rejects multi-statement queries.
func (h *Handler) executeClickHouseSQL(ctx context.Context, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		h.logger.Errorw("failed to read schema file", "db", "ClickHouse", "path", path, "error", err)
		return err
	}

	for _, stmt := range splitStatements(string(content)) {
		if err := h.ch.Exec(ctx, stmt); err != nil {
			h.logger.Warnw("statement execution failed", "db", "ClickHouse", "error", err, "statement", stmt[:min(len(stmt), 50)]+"...")
			return err
		}
	}

	h.logger.Infow("successfully installed schema", "db", "ClickHouse")
	return nil
}

func splitStatements(sql string) []string {
	var out []string
	for _, stmt := range strings.Split(sql, ";") {
		if trimmed := strings.TrimSpace(stmt); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
