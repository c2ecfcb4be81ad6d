package database

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMigrationFilesExist(t *testing.T) {
	migrationsDir := "../../migrations"

	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		t.Fatal("Migrations directory does not exist")
	}

	expectedMigrations := []string{
		"00001_create_categories_table.sql",
		"00002_create_products_table.sql",
		"00003_create_blog_posts_table.sql",
		"00004_create_events_table.sql",
		"00005_create_appointments_table.sql",
		"00006_create_leads_table.sql",
		"00007_create_chat_sessions_table.sql",
		"00008_create_chat_messages_table.sql",
	}

	for _, migration := range expectedMigrations {
		path := filepath.Join(migrationsDir, migration)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			t.Errorf("Migration file %s does not exist", migration)
		}
	}
}

func TestMigrationFilesHaveUpAndDown(t *testing.T) {
	migrationsDir := "../../migrations"

	files, err := os.ReadDir(migrationsDir)
	if err != nil {
		t.Fatalf("Failed to read migrations directory: %v", err)
	}

	sqlFileCount := 0
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		sqlFileCount++
		content, err := os.ReadFile(filepath.Join(migrationsDir, file.Name()))
		if err != nil {
			t.Errorf("Failed to read migration file %s: %v", file.Name(), err)
			continue
		}

		contentStr := string(content)

		for _, directive := range []string{
			"-- +goose Up",
			"-- +goose Down",
			"-- +goose StatementBegin",
			"-- +goose StatementEnd",
		} {
			if !strings.Contains(contentStr, directive) {
				t.Errorf("Migration file %s missing '%s' directive", file.Name(), directive)
			}
		}
	}

	if sqlFileCount == 0 {
		t.Error("No SQL migration files found")
	}
}

func TestMigrationFilesCreateExpectedTables(t *testing.T) {
	migrationsDir := "../../migrations"

	expectedTables := map[string]string{
		"categories":    "00001_create_categories_table.sql",
		"products":      "00002_create_products_table.sql",
		"blog_posts":    "00003_create_blog_posts_table.sql",
		"events":        "00004_create_events_table.sql",
		"appointments":  "00005_create_appointments_table.sql",
		"leads":         "00006_create_leads_table.sql",
		"chat_sessions": "00007_create_chat_sessions_table.sql",
		"chat_messages": "00008_create_chat_messages_table.sql",
	}

	for tableName, migrationFile := range expectedTables {
		path := filepath.Join(migrationsDir, migrationFile)
		content, err := os.ReadFile(path)
		if err != nil {
			t.Errorf("Failed to read migration file %s: %v", migrationFile, err)
			continue
		}

		contentStr := string(content)

		createTableStmt := "CREATE TABLE IF NOT EXISTS " + tableName
		if !strings.Contains(contentStr, createTableStmt) {
			t.Errorf("Migration file %s does not create table %s", migrationFile, tableName)
		}

		dropTableStmt := "DROP TABLE IF EXISTS " + tableName
		if !strings.Contains(contentStr, dropTableStmt) {
			t.Errorf("Migration file %s does not drop table %s in down section", migrationFile, tableName)
		}
	}
}

func TestAppointmentsTableHasStatusConstraint(t *testing.T) {
	migrationsDir := "../../migrations"
	path := filepath.Join(migrationsDir, "00005_create_appointments_table.sql")

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read appointments migration: %v", err)
	}

	contentStr := string(content)
	requiredStatuses := []string{"pending", "confirmed", "completed", "cancelled"}
	for _, status := range requiredStatuses {
		if !strings.Contains(contentStr, status) {
			t.Errorf("Appointments table status constraint missing value: %s", status)
		}
	}
}

func TestChatMessagesTableHasSequenceColumn(t *testing.T) {
	migrationsDir := "../../migrations"
	path := filepath.Join(migrationsDir, "00008_create_chat_messages_table.sql")

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read chat_messages migration: %v", err)
	}

	contentStr := string(content)
	if !strings.Contains(contentStr, "seq BIGSERIAL") {
		t.Error("Chat messages table missing seq ordering column")
	}
	if !strings.Contains(contentStr, "FOREIGN KEY (session_id)") {
		t.Error("Chat messages table missing foreign key to chat_sessions")
	}
}

func TestChatSessionsTableHasTokenColumn(t *testing.T) {
	migrationsDir := "../../migrations"
	path := filepath.Join(migrationsDir, "00007_create_chat_sessions_table.sql")

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read chat_sessions migration: %v", err)
	}

	if !strings.Contains(string(content), "token VARCHAR") {
		t.Error("Chat sessions table missing capability token column")
	}
}
