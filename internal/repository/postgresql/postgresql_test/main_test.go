package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/cmlabs-hris/timesheet-go/internal/pkg/database"
	"github.com/cmlabs-hris/timesheet-go/migrations"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testDB *database.DB

// TestMain connects to TEST_DATABASE_URL and applies the schema. Without it the
// repository tests are skipped.
func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		fmt.Println("TEST_DATABASE_URL not set, skipping repository tests")
		os.Exit(0)
	}

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, dsn, database.PoolOptions{MaxConns: 4})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect to test database: %v\n", err)
		os.Exit(1)
	}
	if _, err := db.Migrate(ctx, migrations.FS); err != nil {
		fmt.Fprintf(os.Stderr, "failed to migrate test database: %v\n", err)
		db.Close()
		os.Exit(1)
	}
	testDB = db

	code := m.Run()
	db.Close()
	os.Exit(code)
}

func cleanupTestData(t *testing.T) {
	t.Helper()
	_, err := testDB.Exec(context.Background(), `TRUNCATE TABLE notifications, notification_preferences, timesheet_entries,
		project_tasks, project_members, projects, refresh_tokens, employees, users CASCADE`)
	require.NoError(t, err)
}

type fixture struct {
	userID     string
	employeeID string
	projectID  string
	taskID     string
}

// createFixture inserts an employee who is a member of one project with one task.
func createFixture(t *testing.T, ctx context.Context, email string) fixture {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	var f fixture
	require.NoError(t, testDB.QueryRow(ctx,
		`INSERT INTO users (email, password_hash, role) VALUES ($1, $2, 'employee') RETURNING id`,
		email, string(hash)).Scan(&f.userID))
	require.NoError(t, testDB.QueryRow(ctx,
		`INSERT INTO employees (user_id, full_name) VALUES ($1, $2) RETURNING id`,
		f.userID, "Employee "+email).Scan(&f.employeeID))
	require.NoError(t, testDB.QueryRow(ctx,
		`INSERT INTO projects (name, code, manager_id) VALUES ('Apollo', $1, $2) RETURNING id`,
		"APL-"+email, f.employeeID).Scan(&f.projectID))
	_, err = testDB.Exec(ctx, `INSERT INTO project_members (project_id, employee_id) VALUES ($1, $2)`, f.projectID, f.employeeID)
	require.NoError(t, err)
	require.NoError(t, testDB.QueryRow(ctx,
		`INSERT INTO project_tasks (project_id, name) VALUES ($1, 'Backend') RETURNING id`,
		f.projectID).Scan(&f.taskID))
	return f
}
