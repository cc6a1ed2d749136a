package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talkincode/toughcrm/config"
	"github.com/talkincode/toughcrm/internal/crm"
	"github.com/talkincode/toughcrm/internal/repository/sqlitetest"
)

func newTestApp(t *testing.T) *Application {
	t.Helper()
	cfg := *config.DefaultAppConfig
	dir := t.TempDir()
	cfg.System.Location = "Local"
	cfg.Jobs.RestockLog = filepath.Join(dir, "restock.txt")
	cfg.Jobs.ReportLog = filepath.Join(dir, "report.txt")
	cfg.Jobs.ReminderLog = filepath.Join(dir, "reminder.txt")
	cfg.Jobs.HeartbeatLog = filepath.Join(dir, "heartbeat.txt")

	a := NewApplication(&cfg)
	a.OverrideDB(sqlitetest.Open(t))
	t.Cleanup(func() {
		for _, s := range a.sinks {
			_ = s.Close()
		}
	})
	return a
}

func readLines(t *testing.T, filename string) []string {
	t.Helper()
	data, err := os.ReadFile(filename)
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestSeedDataIsIdempotent(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	require.NoError(t, a.SeedData())
	require.NoError(t, a.SeedData())

	customers, err := crm.ListCustomers(ctx, a.Store(), []string{"email"})
	require.NoError(t, err)
	require.Len(t, customers, 2)
	assert.Equal(t, "jane@example.com", customers[0].Email)
	assert.Equal(t, "john@example.com", customers[1].Email)

	products, err := crm.ListProducts(ctx, a.Store(), []string{"name"})
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Phone", products[0].Name)
	assert.Equal(t, 5, products[0].Stock)
}

func TestRunJobNow(t *testing.T) {
	a := newTestApp(t)
	require.NoError(t, a.SeedData())

	require.NoError(t, a.RunJobNow(JobRestock))
	lines := readLines(t, a.Config().Jobs.RestockLog)
	require.Len(t, lines, 2)
	assert.Regexp(t, `^\d{2}/\d{2}/\d{4}-\d{2}:\d{2}:\d{2} - (Phone restocked to 15|Tablet restocked to 13)$`, lines[0])

	require.NoError(t, a.RunJobNow(JobReport))
	lines = readLines(t, a.Config().Jobs.ReportLog)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "Report: 2 customers, 0 orders, 0.00 revenue")

	require.NoError(t, a.RunJobNow(JobHeartbeat))
	lines = readLines(t, a.Config().Jobs.HeartbeatLog)
	assert.True(t, strings.HasSuffix(lines[0], " - heartbeat"))

	require.NoError(t, a.RunJobNow(JobReminder))

	assert.Error(t, a.RunJobNow("vacuum"))
}

func TestInitJobRegistersSchedules(t *testing.T) {
	a := newTestApp(t)
	a.appConfig.Jobs.HeartbeatCron = ""
	a.initJob()
	defer func() { <-a.sched.Stop().Done() }()

	assert.Len(t, a.Scheduler().Entries(), 3)
	assert.Len(t, a.jobs, 4)
}

func TestSqliteDSN(t *testing.T) {
	assert.Equal(t, ":memory:", sqliteDSN("", "/data"))
	assert.Equal(t, "/data/crm.db", sqliteDSN("crm", "/data"))
	assert.Equal(t, "/data/crm.db", sqliteDSN("crm.db", "/data"))
	assert.Equal(t, "/tmp/x.db", sqliteDSN("/tmp/x.db", "/data"))
}

func TestGetDatabaseRejectsUnknownType(t *testing.T) {
	_, err := getDatabase(config.DBConfig{Type: "oracle"}, t.TempDir())
	assert.Error(t, err)
}

func TestInitDbRecreatesTables(t *testing.T) {
	a := newTestApp(t)
	require.NoError(t, a.SeedData())
	a.InitDb()
	customers, err := crm.ListCustomers(context.Background(), a.Store(), nil)
	require.NoError(t, err)
	assert.Empty(t, customers)
}
