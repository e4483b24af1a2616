package commands_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aoiro-dev/aoiro/internal/accounts"
	"github.com/aoiro-dev/aoiro/internal/commands"
	"github.com/aoiro-dev/aoiro/internal/common"
	"github.com/aoiro-dev/aoiro/internal/config"
)

func runAoiro(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := commands.NewRootCommand()
	var out, logs bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&logs)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// newBooks initializes books in a temp dir and returns the config path.
func newBooks(t *testing.T) string {
	t.Helper()
	for _, env := range []string{
		config.EnvDBDriver, config.EnvDBDSN, config.EnvUser,
		config.EnvYear, config.EnvLogLevel, config.EnvLogFormat,
	} {
		t.Setenv(env, "")
	}

	dir := t.TempDir()
	_, err := runAoiro(t, "init", dir, "--name", "Test Biz")
	require.NoError(t, err)
	return filepath.Join(dir, config.FileName)
}

func TestInit_Config(t *testing.T) {
	cfgPath := newBooks(t)

	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	contents := string(data)
	assert.Contains(t, contents, "name: Test Biz")
	assert.Contains(t, contents, "driver: sqlite3")

	_, err = os.Stat(filepath.Join(filepath.Dir(cfgPath), "aoiro.db"))
	assert.NoError(t, err, "database is created beside the config")
}

func TestInit_Accounts(t *testing.T) {
	cfgPath := newBooks(t)

	out, err := runAoiro(t, "accounts", "list", "--config", cfgPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, len(accounts.DefaultChart())+1, "header plus the default chart")
	assert.Contains(t, out, "現金")
	assert.Contains(t, out, "元入金")
}

func TestInit_RequiresName(t *testing.T) {
	_, err := runAoiro(t, "init", t.TempDir())
	require.Error(t, err, "init without --name should fail")
}

func TestInit_RefusesExisting(t *testing.T) {
	cfgPath := newBooks(t)
	_, err := runAoiro(t, "init", filepath.Dir(cfgPath), "--name", "Again")
	assert.Error(t, err)
}

func TestMissingConfig(t *testing.T) {
	_, err := runAoiro(t, "accounts", "list", "--config", filepath.Join(t.TempDir(), "none.yaml"))
	require.Error(t, err)
	assert.Contains(t, common.UserMessage(err), "aoiro init")
}

func TestAccountsAdd(t *testing.T) {
	cfgPath := newBooks(t)

	out, err := runAoiro(t, "accounts", "add", "研修費", "--type", "expense", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "研修費")

	_, err = runAoiro(t, "accounts", "add", "研修費", "--type", "EXPENSE", "--config", cfgPath)
	assert.ErrorIs(t, err, common.ErrDuplicateAccount)

	_, err = runAoiro(t, "accounts", "add", "謎", "--type", "OTHER", "--config", cfgPath)
	assert.ErrorIs(t, err, common.ErrUnknownAccountType)
}

func TestAccountsExportImport(t *testing.T) {
	cfgPath := newBooks(t)
	file := filepath.Join(t.TempDir(), "chart.csv")

	_, err := runAoiro(t, "accounts", "export", file, "--config", cfgPath)
	require.NoError(t, err)

	out, err := runAoiro(t, "accounts", "import", file, "--config", cfgPath, "--user", "someone-else")
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 35 accounts")
}

func TestUserFlagScopesRecords(t *testing.T) {
	cfgPath := newBooks(t)

	out, err := runAoiro(t, "accounts", "list", "--config", cfgPath, "--user", "stranger")
	require.NoError(t, err)
	assert.NotContains(t, out, "現金")
}

func TestWorkflow(t *testing.T) {
	cfgPath := newBooks(t)
	run := func(args ...string) (string, error) {
		return runAoiro(t, append(args, "--config", cfgPath, "--year", "2024")...)
	}

	out, err := run("opening", "set", "現金", "100000")
	require.NoError(t, err)
	assert.Contains(t, out, "100,000")
	assert.Contains(t, out, "借方")

	out, err = run("journal", "add", "--date", "2024-03-01", "--description", "A社",
		"--debit", "現金=30000", "--credit", "売上高=30000")
	require.NoError(t, err)
	id := strings.TrimSpace(strings.TrimPrefix(out, "Recorded "))
	require.NotEmpty(t, id)

	_, err = run("journal", "add", "--date", "2024-03-02", "--description", "ずれ",
		"--debit", "現金=100", "--credit", "売上高=99")
	assert.ErrorIs(t, err, common.ErrUnbalanced)

	_, err = run("journal", "add", "--date", "2024-03-02", "--description", "x",
		"--debit", "存在しない=100", "--credit", "売上高=100")
	assert.ErrorIs(t, err, common.ErrNotFound)

	out, err = run("ledger", "現金")
	require.NoError(t, err)
	assert.Contains(t, out, "期首残高")
	assert.Contains(t, out, "130,000")

	out, err = run("journal", "show", id)
	require.NoError(t, err)
	assert.Contains(t, out, "A社")
	assert.Contains(t, out, "30,000")

	out, err = run("journal", "edit", id, "--debit", "現金=40000", "--credit", "売上高=40000")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated")

	out, err = run("journal", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "2024-03-01")
	assert.Contains(t, out, "40,000")

	_, err = run("assets", "add", "PC", "--acquired", "2024-04-01", "--cost", "480000", "--life", "4")
	require.NoError(t, err)

	out, err = run("depreciate", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "dry run")

	out, err = run("depreciate")
	require.NoError(t, err)
	assert.Contains(t, out, "120,000")

	_, err = run("depreciate")
	require.ErrorIs(t, err, common.ErrAlreadyRun)
	assert.Contains(t, common.UserMessage(err), "既に計上済み")

	out, err = run("statements", "income")
	require.NoError(t, err)
	assert.Contains(t, out, "所得金額")
	assert.NotContains(t, out, "貸借対照表")

	out, err = run("statements")
	require.NoError(t, err)
	assert.Contains(t, out, "貸借対照表")
	assert.Contains(t, out, "当期純利益")

	out, err = run("reports", "monthly")
	require.NoError(t, err)
	assert.Contains(t, out, "3月")

	out, err = run("reports", "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "-80,000")

	_, err = run("reports", "payees")
	require.NoError(t, err)

	book := filepath.Join(t.TempDir(), "2024.xlsx")
	_, err = run("export", book)
	require.NoError(t, err)
	_, err = os.Stat(book)
	assert.NoError(t, err)

	out, err = run("close")
	require.NoError(t, err)
	assert.Contains(t, out, "2025年度 期首残高")

	out, err = runAoiro(t, "opening", "list", "--config", cfgPath, "--year", "2025")
	require.NoError(t, err)
	assert.Contains(t, out, "元入金")
	assert.Contains(t, out, "現金")

	out, err = run("journal", "delete", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted")

	_, err = run("journal", "show", id)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestJournalImportExport(t *testing.T) {
	cfgPath := newBooks(t)
	dir := t.TempDir()
	in := filepath.Join(dir, "in.csv")
	require.NoError(t, os.WriteFile(in, []byte(
		"transaction,date,description,account,debit,credit\n"+
			"1,2024-01-05,家賃,地代家賃,\"50,000\",\n"+
			"1,2024-01-05,家賃,普通預金,,50000\n"), 0o644))

	out, err := runAoiro(t, "journal", "import", in, "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 transactions")

	out, err = runAoiro(t, "journal", "export", "--config", cfgPath, "--year", "2024")
	require.NoError(t, err)
	assert.Contains(t, out, "地代家賃")
	assert.Contains(t, out, "50000")
}

func TestVersion(t *testing.T) {
	out, err := runAoiro(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "commit:")
}
