package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	invoicedomain "github.com/smallbiznis/billdesk/internal/invoice/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseItems(t *testing.T) {
	items, err := parseItems([]string{"Cement,350,10,bags,50", "Sand,1200.50,1.5,tons"})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "3550.00", invoicedomain.FormatAmount(items[0].LineTotal()))
	assert.True(t, items[1].WeightingRate.IsZero())

	_, err = parseItems([]string{"Cement,350"})
	assert.ErrorIs(t, err, invoicedomain.ErrInvalidInput)

	_, err = parseItems([]string{"Cement,abc,10,bags,50"})
	assert.ErrorIs(t, err, invoicedomain.ErrInvalidInput)

	_, err = parseItems(nil)
	assert.ErrorIs(t, err, invoicedomain.ErrEmptyInvoice)
}

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("DATABASE_TYPE", "sqlite")
	t.Setenv("DATABASE_PATH", filepath.Join(dir, "billing_app.db"))
	t.Setenv("INVOICE_SPOOL_DIR", filepath.Join(dir, "spool"))
	t.Setenv("INVOICE_OUTPUT_ROOT", "")
	t.Setenv("LOG_LEVEL", "error")
	return dir
}

func TestCreateAndStatement(t *testing.T) {
	dir := setupEnv(t)
	root := filepath.Join(dir, "invoices")

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out

	err := app.Run([]string{"billdesk", "--config-dir", dir, "--output-root", root,
		"create", "--name", "Ravi", "--address", "12 Market Rd", "--phone", "9998887777",
		"--item", "Cement,350,10,bags,50"})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	path := lines[0]
	assert.True(t, strings.HasPrefix(path, root+string(filepath.Separator)))
	assert.Contains(t, filepath.Base(path), "Invoice_Ravi_")
	assert.Equal(t, "Total Amount: 3550.00", lines[1])

	doc, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF-")))

	spool, err := os.ReadDir(filepath.Join(dir, "spool"))
	require.NoError(t, err)
	assert.Empty(t, spool)

	out.Reset()
	statement := filepath.Join(dir, "ravi.pdf")
	err = app.Run([]string{"billdesk", "--config-dir", dir, "statement", "--customer", "Ravi", "--out", statement})
	require.NoError(t, err)

	doc, err = os.ReadFile(statement)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF-")))
}

func TestCreate_EmptyItemRejected(t *testing.T) {
	dir := setupEnv(t)

	app := newApp()
	app.Writer = &bytes.Buffer{}
	err := app.Run([]string{"billdesk", "--config-dir", dir, "create", "--name", "Ravi", "--item", "Cement,350,0,bags,50"})
	assert.ErrorIs(t, err, invoicedomain.ErrInvalidInput)

	_, err = os.Stat(filepath.Join(dir, "invoices"))
	assert.True(t, os.IsNotExist(err))
}

func TestMenu_ExitImmediately(t *testing.T) {
	dir := setupEnv(t)

	var out bytes.Buffer
	app := newApp()
	app.Reader = strings.NewReader("2\n")
	app.Writer = &out

	require.NoError(t, app.Run([]string{"billdesk", "--config-dir", dir}))
	assert.Contains(t, out.String(), "Exiting...")
}

func TestCustomers_ListsStoredCustomersByPage(t *testing.T) {
	dir := setupEnv(t)
	root := filepath.Join(dir, "invoices")

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out

	for _, name := range []string{"Ravi", "Meena"} {
		err := app.Run([]string{"billdesk", "--config-dir", dir, "--output-root", root,
			"create", "--name", name, "--address", name + " Street", "--item", "Cement,350,10,bags,50"})
		require.NoError(t, err)
	}

	out.Reset()
	require.NoError(t, app.Run([]string{"billdesk", "--config-dir", dir, "customers", "--page-size", "1"}))
	first := out.String()
	assert.Contains(t, first, "Ravi Street")
	assert.NotContains(t, first, "Meena")

	idx := strings.Index(first, "--page-token ")
	require.NotEqual(t, -1, idx)
	token := strings.TrimSpace(first[idx+len("--page-token "):])

	out.Reset()
	require.NoError(t, app.Run([]string{"billdesk", "--config-dir", dir, "customers", "--page-size", "1", "--page-token", token}))
	assert.Contains(t, out.String(), "Meena Street")
	assert.NotContains(t, out.String(), "--page-token")
}
