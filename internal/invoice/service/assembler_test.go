package service

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/billdesk/internal/clock"
	"github.com/smallbiznis/billdesk/internal/config"
	"github.com/smallbiznis/billdesk/internal/invoice/domain"
	"github.com/smallbiznis/billdesk/internal/invoice/render"
	"github.com/smallbiznis/billdesk/internal/paymentcode"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const spoolDir = "/spool"

var issuedAt = time.Date(2024, time.July, 3, 14, 5, 9, 0, time.UTC)

type mockRenderer struct {
	mock.Mock
	fs afero.Fs

	profile config.Profile
	png     []byte
}

func (m *mockRenderer) Render(inv domain.Invoice, profile config.Profile, code render.PaymentImage) ([]byte, error) {
	args := m.Called(inv, code.Name)
	// the spooled payment code is readable while rendering
	b, err := io.ReadAll(code.Source)
	if err != nil || len(b) == 0 {
		return nil, errors.New("payment code not readable")
	}
	m.profile, m.png = profile, b
	entries, _ := afero.ReadDir(m.fs, spoolDir)
	if len(entries) != 1 {
		return nil, errors.New("payment code not spooled")
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type fixture struct {
	fs        afero.Fs
	clock     *clock.FakeClock
	assembler *Assembler
}

func newFixture(t *testing.T, r render.Renderer, profile config.Profile) fixture {
	t.Helper()
	fs := afero.NewMemMapFs()
	clk := clock.NewFakeClock(issuedAt)
	holder := config.StaticProfile(profile)
	if r == nil {
		r = render.NewRenderer(render.Params{Log: zap.NewNop()})
	}
	if m, ok := r.(*mockRenderer); ok {
		m.fs = fs
	}
	a := NewAssembler(Params{
		Config:   config.Config{SpoolDir: spoolDir},
		Profile:  holder,
		FS:       fs,
		Clock:    clk,
		Renderer: r,
		Log:      zap.NewNop(),
	})
	return fixture{fs: fs, clock: clk, assembler: a}
}

func ravi() domain.CustomerRecord {
	return domain.CustomerRecord{Name: "Ravi", Address: "12 Market Rd", Phone: "9998887777"}
}

func cement() []domain.LineItem {
	return []domain.LineItem{{
		ItemName:      "Cement",
		UnitPrice:     decimal.RequireFromString("350.00"),
		Quantity:      decimal.RequireFromString("10"),
		Unit:          "bags",
		WeightingRate: decimal.RequireFromString("50.00"),
	}}
}

func assertSpoolEmpty(t *testing.T, fs afero.Fs) {
	t.Helper()
	entries, err := afero.ReadDir(fs, spoolDir)
	if err != nil {
		return
	}
	assert.Empty(t, entries)
}

func TestAssemble_RaviCement(t *testing.T) {
	f := newFixture(t, nil, config.DefaultProfile())

	res, err := f.assembler.Assemble(context.Background(), ravi(), cement(), "invoices")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("invoices", "2024-07", "Invoice_Ravi_20240703140509.pdf"), res.Path)
	assert.Equal(t, "3550.00", domain.FormatAmount(res.Invoice.GrandTotal()))
	assert.Equal(t, issuedAt, res.Invoice.IssuedAt)

	doc, err := afero.ReadFile(f.fs, res.Path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF-")))

	assertSpoolEmpty(t, f.fs)
}

func TestAssemble_ExistingMonthBucket(t *testing.T) {
	f := newFixture(t, nil, config.DefaultProfile())
	require.NoError(t, f.fs.MkdirAll(filepath.Join("invoices", "2024-07"), 0o755))

	res, err := f.assembler.Assemble(context.Background(), ravi(), cement(), "invoices")
	require.NoError(t, err)

	ok, err := afero.Exists(f.fs, res.Path)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAssemble_Deterministic(t *testing.T) {
	f := newFixture(t, nil, config.DefaultProfile())

	a, err := f.assembler.Assemble(context.Background(), ravi(), cement(), "a")
	require.NoError(t, err)
	b, err := f.assembler.Assemble(context.Background(), ravi(), cement(), "b")
	require.NoError(t, err)

	docA, err := afero.ReadFile(f.fs, a.Path)
	require.NoError(t, err)
	docB, err := afero.ReadFile(f.fs, b.Path)
	require.NoError(t, err)
	assert.Equal(t, docA, docB)
}

func TestAssemble_EmptyInvoiceHasNoSideEffects(t *testing.T) {
	r := &mockRenderer{}
	f := newFixture(t, r, config.DefaultProfile())

	_, err := f.assembler.Assemble(context.Background(), ravi(), nil, "invoices")
	assert.ErrorIs(t, err, domain.ErrEmptyInvoice)

	for _, dir := range []string{"invoices", spoolDir} {
		ok, err := afero.Exists(f.fs, dir)
		require.NoError(t, err)
		assert.False(t, ok, dir)
	}
	r.AssertNotCalled(t, "Render", mock.Anything, mock.Anything)
}

func TestAssemble_InvalidInput(t *testing.T) {
	f := newFixture(t, &mockRenderer{}, config.DefaultProfile())

	items := cement()
	items[0].Quantity = decimal.Zero
	_, err := f.assembler.Assemble(context.Background(), ravi(), items, "invoices")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.assembler.Assemble(context.Background(), domain.CustomerRecord{Name: "  "}, cement(), "invoices")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAssemble_NameWithoutFileNameCharacters(t *testing.T) {
	r := &mockRenderer{}
	f := newFixture(t, r, config.DefaultProfile())

	for _, name := range []string{"???", "..."} {
		customer := ravi()
		customer.Name = name
		_, err := f.assembler.Assemble(context.Background(), customer, cement(), "invoices")
		assert.ErrorIs(t, err, domain.ErrInvalidInput, name)
	}

	for _, dir := range []string{"invoices", spoolDir} {
		ok, err := afero.Exists(f.fs, dir)
		require.NoError(t, err)
		assert.False(t, ok, dir)
	}
	r.AssertNotCalled(t, "Render", mock.Anything, mock.Anything)
}

func TestAssemble_PrintedPayeeMatchesEncodedPayee(t *testing.T) {
	profile := config.DefaultProfile()
	profile.Payment.PayeeID = "6300927946@pthdfc"
	r := &mockRenderer{}
	r.On("Render", mock.Anything, paymentCodeName).Return([]byte("%PDF-fake"), nil)
	f := newFixture(t, r, profile)

	_, err := f.assembler.Assemble(context.Background(), ravi(), cement(), "invoices")
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(r.png))
	require.NoError(t, err)
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	require.NoError(t, err)
	decoded, err := qrcode.NewQRCodeReader().Decode(bmp, nil)
	require.NoError(t, err)

	assert.Equal(t, profile, r.profile)
	assert.Equal(t, paymentcode.BuildURI(paymentcode.Payee{
		Scheme:   r.profile.Payment.Scheme,
		ID:       r.profile.Payment.PayeeID,
		Name:     r.profile.Payment.PayeeName,
		Currency: r.profile.Payment.Currency,
	}), decoded.GetText())
}

func TestAssemble_SpoolRemovedWhenRenderFails(t *testing.T) {
	r := &mockRenderer{}
	r.On("Render", mock.Anything, paymentCodeName).Return(nil, errors.New("layout exploded"))
	f := newFixture(t, r, config.DefaultProfile())

	_, err := f.assembler.Assemble(context.Background(), ravi(), cement(), "invoices")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "layout exploded")

	assertSpoolEmpty(t, f.fs)
	ok, err := afero.Exists(f.fs, "invoices")
	require.NoError(t, err)
	assert.False(t, ok)
	r.AssertExpectations(t)
}

func TestAssemble_PassesComputedInvoiceToRenderer(t *testing.T) {
	r := &mockRenderer{}
	r.On("Render", mock.MatchedBy(func(inv domain.Invoice) bool {
		return inv.Customer.Name == "Ravi" &&
			inv.IssuedAt.Equal(issuedAt) &&
			domain.FormatAmount(inv.GrandTotal()) == "3550.00"
	}), paymentCodeName).Return([]byte("%PDF-fake"), nil)
	f := newFixture(t, r, config.DefaultProfile())

	customer := ravi()
	customer.Name = "  Ravi "
	res, err := f.assembler.Assemble(context.Background(), customer, cement(), "invoices")
	require.NoError(t, err)

	doc, err := afero.ReadFile(f.fs, res.Path)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-fake"), doc)
	assertSpoolEmpty(t, f.fs)
	r.AssertExpectations(t)
}

func TestAssemble_SameSecondCollisionNeverOverwrites(t *testing.T) {
	r := &mockRenderer{}
	r.On("Render", mock.Anything, paymentCodeName).Return([]byte("first"), nil).Once()
	r.On("Render", mock.Anything, paymentCodeName).Return([]byte("second"), nil).Once()
	f := newFixture(t, r, config.DefaultProfile())

	first, err := f.assembler.Assemble(context.Background(), ravi(), cement(), "invoices")
	require.NoError(t, err)

	_, err = f.assembler.Assemble(context.Background(), ravi(), cement(), "invoices")
	assert.ErrorIs(t, err, domain.ErrInvoiceCollision)

	doc, err := afero.ReadFile(f.fs, first.Path)
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), doc)

	f.clock.Advance(time.Second)
	r.On("Render", mock.Anything, paymentCodeName).Return([]byte("third"), nil).Once()
	third, err := f.assembler.Assemble(context.Background(), ravi(), cement(), "invoices")
	require.NoError(t, err)
	assert.NotEqual(t, first.Path, third.Path)
}

func TestAssemble_EncodingCapacityExceeded(t *testing.T) {
	profile := config.DefaultProfile()
	profile.Payment.MaxVersion = 1
	profile.Payment.PayeeName = strings.Repeat("Construction ", 10)
	r := &mockRenderer{}
	f := newFixture(t, r, profile)

	_, err := f.assembler.Assemble(context.Background(), ravi(), cement(), "invoices")
	assert.ErrorIs(t, err, domain.ErrEncodingCapacityExceeded)

	ok, _ := afero.Exists(f.fs, spoolDir)
	assert.False(t, ok)
	r.AssertNotCalled(t, "Render", mock.Anything, mock.Anything)
}

func TestAssemble_IOFailure(t *testing.T) {
	r := &mockRenderer{}
	f := newFixture(t, r, config.DefaultProfile())
	f.assembler.fs = afero.NewReadOnlyFs(afero.NewMemMapFs())

	_, err := f.assembler.Assemble(context.Background(), ravi(), cement(), "invoices")
	assert.ErrorIs(t, err, domain.ErrIOFailure)
}

func TestAssemble_CanceledContext(t *testing.T) {
	f := newFixture(t, &mockRenderer{}, config.DefaultProfile())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.assembler.Assemble(ctx, ravi(), cement(), "invoices")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDiscard(t *testing.T) {
	f := newFixture(t, nil, config.DefaultProfile())
	res, err := f.assembler.Assemble(context.Background(), ravi(), cement(), "invoices")
	require.NoError(t, err)

	require.NoError(t, f.assembler.Discard(res.Path))
	ok, _ := afero.Exists(f.fs, res.Path)
	assert.False(t, ok)

	assert.NoError(t, f.assembler.Discard(res.Path))
}
