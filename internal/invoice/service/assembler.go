package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/smallbiznis/billdesk/internal/clock"
	"github.com/smallbiznis/billdesk/internal/config"
	"github.com/smallbiznis/billdesk/internal/invoice/domain"
	"github.com/smallbiznis/billdesk/internal/invoice/format"
	"github.com/smallbiznis/billdesk/internal/invoice/render"
	"github.com/smallbiznis/billdesk/internal/paymentcode"
	"github.com/smallbiznis/billdesk/pkg/log/ctxlogger"
	"github.com/spf13/afero"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// paymentCodeName is the image name inside the document. It is fixed so the
// document does not depend on the spool file name.
const paymentCodeName = "payment-code"

type Params struct {
	fx.In

	Config   config.Config
	Profile  *config.ProfileHolder
	FS       afero.Fs
	Clock    clock.Clock
	Renderer render.Renderer
	Log      *zap.Logger
}

// Result is an assembled invoice and the path its document was written to.
type Result struct {
	Path    string
	Invoice domain.Invoice
}

type Assembler struct {
	fs       afero.Fs
	clock    clock.Clock
	renderer render.Renderer
	profile  *config.ProfileHolder
	log      *zap.Logger

	spoolDir     string
	fileTemplate string
}

func NewAssembler(p Params) *Assembler {
	return &Assembler{
		fs:       p.FS,
		clock:    p.Clock,
		renderer: p.Renderer,
		profile:  p.Profile,
		log:      p.Log.Named("invoice.assembler"),

		spoolDir:     p.Config.SpoolDir,
		fileTemplate: format.DefaultFileNameTemplate,
	}
}

// Assemble validates the input, renders the invoice and writes the document
// to <outputRoot>/<YYYY-MM>/Invoice_<name>_<YYYYMMDDHHMMSS>.pdf. It never
// overwrites an existing document.
func (a *Assembler) Assemble(ctx context.Context, customer domain.CustomerRecord, items []domain.LineItem, outputRoot string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	customer = customer.Normalize()
	if err := domain.ValidateInvoice(customer, items); err != nil {
		return Result{}, err
	}

	inv := domain.Invoice{
		Customer: customer,
		Items:    append([]domain.LineItem(nil), items...),
		IssuedAt: a.clock.Now(),
	}

	name, err := format.FormatFileName(a.fileTemplate, inv.Customer.Name, inv.IssuedAt)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	// one read, so the printed payee always matches the encoded one
	profile := a.profile.Get()
	code, err := paymentcode.NewGenerator(profile.Payment.MaxVersion).Encode(paymentcode.BuildURI(paymentcode.Payee{
		Scheme:   profile.Payment.Scheme,
		ID:       profile.Payment.PayeeID,
		Name:     profile.Payment.PayeeName,
		Currency: profile.Payment.Currency,
	}))
	if err != nil {
		if errors.Is(err, paymentcode.ErrCapacityExceeded) {
			return Result{}, fmt.Errorf("%w: %v", domain.ErrEncodingCapacityExceeded, err)
		}
		return Result{}, err
	}

	doc, err := a.render(inv, profile, code.PNG)
	if err != nil {
		return Result{}, err
	}

	path, err := a.write(filepath.Join(outputRoot, inv.MonthBucket()), name, doc)
	if err != nil {
		return Result{}, err
	}

	ctxlogger.WithContext(ctx, a.log).Info("invoice assembled",
		zap.String("invoice", inv.ID()),
		zap.String("path", path),
		zap.String("grand_total", domain.FormatAmount(inv.GrandTotal())),
		zap.Int("items", len(inv.Items)),
	)
	return Result{Path: path, Invoice: inv}, nil
}

// render spools the payment code to a temporary file, hands it to the
// renderer and removes it on every path.
func (a *Assembler) render(inv domain.Invoice, profile config.Profile, png []byte) ([]byte, error) {
	if err := a.fs.MkdirAll(a.spoolDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: spool dir: %v", domain.ErrIOFailure, err)
	}

	spool := filepath.Join(a.spoolDir, "paymentcode-"+uuid.NewString()+".png")
	if err := afero.WriteFile(a.fs, spool, png, 0o600); err != nil {
		_ = a.fs.Remove(spool)
		return nil, fmt.Errorf("%w: spool payment code: %v", domain.ErrIOFailure, err)
	}
	defer func() {
		if err := a.fs.Remove(spool); err != nil && !errors.Is(err, os.ErrNotExist) {
			a.log.Warn("failed to remove spooled payment code", zap.String("path", spool), zap.Error(err))
		}
	}()

	f, err := a.fs.Open(spool)
	if err != nil {
		return nil, fmt.Errorf("%w: open spooled payment code: %v", domain.ErrIOFailure, err)
	}
	defer f.Close()

	return a.renderer.Render(inv, profile, render.PaymentImage{Name: paymentCodeName, Source: f})
}

func (a *Assembler) write(dir, name string, doc []byte) (string, error) {
	if err := a.fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: month bucket: %v", domain.ErrIOFailure, err)
	}
	path := filepath.Join(dir, name)

	f, err := a.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("%w: %s", domain.ErrInvoiceCollision, path)
		}
		return "", fmt.Errorf("%w: create document: %v", domain.ErrIOFailure, err)
	}

	if err := writeAll(f, doc); err != nil {
		_ = a.fs.Remove(path)
		return "", fmt.Errorf("%w: write document: %v", domain.ErrIOFailure, err)
	}
	return path, nil
}

func writeAll(f afero.File, doc []byte) error {
	n, err := f.Write(doc)
	if err == nil && n < len(doc) {
		err = io.ErrShortWrite
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

// Discard removes a document produced by Assemble. A missing file is not an
// error.
func (a *Assembler) Discard(path string) error {
	if err := a.fs.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: discard document: %v", domain.ErrIOFailure, err)
	}
	return nil
}
