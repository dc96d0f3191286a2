package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bft-labs/lockstep/internal/domain"
	"github.com/bft-labs/lockstep/internal/ports"
)

// DefaultUpdates is the number of update exchanges per driver run.
const DefaultUpdates = 5

// DriverConfig contains configuration for one driver run.
type DriverConfig struct {
	// StreamURL is the WebSocket URL of the streaming endpoint.
	StreamURL string

	// UploadURL is the URL of the file transfer endpoint.
	UploadURL string

	// Updates is the number of exchanges after Start (N).
	Updates int

	// FilePath is the local file submitted after the session ends.
	// Empty skips the transfer.
	FilePath string
}

// Report summarizes one driver run.
type Report struct {
	// Responses holds every server message received, in order.
	Responses []string

	// Truncated is true when the session ended before Updates exchanges.
	Truncated bool

	// Transfer is the endpoint's reply, nil when no transfer was made.
	Transfer *ports.TransferReceipt
}

// Exchanges returns the number of completed receive/send iterations.
func (r Report) Exchanges() int {
	return len(r.Responses)
}

// Driver runs one streaming session to completion, then one file transfer.
// The two never overlap.
type Driver struct {
	config   DriverConfig
	dialer   ports.SessionDialer
	transfer ports.TransferClient
	out      io.Writer
	logger   ports.Logger
}

// NewDriver creates a driver. Server messages and the transfer reply are
// printed to out.
func NewDriver(config DriverConfig, dialer ports.SessionDialer, transfer ports.TransferClient, out io.Writer, logger ports.Logger) *Driver {
	if config.Updates <= 0 {
		config.Updates = DefaultUpdates
	}
	if out == nil {
		out = io.Discard
	}
	return &Driver{
		config:   config,
		dialer:   dialer,
		transfer: transfer,
		out:      out,
		logger:   logger,
	}
}

// Run executes the session and then the transfer.
// A session cut short by the server is not an error: the report is marked
// truncated and the transfer still runs. A failed dial aborts the run.
func (d *Driver) Run(ctx context.Context) (Report, error) {
	var report Report

	if err := d.stream(ctx, &report); err != nil {
		return report, err
	}

	if d.config.FilePath == "" {
		return report, nil
	}
	receipt, err := d.upload(ctx)
	if receipt.StatusCode != 0 {
		report.Transfer = &receipt
	}
	return report, err
}

// stream performs Start followed by Updates receive/print/send iterations.
func (d *Driver) stream(ctx context.Context, report *Report) error {
	conn, err := d.dialer.Dial(ctx, d.config.StreamURL)
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	defer conn.Close()

	sent := domain.Start()
	if err := conn.WriteText(ctx, domain.FormatMessage(sent)); err != nil {
		return d.interrupted(report, err)
	}

	for i := 0; i < d.config.Updates; i++ {
		text, err := conn.ReadText(ctx)
		if err != nil {
			return d.interrupted(report, err)
		}

		fmt.Fprintf(d.out, "Response: %s\n", text)
		report.Responses = append(report.Responses, text)
		d.check(sent, text)

		sent = domain.Update(i)
		if err := conn.WriteText(ctx, domain.FormatMessage(sent)); err != nil {
			return d.interrupted(report, err)
		}
	}

	d.logger.Info("session complete",
		ports.Int("exchanges", report.Exchanges()),
		ports.String("url", d.config.StreamURL),
	)
	return nil
}

// interrupted turns connection loss into a truncated report.
func (d *Driver) interrupted(report *Report, err error) error {
	if !errors.Is(err, domain.ErrConnClosed) {
		return fmt.Errorf("session: %w", err)
	}
	report.Truncated = true
	d.logger.Warn("session ended early",
		ports.Int("exchanges", report.Exchanges()),
		ports.Int("expected", d.config.Updates),
		ports.Err(err),
	)
	return nil
}

// check logs replies that do not acknowledge the message just sent.
func (d *Driver) check(sent domain.Message, text string) {
	reply, err := domain.ParseServerMessage(text)
	if err != nil {
		d.logger.Warn("unexpected reply", ports.String("reply", text), ports.Err(err))
		return
	}
	if want := domain.FormatMessage(sent); reply.Text != want {
		d.logger.Warn("reply out of step",
			ports.String("sent", want),
			ports.String("acknowledged", reply.Text),
		)
	}
}

func (d *Driver) upload(ctx context.Context) (ports.TransferReceipt, error) {
	f, err := os.Open(d.config.FilePath)
	if err != nil {
		return ports.TransferReceipt{}, fmt.Errorf("open transfer file: %w", err)
	}
	defer f.Close()

	receipt, err := d.transfer.Upload(ctx, d.config.UploadURL, filepath.Base(d.config.FilePath), f)
	if receipt.StatusCode != 0 {
		fmt.Fprintf(d.out, "Server response: %s\n", receipt.Body)
	}
	if err != nil {
		return receipt, fmt.Errorf("transfer %s: %w", d.config.FilePath, err)
	}
	return receipt, nil
}
