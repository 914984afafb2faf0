package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"pingboard/internal/config"
	"pingboard/internal/poller"
	"pingboard/internal/render"
	"pingboard/internal/status"
	"pingboard/internal/widget"
)

var errSnapshotFailed = errors.New("snapshot fetch failed")

func newSnapshotCmd(configPath *string) *cobra.Command {
	var (
		port   int
		format string
	)

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Fetch the ping list once and print it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			query := ""
			if port > 0 {
				query = "port=" + strconv.Itoa(port)
			}
			return snapshot(cmd.Context(), cfg, query, format, cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "probe service port (defaults to default_port)")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text or html")
	return cmd
}

// snapshot runs a single fetch cycle and writes the outcome to out.
func snapshot(ctx context.Context, cfg config.Config, query, format string, out io.Writer) error {
	format = strings.ToLower(format)
	if format != "text" && format != "html" {
		return fmt.Errorf("unknown format %q", format)
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	locale := render.LocaleFromAcceptLanguage(envLanguage(), loc)
	view := &captureView{}
	ctrl := widget.New(
		poller.New(cfg.ResolveEndpoint(query), cfg.RequestTimeout.Duration),
		render.New(locale),
		view,
		widget.Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))},
	)
	ctrl.FetchAndRender(ctx)

	state := ctrl.State()
	fmt.Fprintf(out, "Endpoint: %s\n", cfg.ResolveEndpoint(query))
	fmt.Fprintf(out, "Status: %s\n", state.Label)
	if state.Class == status.ClassBad {
		return errSnapshotFailed
	}
	fmt.Fprintf(out, "Last successful fetch: %s\n\n", view.lastFetch)

	table := view.table
	switch format {
	case "html":
		html, err := table.HTML()
		if err != nil {
			return fmt.Errorf("render html: %w", err)
		}
		fmt.Fprintln(out, string(html))
	default:
		fmt.Fprintln(out, table.Text())
	}
	return nil
}

// captureView keeps the latest values the controller published.
type captureView struct {
	mu        sync.Mutex
	table     render.Table
	lastFetch string
}

func (v *captureView) SetEndpoint(string) {}

func (v *captureView) SetRows(table render.Table) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.table = table
}

func (v *captureView) SetStatus(string, string) {}

func (v *captureView) SetLastFetch(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lastFetch = text
}

// envLanguage turns a POSIX locale such as "de_DE.UTF-8" into a language tag.
func envLanguage() string {
	for _, key := range []string{"LC_ALL", "LC_TIME", "LANG"} {
		v := os.Getenv(key)
		if v == "" || v == "C" || v == "POSIX" {
			continue
		}
		if i := strings.IndexAny(v, ".@"); i >= 0 {
			v = v[:i]
		}
		return strings.ReplaceAll(v, "_", "-")
	}
	return ""
}
