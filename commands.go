package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/melkeydev/datadesk/api"
	"github.com/melkeydev/datadesk/dashboard"
	"github.com/melkeydev/datadesk/mcp"
	"github.com/melkeydev/datadesk/telemetry"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the record and table HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the dashboard commands as MCP tools over stdio",
	Args:  cobra.NoArgs,
	RunE:  runMCP,
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Print row counts, a chart and a preview of every table",
	Args:  cobra.NoArgs,
	RunE:  runDashboard,
}

var uploadCmd = &cobra.Command{
	Use:   "upload <table> <file>",
	Short: "Create a table from a .csv or .xlsx file and load its rows",
	Args:  cobra.ExactArgs(2),
	RunE:  runUpload,
}

var dropCmd = &cobra.Command{
	Use:   "drop <table>",
	Short: "Drop a table by name",
	Args:  cobra.ExactArgs(1),
	RunE:  runDrop,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	addr := a.cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.NewServer(a.svc, a.logger, a.cfg.Database.Timeout).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		a.logger.Error("server error", "error", err)
		telemetry.CaptureError("serve", err)
		return err
	}
	return nil
}

func runMCP(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	s := server.NewMCPServer(
		"datadesk",
		version,
		server.WithToolCapabilities(false),
		server.WithLogging(),
	)

	mcp.RegisterTools(s, a.svc)

	// Start the stdio server
	if err := server.ServeStdio(s); err != nil {
		a.logger.Error("mcp server error", "error", err)
		return err
	}
	return nil
}

// runDashboard renders each section on its own; a failing section is
// reported and the rest still print.
func runDashboard(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()

	counts, err := a.svc.TableCounts(ctx)
	if err != nil {
		fmt.Fprintf(out, "Error counting rows: %v\n", err)
	} else {
		fmt.Fprintln(out, dashboard.RenderCounts(counts))
	}

	for _, c := range counts {
		rows, err := a.svc.Preview(ctx, c.Name, dashboard.DefaultPreviewLimit)
		if err != nil {
			fmt.Fprintf(out, "Could not preview %s: %v\n", c.Name, err)
			continue
		}
		fmt.Fprintln(out, dashboard.RenderPreview(c.Name, rows))
	}

	stats, err := a.svc.Stats(ctx)
	if err != nil {
		fmt.Fprintf(out, "Error computing stats: %v\n", err)
		return nil
	}
	fmt.Fprintln(out, dashboard.RenderStats(stats))
	return nil
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.svc.UploadFile(ctx, args[0], args[1])
	if err != nil {
		telemetry.CaptureError("upload", err)
		return fmt.Errorf("failed to load %s into %s: %w", args[1], args[0], err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Table %s created with definition:\n%s\n%d rows loaded\n", res.Table, res.DDL, res.Rows)
	return nil
}

func runDrop(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.svc.Drop(ctx, args[0]); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", args[0], err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Table %s dropped\n", args[0])
	return nil
}
