package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/lewisedginton/gemini_relay_bot/internal/server"
	"github.com/lewisedginton/gemini_relay_bot/pkg/health/checkers"
)

// HealthCommand probes a running bot's readiness endpoint, for container health checks.
func HealthCommand() *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "Check readiness of a running bot through its ops server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "url",
				Usage: "Readiness URL (default http://localhost:$OPS_PORT" + server.ReadinessPath + ")",
			},
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				EnvVars: []string{"OPS_PORT"},
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Value: 5 * time.Second,
			},
		},
		Action: healthAction,
	}
}

func healthAction(ctx *cli.Context) error {
	url := ctx.String("url")
	if url == "" {
		url = fmt.Sprintf("http://localhost:%d%s", ctx.Int("port"), server.ReadinessPath)
	}

	checker := checkers.NewHTTPChecker(url, "ops")
	checkCtx, cancel := context.WithTimeout(ctx.Context, ctx.Duration("timeout"))
	defer cancel()

	if err := checker.Check(checkCtx); err != nil {
		return fmt.Errorf("not ready: %w", err)
	}
	fmt.Fprintln(ctx.App.Writer, "ready")
	return nil
}
