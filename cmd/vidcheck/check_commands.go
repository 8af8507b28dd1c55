package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"vidcheck/internal/api"
	"vidcheck/internal/config"
	"vidcheck/internal/pipeline"
	"vidcheck/internal/triggers"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Collect evidence and ask the oracle for a verdict",
	}

	checkCmd.AddCommand(newCheckTextCommand(ctx))
	checkCmd.AddCommand(newCheckURLCommand(ctx))
	checkCmd.AddCommand(newCheckVideoCommand(ctx))

	return checkCmd
}

func newCheckTextCommand(ctx *commandContext) *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "text [file|-]",
		Short: "Check a written claim read from a file, stdin, or --message",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := validText([]byte(message))
			if len(args) == 1 {
				data, err := readTextArg(cmd.InOrStdin(), args[0])
				if err != nil {
					return err
				}
				text = data
			}
			if strings.TrimSpace(text) == "" {
				return errors.New("no text to check: pass a file, '-' for stdin, or --message")
			}
			return runCheck(cmd, ctx, pipeline.Input{Kind: pipeline.KindText, Text: text})
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "Claim text to check")
	return cmd
}

func newCheckURLCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "url <url>",
		Short: "Download a video and check it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, ctx, pipeline.Input{Kind: pipeline.KindURL, URL: args[0]})
		},
	}
}

func newCheckVideoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "video <file>",
		Short: "Check a local video file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve video path: %w", err)
			}
			return runCheck(cmd, ctx, pipeline.Input{Kind: pipeline.KindVideo, VideoPath: path})
		},
	}
}

func readTextArg(stdin io.Reader, arg string) (string, error) {
	if arg == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return validText(data), nil
	}
	path, err := config.ExpandPath(arg)
	if err != nil {
		return "", fmt.Errorf("resolve text path: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return validText(data), nil
}

// validText drops bytes that are not valid UTF-8.
func validText(data []byte) string {
	return strings.ToValidUTF8(string(data), "")
}

// runCheck executes one pipeline run and renders its report. A failed run
// still prints the partial report before the error is returned.
func runCheck(cmd *cobra.Command, ctx *commandContext, in pipeline.Input) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if err := cfg.RequireOracle(); err != nil {
		return err
	}
	logger, err := ctx.newLogger("cli-check")
	if err != nil {
		return err
	}
	list, err := triggers.Load(cfg.Triggers.Path)
	if err != nil {
		return fmt.Errorf("load trigger words: %w", err)
	}

	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	live, err := pipeline.NewLive(signalCtx, cfg, logger, ctx.liveOptions...)
	if err != nil {
		return err
	}
	defer live.Close()

	runner := pipeline.NewRunner(live, list, logger)
	report, runErr := runner.Run(signalCtx, in)
	if report != nil {
		if ctx.jsonOutput() {
			if err := writeJSON(cmd, api.FromReport(report)); err != nil {
				return err
			}
		} else {
			printReport(newPrinter(cmd.OutOrStdout()), report)
		}
	}
	return runErr
}
