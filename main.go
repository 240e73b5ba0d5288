package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

type CLI struct {
	EnvFile  string `help:"dotenv file with API credentials, ignored when missing" default:".env" type:"path"`
	LogLevel string `help:"log level" default:"info" enum:"debug,info,warn,error"`

	Generate  GenerateCmd  `cmd:"" default:"withargs" help:"extract slide text and generate a lecture preview"`
	Extract   ExtractCmd   `cmd:"" help:"extract slide text only"`
	Summarize SummarizeCmd `cmd:"" help:"write the human-readable summary of an existing preview"`
	Profiles  ProfilesCmd  `cmd:"" help:"list built-in profiles"`
}

func loadEnv(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load env file: %w", err)
	}

	return nil
}

// envFile finds --env-file in args without parsing them, so the file is
// loaded before kong resolves env tags.
func envFile(args []string) string {
	path := ".env"

	for i := 0; i < len(args); i++ {
		switch arg := args[i]; {
		case arg == "--":
			return path
		case arg == "--env-file" && i+1 < len(args):
			i++
			path = args[i]
		case strings.HasPrefix(arg, "--env-file="):
			path = strings.TrimPrefix(arg, "--env-file=")
		}
	}

	return path
}

func newParser(cli *CLI, options ...kong.Option) (*kong.Kong, error) {
	return kong.New(cli, append([]kong.Option{
		kong.Name("lecturepreview"),
		kong.Description("Generate a structured lecture preview from PDF slides with an LLM."),
		kong.UsageOnError(),
	}, options...)...)
}

func main() {
	level := &slog.LevelVar{}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	runCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cli := &CLI{}
	parser, err := newParser(cli,
		kong.Bind(logger),
		kong.BindTo(runCtx, (*context.Context)(nil)),
	)
	if err != nil {
		panic(err)
	}

	args := os.Args[1:]

	err = loadEnv(envFile(args))
	parser.FatalIfErrorf(err)

	ctx, err := parser.Parse(args)
	parser.FatalIfErrorf(err)

	err = level.UnmarshalText([]byte(cli.LogLevel))
	ctx.FatalIfErrorf(err)

	// Call the Run() method of the selected parsed command.
	err = ctx.Run()
	ctx.FatalIfErrorf(err)
}
