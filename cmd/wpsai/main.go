package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/AaronAust1n/wps-addin/config"
	ctxpkg "github.com/AaronAust1n/wps-addin/context"
	"github.com/AaronAust1n/wps-addin/gateway"
	"github.com/AaronAust1n/wps-addin/llm"
	wpslogger "github.com/AaronAust1n/wps-addin/logger"
	"github.com/AaronAust1n/wps-addin/metrics"
	"github.com/AaronAust1n/wps-addin/transport"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/samber/lo"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	opNames := strings.Join(lo.Map(llm.OperationKinds, func(k llm.OperationKind, _ int) string {
		return k.String()
	}), ", ")

	var (
		configPath  = flag.String("config", "", "Path to settings file (default: $WPSAI_CONFIG_PATH or ~/.wpsai/settings.yaml)")
		opName      = flag.String("op", llm.OperationConnectionTest.String(), "Operation to run: "+opNames)
		text        = flag.String("text", "", "Input text")
		inputFile   = flag.String("file", "", "Read input text from a file ('-' for stdin)")
		question    = flag.String("question", "", "Question for document-qa")
		logFile     = flag.String("logfile", "", "Path to log file. If not set, logs to stderr")
		pretty      = flag.Bool("pretty", false, "Use pretty console output (only valid when logfile is not set)")
		timeout     = flag.Int("timeout", 0, "Per-request timeout override in seconds")
		apiURL      = flag.String("api-url", "", "API base URL override")
		apiKey      = flag.String("api-key", "", "API key override")
		model       = flag.String("model", "", "Default model override")
		save        = flag.Bool("save", false, "Save the merged settings back to the settings file")
		showMetrics = flag.Bool("metrics", false, "Print Prometheus metrics to stderr after the call")
		debug       = flag.Bool("debug", false, "Print a request trace to stderr")
	)
	flag.Parse()

	if *logFile != "" && *pretty {
		return fmt.Errorf("--logfile and --pretty are mutually exclusive")
	}

	// A missing .env file is fine.
	_ = godotenv.Load()

	logger, err := wpslogger.InitWithOptions(*logFile, *pretty)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	kind, err := llm.ParseOperationKind(*opName)
	if err != nil {
		return err
	}

	path := *configPath
	if path == "" {
		path = config.GetSettingsPath()
	}
	settings, err := config.LoadSettings(path)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	merged, err := config.MergeSettings(*settings, config.Settings{
		APIURL:  *apiURL,
		APIKey:  *apiKey,
		Models:  config.ModelSettings{Default: *model},
		Timeout: *timeout,
	})
	if err != nil {
		return err
	}
	logger.Debug().Str("path", path).Msg("Loaded settings")

	if *save {
		if err := config.SaveSettings(&merged, path); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
		logger.Info().Str("path", path).Msg("Settings saved")
	}

	registry := prometheus.NewRegistry()
	client := gateway.NewClient(
		logger,
		transport.NewEngine(transport.WithLogger(logger)),
		merged,
		metrics.New(registry),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *debug {
		ctx = ctxpkg.WithDebugCallback(ctx, func(msg string) {
			fmt.Fprintln(os.Stderr, msg)
		})
	}

	runErr := execute(ctx, client, kind, *text, *inputFile, *question)

	if *showMetrics {
		if err := dumpMetrics(os.Stderr, registry); err != nil {
			logger.Warn().Err(err).Msg("Failed to write metrics")
		}
	}
	return runErr
}

func execute(ctx context.Context, client *gateway.Client, kind llm.OperationKind, text, inputFile, question string) error {
	if kind == llm.OperationConnectionTest {
		res := client.TestConnection(ctx)
		if !res.Success {
			return res.Err
		}
		fmt.Printf("%s, model: %s\n", res.Message, res.Model)
		return nil
	}

	input, err := readInput(text, inputFile)
	if err != nil {
		return err
	}
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("no input text: use -text or -file")
	}

	in := gateway.Input{Text: input, Question: question}
	switch kind {
	case llm.OperationDocumentQA:
		if strings.TrimSpace(question) == "" {
			return fmt.Errorf("document-qa requires -question")
		}
	case llm.OperationChat:
		in = gateway.Input{Messages: []llm.Message{llm.UserMessage(input)}}
	}

	res, err := client.Run(ctx, kind, in)
	if err != nil {
		return err
	}
	fmt.Println(res.Content)
	return nil
}

func readInput(text, inputFile string) (string, error) {
	switch inputFile {
	case "":
		return text, nil
	case "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	default:
		data, err := os.ReadFile(inputFile) //#nosec 304 -- user-selected input file
		if err != nil {
			return "", fmt.Errorf("failed to read input file: %w", err)
		}
		return string(data), nil
	}
}

func dumpMetrics(w io.Writer, registry *prometheus.Registry) error {
	families, err := registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
