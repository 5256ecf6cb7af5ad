package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/hay-kot/palaver/internal/core/chat"
	"github.com/hay-kot/palaver/internal/core/validate"
	"github.com/hay-kot/palaver/internal/remote"
	"github.com/hay-kot/palaver/internal/store/jsonfile"
)

const (
	// StatusAnswered indicates the prompt received a reply.
	StatusAnswered = "answered"
	// StatusFailed indicates the request failed.
	StatusFailed = "failed"
	// StatusSkipped indicates the prompt was not sent due to failure threshold.
	StatusSkipped = "skipped"

	// maxFailures is the number of failures before stopping batch processing.
	maxFailures = 3
)

// BatchInput is the JSON input schema for batch prompts.
type BatchInput struct {
	Prompts []BatchPrompt `json:"prompts"`
}

// Validate checks the batch input for errors using criterio.
func (b BatchInput) Validate() error {
	if len(b.Prompts) == 0 {
		return criterio.NewFieldErrors("prompts", fmt.Errorf("array is empty"))
	}

	var errs criterio.FieldErrorsBuilder
	seenNames := make(map[string]bool)

	for i, p := range b.Prompts {
		field := fmt.Sprintf("prompts[%d]", i)

		if err := validate.Input(p.Input); err != nil {
			errs = errs.Append(field+".input", err)
		}

		if p.Name == "" {
			continue
		}
		if err := validate.Name(p.Name); err != nil {
			errs = errs.Append(field+".name", err)
			continue
		}
		if seenNames[p.Name] {
			errs = errs.Append(field+".name", fmt.Errorf("duplicate name %q", p.Name))
			continue
		}
		seenNames[p.Name] = true
	}

	return errs.ToError()
}

// BatchPrompt defines a single prompt to send.
type BatchPrompt struct {
	Name  string `json:"name,omitempty"`
	Input string `json:"input"`
}

// BatchResult is the output for a single prompt.
type BatchResult struct {
	Name      string `json:"name,omitempty"`
	Input     string `json:"input"`
	Status    string `json:"status"`
	MessageID string `json:"message_id,omitempty"`
	Reply     string `json:"reply,omitempty"`
	Error     string `json:"error,omitempty"`
}

// BatchOutput is the JSON output schema.
type BatchOutput struct {
	BatchID    string        `json:"batch_id"`
	LogFile    string        `json:"log_file"`
	Transcript string        `json:"transcript,omitempty"`
	Results    []BatchResult `json:"results"`
}

// BatchErrorOutput is the JSON output for fatal errors.
type BatchErrorOutput struct {
	Error string `json:"error"`
}

type BatchCmd struct {
	flags  *Flags
	file   string
	export bool
	stdin  io.Reader
	stdout io.Writer
}

func NewBatchCmd(flags *Flags) *BatchCmd {
	return &BatchCmd{flags: flags, stdin: os.Stdin, stdout: os.Stdout}
}

func (cmd *BatchCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "batch",
		Usage: "Send multiple prompts from JSON input",
		UsageText: `palaver batch [options]

Read from stdin:
  echo '{"prompts":[{"name":"greet","input":"Say hello"}]}' | palaver batch

Read from file:
  palaver batch -f prompts.json`,
		Description: `Sends each prompt to the configured provider, one at a time.

Each prompt is an independent request; earlier replies are not sent as
context. Processing stops after 3 failures. Prompts not attempted are
marked as skipped.

Input JSON schema:
  {
    "prompts": [
      {
        "name": "optional-label",
        "input": "prompt text"
      }
    ]
  }

Output is JSON with a batch ID, log file path, and results for each prompt.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "file",
				Aliases:     []string{"f"},
				Usage:       "path to JSON file (reads from stdin if not provided)",
				Destination: &cmd.file,
			},
			&cli.BoolFlag{
				Name:        "export",
				Usage:       "also write the conversation as a transcript file",
				Destination: &cmd.export,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *BatchCmd) run(ctx context.Context, _ *cli.Command) error {
	batchID := newBatchID()

	logger, logFile, err := cmd.setupLogger(batchID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "batch %s: failed to setup logger: %v\n", batchID, err)
		return cmd.writeError(fmt.Errorf("setup logger: %w", err))
	}
	defer func() {
		if err := logFile.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to close log file: %v\n", err)
		}
	}()

	logger.Info().Str("batch_id", batchID).Msg("starting batch processing")

	input, err := cmd.readInput()
	if err != nil {
		logger.Error().Err(err).Msg("failed to read input")
		return cmd.writeError(fmt.Errorf("read input: %w", err))
	}

	if err := input.Validate(); err != nil {
		logger.Error().Err(err).Msg("input validation failed")
		return cmd.writeError(fmt.Errorf("invalid input: %w", err))
	}

	coord, err := newCoordinator(cmd.flags.Config, logger)
	if err != nil {
		return cmd.writeError(err)
	}

	output := runBatch(ctx, coord, cmd.flags.Generator, input, logger)
	output.BatchID = batchID
	output.LogFile = logFile.Name()

	if cmd.export {
		cfg := cmd.flags.Config
		path, err := jsonfile.NewTranscriptWriter(cfg.TranscriptsDir()).
			Save(ctx, cfg.Provider, cfg.Model, coord.Conversation().Messages())
		if err != nil {
			logger.Error().Err(err).Msg("export transcript")
		} else {
			output.Transcript = path
		}
	}

	return cmd.writeOutput(output)
}

// runBatch sends each prompt through coord in order and stops after
// maxFailures failed requests.
func runBatch(ctx context.Context, coord *chat.Coordinator, gen remote.Generator, input BatchInput, logger zerolog.Logger) BatchOutput {
	output := BatchOutput{
		Results: make([]BatchResult, 0, len(input.Prompts)),
	}

	failures := 0
	for i, p := range input.Prompts {
		if failures >= maxFailures {
			logger.Warn().Int("index", i).Msg("skipping remaining prompts due to failure threshold")
			for _, rest := range input.Prompts[i:] {
				output.Results = append(output.Results, BatchResult{
					Name:   rest.Name,
					Input:  rest.Input,
					Status: StatusSkipped,
				})
			}
			break
		}

		logger.Info().Str("name", p.Name).Int("index", i).Msg("sending prompt")

		result := BatchResult{Name: p.Name, Input: p.Input}
		out, ok := coord.Submit(ctx, gen, p.Input)
		switch {
		case !ok:
			result.Status = StatusFailed
			result.Error = "input rejected"
		case !out.OK():
			result.Status = StatusFailed
			result.Error = out.Err().Error()
		default:
			last, _ := coord.Conversation().Last(chat.SenderBot)
			result.Status = StatusAnswered
			result.MessageID = last.ID
			result.Reply = last.Text()
		}

		if result.Status == StatusFailed {
			failures++
			logger.Error().Str("name", p.Name).Str("error", result.Error).Msg("prompt failed")
		} else {
			logger.Info().Str("name", p.Name).Str("message_id", result.MessageID).Msg("prompt answered")
		}

		output.Results = append(output.Results, result)
	}

	logger.Info().
		Int("total", len(input.Prompts)).
		Int("answered", countByStatus(output.Results, StatusAnswered)).
		Int("failed", countByStatus(output.Results, StatusFailed)).
		Int("skipped", countByStatus(output.Results, StatusSkipped)).
		Msg("batch processing complete")

	return output
}

func newBatchID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

func (cmd *BatchCmd) setupLogger(batchID string) (zerolog.Logger, *os.File, error) {
	logsDir := cmd.flags.Config.LogsDir()
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return zerolog.Logger{}, nil, fmt.Errorf("create logs dir: %w", err)
	}

	logPath := filepath.Join(logsDir, fmt.Sprintf("batch-%s.log", batchID))
	file, err := os.Create(logPath)
	if err != nil {
		return zerolog.Logger{}, nil, fmt.Errorf("create log file: %w", err)
	}

	logger := zerolog.New(file).With().Timestamp().Logger()
	return logger, file, nil
}

func (cmd *BatchCmd) readInput() (BatchInput, error) {
	var reader io.Reader

	if cmd.file != "" {
		f, err := os.Open(cmd.file)
		if err != nil {
			return BatchInput{}, fmt.Errorf("open file: %w", err)
		}
		defer func() { _ = f.Close() }()
		reader = f
	} else {
		if f, ok := cmd.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return BatchInput{}, fmt.Errorf("no input provided (stdin is a terminal); use -f flag or pipe JSON input")
		}
		reader = cmd.stdin
	}

	return decodeBatchInput(reader)
}

func decodeBatchInput(r io.Reader) (BatchInput, error) {
	var input BatchInput
	if err := json.NewDecoder(r).Decode(&input); err != nil {
		return BatchInput{}, fmt.Errorf("decode JSON: %w", err)
	}
	return input, nil
}

func (cmd *BatchCmd) writeOutput(output BatchOutput) error {
	enc := json.NewEncoder(cmd.stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(output); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to write JSON output: %v\n", err)
		fmt.Fprintf(os.Stderr, "batch_id: %s\n", output.BatchID)
		fmt.Fprintf(os.Stderr, "log_file: %s\n", output.LogFile)
		fmt.Fprintf(os.Stderr, "results: %d answered, %d failed, %d skipped\n",
			countByStatus(output.Results, StatusAnswered),
			countByStatus(output.Results, StatusFailed),
			countByStatus(output.Results, StatusSkipped))
		return err
	}
	return nil
}

func (cmd *BatchCmd) writeError(err error) error {
	output := BatchErrorOutput{Error: err.Error()}
	enc := json.NewEncoder(cmd.stdout)
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(output); encErr != nil {
		fmt.Fprintf(os.Stderr, "error: %s (failed to write JSON: %v)\n", err, encErr)
	}
	return err
}

func countByStatus(results []BatchResult, status string) int {
	count := 0
	for _, r := range results {
		if r.Status == status {
			count++
		}
	}
	return count
}
