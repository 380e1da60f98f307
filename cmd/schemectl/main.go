package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/kailas-cloud/schemesearch/internal/catalog"
	"github.com/kailas-cloud/schemesearch/internal/index/faiss"
	"github.com/kailas-cloud/schemesearch/internal/version"
	schemesearch "github.com/kailas-cloud/schemesearch/pkg/sdk"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:    "schemectl",
		Usage:   "Query and inspect a government scheme search index",
		Version: version.String(),
		Writer:  out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Run a query against the index in-process",
				ArgsUsage: "QUERY...",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "index",
						Aliases:  []string{"i"},
						Usage:    "Path to the FAISS flat index file",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "metadata",
						Aliases:  []string{"m"},
						Usage:    "Path to the row-aligned metadata table (.csv or .parquet)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "provider",
						Usage: "Embedding provider (openai, ollama)",
						Value: "openai",
					},
					&cli.StringFlag{
						Name:  "embedding-url",
						Usage: "Embedding service base URL",
						Value: "http://localhost:8080/v1",
					},
					&cli.StringFlag{
						Name:  "model",
						Usage: "Embedding model name",
						Value: "sentence-transformers/all-MiniLM-L6-v2",
					},
					&cli.StringFlag{
						Name:    "api-key",
						Usage:   "Embedding API key",
						EnvVars: []string{"EMBEDDING_API_KEY"},
					},
					&cli.StringFlag{
						Name:  "query-instruction",
						Usage: "Text prepended to the query before encoding",
					},
					&cli.IntFlag{
						Name:    "top-k",
						Aliases: []string{"k"},
						Usage:   "Number of neighbours to request",
						Value:   5,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the response as JSON",
					},
				},
			},
			{
				Name:   "inspect",
				Usage:  "Print index and catalog statistics",
				Action: inspectCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "index",
						Aliases:  []string{"i"},
						Usage:    "Path to the FAISS flat index file",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "metadata",
						Aliases: []string{"m"},
						Usage:   "Path to the metadata table; enables the alignment check",
					},
				},
			},
		},
	}
}

// searchResponse mirrors the POST /search body.
type searchResponse struct {
	Schemes []schemesearch.Scheme `json:"schemes"`
	Error   string                `json:"error,omitempty"`
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	query := strings.Join(c.Args().Slice(), " ")
	if query == "" {
		return fmt.Errorf("query is required")
	}

	opts := []schemesearch.Option{
		schemesearch.WithIndexFile(c.String("index")),
		schemesearch.WithCatalogFile(c.String("metadata")),
		schemesearch.WithTopK(c.Int("top-k")),
		schemesearch.WithQueryInstruction(c.String("query-instruction")),
		schemesearch.WithLogger(slog.Default()),
		schemesearch.WithWarmup(),
	}
	switch c.String("provider") {
	case "openai":
		opts = append(opts, schemesearch.WithOpenAI(c.String("embedding-url"), c.String("model"), c.String("api-key")))
	case "ollama":
		opts = append(opts, schemesearch.WithOllama(c.String("embedding-url"), c.String("model")))
	default:
		return fmt.Errorf("unknown provider %q: must be openai or ollama", c.String("provider"))
	}

	client, err := schemesearch.Open(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer client.Close()

	res := client.Search(ctx, query)
	return printResult(c.App.Writer, res, c.Bool("json"))
}

func printResult(w io.Writer, res schemesearch.Result, asJSON bool) error {
	if asJSON {
		body := searchResponse{Schemes: res.Schemes}
		if body.Schemes == nil {
			body.Schemes = []schemesearch.Scheme{}
		}
		if res.Err != nil {
			body.Error = res.Err.Error()
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(body)
	}

	if res.Err != nil {
		return fmt.Errorf("search failed: %w", res.Err)
	}
	if len(res.Schemes) == 0 {
		fmt.Fprintln(w, "No schemes found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tSCHEME\tLEVEL\tCATEGORY")
	for i, s := range res.Schemes {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, s.Name, s.Level, s.Category)
	}
	return tw.Flush()
}

func inspectCommand(c *cli.Context) error {
	w := c.App.Writer

	ix, err := faiss.Load(c.String("index"))
	if err != nil {
		return fmt.Errorf("failed to load index: %w", err)
	}
	fmt.Fprintf(w, "index:     %s\n", c.String("index"))
	fmt.Fprintf(w, "dimension: %d\n", ix.Dimension())
	fmt.Fprintf(w, "vectors:   %d\n", ix.Len())
	fmt.Fprintf(w, "metric:    %s\n", ix.Metric())

	path := c.String("metadata")
	if path == "" {
		return nil
	}
	t, err := catalog.Load(path, catalog.FormatAuto)
	if err != nil {
		return fmt.Errorf("failed to load metadata: %w", err)
	}
	fmt.Fprintf(w, "metadata:  %s\n", path)
	fmt.Fprintf(w, "rows:      %d\n", t.Len())
	fmt.Fprintf(w, "columns:   %s\n", strings.Join(t.Columns(), ", "))
	if ignored := t.Ignored(); len(ignored) > 0 {
		fmt.Fprintf(w, "ignored:   %s\n", strings.Join(ignored, ", "))
	}
	if t.Len() == ix.Len() {
		fmt.Fprintln(w, "aligned:   yes")
	} else {
		fmt.Fprintf(w, "aligned:   no (%d vectors, %d rows)\n", ix.Len(), t.Len())
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
