// Package main provides the command-line client of the stylist pipelines.
// It runs the same wiring as the server, without HTTP in between.
//
// Run with: go run ./cmd/cli search --item jeans --color blue
package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fleveque/stylist-service/internal/bootstrap"
	"github.com/fleveque/stylist-service/internal/config"
	"github.com/fleveque/stylist-service/internal/model"
	"github.com/fleveque/stylist-service/internal/service"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// rootCmd creates the root command:
// stylist-cli search --item jeans --color blue
// stylist-cli advice --item jeans --color blue --description "..." --image https://...
func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "stylist-cli",
		Short:        "Stylist service CLI tools",
		SilenceUsage: true,
	}

	root.AddCommand(searchCmd())
	root.AddCommand(adviceCmd())
	return root
}

func searchCmd() *cobra.Command {
	var req model.SearchRequest
	var htmlFile string

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Extract matching products from the shop's search results",
		RunE: func(cmd *cobra.Command, args []string) error {
			if htmlFile != "" {
				content, err := readContent(htmlFile)
				if err != nil {
					return err
				}
				req.Content = content
			}
			return withApp(func(ctx context.Context, app *bootstrap.App) error {
				result, err := app.Search.Search(ctx, req)
				if err != nil {
					return fmt.Errorf("%s (%s)", service.UserMessage(err), service.Kind(err))
				}
				if result.Message != "" {
					fmt.Fprintln(cmd.ErrOrStderr(), result.Message)
				}
				return printJSON(cmd.OutOrStdout(), result)
			})
		},
	}

	cmd.Flags().StringVar(&req.ClothingItem, "item", "", "Clothing item to search for")
	cmd.Flags().StringVar(&req.ColorPreference, "color", "", "Preferred color (optional)")
	cmd.Flags().StringVar(&htmlFile, "html-file", "", "Saved search-results page to extract from instead of fetching ('-' reads stdin)")
	_ = cmd.MarkFlagRequired("item")
	return cmd
}

func adviceCmd() *cobra.Command {
	var req model.AdviceRequest
	var out string

	cmd := &cobra.Command{
		Use:   "advice",
		Short: "Get styling advice and an outfit image for one product",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, app *bootstrap.App) error {
				result, err := app.Advice.Advise(ctx, req)
				if err != nil {
					return fmt.Errorf("%s (%s)", service.UserMessage(err), service.Kind(err))
				}

				fmt.Fprintln(cmd.OutOrStdout(), result.StylingAdvice)
				if out == "" {
					return nil
				}
				if err := writeImage(out, result.OutfitImageURL); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "outfit image written to %s\n", out)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&req.ClothingItem, "item", "", "Clothing item")
	cmd.Flags().StringVar(&req.ColorPreference, "color", "", "Color of the item")
	cmd.Flags().StringVar(&req.ItemDescription, "description", "", "Product description")
	cmd.Flags().StringVar(&req.ItemImageURL, "image", "", "Product image URL (http, https or data URI)")
	cmd.Flags().StringVar(&out, "out", "", "Write the generated outfit image to this file")
	for _, name := range []string{"item", "color", "description", "image"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

// withApp loads config, wires the pipelines and runs fn with a context that
// is cancelled on Ctrl+C.
func withApp(fn func(ctx context.Context, app *bootstrap.App) error) error {
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("STYLIST_CONFIG_PATH"))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// The CLI always logs in development mode.
	logger, err := zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	return fn(ctx, app)
}

func readContent(path string) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

// writeImage saves a base64 data-URI image to path.
func writeImage(path, imageURL string) error {
	_, payload, ok := strings.Cut(imageURL, ";base64,")
	if !ok || !strings.HasPrefix(imageURL, "data:") {
		return fmt.Errorf("outfit image is not a base64 data URI")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return fmt.Errorf("decoding outfit image: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing outfit image: %w", err)
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
