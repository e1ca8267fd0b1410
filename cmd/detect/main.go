package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/spacesedan/emotiflow/config"
	"github.com/spacesedan/emotiflow/internal/clients"
	"github.com/spacesedan/emotiflow/internal/logging"
	"github.com/spacesedan/emotiflow/internal/models"
)

var jsonOutput bool

var rootCmd = &cobra.Command{
	Use:   "detect [text...]",
	Short: "Detect the emotions expressed in a statement",
	Long: `Sends the statement to the Watson NLP emotion classifier and prints the
anger, disgust, fear, joy and sadness scores with the dominant emotion.

Example:
  detect I am glad this happened`,
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runDetect,
}

func init() {
	rootCmd.Flags().BoolVar(&jsonOutput, "json", false, "print the result as JSON")
}

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runDetect(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	logging.InitLogger(cfg.LogLevel)

	text := strings.Join(args, " ")
	client := clients.NewEmotionClient(cfg)
	ctx, cancel := context.WithTimeout(cmd.Context(), client.MaxDuration()+time.Second)
	defer cancel()

	result, err := client.Detect(ctx, text)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	printResult(cmd.OutOrStdout(), text, result)
	return nil
}

func printResult(w io.Writer, text string, result models.EmotionResult) {
	fmt.Fprintf(w, "\nText: '%s'\n", text)
	fmt.Fprintln(w, "\nEmotion Analysis:")
	fmt.Fprintf(w, "  Anger:    %.3f\n", result.Anger)
	fmt.Fprintf(w, "  Disgust:  %.3f\n", result.Disgust)
	fmt.Fprintf(w, "  Fear:     %.3f\n", result.Fear)
	fmt.Fprintf(w, "  Joy:      %.3f\n", result.Joy)
	fmt.Fprintf(w, "  Sadness:  %.3f\n", result.Sadness)
	fmt.Fprintf(w, "\nDominant Emotion: %s\n", strings.ToUpper(result.DominantEmotion))
}
