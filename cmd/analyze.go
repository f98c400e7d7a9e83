/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/AIConnect-rgb/aiconnct/gemini"
	"github.com/AIConnect-rgb/aiconnct/models"
)

// analyzeCmd represents the analyze command
func analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Analyze a single post from the command line",
		ArgsUsage: "TEXT",
		Description: `Sends the given text through the same Gemini analysis the feed uses
and prints the result as a JSON object on a single line. Use a tool like jq
to process the output.

Prints all other log messages to stderr.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "model",
				Aliases: []string{"m"},
				Value:   gemini.DefaultModel,
				Usage:   "The Gemini model to analyze with",
				EnvVars: []string{"AICONNECT_MODEL"},
			},
		},
		Action: func(ctx *cli.Context) error {
			// Disable logging to stdout
			log.SetOutput(os.Stderr)

			text := strings.TrimSpace(strings.Join(ctx.Args().Slice(), " "))
			if text == "" {
				return errors.New("please provide the text to analyze")
			}

			client, err := gemini.NewClient(ctx.Context, "", ctx.String("model"))
			if err != nil {
				return fmt.Errorf("failed to create gemini client: %w", err)
			}

			result, err := client.Analyze(ctx.Context, text)
			if err != nil {
				var analysisErr *models.AnalysisError
				if errors.As(err, &analysisErr) {
					return fmt.Errorf("analysis rejected (%s): %s", analysisErr.Kind, analysisErr.Message)
				}
				return err
			}

			printStdout(result)
			return nil
		},
	}
}

func printStdout(result *models.AnalysisResult) {
	// Print as single JSON string on a single line
	resultJson, err := json.Marshal(result)
	if err == nil {
		fmt.Println(string(resultJson))
	}
}
