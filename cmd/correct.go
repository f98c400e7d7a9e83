/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/cqroot/prompt"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/AIConnect-rgb/aiconnct/gemini"
	"github.com/AIConnect-rgb/aiconnct/lang"
)

// correctCmd represents the correct command
func correctCmd() *cli.Command {
	return &cli.Command{
		Name:  "correct",
		Usage: "Proofread text with Gemini",
		Description: `Asks Gemini to fix spelling and grammar in a piece of text.

Prompts for the text to correct and prints the corrected version. Correction
is best effort: if the request fails the original text is printed unchanged.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "lang",
				Aliases: []string{"l"},
				Usage:   "Two-letter language code, detected from the text when omitted",
			},
			&cli.StringFlag{
				Name:    "model",
				Aliases: []string{"m"},
				Value:   gemini.DefaultModel,
				Usage:   "The Gemini model to correct with",
				EnvVars: []string{"AICONNECT_MODEL"},
			},
		},
		Action: func(ctx *cli.Context) error {
			// Disable logging to stdout
			log.SetOutput(os.Stderr)

			text, err := prompt.New().Ask("Text to correct:").Input("")
			if err != nil {
				return err
			}

			code := ctx.String("lang")
			if code == "" {
				code = lang.Detect(text)
			}

			client, err := gemini.NewClient(ctx.Context, "", ctx.String("model"))
			if err != nil {
				return fmt.Errorf("failed to create gemini client: %w", err)
			}

			fmt.Println(client.Correct(ctx.Context, text, code))
			return nil
		},
	}
}
