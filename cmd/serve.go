/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/AIConnect-rgb/aiconnct/chat"
	"github.com/AIConnect-rgb/aiconnct/config"
	"github.com/AIConnect-rgb/aiconnct/feed"
	"github.com/AIConnect-rgb/aiconnct/gemini"
	"github.com/AIConnect-rgb/aiconnct/models"
	"github.com/AIConnect-rgb/aiconnct/server"
)

// serveCmd represents the serve command
func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the AI Connect feed",
		Description: `Starts the AI Connect HTTP server.

Launches the HTTP server on the specified or default port. Submitted posts
are inserted at the feed head right away and settled in the background:
either finalized with a Gemini analysis or rolled back with a classified
error. Feed mutations and rejections are streamed to SSE clients.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "hostname",
				Aliases: []string{"n"},
				Usage:   "The hostname to listen on",
				EnvVars: []string{"AICONNECT_HOSTNAME"},
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "The port to listen on",
				EnvVars: []string{"AICONNECT_PORT"},
			},
			&cli.StringFlag{
				Name:    "model",
				Aliases: []string{"m"},
				Usage:   "The Gemini model to analyze with",
				EnvVars: []string{"AICONNECT_MODEL"},
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the configuration file",
				EnvVars: []string{"AICONNECT_CONFIG"},
			},
		},
		Action: func(ctx *cli.Context) error {

			fmt.Println("Starting aiconnct...")

			cfg := config.DefaultConfig()
			if path := ctx.String("config"); path != "" {
				loaded, err := config.LoadConfig(path)
				if err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}
				cfg = loaded
			}
			if hostname := ctx.String("hostname"); hostname != "" {
				cfg.Server.Hostname = hostname
			}
			if port := ctx.Int("port"); port != 0 {
				cfg.Server.Port = port
			}
			if model := ctx.String("model"); model != "" {
				cfg.Gemini.Model = model
			}

			client, err := gemini.NewClient(ctx.Context, "", cfg.Gemini.Model)
			if err != nil {
				return fmt.Errorf("failed to create gemini client: %w", err)
			}

			posts := feed.New()
			orchestrator := feed.NewOrchestrator(posts, client, feed.Identity{
				Author:    cfg.Identity.Author,
				Handle:    cfg.Identity.Handle,
				AvatarURL: cfg.Identity.AvatarURL,
			})
			chatManager := chat.NewManager(client)
			bc := server.NewBroadcaster()

			app := server.Server(&server.ServerConfig{
				Hostname:     cfg.Server.Hostname,
				Feed:         posts,
				Orchestrator: orchestrator,
				Chat:         chatManager,
				Corrector:    client,
				Broadcaster:  bc,
			})

			// Graceful shutdown
			c := make(chan os.Signal, 1)
			signal.Notify(c, os.Interrupt)
			var wg sync.WaitGroup

			go func() {
				<-c
				fmt.Println("Gracefully shutting down...")
				app.ShutdownWithTimeout(60 * time.Second)
				bc.Shutdown()
				defer wg.Add(-1)
			}()

			go func() {
				// Fan feed mutations out to SSE clients and drop chat
				// threads for posts that left the feed
				for event := range posts.Events() {
					bc.Broadcast(event)
					if _, ok := event.(models.DeletePostEvent); ok {
						chatManager.Evict(posts.IDs())
					}
				}
			}()

			go func() {
				// Rolled back submissions reach clients as user-visible
				// rejection events
				for analysisErr := range orchestrator.Errors() {
					bc.Broadcast(server.Rejection(analysisErr))
				}
			}()

			go func() {
				fmt.Println("Starting server...")
				if err := app.Listen(fmt.Sprintf("%s:%d", cfg.Server.Hostname, cfg.Server.Port)); err != nil {
					log.Panic(err)
				}
			}()

			wg.Add(1)
			wg.Wait()

			fmt.Println("Done!")

			return nil
		},
	}
}
