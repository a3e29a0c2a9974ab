package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/samvad-hq/scryfall-go/internal/app"
	"github.com/samvad-hq/scryfall-go/internal/config"
	"github.com/samvad-hq/scryfall-go/internal/logger"
	"github.com/spf13/cobra"
)

// annotationOffline marks commands that need neither config nor network.
const annotationOffline = "offline"

// cli carries the state shared by every subcommand.
type cli struct {
	cfg *config.Config
	log logger.Logger
	rt  *app.Runtime

	emojiStyle string
}

func newRootCmd() (*cobra.Command, *cli) {
	c := &cli{}

	root := &cobra.Command{
		Use:           "scryfall",
		Short:         "Query the Scryfall card API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[annotationOffline] == "true" {
				return nil
			}
			return c.setup()
		},
	}
	root.PersistentFlags().StringVar(&c.emojiStyle, "emoji", "", "render mana symbols with a named style (slack, discord, ...)")

	root.AddCommand(
		newGetCmd(c),
		newSearchCmd(c),
		newCardCmd(c),
		newCollectionCmd(c),
		newSymbolCmd(),
		newSaveCmd(c),
		newReplayCmd(c),
		newArchiveCmd(c),
		newExportCmd(c),
		newPreviewCmd(c),
	)
	return root, c
}

// execute runs root and releases whatever setup acquired, including when
// the command itself fails.
func (c *cli) execute(ctx context.Context, root *cobra.Command) (err error) {
	defer func() {
		if cerr := c.teardown(); err == nil {
			err = cerr
		}
	}()
	return root.ExecuteContext(ctx)
}

func (c *cli) setup() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if c.emojiStyle != "" {
		cfg.EmojiStyle = c.emojiStyle
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	c.cfg, c.log = cfg, log
	log.DebugObj("scryfall cli starting", "config", cfg)

	rt, err := app.NewRuntime(cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize runtime", "error", err)
		return err
	}

	c.rt = rt
	return nil
}

func (c *cli) teardown() error {
	var err error
	if c.rt != nil {
		err = c.rt.Close()
		c.rt = nil
	}
	if c.log != nil {
		_ = logger.Close()
		c.log = nil
	}
	return err
}

// parseQuery turns repeated key=value flags into a query map.
func parseQuery(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid query parameter %q (want key=value)", p)
		}
		out[strings.TrimSpace(k)] = v
	}
	return out, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
