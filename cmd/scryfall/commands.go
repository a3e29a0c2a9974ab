package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/samvad-hq/scryfall-go/pkg/scryfall"
	"github.com/spf13/cobra"
)

func newGetCmd(c *cli) *cobra.Command {
	var query []string
	var raw bool
	cmd := &cobra.Command{
		Use:   "get <path-or-url>",
		Short: "Fetch any API endpoint and print the wrapped result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := parseQuery(query)
			if err != nil {
				return err
			}
			obj, err := c.rt.Client().Get(cmd.Context(), args[0], q)
			if err != nil {
				return err
			}
			if raw {
				return printJSON(cmd.OutOrStdout(), obj.Raw())
			}
			return describe(cmd.OutOrStdout(), obj)
		},
	}
	cmd.Flags().StringArrayVarP(&query, "query", "q", nil, "query parameter as key=value (repeatable)")
	cmd.Flags().BoolVar(&raw, "json", false, "print the payload as JSON")
	return cmd
}

func newSearchCmd(c *cli) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search cards with the full-text query syntax",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			obj, err := c.rt.Client().Get(cmd.Context(), "/cards/search", map[string]string{
				"q": strings.Join(args, " "),
			})
			if err != nil {
				return err
			}
			list, ok := obj.(*scryfall.List)
			if !ok {
				return fmt.Errorf("unexpected %q response", obj.Kind())
			}

			out := cmd.OutOrStdout()
			if total, ok := list.TotalCards(); ok {
				fmt.Fprintf(out, "%d cards\n", total)
			}
			for page := list; ; {
				for _, card := range page.Cards() {
					printCardLine(out, card)
				}
				if !all || !page.HasMore() {
					break
				}
				next, err := page.Next(cmd.Context())
				if err != nil {
					return err
				}
				page = next
			}
			for _, w := range list.Warnings() {
				fmt.Fprintf(out, "warning: %s\n", w)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "follow every result page")
	return cmd
}

func newCardCmd(c *cli) *cobra.Command {
	var (
		exact     bool
		format    string
		imageType string
		back      bool
		rulings   bool
		tokens    bool
	)
	cmd := &cobra.Command{
		Use:   "card <name>",
		Short: "Look up a card by name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			mode := "fuzzy"
			if exact {
				mode = "exact"
			}
			obj, err := c.rt.Client().Get(ctx, "/cards/named", map[string]string{mode: strings.Join(args, " ")})
			if err != nil {
				return err
			}
			card, ok := obj.(*scryfall.Card)
			if !ok {
				return fmt.Errorf("unexpected %q response", obj.Kind())
			}

			out := cmd.OutOrStdout()
			printCardDetails(out, card)

			if format != "" {
				legal, err := card.IsLegal(format)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "legal in %s: %t\n", format, legal)
			}

			img, err := card.Image(imageType)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "image: %s\n", img)

			if back {
				imgs, err := card.BackImage(ctx, imageType)
				if err != nil {
					return err
				}
				for _, u := range imgs {
					fmt.Fprintf(out, "back: %s\n", u)
				}
			}
			if rulings {
				list, err := card.Rulings(ctx)
				if err != nil {
					return err
				}
				for _, r := range scryfall.MapList(list, func(o scryfall.Object) string {
					comment, _ := o.Raw()["comment"].(string)
					date, _ := o.Raw()["published_at"].(string)
					return date + "  " + comment
				}) {
					fmt.Fprintln(out, r)
				}
			}
			if tokens {
				toks, err := card.Tokens(ctx)
				if err != nil {
					return err
				}
				for _, t := range toks {
					fmt.Fprintf(out, "token: %s\n", t.Name())
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&exact, "exact", false, "require an exact name match")
	cmd.Flags().StringVar(&format, "legal", "", "report legality in the given format")
	cmd.Flags().StringVar(&imageType, "image", "", "image type (small, normal, large, png, art_crop, border_crop)")
	cmd.Flags().BoolVar(&back, "back", false, "print the back image")
	cmd.Flags().BoolVar(&rulings, "rulings", false, "print the card's rulings")
	cmd.Flags().BoolVar(&tokens, "tokens", false, "print the tokens the card makes")
	return cmd
}

func newCollectionCmd(c *cli) *cobra.Command {
	var byID bool
	cmd := &cobra.Command{
		Use:   "collection <name-or-id>...",
		Short: "Fetch many cards at once through the collection endpoint",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := "name"
			if byID {
				key = "id"
			}
			identifiers := make([]map[string]string, 0, len(args))
			for _, a := range args {
				identifiers = append(identifiers, map[string]string{key: a})
			}
			obj, err := c.rt.Client().Post(cmd.Context(), "/cards/collection", map[string]any{
				"identifiers": identifiers,
			})
			if err != nil {
				return err
			}
			list, ok := obj.(*scryfall.List)
			if !ok {
				return fmt.Errorf("unexpected %q response", obj.Kind())
			}
			out := cmd.OutOrStdout()
			for _, card := range list.Cards() {
				printCardLine(out, card)
			}
			for _, nf := range list.NotFound() {
				fmt.Fprintf(out, "not found: %v\n", nf)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&byID, "id", false, "treat arguments as card ids")
	return cmd
}

func newSymbolCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "symbol <symbol>...",
		Short:       "Print the image URL of mana symbols",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{annotationOffline: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, s := range args {
				fmt.Fprintln(cmd.OutOrStdout(), scryfall.SymbolURL(s))
			}
			return nil
		},
	}
}

func newSaveCmd(c *cli) *cobra.Command {
	var query []string
	cmd := &cobra.Command{
		Use:   "save <key> <path-or-url>",
		Short: "Fetch an endpoint and archive the payload locally",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := parseQuery(query)
			if err != nil {
				return err
			}
			raw, err := c.rt.Save(cmd.Context(), args[0], args[1], q)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s (%s)\n", args[0], raw.Kind())
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&query, "query", "q", nil, "query parameter as key=value (repeatable)")
	return cmd
}

func newReplayCmd(c *cli) *cobra.Command {
	var next bool
	cmd := &cobra.Command{
		Use:   "replay <key>",
		Short: "Wrap an archived payload without calling the API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			obj, err := c.rt.Replay(args[0])
			if err != nil {
				return err
			}
			if next {
				list, ok := obj.(*scryfall.List)
				if !ok {
					return fmt.Errorf("payload %q is a %q, not a list", args[0], obj.Kind())
				}
				if obj, err = list.Next(cmd.Context()); err != nil {
					return err
				}
			}
			return describe(cmd.OutOrStdout(), obj)
		},
	}
	cmd.Flags().BoolVar(&next, "next", false, "fetch the page after the archived list")
	return cmd
}

func newArchiveCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "archive",
		Short: "List archived payload keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			keys, err := c.rt.Store().PayloadKeys()
			if err != nil {
				return err
			}
			for _, k := range keys {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		},
	}
}

func newExportCmd(c *cli) *cobra.Command {
	var maxPages int
	cmd := &cobra.Command{
		Use:   "export <query>",
		Short: "Publish every card matching a search to the configured publishers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exp, err := c.rt.Exporter(cmd.Context(), maxPages)
			if err != nil {
				return err
			}
			res, runErr := exp.Run(cmd.Context(), strings.Join(args, " "))
			if err := printJSON(cmd.OutOrStdout(), res); err != nil {
				return errors.Join(runErr, err)
			}
			return runErr
		},
	}
	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "stop after this many result pages (0 = all)")
	return cmd
}

func newPreviewCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "preview <card-id>",
		Short: "Print the link preview of a card's scryfall.com page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			obj, err := c.rt.Client().Get(cmd.Context(), "/cards/"+args[0], nil)
			if err != nil {
				return err
			}
			card, ok := obj.(*scryfall.Card)
			if !ok {
				return fmt.Errorf("unexpected %q response", obj.Kind())
			}
			meta, err := c.rt.Scraper().Card(cmd.Context(), card)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), meta)
		},
	}
}

// describe prints a human summary of any wrapped object.
func describe(w io.Writer, obj scryfall.Object) error {
	switch o := obj.(type) {
	case *scryfall.List:
		if total, ok := o.TotalCards(); ok {
			fmt.Fprintf(w, "list: %d of %d (more: %t)\n", o.Len(), total, o.HasMore())
		} else {
			fmt.Fprintf(w, "list: %d items (more: %t)\n", o.Len(), o.HasMore())
		}
		for _, item := range o.All() {
			if card, ok := item.(*scryfall.Card); ok {
				printCardLine(w, card)
				continue
			}
			if name, _ := item.Raw()["name"].(string); name != "" {
				fmt.Fprintf(w, "%s: %s\n", item.Kind(), name)
			} else {
				fmt.Fprintln(w, item.Kind())
			}
		}
		return nil
	case *scryfall.Card:
		printCardDetails(w, o)
		return nil
	case *scryfall.Set:
		fmt.Fprintf(w, "%s (%s), %d cards\n", o.Name(), strings.ToUpper(o.Code()), o.CardCount())
		return nil
	default:
		return printJSON(w, obj.Raw())
	}
}

func printCardLine(w io.Writer, card *scryfall.Card) {
	if cost := card.ManaCost(); cost != "" {
		fmt.Fprintf(w, "%s  %s\n", card.Name(), cost)
		return
	}
	fmt.Fprintln(w, card.Name())
}

func printCardDetails(w io.Writer, card *scryfall.Card) {
	printCardLine(w, card)
	if tl := card.String("type_line"); tl != "" {
		fmt.Fprintln(w, tl)
	}
	if text := card.OracleText(); text != "" {
		fmt.Fprintln(w, text)
	}
	for _, face := range card.Faces() {
		fmt.Fprintf(w, "// %s  %s\n%s\n", face.String("name"), face.String("mana_cost"), face.String("oracle_text"))
	}
	if price := card.Price(""); price != "" {
		fmt.Fprintf(w, "price: %s\n", price)
	}
}
