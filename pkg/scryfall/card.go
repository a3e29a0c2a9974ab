package scryfall

import (
	"context"
	"slices"
)

// Formats lists the formats IsLegal accepts.
var Formats = []string{
	"standard", "future", "frontier", "modern", "legacy", "pauper",
	"vintage", "penny", "commander", "1v1", "duel", "brawl",
}

// ImageTypes lists the image versions served for every card.
var ImageTypes = []string{"small", "normal", "large", "png", "art_crop", "border_crop"}

// PriceKinds lists the price keys in the order Price falls back through them.
var PriceKinds = []string{"usd", "usd_foil", "eur", "tix"}

const (
	// DefaultImageType is used when no image type is requested.
	DefaultImageType = "normal"
	// MissingImageURL is the placeholder Scryfall serves for absent card backs.
	MissingImageURL = "https://img.scryfall.com/errors/missing.jpg"
)

// Card wraps a "card" object.
type Card struct {
	*Resource
}

// NewCard wraps raw as a card. It fails unless raw's object field is "card".
func NewCard(raw RawResponse, w *Wrapper) (*Card, error) {
	if raw == nil {
		return nil, invalidPayload("cannot wrap an empty response")
	}
	if kind := raw.Kind(); kind != ObjectCard {
		return nil, typeMismatch(ObjectCard, kind)
	}
	return buildCard(w.prepare(raw), w)
}

func buildCard(raw RawResponse, w *Wrapper) (*Card, error) {
	r, err := buildResource(raw, w)
	if err != nil {
		return nil, err
	}
	return &Card{Resource: r}, nil
}

func (c *Card) ID() string         { return c.String("id") }
func (c *Card) Name() string       { return c.String("name") }
func (c *Card) Layout() string     { return c.String("layout") }
func (c *Card) ManaCost() string   { return c.String("mana_cost") }
func (c *Card) OracleText() string { return c.String("oracle_text") }

// Faces returns the wrapped card_faces entries.
func (c *Card) Faces() []*Resource {
	objs := c.Objects("card_faces")
	out := make([]*Resource, 0, len(objs))
	for _, obj := range objs {
		if r, ok := obj.(*Resource); ok {
			out = append(out, r)
		}
	}
	return out
}

// Rulings fetches the card's rulings list.
func (c *Card) Rulings(ctx context.Context) (*List, error) {
	obj, err := c.follow(ctx, "rulings_uri")
	if err != nil {
		return nil, err
	}
	return expectList(obj)
}

// Set fetches the set the card was printed in.
func (c *Card) Set(ctx context.Context) (*Set, error) {
	obj, err := c.follow(ctx, "set_uri")
	if err != nil {
		return nil, err
	}
	set, ok := obj.(*Set)
	if !ok {
		return nil, typeMismatch(ObjectSet, obj.Kind())
	}
	return set, nil
}

// Prints fetches the first page of every printing of the card.
func (c *Card) Prints(ctx context.Context) (*List, error) {
	obj, err := c.follow(ctx, "prints_search_uri")
	if err != nil {
		return nil, err
	}
	return expectList(obj)
}

// Tokens fetches the tokens the card creates. When this printing lists no
// tokens, the first printing on the prints page that does is used instead.
func (c *Card) Tokens(ctx context.Context) ([]*Card, error) {
	parts := tokenParts(c.Resource)
	if len(parts) == 0 {
		prints, err := c.Prints(ctx)
		if err != nil {
			return nil, err
		}
		for _, p := range prints.Cards() {
			if parts = tokenParts(p.Resource); len(parts) > 0 {
				break
			}
		}
	}

	tokens := make([]*Card, 0, len(parts))
	for _, part := range parts {
		card, err := c.fetchCard(ctx, rawString(part, "uri"))
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, card)
	}
	return tokens, nil
}

// IsLegal reports whether the card is legal or restricted in format.
func (c *Card) IsLegal(format string) (bool, error) {
	if format == "" {
		return false, missingFormat()
	}
	if !slices.Contains(Formats, format) {
		return false, unrecognizedFormat(format)
	}
	status, _ := c.Map("legalities")[format].(string)
	return status == "legal" || status == "restricted", nil
}

// Price returns the price for kind (usd, usd_foil, eur, tix). With an empty
// kind the first available price in PriceKinds order is returned. Missing
// prices yield "".
func (c *Card) Price(kind string) string {
	prices := c.Map("prices")
	if kind != "" {
		s, _ := prices[kind].(string)
		return s
	}
	for _, k := range PriceKinds {
		if s, _ := prices[k].(string); s != "" {
			return s
		}
	}
	return ""
}

// Image returns the front image URL of the given type ("" means normal).
func (c *Card) Image(kind string) (string, error) {
	kind, err := imageType(kind)
	if err != nil {
		return "", err
	}

	uris := c.Map("image_uris")
	if uris == nil {
		uris = c.faceImageURIs(0)
	}
	if uris == nil {
		return "", imageNotFound("Could not find image uris for card.")
	}
	url, _ := uris[kind].(string)
	if url == "" {
		return "", imageNotFound("Could not find " + kind + " image for card.")
	}
	return url, nil
}

// BackImage returns the image URLs showing the back of the card. Double
// faced cards yield their second face; meld cards yield the melded result
// (front halves) or both halves (the result), which requires extra
// requests; everything else yields MissingImageURL.
func (c *Card) BackImage(ctx context.Context, kind string) ([]string, error) {
	kind, err := imageType(kind)
	if err != nil {
		return nil, err
	}

	if c.Layout() == "meld" && len(c.Objects("all_parts")) > 0 {
		return c.meldBackImages(ctx, kind)
	}

	if back := c.faceImageURIs(1); back != nil {
		url, _ := back[kind].(string)
		if url == "" {
			return nil, imageNotFound("Could not find " + kind + " image for back face of card.")
		}
		return []string{url}, nil
	}

	if c.Map("image_uris") != nil {
		return []string{MissingImageURL}, nil
	}
	return nil, imageNotFound("An unexpected error occurred when attempting to show back side of card.")
}

func (c *Card) meldBackImages(ctx context.Context, kind string) ([]string, error) {
	var result Object
	var halves []Object
	for _, part := range c.Objects("all_parts") {
		switch rawString(part, "component") {
		case "meld_result":
			result = part
		case "meld_part":
			halves = append(halves, part)
		}
	}
	if result == nil {
		return []string{MissingImageURL}, nil
	}

	targets := []Object{result}
	if rawString(result, "id") == c.ID() || rawString(result, "name") == c.Name() {
		targets = halves
	}

	images := make([]string, 0, len(targets))
	for _, part := range targets {
		card, err := c.fetchCard(ctx, rawString(part, "uri"))
		if err != nil {
			return nil, err
		}
		img, err := card.Image(kind)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, nil
}

func (c *Card) faceImageURIs(i int) map[string]any {
	faces, _ := c.raw["card_faces"].([]any)
	if i >= len(faces) {
		return nil
	}
	face, _ := faces[i].(map[string]any)
	uris, _ := face["image_uris"].(map[string]any)
	return uris
}

func (c *Card) fetchCard(ctx context.Context, uri string) (*Card, error) {
	obj, err := c.fetch(ctx, uri)
	if err != nil {
		return nil, err
	}
	card, ok := obj.(*Card)
	if !ok {
		return nil, typeMismatch(ObjectCard, obj.Kind())
	}
	return card, nil
}

func tokenParts(r *Resource) []Object {
	var out []Object
	for _, part := range r.Objects("all_parts") {
		if rawString(part, "component") == "token" {
			out = append(out, part)
		}
	}
	return out
}

func imageType(kind string) (string, error) {
	if kind == "" {
		return DefaultImageType, nil
	}
	if !slices.Contains(ImageTypes, kind) {
		return "", unrecognizedImageType(kind)
	}
	return kind, nil
}

func expectList(obj Object) (*List, error) {
	l, ok := obj.(*List)
	if !ok {
		return nil, typeMismatch(ObjectList, obj.Kind())
	}
	return l, nil
}

func rawString(obj Object, key string) string {
	s, _ := obj.Raw()[key].(string)
	return s
}
