// Package scryfall is a client for the Scryfall card data API.
//
// Responses are classified by their "object" field and wrapped into Card,
// Set, List or generic Resource values. Every wrapped value keeps a handle to
// the Fetcher that produced it, so follow-up lookups (rulings, prints, the
// next page of a search) need no extra plumbing:
//
//	client := scryfall.New()
//	obj, err := client.Get(ctx, "cards/search", map[string]string{"q": "set:rix"})
//	if err != nil {
//		return err
//	}
//	list := obj.(*scryfall.List)
//	for list.HasMore() {
//		if list, err = list.Next(ctx); err != nil {
//			return err
//		}
//	}
package scryfall
