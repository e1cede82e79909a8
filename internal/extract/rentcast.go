package extract

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"

	"golang.org/x/sync/errgroup"

	"primesquare/internal/records"
)

// FetchAddresses searches sale listings in a ZIP code and returns up to
// maxAddresses unique formatted addresses, in listing order.
func (c *Client) FetchAddresses(ctx context.Context, zipCode string, limit, maxAddresses int) ([]string, error) {
	query := url.Values{}
	query.Set("zipCode", zipCode)
	query.Set("limit", strconv.Itoa(limit))

	var listings []map[string]any
	if err := c.getJSON(ctx, "/listings/sale", query, &listings); err != nil {
		return nil, fmt.Errorf("search sale listings for %s: %w", zipCode, err)
	}

	seen := make(map[string]bool)
	addresses := make([]string, 0, maxAddresses)
	for _, listing := range listings {
		addr, _ := listing["formattedAddress"].(string)
		if addr == "" || seen[addr] {
			continue
		}
		seen[addr] = true
		addresses = append(addresses, addr)
		if len(addresses) >= maxAddresses {
			break
		}
	}
	log.Printf("extract: found %d unique addresses in %s", len(addresses), zipCode)
	return addresses, nil
}

// FetchPropertyData pulls the property record and the sale-listing record
// for each address. The two lookups for one address run concurrently;
// addresses themselves are walked sequentially with a pause in between to
// respect the provider's rate limit. An address with no data on one side
// is logged and skipped on that side only; request failures after retries
// are likewise skipped so one bad address cannot sink the batch.
func (c *Client) FetchPropertyData(ctx context.Context, addresses []string) (props, listings []records.Record, err error) {
	for i, addr := range addresses {
		query := url.Values{}
		query.Set("address", addr)

		var propJSON, saleJSON []map[string]any
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			if err := c.getJSON(gctx, "/properties", query, &propJSON); err != nil {
				log.Printf("extract: property lookup failed for %q: %v", addr, err)
			}
			return gctx.Err()
		})
		g.Go(func() error {
			if err := c.getJSON(gctx, "/listings/sale", query, &saleJSON); err != nil {
				log.Printf("extract: sale listing lookup failed for %q: %v", addr, err)
			}
			return gctx.Err()
		})
		if err := g.Wait(); err != nil {
			return nil, nil, err
		}

		if len(propJSON) > 0 {
			props = append(props, records.Flatten(propJSON[0]))
		} else {
			log.Printf("extract: no property data for %q", addr)
		}
		if len(saleJSON) > 0 {
			listings = append(listings, records.Flatten(saleJSON[0]))
		} else {
			log.Printf("extract: no sale listing for %q", addr)
		}

		if i+1 < len(addresses) {
			if err := sleepWithContext(ctx, c.sleep, c.pause); err != nil {
				return nil, nil, err
			}
		}
	}
	return props, listings, nil
}

// Fetch is the full extraction pass: search a ZIP code for sale listings,
// collect unique addresses and pull the property plus sale-listing record
// pair for each one.
func (c *Client) Fetch(ctx context.Context, zipCode string, limit, maxAddresses int) (props, listings []records.Record, err error) {
	addresses, err := c.FetchAddresses(ctx, zipCode, limit, maxAddresses)
	if err != nil {
		return nil, nil, err
	}
	props, listings, err = c.FetchPropertyData(ctx, addresses)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("extract: done, %d property records, %d sale listings", len(props), len(listings))
	return props, listings, nil
}
