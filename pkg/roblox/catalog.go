package roblox

import (
	"context"
	"encoding/json"

	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/client"
)

type catalogItem struct {
	ItemType string `json:"itemType"`
	ID       int64  `json:"id"`
}

type catalogRequest struct {
	Items []catalogItem `json:"items"`
}

// AssetCreators resolves the creator of each asset through the bulk catalog
// details endpoint, batchSize ids per request (<= 0 uses the configured
// default). Duplicate ids are looked up once. Every batch is attempted; if
// any fails, the creators that were resolved are returned together with a
// *PartialBatchError listing the rest. onBatch, when set, is called after
// each batch with the number of ids processed so far.
func (a *API) AssetCreators(ctx context.Context, assetIDs []int64, batchSize int, onBatch func(done, total int)) (map[int64]int64, error) {
	if batchSize <= 0 {
		batchSize = a.config.DetailBatchSize
	}

	ids := uniqueIDs(assetIDs)
	creators := make(map[int64]int64, len(ids))
	url := a.config.Endpoints.CatalogDetailsURL()

	partial := &PartialBatchError{}
	done := 0

	for start := 0; start < len(ids); start += batchSize {
		end := start + batchSize
		if end > len(ids) {
			end = len(ids)
		}
		batch := ids[start:end]

		if err := ctx.Err(); err != nil {
			return creators, err
		}

		err := a.detailsBatch(ctx, url, batch, creators)
		partial.Batches++
		if err != nil {
			if ctx.Err() != nil {
				return creators, ctx.Err()
			}
			partial.Failed++
			partial.Unresolved = append(partial.Unresolved, batch...)
			if partial.Err == nil {
				partial.Err = err
			}
			a.logger.Warn().
				Err(err).
				Int("batch_size", len(batch)).
				Str("error_class", string(client.ClassifyError(err))).
				Msg("Asset details batch failed")
		}

		done += len(batch)
		if onBatch != nil {
			onBatch(done, len(ids))
		}
	}

	if partial.Failed > 0 {
		return creators, partial
	}
	return creators, nil
}

// detailsBatch posts one batch and merges the records into creators.
func (a *API) detailsBatch(ctx context.Context, url string, batch []int64, creators map[int64]int64) error {
	body := catalogRequest{Items: make([]catalogItem, len(batch))}
	for i, id := range batch {
		body.Items[i] = catalogItem{ItemType: "Asset", ID: id}
	}

	var raw json.RawMessage
	err := client.Retry(ctx, a.config.Retry, func() error {
		return a.client.PostJSON(ctx, url, body, &raw)
	})
	if err != nil {
		return err
	}

	entries, err := records(raw, true, "data")
	if err != nil {
		return &client.ParseError{URL: url, Err: err}
	}
	for _, entry := range entries {
		if d, ok := parseAssetDetail(entry); ok {
			creators[d.AssetID] = d.CreatorID
		}
	}
	return nil
}

// uniqueIDs drops zero and repeated ids, keeping first-seen order.
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
