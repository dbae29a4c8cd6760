package provider

import (
	"context"

	"github.com/evanofslack/dns-manager-sync/api"
	"github.com/evanofslack/dns-manager-sync/metaservice"
)

// Gateway assembles the remote boundary consumed by the cache layer: domain
// and record listings go straight to the owning account's DNS provider,
// metadata and batch tag operations go to the metadata service.
type Gateway struct {
	registry *Registry
	meta     metaservice.Client
}

var _ api.Client = (*Gateway)(nil)

func NewGateway(registry *Registry, meta metaservice.Client) *Gateway {
	return &Gateway{registry: registry, meta: meta}
}

func (g *Gateway) ListDomains(ctx context.Context, accountID string, page, pageSize int) (api.DomainPage, error) {
	client, ok := g.registry.Client(accountID)
	if !ok {
		return api.DomainPage{}, api.ErrUnknownAccount
	}
	dp, err := client.ListDomains(ctx, page, pageSize)
	if err != nil {
		return api.DomainPage{}, err
	}
	for i := range dp.Items {
		dp.Items[i].AccountID = accountID
	}
	return dp, nil
}

func (g *Gateway) ListRecords(ctx context.Context, accountID, domainID string, page, pageSize int, filter api.RecordFilter) (api.RecordPage, error) {
	client, ok := g.registry.Client(accountID)
	if !ok {
		return api.RecordPage{}, api.ErrUnknownAccount
	}
	return client.ListRecords(ctx, domainID, page, pageSize, filter)
}

func (g *Gateway) UpdateMetadata(ctx context.Context, accountID, domainID string, patch api.MetadataPatch) (api.Metadata, error) {
	return g.meta.UpdateMetadata(ctx, accountID, domainID, patch)
}

func (g *Gateway) BatchTags(ctx context.Context, targets []api.BatchTarget, tags []string, mode api.TagMode) (api.BatchResult, error) {
	return g.meta.BatchTags(ctx, targets, tags, mode)
}
