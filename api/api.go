package api

import "context"

// Client is the remote boundary of the cache layer. Listings are answered by
// the DNS provider that owns the account; metadata and batch tag operations
// are answered by the manager's metadata service in a single call.
type Client interface {
	ListDomains(ctx context.Context, accountID string, page, pageSize int) (DomainPage, error)
	ListRecords(ctx context.Context, accountID, domainID string, page, pageSize int, filter RecordFilter) (RecordPage, error)
	UpdateMetadata(ctx context.Context, accountID, domainID string, patch MetadataPatch) (Metadata, error)
	BatchTags(ctx context.Context, targets []BatchTarget, tags []string, mode TagMode) (BatchResult, error)
}
