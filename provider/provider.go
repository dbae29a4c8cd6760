package provider

import (
	"context"

	"github.com/evanofslack/dns-manager-sync/api"
)

// Client lists domains and records for a single configured account. One
// instance is constructed per account with that account's credentials.
type Client interface {
	ListDomains(ctx context.Context, page, pageSize int) (api.DomainPage, error)
	ListRecords(ctx context.Context, domainID string, page, pageSize int, filter api.RecordFilter) (api.RecordPage, error)
}

// Registry maps account ids to their provider clients and provider ids.
type Registry struct {
	clients   map[string]Client
	providers map[string]string
}

func NewRegistry() *Registry {
	return &Registry{
		clients:   make(map[string]Client),
		providers: make(map[string]string),
	}
}

func (r *Registry) Register(accountID, providerID string, c Client) {
	r.clients[accountID] = c
	r.providers[accountID] = providerID
}

func (r *Registry) Client(accountID string) (Client, bool) {
	c, ok := r.clients[accountID]
	return c, ok
}

func (r *Registry) ProviderID(accountID string) (string, bool) {
	id, ok := r.providers[accountID]
	return id, ok
}

// ForAccount resolves the capability row for the account's provider. Unknown
// accounts and unknown providers both fall back to the default row.
func (r *Registry) ForAccount(accountID string) Capabilities {
	id, ok := r.providers[accountID]
	if !ok {
		return defaultCapabilities
	}
	return Lookup(id)
}
