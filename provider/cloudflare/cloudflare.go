package cloudflare

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/cloudflare/cloudflare-go"

	"github.com/evanofslack/dns-manager-sync/api"
	"github.com/evanofslack/dns-manager-sync/metrics"
)

// Provider lists zones and records for one Cloudflare account via the v4 API.
type Provider struct {
	cf      *cloudflare.API
	metrics *metrics.Metrics
}

func New(token string, m *metrics.Metrics) (*Provider, error) {
	if token == "" {
		return nil, fmt.Errorf("cloudflare api token empty")
	}
	cf, err := cloudflare.NewWithAPIToken(token)
	if err != nil {
		return nil, fmt.Errorf("init cloudflare client: %w", err)
	}
	return &Provider{cf: cf, metrics: m}, nil
}

func (p *Provider) ListDomains(ctx context.Context, page, pageSize int) (api.DomainPage, error) {
	slog.Debug("Listing cloudflare zones", "page", page, "page_size", pageSize)

	resp, err := p.cf.ListZonesContext(ctx, cloudflare.WithPagination(cloudflare.PaginationOptions{
		Page:    page,
		PerPage: pageSize,
	}))
	if err != nil {
		p.metrics.IncProviderRequest("cloudflare", "list_domains", false)
		return api.DomainPage{}, wrapErr(err)
	}

	dp := api.DomainPage{
		Page:       resp.ResultInfo.Page,
		PageSize:   resp.ResultInfo.PerPage,
		TotalCount: resp.ResultInfo.Total,
		HasMore:    resp.ResultInfo.Page < resp.ResultInfo.TotalPages,
	}
	for _, z := range resp.Result {
		dp.Items = append(dp.Items, api.Domain{
			ID:     z.ID,
			Name:   z.Name,
			Status: z.Status,
		})
	}
	p.metrics.IncProviderRequest("cloudflare", "list_domains", true)
	return dp, nil
}

func (p *Provider) ListRecords(ctx context.Context, domainID string, page, pageSize int, filter api.RecordFilter) (api.RecordPage, error) {
	slog.Debug("Listing cloudflare records", "zone", domainID, "page", page, "page_size", pageSize)

	params := cloudflare.ListDNSRecordsParams{
		ResultInfo: cloudflare.ResultInfo{
			Page:    page,
			PerPage: pageSize,
		},
	}
	if filter.Type != "" {
		params.Type = string(filter.Type)
	}
	if filter.Keyword != "" {
		params.Name = filter.Keyword
	}

	records, info, err := p.cf.ListDNSRecords(ctx, cloudflare.ZoneIdentifier(domainID), params)
	if err != nil {
		p.metrics.IncProviderRequest("cloudflare", "list_records", false)
		return api.RecordPage{}, wrapErr(err)
	}

	rp := api.RecordPage{
		Page:       info.Page,
		PageSize:   info.PerPage,
		TotalCount: info.Total,
		HasMore:    info.Page < info.TotalPages,
	}
	for _, r := range records {
		rec := api.DNSRecord{
			ID:      r.ID,
			Name:    r.Name,
			Type:    api.RecordType(r.Type),
			Content: r.Content,
			TTL:     r.TTL,
		}
		if !rec.Type.Known() {
			continue
		}
		if r.Priority != nil {
			rec.Priority = *r.Priority
		}
		if r.Proxied != nil {
			rec.Proxied = *r.Proxied
		}
		rp.Items = append(rp.Items, rec)
	}
	p.metrics.IncProviderRequest("cloudflare", "list_records", true)
	return rp, nil
}

func wrapErr(err error) error {
	var cfErr *cloudflare.Error
	if errors.As(err, &cfErr) {
		if cfErr.StatusCode == http.StatusUnauthorized || cfErr.StatusCode == http.StatusForbidden {
			return fmt.Errorf("cloudflare: %v: %w", err, api.ErrCredentialRejected)
		}
	}
	return fmt.Errorf("cloudflare: %w", err)
}
