package route53

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/route53/types"

	"github.com/evanofslack/dns-manager-sync/api"
	"github.com/evanofslack/dns-manager-sync/metrics"
)

// Provider lists hosted zones and record sets for one AWS account. Route 53
// paginates with continuation markers rather than page numbers, so pages are
// walked from the start of the listing on every call.
type Provider struct {
	client  *route53.Client
	metrics *metrics.Metrics
}

func New(ctx context.Context, accessKeyID, secretAccessKey, region string, m *metrics.Metrics) (*Provider, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &Provider{client: route53.NewFromConfig(awsCfg), metrics: m}, nil
}

func (p *Provider) ListDomains(ctx context.Context, page, pageSize int) (api.DomainPage, error) {
	slog.Debug("Listing route53 hosted zones", "page", page, "page_size", pageSize)

	dp := api.DomainPage{Page: page, PageSize: pageSize, TotalCount: -1}

	// Batches are sized to the requested page so the target page aligns with
	// the final batch of the walk.
	var marker *string
	for fetched := 0; fetched < page; fetched++ {
		out, err := p.client.ListHostedZones(ctx, &route53.ListHostedZonesInput{
			Marker:   marker,
			MaxItems: aws.Int32(int32(pageSize)),
		})
		if err != nil {
			p.metrics.IncProviderRequest("route53", "list_domains", false)
			return api.DomainPage{}, fmt.Errorf("route53: %w", err)
		}

		if fetched == page-1 {
			for _, z := range out.HostedZones {
				dp.Items = append(dp.Items, api.Domain{
					ID:     trimZoneID(aws.ToString(z.Id)),
					Name:   strings.TrimSuffix(aws.ToString(z.Name), "."),
					Status: "active",
				})
			}
			dp.HasMore = out.IsTruncated
			break
		}
		if !out.IsTruncated {
			break
		}
		marker = out.NextMarker
	}

	if count, err := p.client.GetHostedZoneCount(ctx, &route53.GetHostedZoneCountInput{}); err == nil {
		dp.TotalCount = int(aws.ToInt64(count.HostedZoneCount))
	}
	p.metrics.IncProviderRequest("route53", "list_domains", true)
	return dp, nil
}

func (p *Provider) ListRecords(ctx context.Context, domainID string, page, pageSize int, filter api.RecordFilter) (api.RecordPage, error) {
	slog.Debug("Listing route53 record sets", "zone", domainID, "page", page, "page_size", pageSize)

	// Route 53 has no server-side search, so the type and keyword filters are
	// applied while walking the listing. The walk stops one item past the end
	// of the requested page, which is enough to decide hasMore.
	want := page*pageSize + 1
	var filtered []api.DNSRecord
	exhausted := false

	var nextName *string
	var nextType types.RRType
	for {
		input := &route53.ListResourceRecordSetsInput{
			HostedZoneId:    aws.String(domainID),
			MaxItems:        aws.Int32(300),
			StartRecordName: nextName,
			StartRecordType: nextType,
		}
		out, err := p.client.ListResourceRecordSets(ctx, input)
		if err != nil {
			p.metrics.IncProviderRequest("route53", "list_records", false)
			return api.RecordPage{}, fmt.Errorf("route53: %w", err)
		}

		for _, rrset := range out.ResourceRecordSets {
			filtered = append(filtered, matchRecords(rrset, filter)...)
		}
		if !out.IsTruncated {
			exhausted = true
			break
		}
		if len(filtered) >= want {
			break
		}
		nextName = out.NextRecordName
		nextType = out.NextRecordType
	}

	rp := api.RecordPage{Page: page, PageSize: pageSize, TotalCount: -1}
	if exhausted {
		rp.TotalCount = len(filtered)
	}

	start := (page - 1) * pageSize
	if start < len(filtered) {
		end := start + pageSize
		if end > len(filtered) {
			end = len(filtered)
		}
		rp.Items = append(rp.Items, filtered[start:end]...)
		rp.HasMore = len(filtered) > end || !exhausted
	}
	p.metrics.IncProviderRequest("route53", "list_records", true)
	return rp, nil
}

func matchRecords(rrset types.ResourceRecordSet, filter api.RecordFilter) []api.DNSRecord {
	name := strings.TrimSuffix(aws.ToString(rrset.Name), ".")
	recordType := api.RecordType(rrset.Type)
	if !recordType.Known() {
		return nil
	}
	if filter.Type != "" && recordType != filter.Type {
		return nil
	}
	if filter.Keyword != "" && !strings.Contains(strings.ToLower(name), strings.ToLower(filter.Keyword)) {
		return nil
	}

	ttl := int(aws.ToInt64(rrset.TTL))

	if rrset.AliasTarget != nil {
		return []api.DNSRecord{{
			ID:      recordID(name, string(recordType), aws.ToString(rrset.AliasTarget.DNSName)),
			Name:    name,
			Type:    recordType,
			Content: strings.TrimSuffix(aws.ToString(rrset.AliasTarget.DNSName), "."),
			TTL:     ttl,
		}}
	}

	var records []api.DNSRecord
	for _, rr := range rrset.ResourceRecords {
		value := aws.ToString(rr.Value)
		records = append(records, api.DNSRecord{
			ID:      recordID(name, string(recordType), value),
			Name:    name,
			Type:    recordType,
			Content: value,
			TTL:     ttl,
		})
	}
	return records
}

// Route 53 record sets carry no ids, so one is synthesized from the tuple
// that uniquely identifies a record within a zone.
func recordID(name, recordType, value string) string {
	return name + "|" + recordType + "|" + value
}

func trimZoneID(id string) string {
	return strings.TrimPrefix(id, "/hostedzone/")
}
