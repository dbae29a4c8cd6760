package provider

// Capabilities describes per-provider limits and feature switches used to
// clamp pagination requests and gate provider-specific fields.
type Capabilities struct {
	MaxPageSizeDomains  int
	MaxPageSizeRecords  int
	SupportsProxyToggle bool
}

// DefaultMaxPageSize is used when a provider has no capability row.
const DefaultMaxPageSize = 100

var defaultCapabilities = Capabilities{
	MaxPageSizeDomains: DefaultMaxPageSize,
	MaxPageSizeRecords: DefaultMaxPageSize,
}

// capabilities holds one row per supported provider id. Rows exist for
// providers without a listing adapter yet; the limits still apply to any
// future adapter and to page-size clamping in the cache layer.
var capabilities = map[string]Capabilities{
	"cloudflare": {MaxPageSizeDomains: 50, MaxPageSizeRecords: 100, SupportsProxyToggle: true},
	"route53":    {MaxPageSizeDomains: 100, MaxPageSizeRecords: 300},
	"aliyun":     {MaxPageSizeDomains: 100, MaxPageSizeRecords: 500},
	"dnspod":     {MaxPageSizeDomains: 100, MaxPageSizeRecords: 3000},
	"huawei":     {MaxPageSizeDomains: 500, MaxPageSizeRecords: 500},
}

// Lookup returns the capability row for a provider id, falling back to the
// default row when the provider is unknown.
func Lookup(providerID string) Capabilities {
	if caps, ok := capabilities[providerID]; ok {
		return caps
	}
	return defaultCapabilities
}
