package api

// Domain is a DNS zone owned by a single account. Metadata is local to the
// manager and never written to the DNS provider itself.
type Domain struct {
	ID        string   `json:"id"`
	AccountID string   `json:"accountId"`
	Name      string   `json:"name"`
	Status    string   `json:"status"`
	Metadata  Metadata `json:"metadata"`
}

// Metadata holds the user-assigned organization fields for a domain.
// FavoritedAt records the first time the domain was ever favorited, in unix
// seconds; zero means never. It is written once and never cleared, even when
// the domain is later un-favorited.
type Metadata struct {
	IsFavorite  bool     `json:"isFavorite"`
	Tags        []string `json:"tags"`
	Color       Color    `json:"color"`
	Note        string   `json:"note"`
	FavoritedAt int64    `json:"favoritedAt"`
	UpdatedAt   int64    `json:"updatedAt"`
}

// MetadataPatch is a partial metadata update. Nil fields are left untouched
// by the server.
type MetadataPatch struct {
	IsFavorite *bool     `json:"isFavorite,omitempty"`
	Tags       *[]string `json:"tags,omitempty"`
	Color      *Color    `json:"color,omitempty"`
	Note       *string   `json:"note,omitempty"`
}

type Color string

const (
	ColorNone   Color = "none"
	ColorRed    Color = "red"
	ColorOrange Color = "orange"
	ColorYellow Color = "yellow"
	ColorGreen  Color = "green"
	ColorBlue   Color = "blue"
	ColorPurple Color = "purple"
)

var Colors = []Color{ColorNone, ColorRed, ColorOrange, ColorYellow, ColorGreen, ColorBlue, ColorPurple}

func (c Color) Known() bool {
	switch c {
	case ColorNone, ColorRed, ColorOrange, ColorYellow, ColorGreen, ColorBlue, ColorPurple:
		return true
	}
	return false
}

type RecordType string

const (
	TypeA     RecordType = "A"
	TypeAAAA  RecordType = "AAAA"
	TypeCNAME RecordType = "CNAME"
	TypeMX    RecordType = "MX"
	TypeTXT   RecordType = "TXT"
	TypeNS    RecordType = "NS"
	TypeSRV   RecordType = "SRV"
	TypeCAA   RecordType = "CAA"
)

// RecordTypes enumerates every variant this layer understands. Consumers
// switching on RecordType are tested against this list so a new type cannot
// be silently ignored.
var RecordTypes = []RecordType{TypeA, TypeAAAA, TypeCNAME, TypeMX, TypeTXT, TypeNS, TypeSRV, TypeCAA}

func (t RecordType) Known() bool {
	switch t {
	case TypeA, TypeAAAA, TypeCNAME, TypeMX, TypeTXT, TypeNS, TypeSRV, TypeCAA:
		return true
	}
	return false
}

type DNSRecord struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Type     RecordType `json:"type"`
	Content  string     `json:"content"`
	TTL      int        `json:"ttl"`
	Priority uint16     `json:"priority,omitempty"`
	Proxied  bool       `json:"proxied,omitempty"`
}

// RecordFilter narrows a record listing. Zero values mean no filtering.
type RecordFilter struct {
	Keyword string
	Type    RecordType
}

// DomainPage is one page of a domain listing. TotalCount is -1 when the
// provider does not report a total.
type DomainPage struct {
	Items      []Domain `json:"items"`
	Page       int      `json:"page"`
	PageSize   int      `json:"pageSize"`
	TotalCount int      `json:"totalCount"`
	HasMore    bool     `json:"hasMore"`
}

// RecordPage is one page of a record listing, same conventions as DomainPage.
type RecordPage struct {
	Items      []DNSRecord `json:"items"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalCount int         `json:"totalCount"`
	HasMore    bool        `json:"hasMore"`
}

type TagMode string

const (
	TagModeAdd     TagMode = "add"
	TagModeRemove  TagMode = "remove"
	TagModeReplace TagMode = "replace"
)

// BatchTarget identifies one domain within a cross-account batch operation.
type BatchTarget struct {
	AccountID string `json:"accountId"`
	DomainID  string `json:"domainId"`
}

type FailureReason string

const (
	ReasonNotFound      FailureReason = "not_found"
	ReasonForbidden     FailureReason = "forbidden"
	ReasonQuotaExceeded FailureReason = "quota_exceeded"
	ReasonProviderError FailureReason = "provider_error"
	ReasonUnknown       FailureReason = "unknown"
)

var FailureReasons = []FailureReason{ReasonNotFound, ReasonForbidden, ReasonQuotaExceeded, ReasonProviderError, ReasonUnknown}

func (r FailureReason) Known() bool {
	switch r {
	case ReasonNotFound, ReasonForbidden, ReasonQuotaExceeded, ReasonProviderError, ReasonUnknown:
		return true
	}
	return false
}

type BatchFailure struct {
	AccountID string        `json:"accountId"`
	DomainID  string        `json:"domainId"`
	Reason    FailureReason `json:"reason"`
	Message   string        `json:"message,omitempty"`
}

// BatchResult is the first-class outcome of a batch tag operation. Partial
// failure is not an error; callers partition on Failures.
type BatchResult struct {
	SuccessCount int            `json:"successCount"`
	FailedCount  int            `json:"failedCount"`
	Failures     []BatchFailure `json:"failures"`
}

// Failed reports whether the given target is listed among the failures.
func (r BatchResult) Failed(accountID, domainID string) bool {
	for _, f := range r.Failures {
		if f.AccountID == accountID && f.DomainID == domainID {
			return true
		}
	}
	return false
}
