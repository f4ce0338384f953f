package scrapemaster

import (
	"net/url"
	"strings"
)

// UnknownDomain is the bucket for page results whose URL yields no usable
// host.
const UnknownDomain = "unknown"

// DomainName extracts the normalized domain from a URL: the host
// component lowercased, with port, IPv6 brackets, trailing dot, and a
// leading "www." stripped. Returns EINVALID if the URL does not parse or
// has no host.
func DomainName(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", Errorf(EINVALID, "invalid URL %q: %v", rawURL, err)
	}

	host := strings.ToLower(u.Hostname())
	host = strings.TrimSuffix(host, ".")
	if host == "" {
		return "", Errorf(EINVALID, "URL %q has no host", rawURL)
	}
	host = strings.TrimPrefix(host, "www.")
	if host == "" {
		return "", Errorf(EINVALID, "URL %q has no host beyond www", rawURL)
	}
	return host, nil
}

// AggregateByDomain groups page results into domain buckets for export.
// Buckets appear in first-seen order and each bucket's pages keep their
// first-seen URL order. Pages whose URL yields no domain are grouped
// under UnknownDomain rather than dropped.
func AggregateByDomain(pages []*PageResult) []*DomainBucket {
	var buckets []*DomainBucket
	index := make(map[string]*DomainBucket)

	for _, page := range pages {
		domain, err := DomainName(page.URL)
		if err != nil {
			domain = UnknownDomain
		}

		bucket, ok := index[domain]
		if !ok {
			bucket = &DomainBucket{Domain: domain}
			index[domain] = bucket
			buckets = append(buckets, bucket)
		}
		bucket.Pages = append(bucket.Pages, page)
	}
	return buckets
}
