// Package detector classifies a source URL so study sets can be tagged with
// where their material came from.
package detector

import (
	"net/url"
	"regexp"
	"strings"
)

// Source kinds, in rule order.
const (
	KindCanvas    = "canvas"
	KindWikipedia = "wikipedia"
	KindDocs      = "docs"
	KindAcademic  = "academic"
	KindNews      = "news"
	KindBlog      = "blog"
	KindArticle   = "article"
	KindUnknown   = "unknown"
)

// Classification is the result of looking at a URL.
type Classification struct {
	Kind       string // canvas, wikipedia, docs, academic, news, blog, article
	DomainType string // gov, edu, academic, mobile, commercial
	Country    string // TLD-based guess: us, uk, de, ...
}

// Rule matches a URL against optional host and path patterns. A nil pattern
// matches anything; a rule with both set needs both to match.
type Rule struct {
	Kind string
	Host *regexp.Regexp
	Path *regexp.Regexp
}

func (r Rule) Match(host, path string) bool {
	if r.Host == nil && r.Path == nil {
		return false
	}
	if r.Host != nil && !r.Host.MatchString(host) {
		return false
	}
	if r.Path != nil && !r.Path.MatchString(path) {
		return false
	}
	return true
}

// Rules is evaluated top to bottom; the first match wins.
var Rules = []Rule{
	{Kind: KindCanvas, Host: regexp.MustCompile(`(^|\.)instructure\.com$`)},
	{Kind: KindCanvas, Host: regexp.MustCompile(`(^|\.)canvas\.`), Path: regexp.MustCompile(`^/courses/\d+`)},
	{Kind: KindWikipedia, Host: regexp.MustCompile(`(^|\.)(wikipedia|wikibooks|wikiversity)\.org$`)},
	{Kind: KindDocs, Host: regexp.MustCompile(`^(docs|developer|developers|documentation)\.`)},
	{Kind: KindDocs, Path: regexp.MustCompile(`^/(docs?|documentation|reference|manual)(/|$)`)},
	{Kind: KindDocs, Host: regexp.MustCompile(`(^|\.)(readthedocs\.io|pkg\.go\.dev|developer\.mozilla\.org)$`)},
	{Kind: KindAcademic, Host: regexp.MustCompile(`(^|\.)(arxiv\.org|doi\.org|researchgate\.net|academia\.edu|biorxiv\.org|medrxiv\.org|ssrn\.com|jstor\.org|pubmed\.ncbi\.nlm\.nih\.gov|scholar\.google\.com)$`)},
	{Kind: KindAcademic, Host: regexp.MustCompile(`\.edu$`)},
	{Kind: KindNews, Host: regexp.MustCompile(`(^|\.)(bbc\.co\.uk|bbc\.com|nytimes\.com|reuters\.com|apnews\.com|theguardian\.com|techcrunch\.com|wired\.com|arstechnica\.com|theverge\.com)$`)},
	{Kind: KindNews, Host: regexp.MustCompile(`(^|\.)news\.`)},
	{Kind: KindBlog, Host: regexp.MustCompile(`(^|\.)(blog\.|medium\.com$|substack\.com$)`)},
	{Kind: KindBlog, Path: regexp.MustCompile(`^/blog(/|$)`)},
}

var countries = map[string]string{
	"uk": "uk", "de": "de", "fr": "fr", "jp": "jp", "cn": "cn",
	"au": "au", "ca": "ca", "in": "in", "br": "br", "ru": "ru",
	"it": "it", "es": "es", "nl": "nl", "se": "se", "ch": "ch",
}

var academicHosts = []string{
	"arxiv.org", "doi.org", "pubmed.ncbi.nlm.nih.gov",
	"scholar.google.com", "researchgate.net", "academia.edu",
	"biorxiv.org", "medrxiv.org", "ssrn.com",
}

// Classify never fails: unparseable or non-http URLs come back as unknown.
func Classify(rawURL string) Classification {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return Classification{Kind: KindUnknown, DomainType: "unknown", Country: "unknown"}
	}
	host := strings.ToLower(u.Hostname())
	path := strings.ToLower(u.Path)

	c := Classification{
		Kind:       KindArticle,
		DomainType: domainType(host),
		Country:    country(host),
	}
	for _, r := range Rules {
		if r.Match(host, path) {
			c.Kind = r.Kind
			break
		}
	}
	return c
}

func domainType(host string) string {
	if strings.HasSuffix(host, ".gov") || strings.HasSuffix(host, ".mil") {
		return "gov"
	}
	if strings.HasSuffix(host, ".edu") {
		return "edu"
	}
	for _, domain := range academicHosts {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return "academic"
		}
	}
	if strings.HasPrefix(host, "m.") || strings.HasPrefix(host, "mobile.") {
		return "mobile"
	}
	return "commercial"
}

func country(host string) string {
	parts := strings.Split(host, ".")
	if len(parts) < 2 {
		return "unknown"
	}
	tld := parts[len(parts)-1]
	if c, ok := countries[tld]; ok {
		return c
	}
	if tld == "gov" || tld == "edu" || tld == "mil" {
		return "us"
	}
	return "unknown"
}
