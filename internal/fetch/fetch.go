// Package fetch downloads form documents from the web, following one
// level of HTML indirection when a landing page links to the actual PDF.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// maxDocumentSize caps downloads; official forms are a few MB at most
const maxDocumentSize = 50 << 20

// preferredKeywords rank candidate links on a landing page
var preferredKeywords = []string{"tax", "form", "return", "income"}

// Client downloads PDF documents. Many government sites serve an HTML
// landing page instead of the document itself, so a non-PDF response is
// scanned for the most plausible PDF link and fetched once more.
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a fetch client with the given request timeout
func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  defaultUserAgent,
	}
}

// FetchPDF downloads the document at rawURL. If the response is HTML,
// the page's anchors are scanned for a PDF link and that link is fetched
// instead. Returns the document bytes or an error when no PDF could be
// obtained.
func (c *Client) FetchPDF(ctx context.Context, rawURL string) ([]byte, error) {
	return c.fetch(ctx, rawURL, true)
}

func (c *Client) fetch(ctx context.Context, rawURL string, followHTML bool) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/pdf") || strings.HasPrefix(string(body), "%PDF-") {
		return body, nil
	}

	if !followHTML {
		return nil, fmt.Errorf("response from %s is not a PDF (%s)", rawURL, contentType)
	}

	link, ok := FindPDFLink(rawURL, body)
	if !ok {
		return nil, fmt.Errorf("no PDF link found on %s", rawURL)
	}
	log.Printf("fetch: following PDF link %s", link)
	return c.fetch(ctx, link, false)
}

// FindPDFLink scans an HTML page for anchors pointing at PDF documents.
// Links mentioning tax, form, return or income in their href or text are
// preferred; otherwise the first PDF link wins. Relative hrefs are
// resolved against the page URL.
func FindPDFLink(pageURL string, body []byte) (string, bool) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", false
	}

	type candidate struct {
		href string
		text string
	}
	var candidates []candidate

	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return "", false
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				href := strings.TrimSpace(attr.Val)
				if !strings.Contains(strings.ToLower(href), ".pdf") {
					continue
				}
				candidates = append(candidates, candidate{href: href, text: nodeText(n)})
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	if len(candidates) == 0 {
		return "", false
	}

	resolve := func(href string) (string, bool) {
		ref, err := url.Parse(href)
		if err != nil {
			return "", false
		}
		return base.ResolveReference(ref).String(), true
	}

	for _, cand := range candidates {
		haystack := strings.ToLower(cand.href + " " + cand.text)
		for _, kw := range preferredKeywords {
			if strings.Contains(haystack, kw) {
				if link, ok := resolve(cand.href); ok {
					return link, true
				}
			}
		}
	}

	return resolve(candidates[0].href)
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}
