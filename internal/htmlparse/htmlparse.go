// Copyright 2025 The Distsearch Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package htmlparse models the fetch+parse external collaborator a
// Downloader needs: given a URL, retrieve the document and extract a
// title, a short summary, a favicon URL, and its outbound links. A real
// crawler would dedicate far more care to encoding detection, robots.txt,
// and malformed markup; this is the minimal implementation needed to drive
// the Downloader end to end.
package htmlparse

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Document is one fetched-and-parsed page.
type Document struct {
	Title    string
	Summary  string
	Icon     string
	Body     string
	Outlinks []string
}

// Fetcher retrieves and parses one URL.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (Document, error)
}

// HTTPFetcher is a Fetcher backed by net/http and golang.org/x/net/html.
type HTTPFetcher struct {
	Client    *http.Client
	UserAgent string
}

// NewHTTPFetcher returns an HTTPFetcher using http.DefaultClient's
// transport defaults unless client is non-nil.
func NewHTTPFetcher(client *http.Client, userAgent string) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{Client: client, UserAgent: userAgent}
}

// Fetch downloads rawURL and extracts its title, a summary, its favicon,
// and every outbound link it finds.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Document{}, fmt.Errorf("htmlparse: build request: %w", err)
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return Document{}, fmt.Errorf("htmlparse: fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Document{}, fmt.Errorf("htmlparse: fetch %s: status %d", rawURL, resp.StatusCode)
	}

	base, err := url.Parse(rawURL)
	if err != nil {
		return Document{}, fmt.Errorf("htmlparse: parse base url: %w", err)
	}

	return Parse(resp.Body, base)
}

// Parse walks an HTML document read from r, resolving relative links
// against base, and returns the extracted Document.
func Parse(r io.Reader, base *url.URL) (Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return Document{}, fmt.Errorf("htmlparse: parse html: %w", err)
	}

	var doc Document
	var textParts []string
	seenOutlink := make(map[string]struct{})

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					doc.Title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "a":
				if href, ok := attr(n, "href"); ok {
					if abs := resolve(base, href); abs != "" {
						if _, dup := seenOutlink[abs]; !dup {
							seenOutlink[abs] = struct{}{}
							doc.Outlinks = append(doc.Outlinks, abs)
						}
					}
				}
			case "link":
				if rel, ok := attr(n, "rel"); ok && strings.Contains(strings.ToLower(rel), "icon") {
					if href, ok := attr(n, "href"); ok {
						doc.Icon = resolve(base, href)
					}
				}
			case "script", "style":
				return
			}
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				textParts = append(textParts, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	doc.Body = strings.Join(textParts, " ")
	doc.Summary = summarize(doc.Body, 280)
	return doc, nil
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func resolve(base *url.URL, href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(u).String()
}

func summarize(body string, maxLen int) string {
	body = strings.TrimSpace(body)
	if len(body) <= maxLen {
		return body
	}
	return strings.TrimSpace(body[:maxLen]) + "..."
}
