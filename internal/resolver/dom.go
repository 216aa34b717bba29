package resolver

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rohmanhakim/pypi-scraper/pkg/failure"
)

// listingSelector matches the package listing table on the index homepage.
// Each row links to a package page whose path carries the package name.
const listingSelector = "table.list a"

// ExtractPackageNames parses the index homepage markup and returns the package
// names found in the listing, in document order, duplicates included.
//
// A link's package name is the second path segment of its href
// (e.g. /pypi/requests → "requests", /pypi/flask/json → "flask").
// Links without a usable path segment are skipped, not errors.
func ExtractPackageNames(htmlBody []byte) ([]string, failure.ClassifiedError) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlBody))
	if err != nil {
		return nil, &ResolutionError{
			Message: fmt.Sprintf("failed to parse index page: %v", err),
			Cause:   ErrCauseIndexUnparseable,
		}
	}

	var names []string
	doc.Find(listingSelector).Each(func(_ int, sel *goquery.Selection) {
		href, exists := sel.Attr("href")
		if !exists {
			return
		}
		if name, ok := packageNameFromHref(href); ok {
			names = append(names, name)
		}
	})

	return names, nil
}

// packageNameFromHref extracts the package name from a listing link.
// Handles both relative (/pypi/name) and absolute (https://host/pypi/name) hrefs.
func packageNameFromHref(href string) (string, bool) {
	parsed, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", false
	}

	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(segments) < 2 {
		return "", false
	}

	name := segments[1]
	if name == "" {
		return "", false
	}
	return name, true
}
