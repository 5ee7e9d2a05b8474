// Package crawler holds the fetch-side contracts shared by the transport
// backends (colly, headless) and the retrying DocumentLoader that turns a URL
// into a queryable goquery document.
package crawler
