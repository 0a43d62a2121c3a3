package reporting

import (
	"strings"

	"github.com/taskilo/backend/internal/domain/shared"
)

// Feed identifies one of the four raw snapshot inputs.
type Feed string

// Supported feeds.
const (
	FeedOrders   Feed = "orders"
	FeedExpenses Feed = "expenses"
	FeedQuotes   Feed = "quotes"
	FeedInvoices Feed = "invoices"
)

// AllFeeds returns the supported feeds in canonical order.
func AllFeeds() []Feed {
	return []Feed{FeedOrders, FeedExpenses, FeedQuotes, FeedInvoices}
}

// ParseFeed parses a feed name from a request path segment.
func ParseFeed(s string) (Feed, error) {
	switch Feed(strings.ToLower(strings.TrimSpace(s))) {
	case FeedOrders:
		return FeedOrders, nil
	case FeedExpenses:
		return FeedExpenses, nil
	case FeedQuotes:
		return FeedQuotes, nil
	case FeedInvoices:
		return FeedInvoices, nil
	default:
		return "", shared.ErrUnknownFeed
	}
}
