// Package views turns fetched and derived data into the view models the
// dashboard renders. Every function here is pure: unknown inputs become
// placeholders or explicit messages, never zeros.
package views

import (
	"net/url"
	"strings"

	"github.com/aristath/minty/internal/domain"
)

// DefaultSymbol is shown when no symbol is requested or the symbol is not in the catalog
const DefaultSymbol = "NVDA"

var catalog = map[string]domain.StockInfo{
	"NVDA": {
		Symbol:       "NVDA",
		Name:         "NVIDIA",
		Description:  "NVIDIA Corporation is a multinational technology company that designs graphics processing units (GPUs) for the gaming and professional markets, as well as system on a chip units (SoCs) for the mobile computing and automotive market.",
		Sector:       "Technology",
		Industry:     "Semiconductors",
		Founded:      "1993",
		Headquarters: "Santa Clara, California",
	},
	"AAPL": {
		Symbol:       "AAPL",
		Name:         "Apple",
		Description:  "Apple Inc. is an American multinational technology company that specializes in consumer electronics, computer software, and online services. Apple is the world's largest technology company by revenue.",
		Sector:       "Technology",
		Industry:     "Consumer Electronics",
		Founded:      "1976",
		Headquarters: "Cupertino, California",
	},
	"GOOGL": {
		Symbol:       "GOOGL",
		Name:         "Google",
		Description:  "Alphabet Inc. is an American multinational technology conglomerate holding company. It is the parent company of Google and several former Google subsidiaries.",
		Sector:       "Technology",
		Industry:     "Internet Services",
		Founded:      "1998",
		Headquarters: "Mountain View, California",
	},
	"MSFT": {
		Symbol:       "MSFT",
		Name:         "Microsoft",
		Description:  "Microsoft Corporation is an American multinational technology company which produces computer software, consumer electronics, personal computers, and related services.",
		Sector:       "Technology",
		Industry:     "Software",
		Founded:      "1975",
		Headquarters: "Redmond, Washington",
	},
	"TSLA": {
		Symbol:       "TSLA",
		Name:         "Tesla",
		Description:  "Tesla, Inc. is an American electric vehicle and clean energy company based in Austin, Texas. Tesla designs and manufactures electric cars, battery energy storage, solar panels, and related products and services.",
		Sector:       "Consumer Discretionary",
		Industry:     "Automobiles",
		Founded:      "2003",
		Headquarters: "Austin, Texas",
	},
	"META": {
		Symbol:       "META",
		Name:         "Meta",
		Description:  "Meta Platforms, Inc. is an American multinational technology conglomerate. The company owns Facebook, Instagram, and WhatsApp, among other products and services.",
		Sector:       "Technology",
		Industry:     "Internet Services",
		Founded:      "2004",
		Headquarters: "Menlo Park, California",
	},
	"AMZN": {
		Symbol:       "AMZN",
		Name:         "Amazon",
		Description:  "Amazon.com, Inc. is an American multinational technology company focusing on e-commerce, cloud computing, digital streaming, and artificial intelligence.",
		Sector:       "Consumer Discretionary",
		Industry:     "Internet Retail",
		Founded:      "1994",
		Headquarters: "Seattle, Washington",
	},
	"AMD": {
		Symbol:       "AMD",
		Name:         "AMD",
		Description:  "Advanced Micro Devices, Inc. is an American multinational semiconductor company that develops computer processors and related technologies for business and consumer markets.",
		Sector:       "Technology",
		Industry:     "Semiconductors",
		Founded:      "1969",
		Headquarters: "Santa Clara, California",
	},
}

// NormalizeSymbol upper-cases a requested symbol, defaulting to DefaultSymbol
func NormalizeSymbol(symbol string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return DefaultSymbol
	}
	return symbol
}

// About returns the catalog entry for symbol, falling back to DefaultSymbol
func About(symbol string) domain.StockInfo {
	if info, ok := catalog[strings.ToUpper(symbol)]; ok {
		return info
	}
	return catalog[DefaultSymbol]
}

// DisplayName returns the company name for symbol, or the symbol itself
func DisplayName(symbol string) string {
	if info, ok := catalog[strings.ToUpper(symbol)]; ok {
		return info.Name
	}
	return symbol
}

// TradeLink is the trade page URL for symbol and side
func TradeLink(symbol string, side domain.OrderSide) string {
	return "trade.html?symbol=" + url.QueryEscape(symbol) + "&side=" + url.QueryEscape(string(side))
}
