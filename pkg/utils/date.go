package utils

import (
	"time"
)

// MarketTimezone is the exchange timezone for HOSE/HNX/UPCoM.
const MarketTimezone = "Asia/Ho_Chi_Minh"

var marketLocation = loadMarketLocation()

func loadMarketLocation() *time.Location {
	loc, err := time.LoadLocation(MarketTimezone)
	if err != nil {
		return time.FixedZone("ICT", 7*60*60)
	}
	return loc
}

// MarketLocation returns the Vietnam market location (UTC+7).
func MarketLocation() *time.Location {
	return marketLocation
}

// TimeNowICT returns the current time in Indochina Time.
func TimeNowICT() time.Time {
	return time.Now().In(marketLocation)
}

// TradingDay truncates t to midnight of its market-local calendar day.
func TradingDay(t time.Time) time.Time {
	local := t.In(marketLocation)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, marketLocation)
}

// PrettyDate formats t in market time, e.g. "Thu, 02 May 2024 16:30 +07".
func PrettyDate(t time.Time) string {
	return t.In(marketLocation).Format("Mon, 02 Jan 2006 15:04 MST")
}
