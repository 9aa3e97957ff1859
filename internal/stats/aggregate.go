// Package stats derives time-bucketed income and engagement figures
// from a room's recorded events.
package stats

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	eventdomain "github.com/streamlens/streamlens/internal/event/domain"
)

// Bucket is one half-hour window with at least one contributing event.
type Bucket struct {
	TimeRange string  `json:"time_range"`
	Income    float64 `json:"income"`
	Comments  int     `json:"comments"`
}

// PriceLookup resolves a gift id to its current unit price. Prices are
// looked up live at aggregation time, never taken from the event
// payload, so recomputing historical stats reflects the current table.
type PriceLookup interface {
	Get(giftID string) float64
}

// Aggregate folds timestamp-ordered chat and gift records into
// half-hour buckets. Buckets appear in order of first contribution;
// windows without events are omitted.
func Aggregate(records []eventdomain.Record, prices PriceLookup) []Bucket {
	index := make(map[string]int)
	buckets := make([]Bucket, 0)

	for _, record := range records {
		label := bucketLabel(record.Timestamp)
		i, ok := index[label]
		if !ok {
			i = len(buckets)
			index[label] = i
			buckets = append(buckets, Bucket{TimeRange: label})
		}

		switch record.Type {
		case eventdomain.TypeChat:
			buckets[i].Comments++
		case eventdomain.TypeGift:
			repeat := numericField(record.Payload["repeatCount"], 1)
			unit := prices.Get(giftKey(record.Payload["giftId"]))
			buckets[i].Income += repeat * unit
		}
	}

	return buckets
}

// bucketLabel maps a timestamp to its half-hour window label. An end
// hour of 24 renders as "00:00" for display; the bucket stays distinct
// from the next day's first window.
func bucketLabel(t time.Time) string {
	hour := t.Hour()
	if t.Minute() < 30 {
		return fmt.Sprintf("%02d:00-%02d:30", hour, hour)
	}
	end := fmt.Sprintf("%02d:00", hour+1)
	if hour+1 == 24 {
		end = "00:00"
	}
	return fmt.Sprintf("%02d:30-%s", hour, end)
}

// giftKey renders the payload's gift id the way the price book keys
// it. JSON round-trips turn numeric ids into float64.
func giftKey(v any) string {
	switch id := v.(type) {
	case string:
		return strings.TrimSpace(id)
	case json.Number:
		return id.String()
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case int:
		return strconv.Itoa(id)
	case int64:
		return strconv.FormatInt(id, 10)
	default:
		return ""
	}
}

func numericField(v any, def float64) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return def
		}
		return parsed
	default:
		return def
	}
}
