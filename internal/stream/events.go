// Package stream owns the per-subscriber connection workers that relay
// external live-stream events, the supervisor registry above them, and
// the router that persists and forwards each received event.
package stream

import "time"

// Type tags the closed set of relayed event variants.
type Type string

const (
	TypeChat   Type = "chat"
	TypeGift   Type = "gift"
	TypeLike   Type = "like"
	TypeMember Type = "member"
)

// persistable reports whether events of this type are durably
// recorded. Member joins are forwarded only.
func (t Type) persistable() bool {
	switch t {
	case TypeChat, TypeGift, TypeLike:
		return true
	default:
		return false
	}
}

type Chat struct {
	UniqueID string `json:"uniqueId"`
	Nickname string `json:"nickname"`
	Comment  string `json:"comment"`
	UserID   string `json:"userId"`
	Region   string `json:"region"`
}

type Gift struct {
	UniqueID     string `json:"uniqueId"`
	Nickname     string `json:"nickname"`
	UserID       string `json:"userId"`
	Region       string `json:"region"`
	GiftID       int64  `json:"giftId"`
	GiftName     string `json:"giftName"`
	RepeatCount  int    `json:"repeatCount"`
	GiftType     int    `json:"giftType"`
	DiamondCount int    `json:"diamondCount"`
}

type Like struct {
	UniqueID       string `json:"uniqueId"`
	Nickname       string `json:"nickname"`
	UserID         string `json:"userId"`
	LikeCount      int    `json:"likeCount"`
	TotalLikeCount int    `json:"totalLikeCount"`
}

type Member struct {
	UniqueID string `json:"uniqueId"`
	Nickname string `json:"nickname"`
}

// Event is one tagged variant received from an external connection.
// Exactly the field matching Type is set.
type Event struct {
	Type      Type
	Timestamp time.Time

	Chat   *Chat
	Gift   *Gift
	Like   *Like
	Member *Member
}

// Payload renders the variant as the wire/storage document shape.
func (e Event) Payload() map[string]any {
	switch e.Type {
	case TypeChat:
		if e.Chat == nil {
			return nil
		}
		return map[string]any{
			"uniqueId": e.Chat.UniqueID,
			"nickname": e.Chat.Nickname,
			"comment":  e.Chat.Comment,
			"userId":   e.Chat.UserID,
			"region":   e.Chat.Region,
		}
	case TypeGift:
		if e.Gift == nil {
			return nil
		}
		return map[string]any{
			"uniqueId":     e.Gift.UniqueID,
			"nickname":     e.Gift.Nickname,
			"userId":       e.Gift.UserID,
			"region":       e.Gift.Region,
			"giftId":       e.Gift.GiftID,
			"giftName":     e.Gift.GiftName,
			"repeatCount":  e.Gift.RepeatCount,
			"giftType":     e.Gift.GiftType,
			"diamondCount": e.Gift.DiamondCount,
		}
	case TypeLike:
		if e.Like == nil {
			return nil
		}
		return map[string]any{
			"uniqueId":       e.Like.UniqueID,
			"nickname":       e.Like.Nickname,
			"userId":         e.Like.UserID,
			"likeCount":      e.Like.LikeCount,
			"totalLikeCount": e.Like.TotalLikeCount,
		}
	case TypeMember:
		if e.Member == nil {
			return nil
		}
		return map[string]any{
			"uniqueId": e.Member.UniqueID,
			"nickname": e.Member.Nickname,
		}
	default:
		return nil
	}
}
