package model

import "time"

// Conversation is a thread between a buyer and a seller about one product.
// Created (or fetched, if it already exists) the first time a buyer contacts
// a seller about a product; never deleted by the messaging core.
type Conversation struct {
	ID           int64
	ProductID    int64
	ProductTitle string
	BuyerID      int64
	SellerID     int64

	// Summary fields for the conversation list screen.
	LastMessagePreview string
	LastMessageAt      *time.Time
	UnreadCount        int // scoped to the viewing user, recomputed on rebuild
	CounterpartName    string
}

// CounterpartID returns the other participant relative to the given viewer.
func (c Conversation) CounterpartID(viewerID int64) int64 {
	if viewerID == c.BuyerID {
		return c.SellerID
	}
	return c.BuyerID
}

// IsSeller reports whether the viewer is the selling side of the thread.
func (c Conversation) IsSeller(viewerID int64) bool {
	return viewerID == c.SellerID
}
