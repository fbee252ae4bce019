package domain

import (
	"fmt"
	"strings"
	"time"
)

type FavouriteKind string

const (
	FavouriteArtwork FavouriteKind = "artwork"
	FavouriteArtist  FavouriteKind = "artist"
	FavouriteGallery FavouriteKind = "gallery"
)

func ParseFavouriteKind(raw string) (FavouriteKind, error) {
	switch k := FavouriteKind(strings.ToLower(strings.TrimSpace(raw))); k {
	case FavouriteArtwork, FavouriteArtist, FavouriteGallery:
		return k, nil
	}
	return "", fmt.Errorf("%w: unknown kind %q", ErrInvalidFavourite, raw)
}

// Favourite is a user following an artwork, artist or gallery.
type Favourite struct {
	UserID    int64         `json:"userId"`
	Kind      FavouriteKind `json:"kind"`
	EntityID  int64         `json:"entityId"`
	CreatedAt time.Time     `json:"createdAt"`
}
