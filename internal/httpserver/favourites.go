package httpserver

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"artpay-checkout/internal/domain"
)

type favouritesResponse struct {
	Count   int                `json:"count"`
	Results []domain.Favourite `json:"results"`
}

func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	return id, err == nil && id > 0
}

func (h *handlers) userID(c *gin.Context) (int64, bool) {
	id, ok := parseID(c.Param("userID"))
	if !ok {
		abortWithError(c, http.StatusBadRequest, "InvalidInput", "userID must be a positive integer.")
	}
	return id, ok
}

func (h *handlers) favouriteTarget(c *gin.Context) (domain.FavouriteKind, int64, bool) {
	kind, err := domain.ParseFavouriteKind(c.Param("kind"))
	if err != nil {
		h.writeError(c, err)
		return "", 0, false
	}
	entityID, ok := parseID(c.Param("entityID"))
	if !ok {
		abortWithError(c, http.StatusBadRequest, "InvalidInput", "entityID must be a positive integer.")
		return "", 0, false
	}
	return kind, entityID, true
}

func (h *handlers) listFavourites(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	favs, err := h.deps.Favourites.List(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, favouritesResponse{Count: len(favs), Results: favs})
}

func (h *handlers) addFavourite(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	kind, entityID, ok := h.favouriteTarget(c)
	if !ok {
		return
	}
	fav, err := h.deps.Favourites.Add(c.Request.Context(), userID, kind, entityID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, fav)
}

func (h *handlers) removeFavourite(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	kind, entityID, ok := h.favouriteTarget(c)
	if !ok {
		return
	}
	if err := h.deps.Favourites.Remove(c.Request.Context(), userID, kind, entityID); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// streamFavourites pushes favourite changes as server-sent events until the
// client goes away.
func (h *handlers) streamFavourites(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	events, cancel := h.deps.Favourites.Subscribe(userID)
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.WriteHeaderNow()
	c.Writer.Flush()

	heartbeat := time.NewTicker(h.deps.Heartbeat)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case ev, open := <-events:
			if !open {
				return false
			}
			c.SSEvent("favourite", ev)
			return true
		case <-heartbeat.C:
			c.SSEvent("ping", gin.H{"at": time.Now().UTC()})
			return true
		}
	})
}
