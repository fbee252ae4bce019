package httpserver

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"artpay-checkout/internal/domain"
)

func TestFavouritesCRUD(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodPut, "/users/7/favourites/artwork/900", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = env.do(http.MethodPut, "/users/7/favourites/artwork/900", "")
	require.Equal(t, http.StatusOK, rec.Code, "adding twice is idempotent")
	rec = env.do(http.MethodPut, "/users/7/favourites/gallery/31", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodGet, "/users/7/favourites", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list favouritesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Equal(t, 2, list.Count)

	rec = env.do(http.MethodDelete, "/users/7/favourites/artwork/900", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = env.do(http.MethodDelete, "/users/7/favourites/artwork/900", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFavouritesValidation(t *testing.T) {
	env := newTestEnv(t, nil)
	require.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/users/abc/favourites", "").Code)
	require.Equal(t, http.StatusBadRequest, env.do(http.MethodPut, "/users/7/favourites/sculpture/1", "").Code)
	require.Equal(t, http.StatusBadRequest, env.do(http.MethodPut, "/users/7/favourites/artist/0", "").Code)
}

func TestFavouritesStream(t *testing.T) {
	env := newTestEnv(t, nil)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/users/7/favourites/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	require.Eventually(t, func() bool { return env.favs.Hub().Subscribers(7) == 1 }, 2*time.Second, 10*time.Millisecond)
	_, err = env.favs.Add(context.Background(), 7, domain.FavouriteArtist, 5)
	require.NoError(t, err)

	scanner := bufio.NewScanner(resp.Body)
	var event, data string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		}
		if event == "favourite" && data != "" {
			break
		}
	}
	require.Equal(t, "favourite", event)
	require.Contains(t, data, `"type":"added"`)
	require.Contains(t, data, `"entityId":5`)
}
