package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"artpay-checkout/internal/domain"
)

type FavouriteWriter interface {
	Add(ctx context.Context, f domain.Favourite) (*domain.Favourite, error)
}

// CSVImporter bulk loads favourites from a user_id,kind,entity_id export.
type CSVImporter struct {
	reader *csv.Reader
	repo   FavouriteWriter
}

func NewCSVImporter(r io.Reader, repo FavouriteWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	return &CSVImporter{
		reader: csvr,
		repo:   repo,
	}
}

var requiredHeaders = []string{"user_id", "kind", "entity_id"}

// Run adds every row and returns how many were written. A row with an empty
// user_id belongs to the user of the row above it. Existing favourites are
// left as they are.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, h := range requiredHeaders {
		if _, ok := index[h]; !ok {
			return 0, fmt.Errorf("missing %q column", h)
		}
	}

	var (
		currentUser int64
		imported    int
	)
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		line, _ := i.reader.FieldPos(0)

		fav, ok, err := parseRow(record, index, currentUser)
		if err != nil {
			return imported, fmt.Errorf("line %d: %w", line, err)
		}
		if !ok {
			continue
		}
		currentUser = fav.UserID

		if _, err := i.repo.Add(ctx, fav); err != nil {
			return imported, fmt.Errorf("line %d: add favourite: %w", line, err)
		}
		imported++
	}
	return imported, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int, currentUser int64) (domain.Favourite, bool, error) {
	userRaw := pick(record, index, "user_id")
	kindRaw := pick(record, index, "kind")
	entityRaw := pick(record, index, "entity_id")
	if userRaw == "" && kindRaw == "" && entityRaw == "" {
		return domain.Favourite{}, false, nil
	}

	userID := currentUser
	if userRaw != "" {
		id, err := strconv.ParseInt(userRaw, 10, 64)
		if err != nil || id <= 0 {
			return domain.Favourite{}, false, fmt.Errorf("invalid user_id %q", userRaw)
		}
		userID = id
	}
	if userID == 0 {
		return domain.Favourite{}, false, errors.New("user_id missing and no previous row to inherit it from")
	}

	kind, err := domain.ParseFavouriteKind(kindRaw)
	if err != nil {
		return domain.Favourite{}, false, err
	}
	entityID, err := strconv.ParseInt(entityRaw, 10, 64)
	if err != nil || entityID <= 0 {
		return domain.Favourite{}, false, fmt.Errorf("invalid entity_id %q", entityRaw)
	}
	return domain.Favourite{UserID: userID, Kind: kind, EntityID: entityID}, true, nil
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
