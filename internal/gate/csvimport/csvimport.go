// Package csvimport loads the card registry from a semicolon-delimited
// file. Import is a startup-time convenience: rows that cannot be parsed
// are collected and reported, and the rest of the file still imports.
package csvimport

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/clubgate/clubgate/internal/gate/store"
)

// Expected header: uid;name;card_type;valid_from;valid_until;teams;notes
var requiredColumns = []string{"uid", "name", "card_type", "valid_from", "valid_until", "teams", "notes"}

// RowError is one row that could not be imported.
type RowError struct {
	Line int // 1-based line number in the file
	UID  string
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d (uid %q): %v", e.Line, e.UID, e.Err)
}

// Result summarizes one import run.
type Result struct {
	ImportID string // per-run id so log lines are attributable
	Imported int
	Failed   []RowError
}

// ImportFile reads path and upserts every parseable row by UID.
func ImportFile(ctx context.Context, path string, cards store.CardStore, logger *log.Logger) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	res, err := Import(ctx, f, cards)
	if err != nil {
		return res, err
	}

	logger.Printf("import %s: %d cards from %s, %d failed rows", res.ImportID, res.Imported, path, len(res.Failed))
	for _, fr := range res.Failed {
		logger.Printf("import %s: skipped %v", res.ImportID, fr)
	}
	return res, nil
}

// Import parses semicolon-delimited card rows from r and upserts them.
// Malformed rows are skipped and reported in the result; only a broken
// header or a store failure aborts the run.
func Import(ctx context.Context, r io.Reader, cards store.CardStore) (Result, error) {
	res := Result{ImportID: uuid.NewString()}

	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1 // row length validated per row below

	header, err := cr.Read()
	if err != nil {
		return res, fmt.Errorf("read header: %w", err)
	}
	cols, err := columnIndex(header)
	if err != nil {
		return res, err
	}

	var records []store.CardRecord
	line := 1
	for {
		line++
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			res.Failed = append(res.Failed, RowError{Line: line, Err: err})
			continue
		}

		rec, err := parseRow(cols, row)
		if err != nil {
			res.Failed = append(res.Failed, RowError{Line: line, UID: field(cols, row, "uid"), Err: err})
			continue
		}
		records = append(records, rec)
	}

	if err := cards.UpsertCards(ctx, records); err != nil {
		return res, fmt.Errorf("upsert cards: %w", err)
	}
	res.Imported = len(records)
	return res, nil
}

func columnIndex(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, want := range requiredColumns {
		if _, ok := cols[want]; !ok {
			return nil, fmt.Errorf("header is missing column %q", want)
		}
	}
	return cols, nil
}

func parseRow(cols map[string]int, row []string) (store.CardRecord, error) {
	uid := strings.ToUpper(strings.TrimSpace(field(cols, row, "uid")))
	if uid == "" {
		return store.CardRecord{}, errors.New("empty uid")
	}

	var groups []string
	for _, g := range strings.Split(field(cols, row, "teams"), ",") {
		g = strings.TrimSpace(g)
		if g != "" {
			groups = append(groups, g)
		}
	}

	return store.CardRecord{
		UID:        uid,
		HolderName: strings.TrimSpace(field(cols, row, "name")),
		CardType:   strings.TrimSpace(field(cols, row, "card_type")),
		ValidFrom:  strings.TrimSpace(field(cols, row, "valid_from")),
		ValidUntil: strings.TrimSpace(field(cols, row, "valid_until")),
		Groups:     groups,
		Notes:      strings.TrimSpace(field(cols, row, "notes")),
	}, nil
}

// field returns the named column of row, or "" when the row is too short.
func field(cols map[string]int, row []string, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}
