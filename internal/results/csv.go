package results

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// utf8BOM keeps spreadsheet software from mangling umlauts in the export.
const utf8BOM = "\uFEFF"

var csvHeader = []string{"Name", "Alter", "Einrichtung", "Standort", "Stimmen"}

// WriteCSV streams the ranked results as a CSV document. Rows appear in the
// same order as the results endpoint.
func (s *Service) WriteCSV(ctx context.Context, w io.Writer) error {
	tallies, err := s.store.Tallies(ctx)
	if err != nil {
		return err
	}
	rankTallies(tallies)

	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, t := range tallies {
		age := ""
		if t.Age != nil {
			age = strconv.Itoa(*t.Age)
		}
		row := []string{t.Name, age, t.FacilityName, t.FacilityLocation, strconv.FormatInt(t.VoteCount, 10)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
