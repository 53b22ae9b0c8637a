package report

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/layout-verifier/internal/entity"
)

var csvHeader = []string{"Item#", "Layout File", "Total Fields", "Matched", "Missing", "Success Rate", "Status", "Missing Fields"}

func renderCSV(w io.Writer, s *entity.VerificationSummary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for i := range s.Results {
		r := &s.Results[i]
		rate := RateText(r)
		if rate == "n/a" {
			rate = ""
		}
		row := []string{
			r.Identifier,
			r.Document,
			strconv.Itoa(r.TotalFields),
			strconv.Itoa(r.MatchedFields),
			strconv.Itoa(r.MissingFields),
			rate,
			Status(r),
			strings.Join(r.Missing, "; "),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	for _, u := range s.Unresolved {
		if err := cw.Write([]string{"N/A", u.Document, "0", "0", "0", "0%", "NO_MATCH", ""}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
