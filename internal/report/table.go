package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/joseph-ayodele/layout-verifier/internal/entity"
)

func renderTable(w io.Writer, s *entity.VerificationSummary) error {
	table := tablewriter.NewTable(w)
	table.Header("Item#", "Layout File", "Status", "Matched", "Rate", "Missing")
	for i := range s.Results {
		r := &s.Results[i]
		if err := table.Append(
			r.Identifier,
			r.Document,
			Status(r),
			fmt.Sprintf("%d/%d", r.MatchedFields, r.TotalFields),
			RateText(r),
			strings.Join(r.Missing, ", "),
		); err != nil {
			return err
		}
	}
	for _, u := range s.Unresolved {
		if err := table.Append("N/A", u.Document, "NO_MATCH", "-", "-", ""); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "processed=%s complete=%s partial=%s unresolved=%s extraction_failed=%s overall=%.1f%%\n",
		strconv.Itoa(s.DocumentsProcessed), strconv.Itoa(s.Complete), strconv.Itoa(s.Partial),
		strconv.Itoa(s.UnresolvedCount), strconv.Itoa(s.ExtractionFailed), s.OverallSuccessRate)
	return err
}
