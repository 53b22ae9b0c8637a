package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	md "github.com/nao1215/markdown"

	"github.com/joseph-ayodele/layout-verifier/internal/entity"
)

func renderMarkdown(w io.Writer, s *entity.VerificationSummary, opts Options) error {
	doc := md.NewMarkdown(w).H1(opts.title()).LF()
	if !opts.GeneratedAt.IsZero() {
		doc.PlainText(md.Bold("Generated:") + " " + opts.GeneratedAt.Format("2006-01-02 15:04:05")).LF()
	}

	doc.H2("Summary").LF().BulletList(
		md.Bold("Total products in record source:")+" "+strconv.Itoa(s.RecordsTotal),
		md.Bold("Layouts supplied:")+" "+strconv.Itoa(s.DocumentsSupplied),
		md.Bold("Layouts verified:")+" "+strconv.Itoa(s.DocumentsProcessed),
		md.Bold("Fully verified (all fields found):")+" "+strconv.Itoa(s.Complete),
		md.Bold("Partially verified (some fields missing):")+" "+strconv.Itoa(s.Partial),
		md.Bold("Layouts without record match:")+" "+strconv.Itoa(s.UnresolvedCount),
		md.Bold("Layouts that could not be read:")+" "+strconv.Itoa(s.ExtractionFailed),
		md.Bold("Overall success rate:")+" "+fmt.Sprintf("%.1f%%", s.OverallSuccessRate),
	).LF()

	if len(s.Unresolved) > 0 {
		doc.H2("Layouts Without Record Match").LF().
			PlainText("The following layout files could not be matched to any product:").LF()
		items := make([]string, len(s.Unresolved))
		for i, u := range s.Unresolved {
			items[i] = u.Document
			if u.Identifier != "" {
				items[i] += " (" + u.Identifier + ")"
			}
		}
		doc.BulletList(items...).LF()
	}

	if failed := s.Failed(); len(failed) > 0 {
		doc.H2("Layouts That Could Not Be Read").LF()
		rows := make([][]string, len(failed))
		for i, r := range failed {
			rows[i] = []string{cellText(r.Identifier), cellText(r.Document), cellText(r.Error)}
		}
		doc.Table(md.TableSet{Header: []string{"Item#", "Layout File", "Error"}, Rows: rows}).LF()
	}

	if partial := s.Incomplete(); len(partial) > 0 {
		doc.H2("Products With Missing Fields").LF()
		for i := range partial {
			r := &partial[i]
			doc.H3("Item# " + r.Identifier).
				PlainText(md.Bold("File:") + " " + r.Document).LF().
				PlainText(md.Bold("Match rate:") + fmt.Sprintf(" %s (%d/%d)", RateText(r), r.MatchedFields, r.TotalFields)).LF()

			var missing, found [][]string
			for _, f := range r.Fields {
				if f.Matched {
					found = append(found, []string{cellText(f.Field), cellText(f.Expected), string(f.Strategy)})
					continue
				}
				expected := cellText(f.Expected)
				if f.NotApplicable {
					expected = "(empty)"
				}
				missing = append(missing, []string{cellText(f.Field), expected})
			}
			if len(missing) > 0 {
				doc.PlainText(md.Bold("Missing fields:")).LF().
					Table(md.TableSet{Header: []string{"Field", "Expected Value"}, Rows: missing}).LF()
			}
			if len(found) > 0 {
				doc.PlainText(md.Bold("Found fields:")).LF().
					Table(md.TableSet{Header: []string{"Field", "Value", "Match Type"}, Rows: found}).LF()
			}
		}
	}

	if done := s.Verified(); len(done) > 0 {
		doc.H2("Fully Verified Products").LF().
			PlainText("The following products have all fields verified:").LF()
		rows := make([][]string, len(done))
		for i, r := range done {
			rows[i] = []string{cellText(r.Identifier), cellText(r.Document), strconv.Itoa(r.TotalFields)}
		}
		doc.Table(md.TableSet{Header: []string{"Item#", "Layout File", "Fields"}, Rows: rows}).LF()
	}

	return doc.Build()
}

// cellText keeps table rows on one line.
func cellText(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}
