package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/layout-verifier/constants"
	"github.com/joseph-ayodele/layout-verifier/internal/common"
	"github.com/joseph-ayodele/layout-verifier/internal/core/async"
	"github.com/joseph-ayodele/layout-verifier/internal/entity"
	"github.com/joseph-ayodele/layout-verifier/internal/extract"
)

var widget = entity.NewRecord("12345", map[string]string{
	"Item#":    "12345",
	"EAN":      "1234567890",
	"Name ENG": "Widget Pro",
})

func recordSet(records ...entity.Record) *entity.RecordSet {
	return &entity.RecordSet{
		IdentifierColumn: "Item#",
		Columns:          []string{"Item#", "EAN", "Name ENG", "Batch no:"},
		Records:          records,
	}
}

func newProcessor(t *testing.T, ex extract.TextExtractor, opts ...ProcessorOption) *Processor {
	t.Helper()
	v, err := NewVerifier(DefaultVerifierOptions())
	require.NoError(t, err)
	return NewProcessor(nil, ex, v, async.NewPool(nil, async.WithWorkers(4)), opts...)
}

func docs(paths ...string) []entity.Document {
	out := make([]entity.Document, len(paths))
	for i, p := range paths {
		out[i] = entity.Document{Path: p}
	}
	return out
}

func TestVerifyBatchAllFieldsMatched(t *testing.T) {
	ex := extract.NewStaticExtractor(map[string]string{"12345 Box.pdf": "WIDGET\nPRO\n1234-5678-90"})
	p := newProcessor(t, ex)

	s, err := p.VerifyBatch(context.Background(), recordSet(widget), docs("12345 Box.pdf"), []string{"EAN", "Name ENG"})
	require.NoError(t, err)
	require.Len(t, s.Results, 1)

	r := s.Results[0]
	assert.Equal(t, "12345", r.Identifier)
	assert.Equal(t, 2, r.TotalFields)
	assert.Equal(t, 2, r.MatchedFields)
	assert.Empty(t, r.Missing)
	require.NotNil(t, r.SuccessRate)
	assert.InDelta(t, 100.0, *r.SuccessRate, 1e-9)
	assert.True(t, r.Complete())
	assert.Equal(t, constants.StrategyNumericNormalized, r.Fields[0].Strategy)
	assert.Equal(t, constants.StrategyTokenized, r.Fields[1].Strategy)

	assert.Equal(t, 1, s.DocumentsProcessed)
	assert.Equal(t, 1, s.Complete)
	assert.InDelta(t, 100.0, s.OverallSuccessRate, 1e-9)
}

func TestVerifyBatchMissingEAN(t *testing.T) {
	ex := extract.NewStaticExtractor(map[string]string{"12345 Box.pdf": "WIDGET\nPRO\n500g"})
	s, err := newProcessor(t, ex).VerifyBatch(context.Background(), recordSet(widget), docs("12345 Box.pdf"), []string{"EAN", "Name ENG"})
	require.NoError(t, err)

	r := s.Results[0]
	assert.Equal(t, []string{"EAN"}, r.Missing)
	assert.Equal(t, 1, r.MatchedFields)
	assert.Equal(t, r.TotalFields, r.MatchedFields+r.MissingFields)
	assert.InDelta(t, 50.0, *r.SuccessRate, 1e-9)
	assert.False(t, r.Complete())
	assert.Equal(t, 1, s.Partial)
	assert.Equal(t, 0, s.Complete)
}

func TestVerifyBatchUnresolvedExcludedFromAverage(t *testing.T) {
	ex := extract.NewStaticExtractor(map[string]string{
		"12345 Box.pdf": "WIDGET PRO 1234567890",
		"99999 Lid.pdf": "anything",
	})
	s, err := newProcessor(t, ex).VerifyBatch(context.Background(), recordSet(widget),
		docs("99999 Lid.pdf", "12345 Box.pdf"), []string{"EAN", "Name ENG"})
	require.NoError(t, err)

	assert.Equal(t, 2, s.DocumentsSupplied)
	assert.Equal(t, 1, s.DocumentsProcessed)
	assert.Equal(t, 1, s.UnresolvedCount)
	assert.Equal(t, "99999", s.Unresolved[0].Identifier)
	assert.Contains(t, s.Unresolved[0].Reason, "no record with Item#")
	assert.Equal(t, 1, s.Complete)
	assert.InDelta(t, 100.0, s.OverallSuccessRate, 1e-9)
}

func TestVerifyBatchExtractionFailureIsDistinct(t *testing.T) {
	other := entity.NewRecord("777", map[string]string{"Item#": "777", "EAN": "42", "Name ENG": "Tag"})
	ex := extract.NewStaticExtractor(map[string]string{
		"12345 Box.pdf": "",
		"777 Tag.pdf":   "nothing relevant",
	})
	s, err := newProcessor(t, ex).VerifyBatch(context.Background(), recordSet(widget, other),
		docs("12345 Box.pdf", "777 Tag.pdf"), []string{"EAN", "Name ENG"})
	require.NoError(t, err)
	require.Len(t, s.Results, 2)

	failed := s.Results[0]
	assert.Equal(t, constants.DocumentStatusExtractionFailed, failed.Status)
	assert.Contains(t, failed.Error, "no embedded text layer")
	assert.Nil(t, failed.SuccessRate)
	assert.False(t, failed.Complete())

	missing := s.Results[1]
	assert.Equal(t, constants.DocumentStatusVerified, missing.Status)
	assert.Equal(t, []string{"EAN", "Name ENG"}, missing.Missing)

	assert.Equal(t, 1, s.ExtractionFailed)
	assert.Equal(t, 1, s.DocumentsProcessed)
	assert.InDelta(t, 0.0, s.OverallSuccessRate, 1e-9)
}

func TestVerifyBatchOverallRateIsUnweighted(t *testing.T) {
	wide := entity.NewRecord("A1", map[string]string{"EAN": "111", "Name ENG": "Alpha", "Batch no:": "L9"})
	narrow := entity.NewRecord("B2", map[string]string{"EAN": "222", "Name ENG": "Beta"})
	ex := extract.NewStaticExtractor(map[string]string{
		"A1 x.pdf": "Alpha",    // 1 of 3
		"B2 y.pdf": "Beta 222", // 2 of 2
	})
	p := newProcessor(t, ex)
	s, err := p.VerifyBatch(context.Background(), recordSet(wide, narrow), docs("A1 x.pdf", "B2 y.pdf"), []string{"EAN", "Name ENG", "Batch no:"})
	require.NoError(t, err)

	// B2 has no batch number; the default policy counts it as a miss.
	assert.InDelta(t, 100.0/3, *s.Results[0].SuccessRate, 1e-9)
	assert.InDelta(t, 200.0/3, *s.Results[1].SuccessRate, 1e-9)
	assert.InDelta(t, 50.0, s.OverallSuccessRate, 1e-9)
}

func TestVerifyBatchEmptyFieldPolicies(t *testing.T) {
	rec := entity.NewRecord("12345", map[string]string{"EAN": "", "Name ENG": "Widget"})
	ex := extract.NewStaticExtractor(map[string]string{"12345 Box.pdf": "Widget"})

	s, err := newProcessor(t, ex).VerifyBatch(context.Background(), recordSet(rec), docs("12345 Box.pdf"), []string{"EAN", "Name ENG"})
	require.NoError(t, err)
	r := s.Results[0]
	assert.Equal(t, 2, r.TotalFields)
	assert.Equal(t, []string{"EAN"}, r.Missing)
	assert.True(t, r.Fields[0].NotApplicable)

	opts := DefaultVerifierOptions()
	opts.EmptyFields = constants.EmptyFieldSkip
	v, err := NewVerifier(opts)
	require.NoError(t, err)
	s, err = NewProcessor(nil, ex, v, nil).VerifyBatch(context.Background(), recordSet(rec), docs("12345 Box.pdf"), []string{"EAN", "Name ENG"})
	require.NoError(t, err)
	r = s.Results[0]
	assert.Equal(t, 1, r.TotalFields)
	assert.True(t, r.Complete())
}

func TestVerifyBatchDuplicates(t *testing.T) {
	first := entity.NewRecord("12345", map[string]string{"Name ENG": "Widget"})
	second := entity.NewRecord("12345", map[string]string{"Name ENG": "Gadget"})
	ex := extract.NewStaticExtractor(map[string]string{
		"12345 Box.pdf":   "Widget",
		"12345 Label.pdf": "Gadget",
	})
	s, err := newProcessor(t, ex).VerifyBatch(context.Background(), recordSet(first, second),
		docs("12345 Box.pdf", "12345 Label.pdf"), []string{"Name ENG"})
	require.NoError(t, err)

	require.Len(t, s.Results, 2, "every document with the same identifier is verified")
	assert.True(t, s.Results[0].Complete())
	assert.False(t, s.Results[1].Complete(), "first record wins")
	assert.Equal(t, "12345 Label.pdf", s.Results[1].Document)
}

func TestVerifyBatchIdentifierCase(t *testing.T) {
	rec := entity.NewRecord("AB-1", map[string]string{"Name ENG": "Widget"})
	ex := extract.NewStaticExtractor(map[string]string{"ab-1 Box.pdf": "Widget"})

	s, err := newProcessor(t, ex).VerifyBatch(context.Background(), recordSet(rec), docs("ab-1 Box.pdf"), []string{"Name ENG"})
	require.NoError(t, err)
	assert.Equal(t, 1, s.UnresolvedCount)

	s, err = newProcessor(t, ex, WithCaseInsensitiveIdentifiers(true)).
		VerifyBatch(context.Background(), recordSet(rec), docs("ab-1 Box.pdf"), []string{"Name ENG"})
	require.NoError(t, err)
	assert.Equal(t, 0, s.UnresolvedCount)
	assert.Equal(t, 1, s.Complete)
}

func TestVerifyBatchOverride(t *testing.T) {
	ex := extract.NewStaticExtractor(map[string]string{"box-final.pdf": "Widget Pro"})
	in := []entity.Document{{Path: "box-final.pdf", IdentifierOverride: "12345"}}
	s, err := newProcessor(t, ex).VerifyBatch(context.Background(), recordSet(widget), in, []string{"Name ENG"})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Complete)
}

func TestVerifyBatchConfigurationErrors(t *testing.T) {
	ex := extract.Func(func(context.Context, string) (extract.TextExtractionResult, error) {
		t.Fatal("no document may be touched on a configuration error")
		return extract.TextExtractionResult{}, nil
	})
	p := newProcessor(t, ex)

	tests := []struct {
		name    string
		set     *entity.RecordSet
		columns []string
	}{
		{"no record source", nil, nil},
		{"only unknown columns", recordSet(widget), []string{"Colour", "Weight"}},
		{"only the identifier", recordSet(widget), []string{"item#"}},
		{"identifier column missing", &entity.RecordSet{IdentifierColumn: "SKU", Columns: []string{"EAN"}, Records: []entity.Record{widget}}, []string{"EAN"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := p.VerifyBatch(context.Background(), tt.set, docs("12345 Box.pdf"), tt.columns)
			require.Error(t, err)
			assert.Nil(t, s)
			assert.True(t, common.IsConfigurationError(err))
		})
	}
}

func TestVerifyBatchIsIdempotent(t *testing.T) {
	texts := map[string]string{}
	var records []entity.Record
	var in []entity.Document
	for i := 0; i < 40; i++ {
		id := fmt.Sprintf("%05d", i)
		records = append(records, entity.NewRecord(id, map[string]string{
			"EAN":      fmt.Sprintf("40000%05d", i),
			"Name ENG": fmt.Sprintf("Product %d", i),
		}))
		name := fmt.Sprintf("%s layout.pdf", id)
		if i%3 == 0 {
			texts[name] = fmt.Sprintf("PRODUCT\n%d\n4000-0%05d", i, i)
		} else {
			texts[name] = "unrelated"
		}
		in = append(in, entity.Document{Path: name})
	}
	slow := extract.Func(func(ctx context.Context, path string) (extract.TextExtractionResult, error) {
		// uneven latency shuffles completion order
		time.Sleep(time.Duration(len(path)%7) * 100 * time.Microsecond)
		return extract.NewStaticExtractor(texts).Extract(ctx, path)
	})
	p := newProcessor(t, slow)

	a, err := p.VerifyBatch(context.Background(), recordSet(records...), in, []string{"EAN", "Name ENG"})
	require.NoError(t, err)
	b, err := p.VerifyBatch(context.Background(), recordSet(records...), in, []string{"EAN", "Name ENG"})
	require.NoError(t, err)

	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("summaries differ (-first +second):\n%s", diff)
	}
	ja, err := json.Marshal(a)
	require.NoError(t, err)
	jb, err := json.Marshal(b)
	require.NoError(t, err)
	assert.Equal(t, ja, jb)

	for i, r := range a.Results {
		assert.Equal(t, in[i].Path, r.Document, "results follow input order")
	}
}

func TestVerifyBatchExtractTimeout(t *testing.T) {
	hang := extract.Func(func(ctx context.Context, _ string) (extract.TextExtractionResult, error) {
		<-ctx.Done()
		return extract.TextExtractionResult{}, ctx.Err()
	})
	p := newProcessor(t, hang, WithExtractTimeout(5*time.Millisecond))
	s, err := p.VerifyBatch(context.Background(), recordSet(widget), docs("12345 Box.pdf"), []string{"EAN"})
	require.NoError(t, err)
	require.Len(t, s.Results, 1)
	assert.Equal(t, constants.DocumentStatusExtractionFailed, s.Results[0].Status)
	assert.Contains(t, s.Results[0].Error, "timed out")
}

func TestVerifyBatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ex := extract.Func(func(context.Context, string) (extract.TextExtractionResult, error) {
		cancel()
		return extract.TextExtractionResult{Text: "Widget Pro"}, nil
	})
	v, err := NewVerifier(DefaultVerifierOptions())
	require.NoError(t, err)
	p := NewProcessor(nil, ex, v, async.NewPool(nil, async.WithWorkers(1), async.WithQueueSize(1)))

	s, err := p.VerifyBatch(ctx, recordSet(widget), docs("12345 a.pdf", "12345 b.pdf", "12345 c.pdf", "12345 d.pdf"), []string{"Name ENG"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	require.NotNil(t, s)
	require.NotEmpty(t, s.Results)
	assert.Less(t, len(s.Results), 4)
	assert.Equal(t, "12345 a.pdf", s.Results[0].Document)
}

func TestVerifySingle(t *testing.T) {
	ex := extract.NewStaticExtractor(map[string]string{"12345 Box.pdf": "WIDGET\nPRO\n1234-5678-90"})
	p := newProcessor(t, ex)

	r, err := p.VerifySingle(context.Background(), widget, entity.Document{Path: "12345 Box.pdf"}, []string{"EAN", "Name ENG"})
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.True(t, r.Complete())

	r, err = p.VerifySingle(context.Background(), widget, entity.Document{Path: "54321 Box.pdf"}, []string{"EAN"})
	require.NoError(t, err)
	assert.Nil(t, r, "unresolved documents yield no result")

	r, err = p.VerifySingle(context.Background(), widget, entity.Document{Path: "12345 Box.pdf"}, nil)
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Len(t, r.Fields, len(constants.DefaultColumns)-1, "defaults exclude the identifier")
}

func TestResolveColumns(t *testing.T) {
	set := recordSet()
	got, err := ResolveColumns([]string{" ean ", "Item#", "EAN", "Colour", "name eng"}, set, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"EAN", "Name ENG"}, got)

	got, err = ResolveColumns([]string{"Anything"}, &entity.RecordSet{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Anything"}, got, "without header metadata nothing is dropped")

	got, err = ResolveColumns(nil, set, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"EAN", "Name ENG", "Batch no:"}, got)
}
