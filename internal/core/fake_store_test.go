package core

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/memberdesk/internal/csvcodec"
)

const testDatasetKey = "test_members"

var testFields = []FieldSpec{
	{Name: "name", Type: FieldText, Required: true},
	{Name: "email", Type: FieldEmail},
	{Name: "phone", Type: FieldPhone},
	{Name: "status", Type: FieldEnum, EnumValues: []string{"active", "inactive"}, Normalizer: strings.ToLower},
	{Name: "join_date", Type: FieldDate},
}

var registerOnce sync.Once

// registerTestDataset registers a small member-like dataset keyed by email.
func registerTestDataset() {
	registerOnce.Do(func() {
		Register(Dataset{
			Info:   DatasetInfo{Key: testDatasetKey, Label: "Test Members"},
			Fields: testFields,
			Resolver: csvcodec.NewResolver([]csvcodec.FieldAliases{
				{Canonical: "name", Aliases: []string{"Full Name"}},
				{Canonical: "email", Aliases: []string{"E-mail"}},
				{Canonical: "phone", Aliases: []string{"Telephone"}},
				{Canonical: "status"},
				{Canonical: "join_date", Aliases: []string{"Joined"}},
			}),
			RowKey: func(rec csvcodec.Record) uuid.UUID {
				if rec["email"] == "" {
					return uuid.New()
				}
				return uuid.NewSHA1(uuid.NameSpaceURL, []byte(rec["email"]))
			},
			SummaryColumns: []string{"status"},
		})
	})
}

// fakeStore keeps rows in memory in insertion order.
type fakeStore struct {
	mu      sync.Mutex
	ids     []uuid.UUID
	rows    map[uuid.UUID]csvcodec.Record
	runs    []ImportRun
	reject  func(Row) error
	failAll error
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: make(map[uuid.UUID]csvcodec.Record)}
}

func (f *fakeStore) UpsertRows(ctx context.Context, ds Dataset, rows []Row) (int, []RowError, error) {
	if f.failAll != nil {
		return 0, nil, f.failAll
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	var errs []RowError
	n := 0
	for i, row := range rows {
		if f.reject != nil {
			if err := f.reject(row); err != nil {
				errs = append(errs, RowError{Index: i, Err: err})
				continue
			}
		}
		if _, ok := f.rows[row.ID]; !ok {
			f.ids = append(f.ids, row.ID)
		}
		f.rows[row.ID] = row.Values
		n++
	}
	return n, errs, nil
}

func (f *fakeStore) ListRows(ctx context.Context, ds Dataset) ([]csvcodec.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]csvcodec.Record, len(f.ids))
	for i, id := range f.ids {
		out[i] = f.rows[id]
	}
	return out, nil
}

func (f *fakeStore) Count(ctx context.Context, ds Dataset) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.ids)), nil
}

func (f *fakeStore) CountBy(ctx context.Context, ds Dataset, column string) ([]GroupCount, error) {
	if _, ok := ds.Field(column); !ok {
		return nil, errors.New("unknown column")
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	counts := map[string]int64{}
	for _, rec := range f.rows {
		counts[rec[column]]++
	}
	out := make([]GroupCount, 0, len(counts))
	for v, n := range counts {
		out = append(out, GroupCount{Value: v, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out, nil
}

func (f *fakeStore) ExistingIDs(ctx context.Context, ds Dataset, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[uuid.UUID]bool)
	for _, id := range ids {
		if _, ok := f.rows[id]; ok {
			out[id] = true
		}
	}
	return out, nil
}

func (f *fakeStore) RecordImport(ctx context.Context, run ImportRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, run)
	return nil
}

func (f *fakeStore) ListImports(ctx context.Context, dataset string, limit int) ([]ImportRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []ImportRun
	for i := len(f.runs) - 1; i >= 0 && len(out) < limit; i-- {
		if f.runs[i].Dataset == dataset {
			out = append(out, f.runs[i])
		}
	}
	return out, nil
}

func (f *fakeStore) PruneImports(ctx context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.runs[:0]
	for _, r := range f.runs {
		if !r.StartedAt.Before(cutoff) {
			kept = append(kept, r)
		}
	}
	n := int64(len(f.runs) - len(kept))
	f.runs = kept
	return n, nil
}
