package core

import (
	"fmt"
	"strings"
	"testing"

	"github.com/JonMunkholm/memberdesk/internal/csvcodec"
)

func BenchmarkToPgDate_ISO(b *testing.B) {
	for i := 0; i < b.N; i++ {
		ToPgDate("2024-01-15")
	}
}

func BenchmarkToPgDate_MonthName(b *testing.B) {
	for i := 0; i < b.N; i++ {
		ToPgDate("January 15, 2024")
	}
}

func BenchmarkValidateRecord(b *testing.B) {
	v := NewRowValidator(testFields)
	for i := 0; i < b.N; i++ {
		v.ValidateRecord(csvcodec.Record{
			"name":      "Jane Doe",
			"email":     "jane@example.org",
			"phone":     "+254 712 345 678",
			"status":    "Active",
			"join_date": "03/15/2021",
		})
	}
}

func BenchmarkPrepare_1000Rows(b *testing.B) {
	registerTestDataset()
	svc := NewService(newFakeStore(), Options{})
	ds, _ := Get(testDatasetKey)

	var sb strings.Builder
	sb.WriteString("Full Name,E-mail,Phone,Status,Joined\n")
	for i := 0; i < 1000; i++ {
		fmt.Fprintf(&sb, "Member %d,m%d@example.org,0712 %06d,active,2021-03-15\n", i, i, i)
	}
	data := []byte(sb.String())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := svc.prepare(ds, data); err != nil {
			b.Fatal(err)
		}
	}
}
