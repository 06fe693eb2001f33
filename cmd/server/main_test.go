package main

import (
	"testing"

	"github.com/JonMunkholm/memberdesk/internal/config"
)

func TestNewAssembler(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.ReportConfig
		wantErr bool
	}{
		{"defaults", config.ReportConfig{WrapWidth: 80, MaxLines: 40, Overflow: "truncate", Language: "en"}, false},
		{"no language", config.ReportConfig{Overflow: "reject"}, false},
		{"bad overflow", config.ReportConfig{Overflow: "spill"}, true},
		{"bad language", config.ReportConfig{Overflow: "truncate", Language: "not a tag!"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asm, err := newAssembler(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && asm == nil {
				t.Fatal("nil assembler")
			}
		})
	}
}
