package main

import (
	"testing"

	"github.com/0xSpaceShard/starknet-devnet-go/config"
	"github.com/0xSpaceShard/starknet-devnet-go/core/archive"
	"github.com/0xSpaceShard/starknet-devnet-go/pipeline"
)

func TestParseArchivePolicy(t *testing.T) {
	cases := []struct {
		in      string
		want    archive.Policy
		wantErr bool
	}{
		{"none", archive.None, false},
		{"full", archive.Full, false},
		{"bogus", archive.None, true},
	}
	for _, tc := range cases {
		got, err := parseArchivePolicy(tc.in)
		if (err != nil) != tc.wantErr {
			t.Fatalf("parseArchivePolicy(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
		}
		if !tc.wantErr && got != tc.want {
			t.Fatalf("parseArchivePolicy(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseGenerationMode(t *testing.T) {
	cases := []struct {
		in      string
		want    pipeline.GenerationMode
		wantErr bool
	}{
		{"transaction", pipeline.GenerateOnTransaction, false},
		{"demand", pipeline.GenerateOnDemand, false},
		{"bogus", pipeline.GenerateOnTransaction, true},
	}
	for _, tc := range cases {
		got, err := parseGenerationMode(tc.in)
		if (err != nil) != tc.wantErr {
			t.Fatalf("parseGenerationMode(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
		}
		if !tc.wantErr && got != tc.want {
			t.Fatalf("parseGenerationMode(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseDumpPolicy(t *testing.T) {
	cases := []struct {
		in      string
		want    config.DumpPolicy
		wantErr bool
	}{
		{"never", config.DumpNever, false},
		{"exit", config.DumpOnExit, false},
		{"block", config.DumpOnBlock, false},
		{"request", config.DumpOnRequest, false},
		{"bogus", config.DumpNever, true},
	}
	for _, tc := range cases {
		got, err := parseDumpPolicy(tc.in)
		if (err != nil) != tc.wantErr {
			t.Fatalf("parseDumpPolicy(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
		}
		if !tc.wantErr && got != tc.want {
			t.Fatalf("parseDumpPolicy(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
