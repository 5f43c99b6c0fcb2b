package domain

import (
	"reflect"
	"testing"
)

func TestFolderNameFor(t *testing.T) {
	tests := []struct {
		loop, system string
		expected     string
	}{
		{"L1", "S1", "L1_S1"},
		{"  L1 ", " S1  ", "L1_S1"},
		{"L1", "", "L1_"},
		{"", "", "_"},
	}

	for _, tt := range tests {
		if got := FolderNameFor(tt.loop, tt.system); got != tt.expected {
			t.Errorf("FolderNameFor(%q, %q) = %q, expected %q", tt.loop, tt.system, got, tt.expected)
		}
	}
}

func TestRecordRecomputeFolderName(t *testing.T) {
	r := Record{LoopNo: "L7", SystemNo: "S3", FolderName: "stale"}
	r.RecomputeFolderName()
	if r.FolderName != "L7_S3" {
		t.Errorf("FolderName = %q, expected L7_S3", r.FolderName)
	}
}

func TestParsePages(t *testing.T) {
	tests := []struct {
		in    string
		pages []int
		bad   []string
	}{
		{"1,3,5", []int{1, 3, 5}, nil},
		{"5, 3 ,1", []int{1, 3, 5}, nil},
		{"3,3,3", []int{3}, nil},
		{"", nil, nil},
		{" , ,", nil, nil},
		{"1,x,4", []int{1, 4}, []string{"x"}},
		{"0,-2,7", []int{7}, []string{"0", "-2"}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			pages, bad := ParsePages(tt.in)
			if !reflect.DeepEqual(pages, tt.pages) {
				t.Errorf("pages = %v, expected %v", pages, tt.pages)
			}
			if !reflect.DeepEqual(bad, tt.bad) {
				t.Errorf("bad = %v, expected %v", bad, tt.bad)
			}
		})
	}
}

func TestFormatPages(t *testing.T) {
	if got := FormatPages([]int{5, 1, 5, 3}); got != "1,3,5" {
		t.Errorf("FormatPages = %q, expected 1,3,5", got)
	}
	if got := FormatPages(nil); got != "" {
		t.Errorf("FormatPages(nil) = %q, expected empty", got)
	}
}

func TestFingerprintDeterminism(t *testing.T) {
	a := FingerprintBytes([]byte("page content"))
	b := FingerprintBytes([]byte("page content"))
	c := FingerprintBytes([]byte("page content!"))
	if a != b {
		t.Error("identical content must produce identical fingerprints")
	}
	if a == c {
		t.Error("distinct content must produce distinct fingerprints")
	}
}

func TestDigestFieldBoundaries(t *testing.T) {
	d1 := NewDigest()
	d1.WriteString("ab")
	d1.WriteString("c")
	d2 := NewDigest()
	d2.WriteString("a")
	d2.WriteString("bc")
	if d1.Sum() == d2.Sum() {
		t.Error("field boundaries must not alias")
	}
}
