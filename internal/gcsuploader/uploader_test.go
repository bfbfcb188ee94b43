package gcsuploader

import "testing"

func TestParseURI(t *testing.T) {
	tests := []struct {
		uri        string
		wantBucket string
		wantObject string
		wantErr    bool
	}{
		{"gs://reports/top/2024.csv", "reports", "top/2024.csv", false},
		{"gs://reports/a.xlsx", "reports", "a.xlsx", false},
		{"gs://reports", "", "", true},
		{"gs://reports/", "", "", true},
		{"s3://reports/a.csv", "", "", true},
		{"", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			bucket, object, err := ParseURI(tt.uri)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseURI(%q) error = %v, wantErr %v", tt.uri, err, tt.wantErr)
			}
			if bucket != tt.wantBucket || object != tt.wantObject {
				t.Errorf("ParseURI(%q) = %q, %q; want %q, %q", tt.uri, bucket, object, tt.wantBucket, tt.wantObject)
			}
		})
	}
}

func TestURIRoundTrip(t *testing.T) {
	uri := URI("b", "reports/monthly.json")
	if uri != "gs://b/reports/monthly.json" {
		t.Fatalf("URI = %q", uri)
	}
	bucket, object, err := ParseURI(uri)
	if err != nil || bucket != "b" || object != "reports/monthly.json" {
		t.Errorf("ParseURI(URI()) = %q, %q, %v", bucket, object, err)
	}
}
