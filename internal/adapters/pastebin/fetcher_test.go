package pastebin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawURL(t *testing.T) {
	tests := []struct {
		name string
		ref  string
		want string
	}{
		{"page url", "https://pastebin.com/AbCd1234", "https://pastebin.com/raw/AbCd1234"},
		{"raw url unchanged", "https://pastebin.com/raw/AbCd1234", "https://pastebin.com/raw/AbCd1234"},
		{"bare id", "AbCd1234", "https://pastebin.com/raw/AbCd1234"},
		{"bare id with spaces", "  AbCd1234 ", "https://pastebin.com/raw/AbCd1234"},
		{"other host untouched", "https://example.com/paste.txt", "https://example.com/paste.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RawURL(tt.ref))
		})
	}
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ABCD-EFGH-1234\n"))
	}))
	defer srv.Close()

	f := NewFetcher(5 * time.Second)
	body, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "ABCD-EFGH-1234\n", body)
}

func TestFetchNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := NewFetcher(5 * time.Second)
	_, err := f.Fetch(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestFetchTimesOutInsteadOfHanging(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	f := NewFetcher(50 * time.Millisecond)
	start := time.Now()
	_, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestFetchBadURL(t *testing.T) {
	f := NewFetcher(time.Second)
	_, err := f.Fetch(context.Background(), "http://127.0.0.1:0/nope")
	assert.Error(t, err)
}
