package httpclient

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
)

func TestNew_setsUserAgent(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	c, err := New(Options{})
	if err != nil {
		t.Fatal(err)
	}
	resp, err := c.Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got != DefaultUserAgent {
		t.Errorf("User-Agent = %q, want browser UA", got)
	}
}

func TestNew_insecureAcceptsSelfSigned(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	strict, _ := New(Options{})
	if resp, err := strict.Get(srv.URL); err == nil {
		resp.Body.Close()
		t.Fatal("verifying client should reject the self-signed test certificate")
	}
	loose, _ := New(Options{InsecureSkipVerify: true})
	resp, err := loose.Get(srv.URL)
	if err != nil {
		t.Fatalf("insecure client: %v", err)
	}
	resp.Body.Close()
}

func TestNew_decodesBrotliAndGzip(t *testing.T) {
	payload := `[{"stream_id":1}]`
	var br, gz bytes.Buffer
	bw := brotli.NewWriter(&br)
	bw.Write([]byte(payload))
	bw.Close()
	gw := gzip.NewWriter(&gz)
	gw.Write([]byte(payload))
	gw.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "br") {
			t.Errorf("Accept-Encoding = %q", r.Header.Get("Accept-Encoding"))
		}
		switch r.URL.Path {
		case "/br":
			w.Header().Set("Content-Encoding", "br")
			w.Write(br.Bytes())
		case "/gz":
			w.Header().Set("Content-Encoding", "gzip")
			w.Write(gz.Bytes())
		default:
			w.Write([]byte(payload))
		}
	}))
	defer srv.Close()

	c, err := New(Options{Decompress: true})
	if err != nil {
		t.Fatal(err)
	}
	for _, path := range []string{"/br", "/gz", "/plain"} {
		resp, err := c.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("%s: %v", path, err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if string(body) != payload {
			t.Errorf("%s: body = %q", path, body)
		}
	}
}

func TestNew_proxyURL(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"socks5://127.0.0.1:1080", false},
		{"http://proxy:3128", false},
		{"ftp://proxy", true},
		{"://bad", true},
	}
	for _, tt := range tests {
		_, err := New(Options{ProxyURL: tt.url})
		if (err != nil) != tt.wantErr {
			t.Errorf("New(proxy=%q) err = %v, wantErr %v", tt.url, err, tt.wantErr)
		}
	}
}
