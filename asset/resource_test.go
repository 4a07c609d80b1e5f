package asset

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestLocalResource(t *testing.T) {
	_, thisFile, _, _ := runtime.Caller(0)
	res, err := NewResource(thisFile, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Close()

	if res.IsRemote() || res.IsEmbedded() {
		t.Fatal("expected a local resource")
	}
}

func TestRelativeLocalResource(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "scene.gltf"), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "albedo.png"), []byte("png"), 0644); err != nil {
		t.Fatal(err)
	}

	parent, err := NewResource(filepath.Join(dir, "scene.gltf"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer parent.Close()

	res, err := NewResource("albedo.png", parent)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Close()

	data, err := io.ReadAll(res)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "png" {
		t.Fatalf("expected to read 'png'; got %q", data)
	}
}

func TestHttpResource(t *testing.T) {
	_, thisFile, _, _ := runtime.Caller(0)
	thisDir := filepath.Dir(thisFile)

	server := httptest.NewServer(http.FileServer(http.Dir(thisDir)))
	defer server.Close()

	fetchUrl := server.URL + "/" + filepath.Base(thisFile)
	res, err := NewResource(fetchUrl, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Close()

	if !res.IsRemote() || res.RemotePath() != filepath.Base(thisFile) {
		t.Fatalf("expected remote resource with path %s; got %s", filepath.Base(thisFile), res.RemotePath())
	}

	fetchUrl = server.URL + "/file-not-found.foo"
	expError := fmt.Sprintf("resource: could not fetch '%s': status %d", fetchUrl, 404)
	_, err = NewResource(fetchUrl, nil)
	if err == nil || err.Error() != expError {
		t.Fatalf("expected to get: %s; got %v", expError, err)
	}
}

func TestRelativeHttpResources(t *testing.T) {
	serverHits := 0
	serverFn := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		serverHits++
		if r.URL.Path == "/foo/scene.gltf" || r.URL.Path == "/foo/scene.bin" {
			w.Write([]byte("OK"))
		} else {
			http.NotFound(w, r)
		}
	})
	server := httptest.NewServer(serverFn)
	defer server.Close()

	res1, err := NewResource(server.URL+"/foo/scene.gltf", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer res1.Close()
	res2, err := NewResource("scene.bin", res1)
	if err != nil {
		t.Fatal(err)
	}
	defer res2.Close()

	if serverHits != 2 {
		t.Fatalf("expected server to receive 2 requests; got %d", serverHits)
	}
}

func TestDataResource(t *testing.T) {
	specs := []struct {
		uri string
		exp string
	}{
		{"data:application/octet-stream;base64,aGVsbG8=", "hello"},
		{"data:text/plain,hello%20world", "hello world"},
	}

	for index, spec := range specs {
		res, err := NewResource(spec.uri, nil)
		if err != nil {
			t.Fatalf("[spec %d] unexpected error: %v", index, err)
		}
		if !res.IsEmbedded() {
			t.Fatalf("[spec %d] expected an embedded resource", index)
		}

		data, err := io.ReadAll(res)
		res.Close()
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != spec.exp {
			t.Fatalf("[spec %d] expected %q; got %q", index, spec.exp, data)
		}
	}

	if _, err := NewResource("data:no-payload", nil); err == nil {
		t.Fatal("expected an error for a malformed data URI")
	}
}

func TestUnsupportedResourceScheme(t *testing.T) {
	expError := "resource: unsupported scheme 'gopher'"
	_, err := NewResource("gopher://digging.go", nil)
	if err == nil || err.Error() != expError {
		t.Fatalf("expected to get: %s; got %v", expError, err)
	}
}

func TestResourceFromStream(t *testing.T) {
	res := NewResourceFromStream("memory.bin", strings.NewReader("payload"))
	defer res.Close()

	if res.Path() != "memory.bin" {
		t.Fatalf("expected path memory.bin; got %s", res.Path())
	}
	data, _ := io.ReadAll(res)
	if string(data) != "payload" {
		t.Fatalf("expected to read 'payload'; got %q", data)
	}
}
