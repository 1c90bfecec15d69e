package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestUpload_SendsMultipartAndReturnsSession(t *testing.T) {
	var gotFiles []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/upload" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Fatalf("multipart parse: %v", err)
		}
		for _, fh := range r.MultipartForm.File["files"] {
			gotFiles = append(gotFiles, fh.Filename)
		}
		json.NewEncoder(w).Encode(UploadResponse{SessionID: "abc-123"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	paths := []string{
		writeTempFile(t, "q3_sales.xlsx", "fake-xlsx"),
		writeTempFile(t, "q3_oe.xlsx", "fake-xlsx"),
	}

	sid, err := client.Upload(context.Background(), paths)
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if sid != "abc-123" {
		t.Errorf("session id = %q, want abc-123", sid)
	}
	if len(gotFiles) != 2 || gotFiles[0] != "q3_sales.xlsx" {
		t.Errorf("server saw files %v", gotFiles)
	}
}

func TestUpload_NoFiles(t *testing.T) {
	client := NewClient("http://localhost:1")
	if _, err := client.Upload(context.Background(), nil); err == nil {
		t.Error("expected error for empty file list")
	}
}

func TestClean_SpreadsRuleFlagsIntoBody(t *testing.T) {
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/clean_pex/abc" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("body decode: %v", err)
		}
		json.NewEncoder(w).Encode(CleanResponse{
			CleanedFiles: []string{"PEX_Data_Processed.xlsx"},
			SessionID:    "abc",
			Type:         "pex-bi",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	resp, err := client.Clean(context.Background(), "clean_pex", "abc", CleanRequest{
		Rules:              map[string]bool{"groupUnits": true, "validateFormats": false},
		BulkMode:           true,
		SubMetric:          "pex-bi",
		VendorAnalysisType: "qtd",
	})
	if err != nil {
		t.Fatalf("Clean failed: %v", err)
	}

	if resp.CleanedFiles[0] != "PEX_Data_Processed.xlsx" {
		t.Errorf("cleaned files = %v", resp.CleanedFiles)
	}
	if gotBody["groupUnits"] != true || gotBody["validateFormats"] != false {
		t.Errorf("rule flags not spread: %v", gotBody)
	}
	if gotBody["bulk_mode"] != true {
		t.Errorf("bulk_mode missing: %v", gotBody)
	}
	if gotBody["sub_metric"] != "pex-bi" || gotBody["vendorAnalysisType"] != "qtd" {
		t.Errorf("pex fields missing: %v", gotBody)
	}
	if _, present := gotBody["metric"]; present {
		t.Error("wc metric field should be absent for pex")
	}
}

func TestClean_WorkingCapitalMetricField(t *testing.T) {
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(CleanResponse{CleanedFiles: []string{"wc.xlsx"}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.Clean(context.Background(), "clean_wc", "abc", CleanRequest{
		Rules:  map[string]bool{"removeDuplicates": true},
		Metric: "overhead",
	})
	if err != nil {
		t.Fatalf("Clean failed: %v", err)
	}
	if gotBody["metric"] != "overhead" {
		t.Errorf("metric field = %v, want overhead", gotBody["metric"])
	}
}

func TestClean_SurfacesServerErrorVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Invalid session ID"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.Clean(context.Background(), "clean_sales", "gone", CleanRequest{Rules: map[string]bool{}})
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "Invalid session ID" {
		t.Errorf("error = %q, want server message verbatim", err.Error())
	}
}

func TestClean_SurfacesMessageEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"message": "Sales processing failed or no files were processed."})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.Clean(context.Background(), "clean_sales", "abc", CleanRequest{Rules: map[string]bool{}})
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "Sales processing failed or no files were processed." {
		t.Errorf("error = %q", err.Error())
	}
}

func TestClean_RequiresSession(t *testing.T) {
	client := NewClient("http://localhost:1")
	if _, err := client.Clean(context.Background(), "clean_sales", "", CleanRequest{}); err == nil {
		t.Error("expected error for missing session id")
	}
}

func TestDownloadFile_WritesToDisk(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/download/abc/out.xlsx" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte("binary-sheet"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	dest := t.TempDir()

	path, err := client.DownloadFile(context.Background(), "abc", "out.xlsx", dest)
	if err != nil {
		t.Fatalf("DownloadFile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "binary-sheet" {
		t.Errorf("file content = %q", data)
	}
}

func TestDownloadFile_ErrorLeavesNoFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "File not found!"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	dest := t.TempDir()

	_, err := client.DownloadFile(context.Background(), "abc", "missing.xlsx", dest)
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "File not found!" {
		t.Errorf("error = %q", err.Error())
	}
	entries, _ := os.ReadDir(dest)
	if len(entries) != 0 {
		t.Errorf("download dir not empty after failure: %v", entries)
	}
}

func TestDownloadZip_NamesArchiveAfterSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/download/zip/abc" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte("zip-bytes"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	path, err := client.DownloadZip(context.Background(), "abc", t.TempDir())
	if err != nil {
		t.Fatalf("DownloadZip failed: %v", err)
	}
	if filepath.Base(path) != "processed_data_abc.zip" {
		t.Errorf("zip name = %s", filepath.Base(path))
	}
}
