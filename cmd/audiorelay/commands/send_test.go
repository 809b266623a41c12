package commands

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
)

func TestSendOptions_Request(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "Ana_Lee_take1.mp3")
	if err := os.WriteFile(path, []byte("ID3"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	req, err := sendOptions{file: path, message: "hello"}.request()
	if err != nil {
		t.Fatalf("request() error = %v", err)
	}
	if req.Audio != base64.StdEncoding.EncodeToString([]byte("ID3")) {
		t.Errorf("Audio = %q", req.Audio)
	}
	if req.FileName != "Ana_Lee_take1.mp3" {
		t.Errorf("FileName = %q", req.FileName)
	}
	if req.StudentInfo != nil || req.SetInfo != nil {
		t.Errorf("unexpected structured fields: %+v", req)
	}

	opts := sendOptions{file: path, message: "hello", fileName: "x.mp3", set: "Set 1"}
	opts.student.FirstName = "Ana"
	req, err = opts.request()
	if err != nil {
		t.Fatalf("request() error = %v", err)
	}
	if req.FileName != "x.mp3" || req.StudentInfo == nil || req.StudentInfo.FirstName != "Ana" || req.SetInfo.Name != "Set 1" {
		t.Errorf("req = %+v", req)
	}
}

func TestSendOptions_MissingFile(t *testing.T) {
	t.Parallel()

	if _, err := (sendOptions{file: filepath.Join(t.TempDir(), "nope.mp3")}).request(); err == nil {
		t.Fatal("expected error for missing file")
	}
}
