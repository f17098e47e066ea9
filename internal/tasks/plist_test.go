// SPDX-License-Identifier: MPL-2.0

package tasks

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"howett.net/plist"

	"github.com/workingBen/forge-demo/internal/testutil"
)

const infoPlist = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>CFBundleName</key>
	<string>Old</string>
	<key>CFBundleVersion</key>
	<string>1.0</string>
</dict>
</plist>
`

func TestSetInPlist(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "app", "Info.plist")
	testutil.MustWriteFile(t, path, infoPlist)

	args := kwargs(map[string]any{"key": "CFBundleName", "value": "New App"}, filepath.Join(dir, "*", "Info.plist"))
	if _, err := setInPlist(context.Background(), newTestState(nil), args); err != nil {
		t.Fatalf("setInPlist() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	format, err := plist.Unmarshal(data, &doc)
	if err != nil {
		t.Fatalf("result is not a plist: %v", err)
	}
	if format != plist.XMLFormat {
		t.Errorf("format = %d, want XML", format)
	}
	if doc["CFBundleName"] != "New App" {
		t.Errorf("CFBundleName = %v, want %q", doc["CFBundleName"], "New App")
	}
	if doc["CFBundleVersion"] != "1.0" {
		t.Errorf("CFBundleVersion = %v, want untouched", doc["CFBundleVersion"])
	}
}

func TestSetInPlist_KeepsBinaryFormat(t *testing.T) {
	t.Parallel()

	data, err := plist.Marshal(map[string]any{"CFBundleName": "Old"}, plist.BinaryFormat)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "Info.plist")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	args := kwargs(map[string]any{"key": "CFBundleDisplayName", "value": "Shown"}, path)
	if _, err := setInPlist(context.Background(), newTestState(nil), args); err != nil {
		t.Fatalf("setInPlist() error = %v", err)
	}

	out, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	format, err := plist.Unmarshal(out, &doc)
	if err != nil {
		t.Fatal(err)
	}
	if format != plist.BinaryFormat {
		t.Errorf("format = %d, want binary", format)
	}
	if doc["CFBundleDisplayName"] != "Shown" || doc["CFBundleName"] != "Old" {
		t.Errorf("doc = %v", doc)
	}
}
