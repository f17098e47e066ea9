// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"strings"
	"testing"
)

const testSchema = `
#Settings: {
	name?:    string
	verbose?: bool
	port?:    int & >0
}
`

type testSettings struct {
	Name    string `json:"name"`
	Verbose bool   `json:"verbose"`
	Port    int    `json:"port"`
}

func TestParseAndDecode_JSONInput(t *testing.T) {
	t.Parallel()

	data := []byte(`{"name": "forge", "verbose": true, "port": 3000}`)
	res, err := ParseAndDecode[testSettings]([]byte(testSchema), data, "#Settings", WithFilename("settings.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Value.Name != "forge" || !res.Value.Verbose || res.Value.Port != 3000 {
		t.Errorf("unexpected decode result: %+v", *res.Value)
	}
}

func TestValidate_RejectsWrongType(t *testing.T) {
	t.Parallel()

	err := Validate([]byte(testSchema), []byte(`{"port": "abc"}`), "#Settings", WithFilename("settings.json"))
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "settings.json") {
		t.Errorf("error should name the file, got: %v", err)
	}
	if !strings.Contains(err.Error(), "port") {
		t.Errorf("error should name the field, got: %v", err)
	}
}

func TestValidate_ClosedDefinitionRejectsUnknownField(t *testing.T) {
	t.Parallel()

	err := Validate([]byte(testSchema), []byte(`{"colour": "red"}`), "#Settings")
	if err == nil {
		t.Fatal("expected error for field not in schema")
	}
}

func TestValidate_SizeLimit(t *testing.T) {
	t.Parallel()

	err := Validate([]byte(testSchema), []byte(`{"name": "forge"}`), "#Settings", WithMaxFileSize(4))
	if err == nil || !strings.Contains(err.Error(), "exceeds maximum") {
		t.Fatalf("expected size error, got %v", err)
	}
}
