package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"archeli/contexts/capability-runtime/skill-registry/adapters/builtin"
	"archeli/contexts/capability-runtime/skill-registry/domain/entities"
	domainerrors "archeli/contexts/capability-runtime/skill-registry/domain/errors"
)

const scriptSource = `package main

func Handle(payload map[string]any) (map[string]any, error) {
	return map[string]any{
		"summary": "ok",
		"evidence": []any{
			map[string]any{"kind": "summary", "payload": map[string]any{"chars": 2}},
		},
	}, nil
}`

const scriptManifest = `id: summarize
version: "1.0"
capabilities: [text]
concurrency: 2
kind: script
entry: summarize.go
evidence_kind: summary
`

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadDirScriptSkill(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "summarize.yaml", scriptManifest)
	writeFile(t, dir, "summarize.go", scriptSource)

	skills, err := Loader{}.LoadDir(dir)
	if err != nil {
		t.Fatalf("load dir: %v", err)
	}
	if len(skills) != 1 {
		t.Fatalf("expected 1 skill, got %d", len(skills))
	}
	skill := skills[0]
	if skill.Descriptor.ID != "summarize" || skill.Descriptor.Source != entities.SourceScript {
		t.Fatalf("unexpected descriptor: %+v", skill.Descriptor)
	}

	result, err := skill.Handler.Invoke(context.Background(), map[string]any{"text": "hi"})
	if err != nil {
		t.Fatalf("invoke script: %v", err)
	}
	if result.Output["summary"] != "ok" {
		t.Fatalf("unexpected output: %v", result.Output)
	}
	if len(result.Evidence) != 1 || result.Evidence[0].Kind != "summary" {
		t.Fatalf("expected one summary evidence payload, got %+v", result.Evidence)
	}
}

func TestLoadDirBuiltinSkill(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "mirror.yaml", "id: mirror\nkind: builtin\nentry: echo\nconcurrency: 1\n")

	skills, err := Loader{Builtins: builtin.Handlers()}.LoadDir(dir)
	if err != nil {
		t.Fatalf("load dir: %v", err)
	}
	if len(skills) != 1 || skills[0].Descriptor.Source != entities.SourceBuiltin {
		t.Fatalf("unexpected skills: %+v", skills)
	}
}

func TestLoadDirUnknownBuiltinRejected(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.yaml", "id: bad\nkind: builtin\nentry: absent\n")

	if _, err := (Loader{Builtins: builtin.Handlers()}).LoadDir(dir); !errors.Is(err, domainerrors.ErrInvalidManifest) {
		t.Fatalf("expected invalid manifest, got %v", err)
	}
}

func TestLoadDirScriptWithoutHandleRejected(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.yaml", "id: broken\nkind: script\nentry: broken.go\n")
	writeFile(t, dir, "broken.go", "package main\n")

	if _, err := (Loader{}).LoadDir(dir); !errors.Is(err, domainerrors.ErrInvalidManifest) {
		t.Fatalf("expected invalid manifest, got %v", err)
	}
}

func TestLoadDirMissingDirIsEmpty(t *testing.T) {
	skills, err := Loader{}.LoadDir(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("missing dir must not error: %v", err)
	}
	if len(skills) != 0 {
		t.Fatalf("expected no skills, got %d", len(skills))
	}
}
