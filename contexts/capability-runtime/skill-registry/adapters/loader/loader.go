package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
	"gopkg.in/yaml.v3"

	"archeli/contexts/capability-runtime/skill-registry/domain/entities"
	domainerrors "archeli/contexts/capability-runtime/skill-registry/domain/errors"
	"archeli/contexts/capability-runtime/skill-registry/ports"
)

const scriptEntryFuncName = "Handle"

// LoadedSkill pairs a parsed descriptor with its ready-to-invoke handler.
type LoadedSkill struct {
	Descriptor entities.Descriptor
	Handler    ports.Handler
	Path       string
}

type manifestYAML struct {
	ID           string   `yaml:"id"`
	Version      string   `yaml:"version"`
	Description  string   `yaml:"description"`
	Capabilities []string `yaml:"capabilities"`
	Concurrency  int      `yaml:"concurrency"`
	Kind         string   `yaml:"kind"`  // builtin | script
	Entry        string   `yaml:"entry"` // builtin name, or script file relative to the manifest
	EvidenceKind string   `yaml:"evidence_kind"`
}

// Loader discovers skill manifests (*.yaml) in the skills directory.
// Builtin manifests bind to compiled-in handlers; script manifests are Go
// files interpreted at load time, each exporting
// Handle(map[string]any) (map[string]any, error).
type Loader struct {
	Builtins map[string]ports.Handler
}

// LoadDir parses every manifest under dir. A missing directory is treated as
// "no skills" to simplify startup.
func (l Loader) LoadDir(dir string) ([]LoadedSkill, error) {
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		return nil, nil
	}
	dirEntries, err := os.ReadDir(trimmed)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("skills: read %s: %w", trimmed, err)
	}

	var skills []LoadedSkill
	for _, dirEntry := range dirEntries {
		if dirEntry.IsDir() {
			continue
		}
		ext := filepath.Ext(dirEntry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		skill, err := l.loadManifest(filepath.Join(trimmed, dirEntry.Name()))
		if err != nil {
			return nil, err
		}
		skills = append(skills, skill)
	}
	sort.Slice(skills, func(i, j int) bool { return skills[i].Descriptor.ID < skills[j].Descriptor.ID })
	return skills, nil
}

func (l Loader) loadManifest(path string) (LoadedSkill, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return LoadedSkill{}, fmt.Errorf("skills: read %s: %w", path, err)
	}

	var manifest manifestYAML
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return LoadedSkill{}, fmt.Errorf("%w: %s: %v", domainerrors.ErrInvalidManifest, path, err)
	}
	if strings.TrimSpace(manifest.ID) == "" {
		return LoadedSkill{}, fmt.Errorf("%w: %s: id is required", domainerrors.ErrInvalidManifest, path)
	}

	descriptor := entities.Descriptor{
		ID:           strings.TrimSpace(manifest.ID),
		Version:      strings.TrimSpace(manifest.Version),
		Description:  strings.TrimSpace(manifest.Description),
		Capabilities: manifest.Capabilities,
		Concurrency:  manifest.Concurrency,
	}

	var handler ports.Handler
	switch strings.TrimSpace(manifest.Kind) {
	case "", "script":
		descriptor.Source = entities.SourceScript
		entry := strings.TrimSpace(manifest.Entry)
		if entry == "" {
			entry = descriptor.ID + ".go"
		}
		handler, err = loadScriptHandler(filepath.Join(filepath.Dir(path), entry), manifest.EvidenceKind)
		if err != nil {
			return LoadedSkill{}, err
		}
	case "builtin":
		descriptor.Source = entities.SourceBuiltin
		name := strings.TrimSpace(manifest.Entry)
		if name == "" {
			name = descriptor.ID
		}
		builtin, ok := l.Builtins[name]
		if !ok {
			return LoadedSkill{}, fmt.Errorf("%w: %s: unknown builtin %q", domainerrors.ErrInvalidManifest, path, name)
		}
		handler = builtin
	default:
		return LoadedSkill{}, fmt.Errorf("%w: %s: unknown kind %q", domainerrors.ErrInvalidManifest, path, manifest.Kind)
	}

	return LoadedSkill{Descriptor: descriptor, Handler: handler, Path: path}, nil
}

func loadScriptHandler(path string, evidenceKind string) (ports.Handler, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("skills: read script %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(code))) == 0 {
		return nil, fmt.Errorf("%w: script %s is empty", domainerrors.ErrInvalidManifest, path)
	}

	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("skills: interpreter for %s: %w", path, err)
	}
	if _, err := i.EvalPath(path); err != nil {
		return nil, fmt.Errorf("%w: interpret %s: %v", domainerrors.ErrInvalidManifest, path, err)
	}
	fnValue, err := i.Eval(scriptEntryFuncName)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must define %s(map[string]any) (map[string]any, error): %v",
			domainerrors.ErrInvalidManifest, path, scriptEntryFuncName, err)
	}
	if !fnValue.IsValid() || fnValue.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w: %s: %s is not a function", domainerrors.ErrInvalidManifest, path, scriptEntryFuncName)
	}

	return scriptHandler{fn: fnValue, evidenceKind: strings.TrimSpace(evidenceKind), path: path}, nil
}

type scriptHandler struct {
	fn           reflect.Value
	evidenceKind string
	path         string
}

func (h scriptHandler) Invoke(ctx context.Context, payload map[string]any) (ports.InvocationResult, error) {
	if err := ctx.Err(); err != nil {
		return ports.InvocationResult{}, err
	}
	if payload == nil {
		payload = map[string]any{}
	}

	results := h.fn.Call([]reflect.Value{reflect.ValueOf(payload)})
	if len(results) != 2 {
		return ports.InvocationResult{}, fmt.Errorf("skills: %s: %s must return (map[string]any, error)", h.path, scriptEntryFuncName)
	}
	if errValue := results[1].Interface(); errValue != nil {
		callErr, ok := errValue.(error)
		if !ok {
			return ports.InvocationResult{}, fmt.Errorf("skills: %s: second return value is not an error", h.path)
		}
		return ports.InvocationResult{}, callErr
	}

	output, _ := results[0].Interface().(map[string]any)
	return splitEvidence(output, h.evidenceKind), nil
}

// splitEvidence strips the conventional "evidence" key from a script's output
// into artifact payloads; everything else stays in Output.
func splitEvidence(output map[string]any, defaultKind string) ports.InvocationResult {
	result := ports.InvocationResult{Output: map[string]any{}}
	if defaultKind == "" {
		defaultKind = "artifact"
	}
	for key, value := range output {
		if key != "evidence" {
			result.Output[key] = value
			continue
		}
		list, ok := value.([]any)
		if !ok {
			result.Output[key] = value
			continue
		}
		for _, element := range list {
			artifact, ok := element.(map[string]any)
			if !ok {
				continue
			}
			kind := defaultKind
			if k, ok := artifact["kind"].(string); ok && strings.TrimSpace(k) != "" {
				kind = strings.TrimSpace(k)
			}
			payload, _ := artifact["payload"].(map[string]any)
			if payload == nil {
				payload = artifact
			}
			result.Evidence = append(result.Evidence, ports.EvidencePayload{Kind: kind, Payload: payload})
		}
	}
	return result
}
