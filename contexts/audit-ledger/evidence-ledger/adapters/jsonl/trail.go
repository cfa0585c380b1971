package jsonl

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"archeli/contexts/audit-ledger/evidence-ledger/domain/entities"
)

// Trail appends committed evidence to daily JSONL files in the evidence
// directory, one JSON object per line. The ledger database stays the source
// of truth; this is the greppable audit copy.
type Trail struct {
	Dir string

	mu sync.Mutex
}

type trailLine struct {
	ItemID      string          `json:"item_id"`
	SkillID     string          `json:"skill_id"`
	Kind        string          `json:"kind"`
	Fingerprint string          `json:"fingerprint"`
	CreatedAt   string          `json:"created_at"`
	Payload     json.RawMessage `json:"payload"`
}

func (t *Trail) Append(record entities.EvidenceRecord) error {
	if t.Dir == "" {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := os.MkdirAll(t.Dir, 0o755); err != nil {
		return fmt.Errorf("evidence dir %s: %w", t.Dir, err)
	}

	name := fmt.Sprintf("evidence-%s.jsonl", record.CreatedAt.UTC().Format("2006-01-02"))
	file, err := os.OpenFile(filepath.Join(t.Dir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open trail file %s: %w", name, err)
	}
	defer file.Close()

	payload := record.Payload
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	line, err := json.Marshal(trailLine{
		ItemID:      record.ItemID,
		SkillID:     record.SkillID,
		Kind:        record.Kind,
		Fingerprint: record.Fingerprint,
		CreatedAt:   record.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Payload:     payload,
	})
	if err != nil {
		return err
	}
	_, err = file.Write(append(line, '\n'))
	return err
}
